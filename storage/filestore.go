package storage

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"sync"

	"github.com/smpn1kudus/dispensasi-api/models"
)

// fileDoc bentuk dokumen db.json, sama dengan versi lama (Express).
type fileDoc struct {
	Teachers      []fileTeacher         `json:"teachers"`
	Dispensations []models.Dispensation `json:"dispensations"`
}

// fileTeacher menyertakan password di file (model Teacher sengaja
// json:"-" supaya tidak pernah bocor lewat API).
type fileTeacher struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

func (t fileTeacher) model() models.Teacher {
	return models.Teacher{ID: t.ID, Username: t.Username, Password: t.Password, Name: t.Name, Role: t.Role}
}

// FileStore menyimpan seluruh data dalam satu dokumen JSON. Setiap operasi
// baca-ubah-tulis seluruh file; mutex menserialisasi akses dalam satu proses.
// Catatan: update ke id yang sama dari dua proses berbeda tetap bisa saling
// menimpa (celah yang sama dengan sistem lama, dibiarkan apa adanya).
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore membuat file dengan dokumen kosong bila belum ada.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.write(&fileDoc{
			Teachers:      []fileTeacher{},
			Dispensations: []models.Dispensation{},
		}); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, storageErr("stat", err)
	}
	return s, nil
}

func (s *FileStore) read() (*fileDoc, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, storageErr("read", err)
	}
	var doc fileDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, storageErr("decode", err)
	}
	return &doc, nil
}

func (s *FileStore) write(doc *fileDoc) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return storageErr("encode", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return storageErr("write", err)
	}
	return nil
}

func (s *FileStore) CreateDispensation(_ context.Context, d *models.Dispensation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return err
	}
	doc.Dispensations = append(doc.Dispensations, *d)
	return s.write(doc)
}

func (s *FileStore) DispensationByID(_ context.Context, id int64) (*models.Dispensation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	for i := range doc.Dispensations {
		if doc.Dispensations[i].ID == id {
			d := doc.Dispensations[i]
			return &d, nil
		}
	}
	return nil, ErrNotFound
}

func (s *FileStore) DispensationByTrackingCode(_ context.Context, code string) (*models.Dispensation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	for i := range doc.Dispensations {
		if doc.Dispensations[i].TrackingCode == code {
			d := doc.Dispensations[i]
			return &d, nil
		}
	}
	return nil, ErrNotFound
}

func (s *FileStore) ListDispensations(_ context.Context) ([]models.Dispensation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	list := make([]models.Dispensation, len(doc.Dispensations))
	copy(list, doc.Dispensations)
	// urutan di file apa adanya (append); normalkan ke terbaru dulu supaya
	// seragam dengan varian Postgres
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

func (s *FileStore) UpdateDispensation(_ context.Context, id int64, fields map[string]any) (*models.Dispensation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	for i := range doc.Dispensations {
		if doc.Dispensations[i].ID != id {
			continue
		}
		merged, err := mergeDispensation(&doc.Dispensations[i], fields)
		if err != nil {
			return nil, err
		}
		doc.Dispensations[i] = *merged
		if err := s.write(doc); err != nil {
			return nil, err
		}
		d := doc.Dispensations[i]
		return &d, nil
	}
	return nil, ErrNotFound
}

func (s *FileStore) ListTeachers(_ context.Context) ([]models.Teacher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	list := make([]models.Teacher, 0, len(doc.Teachers))
	for _, t := range doc.Teachers {
		list = append(list, t.model())
	}
	return list, nil
}

func (s *FileStore) CreateTeacher(_ context.Context, t *models.Teacher) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return err
	}
	doc.Teachers = append(doc.Teachers, fileTeacher{
		ID: t.ID, Username: t.Username, Password: t.Password, Name: t.Name, Role: t.Role,
	})
	return s.write(doc)
}

func (s *FileStore) CountTeachers(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return 0, err
	}
	return int64(len(doc.Teachers)), nil
}

// mergeDispensation menggabungkan fields (nama JSON) ke record lewat
// round-trip JSON, supaya bentuk field sama persis dengan wire format.
func mergeDispensation(d *models.Dispensation, fields map[string]any) (*models.Dispensation, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, storageErr("merge encode", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, storageErr("merge decode", err)
	}
	for k, v := range fields {
		m[k] = v
	}
	raw, err = json.Marshal(m)
	if err != nil {
		return nil, storageErr("merge encode", err)
	}
	var out models.Dispensation
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, storageErr("merge decode", err)
	}
	return &out, nil
}
