package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/smpn1kudus/dispensasi-api/models"
)

// GormStore adalah varian remote (Postgres via GORM). Update memakai
// Updates(map) GORM sehingga merge field terjadi di satu statement.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

// jsonToColumn memetakan nama field JSON (camelCase, format wire) ke nama
// kolom. Field di luar daftar ini diabaikan saat update.
var jsonToColumn = map[string]string{
	"studentName":       "student_name",
	"studentClass":      "student_class",
	"reason":            "reason",
	"destination":       "destination",
	"departureTime":     "departure_time",
	"returnTime":        "return_time",
	"photoPath":         "photo_path",
	"photoOriginalName": "photo_original_name",
	"status":            "status",
	"approvedBy":        "approved_by",
	"returnedAt":        "returned_at",
}

func (s *GormStore) CreateDispensation(ctx context.Context, d *models.Dispensation) error {
	if err := s.db.WithContext(ctx).Create(d).Error; err != nil {
		return storageErr("create dispensation", err)
	}
	return nil
}

func (s *GormStore) DispensationByID(ctx context.Context, id int64) (*models.Dispensation, error) {
	var d models.Dispensation
	err := s.db.WithContext(ctx).First(&d, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get dispensation", err)
	}
	return &d, nil
}

func (s *GormStore) DispensationByTrackingCode(ctx context.Context, code string) (*models.Dispensation, error) {
	var d models.Dispensation
	err := s.db.WithContext(ctx).First(&d, "tracking_code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get by tracking code", err)
	}
	return &d, nil
}

func (s *GormStore) ListDispensations(ctx context.Context) ([]models.Dispensation, error) {
	var rows []models.Dispensation
	if err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, storageErr("list dispensations", err)
	}
	return rows, nil
}

// columnUpdates memetakan field JSON ke kolom; field di luar daftar dibuang.
func columnUpdates(fields map[string]any) (map[string]any, error) {
	updates := map[string]any{}
	for k, v := range fields {
		col, ok := jsonToColumn[k]
		if !ok {
			continue
		}
		if col == "returned_at" {
			// PATCH mengirim string RFC3339; kolomnya timestamptz
			if sv, ok := v.(string); ok {
				ts, err := time.Parse(time.RFC3339, sv)
				if err != nil {
					return nil, storageErr("parse returnedAt", err)
				}
				v = ts
			}
		}
		updates[col] = v
	}
	return updates, nil
}

func (s *GormStore) UpdateDispensation(ctx context.Context, id int64, fields map[string]any) (*models.Dispensation, error) {
	updates, err := columnUpdates(fields)
	if err != nil {
		return nil, err
	}
	// semua field tersaring: tidak ada yang perlu ditulis; kembalikan
	// record apa adanya, sama seperti varian file
	if len(updates) == 0 {
		return s.DispensationByID(ctx, id)
	}

	tx := s.db.WithContext(ctx).Model(&models.Dispensation{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return nil, storageErr("update dispensation", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.DispensationByID(ctx, id)
}

func (s *GormStore) ListTeachers(ctx context.Context) ([]models.Teacher, error) {
	var rows []models.Teacher
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, storageErr("list teachers", err)
	}
	return rows, nil
}

func (s *GormStore) CreateTeacher(ctx context.Context, t *models.Teacher) error {
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return storageErr("create teacher", err)
	}
	return nil
}

func (s *GormStore) CountTeachers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Teacher{}).Count(&n).Error; err != nil {
		return 0, storageErr("count teachers", err)
	}
	return n, nil
}
