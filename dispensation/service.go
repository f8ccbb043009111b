// Package dispensation berisi lifecycle dispensasi: submit → approve/reject
// → completed, plus verifikasi kembali via geofencing.
package dispensation

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/smpn1kudus/dispensasi-api/geofence"
	"github.com/smpn1kudus/dispensasi-api/models"
	"github.com/smpn1kudus/dispensasi-api/reminder"
	"github.com/smpn1kudus/dispensasi-api/storage"
	"github.com/smpn1kudus/dispensasi-api/tracking"
)

// seam untuk test
var nowFunc = time.Now

// Notifier dipanggil best-effort pada transisi lifecycle; implementasi wajib
// tidak memblokir dan tidak pernah mengembalikan error ke lifecycle.
type Notifier interface {
	DispensationCreated(d *models.Dispensation)
	DispensationDecided(d *models.Dispensation, approver string)
	ReturnOverdue(d *models.Dispensation)
}

// SubmitInput payload pengajuan. destination opsional, sisanya wajib.
type SubmitInput struct {
	StudentName       string `validate:"required"`
	StudentClass      string `validate:"required"`
	Reason            string `validate:"required"`
	Destination       string
	DepartureTime     string `validate:"required"`
	ReturnTime        string `validate:"required"`
	PhotoPath         string
	PhotoOriginalName string
}

// VerificationResult hasil percobaan kembali (geofence).
type VerificationResult struct {
	Accepted       bool    `json:"accepted"`
	Distance       float64 `json:"distance"`
	RequiredRadius float64 `json:"requiredRadius"`
}

type Service struct {
	store    storage.Store
	notifier Notifier
	limiter  *SubmissionLimiter
	fence    geofence.Fence
	validate *validator.Validate

	// pengawas tenggat per dispensasi yang sudah disetujui
	mu       sync.Mutex
	watchers map[int64]*reminder.Scheduler
}

func NewService(store storage.Store, notifier Notifier, limiter *SubmissionLimiter, fence geofence.Fence) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		limiter:  limiter,
		fence:    fence,
		validate: validator.New(),
		watchers: map[int64]*reminder.Scheduler{},
	}
}

// Submit memvalidasi input, cek rate limit per identitas pemanggil, lalu
// membuat record pending. Notifikasi dikirim best-effort setelah tersimpan.
func (s *Service) Submit(ctx context.Context, identity string, in SubmitInput) (*models.Dispensation, error) {
	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, &ValidationError{Field: verrs[0].Field()}
		}
		return nil, &ValidationError{Field: "payload"}
	}

	if s.limiter != nil && !s.limiter.Allow(identity) {
		return nil, ErrRateLimited
	}

	code, err := tracking.GenerateUnique(ctx, s.store)
	if err != nil {
		// store lagi bermasalah; pakai kode tanpa cek unik
		code = tracking.Generate()
	}

	d := &models.Dispensation{
		// id turunan waktu (milidetik), format id lama dipertahankan;
		// tabrakan pada submit bersamaan di milidetik yang sama diterima
		ID:            nowFunc().UnixMilli(),
		StudentName:   in.StudentName,
		StudentClass:  in.StudentClass,
		Reason:        in.Reason,
		Destination:   in.Destination,
		DepartureTime: in.DepartureTime,
		ReturnTime:    in.ReturnTime,
		TrackingCode:  code,
		Status:        models.StatusPending,
		CreatedAt:     nowFunc().UTC(),
	}
	if in.PhotoPath != "" {
		d.PhotoPath = &in.PhotoPath
		d.PhotoOriginalName = &in.PhotoOriginalName
	}

	if err := s.store.CreateDispensation(ctx, d); err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.DispensationCreated(d)
	}
	return d, nil
}

// Decide menyetujui/menolak dispensasi yang masih pending.
func (s *Service) Decide(ctx context.Context, id int64, decision, approver string) (*models.Dispensation, error) {
	if decision != models.StatusApproved && decision != models.StatusRejected {
		return nil, &ValidationError{Field: "status"}
	}
	cur, err := s.store.DispensationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur.Status != models.StatusPending {
		return nil, ErrInvalidTransition
	}

	updated, err := s.store.UpdateDispensation(ctx, id, map[string]any{
		"status":     decision,
		"approvedBy": approver,
	})
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.DispensationDecided(updated, approver)
	}
	if decision == models.StatusApproved {
		s.watchDeadline(updated)
	}
	return updated, nil
}

// Complete menandai siswa sudah kembali; hanya sah dari approved.
func (s *Service) Complete(ctx context.Context, id int64) (*models.Dispensation, error) {
	cur, err := s.store.DispensationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur.Status != models.StatusApproved {
		return nil, ErrInvalidTransition
	}
	updated, err := s.store.UpdateDispensation(ctx, id, map[string]any{
		"status":     models.StatusCompleted,
		"returnedAt": nowFunc().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}
	s.stopWatch(id)
	return updated, nil
}

// AttemptReturn memverifikasi koordinat pemanggil terhadap fence sekolah.
// Di dalam radius → Complete; di luar → record tidak disentuh. returnTime
// tidak diperiksa: kembali terlambat tetap boleh diverifikasi.
func (s *Service) AttemptReturn(ctx context.Context, id int64, lat, lng float64) (*VerificationResult, error) {
	if _, err := s.store.DispensationByID(ctx, id); err != nil {
		return nil, err
	}
	res, err := s.fence.Check(lat, lng)
	if err != nil {
		return nil, err
	}
	out := &VerificationResult{
		Accepted:       res.Within,
		Distance:       res.Distance,
		RequiredRadius: res.RequiredRadius,
	}
	if !res.Within {
		return out, nil
	}
	if _, err := s.Complete(ctx, id); err != nil {
		return nil, err
	}
	return out, nil
}

// watchDeadline memasang pengingat sisi server: lewat tenggat tanpa
// completed → kirim notifikasi terlambat sekali.
func (s *Service) watchDeadline(d *models.Dispensation) {
	deadline, err := d.ReturnDeadline()
	if err != nil {
		log.Printf("[dispensation] returnTime %q tidak bisa diparse, pengawas tenggat dilewati: %v", d.ReturnTime, err)
		return
	}
	rec := *d
	sched := reminder.New(deadline, reminder.Callbacks{
		OnExpired: func() {
			if s.notifier != nil {
				s.notifier.ReturnOverdue(&rec)
			}
			// notifikasi terlambat hanya sekali; sesudah itu tidak ada
			// lagi yang perlu di-tick
			s.stopWatch(rec.ID)
		},
	})

	s.mu.Lock()
	if old, ok := s.watchers[d.ID]; ok {
		old.Stop()
	}
	s.watchers[d.ID] = sched
	s.mu.Unlock()

	sched.Start()
}

func (s *Service) stopWatch(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sched, ok := s.watchers[id]; ok {
		sched.Stop()
		delete(s.watchers, id)
	}
}

// Close menghentikan limiter dan semua pengawas tenggat.
func (s *Service) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sched := range s.watchers {
		sched.Stop()
		delete(s.watchers, id)
	}
}
