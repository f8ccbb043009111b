// Package reminder menjalankan hitung mundur waktu kembali dispensasi:
// tick tiap detik, peringatan sekali saat sisa <= 5 menit, alarm sekali
// saat waktu habis.
package reminder

import (
	"sync"
	"time"
)

const (
	// DefaultInterval periode polling.
	DefaultInterval = time.Second
	// WarnBefore ambang peringatan sebelum tenggat.
	WarnBefore = 5 * time.Minute
)

// seam untuk test
var nowFunc = time.Now

// Callbacks dipanggil dari goroutine scheduler; boleh nil.
type Callbacks struct {
	// OnTick dipanggil tiap tick dengan sisa waktu (bisa negatif setelah lewat).
	OnTick func(remaining time.Duration)
	// OnWarning dipanggil sekali saat sisa <= WarnBefore.
	OnWarning func(remaining time.Duration)
	// OnExpired dipanggil sekali saat sisa <= 0.
	OnExpired func()
}

// Scheduler satu hitung mundur untuk satu dispensasi. Flag warned/expired
// di-latch supaya tiap notifikasi hanya sekali seumur scheduler; Stop
// membatalkan tick dan mereset latch, idempoten.
type Scheduler struct {
	deadline time.Time
	interval time.Duration
	cb       Callbacks

	mu      sync.Mutex
	warned  bool
	expired bool
	done    chan struct{}
	running bool
}

func New(deadline time.Time, cb Callbacks) *Scheduler {
	return NewWithInterval(deadline, cb, DefaultInterval)
}

// NewWithInterval untuk test (interval pendek).
func NewWithInterval(deadline time.Time, cb Callbacks, interval time.Duration) *Scheduler {
	return &Scheduler{deadline: deadline, interval: interval, cb: cb}
}

// Start menjalankan polling; tick pertama langsung dievaluasi. Memanggil
// Start saat sudah berjalan tidak berefek.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	go func() {
		t := time.NewTicker(s.interval)
		defer t.Stop()
		s.tick()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				s.tick()
			}
		}
	}()
}

func (s *Scheduler) tick() {
	remaining := s.deadline.Sub(nowFunc())

	if s.cb.OnTick != nil {
		s.cb.OnTick(remaining)
	}

	s.mu.Lock()
	fireExpired := remaining <= 0 && !s.expired
	if fireExpired {
		s.expired = true
	}
	fireWarning := remaining > 0 && remaining <= WarnBefore && !s.warned
	if fireWarning {
		s.warned = true
	}
	s.mu.Unlock()

	if fireWarning && s.cb.OnWarning != nil {
		s.cb.OnWarning(remaining)
	}
	if fireExpired && s.cb.OnExpired != nil {
		s.cb.OnExpired()
	}
}

// Stop membatalkan tick dan mereset latch. Aman dipanggil berulang.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		close(s.done)
		s.running = false
	}
	s.warned = false
	s.expired = false
}
