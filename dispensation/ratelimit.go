package dispensation

import (
	"sync"
	"time"
)

// SubmissionLimiter membatasi submit: maksimal satu pengajuan per identitas
// pemanggil (IP) per jendela 30 detik. Peta identitas→waktu terakhir dipakai
// bersama antar request tanpa lock penuh (sync.Map); race kecil di tepi
// jendela ditoleransi; paling buruk satu submit ekstra lolos.
type SubmissionLimiter struct {
	window  time.Duration
	entries sync.Map // identity → time.Time

	stopOnce sync.Once
	done     chan struct{}
}

// NewSubmissionLimiter juga menjalankan sweep latar: entri lebih tua dari
// 2x window dibuang tiap 30 detik supaya peta tidak tumbuh terus.
func NewSubmissionLimiter(window time.Duration) *SubmissionLimiter {
	l := &SubmissionLimiter{
		window: window,
		done:   make(chan struct{}),
	}
	go l.sweep()
	return l
}

// Allow mencatat dan mengizinkan submit, atau menolak bila identitas yang
// sama baru saja diterima di dalam jendela.
func (l *SubmissionLimiter) Allow(identity string) bool {
	now := nowFunc()
	if v, ok := l.entries.Load(identity); ok {
		if last, ok := v.(time.Time); ok && now.Sub(last) < l.window {
			return false
		}
	}
	l.entries.Store(identity, now)
	return true
}

func (l *SubmissionLimiter) sweep() {
	t := time.NewTicker(30 * time.Second)
	defer t.Stop()
	for {
		select {
		case <-l.done:
			return
		case <-t.C:
			cutoff := nowFunc().Add(-2 * l.window)
			l.entries.Range(func(k, v any) bool {
				if last, ok := v.(time.Time); ok && last.Before(cutoff) {
					l.entries.Delete(k)
				}
				return true
			})
		}
	}
}

// Stop menghentikan sweep latar; aman dipanggil berulang.
func (l *SubmissionLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.done) })
}
