package dispensation

import (
	"errors"
	"fmt"

	"github.com/smpn1kudus/dispensasi-api/storage"
)

var (
	// ErrNotFound diteruskan dari storage supaya pemanggil cukup satu errors.Is.
	ErrNotFound = storage.ErrNotFound
	// ErrInvalidTransition: aturan state machine dilanggar (mis. decide dua kali).
	ErrInvalidTransition = errors.New("INVALID_TRANSITION")
	// ErrRateLimited: identitas yang sama submit lagi di dalam jendela 30 detik.
	ErrRateLimited = errors.New("RATE_LIMITED")
)

// ValidationError: field wajib kosong atau payload tidak valid.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("VALIDATION_ERROR: %s", e.Field)
}
