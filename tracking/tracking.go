// Package tracking membuat kode tracking publik untuk dispensasi.
package tracking

import (
	"context"
	"errors"
	"math/rand"

	"github.com/smpn1kudus/dispensasi-api/storage"
)

const (
	prefix   = "DSP-"
	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLen  = 6
)

// Generate mengembalikan "DSP-" + 6 karakter acak [A-Z0-9]. Tidak dijamin
// unik global; probabilitas tabrakan dianggap bisa diabaikan.
func Generate() string {
	b := make([]byte, 0, len(prefix)+codeLen)
	b = append(b, prefix...)
	for i := 0; i < codeLen; i++ {
		b = append(b, alphabet[rand.Intn(len(alphabet))])
	}
	return string(b)
}

// GenerateUnique mencoba beberapa kali sampai kode tidak ada di store.
func GenerateUnique(ctx context.Context, store storage.Store) (string, error) {
	for i := 0; i < 5; i++ {
		code := Generate()
		_, err := store.DispensationByTrackingCode(ctx, code)
		if errors.Is(err, storage.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	// sangat tidak mungkin; pakai kode terakhir saja
	return Generate(), nil
}
