// Package uploads menyimpan lampiran foto dispensasi ke disk lokal.
package uploads

import (
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// MaxSize batas ukuran lampiran.
const MaxSize = 10 * 1024 * 1024 // 10MB

var (
	ErrFileTooLarge   = errors.New("FILE_TOO_LARGE")
	ErrInvalidType    = errors.New("INVALID_FILE_TYPE")
	allowedExtensions = map[string]bool{
		".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".pdf": true,
	}
	allowedMIMEPrefixes = []string{"image/jpeg", "image/png", "image/gif", "application/pdf"}
)

// Saver menulis lampiran ke Dir dengan nama dispen_<unixms><ext> dan
// mengembalikan path publik di bawah /uploads/.
type Saver struct {
	Dir string
}

func NewSaver(dir string) (*Saver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Saver{Dir: dir}, nil
}

// Save memvalidasi ekstensi + MIME + ukuran lalu menyimpan file.
func (s *Saver) Save(fh *multipart.FileHeader) (publicPath, originalName string, err error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExtensions[ext] {
		return "", "", ErrInvalidType
	}
	if ct := fh.Header.Get("Content-Type"); ct != "" && !allowedMIME(ct) {
		return "", "", ErrInvalidType
	}
	if fh.Size > MaxSize {
		return "", "", ErrFileTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return "", "", err
	}
	defer src.Close()

	name := "dispen_" + strconv.FormatInt(time.Now().UnixMilli(), 10) + ext
	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(dst.Name())
		return "", "", err
	}
	return "/uploads/" + name, fh.Filename, nil
}

// Remove menghapus lampiran berdasarkan path publik; dipakai saat submit
// ditolak supaya tidak ada file yatim.
func (s *Saver) Remove(publicPath string) {
	if !strings.HasPrefix(publicPath, "/uploads/") {
		return
	}
	_ = os.Remove(filepath.Join(s.Dir, filepath.Base(publicPath)))
}

func allowedMIME(ct string) bool {
	for _, p := range allowedMIMEPrefixes {
		if strings.HasPrefix(ct, p) {
			return true
		}
	}
	return false
}
