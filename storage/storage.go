// Package storage menyediakan adapter penyimpanan dispensasi dengan dua
// varian: file JSON (db.json) dan Postgres. Lifecycle tidak perlu tahu
// varian mana yang aktif.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/smpn1kudus/dispensasi-api/models"
)

var ErrNotFound = errors.New("NOT_FOUND")

// Store adalah kontrak persistence untuk dispensasi dan data guru.
type Store interface {
	CreateDispensation(ctx context.Context, d *models.Dispensation) error
	DispensationByID(ctx context.Context, id int64) (*models.Dispensation, error)
	DispensationByTrackingCode(ctx context.Context, code string) (*models.Dispensation, error)
	// ListDispensations urut createdAt menurun (terbaru dulu) di kedua varian.
	ListDispensations(ctx context.Context) ([]models.Dispensation, error)
	// UpdateDispensation merge field yang diberikan ke record; ErrNotFound
	// jika id tidak dikenal. Nama field memakai nama JSON (camelCase).
	UpdateDispensation(ctx context.Context, id int64, fields map[string]any) (*models.Dispensation, error)

	ListTeachers(ctx context.Context) ([]models.Teacher, error)
	CreateTeacher(ctx context.Context, t *models.Teacher) error
	CountTeachers(ctx context.Context) (int64, error)
}

func storageErr(op string, err error) error {
	return fmt.Errorf("storage: %s: %w", op, err)
}
