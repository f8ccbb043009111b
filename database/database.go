package database

import (
	"context"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/smpn1kudus/dispensasi-api/config"
	"github.com/smpn1kudus/dispensasi-api/models"
	"github.com/smpn1kudus/dispensasi-api/storage"
)

// Connect memilih backend penyimpanan sekali di startup dan mengembalikan
// adapter-nya; lifecycle tidak pernah branching lagi soal backend.
func Connect(cfg *config.Config) storage.Store {
	switch cfg.StorageDriver {
	case "postgres":
		db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to connect database: %v", err)
		}
		if err := db.AutoMigrate(
			&models.Dispensation{},
			&models.Teacher{},
		); err != nil {
			log.Fatalf("auto migrate failed: %v", err)
		}
		store := storage.NewGormStore(db)
		seedTeachersIfNeeded(cfg, store)
		log.Printf("[database] backend: postgres (%s)", cfg.DBName)
		return store
	default:
		store, err := storage.NewFileStore(cfg.DBFile)
		if err != nil {
			log.Fatalf("failed to open %s: %v", cfg.DBFile, err)
		}
		log.Printf("[database] backend: file (%s)", cfg.DBFile)
		return store
	}
}

// seedTeachersIfNeeded menyalin data guru dari db.json ke Postgres saat
// tabel masih kosong; sekali jalan, untuk migrasi dari varian file.
func seedTeachersIfNeeded(cfg *config.Config, store storage.Store) {
	ctx := context.Background()
	n, err := store.CountTeachers(ctx)
	if err != nil || n > 0 {
		return
	}
	fileStore, err := storage.NewFileStore(cfg.DBFile)
	if err != nil {
		return
	}
	teachers, err := fileStore.ListTeachers(ctx)
	if err != nil {
		return
	}
	for i := range teachers {
		if err := store.CreateTeacher(ctx, &teachers[i]); err != nil {
			log.Printf("[database] seed teacher %q gagal: %v", teachers[i].Username, err)
		}
	}
	if len(teachers) > 0 {
		log.Printf("[database] seeded %d guru dari %s", len(teachers), cfg.DBFile)
	}
}
