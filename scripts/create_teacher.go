// scripts/create_teacher.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/smpn1kudus/dispensasi-api/config"
	"github.com/smpn1kudus/dispensasi-api/database"
	"github.com/smpn1kudus/dispensasi-api/models"
)

// Seed satu akun guru: go run ./scripts <username> <password> [nama]
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	store := database.Connect(cfg)

	if len(os.Args) < 3 {
		log.Fatal("pemakaian: create_teacher <username> <password> [nama]")
	}
	username, password := os.Args[1], os.Args[2]
	name := username
	if len(os.Args) > 3 {
		name = os.Args[3]
	}

	ctx := context.Background()

	// cek username sudah ada atau belum
	teachers, err := store.ListTeachers(ctx)
	if err != nil {
		log.Fatalf("failed to list teachers: %v", err)
	}
	for _, t := range teachers {
		if t.Username == username {
			fmt.Println("⚠️  guru dengan username ini sudah ada:", username)
			os.Exit(0)
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	t := models.Teacher{
		ID:       time.Now().UnixMilli(),
		Username: username,
		Password: string(hashed),
		Name:     name,
		Role:     "guru",
	}
	if err := store.CreateTeacher(ctx, &t); err != nil {
		log.Fatalf("failed to insert teacher: %v", err)
	}

	fmt.Println("✅ akun guru dibuat")
	fmt.Println("   Username:", username)
}
