package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/smpn1kudus/dispensasi-api/config"
	"github.com/smpn1kudus/dispensasi-api/database"
	"github.com/smpn1kudus/dispensasi-api/dispensation"
	"github.com/smpn1kudus/dispensasi-api/geofence"
	"github.com/smpn1kudus/dispensasi-api/notify"
	"github.com/smpn1kudus/dispensasi-api/routes"
	"github.com/smpn1kudus/dispensasi-api/uploads"
)

func main() {
	// .env opsional; env asli tetap menang
	_ = godotenv.Load()
	cfg := config.Load()

	store := database.Connect(cfg)

	saver, err := uploads.NewSaver(cfg.UploadDir)
	if err != nil {
		log.Fatalf("upload dir: %v", err)
	}

	notifier := notify.NewDiscordNotifier(cfg.DiscordWebhookURL)
	limiter := dispensation.NewSubmissionLimiter(30 * time.Second)
	fence := geofence.Fence{Lat: cfg.SchoolLat, Lng: cfg.SchoolLng, RadiusM: cfg.SchoolRadiusM}
	svc := dispensation.NewService(store, notifier, limiter, fence)
	defer svc.Close()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORS())

	routes.Register(e, cfg, store, svc, saver)

	addr := ":" + cfg.AppPort
	log.Printf("server listening at %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
