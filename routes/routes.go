package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/smpn1kudus/dispensasi-api/config"
	"github.com/smpn1kudus/dispensasi-api/dispensation"
	"github.com/smpn1kudus/dispensasi-api/handlers"
	"github.com/smpn1kudus/dispensasi-api/middlewares"
	"github.com/smpn1kudus/dispensasi-api/storage"
	"github.com/smpn1kudus/dispensasi-api/uploads"
)

// Register mendaftarkan semua route HTTP.
func Register(e *echo.Echo, cfg *config.Config, store storage.Store, svc *dispensation.Service, saver *uploads.Saver) {
	dsp := handlers.NewDispensationHandler(svc, store, saver)
	tch := handlers.NewTeacherHandler(store)
	auth := handlers.NewAuthHandler(store, cfg.JWTSecret)

	e.GET("/health", handlers.Health)

	// ===== Public =====
	e.GET("/dispensations", dsp.List)
	e.GET("/dispensations/:id", dsp.Get)
	e.POST("/dispensations", dsp.Create)
	e.PATCH("/dispensations/:id", dsp.Patch)
	e.POST("/dispensations/:id/return", dsp.Return)

	e.GET("/teachers", tch.List)
	e.POST("/auth/teacher/login", auth.TeacherLogin)

	// lampiran foto
	e.Static("/uploads", cfg.UploadDir)

	// ===== Teacher (JWT) =====
	authMW := middlewares.RequireAuth(cfg.JWTSecret)
	teacher := e.Group("/teacher", authMW, middlewares.RequireRole("guru", "admin"))
	teacher.POST("/dispensations/:id/approve", dsp.Approve)
	teacher.POST("/dispensations/:id/reject", dsp.Reject)
}
