package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	AppPort string
	AppEnv  string

	// "file" atau "postgres"
	StorageDriver string
	DBFile        string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	UploadDir         string
	DiscordWebhookURL string
	JWTSecret         string

	// lokasi sekolah untuk geofencing
	SchoolLat     float64
	SchoolLng     float64
	SchoolRadiusM float64
}

func get(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getFloat(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func Load() *Config {
	return &Config{
		AppPort: get("APP_PORT", "8080"),
		AppEnv:  get("APP_ENV", "dev"),

		StorageDriver: get("STORAGE_DRIVER", "file"),
		DBFile:        get("DB_FILE", "db.json"),

		DBHost:     get("DB_HOST", "localhost"),
		DBPort:     get("DB_PORT", "5432"),
		DBUser:     get("DB_USER", "postgres"),
		DBPassword: get("DB_PASSWORD", ""),
		DBName:     get("DB_NAME", "dispensasi"),
		DBSSLMode:  get("DB_SSLMODE", "disable"),

		UploadDir:         get("UPLOAD_DIR", "uploads"),
		DiscordWebhookURL: get("DISCORD_WEBHOOK_URL", ""),
		JWTSecret:         get("JWT_SECRET", "dev-secret"),

		// default: SMP 1 Kudus
		SchoolLat:     getFloat("SCHOOL_LAT", -6.8057694),
		SchoolLng:     getFloat("SCHOOL_LNG", 110.8430016),
		SchoolRadiusM: getFloat("SCHOOL_RADIUS_M", 100),
	}
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}
