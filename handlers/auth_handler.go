package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/smpn1kudus/dispensasi-api/storage"
)

type AuthHandler struct {
	store     storage.Store
	jwtSecret string
}

func NewAuthHandler(store storage.Store, secret string) *AuthHandler {
	return &AuthHandler{store: store, jwtSecret: secret}
}

func (h *AuthHandler) signJWT(sub int64, role, name string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"name": name,
		"exp":  time.Now().Add(ttl).Unix(),
		"iat":  time.Now().Unix(),
	}
	tk := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tk.SignedString([]byte(h.jwtSecret))
}

type TeacherLoginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// POST /auth/teacher/login
func (h *AuthHandler) TeacherLogin(c echo.Context) error {
	var req TeacherLoginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}

	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "MISSING_FIELDS"})
	}

	teachers, err := h.store.ListTeachers(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "STORAGE_ERROR"})
	}
	for _, t := range teachers {
		if t.Username != username || !passwordMatches(t.Password, req.Password) {
			continue
		}
		token, err := h.signJWT(t.ID, t.Role, t.Name, 7*24*time.Hour)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]any{"error": "TOKEN_GEN_FAILED"})
		}
		return c.JSON(http.StatusOK, map[string]any{
			"token": token,
			"user":  map[string]any{"id": t.ID, "role": t.Role, "username": t.Username, "name": t.Name},
		})
	}
	return c.JSON(http.StatusUnauthorized, map[string]any{"error": "INVALID_CREDENTIALS"})
}
