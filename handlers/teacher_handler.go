package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/smpn1kudus/dispensasi-api/models"
	"github.com/smpn1kudus/dispensasi-api/storage"
)

type TeacherHandler struct {
	store storage.Store
}

func NewTeacherHandler(store storage.Store) *TeacherHandler {
	return &TeacherHandler{store: store}
}

// GET /teachers?username=&password=
// Tanpa query: semua guru. Dengan kredensial: nol-atau-satu baris, dipakai
// FE sebagai cek login. Password tidak pernah ikut ter-serialize (json:"-").
func (h *TeacherHandler) List(c echo.Context) error {
	username := strings.TrimSpace(c.QueryParam("username"))
	password := c.QueryParam("password")

	teachers, err := h.store.ListTeachers(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "STORAGE_ERROR"})
	}

	if username != "" && password != "" {
		out := []models.Teacher{}
		for _, t := range teachers {
			if t.Username == username && passwordMatches(t.Password, password) {
				out = append(out, t)
				break
			}
		}
		return c.JSON(http.StatusOK, out)
	}

	return c.JSON(http.StatusOK, teachers)
}

// passwordMatches menerima hash bcrypt maupun plaintext lama dari db.json.
func passwordMatches(stored, given string) bool {
	if strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return stored == given
}
