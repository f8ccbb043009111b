package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/smpn1kudus/dispensasi-api/models"
)

// Endpoint keputusan untuk guru yang login (grup /teacher, JWT).
// Nama approver diambil dari claim token, bukan dari body.

// POST /teacher/dispensations/:id/approve
func (h *DispensationHandler) Approve(c echo.Context) error {
	return h.decide(c, models.StatusApproved)
}

// POST /teacher/dispensations/:id/reject
func (h *DispensationHandler) Reject(c echo.Context) error {
	return h.decide(c, models.StatusRejected)
}

func (h *DispensationHandler) decide(c echo.Context, decision string) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]any{"error": "NOT_FOUND"})
	}
	approver, _ := c.Get("name").(string)
	if approver == "" {
		approver = "Guru"
	}
	d, err := h.svc.Decide(c.Request().Context(), id, decision, approver)
	if err != nil {
		return h.lifecycleError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}
