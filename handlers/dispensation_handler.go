package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/smpn1kudus/dispensasi-api/dispensation"
	"github.com/smpn1kudus/dispensasi-api/geofence"
	"github.com/smpn1kudus/dispensasi-api/models"
	"github.com/smpn1kudus/dispensasi-api/storage"
	"github.com/smpn1kudus/dispensasi-api/uploads"
)

type DispensationHandler struct {
	svc   *dispensation.Service
	store storage.Store
	saver *uploads.Saver
}

func NewDispensationHandler(svc *dispensation.Service, store storage.Store, saver *uploads.Saver) *DispensationHandler {
	return &DispensationHandler{svc: svc, store: store, saver: saver}
}

// GET /dispensations?trackingCode=DSP-XXXXXX
func (h *DispensationHandler) List(c echo.Context) error {
	code := strings.TrimSpace(c.QueryParam("trackingCode"))
	if code != "" {
		d, err := h.store.DispensationByTrackingCode(c.Request().Context(), code)
		if errors.Is(err, storage.ErrNotFound) {
			return c.JSON(http.StatusOK, []models.Dispensation{})
		}
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]any{"error": "STORAGE_ERROR"})
		}
		return c.JSON(http.StatusOK, []models.Dispensation{*d})
	}

	list, err := h.store.ListDispensations(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "STORAGE_ERROR"})
	}
	return c.JSON(http.StatusOK, list)
}

// GET /dispensations/:id
func (h *DispensationHandler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]any{"error": "NOT_FOUND"})
	}
	d, err := h.store.DispensationByID(c.Request().Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]any{"error": "NOT_FOUND"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "STORAGE_ERROR"})
	}
	return c.JSON(http.StatusOK, d)
}

// POST /dispensations (multipart form, field foto opsional bernama "photo").
// Submit yang ditolak (validasi/rate limit) tidak boleh meninggalkan
// lampiran di disk: file yang terlanjur tersimpan dihapus lagi.
func (h *DispensationHandler) Create(c echo.Context) error {
	identity := c.RealIP()

	in := dispensation.SubmitInput{
		StudentName:   strings.TrimSpace(c.FormValue("studentName")),
		StudentClass:  strings.TrimSpace(c.FormValue("studentClass")),
		Reason:        strings.TrimSpace(c.FormValue("reason")),
		Destination:   strings.TrimSpace(c.FormValue("destination")),
		DepartureTime: strings.TrimSpace(c.FormValue("departureTime")),
		ReturnTime:    strings.TrimSpace(c.FormValue("returnTime")),
	}

	if fh, err := c.FormFile("photo"); err == nil && fh != nil {
		publicPath, original, err := h.saver.Save(fh)
		if errors.Is(err, uploads.ErrInvalidType) || errors.Is(err, uploads.ErrFileTooLarge) {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
		}
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]any{"error": "UPLOAD_FAILED"})
		}
		in.PhotoPath = publicPath
		in.PhotoOriginalName = original
	}

	d, err := h.svc.Submit(c.Request().Context(), identity, in)
	if err != nil {
		// jangan tinggalkan file yatim untuk submit yang gagal
		if in.PhotoPath != "" {
			h.saver.Remove(in.PhotoPath)
		}
		var verr *dispensation.ValidationError
		if errors.As(err, &verr) {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": "MISSING_FIELDS", "field": verr.Field})
		}
		if errors.Is(err, dispensation.ErrRateLimited) {
			return c.JSON(http.StatusTooManyRequests, map[string]any{"error": "RATE_LIMITED"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "STORAGE_ERROR"})
	}
	return c.JSON(http.StatusCreated, d)
}

type patchReq map[string]any

// PATCH /dispensations/:id, merge field. Perubahan status selalu lewat
// lifecycle supaya state machine tidak bisa dilompati dari HTTP:
// pending→approved/rejected via Decide, approved→completed via Complete.
func (h *DispensationHandler) Patch(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]any{"error": "NOT_FOUND"})
	}
	var body patchReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}

	ctx := c.Request().Context()

	if raw, ok := body["status"]; ok {
		// null/angka dsb. tidak boleh jatuh ke merge biasa dan menulis
		// status di luar enum
		status, ok := raw.(string)
		if !ok {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_STATUS"})
		}
		switch status {
		case models.StatusApproved, models.StatusRejected:
			approver, _ := body["approvedBy"].(string)
			d, err := h.svc.Decide(ctx, id, status, approver)
			if err != nil {
				return h.lifecycleError(c, err)
			}
			return c.JSON(http.StatusOK, d)
		case models.StatusCompleted:
			d, err := h.svc.Complete(ctx, id)
			if err != nil {
				return h.lifecycleError(c, err)
			}
			return c.JSON(http.StatusOK, d)
		default:
			return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_STATUS"})
		}
	}

	// merge biasa untuk field non-status; field yang ditetapkan sekali
	// saat create tidak boleh diubah lewat PATCH
	delete(body, "id")
	delete(body, "trackingCode")
	delete(body, "createdAt")
	// milik lifecycle, hanya berubah bersama status
	delete(body, "approvedBy")
	delete(body, "returnedAt")
	d, err := h.store.UpdateDispensation(ctx, id, body)
	if errors.Is(err, storage.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]any{"error": "NOT_FOUND"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "STORAGE_ERROR"})
	}
	return c.JSON(http.StatusOK, d)
}

type returnReq struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// POST /dispensations/:id/return, verifikasi kembali via geofencing.
func (h *DispensationHandler) Return(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]any{"error": "NOT_FOUND"})
	}
	var body returnReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}

	res, err := h.svc.AttemptReturn(c.Request().Context(), id, body.Latitude, body.Longitude)
	if err != nil {
		if errors.Is(err, geofence.ErrInvalidCoordinate) {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_COORDINATE"})
		}
		return h.lifecycleError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *DispensationHandler) lifecycleError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]any{"error": "NOT_FOUND"})
	case errors.Is(err, dispensation.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, map[string]any{"error": "INVALID_TRANSITION"})
	default:
		var verr *dispensation.ValidationError
		if errors.As(err, &verr) {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD", "field": verr.Field})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "STORAGE_ERROR"})
	}
}
