package notify

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/smpn1kudus/dispensasi-api/models"
)

func sample() *models.Dispensation {
	return &models.Dispensation{
		ID:            1700000000000,
		StudentName:   "Ani",
		StudentClass:  "8A",
		Reason:        "Sakit",
		DepartureTime: "2026-03-02T08:00:00Z",
		ReturnTime:    "2026-03-02T09:00:00Z",
		TrackingCode:  "DSP-ABC123",
		Status:        models.StatusPending,
	}
}

func waitPayload(t *testing.T, ch <-chan webhookPayload) webhookPayload {
	t.Helper()
	select {
	case p := <-ch:
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("webhook tidak pernah dipanggil")
		return webhookPayload{}
	}
}

func TestDiscordNotifier(t *testing.T) {
	got := make(chan webhookPayload, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var p webhookPayload
		_ = json.Unmarshal(raw, &p)
		got <- p
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewDiscordNotifier(srv.URL)

	t.Run("created", func(t *testing.T) {
		n.DispensationCreated(sample())
		p := waitPayload(t, got)
		if assert.Len(t, p.Embeds, 1) {
			e := p.Embeds[0]
			assert.Contains(t, e.Title, "Dispensasi Baru")
			assert.Equal(t, colorPending, e.Color)
			assert.Equal(t, "Ani", e.Fields[0].Value)
			// tujuan kosong ditampilkan sebagai "-"
			assert.Equal(t, "-", e.Fields[3].Value)
		}
	})

	t.Run("approved", func(t *testing.T) {
		d := sample()
		d.Status = models.StatusApproved
		n.DispensationDecided(d, "BuGuru")
		p := waitPayload(t, got)
		if assert.Len(t, p.Embeds, 1) {
			assert.Contains(t, p.Embeds[0].Title, "DISETUJUI")
			assert.Equal(t, colorApproved, p.Embeds[0].Color)
		}
	})

	t.Run("rejected", func(t *testing.T) {
		d := sample()
		d.Status = models.StatusRejected
		n.DispensationDecided(d, "")
		p := waitPayload(t, got)
		if assert.Len(t, p.Embeds, 1) {
			e := p.Embeds[0]
			assert.Contains(t, e.Title, "DITOLAK")
			assert.Equal(t, colorRejected, e.Color)
			// approver kosong → "Guru"
			assert.Equal(t, "Guru", e.Fields[len(e.Fields)-1].Value)
		}
	})

	t.Run("overdue", func(t *testing.T) {
		n.ReturnOverdue(sample())
		p := waitPayload(t, got)
		if assert.Len(t, p.Embeds, 1) {
			assert.Contains(t, p.Embeds[0].Title, "Belum Kembali")
		}
	})
}

func TestDiscordNotifierDisabled(t *testing.T) {
	// URL kosong: no-op, tidak panik
	n := NewDiscordNotifier("")
	n.DispensationCreated(sample())
	n.DispensationDecided(sample(), "BuGuru")
	n.ReturnOverdue(sample())
}
