// Package notify mengirim notifikasi Discord webhook untuk tiap transisi
// dispensasi. Semua pengiriman fire-and-forget: jalan di goroutine sendiri,
// gagal cuma dicatat di log, tidak pernah menggagalkan operasi lifecycle.
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/smpn1kudus/dispensasi-api/models"
)

const (
	colorPending  = 0xf59e0b
	colorApproved = 0x22c55e
	colorRejected = 0xef4444
)

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embedFooter struct {
	Text string `json:"text"`
}

type embed struct {
	Title     string       `json:"title"`
	Color     int          `json:"color"`
	Fields    []embedField `json:"fields"`
	Footer    *embedFooter `json:"footer,omitempty"`
	Timestamp string       `json:"timestamp"`
}

type webhookPayload struct {
	Embeds []embed `json:"embeds"`
}

// DiscordNotifier implementasi dispensation.Notifier di atas satu webhook URL.
// URL kosong berarti notifikasi dimatikan (semua metode jadi no-op).
type DiscordNotifier struct {
	url    string
	client *http.Client
}

func NewDiscordNotifier(url string) *DiscordNotifier {
	return &DiscordNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func formatDateTime(raw string) string {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return t.In(jakarta).Format("02 Jan 2006 15:04")
}

var jakarta = mustLoadJakarta()

func mustLoadJakarta() *time.Location {
	loc, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		return time.UTC
	}
	return loc
}

func (n *DiscordNotifier) DispensationCreated(d *models.Dispensation) {
	e := embed{
		Title: "🔔 Permintaan Dispensasi Baru",
		Color: colorPending,
		Fields: []embedField{
			{Name: "👤 Siswa", Value: d.StudentName, Inline: true},
			{Name: "🏫 Kelas", Value: d.StudentClass, Inline: true},
			{Name: "📋 Alasan", Value: d.Reason},
			{Name: "📍 Tujuan", Value: orDash(d.Destination), Inline: true},
			{Name: "🕐 Waktu Keluar", Value: formatDateTime(d.DepartureTime), Inline: true},
			{Name: "🕑 Waktu Kembali", Value: formatDateTime(d.ReturnTime), Inline: true},
			{Name: "🎫 Kode Tracking", Value: "`" + d.TrackingCode + "`", Inline: true},
		},
		Footer:    &embedFooter{Text: "⏳ Menunggu persetujuan"},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	n.dispatch(e)
}

func (n *DiscordNotifier) DispensationDecided(d *models.Dispensation, approver string) {
	color, emoji, text := colorApproved, "✅", "DISETUJUI"
	if d.Status == models.StatusRejected {
		color, emoji, text = colorRejected, "❌", "DITOLAK"
	}
	if approver == "" {
		approver = "Guru"
	}
	e := embed{
		Title: emoji + " Dispensasi " + text,
		Color: color,
		Fields: []embedField{
			{Name: "👤 Siswa", Value: d.StudentName, Inline: true},
			{Name: "🏫 Kelas", Value: d.StudentClass, Inline: true},
			{Name: "📋 Alasan", Value: d.Reason},
			{Name: "🎫 Kode Tracking", Value: "`" + d.TrackingCode + "`", Inline: true},
			{Name: emoji + " Diproses oleh", Value: approver, Inline: true},
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	n.dispatch(e)
}

func (n *DiscordNotifier) ReturnOverdue(d *models.Dispensation) {
	e := embed{
		Title: "⚠️ Siswa Belum Kembali",
		Color: colorRejected,
		Fields: []embedField{
			{Name: "👤 Siswa", Value: d.StudentName, Inline: true},
			{Name: "🏫 Kelas", Value: d.StudentClass, Inline: true},
			{Name: "🕑 Batas Kembali", Value: formatDateTime(d.ReturnTime), Inline: true},
			{Name: "🎫 Kode Tracking", Value: "`" + d.TrackingCode + "`", Inline: true},
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	n.dispatch(e)
}

// dispatch kirim di goroutine; error ditelan (log saja).
func (n *DiscordNotifier) dispatch(e embed) {
	if n.url == "" {
		return
	}
	go func() {
		if err := n.post(e); err != nil {
			log.Printf("[notify] discord webhook: %v", err)
		}
	}()
}

func (n *DiscordNotifier) post(e embed) error {
	body, err := json.Marshal(webhookPayload{Embeds: []embed{e}})
	if err != nil {
		return err
	}
	resp, err := n.client.Post(n.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("status %d dari webhook", resp.StatusCode)
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
