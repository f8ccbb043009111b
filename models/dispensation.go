package models

import "time"

// Status dispensasi. Transisi hanya maju: pending → approved|rejected,
// approved → completed.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCompleted = "completed"
)

type Dispensation struct {
	ID                int64      `json:"id" gorm:"primaryKey;autoIncrement:false"`
	StudentName       string     `json:"studentName" gorm:"size:120;not null"`
	StudentClass      string     `json:"studentClass" gorm:"size:40;not null"`
	Reason            string     `json:"reason" gorm:"type:text;not null"`
	Destination       string     `json:"destination" gorm:"size:200"` // opsional
	DepartureTime     string     `json:"departureTime" gorm:"size:40;not null"`
	ReturnTime        string     `json:"returnTime" gorm:"size:40;not null"`
	PhotoPath         *string    `json:"photoPath"` // /uploads/dispen_<ms><ext>
	PhotoOriginalName *string    `json:"photoOriginalName"`
	TrackingCode      string     `json:"trackingCode" gorm:"size:12;index;not null"`
	Status            string     `json:"status" gorm:"size:20;not null"`
	ApprovedBy        *string    `json:"approvedBy" gorm:"size:120"`
	CreatedAt         time.Time  `json:"createdAt"`
	ReturnedAt        *time.Time `json:"returnedAt"`
}

// ReturnDeadline parses waktu kembali; FE mengirim RFC3339
// (datetime-local → toISOString).
func (d *Dispensation) ReturnDeadline() (time.Time, error) {
	return time.Parse(time.RFC3339, d.ReturnTime)
}
