package models

import "time"

type Teacher struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Username  string    `json:"username" gorm:"uniqueIndex;size:60;not null"`
	Password  string    `json:"-" gorm:"not null"` // bcrypt hash; baris lama dari db.json masih plaintext
	Name      string    `json:"name" gorm:"size:120"`
	Role      string    `json:"role" gorm:"size:20;not null"` // "guru" | "admin"
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
