package entity

import "time"

// PendingRegistration holds a candidate account until its email code is confirmed.
type PendingRegistration struct {
	Email        string `gorm:"type:varchar(255);primaryKey"`
	PasswordHash string `gorm:"type:text;not null"`
	CodeHash     string `gorm:"type:varchar(64);not null"`

	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
