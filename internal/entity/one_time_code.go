package entity

import (
	"time"

	"github.com/google/uuid"
)

type CodeKind string

const (
	EmailVerificationCode CodeKind = "email_verification"
	LoginTwoFactorCode    CodeKind = "login_2fa"
	PasswordResetCode     CodeKind = "password_reset"
	EmailChangeCode       CodeKind = "email_change"
)

var codeTables = map[CodeKind]string{
	EmailVerificationCode: "email_verification_codes",
	LoginTwoFactorCode:    "login_2fa_codes",
	PasswordResetCode:     "password_reset_codes",
	EmailChangeCode:       "email_change_codes",
}

// Table returns the backing table; each kind lives in its own table.
func (k CodeKind) Table() string {
	return codeTables[k]
}

func (k CodeKind) Valid() bool {
	_, ok := codeTables[k]
	return ok
}

// HasTargetEmail reports whether rows of this kind carry the candidate new email.
func (k CodeKind) HasTargetEmail() bool {
	return k == EmailChangeCode
}

type OneTimeCode struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index"`

	CodeHash string  `gorm:"type:varchar(64);not null"`
	NewEmail *string `gorm:"type:varchar(255)"`

	ExpiresAt time.Time `gorm:"not null"`
	UsedAt    *time.Time

	CreatedAt time.Time
}

// Usable mirrors the store predicate: unused and not yet expired.
func (c *OneTimeCode) Usable(now time.Time) bool {
	return c.UsedAt == nil && c.ExpiresAt.After(now)
}

// CodeMatch narrows which row a submitted code may consume.
type CodeMatch struct {
	ID       *uuid.UUID
	UserID   uuid.UUID
	CodeHash string
	NewEmail *string
}
