package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SecurityAction string

const (
	RegisterRequested      SecurityAction = "register_requested"
	EmailVerified          SecurityAction = "email_verified"
	LoginSuccess           SecurityAction = "login_success"
	LoginFailed            SecurityAction = "login_failed"
	LoginTwoFactorSent     SecurityAction = "login_2fa_sent"
	LoginTwoFactorFailed   SecurityAction = "login_2fa_failed"
	PasswordResetRequested SecurityAction = "password_reset_requested"
	PasswordReset          SecurityAction = "password_reset"
	PasswordChanged        SecurityAction = "password_changed"
	EmailChangeRequested   SecurityAction = "email_change_requested"
	EmailChanged           SecurityAction = "email_changed"
	TwoFactorToggled       SecurityAction = "two_factor_toggled"
	AccountDeactivated     SecurityAction = "account_deactivated"
	AccountDeleted         SecurityAction = "account_deleted"
)

type SecurityLog struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	UserID *uuid.UUID `gorm:"type:uuid;index"`

	IPAddress *string        `gorm:"type:varchar(45)"`
	Action    SecurityAction `gorm:"type:varchar(40);not null"`

	Metadata datatypes.JSON

	CreatedAt time.Time
}
