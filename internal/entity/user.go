package entity

import (
	"time"

	"github.com/google/uuid"
)

const DefaultAvatarStyle = "pixel-art"

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:text;not null"`

	// Username is write-once; the store never overwrites a non-null value.
	Username *string `gorm:"type:varchar(20);uniqueIndex"`
	Bio      string  `gorm:"type:varchar(280);not null"`

	AvatarStyle *string `gorm:"type:varchar(32)"`
	AvatarSeed  *string `gorm:"type:varchar(80)"`

	IsEmailVerified  bool `gorm:"not null"`
	TwoFactorEnabled bool `gorm:"not null"`
	IsActive         bool `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type ProfileUpdate struct {
	Username    *string
	Bio         string
	AvatarStyle string
	AvatarSeed  string
}
