package entity

import (
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	MediaType MediaType `gorm:"type:varchar(10);not null"`
	TMDBID    int64     `gorm:"column:tmdb_id;not null"`
	Body      string    `gorm:"type:varchar(1000);not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type CommentVote struct {
	CommentID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Value     int       `gorm:"type:smallint;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CommentView is a comment joined with its author and vote aggregates.
type CommentView struct {
	ID           uuid.UUID
	Body         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	UserID       uuid.UUID
	UserUsername *string
	UserEmail    string
	AvatarStyle  *string
	AvatarSeed   *string
	Upvotes      int
	Downvotes    int
	MyVote       int
	CanDelete    bool
}
