package entity

import (
	"time"

	"github.com/google/uuid"
)

type MediaType string

const (
	MediaMovie MediaType = "movie"
	MediaShow  MediaType = "show"
)

func (m MediaType) Valid() bool {
	return m == MediaMovie || m == MediaShow
}

// Shelf selects which per-user collection an item belongs to.
type Shelf string

const (
	MyList  Shelf = "list"
	Watched Shelf = "watched"
)

func (s Shelf) Table() string {
	if s == Watched {
		return "watched_items"
	}
	return "list_items"
}

type LibraryItem struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	MediaType MediaType `gorm:"type:varchar(10);primaryKey"`
	TMDBID    int64     `gorm:"column:tmdb_id;primaryKey"`

	Title     *string `gorm:"type:text"`
	PosterURL *string `gorm:"type:text"`

	CreatedAt time.Time
}
