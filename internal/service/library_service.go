package service

import (
	"context"
	"strings"

	"mertflix/internal/dto"
	"mertflix/internal/entity"
	"mertflix/internal/repository"

	"github.com/google/uuid"
)

// LibraryService manages the per-user "my list" and watched shelves.
type LibraryService struct {
	items repository.LibraryRepository
	clock Clock
}

func NewLibraryService(items repository.LibraryRepository, clock Clock) *LibraryService {
	if clock == nil {
		clock = RealClock{}
	}
	return &LibraryService{items: items, clock: clock}
}

func (s *LibraryService) List(ctx context.Context, shelf entity.Shelf, userID uuid.UUID) ([]entity.LibraryItem, error) {
	return s.items.List(ctx, shelf, userID)
}

// Add upserts the item; a missing title or poster keeps whatever was stored before.
func (s *LibraryService) Add(ctx context.Context, shelf entity.Shelf, userID uuid.UUID, input dto.LibraryItemRequest) error {
	mediaType, err := parseMediaRef(input.MediaType, input.TMDBID)
	if err != nil {
		return err
	}
	item := &entity.LibraryItem{
		UserID:    userID,
		MediaType: mediaType,
		TMDBID:    input.TMDBID,
		Title:     nonEmpty(input.Title),
		PosterURL: nonEmpty(input.PosterURL),
		CreatedAt: s.clock.Now(),
	}
	return s.items.Upsert(ctx, shelf, item)
}

func (s *LibraryService) Remove(ctx context.Context, shelf entity.Shelf, userID uuid.UUID, input dto.LibraryItemQuery) error {
	mediaType, err := parseMediaRef(input.MediaType, input.TMDBID)
	if err != nil {
		return err
	}
	return s.items.Remove(ctx, shelf, userID, mediaType, input.TMDBID)
}

func parseMediaRef(raw string, tmdbID int64) (entity.MediaType, error) {
	mediaType := entity.MediaType(strings.TrimSpace(raw))
	if !mediaType.Valid() {
		return "", ErrInvalidMediaType
	}
	if tmdbID <= 0 {
		return "", ErrInvalidTMDBID
	}
	return mediaType, nil
}

func nonEmpty(value *string) *string {
	if value == nil || *value == "" {
		return nil
	}
	return value
}
