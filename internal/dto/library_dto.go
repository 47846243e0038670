package dto

import (
	"time"

	"mertflix/internal/entity"
)

type LibraryItemRequest struct {
	MediaType string  `json:"mediaType" validate:"required,oneof=movie show"`
	TMDBID    int64   `json:"tmdbId" validate:"required,gt=0"`
	Title     *string `json:"title" validate:"omitempty,max=500"`
	PosterURL *string `json:"posterUrl" validate:"omitempty,max=1000"`
}

// LibraryItemQuery identifies an item in DELETE query parameters.
type LibraryItemQuery struct {
	MediaType string `query:"mediaType" json:"mediaType" validate:"required,oneof=movie show"`
	TMDBID    int64  `query:"tmdbId" json:"tmdbId" validate:"required,gt=0"`
}

type LibraryItemResponse struct {
	MediaType string    `json:"media_type"`
	TMDBID    int64     `json:"tmdb_id"`
	Title     *string   `json:"title"`
	PosterURL *string   `json:"poster_url"`
	CreatedAt time.Time `json:"created_at"`
}

type LibraryListResponse struct {
	Items []LibraryItemResponse `json:"items"`
}

func LibraryListFromEntities(items []entity.LibraryItem) LibraryListResponse {
	responses := make([]LibraryItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, LibraryItemResponse{
			MediaType: string(item.MediaType),
			TMDBID:    item.TMDBID,
			Title:     item.Title,
			PosterURL: item.PosterURL,
			CreatedAt: item.CreatedAt,
		})
	}
	return LibraryListResponse{Items: responses}
}
