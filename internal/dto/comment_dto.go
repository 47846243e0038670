package dto

import (
	"time"

	"mertflix/internal/entity"
)

type CommentQuery struct {
	MediaType string `query:"mediaType" json:"mediaType" validate:"required,oneof=movie show"`
	TMDBID    int64  `query:"tmdbId" json:"tmdbId" validate:"required,gt=0"`
}

type CreateCommentRequest struct {
	MediaType string `json:"mediaType" validate:"required,oneof=movie show"`
	TMDBID    int64  `json:"tmdbId" validate:"required,gt=0"`
	Body      string `json:"body"`
}

type CreateCommentResponse struct {
	OK bool   `json:"ok"`
	ID string `json:"id"`
}

type VoteRequest struct {
	Value *int `json:"value" validate:"required,oneof=-1 0 1"`
}

type VoteResponse struct {
	OK    bool `json:"ok"`
	Value int  `json:"value"`
}

type CommentResponse struct {
	ID           string    `json:"id"`
	Body         string    `json:"body"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	UserID       string    `json:"user_id"`
	UserUsername *string   `json:"user_username"`
	UserEmail    string    `json:"user_email"`
	AvatarStyle  *string   `json:"avatar_style"`
	AvatarSeed   *string   `json:"avatar_seed"`
	Upvotes      int       `json:"upvotes"`
	Downvotes    int       `json:"downvotes"`
	MyVote       int       `json:"my_vote"`
	CanDelete    bool      `json:"can_delete"`
}

type CommentListResponse struct {
	Comments []CommentResponse `json:"comments"`
}

func CommentListFromViews(views []entity.CommentView) CommentListResponse {
	responses := make([]CommentResponse, 0, len(views))
	for _, view := range views {
		responses = append(responses, CommentResponse{
			ID:           view.ID.String(),
			Body:         view.Body,
			CreatedAt:    view.CreatedAt,
			UpdatedAt:    view.UpdatedAt,
			UserID:       view.UserID.String(),
			UserUsername: view.UserUsername,
			UserEmail:    view.UserEmail,
			AvatarStyle:  view.AvatarStyle,
			AvatarSeed:   view.AvatarSeed,
			Upvotes:      view.Upvotes,
			Downvotes:    view.Downvotes,
			MyVote:       view.MyVote,
			CanDelete:    view.CanDelete,
		})
	}
	return CommentListResponse{Comments: responses}
}
