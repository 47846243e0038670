package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"mertflix/internal/dto"
	"mertflix/internal/entity"
	"mertflix/internal/repository"

	"github.com/google/uuid"
)

const (
	minCommentLength = 2
	maxCommentLength = 1000
)

type CommentService struct {
	comments repository.CommentRepository
	clock    Clock
}

func NewCommentService(comments repository.CommentRepository, clock Clock) *CommentService {
	if clock == nil {
		clock = RealClock{}
	}
	return &CommentService{comments: comments, clock: clock}
}

// List returns the newest comments for a title. viewer may be nil for anonymous callers.
func (s *CommentService) List(ctx context.Context, input dto.CommentQuery, viewer *uuid.UUID) ([]entity.CommentView, error) {
	mediaType, err := parseMediaRef(input.MediaType, input.TMDBID)
	if err != nil {
		return nil, err
	}
	return s.comments.ListForMedia(ctx, mediaType, input.TMDBID, viewer)
}

func (s *CommentService) Create(ctx context.Context, userID uuid.UUID, input dto.CreateCommentRequest) (uuid.UUID, error) {
	mediaType, err := parseMediaRef(input.MediaType, input.TMDBID)
	if err != nil {
		return uuid.Nil, err
	}
	body := strings.TrimSpace(input.Body)
	switch length := utf8.RuneCountInString(body); {
	case length < minCommentLength:
		return uuid.Nil, ErrCommentTooShort
	case length > maxCommentLength:
		return uuid.Nil, ErrCommentTooLong
	}

	now := s.clock.Now()
	comment := &entity.Comment{
		ID:        uuid.New(),
		UserID:    userID,
		MediaType: mediaType,
		TMDBID:    input.TMDBID,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return uuid.Nil, err
	}
	return comment.ID, nil
}

// Delete is only allowed for the comment's author.
func (s *CommentService) Delete(ctx context.Context, userID uuid.UUID, commentID uuid.UUID) error {
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment == nil {
		return ErrNotFound
	}
	if comment.UserID != userID {
		return ErrForbidden
	}
	return s.comments.Delete(ctx, commentID)
}

// Vote records +1 or -1 for the caller; 0 withdraws the caller's vote.
func (s *CommentService) Vote(ctx context.Context, userID uuid.UUID, commentID uuid.UUID, value int) (int, error) {
	if value < -1 || value > 1 {
		return 0, ErrInvalidVote
	}
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return 0, err
	}
	if comment == nil {
		return 0, ErrNotFound
	}

	if value == 0 {
		return 0, s.comments.RemoveVote(ctx, commentID, userID)
	}
	now := s.clock.Now()
	vote := &entity.CommentVote{
		CommentID: commentID,
		UserID:    userID,
		Value:     value,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.comments.UpsertVote(ctx, vote); err != nil {
		return 0, err
	}
	return value, nil
}
