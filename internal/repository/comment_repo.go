package repository

import (
	"context"
	"errors"

	"mertflix/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const commentPageSize = 200

type CommentRepository interface {
	ListForMedia(ctx context.Context, mediaType entity.MediaType, tmdbID int64, viewer *uuid.UUID) ([]entity.CommentView, error)
	Create(ctx context.Context, comment *entity.Comment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Comment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpsertVote(ctx context.Context, vote *entity.CommentVote) error
	RemoveVote(ctx context.Context, commentID uuid.UUID, userID uuid.UUID) error
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) ListForMedia(
	ctx context.Context,
	mediaType entity.MediaType,
	tmdbID int64,
	viewer *uuid.UUID,
) ([]entity.CommentView, error) {
	var views []entity.CommentView
	err := conn(ctx, r.db).
		Table("comments AS c").
		Select(`c.id, c.body, c.created_at, c.updated_at, c.user_id,
			u.username AS user_username, u.email AS user_email, u.avatar_style, u.avatar_seed,
			COALESCE(SUM(CASE WHEN cv.value = 1 THEN 1 ELSE 0 END), 0)::int AS upvotes,
			COALESCE(SUM(CASE WHEN cv.value = -1 THEN 1 ELSE 0 END), 0)::int AS downvotes,
			COALESCE(MAX(CASE WHEN cv.user_id = ?::uuid THEN cv.value END), 0)::int AS my_vote,
			COALESCE(?::uuid = c.user_id, false) AS can_delete`, viewer, viewer).
		Joins("JOIN users u ON u.id = c.user_id").
		Joins("LEFT JOIN comment_votes cv ON cv.comment_id = c.id").
		Where("c.media_type = ? AND c.tmdb_id = ?", mediaType, tmdbID).
		Group("c.id, u.username, u.email, u.avatar_style, u.avatar_seed, c.user_id").
		Order("c.created_at DESC").
		Limit(commentPageSize).
		Scan(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}

func (r *commentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	return conn(ctx, r.db).Create(comment).Error
}

func (r *commentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Comment, error) {
	var comment entity.Comment
	err := conn(ctx, r.db).Where("id = ?", id).Take(&comment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Where("id = ?", id).Delete(&entity.Comment{}).Error
}

func (r *commentRepository) UpsertVote(ctx context.Context, vote *entity.CommentVote) error {
	return conn(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "comment_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(vote).Error
}

func (r *commentRepository) RemoveVote(ctx context.Context, commentID uuid.UUID, userID uuid.UUID) error {
	return conn(ctx, r.db).
		Where("comment_id = ? AND user_id = ?", commentID, userID).
		Delete(&entity.CommentVote{}).Error
}
