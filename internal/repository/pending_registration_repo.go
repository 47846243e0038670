package repository

import (
	"context"
	"time"

	"mertflix/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PendingRegistrationRepository interface {
	Upsert(ctx context.Context, pending *entity.PendingRegistration) error
	Consume(ctx context.Context, email string, codeHash string, now time.Time) (*entity.PendingRegistration, error)
	DeleteByEmail(ctx context.Context, email string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type pendingRegistrationRepository struct {
	db *gorm.DB
}

func NewPendingRegistrationRepository(db *gorm.DB) PendingRegistrationRepository {
	return &pendingRegistrationRepository{db: db}
}

// Upsert keeps one row per email: a repeated registration overwrites password, code and expiry.
func (r *pendingRegistrationRepository) Upsert(ctx context.Context, pending *entity.PendingRegistration) error {
	return conn(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"password_hash", "code_hash", "expires_at", "updated_at"}),
		}).
		Create(pending).Error
}

// Consume deletes the matching, unexpired row and returns it. The DELETE is the claim,
// so concurrent confirmations of the same code cannot both succeed.
func (r *pendingRegistrationRepository) Consume(
	ctx context.Context,
	email string,
	codeHash string,
	now time.Time,
) (*entity.PendingRegistration, error) {
	var rows []entity.PendingRegistration
	err := conn(ctx, r.db).
		Clauses(clause.Returning{}).
		Where("email = ? AND code_hash = ? AND expires_at > ?", email, codeHash, now).
		Delete(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *pendingRegistrationRepository) DeleteByEmail(ctx context.Context, email string) error {
	return conn(ctx, r.db).
		Where("email = ?", email).
		Delete(&entity.PendingRegistration{}).Error
}

func (r *pendingRegistrationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := conn(ctx, r.db).
		Where("expires_at <= ?", now).
		Delete(&entity.PendingRegistration{})
	return result.RowsAffected, result.Error
}
