package repository

import (
	"context"
	"errors"

	"mertflix/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	Promote(ctx context.Context, email string, passwordHash string) error
	DeleteUnverifiedByEmail(ctx context.Context, email string) error
	MarkEmailVerified(ctx context.Context, id uuid.UUID) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateEmail(ctx context.Context, id uuid.UUID, email string) error
	UpdateProfile(ctx context.Context, id uuid.UUID, update entity.ProfileUpdate) error
	SetTwoFactor(ctx context.Context, id uuid.UUID, enabled bool) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *userRepository) first(ctx context.Context, query string, args ...any) (*entity.User, error) {
	var user entity.User
	err := conn(ctx, r.db).
		Where(query, args...).
		Take(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Promote inserts a verified user. A conflicting row is only overwritten while it is
// still unverified, so a stale pending flow can never clobber a verified account.
func (r *userRepository) Promote(ctx context.Context, email string, passwordHash string) error {
	user := entity.User{
		ID:              uuid.New(),
		Email:           email,
		PasswordHash:    passwordHash,
		IsEmailVerified: true,
		IsActive:        true,
	}
	return conn(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "email"}},
			DoUpdates: clause.Assignments(map[string]any{
				"password_hash":     gorm.Expr("EXCLUDED.password_hash"),
				"is_email_verified": true,
			}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: "users.is_email_verified = ?", Vars: []any{false}},
			}},
		}).
		Create(&user).Error
}

func (r *userRepository) DeleteUnverifiedByEmail(ctx context.Context, email string) error {
	return conn(ctx, r.db).
		Where("email = ? AND is_email_verified = ?", email, false).
		Delete(&entity.User{}).Error
}

func (r *userRepository) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	return r.updateColumn(ctx, id, "is_email_verified", true)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.updateColumn(ctx, id, "password_hash", passwordHash)
}

func (r *userRepository) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	return r.updateColumn(ctx, id, "email", email)
}

func (r *userRepository) SetTwoFactor(ctx context.Context, id uuid.UUID, enabled bool) error {
	return r.updateColumn(ctx, id, "two_factor_enabled", enabled)
}

func (r *userRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.updateColumn(ctx, id, "is_active", false)
}

// UpdateProfile never replaces an existing username: COALESCE keeps the stored value.
func (r *userRepository) UpdateProfile(ctx context.Context, id uuid.UUID, update entity.ProfileUpdate) error {
	return conn(ctx, r.db).
		Model(&entity.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"username":     gorm.Expr("COALESCE(username, ?)", update.Username),
			"bio":          update.Bio,
			"avatar_style": update.AvatarStyle,
			"avatar_seed":  update.AvatarSeed,
		}).Error
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).
		Where("id = ?", id).
		Delete(&entity.User{}).Error
}

func (r *userRepository) updateColumn(ctx context.Context, id uuid.UUID, column string, value any) error {
	return conn(ctx, r.db).
		Model(&entity.User{}).
		Where("id = ?", id).
		Update(column, value).Error
}
