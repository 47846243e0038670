package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mertflix/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OneTimeCodeRepository interface {
	Issue(ctx context.Context, kind entity.CodeKind, code *entity.OneTimeCode) error
	Consume(ctx context.Context, kind entity.CodeKind, match entity.CodeMatch, now time.Time) (*entity.OneTimeCode, error)
}

type oneTimeCodeRepository struct {
	db *gorm.DB
}

func NewOneTimeCodeRepository(db *gorm.DB) OneTimeCodeRepository {
	return &oneTimeCodeRepository{db: db}
}

// Issue inserts a new code row. Earlier unused codes of the same kind stay valid.
func (r *oneTimeCodeRepository) Issue(ctx context.Context, kind entity.CodeKind, code *entity.OneTimeCode) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown code kind %q", kind)
	}
	if code.ID == uuid.Nil {
		code.ID = uuid.New()
	}
	query := conn(ctx, r.db).Table(kind.Table())
	if !kind.HasTargetEmail() {
		query = query.Omit("new_email")
	}
	return query.Create(code).Error
}

// Consume marks the newest matching usable code as used and returns it, or nil when
// nothing matches. Selection and the used_at flip happen in one UPDATE whose outer
// predicate re-checks used_at IS NULL, so among concurrent callers presenting the
// same code exactly one observes a returned row.
func (r *oneTimeCodeRepository) Consume(
	ctx context.Context,
	kind entity.CodeKind,
	match entity.CodeMatch,
	now time.Time,
) (*entity.OneTimeCode, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown code kind %q", kind)
	}
	table := kind.Table()

	conditions := []string{"user_id = ?", "code_hash = ?", "used_at IS NULL", "expires_at > ?"}
	args := []any{now, match.UserID, match.CodeHash, now}
	if match.ID != nil {
		conditions = append(conditions, "id = ?")
		args = append(args, *match.ID)
	}
	if kind.HasTargetEmail() && match.NewEmail != nil {
		conditions = append(conditions, "new_email = ?")
		args = append(args, *match.NewEmail)
	}

	columns := "id, user_id, code_hash, expires_at, used_at, created_at"
	if kind.HasTargetEmail() {
		columns += ", new_email"
	}

	sql := "UPDATE " + table + " SET used_at = ?" +
		" WHERE id = (SELECT id FROM " + table +
		" WHERE " + strings.Join(conditions, " AND ") +
		" ORDER BY created_at DESC LIMIT 1)" +
		" AND used_at IS NULL" +
		" RETURNING " + columns

	var rows []entity.OneTimeCode
	if err := conn(ctx, r.db).Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}
