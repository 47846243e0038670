package repository

import (
	"context"

	"mertflix/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LibraryRepository interface {
	List(ctx context.Context, shelf entity.Shelf, userID uuid.UUID) ([]entity.LibraryItem, error)
	Upsert(ctx context.Context, shelf entity.Shelf, item *entity.LibraryItem) error
	Remove(ctx context.Context, shelf entity.Shelf, userID uuid.UUID, mediaType entity.MediaType, tmdbID int64) error
}

type libraryRepository struct {
	db *gorm.DB
}

func NewLibraryRepository(db *gorm.DB) LibraryRepository {
	return &libraryRepository{db: db}
}

func (r *libraryRepository) List(ctx context.Context, shelf entity.Shelf, userID uuid.UUID) ([]entity.LibraryItem, error) {
	var items []entity.LibraryItem
	err := conn(ctx, r.db).
		Table(shelf.Table()).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Upsert keeps the stored title and poster when the new values are null.
func (r *libraryRepository) Upsert(ctx context.Context, shelf entity.Shelf, item *entity.LibraryItem) error {
	table := shelf.Table()
	return conn(ctx, r.db).
		Table(table).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "media_type"}, {Name: "tmdb_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"title":      gorm.Expr("COALESCE(EXCLUDED.title, " + table + ".title)"),
				"poster_url": gorm.Expr("COALESCE(EXCLUDED.poster_url, " + table + ".poster_url)"),
			}),
		}).
		Create(item).Error
}

func (r *libraryRepository) Remove(
	ctx context.Context,
	shelf entity.Shelf,
	userID uuid.UUID,
	mediaType entity.MediaType,
	tmdbID int64,
) error {
	return conn(ctx, r.db).
		Table(shelf.Table()).
		Where("user_id = ? AND media_type = ? AND tmdb_id = ?", userID, mediaType, tmdbID).
		Delete(&entity.LibraryItem{}).Error
}
