// AngelaMos | 2026
// repository.go

package reference

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/meetup-backend/internal/core"
)

type Repository interface {
	ListCategories(ctx context.Context) ([]Category, error)
	ListCities(ctx context.Context) ([]City, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	err := r.db.SelectContext(
		ctx,
		&categories,
		`SELECT id, name FROM categories ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (r *repository) ListCities(ctx context.Context) ([]City, error) {
	var cities []City
	err := r.db.SelectContext(
		ctx,
		&cities,
		`SELECT id, name FROM cities ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	return cities, nil
}
