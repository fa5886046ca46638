// AngelaMos | 2026
// service.go

package reference

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/meetup-backend/internal/core"
)

const (
	categoriesCacheKey = "reference:categories"
	citiesCacheKey     = "reference:cities"
)

// Service serves categories and cities. Both tables are seeded by migration
// and never written at runtime, so the whole list is cached as one value.
type Service struct {
	repo   Repository
	cache  redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

// NewService builds the service. A nil cache or a zero ttl reads straight
// from the repository.
func NewService(
	repo Repository,
	cache redis.Cmdable,
	ttl time.Duration,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	return cached(ctx, s, categoriesCacheKey, s.repo.ListCategories)
}

func (s *Service) Cities(ctx context.Context) ([]City, error) {
	return cached(ctx, s, citiesCacheKey, s.repo.ListCities)
}

func (s *Service) CategoryExists(ctx context.Context, id int64) (bool, error) {
	categories, err := s.Categories(ctx)
	if err != nil {
		return false, err
	}

	for _, c := range categories {
		if c.ID == id {
			return true, nil
		}
	}
	return false, nil
}

// CitiesExist reports whether every id names a known city.
func (s *Service) CitiesExist(ctx context.Context, ids []int64) (bool, error) {
	cities, err := s.Cities(ctx)
	if err != nil {
		return false, err
	}

	known := make(map[int64]struct{}, len(cities))
	for _, c := range cities {
		known[c.ID] = struct{}{}
	}

	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return false, nil
		}
	}
	return true, nil
}

func cached[T any](
	ctx context.Context,
	s *Service,
	key string,
	load func(context.Context) ([]T, error),
) ([]T, error) {
	if s.cache != nil && s.ttl > 0 {
		var items []T
		hit, err := core.GetJSON(ctx, s.cache, key, &items)
		if err != nil {
			s.logger.Warn("reference cache read failed", "key", key, "error", err)
		}
		if hit {
			return items, nil
		}
	}

	items, err := load(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.ttl > 0 {
		if err := core.SetJSON(ctx, s.cache, key, items, s.ttl); err != nil {
			s.logger.Warn("reference cache write failed", "key", key, "error", err)
		}
	}

	return items, nil
}
