package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/free-learning-api/internal/models"
	"github.com/noah-isme/free-learning-api/pkg/config"
	appErrors "github.com/noah-isme/free-learning-api/pkg/errors"
)

type classUnitRepository interface {
	ListUnitsByClass(ctx context.Context, schoolYearID, courseClassID, sortBy string) ([]models.ClassUnitRow, error)
}

type browseCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type browseCacheMetrics interface {
	RecordCacheOperation(hit bool)
}

// BrowseService serves the per-class unit listing through a read-through
// Redis cache. The cache key spans year, class and sort; unit edits
// invalidate the whole browse namespace.
type BrowseService struct {
	repo    classUnitRepository
	cache   browseCache
	metrics browseCacheMetrics
	logger  *zap.Logger
	config  config.BrowseConfig
}

// NewBrowseService constructs the service. A nil cache disables caching.
func NewBrowseService(repo classUnitRepository, cache browseCache, metrics browseCacheMetrics, logger *zap.Logger, cfg config.BrowseConfig) *BrowseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BrowseService{repo: repo, cache: cache, metrics: metrics, logger: logger, config: cfg}
}

// UnitsByClass returns a class roster paired with active unit enrolments.
func (s *BrowseService) UnitsByClass(ctx context.Context, schoolYearID, courseClassID, sortBy string) ([]models.ClassUnitRow, error) {
	if sortBy != "unit" {
		sortBy = "student"
	}
	key := fmt.Sprintf("browse:class:%s:%s:%s", schoolYearID, courseClassID, sortBy)

	if s.cacheActive() {
		var cached []models.ClassUnitRow
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			if s.metrics != nil {
				s.metrics.RecordCacheOperation(true)
			}
			return cached, nil
		}
		if s.metrics != nil {
			s.metrics.RecordCacheOperation(false)
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("browse cache read failed", zap.Error(err))
		}
	}

	rows, err := s.repo.ListUnitsByClass(ctx, schoolYearID, courseClassID, sortBy)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class units")
	}

	if s.cacheActive() {
		if err := s.cache.Set(ctx, key, rows, s.config.CacheTTL); err != nil {
			s.logger.Warn("browse cache write failed", zap.Error(err))
		}
	}
	return rows, nil
}

func (s *BrowseService) cacheActive() bool {
	return s.config.CacheEnabled && s.cache != nil
}
