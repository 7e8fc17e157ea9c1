package service

import (
	"context"
	"errors"
	"time"

	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/ikkim/foodgram-backend/internal/app/repository"
	"github.com/ikkim/foodgram-backend/internal/cache"
	"github.com/ikkim/foodgram-backend/pkg/logger"
	"gorm.io/gorm"
)

// CatalogRefresher reloads cached reference data from the database.
type CatalogRefresher interface {
	Refresh(ctx context.Context) error
}

type TagService interface {
	CatalogRefresher
	ListTags(ctx context.Context) ([]model.Tag, error)
	GetTag(id uint) (*model.Tag, error)
}

type tagService struct {
	repo  repository.TagRepository
	cache cache.Cache
	ttl   time.Duration
}

func NewTagService(repo repository.TagRepository, catalogCache cache.Cache, ttl time.Duration) TagService {
	return &tagService{repo: repo, cache: catalogCache, ttl: ttl}
}

// readThrough serves key from the cache, loading and storing it on a miss.
// Cache failures degrade to a database read.
func readThrough[T any](ctx context.Context, c cache.Cache, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	var cached T
	found, err := c.Get(ctx, key, &cached)
	if err != nil {
		logger.Warn("Catalog cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	} else if found {
		return cached, nil
	}

	value, err := load()
	if err != nil {
		return value, err
	}
	if err := c.Set(ctx, key, value, ttl); err != nil {
		logger.Warn("Catalog cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
	return value, nil
}

func (s *tagService) ListTags(ctx context.Context) ([]model.Tag, error) {
	return readThrough(ctx, s.cache, cache.KeyTags, s.ttl, s.repo.FindAll)
}

func (s *tagService) GetTag(id uint) (*model.Tag, error) {
	tag, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	return tag, nil
}

func (s *tagService) Refresh(ctx context.Context) error {
	tags, err := s.repo.FindAll()
	if err != nil {
		return err
	}
	if err := s.cache.Set(ctx, cache.KeyTags, tags, s.ttl); err != nil {
		return err
	}

	logger.Info("Tag cache refreshed", map[string]interface{}{
		"count": len(tags),
	})
	return nil
}
