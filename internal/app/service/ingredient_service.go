package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/ikkim/foodgram-backend/internal/app/repository"
	"github.com/ikkim/foodgram-backend/internal/cache"
	"github.com/ikkim/foodgram-backend/pkg/logger"
	"github.com/sahilm/fuzzy"
	"gorm.io/gorm"
)

type IngredientService interface {
	CatalogRefresher
	// ListIngredients filters by a case-insensitive name prefix, then ranks the
	// remainder by fuzzy match against search. Both filters are optional.
	ListIngredients(ctx context.Context, namePrefix, search string) ([]model.Ingredient, error)
	GetIngredient(id uint) (*model.Ingredient, error)
}

type ingredientService struct {
	repo  repository.IngredientRepository
	cache cache.Cache
	ttl   time.Duration
}

func NewIngredientService(repo repository.IngredientRepository, catalogCache cache.Cache, ttl time.Duration) IngredientService {
	return &ingredientService{repo: repo, cache: catalogCache, ttl: ttl}
}

// ingredientNames adapts a slice of ingredients to fuzzy.Source.
type ingredientNames []model.Ingredient

func (n ingredientNames) String(i int) string { return strings.ToLower(n[i].Name) }

func (n ingredientNames) Len() int { return len(n) }

func (s *ingredientService) ListIngredients(ctx context.Context, namePrefix, search string) ([]model.Ingredient, error) {
	all, err := readThrough(ctx, s.cache, cache.KeyIngredients, s.ttl, s.repo.FindAll)
	if err != nil {
		return nil, err
	}

	result := all
	if prefix := strings.ToLower(strings.TrimSpace(namePrefix)); prefix != "" {
		result = make([]model.Ingredient, 0)
		for _, ingredient := range all {
			if strings.HasPrefix(strings.ToLower(ingredient.Name), prefix) {
				result = append(result, ingredient)
			}
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})

	query := strings.ToLower(strings.TrimSpace(search))
	if query == "" {
		return result, nil
	}

	matches := fuzzy.FindFrom(query, ingredientNames(result))
	ranked := make([]model.Ingredient, 0, len(matches))
	for _, match := range matches {
		ranked = append(ranked, result[match.Index])
	}

	logger.Debug("Fuzzy ingredient search", map[string]interface{}{
		"query":   query,
		"matches": len(ranked),
	})
	return ranked, nil
}

func (s *ingredientService) GetIngredient(id uint) (*model.Ingredient, error) {
	ingredient, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIngredientNotFound
		}
		return nil, err
	}
	return ingredient, nil
}

func (s *ingredientService) Refresh(ctx context.Context) error {
	ingredients, err := s.repo.FindAll()
	if err != nil {
		return err
	}
	if err := s.cache.Set(ctx, cache.KeyIngredients, ingredients, s.ttl); err != nil {
		return err
	}

	logger.Info("Ingredient cache refreshed", map[string]interface{}{
		"count": len(ingredients),
	})
	return nil
}
