package repository

import (
	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/ikkim/foodgram-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ShortLinkRepository interface {
	Create(link *model.RecipeShortLink) error
	FindByRecipeID(recipeID uint) (*model.RecipeShortLink, error)
	FindByCode(code string) (*model.RecipeShortLink, error)
}

type shortLinkRepository struct {
	db *gorm.DB
}

func NewShortLinkRepository(db *gorm.DB) ShortLinkRepository {
	return &shortLinkRepository{db: db}
}

// Create inserts the link. Unique violations on code or recipe_id surface
// as gorm.ErrDuplicatedKey and are resolved by the caller.
func (r *shortLinkRepository) Create(link *model.RecipeShortLink) error {
	logger.Debug("Creating short link in database", map[string]interface{}{
		"recipe_id": link.RecipeID,
		"code":      link.Code,
	})

	if err := r.db.Omit(clause.Associations).Create(link).Error; err != nil {
		logger.Debug("Short link insert rejected", map[string]interface{}{
			"recipe_id": link.RecipeID,
			"code":      link.Code,
			"error":     err.Error(),
		})
		return err
	}
	return nil
}

func (r *shortLinkRepository) FindByRecipeID(recipeID uint) (*model.RecipeShortLink, error) {
	var link model.RecipeShortLink
	if err := r.db.Where("recipe_id = ?", recipeID).First(&link).Error; err != nil {
		logLookupError("Failed to find short link by recipe in database", err, map[string]interface{}{
			"recipe_id": recipeID,
		})
		return nil, err
	}
	return &link, nil
}

func (r *shortLinkRepository) FindByCode(code string) (*model.RecipeShortLink, error) {
	var link model.RecipeShortLink
	if err := r.db.Where("code = ?", code).First(&link).Error; err != nil {
		logLookupError("Failed to find short link by code in database", err, map[string]interface{}{
			"code": code,
		})
		return nil, err
	}
	return &link, nil
}
