package repository

import (
	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/ikkim/foodgram-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TagRepository interface {
	FindAll() ([]model.Tag, error)
	FindByID(id uint) (*model.Tag, error)
	FindByIDs(ids []uint) ([]model.Tag, error)
}

type tagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) FindAll() ([]model.Tag, error) {
	logger.Debug("Finding all tags in database")

	var tags []model.Tag
	if err := r.db.Order("id").Find(&tags).Error; err != nil {
		logger.Error("Failed to find tags in database", err)
		return nil, err
	}

	logger.Debug("Tags found in database", map[string]interface{}{
		"count": len(tags),
	})
	return tags, nil
}

func (r *tagRepository) FindByID(id uint) (*model.Tag, error) {
	var tag model.Tag
	if err := r.db.First(&tag, id).Error; err != nil {
		logLookupError("Failed to find tag by ID in database", err, map[string]interface{}{
			"tag_id": id,
		})
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) FindByIDs(ids []uint) ([]model.Tag, error) {
	var tags []model.Tag
	if len(ids) == 0 {
		return tags, nil
	}
	if err := r.db.Where("id IN ?", ids).Find(&tags).Error; err != nil {
		logger.Error("Failed to find tags by IDs in database", err, map[string]interface{}{
			"tag_ids": ids,
		})
		return nil, err
	}
	return tags, nil
}

type IngredientRepository interface {
	FindAll() ([]model.Ingredient, error)
	FindByID(id uint) (*model.Ingredient, error)
	FindByIDs(ids []uint) ([]model.Ingredient, error)
	// AddMissing inserts ingredients whose (name, unit) pair is not yet in the
	// catalog and returns how many rows were added.
	AddMissing(ingredients []model.Ingredient) (int64, error)
}

type ingredientRepository struct {
	db *gorm.DB
}

func NewIngredientRepository(db *gorm.DB) IngredientRepository {
	return &ingredientRepository{db: db}
}

// FindAll returns the catalog sorted by name.
func (r *ingredientRepository) FindAll() ([]model.Ingredient, error) {
	logger.Debug("Finding all ingredients in database")

	var ingredients []model.Ingredient
	if err := r.db.Order("name").Order("id").Find(&ingredients).Error; err != nil {
		logger.Error("Failed to find ingredients in database", err)
		return nil, err
	}

	logger.Debug("Ingredients found in database", map[string]interface{}{
		"count": len(ingredients),
	})
	return ingredients, nil
}

func (r *ingredientRepository) FindByID(id uint) (*model.Ingredient, error) {
	var ingredient model.Ingredient
	if err := r.db.First(&ingredient, id).Error; err != nil {
		logLookupError("Failed to find ingredient by ID in database", err, map[string]interface{}{
			"ingredient_id": id,
		})
		return nil, err
	}
	return &ingredient, nil
}

func (r *ingredientRepository) FindByIDs(ids []uint) ([]model.Ingredient, error) {
	var ingredients []model.Ingredient
	if len(ids) == 0 {
		return ingredients, nil
	}
	if err := r.db.Where("id IN ?", ids).Find(&ingredients).Error; err != nil {
		logger.Error("Failed to find ingredients by IDs in database", err, map[string]interface{}{
			"ingredient_ids": ids,
		})
		return nil, err
	}
	return ingredients, nil
}

func (r *ingredientRepository) AddMissing(ingredients []model.Ingredient) (int64, error) {
	if len(ingredients) == 0 {
		return 0, nil
	}
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&ingredients)
	if result.Error != nil {
		logger.Error("Failed to add ingredients to database", result.Error, map[string]interface{}{
			"count": len(ingredients),
		})
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
