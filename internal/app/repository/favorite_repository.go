package repository

import (
	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/ikkim/foodgram-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FavoriteRepository interface {
	Create(item *model.Favorite) error
	Exists(userID, recipeID uint) (bool, error)
	// Delete removes the pair and reports whether a row existed.
	Delete(userID, recipeID uint) (bool, error)
	// RecipeIDs returns which of recipeIDs the user has favorited.
	RecipeIDs(userID uint, recipeIDs []uint) (map[uint]bool, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Create(item *model.Favorite) error {
	logger.Debug("Creating favorite in database", map[string]interface{}{
		"user_id":   item.UserID,
		"recipe_id": item.RecipeID,
	})

	if err := r.db.Omit(clause.Associations).Create(item).Error; err != nil {
		logger.Error("Failed to create favorite in database", err, map[string]interface{}{
			"user_id":   item.UserID,
			"recipe_id": item.RecipeID,
		})
		return err
	}

	logger.Debug("Favorite created in database", map[string]interface{}{
		"favorite_id": item.ID,
		"user_id":     item.UserID,
		"recipe_id":   item.RecipeID,
	})
	return nil
}

func (r *favoriteRepository) Exists(userID, recipeID uint) (bool, error) {
	return pairExists(r.db, &model.Favorite{}, userID, recipeID)
}

func (r *favoriteRepository) Delete(userID, recipeID uint) (bool, error) {
	logger.Debug("Deleting favorite from database", map[string]interface{}{
		"user_id":   userID,
		"recipe_id": recipeID,
	})
	return deletePair(r.db, &model.Favorite{}, userID, recipeID)
}

func (r *favoriteRepository) RecipeIDs(userID uint, recipeIDs []uint) (map[uint]bool, error) {
	return markedRecipeIDs(r.db, &model.Favorite{}, userID, recipeIDs)
}

// Helpers shared by the (user, recipe) relation tables.

func pairExists(db *gorm.DB, table interface{}, userID, recipeID uint) (bool, error) {
	var count int64
	err := db.Model(table).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to check relation in database", err, map[string]interface{}{
			"user_id":   userID,
			"recipe_id": recipeID,
		})
		return false, err
	}
	return count > 0, nil
}

func deletePair(db *gorm.DB, table interface{}, userID, recipeID uint) (bool, error) {
	result := db.Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(table)
	if result.Error != nil {
		logger.Error("Failed to delete relation from database", result.Error, map[string]interface{}{
			"user_id":   userID,
			"recipe_id": recipeID,
		})
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func markedRecipeIDs(db *gorm.DB, table interface{}, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	marked := make(map[uint]bool)
	if userID == 0 || len(recipeIDs) == 0 {
		return marked, nil
	}

	var ids []uint
	err := db.Model(table).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		logger.Error("Failed to load related recipe ids from database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	for _, id := range ids {
		marked[id] = true
	}
	return marked, nil
}
