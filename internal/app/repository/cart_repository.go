package repository

import (
	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/ikkim/foodgram-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository interface {
	Create(item *model.ShoppingCartItem) error
	Exists(userID, recipeID uint) (bool, error)
	// Delete removes the pair and reports whether a row existed.
	Delete(userID, recipeID uint) (bool, error)
	RecipeIDs(userID uint, recipeIDs []uint) (map[uint]bool, error)
	// AggregateIngredients sums the user's cart lines per (name, unit) in the database.
	AggregateIngredients(userID uint) ([]model.ShoppingListRow, error)
	// IngredientLines returns every ingredient line of every recipe in the user's cart,
	// one row per line with Total holding the line amount.
	IngredientLines(userID uint) ([]model.ShoppingListRow, error)
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) Create(item *model.ShoppingCartItem) error {
	logger.Debug("Creating cart item in database", map[string]interface{}{
		"user_id":   item.UserID,
		"recipe_id": item.RecipeID,
	})

	if err := r.db.Omit(clause.Associations).Create(item).Error; err != nil {
		logger.Error("Failed to create cart item in database", err, map[string]interface{}{
			"user_id":   item.UserID,
			"recipe_id": item.RecipeID,
		})
		return err
	}

	logger.Debug("Cart item created in database", map[string]interface{}{
		"cart_item_id": item.ID,
		"user_id":      item.UserID,
		"recipe_id":    item.RecipeID,
	})
	return nil
}

func (r *cartRepository) Exists(userID, recipeID uint) (bool, error) {
	return pairExists(r.db, &model.ShoppingCartItem{}, userID, recipeID)
}

func (r *cartRepository) Delete(userID, recipeID uint) (bool, error) {
	logger.Debug("Deleting cart item from database", map[string]interface{}{
		"user_id":   userID,
		"recipe_id": recipeID,
	})
	return deletePair(r.db, &model.ShoppingCartItem{}, userID, recipeID)
}

func (r *cartRepository) RecipeIDs(userID uint, recipeIDs []uint) (map[uint]bool, error) {
	return markedRecipeIDs(r.db, &model.ShoppingCartItem{}, userID, recipeIDs)
}

func (r *cartRepository) cartLines(userID uint) *gorm.DB {
	return r.db.Table("shopping_cart_items").
		Joins("JOIN recipe_ingredients ON recipe_ingredients.recipe_id = shopping_cart_items.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("shopping_cart_items.user_id = ?", userID)
}

func (r *cartRepository) AggregateIngredients(userID uint) ([]model.ShoppingListRow, error) {
	logger.Debug("Aggregating shopping list in database", map[string]interface{}{
		"user_id": userID,
	})

	var rows []model.ShoppingListRow
	err := r.cartLines(userID).
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, CAST(SUM(recipe_ingredients.amount) AS BIGINT) AS total").
		Group("ingredients.name, ingredients.measurement_unit").
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to aggregate shopping list in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Shopping list aggregated in database", map[string]interface{}{
		"user_id": userID,
		"rows":    len(rows),
	})
	return rows, nil
}

func (r *cartRepository) IngredientLines(userID uint) ([]model.ShoppingListRow, error) {
	var rows []model.ShoppingListRow
	err := r.cartLines(userID).
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, recipe_ingredients.amount AS total").
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to load shopping cart lines from database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return rows, nil
}
