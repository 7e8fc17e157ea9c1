package repository

import (
	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/ikkim/foodgram-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeFilter narrows a recipe listing. ViewerID is 0 for anonymous
// requests, in which case the favorite/cart filters are ignored.
type RecipeFilter struct {
	AuthorID         *uint
	TagSlugs         []string
	ViewerID         uint
	IsFavorited      *bool
	IsInShoppingCart *bool
}

type RecipeRepository interface {
	// CreateAggregate inserts the recipe, its tag links and ingredient lines in one transaction.
	CreateAggregate(recipe *model.Recipe, tagIDs []uint, lines []model.RecipeIngredient) error
	// UpdateAggregate saves the recipe row and replaces its ingredient lines in one
	// transaction. Tag links are replaced only when tagIDs is non-nil.
	UpdateAggregate(recipe *model.Recipe, tagIDs []uint, lines []model.RecipeIngredient) error
	FindByID(id uint) (*model.Recipe, error)
	FindPlainByID(id uint) (*model.Recipe, error)
	List(filter RecipeFilter, offset, limit int) ([]model.Recipe, int64, error)
	FindByAuthor(authorID uint, limit int) ([]model.Recipe, error)
	CountByAuthors(authorIDs []uint) (map[uint]int64, error)
	// Delete removes the recipe together with every row that references it.
	Delete(id uint) error
}

type recipeRepository struct {
	db *gorm.DB
}

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func withRecipeRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_tags.tag_id") }).
		Preload("Tags.Tag").
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("Ingredients.Ingredient")
}

func insertTagLinks(tx *gorm.DB, recipeID uint, tagIDs []uint) error {
	if len(tagIDs) == 0 {
		return nil
	}
	links := make([]model.RecipeTag, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		links = append(links, model.RecipeTag{RecipeID: recipeID, TagID: tagID})
	}
	return tx.Omit(clause.Associations).Create(&links).Error
}

func insertLines(tx *gorm.DB, recipeID uint, lines []model.RecipeIngredient) error {
	if len(lines) == 0 {
		return nil
	}
	rows := make([]model.RecipeIngredient, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, model.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: line.IngredientID,
			Amount:       line.Amount,
		})
	}
	return tx.Omit(clause.Associations).Create(&rows).Error
}

func (r *recipeRepository) CreateAggregate(recipe *model.Recipe, tagIDs []uint, lines []model.RecipeIngredient) error {
	logger.Debug("Creating recipe aggregate in database", map[string]interface{}{
		"author_id":   recipe.AuthorID,
		"tags":        len(tagIDs),
		"ingredients": len(lines),
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return err
		}
		if err := insertTagLinks(tx, recipe.ID, tagIDs); err != nil {
			return err
		}
		return insertLines(tx, recipe.ID, lines)
	})
	if err != nil {
		logger.Error("Failed to create recipe aggregate in database", err, map[string]interface{}{
			"author_id": recipe.AuthorID,
		})
		return err
	}

	logger.Debug("Recipe aggregate created in database", map[string]interface{}{
		"recipe_id": recipe.ID,
	})
	return nil
}

func (r *recipeRepository) UpdateAggregate(recipe *model.Recipe, tagIDs []uint, lines []model.RecipeIngredient) error {
	logger.Debug("Updating recipe aggregate in database", map[string]interface{}{
		"recipe_id":    recipe.ID,
		"replace_tags": tagIDs != nil,
		"ingredients":  len(lines),
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(recipe).Error; err != nil {
			return err
		}

		if tagIDs != nil {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&model.RecipeTag{}).Error; err != nil {
				return err
			}
			if err := insertTagLinks(tx, recipe.ID, tagIDs); err != nil {
				return err
			}
		}

		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&model.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return insertLines(tx, recipe.ID, lines)
	})
	if err != nil {
		logger.Error("Failed to update recipe aggregate in database", err, map[string]interface{}{
			"recipe_id": recipe.ID,
		})
		return err
	}
	return nil
}

func (r *recipeRepository) FindByID(id uint) (*model.Recipe, error) {
	logger.Debug("Finding recipe by ID in database", map[string]interface{}{
		"recipe_id": id,
	})

	var recipe model.Recipe
	if err := withRecipeRelations(r.db).First(&recipe, id).Error; err != nil {
		logLookupError("Failed to find recipe by ID in database", err, map[string]interface{}{
			"recipe_id": id,
		})
		return nil, err
	}
	return &recipe, nil
}

// FindPlainByID loads only the recipe row.
func (r *recipeRepository) FindPlainByID(id uint) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := r.db.First(&recipe, id).Error; err != nil {
		logLookupError("Failed to find recipe row in database", err, map[string]interface{}{
			"recipe_id": id,
		})
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) filtered(filter RecipeFilter) *gorm.DB {
	query := r.db.Model(&model.Recipe{})

	if filter.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *filter.AuthorID)
	}

	if len(filter.TagSlugs) > 0 {
		tagged := r.db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs)
		query = query.Where("recipes.id IN (?)", tagged)
	}

	if filter.ViewerID != 0 && filter.IsFavorited != nil {
		favorites := r.db.Model(&model.Favorite{}).Select("recipe_id").Where("user_id = ?", filter.ViewerID)
		if *filter.IsFavorited {
			query = query.Where("recipes.id IN (?)", favorites)
		} else {
			query = query.Where("recipes.id NOT IN (?)", favorites)
		}
	}

	if filter.ViewerID != 0 && filter.IsInShoppingCart != nil {
		cart := r.db.Model(&model.ShoppingCartItem{}).Select("recipe_id").Where("user_id = ?", filter.ViewerID)
		if *filter.IsInShoppingCart {
			query = query.Where("recipes.id IN (?)", cart)
		} else {
			query = query.Where("recipes.id NOT IN (?)", cart)
		}
	}

	return query
}

func (r *recipeRepository) List(filter RecipeFilter, offset, limit int) ([]model.Recipe, int64, error) {
	logger.Debug("Listing recipes in database", map[string]interface{}{
		"author_id": filter.AuthorID,
		"tags":      filter.TagSlugs,
		"viewer_id": filter.ViewerID,
		"offset":    offset,
		"limit":     limit,
	})

	var total int64
	if err := r.filtered(filter).Count(&total).Error; err != nil {
		logger.Error("Failed to count recipes in database", err)
		return nil, 0, err
	}

	var recipes []model.Recipe
	err := withRecipeRelations(r.filtered(filter)).
		Order("recipes.created_at DESC").
		Order("recipes.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&recipes).Error
	if err != nil {
		logger.Error("Failed to list recipes in database", err)
		return nil, 0, err
	}

	logger.Debug("Recipes listed in database", map[string]interface{}{
		"count": len(recipes),
		"total": total,
	})
	return recipes, total, nil
}

// FindByAuthor returns the author's recipes newest first. A negative limit
// means all of them, zero means none.
func (r *recipeRepository) FindByAuthor(authorID uint, limit int) ([]model.Recipe, error) {
	if limit == 0 {
		return []model.Recipe{}, nil
	}
	query := r.db.Where("author_id = ?", authorID).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var recipes []model.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		logger.Error("Failed to find recipes by author in database", err, map[string]interface{}{
			"author_id": authorID,
		})
		return nil, err
	}
	return recipes, nil
}

func (r *recipeRepository) CountByAuthors(authorIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		AuthorID uint
		Total    int64
	}
	err := r.db.Model(&model.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to count recipes by author in database", err)
		return nil, err
	}

	for _, row := range rows {
		counts[row.AuthorID] = row.Total
	}
	return counts, nil
}

func (r *recipeRepository) Delete(id uint) error {
	logger.Debug("Deleting recipe from database", map[string]interface{}{
		"recipe_id": id,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		dependents := []interface{}{
			&model.RecipeShortLink{},
			&model.ShoppingCartItem{},
			&model.Favorite{},
			&model.RecipeTag{},
			&model.RecipeIngredient{},
		}
		for _, dependent := range dependents {
			if err := tx.Where("recipe_id = ?", id).Delete(dependent).Error; err != nil {
				return err
			}
		}

		result := tx.Delete(&model.Recipe{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		logLookupError("Failed to delete recipe from database", err, map[string]interface{}{
			"recipe_id": id,
		})
		return err
	}

	logger.Debug("Recipe deleted from database", map[string]interface{}{
		"recipe_id": id,
	})
	return nil
}
