package db

import (
	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/ikkim/foodgram-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Models lists every table in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Subscription{},
		&model.Tag{},
		&model.Ingredient{},
		&model.Recipe{},
		&model.RecipeIngredient{},
		&model.RecipeTag{},
		&model.Favorite{},
		&model.ShoppingCartItem{},
		&model.RecipeShortLink{},
	}
}

// DefaultTags are created on every migration when missing.
var DefaultTags = []model.Tag{
	{Name: "Завтрак", Slug: "breakfast"},
	{Name: "Обед", Slug: "lunch"},
	{Name: "Ужин", Slug: "dinner"},
}

// Migrate runs database migrations
func Migrate() error {
	return MigrateDB(DB)
}

// MigrateDB migrates the given connection and seeds the default tags.
func MigrateDB(conn *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := conn.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := SeedTags(conn, DefaultTags); err != nil {
		logger.Error("Failed to seed initial data during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// SeedTags inserts tags whose slug is not present yet. Existing rows are left untouched.
func SeedTags(conn *gorm.DB, tags []model.Tag) error {
	if len(tags) == 0 {
		return nil
	}

	rows := make([]model.Tag, len(tags))
	copy(rows, tags)

	result := conn.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
	if result.Error != nil {
		return result.Error
	}

	logger.Info("Tags seeded", map[string]interface{}{
		"requested": len(tags),
		"inserted":  result.RowsAffected,
	})
	return nil
}

// SeedIngredients inserts catalog ingredients, skipping (name, unit) pairs that already exist.
func SeedIngredients(conn *gorm.DB, ingredients []model.Ingredient) (int64, error) {
	if len(ingredients) == 0 {
		return 0, nil
	}

	result := conn.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&ingredients, 500)
	if result.Error != nil {
		return 0, result.Error
	}

	logger.Info("Ingredients seeded", map[string]interface{}{
		"requested": len(ingredients),
		"inserted":  result.RowsAffected,
	})
	return result.RowsAffected, nil
}
