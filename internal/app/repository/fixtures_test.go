package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/ikkim/foodgram-backend/internal/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB
}

func createUser(t *testing.T, testDB *gorm.DB, username string) *model.User {
	user := &model.User{
		Email:        fmt.Sprintf("%s@example.com", username),
		Username:     username,
		FirstName:    "Имя",
		LastName:     "Фамилия",
		PasswordHash: "hash",
	}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

func createIngredient(t *testing.T, testDB *gorm.DB, name, unit string) *model.Ingredient {
	ingredient := &model.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, testDB.Create(ingredient).Error)
	return ingredient
}

func tagBySlug(t *testing.T, testDB *gorm.DB, slug string) *model.Tag {
	var tag model.Tag
	require.NoError(t, testDB.Where("slug = ?", slug).First(&tag).Error)
	return &tag
}

type line struct {
	ingredient *model.Ingredient
	amount     int
}

func createRecipe(t *testing.T, repo RecipeRepository, author *model.User, name string, createdAt time.Time, tagIDs []uint, lines ...line) *model.Recipe {
	recipe := &model.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Image:       "recipes/1/" + name + ".png",
		Text:        "Описание",
		CookingTime: 10,
		CreatedAt:   createdAt,
	}
	rows := make([]model.RecipeIngredient, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, model.RecipeIngredient{IngredientID: l.ingredient.ID, Amount: l.amount})
	}
	require.NoError(t, repo.CreateAggregate(recipe, tagIDs, rows))
	return recipe
}
