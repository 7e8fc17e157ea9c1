package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/ikkim/foodgram-backend/internal/app/repository"
	"github.com/ikkim/foodgram-backend/internal/cache"
	"github.com/ikkim/foodgram-backend/internal/db"
	"github.com/ikkim/foodgram-backend/internal/storage"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testMaxUploadBytes = 1 << 20

// testPNG is a 1x1 transparent PNG.
const testPNG = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

type testEnv struct {
	db          *gorm.DB
	cache       *cache.LRUCache
	storage     *storage.LocalStorage
	users       repository.UserRepository
	subs        repository.SubscriptionRepository
	tags        repository.TagRepository
	ingredients repository.IngredientRepository
	recipes     repository.RecipeRepository
	favorites   repository.FavoriteRepository
	cart        repository.CartRepository
	shortLinks  repository.ShortLinkRepository
	images      ImageService
}

func setupTestEnv(t *testing.T) *testEnv {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	lru, err := cache.NewLRUCache(128)
	require.NoError(t, err)

	store, err := storage.NewLocalStorage(t.TempDir(), "http://testserver/media")
	require.NoError(t, err)

	return &testEnv{
		db:          testDB,
		cache:       lru,
		storage:     store,
		users:       repository.NewUserRepository(testDB),
		subs:        repository.NewSubscriptionRepository(testDB),
		tags:        repository.NewTagRepository(testDB),
		ingredients: repository.NewIngredientRepository(testDB),
		recipes:     repository.NewRecipeRepository(testDB),
		favorites:   repository.NewFavoriteRepository(testDB),
		cart:        repository.NewCartRepository(testDB),
		shortLinks:  repository.NewShortLinkRepository(testDB),
		images:      NewImageService(store, testMaxUploadBytes),
	}
}

func (e *testEnv) recipeService() RecipeService {
	return NewRecipeService(e.recipes, e.tags, e.ingredients, e.favorites, e.cart, e.subs, e.images)
}

func (e *testEnv) createUser(t *testing.T, username string) *model.User {
	user := &model.User{
		Email:        fmt.Sprintf("%s@example.com", username),
		Username:     username,
		FirstName:    "Имя",
		LastName:     "Фамилия",
		PasswordHash: "hash",
	}
	require.NoError(t, e.users.Create(user))
	return user
}

func (e *testEnv) createIngredient(t *testing.T, name, unit string) *model.Ingredient {
	ingredient := &model.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, e.db.Create(ingredient).Error)
	return ingredient
}

func (e *testEnv) tagID(t *testing.T, slug string) uint {
	var tag model.Tag
	require.NoError(t, e.db.Where("slug = ?", slug).First(&tag).Error)
	return tag.ID
}

// createRecipe publishes a recipe through the service with one tag and the given lines.
func (e *testEnv) createRecipe(t *testing.T, author *model.User, name string, lines ...RecipeIngredientInput) *model.Recipe {
	tags := []uint{e.tagID(t, "breakfast")}
	recipe, err := e.recipeService().Create(context.Background(), author.ID, RecipeInput{
		Tags:        &tags,
		Ingredients: &lines,
		Name:        strPtr(name),
		Text:        strPtr("Описание"),
		CookingTime: intPtr(15),
		Image:       strPtr(testPNG),
	})
	require.NoError(t, err)
	return recipe.Recipe
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }
