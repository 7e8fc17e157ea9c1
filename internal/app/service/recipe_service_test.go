package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/ikkim/foodgram-backend/internal/app/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintsPtr(ids ...uint) *[]uint { return &ids }

func linesPtr(lines ...RecipeIngredientInput) *[]RecipeIngredientInput { return &lines }

func TestRecipeService_CreateValidation(t *testing.T) {
	env := setupTestEnv(t)
	recipes := env.recipeService()
	author := env.createUser(t, "author")
	flour := env.createIngredient(t, "Мука", "г")
	milk := env.createIngredient(t, "Молоко", "мл")
	breakfast := env.tagID(t, "breakfast")
	lunch := env.tagID(t, "lunch")

	valid := func() RecipeInput {
		return RecipeInput{
			Tags:        uintsPtr(breakfast),
			Ingredients: linesPtr(RecipeIngredientInput{ID: flour.ID, Amount: 200}),
			Name:        strPtr("Блины"),
			Text:        strPtr("Смешать и пожарить"),
			CookingTime: intPtr(30),
			Image:       strPtr(testPNG),
		}
	}

	tests := []struct {
		name   string
		mutate func(in *RecipeInput)
		want   map[string]interface{}
	}{
		{
			name:   "Missing tags",
			mutate: func(in *RecipeInput) { in.Tags = nil },
			want:   map[string]interface{}{"tags": []string{MsgRequired}},
		},
		{
			name:   "Empty tags",
			mutate: func(in *RecipeInput) { in.Tags = uintsPtr() },
			want:   map[string]interface{}{"tags": []string{MsgRequired}},
		},
		{
			name:   "Duplicate tags",
			mutate: func(in *RecipeInput) { in.Tags = uintsPtr(breakfast, lunch, breakfast) },
			want:   map[string]interface{}{"tags": []string{MsgTagsNotUnique}},
		},
		{
			name:   "Unknown tag",
			mutate: func(in *RecipeInput) { in.Tags = uintsPtr(breakfast, 999) },
			want:   map[string]interface{}{"tags": []string{MsgUnknownTag(999)}},
		},
		{
			name:   "Missing ingredients",
			mutate: func(in *RecipeInput) { in.Ingredients = linesPtr() },
			want:   map[string]interface{}{"ingredients": []string{MsgRequired}},
		},
		{
			name: "Duplicate ingredients",
			mutate: func(in *RecipeInput) {
				in.Ingredients = linesPtr(
					RecipeIngredientInput{ID: flour.ID, Amount: 1},
					RecipeIngredientInput{ID: flour.ID, Amount: 2},
				)
			},
			want: map[string]interface{}{"ingredients": []string{MsgIngredientsUnique}},
		},
		{
			name: "Per-item errors keep positions",
			mutate: func(in *RecipeInput) {
				in.Ingredients = linesPtr(
					RecipeIngredientInput{ID: flour.ID, Amount: 1},
					RecipeIngredientInput{ID: milk.ID, Amount: 0},
					RecipeIngredientInput{ID: 999, Amount: 5},
				)
			},
			want: map[string]interface{}{"ingredients": []ItemErrors{
				{},
				{"amount": {MsgMinValueOne}},
				{"id": {MsgUnknownObject}},
			}},
		},
		{
			name:   "Cooking time is checked alongside other fields",
			mutate: func(in *RecipeInput) { in.CookingTime = intPtr(0); in.Tags = nil },
			want: map[string]interface{}{
				"cooking_time": []string{MsgMinValueOne},
				"tags":         []string{MsgRequired},
			},
		},
		{
			name:   "Name too long",
			mutate: func(in *RecipeInput) { in.Name = strPtr(strings.Repeat("б", 257)) },
			want:   map[string]interface{}{"name": []string{MsgMaxLength(256)}},
		},
		{
			name:   "Missing text and image",
			mutate: func(in *RecipeInput) { in.Text = nil; in.Image = nil },
			want: map[string]interface{}{
				"text":  []string{MsgRequired},
				"image": []string{MsgRequired},
			},
		},
		{
			name:   "Image is not a data URI",
			mutate: func(in *RecipeInput) { in.Image = strPtr("https://example.com/cat.png") },
			want:   map[string]interface{}{"image": []string{MsgInvalidImage}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := valid()
			tt.mutate(&input)

			_, err := recipes.Create(context.Background(), author.ID, input)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.want, verr.Fields)
		})
	}

	var count int64
	require.NoError(t, env.db.Model(&model.Recipe{}).Count(&count).Error)
	assert.Zero(t, count, "rejected requests must not write")
}

func TestRecipeService_CreateAndGet(t *testing.T) {
	env := setupTestEnv(t)
	recipes := env.recipeService()
	author := env.createUser(t, "author")
	viewer := env.createUser(t, "viewer")
	egg := env.createIngredient(t, "Яйцо", "шт")
	flour := env.createIngredient(t, "Мука", "г")

	created, err := recipes.Create(context.Background(), author.ID, RecipeInput{
		Tags: uintsPtr(env.tagID(t, "lunch"), env.tagID(t, "breakfast")),
		Ingredients: linesPtr(
			RecipeIngredientInput{ID: egg.ID, Amount: 2},
			RecipeIngredientInput{ID: flour.ID, Amount: 150},
		),
		Name:        strPtr("Омлет"),
		Text:        strPtr("Взбить"),
		CookingTime: intPtr(10),
		Image:       strPtr(testPNG),
	})
	require.NoError(t, err)

	recipe := created.Recipe
	assert.Equal(t, author.ID, recipe.Author.ID)
	require.Len(t, recipe.Ingredients, 2)
	assert.Equal(t, "Яйцо", recipe.Ingredients[0].Ingredient.Name, "insertion order is kept")
	assert.Equal(t, 150, recipe.Ingredients[1].Amount)
	require.Len(t, recipe.Tags, 2)

	_, err = os.Stat(filepath.Join(env.storage.Root(), filepath.FromSlash(recipe.Image)))
	assert.NoError(t, err, "image is stored")

	got, err := recipes.Get(viewer.ID, recipe.ID)
	require.NoError(t, err)
	assert.False(t, got.IsFavorited)
	assert.False(t, got.AuthorSubscribed)

	_, err = recipes.Get(viewer.ID, recipe.ID+100)
	assert.ErrorIs(t, err, ErrRecipeNotFound)
}

func TestRecipeService_Update(t *testing.T) {
	env := setupTestEnv(t)
	recipes := env.recipeService()
	ctx := context.Background()
	author := env.createUser(t, "author")
	stranger := env.createUser(t, "stranger")
	egg := env.createIngredient(t, "Яйцо", "шт")
	milk := env.createIngredient(t, "Молоко", "мл")

	recipe := env.createRecipe(t, author, "Омлет", RecipeIngredientInput{ID: egg.ID, Amount: 2})
	oldImage := filepath.Join(env.storage.Root(), filepath.FromSlash(recipe.Image))

	t.Run("Unknown recipe", func(t *testing.T) {
		_, err := recipes.Update(ctx, author.ID, recipe.ID+100, RecipeInput{})
		assert.ErrorIs(t, err, ErrRecipeNotFound)
	})

	t.Run("Non-author is rejected before validation", func(t *testing.T) {
		_, err := recipes.Update(ctx, stranger.ID, recipe.ID, RecipeInput{})
		assert.ErrorIs(t, err, ErrNotRecipeAuthor)
	})

	t.Run("Ingredients are required", func(t *testing.T) {
		_, err := recipes.Update(ctx, author.ID, recipe.ID, RecipeInput{Name: strPtr("Новое имя")})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{MsgRequired}, verr.Fields["ingredients"])
	})

	t.Run("Absent tags are kept and lines replaced", func(t *testing.T) {
		updated, err := recipes.Update(ctx, author.ID, recipe.ID, RecipeInput{
			Ingredients: linesPtr(
				RecipeIngredientInput{ID: milk.ID, Amount: 100},
				RecipeIngredientInput{ID: egg.ID, Amount: 3},
			),
			Name: strPtr("Омлет с молоком"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Омлет с молоком", updated.Recipe.Name)
		assert.Equal(t, "Описание", updated.Recipe.Text)
		require.Len(t, updated.Recipe.Tags, 1)
		assert.Equal(t, "breakfast", updated.Recipe.Tags[0].Tag.Slug)
		require.Len(t, updated.Recipe.Ingredients, 2)
		assert.Equal(t, milk.ID, updated.Recipe.Ingredients[0].IngredientID)
	})

	t.Run("Tags and image replaced", func(t *testing.T) {
		updated, err := recipes.Update(ctx, author.ID, recipe.ID, RecipeInput{
			Ingredients: linesPtr(RecipeIngredientInput{ID: egg.ID, Amount: 1}),
			Tags:        uintsPtr(env.tagID(t, "dinner")),
			Image:       strPtr(testPNG),
		})
		require.NoError(t, err)
		require.Len(t, updated.Recipe.Tags, 1)
		assert.Equal(t, "dinner", updated.Recipe.Tags[0].Tag.Slug)
		assert.NotEqual(t, recipe.Image, updated.Recipe.Image)

		_, err = os.Stat(oldImage)
		assert.True(t, os.IsNotExist(err), "replaced image is deleted")
	})
}

func TestRecipeService_Delete(t *testing.T) {
	env := setupTestEnv(t)
	recipes := env.recipeService()
	ctx := context.Background()
	author := env.createUser(t, "author")
	fan := env.createUser(t, "fan")
	egg := env.createIngredient(t, "Яйцо", "шт")
	recipe := env.createRecipe(t, author, "Омлет", RecipeIngredientInput{ID: egg.ID, Amount: 2})

	relations := NewRelationService(env.recipes, env.favorites, env.cart)
	_, err := relations.AddFavorite(fan.ID, recipe.ID)
	require.NoError(t, err)
	_, err = relations.AddToCart(fan.ID, recipe.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, recipes.Delete(ctx, fan.ID, recipe.ID), ErrNotRecipeAuthor)
	require.NoError(t, recipes.Delete(ctx, author.ID, recipe.ID))
	assert.ErrorIs(t, recipes.Delete(ctx, author.ID, recipe.ID), ErrRecipeNotFound)

	_, err = os.Stat(filepath.Join(env.storage.Root(), filepath.FromSlash(recipe.Image)))
	assert.True(t, os.IsNotExist(err))

	for _, table := range []interface{}{&model.Favorite{}, &model.ShoppingCartItem{}, &model.RecipeIngredient{}, &model.RecipeTag{}} {
		var count int64
		require.NoError(t, env.db.Model(table).Count(&count).Error)
		assert.Zero(t, count)
	}
}

func TestRecipeService_ListFlags(t *testing.T) {
	env := setupTestEnv(t)
	recipes := env.recipeService()
	author := env.createUser(t, "author")
	viewer := env.createUser(t, "viewer")
	egg := env.createIngredient(t, "Яйцо", "шт")

	first := env.createRecipe(t, author, "Первый", RecipeIngredientInput{ID: egg.ID, Amount: 1})
	second := env.createRecipe(t, author, "Второй", RecipeIngredientInput{ID: egg.ID, Amount: 1})

	relations := NewRelationService(env.recipes, env.favorites, env.cart)
	_, err := relations.AddFavorite(viewer.ID, first.ID)
	require.NoError(t, err)
	require.NoError(t, env.subs.Create(&model.Subscription{UserID: viewer.ID, AuthorID: author.ID}))

	list, total, err := recipes.List(repository.RecipeFilter{ViewerID: viewer.ID}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].Recipe.ID, "newest first")
	assert.False(t, list[0].IsFavorited)
	assert.True(t, list[1].IsFavorited)
	assert.True(t, list[0].AuthorSubscribed)

	anonymous, _, err := recipes.List(repository.RecipeFilter{}, 0, 10)
	require.NoError(t, err)
	for _, details := range anonymous {
		assert.False(t, details.IsFavorited)
		assert.False(t, details.AuthorSubscribed)
	}
}
