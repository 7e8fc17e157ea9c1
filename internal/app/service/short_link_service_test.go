package service

import (
	"errors"
	"regexp"
	"testing"

	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sequence returns a generator yielding codes in order, then failing.
func sequence(codes ...string) CodeGenerator {
	i := 0
	return func() (string, error) {
		if i >= len(codes) {
			return "", errors.New("sequence exhausted")
		}
		code := codes[i]
		i++
		return code, nil
	}
}

func TestShortLinkService_GetOrCreate(t *testing.T) {
	env := setupTestEnv(t)
	author := env.createUser(t, "author")
	egg := env.createIngredient(t, "Яйцо", "шт")
	first := env.createRecipe(t, author, "Первый", RecipeIngredientInput{ID: egg.ID, Amount: 1})
	second := env.createRecipe(t, author, "Второй", RecipeIngredientInput{ID: egg.ID, Amount: 1})

	t.Run("Random codes are stable per recipe", func(t *testing.T) {
		links := NewShortLinkService(env.shortLinks, env.recipes, nil)

		code, err := links.GetOrCreate(first.ID)
		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9]{4}$`), code)

		again, err := links.GetOrCreate(first.ID)
		require.NoError(t, err)
		assert.Equal(t, code, again)

		recipeID, err := links.Resolve(code)
		require.NoError(t, err)
		assert.Equal(t, first.ID, recipeID)
	})

	t.Run("Collision is retried", func(t *testing.T) {
		var taken model.RecipeShortLink
		require.NoError(t, env.db.Where("recipe_id = ?", first.ID).First(&taken).Error)

		links := NewShortLinkService(env.shortLinks, env.recipes, sequence(taken.Code, "Zz99"))
		code, err := links.GetOrCreate(second.ID)
		require.NoError(t, err)
		assert.Equal(t, "Zz99", code)
	})

	t.Run("Unknown recipe", func(t *testing.T) {
		links := NewShortLinkService(env.shortLinks, env.recipes, nil)
		_, err := links.GetOrCreate(second.ID + 100)
		assert.ErrorIs(t, err, ErrRecipeNotFound)
	})

	t.Run("Unknown code", func(t *testing.T) {
		links := NewShortLinkService(env.shortLinks, env.recipes, nil)
		_, err := links.Resolve("nope")
		assert.ErrorIs(t, err, ErrShortLinkNotFound)
	})
}

func TestShortLinkService_GivesUpAfterRepeatedCollisions(t *testing.T) {
	env := setupTestEnv(t)
	author := env.createUser(t, "author")
	egg := env.createIngredient(t, "Яйцо", "шт")
	first := env.createRecipe(t, author, "Первый", RecipeIngredientInput{ID: egg.ID, Amount: 1})
	second := env.createRecipe(t, author, "Второй", RecipeIngredientInput{ID: egg.ID, Amount: 1})

	require.NoError(t, env.shortLinks.Create(&model.RecipeShortLink{RecipeID: first.ID, Code: "AAAA"}))

	constant := func() (string, error) { return "AAAA", nil }
	links := NewShortLinkService(env.shortLinks, env.recipes, constant)
	_, err := links.GetOrCreate(second.ID)
	assert.ErrorIs(t, err, ErrShortCodeExhausted)
}
