package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelationService_Toggles(t *testing.T) {
	env := setupTestEnv(t)
	relations := NewRelationService(env.recipes, env.favorites, env.cart)
	author := env.createUser(t, "author")
	user := env.createUser(t, "user")
	egg := env.createIngredient(t, "Яйцо", "шт")
	recipe := env.createRecipe(t, author, "Омлет", RecipeIngredientInput{ID: egg.ID, Amount: 2})

	type toggle struct {
		add    func(userID, recipeID uint) error
		remove func(userID, recipeID uint) error
		exists error
		absent error
	}
	toggles := map[string]toggle{
		"favorite": {
			add: func(userID, recipeID uint) error {
				_, err := relations.AddFavorite(userID, recipeID)
				return err
			},
			remove: relations.RemoveFavorite,
			exists: ErrAlreadyFavorited,
			absent: ErrNotFavorited,
		},
		"shopping cart": {
			add: func(userID, recipeID uint) error {
				_, err := relations.AddToCart(userID, recipeID)
				return err
			},
			remove: relations.RemoveFromCart,
			exists: ErrAlreadyInCart,
			absent: ErrNotInCart,
		},
	}

	for name, tg := range toggles {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, tg.add(user.ID, recipe.ID+100), ErrRecipeNotFound)
			assert.ErrorIs(t, tg.remove(user.ID, recipe.ID+100), ErrRecipeNotFound)
			assert.ErrorIs(t, tg.remove(user.ID, recipe.ID), tg.absent)

			require.NoError(t, tg.add(user.ID, recipe.ID))
			assert.ErrorIs(t, tg.add(user.ID, recipe.ID), tg.exists)

			require.NoError(t, tg.remove(user.ID, recipe.ID))
			assert.ErrorIs(t, tg.remove(user.ID, recipe.ID), tg.absent)

			// authors may mark their own recipes
			require.NoError(t, tg.add(author.ID, recipe.ID))
		})
	}
}

func TestRelationService_AddReturnsRecipe(t *testing.T) {
	env := setupTestEnv(t)
	relations := NewRelationService(env.recipes, env.favorites, env.cart)
	author := env.createUser(t, "author")
	egg := env.createIngredient(t, "Яйцо", "шт")
	recipe := env.createRecipe(t, author, "Омлет", RecipeIngredientInput{ID: egg.ID, Amount: 2})

	got, err := relations.AddFavorite(author.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, recipe.ID, got.ID)
	assert.Equal(t, "Омлет", got.Name)
	assert.Equal(t, 15, got.CookingTime)
}
