package service

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) demoSeeder() *DemoSeeder {
	auth := NewAuthService(e.users, e.cache, testJWTSecret, time.Hour)
	return NewDemoSeeder(
		auth,
		NewUserService(e.users, e.subs, e.recipes, e.images),
		e.recipeService(),
		e.users,
		e.recipes,
		e.tags,
		e.ingredients,
		rand.New(rand.NewPCG(1, 2)),
	)
}

func TestDemoSeeder_Run(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	report, err := env.demoSeeder().Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(DemoIngredients)), report.Ingredients)
	assert.Equal(t, len(DemoAccounts), report.Users)
	assert.Equal(t, len(DemoAccounts), report.Recipes)

	alice, err := env.users.FindByEmail("alice@foodgram.local")
	require.NoError(t, err)
	require.NotNil(t, alice.Avatar)

	recipes, err := env.recipes.FindByAuthor(alice.ID, AllRecipes)
	require.NoError(t, err)
	require.Len(t, recipes, 1)

	recipe, err := env.recipes.FindByID(recipes[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Рецепт от Алиса", recipe.Name)
	assert.Equal(t, demoRecipeText, recipe.Text)
	assert.GreaterOrEqual(t, recipe.CookingTime, 10)
	assert.LessOrEqual(t, recipe.CookingTime, 60)
	assert.Len(t, recipe.Tags, demoRecipeTags)
	require.Len(t, recipe.Ingredients, demoRecipeItems)
	for _, line := range recipe.Ingredients {
		assert.Zero(t, line.Amount%50)
		assert.GreaterOrEqual(t, line.Amount, 50)
		assert.LessOrEqual(t, line.Amount, 250)
	}

	// demo accounts can log in with the published passwords
	auth := NewAuthService(env.users, env.cache, testJWTSecret, time.Hour)
	_, err = auth.Login("alice@foodgram.local", "Pass12345!")
	assert.NoError(t, err)
}

func TestDemoSeeder_RunIsIdempotent(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.demoSeeder().Run(ctx)
	require.NoError(t, err)

	report, err := env.demoSeeder().Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, &DemoReport{}, report)

	_, total, err := env.users.List(0, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(len(DemoAccounts)), total)
}

func TestDemoSeeder_KeepsExistingCatalog(t *testing.T) {
	env := setupTestEnv(t)
	salt := env.createIngredient(t, "соль поваренная", "г")

	report, err := env.demoSeeder().Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Ingredients)

	all, err := env.ingredients.FindAll()
	require.NoError(t, err)
	require.Len(t, all, 1)

	bob, err := env.users.FindByEmail("bob@foodgram.local")
	require.NoError(t, err)
	recipes, err := env.recipes.FindByAuthor(bob.ID, AllRecipes)
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	recipe, err := env.recipes.FindByID(recipes[0].ID)
	require.NoError(t, err)
	require.Len(t, recipe.Ingredients, 1)
	assert.Equal(t, salt.ID, recipe.Ingredients[0].IngredientID)
}
