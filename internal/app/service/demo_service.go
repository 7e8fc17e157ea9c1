package service

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"math/rand/v2"

	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/ikkim/foodgram-backend/internal/app/repository"
	"github.com/ikkim/foodgram-backend/pkg/logger"
	"github.com/ikkim/foodgram-backend/pkg/util"
	"gorm.io/gorm"
)

const (
	demoRecipeText  = "Описание шага 1. Описание шага 2. Приятного аппетита!"
	demoImageSize   = 64
	demoRecipeTags  = 2
	demoRecipeItems = 3
)

// DemoAccounts are the accounts created by the demo seed.
var DemoAccounts = []RegisterInput{
	{Email: "manager@foodgram.local", Username: "manager", FirstName: "Менеджер", LastName: "Тестовый", Password: "Manager12345"},
	{Email: "alice@foodgram.local", Username: "alice", FirstName: "Алиса", LastName: "Авторы", Password: "Pass12345!"},
	{Email: "bob@foodgram.local", Username: "bob", FirstName: "Боб", LastName: "Авторы", Password: "Pass12345!"},
	{Email: "carol@foodgram.local", Username: "carol", FirstName: "Кэрол", LastName: "Авторы", Password: "Pass12345!"},
}

// DemoIngredients fill an empty catalog so demo recipes have something to use.
var DemoIngredients = []model.Ingredient{
	{Name: "Яйца", MeasurementUnit: "шт"},
	{Name: "Молоко", MeasurementUnit: "мл"},
	{Name: "Мука", MeasurementUnit: "г"},
	{Name: "Сахар", MeasurementUnit: "г"},
	{Name: "Соль", MeasurementUnit: "г"},
	{Name: "Масло сливочное", MeasurementUnit: "г"},
	{Name: "Курица", MeasurementUnit: "г"},
	{Name: "Рис", MeasurementUnit: "г"},
	{Name: "Помидоры", MeasurementUnit: "шт"},
	{Name: "Огурцы", MeasurementUnit: "шт"},
}

// DemoReport counts what a demo seed run created.
type DemoReport struct {
	Ingredients int64
	Users       int
	Recipes     int
}

// DemoSeeder fills a database with sample accounts and recipes. Running it
// again only adds what is missing.
type DemoSeeder struct {
	auth           AuthService
	users          UserService
	recipes        RecipeService
	userRepo       repository.UserRepository
	recipeRepo     repository.RecipeRepository
	tagRepo        repository.TagRepository
	ingredientRepo repository.IngredientRepository
	rng            *rand.Rand
}

func NewDemoSeeder(
	auth AuthService,
	users UserService,
	recipes RecipeService,
	userRepo repository.UserRepository,
	recipeRepo repository.RecipeRepository,
	tagRepo repository.TagRepository,
	ingredientRepo repository.IngredientRepository,
	rng *rand.Rand,
) *DemoSeeder {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &DemoSeeder{
		auth:           auth,
		users:          users,
		recipes:        recipes,
		userRepo:       userRepo,
		recipeRepo:     recipeRepo,
		tagRepo:        tagRepo,
		ingredientRepo: ingredientRepo,
		rng:            rng,
	}
}

func (s *DemoSeeder) Run(ctx context.Context) (*DemoReport, error) {
	report := &DemoReport{}

	catalog, err := s.ingredientRepo.FindAll()
	if err != nil {
		return nil, err
	}
	if len(catalog) == 0 {
		if report.Ingredients, err = s.ingredientRepo.AddMissing(DemoIngredients); err != nil {
			return nil, fmt.Errorf("add demo ingredients: %w", err)
		}
		if catalog, err = s.ingredientRepo.FindAll(); err != nil {
			return nil, err
		}
	}
	tags, err := s.tagRepo.FindAll()
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 || len(catalog) == 0 {
		return nil, errors.New("demo seed needs at least one tag and one ingredient")
	}

	for i, account := range DemoAccounts {
		user, created, err := s.ensureUser(ctx, account, i)
		if err != nil {
			return nil, fmt.Errorf("seed user %s: %w", account.Username, err)
		}
		if created {
			report.Users++
		}

		counts, err := s.recipeRepo.CountByAuthors([]uint{user.ID})
		if err != nil {
			return nil, err
		}
		if counts[user.ID] > 0 {
			continue
		}
		if err := s.createRecipe(ctx, user, tags, catalog, i); err != nil {
			return nil, fmt.Errorf("seed recipe for %s: %w", account.Username, err)
		}
		report.Recipes++
	}

	logger.Info("Demo data seeded", map[string]interface{}{
		"ingredients": report.Ingredients,
		"users":       report.Users,
		"recipes":     report.Recipes,
	})
	return report, nil
}

func (s *DemoSeeder) ensureUser(ctx context.Context, account RegisterInput, index int) (*model.User, bool, error) {
	existing, err := s.userRepo.FindByEmail(account.Email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	user, err := s.auth.Register(account)
	if err != nil {
		return nil, false, err
	}
	avatar, err := s.placeholder(index)
	if err != nil {
		return nil, false, err
	}
	if user, err = s.users.SetAvatar(ctx, user.ID, avatar); err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func (s *DemoSeeder) createRecipe(ctx context.Context, author *model.User, tags []model.Tag, catalog []model.Ingredient, index int) error {
	tagIDs := make([]uint, 0, demoRecipeTags)
	for _, i := range s.rng.Perm(len(tags))[:min(demoRecipeTags, len(tags))] {
		tagIDs = append(tagIDs, tags[i].ID)
	}
	lines := make([]RecipeIngredientInput, 0, demoRecipeItems)
	for _, i := range s.rng.Perm(len(catalog))[:min(demoRecipeItems, len(catalog))] {
		lines = append(lines, RecipeIngredientInput{
			ID:     catalog[i].ID,
			Amount: (s.rng.IntN(5) + 1) * 50,
		})
	}

	image, err := s.placeholder(len(DemoAccounts) + index)
	if err != nil {
		return err
	}
	name := "Рецепт от " + author.FirstName
	text := demoRecipeText
	cookingTime := 10 + s.rng.IntN(51)

	_, err = s.recipes.Create(ctx, author.ID, RecipeInput{
		Tags:        &tagIDs,
		Ingredients: &lines,
		Name:        &name,
		Text:        &text,
		CookingTime: &cookingTime,
		Image:       &image,
	})
	return err
}

// placeholder returns a solid square whose hue is picked by seq.
func (s *DemoSeeder) placeholder(seq int) (string, error) {
	fill := color.RGBA{
		R: uint8(60 + (seq*67)%180),
		G: uint8(60 + (seq*131)%180),
		B: uint8(60 + (seq*29)%180),
		A: 255,
	}
	data, err := util.PlaceholderPNG(demoImageSize, fill)
	if err != nil {
		return "", err
	}
	return util.EncodeDataURI("image/png", data), nil
}
