package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/ikkim/foodgram-backend/internal/app/repository"
	"github.com/ikkim/foodgram-backend/pkg/logger"
	"github.com/ikkim/foodgram-backend/pkg/util"
	"gorm.io/gorm"
)

const maxRecipeNameLength = 256

// RecipeIngredientInput is one requested ingredient line.
type RecipeIngredientInput struct {
	ID     uint `json:"id"`
	Amount int  `json:"amount"`
}

// RecipeInput is a create or partial-update request. A nil field was not sent.
type RecipeInput struct {
	Tags        *[]uint
	Ingredients *[]RecipeIngredientInput
	Name        *string
	Text        *string
	CookingTime *int
	Image       *string
}

// RecipeDetails is a recipe with the viewer-dependent flags resolved.
type RecipeDetails struct {
	Recipe           *model.Recipe
	IsFavorited      bool
	IsInShoppingCart bool
	AuthorSubscribed bool
}

type RecipeService interface {
	Create(ctx context.Context, authorID uint, input RecipeInput) (*RecipeDetails, error)
	Update(ctx context.Context, userID, recipeID uint, input RecipeInput) (*RecipeDetails, error)
	Delete(ctx context.Context, userID, recipeID uint) error
	Get(viewerID, recipeID uint) (*RecipeDetails, error)
	List(filter repository.RecipeFilter, offset, limit int) ([]RecipeDetails, int64, error)
}

type recipeService struct {
	recipeRepo     repository.RecipeRepository
	tagRepo        repository.TagRepository
	ingredientRepo repository.IngredientRepository
	favoriteRepo   repository.FavoriteRepository
	cartRepo       repository.CartRepository
	subRepo        repository.SubscriptionRepository
	images         ImageService
}

func NewRecipeService(
	recipeRepo repository.RecipeRepository,
	tagRepo repository.TagRepository,
	ingredientRepo repository.IngredientRepository,
	favoriteRepo repository.FavoriteRepository,
	cartRepo repository.CartRepository,
	subRepo repository.SubscriptionRepository,
	images ImageService,
) RecipeService {
	return &recipeService{
		recipeRepo:     recipeRepo,
		tagRepo:        tagRepo,
		ingredientRepo: ingredientRepo,
		favoriteRepo:   favoriteRepo,
		cartRepo:       cartRepo,
		subRepo:        subRepo,
		images:         images,
	}
}

// validatedRecipe is the normalized result of a successful validation.
type validatedRecipe struct {
	tagIDs []uint // nil keeps the stored tags on update
	lines  []model.RecipeIngredient
	image  *util.DecodedImage
}

func (s *recipeService) validate(input RecipeInput, creating bool) (*validatedRecipe, error) {
	verr := NewValidationError()
	out := &validatedRecipe{}

	var err error
	if out.lines, err = s.validateIngredients(input.Ingredients, verr); err != nil {
		return nil, err
	}
	if input.Tags != nil || creating {
		if out.tagIDs, err = s.validateTags(input.Tags, verr); err != nil {
			return nil, err
		}
	}

	if input.CookingTime == nil {
		if creating {
			verr.Add("cooking_time", MsgRequired)
		}
	} else if *input.CookingTime < 1 {
		verr.Add("cooking_time", MsgMinValueOne)
	}

	switch {
	case input.Name == nil:
		if creating {
			verr.Add("name", MsgRequired)
		}
	case strings.TrimSpace(*input.Name) == "":
		verr.Add("name", MsgBlank)
	case utf8.RuneCountInString(*input.Name) > maxRecipeNameLength:
		verr.Add("name", MsgMaxLength(maxRecipeNameLength))
	}

	switch {
	case input.Text == nil:
		if creating {
			verr.Add("text", MsgRequired)
		}
	case strings.TrimSpace(*input.Text) == "":
		verr.Add("text", MsgBlank)
	}

	switch {
	case input.Image == nil || *input.Image == "":
		if creating || input.Image != nil {
			verr.Add("image", MsgRequired)
		}
	default:
		img, msg := s.images.Decode(*input.Image)
		if img == nil {
			verr.Add("image", msg)
		}
		out.image = img
	}

	if verr.HasErrors() {
		return nil, verr
	}
	return out, nil
}

func (s *recipeService) validateIngredients(input *[]RecipeIngredientInput, verr *ValidationError) ([]model.RecipeIngredient, error) {
	if input == nil || len(*input) == 0 {
		verr.Add("ingredients", MsgRequired)
		return nil, nil
	}
	items := *input

	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	known, err := s.ingredientRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	exists := make(map[uint]bool, len(known))
	for _, ingredient := range known {
		exists[ingredient.ID] = true
	}

	itemErrors := make([]ItemErrors, len(items))
	failed := false
	for i, item := range items {
		itemErrors[i] = ItemErrors{}
		if !exists[item.ID] {
			itemErrors[i]["id"] = []string{MsgUnknownObject}
			failed = true
		}
		if item.Amount < 1 {
			itemErrors[i]["amount"] = []string{MsgMinValueOne}
			failed = true
		}
	}
	if failed {
		verr.SetItems("ingredients", itemErrors)
		return nil, nil
	}

	seen := make(map[uint]bool, len(items))
	lines := make([]model.RecipeIngredient, 0, len(items))
	for _, item := range items {
		if seen[item.ID] {
			verr.Add("ingredients", MsgIngredientsUnique)
			return nil, nil
		}
		seen[item.ID] = true
		lines = append(lines, model.RecipeIngredient{IngredientID: item.ID, Amount: item.Amount})
	}
	return lines, nil
}

func (s *recipeService) validateTags(input *[]uint, verr *ValidationError) ([]uint, error) {
	if input == nil || len(*input) == 0 {
		verr.Add("tags", MsgRequired)
		return nil, nil
	}
	ids := *input

	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			verr.Add("tags", MsgTagsNotUnique)
			return nil, nil
		}
		seen[id] = true
	}

	known, err := s.tagRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	exists := make(map[uint]bool, len(known))
	for _, tag := range known {
		exists[tag.ID] = true
	}
	for _, id := range ids {
		if !exists[id] {
			verr.Add("tags", MsgUnknownTag(id))
			return nil, nil
		}
	}
	return append([]uint(nil), ids...), nil
}

func (s *recipeService) Create(ctx context.Context, authorID uint, input RecipeInput) (*RecipeDetails, error) {
	valid, err := s.validate(input, true)
	if err != nil {
		return nil, err
	}

	key, err := s.images.StoreRecipeImage(ctx, authorID, valid.image)
	if err != nil {
		return nil, err
	}

	recipe := &model.Recipe{
		AuthorID:    authorID,
		Name:        *input.Name,
		Text:        *input.Text,
		CookingTime: *input.CookingTime,
		Image:       key,
	}
	if err := s.recipeRepo.CreateAggregate(recipe, valid.tagIDs, valid.lines); err != nil {
		s.images.Remove(ctx, key)
		return nil, err
	}

	logger.Info("Recipe created", map[string]interface{}{
		"recipe_id": recipe.ID,
		"author_id": authorID,
	})
	return s.Get(authorID, recipe.ID)
}

// authorizedRecipe loads the recipe row and checks that userID wrote it.
func (s *recipeService) authorizedRecipe(userID, recipeID uint) (*model.Recipe, error) {
	recipe, err := s.recipeRepo.FindPlainByID(recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	if recipe.AuthorID != userID {
		logger.Warn("Recipe change by non-author rejected", map[string]interface{}{
			"recipe_id": recipeID,
			"user_id":   userID,
		})
		return nil, ErrNotRecipeAuthor
	}
	return recipe, nil
}

func (s *recipeService) Update(ctx context.Context, userID, recipeID uint, input RecipeInput) (*RecipeDetails, error) {
	recipe, err := s.authorizedRecipe(userID, recipeID)
	if err != nil {
		return nil, err
	}

	valid, err := s.validate(input, false)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		recipe.Name = *input.Name
	}
	if input.Text != nil {
		recipe.Text = *input.Text
	}
	if input.CookingTime != nil {
		recipe.CookingTime = *input.CookingTime
	}

	oldImage := ""
	if valid.image != nil {
		key, err := s.images.StoreRecipeImage(ctx, userID, valid.image)
		if err != nil {
			return nil, err
		}
		oldImage, recipe.Image = recipe.Image, key
	}

	if err := s.recipeRepo.UpdateAggregate(recipe, valid.tagIDs, valid.lines); err != nil {
		if oldImage != "" {
			s.images.Remove(ctx, recipe.Image)
		}
		return nil, err
	}
	s.images.Remove(ctx, oldImage)

	logger.Info("Recipe updated", map[string]interface{}{
		"recipe_id":     recipeID,
		"replaced_tags": valid.tagIDs != nil,
		"new_image":     oldImage != "",
	})
	return s.Get(userID, recipeID)
}

func (s *recipeService) Delete(ctx context.Context, userID, recipeID uint) error {
	recipe, err := s.authorizedRecipe(userID, recipeID)
	if err != nil {
		return err
	}

	if err := s.recipeRepo.Delete(recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecipeNotFound
		}
		return err
	}
	s.images.Remove(ctx, recipe.Image)

	logger.Info("Recipe deleted", map[string]interface{}{
		"recipe_id": recipeID,
		"author_id": userID,
	})
	return nil
}

func (s *recipeService) Get(viewerID, recipeID uint) (*RecipeDetails, error) {
	recipe, err := s.recipeRepo.FindByID(recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	details, err := s.decorate(viewerID, []model.Recipe{*recipe})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func (s *recipeService) List(filter repository.RecipeFilter, offset, limit int) ([]RecipeDetails, int64, error) {
	recipes, total, err := s.recipeRepo.List(filter, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	details, err := s.decorate(filter.ViewerID, recipes)
	if err != nil {
		return nil, 0, err
	}
	return details, total, nil
}

// decorate resolves the viewer flags for a page of recipes with one query per flag.
func (s *recipeService) decorate(viewerID uint, recipes []model.Recipe) ([]RecipeDetails, error) {
	result := make([]RecipeDetails, len(recipes))
	for i := range recipes {
		result[i].Recipe = &recipes[i]
	}
	if viewerID == 0 || len(recipes) == 0 {
		return result, nil
	}

	recipeIDs := make([]uint, 0, len(recipes))
	authorIDs := make([]uint, 0, len(recipes))
	for _, recipe := range recipes {
		recipeIDs = append(recipeIDs, recipe.ID)
		authorIDs = append(authorIDs, recipe.AuthorID)
	}

	favorited, err := s.favoriteRepo.RecipeIDs(viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := s.cartRepo.RecipeIDs(viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	subscribed, err := s.subRepo.SubscribedAuthorIDs(viewerID, authorIDs)
	if err != nil {
		return nil, err
	}

	for i, recipe := range recipes {
		result[i].IsFavorited = favorited[recipe.ID]
		result[i].IsInShoppingCart = inCart[recipe.ID]
		result[i].AuthorSubscribed = subscribed[recipe.AuthorID]
	}
	return result, nil
}
