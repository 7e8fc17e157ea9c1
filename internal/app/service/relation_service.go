package service

import (
	"errors"

	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/ikkim/foodgram-backend/internal/app/repository"
	appErrors "github.com/ikkim/foodgram-backend/internal/errors"
	"github.com/ikkim/foodgram-backend/pkg/logger"
	"gorm.io/gorm"
)

// RelationService toggles the per-user favorite and shopping-cart marks on recipes.
type RelationService interface {
	AddFavorite(userID, recipeID uint) (*model.Recipe, error)
	RemoveFavorite(userID, recipeID uint) error
	AddToCart(userID, recipeID uint) (*model.Recipe, error)
	RemoveFromCart(userID, recipeID uint) error
}

// recipeMarks is the storage side of one (user, recipe) relation table.
type recipeMarks interface {
	Exists(userID, recipeID uint) (bool, error)
	Delete(userID, recipeID uint) (bool, error)
}

type relationService struct {
	recipeRepo   repository.RecipeRepository
	favoriteRepo repository.FavoriteRepository
	cartRepo     repository.CartRepository
}

func NewRelationService(
	recipeRepo repository.RecipeRepository,
	favoriteRepo repository.FavoriteRepository,
	cartRepo repository.CartRepository,
) RelationService {
	return &relationService{
		recipeRepo:   recipeRepo,
		favoriteRepo: favoriteRepo,
		cartRepo:     cartRepo,
	}
}

func (s *relationService) findRecipe(recipeID uint) (*model.Recipe, error) {
	recipe, err := s.recipeRepo.FindPlainByID(recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return recipe, nil
}

// add runs the shared check-then-insert flow. A unique violation from a
// concurrent identical insert is reported as errExists.
func (s *relationService) add(marks recipeMarks, insert func() error, userID, recipeID uint, errExists error) (*model.Recipe, error) {
	recipe, err := s.findRecipe(recipeID)
	if err != nil {
		return nil, err
	}

	exists, err := marks.Exists(userID, recipeID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errExists
	}

	if err := insert(); err != nil {
		if appErrors.IsDuplicateKey(err) {
			return nil, errExists
		}
		return nil, err
	}
	return recipe, nil
}

func (s *relationService) remove(marks recipeMarks, userID, recipeID uint, errAbsent error) error {
	if _, err := s.findRecipe(recipeID); err != nil {
		return err
	}

	deleted, err := marks.Delete(userID, recipeID)
	if err != nil {
		return err
	}
	if !deleted {
		return errAbsent
	}
	return nil
}

func (s *relationService) AddFavorite(userID, recipeID uint) (*model.Recipe, error) {
	recipe, err := s.add(s.favoriteRepo, func() error {
		return s.favoriteRepo.Create(&model.Favorite{UserID: userID, RecipeID: recipeID})
	}, userID, recipeID, ErrAlreadyFavorited)
	if err != nil {
		return nil, err
	}

	logger.Info("Recipe added to favorites", map[string]interface{}{
		"user_id":   userID,
		"recipe_id": recipeID,
	})
	return recipe, nil
}

func (s *relationService) RemoveFavorite(userID, recipeID uint) error {
	if err := s.remove(s.favoriteRepo, userID, recipeID, ErrNotFavorited); err != nil {
		return err
	}

	logger.Info("Recipe removed from favorites", map[string]interface{}{
		"user_id":   userID,
		"recipe_id": recipeID,
	})
	return nil
}

func (s *relationService) AddToCart(userID, recipeID uint) (*model.Recipe, error) {
	recipe, err := s.add(s.cartRepo, func() error {
		return s.cartRepo.Create(&model.ShoppingCartItem{UserID: userID, RecipeID: recipeID})
	}, userID, recipeID, ErrAlreadyInCart)
	if err != nil {
		return nil, err
	}

	logger.Info("Recipe added to shopping cart", map[string]interface{}{
		"user_id":   userID,
		"recipe_id": recipeID,
	})
	return recipe, nil
}

func (s *relationService) RemoveFromCart(userID, recipeID uint) error {
	if err := s.remove(s.cartRepo, userID, recipeID, ErrNotInCart); err != nil {
		return err
	}

	logger.Info("Recipe removed from shopping cart", map[string]interface{}{
		"user_id":   userID,
		"recipe_id": recipeID,
	})
	return nil
}
