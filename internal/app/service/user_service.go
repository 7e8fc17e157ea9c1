package service

import (
	"context"
	"errors"

	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/ikkim/foodgram-backend/internal/app/repository"
	appErrors "github.com/ikkim/foodgram-backend/internal/errors"
	"github.com/ikkim/foodgram-backend/pkg/logger"
	"gorm.io/gorm"
)

// UserDetails is a user as seen by the viewer.
type UserDetails struct {
	User         *model.User
	IsSubscribed bool
}

// AllRecipes as a recipes limit disables truncation of the preview.
const AllRecipes = -1

// AuthorWithRecipes is a followed author with a preview of their recipes.
type AuthorWithRecipes struct {
	UserDetails
	Recipes      []model.Recipe
	RecipesCount int64
}

type UserService interface {
	List(viewerID uint, offset, limit int) ([]UserDetails, int64, error)
	Get(viewerID, userID uint) (*UserDetails, error)
	SetAvatar(ctx context.Context, userID uint, dataURI string) (*model.User, error)
	DeleteAvatar(ctx context.Context, userID uint) error
	Subscribe(userID, authorID uint, recipesLimit int) (*AuthorWithRecipes, error)
	Unsubscribe(userID, authorID uint) error
	ListSubscriptions(userID uint, offset, limit, recipesLimit int) ([]AuthorWithRecipes, int64, error)
}

type userService struct {
	userRepo   repository.UserRepository
	subRepo    repository.SubscriptionRepository
	recipeRepo repository.RecipeRepository
	images     ImageService
}

func NewUserService(
	userRepo repository.UserRepository,
	subRepo repository.SubscriptionRepository,
	recipeRepo repository.RecipeRepository,
	images ImageService,
) UserService {
	return &userService{
		userRepo:   userRepo,
		subRepo:    subRepo,
		recipeRepo: recipeRepo,
		images:     images,
	}
}

func (s *userService) findUser(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) List(viewerID uint, offset, limit int) ([]UserDetails, int64, error) {
	users, total, err := s.userRepo.List(offset, limit)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uint, 0, len(users))
	for _, user := range users {
		ids = append(ids, user.ID)
	}
	subscribed, err := s.subscribedAmong(viewerID, ids)
	if err != nil {
		return nil, 0, err
	}

	result := make([]UserDetails, 0, len(users))
	for i := range users {
		result = append(result, UserDetails{User: &users[i], IsSubscribed: subscribed[users[i].ID]})
	}
	return result, total, nil
}

func (s *userService) subscribedAmong(viewerID uint, ids []uint) (map[uint]bool, error) {
	if viewerID == 0 || len(ids) == 0 {
		return map[uint]bool{}, nil
	}
	return s.subRepo.SubscribedAuthorIDs(viewerID, ids)
}

func (s *userService) Get(viewerID, userID uint) (*UserDetails, error) {
	user, err := s.findUser(userID)
	if err != nil {
		return nil, err
	}

	details := &UserDetails{User: user}
	if viewerID != 0 && viewerID != userID {
		if details.IsSubscribed, err = s.subRepo.Exists(viewerID, userID); err != nil {
			return nil, err
		}
	}
	return details, nil
}

func (s *userService) SetAvatar(ctx context.Context, userID uint, dataURI string) (*model.User, error) {
	if dataURI == "" {
		return nil, FieldValidationError("avatar", MsgRequired)
	}
	img, msg := s.images.Decode(dataURI)
	if img == nil {
		return nil, FieldValidationError("avatar", msg)
	}

	user, err := s.findUser(userID)
	if err != nil {
		return nil, err
	}

	key, err := s.images.StoreAvatar(ctx, userID, img)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateAvatar(userID, &key); err != nil {
		s.images.Remove(ctx, key)
		return nil, err
	}

	if user.Avatar != nil {
		s.images.Remove(ctx, *user.Avatar)
	}
	user.Avatar = &key

	logger.Info("Avatar updated", map[string]interface{}{
		"user_id": userID,
		"key":     key,
	})
	return user, nil
}

func (s *userService) DeleteAvatar(ctx context.Context, userID uint) error {
	user, err := s.findUser(userID)
	if err != nil {
		return err
	}
	if user.Avatar == nil {
		return nil
	}

	if err := s.userRepo.UpdateAvatar(userID, nil); err != nil {
		return err
	}
	s.images.Remove(ctx, *user.Avatar)

	logger.Info("Avatar removed", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}

func (s *userService) withRecipes(details UserDetails, recipesLimit int) (*AuthorWithRecipes, error) {
	authorID := details.User.ID
	recipes, err := s.recipeRepo.FindByAuthor(authorID, recipesLimit)
	if err != nil {
		return nil, err
	}
	counts, err := s.recipeRepo.CountByAuthors([]uint{authorID})
	if err != nil {
		return nil, err
	}
	return &AuthorWithRecipes{
		UserDetails:  details,
		Recipes:      recipes,
		RecipesCount: counts[authorID],
	}, nil
}

func (s *userService) Subscribe(userID, authorID uint, recipesLimit int) (*AuthorWithRecipes, error) {
	if userID == authorID {
		return nil, ErrSelfSubscription
	}

	author, err := s.findUser(authorID)
	if err != nil {
		return nil, err
	}

	exists, err := s.subRepo.Exists(userID, authorID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadySubscribed
	}

	if err := s.subRepo.Create(&model.Subscription{UserID: userID, AuthorID: authorID}); err != nil {
		if appErrors.IsDuplicateKey(err) {
			return nil, ErrAlreadySubscribed
		}
		return nil, err
	}

	logger.Info("User subscribed to author", map[string]interface{}{
		"user_id":   userID,
		"author_id": authorID,
	})
	return s.withRecipes(UserDetails{User: author, IsSubscribed: true}, recipesLimit)
}

func (s *userService) Unsubscribe(userID, authorID uint) error {
	if _, err := s.findUser(authorID); err != nil {
		return err
	}

	deleted, err := s.subRepo.Delete(userID, authorID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotSubscribed
	}

	logger.Info("User unsubscribed from author", map[string]interface{}{
		"user_id":   userID,
		"author_id": authorID,
	})
	return nil
}

func (s *userService) ListSubscriptions(userID uint, offset, limit, recipesLimit int) ([]AuthorWithRecipes, int64, error) {
	authors, total, err := s.subRepo.ListAuthors(userID, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uint, 0, len(authors))
	for _, author := range authors {
		ids = append(ids, author.ID)
	}
	counts, err := s.recipeRepo.CountByAuthors(ids)
	if err != nil {
		return nil, 0, err
	}

	result := make([]AuthorWithRecipes, 0, len(authors))
	for i := range authors {
		recipes, err := s.recipeRepo.FindByAuthor(authors[i].ID, recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, AuthorWithRecipes{
			UserDetails:  UserDetails{User: &authors[i], IsSubscribed: true},
			Recipes:      recipes,
			RecipesCount: counts[authors[i].ID],
		})
	}
	return result, total, nil
}
