package service

import (
	"errors"
	"fmt"

	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/ikkim/foodgram-backend/internal/app/repository"
	appErrors "github.com/ikkim/foodgram-backend/internal/errors"
	"github.com/ikkim/foodgram-backend/pkg/logger"
	"github.com/ikkim/foodgram-backend/pkg/util"
	"gorm.io/gorm"
)

const (
	ShortCodeLength      = 4
	maxShortCodeAttempts = 10
)

var ErrShortCodeExhausted = errors.New("could not allocate a unique short code")

// CodeGenerator returns a candidate short code.
type CodeGenerator func() (string, error)

func randomShortCode() (string, error) {
	return util.GenerateSecureCode(ShortCodeLength, util.AlphanumericCharset)
}

type ShortLinkService interface {
	// GetOrCreate returns the recipe's code, allocating one on first use.
	GetOrCreate(recipeID uint) (string, error)
	Resolve(code string) (uint, error)
}

type shortLinkService struct {
	linkRepo   repository.ShortLinkRepository
	recipeRepo repository.RecipeRepository
	generate   CodeGenerator
}

// NewShortLinkService uses a crypto/rand code generator when generate is nil.
func NewShortLinkService(
	linkRepo repository.ShortLinkRepository,
	recipeRepo repository.RecipeRepository,
	generate CodeGenerator,
) ShortLinkService {
	if generate == nil {
		generate = randomShortCode
	}
	return &shortLinkService{
		linkRepo:   linkRepo,
		recipeRepo: recipeRepo,
		generate:   generate,
	}
}

func (s *shortLinkService) existing(recipeID uint) (*model.RecipeShortLink, error) {
	link, err := s.linkRepo.FindByRecipeID(recipeID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return link, err
}

func (s *shortLinkService) GetOrCreate(recipeID uint) (string, error) {
	if _, err := s.recipeRepo.FindPlainByID(recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrRecipeNotFound
		}
		return "", err
	}

	link, err := s.existing(recipeID)
	if err != nil {
		return "", err
	}
	if link != nil {
		return link.Code, nil
	}

	for attempt := 1; attempt <= maxShortCodeAttempts; attempt++ {
		code, err := s.generate()
		if err != nil {
			return "", fmt.Errorf("generate short code: %w", err)
		}

		err = s.linkRepo.Create(&model.RecipeShortLink{RecipeID: recipeID, Code: code})
		if err == nil {
			logger.Info("Short link created", map[string]interface{}{
				"recipe_id": recipeID,
				"code":      code,
				"attempt":   attempt,
			})
			return code, nil
		}
		if !appErrors.IsDuplicateKey(err) {
			return "", err
		}

		// either the code is taken or another request linked this recipe first
		if link, err := s.existing(recipeID); err != nil {
			return "", err
		} else if link != nil {
			return link.Code, nil
		}
	}

	logger.Error("Short code space exhausted", ErrShortCodeExhausted, map[string]interface{}{
		"recipe_id": recipeID,
		"attempts":  maxShortCodeAttempts,
	})
	return "", ErrShortCodeExhausted
}

func (s *shortLinkService) Resolve(code string) (uint, error) {
	link, err := s.linkRepo.FindByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrShortLinkNotFound
		}
		return 0, err
	}
	return link.RecipeID, nil
}
