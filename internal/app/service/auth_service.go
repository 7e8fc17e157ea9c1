package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/ikkim/foodgram-backend/internal/app/repository"
	"github.com/ikkim/foodgram-backend/internal/cache"
	appErrors "github.com/ikkim/foodgram-backend/internal/errors"
	"github.com/ikkim/foodgram-backend/pkg/logger"
	"github.com/ikkim/foodgram-backend/pkg/util"
	"gorm.io/gorm"
)

// RegisterInput carries an already shape-validated registration request.
type RegisterInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

type AuthService interface {
	Register(input RegisterInput) (*model.User, error)
	Login(email, password string) (string, error)
	Logout(ctx context.Context, claims *util.Claims) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
	SetPassword(userID uint, currentPassword, newPassword string) error
}

type authService struct {
	userRepo     repository.UserRepository
	cache        cache.Cache
	jwtSecret    string
	accessExpiry time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	tokenCache cache.Cache,
	jwtSecret string,
	accessExpiry time.Duration,
) AuthService {
	return &authService{
		userRepo:     userRepo,
		cache:        tokenCache,
		jwtSecret:    jwtSecret,
		accessExpiry: accessExpiry,
	}
}

func passwordPolicyMessage(err error) string {
	switch {
	case errors.Is(err, util.ErrPasswordTooShort):
		return MsgPasswordTooShort
	case errors.Is(err, util.ErrPasswordEntirelyDigit):
		return MsgPasswordNumeric
	default:
		return MsgPasswordTooCommon
	}
}

func (s *authService) Register(input RegisterInput) (*model.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	logger.Info("Attempting user registration", map[string]interface{}{
		"email":    input.Email,
		"username": input.Username,
	})

	verr := NewValidationError()

	// Check if user already exists
	if _, err := s.userRepo.FindByEmail(input.Email); err == nil {
		verr.Add("email", MsgEmailTaken)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := s.userRepo.FindByUsername(input.Username); err == nil {
		verr.Add("username", MsgUsernameTaken)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err := util.ValidatePassword(input.Password); err != nil {
		verr.Add("password", passwordPolicyMessage(err))
	}

	if verr.HasErrors() {
		logger.Warn("Registration rejected", map[string]interface{}{
			"email":  input.Email,
			"fields": verr.Error(),
		})
		return nil, verr
	}

	hashedPassword, err := util.HashPassword(input.Password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": input.Email,
		})
		return nil, err
	}

	user := &model.User{
		Email:        input.Email,
		Username:     input.Username,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: hashedPassword,
	}

	if err := s.userRepo.Create(user); err != nil {
		if appErrors.IsDuplicateKey(err) {
			// lost a race against an identical registration
			return nil, FieldValidationError("email", MsgEmailTaken)
		}
		return nil, err
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return user, nil
}

func (s *authService) Login(email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	logger.Info("Login attempt", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": email,
			})
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"email":   email,
			"user_id": user.ID,
		})
		return "", ErrInvalidCredentials
	}

	token, _, err := util.GenerateToken(user.ID, user.Email, s.jwtSecret, s.accessExpiry)
	if err != nil {
		logger.Error("Failed to generate token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return "", err
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
	})
	return token, nil
}

// Logout blacklists the token id until the token would have expired anyway.
func (s *authService) Logout(ctx context.Context, claims *util.Claims) error {
	ttl := claims.RemainingTTL()
	if ttl <= 0 {
		return nil
	}

	if err := s.cache.Set(ctx, cache.TokenBlacklistKey(claims.ID), true, ttl); err != nil {
		logger.Error("Failed to blacklist token", err, map[string]interface{}{
			"user_id": claims.UserID,
		})
		return err
	}

	logger.Info("User logged out", map[string]interface{}{
		"user_id": claims.UserID,
		"ttl":     ttl.String(),
	})
	return nil
}

func (s *authService) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	var revoked bool
	found, err := s.cache.Get(ctx, cache.TokenBlacklistKey(tokenID), &revoked)
	if err != nil {
		return false, err
	}
	return found && revoked, nil
}

func (s *authService) SetPassword(userID uint, currentPassword, newPassword string) error {
	logger.Info("Changing user password", map[string]interface{}{
		"user_id": userID,
	})

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	verr := NewValidationError()
	if !util.VerifyPassword(user.PasswordHash, currentPassword) {
		verr.Add("current_password", MsgWrongPassword)
	}
	if err := util.ValidatePassword(newPassword); err != nil {
		verr.Add("new_password", passwordPolicyMessage(err))
	}
	if verr.HasErrors() {
		logger.Warn("Password change rejected", map[string]interface{}{
			"user_id": userID,
			"fields":  verr.Error(),
		})
		return verr
	}

	hashed, err := util.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(userID, hashed); err != nil {
		return err
	}

	logger.Info("User password changed", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}
