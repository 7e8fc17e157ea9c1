package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrInvalidKey = errors.New("invalid storage key")

// Storage persists uploaded images and exposes them by URL.
type Storage interface {
	Save(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	// URL returns the public location of key. It may be relative to the
	// server (local storage) or absolute (S3).
	URL(key string) string
}

// RecipeImageKey returns a fresh key for a recipe picture of the given author.
func RecipeImageKey(authorID uint, ext string) string {
	return fmt.Sprintf("recipes/%d/%s.%s", authorID, uuid.New().String(), ext)
}

// AvatarKey returns a fresh key for a user avatar.
func AvatarKey(userID uint, ext string) string {
	return fmt.Sprintf("users/%d/avatar/%s.%s", userID, uuid.New().String(), ext)
}
