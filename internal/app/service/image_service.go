package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ikkim/foodgram-backend/internal/storage"
	"github.com/ikkim/foodgram-backend/pkg/logger"
	"github.com/ikkim/foodgram-backend/pkg/util"
)

// ImageService decodes, validates and stores base64 data-URI images.
type ImageService interface {
	// Decode validates the payload and returns the user-facing message on failure.
	Decode(dataURI string) (*util.DecodedImage, string)
	StoreRecipeImage(ctx context.Context, authorID uint, img *util.DecodedImage) (string, error)
	StoreAvatar(ctx context.Context, userID uint, img *util.DecodedImage) (string, error)
	// Remove deletes a stored file; failures are logged, not returned.
	Remove(ctx context.Context, key string)
	URL(key string) string
}

type imageService struct {
	storage  storage.Storage
	maxBytes int64
}

func NewImageService(store storage.Storage, maxBytes int64) ImageService {
	return &imageService{storage: store, maxBytes: maxBytes}
}

func (s *imageService) Decode(dataURI string) (*util.DecodedImage, string) {
	img, err := util.DecodeImageDataURI(dataURI, s.maxBytes)
	if err == nil {
		return img, ""
	}

	logger.Warn("Rejected image upload", map[string]interface{}{
		"error": err.Error(),
	})
	switch {
	case errors.Is(err, util.ErrImageTooLarge):
		return nil, MsgImageTooLarge(s.maxBytes)
	case errors.Is(err, util.ErrUnsupportedImageType):
		return nil, MsgUnsupportedImage
	default:
		return nil, MsgInvalidImage
	}
}

func (s *imageService) store(ctx context.Context, key string, img *util.DecodedImage) (string, error) {
	if err := s.storage.Save(ctx, key, img.Data, img.ContentType); err != nil {
		logger.Error("Failed to store image", err, map[string]interface{}{
			"key": key,
		})
		return "", fmt.Errorf("store image: %w", err)
	}
	return key, nil
}

func (s *imageService) StoreRecipeImage(ctx context.Context, authorID uint, img *util.DecodedImage) (string, error) {
	return s.store(ctx, storage.RecipeImageKey(authorID, img.Extension), img)
}

func (s *imageService) StoreAvatar(ctx context.Context, userID uint, img *util.DecodedImage) (string, error) {
	return s.store(ctx, storage.AvatarKey(userID, img.Extension), img)
}

func (s *imageService) Remove(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		logger.Error("Failed to delete stored image", err, map[string]interface{}{
			"key": key,
		})
		return
	}
	logger.Debug("Stored image deleted", map[string]interface{}{
		"key": key,
	})
}

func (s *imageService) URL(key string) string {
	if key == "" {
		return ""
	}
	return s.storage.URL(key)
}
