package repository

import (
	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/ikkim/foodgram-backend/pkg/logger"
	"gorm.io/gorm"
)

type SubscriptionRepository interface {
	Create(subscription *model.Subscription) error
	// Delete removes the pair and reports whether a row existed.
	Delete(userID, authorID uint) (bool, error)
	Exists(userID, authorID uint) (bool, error)
	// SubscribedAuthorIDs returns which of authorIDs the user follows.
	SubscribedAuthorIDs(userID uint, authorIDs []uint) (map[uint]bool, error)
	// ListAuthors returns the followed authors, most recently publishing first.
	ListAuthors(userID uint, offset, limit int) ([]model.User, int64, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Create(subscription *model.Subscription) error {
	logger.Debug("Creating subscription in database", map[string]interface{}{
		"user_id":   subscription.UserID,
		"author_id": subscription.AuthorID,
	})

	if err := r.db.Omit("User", "Author").Create(subscription).Error; err != nil {
		logger.Error("Failed to create subscription in database", err, map[string]interface{}{
			"user_id":   subscription.UserID,
			"author_id": subscription.AuthorID,
		})
		return err
	}
	return nil
}

func (r *subscriptionRepository) Delete(userID, authorID uint) (bool, error) {
	logger.Debug("Deleting subscription from database", map[string]interface{}{
		"user_id":   userID,
		"author_id": authorID,
	})

	result := r.db.Where("user_id = ? AND author_id = ?", userID, authorID).Delete(&model.Subscription{})
	if result.Error != nil {
		logger.Error("Failed to delete subscription from database", result.Error, map[string]interface{}{
			"user_id":   userID,
			"author_id": authorID,
		})
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *subscriptionRepository) Exists(userID, authorID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.Subscription{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to check subscription in database", err, map[string]interface{}{
			"user_id":   userID,
			"author_id": authorID,
		})
		return false, err
	}
	return count > 0, nil
}

func (r *subscriptionRepository) SubscribedAuthorIDs(userID uint, authorIDs []uint) (map[uint]bool, error) {
	result := make(map[uint]bool)
	if userID == 0 || len(authorIDs) == 0 {
		return result, nil
	}

	var ids []uint
	err := r.db.Model(&model.Subscription{}).
		Where("user_id = ? AND author_id IN ?", userID, authorIDs).
		Pluck("author_id", &ids).Error
	if err != nil {
		logger.Error("Failed to load subscribed author ids from database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

const latestRecipeJoin = `LEFT JOIN (SELECT author_id, MAX(created_at) AS last_recipe_at FROM recipes GROUP BY author_id) latest ON latest.author_id = users.id`

func (r *subscriptionRepository) ListAuthors(userID uint, offset, limit int) ([]model.User, int64, error) {
	logger.Debug("Listing subscribed authors in database", map[string]interface{}{
		"user_id": userID,
		"offset":  offset,
		"limit":   limit,
	})

	var total int64
	if err := r.db.Model(&model.Subscription{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		logger.Error("Failed to count subscriptions in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, 0, err
	}

	var authors []model.User
	err := r.db.Model(&model.User{}).
		Select("users.*").
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Joins(latestRecipeJoin).
		Where("subscriptions.user_id = ?", userID).
		Order("CASE WHEN latest.last_recipe_at IS NULL THEN 1 ELSE 0 END").
		Order("latest.last_recipe_at DESC").
		Order("users.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&authors).Error
	if err != nil {
		logger.Error("Failed to list subscribed authors in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, 0, err
	}

	logger.Debug("Subscribed authors listed in database", map[string]interface{}{
		"user_id": userID,
		"count":   len(authors),
		"total":   total,
	})
	return authors, total, nil
}
