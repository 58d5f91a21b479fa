package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/danevairena/Bookstore/models"
)

type NotificationRepository struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{DB: db, Now: time.Now}
}

// Add replaces the user's notification called name with a fresh one
// carrying payload.
func (repo *NotificationRepository) Add(ctx context.Context, userID uint, name string, payload any) (*models.Notification, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode notification payload: %w", err)
	}

	notification := &models.Notification{
		Name:        name,
		UserID:      userID,
		Timestamp:   unixSeconds(repo.Now()),
		PayloadJSON: string(data),
	}

	err = repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND name = ?", userID, name).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		return tx.Create(notification).Error
	})
	if err != nil {
		return nil, err
	}
	return notification, nil
}

// ListSince returns the user's notifications newer than since, oldest first.
func (repo *NotificationRepository) ListSince(ctx context.Context, userID uint, since float64) ([]models.Notification, error) {
	notifications := make([]models.Notification, 0)
	err := repo.DB.WithContext(ctx).
		Where("user_id = ? AND timestamp > ?", userID, since).
		Order("timestamp ASC, id ASC").
		Find(&notifications).Error
	return notifications, err
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
