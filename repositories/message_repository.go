package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/danevairena/Bookstore/models"
)

// NeverRead stands in for LastMessageReadTime on users who never opened
// their inbox.
var NeverRead = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

type MessageRepository struct {
	DB *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{DB: db}
}

func (repo *MessageRepository) Create(ctx context.Context, message *models.Message) error {
	return repo.DB.WithContext(ctx).Omit("Author", "Recipient").Create(message).Error
}

// Received lists the messages sent to userID, newest first
func (repo *MessageRepository) Received(ctx context.Context, userID uint, page, perPage int) (*Page[models.Message], error) {
	query := repo.DB.WithContext(ctx).Model(&models.Message{}).Where("messages.recipient_id = ?", userID)
	return paginate[models.Message](query, "messages.timestamp DESC, messages.id DESC", page, perPage, "Author")
}

// UnreadCount counts messages to user newer than the last time they read
// their inbox.
func (repo *MessageRepository) UnreadCount(ctx context.Context, user *models.User) (int64, error) {
	lastRead := NeverRead
	if user.LastMessageReadTime != nil {
		lastRead = *user.LastMessageReadTime
	}

	var count int64
	err := repo.DB.WithContext(ctx).Model(&models.Message{}).
		Where("recipient_id = ? AND timestamp > ?", user.ID, lastRead.UTC()).
		Count(&count).Error
	return count, err
}
