package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/danevairena/Bookstore/models"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// Create inserts a new user. Duplicate usernames or emails give ErrConflict.
func (repo *UserRepository) Create(ctx context.Context, user *models.User) error {
	return translate(repo.DB.WithContext(ctx).Create(user).Error)
}

// Save writes every column of an existing user.
func (repo *UserRepository) Save(ctx context.Context, user *models.User) error {
	return translate(repo.DB.WithContext(ctx).Save(user).Error)
}

func (repo *UserRepository) findOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	var user models.User
	err := repo.DB.WithContext(ctx).Where(query, args...).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID returns nil when no user has the id
func (repo *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	return repo.findOne(ctx, "id = ?", id)
}

func (repo *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return repo.findOne(ctx, "username = ?", username)
}

func (repo *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return repo.findOne(ctx, "email = ?", email)
}

func (repo *UserRepository) FindByToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}
	return repo.findOne(ctx, "token = ?", token)
}

// Exists checks if a user exists by username
func (repo *UserRepository) Exists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := repo.DB.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

func (repo *UserRepository) List(ctx context.Context, page, perPage int) (*Page[models.User], error) {
	query := repo.DB.WithContext(ctx).Model(&models.User{})
	return paginate[models.User](query, "id ASC", page, perPage)
}

// SaveToken stores the API token and its expiry without touching other columns.
func (repo *UserRepository) SaveToken(ctx context.Context, userID uint, token string, expiration time.Time) error {
	return repo.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]any{"token": token, "token_expiration": expiration}).Error
}

func (repo *UserRepository) UpdateLastSeen(ctx context.Context, userID uint, seen time.Time) error {
	return repo.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
		Update("last_seen", seen.UTC()).Error
}

func (repo *UserRepository) MarkMessagesRead(ctx context.Context, userID uint, readAt time.Time) error {
	return repo.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
		Update("last_message_read_time", readAt.UTC()).Error
}

// Followers lists the users following userID
func (repo *UserRepository) Followers(ctx context.Context, userID uint, page, perPage int) (*Page[models.User], error) {
	query := repo.DB.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN followers ON followers.follower_id = users.id").
		Where("followers.followed_id = ?", userID)
	return paginate[models.User](query, "users.id ASC", page, perPage)
}

// Followed lists the users userID follows
func (repo *UserRepository) Followed(ctx context.Context, userID uint, page, perPage int) (*Page[models.User], error) {
	query := repo.DB.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN followers ON followers.followed_id = users.id").
		Where("followers.follower_id = ?", userID)
	return paginate[models.User](query, "users.id ASC", page, perPage)
}

func (repo *UserRepository) FollowerCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := repo.DB.WithContext(ctx).Model(&models.Follow{}).Where("followed_id = ?", userID).Count(&count).Error
	return count, err
}

func (repo *UserRepository) FollowedCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := repo.DB.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&count).Error
	return count, err
}

func (repo *UserRepository) PostCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := repo.DB.WithContext(ctx).Model(&models.Post{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
