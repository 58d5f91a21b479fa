package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/danevairena/Bookstore/models"
)

// Newest first. Equal timestamps fall back to the id so pages stay stable.
const feedOrder = "posts.timestamp DESC, posts.id DESC"

type PostRepository struct {
	DB *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{DB: db}
}

func (repo *PostRepository) Create(ctx context.Context, post *models.Post) error {
	return translate(repo.DB.WithContext(ctx).Omit("Author").Create(post).Error)
}

// FollowedPosts returns the viewer's own posts together with the posts of
// everyone the viewer follows.
func (repo *PostRepository) FollowedPosts(ctx context.Context, viewerID uint, page, perPage int) (*Page[models.Post], error) {
	db := repo.DB.WithContext(ctx)
	followed := db.Model(&models.Follow{}).Select("followed_id").Where("follower_id = ?", viewerID)

	query := db.Model(&models.Post{}).
		Where("posts.user_id = ? OR posts.user_id IN (?)", viewerID, followed)
	return paginate[models.Post](query, feedOrder, page, perPage, "Author")
}

// Explore returns every post
func (repo *PostRepository) Explore(ctx context.Context, page, perPage int) (*Page[models.Post], error) {
	query := repo.DB.WithContext(ctx).Model(&models.Post{})
	return paginate[models.Post](query, feedOrder, page, perPage, "Author")
}

// ByUser returns the posts authored by userID
func (repo *PostRepository) ByUser(ctx context.Context, userID uint, page, perPage int) (*Page[models.Post], error) {
	query := repo.DB.WithContext(ctx).Model(&models.Post{}).Where("posts.user_id = ?", userID)
	return paginate[models.Post](query, feedOrder, page, perPage, "Author")
}
