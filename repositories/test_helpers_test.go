package repositories

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/danevairena/Bookstore/config"
	"github.com/danevairena/Bookstore/database"
	"github.com/danevairena/Bookstore/logger"
	"github.com/danevairena/Bookstore/models"
)

// newTestDB creates a migrated sqlite database in a temp dir.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &config.Config{DBDriver: config.DriverSQLite, DBPath: filepath.Join(t.TempDir(), "test.db")}
	db, err := database.Open(cfg, logger.Discard())
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })
	return db.DB
}

func createUser(t *testing.T, repo *UserRepository, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: fmt.Sprintf("%s@example.com", username)}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func createPost(t *testing.T, repo *PostRepository, author *models.User, title string, unix int64) *models.Post {
	t.Helper()
	post := &models.Post{
		Title:       title,
		Description: "description of " + title,
		Price:       10,
		Timestamp:   time.Unix(unix, 0),
		UserID:      author.ID,
	}
	require.NoError(t, repo.Create(context.Background(), post))
	return post
}

func postTitles(posts []models.Post) []string {
	titles := make([]string, len(posts))
	for i, p := range posts {
		titles[i] = p.Title
	}
	return titles
}
