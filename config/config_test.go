package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("POSTS_PER_PAGE", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("BASE_URL", "")
	t.Setenv("TRUST_PROXY", "")
	t.Setenv("SESSION_SECURE", "")

	cfg := FromEnv()
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, 25, cfg.PostsPerPage)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10*time.Minute, cfg.ResetTokenTTL)
	assert.Equal(t, "http://localhost:"+cfg.Port, cfg.BaseURL)
	assert.False(t, cfg.TrustProxy)
	assert.False(t, cfg.SessionSecure)
	require.NoError(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("POSTS_PER_PAGE", "3")
	t.Setenv("TOKEN_TTL", "120")
	t.Setenv("RESET_TOKEN_TTL", "30s")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("BASE_URL", "https://books.example.com/")
	t.Setenv("TRUST_PROXY", "true")
	t.Setenv("SESSION_SECURE", "1")

	cfg := FromEnv()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 3, cfg.PostsPerPage)
	assert.Equal(t, 2*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 30*time.Second, cfg.ResetTokenTTL)
	assert.InDelta(t, 2.5, cfg.RateLimitRPS, 0.0001)
	assert.Equal(t, "https://books.example.com", cfg.BaseURL)
	assert.True(t, cfg.TrustProxy)
	assert.True(t, cfg.SessionSecure)
}

func TestValidate(t *testing.T) {
	cfg := FromEnv()
	cfg.DBDriver = "mysql"
	assert.Error(t, cfg.Validate())

	cfg = FromEnv()
	cfg.PostsPerPage = 0
	assert.Error(t, cfg.Validate())

	cfg = FromEnv()
	cfg.SecretKey = ""
	assert.Error(t, cfg.Validate())

	cfg = FromEnv()
	cfg.BaseURL = "books.example.com"
	assert.Error(t, cfg.Validate())
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("USERS_PER_PAGE", "many")
	t.Setenv("MAIL_WORKERS", "")
	assert.Equal(t, 10, GetEnvAsInt("USERS_PER_PAGE", 10))
	assert.True(t, GetEnvAsBool("UNSET_FLAG_FOR_TEST", true))
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "n", DBSSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", cfg.PostgresDSN())
}
