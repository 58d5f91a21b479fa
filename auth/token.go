package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/danevairena/Bookstore/models"
)

// A token with less than this much validity left is replaced on Issue.
const reuseWindow = 60 * time.Second

// TokenStore is the part of the user repository the token service needs.
type TokenStore interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByToken(ctx context.Context, token string) (*models.User, error)
	SaveToken(ctx context.Context, userID uint, token string, expiration time.Time) error
}

// Cache maps token values to user ids in front of the store.
type Cache interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// TokenService issues, revokes and checks opaque API tokens.
type TokenService struct {
	Users TokenStore
	Cache Cache
	Log   *logrus.Logger
	Now   func() time.Time
}

func NewTokenService(users TokenStore, cache Cache, log *logrus.Logger) *TokenService {
	return &TokenService{Users: users, Cache: cache, Log: log, Now: time.Now}
}

func cacheKey(token string) string {
	return "token:" + token
}

// Issue returns the user's current token while it has more than a minute of
// validity left. Otherwise a fresh token expiring after ttl is stored.
func (s *TokenService) Issue(ctx context.Context, user *models.User, ttl time.Duration) (string, error) {
	now := s.Now()
	if user.Token != "" && user.TokenExpiration.After(now.Add(reuseWindow)) {
		return user.Token, nil
	}

	token, err := newToken()
	if err != nil {
		return "", err
	}
	expiration := now.Add(ttl).UTC()
	if err := s.Users.SaveToken(ctx, user.ID, token, expiration); err != nil {
		return "", fmt.Errorf("save token: %w", err)
	}

	if s.Cache != nil {
		if user.Token != "" {
			s.cacheDelete(ctx, user.Token)
		}
		if err := s.Cache.Set(ctx, cacheKey(token), strconv.FormatUint(uint64(user.ID), 10), ttl); err != nil {
			s.Log.WithError(err).Warn("Failed to cache token")
		}
	}

	user.Token = token
	user.TokenExpiration = expiration
	return token, nil
}

// Revoke expires the user's token immediately. The value itself is kept.
func (s *TokenService) Revoke(ctx context.Context, user *models.User) error {
	expiration := s.Now().Add(-time.Second).UTC()
	if err := s.Users.SaveToken(ctx, user.ID, user.Token, expiration); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	if s.Cache != nil && user.Token != "" {
		s.cacheDelete(ctx, user.Token)
	}
	user.TokenExpiration = expiration
	return nil
}

// Check resolves a token to its user. Unknown and expired tokens give nil.
func (s *TokenService) Check(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}

	user, err := s.lookup(ctx, token)
	if err != nil || user == nil {
		return nil, err
	}
	if user.Token != token || user.TokenExpiration.Before(s.Now()) {
		return nil, nil
	}
	return user, nil
}

func (s *TokenService) lookup(ctx context.Context, token string) (*models.User, error) {
	if s.Cache != nil {
		value, err := s.Cache.Get(ctx, cacheKey(token))
		if err == nil {
			if id, perr := strconv.ParseUint(value, 10, 64); perr == nil {
				user, err := s.Users.FindByID(ctx, uint(id))
				if err != nil || user != nil {
					return user, err
				}
			}
		}
	}
	return s.Users.FindByToken(ctx, token)
}

func (s *TokenService) cacheDelete(ctx context.Context, token string) {
	if err := s.Cache.Delete(ctx, cacheKey(token)); err != nil {
		s.Log.WithError(err).Warn("Failed to evict cached token")
	}
}

// newToken returns 24 random bytes, base64 encoded.
func newToken() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}
