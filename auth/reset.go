package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/danevairena/Bookstore/models"
)

// DefaultResetTTL is how long a password reset link stays valid.
const DefaultResetTTL = 600 * time.Second

type UserFinder interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

// ResetSigner issues and verifies signed password reset tokens.
type ResetSigner struct {
	Secret []byte
	Users  UserFinder
	Log    *logrus.Logger
	Now    func() time.Time
}

func NewResetSigner(secret string, users UserFinder, log *logrus.Logger) *ResetSigner {
	return &ResetSigner{Secret: []byte(secret), Users: users, Log: log, Now: time.Now}
}

// Issue signs a token naming user that expires after ttl.
func (s *ResetSigner) Issue(user *models.User, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultResetTTL
	}
	now := s.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(user.ID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

// Verify returns the user named by token, or nil if the token is malformed,
// badly signed, expired or names nobody.
func (s *ResetSigner) Verify(ctx context.Context, token string) *models.User {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.Now),
	)
	if err != nil {
		s.Log.WithField("reason", rejectReason(err)).Debug("Rejected password reset token")
		return nil
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		s.Log.WithField("reason", "bad subject").Debug("Rejected password reset token")
		return nil
	}
	user, err := s.Users.FindByID(ctx, uint(id))
	if err != nil {
		s.Log.WithError(err).Warn("Failed to load user for password reset")
		return nil
	}
	return user
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "bad signature"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	default:
		return err.Error()
	}
}
