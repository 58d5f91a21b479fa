package auth

import (
	"context"
	"errors"

	"github.com/danevairena/Bookstore/models"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

type CredentialStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// Authenticate checks a username and password pair.
func Authenticate(ctx context.Context, users CredentialStore, username, password string) (*models.User, error) {
	user, err := users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
