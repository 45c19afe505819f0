package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nacsos/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrUserInactive       = errors.New("user is deactivated")
	ErrPermissionDenied   = errors.New("permission denied")
)

// UserStore is the slice of the user repository the authenticator needs.
type UserStore interface {
	GetUserByID(ctx context.Context, userID string) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	SaveToken(ctx context.Context, t models.AuthToken) error
	GetToken(ctx context.Context, tokenID string) (models.AuthToken, error)
	DeleteToken(ctx context.Context, tokenID string) error
}

type Authenticator struct {
	users UserStore
}

func NewAuthenticator(users UserStore) *Authenticator {
	return &Authenticator{users: users}
}

// Login verifies username and password and hands out a fresh token. A ttl of
// zero or less creates a permanent token.
func (a *Authenticator) Login(ctx context.Context, username, password string, ttl time.Duration) (models.AuthToken, error) {
	user, err := a.users.GetUserByUsername(ctx, username)
	if err != nil {
		return models.AuthToken{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return models.AuthToken{}, ErrUserInactive
	}
	if !CheckPassword(user.Password, password) {
		return models.AuthToken{}, ErrInvalidCredentials
	}

	token := models.AuthToken{
		TokenID:  uuid.NewString(),
		Username: user.Username,
	}
	if ttl > 0 {
		validTil := time.Now().Add(ttl)
		token.ValidTil = &validTil
	}
	if err := a.users.SaveToken(ctx, token); err != nil {
		return models.AuthToken{}, fmt.Errorf("store token: %w", err)
	}
	return token, nil
}

// Authenticate resolves a token ID back to its user. Expired tokens are
// deleted on sight.
func (a *Authenticator) Authenticate(ctx context.Context, tokenID string) (models.User, error) {
	token, err := a.users.GetToken(ctx, tokenID)
	if err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	if token.ValidTil != nil && token.ValidTil.Before(time.Now()) {
		_ = a.users.DeleteToken(ctx, tokenID)
		return models.User{}, ErrTokenExpired
	}
	user, err := a.users.GetUserByUsername(ctx, token.Username)
	if err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return models.User{}, ErrUserInactive
	}
	return user, nil
}

// Logout invalidates a token.
func (a *Authenticator) Logout(ctx context.Context, tokenID string) error {
	return a.users.DeleteToken(ctx, tokenID)
}
