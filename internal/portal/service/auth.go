// Package service implements the portal's application logic on top of the
// store, token codec and attempt tracker.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/supportportal/portal/internal/portal/domain"
	"github.com/supportportal/portal/internal/portal/store"
	"github.com/supportportal/portal/pkg/cryptox"
	"github.com/supportportal/portal/pkg/jwtx"
	"github.com/supportportal/portal/pkg/slogx"
)

// AuthService verifies credentials and mints access tokens.
type AuthService struct {
	Store store.Store
	Codec *jwtx.Codec
	Guard *LoginAttemptGuard
}

// Login authenticates the username/password pair and returns the user with a
// signed token. Unknown users and wrong passwords both count as failures and
// both surface ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (domain.User, string, error) {
	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.Guard.RecordUnknown(ctx, username)
			return domain.User{}, "", ErrInvalidCredentials
		}
		return domain.User{}, "", err
	}

	if err := s.Guard.Check(ctx, user); err != nil {
		return domain.User{}, "", err
	}

	if !user.Active {
		return domain.User{}, "", ErrAccountDisabled
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrMismatch) {
			s.Guard.RecordFailure(ctx, user)
			return domain.User{}, "", ErrInvalidCredentials
		}
		return domain.User{}, "", err
	}

	s.Guard.RecordSuccess(ctx, user)

	now := time.Now().UTC()
	if err := s.Store.Users().RecordLogin(ctx, user.ID, now); err != nil {
		// Login timestamps are informational, so a write failure is
		// logged rather than failing the authentication.
		slogx.FromContext(ctx).Error("failed to record login time",
			"username", user.Username,
			"error", err,
		)
	} else {
		user.LastLoginShown = user.LastLoginAt
		user.LastLoginAt = &now
	}

	p := user.Principal()
	token, err := s.Codec.Issue(p.Subject, p.Authorities)
	if err != nil {
		return domain.User{}, "", err
	}

	slogx.FromContext(ctx).Info("user logged in", "username", user.Username)
	return user, token, nil
}
