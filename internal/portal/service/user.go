package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/supportportal/portal/internal/portal/domain"
	"github.com/supportportal/portal/internal/portal/mail"
	"github.com/supportportal/portal/internal/portal/media"
	"github.com/supportportal/portal/internal/portal/store"
	"github.com/supportportal/portal/pkg/cryptox"
	"github.com/supportportal/portal/pkg/idx"
	"github.com/supportportal/portal/pkg/slogx"
)

// UserService manages the account lifecycle: registration, administration,
// password resets and profile images.
type UserService struct {
	Store  store.Store
	Mailer mail.Mailer
	Images *media.ImageStore
}

// RegisterParams carries the self-service registration fields. The caller
// never picks a password; one is generated and emailed.
type RegisterParams struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
}

// Register creates a standard user account with a generated password and
// emails the password to the new user.
func (s *UserService) Register(ctx context.Context, p RegisterParams) (domain.User, error) {
	password, err := cryptox.GeneratePassword()
	if err != nil {
		return domain.User{}, err
	}

	user, err := s.createUser(ctx, createParams{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Username:  p.Username,
		Email:     p.Email,
		Role:      domain.RoleUser,
		Active:    true,
		Password:  password,
	})
	if err != nil {
		return domain.User{}, err
	}

	if err := s.Mailer.SendNewPassword(ctx, user.Email, user.FirstName, password); err != nil {
		slogx.FromContext(ctx).Error("failed to send registration email",
			"email", user.Email,
			"error", err,
		)
	}

	slogx.FromContext(ctx).Info("user registered", "username", user.Username)
	return user, nil
}

// CreateParams carries the administrative user creation fields.
type CreateParams struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Role      string
	Active    bool
	Locked    bool
}

// Create adds a user on behalf of an administrator. Like registration, the
// password is generated and emailed.
func (s *UserService) Create(ctx context.Context, p CreateParams) (domain.User, error) {
	role, ok := domain.ParseRole(p.Role)
	if !ok {
		return domain.User{}, fmt.Errorf("%w: %s", ErrInvalidRole, p.Role)
	}

	password, err := cryptox.GeneratePassword()
	if err != nil {
		return domain.User{}, err
	}

	user, err := s.createUser(ctx, createParams{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Username:  p.Username,
		Email:     p.Email,
		Role:      role,
		Active:    p.Active,
		Locked:    p.Locked,
		Password:  password,
	})
	if err != nil {
		return domain.User{}, err
	}

	if err := s.Mailer.SendNewPassword(ctx, user.Email, user.FirstName, password); err != nil {
		slogx.FromContext(ctx).Error("failed to send new account email",
			"email", user.Email,
			"error", err,
		)
	}
	return user, nil
}

type createParams struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Role      domain.Role
	Active    bool
	Locked    bool
	Password  string
}

func (s *UserService) createUser(ctx context.Context, p createParams) (domain.User, error) {
	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           idx.New().String(),
		Username:     p.Username,
		Email:        p.Email,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		PasswordHash: hash,
		Role:         p.Role,
		Active:       p.Active,
		Locked:       p.Locked,
		JoinedAt:     time.Now().UTC(),
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := checkUnique(ctx, tx.Users(), user.Username, user.Email); err != nil {
			return err
		}
		return tx.Users().CreateUser(ctx, user)
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// checkUnique gives precise conflict errors ahead of the insert; the unique
// indexes remain the backstop for races.
func checkUnique(ctx context.Context, users store.Users, username, email string) error {
	if _, err := users.GetUserByUsername(ctx, username); err == nil {
		return ErrUsernameExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	if _, err := users.GetUserByEmail(ctx, email); err == nil {
		return ErrEmailExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}

// UpdateParams carries the administrative update fields. The current
// username identifies the account; the remaining fields replace its state.
type UpdateParams struct {
	CurrentUsername string
	FirstName       string
	LastName        string
	Username        string
	Email           string
	Role            string
	Active          bool
	Locked          bool
}

// Update replaces a user's editable fields. Clearing the locked flag also
// clears any in-memory attempt state via the durable column being read on
// the next login.
func (s *UserService) Update(ctx context.Context, p UpdateParams) (domain.User, error) {
	role, ok := domain.ParseRole(p.Role)
	if !ok {
		return domain.User{}, fmt.Errorf("%w: %s", ErrInvalidRole, p.Role)
	}

	var user domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		current, err := tx.Users().GetUserByUsername(ctx, p.CurrentUsername)
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		} else if err != nil {
			return err
		}

		if p.Username != current.Username {
			if _, err := tx.Users().GetUserByUsername(ctx, p.Username); err == nil {
				return ErrUsernameExists
			} else if !errors.Is(err, store.ErrNotFound) {
				return err
			}
		}
		if p.Email != current.Email {
			if _, err := tx.Users().GetUserByEmail(ctx, p.Email); err == nil {
				return ErrEmailExists
			} else if !errors.Is(err, store.ErrNotFound) {
				return err
			}
		}

		current.Username = p.Username
		current.Email = p.Email
		current.FirstName = p.FirstName
		current.LastName = p.LastName
		current.Role = role
		current.Active = p.Active
		current.Locked = p.Locked

		if err := tx.Users().UpdateUser(ctx, current); err != nil {
			return err
		}
		user = current
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Find returns the user with the given username.
func (s *UserService) Find(ctx context.Context, username string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return user, err
}

// List returns every user, newest first.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.Store.Users().ListUsers(ctx)
}

// Delete removes the user and any stored profile images.
func (s *UserService) Delete(ctx context.Context, username string) error {
	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	} else if err != nil {
		return err
	}

	if err := s.Store.Users().DeleteUser(ctx, user.ID); err != nil {
		return err
	}

	if err := s.Images.RemoveUserImages(user.Username); err != nil {
		slogx.FromContext(ctx).Error("failed to remove profile images",
			"username", user.Username,
			"error", err,
		)
	}

	slogx.FromContext(ctx).Info("user deleted", "username", user.Username)
	return nil
}

// ResetPassword generates a new password for the account behind the email
// address and delivers it by mail.
func (s *UserService) ResetPassword(ctx context.Context, email string) error {
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return ErrEmailNotFound
	} else if err != nil {
		return err
	}

	password, err := cryptox.GeneratePassword()
	if err != nil {
		return err
	}
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return err
	}

	if err := s.Store.Users().UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return err
	}

	if err := s.Mailer.SendNewPassword(ctx, user.Email, user.FirstName, password); err != nil {
		slogx.FromContext(ctx).Error("failed to send password reset email",
			"email", user.Email,
			"error", err,
		)
	}

	slogx.FromContext(ctx).Info("password reset", "username", user.Username)
	return nil
}

// UpdateProfileImage stores the uploaded image and points the user's profile
// image URL at the serving endpoint.
func (s *UserService) UpdateProfileImage(ctx context.Context, username, contentType string, r io.Reader) (domain.User, error) {
	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	} else if err != nil {
		return domain.User{}, err
	}

	if err := s.Images.SaveProfileImage(user.Username, contentType, r); err != nil {
		return domain.User{}, err
	}

	url := fmt.Sprintf("/v1/users/image/%s/%s.jpg", user.Username, user.Username)
	if err := s.Store.Users().UpdateProfileImageURL(ctx, user.ID, url); err != nil {
		return domain.User{}, err
	}
	user.ProfileImageURL = url
	return user, nil
}
