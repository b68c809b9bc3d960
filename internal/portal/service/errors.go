package service

import "errors"

var (
	// ErrInvalidCredentials is returned for an unknown username or a wrong
	// password. Callers must not be able to tell the two cases apart.
	ErrInvalidCredentials = errors.New("username or password incorrect")

	// ErrAccountLocked is returned when the account is locked, either
	// durably in the store or because the attempt limit was reached.
	ErrAccountLocked = errors.New("account is locked")

	// ErrAccountDisabled is returned when the account has been deactivated
	// by an administrator.
	ErrAccountDisabled = errors.New("account is disabled")

	// ErrUsernameExists is returned when the requested username is taken.
	ErrUsernameExists = errors.New("username already exists")

	// ErrEmailExists is returned when the requested email is taken.
	ErrEmailExists = errors.New("email already exists")

	// ErrUserNotFound is returned when no user matches the identifier.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailNotFound is returned when no user matches the email address.
	ErrEmailNotFound = errors.New("no user found for email")

	// ErrInvalidRole is returned when a request names an unknown role.
	ErrInvalidRole = errors.New("invalid role")
)
