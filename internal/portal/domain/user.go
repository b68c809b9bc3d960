package domain

import "time"

// User is the persisted account record. Ownership of the durable Locked
// flag lives here; the in-memory attempt counter only derives an advisory
// lock that is written back through the store when the threshold trips.
type User struct {
	ID              string     `json:"id"`
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	PasswordHash    string     `json:"-"`
	Role            Role       `json:"role"`
	ProfileImageURL string     `json:"profileImageUrl"`
	Active          bool       `json:"active"`
	Locked          bool       `json:"locked"`
	JoinedAt        time.Time  `json:"joinDate"`
	LastLoginAt     *time.Time `json:"lastLoginDate,omitempty"`
	LastLoginShown  *time.Time `json:"lastLoginDateDisplay,omitempty"`
	CreatedAt       time.Time  `json:"-"`
	UpdatedAt       time.Time  `json:"-"`
}

// Principal is the identity encoded into and recovered from a token: the
// stable subject plus its authority set. The core never persists it.
type Principal struct {
	Subject     string
	Authorities []string
	Locked      bool
}

// Principal derives the token-facing identity for the user.
func (u User) Principal() Principal {
	return Principal{
		Subject:     u.Username,
		Authorities: u.Role.Authorities(),
		Locked:      u.Locked,
	}
}
