package jwtx

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the claim set embedded in a portal access token. Beyond the
// registered claims we only carry the granted authorities; everything else
// a handler needs is looked up by subject.
type Claims struct {
	jwt.RegisteredClaims

	// Authorities are the permission strings granted to the subject,
	// e.g. "user:read" or "user:delete". The claim may be absent for a
	// subject with no grants; callers must treat nil as an empty set.
	Authorities []string `json:"authorities,omitempty"`
}

// HasAuthority reports whether the claim set grants the given authority.
func (c *Claims) HasAuthority(want string) bool {
	for _, a := range c.Authorities {
		if a == want {
			return true
		}
	}
	return false
}
