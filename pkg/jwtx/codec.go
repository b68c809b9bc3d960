package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the default access token lifetime. Tokens are
// stateless and cannot be revoked before expiry, so the TTL doubles as the
// revocation window. Keep it short.
const DefaultTokenTTL = time.Hour

var (
	// ErrNoSecret indicates a missing signing secret. This is a startup
	// configuration error; a Codec is never constructed without a secret.
	ErrNoSecret = errors.New("jwtx: signing secret not configured")

	// ErrInvalidToken covers every verification failure: bad signature,
	// issuer mismatch, expiry, malformed input. Callers must not
	// distinguish these to the client.
	ErrInvalidToken = errors.New("jwtx: invalid token")
)

// Verifier validates a token string and returns its claims if it is legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// Codec issues and verifies HS512-signed access tokens. It holds no mutable
// state beyond the secret loaded at startup, so a single instance is safe
// for concurrent use across requests.
type Codec struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// Option customises a Codec.
type Option func(*Codec)

// WithClock overrides the time source. Used by tests to simulate expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// WithTTL overrides the token lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *Codec) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// NewCodec builds a Codec from a shared secret. An empty secret is a
// configuration error and is rejected here so it can never surface at
// request time.
func NewCodec(secret, issuer, audience string, opts ...Option) (*Codec, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}

	c := &Codec{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      DefaultTokenTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TTL returns the configured token lifetime.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Issue mints a signed token for the given subject and authorities. It does
// not fail under normal operation; an error here means the signing library
// itself misbehaved.
func (c *Codec) Issue(subject string, authorities []string) (string, error) {
	now := c.now().UTC()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings{c.audience},
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		Authorities: authorities,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign token: %w", err)
	}
	return signed, nil
}

// Verify re-derives the signature with the configured secret and checks
// issuer and expiry. Every failure collapses into ErrInvalidToken so the
// rejection reason never leaks to a client.
func (c *Codec) Verify(token string) (Claims, error) {
	var claims Claims

	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}
