package jwtx_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/supportportal/portal/pkg/jwtx"
)

const (
	testSecret   = "test-secret-at-least-not-empty"
	testIssuer   = "portal"
	testAudience = "portal-clients"
)

func newCodec(t *testing.T, opts ...jwtx.Option) *jwtx.Codec {
	t.Helper()
	c, err := jwtx.NewCodec(testSecret, testIssuer, testAudience, opts...)
	require.NoError(t, err)
	return c
}

func TestNewCodecRequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := jwtx.NewCodec("", testIssuer, testAudience)
	require.ErrorIs(t, err, jwtx.ErrNoSecret)
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	codec := newCodec(t)

	token, err := codec.Issue("alice", []string{"user:read", "user:update"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := codec.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Subject)
	require.ElementsMatch(t, []string{"user:read", "user:update"}, claims.Authorities)
	require.Equal(t, testIssuer, claims.Issuer)
}

func TestVerifyEmptyAuthorities(t *testing.T) {
	t.Parallel()

	codec := newCodec(t)

	token, err := codec.Issue("bob", nil)
	require.NoError(t, err)

	claims, err := codec.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "bob", claims.Subject)
	require.Empty(t, claims.Authorities)
	require.False(t, claims.HasAuthority("user:read"))
}

func TestVerifyExpiredToken(t *testing.T) {
	t.Parallel()

	// Freeze the issuing clock two hours in the past so the token is
	// already expired when verified against the real clock.
	past := time.Now().Add(-2 * time.Hour)
	stale := newCodec(t, jwtx.WithClock(func() time.Time { return past }))

	token, err := stale.Issue("alice", []string{"user:read"})
	require.NoError(t, err)

	fresh := newCodec(t)
	_, err = fresh.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrInvalidToken)
}

func TestVerifyForeignSecret(t *testing.T) {
	t.Parallel()

	other, err := jwtx.NewCodec("a-completely-different-secret", testIssuer, testAudience)
	require.NoError(t, err)

	token, err := other.Issue("alice", []string{"user:read"})
	require.NoError(t, err)

	codec := newCodec(t)
	_, err = codec.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrInvalidToken)
}

func TestVerifyForeignIssuer(t *testing.T) {
	t.Parallel()

	other, err := jwtx.NewCodec(testSecret, "someone-else", testAudience)
	require.NoError(t, err)

	token, err := other.Issue("alice", nil)
	require.NoError(t, err)

	codec := newCodec(t)
	_, err = codec.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrInvalidToken)
}

func TestVerifyGarbage(t *testing.T) {
	t.Parallel()

	codec := newCodec(t)

	for _, garbage := range []string{"", "garbage", "a.b.c", "  "} {
		_, err := codec.Verify(garbage)
		require.ErrorIs(t, err, jwtx.ErrInvalidToken)
	}
}

func TestWithTTL(t *testing.T) {
	t.Parallel()

	codec := newCodec(t, jwtx.WithTTL(30*time.Minute))
	require.Equal(t, 30*time.Minute, codec.TTL())

	token, err := codec.Issue("alice", nil)
	require.NoError(t, err)

	claims, err := codec.Verify(token)
	require.NoError(t, err)
	require.WithinDuration(t,
		claims.IssuedAt.Add(30*time.Minute),
		claims.ExpiresAt.Time,
		time.Second,
	)
}
