package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/supportportal/portal/internal/portal/domain"
	httpapi "github.com/supportportal/portal/internal/portal/http"
	"github.com/supportportal/portal/internal/portal/mail"
	"github.com/supportportal/portal/internal/portal/media"
	"github.com/supportportal/portal/internal/portal/service"
	"github.com/supportportal/portal/internal/portal/store/drivers/sqlite"
	"github.com/supportportal/portal/pkg/cryptox"
	"github.com/supportportal/portal/pkg/idx"
	"github.com/supportportal/portal/pkg/jwtx"
	"github.com/supportportal/portal/pkg/lockout"
)

const testTokenHeader = "Jwt-Token"

func slogDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testEnv struct {
	router *httpapi.Router
	store  *sqlite.Store
	codec  *jwtx.Codec
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore("file:" + filepath.Join(t.TempDir(), "portal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	codec, err := jwtx.NewCodec("test-secret", "portal-test", "portal-clients")
	require.NoError(t, err)

	images := media.NewImageStore(t.TempDir())
	guard := &service.LoginAttemptGuard{
		Tracker: lockout.NewTracker(lockout.Config{}),
		Store:   st,
	}

	router := httpapi.NewRouter(codec, testTokenHeader, "test", st, slogDiscard())
	router.AuthService = &service.AuthService{Store: st, Codec: codec, Guard: guard}
	router.UserService = &service.UserService{Store: st, Mailer: mail.LogMailer{}, Images: images}
	router.Images = images
	router.ApplyRoutes()

	return &testEnv{router: router, store: st, codec: codec}
}

func (e *testEnv) seedUser(t *testing.T, username, password string, role domain.Role) domain.User {
	t.Helper()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	user := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		JoinedAt:     time.Now().UTC(),
	}
	require.NoError(t, e.store.Users().CreateUser(context.Background(), user))
	return user
}

func (e *testEnv) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	return e.doFrom(t, method, path, body, token, "")
}

// doFrom lets tests pick the apparent client IP so they can sidestep the
// per-IP rate limiter when hammering the login endpoint on purpose.
func (e *testEnv) doFrom(t *testing.T, method, path, body, token, ip string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if ip != "" {
		req.Header.Set("X-Forwarded-For", ip)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) token(t *testing.T, user domain.User) string {
	t.Helper()

	p := user.Principal()
	token, err := e.codec.Issue(p.Subject, p.Authorities)
	require.NoError(t, err)
	return token
}

func TestLoginEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("success returns the user with the token in the header", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.seedUser(t, "alice", "hunter2pass", domain.RoleUser)

		rec := env.do(t, http.MethodPost, "/v1/users/login",
			`{"username":"alice","password":"hunter2pass"}`, "")
		require.Equal(t, http.StatusOK, rec.Code)

		token := rec.Header().Get(testTokenHeader)
		require.NotEmpty(t, token)

		claims, err := env.codec.Verify(token)
		require.NoError(t, err)
		require.Equal(t, "alice", claims.Subject)

		var user domain.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
		require.Equal(t, "alice", user.Username)
		require.NotContains(t, rec.Body.String(), "password")
	})

	t.Run("bad credentials return the structured 401 body", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.seedUser(t, "alice", "hunter2pass", domain.RoleUser)

		rec := env.do(t, http.MethodPost, "/v1/users/login",
			`{"username":"alice","password":"wrong"}`, "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		var body struct {
			StatusCode int    `json:"statusCode"`
			Status     string `json:"status"`
			Reason     string `json:"reason"`
			Message    string `json:"message"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, http.StatusUnauthorized, body.StatusCode)
		require.Equal(t, "Unauthorized", body.Status)
		require.Equal(t, "UNAUTHORIZED", body.Reason)
		require.Empty(t, rec.Header().Get(testTokenHeader))
	})

	t.Run("locked account cannot log in even with the right password", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.seedUser(t, "bob", "hunter2pass", domain.RoleUser)

		for i := range lockout.DefaultMaxAttempts {
			env.doFrom(t, http.MethodPost, "/v1/users/login",
				`{"username":"bob","password":"wrong"}`, "",
				fmt.Sprintf("10.0.0.%d", i+1))
		}

		rec := env.doFrom(t, http.MethodPost, "/v1/users/login",
			`{"username":"bob","password":"hunter2pass"}`, "", "10.0.1.1")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Body.String(), "locked")
	})
}

func TestUserEndpointsAuthorization(t *testing.T) {
	t.Parallel()

	t.Run("anonymous list is rejected with 401", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		rec := env.do(t, http.MethodGet, "/v1/users", "", "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("a standard user may read but not delete", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		user := env.seedUser(t, "alice", "hunter2pass", domain.RoleUser)
		env.seedUser(t, "victim", "hunter2pass", domain.RoleUser)
		token := env.token(t, user)

		rec := env.do(t, http.MethodGet, "/v1/users", "", token)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(t, http.MethodDelete, "/v1/users/victim", "", token)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("a super admin may delete", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		admin := env.seedUser(t, "root", "hunter2pass", domain.RoleSuperAdmin)
		env.seedUser(t, "victim", "hunter2pass", domain.RoleUser)

		rec := env.do(t, http.MethodDelete, "/v1/users/victim", "", env.token(t, admin))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(t, http.MethodGet, "/v1/users/victim", "", env.token(t, admin))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("an expired token is treated as anonymous", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		past := time.Now().Add(-2 * time.Hour)
		expiredCodec, err := jwtx.NewCodec("test-secret", "portal-test", "portal-clients",
			jwtx.WithClock(func() time.Time { return past }))
		require.NoError(t, err)

		token, err := expiredCodec.Issue("alice", []string{"user:read"})
		require.NoError(t, err)

		rec := env.do(t, http.MethodGet, "/v1/users", "", token)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/livez", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = env.do(t, http.MethodGet, "/readyz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"database":"ok"`)
}
