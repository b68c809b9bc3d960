package httpx

import (
	"net/http"
	"strings"

	"github.com/supportportal/portal/pkg/jwtx"
	"github.com/supportportal/portal/pkg/slogx"
)

// BearerPrefix is the scheme prefix expected in the Authorization header.
const BearerPrefix = "Bearer "

// Authenticate resolves a bearer token into a request-scoped Principal.
//
// This middleware never rejects a request. A missing, malformed, expired or
// otherwise invalid token leaves the request anonymous and defers the access
// decision to RequireAnyAuthority further down the chain. Pre-flight OPTIONS
// probes short-circuit with 200 and are not treated as business requests.
func Authenticate(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, BearerPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			raw := strings.TrimSpace(strings.TrimPrefix(authz, BearerPrefix))

			claims, err := v.Verify(raw)
			if err != nil {
				// Swallowed on purpose: the request proceeds
				// anonymously and the permission layer decides.
				slogx.FromContext(ctx).Debug("bearer token rejected", "err", err)
				next.ServeHTTP(w, r.WithContext(ContextWithoutPrincipal(ctx)))
				return
			}

			// Idempotent under retried internal dispatch: an
			// already-populated principal is left untouched.
			if _, ok := PrincipalFromContext(ctx); !ok {
				ctx = ContextWithPrincipal(ctx, Principal{
					Subject:     claims.Subject,
					Authorities: claims.Authorities,
				})
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
