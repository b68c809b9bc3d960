package httpx

import "net/http"

const accessDeniedMessage = "You need to log in to access this resource"
const notPermittedMessage = "You do not have permission to access this resource"

// RequireAuthenticated admits any request that carries a valid principal.
func RequireAuthenticated() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := PrincipalFromContext(r.Context()); !ok {
				WriteError(w, http.StatusUnauthorized, accessDeniedMessage)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnyAuthority admits requests whose principal holds at least one of
// the listed authorities. Anonymous requests get 401, authenticated ones
// without a matching authority get 403, both with the structured body.
func RequireAnyAuthority(required ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				WriteError(w, http.StatusUnauthorized, accessDeniedMessage)
				return
			}

			for _, want := range required {
				if p.HasAuthority(want) {
					next.ServeHTTP(w, r)
					return
				}
			}

			WriteError(w, http.StatusForbidden, notPermittedMessage)
		})
	}
}
