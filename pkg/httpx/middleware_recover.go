package httpx

import (
	"net/http"
	"runtime/debug"

	"github.com/getsentry/sentry-go"

	"github.com/supportportal/portal/pkg/slogx"
)

// Recover converts handler panics into a structured 500 response. When
// Sentry is initialised the panic is reported there as well; otherwise
// CaptureMessage is a no-op.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}

				sentry.WithScope(func(scope *sentry.Scope) {
					scope.SetExtra("panic", rec)
					scope.SetExtra("stack", string(debug.Stack()))
					scope.SetExtra("path", r.URL.Path)
					sentry.CaptureMessage("panic in request handler")
				})

				slogx.FromContext(r.Context()).Error("panic recovered",
					"panic", rec,
					"method", r.Method,
					"path", r.URL.Path,
				)

				WriteError(w, http.StatusInternalServerError, "An error occurred processing the request")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
