package httpx

import "net/http"

// Middleware is the single composable contract every interceptor in this
// package implements: inspect the request, maybe mutate its context, then
// delegate to next.
type Middleware func(next http.Handler) http.Handler

// Chain wraps h with the given middlewares so the first listed runs first.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
