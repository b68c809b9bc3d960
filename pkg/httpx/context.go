package httpx

import "context"

// Principal is the authenticated identity attached to a request after a
// bearer token passed verification.
type Principal struct {
	Subject     string
	Authorities []string
}

// HasAuthority reports whether the principal holds the given authority.
func (p Principal) HasAuthority(want string) bool {
	for _, a := range p.Authorities {
		if a == want {
			return true
		}
	}
	return false
}

type ctxKey struct{}

// ContextWithPrincipal attaches a principal to the request context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// ContextWithoutPrincipal clears any principal from the context, leaving
// the request anonymous for downstream handlers.
func ContextWithoutPrincipal(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, nil)
}

// PrincipalFromContext returns the authenticated principal for the request,
// or ok=false when the request is anonymous.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}
