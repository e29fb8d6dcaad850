package auth

import "context"

// Principal is the verified identity behind a bearer token.
type Principal struct {
	Issuer   string
	Subject  string
	Audience any
	Claims   map[string]any
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// SubjectFromContext returns the subject of the request principal, or "" for
// anonymous requests.
func SubjectFromContext(ctx context.Context) string {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		return ""
	}
	return p.Subject
}
