package auth

import "context"

type Authenticator interface {
	Authenticate(ctx context.Context, bearerToken string) (Principal, error)
}

// ReadinessChecker is implemented by authenticators that depend on remote
// key material.
type ReadinessChecker interface {
	Ping(ctx context.Context) error
}
