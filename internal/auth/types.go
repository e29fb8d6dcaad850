package auth

import "errors"

var ErrInvalidToken = errors.New("invalid token")

type Config struct {
	Enabled  bool
	Issuer   string
	Audience string
	// JWKSURL overrides the keycloak certs endpoint derived from Issuer.
	JWKSURL string
}
