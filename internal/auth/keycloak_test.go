package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/golang-jwt/jwt/v5"
)

const (
	testIssuer   = "http://keycloak.local/realms/supernet"
	testAudience = "supernet-api"
)

type staticKeyfunc struct {
	secret []byte
}

func (s staticKeyfunc) Keyfunc(_ *jwt.Token) (any, error) {
	return s.secret, nil
}

func (s staticKeyfunc) KeyfuncCtx(_ context.Context) jwt.Keyfunc {
	return s.Keyfunc
}

func (s staticKeyfunc) Storage() jwkset.Storage {
	return nil
}

func (s staticKeyfunc) VerificationKeySet(_ context.Context) (jwt.VerificationKeySet, error) {
	return jwt.VerificationKeySet{}, nil
}

func signToken(t *testing.T, claims jwt.MapClaims, secret []byte) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	return signed
}

func makeClaims(issuer string, audience any) jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"iss": issuer,
		"sub": "user-1",
		"aud": audience,
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}
}

func newTestAuthenticator() *keycloakAuthenticator {
	return &keycloakAuthenticator{
		issuer:   testIssuer,
		audience: testAudience,
		jwks:     staticKeyfunc{secret: []byte("test-secret")},
	}
}

func TestKeycloakAuthenticatorRejectsWrongAudience(t *testing.T) {
	authenticator := newTestAuthenticator()

	token := signToken(t, makeClaims(testIssuer, []string{"other-api"}), []byte("test-secret"))
	_, err := authenticator.Authenticate(context.Background(), token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestKeycloakAuthenticatorRejectsWrongIssuer(t *testing.T) {
	authenticator := newTestAuthenticator()

	token := signToken(t, makeClaims("http://keycloak.local/realms/other", []string{testAudience}), []byte("test-secret"))
	_, err := authenticator.Authenticate(context.Background(), token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestKeycloakAuthenticatorRejectsExpiredToken(t *testing.T) {
	authenticator := newTestAuthenticator()

	claims := makeClaims(testIssuer, []string{testAudience})
	claims["exp"] = time.Now().Add(-time.Minute).Unix()
	token := signToken(t, claims, []byte("test-secret"))
	_, err := authenticator.Authenticate(context.Background(), token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestKeycloakAuthenticatorReturnsPrincipal(t *testing.T) {
	authenticator := newTestAuthenticator()

	token := signToken(t, makeClaims(testIssuer, []string{testAudience}), []byte("test-secret"))
	principal, err := authenticator.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if principal.Issuer != testIssuer {
		t.Fatalf("unexpected issuer: %v", principal.Issuer)
	}
	if principal.Subject != "user-1" {
		t.Fatalf("unexpected subject: %v", principal.Subject)
	}

	ctx := WithPrincipal(context.Background(), principal)
	if got := SubjectFromContext(ctx); got != "user-1" {
		t.Fatalf("unexpected subject from context: %q", got)
	}
	if got := SubjectFromContext(context.Background()); got != "" {
		t.Fatalf("expected empty subject for anonymous context, got %q", got)
	}
}

func TestKeycloakAuthenticatorPing(t *testing.T) {
	var down atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if down.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"keys":[]}`))
	}))
	defer server.Close()

	authenticator := newTestAuthenticator()
	authenticator.jwksURL = server.URL

	if err := authenticator.Ping(context.Background()); err != nil {
		t.Fatalf("expected ping to succeed, got %v", err)
	}

	down.Store(true)
	if err := authenticator.Ping(context.Background()); err == nil {
		t.Fatal("expected ping to fail when the jwks endpoint is down")
	}
}

func TestNewKeycloakAuthenticatorDisabledReturnsNil(t *testing.T) {
	authenticator, err := NewKeycloakAuthenticator(context.Background(), Config{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if authenticator != nil {
		t.Fatal("expected nil authenticator when auth is disabled")
	}
}

func TestNewKeycloakAuthenticatorRequiresIssuer(t *testing.T) {
	if _, err := NewKeycloakAuthenticator(context.Background(), Config{Enabled: true}); err == nil {
		t.Fatal("expected error when issuer is empty")
	}
}

func TestNewKeycloakAuthenticatorFailsWhenJWKSUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/certs" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("no jwks"))
	}))
	defer server.Close()

	_, err := NewKeycloakAuthenticator(context.Background(), Config{
		Enabled:  true,
		Issuer:   testIssuer,
		JWKSURL:  server.URL + "/certs",
		Audience: testAudience,
	})
	if err == nil {
		t.Fatal("expected error when jwks endpoint is unavailable")
	}
	if !strings.Contains(err.Error(), "jwks endpoint returned 502") {
		t.Fatalf("unexpected error: %v", err)
	}
}
