package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Flarenzy/supernet/internal/auth"
	"github.com/Flarenzy/supernet/internal/domain"
)

type stubAuthenticator struct {
	authenticateFn func(context.Context, string) (auth.Principal, error)
}

func (s stubAuthenticator) Authenticate(ctx context.Context, token string) (auth.Principal, error) {
	return s.authenticateFn(ctx, token)
}

func newAuthTestAPI(service domain.AggregationService) *API {
	return NewAPI(
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		nil,
		service,
		stubAuthenticator{
			authenticateFn: func(_ context.Context, token string) (auth.Principal, error) {
				if token != "good-token" {
					return auth.Principal{}, auth.ErrInvalidToken
				}
				return auth.Principal{Issuer: "http://keycloak.local/realms/supernet", Subject: "user-1"}, nil
			},
		},
	)
}

func TestAuthMiddlewareAllowsHealthzWithoutToken(t *testing.T) {
	api := newAuthTestAPI(stubService{})
	called := false
	handler := api.authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	}))

	for _, path := range []string{"/healthz", "/readyz", "/swagger/index.html"} {
		called = false
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("%s: expected %d, got %d", path, http.StatusNoContent, rec.Code)
		}
		if !called {
			t.Fatalf("%s: expected next handler to be called", path)
		}
	}
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	api := newAuthTestAPI(stubService{})

	rec := postAggregation(t, api, `{"networks":[{"address":"10.0.0.0","prefix":24}]}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "missing token") {
		t.Fatalf("unexpected body: %q", rec.Body.String())
	}
}

func TestAuthMiddlewareRejectsInvalidToken(t *testing.T) {
	api := newAuthTestAPI(stubService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/aggregations", strings.NewReader(`{"networks":[{"address":"10.0.0.0","prefix":24}]}`))
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()
	api.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid token") {
		t.Fatalf("unexpected body: %q", rec.Body.String())
	}
}

func TestAuthMiddlewareStoresPrincipalInContext(t *testing.T) {
	var subject string
	api := newAuthTestAPI(stubService{
		aggregateFn: func(ctx context.Context, _ domain.AggregateInput) (domain.Aggregation, error) {
			subject = auth.SubjectFromContext(ctx)
			return domain.Aggregation{ID: "agg-1"}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/aggregations", strings.NewReader(`{"networks":[{"address":"10.0.0.0","prefix":24}]}`))
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	api.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if subject != "user-1" {
		t.Fatalf("expected subject user-1 in context, got %q", subject)
	}
}

func TestAuthMiddlewareDisabledPassesThrough(t *testing.T) {
	api := newHandlerTestAPI(stubService{}, nil)

	rec := postAggregation(t, api, `{"networks":[{"address":"10.0.0.0","prefix":24}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, rec.Code)
	}
}
