package http

import (
	"context"
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Flarenzy/supernet/internal/auth"
	"github.com/Flarenzy/supernet/internal/domain"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type API struct {
	Logger        *slog.Logger
	Health        HealthChecker
	Service       domain.AggregationService
	Authenticator auth.Authenticator
}

// NewAPI wires the handlers. health and authenticator may be nil, which
// means always ready and unauthenticated respectively.
func NewAPI(logger *slog.Logger, health HealthChecker, service domain.AggregationService, authenticator auth.Authenticator) *API {
	if logger == nil {
		logger = slog.Default()
	}
	return &API{
		Logger:        logger,
		Health:        health,
		Service:       service,
		Authenticator: authenticator,
	}
}

func (a *API) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", a.handleHealthz)
	mux.HandleFunc("GET /readyz", a.handleReadyz)
	mux.HandleFunc("POST /api/v1/aggregations", a.handleCreateAggregation)
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	return a.requestIDMiddleware(a.authMiddleware(mux))
}
