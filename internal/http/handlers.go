package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/Flarenzy/supernet/internal/domain"
)

// @Summary Health check
// @Tags health
// @Success 200 {string} string "ok"
// @Router /healthz [get]
func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// @Summary Readiness check
// @Tags health
// @Success 200 {string} string "ready"
// @Failure 503 {string} string "not ready"
// @Router /readyz [get]
func (a *API) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if a.Health != nil {
		if err := a.Health.Ping(ctx); err != nil {
			a.log(ctx).ErrorContext(ctx, "readiness check failed", "err", err.Error())
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// @Summary Aggregate networks into supernets
// @Description Finds the largest supernets that exactly cover contiguous runs of the submitted networks.
// @Tags aggregations
// @Accept json
// @Produce json
// @Param payload body CreateAggregationRequest true "Networks to aggregate"
// @Success 200 {object} AggregationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {string} string "missing token"
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/v1/aggregations [post]
func (a *API) handleCreateAggregation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer r.Body.Close()

	req, err := decode[CreateAggregationRequest](w, r)
	if err != nil {
		a.log(ctx).ErrorContext(ctx, "unmarshaling aggregation from request", "err", err.Error())
		a.respond(ctx, w, r, http.StatusBadRequest, ErrorResponse{Error: "bad request"})
		return
	}
	if err := validateAggregationRequest(req); err != nil {
		a.log(ctx).DebugContext(ctx, "invalid aggregation request", "err", err.Error())
		a.respond(ctx, w, r, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	result, err := a.Service.Aggregate(ctx, req.toInput())
	if err != nil {
		a.respondError(ctx, w, r, err)
		return
	}

	a.respond(ctx, w, r, http.StatusOK, aggregationToResponse(result))
}

func (a *API) respondError(ctx context.Context, w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		a.log(ctx).DebugContext(ctx, "rejected aggregation input", "err", err.Error())
		a.respond(ctx, w, r, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		a.log(ctx).DebugContext(ctx, "duplicate network in aggregation input", "err", err.Error())
		a.respond(ctx, w, r, http.StatusConflict, ErrorResponse{Error: err.Error()})
	default:
		a.log(ctx).ErrorContext(ctx, "uncaught error while aggregating", "err", err.Error())
		a.respond(ctx, w, r, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func (a *API) respond(ctx context.Context, w http.ResponseWriter, r *http.Request, status int, v any) {
	if err := encode(w, r, status, v); err != nil {
		a.log(ctx).ErrorContext(ctx, "cant respond to client", "err", err.Error())
	}
}
