package domain

import (
	"context"
	"log/slog"
)

type loggingAggregationService struct {
	logger *slog.Logger
	next   AggregationService
}

func NewLoggingAggregationService(logger *slog.Logger, next AggregationService) AggregationService {
	if logger == nil || next == nil {
		return next
	}
	return &loggingAggregationService{
		logger: logger,
		next:   next,
	}
}

func (s *loggingAggregationService) Aggregate(ctx context.Context, input AggregateInput) (Aggregation, error) {
	result, err := s.next.Aggregate(ctx, input)
	if err != nil {
		s.logger.ErrorContext(ctx, "aggregate networks failed", "networks", len(input.Networks), "err", err.Error())
		return Aggregation{}, err
	}

	s.logger.InfoContext(ctx, "networks aggregated",
		"id", string(result.ID),
		"networks", len(input.Networks),
		"supernets", len(result.Supernets),
		"unaggregated", len(result.Unaggregated),
	)
	for _, sn := range result.Supernets {
		s.logger.DebugContext(ctx, "supernet found", "id", string(result.ID), "supernet", sn.Prefix.String(), "members", len(sn.Members))
	}
	return result, nil
}
