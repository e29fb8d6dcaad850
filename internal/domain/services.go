package domain

import "context"

type AggregationService interface {
	Aggregate(ctx context.Context, input AggregateInput) (Aggregation, error)
}
