package domain

import "net/netip"

type AggregationID string

// Supernet is a prefix that exactly covers Members. Members keep the
// address as it was submitted, so they may not be masked.
type Supernet struct {
	Prefix  netip.Prefix
	Members []netip.Prefix
}

type Aggregation struct {
	ID           AggregationID
	Supernets    []Supernet
	Unaggregated []netip.Prefix
}
