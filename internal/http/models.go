package http

import (
	"net/netip"

	"github.com/Flarenzy/supernet/internal/domain"
)

// NetworkRequest is one network to aggregate. Address does not have to be
// the network address.
type NetworkRequest struct {
	Address string `json:"address" example:"10.0.0.0"`
	Prefix  *int   `json:"prefix" example:"24"`
}

// CreateAggregationRequest is the payload accepted when aggregating networks.
type CreateAggregationRequest struct {
	Networks []NetworkRequest `json:"networks"`
}

// SupernetResponse is one supernet and the submitted networks it replaces.
type SupernetResponse struct {
	Supernet string   `json:"supernet" example:"10.0.0.0/23"`
	Members  []string `json:"members" example:"10.0.0.0/24,10.0.1.0/24"`
}

// AggregationResponse is returned to clients and used in Swagger.
type AggregationResponse struct {
	ID           string             `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Supernets    []SupernetResponse `json:"supernets"`
	Unaggregated []string           `json:"unaggregated" example:"10.0.3.0/24"`
}

// ErrorResponse is a simple envelope for error messages.
type ErrorResponse struct {
	Error string `json:"error" example:"bad request"`
}

func (r CreateAggregationRequest) toInput() domain.AggregateInput {
	in := domain.AggregateInput{Networks: make([]domain.NetworkInput, 0, len(r.Networks))}
	for _, n := range r.Networks {
		in.Networks = append(in.Networks, domain.NetworkInput{
			Address: n.Address,
			Prefix:  *n.Prefix,
		})
	}
	return in
}

func aggregationToResponse(a domain.Aggregation) AggregationResponse {
	out := AggregationResponse{
		ID:           string(a.ID),
		Supernets:    make([]SupernetResponse, 0, len(a.Supernets)),
		Unaggregated: prefixesToStrings(a.Unaggregated),
	}
	for _, s := range a.Supernets {
		out.Supernets = append(out.Supernets, SupernetResponse{
			Supernet: s.Prefix.String(),
			Members:  prefixesToStrings(s.Members),
		})
	}
	return out
}

func prefixesToStrings(prefixes []netip.Prefix) []string {
	out := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		out = append(out, p.String())
	}
	return out
}
