package domain

import (
	"context"
	"errors"
	"fmt"
	"net/netip"

	"github.com/google/uuid"
	"go4.org/netipx"

	"github.com/Flarenzy/supernet/internal/aggregate"
	"github.com/Flarenzy/supernet/internal/ipmath"
)

const DefaultMaxNetworks = 65536

type aggregationService struct {
	maxNetworks int
}

// NewAggregationService returns a service that accepts at most maxNetworks
// networks per request. A non-positive limit selects DefaultMaxNetworks.
func NewAggregationService(maxNetworks int) AggregationService {
	if maxNetworks <= 0 {
		maxNetworks = DefaultMaxNetworks
	}
	return &aggregationService{maxNetworks: maxNetworks}
}

func (s *aggregationService) Aggregate(ctx context.Context, input AggregateInput) (Aggregation, error) {
	if len(input.Networks) == 0 {
		return Aggregation{}, fmt.Errorf("%w: no networks", ErrInvalidInput)
	}
	if len(input.Networks) > s.maxNetworks {
		return Aggregation{}, fmt.Errorf("%w: %d networks exceeds limit of %d", ErrInvalidInput, len(input.Networks), s.maxNetworks)
	}

	networks := make([]ipmath.Network, 0, len(input.Networks))
	for _, in := range input.Networks {
		n, err := ipmath.ParseNetwork(in.Address, in.Prefix)
		if err != nil {
			return Aggregation{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		networks = append(networks, n)
	}

	if err := ctx.Err(); err != nil {
		return Aggregation{}, err
	}

	set := aggregate.NewSet()
	for _, n := range networks {
		if err := set.Add(n); err != nil {
			if errors.Is(err, aggregate.ErrDuplicateNetwork) {
				return Aggregation{}, fmt.Errorf("%w: %v", ErrConflict, err)
			}
			return Aggregation{}, err
		}
	}

	ordered := set.Networks()
	if err := validateDisjoint(ordered); err != nil {
		return Aggregation{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	supernets := set.Aggregate()
	out := Aggregation{
		ID:           AggregationID(uuid.NewString()),
		Supernets:    make([]Supernet, 0, len(supernets)),
		Unaggregated: prefixes(aggregate.Unaggregated(ordered, supernets)),
	}
	for _, sn := range supernets {
		out.Supernets = append(out.Supernets, Supernet{
			Prefix:  sn.Network.Masked(),
			Members: prefixes(sn.Members),
		})
	}
	return out, nil
}

// validateDisjoint expects networks in ascending network address order. It
// tracks the range reaching furthest so far, so an overlap with any earlier
// network is caught, not just with the previous one.
func validateDisjoint(networks []ipmath.Network) error {
	var (
		reach      netipx.IPRange
		reachOwner netip.Prefix
	)
	for _, n := range networks {
		p := n.Masked()
		r := netipx.RangeOfPrefix(p)
		if reach.IsValid() && reach.Contains(r.From()) {
			return fmt.Errorf("%s overlaps %s", p, reachOwner)
		}
		if !reach.IsValid() || r.To().BitLen() != reach.To().BitLen() || reach.To().Less(r.To()) {
			reach, reachOwner = r, p
		}
	}
	return nil
}

func prefixes(networks []ipmath.Network) []netip.Prefix {
	out := make([]netip.Prefix, 0, len(networks))
	for _, n := range networks {
		out = append(out, n.Prefix())
	}
	return out
}
