// Package aggregate finds CIDR supernets that exactly cover contiguous runs
// of networks in an ordered network set.
package aggregate

import (
	"errors"
	"fmt"
	"sync"

	"github.com/emirpasic/gods/maps/treemap"

	"github.com/Flarenzy/supernet/internal/ipmath"
)

var ErrDuplicateNetwork = errors.New("duplicate network")

// Set holds networks keyed by network address in ascending order. It is safe
// for concurrent use; Aggregate works on a snapshot taken under the lock.
type Set struct {
	mu    sync.Mutex
	items *treemap.Map
}

func NewSet() *Set {
	return &Set{
		items: treemap.NewWith(func(a, b interface{}) int {
			return ipmath.Compare(a.(ipmath.Address), b.(ipmath.Address))
		}),
	}
}

// Add inserts n. A network whose network address is already present is
// rejected with ErrDuplicateNetwork and the set is left unchanged.
func (s *Set) Add(n ipmath.Network) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := n.Addr()
	if existing, ok := s.items.Get(key); ok {
		return fmt.Errorf("%w: %s collides with %s", ErrDuplicateNetwork, n, existing.(ipmath.Network))
	}
	s.items.Put(key, n)
	return nil
}

func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Size()
}

// Networks returns the members in ascending network address order.
func (s *Set) Networks() []ipmath.Network {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ipmath.Network, 0, s.items.Size())
	it := s.items.Iterator()
	for it.Next() {
		out = append(out, it.Value().(ipmath.Network))
	}
	return out
}

// Aggregate runs the supernet pass over a snapshot of the set.
func (s *Set) Aggregate() []Supernet {
	return aggregateSorted(s.Networks())
}
