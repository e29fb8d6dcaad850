package aggregate

import (
	"strings"

	"github.com/Flarenzy/supernet/internal/ipmath"
)

// Supernet is a network that exactly covers Members, which are listed in
// ascending address order.
type Supernet struct {
	Network ipmath.Network
	Members []ipmath.Network
}

func (s Supernet) String() string {
	members := make([]string, 0, len(s.Members))
	for _, m := range s.Members {
		members = append(members, m.String())
	}
	return s.Network.Masked().String() + ": " + strings.Join(members, ", ")
}

// Aggregate inserts networks into a new Set and runs the supernet pass.
func Aggregate(networks []ipmath.Network) ([]Supernet, error) {
	set := NewSet()
	for _, n := range networks {
		if err := set.Add(n); err != nil {
			return nil, err
		}
	}
	return set.Aggregate(), nil
}

// aggregateSorted scans nets left to right. An aligned network seeds a
// candidate, adjacent followers extend its chain, and when the run breaks
// the chain is shortened from the far end until the common prefix of the
// candidate and the chain tail covers them exactly. Tails dropped on the way
// are rescanned as fresh candidates.
func aggregateSorted(nets []ipmath.Network) []Supernet {
	var (
		out       []Supernet
		candidate = -1
		chain     []int
		last      ipmath.Network
	)

	for i := 0; ; {
		if candidate >= 0 {
			if i < len(nets) && ipmath.Adjacent(last, nets[i]) {
				chain = append(chain, i)
				last = nets[i]
				i++
				continue
			}
			if len(chain) > 0 {
				s, ok, rewind := closeRun(nets, candidate, chain)
				if ok {
					out = append(out, s)
				}
				if rewind >= 0 {
					i = rewind
				}
			}
			candidate, chain = -1, nil
		}

		if i >= len(nets) {
			break
		}
		if nets[i].IsAligned() {
			candidate = i
			last = nets[i]
		}
		i++
	}

	return out
}

// closeRun pops chain tails until a trial supernet over the candidate fits.
// rewind is the position of the lowest dropped tail, or -1.
func closeRun(nets []ipmath.Network, candidate int, chain []int) (Supernet, bool, int) {
	cand := nets[candidate]
	rewind := -1

	for len(chain) > 0 {
		tail := chain[len(chain)-1]
		chain = chain[:len(chain)-1]

		bits, err := ipmath.CommonPrefixLen(nets[tail].Addr(), cand.Addr())
		if err == nil {
			trial, err := ipmath.NewNetwork(cand.IP(), bits)
			if err == nil && trial.Broadcast() == nets[tail].Broadcast() && trial.Addr() == cand.Addr() {
				members := make([]ipmath.Network, 0, len(chain)+2)
				members = append(members, cand)
				for _, idx := range chain {
					members = append(members, nets[idx])
				}
				members = append(members, nets[tail])
				return Supernet{Network: trial, Members: members}, true, rewind
			}
		}
		rewind = tail
	}

	return Supernet{}, false, rewind
}

// Unaggregated returns the networks that are not a member of any supernet,
// in ascending address order.
func Unaggregated(networks []ipmath.Network, supernets []Supernet) []ipmath.Network {
	consumed := make(map[ipmath.Address]struct{})
	for _, s := range supernets {
		for _, m := range s.Members {
			consumed[m.Addr()] = struct{}{}
		}
	}

	set := NewSet()
	for _, n := range networks {
		if _, ok := consumed[n.Addr()]; ok {
			continue
		}
		_ = set.Add(n)
	}
	return set.Networks()
}
