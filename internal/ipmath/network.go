package ipmath

import (
	"fmt"
	"net/netip"
)

// Network is an address with a prefix length. The address is kept as given
// and is not necessarily the network address.
type Network struct {
	ip   Address
	bits int
}

// NewNetwork builds a Network, checking bits against the family of ip.
func NewNetwork(ip Address, bits int) (Network, error) {
	if !ip.IsValid() {
		return Network{}, fmt.Errorf("%w: zero address", ErrParse)
	}
	if bits < 0 || bits > ip.BitLen() {
		return Network{}, fmt.Errorf("%w: /%d for %s", ErrInvalidPrefix, bits, ip.Family())
	}
	return Network{ip: ip, bits: bits}, nil
}

// ParseNetwork builds a Network from address text and a prefix length.
func ParseNetwork(addr string, bits int) (Network, error) {
	ip, err := ParseAddress(addr)
	if err != nil {
		return Network{}, err
	}
	return NewNetwork(ip, bits)
}

// ParsePrefix builds a Network from CIDR text such as "10.0.0.2/24".
func ParsePrefix(s string) (Network, error) {
	p, err := netip.ParsePrefix(s)
	if err != nil {
		return Network{}, fmt.Errorf("%w: %q", ErrParse, s)
	}
	return NewNetwork(AddressFrom(p.Addr()), p.Bits())
}

// MustParsePrefix is like ParsePrefix but panics on error.
func MustParsePrefix(s string) Network {
	n, err := ParsePrefix(s)
	if err != nil {
		panic(err)
	}
	return n
}

func (n Network) IP() Address {
	return n.ip
}

func (n Network) Bits() int {
	return n.bits
}

func (n Network) Family() Family {
	return n.ip.Family()
}

func (n Network) Netmask() Address {
	return mask(n.Family(), n.bits)
}

// Addr returns the network address (ip AND netmask).
func (n Network) Addr() Address {
	return and(n.ip, n.Netmask())
}

func (n Network) Wildcard() Address {
	return Not(n.Netmask())
}

// Broadcast returns the last address of the network.
func (n Network) Broadcast() Address {
	return or(n.Addr(), n.Wildcard())
}

// IsAligned reports whether n is the lower half of its immediate parent
// block. A /0 network has no parent and is never aligned.
func (n Network) IsAligned() bool {
	if n.bits == 0 {
		return false
	}
	parent := Network{ip: n.ip, bits: n.bits - 1}
	return parent.Addr() == n.Addr()
}

// Prefix returns n as a netip.Prefix with the address as given.
func (n Network) Prefix() netip.Prefix {
	return netip.PrefixFrom(n.ip.Addr(), n.bits)
}

// Masked returns n as a netip.Prefix of its network address.
func (n Network) Masked() netip.Prefix {
	return netip.PrefixFrom(n.Addr().Addr(), n.bits)
}

func (n Network) String() string {
	return fmt.Sprintf("%s/%d", n.ip, n.bits)
}

// Adjacent reports whether one network starts right after the other ends.
// An all-ones broadcast has no successor, so that direction is never
// adjacent.
func Adjacent(a, b Network) bool {
	if next, err := Increment(a.Broadcast()); err == nil && next == b.Addr() {
		return true
	}
	if next, err := Increment(b.Broadcast()); err == nil && next == a.Addr() {
		return true
	}
	return false
}
