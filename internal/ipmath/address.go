// Package ipmath implements fixed-width address arithmetic and the CIDR
// network derivations (netmask, network, wildcard, broadcast) built on it.
package ipmath

import (
	"bytes"
	"fmt"
	"math/bits"
	"net/netip"
)

// Family is the address family of an Address, implied by its byte width.
type Family int

const (
	IPv4 Family = 4
	IPv6 Family = 6
)

// Len returns the byte width of addresses in the family.
func (f Family) Len() int {
	if f == IPv4 {
		return 4
	}
	return 16
}

// Bits returns the bit width of addresses in the family.
func (f Family) Bits() int {
	return f.Len() * 8
}

func (f Family) String() string {
	switch f {
	case IPv4:
		return "ipv4"
	case IPv6:
		return "ipv6"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// Address is an immutable 4 or 16 byte address value. The zero Address is
// invalid and has width 0. Two Addresses are equal (==) iff their widths and
// bytes are identical.
type Address struct {
	b [16]byte
	n uint8
}

// ParseAddress parses textual IPv4 or IPv6 into its fixed-width form.
// IPv4-mapped IPv6 text keeps the 16 byte form.
func ParseAddress(s string) (Address, error) {
	ip, err := netip.ParseAddr(s)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %q", ErrParse, s)
	}
	if ip.Zone() != "" {
		return Address{}, fmt.Errorf("%w: zoned address %q", ErrParse, s)
	}
	return AddressFrom(ip), nil
}

// AddressFrom converts a netip.Addr. An invalid netip.Addr yields the zero
// Address.
func AddressFrom(ip netip.Addr) Address {
	var a Address
	switch {
	case ip.Is4():
		v := ip.As4()
		copy(a.b[:], v[:])
		a.n = 4
	case ip.Is6():
		a.b = ip.As16()
		a.n = 16
	}
	return a
}

// AddressFromBytes copies a 4 or 16 byte slice into an Address.
func AddressFromBytes(b []byte) (Address, error) {
	if len(b) != 4 && len(b) != 16 {
		return Address{}, fmt.Errorf("%w: %d bytes", ErrParse, len(b))
	}
	var a Address
	copy(a.b[:], b)
	a.n = uint8(len(b))
	return a, nil
}

// Mask builds the netmask of family f with the first n bits set.
func Mask(f Family, n int) (Address, error) {
	if f != IPv4 && f != IPv6 {
		return Address{}, fmt.Errorf("%w: unknown family %d", ErrInvalidPrefix, int(f))
	}
	if n < 0 || n > f.Bits() {
		return Address{}, fmt.Errorf("%w: /%d for %s", ErrInvalidPrefix, n, f)
	}
	return mask(f, n), nil
}

func mask(f Family, n int) Address {
	a := Address{n: uint8(f.Len())}
	for i := 0; i < int(a.n); i++ {
		switch {
		case n >= 8:
			a.b[i] = 0xff
			n -= 8
		case n > 0:
			a.b[i] = ^byte(0xff >> uint(n))
			n = 0
		}
	}
	return a
}

// IsValid reports whether a holds a 4 or 16 byte value.
func (a Address) IsValid() bool {
	return a.n == 4 || a.n == 16
}

// Len returns the byte width of a.
func (a Address) Len() int {
	return int(a.n)
}

// BitLen returns the bit width of a.
func (a Address) BitLen() int {
	return int(a.n) * 8
}

func (a Address) Family() Family {
	if a.n == 4 {
		return IPv4
	}
	return IPv6
}

// Bytes returns a copy of the address bytes.
func (a Address) Bytes() []byte {
	out := make([]byte, a.n)
	copy(out, a.b[:a.n])
	return out
}

// Addr converts a back to a netip.Addr.
func (a Address) Addr() netip.Addr {
	switch a.n {
	case 4:
		return netip.AddrFrom4([4]byte(a.b[:4]))
	case 16:
		return netip.AddrFrom16(a.b)
	default:
		return netip.Addr{}
	}
}

func (a Address) String() string {
	if !a.IsValid() {
		return "invalid address"
	}
	return a.Addr().String()
}

// Compare orders addresses by width, then as unsigned big-endian integers.
func Compare(a, b Address) int {
	if a.n != b.n {
		if a.n < b.n {
			return -1
		}
		return 1
	}
	return bytes.Compare(a.b[:a.n], b.b[:b.n])
}

func sameWidth(a, b Address) error {
	if a.n != b.n {
		return fmt.Errorf("%w: %d and %d bytes", ErrIncompatibleWidth, a.n, b.n)
	}
	return nil
}

// And returns the byte-wise AND of a and b.
func And(a, b Address) (Address, error) {
	if err := sameWidth(a, b); err != nil {
		return Address{}, err
	}
	return and(a, b), nil
}

// Or returns the byte-wise OR of a and b.
func Or(a, b Address) (Address, error) {
	if err := sameWidth(a, b); err != nil {
		return Address{}, err
	}
	return or(a, b), nil
}

// Not returns the byte-wise complement of a.
func Not(a Address) Address {
	out := Address{n: a.n}
	for i := 0; i < int(a.n); i++ {
		out.b[i] = ^a.b[i]
	}
	return out
}

func and(a, b Address) Address {
	out := Address{n: a.n}
	for i := 0; i < int(a.n); i++ {
		out.b[i] = a.b[i] & b.b[i]
	}
	return out
}

func or(a, b Address) Address {
	out := Address{n: a.n}
	for i := 0; i < int(a.n); i++ {
		out.b[i] = a.b[i] | b.b[i]
	}
	return out
}

// Increment adds one to a, carrying from the last byte leftward. It fails
// with ErrOverflow on the all-ones address.
func Increment(a Address) (Address, error) {
	out := a
	for i := int(a.n) - 1; i >= 0; i-- {
		out.b[i]++
		if out.b[i] != 0 {
			return out, nil
		}
	}
	return Address{}, fmt.Errorf("%w: %s has no successor", ErrOverflow, a)
}

// CommonPrefixLen returns the number of leading bits a and b share, or the
// full bit width when they are equal.
func CommonPrefixLen(a, b Address) (int, error) {
	if err := sameWidth(a, b); err != nil {
		return 0, err
	}
	return commonPrefixLen(a, b), nil
}

func commonPrefixLen(a, b Address) int {
	for i := 0; i < int(a.n); i++ {
		if x := a.b[i] ^ b.b[i]; x != 0 {
			return i*8 + bits.LeadingZeros8(x)
		}
	}
	return a.BitLen()
}
