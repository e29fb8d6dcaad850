package ipmath

import "errors"

var (
	ErrParse             = errors.New("invalid ip address")
	ErrInvalidPrefix     = errors.New("invalid prefix length")
	ErrIncompatibleWidth = errors.New("incompatible address widths")
	ErrOverflow          = errors.New("address overflow")
)
