package skymap

import "errors"

var (
	// ErrUnknownField indicates a field name that does not parse.
	ErrUnknownField = errors.New("skymap: unknown field")
	// ErrUnsupportedField indicates a field the map's layout does not carry.
	ErrUnsupportedField = errors.New("skymap: field not present in map")
	// ErrUnknownLayout indicates a layout name that does not parse.
	ErrUnknownLayout = errors.New("skymap: unknown layout")
	// ErrPixelOutOfRange indicates a pixel index outside 0..npix-1.
	ErrPixelOutOfRange = errors.New("skymap: pixel index out of range")
	// ErrEmpty indicates an operation that needs at least one value.
	ErrEmpty = errors.New("skymap: no values")
)
