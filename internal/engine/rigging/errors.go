package rigging

import "errors"

var (
	// ErrInvalidBoundary is returned when a polar boundary is evaluated for an
	// equatorial face (4-7) or a face number outside 0-11.
	ErrInvalidBoundary = errors.New("rigging: invalid boundary state")
	// ErrRiggingNotSet is returned when a face is drawn before its mesh has
	// been generated.
	ErrRiggingNotSet = errors.New("rigging: rigging not set")
	// ErrBreakpoints is returned when a face receives a breakpoint list whose
	// length does not match 2*nside+1.
	ErrBreakpoints = errors.New("rigging: breakpoint count does not match nside")
	// ErrNoHit is returned by the selection projections when the ray misses
	// the sphere or the Mollweide ellipse.
	ErrNoHit = errors.New("rigging: ray does not hit the projection")
)
