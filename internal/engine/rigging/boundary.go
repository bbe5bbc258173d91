package rigging

import (
	"fmt"
	"math"
)

// BoundaryKind selects the closed form of a face-junction curve.
type BoundaryKind int

const (
	Equatorial BoundaryKind = iota
	NorthPolar
	SouthPolar
)

func (k BoundaryKind) String() string {
	switch k {
	case Equatorial:
		return "equatorial"
	case NorthPolar:
		return "north-polar"
	case SouthPolar:
		return "south-polar"
	}
	return fmt.Sprintf("BoundaryKind(%d)", int(k))
}

// eqSlope is d(phi)/dz along an equatorial junction.
const eqSlope = 0.375 * math.Pi

// Boundary is the curve phi(z) along which two HEALPix base faces meet. The
// curve passes through (z0, phi0) and is immutable once built.
type Boundary struct {
	kind BoundaryKind
	a    float64
	b    float64
	face int
}

// NewEquatorial returns the line phi = a + b*z through (z0, phi0) with slope
// dir*0.375*pi. dir is +1 or -1.
func NewEquatorial(z0, phi0 float64, dir int) Boundary {
	b := float64(dir) * eqSlope
	return Boundary{kind: Equatorial, a: phi0 - b*z0, b: b}
}

// NewNorthPolar returns the polar-cap junction of a north face through
// (z0, phi0).
func NewNorthPolar(z0, phi0 float64, face int) Boundary {
	return Boundary{
		kind: NorthPolar,
		a:    math.Sqrt(1-z0) * (northEdge(face) - phi0),
		face: face,
	}
}

// NewSouthPolar returns the polar-cap junction of a south face through
// (z0, phi0).
func NewSouthPolar(z0, phi0 float64, face int) Boundary {
	return Boundary{
		kind: SouthPolar,
		a:    math.Sqrt(1+z0) * (phi0 - southEdge(face)),
		face: face,
	}
}

func northEdge(face int) float64 { return 0.5 * math.Pi * float64(face+1) }
func southEdge(face int) float64 { return 0.5 * math.Pi * float64(face-8) }

// Kind returns the closed form the boundary uses.
func (b Boundary) Kind() BoundaryKind { return b.kind }

// Phi evaluates the curve at z = cos(theta). Polar forms are only defined
// for faces of their own cap and fail with ErrInvalidBoundary otherwise.
func (b Boundary) Phi(z float64) (float64, error) {
	switch b.kind {
	case Equatorial:
		return b.a + b.b*z, nil
	case NorthPolar:
		if !validPolarFace(b.face) {
			return 0, fmt.Errorf("%w: %s boundary for face %d", ErrInvalidBoundary, b.kind, b.face)
		}
		if z < 1 {
			return northEdge(b.face) - b.a/math.Sqrt(1-z), nil
		}
		return northEdge(b.face), nil
	case SouthPolar:
		if !validPolarFace(b.face) {
			return 0, fmt.Errorf("%w: %s boundary for face %d", ErrInvalidBoundary, b.kind, b.face)
		}
		if z > -1 {
			return southEdge(b.face) + b.a/math.Sqrt(1+z), nil
		}
		return southEdge(b.face), nil
	}
	return 0, fmt.Errorf("%w: kind %d", ErrInvalidBoundary, int(b.kind))
}

func validPolarFace(face int) bool {
	return (face >= 0 && face < 4) || (face >= 8 && face < 12)
}
