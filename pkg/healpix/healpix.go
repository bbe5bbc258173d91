// Package healpix implements the HEALPix pixelization arithmetic used by the
// viewer: resolution conversions, pixel/angle/vector conversions in ring and
// nested ordering, and nest/ring reordering.
//
// Angles follow the HEALPix convention: theta is the colatitude measured from
// the north pole (0..pi) and phi is the longitude measured eastward (0..2pi).
package healpix

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// Ordering identifies a HEALPix pixel numbering scheme.
type Ordering int

const (
	Undefined Ordering = iota
	Nested
	Ring
)

// String returns the FITS keyword spelling of the ordering.
func (o Ordering) String() string {
	switch o {
	case Nested:
		return "NESTED"
	case Ring:
		return "RING"
	default:
		return "UNDEFINED"
	}
}

// ParseOrdering accepts "ring", "nest", "nested" in any case.
func ParseOrdering(s string) (Ordering, error) {
	switch s {
	case "ring", "RING", "Ring":
		return Ring, nil
	case "nest", "nested", "NEST", "NESTED", "Nested":
		return Nested, nil
	}
	return Undefined, fmt.Errorf("%w: %q", ErrUnknownOrdering, s)
}

var (
	// ErrUnknownOrdering is returned when an ordering name cannot be parsed.
	ErrUnknownOrdering = errors.New("healpix: unknown pixel ordering")
	// ErrInvalidNside is returned for a non-positive resolution parameter.
	ErrInvalidNside = errors.New("healpix: invalid nside")
)

// Base-face row and column offsets, indexed by face number.
var (
	jrll = [12]int{2, 2, 2, 2, 3, 3, 3, 3, 4, 4, 4, 4}
	jpll = [12]int{1, 3, 5, 7, 0, 2, 4, 6, 1, 3, 5, 7}
)

// NSide2NPix returns the number of pixels in a map of resolution nside.
func NSide2NPix(nside int) int {
	return 12 * nside * nside
}

// NPix2NSide returns the resolution of a map holding npix pixels. The pixel
// count is assumed to be valid.
func NPix2NSide(npix int) int {
	return int(math.Sqrt(float64(npix)/12.0) + 0.4)
}

// ValidNside reports an error unless nside is a positive power of two, the
// only resolutions that support nested ordering.
func ValidNside(nside int) error {
	if nside <= 0 || nside&(nside-1) != 0 {
		return fmt.Errorf("%w: %d", ErrInvalidNside, nside)
	}
	return nil
}

func isqrt(v int) int {
	return int(math.Sqrt(float64(v) + 0.5))
}

// Pix2AngRing returns the colatitude and longitude of a ring-ordered pixel
// center.
func Pix2AngRing(nside, pix int) (theta, phi float64) {
	npix := NSide2NPix(nside)
	ncap := 2 * nside * (nside - 1)
	fact2 := 4.0 / float64(npix)

	switch {
	case pix < ncap:
		iring := (1 + isqrt(1+2*pix)) >> 1
		iphi := pix + 1 - 2*iring*(iring-1)
		theta = math.Acos(1 - float64(iring*iring)*fact2)
		phi = (float64(iphi) - 0.5) * math.Pi / float64(2*iring)
	case pix < npix-ncap:
		fact1 := float64(2*nside) * fact2
		ip := pix - ncap
		iring := ip/(4*nside) + nside
		iphi := ip%(4*nside) + 1
		fodd := 0.5
		if (iring+nside)&1 != 0 {
			fodd = 1
		}
		theta = math.Acos(float64(2*nside-iring) * fact1)
		phi = (float64(iphi) - fodd) * math.Pi / float64(2*nside)
	default:
		ip := npix - pix
		iring := (1 + isqrt(2*ip-1)) >> 1
		iphi := 4*iring + 1 - (ip - 2*iring*(iring-1))
		theta = math.Acos(-1 + float64(iring*iring)*fact2)
		phi = (float64(iphi) - 0.5) * math.Pi / float64(2*iring)
	}
	return theta, phi
}

// Ang2PixRing returns the ring-ordered pixel containing (theta, phi).
func Ang2PixRing(nside int, theta, phi float64) int {
	z := math.Cos(theta)
	za := math.Abs(z)
	tt := fmodulo(phi, 2*math.Pi) * 2 / math.Pi

	if za <= 2.0/3.0 {
		temp1 := float64(nside) * (0.5 + tt)
		temp2 := float64(nside) * z * 0.75
		jp := int(temp1 - temp2)
		jm := int(temp1 + temp2)
		ir := nside + 1 + jp - jm
		kshift := 1 - (ir & 1)
		ip := (jp + jm - nside + kshift + 1) / 2
		ip = imodulo(ip, 4*nside)
		return 2*nside*(nside-1) + (ir-1)*4*nside + ip
	}

	tp := tt - math.Floor(tt)
	tmp := float64(nside) * math.Sqrt(3*(1-za))
	jp := int(tp * tmp)
	jm := int((1 - tp) * tmp)
	ir := jp + jm + 1
	ip := imodulo(int(tt*float64(ir)), 4*ir)
	if z > 0 {
		return 2*ir*(ir-1) + ip
	}
	return NSide2NPix(nside) - 2*ir*(ir+1) + ip
}

// Pix2AngNest returns the colatitude and longitude of a nest-ordered pixel
// center.
func Pix2AngNest(nside, pix int) (theta, phi float64) {
	return Pix2AngRing(nside, Nest2Ring(nside, pix))
}

// Ang2PixNest returns the nest-ordered pixel containing (theta, phi).
func Ang2PixNest(nside int, theta, phi float64) int {
	return Ring2Nest(nside, Ang2PixRing(nside, theta, phi))
}

// Pix2Ang dispatches on ordering. Undefined ordering is treated as ring.
func Pix2Ang(nside, pix int, ord Ordering) (theta, phi float64) {
	if ord == Nested {
		return Pix2AngNest(nside, pix)
	}
	return Pix2AngRing(nside, pix)
}

// Ang2Pix dispatches on ordering. Undefined ordering is treated as ring.
func Ang2Pix(nside int, theta, phi float64, ord Ordering) int {
	if ord == Nested {
		return Ang2PixNest(nside, theta, phi)
	}
	return Ang2PixRing(nside, theta, phi)
}

// Pix2Vec returns the unit vector pointing at a pixel center.
func Pix2Vec(nside, pix int, ord Ordering) r3.Vector {
	theta, phi := Pix2Ang(nside, pix, ord)
	return Ang2Vec(theta, phi)
}

// Vec2Pix returns the pixel containing the direction v. v need not be
// normalized.
func Vec2Pix(nside int, v r3.Vector, ord Ordering) int {
	theta, phi := Vec2Ang(v)
	return Ang2Pix(nside, theta, phi, ord)
}

// Ang2Vec converts colatitude/longitude to a unit vector.
func Ang2Vec(theta, phi float64) r3.Vector {
	st := math.Sin(theta)
	return r3.Vector{X: st * math.Cos(phi), Y: st * math.Sin(phi), Z: math.Cos(theta)}
}

// Vec2Ang converts a direction to colatitude/longitude, longitude in [0, 2pi).
func Vec2Ang(v r3.Vector) (theta, phi float64) {
	n := v.Norm()
	if n == 0 {
		return 0, 0
	}
	theta = math.Acos(clamp(v.Z/n, -1, 1))
	phi = math.Atan2(v.Y, v.X)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	return theta, phi
}

// Nest2Ring converts a nested pixel number to ring ordering.
func Nest2Ring(nside, pix int) int {
	ix, iy, face := nest2xyf(nside, pix)
	return xyf2ring(nside, ix, iy, face)
}

// Ring2Nest converts a ring pixel number to nested ordering.
func Ring2Nest(nside, pix int) int {
	ix, iy, face := ring2xyf(nside, pix)
	return xyf2nest(nside, ix, iy, face)
}

// Reorder converts pix from one ordering to another.
func Reorder(nside, pix int, from, to Ordering) int {
	switch {
	case from == to:
		return pix
	case from == Nested && to == Ring:
		return Nest2Ring(nside, pix)
	case from == Ring && to == Nested:
		return Ring2Nest(nside, pix)
	}
	return pix
}

func nest2xyf(nside, pix int) (ix, iy, face int) {
	npface := nside * nside
	face = pix / npface
	ix, iy = Pix2XY(pix % npface)
	return ix, iy, face
}

func xyf2nest(nside, ix, iy, face int) int {
	return face*nside*nside + XY2Pix(ix, iy)
}

func xyf2ring(nside, ix, iy, face int) int {
	nl4 := 4 * nside
	npix := NSide2NPix(nside)
	ncap := 2 * nside * (nside - 1)
	jr := jrll[face]*nside - ix - iy - 1

	var nr, nBefore, kshift int
	switch {
	case jr < nside:
		nr = jr
		nBefore = 2 * nr * (nr - 1)
	case jr > 3*nside:
		nr = nl4 - jr
		nBefore = npix - 2*(nr+1)*nr
	default:
		nr = nside
		nBefore = ncap + (jr-nside)*nl4
		kshift = (jr - nside) & 1
	}

	jp := (jpll[face]*nr + ix - iy + 1 + kshift) / 2
	if jp > nl4 {
		jp -= nl4
	} else if jp < 1 {
		jp += nl4
	}
	return nBefore + jp - 1
}

func ring2xyf(nside, pix int) (ix, iy, face int) {
	nl2 := 2 * nside
	npix := NSide2NPix(nside)
	ncap := 2 * nside * (nside - 1)

	var iring, iphi, kshift, nr int
	switch {
	case pix < ncap:
		iring = (1 + isqrt(1+2*pix)) >> 1
		iphi = pix + 1 - 2*iring*(iring-1)
		nr = iring
		face = (iphi - 1) / nr
	case pix < npix-ncap:
		ip := pix - ncap
		tmp := ip / (4 * nside)
		iring = tmp + nside
		iphi = ip - tmp*4*nside + 1
		kshift = (iring + nside) & 1
		nr = nside
		ire := iring - nside + 1
		irm := nl2 + 2 - ire
		ifm := (iphi - ire/2 + nside - 1) / nside
		ifp := (iphi - irm/2 + nside - 1) / nside
		switch {
		case ifp == ifm:
			face = ifp | 4
		case ifp < ifm:
			face = ifp
		default:
			face = ifm + 8
		}
	default:
		ip := npix - pix
		iring = (1 + isqrt(2*ip-1)) >> 1
		iphi = 4*iring + 1 - (ip - 2*iring*(iring-1))
		nr = iring
		iring = 2*nl2 - iring
		face = 8 + (iphi-1)/nr
	}

	irt := iring - jrll[face]*nside + 1
	ipt := 2*iphi - jpll[face]*nr - kshift - 1
	if ipt >= nl2 {
		ipt -= 8 * nside
	}
	ix = (ipt - irt) >> 1
	iy = (-ipt - irt) >> 1
	return ix, iy, face
}

func fmodulo(v, m float64) float64 {
	if v >= 0 {
		if v < m {
			return v
		}
		return math.Mod(v, m)
	}
	r := math.Mod(v, m) + m
	if r == m {
		return 0
	}
	return r
}

func imodulo(v, m int) int {
	r := v % m
	if r < 0 {
		return r + m
	}
	return r
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
