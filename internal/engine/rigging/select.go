package rigging

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"go.uber.org/zap"

	"github.com/Faultbox/skyviewer/pkg/healpix"
	"github.com/Faultbox/skyviewer/pkg/mollweide"
)

// Mollweide image plane, in world units after the 1/sqrt(2) scaling applied
// by toMollweide.
const (
	planeX     = 0.0
	halfWidth  = 2.0
	halfHeight = 1.0
	// parallelEps rejects rays that run along the image plane.
	parallelEps = 1e-12
)

// ProjectSelection intersects the ray o + t*d with the projection surface.
// In sphere mode the surface is the unit sphere and the nearest intersection
// in front of the observer is returned. When the mesh is flat it is the image
// plane, clipped to the ellipse. A miss is reported as ErrNoHit.
func (r *Rigging) ProjectSelection(o, d r3.Vector) (r3.Vector, error) {
	if !r.flat {
		return intersectSphere(o, d)
	}
	return intersectEllipse(o, d)
}

func intersectSphere(o, d r3.Vector) (r3.Vector, error) {
	const srad2 = 1.0
	oo := o.Dot(o)
	od := o.Dot(d)
	dd := d.Dot(d)
	if dd == 0 {
		return r3.Vector{}, ErrNoHit
	}
	disc := od*od - dd*(oo-srad2)
	if disc < 0 {
		return r3.Vector{}, ErrNoHit
	}
	sq := math.Sqrt(disc)
	t1 := (-od - sq) / dd
	t2 := (-od + sq) / dd
	t := t1
	if t < 0 {
		t = t2
	}
	if t < 0 {
		return r3.Vector{}, ErrNoHit
	}
	return o.Add(d.Mul(t)), nil
}

func intersectEllipse(o, d r3.Vector) (r3.Vector, error) {
	if math.Abs(d.X) < parallelEps {
		return r3.Vector{}, ErrNoHit
	}
	t := (planeX - o.X) / d.X
	v := o.Add(d.Mul(t))
	dy := math.Abs(v.Y)
	dz := math.Abs(v.Z)
	if dy >= halfWidth {
		return r3.Vector{}, ErrNoHit
	}
	if dz >= math.Sqrt(1-dy*dy/(halfWidth*halfWidth))*halfHeight {
		return r3.Vector{}, ErrNoHit
	}
	return v, nil
}

// ProjectSelectionAngles is ProjectSelection followed by the conversion of
// the hit point to colatitude and longitude.
func (r *Rigging) ProjectSelectionAngles(o, d r3.Vector) (colat, lambda float64, err error) {
	v, err := r.ProjectSelection(o, d)
	if err != nil {
		return 0, 0, err
	}
	if !r.flat {
		return math.Acos(math.Max(-1, math.Min(1, v.Z))), math.Atan2(v.Y, v.X), nil
	}
	colat, lambda, _, err = mollweide.Inverse(v.Y*math.Sqrt2, v.Z*math.Sqrt2)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrNoHit, err)
	}
	return colat, lambda, nil
}

// PickPixel returns the pixel of a map with the given resolution and
// ordering under the ray.
func (r *Rigging) PickPixel(o, d r3.Vector, nside int, ord healpix.Ordering) (int, error) {
	colat, lambda, err := r.ProjectSelectionAngles(o, d)
	if err != nil {
		return -1, err
	}
	pix := healpix.Ang2Pix(nside, colat, lambda, ord)
	r.log.Debug("selection hit",
		zap.Float64("colat", colat),
		zap.Float64("lambda", lambda),
		zap.Int("pixel", pix))
	return pix, nil
}
