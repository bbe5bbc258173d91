// Package polar computes the headless vectors drawn over polarized sky maps:
// one short segment per observed pixel, oriented at the pixel's
// polarization angle.
package polar

import (
	"errors"
	"math"

	"github.com/golang/geo/r3"
	"go.uber.org/zap"

	"github.com/Faultbox/skyviewer/internal/logger"
	"github.com/Faultbox/skyviewer/internal/skymap"
	"github.com/Faultbox/skyviewer/pkg/healpix"
	"github.com/Faultbox/skyviewer/pkg/mollweide"
)

const (
	// boost lifts segments off the surface they are drawn on.
	boost = 0.001
	// maxProjectedLength drops Mollweide segments torn across the rim.
	maxProjectedLength = 2.2
)

// ErrNoPolarization is returned by Set for maps without polarization or
// observation counts.
var ErrNoPolarization = errors.New("polar: map lacks polarization or Nobs")

// SpinVector rotates v by psi about the unit axis e.
func SpinVector(e, v r3.Vector, psi float64) r3.Vector {
	c, s := math.Cos(psi), math.Sin(psi)
	k := 1 - c
	return r3.Vector{
		X: (c+e.X*e.X*k)*v.X + (e.X*e.Y*k+e.Z*s)*v.Y + (e.X*e.Z*k-e.Y*s)*v.Z,
		Y: (e.X*e.Y*k-e.Z*s)*v.X + (c+e.Y*e.Y*k)*v.Y + (e.Y*e.Z*k+e.X*s)*v.Z,
		Z: (e.X*e.Z*k+e.Y*s)*v.X + (e.Y*e.Z*k-e.X*s)*v.Y + (c+e.Z*e.Z*k)*v.Z,
	}
}

// Line is one headless vector.
type Line struct {
	Pixel int
	A, B  r3.Vector
}

// Length returns the distance between the endpoints.
func (l Line) Length() float64 { return l.A.Sub(l.B).Norm() }

// NewLine builds the segment for a pixel centered at (theta, phi) with
// polarization angle gamma measured from the meridian. size is the half
// length.
func NewLine(theta, phi, gamma, size float64) Line {
	v0 := healpix.Ang2Vec(theta, phi)
	// Unit tangent towards the north pole; Q=1, U=0 points here.
	vin := healpix.Ang2Vec(theta-math.Pi/2, phi)
	base := v0.Mul(1 + boost)
	return Line{
		A: base.Add(SpinVector(v0, vin, gamma).Mul(size)),
		B: base.Add(SpinVector(v0, vin, gamma+math.Pi).Mul(size)),
	}
}

// PixelSize returns the segment half length used for resolution nside.
func PixelSize(nside int) float64 {
	return math.Sqrt(math.Pi/3) / float64(nside) / 2
}

// VectorSet holds the segments of one map.
type VectorSet struct {
	lines []Line
}

// Set rebuilds the set from m. Pixels with no observations are skipped.
func (s *VectorSet) Set(m *skymap.Map) error {
	s.lines = s.lines[:0]
	if !m.Capabilities().Has(skymap.HasPolarization | skymap.HasNobs) {
		return ErrNoPolarization
	}

	size := PixelSize(m.Nside())
	for pix := range m.Len() {
		p := m.Pixel(pix)
		if p.Nobs <= 0 {
			continue
		}
		theta, phi := m.Pixel2Angles(pix)
		l := NewLine(theta, phi, p.Pang, size)
		l.Pixel = pix
		s.lines = append(s.lines, l)
	}
	logger.Named("polar").Debug("polarization vectors set",
		zap.Int("lines", len(s.lines)),
		zap.Int("pixels", m.Len()))
	return nil
}

// Len returns the number of segments.
func (s *VectorSet) Len() int { return len(s.lines) }

// Lines returns the sphere-space segments.
func (s *VectorSet) Lines() []Line { return s.lines }

// Segments returns the segments to draw. In Mollweide mode each endpoint is
// projected onto the image plane just in front of the map, and segments
// stretched across the ellipse's rim are left out.
func (s *VectorSet) Segments(mollweideView bool) []Line {
	if !mollweideView {
		return s.lines
	}
	out := make([]Line, 0, len(s.lines))
	for _, l := range s.lines {
		p := Line{Pixel: l.Pixel, A: project(l.A, boost), B: project(l.B, boost)}
		if p.Length() > maxProjectedLength {
			continue
		}
		out = append(out, p)
	}
	return out
}

// project maps a direction onto the Mollweide plane x = hgt, using the same
// 1/sqrt(2) scaling as the rigging.
func project(v r3.Vector, hgt float64) r3.Vector {
	phi := math.Asin(v.Z / v.Norm())
	lambda := math.Atan2(v.Y, v.X)
	x, y, _ := mollweide.Forward(phi, lambda)
	return r3.Vector{X: hgt, Y: x / math.Sqrt2, Z: y / math.Sqrt2}
}

// AppendVertices appends each segment's endpoints as x y z r g b, white.
func AppendVertices(dst []float32, lines []Line) []float32 {
	for _, l := range lines {
		dst = append(dst,
			float32(l.A.X), float32(l.A.Y), float32(l.A.Z), 1, 1, 1,
			float32(l.B.X), float32(l.B.Y), float32(l.B.Z), 1, 1, 1)
	}
	return dst
}
