package polar

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/skyviewer/internal/skymap"
	"github.com/Faultbox/skyviewer/pkg/healpix"
)

func TestSpinVector(t *testing.T) {
	axis := r3.Vector{X: 1, Y: 2, Z: 2}.Normalize()
	v := r3.Vector{X: 0.3, Y: -1, Z: 0.5}
	for _, psi := range []float64{0, 0.4, math.Pi / 2, 2.5} {
		out := SpinVector(axis, v, psi)
		assert.InDelta(t, v.Norm(), out.Norm(), 1e-12, "psi %f", psi)
		assert.InDelta(t, v.Dot(axis), out.Dot(axis), 1e-12, "psi %f", psi)
	}

	out := SpinVector(axis, v, 0)
	assert.InDelta(t, 0, out.Sub(v).Norm(), 1e-12)

	perp := r3.Vector{X: 0, Y: 1, Z: -1}.Normalize()
	out = SpinVector(axis, perp, math.Pi)
	assert.InDelta(t, 0, out.Add(perp).Norm(), 1e-12)
}

func TestNewLine(t *testing.T) {
	const size = 0.02
	l := NewLine(1.1, 2.3, 0.7, size)
	assert.InDelta(t, 2*size, l.Length(), 1e-12)

	mid := l.A.Add(l.B).Mul(0.5)
	want := healpix.Ang2Vec(1.1, 2.3).Mul(1 + boost)
	assert.InDelta(t, 0, mid.Sub(want).Norm(), 1e-12)

	// Zero angle lies along the meridian.
	l = NewLine(math.Pi/2, 0, 0, size)
	assert.InDelta(t, 0, l.A.Y, 1e-12)
	assert.InDelta(t, size, math.Abs(l.A.Z), 1e-12)
}

func TestSetSkipsUnobservedPixels(t *testing.T) {
	m, err := skymap.Synthetic(8, healpix.Ring, skymap.LayoutTPN, skymap.DefaultSyntheticOptions())
	require.NoError(t, err)

	observed := 0
	for pix := 0; pix < m.Len(); pix++ {
		if m.Pixel(pix).Nobs > 0 {
			observed++
		}
	}
	require.Less(t, observed, m.Len())

	var s VectorSet
	require.NoError(t, s.Set(m))
	assert.Equal(t, observed, s.Len())
	for _, l := range s.Lines() {
		assert.Greater(t, m.Pixel(l.Pixel).Nobs, 0.0)
		assert.InDelta(t, 2*PixelSize(8), l.Length(), 1e-12)
	}
}

func TestSetRequiresPolarization(t *testing.T) {
	m, err := skymap.New(4, healpix.Ring, skymap.LayoutTN)
	require.NoError(t, err)
	var s VectorSet
	require.ErrorIs(t, s.Set(m), ErrNoPolarization)
	assert.Zero(t, s.Len())
}

func TestMollweideSegments(t *testing.T) {
	s := VectorSet{lines: []Line{
		NewLine(1.0, 0.5, 0.3, 0.05),
		// Straddles lambda = pi, so its ends land on opposite rims.
		NewLine(math.Pi/2, math.Pi, math.Pi/2, 0.05),
	}}

	assert.Len(t, s.Segments(false), 2)

	segs := s.Segments(true)
	require.Len(t, segs, 1)
	assert.InDelta(t, boost, segs[0].A.X, 1e-15)
	assert.InDelta(t, boost, segs[0].B.X, 1e-15)
	assert.LessOrEqual(t, segs[0].Length(), maxProjectedLength)

	verts := AppendVertices(nil, segs)
	assert.Len(t, verts, 12)
}
