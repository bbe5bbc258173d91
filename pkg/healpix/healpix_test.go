package healpix

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolutionArithmetic(t *testing.T) {
	for _, nside := range []int{1, 2, 4, 8, 64, 512} {
		npix := NSide2NPix(nside)
		assert.Equal(t, 12*nside*nside, npix)
		assert.Equal(t, nside, NPix2NSide(npix))
		require.NoError(t, ValidNside(nside))
	}
	require.ErrorIs(t, ValidNside(0), ErrInvalidNside)
	require.ErrorIs(t, ValidNside(6), ErrInvalidNside)
}

func TestPix2AngRingKnownValues(t *testing.T) {
	theta, phi := Pix2AngRing(1, 0)
	assert.InDelta(t, math.Acos(2.0/3.0), theta, 1e-12)
	assert.InDelta(t, math.Pi/4, phi, 1e-12)

	theta, phi = Pix2AngRing(1, 4)
	assert.InDelta(t, math.Pi/2, theta, 1e-12)
	assert.InDelta(t, 0, phi, 1e-12)

	theta, _ = Pix2AngRing(1, 11)
	assert.InDelta(t, math.Acos(-2.0/3.0), theta, 1e-12)
}

func TestRingAngleRoundTrip(t *testing.T) {
	for _, nside := range []int{1, 2, 4, 8, 16} {
		for pix := 0; pix < NSide2NPix(nside); pix++ {
			theta, phi := Pix2AngRing(nside, pix)
			require.Equal(t, pix, Ang2PixRing(nside, theta, phi), "nside=%d pix=%d", nside, pix)
		}
	}
}

func TestNestAngleRoundTrip(t *testing.T) {
	for _, nside := range []int{1, 2, 4, 8} {
		for pix := 0; pix < NSide2NPix(nside); pix++ {
			theta, phi := Pix2AngNest(nside, pix)
			require.Equal(t, pix, Ang2PixNest(nside, theta, phi), "nside=%d pix=%d", nside, pix)
		}
	}
}

func TestNestRingPermutation(t *testing.T) {
	for _, nside := range []int{1, 2, 4, 8, 32} {
		npix := NSide2NPix(nside)
		seen := make([]bool, npix)
		for pix := 0; pix < npix; pix++ {
			ring := Nest2Ring(nside, pix)
			require.True(t, ring >= 0 && ring < npix, "nside=%d nest=%d ring=%d", nside, pix, ring)
			require.False(t, seen[ring], "ring pixel %d hit twice", ring)
			seen[ring] = true
			require.Equal(t, pix, Ring2Nest(nside, ring))
		}
	}
}

func TestNestedFaceLayout(t *testing.T) {
	// The first nested pixel of every face is cell (0,0) of that face.
	nside := 4
	for face := 0; face < 12; face++ {
		pix := face * nside * nside
		ix, iy, f := nest2xyf(nside, pix)
		assert.Equal(t, face, f)
		assert.Equal(t, 0, ix)
		assert.Equal(t, 0, iy)
	}
}

func TestXY2Pix(t *testing.T) {
	assert.Equal(t, 0, XY2Pix(0, 0))
	assert.Equal(t, 1, XY2Pix(1, 0))
	assert.Equal(t, 2, XY2Pix(0, 1))
	assert.Equal(t, 3, XY2Pix(1, 1))
	assert.Equal(t, 4, XY2Pix(2, 0))

	for _, c := range [][2]int{{0, 0}, {5, 9}, {127, 127}, {128, 3}, {300, 1000}} {
		ix, iy := Pix2XY(XY2Pix(c[0], c[1]))
		assert.Equal(t, c[0], ix)
		assert.Equal(t, c[1], iy)
	}
}

func TestVectorConversions(t *testing.T) {
	v := Pix2Vec(8, 100, Ring)
	assert.InDelta(t, 1.0, v.Norm(), 1e-12)
	assert.Equal(t, 100, Vec2Pix(8, v.Mul(3), Ring))

	theta, phi := Vec2Ang(r3.Vector{X: 0, Y: -1, Z: 0})
	assert.InDelta(t, math.Pi/2, theta, 1e-12)
	assert.InDelta(t, 1.5*math.Pi, phi, 1e-12)
}

func TestParseOrdering(t *testing.T) {
	o, err := ParseOrdering("nest")
	require.NoError(t, err)
	assert.Equal(t, Nested, o)

	o, err = ParseOrdering("RING")
	require.NoError(t, err)
	assert.Equal(t, Ring, o)

	_, err = ParseOrdering("spiral")
	require.ErrorIs(t, err, ErrUnknownOrdering)
}

func TestReorder(t *testing.T) {
	assert.Equal(t, 7, Reorder(4, 7, Ring, Ring))
	assert.Equal(t, Nest2Ring(4, 7), Reorder(4, 7, Nested, Ring))
	assert.Equal(t, Ring2Nest(4, 7), Reorder(4, 7, Ring, Nested))
}
