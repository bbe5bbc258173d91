package mollweide

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForwardInverseRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const eps = 0.05
	for i := 0; i < 5000; i++ {
		phi := (rng.Float64()*2-1)*(math.Pi/2-eps)
		lambda := (rng.Float64()*2 - 1) * math.Pi

		x, y, _ := Forward(phi, lambda)
		require.True(t, InEllipse(x, y), "(%f, %f) projected outside the ellipse", phi, lambda)

		colat, gotLambda, _, err := Inverse(x, y)
		require.NoError(t, err)
		assert.InDelta(t, phi, math.Pi/2-colat, 1e-5, "latitude for phi=%f", phi)
		assert.InDelta(t, lambda, gotLambda, 1e-5, "longitude for lambda=%f", lambda)
	}
}

func TestForwardPoles(t *testing.T) {
	x, y, theta := Forward(math.Pi/2, 1.0)
	assert.Equal(t, math.Pi/2, theta)
	assert.InDelta(t, 0, x, 1e-12)
	assert.InDelta(t, math.Sqrt2, y, 1e-12)

	x, y, theta = Forward(-math.Pi/2, -1.0)
	assert.Equal(t, -math.Pi/2, theta)
	assert.InDelta(t, 0, x, 1e-12)
	assert.InDelta(t, -math.Sqrt2, y, 1e-12)
}

func TestForwardEquator(t *testing.T) {
	x, y, theta := Forward(0, math.Pi)
	assert.InDelta(t, 0, theta, 1e-12)
	assert.InDelta(t, 0, y, 1e-12)
	assert.InDelta(t, 2*math.Sqrt2, x, 1e-12)
}

func TestAuxAngleToleratesSlowConvergence(t *testing.T) {
	// Close to the pole Newton converges slowly; the best iterate is kept.
	theta := AuxAngle(math.Pi/2 - 2e-6)
	assert.False(t, math.IsNaN(theta))
	assert.InDelta(t, math.Pi/2, theta, 0.05)
}

func TestInverseOutOfRange(t *testing.T) {
	_, _, _, err := Inverse(0, math.Sqrt2+1e-9)
	require.ErrorIs(t, err, ErrOutOfRange)

	_, _, _, err = Inverse(0, -2)
	require.ErrorIs(t, err, ErrOutOfRange)

	colat, _, _, err := Inverse(0, math.Sqrt2)
	require.NoError(t, err)
	assert.InDelta(t, 0, colat, 1e-9)
}
