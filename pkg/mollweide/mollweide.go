// Package mollweide implements the Mollweide equal-area projection used to
// flatten the sky onto an ellipse of half-axes 2*sqrt(2) by sqrt(2).
package mollweide

import (
	"errors"
	"math"
)

const (
	// Lambda0 is the reference meridian.
	Lambda0 = 0.0

	maxIterations = 20
	tolerance     = 1e-6
)

var sqrt2 = math.Sqrt2

// ErrOutOfRange is returned by Inverse when y lies outside the ellipse.
var ErrOutOfRange = errors.New("mollweide: y out of range")

// AuxAngle solves 2θ + sin 2θ = π sin(phi) for the auxiliary angle θ with
// Newton's method. If the iteration cap is reached the last iterate is
// returned.
func AuxAngle(phi float64) float64 {
	if math.Abs(phi-math.Pi/2) < tolerance {
		return math.Pi / 2
	}
	if math.Abs(phi+math.Pi/2) < tolerance {
		return -math.Pi / 2
	}

	target := math.Pi * math.Sin(phi)
	theta := phi / 2
	f := 2*theta + math.Sin(2*theta) - target
	for i := 0; i < maxIterations && math.Abs(f) >= tolerance; i++ {
		df := 2 * (1 + math.Cos(2*theta))
		if df == 0 {
			break
		}
		theta -= f / df
		f = 2*theta + math.Sin(2*theta) - target
	}
	return theta
}

// Forward projects latitude phi and longitude lambda (radians) to planar
// (x, y). The auxiliary angle is returned as well.
func Forward(phi, lambda float64) (x, y, theta float64) {
	theta = AuxAngle(phi)
	x = 2 * sqrt2 * (lambda - Lambda0) * math.Cos(theta) / math.Pi
	y = sqrt2 * math.Sin(theta)
	return x, y, theta
}

// Inverse maps planar (x, y) back to the sphere. Note that the first return
// value is the colatitude (pi/2 - latitude), matching the HEALPix angle
// convention used for pixel lookup.
func Inverse(x, y float64) (colat, lambda, theta float64, err error) {
	if math.Abs(y) > sqrt2 {
		return 0, 0, 0, ErrOutOfRange
	}
	theta = math.Asin(y / sqrt2)
	s := (2*theta + math.Sin(2*theta)) / math.Pi
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	}
	colat = math.Pi/2 - math.Asin(s)
	lambda = Lambda0 + math.Pi*x/(2*sqrt2*math.Cos(theta))
	return colat, lambda, theta, nil
}

// InEllipse reports whether (x, y) lies inside the projection's outline.
func InEllipse(x, y float64) bool {
	a := 2 * sqrt2
	b := sqrt2
	return (x*x)/(a*a)+(y*y)/(b*b) <= 1
}
