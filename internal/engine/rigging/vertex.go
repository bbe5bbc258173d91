package rigging

import "math"

// Vertex is a mesh point with its atlas texture coordinate.
type Vertex struct {
	X, Y, Z float64
	S, T    float64
}

// sphereVertex places a vertex at colatitude theta, longitude phi on a sphere
// of radius r.
func sphereVertex(theta, phi, r float64) Vertex {
	st := math.Sin(theta)
	return Vertex{
		X: r * math.Cos(phi) * st,
		Y: r * math.Sin(phi) * st,
		Z: r * math.Cos(theta),
	}
}

// Color is a linear RGB triple in 0..1.
type Color struct {
	R, G, B float32
}

// White is used for the plain rigging outline.
var White = Color{1, 1, 1}

// Hue returns the fully saturated, full value color at hue h degrees.
func Hue(h float64) Color {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	sector := h / 60
	f := float32(sector - math.Floor(sector))
	switch int(sector) {
	case 0:
		return Color{1, f, 0}
	case 1:
		return Color{1 - f, 1, 0}
	case 2:
		return Color{0, 1, f}
	case 3:
		return Color{0, 1 - f, 1}
	case 4:
		return Color{f, 0, 1}
	default:
		return Color{1, 0, 1 - f}
	}
}
