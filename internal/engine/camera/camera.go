// Package camera provides the two view models of the sky viewer: an orbit
// camera around the unit sphere and a panning orthographic camera over the
// Mollweide plane.
package camera

import (
	gomath "math"

	"github.com/Faultbox/skyviewer/pkg/math"
)

// Camera is what the renderer and the picker need from a view.
type Camera interface {
	Position() math.Vec3
	ViewMatrix() math.Mat4
	ProjectionMatrix(aspect float32) math.Mat4
	HandleDrag(deltaX, deltaY float32)
	HandleZoom(delta float32)
	Reset()
}

// North is the world up direction shared by both cameras.
var North = math.Vec3{X: 0, Y: 0, Z: 1}

// OrbitCamera orbits the origin at a given distance. Yaw is measured in the
// equatorial plane from +X, pitch is the elevation above the equator.
type OrbitCamera struct {
	Distance float32
	Yaw      float32
	Pitch    float32
	FovY     float32

	MinDistance float32
	MaxDistance float32
	MaxPitch    float32

	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbitCamera returns a camera looking at longitude 0 from -X, which is
// the same side the Mollweide plane is viewed from.
func NewOrbitCamera() *OrbitCamera {
	c := &OrbitCamera{
		FovY:            gomath.Pi / 4,
		MinDistance:     1.2,
		MaxDistance:     12,
		MaxPitch:        1.55,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
	c.Reset()
	return c
}

// Reset restores the initial viewpoint.
func (c *OrbitCamera) Reset() {
	c.Distance = 3
	c.Yaw = gomath.Pi
	c.Pitch = 0
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	cp := gomath.Cos(float64(c.Pitch))
	return math.Vec3{
		X: c.Distance * float32(cp*gomath.Cos(float64(c.Yaw))),
		Y: c.Distance * float32(cp*gomath.Sin(float64(c.Yaw))),
		Z: c.Distance * float32(gomath.Sin(float64(c.Pitch))),
	}
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), math.Vec3{}, North)
}

// ProjectionMatrix returns a perspective projection. The near plane stays
// well inside MinDistance-1 so the sphere is never clipped.
func (c *OrbitCamera) ProjectionMatrix(aspect float32) math.Mat4 {
	return math.Perspective(c.FovY, aspect, 0.01, 100)
}

// HandleDrag rotates the sphere under the cursor.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.DragSensitivity
	c.Pitch += deltaY * c.DragSensitivity
	c.Pitch = clamp(c.Pitch, -c.MaxPitch, c.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * (c.Distance - 1) * c.ZoomSensitivity
	c.Distance = clamp(c.Distance, c.MinDistance, c.MaxDistance)
}

// PlaneCamera looks at the x = 0 plane from -X with +Z up, so longitude
// increases to the left as on a sky chart.
type PlaneCamera struct {
	PanY, PanZ float32
	// HalfHeight is half the visible extent along Z.
	HalfHeight float32

	MinHalfHeight   float32
	MaxHalfHeight   float32
	DragSensitivity float32
	ZoomSensitivity float32
}

const planeEyeDistance = 5

// NewPlaneCamera returns a camera framing the whole Mollweide ellipse.
func NewPlaneCamera() *PlaneCamera {
	c := &PlaneCamera{
		MinHalfHeight:   0.05,
		MaxHalfHeight:   4,
		DragSensitivity: 0.003,
		ZoomSensitivity: 0.1,
	}
	c.Reset()
	return c
}

// Reset recenters the ellipse.
func (c *PlaneCamera) Reset() {
	c.PanY, c.PanZ = 0, 0
	c.HalfHeight = 1.6
}

func (c *PlaneCamera) Position() math.Vec3 {
	return math.Vec3{X: -planeEyeDistance, Y: c.PanY, Z: c.PanZ}
}

// ViewMatrix looks down +X from a fixed eye and slides the world by the pan
// offset.
func (c *PlaneCamera) ViewMatrix() math.Mat4 {
	look := math.LookAt(math.Vec3{X: -planeEyeDistance}, math.Vec3{}, North)
	return look.Mul(math.Translate(0, -c.PanY, -c.PanZ))
}

// ProjectionMatrix returns an orthographic projection keeping the aspect
// ratio of the plane.
func (c *PlaneCamera) ProjectionMatrix(aspect float32) math.Mat4 {
	h := c.HalfHeight
	w := h * aspect
	return math.Ortho(-w, w, -h, h, 0.1, 2*planeEyeDistance)
}

// HandleDrag pans so the content follows the cursor. Screen right is world
// -Y from this side of the plane.
func (c *PlaneCamera) HandleDrag(deltaX, deltaY float32) {
	k := c.DragSensitivity * c.HalfHeight
	c.PanY += deltaX * k
	c.PanZ += deltaY * k
}

func (c *PlaneCamera) HandleZoom(delta float32) {
	c.HalfHeight -= delta * c.HalfHeight * c.ZoomSensitivity
	c.HalfHeight = clamp(c.HalfHeight, c.MinHalfHeight, c.MaxHalfHeight)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
