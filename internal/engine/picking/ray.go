// Package picking turns a cursor position into a world-space ray that the
// rigging can hit-test against the sphere or the Mollweide plane.
package picking

import (
	"github.com/golang/geo/r3"

	"github.com/Faultbox/skyviewer/internal/engine/camera"
	"github.com/Faultbox/skyviewer/pkg/math"
)

// Ray is a world-space ray. Direction is normalized.
type Ray struct {
	Origin    r3.Vector
	Direction r3.Vector
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) r3.Vector {
	return r.Origin.Add(r.Direction.Mul(t))
}

// ScreenToRay converts screen coordinates to a world-space ray.
// screenX, screenY are pixel coordinates with the origin at the top-left,
// viewportW/H are viewport dimensions and invViewProj is the inverse of the
// view-projection matrix. The ray starts on the near plane.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, invViewProj math.Mat4) Ray {
	ndcX := 2*screenX/viewportW - 1
	ndcY := 1 - 2*screenY/viewportH

	nearWorld := invViewProj.Unproject(math.Vec3{X: ndcX, Y: ndcY, Z: -1})
	farWorld := invViewProj.Unproject(math.Vec3{X: ndcX, Y: ndcY, Z: 1})

	return Ray{
		Origin:    nearWorld.R3(),
		Direction: farWorld.Sub(nearWorld).R3().Normalize(),
	}
}

// FromCamera builds the ray under the cursor for cam rendered into a
// viewport of the given size. ok is false when the view-projection matrix
// cannot be inverted.
func FromCamera(cam camera.Camera, screenX, screenY float32, viewportW, viewportH int) (ray Ray, ok bool) {
	if viewportW <= 0 || viewportH <= 0 {
		return Ray{}, false
	}
	aspect := float32(viewportW) / float32(viewportH)
	vp := cam.ProjectionMatrix(aspect).Mul(cam.ViewMatrix())
	inv, ok := vp.Inverse()
	if !ok {
		return Ray{}, false
	}
	return ScreenToRay(screenX, screenY, float32(viewportW), float32(viewportH), inv), true
}
