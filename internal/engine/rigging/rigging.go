// Package rigging builds the mesh that carries a HEALPix sky texture: twelve
// base faces tiled by quad strips whose edges follow the analytic face
// boundaries, placed either on a sphere or on the Mollweide ellipse. It also
// turns view rays back into sky coordinates for pixel selection.
package rigging

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/Faultbox/skyviewer/internal/logger"
	"github.com/Faultbox/skyviewer/pkg/healpix"
)

// NumFaces is the number of HEALPix base faces.
const NumFaces = 12

// Rigging owns the twelve faces and the breakpoints they were built from.
// It is regenerated as a whole whenever nside or the projection changes.
type Rigging struct {
	nside     int
	mollweide bool
	flat      bool
	radius    float64
	faces     [NumFaces]*Face

	north   []float64
	equator []float64
	south   []float64

	log *zap.Logger
}

// New returns a rigging with no mesh. Generate must run before Draw.
func New() *Rigging {
	r := &Rigging{radius: 1, log: logger.Named("rigging")}
	for i := range r.faces {
		r.faces[i] = NewFace(i)
	}
	return r
}

// Nside returns the resolution of the current mesh.
func (r *Rigging) Nside() int { return r.nside }

// Mollweide reports whether the mesh was generated for the Mollweide view.
func (r *Rigging) Mollweide() bool { return r.mollweide }

// Flat reports whether the vertices lie on the Mollweide plane, either for
// the Mollweide view or because RenderConfig.ForceMollweide is set.
func (r *Rigging) Flat() bool { return r.flat }

// Radius returns the sphere radius the mesh was generated with.
func (r *Rigging) Radius() float64 { return r.radius }

// Face returns base face i.
func (r *Rigging) Face(i int) *Face { return r.faces[i] }

// VertexCount returns the number of vertices over all faces.
func (r *Rigging) VertexCount() int {
	n := 0
	for _, f := range r.faces {
		n += f.VertexCount()
	}
	return n
}

// Generate rebuilds every face for resolution nside. radius is the sphere
// radius in sphere mode and the depth ordering key in Mollweide mode.
func (r *Rigging) Generate(nside int, mollweideView bool, radius float64, cfg RenderConfig) error {
	if nside < 1 {
		return fmt.Errorf("rigging: %w: %d", healpix.ErrInvalidNside, nside)
	}
	r.nside = nside
	r.mollweide = mollweideView
	r.flat = mollweideView || cfg.ForceMollweide
	r.radius = radius
	r.north, r.equator, r.south = Breakpoints(nside)

	for _, f := range r.faces {
		var c []float64
		switch {
		case f.id < 4:
			c = r.north
		case f.id < 8:
			c = r.equator
		default:
			c = r.south
		}
		if err := f.SetRigging(nside, c, mollweideView, radius, cfg); err != nil {
			return fmt.Errorf("generate rigging: %w", err)
		}
	}

	r.log.Debug("rigging generated",
		zap.Int("nside", nside),
		zap.Bool("mollweide", mollweideView),
		zap.Float64("radius", radius),
		zap.Int("vertices", r.VertexCount()))
	return nil
}

// Draw emits all faces into s in face order.
func (r *Rigging) Draw(s Sink, cfg RenderConfig) error {
	for _, f := range r.faces {
		if err := f.Draw(s, cfg); err != nil {
			return err
		}
	}
	return nil
}

// Breakpoints returns the ascending cos(theta) breakpoints of the north,
// equatorial and south face bands, 2*nside+1 each. They are the ring
// colatitudes of the HEALPix grid, found by walking the first pixel of
// every ring; rings lying within 0.128/nside of a band edge belong to both
// neighboring bands.
func Breakpoints(nside int) (north, equator, south []float64) {
	eps := 0.128 / float64(nside)
	npix := healpix.NSide2NPix(nside)

	thetaN := []float64{0}
	var thetaE, thetaS []float64

	pix, dpix := 0, 4
	for ring := 1; pix < npix; ring++ {
		theta, _ := healpix.Pix2AngRing(nside, pix)
		z := math.Cos(theta)
		if z > -eps {
			thetaN = append(thetaN, theta)
		}
		if math.Abs(z) <= capZ+eps {
			thetaE = append(thetaE, theta)
		}
		if z < eps {
			thetaS = append(thetaS, theta)
		}

		// Ring lengths grow by 4 through the north cap and shrink by 4
		// through the south cap.
		pix += dpix
		switch {
		case ring < nside:
			dpix += 4
		case ring >= 3*nside:
			dpix -= 4
		}
	}
	thetaS = append(thetaS, math.Pi)

	return reversedCos(thetaN), reversedCos(thetaE), reversedCos(thetaS)
}

func reversedCos(thetas []float64) []float64 {
	n := len(thetas)
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Cos(thetas[n-1-i])
	}
	return out
}
