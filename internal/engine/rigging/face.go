package rigging

import (
	"fmt"
	"math"

	"github.com/Faultbox/skyviewer/pkg/mollweide"
)

// Colatitude thresholds of the polar caps, as cos(theta).
const (
	capZ = 2.0 / 3.0
	// capTolerance admits the ring sitting exactly on the cap edge despite
	// round-off in cos(acos(2/3)).
	capTolerance = 1e-9
	// southCapSlack is the tolerance of the south-face transition.
	southCapSlack = 0.001
)

// Face is the mesh of one HEALPix base face: nside quad strips of
// 2*(nside+1) vertices, two strips per ring on the split back face.
type Face struct {
	id     int
	strips [][]Vertex
	rigged bool
}

// NewFace returns an empty face. id is the HEALPix base-face number 0-11.
func NewFace(id int) *Face {
	return &Face{id: id}
}

// ID returns the base-face number.
func (f *Face) ID() int { return f.id }

// Rigged reports whether SetRigging has completed for the current mesh.
func (f *Face) Rigged() bool { return f.rigged }

// Strips returns the face's quad strips. The slices are owned by the face.
func (f *Face) Strips() [][]Vertex { return f.strips }

// VertexCount returns the number of vertices over all strips.
func (f *Face) VertexCount() int {
	n := 0
	for _, s := range f.strips {
		n += len(s)
	}
	return n
}

// SetRigging rebuilds the mesh. costhetas holds the 2*nside+1 breakpoints of
// the face's latitude band in ascending order. In Mollweide mode vertices are
// placed on the unit sphere and then flattened; radius then only decides how
// far behind the image plane the face is pushed.
func (f *Face) SetRigging(nside int, costhetas []float64, mollweideView bool, radius float64, cfg RenderConfig) error {
	f.rigged = false
	if nside < 1 || len(costhetas) != 2*nside+1 {
		return fmt.Errorf("%w: face %d got %d for nside %d", ErrBreakpoints, f.id, len(costhetas), nside)
	}

	r := radius
	if mollweideView {
		r = 1
	}

	var err error
	switch {
	case f.id < 4:
		err = f.buildNorth(nside, costhetas, r)
	case f.id > 7:
		err = f.buildSouth(nside, costhetas, r)
	default:
		err = f.buildEquatorial(nside, costhetas, r)
	}
	if err != nil {
		return fmt.Errorf("face %d: %w", f.id, err)
	}

	for _, strip := range f.strips {
		for k := range strip {
			strip[k].S, strip[k].T = atlasCoord(f.id, strip[k].S, strip[k].T)
		}
	}

	if mollweideView || cfg.ForceMollweide {
		f.toMollweide(radius)
	}
	f.rigged = true
	return nil
}

// atlasCoord maps face-local texture coordinates into the face's tile of the
// 4x3 atlas.
func atlasCoord(face int, s, t float64) (float64, float64) {
	return 0.25*s + 0.25*float64(face%4), 0.25*t + 0.25*float64(face/4)
}

// edgeFunc returns the two boundaries of the ring between breakpoints lo and
// hi.
type edgeFunc func(lo, hi float64) (Boundary, Boundary, error)

// resetFunc re-parameterizes a boundary once z has crossed into the other
// region. It reports whether the switch happened.
type resetFunc func(z float64, b Boundary) (Boundary, bool, error)

func (f *Face) buildNorth(nside int, c []float64, r float64) error {
	lower := NewEquatorial(0, 0.5*math.Pi*(float64(f.id)+0.5), 1)
	edges := func(lo, hi float64) (Boundary, Boundary, error) {
		return equatorialEdges(lower, lo, hi)
	}
	reset := func(z float64, b Boundary) (Boundary, bool, error) {
		if z < capZ-capTolerance {
			return b, false, nil
		}
		phi, err := b.Phi(z)
		if err != nil {
			return b, false, err
		}
		return NewNorthPolar(z, phi, f.id), true, nil
	}
	return f.buildStrips(nside, c, r, edges, reset)
}

func (f *Face) buildSouth(nside int, c []float64, r float64) error {
	phiEdge := 0.5 * math.Pi * float64(f.id-7)
	edges := func(lo, hi float64) (Boundary, Boundary, error) {
		return NewSouthPolar(lo, phiEdge, f.id), NewSouthPolar(hi, phiEdge, f.id), nil
	}
	reset := func(z float64, b Boundary) (Boundary, bool, error) {
		if z <= -capZ-southCapSlack {
			return b, false, nil
		}
		phi, err := b.Phi(z)
		if err != nil {
			return b, false, err
		}
		return NewEquatorial(z, phi, -1), true, nil
	}
	return f.buildStrips(nside, c, r, edges, reset)
}

func (f *Face) buildEquatorial(nside int, c []float64, r float64) error {
	lower := NewEquatorial(-capZ, 0.5*math.Pi*float64(f.id-4), 1)
	edges := func(lo, hi float64) (Boundary, Boundary, error) {
		return equatorialEdges(lower, lo, hi)
	}
	return f.buildStrips(nside, c, r, edges, nil)
}

// equatorialEdges starts both ring edges on the descending diagonal through
// the points where the ring's breakpoints meet lower.
func equatorialEdges(lower Boundary, lo, hi float64) (Boundary, Boundary, error) {
	phiLo, err := lower.Phi(lo)
	if err != nil {
		return Boundary{}, Boundary{}, err
	}
	phiHi, err := lower.Phi(hi)
	if err != nil {
		return Boundary{}, Boundary{}, err
	}
	return NewEquatorial(lo, phiLo, -1), NewEquatorial(hi, phiHi, -1), nil
}

// buildStrips walks ring i along breakpoints i..i+nside, emitting one vertex
// on each edge per step. Each edge may switch parameterization once.
func (f *Face) buildStrips(nside int, c []float64, r float64, edges edgeFunc, reset resetFunc) error {
	ds := 1 / float64(nside)
	f.strips = make([][]Vertex, nside)

	s := 0.0
	for i := range nside {
		b0, b1, err := edges(c[i], c[i+1])
		if err != nil {
			return err
		}
		done0, done1 := reset == nil, reset == nil

		strip := make([]Vertex, 0, 2*(nside+1))
		t := 0.0
		for j := i; j <= i+nside; j++ {
			v0, err := edgeVertex(b0, c[j], r)
			if err != nil {
				return err
			}
			v0.S, v0.T = s, t

			v1, err := edgeVertex(b1, c[j+1], r)
			if err != nil {
				return err
			}
			v1.S, v1.T = s+ds, t
			strip = append(strip, v0, v1)

			if !done0 {
				if b0, done0, err = reset(c[j], b0); err != nil {
					return err
				}
			}
			if !done1 {
				if b1, done1, err = reset(c[j+1], b1); err != nil {
					return err
				}
			}
			t += ds
		}
		f.strips[i] = strip
		s += ds
	}
	return nil
}

func edgeVertex(b Boundary, z, r float64) (Vertex, error) {
	phi, err := b.Phi(z)
	if err != nil {
		return Vertex{}, err
	}
	return sphereVertex(math.Acos(z), phi, r), nil
}

// planeOffset pushes riggings smaller than the unit one behind the Mollweide
// image plane, as seen from x < 0.
func planeOffset(radius float64) float64 {
	if radius < 1 {
		return 1 - radius
	}
	return 0
}

// toMollweide flattens the face onto the plane x = planeOffset(radius). The
// ellipse is scaled by 1/sqrt(2) so that it spans |y| < 2, |z| < 1.
func (f *Face) toMollweide(radius float64) {
	offset := planeOffset(radius)
	for _, strip := range f.strips {
		for k := range strip {
			v := &strip[k]
			phi := math.Asin(math.Max(-1, math.Min(1, v.Z)))
			lambda := math.Atan2(v.Y, v.X)
			x, y, _ := mollweide.Forward(phi, lambda)
			// Faces 2 and 10 straddle lambda = pi; keep them on the left.
			if (f.id == 2 || f.id == 10) && x > 0 {
				x = -x
			}
			v.X = offset
			v.Y = x / math.Sqrt2
			v.Z = y / math.Sqrt2
		}
	}
	if f.id == seamFace {
		f.splitSeam(offset)
	}
}

// Draw emits the face's strips into s. Drawing a face whose mesh has not been
// built fails with ErrRiggingNotSet.
func (f *Face) Draw(s Sink, cfg RenderConfig) error {
	if !f.rigged {
		return fmt.Errorf("%w: face %d", ErrRiggingNotSet, f.id)
	}
	if cfg.SingleFace >= 0 && cfg.SingleFace != f.id {
		return nil
	}
	for _, strip := range f.strips {
		if !cfg.RiggingLines {
			s.QuadStrip(f.id, strip)
			continue
		}
		outline := make([]Color, len(strip))
		grade := make([]Color, len(strip))
		for k := range strip {
			outline[k] = White
			grade[k] = Hue(360 * float64(k) / float64(len(strip)-1))
		}
		s.LineStrip(f.id, strip, outline, 1)
		s.LineStrip(f.id, strip, grade, 3)
	}
	return nil
}
