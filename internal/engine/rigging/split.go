package rigging

import (
	"math"

	"github.com/Faultbox/skyviewer/pkg/mollweide"
)

// seamFace is the equatorial face centered on lambda = pi, which the
// Mollweide ellipse cuts in two along its left and right rims.
const seamFace = 6

// splitSeam replaces every ring of the seam face by two strips: the part
// that lands on the left rim (y <= 0) and the part on the right rim (y >= 0).
// Ring i (1-based) crosses the seam after vertex 2i-2. The left strip is
// closed with a vertex borrowed from the next ring and the right strip is
// opened with one borrowed from the previous ring. The outermost rings
// borrow the face's own corners on the seam instead.
func (f *Face) splitSeam(offset float64) {
	old := f.strips
	north, south := seamCorners(offset)

	split := make([][]Vertex, 0, 2*len(old))
	for i, src := range old {
		jbreak := 2 * i
		left := make([]Vertex, 0, jbreak+4)
		right := make([]Vertex, 0, len(src)-jbreak+2)

		for j := 0; j <= jbreak; j++ {
			left = append(left, onLeft(src[j]))
		}

		j := jbreak + 1
		p := onLeft(src[j])
		next := north
		if i+1 < len(old) {
			next = onLeft(old[i+1][j+1])
		}
		left = append(left, p, next, p)

		prev := south
		if i > 0 {
			prev = onRight(old[i-1][j])
		}
		right = append(right, onRight(src[j+1]), prev)
		for k := j + 1; k < len(src); k++ {
			right = append(right, onRight(src[k]))
		}

		split = append(split, left, right)
	}
	f.strips = split
}

func onLeft(v Vertex) Vertex {
	v.Y = -math.Abs(v.Y)
	return v
}

func onRight(v Vertex) Vertex {
	v.Y = math.Abs(v.Y)
	return v
}

// seamCorners returns the seam face's polar-side corners (z = +-2/3 at
// lambda = pi) on the left and right rim respectively, with their atlas
// coordinates.
func seamCorners(offset float64) (north, south Vertex) {
	north = seamVertex(capZ, offset)
	north.Y = -math.Abs(north.Y)
	north.S, north.T = atlasCoord(seamFace, 1, 1)

	south = seamVertex(-capZ, offset)
	south.Y = math.Abs(south.Y)
	south.S, south.T = atlasCoord(seamFace, 0, 0)
	return north, south
}

func seamVertex(z, offset float64) Vertex {
	x, y, _ := mollweide.Forward(math.Asin(z), math.Pi)
	return Vertex{X: offset, Y: x / math.Sqrt2, Z: y / math.Sqrt2}
}
