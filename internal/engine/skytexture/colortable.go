package skytexture

import (
	"fmt"
	"image/color"
	"math"
	"strings"
)

// ColorTable maps a fraction 0..1 to a color.
type ColorTable struct {
	name   string
	colors []color.RGBA
}

// Name returns the table's display name.
func (ct *ColorTable) Name() string { return ct.name }

// Len returns the number of entries.
func (ct *ColorTable) Len() int { return len(ct.colors) }

// At returns the entry at fraction v of the table. v is clamped to 0..1.
func (ct *ColorTable) At(v float64) color.RGBA {
	if v < 0 || math.IsNaN(v) {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return ct.colors[int(v*float64(len(ct.colors)-1))]
}

type controlPoint struct {
	index   int
	r, g, b float64
}

// fromControlPoints builds an n-entry table by linear interpolation between
// control points, which must start at 0 and end at n-1.
func fromControlPoints(name string, n int, pts []controlPoint) *ColorTable {
	ct := &ColorTable{name: name, colors: make([]color.RGBA, n)}
	for k := 0; k+1 < len(pts); k++ {
		a, b := pts[k], pts[k+1]
		span := float64(b.index - a.index)
		for i := a.index; i <= b.index; i++ {
			f := 0.0
			if span > 0 {
				f = float64(i-a.index) / span
			}
			ct.colors[i] = color.RGBA{
				R: channel(a.r + f*(b.r-a.r)),
				G: channel(a.g + f*(b.g-a.g)),
				B: channel(a.b + f*(b.b-a.b)),
				A: 255,
			}
		}
	}
	return ct
}

func channel(v float64) uint8 {
	return uint8(math.Round(255 * math.Max(0, math.Min(1, v))))
}

// Default is the rainbow table: dark blue through cyan, yellow and red to
// dark red.
var Default = fromControlPoints("Default", 254, []controlPoint{
	{0, 0, 0, 139.0 / 255},
	{29, 0, 0, 1},
	{30, 0, 0, 1},
	{94, 0, 1, 1},
	{95, 0, 1, 1},
	{159, 1, 1, 0},
	{223, 1, 0, 0},
	{251, 131.0 / 255, 0, 0},
	{253, 131.0 / 255, 0, 0},
})

// BlackWhite is a linear gray ramp.
var BlackWhite = fromControlPoints("Black/White", 256, []controlPoint{
	{0, 0, 0, 0},
	{255, 1, 1, 1},
})

// Tables lists the built-in tables in menu order.
func Tables() []*ColorTable {
	return []*ColorTable{Default, BlackWhite}
}

// ByName finds a built-in table, ignoring case.
func ByName(name string) (*ColorTable, error) {
	for _, ct := range Tables() {
		if strings.EqualFold(ct.name, name) {
			return ct, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownColorTable, name)
}
