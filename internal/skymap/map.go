package skymap

import (
	"fmt"
	"math"
	"strings"

	"github.com/Faultbox/skyviewer/pkg/healpix"
)

// Layout is the closed set of pixel layouts a map can have. It is resolved
// once when the map is created.
type Layout int

const (
	LayoutT    Layout = iota // temperature only
	LayoutTP                 // temperature + polarization
	LayoutTN                 // temperature + observation count
	LayoutTPN                // temperature + polarization + observation count
)

var layoutNames = [...]string{"T", "TP", "TN", "TPN"}

func (l Layout) String() string {
	if l >= 0 && int(l) < len(layoutNames) {
		return layoutNames[l]
	}
	return fmt.Sprintf("Layout(%d)", int(l))
}

// ParseLayout accepts the names returned by Layout.String, case-insensitively.
func ParseLayout(s string) (Layout, error) {
	for i, n := range layoutNames {
		if strings.EqualFold(s, n) {
			return Layout(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLayout, s)
}

// Capabilities returns the component bit-set of the layout.
func (l Layout) Capabilities() Capability {
	switch l {
	case LayoutTP:
		return HasTemperature | HasPolarization
	case LayoutTN:
		return HasTemperature | HasNobs
	case LayoutTPN:
		return HasTemperature | HasPolarization | HasNobs
	default:
		return HasTemperature
	}
}

// Map is a HEALPix sky map. The pixel slice is indexed by pixel number in the
// map's ordering.
type Map struct {
	nside    int
	ordering healpix.Ordering
	layout   Layout
	caps     Capability
	pixels   []Pixel
}

// New allocates a zeroed map.
func New(nside int, ordering healpix.Ordering, layout Layout) (*Map, error) {
	if err := healpix.ValidNside(nside); err != nil {
		return nil, err
	}
	if ordering != healpix.Ring && ordering != healpix.Nested {
		return nil, fmt.Errorf("skymap: map needs ring or nested ordering, got %s", ordering)
	}
	return &Map{
		nside:    nside,
		ordering: ordering,
		layout:   layout,
		caps:     layout.Capabilities(),
		pixels:   make([]Pixel, healpix.NSide2NPix(nside)),
	}, nil
}

func (m *Map) Nside() int { return m.nside }
func (m *Map) Ordering() healpix.Ordering { return m.ordering }
func (m *Map) Layout() Layout { return m.layout }
func (m *Map) Capabilities() Capability { return m.caps }
func (m *Map) Len() int { return len(m.pixels) }
func (m *Map) Has(f Field) bool { return m.caps.Supports(f) }
func (m *Map) Pixel(pix int) *Pixel { return &m.pixels[pix] }
func (m *Map) Value(pix int, f Field) float64 { return m.pixels[pix].Value(f) }

// Lookup returns a pixel with bounds checking.
func (m *Map) Lookup(pix int) (*Pixel, error) {
	if pix < 0 || pix >= len(m.pixels) {
		return nil, fmt.Errorf("%w: %d of %d", ErrPixelOutOfRange, pix, len(m.pixels))
	}
	return &m.pixels[pix], nil
}

// ComputePolar refreshes Pmag and Pang for every pixel. It is a no-op for
// layouts without polarization.
func (m *Map) ComputePolar() {
	if !m.caps.Has(HasPolarization) {
		return
	}
	for i := range m.pixels {
		m.pixels[i].ComputePolar()
	}
}

// Pixel2Angles returns the colatitude/longitude of a pixel center.
func (m *Map) Pixel2Angles(pix int) (theta, phi float64) {
	return healpix.Pix2Ang(m.nside, pix, m.ordering)
}

// Angles2Pixel returns the pixel containing (theta, phi). Both are in
// radians; phi may be negative.
func (m *Map) Angles2Pixel(theta, phi float64) int {
	return healpix.Ang2Pix(m.nside, theta, phi, m.ordering)
}

// Column copies field f of every pixel into a new slice.
func (m *Map) Column(f Field) ([]float64, error) {
	if !m.Has(f) {
		return nil, fmt.Errorf("%w: %s in %s map", ErrUnsupportedField, f, m.layout)
	}
	out := make([]float64, len(m.pixels))
	for i := range m.pixels {
		out[i] = m.pixels[i].Value(f)
	}
	return out, nil
}

// Res2NSide converts a resolution index to nside (nside = 2^res).
func Res2NSide(res int) int {
	return 1 << res
}

// NSide2Res converts nside to the resolution index.
func NSide2Res(nside int) int {
	return int(0.4 + math.Log2(float64(nside)))
}
