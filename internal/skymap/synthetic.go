package skymap

import (
	"math"
	"math/rand"

	"github.com/Faultbox/skyviewer/pkg/healpix"
)

// SyntheticOptions control the generated test sky.
type SyntheticOptions struct {
	Seed       int64
	Dipole     float64 // amplitude of the temperature dipole
	Noise      float64 // white-noise sigma added to every component
	Polarized  float64 // polarization fraction of the temperature signal
	MaskedBand float64 // |z| below which Nobs is zero; 0 disables the mask
}

// DefaultSyntheticOptions returns a sky with a visible dipole, a few hot
// spots and a masked band along the equator.
func DefaultSyntheticOptions() SyntheticOptions {
	return SyntheticOptions{
		Seed:       1,
		Dipole:     3.0,
		Noise:      0.05,
		Polarized:  0.1,
		MaskedBand: 0.02,
	}
}

var hotSpots = [...]struct{ theta, phi, amp, width float64 }{
	{0.6, 1.0, 2.0, 0.15},
	{2.2, 4.0, -1.5, 0.25},
	{1.4, 2.6, 1.0, 0.1},
}

// Synthetic builds a map with the given layout filled with a deterministic
// pattern. It stands in for a map reader.
func Synthetic(nside int, ordering healpix.Ordering, layout Layout, opts SyntheticOptions) (*Map, error) {
	m, err := New(nside, ordering, layout)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	for pix := range m.pixels {
		theta, phi := m.Pixel2Angles(pix)
		z := math.Cos(theta)
		v := healpix.Ang2Vec(theta, phi)

		t := opts.Dipole * v.X
		for _, h := range hotSpots {
			d := angularDistance(theta, phi, h.theta, h.phi)
			t += h.amp * math.Exp(-d*d/(2*h.width*h.width))
		}
		t += opts.Noise * rng.NormFloat64()

		p := &m.pixels[pix]
		p.T = t
		if m.caps.Has(HasPolarization) {
			psi := 2*phi + theta
			amp := opts.Polarized * math.Abs(t)
			p.Q = amp*math.Cos(psi) + opts.Noise*rng.NormFloat64()
			p.U = amp*math.Sin(psi) + opts.Noise*rng.NormFloat64()
			p.ComputePolar()
		}
		if m.caps.Has(HasNobs) {
			if math.Abs(z) < opts.MaskedBand {
				p.Nobs = 0
			} else {
				p.Nobs = math.Floor(200 + 800*z*z + 20*rng.Float64())
			}
		}
	}
	return m, nil
}

func angularDistance(t1, p1, t2, p2 float64) float64 {
	c := math.Cos(t1)*math.Cos(t2) + math.Sin(t1)*math.Sin(t2)*math.Cos(p1-p2)
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	return math.Acos(c)
}
