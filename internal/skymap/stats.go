package skymap

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes a set of values.
type Stats struct {
	Count  int
	Min    float64
	Max    float64
	AbsMax float64
	Mean   float64
	StdDev float64
}

// ComputeStats returns the summary of values. The standard deviation is the
// population deviation; it is zero for a single value.
func ComputeStats(values []float64) (Stats, error) {
	if len(values) == 0 {
		return Stats{}, ErrEmpty
	}
	s := Stats{
		Count: len(values),
		Min:   floats.Min(values),
		Max:   floats.Max(values),
	}
	s.AbsMax = math.Max(math.Abs(s.Min), math.Abs(s.Max))
	s.Mean, s.StdDev = stat.PopMeanStdDev(values, nil)
	return s, nil
}

// HistogramBins is the fixed bin count used by Histogram.
const HistogramBins = 2048

// Histogram bins values between a lower and upper range. Lookups take a
// fraction 0..1 of that range and return a bin height normalized to the
// tallest bin.
type Histogram struct {
	bins []float64
	peak float64
	lo   float64
	hi   float64
}

// NewHistogram bins values into [lo, hi). Values outside the range are
// dropped.
func NewHistogram(values []float64, lo, hi float64) *Histogram {
	h := &Histogram{bins: make([]float64, HistogramBins), lo: lo, hi: hi}
	if !(hi > lo) {
		return h
	}

	inside := make([]float64, 0, len(values))
	for _, v := range values {
		if v >= lo && v < hi {
			inside = append(inside, v)
		}
	}
	if len(inside) == 0 {
		return h
	}
	slices.Sort(inside)

	dividers := floats.Span(make([]float64, HistogramBins+1), lo, hi)
	dividers[HistogramBins] = hi
	stat.Histogram(h.bins, dividers, inside, nil)
	h.peak = floats.Max(h.bins)
	return h
}

// Range returns the bounds the histogram was built over.
func (h *Histogram) Range() (lo, hi float64) {
	return h.lo, h.hi
}

// At returns the normalized height of the bin containing fraction x.
func (h *Histogram) At(x float64) float64 {
	bin := int(HistogramBins * x)
	if bin < 0 || bin >= HistogramBins || h.peak == 0 {
		return 0
	}
	return h.bins[bin] / h.peak
}

// Span returns the mean normalized height of the bins covering fractions
// [x0, x1]. Fractions outside 0..1 are clamped to the first or last bin.
func (h *Histogram) Span(x0, x1 float64) float64 {
	b0 := h.clampBin(x0)
	b1 := h.clampBin(x1)
	if b1 < b0 || h.peak == 0 {
		return 0
	}
	return floats.Sum(h.bins[b0:b1+1]) / float64(b1-b0+1) / h.peak
}

// Fraction maps a value to its position 0..1 within the histogram range.
func (h *Histogram) Fraction(v float64) float64 {
	if !(h.hi > h.lo) {
		return 0
	}
	return (v - h.lo) / (h.hi - h.lo)
}

func (h *Histogram) clampBin(x float64) int {
	return max(0, min(int(HistogramBins*x), HistogramBins-1))
}

// FieldStats computes Stats over field f of the whole map.
func (m *Map) FieldStats(f Field) (Stats, error) {
	col, err := m.Column(f)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(col)
}

// FieldHistogram bins field f of the whole map over [lo, hi).
func (m *Map) FieldHistogram(f Field, lo, hi float64) (*Histogram, error) {
	col, err := m.Column(f)
	if err != nil {
		return nil, err
	}
	return NewHistogram(col, lo, hi), nil
}
