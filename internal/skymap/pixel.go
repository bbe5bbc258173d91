// Package skymap holds the in-memory sky map the viewer renders: one Pixel per
// HEALPix pixel, with the set of populated components fixed by the map layout.
package skymap

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Field selects one scalar component of a pixel.
type Field int

const (
	FieldI Field = iota // Stokes I / temperature
	FieldQ
	FieldU
	FieldP // polarization magnitude
	FieldNobs
	FieldPang // polarization angle, not displayable as a texture
)

// DisplayFields lists the fields a texture can be built from, in UI order.
var DisplayFields = []Field{FieldI, FieldQ, FieldU, FieldP, FieldNobs}

// Displayable reports whether f is one of DisplayFields.
func Displayable(f Field) bool {
	return slices.Contains(DisplayFields, f)
}

var fieldNames = map[Field]string{
	FieldI:    "I",
	FieldQ:    "Q",
	FieldU:    "U",
	FieldP:    "P",
	FieldNobs: "Nobs",
	FieldPang: "Pang",
}

func (f Field) String() string {
	if n, ok := fieldNames[f]; ok {
		return n
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// ParseField accepts the names returned by Field.String, case-insensitively.
// "T" is accepted as an alias for I.
func ParseField(s string) (Field, error) {
	if strings.EqualFold(s, "T") {
		return FieldI, nil
	}
	for f, n := range fieldNames {
		if strings.EqualFold(s, n) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// Capability is a bit-set of the components a pixel carries.
type Capability uint8

const (
	HasTemperature Capability = 1 << iota
	HasPolarization
	HasNobs
)

// Has reports whether every bit of other is set in c.
func (c Capability) Has(other Capability) bool {
	return c&other == other
}

// Supports reports whether field f is populated under capability c.
func (c Capability) Supports(f Field) bool {
	switch f {
	case FieldI:
		return c.Has(HasTemperature)
	case FieldQ, FieldU, FieldP, FieldPang:
		return c.Has(HasPolarization)
	case FieldNobs:
		return c.Has(HasNobs)
	}
	return false
}

// Pixel holds every component a map may carry. Which of them are meaningful
// is decided by the owning map's Capability, not by the pixel itself.
type Pixel struct {
	T    float64
	Q    float64
	U    float64
	Nobs float64
	Pmag float64
	Pang float64
}

// ComputePolar derives the polarization magnitude and angle from Q and U.
func (p *Pixel) ComputePolar() {
	p.Pmag = math.Sqrt(p.Q*p.Q + p.U*p.U)
	p.Pang = math.Atan2(p.U, p.Q) / 2
}

// Value returns component f. Unknown fields return 0.
func (p *Pixel) Value(f Field) float64 {
	switch f {
	case FieldI:
		return p.T
	case FieldQ:
		return p.Q
	case FieldU:
		return p.U
	case FieldP:
		return p.Pmag
	case FieldNobs:
		return p.Nobs
	case FieldPang:
		return p.Pang
	}
	return 0
}

// Clear zeros every component.
func (p *Pixel) Clear() {
	*p = Pixel{}
}
