package rigging

// RenderConfig carries the debug toggles that change how a rigging is built
// and drawn.
type RenderConfig struct {
	// SingleFace draws only the face with this index when >= 0.
	SingleFace int
	// RiggingLines replaces the textured strips with a white outline and a
	// hue-graded line strip per ring.
	RiggingLines bool
	// ForceMollweide remaps vertices to the Mollweide plane even when the
	// rigging was generated for the sphere.
	ForceMollweide bool
}

// DefaultRenderConfig draws every face textured.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{SingleFace: -1}
}

// Sink receives the strips produced by Draw. A quad strip uses the same vertex
// order as a triangle strip.
type Sink interface {
	QuadStrip(face int, strip []Vertex)
	LineStrip(face int, strip []Vertex, colors []Color, width float32)
}

// StripRange addresses one strip inside a StripBatch buffer.
type StripRange struct {
	Face  int
	First int32
	Count int32
	Width float32
}

// Interleaved layouts of StripBatch buffers, in float32 components.
const (
	TexturedStride = 5 // x y z s t
	LineStride     = 6 // x y z r g b
)

// StripBatch is a Sink that flattens strips into interleaved float32 buffers
// suitable for a single upload and glMultiDrawArrays style drawing.
type StripBatch struct {
	Textured      []float32
	TexturedRange []StripRange
	Lines         []float32
	LineRange     []StripRange
}

// Reset empties the batch while keeping its buffers.
func (b *StripBatch) Reset() {
	b.Textured = b.Textured[:0]
	b.TexturedRange = b.TexturedRange[:0]
	b.Lines = b.Lines[:0]
	b.LineRange = b.LineRange[:0]
}

// QuadStrip appends a textured strip.
func (b *StripBatch) QuadStrip(face int, strip []Vertex) {
	first := int32(len(b.Textured) / TexturedStride)
	for _, v := range strip {
		b.Textured = append(b.Textured,
			float32(v.X), float32(v.Y), float32(v.Z), float32(v.S), float32(v.T))
	}
	b.TexturedRange = append(b.TexturedRange, StripRange{Face: face, First: first, Count: int32(len(strip))})
}

// LineStrip appends a colored line strip. colors must hold one entry per
// vertex.
func (b *StripBatch) LineStrip(face int, strip []Vertex, colors []Color, width float32) {
	first := int32(len(b.Lines) / LineStride)
	for i, v := range strip {
		c := colors[i]
		b.Lines = append(b.Lines,
			float32(v.X), float32(v.Y), float32(v.Z), c.R, c.G, c.B)
	}
	b.LineRange = append(b.LineRange, StripRange{Face: face, First: first, Count: int32(len(strip)), Width: width})
}

// VertexCount returns the number of textured vertices in the batch.
func (b *StripBatch) VertexCount() int {
	return len(b.Textured) / TexturedStride
}
