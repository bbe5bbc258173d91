// Package renderer draws the rigging strips, the sky atlas and the
// polarization segments with OpenGL 4.1.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/skyviewer/internal/engine/rigging"
	"github.com/Faultbox/skyviewer/internal/engine/shader"
	"github.com/Faultbox/skyviewer/internal/logger"
	"github.com/Faultbox/skyviewer/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
}

// Background is the clear color.
var Background = [4]float32{0.05, 0.05, 0.08, 1}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config Config
	log    *zap.Logger

	sky   *shader.Program
	lines *shader.Program

	atlas    uint32
	atlasRes int

	polar      buffer
	polarCount int32
}

// buffer is one VAO/VBO pair with an interleaved layout.
type buffer struct {
	vao, vbo uint32
	size     int
}

// New creates a renderer. It must be called after the OpenGL context
// exists.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
		log:    logger.Named("renderer"),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.ClearColor(Background[0], Background[1], Background[2], Background[3])

	var err error
	if r.sky, err = shader.New(shader.SkyVertexShader, shader.SkyFragmentShader); err != nil {
		return nil, fmt.Errorf("sky shader: %w", err)
	}
	if r.lines, err = shader.New(shader.LineVertexShader, shader.LineFragmentShader); err != nil {
		r.sky.Delete()
		return nil, fmt.Errorf("line shader: %w", err)
	}

	gl.GenTextures(1, &r.atlas)
	gl.BindTexture(gl.TEXTURE_2D, r.atlas)
	// One texel per pixel: sampling must not blend neighbours.
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	r.polar = newBuffer(rigging.LineStride, colorAttrib)
	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	r.polar.delete()
	if r.atlas != 0 {
		gl.DeleteTextures(1, &r.atlas)
	}
	r.sky.Delete()
	r.lines.Delete()
}

// Resize sets the viewport to the drawable size.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Aspect returns width/height of the viewport.
func (r *Renderer) Aspect() float32 {
	if r.config.Height == 0 {
		return 1
	}
	return float32(r.config.Width) / float32(r.config.Height)
}

// Begin clears the frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// UploadAtlas replaces the sky texture with a res*res RGBA buffer.
func (r *Renderer) UploadAtlas(res int, rgba []byte) {
	if res == 0 || len(rgba) < 4*res*res {
		return
	}
	gl.BindTexture(gl.TEXTURE_2D, r.atlas)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	if res != r.atlasRes {
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(res), int32(res), 0,
			gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&rgba[0]))
		r.atlasRes = res
		r.log.Debug("atlas allocated", zap.Int("resolution", res))
	} else {
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(res), int32(res),
			gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&rgba[0]))
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// Mesh holds the GPU copy of one rigging's StripBatch.
type Mesh struct {
	textured buffer
	lines    buffer

	texturedRanges []rigging.StripRange
	lineRanges     []rigging.StripRange
}

// NewMesh allocates the buffers for one rigging.
func (r *Renderer) NewMesh() *Mesh {
	return &Mesh{
		textured: newBuffer(rigging.TexturedStride, texCoordAttrib),
		lines:    newBuffer(rigging.LineStride, colorAttrib),
	}
}

// Upload copies b to the GPU. The ranges are copied so b may be reused.
func (m *Mesh) Upload(b *rigging.StripBatch) {
	m.textured.upload(b.Textured)
	m.lines.upload(b.Lines)
	m.texturedRanges = append(m.texturedRanges[:0], b.TexturedRange...)
	m.lineRanges = append(m.lineRanges[:0], b.LineRange...)
}

// Delete frees the GPU buffers.
func (m *Mesh) Delete() {
	m.textured.delete()
	m.lines.delete()
}

// DrawTextured draws m's quad strips sampling the sky atlas.
func (r *Renderer) DrawTextured(m *Mesh, mvp math.Mat4) {
	r.sky.Use()
	r.sky.SetMat4("uMVP", mvp)
	r.sky.SetInt("uTextured", 1)
	r.sky.SetInt("uSky", 0)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.atlas)
	drawStrips(m.textured.vao, m.texturedRanges, gl.TRIANGLE_STRIP)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// DrawFlat draws m's quad strips in a single color.
func (r *Renderer) DrawFlat(m *Mesh, mvp math.Mat4, color [4]float32) {
	r.sky.Use()
	r.sky.SetMat4("uMVP", mvp)
	r.sky.SetInt("uTextured", 0)
	r.sky.SetVec4("uColor", color)
	drawStrips(m.textured.vao, m.texturedRanges, gl.TRIANGLE_STRIP)
}

// DrawLines draws m's rigging line strips.
func (r *Renderer) DrawLines(m *Mesh, mvp math.Mat4) {
	r.lines.Use()
	r.lines.SetMat4("uMVP", mvp)
	drawStrips(m.lines.vao, m.lineRanges, gl.LINE_STRIP)
	gl.LineWidth(1)
}

// UploadPolar replaces the polarization segments. vertices is laid out as
// rigging.LineStride floats per vertex, two vertices per segment.
func (r *Renderer) UploadPolar(vertices []float32) {
	r.polar.upload(vertices)
	r.polarCount = int32(len(vertices) / rigging.LineStride)
}

// DrawPolar draws the polarization segments on top of the map.
func (r *Renderer) DrawPolar(mvp math.Mat4) {
	if r.polarCount == 0 {
		return
	}
	r.lines.Use()
	r.lines.SetMat4("uMVP", mvp)
	gl.BindVertexArray(r.polar.vao)
	gl.DrawArrays(gl.LINES, 0, r.polarCount)
	gl.BindVertexArray(0)
}

// ReadPixels returns the current framebuffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, 4*w*h)
	if len(pixels) == 0 {
		return pixels, w, h
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	return pixels, w, h
}

func drawStrips(vao uint32, ranges []rigging.StripRange, mode uint32) {
	if len(ranges) == 0 {
		return
	}
	gl.BindVertexArray(vao)
	for _, s := range ranges {
		if s.Width > 0 {
			gl.LineWidth(s.Width)
		}
		gl.DrawArrays(mode, s.First, s.Count)
	}
	gl.BindVertexArray(0)
}

// Second attribute of an interleaved vertex after xyz.
const (
	texCoordAttrib = 2
	colorAttrib    = 3
)

func newBuffer(stride, secondSize int) buffer {
	var b buffer
	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)
	gl.GenBuffers(1, &b.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)

	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, int32(stride*4), nil)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, int32(secondSize), gl.FLOAT, false, int32(stride*4), 3*4)
	gl.EnableVertexAttribArray(1)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return b
}

func (b *buffer) upload(data []float32) {
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	if len(data) == 0 {
		gl.BufferData(gl.ARRAY_BUFFER, 0, nil, gl.DYNAMIC_DRAW)
		b.size = 0
	} else if len(data) > b.size {
		gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, unsafe.Pointer(&data[0]), gl.DYNAMIC_DRAW)
		b.size = len(data)
	} else {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(data)*4, unsafe.Pointer(&data[0]))
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func (b *buffer) delete() {
	if b.vao != 0 {
		gl.DeleteVertexArrays(1, &b.vao)
	}
	if b.vbo != 0 {
		gl.DeleteBuffers(1, &b.vbo)
	}
}
