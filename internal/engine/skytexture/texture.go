// Package skytexture paints a sky map into the RGBA atlas the rigging samples
// from. Each texel holds one HEALPix pixel; the pixel-to-texel lookup tables
// are shared between textures.
package skytexture

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/skyviewer/internal/logger"
	"github.com/Faultbox/skyviewer/internal/skymap"
)

// Alpha levels used by the viewer for hovered and selected pixels.
const (
	HighlightAlpha = 128.0 / 255
	SelectAlpha    = 64.0 / 255
)

// FillParams selects what a fill paints.
type FillParams struct {
	Field  skymap.Field
	Colors *ColorTable
	Min    float64
	Max    float64
}

// Texture is a 4*nside square RGBA atlas filled by one background worker.
// At most one fill runs at a time; starting a fill cancels the running one
// and waits for it to exit before touching the buffer.
type Texture struct {
	luts *LUTCache

	mu     sync.Mutex // serializes Fill, Wait and Close
	cancel context.CancelFunc
	done   chan struct{}

	buf   []byte
	res   int
	nside int
	lut   LUT

	started   uint64
	completed atomic.Uint64
	dirty     atomic.Bool
}

// New returns an empty texture. A nil cache selects SharedLUTs.
func New(luts *LUTCache) *Texture {
	if luts == nil {
		luts = SharedLUTs
	}
	return &Texture{luts: luts}
}

// Fill starts painting m with p in the background and returns once the
// worker has started. Cancelling ctx stops the worker after the pixel it is
// on. The returned generation identifies this fill in LastCompleted.
func (t *Texture) Fill(ctx context.Context, m *skymap.Map, p FillParams) (uint64, error) {
	if p.Colors == nil {
		p.Colors = Default
	}
	if !(p.Max > p.Min) {
		return 0, fmt.Errorf("%w: [%g, %g]", ErrInvalidRange, p.Min, p.Max)
	}
	if !skymap.Displayable(p.Field) || !m.Has(p.Field) {
		return 0, fmt.Errorf("fill texture: %w: %s", skymap.ErrUnsupportedField, p.Field)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()

	lut, err := t.luts.Get(m.Nside(), m.Ordering())
	if err != nil {
		return 0, fmt.Errorf("fill texture: %w", err)
	}
	if m.Nside() != t.nside {
		t.nside = m.Nside()
		t.res = 4 * t.nside
		t.buf = make([]byte, 4*t.res*t.res)
	}
	t.lut = lut

	t.started++
	gen := t.started
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	t.cancel = cancel
	t.done = done

	go t.run(runCtx, done, gen, m, p)
	return gen, nil
}

func (t *Texture) run(ctx context.Context, done chan struct{}, gen uint64, m *skymap.Map, p FillParams) {
	defer close(done)
	log := logger.Named("skytexture")
	start := time.Now()

	if !paint(ctx, t.buf, t.lut, m, p) {
		log.Debug("fill cancelled", zap.Uint64("generation", gen))
		return
	}
	t.completed.Store(gen)
	t.dirty.Store(true)
	log.Debug("fill complete",
		zap.Uint64("generation", gen),
		zap.Stringer("field", p.Field),
		zap.Int("nside", m.Nside()),
		zap.Duration("elapsed", time.Since(start)))
}

// paint writes every pixel of m into buf and reports whether it got to the
// end. ctx is checked after each pixel.
func paint(ctx context.Context, buf []byte, lut LUT, m *skymap.Map, p FillParams) bool {
	cancelled := ctx.Done()
	span := p.Max - p.Min
	for pix := range m.Len() {
		v := m.Value(pix, p.Field)
		if v < p.Min {
			v = p.Min
		}
		if v > p.Max {
			v = p.Max
		}
		c := p.Colors.At((v - p.Min) / span)
		k := lut[pix]
		buf[k] = c.R
		buf[k+1] = c.G
		buf[k+2] = c.B
		buf[k+3] = 255

		select {
		case <-cancelled:
			return false
		default:
		}
	}
	return true
}

// stopLocked cancels the running fill, if any, and waits for it to exit.
func (t *Texture) stopLocked() {
	if t.cancel == nil {
		return
	}
	t.cancel()
	<-t.done
	t.cancel = nil
	t.done = nil
}

func (t *Texture) running() bool {
	if t.done == nil {
		return false
	}
	select {
	case <-t.done:
		return false
	default:
		return true
	}
}

// Busy reports whether a fill is running.
func (t *Texture) Busy() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running()
}

// Wait blocks until the current fill, if any, has exited.
func (t *Texture) Wait() {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Close cancels any running fill and waits for it.
func (t *Texture) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

// Resolution returns the atlas edge length in texels.
func (t *Texture) Resolution() int { return t.res }

// Bytes returns the RGBA buffer, row-major, Resolution() texels square. It
// is only stable while no fill is running.
func (t *Texture) Bytes() []byte { return t.buf }

// LastCompleted returns the generation of the most recent fill that ran to
// the end, or 0.
func (t *Texture) LastCompleted() uint64 { return t.completed.Load() }

// TakeDirty reports whether a fill has completed since the last call.
func (t *Texture) TakeDirty() bool { return t.dirty.Swap(false) }

// Texel returns the color stored for pixel pix.
func (t *Texture) Texel(pix int) (color.RGBA, error) {
	k, err := t.offset(pix)
	if err != nil {
		return color.RGBA{}, err
	}
	return color.RGBA{R: t.buf[k], G: t.buf[k+1], B: t.buf[k+2], A: t.buf[k+3]}, nil
}

// Highlight sets the alpha of one texel in place. alpha is clamped to 0..1.
// It fails with ErrFillInProgress while a fill is running.
func (t *Texture) Highlight(pix int, alpha float64) error {
	if t.Busy() {
		return ErrFillInProgress
	}

	k, err := t.offset(pix)
	if err != nil {
		return err
	}
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	t.buf[k+3] = byte(math.Round(255 * alpha))
	t.dirty.Store(true)
	return nil
}

func (t *Texture) offset(pix int) (int, error) {
	if t.lut == nil {
		return 0, ErrNoTexture
	}
	if pix < 0 || pix >= len(t.lut) {
		return 0, fmt.Errorf("%w: %d", skymap.ErrPixelOutOfRange, pix)
	}
	return t.lut[pix], nil
}

// Nside returns the resolution of the last filled map.
func (t *Texture) Nside() int { return t.nside }
