// Package window owns the SDL2 window and its OpenGL 4.1 core context.
package window

import (
	"fmt"
	"runtime"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/skyviewer/internal/logger"
)

func init() {
	// SDL and GL must stay on the thread that created the context.
	runtime.LockOSThread()
}

// Config describes the window to open.
type Config struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	VSync      bool
	// Samples is the MSAA sample count. Zero disables multisampling.
	Samples int
}

// Window is an SDL window with a current GL context.
type Window struct {
	win *sdl.Window
	ctx sdl.GLContext
	log *zap.Logger
}

type glAttr struct {
	attr  sdl.GLattr
	value int
}

// contextAttrs request 4.1 core, the newest profile macOS offers.
func contextAttrs(samples int) []glAttr {
	attrs := []glAttr{
		{sdl.GL_CONTEXT_MAJOR_VERSION, 4},
		{sdl.GL_CONTEXT_MINOR_VERSION, 1},
		{sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE},
		{sdl.GL_DOUBLEBUFFER, 1},
		{sdl.GL_DEPTH_SIZE, 24},
	}
	if samples > 0 {
		return append(attrs, glAttr{sdl.GL_MULTISAMPLEBUFFERS, 1}, glAttr{sdl.GL_MULTISAMPLESAMPLES, samples})
	}
	return append(attrs, glAttr{sdl.GL_MULTISAMPLEBUFFERS, 0}, glAttr{sdl.GL_MULTISAMPLESAMPLES, 0})
}

func applyAttrs(attrs []glAttr) error {
	var err error
	for _, a := range attrs {
		err = multierr.Append(err, sdl.GLSetAttribute(a.attr, a.value))
	}
	return err
}

// New initializes SDL video and opens the window. When a multisampled
// context cannot be created it retries once without multisampling.
func New(cfg Config) (*Window, error) {
	log := logger.Named("window")

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("sdl init: %w", err)
	}

	w, err := open(cfg)
	if err != nil && cfg.Samples > 0 {
		log.Warn("multisampled context unavailable, retrying without MSAA",
			zap.Int("samples", cfg.Samples), zap.Error(err))
		cfg.Samples = 0
		w, err = open(cfg)
	}
	if err != nil {
		sdl.Quit()
		return nil, err
	}
	w.log = log

	interval := 0
	if cfg.VSync {
		interval = 1
	}
	if err := sdl.GLSetSwapInterval(interval); err != nil {
		log.Warn("swap interval rejected", zap.Int("interval", interval), zap.Error(err))
	}

	dw, dh := w.DrawableSize()
	log.Info("window opened",
		zap.String("title", cfg.Title),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Int("drawable_width", dw),
		zap.Int("drawable_height", dh),
		zap.Int("samples", cfg.Samples),
		zap.Bool("fullscreen", cfg.Fullscreen),
		zap.Bool("vsync", cfg.VSync),
	)
	return w, nil
}

func open(cfg Config) (*Window, error) {
	if err := applyAttrs(contextAttrs(cfg.Samples)); err != nil {
		return nil, fmt.Errorf("gl attributes: %w", err)
	}

	flags := uint32(sdl.WINDOW_OPENGL | sdl.WINDOW_RESIZABLE | sdl.WINDOW_ALLOW_HIGHDPI)
	if cfg.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN_DESKTOP
	}
	win, err := sdl.CreateWindow(cfg.Title, sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(cfg.Width), int32(cfg.Height), flags)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}

	ctx, err := win.GLCreateContext()
	if err != nil {
		win.Destroy()
		return nil, fmt.Errorf("create gl context: %w", err)
	}
	return &Window{win: win, ctx: ctx}, nil
}

// Close releases the context and the window, then shuts SDL down.
func (w *Window) Close() {
	w.log.Info("window closed")
	sdl.GLDeleteContext(w.ctx)
	w.win.Destroy()
	sdl.Quit()
}

func (w *Window) SwapBuffers() { w.win.GLSwap() }

// Size is the window size in screen coordinates, the space mouse events use.
func (w *Window) Size() (int, int) {
	width, height := w.win.GetSize()
	return int(width), int(height)
}

// DrawableSize is the framebuffer size in pixels; larger than Size on
// high-DPI displays.
func (w *Window) DrawableSize() (int, int) {
	width, height := w.win.GLGetDrawableSize()
	return int(width), int(height)
}

func (w *Window) SetTitle(title string) { w.win.SetTitle(title) }
