// Package viewer runs the interactive sky viewer: it owns the window, the
// render loop and the Session that holds the map, texture and riggings.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/skyviewer/internal/config"
	"github.com/Faultbox/skyviewer/internal/engine/camera"
	"github.com/Faultbox/skyviewer/internal/engine/debug"
	"github.com/Faultbox/skyviewer/internal/engine/input"
	"github.com/Faultbox/skyviewer/internal/engine/picking"
	"github.com/Faultbox/skyviewer/internal/engine/renderer"
	"github.com/Faultbox/skyviewer/internal/engine/rigging"
	"github.com/Faultbox/skyviewer/internal/engine/window"
	"github.com/Faultbox/skyviewer/internal/logger"
	"github.com/Faultbox/skyviewer/internal/viewer/session"
)

// backingColor fills the backing rigging, so rigging lines and highlighted
// texels read against a neutral surface.
var backingColor = [4]float32{0.12, 0.12, 0.14, 1}

// App is the viewer instance.
type App struct {
	cfg *config.Config
	log *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	snapshot *debug.ScreenshotCapture

	session *session.Session
	orbit   *camera.OrbitCamera
	plane   *camera.PlaneCamera

	mainMesh    *renderer.Mesh
	backingMesh *renderer.Mesh

	running bool
}

// New creates the window, the GL renderer and the session.
func New(cfg *config.Config) (*App, error) {
	log := logger.Named("viewer")
	log.Info("initializing viewer",
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
		zap.String("projection", cfg.Display.Projection),
	)

	format, err := debug.ParseFormat(cfg.Snapshot.Format)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:      cfg,
		log:      log,
		input:    input.New(nil),
		snapshot: debug.NewScreenshotCapture(cfg.Snapshot.Dir, "skyview", format),
		orbit:    camera.NewOrbitCamera(),
		plane:    camera.NewPlaneCamera(),
	}
	a.ctx, a.cancel = context.WithCancel(context.Background())

	// Window first: the renderer needs its GL context.
	a.window, err = window.New(window.Config{
		Title:      "SkyViewer",
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
		Samples:    cfg.Window.MSAA,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	w, h := a.window.DrawableSize()
	a.renderer, err = renderer.New(renderer.Config{Width: w, Height: h})
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	a.renderer.Resize(w, h)
	a.mainMesh = a.renderer.NewMesh()
	a.backingMesh = a.renderer.NewMesh()

	a.session, err = session.New(a.ctx, cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.Info("viewer initialized")
	return a, nil
}

// Run starts the main loop and returns when the window is closed.
func (a *App) Run() error {
	a.running = true

	var minFrame time.Duration
	if a.cfg.Window.FPSLimit > 0 {
		minFrame = time.Second / time.Duration(a.cfg.Window.FPSLimit)
	}
	frameCount := 0
	fpsTimer := time.Now()

	a.log.Info("starting render loop")
	for a.running {
		frameStart := time.Now()

		if !a.input.Update() {
			a.running = false
			break
		}
		if err := a.handleInput(a.input.Frame()); err != nil {
			return err
		}

		a.sync()
		a.render()
		a.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			a.log.Debug("fps", zap.Int("count", frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
		if minFrame > 0 {
			if d := minFrame - time.Since(frameStart); d > 0 {
				time.Sleep(d)
			}
		}
	}
	return nil
}

// Close cleans up viewer resources.
func (a *App) Close() {
	a.log.Info("closing viewer")
	a.cancel()
	if a.session != nil {
		a.session.Close()
	}
	if a.mainMesh != nil {
		a.mainMesh.Delete()
		a.backingMesh.Delete()
	}
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}

func (a *App) camera() camera.Camera {
	if a.session.Mollweide() {
		return a.plane
	}
	return a.orbit
}

func (a *App) handleInput(f *input.Frame) error {
	if f.Resized {
		w, h := a.window.DrawableSize()
		a.renderer.Resize(w, h)
	}
	cam := a.camera()
	if f.DragX != 0 || f.DragY != 0 {
		cam.HandleDrag(f.DragX, f.DragY)
	}
	if f.Zoom != 0 {
		cam.HandleZoom(f.Zoom)
	}

	for _, e := range f.Events {
		if err := a.dispatch(e); err != nil {
			// Precondition failures leave the previous frame on screen.
			if errors.Is(err, rigging.ErrRiggingNotSet) || errors.Is(err, rigging.ErrInvalidBoundary) {
				a.log.Error("cannot display", zap.Stringer("command", e.Command), zap.Error(err))
				continue
			}
			return fmt.Errorf("%s: %w", e.Command, err)
		}
	}
	return nil
}

func (a *App) dispatch(e input.Event) error {
	s := a.session
	switch e.Command {
	case input.CmdQuit:
		a.running = false
	case input.CmdToggleProjection:
		return s.ToggleProjection()
	case input.CmdNextField:
		return s.NextField(a.ctx)
	case input.CmdNextColorTable:
		return s.NextColorTable(a.ctx)
	case input.CmdToggleAutoRange:
		return s.ToggleAutoRange(a.ctx)
	case input.CmdToggleRiggingLines:
		return s.ToggleRiggingLines()
	case input.CmdTogglePolarVectors:
		s.TogglePolarVectors()
	case input.CmdNextFace:
		return s.NextFace()
	case input.CmdClearSelection:
		return s.ClearSelection()
	case input.CmdResetView:
		a.camera().Reset()
	case input.CmdSnapshot:
		a.takeSnapshot()
	case input.CmdSelect:
		a.selectAt(e.X, e.Y)
	}
	return nil
}

func (a *App) selectAt(x, y int) {
	w, h := a.window.Size()
	ray, ok := picking.FromCamera(a.camera(), float32(x), float32(y), w, h)
	if !ok {
		return
	}
	if _, err := a.session.Select(ray.Origin, ray.Direction); err != nil {
		if errors.Is(err, rigging.ErrNoHit) {
			return
		}
		a.log.Warn("selection failed", zap.Error(err))
	}
}

func (a *App) takeSnapshot() {
	tex := a.session.Texture()
	if tex.Busy() {
		a.log.Warn("snapshot skipped: fill in progress")
		return
	}
	if name, err := a.snapshot.CaptureAtlas(tex.Bytes(), tex.Resolution()); err != nil {
		a.log.Error("atlas snapshot failed", zap.Error(err))
	} else {
		a.log.Info("atlas snapshot saved", zap.String("file", name))
	}

	pixels, w, h := a.renderer.ReadPixels()
	if name, err := a.snapshot.CaptureFromPixels(pixels, w, h); err != nil {
		a.log.Error("view snapshot failed", zap.Error(err))
	} else {
		a.log.Info("view snapshot saved", zap.String("file", name))
	}
}

// sync pushes session changes to the GPU.
func (a *App) sync() {
	if mainBatch, backingBatch, ok := a.session.TakeMesh(); ok {
		a.mainMesh.Upload(mainBatch)
		a.backingMesh.Upload(backingBatch)
		a.renderer.UploadPolar(a.session.PolarVertices())
		a.window.SetTitle(a.session.Title())
	}

	changed, err := a.session.Poll()
	if err != nil {
		a.log.Warn("re-applying highlights", zap.Error(err))
	}
	if changed {
		tex := a.session.Texture()
		a.renderer.UploadAtlas(tex.Resolution(), tex.Bytes())
		a.window.SetTitle(a.session.Title())
	}
}

func (a *App) render() {
	cam := a.camera()
	mvp := cam.ProjectionMatrix(a.renderer.Aspect()).Mul(cam.ViewMatrix())

	a.renderer.Begin()
	a.renderer.DrawFlat(a.backingMesh, mvp, backingColor)
	if a.session.RenderConfig().RiggingLines {
		a.renderer.DrawLines(a.mainMesh, mvp)
	} else {
		a.renderer.DrawTextured(a.mainMesh, mvp)
	}
	if a.session.PolarVisible() {
		a.renderer.DrawPolar(mvp)
	}
}
