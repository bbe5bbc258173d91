// Package session holds the viewer state that does not need a GL context:
// the map, its texture, both riggings and the selection.
package session

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"go.uber.org/zap"

	"github.com/Faultbox/skyviewer/internal/config"
	"github.com/Faultbox/skyviewer/internal/engine/polar"
	"github.com/Faultbox/skyviewer/internal/engine/rigging"
	"github.com/Faultbox/skyviewer/internal/engine/skytexture"
	"github.com/Faultbox/skyviewer/internal/logger"
	"github.com/Faultbox/skyviewer/internal/skymap"
	"github.com/Faultbox/skyviewer/pkg/healpix"
)

// BackingRadius is the radius of the flat-colored rigging drawn behind the
// map. In Mollweide mode it sits 1-BackingRadius behind the image plane.
const BackingRadius = 0.99

// autoSigma is the half-width of the automatic display range in standard
// deviations.
const autoSigma = 3

// Session is driven once per frame by the viewer's render loop.
type Session struct {
	cfg *config.Config
	log *zap.Logger

	m       *skymap.Map
	texture *skytexture.Texture
	sel     *skymap.Selection
	vectors polar.VectorSet

	main    *rigging.Rigging
	backing *rigging.Rigging
	render  rigging.RenderConfig

	mainBatch    rigging.StripBatch
	backingBatch rigging.StripBatch
	polarVerts   []float32
	meshDirty    bool

	mollweide  bool
	field      skymap.Field
	colors     *skytexture.ColorTable
	autoRange  bool
	showPolar  bool
	lo, hi     float64
	hist       *skymap.Histogram
	fillGen    uint64
	paintedGen uint64
}

// New builds the synthetic map described by cfg, generates both
// riggings and starts the first texture fill.
func New(ctx context.Context, cfg *config.Config) (*Session, error) {
	ord, err := healpix.ParseOrdering(cfg.Map.Ordering)
	if err != nil {
		return nil, err
	}
	layout, err := skymap.ParseLayout(cfg.Map.Layout)
	if err != nil {
		return nil, err
	}
	field, err := skymap.ParseField(cfg.Display.Field)
	if err != nil {
		return nil, err
	}
	colors, err := skytexture.ByName(cfg.Display.ColorTable)
	if err != nil {
		return nil, err
	}

	opts := skymap.DefaultSyntheticOptions()
	opts.Seed = cfg.Map.Seed
	m, err := skymap.Synthetic(cfg.Map.Nside, ord, layout, opts)
	if err != nil {
		return nil, fmt.Errorf("build map: %w", err)
	}

	s := &Session{
		cfg:       cfg,
		log:       logger.Named("viewer"),
		m:         m,
		texture:   skytexture.New(nil),
		sel:       skymap.NewSelection(),
		main:      rigging.New(),
		backing:   rigging.New(),
		mollweide: cfg.Display.Mollweide(),
		field:     field,
		colors:    colors,
		autoRange: cfg.Display.AutoRange,
		showPolar: cfg.Display.PolarVectors,
		lo:        cfg.Display.Min,
		hi:        cfg.Display.Max,
		render: rigging.RenderConfig{
			SingleFace:     cfg.Debug.SingleFace,
			RiggingLines:   cfg.Debug.RiggingLines,
			ForceMollweide: cfg.Debug.ForceMollweide,
		},
	}
	if !m.Has(field) {
		s.log.Warn("field not in map, falling back to I", zap.Stringer("field", field))
		s.field = skymap.FieldI
	}

	if m.Capabilities().Has(skymap.HasPolarization | skymap.HasNobs) {
		if err := s.vectors.Set(m); err != nil {
			return nil, err
		}
	}

	if err := s.Regenerate(); err != nil {
		return nil, err
	}
	if err := s.Refill(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Close stops any running fill.
func (s *Session) Close() {
	s.texture.Close()
}

// Regenerate rebuilds both riggings for the current projection and debug
// toggles and flattens them into strip batches.
func (s *Session) Regenerate() error {
	nside := s.cfg.Display.RiggingNside
	if err := s.main.Generate(nside, s.mollweide, 1, s.render); err != nil {
		return err
	}
	if err := s.backing.Generate(nside, s.mollweide, BackingRadius, s.render); err != nil {
		return err
	}

	s.mainBatch.Reset()
	s.backingBatch.Reset()
	if err := s.main.Draw(&s.mainBatch, s.render); err != nil {
		return fmt.Errorf("draw rigging: %w", err)
	}
	backingCfg := s.render
	backingCfg.RiggingLines = false
	if err := s.backing.Draw(&s.backingBatch, backingCfg); err != nil {
		return fmt.Errorf("draw backing rigging: %w", err)
	}

	s.polarVerts = polar.AppendVertices(s.polarVerts[:0], s.vectors.Segments(s.Mollweide()))
	s.meshDirty = true
	return nil
}

// DisplayRange returns the automatic range for st: mean +- 3 sigma clipped
// to the data, widened when it would be empty.
func DisplayRange(st skymap.Stats) (lo, hi float64) {
	lo = math.Max(st.Mean-autoSigma*st.StdDev, st.Min)
	hi = math.Min(st.Mean+autoSigma*st.StdDev, st.Max)
	if hi <= lo {
		pad := math.Max(math.Abs(lo)*0.5, 0.5)
		lo, hi = lo-pad, hi+pad
	}
	return lo, hi
}

// Refill restarts the texture fill with the current field, colors and
// range. Selection highlights are applied once the fill completes.
func (s *Session) Refill(ctx context.Context) error {
	st, err := s.m.FieldStats(s.field)
	if err != nil {
		return err
	}
	if s.autoRange {
		s.lo, s.hi = DisplayRange(st)
	}
	// The upper bound is nudged so the maximum lands in the last bin.
	s.hist, err = s.m.FieldHistogram(s.field, st.Min, math.Nextafter(st.Max, math.Inf(1)))
	if err != nil {
		return err
	}

	gen, err := s.texture.Fill(ctx, s.m, skytexture.FillParams{
		Field:  s.field,
		Colors: s.colors,
		Min:    s.lo,
		Max:    s.hi,
	})
	if err != nil {
		return err
	}
	s.fillGen = gen
	s.log.Debug("fill started",
		zap.Uint64("generation", gen),
		zap.Stringer("field", s.field),
		zap.Float64("min", s.lo),
		zap.Float64("max", s.hi),
		zap.Float64("density", s.RangeDensity()))
	return nil
}

// Poll is called once per frame. It re-applies selection highlights after a
// fill and reports whether the atlas changed since the last call.
func (s *Session) Poll() (atlasChanged bool, err error) {
	if s.texture.Busy() {
		return false, nil
	}
	if done := s.texture.LastCompleted(); done != s.paintedGen {
		s.paintedGen = done
		for _, pix := range s.sel.Pixels() {
			if herr := s.texture.Highlight(pix, skytexture.SelectAlpha); herr != nil {
				err = errors.Join(err, herr)
			}
		}
	}
	return s.texture.TakeDirty(), err
}

// Select toggles the pixel under the ray o + t*d. A miss is not an error;
// it returns -1 and ErrNoHit so the caller can ignore it.
func (s *Session) Select(o, d r3.Vector) (int, error) {
	pix, err := s.main.PickPixel(o, d, s.m.Nside(), s.m.Ordering())
	if err != nil {
		return -1, err
	}
	selected := s.sel.Toggle(pix)
	alpha := 1.0
	if selected {
		alpha = skytexture.SelectAlpha
	}
	// While a fill runs the highlight is applied by Poll afterwards.
	if err := s.texture.Highlight(pix, alpha); err != nil && !errors.Is(err, skytexture.ErrFillInProgress) {
		return pix, err
	}

	p, _ := s.m.Lookup(pix)
	fields := []zap.Field{
		zap.Int("pixel", pix),
		zap.Bool("selected", selected),
		zap.Float64(s.field.String(), p.Value(s.field)),
		zap.Int("count", s.sel.Len()),
	}
	if s.sel.Len() > 0 {
		stats, err := s.SelectionStats()
		if err != nil {
			return pix, err
		}
		if st, ok := stats[s.field]; ok {
			fields = append(fields, zap.Float64("mean", st.Mean), zap.Float64("stddev", st.StdDev))
		}
	}
	s.log.Info("pixel selected", fields...)
	return pix, nil
}

// ClearSelection deselects every pixel and removes the highlights.
func (s *Session) ClearSelection() error {
	var err error
	for _, pix := range s.sel.Clear() {
		if herr := s.texture.Highlight(pix, 1); herr != nil && !errors.Is(herr, skytexture.ErrFillInProgress) {
			err = errors.Join(err, herr)
		}
	}
	return err
}

// SelectionStats summarizes the selected pixels per field.
func (s *Session) SelectionStats() (map[skymap.Field]skymap.Stats, error) {
	return s.sel.Stats(s.m)
}

// RangeDensity is the mean normalized histogram height of the current field
// between the display bounds. It is zero when the field is constant.
func (s *Session) RangeDensity() float64 {
	if s.hist == nil {
		return 0
	}
	return s.hist.Span(s.hist.Fraction(s.lo), s.hist.Fraction(s.hi))
}

// ToggleProjection switches between sphere and Mollweide and rebuilds the
// riggings.
func (s *Session) ToggleProjection() error {
	s.mollweide = !s.mollweide
	return s.Regenerate()
}

// NextField cycles to the next field the map carries and refills.
func (s *Session) NextField(ctx context.Context) error {
	fields := skymap.DisplayFields
	start := 0
	for i, f := range fields {
		if f == s.field {
			start = i
		}
	}
	for k := 1; k <= len(fields); k++ {
		f := fields[(start+k)%len(fields)]
		if s.m.Has(f) {
			s.field = f
			break
		}
	}
	return s.Refill(ctx)
}

// NextColorTable cycles through the built-in tables and refills.
func (s *Session) NextColorTable(ctx context.Context) error {
	tables := skytexture.Tables()
	for i, t := range tables {
		if t == s.colors {
			s.colors = tables[(i+1)%len(tables)]
			break
		}
	}
	return s.Refill(ctx)
}

// ToggleAutoRange switches between the configured and the automatic range.
func (s *Session) ToggleAutoRange(ctx context.Context) error {
	s.autoRange = !s.autoRange
	if !s.autoRange {
		s.lo, s.hi = s.cfg.Display.Min, s.cfg.Display.Max
	}
	return s.Refill(ctx)
}

// ToggleRiggingLines switches between textured strips and rigging lines.
func (s *Session) ToggleRiggingLines() error {
	s.render.RiggingLines = !s.render.RiggingLines
	return s.Regenerate()
}

// NextFace cycles the single-face filter through all faces, then off.
func (s *Session) NextFace() error {
	s.render.SingleFace++
	if s.render.SingleFace >= rigging.NumFaces {
		s.render.SingleFace = -1
	}
	return s.Regenerate()
}

// TogglePolarVectors shows or hides the polarization segments.
func (s *Session) TogglePolarVectors() {
	s.showPolar = !s.showPolar
}

// TakeMesh returns the strip batches if they changed since the last call.
func (s *Session) TakeMesh() (main, backing *rigging.StripBatch, ok bool) {
	if !s.meshDirty {
		return nil, nil, false
	}
	s.meshDirty = false
	return &s.mainBatch, &s.backingBatch, true
}

// Mollweide reports whether vertices live on the Mollweide plane.
func (s *Session) Mollweide() bool {
	return s.mollweide || s.render.ForceMollweide
}

func (s *Session) Map() *skymap.Map { return s.m }
func (s *Session) Texture() *skytexture.Texture { return s.texture }
func (s *Session) Field() skymap.Field { return s.field }
func (s *Session) ColorTable() *skytexture.ColorTable { return s.colors }
func (s *Session) Range() (lo, hi float64) { return s.lo, s.hi }
func (s *Session) Histogram() *skymap.Histogram { return s.hist }
func (s *Session) RenderConfig() rigging.RenderConfig { return s.render }
func (s *Session) PolarVisible() bool { return s.showPolar && len(s.polarVerts) > 0 }
func (s *Session) PolarVertices() []float32 { return s.polarVerts }
func (s *Session) Selection() *skymap.Selection { return s.sel }

// Title summarizes the state for the window title.
func (s *Session) Title() string {
	proj := config.ProjectionSphere
	if s.Mollweide() {
		proj = config.ProjectionMollweide
	}
	title := fmt.Sprintf("SkyViewer - %s [%g, %g] %s - %s - nside %d",
		s.field, s.lo, s.hi, s.colors.Name(), proj, s.m.Nside())
	if s.render.SingleFace >= 0 {
		title += fmt.Sprintf(" - face %d", s.render.SingleFace)
	}
	if n := s.sel.Len(); n > 0 {
		title += fmt.Sprintf(" - %d selected", n)
	}
	return title
}
