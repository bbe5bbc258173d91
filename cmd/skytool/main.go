// skytool is a CLI utility for inspecting riggings, lookup tables and
// synthetic sky maps without opening a window.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang/geo/r3"

	"github.com/Faultbox/skyviewer/internal/config"
	"github.com/Faultbox/skyviewer/internal/engine/debug"
	"github.com/Faultbox/skyviewer/internal/engine/rigging"
	"github.com/Faultbox/skyviewer/internal/engine/skytexture"
	"github.com/Faultbox/skyviewer/internal/logger"
	"github.com/Faultbox/skyviewer/internal/skymap"
	"github.com/Faultbox/skyviewer/internal/viewer/session"
	"github.com/Faultbox/skyviewer/pkg/healpix"
)

var errUsage = errors.New("usage")

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	if err := run(os.Args[1], os.Args[2:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			printUsage(os.Stderr)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(command string, args []string, out io.Writer) error {
	logger.InitNop()

	switch command {
	case "rigging", "rig":
		return cmdRigging(args, out)
	case "lut":
		return cmdLUT(args, out)
	case "pick":
		return cmdPick(args, out)
	case "stats":
		return cmdStats(args, out)
	case "snapshot", "snap":
		return cmdSnapshot(args, out)
	case "config":
		return cmdConfig(args, out)
	case "help", "-h", "--help":
		printUsage(out)
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `skytool - HEALPix sky rigging utility

Usage:
  skytool <command> [options]

Commands:
  rigging   Generate a rigging and print per-face strip statistics
  lut       Build a pixel-to-texel table and verify it is a bijection
  pick      Hit-test a ray against the rigging and print the pixel
  stats     Print field statistics of a synthetic map
  snapshot  Fill a synthetic map into the atlas and write it as an image
  config    Print the effective viewer config, or save it

Examples:
  skytool rigging -nside 8 -mollweide
  skytool lut -nside 256 -ordering nest
  skytool pick -o 3,0,0 -d -1,0,0 -nside 64
  skytool stats -layout TP -hist 20
  skytool snapshot -field P -colors Black/White -format bmp -out ./snaps
  skytool config -mollweide -nside 128 -save`)
}

// mapFlags are shared by the commands that build a synthetic map.
type mapFlags struct {
	nside    *int
	ordering *string
	layout   *string
	seed     *int64
}

func addMapFlags(fs *flag.FlagSet) mapFlags {
	return mapFlags{
		nside:    fs.Int("nside", 64, "Map resolution (power of two)"),
		ordering: fs.String("ordering", "ring", "Pixel ordering (ring, nest)"),
		layout:   fs.String("layout", "TPN", "Pixel layout (T, TP, TN, TPN)"),
		seed:     fs.Int64("seed", 1, "Synthetic map seed"),
	}
}

func (f mapFlags) build() (*skymap.Map, error) {
	ord, err := healpix.ParseOrdering(*f.ordering)
	if err != nil {
		return nil, err
	}
	layout, err := skymap.ParseLayout(*f.layout)
	if err != nil {
		return nil, err
	}
	opts := skymap.DefaultSyntheticOptions()
	opts.Seed = *f.seed
	return skymap.Synthetic(*f.nside, ord, layout, opts)
}

func cmdRigging(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("rigging", flag.ContinueOnError)
	nside := fs.Int("nside", 16, "Rigging resolution")
	mollweide := fs.Bool("mollweide", false, "Build for the Mollweide plane")
	radius := fs.Float64("radius", 1, "Sphere radius")
	lines := fs.Bool("lines", false, "Draw rigging lines instead of textured strips")
	face := fs.Int("face", -1, "Draw a single face (-1 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := rigging.DefaultRenderConfig()
	cfg.RiggingLines = *lines
	cfg.SingleFace = *face

	rig := rigging.New()
	if err := rig.Generate(*nside, *mollweide, *radius, cfg); err != nil {
		return err
	}
	var batch rigging.StripBatch
	if err := rig.Draw(&batch, cfg); err != nil {
		return err
	}

	fmt.Fprintf(out, "Rigging: nside %d, mollweide %v, radius %g\n", *nside, *mollweide, *radius)
	fmt.Fprintf(out, "%-6s %8s %10s\n", "face", "strips", "vertices")
	for i := range rigging.NumFaces {
		f := rig.Face(i)
		fmt.Fprintf(out, "%-6d %8d %10d\n", i, len(f.Strips()), f.VertexCount())
	}
	fmt.Fprintf(out, "Total vertices: %d\n", rig.VertexCount())
	fmt.Fprintf(out, "Drawn: %d textured strips, %d line strips\n", len(batch.TexturedRange), len(batch.LineRange))
	return nil
}

func cmdLUT(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("lut", flag.ContinueOnError)
	nside := fs.Int("nside", 64, "Map resolution (power of two)")
	ordering := fs.String("ordering", "ring", "Pixel ordering (ring, nest)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ord, err := healpix.ParseOrdering(*ordering)
	if err != nil {
		return err
	}
	start := time.Now()
	lut, err := skytexture.NewLUTCache().Get(*nside, ord)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	res := 4 * *nside
	seen := make([]bool, res*res)
	for pix, k := range lut {
		t := k / 4
		if k%4 != 0 || t < 0 || t >= len(seen) || seen[t] {
			return fmt.Errorf("lut: pixel %d maps to invalid or shared offset %d", pix, k)
		}
		seen[t] = true
	}

	fmt.Fprintf(out, "LUT: nside %d, %s, %d pixels, atlas %dx%d, built in %s\n",
		*nside, ord, len(lut), res, res, elapsed.Round(time.Microsecond))
	fmt.Fprintf(out, "Texels used: %d of %d\n", len(lut), res*res)
	return nil
}

func parseVector(s string) (r3.Vector, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return r3.Vector{}, fmt.Errorf("vector %q: want x,y,z", s)
	}
	var c [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return r3.Vector{}, fmt.Errorf("vector %q: %w", s, err)
		}
		c[i] = v
	}
	return r3.Vector{X: c[0], Y: c[1], Z: c[2]}, nil
}

func cmdPick(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("pick", flag.ContinueOnError)
	origin := fs.String("o", "3,0,0", "Observer position x,y,z")
	dir := fs.String("d", "-1,0,0", "Ray direction x,y,z")
	nside := fs.Int("nside", 64, "Map resolution")
	ordering := fs.String("ordering", "ring", "Pixel ordering (ring, nest)")
	mollweide := fs.Bool("mollweide", false, "Hit-test the Mollweide plane")
	if err := fs.Parse(args); err != nil {
		return err
	}

	o, err := parseVector(*origin)
	if err != nil {
		return err
	}
	d, err := parseVector(*dir)
	if err != nil {
		return err
	}
	ord, err := healpix.ParseOrdering(*ordering)
	if err != nil {
		return err
	}

	rig := rigging.New()
	if err := rig.Generate(1, *mollweide, 1, rigging.DefaultRenderConfig()); err != nil {
		return err
	}
	hit, err := rig.ProjectSelection(o, d)
	if err != nil {
		return err
	}
	colat, lambda, err := rig.ProjectSelectionAngles(o, d)
	if err != nil {
		return err
	}
	pix, err := rig.PickPixel(o, d, *nside, ord)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Hit:    (%.6f, %.6f, %.6f)\n", hit.X, hit.Y, hit.Z)
	fmt.Fprintf(out, "Colat:  %.6f rad\n", colat)
	fmt.Fprintf(out, "Lambda: %.6f rad\n", lambda)
	fmt.Fprintf(out, "Pixel:  %d (nside %d, %s)\n", pix, *nside, ord)
	return nil
}

func cmdStats(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	mf := addMapFlags(fs)
	rows := fs.Int("hist", 0, "Print a histogram with this many rows per field")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *rows < 0 {
		return fmt.Errorf("hist: %d rows", *rows)
	}

	m, err := mf.build()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Map: nside %d, %s, layout %s, %d pixels\n", m.Nside(), m.Ordering(), m.Layout(), m.Len())
	fmt.Fprintf(out, "%-6s %12s %12s %12s %12s %12s\n", "field", "min", "max", "mean", "stddev", "auto range")
	for _, f := range skymap.DisplayFields {
		if !m.Has(f) {
			continue
		}
		st, err := m.FieldStats(f)
		if err != nil {
			return err
		}
		lo, hi := session.DisplayRange(st)
		fmt.Fprintf(out, "%-6s %12.5g %12.5g %12.5g %12.5g  [%.4g, %.4g]\n",
			f, st.Min, st.Max, st.Mean, st.StdDev, lo, hi)
	}

	if *rows == 0 {
		return nil
	}
	for _, f := range skymap.DisplayFields {
		if !m.Has(f) {
			continue
		}
		st, err := m.FieldStats(f)
		if err != nil {
			return err
		}
		h, err := m.FieldHistogram(f, st.Min, math.Nextafter(st.Max, math.Inf(1)))
		if err != nil {
			return err
		}
		lo, hi := session.DisplayRange(st)
		printHistogram(out, f, h, *rows, lo, hi)
	}
	return nil
}

const histWidth = 40

// printHistogram draws h as text rows; rows inside the auto range [lo, hi]
// are marked with '*'.
func printHistogram(out io.Writer, f skymap.Field, h *skymap.Histogram, rows int, lo, hi float64) {
	fmt.Fprintf(out, "\n%s histogram:\n", f)
	hlo, hhi := h.Range()
	step := 1 / float64(rows)
	density := make([]float64, rows)
	peak := 0.0
	for r := range density {
		// The last bin of a row belongs to the next one.
		density[r] = h.Span(float64(r)*step, float64(r+1)*step-0.5/skymap.HistogramBins)
		peak = math.Max(peak, density[r])
	}
	if peak == 0 {
		fmt.Fprintln(out, "  constant field")
		return
	}
	for r, d := range density {
		v0 := hlo + float64(r)*step*(hhi-hlo)
		v1 := v0 + step*(hhi-hlo)
		mark := ' '
		if v1 > lo && v0 < hi {
			mark = '*'
		}
		bar := strings.Repeat("#", int(math.Round(d/peak*histWidth)))
		fmt.Fprintf(out, "%c %12.5g %12.5g |%s\n", mark, v0, v1, bar)
	}
}

func cmdSnapshot(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("snapshot", flag.ContinueOnError)
	mf := addMapFlags(fs)
	fieldName := fs.String("field", "I", "Field to paint (I, Q, U, P, Nobs)")
	colors := fs.String("colors", "Default", "Color table (Default, Black/White)")
	lo := fs.Float64("min", 0, "Range minimum (with -auto=false)")
	hi := fs.Float64("max", 0, "Range maximum (with -auto=false)")
	auto := fs.Bool("auto", true, "Use mean +- 3 sigma as the range")
	format := fs.String("format", "png", "Image format (png, bmp)")
	dir := fs.String("out", "snapshots", "Output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	m, err := mf.build()
	if err != nil {
		return err
	}
	field, err := skymap.ParseField(*fieldName)
	if err != nil {
		return err
	}
	table, err := skytexture.ByName(*colors)
	if err != nil {
		return err
	}
	f, err := debug.ParseFormat(*format)
	if err != nil {
		return err
	}

	params := skytexture.FillParams{Field: field, Colors: table, Min: *lo, Max: *hi}
	if *auto {
		st, err := m.FieldStats(field)
		if err != nil {
			return err
		}
		params.Min, params.Max = session.DisplayRange(st)
	}

	tex := skytexture.New(nil)
	defer tex.Close()
	gen, err := tex.Fill(context.Background(), m, params)
	if err != nil {
		return err
	}
	tex.Wait()
	if tex.LastCompleted() != gen {
		return errors.New("snapshot: fill did not complete")
	}

	name, err := debug.NewScreenshotCapture(*dir, "skytool", f).CaptureAtlas(tex.Bytes(), tex.Resolution())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %s (%s, [%g, %g], %s)\n", name, field, params.Min, params.Max, table.Name())
	return nil
}

func cmdConfig(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	var o config.Overrides
	o.Register(fs)
	save := fs.Bool("save", false, "Write the result to the user config file")
	saveTo := fs.String("o", "", "Write the result to this path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadWith(o)
	if err != nil {
		return err
	}

	switch {
	case *saveTo != "":
		if err := cfg.SaveTo(*saveTo); err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved: %s\n", *saveTo)
	case *save:
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved: %s\n", config.SearchPath()[1])
	default:
		return cfg.WriteYAML(out)
	}
	return nil
}
