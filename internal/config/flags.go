package config

import "flag"

// Overrides holds command-line values layered over the config file. Zero
// values leave the file setting untouched.
type Overrides struct {
	ConfigPath string
	Debug      bool
	LogFile    string

	Windowed   bool
	Fullscreen bool
	Width      int
	Height     int

	Mollweide bool
	Field     string
	Colors    string

	Nside    int
	Ordering string
	Seed     int64
}

// Register binds o to flags on fs.
func (o *Overrides) Register(fs *flag.FlagSet) {
	fs.StringVar(&o.ConfigPath, "config", "", "Path to config file")
	fs.BoolVar(&o.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&o.LogFile, "log-file", "", "Also write logs to this rotated file")
	fs.BoolVar(&o.Windowed, "windowed", false, "Run in windowed mode")
	fs.BoolVar(&o.Fullscreen, "fullscreen", false, "Run in fullscreen mode")
	fs.IntVar(&o.Width, "width", 0, "Window width")
	fs.IntVar(&o.Height, "height", 0, "Window height")
	fs.BoolVar(&o.Mollweide, "mollweide", false, "Start in the Mollweide projection")
	fs.StringVar(&o.Field, "field", "", "Map field to display (I, Q, U, P, Nobs)")
	fs.StringVar(&o.Colors, "colors", "", "Color table name")
	fs.IntVar(&o.Nside, "nside", 0, "Synthetic map resolution")
	fs.StringVar(&o.Ordering, "ordering", "", "Synthetic map ordering (ring, nest)")
	fs.Int64Var(&o.Seed, "seed", 0, "Synthetic map seed")
}

// Apply writes every set override into cfg.
func (o *Overrides) Apply(cfg *Config) {
	if o.Debug {
		cfg.Logging.Level = "debug"
	}
	if o.LogFile != "" {
		cfg.Logging.LogFile = o.LogFile
	}

	switch {
	case o.Fullscreen:
		cfg.Window.Fullscreen = true
	case o.Windowed:
		cfg.Window.Fullscreen = false
	}
	if o.Width > 0 {
		cfg.Window.Width = o.Width
	}
	if o.Height > 0 {
		cfg.Window.Height = o.Height
	}

	if o.Mollweide {
		cfg.Display.Projection = ProjectionMollweide
	}
	if o.Field != "" {
		cfg.Display.Field = o.Field
	}
	if o.Colors != "" {
		cfg.Display.ColorTable = o.Colors
	}

	if o.Nside > 0 {
		cfg.Map.Nside = o.Nside
	}
	if o.Ordering != "" {
		cfg.Map.Ordering = o.Ordering
	}
	if o.Seed != 0 {
		cfg.Map.Seed = o.Seed
	}
}

var cli Overrides

func init() {
	cli.Register(flag.CommandLine)
}

// ParseFlags parses the process command line. Call it before Load.
func ParseFlags() {
	flag.Parse()
}
