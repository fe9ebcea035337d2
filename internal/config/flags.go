package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagData       = flag.String("data", "", "Path to the cabspotting trips file")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagZoom       = flag.Float64("zoom", -1, "Initial zoom level")
	flagPitch      = flag.Float64("pitch", -1, "Initial pitch in degrees")
	flagGeneration = flag.Int("generation", 0, "Draw-call configuration generation (1 or 2)")
	flagSampleRate = flag.Float64("sample-rate", -1, "Fraction of occupied trips to draw")
	flagFit        = flag.Bool("fit", false, "Fit the camera to the loaded trips")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagData != "" {
		cfg.Layer.DataPath = *flagData
	}
	if *flagWindowed {
		cfg.Window.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Window.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagZoom >= 0 {
		cfg.Map.Zoom = *flagZoom
	}
	if *flagPitch >= 0 {
		cfg.Map.Pitch = *flagPitch
	}
	if *flagGeneration != 0 {
		cfg.Projection.Generation = *flagGeneration
	}
	if *flagSampleRate >= 0 {
		cfg.Layer.TripSampleRate = *flagSampleRate
	}
	if *flagFit {
		cfg.Map.FitData = true
	}
}
