package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test window defaults
	if cfg.Window.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Window.Height)
	}
	if cfg.Window.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if !cfg.Window.VSync {
		t.Error("expected vsync to be true by default")
	}

	// Test map defaults
	if cfg.Map.Longitude != -122.423175 || cfg.Map.Latitude != 37.778316 {
		t.Errorf("expected San Francisco center, got %v,%v", cfg.Map.Longitude, cfg.Map.Latitude)
	}
	if cfg.Map.Zoom != 14 {
		t.Errorf("expected zoom 14, got %v", cfg.Map.Zoom)
	}
	if cfg.Map.Pitch != 15 {
		t.Errorf("expected pitch 15, got %v", cfg.Map.Pitch)
	}

	// Test projection defaults
	if cfg.Projection.Generation != 2 {
		t.Errorf("expected generation 2, got %d", cfg.Projection.Generation)
	}
	if cfg.Projection.WrapLongitude {
		t.Error("expected wrap_longitude to be false by default")
	}

	// Test layer defaults
	if cfg.Layer.Radius != 5 {
		t.Errorf("expected radius 5, got %v", cfg.Layer.Radius)
	}
	if cfg.Layer.TripSampleRate != 1 {
		t.Errorf("expected sample rate 1, got %v", cfg.Layer.TripSampleRate)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
window:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false

map:
  longitude: 2.35
  latitude: 48.85
  zoom: 11
  bearing: 30

projection:
  coordinate_origin: [2.35, 48.85, 0]
  wrap_longitude: true
  generation: 1

layer:
  data_path: "/tmp/cabs.binary"
  radius: 8
  trip_sample_rate: 0.25

logging:
  level: "debug"
  log_file: "mapgl.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920, got %d", cfg.Window.Width)
	}
	if !cfg.Window.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Window.VSync {
		t.Error("expected vsync to be false")
	}
	// Unset keys keep their defaults.
	if cfg.Window.Title != "mapgl" {
		t.Errorf("expected default title, got %q", cfg.Window.Title)
	}
	if cfg.Map.Pitch != 15 {
		t.Errorf("expected default pitch 15, got %v", cfg.Map.Pitch)
	}

	if cfg.Map.Longitude != 2.35 || cfg.Map.Zoom != 11 || cfg.Map.Bearing != 30 {
		t.Errorf("unexpected map section: %+v", cfg.Map)
	}

	vc := cfg.Projection.ViewportConfig()
	if vc.CoordinateOrigin != [3]float64{2.35, 48.85, 0} || !vc.WrapLongitude {
		t.Errorf("unexpected viewport config: %+v", vc)
	}
	if cfg.Projection.Generation != 1 {
		t.Errorf("expected generation 1, got %d", cfg.Projection.Generation)
	}

	if cfg.Layer.DataPath != "/tmp/cabs.binary" || cfg.Layer.Radius != 8 || cfg.Layer.TripSampleRate != 0.25 {
		t.Errorf("unexpected layer section: %+v", cfg.Layer)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "mapgl.log" {
		t.Errorf("expected log file 'mapgl.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
window:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"zero width", func(c *Config) { c.Window.Width = 0 }, "window size"},
		{"zoom range", func(c *Config) { c.Map.MinZoom = 10; c.Map.MaxZoom = 5 }, "min_zoom"},
		{"generation", func(c *Config) { c.Projection.Generation = 3 }, "generation"},
		{"sample rate", func(c *Config) { c.Layer.TripSampleRate = 1.5 }, "trip_sample_rate"},
		{"radius", func(c *Config) { c.Layer.Radius = 0 }, "radius"},
		{"log level", func(c *Config) { c.Logging.Level = "verbose" }, "log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
	if filepath.Base(dir) != "mapgl" {
		t.Errorf("ConfigDir should end in mapgl, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("HOME", filepath.Join(tmpDir, "home"))

	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("window:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	path = findConfigFile()
	if path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "data flag",
			setup: func() { *flagData = "other.binary" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Layer.DataPath != "other.binary" {
					t.Errorf("expected data path other.binary, got %s", cfg.Layer.DataPath)
				}
			},
			teardown: func() { *flagData = "" },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Window.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Window.Width != 2560 || cfg.Window.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Window.Width, cfg.Window.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name: "camera flags",
			setup: func() {
				*flagZoom = 0
				*flagPitch = 45
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Map.Zoom != 0 {
					t.Errorf("expected zoom 0 from flag, got %v", cfg.Map.Zoom)
				}
				if cfg.Map.Pitch != 45 {
					t.Errorf("expected pitch 45, got %v", cfg.Map.Pitch)
				}
			},
			teardown: func() {
				*flagZoom = -1
				*flagPitch = -1
			},
		},
		{
			name: "generation and sampling flags",
			setup: func() {
				*flagGeneration = 1
				*flagSampleRate = 0.1
				*flagFit = true
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Projection.Generation != 1 {
					t.Errorf("expected generation 1, got %d", cfg.Projection.Generation)
				}
				if cfg.Layer.TripSampleRate != 0.1 {
					t.Errorf("expected sample rate 0.1, got %v", cfg.Layer.TripSampleRate)
				}
				if !cfg.Map.FitData {
					t.Error("expected fit_data with fit flag")
				}
			},
			teardown: func() {
				*flagGeneration = 0
				*flagSampleRate = -1
				*flagFit = false
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
window:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width should be from flag (1920), not file (1600)
	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Window.Width)
	}

	// Height should be from file (900) since no flag override
	if cfg.Window.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Window.Height)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("projection:\n  generation: 7\n"), 0644); err != nil {
		t.Fatal(err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); err == nil {
		t.Error("expected invalid generation to fail Load")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Map.Zoom = 9.5
	cfg.Layer.DataPath = "trips.bin"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}
	if loaded.Map.Zoom != 9.5 || loaded.Layer.DataPath != "trips.bin" {
		t.Errorf("saved values not restored: zoom %v data %q", loaded.Map.Zoom, loaded.Layer.DataPath)
	}
}

func TestSaveFoundOnNextLoad(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("HOME", filepath.Join(tmpDir, "home"))
	t.Setenv("APPDATA", filepath.Join(tmpDir, "appdata"))

	cfg := Default()
	cfg.Layer.Radius = 12.5
	cfg.Layer.TripsCount = 500
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	path := findConfigFile()
	if path != filepath.Join(ConfigDir(), "config.yaml") {
		t.Fatalf("findConfigFile = %q, want the saved file", path)
	}
	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}
	if loaded.Layer.Radius != 12.5 || loaded.Layer.TripsCount != 500 {
		t.Errorf("saved tuning not restored: radius %v trips %d", loaded.Layer.Radius, loaded.Layer.TripsCount)
	}
}
