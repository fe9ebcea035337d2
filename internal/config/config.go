// Package config handles viewer configuration loading and management.
package config

import (
	"fmt"

	"github.com/Faultbox/mapgl/internal/layer"
	"github.com/Faultbox/mapgl/internal/logger"
	"github.com/Faultbox/mapgl/internal/viewport"
)

// Config holds all viewer settings.
type Config struct {
	Window     WindowConfig     `yaml:"window"`
	Map        MapConfig        `yaml:"map"`
	Projection ProjectionConfig `yaml:"projection"`
	Layer      LayerConfig      `yaml:"layer"`
	Debug      DebugConfig      `yaml:"debug"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	Samples    int    `yaml:"samples"`
}

// MapConfig is the initial camera.
type MapConfig struct {
	Longitude float64 `yaml:"longitude"`
	Latitude  float64 `yaml:"latitude"`
	Zoom      float64 `yaml:"zoom"`
	Bearing   float64 `yaml:"bearing"`
	Pitch     float64 `yaml:"pitch"`
	MinZoom   float64 `yaml:"min_zoom"`
	MaxZoom   float64 `yaml:"max_zoom"`
	// FitData recenters on the loaded trips instead of the configured center.
	FitData bool `yaml:"fit_data"`
}

// ProjectionConfig tunes the shared projection uniforms.
type ProjectionConfig struct {
	CoordinateOrigin [3]float64 `yaml:"coordinate_origin"`
	WrapLongitude    bool       `yaml:"wrap_longitude"`
	// Zero values select the viewport defaults.
	Altitude        float64 `yaml:"altitude"`
	NearZMultiplier float64 `yaml:"near_z_multiplier"`
	FarZMultiplier  float64 `yaml:"far_z_multiplier"`
	Generation      int     `yaml:"generation"`
}

// LayerConfig holds the demo layer settings.
type LayerConfig struct {
	DataPath       string     `yaml:"data_path"`
	Radius         float64    `yaml:"radius"`
	TripSampleRate float64    `yaml:"trip_sample_rate"`
	TripsCount     int        `yaml:"trips_count"`
	Color          [4]float32 `yaml:"color"`
	Background     [4]float32 `yaml:"background"`
	GraticuleStep  float64    `yaml:"graticule_step"`
}

// DebugConfig holds developer aids.
type DebugConfig struct {
	ScreenshotDir string `yaml:"screenshot_dir"`
	ShowGraticule bool   `yaml:"show_graticule"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:   "mapgl",
			Width:   1280,
			Height:  720,
			VSync:   true,
			Samples: 4,
		},
		Map: MapConfig{
			Longitude: -122.423175,
			Latitude:  37.778316,
			Zoom:      14,
			Bearing:   0,
			Pitch:     15,
			MinZoom:   0,
			MaxZoom:   20,
		},
		Projection: ProjectionConfig{
			Generation: int(layer.Generation2),
		},
		Layer: LayerConfig{
			DataPath:       "data/cabspotting.binary",
			Radius:         5,
			TripSampleRate: 1,
			TripsCount:     100000,
			Color:          [4]float32{0.5, 0.7, 0.9, 1},
			GraticuleStep:  0.01,
		},
		Debug: DebugConfig{
			ScreenshotDir: "screenshots",
			ShowGraticule: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate reports settings the viewer cannot run with.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Map.MinZoom > c.Map.MaxZoom {
		return fmt.Errorf("min_zoom %v above max_zoom %v", c.Map.MinZoom, c.Map.MaxZoom)
	}
	if g := layer.Generation(c.Projection.Generation); g != layer.Generation1 && g != layer.Generation2 {
		return fmt.Errorf("unknown generation %d", c.Projection.Generation)
	}
	if c.Layer.TripSampleRate < 0 || c.Layer.TripSampleRate > 1 {
		return fmt.Errorf("trip_sample_rate %v outside [0, 1]", c.Layer.TripSampleRate)
	}
	if c.Layer.Radius <= 0 {
		return fmt.Errorf("radius %v must be positive", c.Layer.Radius)
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}

// ViewportConfig returns the projection settings shared by all layers.
func (p ProjectionConfig) ViewportConfig() viewport.Config {
	return viewport.Config{
		CoordinateOrigin: p.CoordinateOrigin,
		WrapLongitude:    p.WrapLongitude,
	}
}
