// Package app runs the map viewer: window, input, frame loop and the trips
// scene drawn over a Web Mercator camera.
package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"time"

	"github.com/paulmach/orb"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/mapgl/internal/config"
	"github.com/Faultbox/mapgl/internal/engine/camera"
	"github.com/Faultbox/mapgl/internal/engine/debug"
	"github.com/Faultbox/mapgl/internal/engine/framebuffer"
	"github.com/Faultbox/mapgl/internal/engine/glctx"
	"github.com/Faultbox/mapgl/internal/engine/input"
	"github.com/Faultbox/mapgl/internal/engine/window"
	"github.com/Faultbox/mapgl/internal/layer"
	"github.com/Faultbox/mapgl/internal/logger"
	"github.com/Faultbox/mapgl/internal/loop"
	"github.com/Faultbox/mapgl/internal/mapview"
	"github.com/Faultbox/mapgl/internal/scene"
	"github.com/Faultbox/mapgl/internal/trips"
)

// idleDelay is how long the loop sleeps when no frame is scheduled.
const idleDelay = 10 * time.Millisecond

// App is the viewer instance.
type App struct {
	cfg     *config.Config
	running bool
	log     *zap.Logger

	window *window.Window
	input  *input.Input
	gl     *glctx.Context

	camera  *camera.MapCamera
	source  mapview.Source
	factory *layer.Factory
	scene   *scene.Scene
	trips   []trips.Trip
	starts  []orb.Point
	// Pixels dragged since the last button press.
	dragged int

	queue  *loop.Queue
	toggle *loop.Toggle

	shots               *debug.ScreenshotCapture
	offscreen           *framebuffer.Framebuffer
	screenshotRequested bool

	renderErr error
	frames    int
}

// New opens the window and prepares the scene. Trips are loaded by Run.
func New(cfg *config.Config) (*App, error) {
	a := &App{
		cfg: cfg,
		log: logger.Named("app"),
	}

	a.log.Info("initializing viewer",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
		zap.Int("generation", cfg.Projection.Generation),
	)

	var err error
	a.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
		Samples:    cfg.Window.Samples,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// GL must be initialized after the window created its context.
	if err := glctx.Init(); err != nil {
		a.window.Close()
		return nil, err
	}
	dw, dh := a.window.DrawableSize()
	a.gl = glctx.New(dw, dh)
	a.input = input.New()

	m := cfg.Map
	a.camera = camera.NewMapCamera(orb.Point{m.Longitude, m.Latitude}, m.Zoom, m.Bearing, m.Pitch)
	a.camera.MinZoom, a.camera.MaxZoom = m.MinZoom, m.MaxZoom
	a.camera.SetZoom(m.Zoom)
	w, h := a.window.GetSize()
	a.camera.SetSize(w, h)

	a.source = mapview.Source{
		Widget:          a.camera,
		Surface:         a.camera,
		Altitude:        cfg.Projection.Altitude,
		NearZMultiplier: cfg.Projection.NearZMultiplier,
		FarZMultiplier:  cfg.Projection.FarZMultiplier,
	}
	a.factory = layer.NewFactory(a.gl, a.source,
		layer.WithProjection(cfg.Projection.ViewportConfig()),
		layer.WithGeneration(layer.Generation(cfg.Projection.Generation)),
	)

	a.scene = scene.New(a.gl, a.factory, scene.Config{
		Radius:        cfg.Layer.Radius,
		TripsCount:    cfg.Layer.TripsCount,
		PointColor:    cfg.Layer.Color,
		LineColor:     scene.DefaultConfig().LineColor,
		Background:    cfg.Layer.Background,
		GraticuleStep: cfg.Layer.GraticuleStep,
		ShowGraticule: cfg.Debug.ShowGraticule,
	})
	if err := a.scene.SetBounds(aroundCenter(a.camera, cfg.Layer.GraticuleStep)); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to build graticule: %w", err)
	}

	a.queue = loop.NewQueue()
	a.toggle = loop.NewToggle(a.queue, a.renderFrame)
	a.shots = debug.NewScreenshotCapture(cfg.Debug.ScreenshotDir, "mapgl")

	// The camera and its surface are usable from here on.
	a.camera.MarkReady()

	a.log.Info("viewer initialized")
	return a, nil
}

// Run loads the trips, starts the frame loop and processes input until the
// window is closed or ctx is done.
func (a *App) Run(ctx context.Context) error {
	ts, err := a.load(ctx)
	if err != nil {
		return err
	}
	if err := a.scene.SetTrips(ts); err != nil {
		return fmt.Errorf("failed to upload trips: %w", err)
	}
	a.trips = ts
	a.starts = make([]orb.Point, len(ts))
	for i, t := range ts {
		a.starts[i] = t.Start()
	}
	if a.cfg.Map.FitData && len(ts) > 0 {
		a.camera.FitToBounds(trips.Bound(ts))
	}

	a.toggle.Start()
	a.running = true

	lastTime := time.Now()
	fpsTimer := lastTime
	a.log.Info("starting frame loop")

	for a.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		if ctx.Err() != nil {
			break
		}
		if a.input.Update() {
			break
		}
		for _, e := range a.input.Events() {
			a.handleEvent(e)
		}
		a.handleHeldKeys(dt)

		if a.queue.RunFrame() > 0 {
			a.window.SwapBuffers()
		} else {
			time.Sleep(idleDelay)
		}
		if a.renderErr != nil {
			return fmt.Errorf("render error: %w", a.renderErr)
		}

		if time.Since(fpsTimer) >= time.Second {
			a.updateTitle(a.frames)
			a.log.Debug("fps", zap.Int("count", a.frames), zap.Float64("dt_ms", dt*1000))
			a.frames = 0
			fpsTimer = time.Now()
		}
	}

	a.toggle.Stop()
	return nil
}

// load reads the trips once the camera is ready. A missing data file leaves
// the map without trips.
func (a *App) load(ctx context.Context) ([]trips.Trip, error) {
	g, gctx := errgroup.WithContext(ctx)

	var loaded []trips.Trip
	g.Go(func() error {
		ts, err := trips.Load(gctx, a.cfg.Layer.DataPath)
		if err != nil {
			return err
		}
		var rng *rand.Rand
		if rate := a.cfg.Layer.TripSampleRate; rate < 1 {
			rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
		loaded = trips.Occupied(ts, a.cfg.Layer.TripSampleRate, rng)
		return nil
	})
	g.Go(func() error {
		return loop.WaitReady(gctx, a.camera.Ready())
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			a.log.Warn("trips data not found, showing the map only", zap.String("path", a.cfg.Layer.DataPath))
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load trips: %w", err)
	}

	a.log.Info("occupied trips selected",
		zap.Int("trips", len(loaded)),
		zap.Float64("sample_rate", a.cfg.Layer.TripSampleRate))
	return loaded, nil
}

func (a *App) renderFrame(time.Duration) {
	if err := a.scene.Render(nil); err != nil {
		a.fail(err)
		return
	}
	if a.screenshotRequested {
		a.screenshotRequested = false
		a.captureScreenshot()
	}
	a.frames++
}

func (a *App) fail(err error) {
	a.renderErr = err
	a.toggle.Stop()
}

func (a *App) updateTitle(fps int) {
	a.window.SetTitle(fmt.Sprintf("%s | %d fps | z%.1f | %d trips",
		a.cfg.Window.Title, fps, a.camera.Zoom(), a.scene.PointCount()))
}

// Close releases GPU resources and the window.
func (a *App) Close() {
	a.log.Info("closing viewer")

	if a.scene != nil {
		a.scene.Destroy()
	}
	if a.factory != nil {
		a.factory.Close()
	}
	if a.offscreen != nil {
		a.offscreen.Destroy()
	}
	if a.window != nil {
		a.window.Close()
	}
}
