package app

import (
	"github.com/paulmach/orb"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/mapgl/internal/config"
	"github.com/Faultbox/mapgl/internal/engine/camera"
	"github.com/Faultbox/mapgl/internal/engine/framebuffer"
	"github.com/Faultbox/mapgl/internal/engine/input"
	"github.com/Faultbox/mapgl/internal/engine/picking"
	"github.com/Faultbox/mapgl/internal/layer"
	"github.com/Faultbox/mapgl/internal/viewport"
)

const (
	// keyPanSteps is how many keyboard pan steps a held key makes per second.
	keyPanSteps = 10
	// radiusFactor scales the point radius per +/- press.
	radiusFactor = 1.25
	// gridCells is how many graticule steps the startup grid spans around
	// the center before data arrives.
	gridCells = 20
	// clickSlop is how far the mouse may move between press and release
	// for the release to count as a click.
	clickSlop = 3
	// pickRadius is the pick tolerance in pixels beyond the point radius.
	pickRadius = 4
)

func (a *App) handleEvent(e input.Event) {
	switch e.Type {
	case input.EventQuit:
		a.running = false

	case input.EventWindowResize:
		dw, dh := a.window.DrawableSize()
		a.gl.Viewport(dw, dh)
		a.camera.SetSize(e.Width, e.Height)
		a.log.Debug("resized", zap.Int("width", e.Width), zap.Int("height", e.Height),
			zap.Int32("drawable_width", dw), zap.Int32("drawable_height", dh))

	case input.EventKeyDown:
		if !e.Repeat {
			a.handleKey(e)
		}

	case input.EventMouseDown:
		a.dragged = 0

	case input.EventMouseUp:
		if e.Button == input.ButtonLeft && a.dragged <= clickSlop {
			a.pick(float64(e.MouseX), float64(e.MouseY))
		}

	case input.EventMouseMove:
		a.dragged += abs(e.DeltaX) + abs(e.DeltaY)
		dx, dy := float64(e.DeltaX), float64(e.DeltaY)
		switch {
		case a.input.IsButtonDown(input.ButtonRight),
			a.input.IsButtonDown(input.ButtonLeft) && e.Shift:
			a.camera.HandleRotate(dx, dy)
		case a.input.IsButtonDown(input.ButtonLeft):
			a.camera.HandlePan(dx, dy)
		}

	case input.EventMouseWheel:
		a.camera.HandleZoom(e.WheelY)
	}
}

func (a *App) handleKey(e input.Event) {
	switch e.Key {
	case sdl.SCANCODE_ESCAPE:
		a.running = false
	case sdl.SCANCODE_SPACE:
		running := a.toggle.Toggle()
		a.log.Info("frame loop toggled", zap.Bool("running", running))
	case sdl.SCANCODE_F12:
		a.screenshotRequested = true
		if !a.toggle.Running() {
			// A paused loop renders nothing; draw one frame for the capture.
			a.queue.RequestFrame(a.renderFrame)
		}
	case sdl.SCANCODE_G:
		a.log.Info("graticule toggled", zap.Bool("visible", a.scene.ToggleGraticule()))
	case sdl.SCANCODE_F:
		if b := a.scene.Bounds(); !b.IsZero() {
			a.camera.FitToBounds(b)
		}
	case sdl.SCANCODE_R:
		m := a.cfg.Map
		a.camera.SetCenter(orb.Point{m.Longitude, m.Latitude})
		a.camera.SetZoom(m.Zoom)
		a.camera.SetBearing(m.Bearing)
		a.camera.SetPitch(m.Pitch)
	case sdl.SCANCODE_F5:
		a.saveSettings()
	case sdl.SCANCODE_EQUALS, sdl.SCANCODE_KP_PLUS:
		a.scene.SetRadius(a.scene.Config().Radius * radiusFactor)
	case sdl.SCANCODE_MINUS, sdl.SCANCODE_KP_MINUS:
		a.scene.SetRadius(a.scene.Config().Radius / radiusFactor)
	}
}

// saveSettings stores the current view and overlay tuning as the user config
// so the next start opens where this one left off.
func (a *App) saveSettings() {
	c := a.camera.Center()
	a.cfg.Map.Longitude, a.cfg.Map.Latitude = c.Lon(), c.Lat()
	a.cfg.Map.Zoom = a.camera.Zoom()
	a.cfg.Map.Bearing = a.camera.Bearing()
	a.cfg.Map.Pitch = a.camera.Pitch()

	sc := a.scene.Config()
	a.cfg.Layer.Radius = sc.Radius
	a.cfg.Layer.TripsCount = sc.TripsCount
	a.cfg.Debug.ShowGraticule = sc.ShowGraticule

	if err := a.cfg.Save(); err != nil {
		a.log.Error("failed to save settings", zap.Error(err))
		return
	}
	a.log.Info("settings saved", zap.String("dir", config.ConfigDir()))
}

// handleHeldKeys pans with WASD and the arrow keys while they are held.
func (a *App) handleHeldKeys(dt float64) {
	var forward, right float64
	if a.input.IsKeyDown(sdl.SCANCODE_W) || a.input.IsKeyDown(sdl.SCANCODE_UP) {
		forward++
	}
	if a.input.IsKeyDown(sdl.SCANCODE_S) || a.input.IsKeyDown(sdl.SCANCODE_DOWN) {
		forward--
	}
	if a.input.IsKeyDown(sdl.SCANCODE_D) || a.input.IsKeyDown(sdl.SCANCODE_RIGHT) {
		right++
	}
	if a.input.IsKeyDown(sdl.SCANCODE_A) || a.input.IsKeyDown(sdl.SCANCODE_LEFT) {
		right--
	}
	if forward != 0 || right != 0 {
		steps := dt * keyPanSteps
		a.camera.HandleMovement(forward*steps, right*steps)
	}
}

// pick logs the trip whose start is drawn under the cursor.
func (a *App) pick(x, y float64) {
	if len(a.starts) == 0 {
		return
	}
	vp := viewport.New(a.source.CameraState())
	hit, ok := picking.Nearest(vp, a.starts[:a.scene.PointCount()], x, y, a.pointRadiusPixels()+pickRadius)
	if !ok {
		return
	}
	t := a.trips[hit.Index]
	a.log.Info("trip picked",
		zap.Int("cab", t.CabID),
		zap.Float64("minutes_of_day", t.MinutesOfDay),
		zap.Bool("weekday", t.IsWeekday),
		zap.Int("points", len(t.Path)),
		zap.Float64("lng", t.Start().Lon()),
		zap.Float64("lat", t.Start().Lat()),
		zap.Float64("distance_px", hit.Distance),
	)
}

// pointRadiusPixels converts the point size in meters to screen pixels at
// the camera center, matching project_size in the shader.
func (a *App) pointRadiusPixels() float64 {
	u := viewport.ComputeProjectionUniforms(a.source.CameraState(), a.cfg.Projection.ViewportConfig())
	return a.scene.Config().Radius * u.PixelsPerMeter[2] / 2
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// captureScreenshot saves the frame just rendered. Generation 2 re-renders
// it into an offscreen target; generation 1 reads the back buffer.
func (a *App) captureScreenshot() {
	dw, dh := a.window.DrawableSize()

	var pixels []byte
	width, height := dw, dh
	if a.factory.Generation() == layer.Generation2 {
		if a.offscreen == nil {
			fb, err := framebuffer.New(dw, dh)
			if err != nil {
				a.log.Error("screenshot failed", zap.Error(err))
				return
			}
			a.offscreen = fb
		}
		a.offscreen.Resize(dw, dh)
		if err := a.scene.Render(a.offscreen); err != nil {
			a.log.Error("screenshot failed", zap.Error(err))
			return
		}
		pixels = a.offscreen.ReadPixels()
		width, height = a.offscreen.Size()
	} else {
		pixels, width, height = a.gl.ReadPixels()
	}

	path, err := a.shots.CaptureFromPixels(pixels, int(width), int(height))
	if err != nil {
		a.log.Error("screenshot failed", zap.Error(err))
		return
	}
	a.log.Info("screenshot saved", zap.String("path", path))
}

// aroundCenter is the area the startup graticule covers.
func aroundCenter(c *camera.MapCamera, step float64) orb.Bound {
	half := step * gridCells / 2
	p := c.Center()
	return orb.Bound{
		Min: orb.Point{p.Lon() - half, p.Lat() - half},
		Max: orb.Point{p.Lon() + half, p.Lat() + half},
	}
}
