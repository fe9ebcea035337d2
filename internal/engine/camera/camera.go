// Package camera provides an in-process slippy-map camera driven by mouse and
// keyboard input.
package camera

import (
	gomath "math"

	"github.com/paulmach/orb"

	"github.com/Faultbox/mapgl/internal/loop"
	"github.com/Faultbox/mapgl/internal/mapview"
	"github.com/Faultbox/mapgl/internal/viewport"
	"github.com/Faultbox/mapgl/pkg/mercator"
)

// MaxLatitude is the Web Mercator latitude limit.
const MaxLatitude = mercator.MaxLatitude

// MapCamera is a pan/zoom/rotate/tilt camera over a Web Mercator map.
type MapCamera struct {
	// Camera center
	Longitude, Latitude float64

	ZoomLevel  float64
	BearingDeg float64 // Clockwise from north
	PitchDeg   float64 // 0 looks straight down

	// Constraints
	MinZoom  float64
	MaxZoom  float64
	MaxPitch float64

	// Sensitivity
	RotateSensitivity float64 // Degrees per dragged pixel
	ZoomSensitivity   float64 // Zoom levels per wheel step
	KeyPanPixels      float64 // Screen pixels per keyboard step

	width, height float64
	ready         loop.Ready
}

var _ mapview.Widget = (*MapCamera)(nil)

// NewMapCamera creates a camera at center with default constraints.
func NewMapCamera(center orb.Point, zoom, bearing, pitch float64) *MapCamera {
	c := &MapCamera{
		MinZoom:           0,
		MaxZoom:           20,
		MaxPitch:          60,
		RotateSensitivity: 0.25,
		ZoomSensitivity:   0.5,
		KeyPanPixels:      40,
		width:             1,
		height:            1,
	}
	c.SetCenter(center)
	c.SetZoom(zoom)
	c.SetBearing(bearing)
	c.SetPitch(pitch)
	return c
}

// Center returns [longitude, latitude].
func (c *MapCamera) Center() orb.Point { return orb.Point{c.Longitude, c.Latitude} }

// Zoom returns the zoom level.
func (c *MapCamera) Zoom() float64 { return c.ZoomLevel }

// Bearing returns the rotation in degrees.
func (c *MapCamera) Bearing() float64 { return c.BearingDeg }

// Pitch returns the tilt in degrees.
func (c *MapCamera) Pitch() float64 { return c.PitchDeg }

// Ready is closed by MarkReady.
func (c *MapCamera) Ready() <-chan struct{} { return c.ready.Done() }

// MarkReady signals that the map finished loading.
func (c *MapCamera) MarkReady() { c.ready.Fire() }

// Size implements mapview.Surface with the last size passed to SetSize.
func (c *MapCamera) Size() (width, height int) {
	return int(c.width), int(c.height)
}

// SetSize records the viewport size used for pan math.
func (c *MapCamera) SetSize(width, height int) {
	c.width = gomath.Max(1, float64(width))
	c.height = gomath.Max(1, float64(height))
}

// SetCenter moves the camera, wrapping longitude and clamping latitude.
func (c *MapCamera) SetCenter(p orb.Point) {
	c.Longitude = wrapLongitude(p.Lon())
	c.Latitude = clamp(p.Lat(), -MaxLatitude, MaxLatitude)
}

// SetZoom sets the zoom level within the camera's limits.
func (c *MapCamera) SetZoom(zoom float64) {
	c.ZoomLevel = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// SetBearing sets the rotation, normalized to (-180, 180].
func (c *MapCamera) SetBearing(deg float64) {
	b := gomath.Mod(deg, 360)
	if b > 180 {
		b -= 360
	} else if b <= -180 {
		b += 360
	}
	c.BearingDeg = b
}

// SetPitch sets the tilt within [0, MaxPitch].
func (c *MapCamera) SetPitch(deg float64) {
	c.PitchDeg = clamp(deg, 0, c.MaxPitch)
}

// State returns the camera as a viewport camera state.
func (c *MapCamera) State() viewport.CameraState {
	return mapview.Source{Widget: c, Surface: c}.CameraState()
}

// HandlePan drags the map by a mouse delta so the ground point under the
// cursor follows it.
func (c *MapCamera) HandlePan(deltaX, deltaY float64) {
	if deltaX == 0 && deltaY == 0 {
		return
	}
	// The new center is the ground point that sits opposite the drag.
	p, err := viewport.Unproject([]float64{c.width/2 - deltaX, c.height/2 - deltaY}, c.State())
	if err != nil || gomath.IsNaN(p[0]) || gomath.IsNaN(p[1]) {
		return
	}
	c.SetCenter(orb.Point{p[0], p[1]})
}

// HandleRotate turns and tilts the camera from a right-drag delta.
func (c *MapCamera) HandleRotate(deltaX, deltaY float64) {
	c.SetBearing(c.BearingDeg - deltaX*c.RotateSensitivity)
	c.SetPitch(c.PitchDeg - deltaY*c.RotateSensitivity)
}

// HandleZoom zooms by mouse wheel steps; positive zooms in.
func (c *MapCamera) HandleZoom(delta float64) {
	c.SetZoom(c.ZoomLevel + delta*c.ZoomSensitivity)
}

// HandleMovement pans by keyboard steps relative to the screen.
func (c *MapCamera) HandleMovement(forward, right float64) {
	c.HandlePan(-right*c.KeyPanPixels, forward*c.KeyPanPixels)
}

// FitToBounds centers the camera on b and picks the largest zoom that shows
// all of it at the current size. Bearing and pitch are reset.
func (c *MapCamera) FitToBounds(b orb.Bound) {
	c.SetBearing(0)
	c.SetPitch(0)

	// World extent of the bound at zoom 0. The center is the world-space
	// midpoint, which lies south of the latitude midpoint.
	lo := mercator.LngLatToWorld(orb.Point{b.Min.Lon(), b.Max.Lat()}, 1)
	hi := mercator.LngLatToWorld(orb.Point{b.Max.Lon(), b.Min.Lat()}, 1)
	c.SetCenter(mercator.WorldToLngLat(orb.Point{(lo[0] + hi[0]) / 2, (lo[1] + hi[1]) / 2}, 1))

	dx, dy := hi[0]-lo[0], hi[1]-lo[1]
	if dx <= 0 && dy <= 0 {
		return
	}

	scale := gomath.Inf(1)
	if dx > 0 {
		scale = c.width / dx
	}
	if dy > 0 {
		scale = gomath.Min(scale, c.height/dy)
	}
	c.SetZoom(gomath.Log2(scale))
}

func wrapLongitude(lng float64) float64 {
	l := gomath.Mod(lng+180, 360)
	if l < 0 {
		l += 360
	}
	return l - 180
}

func clamp(v, lo, hi float64) float64 {
	return gomath.Max(lo, gomath.Min(hi, v))
}
