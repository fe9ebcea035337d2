// Package mapview is the contract between the map widget that owns the
// camera and the layers drawn on top of it.
package mapview

import (
	"github.com/paulmach/orb"

	"github.com/Faultbox/mapgl/internal/viewport"
)

// Widget is an interactive slippy map. It owns the camera; overlays only
// read it.
type Widget interface {
	// Center is the camera center as [longitude, latitude].
	Center() orb.Point
	Zoom() float64
	// Bearing is the map rotation in degrees, clockwise from north.
	Bearing() float64
	// Pitch is the tilt in degrees from looking straight down.
	Pitch() float64
	// Ready is closed once the widget's initial style and assets loaded.
	Ready() <-chan struct{}
}

// Surface is the drawable the overlays render into.
type Surface interface {
	Size() (width, height int)
}

// Source snapshots the widget camera and surface size into a camera state
// each time it is asked. It implements layer.CameraSource.
type Source struct {
	Widget  Widget
	Surface Surface

	// Optional projection tuning; zero values select the defaults.
	Altitude        float64
	NearZMultiplier float64
	FarZMultiplier  float64
}

// CameraState reads the live camera.
func (s Source) CameraState() viewport.CameraState {
	w, h := s.Surface.Size()
	center := s.Widget.Center()
	return viewport.CameraState{
		Width:           float64(w),
		Height:          float64(h),
		Longitude:       center.Lon(),
		Latitude:        center.Lat(),
		Bearing:         s.Widget.Bearing(),
		Pitch:           s.Widget.Pitch(),
		Zoom:            s.Widget.Zoom(),
		Altitude:        s.Altitude,
		NearZMultiplier: s.NearZMultiplier,
		FarZMultiplier:  s.FarZMultiplier,
	}
}
