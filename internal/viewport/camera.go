// Package viewport turns a slippy-map camera into the matrices and scale
// factors a GPU overlay needs to stay pixel-aligned with the map, and maps
// points between geographic, world and screen space.
package viewport

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/paulmach/orb"

	"github.com/Faultbox/mapgl/pkg/mercator"
)

// Default frustum multipliers applied when a CameraState leaves them zero.
const (
	DefaultNearZMultiplier = 0.1
	DefaultFarZMultiplier  = 10
)

var (
	// ErrSingularMatrix is returned when the pixel projection of a camera
	// cannot be inverted, e.g. for a zero-sized viewport.
	ErrSingularMatrix = errors.New("viewport: pixel projection matrix is not invertible")

	// ErrInvalidPosition is returned for positions that are not 2 or 3 long
	// or contain non-finite coordinates.
	ErrInvalidPosition = errors.New("viewport: position must have 2 or 3 finite components")
)

// CameraState is a snapshot of the map camera. Angles are in degrees,
// Altitude is in screen heights.
type CameraState struct {
	Width           float64
	Height          float64
	Longitude       float64
	Latitude        float64
	Bearing         float64
	Pitch           float64
	Zoom            float64
	Altitude        float64
	NearZMultiplier float64
	FarZMultiplier  float64
}

// Scale returns 2^Zoom.
func (s CameraState) Scale() float64 {
	return mercator.ZoomToScale(s.Zoom)
}

// Center returns the camera's geographic center.
func (s CameraState) Center() orb.Point {
	return orb.Point{s.Longitude, s.Latitude}
}

// normalized fills unset optional fields and clamps the altitude.
func (s CameraState) normalized() CameraState {
	if s.Altitude == 0 {
		s.Altitude = mercator.DefaultAltitude
	}
	s.Altitude = math.Max(mercator.MinAltitude, s.Altitude)
	if s.NearZMultiplier == 0 {
		s.NearZMultiplier = DefaultNearZMultiplier
	}
	if s.FarZMultiplier == 0 {
		s.FarZMultiplier = DefaultFarZMultiplier
	}
	return s
}

// matrices holds the per-camera transforms shared by uniforms and
// project/unproject.
type matrices struct {
	projection     mgl64.Mat4
	view           mgl64.Mat4
	viewProjection mgl64.Mat4
}

func newMatrices(s CameraState) matrices {
	frustum := mercator.NewFrustum(s.Width, s.Height, s.Pitch, s.Altitude, s.NearZMultiplier, s.FarZMultiplier)
	center := mercator.LngLatToWorld(s.Center(), s.Scale())
	view := mercator.CenteredViewMatrix(s.Height, s.Pitch, s.Bearing, s.Altitude, mgl64.Vec2{center[0], center[1]})
	projection := frustum.Matrix()
	return matrices{
		projection:     projection,
		view:           view,
		viewProjection: projection.Mul4(view),
	}
}

// projectPosition converts lng/lat/meters into world pixels. Z is scaled with
// the pixels-per-meter at the camera location.
func projectPosition(lng, lat, z float64, s CameraState) mgl64.Vec3 {
	scale := s.Scale()
	w := mercator.LngLatToWorld(orb.Point{lng, lat}, scale)
	scales := mercator.Scales(s.Center(), scale)
	return mgl64.Vec3{w[0], w[1], z * scales.PixelsPerMeter[2]}
}
