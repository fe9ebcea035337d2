package viewport

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/paulmach/orb"

	"github.com/Faultbox/mapgl/pkg/math"
	"github.com/Faultbox/mapgl/pkg/mercator"
)

// CoordinateSystem selects how the shader interprets vertex positions.
// The numeric values are shared with the GLSL library.
type CoordinateSystem int

const (
	// LngLat projects absolute longitude/latitude in the shader.
	LngLat CoordinateSystem = 1
	// LngLatAutoOffset projects degrees relative to CoordinateOrigin, which
	// sits at the camera center, keeping single-precision error small.
	LngLatAutoOffset CoordinateSystem = 4
)

func (c CoordinateSystem) String() string {
	switch c {
	case LngLat:
		return "lnglat"
	case LngLatAutoOffset:
		return "lnglat-auto-offset"
	default:
		return fmt.Sprintf("CoordinateSystem(%d)", int(c))
	}
}

// AutoOffsetZoomThreshold is the zoom at which float32 world coordinates stop
// being precise enough and the auto-offset system takes over.
const AutoOffsetZoomThreshold = 12

// Config is the fixed, per-factory part of the uniform computation.
type Config struct {
	// CoordinateOrigin is reported in LngLat mode. The auto-offset mode
	// always anchors at the camera center instead.
	CoordinateOrigin [3]float64
	WrapLongitude    bool
}

// DefaultConfig returns a zero origin without longitude wrapping.
func DefaultConfig() Config {
	return Config{}
}

// Uniforms is the shader-ready description of one camera frame.
type Uniforms struct {
	ModelMatrix          mgl64.Mat4
	ViewProjectionMatrix mgl64.Mat4
	Center               mgl64.Vec4
	CoordinateSystem     CoordinateSystem
	CoordinateOrigin     mgl64.Vec3
	PixelsPerMeter       mgl64.Vec3
	PixelsPerDegree      mgl64.Vec3
	PixelsPerDegree2     mgl64.Vec3
	Scale                float64
	Antimeridian         float64
	WrapLongitude        bool
}

// vectorToPoint drops the w component of whatever it multiplies, so offsets
// from the origin are transformed as pure vectors.
var vectorToPoint = mgl64.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 0,
}

// ComputeProjectionUniforms derives the uniform bundle for one frame. It is a
// pure function of its inputs.
func ComputeProjectionUniforms(state CameraState, cfg Config) Uniforms {
	s := state.normalized()
	scale := s.Scale()
	m := newMatrices(s)

	u := Uniforms{
		ModelMatrix:          mgl64.Ident4(),
		ViewProjectionMatrix: m.viewProjection,
		Scale:                scale,
		Antimeridian:         s.Longitude - 180,
		WrapLongitude:        cfg.WrapLongitude,
	}

	if s.Zoom < AutoOffsetZoomThreshold {
		u.CoordinateSystem = LngLat
		u.CoordinateOrigin = mgl64.Vec3(cfg.CoordinateOrigin)
	} else {
		u.CoordinateSystem = LngLatAutoOffset
		u.CoordinateOrigin = mgl64.Vec3{math.Fround(s.Longitude), math.Fround(s.Latitude), 0}

		origin := projectPosition(u.CoordinateOrigin[0], u.CoordinateOrigin[1], 0, s)
		u.Center = m.viewProjection.Mul4x1(origin.Vec4(1))
		u.ViewProjectionMatrix = m.viewProjection.Mul4(vectorToPoint)
	}

	// Meters scale at the true camera location; degree scales (and their
	// latitude derivative) at the origin the shader offsets from.
	u.PixelsPerMeter = mercator.Scales(s.Center(), scale).PixelsPerMeter
	atOrigin := mercator.Scales(orb.Point{u.CoordinateOrigin[0], u.CoordinateOrigin[1]}, scale)
	u.PixelsPerDegree = atOrigin.PixelsPerDegree
	u.PixelsPerDegree2 = atOrigin.PixelsPerDegree2

	return u
}
