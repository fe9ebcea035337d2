package mercator

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Frustum holds the perspective parameters of the map camera. X and Y stay in
// pixels while Z is measured in screen heights, so Fov is derived from the
// viewport height rather than chosen freely.
type Frustum struct {
	Fov           float64 // vertical, radians
	Aspect        float64
	FocalDistance float64
	Near          float64
	Far           float64
}

// NewFrustum derives the frustum for a camera at altitude (screen heights)
// above the map, tilted by pitch degrees. The far plane is pushed out to the
// farthest visible point of the tilted map plane, times farZMultiplier.
func NewFrustum(width, height, pitch, altitude, nearZMultiplier, farZMultiplier float64) Frustum {
	pitchRad := pitch * math.Pi / 180
	halfFov := math.Atan(0.5 / altitude)
	// Distance from the centre point to the top edge of the view on the map
	// plane, by the law of sines.
	topHalfSurfaceDistance := math.Sin(halfFov) * altitude / math.Sin(math.Pi/2-pitchRad-halfFov)
	farZ := math.Cos(math.Pi/2-pitchRad)*topHalfSurfaceDistance + altitude

	return Frustum{
		Fov:           2 * math.Atan(height/2/altitude),
		Aspect:        width / height,
		FocalDistance: altitude,
		Near:          nearZMultiplier,
		Far:           farZ * farZMultiplier,
	}
}

// Matrix returns the OpenGL-style perspective projection matrix.
func (f Frustum) Matrix() mgl64.Mat4 {
	return mgl64.Perspective(f.Fov, f.Aspect, f.Near, f.Far)
}

// ViewMatrix returns the uncentred camera matrix: the camera sits altitude
// screen heights above the origin, rotated by bearing and tilted by pitch
// (both in degrees).
func ViewMatrix(height, pitch, bearing, altitude float64) mgl64.Mat4 {
	return mgl64.Translate3D(0, 0, -altitude).
		Mul4(mgl64.Scale3D(1, 1, 1/height)).
		Mul4(mgl64.HomogRotate3DX(-pitch * math.Pi / 180)).
		Mul4(mgl64.HomogRotate3DZ(bearing * math.Pi / 180))
}

// CenteredViewMatrix flips Y so the south-growing world plane matches the
// camera's Y-up convention and moves the world point center to the origin.
func CenteredViewMatrix(height, pitch, bearing, altitude float64, center mgl64.Vec2) mgl64.Mat4 {
	return ViewMatrix(height, pitch, bearing, altitude).
		Mul4(mgl64.Scale3D(1, -1, 1)).
		Mul4(mgl64.Translate3D(-center[0], -center[1], 0))
}

// PixelProjectionMatrix maps world coordinates to top-left screen pixels.
func PixelProjectionMatrix(width, height float64, viewProjection mgl64.Mat4) mgl64.Mat4 {
	viewport := mgl64.Scale3D(width/2, -height/2, 1).Mul4(mgl64.Translate3D(1, -1, 0))
	return viewport.Mul4(viewProjection)
}

// TransformVector multiplies v by m and divides by the resulting w.
func TransformVector(m mgl64.Mat4, v mgl64.Vec4) mgl64.Vec4 {
	r := m.Mul4x1(v)
	return r.Mul(1 / r[3])
}
