package viewport

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/paulmach/orb"

	"github.com/Faultbox/mapgl/pkg/mercator"
)

// Viewport caches the pixel projection of one camera state so many points can
// be projected or unprojected against it.
type Viewport struct {
	state             CameraState
	scales            mercator.DistanceScales
	pixelProjection   mgl64.Mat4
	pixelUnprojection mgl64.Mat4
	invertible        bool
}

// New builds a viewport for state. A degenerate camera still yields a
// Viewport; Project and Unproject on it report ErrSingularMatrix.
func New(state CameraState) *Viewport {
	s := state.normalized()
	m := newMatrices(s)
	ppm := mercator.PixelProjectionMatrix(s.Width, s.Height, m.viewProjection)

	v := &Viewport{
		state:           s,
		scales:          mercator.Scales(s.Center(), s.Scale()),
		pixelProjection: ppm,
	}

	det := ppm.Det()
	if s.Width > 0 && s.Height > 0 && det != 0 && !math.IsNaN(det) && !math.IsInf(det, 0) {
		v.pixelUnprojection = ppm.Inv()
		v.invertible = true
	}
	return v
}

// State returns the normalized camera state this viewport was built from.
func (v *Viewport) State() CameraState {
	return v.state
}

// Option tunes Project and Unproject.
type Option func(*options)

type options struct {
	topLeft    bool
	targetZ    float64
	hasTargetZ bool
}

func buildOptions(opts []Option) options {
	o := options{topLeft: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// TopLeft selects the screen origin. The default is true; with false the Y
// axis points up from the bottom edge (y' = height - y).
func TopLeft(topLeft bool) Option {
	return func(o *options) {
		o.topLeft = topLeft
	}
}

// TargetZ sets the altitude in meters at which Unproject intersects the view
// ray when the pixel carries no depth.
func TargetZ(meters float64) Option {
	return func(o *options) {
		o.targetZ = meters
		o.hasTargetZ = true
	}
}

// Project maps [lng, lat] or [lng, lat, meters] to [x, y] or [x, y, depth]
// screen pixels.
func (v *Viewport) Project(lngLatZ []float64, opts ...Option) ([]float64, error) {
	if err := checkPosition(lngLatZ, len(lngLatZ)); err != nil {
		return nil, err
	}
	if !v.invertible {
		return nil, ErrSingularMatrix
	}
	o := buildOptions(opts)

	var z float64
	if len(lngLatZ) == 3 {
		z = lngLatZ[2]
	}
	world := projectPosition(lngLatZ[0], lngLatZ[1], z, v.state)
	coord := mercator.TransformVector(v.pixelProjection, world.Vec4(1))
	if !isFinite(coord[0]) || !isFinite(coord[1]) || !isFinite(coord[2]) {
		return nil, ErrSingularMatrix
	}

	y := coord[1]
	if !o.topLeft {
		y = v.state.Height - y
	}
	if len(lngLatZ) == 2 {
		return []float64{coord[0], y}, nil
	}
	return []float64{coord[0], y, coord[2]}, nil
}

// Unproject maps [x, y] or [x, y, depth] screen pixels back to [lng, lat] or
// [lng, lat, meters]. Without a finite depth the view ray is intersected with
// the TargetZ altitude (ground level by default); a Z component is returned
// only when the input depth or TargetZ was given.
func (v *Viewport) Unproject(xyz []float64, opts ...Option) ([]float64, error) {
	if err := checkPosition(xyz, 2); err != nil {
		return nil, err
	}
	if !v.invertible {
		return nil, ErrSingularMatrix
	}
	o := buildOptions(opts)

	x, y := xyz[0], xyz[1]
	if !o.topLeft {
		y = v.state.Height - y
	}
	hasDepth := len(xyz) == 3 && isFinite(xyz[2])

	var coord mgl64.Vec4
	if hasDepth {
		coord = mercator.TransformVector(v.pixelUnprojection, mgl64.Vec4{x, y, xyz[2], 1})
	} else {
		var targetZWorld float64
		if o.hasTargetZ {
			targetZWorld = o.targetZ * v.scales.PixelsPerMeter[2]
		}
		// Unknown depth: intersect the ray through two depths with the
		// target altitude.
		c0 := mercator.TransformVector(v.pixelUnprojection, mgl64.Vec4{x, y, 0, 1})
		c1 := mercator.TransformVector(v.pixelUnprojection, mgl64.Vec4{x, y, 1, 1})
		var t float64
		if c0[2] != c1[2] {
			t = (targetZWorld - c0[2]) / (c1[2] - c0[2])
		}
		coord = c0.Add(c1.Sub(c0).Mul(t))
	}

	lngLat := mercator.WorldToLngLat(orb.Point{coord[0], coord[1]}, v.state.Scale())
	switch {
	case hasDepth:
		return []float64{lngLat[0], lngLat[1], coord[2] * v.scales.MetersPerPixel[2]}, nil
	case o.hasTargetZ:
		return []float64{lngLat[0], lngLat[1], o.targetZ}, nil
	default:
		return []float64{lngLat[0], lngLat[1]}, nil
	}
}

// Bounds returns the geographic bounding box of the four screen corners at
// ground level. With a steep pitch the top corners may lie beyond the
// horizon and the result is not meaningful.
func (v *Viewport) Bounds() (orb.Bound, error) {
	w, h := v.state.Width, v.state.Height
	corners := [][]float64{{0, 0}, {w, 0}, {0, h}, {w, h}}

	points := make(orb.MultiPoint, 0, len(corners))
	for _, c := range corners {
		p, err := v.Unproject(c)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("unprojecting corner %v: %w", c, err)
		}
		points = append(points, orb.Point{p[0], p[1]})
	}
	return points.Bound(), nil
}

// Project is a one-shot New(state).Project.
func Project(lngLatZ []float64, state CameraState, opts ...Option) ([]float64, error) {
	return New(state).Project(lngLatZ, opts...)
}

// Unproject is a one-shot New(state).Unproject.
func Unproject(xyz []float64, state CameraState, opts ...Option) ([]float64, error) {
	return New(state).Unproject(xyz, opts...)
}

// checkPosition validates length and that the first finiteN components are finite.
func checkPosition(p []float64, finiteN int) error {
	if len(p) != 2 && len(p) != 3 {
		return fmt.Errorf("%w: got %d components", ErrInvalidPosition, len(p))
	}
	for i := 0; i < finiteN && i < len(p); i++ {
		if !isFinite(p[i]) {
			return fmt.Errorf("%w: component %d is %v", ErrInvalidPosition, i, p[i])
		}
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
