package mercator

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/paulmach/orb"
)

func near(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestLngLatToWorld(t *testing.T) {
	tests := []struct {
		name  string
		p     orb.Point
		scale float64
		want  orb.Point
	}{
		{"null island", orb.Point{0, 0}, 1, orb.Point{256, 256}},
		{"null island zoom 1", orb.Point{0, 0}, 2, orb.Point{512, 512}},
		{"west edge", orb.Point{-180, 0}, 1, orb.Point{0, 256}},
		{"east edge", orb.Point{180, 0}, 1, orb.Point{512, 256}},
		{"mercator north limit", orb.Point{0, 85.0511287798066}, 1, orb.Point{256, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LngLatToWorld(tt.p, tt.scale)
			if !near(got[0], tt.want[0], 1e-6) || !near(got[1], tt.want[1], 1e-6) {
				t.Errorf("LngLatToWorld(%v, %v) = %v, want %v", tt.p, tt.scale, got, tt.want)
			}
		})
	}
}

func TestWorldToLngLatRoundTrip(t *testing.T) {
	points := []orb.Point{
		{-122.423175, 37.778316},
		{139.6917, 35.6895},
		{-0.1276, 51.5072},
		{151.2093, -33.8688},
	}
	for _, p := range points {
		for _, zoom := range []float64{0, 5.5, 12, 18} {
			scale := ZoomToScale(zoom)
			got := WorldToLngLat(LngLatToWorld(p, scale), scale)
			if !near(got[0], p[0], 1e-9) || !near(got[1], p[1], 1e-9) {
				t.Errorf("round trip at zoom %v: got %v, want %v", zoom, got, p)
			}
		}
	}
}

func TestScalesAtEquator(t *testing.T) {
	s := Scales(orb.Point{0, 0}, 1)

	if !near(s.PixelsPerDegree[0], TileSize/360.0, 1e-12) {
		t.Errorf("pixels per degree X = %v, want %v", s.PixelsPerDegree[0], TileSize/360.0)
	}
	// At the equator degrees are square.
	if !near(s.PixelsPerDegree[1], -s.PixelsPerDegree[0], 1e-12) {
		t.Errorf("pixels per degree Y = %v, want %v", s.PixelsPerDegree[1], -s.PixelsPerDegree[0])
	}
	if !near(s.PixelsPerMeter[0], TileSize/EarthCircumference, 1e-15) {
		t.Errorf("pixels per meter = %v", s.PixelsPerMeter[0])
	}
	// No latitude derivative at the equator.
	if s.PixelsPerDegree2[1] != 0 || s.PixelsPerDegree2[2] != 0 {
		t.Errorf("derivatives at equator should vanish, got %v", s.PixelsPerDegree2)
	}
	for i := 0; i < 3; i++ {
		if !near(s.PixelsPerMeter[i]*s.MetersPerPixel[i], 1, 1e-12) {
			t.Errorf("meters per pixel is not the reciprocal on axis %d", i)
		}
	}
}

func TestScalesGrowWithLatitude(t *testing.T) {
	low := Scales(orb.Point{0, 10}, 1)
	high := Scales(orb.Point{0, 60}, 1)
	if high.PixelsPerMeter[0] <= low.PixelsPerMeter[0] {
		t.Error("pixels per meter should grow toward the poles")
	}
	// 1/cos(60°) = 2
	eq := Scales(orb.Point{0, 0}, 1)
	if !near(high.PixelsPerMeter[0], 2*eq.PixelsPerMeter[0], 1e-12) {
		t.Errorf("pixels per meter at 60° = %v, want twice the equator", high.PixelsPerMeter[0])
	}
}

func TestNewFrustumFlat(t *testing.T) {
	f := NewFrustum(800, 600, 0, 1.5, 0.1, 10)

	if !near(f.Aspect, 800.0/600.0, 1e-12) {
		t.Errorf("aspect = %v", f.Aspect)
	}
	if f.Near != 0.1 {
		t.Errorf("near = %v, want 0.1", f.Near)
	}
	// Without pitch the farthest visible point is straight below the camera.
	if !near(f.Far, 15, 1e-9) {
		t.Errorf("far = %v, want 15", f.Far)
	}
	if !near(math.Tan(f.Fov/2), 300/1.5, 1e-9) {
		t.Errorf("fov = %v does not span the viewport height", f.Fov)
	}
}

func TestNewFrustumPitchPushesFarPlane(t *testing.T) {
	flat := NewFrustum(800, 600, 0, 1.5, 0.1, 1)
	tilted := NewFrustum(800, 600, 45, 1.5, 0.1, 1)
	if tilted.Far <= flat.Far {
		t.Errorf("pitched far plane %v should exceed flat %v", tilted.Far, flat.Far)
	}
}

func TestViewMatrixFlat(t *testing.T) {
	vm := ViewMatrix(600, 0, 0, 1.5)
	got := vm.Mul4x1(mgl64.Vec4{10, 20, 0, 1})
	want := mgl64.Vec4{10, 20, -1.5, 1}
	if !got.ApproxEqualThreshold(want, 1e-12) {
		t.Errorf("ViewMatrix flat = %v, want %v", got, want)
	}
}

func TestCenteredViewMatrixMovesCenterToOrigin(t *testing.T) {
	center := mgl64.Vec2{1000, 2000}
	vm := CenteredViewMatrix(600, 30, 45, 1.5, center)
	got := vm.Mul4x1(mgl64.Vec4{center[0], center[1], 0, 1})
	want := mgl64.Vec4{0, 0, -1.5, 1}
	if !got.ApproxEqualThreshold(want, 1e-9) {
		t.Errorf("center should land under the camera, got %v", got)
	}
}

func TestPixelProjectionMatrixViewportCorners(t *testing.T) {
	pm := PixelProjectionMatrix(800, 600, mgl64.Ident4())

	centre := TransformVector(pm, mgl64.Vec4{0, 0, 0, 1})
	if !near(centre[0], 400, 1e-12) || !near(centre[1], 300, 1e-12) {
		t.Errorf("NDC origin maps to %v, want (400, 300)", centre)
	}
	topLeft := TransformVector(pm, mgl64.Vec4{-1, 1, 0, 1})
	if !near(topLeft[0], 0, 1e-12) || !near(topLeft[1], 0, 1e-12) {
		t.Errorf("NDC (-1, 1) maps to %v, want (0, 0)", topLeft)
	}
}
