package picking

import (
	"math"
	"testing"

	"github.com/paulmach/orb"

	"github.com/Faultbox/mapgl/internal/viewport"
)

func sfViewport(pitch float64) *viewport.Viewport {
	return viewport.New(viewport.CameraState{
		Width: 800, Height: 600,
		Longitude: -122.423175, Latitude: 37.778316,
		Zoom: 14, Pitch: pitch,
	})
}

func TestScreenToGroundCenter(t *testing.T) {
	p, err := ScreenToGround(sfViewport(0), 400, 300)
	if err != nil {
		t.Fatalf("ScreenToGround: %v", err)
	}
	if math.Abs(p.Lon()+122.423175) > 1e-7 || math.Abs(p.Lat()-37.778316) > 1e-7 {
		t.Errorf("center = %v, want the camera center", p)
	}
}

func TestNearest(t *testing.T) {
	for _, pitch := range []float64{0, 40} {
		vp := sfViewport(pitch)
		center := orb.Point{-122.423175, 37.778316}
		points := []orb.Point{
			{-122.5, 37.9}, // off screen
			center,
			{-122.4230, 37.7785}, // a few pixels away
		}

		hit, ok := Nearest(vp, points, 400, 300, 10)
		if !ok {
			t.Fatalf("pitch %v: nothing picked at the center", pitch)
		}
		if hit.Index != 1 {
			t.Errorf("pitch %v: picked %d, want 1", pitch, hit.Index)
		}
		if hit.Distance > 1e-6 {
			t.Errorf("pitch %v: distance = %v, want 0", pitch, hit.Distance)
		}

		if _, ok := Nearest(vp, points, 10, 10, 5); ok {
			t.Errorf("pitch %v: picked a point in an empty corner", pitch)
		}
	}
}

func TestNearestPrefersCloser(t *testing.T) {
	vp := sfViewport(0)
	// Resolve two points at known pixel offsets from the cursor.
	a, _ := ScreenToGround(vp, 406, 300)
	b, _ := ScreenToGround(vp, 403, 300)

	hit, ok := Nearest(vp, []orb.Point{a, b}, 400, 300, 10)
	if !ok || hit.Index != 1 {
		t.Fatalf("Nearest = %+v %v, want index 1", hit, ok)
	}
	if math.Abs(hit.Distance-3) > 1e-6 {
		t.Errorf("distance = %v, want 3", hit.Distance)
	}
}

func TestNearestEmpty(t *testing.T) {
	if _, ok := Nearest(sfViewport(0), nil, 400, 300, 10); ok {
		t.Error("picked from an empty set")
	}
}

func TestNearestDegenerateCamera(t *testing.T) {
	vp := viewport.New(viewport.CameraState{
		Width: 0, Height: 600,
		Longitude: -122.423175, Latitude: 37.778316,
		Zoom: 14,
	})
	if hit, ok := Nearest(vp, []orb.Point{{-122.423175, 37.778316}}, 0, 300, 1e9); ok {
		t.Errorf("picked %+v on a zero-width camera", hit)
	}
}
