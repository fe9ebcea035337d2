// Package picking finds map features under the cursor.
package picking

import (
	gomath "math"

	"github.com/paulmach/orb"

	"github.com/Faultbox/mapgl/internal/viewport"
)

// Hit is a picked point.
type Hit struct {
	Index int
	// Distance from the cursor in pixels.
	Distance float64
}

// ScreenToGround returns the ground point under top-left screen pixel (x, y).
func ScreenToGround(vp *viewport.Viewport, x, y float64) (orb.Point, error) {
	p, err := vp.Unproject([]float64{x, y})
	if err != nil {
		return orb.Point{}, err
	}
	return orb.Point{p[0], p[1]}, nil
}

// Nearest returns the point drawn closest to top-left screen pixel (x, y),
// at most maxDistance pixels away. Points outside the visible ground area
// are skipped without projecting them.
func Nearest(vp *viewport.Viewport, points []orb.Point, x, y, maxDistance float64) (Hit, bool) {
	visible, err := vp.Bounds()
	cull := err == nil && vp.State().Pitch == 0
	if cull {
		// Keep points whose marker may overlap the edge.
		ground, gerr := ScreenToGround(vp, x+maxDistance, y)
		if center, cerr := ScreenToGround(vp, x, y); gerr == nil && cerr == nil {
			visible = visible.Pad(gomath.Abs(ground.Lon() - center.Lon()))
		}
	}

	best := Hit{Index: -1, Distance: gomath.Inf(1)}
	for i, p := range points {
		if cull && !visible.Contains(p) {
			continue
		}
		s, err := vp.Project([]float64{p.Lon(), p.Lat()})
		if err != nil {
			continue
		}
		d := gomath.Hypot(s[0]-x, s[1]-y)
		if d <= maxDistance && d < best.Distance {
			best = Hit{Index: i, Distance: d}
		}
	}
	return best, best.Index >= 0
}
