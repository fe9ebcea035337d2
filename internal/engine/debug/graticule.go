package debug

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/Faultbox/mapgl/pkg/mercator"
)

// Graticule returns the meridians and parallels at multiples of step degrees
// that fall inside b, each as a two-point line. Latitudes are clamped to the
// Web Mercator limit.
func Graticule(b orb.Bound, step float64) []orb.LineString {
	if step <= 0 {
		return nil
	}

	minLat := math.Max(b.Min.Lat(), -mercator.MaxLatitude)
	maxLat := math.Min(b.Max.Lat(), mercator.MaxLatitude)
	if minLat > maxLat {
		return nil
	}

	var lines []orb.LineString
	for lng := math.Ceil(b.Min.Lon()/step) * step; lng <= b.Max.Lon(); lng += step {
		lines = append(lines, orb.LineString{{lng, minLat}, {lng, maxLat}})
	}
	for lat := math.Ceil(minLat/step) * step; lat <= maxLat; lat += step {
		lines = append(lines, orb.LineString{{b.Min.Lon(), lat}, {b.Max.Lon(), lat}})
	}
	return lines
}

// Outline returns the four edges of b as two-point lines.
func Outline(b orb.Bound) []orb.LineString {
	sw := b.Min
	ne := b.Max
	nw := orb.Point{sw.Lon(), ne.Lat()}
	se := orb.Point{ne.Lon(), sw.Lat()}
	return []orb.LineString{
		{sw, se},
		{se, ne},
		{ne, nw},
		{nw, sw},
	}
}

// LineVertices flattens line strings into [lng, lat, 0] vertices for LINES
// drawing, emitting each segment's endpoints.
func LineVertices(lines []orb.LineString) []float32 {
	var v []float32
	for _, ls := range lines {
		for i := 1; i < len(ls); i++ {
			a, b := ls[i-1], ls[i]
			v = append(v,
				float32(a.Lon()), float32(a.Lat()), 0,
				float32(b.Lon()), float32(b.Lat()), 0,
			)
		}
	}
	return v
}
