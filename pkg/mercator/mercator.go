// Package mercator implements the Web Mercator primitives shared by the camera
// math: lng/lat to world-pixel conversion, local distance scales, and the
// perspective and view matrices of a pitched, rotated slippy-map camera.
//
// World coordinates are pixels of a 512px tile pyramid scaled by 2^zoom, with
// the origin at the north-west corner and Y growing southward.
package mercator

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/paulmach/orb"
)

const (
	// TileSize is the edge length of the world at zoom 0, in pixels.
	TileSize = 512

	// EarthCircumference in meters at the equator.
	EarthCircumference = 40.03e6

	// DefaultAltitude is the camera height above the map plane in
	// screen-height units when none is given.
	DefaultAltitude = 1.5

	// MinAltitude is the lowest altitude the camera may sit at.
	MinAltitude = 0.75

	// MaxLatitude is the latitude where the square world ends.
	MaxLatitude = 85.051129
)

// ZoomToScale returns 2^zoom.
func ZoomToScale(zoom float64) float64 {
	return math.Pow(2, zoom)
}

// LngLatToWorld projects a geographic point onto the world plane at the given scale.
func LngLatToWorld(p orb.Point, scale float64) orb.Point {
	scale *= TileSize
	lambda := p.Lon() * math.Pi / 180
	phi := p.Lat() * math.Pi / 180
	x := scale * (lambda + math.Pi) / (2 * math.Pi)
	y := scale * (math.Pi - math.Log(math.Tan(math.Pi/4+phi*0.5))) / (2 * math.Pi)
	return orb.Point{x, y}
}

// WorldToLngLat is the inverse of LngLatToWorld.
func WorldToLngLat(w orb.Point, scale float64) orb.Point {
	scale *= TileSize
	lambda := w[0]/scale*(2*math.Pi) - math.Pi
	phi := 2 * (math.Atan(math.Exp(math.Pi-w[1]/scale*(2*math.Pi))) - math.Pi/4)
	return orb.Point{lambda * 180 / math.Pi, phi * 180 / math.Pi}
}

// DistanceScales holds the local conversion factors between meters, degrees
// and world pixels around one geographic location. The *2 fields are the
// first derivatives with respect to latitude (per degree), used to
// interpolate scales across small offsets from that location.
type DistanceScales struct {
	PixelsPerMeter   mgl64.Vec3
	MetersPerPixel   mgl64.Vec3
	PixelsPerDegree  mgl64.Vec3
	DegreesPerPixel  mgl64.Vec3
	PixelsPerDegree2 mgl64.Vec3
	PixelsPerMeter2  mgl64.Vec3
}

// Scales computes the distance scales at p for the given world scale.
func Scales(p orb.Point, scale float64) DistanceScales {
	worldSize := TileSize * scale
	latRad := p.Lat() * math.Pi / 180
	latCosine := math.Cos(latRad)

	pixelsPerDegreeX := worldSize / 360
	pixelsPerDegreeY := pixelsPerDegreeX / latCosine
	altPixelsPerMeter := worldSize / EarthCircumference / latCosine

	latCosine2 := math.Pi / 180 * math.Tan(latRad) / latCosine
	pixelsPerDegreeY2 := pixelsPerDegreeX * latCosine2 / 2
	altPixelsPerDegree2 := worldSize / EarthCircumference * latCosine2
	altPixelsPerMeter2 := altPixelsPerDegree2 / pixelsPerDegreeY * altPixelsPerMeter

	return DistanceScales{
		PixelsPerMeter:   mgl64.Vec3{altPixelsPerMeter, -altPixelsPerMeter, altPixelsPerMeter},
		MetersPerPixel:   mgl64.Vec3{1 / altPixelsPerMeter, -1 / altPixelsPerMeter, 1 / altPixelsPerMeter},
		PixelsPerDegree:  mgl64.Vec3{pixelsPerDegreeX, -pixelsPerDegreeY, altPixelsPerMeter},
		DegreesPerPixel:  mgl64.Vec3{1 / pixelsPerDegreeX, -1 / pixelsPerDegreeY, 1 / altPixelsPerMeter},
		PixelsPerDegree2: mgl64.Vec3{0, -pixelsPerDegreeY2, altPixelsPerDegree2},
		PixelsPerMeter2:  mgl64.Vec3{altPixelsPerMeter2, 0, altPixelsPerMeter2},
	}
}
