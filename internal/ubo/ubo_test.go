package ubo

import (
	"encoding/binary"
	gomath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/mapgl/internal/viewport"
)

func floatAt(b []byte, off int) float32 {
	return gomath.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
}

func sampleUniforms() viewport.Uniforms {
	var vp mgl64.Mat4
	for i := range vp {
		vp[i] = float64(i) + 0.25
	}
	return viewport.Uniforms{
		ModelMatrix:          mgl64.Ident4(),
		ViewProjectionMatrix: vp,
		Center:               mgl64.Vec4{1, 2, 3, 4},
		CoordinateSystem:     viewport.LngLatAutoOffset,
		CoordinateOrigin:     mgl64.Vec3{-122.4, 37.78, 0},
		PixelsPerMeter:       mgl64.Vec3{0.5, -0.5, 0.5},
		PixelsPerDegree:      mgl64.Vec3{23301, -29480, 0.5},
		PixelsPerDegree2:     mgl64.Vec3{0, -15.5, 0.01},
		Scale:                16384,
		Antimeridian:         -302.4,
		WrapLongitude:        true,
	}
}

func TestPackLayout(t *testing.T) {
	u := sampleUniforms()
	b := Pack(u)

	if len(b) != Size {
		t.Fatalf("packed size = %d, want %d", len(b), Size)
	}
	if Size%16 != 0 {
		t.Errorf("block size %d is not 16-byte aligned", Size)
	}

	for i := 0; i < 16; i++ {
		if got, want := floatAt(b, OffsetViewProjectionMatrix+i*4), float32(u.ViewProjectionMatrix[i]); got != want {
			t.Errorf("viewProjection[%d] = %v, want %v", i, got, want)
		}
	}
	if floatAt(b, OffsetModelMatrix) != 1 || floatAt(b, OffsetModelMatrix+4) != 0 || floatAt(b, OffsetModelMatrix+60) != 1 {
		t.Error("model matrix not written as identity")
	}

	tests := []struct {
		name string
		off  int
		want float32
	}{
		{"center.x", OffsetCenter, 1},
		{"center.w", OffsetCenter + 12, 4},
		{"pixelsPerMeter.y", OffsetPixelsPerMeter + 4, -0.5},
		{"coordinateOrigin.x", OffsetCoordinateOrigin, float32(-122.4)},
		{"coordinateOrigin.y", OffsetCoordinateOrigin + 4, float32(37.78)},
		{"pixelsPerDegree.x", OffsetPixelsPerDegree, 23301},
		{"pixelsPerDegree2.y", OffsetPixelsPerDegree2 + 4, -15.5},
		{"coordinateSystem", OffsetCoordinateSystem, 4},
		{"scale", OffsetScale, 16384},
		{"antimeridian", OffsetAntimeridian, float32(-302.4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := floatAt(b, tt.off); got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
			}
		})
	}

	if got := binary.LittleEndian.Uint32(b[OffsetWrapLongitude:]); got != 1 {
		t.Errorf("wrapLongitude = %d, want 1", got)
	}
}

func TestPackVec3PaddingIsZero(t *testing.T) {
	u := sampleUniforms()
	u.PixelsPerMeter = mgl64.Vec3{7, 7, 7}
	b := Pack(u)

	for _, off := range []int{OffsetPixelsPerMeter, OffsetCoordinateOrigin, OffsetPixelsPerDegree, OffsetPixelsPerDegree2} {
		if pad := floatAt(b, off+12); pad != 0 {
			t.Errorf("padding after vec3 at %d = %v, want 0", off, pad)
		}
	}
}

func TestPackIntoReusesBuffer(t *testing.T) {
	buf := make([]byte, Size+8)
	for i := range buf {
		buf[i] = 0xff
	}
	u := sampleUniforms()
	u.WrapLongitude = false
	PackInto(buf, u)

	if got := binary.LittleEndian.Uint32(buf[OffsetWrapLongitude:]); got != 0 {
		t.Errorf("wrapLongitude = %d, want 0", got)
	}
	// Bytes past the block are left alone.
	if buf[Size] != 0xff {
		t.Error("PackInto wrote past the block")
	}
}

func TestPackIntoShortBufferPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for short buffer")
		}
	}()
	PackInto(make([]byte, Size-1), sampleUniforms())
}

func TestPackFromComputedUniforms(t *testing.T) {
	state := viewport.CameraState{Width: 800, Height: 600, Longitude: -122.4, Latitude: 37.78, Zoom: 14}
	b := Pack(viewport.ComputeProjectionUniforms(state, viewport.DefaultConfig()))

	if floatAt(b, OffsetScale) != 16384 {
		t.Errorf("scale = %v, want 16384", floatAt(b, OffsetScale))
	}
	if floatAt(b, OffsetCoordinateSystem) != float32(viewport.LngLatAutoOffset) {
		t.Error("expected auto-offset coordinate system in block")
	}
	// The truncated matrix keeps its last column zero after narrowing.
	for i := 12; i < 16; i++ {
		if v := floatAt(b, OffsetViewProjectionMatrix+i*4); v != 0 {
			t.Errorf("viewProjection[%d] = %v, want 0", i, v)
		}
	}
}
