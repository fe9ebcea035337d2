// Package ubo packs projection uniforms into the std140 byte layout of the
// ProjectionUniforms block declared by the shader library.
//
// Layout (byte offsets, little-endian float32 unless noted):
//
//	  0 mat4  modelMatrix
//	 64 mat4  viewProjectionMatrix
//	128 vec4  center
//	144 vec3  pixelsPerMeter    (+4 bytes padding)
//	160 vec3  coordinateOrigin  (+4 bytes padding)
//	176 vec3  pixelsPerDegree   (+4 bytes padding)
//	192 vec3  pixelsPerDegree2  (+4 bytes padding)
//	208 float coordinateSystem
//	212 float scale
//	216 float antimeridian
//	220 bool  wrapLongitude     (uint32 0 or 1)
//
// Every vec3 occupies a full 16-byte slot so the order above never depends on
// how a GLSL compiler would pack a trailing scalar.
package ubo

import (
	"encoding/binary"
	"fmt"
	gomath "math"

	"github.com/Faultbox/mapgl/internal/viewport"
	"github.com/Faultbox/mapgl/pkg/math"
)

// Member offsets within the block.
const (
	OffsetModelMatrix          = 0
	OffsetViewProjectionMatrix = 64
	OffsetCenter               = 128
	OffsetPixelsPerMeter       = 144
	OffsetCoordinateOrigin     = 160
	OffsetPixelsPerDegree      = 176
	OffsetPixelsPerDegree2     = 192
	OffsetCoordinateSystem     = 208
	OffsetScale                = 212
	OffsetAntimeridian         = 216
	OffsetWrapLongitude        = 220

	// Size is the total block size, a multiple of 16.
	Size = 224
)

// Pack returns a freshly allocated block for u.
func Pack(u viewport.Uniforms) []byte {
	buf := make([]byte, Size)
	PackInto(buf, u)
	return buf
}

// PackInto writes u into dst, which must hold at least Size bytes.
// A short buffer is a programmer error and panics.
func PackInto(dst []byte, u viewport.Uniforms) {
	if len(dst) < Size {
		panic(fmt.Sprintf("ubo: buffer of %d bytes cannot hold the %d byte projection block", len(dst), Size))
	}

	putMat4(dst[OffsetModelMatrix:], math.Mat4FromFloat64(u.ModelMatrix))
	putMat4(dst[OffsetViewProjectionMatrix:], math.Mat4FromFloat64(u.ViewProjectionMatrix))
	putVec4(dst[OffsetCenter:], math.Vec4FromFloat64(u.Center))
	putVec3(dst[OffsetPixelsPerMeter:], math.Vec3FromFloat64(u.PixelsPerMeter))
	putVec3(dst[OffsetCoordinateOrigin:], math.Vec3FromFloat64(u.CoordinateOrigin))
	putVec3(dst[OffsetPixelsPerDegree:], math.Vec3FromFloat64(u.PixelsPerDegree))
	putVec3(dst[OffsetPixelsPerDegree2:], math.Vec3FromFloat64(u.PixelsPerDegree2))
	putFloat(dst[OffsetCoordinateSystem:], float32(u.CoordinateSystem))
	putFloat(dst[OffsetScale:], float32(u.Scale))
	putFloat(dst[OffsetAntimeridian:], float32(u.Antimeridian))

	var wrap uint32
	if u.WrapLongitude {
		wrap = 1
	}
	binary.LittleEndian.PutUint32(dst[OffsetWrapLongitude:], wrap)
}

func putFloat(b []byte, f float32) {
	binary.LittleEndian.PutUint32(b, gomath.Float32bits(f))
}

func putMat4(b []byte, m math.Mat4) {
	for i, v := range m {
		putFloat(b[i*4:], v)
	}
}

func putVec4(b []byte, v math.Vec4) {
	for i, c := range v {
		putFloat(b[i*4:], c)
	}
}

// putVec3 writes v into a 16-byte slot with a zero pad.
func putVec3(b []byte, v math.Vec3) {
	putVec4(b, v.Vec4(0))
}
