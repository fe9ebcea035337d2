// Package math provides the single-precision types that cross the host/GPU
// boundary: matrices and vectors in the layout shaders consume, plus the
// float64 to float32 narrowing helpers used when packing uniforms.
package math

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float32
}

// Vec3FromFloat64 narrows a double-precision vector.
func Vec3FromFloat64(v [3]float64) Vec3 {
	return Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}

// Vec4 extends v with w, e.g. 0 for the padding slot of a std140 vec3.
func (v Vec3) Vec4(w float32) Vec4 {
	return Vec4{v.X, v.Y, v.Z, w}
}

// Fround rounds x to the nearest single-precision value and widens it back.
// Anchoring coordinates at fround'ed values keeps host-side offsets exactly
// representable on the GPU.
func Fround(x float64) float64 {
	return float64(float32(x))
}
