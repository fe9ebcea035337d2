package math

// Mat4 is a single-precision 4x4 matrix in column-major order, the layout
// GLSL expects for mat4 uniforms and uniform block members.
// Layout: [m0 m4 m8  m12]
//
//	[m1 m5 m9  m13]
//	[m2 m6 m10 m14]
//	[m3 m7 m11 m15]
type Mat4 [16]float32

// Mat4FromFloat64 narrows a double-precision column-major matrix.
// mgl64.Mat4 values can be passed directly.
func Mat4FromFloat64(m [16]float64) Mat4 {
	var out Mat4
	for i, v := range m {
		out[i] = float32(v)
	}
	return out
}

// Ptr returns a pointer to the first element (for OpenGL uniform calls).
func (m *Mat4) Ptr() *float32 {
	return &m[0]
}

// Vec4 is a 4-component vector.
type Vec4 [4]float32

// Vec4FromFloat64 narrows a double-precision vector.
func Vec4FromFloat64(v [4]float64) Vec4 {
	return Vec4{float32(v[0]), float32(v[1]), float32(v[2]), float32(v[3])}
}
