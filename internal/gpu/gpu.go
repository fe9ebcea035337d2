// Package gpu defines the rendering context contract the layer factory drives.
//
// Every component receives a Context explicitly; nothing reaches for a global
// GL state. The production implementation lives in internal/engine/glctx and
// a recording fake in internal/gpu/gputest.
package gpu

import (
	"errors"
	"fmt"
)

// ErrUnsupportedUniform is returned when a uniform value has a type the
// context cannot upload.
var ErrUnsupportedUniform = errors.New("unsupported uniform value")

// ErrBlockNotFound is returned by Program.UniformBlock when the linked
// program has no active block of that name, typically because no shader
// code reads it.
var ErrBlockNotFound = errors.New("uniform block not active")

// Primitive is the topology of a draw.
type Primitive int

const (
	Points Primitive = iota
	Lines
	LineStrip
	LineLoop
	Triangles
	TriangleStrip
	TriangleFan
)

func (p Primitive) String() string {
	switch p {
	case Points:
		return "POINTS"
	case Lines:
		return "LINES"
	case LineStrip:
		return "LINE_STRIP"
	case LineLoop:
		return "LINE_LOOP"
	case Triangles:
		return "TRIANGLES"
	case TriangleStrip:
		return "TRIANGLE_STRIP"
	case TriangleFan:
		return "TRIANGLE_FAN"
	default:
		return fmt.Sprintf("Primitive(%d)", int(p))
	}
}

// BufferTarget is the binding a buffer is created for.
type BufferTarget int

const (
	ArrayBuffer BufferTarget = iota
	UniformBuffer
	TransformFeedbackBuffer
)

// Usage hints how often a buffer's contents change.
type Usage int

const (
	StaticDraw Usage = iota
	DynamicDraw
	StreamDraw
	StaticCopy
)

// BlendFactor is a blend equation coefficient.
type BlendFactor int

const (
	Zero BlendFactor = iota
	One
	SrcAlpha
	OneMinusSrcAlpha
	DstAlpha
	OneMinusDstAlpha
	SrcColor
	OneMinusSrcColor
)

// Blend is the blending mode of a draw. The zero value disables blending.
type Blend struct {
	Enabled bool
	Src     BlendFactor
	Dst     BlendFactor
}

// AlphaBlend is standard non-premultiplied alpha blending.
var AlphaBlend = Blend{Enabled: true, Src: SrcAlpha, Dst: OneMinusSrcAlpha}

// AdditiveBlend adds source color weighted by alpha.
var AdditiveBlend = Blend{Enabled: true, Src: SrcAlpha, Dst: One}

// State is the pipeline state applied before a draw.
type State struct {
	Blend         Blend
	DepthTest     bool
	CullBackfaces bool
	Rasterize     bool
	// Framebuffer is the render target; nil selects the default framebuffer.
	Framebuffer Framebuffer
}

// DefaultState is the pipeline state used when nothing is requested.
func DefaultState() State {
	return State{Rasterize: true}
}

// Attribute describes one float vertex attribute sourced from a buffer.
type Attribute struct {
	Location uint32
	Buffer   Buffer
	// Size is the number of float32 components per vertex (1-4).
	Size    int32
	Stride  int32
	Offset  int
	Divisor uint32
}

// Context creates GPU resources and applies pipeline state.
type Context interface {
	// CreateProgram compiles and links a program. Varyings, when present,
	// are captured interleaved by transform feedback.
	CreateProgram(vertexSrc, fragmentSrc string, varyings []string) (Program, error)
	CreateBuffer(target BufferTarget, data []byte, usage Usage) (Buffer, error)
	// CreateVertexArray binds attrs for count vertices.
	CreateVertexArray(count int32, attrs []Attribute) (VertexArray, error)
	// CreateDrawCall pairs a program with a vertex array. A non-empty
	// feedback list turns draws into transform feedback passes.
	CreateDrawCall(program Program, vertexArray VertexArray, feedback []Buffer) (DrawCall, error)
	BindUniformBuffer(binding uint32, buf Buffer) error
	Apply(state State)
	Clear(r, g, b, a float32)
	Viewport(width, height int32)
}

// Program is a linked shader program.
type Program interface {
	// UniformBlock binds the named uniform block to a binding point.
	UniformBlock(name string, binding uint32) error
	Delete()
}

// Buffer is GPU memory.
type Buffer interface {
	Size() int
	// Update replaces the buffer contents, growing it when data is larger.
	Update(data []byte) error
	Delete()
}

// VertexArray is a set of attribute bindings.
type VertexArray interface {
	Count() int32
	Delete()
}

// DrawCall is a program bound to a vertex array.
type DrawCall interface {
	// Uniform sets a uniform by name. Supported values are float32, float64,
	// int, int32, uint32, bool, [2]float32, [3]float32, [4]float32 and
	// [16]float32.
	Uniform(name string, value any) error
	Draw(primitive Primitive, count, instances int32) error
	Delete()
}

// Framebuffer is an offscreen render target.
type Framebuffer interface {
	// Bind makes the framebuffer current and sets the viewport to its size.
	Bind()
	Size() (width, height int32)
}
