package layer

import (
	"slices"

	"github.com/Faultbox/mapgl/internal/gpu"
)

// Option names used in configuration errors.
const (
	OptVertexArray       = "vertexArray"
	OptPrimitive         = "primitive"
	OptCount             = "count"
	OptInstanceCount     = "instanceCount"
	OptBlend             = "blend"
	OptDepthTest         = "depthTest"
	OptCullBackfaces     = "cullBackfaces"
	OptRasterize         = "rasterize"
	OptTransformFeedback = "transformFeedback"
	OptFramebuffer       = "framebuffer"
)

// Spec is the static description of one layer.
type Spec struct {
	// VertexShader positions vertices with project_position_to_clipspace;
	// the projection library is injected after its #version line. A shader
	// that uses no project_* function still draws, without camera uniforms.
	VertexShader   string
	FragmentShader string
	// Varyings are the vertex outputs captured by transform feedback.
	Varyings []string

	VertexArray gpu.VertexArray

	Primitive         Optional[gpu.Primitive]
	Count             Optional[int32]
	InstanceCount     Optional[int32]
	Uniforms          map[string]any
	Blend             Optional[gpu.Blend]
	DepthTest         Optional[bool]
	CullBackfaces     Optional[bool]
	Rasterize         Optional[bool]
	TransformFeedback Optional[[]gpu.Buffer]
	Framebuffer       Optional[gpu.Framebuffer]
}

// Override holds per-frame changes merged over a Spec.
type Override struct {
	VertexArray       Optional[gpu.VertexArray]
	Primitive         Optional[gpu.Primitive]
	Count             Optional[int32]
	InstanceCount     Optional[int32]
	Uniforms          map[string]any
	Blend             Optional[gpu.Blend]
	DepthTest         Optional[bool]
	CullBackfaces     Optional[bool]
	Rasterize         Optional[bool]
	TransformFeedback Optional[[]gpu.Buffer]
	Framebuffer       Optional[gpu.Framebuffer]
}

// has reports whether the named option is set on the spec. The vertex
// array is mandatory and never counts as a requested option.
func (s *Spec) has(opt string) bool {
	switch opt {
	case OptPrimitive:
		return s.Primitive.IsSet()
	case OptCount:
		return s.Count.IsSet()
	case OptInstanceCount:
		return s.InstanceCount.IsSet()
	case OptBlend:
		return s.Blend.IsSet()
	case OptDepthTest:
		return s.DepthTest.IsSet()
	case OptCullBackfaces:
		return s.CullBackfaces.IsSet()
	case OptRasterize:
		return s.Rasterize.IsSet()
	case OptTransformFeedback:
		return s.TransformFeedback.IsSet()
	case OptFramebuffer:
		return s.Framebuffer.IsSet()
	}
	return false
}

func (o *Override) has(opt string) bool {
	switch opt {
	case OptVertexArray:
		return o.VertexArray.IsSet()
	case OptPrimitive:
		return o.Primitive.IsSet()
	case OptCount:
		return o.Count.IsSet()
	case OptInstanceCount:
		return o.InstanceCount.IsSet()
	case OptBlend:
		return o.Blend.IsSet()
	case OptDepthTest:
		return o.DepthTest.IsSet()
	case OptCullBackfaces:
		return o.CullBackfaces.IsSet()
	case OptRasterize:
		return o.Rasterize.IsSet()
	case OptTransformFeedback:
		return o.TransformFeedback.IsSet()
	case OptFramebuffer:
		return o.Framebuffer.IsSet()
	}
	return false
}

// params is the fully resolved configuration of one draw.
type params struct {
	vertexArray gpu.VertexArray
	primitive   gpu.Primitive
	count       int32
	instances   int32
	uniforms    map[string]any
	state       gpu.State
	feedback    []gpu.Buffer
}

// merge resolves o over s, falling back to library defaults.
func merge(s *Spec, o Override) params {
	def := gpu.DefaultState()
	va := resolve(o.VertexArray, Optional[gpu.VertexArray]{}, s.VertexArray)

	return params{
		vertexArray: va,
		primitive:   resolve(o.Primitive, s.Primitive, gpu.Triangles),
		count:       resolve(o.Count, s.Count, va.Count()),
		instances:   resolve(o.InstanceCount, s.InstanceCount, 1),
		uniforms:    mergeUniforms(s.Uniforms, o.Uniforms),
		feedback:    resolve(o.TransformFeedback, s.TransformFeedback, nil),
		state: gpu.State{
			Blend:         resolve(o.Blend, s.Blend, def.Blend),
			DepthTest:     resolve(o.DepthTest, s.DepthTest, def.DepthTest),
			CullBackfaces: resolve(o.CullBackfaces, s.CullBackfaces, def.CullBackfaces),
			Rasterize:     resolve(o.Rasterize, s.Rasterize, def.Rasterize),
			Framebuffer:   resolve(o.Framebuffer, s.Framebuffer, def.Framebuffer),
		},
	}
}

// sameBuffers compares feedback lists element-wise in order. Two empty
// lists, nil or not, are equal.
func sameBuffers(a, b []gpu.Buffer) bool {
	return slices.Equal(a, b)
}
