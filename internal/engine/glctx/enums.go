package glctx

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/mapgl/internal/gpu"
)

func primitiveMode(p gpu.Primitive) uint32 {
	switch p {
	case gpu.Points:
		return gl.POINTS
	case gpu.Lines:
		return gl.LINES
	case gpu.LineStrip:
		return gl.LINE_STRIP
	case gpu.LineLoop:
		return gl.LINE_LOOP
	case gpu.TriangleStrip:
		return gl.TRIANGLE_STRIP
	case gpu.TriangleFan:
		return gl.TRIANGLE_FAN
	default:
		return gl.TRIANGLES
	}
}

// feedbackMode maps a draw primitive to the transform feedback capture mode.
func feedbackMode(p gpu.Primitive) (uint32, error) {
	switch p {
	case gpu.Points:
		return gl.POINTS, nil
	case gpu.Lines, gpu.LineStrip, gpu.LineLoop:
		return gl.LINES, nil
	case gpu.Triangles, gpu.TriangleStrip, gpu.TriangleFan:
		return gl.TRIANGLES, nil
	default:
		return 0, fmt.Errorf("no transform feedback mode for %s", p)
	}
}

func bufferTarget(t gpu.BufferTarget) uint32 {
	switch t {
	case gpu.UniformBuffer:
		return gl.UNIFORM_BUFFER
	case gpu.TransformFeedbackBuffer:
		return gl.TRANSFORM_FEEDBACK_BUFFER
	default:
		return gl.ARRAY_BUFFER
	}
}

func bufferUsage(u gpu.Usage) uint32 {
	switch u {
	case gpu.DynamicDraw:
		return gl.DYNAMIC_DRAW
	case gpu.StreamDraw:
		return gl.STREAM_DRAW
	case gpu.StaticCopy:
		return gl.STATIC_COPY
	default:
		return gl.STATIC_DRAW
	}
}

func blendFactor(f gpu.BlendFactor) uint32 {
	switch f {
	case gpu.One:
		return gl.ONE
	case gpu.SrcAlpha:
		return gl.SRC_ALPHA
	case gpu.OneMinusSrcAlpha:
		return gl.ONE_MINUS_SRC_ALPHA
	case gpu.DstAlpha:
		return gl.DST_ALPHA
	case gpu.OneMinusDstAlpha:
		return gl.ONE_MINUS_DST_ALPHA
	case gpu.SrcColor:
		return gl.SRC_COLOR
	case gpu.OneMinusSrcColor:
		return gl.ONE_MINUS_SRC_COLOR
	default:
		return gl.ZERO
	}
}
