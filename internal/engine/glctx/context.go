// Package glctx implements gpu.Context on OpenGL 4.1 core.
//
// All calls must come from the goroutine that owns the GL context, after
// Init.
package glctx

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/mapgl/internal/engine/shader"
	"github.com/Faultbox/mapgl/internal/gpu"
	"github.com/Faultbox/mapgl/internal/logger"
)

// Context is the GL rendering context handle.
type Context struct {
	width, height int32
	framebuffer   gpu.Framebuffer
	log           *zap.Logger
}

var _ gpu.Context = (*Context)(nil)

// Init loads the GL function pointers for the current context. Call it once
// after the window created its context.
func Init() error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
		zap.String("glsl", gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION))),
	)
	return nil
}

// New wraps the current GL context. width and height are the default
// framebuffer size in pixels.
func New(width, height int32) *Context {
	// Core profile ignores gl_PointSize unless this is on.
	gl.Enable(gl.PROGRAM_POINT_SIZE)

	c := &Context{log: logger.Named("glctx")}
	c.Viewport(width, height)
	return c
}

// Viewport resizes the default framebuffer viewport.
func (c *Context) Viewport(width, height int32) {
	c.width, c.height = width, height
	if c.framebuffer == nil {
		gl.Viewport(0, 0, width, height)
	}
}

// Clear clears color and depth of the current render target.
func (c *Context) Clear(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Apply sets blend, depth, culling, rasterization and render target.
func (c *Context) Apply(s gpu.State) {
	if s.Blend.Enabled {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(blendFactor(s.Blend.Src), blendFactor(s.Blend.Dst))
	} else {
		gl.Disable(gl.BLEND)
	}
	setCapability(gl.DEPTH_TEST, s.DepthTest)
	setCapability(gl.CULL_FACE, s.CullBackfaces)
	if s.CullBackfaces {
		gl.CullFace(gl.BACK)
	}
	setCapability(gl.RASTERIZER_DISCARD, !s.Rasterize)

	switch {
	case s.Framebuffer != nil:
		s.Framebuffer.Bind()
	case c.framebuffer != nil:
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		gl.Viewport(0, 0, c.width, c.height)
	}
	c.framebuffer = s.Framebuffer
}

// CreateProgram compiles and links a program.
func (c *Context) CreateProgram(vertexSrc, fragmentSrc string, varyings []string) (gpu.Program, error) {
	id, err := shader.CompileProgram(vertexSrc, fragmentSrc, varyings)
	if err != nil {
		return nil, err
	}
	c.log.Debug("program linked", zap.Uint32("id", id), zap.Int("varyings", len(varyings)))
	return &Program{id: id}, nil
}

// CreateBuffer allocates a buffer initialized with data.
func (c *Context) CreateBuffer(target gpu.BufferTarget, data []byte, usage gpu.Usage) (gpu.Buffer, error) {
	b := &Buffer{target: bufferTarget(target), usage: bufferUsage(usage)}
	gl.GenBuffers(1, &b.id)
	b.alloc(data)
	if err := checkError("creating buffer"); err != nil {
		b.Delete()
		return nil, err
	}
	return b, nil
}

// CreateVertexArray binds attrs into a new vertex array object.
func (c *Context) CreateVertexArray(count int32, attrs []gpu.Attribute) (gpu.VertexArray, error) {
	va := &VertexArray{count: count}
	gl.GenVertexArrays(1, &va.id)
	gl.BindVertexArray(va.id)
	defer gl.BindVertexArray(0)

	for _, a := range attrs {
		buf, ok := a.Buffer.(*Buffer)
		if !ok {
			va.Delete()
			return nil, fmt.Errorf("attribute %d: buffer %T does not belong to this context", a.Location, a.Buffer)
		}
		gl.BindBuffer(gl.ARRAY_BUFFER, buf.id)
		gl.EnableVertexAttribArray(a.Location)
		gl.VertexAttribPointerWithOffset(a.Location, a.Size, gl.FLOAT, false, a.Stride, uintptr(a.Offset))
		if a.Divisor > 0 {
			gl.VertexAttribDivisor(a.Location, a.Divisor)
		}
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	if err := checkError("creating vertex array"); err != nil {
		va.Delete()
		return nil, err
	}
	return va, nil
}

// CreateDrawCall pairs a program with a vertex array and optional transform
// feedback targets.
func (c *Context) CreateDrawCall(program gpu.Program, vertexArray gpu.VertexArray, feedback []gpu.Buffer) (gpu.DrawCall, error) {
	p, ok := program.(*Program)
	if !ok {
		return nil, fmt.Errorf("program %T does not belong to this context", program)
	}
	va, ok := vertexArray.(*VertexArray)
	if !ok {
		return nil, fmt.Errorf("vertex array %T does not belong to this context", vertexArray)
	}
	d := &DrawCall{program: p, vertexArray: va, locations: make(map[string]int32)}
	for i, fb := range feedback {
		b, ok := fb.(*Buffer)
		if !ok {
			return nil, fmt.Errorf("feedback buffer %d: %T does not belong to this context", i, fb)
		}
		d.feedback = append(d.feedback, b)
	}
	return d, nil
}

// BindUniformBuffer binds buf to a uniform block binding point.
func (c *Context) BindUniformBuffer(binding uint32, buf gpu.Buffer) error {
	b, ok := buf.(*Buffer)
	if !ok {
		return fmt.Errorf("buffer %T does not belong to this context", buf)
	}
	gl.BindBufferBase(gl.UNIFORM_BUFFER, binding, b.id)
	return checkError("binding uniform buffer")
}

// ReadPixels reads the default framebuffer's back buffer as bottom-up RGBA
// rows. Call it before swapping.
func (c *Context) ReadPixels() (pixels []byte, width, height int32) {
	pixels = make([]byte, c.width*c.height*4)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	gl.ReadBuffer(gl.BACK)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, c.width, c.height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, c.width, c.height
}

func setCapability(capability uint32, on bool) {
	if on {
		gl.Enable(capability)
	} else {
		gl.Disable(capability)
	}
}

// checkError drains the GL error queue and reports the first error.
func checkError(op string) error {
	first := uint32(gl.NO_ERROR)
	for code := gl.GetError(); code != gl.NO_ERROR; code = gl.GetError() {
		if first == gl.NO_ERROR {
			first = code
		}
	}
	if first != gl.NO_ERROR {
		return fmt.Errorf("%s: GL error 0x%x", op, first)
	}
	return nil
}
