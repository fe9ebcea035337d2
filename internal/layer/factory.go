// Package layer builds per-frame render functions for map overlay layers.
//
// A Factory compiles each layer's shaders once, with the projection library
// injected, and returns a RenderFunc. Every call of a RenderFunc reads the
// live camera, recomputes the projection uniforms, uploads them to a uniform
// buffer shared by all layers of the factory, applies the merged pipeline
// state and issues one draw.
//
// Render functions mutate the state of the shared gpu.Context and are not
// safe for concurrent use; call them in layer order from one goroutine.
package layer

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/mapgl/internal/gpu"
	"github.com/Faultbox/mapgl/internal/logger"
	"github.com/Faultbox/mapgl/internal/shaderlib"
	"github.com/Faultbox/mapgl/internal/ubo"
	"github.com/Faultbox/mapgl/internal/viewport"
)

// CameraSource reports the live camera state once per frame.
type CameraSource interface {
	CameraState() viewport.CameraState
}

// RenderFunc draws one frame of a layer with o merged over its spec.
type RenderFunc func(o Override) error

// Factory creates layers that share one camera uniform buffer.
type Factory struct {
	ctx        gpu.Context
	camera     CameraSource
	projection viewport.Config
	generation Generation
	log        *zap.Logger

	block        []byte
	cameraBuffer gpu.Buffer
	layers       []*Layer
	nextID       int
	closed       bool
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithProjection sets the fixed coordinate origin and longitude wrapping.
func WithProjection(cfg viewport.Config) FactoryOption {
	return func(f *Factory) {
		f.projection = cfg
	}
}

// WithGeneration selects the capability set. The default is Generation2.
func WithGeneration(g Generation) FactoryOption {
	return func(f *Factory) {
		f.generation = g
	}
}

// NewFactory returns a factory drawing through ctx with camera as the source
// of the per-frame view.
func NewFactory(ctx gpu.Context, camera CameraSource, opts ...FactoryOption) *Factory {
	f := &Factory{
		ctx:        ctx,
		camera:     camera,
		projection: viewport.DefaultConfig(),
		generation: Generation2,
		log:        logger.Named("layer"),
		block:      make([]byte, ubo.Size),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Generation reports the factory's capability set.
func (f *Factory) Generation() Generation {
	return f.generation
}

// Layer is one compiled overlay layer.
type Layer struct {
	id       int
	factory  *Factory
	spec     Spec
	program  gpu.Program
	drawCall gpu.DrawCall
	// Inputs the current draw call was built from.
	vertexArray gpu.VertexArray
	feedback    []gpu.Buffer
	released    bool
}

// Create validates spec, compiles its program and returns the layer's render
// function. Configuration errors are reported before anything is allocated
// on the GPU. The layer lives until the factory is closed.
func (f *Factory) Create(spec Spec) (RenderFunc, error) {
	l, err := f.CreateLayer(spec)
	if err != nil {
		return nil, err
	}
	return l.Render, nil
}

// CreateLayer is Create for callers that replace layers over the factory's
// lifetime and release them with Layer.Release.
func (f *Factory) CreateLayer(spec Spec) (*Layer, error) {
	if f.closed {
		return nil, ErrClosed
	}
	if !f.generation.valid() {
		return nil, fmt.Errorf("%w: unknown generation %d", ErrInvalidSpec, f.generation)
	}
	if spec.VertexShader == "" {
		return nil, fmt.Errorf("%w: empty vertex shader", ErrInvalidSpec)
	}
	if spec.FragmentShader == "" {
		return nil, fmt.Errorf("%w: empty fragment shader", ErrInvalidSpec)
	}
	if spec.VertexArray == nil {
		return nil, fmt.Errorf("%w: missing vertex array", ErrInvalidSpec)
	}
	if err := f.generation.check(PhaseCreate, spec.has); err != nil {
		return nil, err
	}

	// Own copies so later caller mutation cannot change the layer.
	spec.Uniforms = maps.Clone(spec.Uniforms)
	spec.Varyings = slices.Clone(spec.Varyings)
	if fb, ok := spec.TransformFeedback.Get(); ok {
		spec.TransformFeedback = Set(slices.Clone(fb))
	}

	program, err := f.ctx.CreateProgram(shaderlib.Inject(spec.VertexShader), spec.FragmentShader, spec.Varyings)
	if err != nil {
		return nil, fmt.Errorf("compiling layer program: %w", err)
	}
	err = program.UniformBlock(shaderlib.BlockName, shaderlib.BlockBinding)
	if errors.Is(err, gpu.ErrBlockNotFound) {
		// The vertex shader never calls a project_* function.
		f.log.Debug("layer does not read the camera uniforms", zap.Error(err))
		err = nil
	}
	if err != nil {
		program.Delete()
		return nil, fmt.Errorf("binding %s block: %w", shaderlib.BlockName, err)
	}

	feedback, _ := spec.TransformFeedback.Get()
	drawCall, err := f.ctx.CreateDrawCall(program, spec.VertexArray, feedback)
	if err != nil {
		program.Delete()
		return nil, fmt.Errorf("creating draw call: %w", err)
	}

	f.nextID++
	l := &Layer{
		id:          f.nextID,
		factory:     f,
		spec:        spec,
		program:     program,
		drawCall:    drawCall,
		vertexArray: spec.VertexArray,
		feedback:    feedback,
	}
	f.layers = append(f.layers, l)

	f.log.Debug("layer created",
		zap.Int("layer", l.id),
		zap.Int("generation", int(f.generation)),
		zap.Int32("vertices", spec.VertexArray.Count()),
		zap.Strings("varyings", spec.Varyings))

	return l, nil
}

// Render draws one frame of the layer with o merged over its spec.
func (l *Layer) Render(o Override) error {
	f := l.factory
	if f.closed {
		return ErrClosed
	}
	if l.released {
		return ErrReleased
	}
	if va, ok := o.VertexArray.Get(); ok && va == nil {
		return fmt.Errorf("%w: nil vertex array override", ErrInvalidSpec)
	}
	err := f.generation.check(PhaseRender, func(opt string) bool {
		return o.has(opt) || l.spec.has(opt)
	})
	if err != nil {
		return err
	}

	p := merge(&l.spec, o)

	if p.vertexArray != l.vertexArray || !sameBuffers(p.feedback, l.feedback) {
		if err := l.rebuild(p.vertexArray, p.feedback); err != nil {
			return err
		}
	}

	if err := f.uploadCamera(); err != nil {
		return err
	}

	f.ctx.Apply(p.state)

	for _, name := range slices.Sorted(maps.Keys(p.uniforms)) {
		if err := l.drawCall.Uniform(name, p.uniforms[name]); err != nil {
			return fmt.Errorf("setting uniform %s: %w", name, err)
		}
	}

	if err := l.drawCall.Draw(p.primitive, p.count, p.instances); err != nil {
		return fmt.Errorf("drawing layer %d: %w", l.id, err)
	}
	return nil
}

// uploadCamera recomputes the projection uniforms from the live camera and
// binds them as the shared block.
func (f *Factory) uploadCamera() error {
	u := viewport.ComputeProjectionUniforms(f.camera.CameraState(), f.projection)
	ubo.PackInto(f.block, u)

	if f.cameraBuffer == nil {
		buf, err := f.ctx.CreateBuffer(gpu.UniformBuffer, f.block, gpu.DynamicDraw)
		if err != nil {
			return fmt.Errorf("creating camera uniform buffer: %w", err)
		}
		f.cameraBuffer = buf
		f.log.Debug("camera uniform buffer created", zap.Int("bytes", ubo.Size))
	} else if err := f.cameraBuffer.Update(f.block); err != nil {
		return fmt.Errorf("updating camera uniforms: %w", err)
	}

	if err := f.ctx.BindUniformBuffer(shaderlib.BlockBinding, f.cameraBuffer); err != nil {
		return fmt.Errorf("binding camera uniforms: %w", err)
	}
	return nil
}

// rebuild replaces the draw call after a vertex array or transform feedback
// swap. Uniform values are set again on the next draw.
func (l *Layer) rebuild(va gpu.VertexArray, feedback []gpu.Buffer) error {
	dc, err := l.factory.ctx.CreateDrawCall(l.program, va, feedback)
	if err != nil {
		return fmt.Errorf("rebuilding draw call: %w", err)
	}
	l.drawCall.Delete()
	l.drawCall = dc
	l.vertexArray = va
	l.feedback = slices.Clone(feedback)

	l.factory.log.Debug("draw call rebuilt",
		zap.Int("layer", l.id),
		zap.Int32("vertices", va.Count()),
		zap.Int("feedbackBuffers", len(feedback)))
	return nil
}

// Release deletes the layer's program and draw call. Releasing twice, or
// after the factory closed, does nothing.
func (l *Layer) Release() {
	f := l.factory
	if l.released || f.closed {
		return
	}
	l.released = true
	l.drawCall.Delete()
	l.program.Delete()
	f.layers = slices.DeleteFunc(f.layers, func(other *Layer) bool { return other == l })
	f.log.Debug("layer released", zap.Int("layer", l.id))
}

// Close releases every program and draw call created by the factory and the
// shared camera buffer. Render functions fail with ErrClosed afterwards.
// Vertex arrays and buffers passed in by callers stay theirs to delete.
func (f *Factory) Close() {
	if f.closed {
		return
	}
	f.closed = true
	for _, l := range f.layers {
		l.drawCall.Delete()
		l.program.Delete()
	}
	f.layers = nil
	if f.cameraBuffer != nil {
		f.cameraBuffer.Delete()
		f.cameraBuffer = nil
	}
}
