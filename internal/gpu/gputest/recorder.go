// Package gputest provides a recording gpu.Context for tests.
package gputest

import (
	"fmt"
	"maps"

	"github.com/Faultbox/mapgl/internal/gpu"
)

// Recorder implements gpu.Context without a GPU. It counts allocations and
// records every state change and draw so tests can assert on them.
type Recorder struct {
	// Inject failures. A nil field means success.
	ProgramErr  error
	BufferErr   error
	UpdateErr   error
	DrawCallErr error
	DrawErr     error
	UniformErr  error
	BindErr     error
	BlockErr    error

	Programs     []*Program
	Buffers      []*Buffer
	VertexArrays []*VertexArray
	DrawCalls    []*DrawCall

	States        []gpu.State
	Draws         []Draw
	UniformBlocks map[uint32]*Buffer
	Clears        [][4]float32
	ViewportSize  [2]int32
}

var _ gpu.Context = (*Recorder)(nil)

// New returns an empty recorder.
func New() *Recorder {
	return &Recorder{UniformBlocks: make(map[uint32]*Buffer)}
}

// Allocations is the number of GPU objects created so far.
func (r *Recorder) Allocations() int {
	return len(r.Programs) + len(r.Buffers) + len(r.VertexArrays) + len(r.DrawCalls)
}

// Draw is one recorded draw.
type Draw struct {
	DrawCall    *DrawCall
	VertexArray *VertexArray
	Primitive   gpu.Primitive
	Count       int32
	Instances   int32
	Uniforms    map[string]any
	Feedback    []gpu.Buffer
	State       gpu.State
}

// Program records a compiled program.
type Program struct {
	VertexSrc   string
	FragmentSrc string
	Varyings    []string
	Blocks      map[string]uint32
	Deleted     bool
	blockErr    error
}

func (p *Program) UniformBlock(name string, binding uint32) error {
	if p.blockErr != nil {
		return p.blockErr
	}
	p.Blocks[name] = binding
	return nil
}

func (p *Program) Delete() { p.Deleted = true }

// Buffer records buffer contents.
type Buffer struct {
	Target  gpu.BufferTarget
	Usage   gpu.Usage
	Data    []byte
	Updates int
	Deleted bool
	rec     *Recorder
}

func (b *Buffer) Size() int { return len(b.Data) }

func (b *Buffer) Update(data []byte) error {
	if b.rec.UpdateErr != nil {
		return b.rec.UpdateErr
	}
	b.Data = append(b.Data[:0], data...)
	b.Updates++
	return nil
}

func (b *Buffer) Delete() { b.Deleted = true }

// VertexArray records attribute bindings.
type VertexArray struct {
	N       int32
	Attrs   []gpu.Attribute
	Deleted bool
}

func (v *VertexArray) Count() int32 { return v.N }
func (v *VertexArray) Delete()      { v.Deleted = true }

// DrawCall records uniforms set on it; values persist across draws like GL
// program state.
type DrawCall struct {
	Program     *Program
	VertexArray *VertexArray
	Feedback    []gpu.Buffer
	Uniforms    map[string]any
	Deleted     bool
	rec         *Recorder
}

func (d *DrawCall) Uniform(name string, value any) error {
	if d.rec.UniformErr != nil {
		return d.rec.UniformErr
	}
	switch value.(type) {
	case float32, float64, int, int32, uint32, bool, [2]float32, [3]float32, [4]float32, [16]float32:
	default:
		return fmt.Errorf("%w: %s is %T", gpu.ErrUnsupportedUniform, name, value)
	}
	d.Uniforms[name] = value
	return nil
}

func (d *DrawCall) Draw(primitive gpu.Primitive, count, instances int32) error {
	if d.rec.DrawErr != nil {
		return d.rec.DrawErr
	}
	var state gpu.State
	if n := len(d.rec.States); n > 0 {
		state = d.rec.States[n-1]
	}
	d.rec.Draws = append(d.rec.Draws, Draw{
		DrawCall:    d,
		VertexArray: d.VertexArray,
		Primitive:   primitive,
		Count:       count,
		Instances:   instances,
		Uniforms:    maps.Clone(d.Uniforms),
		Feedback:    d.Feedback,
		State:       state,
	})
	return nil
}

func (d *DrawCall) Delete() { d.Deleted = true }

func (r *Recorder) CreateProgram(vertexSrc, fragmentSrc string, varyings []string) (gpu.Program, error) {
	if r.ProgramErr != nil {
		return nil, r.ProgramErr
	}
	p := &Program{
		VertexSrc:   vertexSrc,
		FragmentSrc: fragmentSrc,
		Varyings:    varyings,
		Blocks:      make(map[string]uint32),
		blockErr:    r.BlockErr,
	}
	r.Programs = append(r.Programs, p)
	return p, nil
}

func (r *Recorder) CreateBuffer(target gpu.BufferTarget, data []byte, usage gpu.Usage) (gpu.Buffer, error) {
	if r.BufferErr != nil {
		return nil, r.BufferErr
	}
	b := &Buffer{Target: target, Usage: usage, Data: append([]byte(nil), data...), rec: r}
	r.Buffers = append(r.Buffers, b)
	return b, nil
}

func (r *Recorder) CreateVertexArray(count int32, attrs []gpu.Attribute) (gpu.VertexArray, error) {
	v := &VertexArray{N: count, Attrs: attrs}
	r.VertexArrays = append(r.VertexArrays, v)
	return v, nil
}

func (r *Recorder) CreateDrawCall(program gpu.Program, vertexArray gpu.VertexArray, feedback []gpu.Buffer) (gpu.DrawCall, error) {
	if r.DrawCallErr != nil {
		return nil, r.DrawCallErr
	}
	p, ok := program.(*Program)
	if !ok {
		return nil, fmt.Errorf("gputest: foreign program %T", program)
	}
	va, ok := vertexArray.(*VertexArray)
	if !ok {
		return nil, fmt.Errorf("gputest: foreign vertex array %T", vertexArray)
	}
	d := &DrawCall{
		Program:     p,
		VertexArray: va,
		Feedback:    feedback,
		Uniforms:    make(map[string]any),
		rec:         r,
	}
	r.DrawCalls = append(r.DrawCalls, d)
	return d, nil
}

func (r *Recorder) BindUniformBuffer(binding uint32, buf gpu.Buffer) error {
	if r.BindErr != nil {
		return r.BindErr
	}
	b, ok := buf.(*Buffer)
	if !ok {
		return fmt.Errorf("gputest: foreign buffer %T", buf)
	}
	r.UniformBlocks[binding] = b
	return nil
}

func (r *Recorder) Apply(state gpu.State) {
	r.States = append(r.States, state)
}

func (r *Recorder) Clear(cr, cg, cb, ca float32) {
	r.Clears = append(r.Clears, [4]float32{cr, cg, cb, ca})
}

func (r *Recorder) Viewport(width, height int32) {
	r.ViewportSize = [2]int32{width, height}
}

// Framebuffer is a fake render target.
type Framebuffer struct {
	W, H  int32
	Binds int
}

func (f *Framebuffer) Bind()                       { f.Binds++ }
func (f *Framebuffer) Size() (width, height int32) { return f.W, f.H }
