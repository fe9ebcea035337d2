package glctx

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/mapgl/internal/engine/shader"
	"github.com/Faultbox/mapgl/internal/gpu"
	"github.com/Faultbox/mapgl/pkg/math"
)

// Program is a linked GL program.
type Program struct {
	id uint32
}

// UniformBlock binds the named block to a binding point.
func (p *Program) UniformBlock(name string, binding uint32) error {
	err := shader.BindUniformBlock(p.id, name, binding)
	if errors.Is(err, shader.ErrBlockNotFound) {
		return fmt.Errorf("%w: %w", gpu.ErrBlockNotFound, err)
	}
	return err
}

// Delete releases the program.
func (p *Program) Delete() {
	if p.id != 0 {
		gl.DeleteProgram(p.id)
		p.id = 0
	}
}

// Buffer is a GL buffer object.
type Buffer struct {
	id     uint32
	target uint32
	usage  uint32
	size   int
}

func (b *Buffer) alloc(data []byte) {
	gl.BindBuffer(b.target, b.id)
	if len(data) > 0 {
		gl.BufferData(b.target, len(data), gl.Ptr(data), b.usage)
	} else {
		gl.BufferData(b.target, 0, nil, b.usage)
	}
	gl.BindBuffer(b.target, 0)
	b.size = len(data)
}

// Size returns the allocated size in bytes.
func (b *Buffer) Size() int {
	return b.size
}

// Update replaces the contents, reallocating when data is larger.
func (b *Buffer) Update(data []byte) error {
	if len(data) > b.size {
		b.alloc(data)
	} else if len(data) > 0 {
		gl.BindBuffer(b.target, b.id)
		gl.BufferSubData(b.target, 0, len(data), gl.Ptr(data))
		gl.BindBuffer(b.target, 0)
	}
	return checkError("updating buffer")
}

// Delete releases the buffer.
func (b *Buffer) Delete() {
	if b.id != 0 {
		gl.DeleteBuffers(1, &b.id)
		b.id = 0
	}
}

// VertexArray is a GL vertex array object.
type VertexArray struct {
	id    uint32
	count int32
}

// Count is the number of vertices.
func (v *VertexArray) Count() int32 {
	return v.count
}

// Delete releases the vertex array. Attribute buffers stay alive.
func (v *VertexArray) Delete() {
	if v.id != 0 {
		gl.DeleteVertexArrays(1, &v.id)
		v.id = 0
	}
}

// DrawCall is a program bound to a vertex array.
type DrawCall struct {
	program     *Program
	vertexArray *VertexArray
	feedback    []*Buffer
	locations   map[string]int32
}

func (d *DrawCall) location(name string) int32 {
	loc, ok := d.locations[name]
	if !ok {
		loc = shader.UniformLocation(d.program.id, name)
		d.locations[name] = loc
	}
	return loc
}

// Uniform sets a uniform on the program. Unknown names are ignored like GL
// ignores location -1.
func (d *DrawCall) Uniform(name string, value any) error {
	gl.UseProgram(d.program.id)
	loc := d.location(name)

	switch v := value.(type) {
	case float32:
		gl.Uniform1f(loc, v)
	case float64:
		gl.Uniform1f(loc, float32(v))
	case int:
		gl.Uniform1i(loc, int32(v))
	case int32:
		gl.Uniform1i(loc, v)
	case uint32:
		gl.Uniform1ui(loc, v)
	case bool:
		var i int32
		if v {
			i = 1
		}
		gl.Uniform1i(loc, i)
	case [2]float32:
		gl.Uniform2f(loc, v[0], v[1])
	case [3]float32:
		gl.Uniform3f(loc, v[0], v[1], v[2])
	case [4]float32:
		gl.Uniform4f(loc, v[0], v[1], v[2], v[3])
	case [16]float32:
		m := math.Mat4(v)
		gl.UniformMatrix4fv(loc, 1, false, m.Ptr())
	default:
		return fmt.Errorf("%w: %s is %T", gpu.ErrUnsupportedUniform, name, value)
	}
	return checkError("setting uniform " + name)
}

// Draw issues the draw, as a transform feedback pass when feedback buffers
// are attached.
func (d *DrawCall) Draw(primitive gpu.Primitive, count, instances int32) error {
	mode := primitiveMode(primitive)
	gl.UseProgram(d.program.id)
	gl.BindVertexArray(d.vertexArray.id)
	defer gl.BindVertexArray(0)

	if len(d.feedback) > 0 {
		tfMode, err := feedbackMode(primitive)
		if err != nil {
			return err
		}
		for i, b := range d.feedback {
			gl.BindBufferBase(gl.TRANSFORM_FEEDBACK_BUFFER, uint32(i), b.id)
		}
		gl.BeginTransformFeedback(tfMode)
		defer func() {
			gl.EndTransformFeedback()
			for i := range d.feedback {
				gl.BindBufferBase(gl.TRANSFORM_FEEDBACK_BUFFER, uint32(i), 0)
			}
		}()
	}

	if instances > 1 {
		gl.DrawArraysInstanced(mode, 0, count, instances)
	} else {
		gl.DrawArrays(mode, 0, count)
	}
	return checkError("draw " + primitive.String())
}

// Delete releases nothing on the GPU; the program and vertex array belong to
// their creators.
func (d *DrawCall) Delete() {
	d.locations = nil
}
