// Package scene draws the trips overlay: a point per trip start and a
// reference graticule, both projected through the shared camera uniforms.
package scene

import (
	"fmt"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/Faultbox/mapgl/internal/engine/debug"
	"github.com/Faultbox/mapgl/internal/gpu"
	"github.com/Faultbox/mapgl/internal/layer"
	"github.com/Faultbox/mapgl/internal/logger"
	"github.com/Faultbox/mapgl/internal/scene/shaders"
	"github.com/Faultbox/mapgl/internal/trips"
)

// Config contains scene configuration options.
type Config struct {
	// Radius of each trip point in meters.
	Radius float64
	// TripsCount caps the number of points drawn.
	TripsCount    int
	PointColor    [4]float32
	LineColor     [4]float32
	Background    [4]float32
	GraticuleStep float64
	ShowGraticule bool
}

// DefaultConfig returns a default scene configuration.
func DefaultConfig() Config {
	return Config{
		Radius:        5,
		TripsCount:    100000,
		PointColor:    [4]float32{0.5, 0.7, 0.9, 1},
		LineColor:     [4]float32{0.35, 0.35, 0.4, 1},
		GraticuleStep: 0.01,
		ShowGraticule: true,
	}
}

// mesh is a vertex buffer with the vertex array reading it.
type mesh struct {
	buffer gpu.Buffer
	va     gpu.VertexArray
}

func (m *mesh) delete() {
	if m == nil {
		return
	}
	m.va.Delete()
	m.buffer.Delete()
}

// Scene owns the overlay geometry and the layers that draw it.
type Scene struct {
	config  Config
	ctx     gpu.Context
	factory *layer.Factory
	log     *zap.Logger

	points      *mesh
	pointsLayer *layer.Layer
	pointCount  int32

	grid      *mesh
	gridLayer *layer.Layer
	bounds    orb.Bound

	// Meshes replaced under a live layer. They are freed once a frame has
	// drawn with their replacement.
	retired []*mesh
}

// New creates an empty scene drawing through factory.
func New(ctx gpu.Context, factory *layer.Factory, cfg Config) *Scene {
	return &Scene{
		config:  cfg,
		ctx:     ctx,
		factory: factory,
		log:     logger.Named("scene"),
	}
}

// Config returns the current configuration.
func (s *Scene) Config() Config {
	return s.config
}

// Bounds returns the area covered by the graticule.
func (s *Scene) Bounds() orb.Bound {
	return s.bounds
}

// PointCount returns how many trip points the next frame draws.
func (s *Scene) PointCount() int32 {
	if s.points == nil {
		return 0
	}
	return min(s.pointCount, int32(max(s.config.TripsCount, 0)))
}

// SetRadius changes the point radius in meters.
func (s *Scene) SetRadius(meters float64) {
	s.config.Radius = max(meters, 1)
}

// SetTripsCount caps the number of points drawn.
func (s *Scene) SetTripsCount(n int) {
	s.config.TripsCount = max(n, 0)
}

// ToggleGraticule shows or hides the graticule and reports the new state.
func (s *Scene) ToggleGraticule() bool {
	s.config.ShowGraticule = !s.config.ShowGraticule
	return s.config.ShowGraticule
}

// SetTrips uploads a point per trip start and covers the trips' extent with
// the graticule.
func (s *Scene) SetTrips(ts []trips.Trip) error {
	if len(ts) == 0 {
		return nil
	}

	positions := trips.Positions(ts)
	m, err := s.upload(positions, 2)
	if err != nil {
		return fmt.Errorf("uploading trip positions: %w", err)
	}

	if s.pointsLayer == nil || s.factory.Generation() == layer.Generation1 {
		// Generation 1 layers cannot swap vertex arrays, so each upload
		// gets a fresh layer.
		l, err := s.factory.CreateLayer(layer.Spec{
			VertexShader:   shaders.PointsVertexShader,
			FragmentShader: shaders.PointsFragmentShader,
			VertexArray:    m.va,
			Primitive:      layer.Set(gpu.Points),
			Uniforms: map[string]any{
				"size":  s.config.Radius,
				"color": s.config.PointColor,
			},
		})
		if err != nil {
			m.delete()
			return fmt.Errorf("creating points layer: %w", err)
		}
		release(s.pointsLayer)
		s.pointsLayer = l
		s.points.delete()
	} else if s.points != nil {
		s.retired = append(s.retired, s.points)
	}
	s.points = m
	s.pointCount = int32(len(ts))

	s.log.Info("trips uploaded", zap.Int("trips", len(ts)))
	return s.SetBounds(trips.Bound(ts))
}

// SetBounds rebuilds the graticule over b padded by one step, with the
// outline of b on top.
func (s *Scene) SetBounds(b orb.Bound) error {
	step := s.config.GraticuleStep
	if step <= 0 {
		return nil
	}
	s.bounds = b
	area := b.Pad(step)

	lines := debug.Graticule(area, step)
	lines = append(lines, debug.Outline(b)...)
	vertices := debug.LineVertices(lines)
	if len(vertices) == 0 {
		return nil
	}

	m, err := s.upload(vertices, 3)
	if err != nil {
		return fmt.Errorf("uploading graticule: %w", err)
	}

	if s.gridLayer == nil || s.factory.Generation() == layer.Generation1 {
		l, err := s.factory.CreateLayer(layer.Spec{
			VertexShader:   shaders.LinesVertexShader,
			FragmentShader: shaders.LinesFragmentShader,
			VertexArray:    m.va,
			Primitive:      layer.Set(gpu.Lines),
			Uniforms:       map[string]any{"color": s.config.LineColor},
		})
		if err != nil {
			m.delete()
			return fmt.Errorf("creating graticule layer: %w", err)
		}
		release(s.gridLayer)
		s.gridLayer = l
		s.grid.delete()
	} else if s.grid != nil {
		s.retired = append(s.retired, s.grid)
	}
	s.grid = m

	s.log.Debug("graticule built", zap.Int("lines", len(lines)), zap.Float64("step", step))
	return nil
}

func release(l *layer.Layer) {
	if l != nil {
		l.Release()
	}
}

func (s *Scene) upload(vertices []float32, size int32) (*mesh, error) {
	buf, err := s.ctx.CreateBuffer(gpu.ArrayBuffer, gpu.Float32Bytes(vertices), gpu.StaticDraw)
	if err != nil {
		return nil, err
	}
	va, err := s.ctx.CreateVertexArray(int32(len(vertices))/size, []gpu.Attribute{
		{Location: 0, Buffer: buf, Size: size},
	})
	if err != nil {
		buf.Delete()
		return nil, err
	}
	return &mesh{buffer: buf, va: va}, nil
}

// Render clears the target and draws the graticule and the trip points.
// A nil target draws to the window.
func (s *Scene) Render(target gpu.Framebuffer) error {
	if target != nil {
		state := gpu.DefaultState()
		state.Framebuffer = target
		s.ctx.Apply(state)
		// Leave the window bound for the next frame's clear.
		defer s.ctx.Apply(gpu.DefaultState())
	}
	bg := s.config.Background
	s.ctx.Clear(bg[0], bg[1], bg[2], bg[3])

	gen2 := s.factory.Generation() == layer.Generation2

	if s.gridLayer != nil && s.config.ShowGraticule {
		o := layer.Override{Uniforms: map[string]any{"color": s.config.LineColor}}
		if gen2 {
			o.VertexArray = layer.Set(s.grid.va)
		}
		if target != nil {
			o.Framebuffer = layer.Set(target)
		}
		if err := s.gridLayer.Render(o); err != nil {
			return fmt.Errorf("graticule: %w", err)
		}
	}

	if n := s.PointCount(); n > 0 {
		o := layer.Override{
			Primitive: layer.Set(gpu.Points),
			Count:     layer.Set(n),
			Uniforms: map[string]any{
				"size":  s.config.Radius,
				"color": s.config.PointColor,
			},
		}
		if gen2 {
			o.VertexArray = layer.Set(s.points.va)
		}
		if target != nil {
			o.Framebuffer = layer.Set(target)
		}
		if err := s.pointsLayer.Render(o); err != nil {
			return fmt.Errorf("trip points: %w", err)
		}
	}

	for _, m := range s.retired {
		m.delete()
	}
	s.retired = nil
	return nil
}

// Destroy releases the scene geometry and layers.
func (s *Scene) Destroy() {
	release(s.pointsLayer)
	release(s.gridLayer)
	s.points.delete()
	s.grid.delete()
	for _, m := range s.retired {
		m.delete()
	}
	s.points, s.grid, s.retired = nil, nil, nil
	s.pointsLayer, s.gridLayer = nil, nil
}
