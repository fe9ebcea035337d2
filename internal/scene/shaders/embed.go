// Package shaders provides embedded GLSL shader sources for the map scene.
//
// Vertex shaders call the projection library, which is injected after the
// version line when a layer is created.
package shaders

import _ "embed"

// PointsVertexShader sizes each point in meters at its projected position.
//
//go:embed points.vert
var PointsVertexShader string

// PointsFragmentShader draws round points in a flat color.
//
//go:embed points.frag
var PointsFragmentShader string

// LinesVertexShader projects lng/lat line vertices.
//
//go:embed lines.vert
var LinesVertexShader string

// LinesFragmentShader draws lines in a flat color.
//
//go:embed lines.frag
var LinesFragmentShader string
