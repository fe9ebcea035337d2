// Package shaderlib holds the GLSL projection library that every layer's
// vertex shader is compiled with.
//
// The library declares the ProjectionUniforms block (see package ubo for its
// byte layout) and these entry points:
//
//	float project_size(float meters)
//	vec4  project_position(vec4 position)
//	vec4  project_position_to_clipspace(vec3 position, vec3 offset)
//	vec4  project_position_to_clipspace(vec3 position)
//
// Positions are [longitude, latitude, meters]; offsets are in world pixels.
package shaderlib

import (
	_ "embed"
	"strings"
)

const (
	// BlockName is the uniform block name declared by the library.
	BlockName = "ProjectionUniforms"
	// BlockBinding is the uniform buffer binding point the block is bound to.
	BlockBinding = 0
)

//go:embed projection.glsl
var projectionGLSL string

// Source returns the raw library text.
func Source() string {
	return projectionGLSL
}

const versionPragma = "#version"

// Inject inserts the library into a vertex shader source.
//
// When src, ignoring leading whitespace, starts with a #version line the
// library goes right after that line; a version line without a trailing
// newline gets one. Otherwise the library is prepended.
func Inject(src string) string {
	trimmed := strings.TrimLeft(src, " \t\r\n")
	if !strings.HasPrefix(trimmed, versionPragma) {
		return projectionGLSL + src
	}

	start := len(src) - len(trimmed)
	nl := strings.IndexByte(trimmed, '\n')
	if nl < 0 {
		return src + "\n" + projectionGLSL
	}
	split := start + nl + 1
	return src[:split] + projectionGLSL + src[split:]
}
