package shader

import _ "embed"

// SkyVertexShader transforms textured rigging vertices.
//
//go:embed glsl/sky.vert
var SkyVertexShader string

// SkyFragmentShader samples the sky atlas, or paints a flat color for the
// backing rigging.
//
//go:embed glsl/sky.frag
var SkyFragmentShader string

// LineVertexShader transforms colored line vertices.
//
//go:embed glsl/line.vert
var LineVertexShader string

//go:embed glsl/line.frag
var LineFragmentShader string
