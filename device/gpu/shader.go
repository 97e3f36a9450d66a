// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// viewportClearWGSL fills the bound viewport with a uniform color. A
// clear load op wipes the whole attachment, so viewports smaller than
// the attachment are erased with this draw instead.
const viewportClearWGSL = `
struct ClearUniforms {
    color: vec4<f32>,
}

@group(0) @binding(0)
var<uniform> uniforms: ClearUniforms;

@vertex
fn vs_main(@location(0) position: vec2<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(position, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return uniforms.color;
}
`

// Entry points of viewportClearWGSL.
const (
	clearVertexEntry   = "vs_main"
	clearFragmentEntry = "fs_main"
)

// clearQuad covers clip space with two triangles. The viewport and
// scissor restrict it to the erased rectangle.
var clearQuad = [...]float32{
	-1, -1, 1, -1, 1, 1,
	-1, -1, 1, 1, -1, 1,
}

// ViewportClear is the draw that erases a viewport smaller than the
// attachment. The host builds a pipeline from Shader (or SPIRV when no
// HAL device was attached), binds Uniforms at group 0 binding 0, sets
// viewport and scissor to Pass.Viewport and draws Vertices as a triangle
// list of vec2<f32> positions at location 0.
type ViewportClear struct {
	// Shader is the module created on the HAL device, nil without one.
	Shader hal.ShaderModule

	// SPIRV is the compiled clear shader. Shared; do not modify.
	SPIRV []uint32

	VertexEntry   string
	FragmentEntry string

	Color    gputypes.Color
	Uniforms []byte
	Vertices []float32
}

// viewportClearLocked builds the clear draw for one pass.
func (d *Device) viewportClearLocked(c gputypes.Color) *ViewportClear {
	return &ViewportClear{
		Shader:        d.shaderModule,
		SPIRV:         d.spirv,
		VertexEntry:   clearVertexEntry,
		FragmentEntry: clearFragmentEntry,
		Color:         c,
		Uniforms:      clearUniforms(c),
		Vertices:      append([]float32(nil), clearQuad[:]...),
	}
}

// clearUniforms encodes ClearUniforms: one little-endian vec4<f32>.
func clearUniforms(c gputypes.Color) []byte {
	buf := make([]byte, 16)
	for i, v := range [...]float64{c.R, c.G, c.B, c.A} {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(float32(v)))
	}
	return buf
}

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic uint32 = 0x07230203

// compileSPIRV compiles WGSL source to SPIR-V words.
func compileSPIRV(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("gpu: failed to compile shader: %w", err)
	}
	if len(spirvBytes) < 4 || len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("gpu: invalid SPIR-V length %d", len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	if words[0] != spirvMagic {
		return nil, fmt.Errorf("gpu: invalid SPIR-V magic %#x", words[0])
	}
	return words, nil
}
