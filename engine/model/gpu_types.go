package model

import (
	"unsafe"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/go-gl/mathgl/mgl32"
)

// GPUNodeParams is the per-node uniform bound at group 1, binding 0.
// Matches the WGSL node_transform mat4x4<f32> exactly. Size: 64 bytes, column major.
type GPUNodeParams struct {
	Transform mgl32.Mat4 // offset 0: world transform (64 bytes)
}

// Size returns the size of the GPUNodeParams struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUNodeParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUNodeParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte little endian buffer.
func (g *GPUNodeParams) Marshal() []byte {
	return common.MatrixBytes(g.Transform)
}
