package camera

import (
	"unsafe"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/go-gl/mathgl/mgl32"
)

// GPUViewUniform is the GPU-aligned representation of the group 0 view uniform buffer.
// Matches the WGSL `view_proj: mat4x4<f32>` binding of every generated variant.
// Size: 64 bytes.
type GPUViewUniform struct {
	ViewProj mgl32.Mat4 // offset 0: combined view-projection matrix, column-major
}

// Size returns the size of the GPUViewUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *GPUViewUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUViewUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUViewUniform) Marshal() []byte {
	return common.MatrixBytes(g.ViewProj)
}
