package common

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// IdentityRotation is the unit quaternion (x, y, z, w) used when a node omits its rotation.
var IdentityRotation = [4]float32{0, 0, 0, 1}

// IdentityScale is the scale used when a node omits its scale.
var IdentityScale = [3]float32{1, 1, 1}

// AlignTo rounds n up to the nearest multiple of align.
// An align of 0 or 1 returns n unchanged.
//
// Parameters:
//   - n: the byte offset or length to round up
//   - align: the alignment in bytes
//
// Returns:
//   - int: the smallest multiple of align that is >= n
func AlignTo(n, align int) int {
	if align <= 1 {
		return n
	}
	return (n + align - 1) / align * align
}

// ComposeTRS builds a local transform from a rotation quaternion, a translation and a scale.
// The product is R * T * S, so translation and scale are applied in the rotated frame.
//
// Parameters:
//   - rotation: unit quaternion as (x, y, z, w)
//   - translation: translation vector
//   - scale: per-axis scale factors
//
// Returns:
//   - mgl32.Mat4: the composed column-major matrix
func ComposeTRS(rotation [4]float32, translation, scale [3]float32) mgl32.Mat4 {
	q := mgl32.Quat{W: rotation[3], V: mgl32.Vec3{rotation[0], rotation[1], rotation[2]}}
	r := q.Mat4()
	t := mgl32.Translate3D(translation[0], translation[1], translation[2])
	s := mgl32.Scale3D(scale[0], scale[1], scale[2])
	return r.Mul4(t).Mul4(s)
}

// MatrixBytes serializes a column-major 4x4 matrix into 64 little-endian bytes for GPU upload.
//
// Parameters:
//   - m: the matrix to serialize
//
// Returns:
//   - []byte: 64-byte buffer
func MatrixBytes(m mgl32.Mat4) []byte {
	buf := make([]byte, 64)
	for i, v := range m {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(v))
	}
	return buf
}

// ApproxEqualMat4 reports whether two matrices are element-wise equal within epsilon.
//
// Parameters:
//   - a, b: matrices to compare
//   - epsilon: maximum allowed absolute difference per element
//
// Returns:
//   - bool: true if every element differs by at most epsilon
func ApproxEqualMat4(a, b mgl32.Mat4, epsilon float32) bool {
	for i := range a {
		d := a[i] - b[i]
		if d < -epsilon || d > epsilon {
			return false
		}
	}
	return true
}
