package material

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUMaterialParams is the uniform block bound at group 2, binding 0.
// Matches the WGSL MaterialParams struct layout exactly. Size: 48 bytes.
type GPUMaterialParams struct {
	BaseColorFactor [4]float32 // offset 0: linear RGBA base color (16 bytes)
	EmissiveFactor  [4]float32 // offset 16: RGB emissive, w reserved as 1 (16 bytes)
	MetallicFactor  float32    // offset 32
	RoughnessFactor float32    // offset 36
	_               [2]float32 // offset 40: padding to the 16-byte struct alignment
}

// Size returns the size of the GPUMaterialParams struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUMaterialParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUMaterialParams struct into a little endian buffer for GPU upload.
//
// Returns:
//   - []byte: 48-byte buffer with zeroed padding.
func (g *GPUMaterialParams) Marshal() []byte {
	buf := make([]byte, 48)
	for i, v := range g.BaseColorFactor {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	for i, v := range g.EmissiveFactor {
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(v))
	}
	binary.LittleEndian.PutUint32(buf[32:36], math.Float32bits(g.MetallicFactor))
	binary.LittleEndian.PutUint32(buf[36:40], math.Float32bits(g.RoughnessFactor))
	return buf
}
