package model

import (
	"encoding/binary"
	"math"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"
)

// ComponentType is the scalar type of an accessor's components.
type ComponentType int

const (
	ComponentByte          ComponentType = 5120
	ComponentUnsignedByte  ComponentType = 5121
	ComponentShort         ComponentType = 5122
	ComponentUnsignedShort ComponentType = 5123
	ComponentUnsignedInt   ComponentType = 5125
	ComponentFloat         ComponentType = 5126
)

// Size returns the component size in bytes, or 0 for an unknown type.
func (c ComponentType) Size() int {
	switch c {
	case ComponentByte, ComponentUnsignedByte:
		return 1
	case ComponentShort, ComponentUnsignedShort:
		return 2
	case ComponentUnsignedInt, ComponentFloat:
		return 4
	}
	return 0
}

// AccessorType is the shape of one accessor element.
type AccessorType string

const (
	AccessorScalar AccessorType = "SCALAR"
	AccessorVec2   AccessorType = "VEC2"
	AccessorVec3   AccessorType = "VEC3"
	AccessorVec4   AccessorType = "VEC4"
	AccessorMat2   AccessorType = "MAT2"
	AccessorMat3   AccessorType = "MAT3"
	AccessorMat4   AccessorType = "MAT4"
)

// Components returns the number of components per element, or 0 for an unknown shape.
func (t AccessorType) Components() int {
	switch t {
	case AccessorScalar:
		return 1
	case AccessorVec2:
		return 2
	case AccessorVec3:
		return 3
	case AccessorVec4, AccessorMat2:
		return 4
	case AccessorMat3:
		return 9
	case AccessorMat4:
		return 16
	}
	return 0
}

// AccessorDescriptor is the accessors[] entry of the scene description.
type AccessorDescriptor struct {
	Count         int
	ComponentType ComponentType
	Type          AccessorType
	ByteOffset    int
}

// Accessor is a typed, strided view of a BufferView.
type Accessor struct {
	index         int
	view          *BufferView
	count         int
	componentType ComponentType
	accessorType  AccessorType
	byteOffset    int
}

// NewAccessor creates an accessor and checks that its elements lie inside the view.
//
// Parameters:
//   - index: the accessor's index in the description
//   - view: the view the accessor reads
//   - desc: the accessor descriptor
//
// Returns:
//   - *Accessor: the accessor
//   - error: a FormatError for an unknown component type or shape, a negative count or an out of range element
func NewAccessor(index int, view *BufferView, desc AccessorDescriptor) (*Accessor, error) {
	if desc.ComponentType.Size() == 0 {
		return nil, common.NewFormatError("accessor.component_type", index, "unknown component type %d", desc.ComponentType)
	}
	if desc.Type.Components() == 0 {
		return nil, common.NewFormatError("accessor.type", index, "unknown accessor type %q", desc.Type)
	}
	if desc.Count < 0 || desc.ByteOffset < 0 {
		return nil, common.NewFormatError("accessor.range", index, "negative count %d or offset %d", desc.Count, desc.ByteOffset)
	}

	a := &Accessor{
		index:         index,
		view:          view,
		count:         desc.Count,
		componentType: desc.ComponentType,
		accessorType:  desc.Type,
		byteOffset:    desc.ByteOffset,
	}
	// compared by division so a huge count or offset cannot wrap past the check
	if a.byteOffset > view.ByteLength() || a.count > (view.ByteLength()-a.byteOffset)/a.ByteStride() {
		return nil, common.NewFormatError("accessor.range", index,
			"offset %d + %d elements of %d bytes exceeds buffer view %d of %d bytes",
			a.byteOffset, a.count, a.ByteStride(), view.Index(), view.ByteLength())
	}
	return a, nil
}

// Index returns the accessor's index in the description.
func (a *Accessor) Index() int { return a.index }

// View returns the buffer view the accessor reads.
func (a *Accessor) View() *BufferView { return a.view }

// Count returns the number of elements.
func (a *Accessor) Count() int { return a.count }

// ComponentType returns the component type.
func (a *Accessor) ComponentType() ComponentType { return a.componentType }

// Type returns the element shape.
func (a *Accessor) Type() AccessorType { return a.accessorType }

// ByteOffset returns the offset of the first element inside the view.
func (a *Accessor) ByteOffset() int { return a.byteOffset }

// ElementSize returns the packed size of one element in bytes.
func (a *Accessor) ElementSize() int {
	return a.componentType.Size() * a.accessorType.Components()
}

// ByteStride returns the distance between elements: the view stride, or the element size when the
// view is tightly packed or declares a smaller stride.
func (a *Accessor) ByteStride() int {
	return max(a.ElementSize(), a.view.ByteStride())
}

// ByteLength returns count * ByteStride.
func (a *Accessor) ByteLength() int {
	return a.count * a.ByteStride()
}

// IndexFormat maps an index accessor's component type to the GPU index format.
//
// Returns:
//   - wgpu.IndexFormat: uint16 for unsigned short, uint32 for unsigned int
//   - error: a FormatError for any other component type
func (a *Accessor) IndexFormat() (wgpu.IndexFormat, error) {
	switch a.componentType {
	case ComponentUnsignedShort:
		return wgpu.IndexFormatUint16, nil
	case ComponentUnsignedInt:
		return wgpu.IndexFormatUint32, nil
	}
	return wgpu.IndexFormatUndefined, common.NewFormatError("accessor.index_format", a.index,
		"component type %d cannot be used for indices", a.componentType)
}

// Float32s reads element i of a float accessor.
//
// Parameters:
//   - i: the element index
//
// Returns:
//   - []float32: the element's components
//   - error: error for a non-float accessor or an index out of range
func (a *Accessor) Float32s(i int) ([]float32, error) {
	if a.componentType != ComponentFloat {
		return nil, errors.Errorf("accessor %d: component type %d is not float", a.index, a.componentType)
	}
	if i < 0 || i >= a.count {
		return nil, errors.Errorf("accessor %d: element %d out of range [0,%d)", a.index, i, a.count)
	}

	base := a.byteOffset + i*a.ByteStride()
	out := make([]float32, a.accessorType.Components())
	for c := range out {
		out[c] = math.Float32frombits(binary.LittleEndian.Uint32(a.view.Data()[base+c*4:]))
	}
	return out, nil
}
