package model

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"
)

// ErrUsageSealed is returned by AddUsage once usage discovery for a view has ended.
var ErrUsageSealed = errors.New("buffer view usage is sealed")

// BufferViewDescriptor is the bufferViews[] entry of the scene description.
type BufferViewDescriptor struct {
	Buffer     int
	ByteOffset int
	ByteLength int
	ByteStride int
}

// BufferView is an untyped window into the binary chunk. Several accessors may read the same view,
// each declaring the GPU usage it needs; the union of those usages is allocated once on upload.
type BufferView struct {
	index      int
	data       []byte
	byteStride int

	usage  wgpu.BufferUsage
	sealed bool

	gpu *renderer.Buffer
}

// NewBufferView creates a view over bin. The view keeps a sub-slice of bin and copies nothing.
//
// Parameters:
//   - index: the view's index in the description
//   - bin: the binary chunk of the container
//   - desc: the view descriptor
//
// Returns:
//   - *BufferView: the view
//   - error: a ReferenceError for a buffer other than 0, a FormatError for a range or stride violation
func NewBufferView(index int, bin []byte, desc BufferViewDescriptor) (*BufferView, error) {
	if err := common.CheckIndex("buffer_view.buffer", index, desc.Buffer, 1); err != nil {
		return nil, err
	}
	if desc.ByteOffset < 0 || desc.ByteLength < 0 || desc.ByteOffset > len(bin) || desc.ByteLength > len(bin)-desc.ByteOffset {
		return nil, common.NewFormatError("buffer_view.range", index,
			"offset %d + length %d exceeds binary chunk of %d bytes", desc.ByteOffset, desc.ByteLength, len(bin))
	}
	if desc.ByteStride != 0 && (desc.ByteStride < 4 || desc.ByteStride > 252 || desc.ByteStride%4 != 0) {
		return nil, common.NewFormatError("buffer_view.stride", index, "stride %d is not a multiple of 4 in [4, 252]", desc.ByteStride)
	}

	return &BufferView{
		index:      index,
		data:       bin[desc.ByteOffset : desc.ByteOffset+desc.ByteLength],
		byteStride: desc.ByteStride,
	}, nil
}

// Index returns the view's index in the description.
func (v *BufferView) Index() int { return v.index }

// Data returns the view's bytes, a sub-slice of the binary chunk.
func (v *BufferView) Data() []byte { return v.data }

// ByteLength returns the view length in bytes.
func (v *BufferView) ByteLength() int { return len(v.data) }

// ByteStride returns the declared stride, 0 when tightly packed.
func (v *BufferView) ByteStride() int { return v.byteStride }

// Usage returns the union of all usages declared so far.
func (v *BufferView) Usage() wgpu.BufferUsage { return v.usage }

// Sealed reports whether usage discovery has ended.
func (v *BufferView) Sealed() bool { return v.sealed }

// AddUsage adds usage flags to the view.
//
// Parameters:
//   - usage: the flags a consumer needs
//
// Returns:
//   - error: ErrUsageSealed after Seal
func (v *BufferView) AddUsage(usage wgpu.BufferUsage) error {
	if v.sealed {
		return errors.Wrapf(ErrUsageSealed, "buffer view %d", v.index)
	}
	v.usage |= usage
	return nil
}

// Seal ends usage discovery. The usage is fixed from here on.
func (v *BufferView) Seal() {
	v.sealed = true
}

// NeedsUpload reports whether the view is used by the GPU and has no buffer yet.
func (v *BufferView) NeedsUpload() bool {
	return v.usage != 0 && v.gpu == nil
}

// GPU returns the device buffer, or nil if the view has no usage or was not uploaded.
func (v *BufferView) GPU() *renderer.Buffer { return v.gpu }

// Upload allocates one buffer with the view's usage plus CopyDst, sized to a multiple of 4, and
// copies the view into it with zero padding. Views without usage are skipped; later calls are no-ops.
//
// Parameters:
//   - device: the renderer to upload to
//
// Returns:
//   - error: error if the view is not sealed, or a ResourceCreationError if the device fails
func (v *BufferView) Upload(device renderer.Renderer) error {
	if !v.NeedsUpload() {
		return nil
	}
	if !v.sealed {
		return errors.Errorf("buffer view %d: upload before usage discovery finished", v.index)
	}

	size := common.AlignTo(len(v.data), 4)
	buf, err := device.CreateBuffer(renderer.BufferDescriptor{
		Label: fmt.Sprintf("Buffer View %d", v.index),
		Size:  uint64(size),
		Usage: v.usage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return common.NewResourceCreationError("buffer_view", v.index, err)
	}

	padded := make([]byte, size)
	copy(padded, v.data)
	if err := device.WriteBuffer(buf, 0, padded); err != nil {
		buf.Release()
		return common.NewResourceCreationError("buffer_view", v.index, err)
	}
	v.gpu = buf
	return nil
}

// Release releases the device buffer.
func (v *BufferView) Release() {
	if v.gpu != nil {
		v.gpu.Release()
		v.gpu = nil
	}
}
