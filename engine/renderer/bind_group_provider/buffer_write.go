package bind_group_provider

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-glb/engine/renderer"
)

// BufferWrite describes a single GPU buffer write operation targeting a specific binding
// on a BindGroupProvider at a given byte offset.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// ApplyWrites performs the writes in order and stops at the first failure.
//
// Parameters:
//   - device: the renderer owning the buffers
//   - writes: the writes to perform
//
// Returns:
//   - error: error naming the provider whose write failed
func ApplyWrites(device renderer.Renderer, writes []BufferWrite) error {
	for _, w := range writes {
		if err := w.Provider.Write(device, w.Binding, w.Offset, w.Data); err != nil {
			return fmt.Errorf("write to %s binding %d: %w", w.Provider.Label(), w.Binding, err)
		}
	}
	return nil
}
