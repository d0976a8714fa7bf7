package renderer

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// CommandType identifies a recorded render bundle command.
type CommandType int

const (
	CommandSetPipeline CommandType = iota
	CommandSetBindGroup
	CommandSetVertexBuffer
	CommandSetIndexBuffer
	CommandDraw
	CommandDrawIndexed
)

func (c CommandType) String() string {
	switch c {
	case CommandSetPipeline:
		return "SetPipeline"
	case CommandSetBindGroup:
		return "SetBindGroup"
	case CommandSetVertexBuffer:
		return "SetVertexBuffer"
	case CommandSetIndexBuffer:
		return "SetIndexBuffer"
	case CommandDraw:
		return "Draw"
	case CommandDrawIndexed:
		return "DrawIndexed"
	}
	return fmt.Sprintf("CommandType(%d)", int(c))
}

// Command is one recorded render bundle command. Only the fields relevant to Type are set.
type Command struct {
	Type CommandType

	Pipeline *RenderPipeline

	Group     uint32
	BindGroup *BindGroup

	Slot        uint32
	Buffer      *Buffer
	Offset      uint64
	Size        uint64
	IndexFormat wgpu.IndexFormat

	Count uint32
}

// bundleEncoderBackend is the backend half of a RenderBundleEncoder.
type bundleEncoderBackend interface {
	SetPipeline(p *RenderPipeline)
	SetBindGroup(group uint32, bg *BindGroup)
	SetVertexBuffer(slot uint32, buf *Buffer, offset, size uint64)
	SetIndexBuffer(buf *Buffer, format wgpu.IndexFormat, offset, size uint64)
	Draw(vertexCount uint32)
	DrawIndexed(indexCount uint32)
	Finish(label string) (*wgpu.RenderBundle, func(), error)
}

// RenderBundleEncoder records draw commands into an immutable RenderBundle.
// Validation errors are deferred to Finish, matching WebGPU encoder semantics.
type RenderBundleEncoder struct {
	label    string
	backend  bundleEncoderBackend
	commands []Command
	err      error
	finished bool

	pipelineSet bool
	indexSet    bool

	onFinish func()
}

func (e *RenderBundleEncoder) fail(format string, args ...any) {
	if e.err == nil {
		e.err = fmt.Errorf("render bundle %q: "+format, append([]any{e.label}, args...)...)
	}
}

// SetPipeline sets the pipeline for subsequent draws.
func (e *RenderBundleEncoder) SetPipeline(p *RenderPipeline) {
	if p == nil {
		e.fail("nil pipeline")
		return
	}
	e.pipelineSet = true
	e.commands = append(e.commands, Command{Type: CommandSetPipeline, Pipeline: p})
	e.backend.SetPipeline(p)
}

// SetBindGroup binds bg at the given group index.
func (e *RenderBundleEncoder) SetBindGroup(group uint32, bg *BindGroup) {
	if bg == nil {
		e.fail("nil bind group at group %d", group)
		return
	}
	e.commands = append(e.commands, Command{Type: CommandSetBindGroup, Group: group, BindGroup: bg})
	e.backend.SetBindGroup(group, bg)
}

// SetVertexBuffer binds the byte range [offset, offset+size) of buf to a vertex slot.
func (e *RenderBundleEncoder) SetVertexBuffer(slot uint32, buf *Buffer, offset, size uint64) {
	if buf == nil {
		e.fail("nil vertex buffer at slot %d", slot)
		return
	}
	if offset+size > buf.size {
		e.fail("vertex slot %d range [%d,%d) exceeds buffer size %d", slot, offset, offset+size, buf.size)
		return
	}
	e.commands = append(e.commands, Command{Type: CommandSetVertexBuffer, Slot: slot, Buffer: buf, Offset: offset, Size: size})
	e.backend.SetVertexBuffer(slot, buf, offset, size)
}

// SetIndexBuffer binds the byte range [offset, offset+size) of buf as index data.
func (e *RenderBundleEncoder) SetIndexBuffer(buf *Buffer, format wgpu.IndexFormat, offset, size uint64) {
	if buf == nil {
		e.fail("nil index buffer")
		return
	}
	if offset+size > buf.size {
		e.fail("index range [%d,%d) exceeds buffer size %d", offset, offset+size, buf.size)
		return
	}
	e.indexSet = true
	e.commands = append(e.commands, Command{Type: CommandSetIndexBuffer, Buffer: buf, IndexFormat: format, Offset: offset, Size: size})
	e.backend.SetIndexBuffer(buf, format, offset, size)
}

// Draw records a non-indexed draw of vertexCount vertices.
func (e *RenderBundleEncoder) Draw(vertexCount uint32) {
	if !e.pipelineSet {
		e.fail("draw without a pipeline")
		return
	}
	e.commands = append(e.commands, Command{Type: CommandDraw, Count: vertexCount})
	e.backend.Draw(vertexCount)
}

// DrawIndexed records an indexed draw of indexCount indices.
func (e *RenderBundleEncoder) DrawIndexed(indexCount uint32) {
	if !e.pipelineSet {
		e.fail("indexed draw without a pipeline")
		return
	}
	if !e.indexSet {
		e.fail("indexed draw without an index buffer")
		return
	}
	e.commands = append(e.commands, Command{Type: CommandDrawIndexed, Count: indexCount})
	e.backend.DrawIndexed(indexCount)
}

// Finish ends recording and returns the immutable bundle.
// The encoder cannot be reused afterwards.
//
// Returns:
//   - *RenderBundle: the recorded bundle
//   - error: the first recording error, or a backend failure
func (e *RenderBundleEncoder) Finish() (*RenderBundle, error) {
	if e.finished {
		return nil, fmt.Errorf("render bundle %q: encoder already finished", e.label)
	}
	e.finished = true
	if e.err != nil {
		return nil, e.err
	}

	raw, release, err := e.backend.Finish(e.label)
	if err != nil {
		return nil, err
	}
	if e.onFinish != nil {
		e.onFinish()
	}

	return &RenderBundle{
		resource: resource{label: e.label, release: release},
		commands: e.commands,
		raw:      raw,
	}, nil
}
