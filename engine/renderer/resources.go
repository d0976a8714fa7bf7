package renderer

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// resource carries the fields shared by every GPU handle.
type resource struct {
	label   string
	release func()
}

// Label returns the debug label the resource was created with.
func (r *resource) Label() string {
	if r == nil {
		return ""
	}
	return r.label
}

// Release frees the backend object. Calling it more than once is a no-op.
func (r *resource) Release() {
	if r == nil || r.release == nil {
		return
	}
	r.release()
	r.release = nil
}

// Buffer is a GPU-resident byte buffer with a fixed size and usage.
type Buffer struct {
	resource
	size  uint64
	usage wgpu.BufferUsage

	raw *wgpu.Buffer
	// shadow mirrors the buffer contents on backends without a real device.
	shadow []byte
}

// Size returns the allocated size in bytes.
func (b *Buffer) Size() uint64 { return b.size }

// Usage returns the usage flags the buffer was allocated with.
func (b *Buffer) Usage() wgpu.BufferUsage { return b.usage }

// Contents returns the CPU-side copy of the buffer, or nil when the backend keeps none.
func (b *Buffer) Contents() []byte { return b.shadow }

// Texture is a 2D sampleable texture together with its default view.
type Texture struct {
	resource
	width, height uint32
	format        wgpu.TextureFormat

	raw  *wgpu.Texture
	view *wgpu.TextureView
}

// Width returns the texture width in pixels.
func (t *Texture) Width() uint32 { return t.width }

// Height returns the texture height in pixels.
func (t *Texture) Height() uint32 { return t.height }

// Format returns the texel format.
func (t *Texture) Format() wgpu.TextureFormat { return t.format }

// Sampler is a GPU sampler object.
type Sampler struct {
	resource
	descriptor wgpu.SamplerDescriptor

	raw *wgpu.Sampler
}

// Descriptor returns the resolved sampler descriptor.
func (s *Sampler) Descriptor() wgpu.SamplerDescriptor { return s.descriptor }

// ShaderModule is a compiled WGSL module.
type ShaderModule struct {
	resource
	code string

	raw *wgpu.ShaderModule
}

// Code returns the WGSL source the module was compiled from.
func (m *ShaderModule) Code() string { return m.code }

// BindGroupLayout describes the bindings of one bind group.
type BindGroupLayout struct {
	resource
	entries []wgpu.BindGroupLayoutEntry

	raw *wgpu.BindGroupLayout
}

// Entries returns the layout entries.
func (l *BindGroupLayout) Entries() []wgpu.BindGroupLayoutEntry { return l.entries }

// BindGroup binds concrete resources to a BindGroupLayout.
type BindGroup struct {
	resource
	layout  *BindGroupLayout
	entries []BindGroupEntry

	raw *wgpu.BindGroup
}

// Layout returns the layout the bind group was created against.
func (g *BindGroup) Layout() *BindGroupLayout { return g.layout }

// Entries returns the bound resources.
func (g *BindGroup) Entries() []BindGroupEntry { return g.entries }

// PipelineLayout is the ordered list of bind group layouts used by a pipeline.
type PipelineLayout struct {
	resource
	groups []*BindGroupLayout

	raw *wgpu.PipelineLayout
}

// Groups returns the bind group layouts indexed by group number.
func (l *PipelineLayout) Groups() []*BindGroupLayout { return l.groups }

// RenderPipeline is a compiled render pipeline state object.
type RenderPipeline struct {
	resource
	descriptor RenderPipelineDescriptor

	raw *wgpu.RenderPipeline
}

// Descriptor returns the descriptor the pipeline was created from.
func (p *RenderPipeline) Descriptor() RenderPipelineDescriptor { return p.descriptor }

// RenderBundle is an immutable, replayable sequence of draw commands.
type RenderBundle struct {
	resource
	commands []Command

	raw *wgpu.RenderBundle
}

// Commands returns the recorded command sequence.
func (b *RenderBundle) Commands() []Command { return b.commands }

// Raw returns the backend bundle for execution in a render pass, or nil on backends without a device.
func (b *RenderBundle) Raw() *wgpu.RenderBundle { return b.raw }

// BufferDescriptor describes a buffer allocation.
type BufferDescriptor struct {
	Label string
	Size  uint64
	Usage wgpu.BufferUsage
}

// TextureDescriptor describes a 2D texture allocation.
type TextureDescriptor struct {
	Label  string
	Width  uint32
	Height uint32
	Format wgpu.TextureFormat
}

// BindGroupEntry binds exactly one of Buffer, Sampler or Texture to a binding slot.
type BindGroupEntry struct {
	Binding uint32
	Buffer  *Buffer
	Offset  uint64
	Size    uint64
	Sampler *Sampler
	Texture *Texture
}

// BindGroupDescriptor describes a bind group.
type BindGroupDescriptor struct {
	Label   string
	Layout  *BindGroupLayout
	Entries []BindGroupEntry
}

// RenderPipelineDescriptor describes a render pipeline whose vertex and fragment stages share one module.
type RenderPipelineDescriptor struct {
	Label              string
	Layout             *PipelineLayout
	Module             *ShaderModule
	VertexEntryPoint   string
	FragmentEntryPoint string
	VertexBuffers      []wgpu.VertexBufferLayout
	Primitive          wgpu.PrimitiveState
	ColorFormat        wgpu.TextureFormat
	DepthStencilFormat wgpu.TextureFormat
	SampleCount        uint32
}

// RenderBundleEncoderDescriptor describes the attachments a render bundle is compatible with.
type RenderBundleEncoderDescriptor struct {
	Label              string
	ColorFormats       []wgpu.TextureFormat
	DepthStencilFormat wgpu.TextureFormat
	SampleCount        uint32
}
