package pipeline

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-glb/engine/renderer"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// maxVertexBuffers is the number of vertex buffer slots a variant can use.
const maxVertexBuffers = 3

// Key identifies a render pipeline state. Primitives with equal keys draw with the same pipeline.
type Key struct {
	// Features selects the shader variant.
	Features shader.Features
	// Topology is the primitive topology, a triangle list or strip.
	Topology wgpu.PrimitiveTopology
	// StripIndexFormat is set for indexed strips and undefined otherwise.
	StripIndexFormat wgpu.IndexFormat
	// CullMode is none for double sided materials and back otherwise.
	CullMode wgpu.CullMode
	// Strides holds the array stride of each vertex buffer slot, zero for unused slots.
	Strides [maxVertexBuffers]uint64
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%v/%v/%v/%v", k.Features.Key(), k.Topology, k.StripIndexFormat, k.CullMode, k.Strides)
}

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	key    Key
	shader shader.Shader

	renderPipeline *renderer.RenderPipeline

	// The following properties configure pipeline creation and are set with the builder options.

	frontFace          wgpu.FrontFace
	colorFormat        wgpu.TextureFormat
	depthStencilFormat wgpu.TextureFormat
	sampleCount        uint32
}

// Pipeline defines a render pipeline for one shader variant and one primitive state.
type Pipeline interface {
	// Key returns the state key this pipeline was created for.
	//
	// Returns:
	//   - Key: the pipeline key
	Key() Key

	// Shader returns the shader variant the pipeline runs.
	//
	// Returns:
	//   - shader.Shader: the variant
	Shader() shader.Shader

	// RenderPipeline returns the device pipeline, or nil before Init.
	//
	// Returns:
	//   - *renderer.RenderPipeline: the device pipeline
	RenderPipeline() *renderer.RenderPipeline

	// VertexBuffers returns the variant's vertex layouts with the key's strides applied.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: one layout per vertex buffer slot
	VertexBuffers() []wgpu.VertexBufferLayout

	// Primitive returns the primitive state derived from the key.
	//
	// Returns:
	//   - wgpu.PrimitiveState: topology, strip index format, winding and culling
	Primitive() wgpu.PrimitiveState

	// ColorFormat returns the color target format.
	//
	// Returns:
	//   - wgpu.TextureFormat: the color format
	ColorFormat() wgpu.TextureFormat

	// DepthStencilFormat returns the depth stencil attachment format.
	//
	// Returns:
	//   - wgpu.TextureFormat: the depth stencil format
	DepthStencilFormat() wgpu.TextureFormat

	// SampleCount returns the multisample count.
	//
	// Returns:
	//   - uint32: the sample count
	SampleCount() uint32

	// Init creates the device pipeline. Calling Init again is a no-op.
	//
	// Parameters:
	//   - device: the renderer to create the pipeline on
	//
	// Returns:
	//   - error: error if the device fails
	Init(device renderer.Renderer) error

	// Release releases the device pipeline. The shader belongs to the shader cache.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a pipeline for a key and its shader variant with options applied.
// Defaults are counter clockwise front faces, a bgra8unorm color target, a depth24plus-stencil8
// depth attachment and one sample.
//
// Parameters:
//   - key: the pipeline state key
//   - s: the shader variant selected by key.Features
//   - opts: a variadic list of PipelineBuilderOption functions
//
// Returns:
//   - Pipeline: the new pipeline, not yet initialized
func NewPipeline(key Key, s shader.Shader, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		key:                key,
		shader:             s,
		frontFace:          wgpu.FrontFaceCCW,
		colorFormat:        wgpu.TextureFormatBGRA8Unorm,
		depthStencilFormat: wgpu.TextureFormatDepth24PlusStencil8,
		sampleCount:        uint32(renderer.MSAAOff),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) Key() Key {
	return p.key
}

func (p *pipeline) Shader() shader.Shader {
	return p.shader
}

func (p *pipeline) RenderPipeline() *renderer.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) VertexBuffers() []wgpu.VertexBufferLayout {
	layouts := append([]wgpu.VertexBufferLayout(nil), p.shader.VertexLayouts()...)
	for i := range layouts {
		if i < maxVertexBuffers && p.key.Strides[i] != 0 {
			layouts[i].ArrayStride = p.key.Strides[i]
		}
	}
	return layouts
}

func (p *pipeline) Primitive() wgpu.PrimitiveState {
	return wgpu.PrimitiveState{
		Topology:         p.key.Topology,
		StripIndexFormat: p.key.StripIndexFormat,
		FrontFace:        p.frontFace,
		CullMode:         p.key.CullMode,
	}
}

func (p *pipeline) ColorFormat() wgpu.TextureFormat {
	return p.colorFormat
}

func (p *pipeline) DepthStencilFormat() wgpu.TextureFormat {
	return p.depthStencilFormat
}

func (p *pipeline) SampleCount() uint32 {
	return p.sampleCount
}

func (p *pipeline) Init(device renderer.Renderer) error {
	if p.renderPipeline != nil {
		return nil
	}

	rp, err := device.CreateRenderPipeline(renderer.RenderPipelineDescriptor{
		Label:              "Render Pipeline " + p.key.String(),
		Layout:             p.shader.PipelineLayout(),
		Module:             p.shader.Module(),
		VertexEntryPoint:   p.shader.EntryPoint(shader.ShaderTypeVertex),
		FragmentEntryPoint: p.shader.EntryPoint(shader.ShaderTypeFragment),
		VertexBuffers:      p.VertexBuffers(),
		Primitive:          p.Primitive(),
		ColorFormat:        p.colorFormat,
		DepthStencilFormat: p.depthStencilFormat,
		SampleCount:        p.sampleCount,
	})
	if err != nil {
		return err
	}
	p.renderPipeline = rp
	return nil
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
}
