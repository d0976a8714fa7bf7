package renderer

import "github.com/cogentcore/webgpu/wgpu"

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based backend running on a headless device.
	BackendTypeWGPU RendererBackendType = iota

	// BackendTypeRecording selects a device-less backend that records every resource and
	// command on the CPU. It is used for dry runs and tests.
	BackendTypeRecording
)

func (t RendererBackendType) String() string {
	switch t {
	case BackendTypeWGPU:
		return "wgpu"
	case BackendTypeRecording:
		return "recording"
	}
	return "unknown"
}

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// Only specific power-of-two values are valid for GPU hardware. WebGPU guarantees support for
// 1 (off) and 4; higher values (8, 16) are adapter-dependent and may not be available.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1). This is the default.
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing.
	MSAA4x MSAASampleCount = 4

	// MSAA8x enables 8× multisample anti-aliasing. Adapter-dependent; not all hardware supports this.
	MSAA8x MSAASampleCount = 8

	// MSAA16x enables 16× multisample anti-aliasing. Adapter-dependent; not all hardware supports this.
	MSAA16x MSAASampleCount = 16
)

// RendererBackend is the device-facing half of the Renderer. Backends create fully populated
// handles, including the release function of the underlying object.
type RendererBackend interface {
	CreateBuffer(desc BufferDescriptor) (*Buffer, error)
	WriteBuffer(buf *Buffer, offset uint64, data []byte) error
	CreateTexture(desc TextureDescriptor, pixels []byte) (*Texture, error)
	CreateSampler(label string, desc wgpu.SamplerDescriptor) (*Sampler, error)
	CreateShaderModule(label, code string) (*ShaderModule, error)
	CreateBindGroupLayout(label string, entries []wgpu.BindGroupLayoutEntry) (*BindGroupLayout, error)
	CreateBindGroup(desc BindGroupDescriptor) (*BindGroup, error)
	CreatePipelineLayout(label string, groups []*BindGroupLayout) (*PipelineLayout, error)
	CreateRenderPipeline(desc RenderPipelineDescriptor) (*RenderPipeline, error)
	CreateRenderBundleEncoder(desc RenderBundleEncoderDescriptor) (bundleEncoderBackend, error)
	Release()
}
