package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// ResourceKind names a class of GPU object created through the Renderer.
type ResourceKind int

const (
	ResourceBuffer ResourceKind = iota
	ResourceTexture
	ResourceSampler
	ResourceShaderModule
	ResourceBindGroupLayout
	ResourceBindGroup
	ResourcePipelineLayout
	ResourceRenderPipeline
	ResourceRenderBundle
	resourceKindCount
)

func (k ResourceKind) String() string {
	switch k {
	case ResourceBuffer:
		return "buffer"
	case ResourceTexture:
		return "texture"
	case ResourceSampler:
		return "sampler"
	case ResourceShaderModule:
		return "shader module"
	case ResourceBindGroupLayout:
		return "bind group layout"
	case ResourceBindGroup:
		return "bind group"
	case ResourcePipelineLayout:
		return "pipeline layout"
	case ResourceRenderPipeline:
		return "render pipeline"
	case ResourceRenderBundle:
		return "render bundle"
	}
	return "unknown"
}

// Stats counts the objects created and the bytes written through a Renderer.
type Stats struct {
	Created      [resourceKindCount]int
	BufferBytes  uint64
	BufferWrites int
	TextureBytes uint64
}

// Count returns the number of objects of the given kind created so far.
func (s Stats) Count(kind ResourceKind) int {
	if kind < 0 || kind >= resourceKindCount {
		return 0
	}
	return s.Created[kind]
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend

	stats Stats

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	failures             map[ResourceKind]int
}

// Renderer is the device collaborator used by the importer. It allocates GPU resources,
// compiles shader modules and records render bundles on top of a pluggable backend.
// All methods are safe for concurrent use.
type Renderer interface {
	// CreateBuffer allocates a buffer with the requested size and usage.
	//
	// Parameters:
	//   - desc: label, size in bytes and usage flags
	//
	// Returns:
	//   - *Buffer: the allocated buffer
	//   - error: error if the size is zero or the device rejects the allocation
	CreateBuffer(desc BufferDescriptor) (*Buffer, error)

	// WriteBuffer copies data into buf at offset.
	// Offset and length must be multiples of 4 and the range must fit the buffer.
	//
	// Parameters:
	//   - buf: the destination buffer (must carry CopyDst usage)
	//   - offset: destination byte offset
	//   - data: bytes to copy
	//
	// Returns:
	//   - error: error if the write is misaligned, out of range or rejected by the device
	WriteBuffer(buf *Buffer, offset uint64, data []byte) error

	// CreateTexture allocates a 2D texture and uploads tightly packed RGBA pixels into mip level 0.
	//
	// Parameters:
	//   - desc: label, dimensions and format
	//   - pixels: width*height*4 bytes
	//
	// Returns:
	//   - *Texture: the texture with a default view
	//   - error: error if the pixel data does not match the dimensions or the device fails
	CreateTexture(desc TextureDescriptor, pixels []byte) (*Texture, error)

	// CreateSampler creates a sampler. Zero fields of data fall back to linear filtering and repeat addressing.
	//
	// Parameters:
	//   - label: debug label
	//   - data: sampler configuration
	//
	// Returns:
	//   - *Sampler: the sampler
	//   - error: error if the device fails
	CreateSampler(label string, data common.SamplerStagingData) (*Sampler, error)

	// CreateShaderModule compiles WGSL source.
	//
	// Parameters:
	//   - label: debug label
	//   - code: WGSL source
	//
	// Returns:
	//   - *ShaderModule: the compiled module
	//   - error: error if compilation fails
	CreateShaderModule(label, code string) (*ShaderModule, error)

	// CreateBindGroupLayout creates a bind group layout from its entries.
	CreateBindGroupLayout(label string, entries []wgpu.BindGroupLayoutEntry) (*BindGroupLayout, error)

	// CreateBindGroup creates a bind group. Every entry must match a layout binding.
	CreateBindGroup(desc BindGroupDescriptor) (*BindGroup, error)

	// CreatePipelineLayout creates a pipeline layout; groups[i] is the layout of bind group i.
	CreatePipelineLayout(label string, groups []*BindGroupLayout) (*PipelineLayout, error)

	// CreateRenderPipeline creates a render pipeline.
	CreateRenderPipeline(desc RenderPipelineDescriptor) (*RenderPipeline, error)

	// CreateRenderBundleEncoder starts recording a render bundle.
	//
	// Parameters:
	//   - desc: the attachment formats the bundle will be executed against
	//
	// Returns:
	//   - *RenderBundleEncoder: an encoder whose Finish yields the bundle
	//   - error: error if the device fails
	CreateRenderBundleEncoder(desc RenderBundleEncoderDescriptor) (*RenderBundleEncoder, error)

	// Stats returns a snapshot of the creation counters.
	Stats() Stats

	// BackendType returns the backend this renderer runs on.
	BackendType() RendererBackendType

	// Release releases the device. Resources created earlier must be released by their owners first.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer on the requested backend with the provided options applied.
//
// Parameters:
//   - backendType: the backend to run on (BackendTypeWGPU or BackendTypeRecording)
//   - options: a variadic list of RendererBuilderOption functions
//
// Returns:
//   - Renderer: the renderer
//   - error: error if the backend could not acquire a device
func NewRenderer(backendType RendererBackendType, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: backendType,
		failures:    make(map[ResourceKind]int),
	}

	for _, option := range options {
		option(r)
	}

	switch backendType {
	case BackendTypeWGPU:
		b, err := newWGPURendererBackend(r.forceFallbackAdapter)
		if err != nil {
			return nil, err
		}
		r.backend = b
	case BackendTypeRecording:
		r.backend = newRecordingRendererBackend()
	default:
		return nil, fmt.Errorf("unknown renderer backend type %d", backendType)
	}

	return r, nil
}

// admit checks the failure injection table and counts the creation on success.
// Caller must hold r.mu.
func (r *renderer) admit(kind ResourceKind) error {
	if r.backend == nil {
		return fmt.Errorf("renderer released: cannot create %s", kind)
	}
	if remaining, ok := r.failures[kind]; ok {
		if remaining == 0 {
			delete(r.failures, kind)
			return fmt.Errorf("injected %s creation failure", kind)
		}
		r.failures[kind] = remaining - 1
	}
	return nil
}

func (r *renderer) CreateBuffer(desc BufferDescriptor) (*Buffer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if desc.Size == 0 {
		return nil, fmt.Errorf("buffer %q: size must be non-zero", desc.Label)
	}
	if err := r.admit(ResourceBuffer); err != nil {
		return nil, err
	}
	buf, err := r.backend.CreateBuffer(desc)
	if err != nil {
		return nil, err
	}
	r.stats.Created[ResourceBuffer]++
	return buf, nil
}

func (r *renderer) WriteBuffer(buf *Buffer, offset uint64, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if buf == nil {
		return fmt.Errorf("write to nil buffer")
	}
	if buf.usage&wgpu.BufferUsageCopyDst == 0 {
		return fmt.Errorf("buffer %q: missing CopyDst usage", buf.label)
	}
	if offset%4 != 0 || len(data)%4 != 0 {
		return fmt.Errorf("buffer %q: write offset %d and size %d must be multiples of 4", buf.label, offset, len(data))
	}
	if offset+uint64(len(data)) > buf.size {
		return fmt.Errorf("buffer %q: write range [%d,%d) exceeds size %d", buf.label, offset, offset+uint64(len(data)), buf.size)
	}
	if r.backend == nil {
		return fmt.Errorf("renderer released: cannot write buffer %q", buf.label)
	}
	if err := r.backend.WriteBuffer(buf, offset, data); err != nil {
		return err
	}
	r.stats.BufferWrites++
	r.stats.BufferBytes += uint64(len(data))
	return nil
}

func (r *renderer) CreateTexture(desc TextureDescriptor, pixels []byte) (*Texture, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("texture %q: zero extent %dx%d", desc.Label, desc.Width, desc.Height)
	}
	if uint64(len(pixels)) != uint64(desc.Width)*uint64(desc.Height)*4 {
		return nil, fmt.Errorf("texture %q: expected %d bytes of RGBA data, got %d", desc.Label, desc.Width*desc.Height*4, len(pixels))
	}
	desc.Format = common.Coalesce(desc.Format, wgpu.TextureFormatRGBA8UnormSrgb)
	if err := r.admit(ResourceTexture); err != nil {
		return nil, err
	}
	tex, err := r.backend.CreateTexture(desc, pixels)
	if err != nil {
		return nil, err
	}
	r.stats.Created[ResourceTexture]++
	r.stats.TextureBytes += uint64(len(pixels))
	return tex, nil
}

func (r *renderer) CreateSampler(label string, data common.SamplerStagingData) (*Sampler, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	desc := wgpu.SamplerDescriptor{
		Label:         label,
		AddressModeU:  common.Coalesce(data.AddressModeU, wgpu.AddressModeRepeat),
		AddressModeV:  common.Coalesce(data.AddressModeV, wgpu.AddressModeRepeat),
		AddressModeW:  common.Coalesce(data.AddressModeW, wgpu.AddressModeRepeat),
		MagFilter:     common.Coalesce(data.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(data.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(data.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   common.Coalesce(data.LodMinClamp, 0.0),
		LodMaxClamp:   common.Coalesce(data.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(data.MaxAnisotropy, 1),
	}
	if err := r.admit(ResourceSampler); err != nil {
		return nil, err
	}
	s, err := r.backend.CreateSampler(label, desc)
	if err != nil {
		return nil, err
	}
	r.stats.Created[ResourceSampler]++
	return s, nil
}

func (r *renderer) CreateShaderModule(label, code string) (*ShaderModule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if code == "" {
		return nil, fmt.Errorf("shader module %q: empty source", label)
	}
	if err := r.admit(ResourceShaderModule); err != nil {
		return nil, err
	}
	m, err := r.backend.CreateShaderModule(label, code)
	if err != nil {
		return nil, err
	}
	r.stats.Created[ResourceShaderModule]++
	return m, nil
}

func (r *renderer) CreateBindGroupLayout(label string, entries []wgpu.BindGroupLayoutEntry) (*BindGroupLayout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.admit(ResourceBindGroupLayout); err != nil {
		return nil, err
	}
	l, err := r.backend.CreateBindGroupLayout(label, entries)
	if err != nil {
		return nil, err
	}
	r.stats.Created[ResourceBindGroupLayout]++
	return l, nil
}

func (r *renderer) CreateBindGroup(desc BindGroupDescriptor) (*BindGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if desc.Layout == nil {
		return nil, fmt.Errorf("bind group %q: nil layout", desc.Label)
	}
	if err := validateBindGroupEntries(desc); err != nil {
		return nil, err
	}
	if err := r.admit(ResourceBindGroup); err != nil {
		return nil, err
	}
	g, err := r.backend.CreateBindGroup(desc)
	if err != nil {
		return nil, err
	}
	r.stats.Created[ResourceBindGroup]++
	return g, nil
}

func (r *renderer) CreatePipelineLayout(label string, groups []*BindGroupLayout) (*PipelineLayout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, g := range groups {
		if g == nil {
			return nil, fmt.Errorf("pipeline layout %q: nil bind group layout for group %d", label, i)
		}
	}
	if err := r.admit(ResourcePipelineLayout); err != nil {
		return nil, err
	}
	l, err := r.backend.CreatePipelineLayout(label, groups)
	if err != nil {
		return nil, err
	}
	r.stats.Created[ResourcePipelineLayout]++
	return l, nil
}

func (r *renderer) CreateRenderPipeline(desc RenderPipelineDescriptor) (*RenderPipeline, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if desc.Layout == nil || desc.Module == nil {
		return nil, fmt.Errorf("render pipeline %q: layout and module must be set", desc.Label)
	}
	desc.SampleCount = common.Coalesce(desc.SampleCount, uint32(MSAAOff))
	if err := r.admit(ResourceRenderPipeline); err != nil {
		return nil, err
	}
	p, err := r.backend.CreateRenderPipeline(desc)
	if err != nil {
		return nil, err
	}
	r.stats.Created[ResourceRenderPipeline]++
	return p, nil
}

func (r *renderer) CreateRenderBundleEncoder(desc RenderBundleEncoderDescriptor) (*RenderBundleEncoder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	desc.SampleCount = common.Coalesce(desc.SampleCount, uint32(MSAAOff))
	if err := r.admit(ResourceRenderBundle); err != nil {
		return nil, err
	}
	b, err := r.backend.CreateRenderBundleEncoder(desc)
	if err != nil {
		return nil, err
	}
	return &RenderBundleEncoder{
		label:   desc.Label,
		backend: b,
		onFinish: func() {
			r.mu.Lock()
			r.stats.Created[ResourceRenderBundle]++
			r.mu.Unlock()
		},
	}, nil
}

func (r *renderer) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

func (r *renderer) BackendType() RendererBackendType {
	return r.backendType
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.backend != nil {
		r.backend.Release()
		r.backend = nil
	}
}

func validateBindGroupEntries(desc BindGroupDescriptor) error {
	layoutBindings := make(map[uint32]wgpu.BindGroupLayoutEntry, len(desc.Layout.entries))
	for _, e := range desc.Layout.entries {
		layoutBindings[e.Binding] = e
	}
	if len(desc.Entries) != len(layoutBindings) {
		return fmt.Errorf("bind group %q: %d entries for a layout with %d bindings", desc.Label, len(desc.Entries), len(layoutBindings))
	}
	for _, e := range desc.Entries {
		le, ok := layoutBindings[e.Binding]
		if !ok {
			return fmt.Errorf("bind group %q: binding %d is not in the layout", desc.Label, e.Binding)
		}
		switch {
		case le.Buffer.Type != wgpu.BufferBindingTypeUndefined:
			if e.Buffer == nil {
				return fmt.Errorf("bind group %q: binding %d expects a buffer", desc.Label, e.Binding)
			}
		case le.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
			if e.Sampler == nil {
				return fmt.Errorf("bind group %q: binding %d expects a sampler", desc.Label, e.Binding)
			}
		case le.Texture.SampleType != wgpu.TextureSampleTypeUndefined:
			if e.Texture == nil {
				return fmt.Errorf("bind group %q: binding %d expects a texture", desc.Label, e.Binding)
			}
		}
	}
	return nil
}
