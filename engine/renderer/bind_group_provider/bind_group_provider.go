package bind_group_provider

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-glb/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
)

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label used as the prefix of every GPU object created for this provider.
	label string

	// entries describes the bindings of the group. Buffer entries without a preset buffer get a
	// uniform buffer of MinBindingSize bytes (or the size override) allocated by Init.
	entries []wgpu.BindGroupLayoutEntry
	// bufferSizes overrides the allocation size of buffer entries, keyed by binding index.
	bufferSizes map[int]uint64
	// initialData is written into the owned buffers right after allocation, keyed by binding index.
	initialData map[int][]byte

	// The following fields are GPU allocated resources. They are populated by Init, or preset by options.

	// bindGroup is the GPU bind group created for this provider, or nil before Init.
	bindGroup *renderer.BindGroup
	// bindGroupLayout is the layout the bind group is created against. When preset it is shared and not released here.
	bindGroupLayout *renderer.BindGroupLayout
	ownsLayout      bool
	// buffers holds the GPU buffers for buffer bindings, keyed by binding index.
	buffers    map[int]*renderer.Buffer
	ownBuffers map[int]bool
	// textures holds the textures for texture bindings, keyed by binding index. Not owned.
	textures map[int]*renderer.Texture
	// samplers holds the samplers for sampler bindings, keyed by binding index. Not owned.
	samplers map[int]*renderer.Sampler
}

// BindGroupProvider owns the GPU binding resources of one bind group: its layout, the bind group
// itself and the uniform buffers it allocates. Textures and samplers are supplied by their owners.
//
// Usage pattern:
//  1. Create a provider with layout entries and the textures/samplers/data it needs
//  2. Call Init(device) once to allocate buffers, the layout and the bind group
//  3. Call Write to update uniform contents
//  4. Use BindGroup() when recording draws, Release() when done
type BindGroupProvider interface {
	// Init allocates every missing GPU resource and creates the bind group.
	// Calling Init on an initialized provider is a no-op.
	//
	// Parameters:
	//   - device: the renderer used to create the resources
	//
	// Returns:
	//   - error: error if any resource creation fails or a texture/sampler binding has nothing bound
	Init(device renderer.Renderer) error

	// Initialized reports whether Init has completed.
	//
	// Returns:
	//   - bool: true once the bind group exists
	Initialized() bool

	// Write copies data into the buffer at binding, starting at offset.
	//
	// Parameters:
	//   - device: the renderer owning the buffer
	//   - binding: the buffer binding index
	//   - offset: destination byte offset
	//   - data: bytes to write
	//
	// Returns:
	//   - error: error if the binding has no buffer or the write fails
	Write(device renderer.Renderer, binding int, offset uint64, data []byte) error

	// Release releases the bind group, the buffers allocated by Init and the layout if it was created by Init.
	Release()

	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// Entries returns the layout entries of the group.
	//
	// Returns:
	//   - []wgpu.BindGroupLayoutEntry: the layout entries
	Entries() []wgpu.BindGroupLayoutEntry

	// BindGroup returns the created bind group, or nil before Init.
	//
	// Returns:
	//   - *renderer.BindGroup: the bind group or nil
	BindGroup() *renderer.BindGroup

	// BindGroupLayout returns the bind group layout, or nil before Init unless preset.
	//
	// Returns:
	//   - *renderer.BindGroupLayout: the bind group layout or nil
	BindGroupLayout() *renderer.BindGroupLayout

	// Buffer returns the buffer bound at binding, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *renderer.Buffer: the buffer or nil
	Buffer(binding int) *renderer.Buffer

	// Texture returns the texture bound at binding, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *renderer.Texture: the texture or nil
	Texture(binding int) *renderer.Texture

	// Sampler returns the sampler bound at binding, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *renderer.Sampler: the sampler or nil
	Sampler(binding int) *renderer.Sampler
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a new BindGroupProvider for the given layout entries with options applied.
//
// Parameters:
//   - label: debug label for the provider and the GPU objects it creates
//   - entries: the bind group layout entries
//   - options: a variadic list of BindGroupProviderOption functions
//
// Returns:
//   - BindGroupProvider: the new provider
func NewBindGroupProvider(label string, entries []wgpu.BindGroupLayoutEntry, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:       label,
		entries:     entries,
		bufferSizes: make(map[int]uint64),
		initialData: make(map[int][]byte),
		buffers:     make(map[int]*renderer.Buffer),
		ownBuffers:  make(map[int]bool),
		textures:    make(map[int]*renderer.Texture),
		samplers:    make(map[int]*renderer.Sampler),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Init(device renderer.Renderer) error {
	if p.bindGroup != nil {
		return nil
	}

	if p.bindGroupLayout == nil {
		layout, err := device.CreateBindGroupLayout(p.label+" Bind Group Layout", p.entries)
		if err != nil {
			return err
		}
		p.bindGroupLayout = layout
		p.ownsLayout = true
	}

	bindGroupEntries := make([]renderer.BindGroupEntry, len(p.entries))
	for i, entry := range p.entries {
		binding := int(entry.Binding)

		isTexture := entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined
		isSampler := entry.Sampler.Type != wgpu.SamplerBindingTypeUndefined

		if isTexture {
			tex := p.textures[binding]
			if tex == nil {
				return fmt.Errorf("%s: texture binding %d has no texture", p.label, binding)
			}
			bindGroupEntries[i] = renderer.BindGroupEntry{Binding: entry.Binding, Texture: tex}
		} else if isSampler {
			samp := p.samplers[binding]
			if samp == nil {
				return fmt.Errorf("%s: sampler binding %d has no sampler", p.label, binding)
			}
			bindGroupEntries[i] = renderer.BindGroupEntry{Binding: entry.Binding, Sampler: samp}
		} else {
			buf := p.buffers[binding]
			if buf == nil {
				var usage wgpu.BufferUsage
				switch entry.Buffer.Type {
				case wgpu.BufferBindingTypeUniform:
					usage = wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
				case wgpu.BufferBindingTypeStorage, wgpu.BufferBindingTypeReadOnlyStorage:
					usage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
				}

				size := entry.Buffer.MinBindingSize
				if override, ok := p.bufferSizes[binding]; ok {
					size = override
				}
				created, err := device.CreateBuffer(renderer.BufferDescriptor{
					Label: fmt.Sprintf("%s Buffer %d", p.label, binding),
					Size:  size,
					Usage: usage,
				})
				if err != nil {
					return err
				}
				p.buffers[binding] = created
				p.ownBuffers[binding] = true
				buf = created
			}
			if data, ok := p.initialData[binding]; ok {
				if err := device.WriteBuffer(buf, 0, data); err != nil {
					return err
				}
			}
			bindGroupEntries[i] = renderer.BindGroupEntry{Binding: entry.Binding, Buffer: buf, Size: buf.Size()}
		}
	}

	bindGroup, err := device.CreateBindGroup(renderer.BindGroupDescriptor{
		Label:   p.label + " Bind Group",
		Layout:  p.bindGroupLayout,
		Entries: bindGroupEntries,
	})
	if err != nil {
		return err
	}
	p.bindGroup = bindGroup

	return nil
}

func (p *bindGroupProvider) Initialized() bool {
	return p.bindGroup != nil
}

func (p *bindGroupProvider) Write(device renderer.Renderer, binding int, offset uint64, data []byte) error {
	buf := p.buffers[binding]
	if buf == nil {
		return fmt.Errorf("%s: binding %d has no buffer", p.label, binding)
	}
	return device.WriteBuffer(buf, offset, data)
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) Entries() []wgpu.BindGroupLayoutEntry {
	return p.entries
}

func (p *bindGroupProvider) BindGroup() *renderer.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) BindGroupLayout() *renderer.BindGroupLayout {
	return p.bindGroupLayout
}

func (p *bindGroupProvider) Buffer(binding int) *renderer.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) Texture(binding int) *renderer.Texture {
	return p.textures[binding]
}

func (p *bindGroupProvider) Sampler(binding int) *renderer.Sampler {
	return p.samplers[binding]
}

func (p *bindGroupProvider) Release() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	for binding, buf := range p.buffers {
		if p.ownBuffers[binding] {
			buf.Release()
			delete(p.buffers, binding)
			delete(p.ownBuffers, binding)
		}
	}
	if p.ownsLayout && p.bindGroupLayout != nil {
		p.bindGroupLayout.Release()
		p.bindGroupLayout = nil
		p.ownsLayout = false
	}
}
