package bind_group_provider

import "github.com/Carmen-Shannon/oxy-glb/engine/renderer"

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithBindGroupLayout sets a shared bind group layout for this provider. Init will not create
// its own layout and Release will not release the shared one.
//
// Parameters:
//   - bgl: the bind group layout to use for this provider
//
// Returns:
//   - BindGroupProviderOption: a function that sets the bind group layout for this provider
func WithBindGroupLayout(bgl *renderer.BindGroupLayout) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.bindGroupLayout = bgl
	}
}

// WithBuffer binds an existing buffer to a buffer binding. The provider does not own it.
//
// Parameters:
//   - binding: the binding index for this buffer
//   - buf: the buffer to associate with this binding
//
// Returns:
//   - BindGroupProviderOption: a function that sets the buffer for the specified binding
func WithBuffer(binding int, buf *renderer.Buffer) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.buffers[binding] = buf
	}
}

// WithBufferSize overrides the allocation size of the buffer Init creates for a binding.
//
// Parameters:
//   - binding: the binding index
//   - size: the buffer size in bytes
//
// Returns:
//   - BindGroupProviderOption: a function that sets the size override
func WithBufferSize(binding int, size uint64) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.bufferSizes[binding] = size
	}
}

// WithData sets the initial contents written to a buffer binding during Init.
//
// Parameters:
//   - binding: the binding index
//   - data: the bytes to write at offset 0
//
// Returns:
//   - BindGroupProviderOption: a function that stages the data
func WithData(binding int, data []byte) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.initialData[binding] = data
	}
}

// WithTexture binds a texture to a texture binding.
//
// Parameters:
//   - binding: the binding index
//   - tex: the texture whose default view is bound
//
// Returns:
//   - BindGroupProviderOption: a function that sets the texture
func WithTexture(binding int, tex *renderer.Texture) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.textures[binding] = tex
	}
}

// WithSampler binds a sampler to a sampler binding.
//
// Parameters:
//   - binding: the binding index
//   - s: the sampler
//
// Returns:
//   - BindGroupProviderOption: a function that sets the sampler
func WithSampler(binding int, s *renderer.Sampler) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.samplers[binding] = s
	}
}
