package material

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
)

// DefaultSamplerData is the sampler used by textures that do not reference one: linear filtering
// with repeat wrapping on both axes.
var DefaultSamplerData = common.SamplerStagingData{
	AddressModeU: wgpu.AddressModeRepeat,
	AddressModeV: wgpu.AddressModeRepeat,
	MagFilter:    wgpu.FilterModeLinear,
	MinFilter:    wgpu.FilterModeLinear,
	MipmapFilter: wgpu.MipmapFilterModeLinear,
}

// Sampler is a sampler description that is created on the device once.
type Sampler struct {
	index int
	data  common.SamplerStagingData
	gpu   *renderer.Sampler
}

// NewSampler creates a sampler from resolved filter and wrap modes.
//
// Parameters:
//   - index: the sampler's index in the source file, or common.NoIndex for the default sampler
//   - data: the resolved sampler description
//
// Returns:
//   - *Sampler: the new sampler, not yet uploaded
func NewSampler(index int, data common.SamplerStagingData) *Sampler {
	return &Sampler{index: index, data: data}
}

// Index returns the sampler's index in the source file.
func (s *Sampler) Index() int { return s.index }

// Data returns the sampler description.
func (s *Sampler) Data() common.SamplerStagingData { return s.data }

// GPU returns the device sampler, or nil before Upload.
func (s *Sampler) GPU() *renderer.Sampler { return s.gpu }

// NeedsUpload reports whether the device sampler has not been created yet.
func (s *Sampler) NeedsUpload() bool { return s.gpu == nil }

// Upload creates the device sampler. Later calls are no-ops.
//
// Parameters:
//   - device: the renderer to create the sampler on
//
// Returns:
//   - error: a ResourceCreationError if the device fails
func (s *Sampler) Upload(device renderer.Renderer) error {
	if !s.NeedsUpload() {
		return nil
	}
	gpu, err := device.CreateSampler(fmt.Sprintf("Sampler %d", s.index), s.data)
	if err != nil {
		return common.NewResourceCreationError("sampler", s.index, err)
	}
	s.gpu = gpu
	return nil
}

// Release releases the device sampler.
func (s *Sampler) Release() {
	if s.gpu != nil {
		s.gpu.Release()
		s.gpu = nil
	}
}

// Image is decoded RGBA pixel data shared by every texture that references it.
type Image struct {
	index int
	name  string
	data  common.TextureStagingData
	gpu   *renderer.Texture
}

// NewImage wraps decoded pixels.
//
// Parameters:
//   - index: the image's index in the source file
//   - name: the optional image name
//   - data: the decoded RGBA pixels
//
// Returns:
//   - *Image: the new image, not yet uploaded
func NewImage(index int, name string, data common.TextureStagingData) *Image {
	return &Image{index: index, name: name, data: data}
}

// Index returns the image's index in the source file.
func (i *Image) Index() int { return i.index }

// Name returns the image name, which may be empty.
func (i *Image) Name() string { return i.name }

// Data returns the decoded pixels.
func (i *Image) Data() common.TextureStagingData { return i.data }

// GPU returns the device texture, or nil before Upload.
func (i *Image) GPU() *renderer.Texture { return i.gpu }

// NeedsUpload reports whether the pixels have not been uploaded yet.
func (i *Image) NeedsUpload() bool { return i.gpu == nil }

// Upload creates an rgba8unorm-srgb texture from the pixels. Later calls are no-ops.
//
// Parameters:
//   - device: the renderer to create the texture on
//
// Returns:
//   - error: a ResourceCreationError if the device fails
func (i *Image) Upload(device renderer.Renderer) error {
	if !i.NeedsUpload() {
		return nil
	}
	gpu, err := device.CreateTexture(renderer.TextureDescriptor{
		Label:  fmt.Sprintf("Image %d %s", i.index, i.name),
		Width:  i.data.Width,
		Height: i.data.Height,
		Format: wgpu.TextureFormatRGBA8UnormSrgb,
	}, i.data.Pixels)
	if err != nil {
		return common.NewResourceCreationError("image", i.index, err)
	}
	i.gpu = gpu
	return nil
}

// Release releases the device texture.
func (i *Image) Release() {
	if i.gpu != nil {
		i.gpu.Release()
		i.gpu = nil
	}
}

// Texture pairs an image with the sampler used to read it.
type Texture struct {
	index   int
	image   *Image
	sampler *Sampler
}

// NewTexture creates a texture from a shared image and sampler.
//
// Parameters:
//   - index: the texture's index in the source file
//   - image: the shared image
//   - sampler: the shared sampler
//
// Returns:
//   - *Texture: the new texture
func NewTexture(index int, image *Image, sampler *Sampler) *Texture {
	return &Texture{index: index, image: image, sampler: sampler}
}

// Index returns the texture's index in the source file.
func (t *Texture) Index() int { return t.index }

// Image returns the texture's image.
func (t *Texture) Image() *Image { return t.image }

// Sampler returns the texture's sampler.
func (t *Texture) Sampler() *Sampler { return t.sampler }

// NeedsUpload reports whether the image or the sampler still has to be uploaded.
func (t *Texture) NeedsUpload() bool {
	return t.image.NeedsUpload() || t.sampler.NeedsUpload()
}

// Upload uploads the image and creates the sampler. Shared parts are uploaded once.
//
// Parameters:
//   - device: the renderer to upload to
//
// Returns:
//   - error: a ResourceCreationError if the device fails
func (t *Texture) Upload(device renderer.Renderer) error {
	if err := t.image.Upload(device); err != nil {
		return err
	}
	return t.sampler.Upload(device)
}
