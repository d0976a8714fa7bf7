package loader

import (
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/material"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"
)

// gltfTextureExtractorImpl is the implementation of the gltfTextureExtractor interface.
type gltfTextureExtractorImpl struct {
	parser  gltfParser
	buffers gltfBufferExtractor
}

// gltfTextureExtractor creates the images, samplers and textures of a parsed document.
// Images are decoded once each and shared by every texture that references them.
type gltfTextureExtractor interface {
	// ExtractImages decodes every embedded image to RGBA pixels. One task per image is submitted to
	// pool and all of them are joined before returning; a nil pool decodes on the calling goroutine.
	//
	// Parameters:
	//   - pool: the worker pool to decode on, or nil
	//
	// Returns:
	//   - []*material.Image: the decoded images, indexed as in the document
	//   - error: the error of the lowest-indexed image that failed
	ExtractImages(pool worker.DynamicWorkerPool) ([]*material.Image, error)

	// ExtractSamplers resolves every samplers[] entry to wgpu filter and address modes.
	//
	// Returns:
	//   - []*material.Sampler: the samplers, indexed as in the document
	ExtractSamplers() []*material.Sampler

	// ExtractTextures pairs images with samplers. A texture without a sampler shares one default
	// sampler, which is created on first use and returned separately.
	//
	// Parameters:
	//   - images: the extracted images
	//   - samplers: the extracted samplers
	//
	// Returns:
	//   - []*material.Texture: the textures, indexed as in the document
	//   - *material.Sampler: the default sampler, or nil if no texture needed it
	//   - error: a ReferenceError for an invalid source or sampler index
	ExtractTextures(images []*material.Image, samplers []*material.Sampler) ([]*material.Texture, *material.Sampler, error)
}

var _ gltfTextureExtractor = &gltfTextureExtractorImpl{}

// newGLTFTextureExtractor creates a new texture extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//   - buffers: the buffer extractor whose views hold the encoded images
//
// Returns:
//   - gltfTextureExtractor: the texture extractor
func newGLTFTextureExtractor(parser gltfParser, buffers gltfBufferExtractor) gltfTextureExtractor {
	return &gltfTextureExtractorImpl{parser: parser, buffers: buffers}
}

func (e *gltfTextureExtractorImpl) ExtractImages(pool worker.DynamicWorkerPool) ([]*material.Image, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errors.New("no document loaded")
	}

	encoded := make([]common.EncodedImage, len(doc.Images))
	for i, img := range doc.Images {
		if img.BufferView == nil {
			return nil, common.NewUnsupportedFeatureError("image.uri", i, "image %q is not embedded in a buffer view", img.URI)
		}
		if err := common.CheckIndex("image.buffer_view", i, *img.BufferView, len(doc.BufferViews)); err != nil {
			return nil, err
		}
		encoded[i] = common.EncodedImage{
			Name:     img.Name,
			Data:     e.buffers.BufferView(*img.BufferView).Data(),
			MimeType: img.MimeType,
		}
	}

	decoded := make([]common.TextureStagingData, len(encoded))
	errs := make([]error, len(encoded))
	if pool == nil {
		for i := range encoded {
			decoded[i], errs[i] = encoded[i].Decode()
		}
	} else {
		var wg sync.WaitGroup
		for i := range encoded {
			wg.Add(1)
			pool.SubmitTask(worker.Task{
				ID:      i,
				Payload: encoded[i].Name,
				Do: func() (any, error) {
					defer wg.Done()
					decoded[i], errs[i] = encoded[i].Decode()
					return nil, errs[i]
				},
			})
		}
		wg.Wait()
	}

	images := make([]*material.Image, len(encoded))
	for i, err := range errs {
		if err != nil {
			return nil, common.NewFormatError("image.decode", i, "%v", err)
		}
		images[i] = material.NewImage(i, encoded[i].Name, decoded[i])
	}
	return images, nil
}

func (e *gltfTextureExtractorImpl) ExtractSamplers() []*material.Sampler {
	doc := e.parser.Document()
	if doc == nil {
		return nil
	}

	samplers := make([]*material.Sampler, len(doc.Samplers))
	for i, s := range doc.Samplers {
		samplers[i] = material.NewSampler(i, gltfSamplerData(s))
	}
	return samplers
}

func (e *gltfTextureExtractorImpl) ExtractTextures(images []*material.Image, samplers []*material.Sampler) ([]*material.Texture, *material.Sampler, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, nil, errors.New("no document loaded")
	}

	var defaultSampler *material.Sampler
	textures := make([]*material.Texture, len(doc.Textures))
	for i, tex := range doc.Textures {
		if tex.Source == nil {
			return nil, nil, common.NewUnsupportedFeatureError("texture.source", i, "texture without an image source")
		}
		if err := common.CheckIndex("texture.source", i, *tex.Source, len(images)); err != nil {
			return nil, nil, err
		}

		var sampler *material.Sampler
		if tex.Sampler != nil {
			if err := common.CheckIndex("texture.sampler", i, *tex.Sampler, len(samplers)); err != nil {
				return nil, nil, err
			}
			sampler = samplers[*tex.Sampler]
		} else {
			if defaultSampler == nil {
				defaultSampler = material.NewSampler(common.NoIndex, material.DefaultSamplerData)
			}
			sampler = defaultSampler
		}

		textures[i] = material.NewTexture(i, images[*tex.Source], sampler)
	}
	return textures, defaultSampler, nil
}

// gltfSamplerData maps sampler codes to wgpu modes: filters are linear when absent or LINEAR and
// nearest otherwise; wraps are repeat, clamp-to-edge, or mirror-repeat for any other code.
func gltfSamplerData(s gltfSampler) common.SamplerStagingData {
	return common.SamplerStagingData{
		AddressModeU: gltfAddressMode(s.WrapS),
		AddressModeV: gltfAddressMode(s.WrapT),
		AddressModeW: wgpu.AddressModeRepeat,
		MagFilter:    gltfFilterMode(s.MagFilter),
		MinFilter:    gltfFilterMode(s.MinFilter),
		MipmapFilter: wgpu.MipmapFilterModeLinear,
	}
}

func gltfFilterMode(code *int) wgpu.FilterMode {
	if code == nil || *code == gltfFilterLinear {
		return wgpu.FilterModeLinear
	}
	return wgpu.FilterModeNearest
}

func gltfAddressMode(code *int) wgpu.AddressMode {
	if code == nil {
		return wgpu.AddressModeRepeat
	}
	switch *code {
	case gltfWrapRepeat:
		return wgpu.AddressModeRepeat
	case gltfWrapClampToEdge:
		return wgpu.AddressModeClampToEdge
	}
	return wgpu.AddressModeMirrorRepeat
}
