package pipeline

import (
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithColorFormat sets the color target format the pipeline renders to.
//
// Parameters:
//   - format: the color attachment format
//
// Returns:
//   - PipelineBuilderOption: a function that sets the color format for this pipeline
func WithColorFormat(format wgpu.TextureFormat) PipelineBuilderOption {
	return func(p *pipeline) {
		if format != wgpu.TextureFormatUndefined {
			p.colorFormat = format
		}
	}
}

// WithDepthStencilFormat sets the depth stencil attachment format.
//
// Parameters:
//   - format: the depth stencil format
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth stencil format for this pipeline
func WithDepthStencilFormat(format wgpu.TextureFormat) PipelineBuilderOption {
	return func(p *pipeline) {
		if format != wgpu.TextureFormatUndefined {
			p.depthStencilFormat = format
		}
	}
}

// WithSampleCount sets the multisample count.
//
// Parameters:
//   - count: the MSAA sample count
//
// Returns:
//   - PipelineBuilderOption: a function that sets the sample count for this pipeline
func WithSampleCount(count renderer.MSAASampleCount) PipelineBuilderOption {
	return func(p *pipeline) {
		if count != 0 {
			p.sampleCount = uint32(count)
		}
	}
}

// WithFrontFace sets the winding order of front facing triangles.
//
// Parameters:
//   - frontFace: the front face winding (e.g., wgpu.FrontFaceCCW)
//
// Returns:
//   - PipelineBuilderOption: a function that sets the front face for this pipeline
func WithFrontFace(frontFace wgpu.FrontFace) PipelineBuilderOption {
	return func(p *pipeline) {
		p.frontFace = frontFace
	}
}
