package model

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-glb/engine/renderer"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithLogger is an option builder that sets the logger used for upload and build summaries.
//
// Parameters:
//   - logger: the logger, ignored when nil
//
// Returns:
//   - ModelBuilderOption: a function that applies the logger option to a model
func WithLogger(logger *slog.Logger) ModelBuilderOption {
	return func(m *model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithShaderCache is an option builder that shares a shader variant cache across models.
// A shared cache is not released by the Model.
//
// Parameters:
//   - cache: the shader cache to use
//
// Returns:
//   - ModelBuilderOption: a function that applies the shader cache option to a model
func WithShaderCache(cache shader.Cache) ModelBuilderOption {
	return func(m *model) {
		m.shaders = cache
	}
}

// WithPipelineCache is an option builder that shares a pipeline cache across models.
// A shared cache is not released by the Model. Its formats override WithColorFormat and WithSampleCount.
//
// Parameters:
//   - cache: the pipeline cache to use
//
// Returns:
//   - ModelBuilderOption: a function that applies the pipeline cache option to a model
func WithPipelineCache(cache pipeline.Cache) ModelBuilderOption {
	return func(m *model) {
		m.pipelines = cache
	}
}

// WithColorFormat is an option builder that sets the color attachment format bundles are recorded for.
//
// Parameters:
//   - format: the color format
//
// Returns:
//   - ModelBuilderOption: a function that applies the color format option to a model
func WithColorFormat(format wgpu.TextureFormat) ModelBuilderOption {
	return func(m *model) {
		m.colorFormat = format
	}
}

// WithSampleCount is an option builder that sets the multisample count bundles are recorded for.
//
// Parameters:
//   - count: the sample count
//
// Returns:
//   - ModelBuilderOption: a function that applies the sample count option to a model
func WithSampleCount(count renderer.MSAASampleCount) ModelBuilderOption {
	return func(m *model) {
		m.sampleCount = count
	}
}

// WithBufferViews is an option builder that sets the buffer views of the Model.
func WithBufferViews(views []*BufferView) ModelBuilderOption {
	return func(m *model) {
		m.bufferViews = views
	}
}

// WithImages is an option builder that sets the decoded images of the Model.
func WithImages(images []*material.Image) ModelBuilderOption {
	return func(m *model) {
		m.images = images
	}
}

// WithSamplers is an option builder that sets the samplers of the Model.
func WithSamplers(samplers []*material.Sampler) ModelBuilderOption {
	return func(m *model) {
		m.samplers = samplers
	}
}

// WithTextures is an option builder that sets the textures of the Model.
func WithTextures(textures []*material.Texture) ModelBuilderOption {
	return func(m *model) {
		m.textures = textures
	}
}

// WithMaterials is an option builder that sets the materials of the Model.
func WithMaterials(materials []material.Material) ModelBuilderOption {
	return func(m *model) {
		m.materials = materials
	}
}

// WithMeshes is an option builder that sets the meshes of the Model.
func WithMeshes(meshes []*Mesh) ModelBuilderOption {
	return func(m *model) {
		m.meshes = meshes
	}
}

// WithNodes is an option builder that sets the flat, mesh-bearing node list of the Model.
//
// Parameters:
//   - nodes: the nodes in draw order, usually the result of FlattenNodes
//
// Returns:
//   - ModelBuilderOption: a function that applies the nodes option to a model
func WithNodes(nodes []FlatNode) ModelBuilderOption {
	return func(m *model) {
		m.nodes = nodes
	}
}
