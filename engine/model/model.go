package model

import (
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"
)

var (
	// ErrAlreadyBuilt is returned by a second call to Build.
	ErrAlreadyBuilt = errors.New("model render bundles are already built")

	// ErrNotUploaded is returned by Build before Upload has succeeded.
	ErrNotUploaded = errors.New("model resources are not uploaded")
)

// DepthStencilFormat is the depth attachment format every bundle and pipeline is recorded for.
const DepthStencilFormat = wgpu.TextureFormatDepth24PlusStencil8

// model is the implementation of the Model interface.
type model struct {
	name   string
	logger *slog.Logger

	bufferViews []*BufferView
	images      []*material.Image
	samplers    []*material.Sampler
	textures    []*material.Texture
	materials   []material.Material
	meshes      []*Mesh
	nodes       []FlatNode

	colorFormat wgpu.TextureFormat
	sampleCount renderer.MSAASampleCount

	shaders       shader.Cache
	ownsShaders   bool
	pipelines     pipeline.Cache
	ownsPipelines bool

	uploaded      bool
	built         bool
	nodeProviders []bind_group_provider.BindGroupProvider
	bundles       []*renderer.RenderBundle
}

// Model defines the interface for an imported scene.
// A Model owns the imported resources and the flat list of mesh-bearing nodes. Upload moves the
// resources to the device and Build records one render bundle per node.
//
// Usage pattern:
//  1. Upload(device) once the import has declared all buffer usages
//  2. Build(device, view) with an initialized group 0 bind group provider
//  3. Execute Bundles() inside a render pass each frame
//  4. Release() when the scene is no longer drawn
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// BufferViews retrieves every buffer view of the import.
	//
	// Returns:
	//   - []*BufferView: the views, indexed as in the description
	BufferViews() []*BufferView

	// Images retrieves the decoded images.
	//
	// Returns:
	//   - []*material.Image: the images, indexed as in the description
	Images() []*material.Image

	// Samplers retrieves the samplers, with the default sampler last if one was created.
	//
	// Returns:
	//   - []*material.Sampler: the samplers
	Samplers() []*material.Sampler

	// Textures retrieves the textures.
	//
	// Returns:
	//   - []*material.Texture: the textures, indexed as in the description
	Textures() []*material.Texture

	// Materials retrieves every material, with the default material last if one was created.
	//
	// Returns:
	//   - []material.Material: the materials
	Materials() []material.Material

	// Meshes retrieves the meshes.
	//
	// Returns:
	//   - []*Mesh: the meshes, indexed as in the description
	Meshes() []*Mesh

	// Nodes retrieves the mesh-bearing nodes with their world transforms, in draw order.
	//
	// Returns:
	//   - []FlatNode: the flat node list
	Nodes() []FlatNode

	// Flatten flattens the model's own flat node list again. The result equals Nodes().
	//
	// Returns:
	//   - []FlatNode: the re-flattened list
	//   - error: error if flattening fails
	Flatten() ([]FlatNode, error)

	// Upload uploads buffer views, textures and materials. Repeated calls upload nothing new.
	//
	// Parameters:
	//   - device: the renderer to upload to
	//
	// Returns:
	//   - UploadStats: what this call created
	//   - error: a ResourceCreationError if the device fails
	Upload(device renderer.Renderer) (UploadStats, error)

	// Uploaded reports whether Upload has succeeded.
	//
	// Returns:
	//   - bool: true after a successful Upload
	Uploaded() bool

	// Build records one render bundle per mesh-bearing node.
	//
	// Parameters:
	//   - device: the renderer the resources were uploaded to
	//   - view: the initialized provider of the group 0 view bind group
	//
	// Returns:
	//   - error: ErrAlreadyBuilt, ErrNotUploaded, or an error from pipeline or bundle creation
	Build(device renderer.Renderer, view bind_group_provider.BindGroupProvider) error

	// Built reports whether Build has succeeded.
	//
	// Returns:
	//   - bool: true after a successful Build
	Built() bool

	// Bundles retrieves the render bundles in node order.
	//
	// Returns:
	//   - []*renderer.RenderBundle: one bundle per node, nil before Build
	Bundles() []*renderer.RenderBundle

	// NodeBindGroupProvider retrieves the group 1 provider of the i-th flat node.
	//
	// Parameters:
	//   - i: the position in Nodes()
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the provider, or nil before Build
	NodeBindGroupProvider(i int) bind_group_provider.BindGroupProvider

	// Release releases every GPU object the model created or owns.
	Release()
}

var _ Model = &model{}

// NewModel creates a new Model with the provided options applied.
//
// Parameters:
//   - options: variadic list of ModelBuilderOption functions
//
// Returns:
//   - Model: a new Model instance
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{
		logger:      slog.Default(),
		colorFormat: wgpu.TextureFormatBGRA8Unorm,
		sampleCount: renderer.MSAAOff,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) BufferViews() []*BufferView {
	return m.bufferViews
}

func (m *model) Images() []*material.Image {
	return m.images
}

func (m *model) Samplers() []*material.Sampler {
	return m.samplers
}

func (m *model) Textures() []*material.Texture {
	return m.textures
}

func (m *model) Materials() []material.Material {
	return m.materials
}

func (m *model) Meshes() []*Mesh {
	return m.meshes
}

func (m *model) Nodes() []FlatNode {
	return m.nodes
}

func (m *model) Flatten() ([]FlatNode, error) {
	return FlattenNodes(nodesFromFlat(m.nodes))
}

func (m *model) Uploaded() bool {
	return m.uploaded
}

func (m *model) Built() bool {
	return m.built
}

func (m *model) Bundles() []*renderer.RenderBundle {
	return m.bundles
}

func (m *model) NodeBindGroupProvider(i int) bind_group_provider.BindGroupProvider {
	if i < 0 || i >= len(m.nodeProviders) {
		return nil
	}
	return m.nodeProviders[i]
}

func (m *model) Upload(device renderer.Renderer) (UploadStats, error) {
	uploader := NewResourceUploader(device, m.shaderCache(device), m.logger)
	stats, err := uploader.Upload(m.bufferViews, m.textures, m.materials)
	if err != nil {
		return stats, err
	}
	m.uploaded = true
	return stats, nil
}

func (m *model) Build(device renderer.Renderer, view bind_group_provider.BindGroupProvider) error {
	if m.built {
		return ErrAlreadyBuilt
	}
	if !m.uploaded {
		return ErrNotUploaded
	}
	if view == nil || view.BindGroup() == nil {
		return errors.New("view bind group provider is not initialized")
	}

	shaders := m.shaderCache(device)
	pipelines := m.pipelineCache(device)
	nodeLayout, nodeEntries, err := shaders.BindGroupLayout(shader.GroupNode, 0)
	if err != nil {
		return err
	}

	providers := make([]bind_group_provider.BindGroupProvider, 0, len(m.nodes))
	bundles := make([]*renderer.RenderBundle, 0, len(m.nodes))
	writes := make([]bind_group_provider.BufferWrite, 0, len(m.nodes))
	fail := func(err error) error {
		for _, b := range bundles {
			b.Release()
		}
		for _, p := range providers {
			p.Release()
		}
		return err
	}

	for _, n := range m.nodes {
		provider := bind_group_provider.NewBindGroupProvider(fmt.Sprintf("Node %d %s", n.Index, n.Name), nodeEntries,
			bind_group_provider.WithBindGroupLayout(nodeLayout))
		if err := provider.Init(device); err != nil {
			provider.Release()
			return fail(common.NewResourceCreationError("node", n.Index, err))
		}
		providers = append(providers, provider)

		params := GPUNodeParams{Transform: n.World}
		writes = append(writes, bind_group_provider.BufferWrite{Provider: provider, Binding: 0, Data: params.Marshal()})

		bundle, err := m.recordNode(device, pipelines, view, provider, n)
		if err != nil {
			return fail(err)
		}
		bundles = append(bundles, bundle)
	}

	if err := bind_group_provider.ApplyWrites(device, writes); err != nil {
		return fail(common.NewResourceCreationError("node_uniforms", common.NoIndex, err))
	}

	m.nodeProviders = providers
	m.bundles = bundles
	m.built = true
	m.logger.Debug("built render bundles", "model", m.name, "bundles", len(bundles), "pipelines", pipelines.Len(), "variants", shaders.Len())
	return nil
}

// recordNode records the bundle of one node: the view and node groups once, then per primitive its
// pipeline, material group, vertex buffers, optional index buffer and draw.
func (m *model) recordNode(device renderer.Renderer, pipelines pipeline.Cache, view, node bind_group_provider.BindGroupProvider, n FlatNode) (*renderer.RenderBundle, error) {
	enc, err := device.CreateRenderBundleEncoder(renderer.RenderBundleEncoderDescriptor{
		Label:              fmt.Sprintf("Node %d %s Bundle", n.Index, n.Name),
		ColorFormats:       []wgpu.TextureFormat{m.colorFormat},
		DepthStencilFormat: DepthStencilFormat,
		SampleCount:        uint32(m.sampleCount),
	})
	if err != nil {
		return nil, common.NewResourceCreationError("render_bundle", n.Index, err)
	}

	enc.SetBindGroup(shader.GroupView, view.BindGroup())
	enc.SetBindGroup(shader.GroupNode, node.BindGroup())

	for _, prim := range n.Mesh.Primitives {
		key, err := prim.PipelineKey()
		if err != nil {
			return nil, err
		}
		p, err := pipelines.Get(key)
		if err != nil {
			return nil, err
		}

		var materialGroup *renderer.BindGroup
		if provider := prim.Material.BindGroupProvider(); provider != nil {
			materialGroup = provider.BindGroup()
		}
		enc.SetPipeline(p.RenderPipeline())
		enc.SetBindGroup(shader.GroupMaterial, materialGroup)
		for slot, a := range prim.VertexAccessors() {
			enc.SetVertexBuffer(uint32(slot), a.View().GPU(), uint64(a.ByteOffset()), uint64(a.ByteLength()))
		}

		if prim.Indices != nil {
			format, err := prim.Indices.IndexFormat()
			if err != nil {
				return nil, err
			}
			enc.SetIndexBuffer(prim.Indices.View().GPU(), format, uint64(prim.Indices.ByteOffset()), uint64(prim.Indices.ByteLength()))
			enc.DrawIndexed(uint32(prim.Indices.Count()))
		} else {
			enc.Draw(uint32(prim.Positions.Count()))
		}
	}

	bundle, err := enc.Finish()
	if err != nil {
		return nil, errors.Wrapf(err, "node %d", n.Index)
	}
	return bundle, nil
}

// shaderCache returns the injected variant cache or creates one owned by the model.
func (m *model) shaderCache(device renderer.Renderer) shader.Cache {
	if m.shaders == nil {
		m.shaders = shader.NewCache(device, shader.WithLogger(m.logger))
		m.ownsShaders = true
	}
	return m.shaders
}

// pipelineCache returns the injected pipeline cache or creates one owned by the model.
func (m *model) pipelineCache(device renderer.Renderer) pipeline.Cache {
	if m.pipelines == nil {
		m.pipelines = pipeline.NewCache(device, m.shaderCache(device), m.logger,
			pipeline.WithColorFormat(m.colorFormat),
			pipeline.WithDepthStencilFormat(DepthStencilFormat),
			pipeline.WithSampleCount(m.sampleCount),
		)
		m.ownsPipelines = true
	}
	return m.pipelines
}

func (m *model) Release() {
	for _, b := range m.bundles {
		b.Release()
	}
	m.bundles = nil
	for _, p := range m.nodeProviders {
		p.Release()
	}
	m.nodeProviders = nil
	m.built = false

	for _, mat := range m.materials {
		mat.Release()
	}
	for _, img := range m.images {
		img.Release()
	}
	for _, s := range m.samplers {
		s.Release()
	}
	for _, v := range m.bufferViews {
		v.Release()
	}
	m.uploaded = false

	if m.ownsPipelines && m.pipelines != nil {
		m.pipelines.Release()
		m.pipelines = nil
	}
	if m.ownsShaders && m.shaders != nil {
		m.shaders.Release()
		m.shaders = nil
	}
}
