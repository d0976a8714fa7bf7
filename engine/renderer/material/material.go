package material

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/shader"
)

// material is the implementation of the Material interface.
type material struct {
	index            int
	name             string
	baseColorFactor  [4]float32
	emissiveFactor   [4]float32
	metallicFactor   float32
	roughnessFactor  float32
	doubleSided      bool
	baseColorTexture *Texture

	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Material defines the surface parameters of a primitive and owns the group 2 bind group built
// from them. Surface properties are fixed at construction; the bind group is created by Upload.
type Material interface {
	// Index retrieves the material's index in the source file, or common.NoIndex for the default material.
	//
	// Returns:
	//   - int: the material index
	Index() int

	// Name retrieves the material name.
	//
	// Returns:
	//   - string: the name of the material, possibly empty
	Name() string

	// BaseColorFactor retrieves the linear RGBA base color.
	//
	// Returns:
	//   - [4]float32: the base color
	BaseColorFactor() [4]float32

	// EmissiveFactor retrieves the emissive color. The w component is always 1.
	//
	// Returns:
	//   - [4]float32: the emissive color
	EmissiveFactor() [4]float32

	// MetallicFactor retrieves the metallic factor.
	//
	// Returns:
	//   - float32: the metallic factor
	MetallicFactor() float32

	// RoughnessFactor retrieves the roughness factor.
	//
	// Returns:
	//   - float32: the roughness factor
	RoughnessFactor() float32

	// DoubleSided reports whether back faces should be rendered.
	//
	// Returns:
	//   - bool: the double sided flag
	DoubleSided() bool

	// BaseColorTexture retrieves the base color texture, or nil.
	//
	// Returns:
	//   - *Texture: the texture or nil
	BaseColorTexture() *Texture

	// Params returns the uniform block written to binding 0.
	//
	// Returns:
	//   - GPUMaterialParams: the parameter block
	Params() GPUMaterialParams

	// NeedsUpload reports whether the bind group has not been created yet.
	//
	// Returns:
	//   - bool: true until Upload succeeds
	NeedsUpload() bool

	// Upload uploads the texture if present, writes the parameter block and creates the bind group
	// against the group 2 layout from cache. Later calls are no-ops.
	//
	// Parameters:
	//   - device: the renderer to upload to
	//   - cache: the variant cache providing the shared material layout
	//
	// Returns:
	//   - error: a ResourceCreationError if the device fails
	Upload(device renderer.Renderer, cache shader.Cache) error

	// BindGroupProvider retrieves the bind group provider, or nil before Upload.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the provider or nil
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// Release releases the bind group and the parameter buffer. Textures are released by their owner.
	Release()
}

var _ Material = &material{}

// NewMaterial creates a new Material with the default factors and the provided options applied.
// Defaults are base color (1,1,1,1), emissive (0,0,0), metallic 1 and roughness 1.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		index:           common.NoIndex,
		baseColorFactor: [4]float32{1, 1, 1, 1},
		emissiveFactor:  [4]float32{0, 0, 0, 1},
		metallicFactor:  1,
		roughnessFactor: 1,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Index() int {
	return m.index
}

func (m *material) Name() string {
	return m.name
}

func (m *material) BaseColorFactor() [4]float32 {
	return m.baseColorFactor
}

func (m *material) EmissiveFactor() [4]float32 {
	return m.emissiveFactor
}

func (m *material) MetallicFactor() float32 {
	return m.metallicFactor
}

func (m *material) RoughnessFactor() float32 {
	return m.roughnessFactor
}

func (m *material) DoubleSided() bool {
	return m.doubleSided
}

func (m *material) BaseColorTexture() *Texture {
	return m.baseColorTexture
}

func (m *material) Params() GPUMaterialParams {
	return GPUMaterialParams{
		BaseColorFactor: m.baseColorFactor,
		EmissiveFactor:  m.emissiveFactor,
		MetallicFactor:  m.metallicFactor,
		RoughnessFactor: m.roughnessFactor,
	}
}

func (m *material) NeedsUpload() bool {
	return m.bindGroupProvider == nil || !m.bindGroupProvider.Initialized()
}

func (m *material) Upload(device renderer.Renderer, cache shader.Cache) error {
	if !m.NeedsUpload() {
		return nil
	}

	var features shader.Features
	if m.baseColorTexture != nil {
		features = shader.FeatureColorTexture
		if err := m.baseColorTexture.Upload(device); err != nil {
			return err
		}
	}

	layout, entries, err := cache.BindGroupLayout(shader.GroupMaterial, features)
	if err != nil {
		return common.NewResourceCreationError("material", m.index, err)
	}

	params := m.Params()
	options := []bind_group_provider.BindGroupProviderOption{
		bind_group_provider.WithBindGroupLayout(layout),
		bind_group_provider.WithData(shader.BindingMaterialParams, params.Marshal()),
	}
	if m.baseColorTexture != nil {
		options = append(options,
			bind_group_provider.WithSampler(shader.BindingBaseColorSampler, m.baseColorTexture.Sampler().GPU()),
			bind_group_provider.WithTexture(shader.BindingBaseColorTexture, m.baseColorTexture.Image().GPU()),
		)
	}

	provider := bind_group_provider.NewBindGroupProvider(fmt.Sprintf("Material %d %s", m.index, m.name), entries, options...)
	if err := provider.Init(device); err != nil {
		provider.Release()
		return common.NewResourceCreationError("material", m.index, err)
	}
	m.bindGroupProvider = provider
	return nil
}

func (m *material) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return m.bindGroupProvider
}

func (m *material) Release() {
	if m.bindGroupProvider != nil {
		m.bindGroupProvider.Release()
		m.bindGroupProvider = nil
	}
}
