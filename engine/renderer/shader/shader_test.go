package shader

import (
	"errors"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDevice(t *testing.T, options ...renderer.RendererBuilderOption) renderer.Renderer {
	t.Helper()
	device, err := renderer.NewRenderer(renderer.BackendTypeRecording, options...)
	require.NoError(t, err)
	t.Cleanup(device.Release)
	return device
}

func TestFeaturesKey(t *testing.T) {
	assert.Equal(t, "glb", Features(0).Key())
	assert.Equal(t, "glb_n_uv_colortex", NewFeatures(true, true, true).Key())
	assert.Equal(t, "glb_uv", NewFeatures(false, true, false).Key())

	f := NewFeatures(false, false, true)
	assert.True(t, f.Has(FeatureColorTexture))
	assert.False(t, f.Textured(), "sampling needs texture coordinates")
	assert.True(t, NewFeatures(false, true, true).Textured())
}

func TestReflectMaterialGroup(t *testing.T) {
	r := reflectSource(generateSource(FeatureUVs|FeatureColorTexture), bindingVisibility)

	material := r.bindGroups[GroupMaterial]
	require.Len(t, material, 3)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, material[0].Buffer.Type)
	assert.Equal(t, uint64(48), material[0].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, material[1].Sampler.Type)
	assert.Equal(t, wgpu.TextureSampleTypeFloat, material[2].Texture.SampleType)
	assert.Equal(t, wgpu.TextureViewDimension2D, material[2].Texture.ViewDimension)

	require.Len(t, r.bindGroups[GroupView], 1)
	assert.Equal(t, uint64(64), r.bindGroups[GroupView][0].Buffer.MinBindingSize)
	assert.Equal(t, uint64(64), r.bindGroups[GroupNode][0].Buffer.MinBindingSize)
	assert.Equal(t, "base_color_texture", r.varNames[GroupMaterial][BindingBaseColorTexture])

	assert.Equal(t, VertexEntryPoint, r.entryPoints[ShaderTypeVertex])
	assert.Equal(t, FragmentEntryPoint, r.entryPoints[ShaderTypeFragment])
}

func TestReflectUntexturedMaterialGroup(t *testing.T) {
	r := reflectSource(generateSource(FeatureNormals|FeatureUVs), bindingVisibility)
	assert.Len(t, r.bindGroups[GroupMaterial], 1)
}

func TestVertexLayoutsUseCompactSlots(t *testing.T) {
	all := reflectSource(generateSource(FeatureNormals|FeatureUVs), bindingVisibility).vertexLayouts
	require.Len(t, all, 3)
	assert.Equal(t, wgpu.VertexFormatFloat32x3, all[0].Attributes[0].Format)
	assert.Equal(t, uint32(1), all[1].Attributes[0].ShaderLocation)
	assert.Equal(t, wgpu.VertexFormatFloat32x2, all[2].Attributes[0].Format)
	assert.Equal(t, uint64(8), all[2].ArrayStride)

	uvOnly := reflectSource(generateSource(FeatureUVs), bindingVisibility).vertexLayouts
	require.Len(t, uvOnly, 2)
	assert.Equal(t, uint32(2), uvOnly[1].Attributes[0].ShaderLocation, "slot 1 feeds location 2")

	bare := reflectSource(generateSource(0), bindingVisibility).vertexLayouts
	require.Len(t, bare, 1)
	assert.Equal(t, uint64(12), bare[0].ArrayStride)
}

func TestGeneratedSourceBranches(t *testing.T) {
	assert.NotContains(t, generateSource(FeatureColorTexture), "textureSample", "no coordinates to sample with")
	assert.Contains(t, generateSource(FeatureColorTexture), "base_color_texture: texture_2d<f32>")
	assert.Contains(t, generateSource(FeatureUVs|FeatureColorTexture), "textureSample")
	assert.NotContains(t, generateSource(0), "normal")
	assert.Contains(t, generateSource(0), "linear_to_srgb(color.x)")
}

func TestStripComments(t *testing.T) {
	src := "a /* b /* nested */ c */ d // e\nf"
	assert.Equal(t, "a  d \nf", stripComments(src))
}

func TestCacheReturnsSameInstance(t *testing.T) {
	device := newDevice(t)
	cache := NewCache(device)

	a, err := cache.Variant(true, true, false)
	require.NoError(t, err)
	b, err := cache.Get(FeatureNormals | FeatureUVs)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, 1, device.Stats().Count(renderer.ResourceShaderModule))
}

func TestCacheCompilesAtMostEightPrograms(t *testing.T) {
	device := newDevice(t)
	cache := NewCache(device)

	for round := 0; round < 3; round++ {
		for f := Features(0); f < 1<<featureCount; f++ {
			s, err := cache.Get(f)
			require.NoError(t, err)
			assert.Equal(t, f, s.Features())
			assert.Len(t, s.PipelineLayout().Groups(), 3)
		}
	}
	assert.Equal(t, 8, cache.Len())
	assert.Equal(t, 8, device.Stats().Count(renderer.ResourceShaderModule))
	// view, node, untextured material and textured material
	assert.Equal(t, 4, device.Stats().Count(renderer.ResourceBindGroupLayout))
}

func TestCacheSharesLayoutsAcrossVariants(t *testing.T) {
	device := newDevice(t)
	cache := NewCache(device)

	s, err := cache.Get(FeatureUVs | FeatureColorTexture)
	require.NoError(t, err)
	layout, entries, err := cache.BindGroupLayout(GroupMaterial, FeatureUVs|FeatureColorTexture)
	require.NoError(t, err)
	assert.Same(t, s.BindGroupLayout(GroupMaterial), layout)
	assert.Len(t, entries, 3)

	other, err := cache.Get(FeatureNormals)
	require.NoError(t, err)
	assert.Same(t, s.BindGroupLayout(GroupNode), other.BindGroupLayout(GroupNode))
	assert.NotSame(t, s.BindGroupLayout(GroupMaterial), other.BindGroupLayout(GroupMaterial))

	_, _, err = cache.BindGroupLayout(5, 0)
	assert.Error(t, err)
}

func TestBindGroupLayoutReflectsEachVariantOnce(t *testing.T) {
	device := newDevice(t)
	cache := NewCache(device)
	impl := cache.(*shaderCache)

	features := FeatureUVs | FeatureColorTexture
	_, first, err := cache.BindGroupLayout(GroupMaterial, features)
	require.NoError(t, err)
	for range 3 {
		_, entries, err := cache.BindGroupLayout(GroupMaterial, features)
		require.NoError(t, err)
		assert.Same(t, &first[0], &entries[0], "entries come from the memoized reflection")
	}
	assert.Len(t, impl.sources, 1)

	s, err := cache.Get(features)
	require.NoError(t, err)
	assert.Len(t, impl.sources, 1, "compiling reuses the reflected source")
	assert.Same(t, &first[0], &s.BindGroupLayoutEntries(GroupMaterial)[0])
	assert.Equal(t, 1, device.Stats().Count(renderer.ResourceShaderModule))
}

func TestCacheConcurrentGet(t *testing.T) {
	device := newDevice(t)
	cache := NewCache(device)

	var wg sync.WaitGroup
	results := make([]Shader, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := cache.Get(FeatureNormals)
			assert.NoError(t, err)
			results[i] = s
		}(i)
	}
	wg.Wait()

	for _, s := range results {
		assert.Same(t, results[0], s)
	}
	assert.Equal(t, 1, cache.Len())
}

func TestCacheReportsCompileFailure(t *testing.T) {
	device := newDevice(t, renderer.WithFailureInjection(renderer.ResourceShaderModule, 0))
	cache := NewCache(device)

	_, err := cache.Get(0)
	require.Error(t, err)
	var rce *common.ResourceCreationError
	require.True(t, errors.As(err, &rce))
	assert.Equal(t, "shader", rce.Resource)
	assert.Zero(t, cache.Len())
}
