package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-glb/engine/renderer"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCaches(t *testing.T, opts ...PipelineBuilderOption) (renderer.Renderer, shader.Cache, Cache) {
	t.Helper()
	device, err := renderer.NewRenderer(renderer.BackendTypeRecording)
	require.NoError(t, err)
	shaders := shader.NewCache(device)
	pipelines := NewCache(device, shaders, nil, opts...)
	t.Cleanup(func() {
		pipelines.Release()
		shaders.Release()
		device.Release()
	})
	return device, shaders, pipelines
}

func TestGetReusesPipelineForEqualKeys(t *testing.T) {
	device, shaders, pipelines := newCaches(t)

	key := Key{Features: shader.FeatureNormals, Topology: wgpu.PrimitiveTopologyTriangleList, CullMode: wgpu.CullModeBack}
	a, err := pipelines.Get(key)
	require.NoError(t, err)
	b, err := pipelines.Get(key)
	require.NoError(t, err)
	assert.Same(t, a, b)

	strip := key
	strip.Topology = wgpu.PrimitiveTopologyTriangleStrip
	strip.StripIndexFormat = wgpu.IndexFormatUint16
	c, err := pipelines.Get(strip)
	require.NoError(t, err)
	assert.NotSame(t, a, c)
	assert.Same(t, a.Shader(), c.Shader(), "same features share one variant")

	assert.Equal(t, 2, pipelines.Len())
	assert.Equal(t, 1, shaders.Len())
	assert.Equal(t, 2, device.Stats().Count(renderer.ResourceRenderPipeline))
}

func TestPipelineDescriptor(t *testing.T) {
	_, _, pipelines := newCaches(t, WithColorFormat(wgpu.TextureFormatRGBA8Unorm), WithSampleCount(renderer.MSAA4x))

	p, err := pipelines.Get(Key{
		Features:         shader.FeatureUVs,
		Topology:         wgpu.PrimitiveTopologyTriangleStrip,
		StripIndexFormat: wgpu.IndexFormatUint32,
		Strides:          [3]uint64{20, 20},
	})
	require.NoError(t, err)

	desc := p.RenderPipeline().Descriptor()
	assert.Equal(t, wgpu.TextureFormatRGBA8Unorm, desc.ColorFormat)
	assert.Equal(t, wgpu.TextureFormatDepth24PlusStencil8, desc.DepthStencilFormat)
	assert.Equal(t, uint32(4), desc.SampleCount)
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleStrip, desc.Primitive.Topology)
	assert.Equal(t, wgpu.IndexFormatUint32, desc.Primitive.StripIndexFormat)
	assert.Equal(t, wgpu.FrontFaceCCW, desc.Primitive.FrontFace)
	assert.Equal(t, shader.VertexEntryPoint, desc.VertexEntryPoint)

	require.Len(t, desc.VertexBuffers, 2)
	assert.Equal(t, uint64(20), desc.VertexBuffers[0].ArrayStride)
	assert.Equal(t, uint64(20), desc.VertexBuffers[1].ArrayStride)
	assert.Equal(t, uint32(2), desc.VertexBuffers[1].Attributes[0].ShaderLocation)
	assert.Equal(t, uint64(8), p.Shader().VertexLayouts()[1].ArrayStride, "variant layouts are not modified")
}

func TestDefaultFormats(t *testing.T) {
	_, _, pipelines := newCaches(t)

	p, err := pipelines.Get(Key{Topology: wgpu.PrimitiveTopologyTriangleList})
	require.NoError(t, err)
	assert.Equal(t, wgpu.TextureFormatBGRA8Unorm, p.ColorFormat())
	assert.Equal(t, uint32(1), p.SampleCount())
	assert.Equal(t, wgpu.IndexFormatUndefined, p.Primitive().StripIndexFormat)
}
