package bind_group_provider

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformEntry(binding uint32, size uint64) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
		Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform, MinBindingSize: size},
	}
}

func TestInitAllocatesUniformAndWritesData(t *testing.T) {
	device, err := renderer.NewRenderer(renderer.BackendTypeRecording)
	require.NoError(t, err)
	defer device.Release()

	data := make([]byte, 16)
	data[0] = 7
	p := NewBindGroupProvider("Node 0", []wgpu.BindGroupLayoutEntry{uniformEntry(0, 16)}, WithData(0, data))

	require.NoError(t, p.Init(device))
	assert.True(t, p.Initialized())
	require.NotNil(t, p.Buffer(0))
	assert.Equal(t, uint64(16), p.Buffer(0).Size())
	assert.Equal(t, data, p.Buffer(0).Contents())
	assert.Equal(t, "Node 0", p.Label())

	// second Init is a no-op
	require.NoError(t, p.Init(device))
	assert.Equal(t, 1, device.Stats().Count(renderer.ResourceBuffer))
	assert.Equal(t, 1, device.Stats().Count(renderer.ResourceBindGroup))
}

func TestInitUsesSharedLayoutAndSizeOverride(t *testing.T) {
	device, err := renderer.NewRenderer(renderer.BackendTypeRecording)
	require.NoError(t, err)
	defer device.Release()

	entries := []wgpu.BindGroupLayoutEntry{uniformEntry(0, 0)}
	shared, err := device.CreateBindGroupLayout("shared", entries)
	require.NoError(t, err)

	p := NewBindGroupProvider("View", entries, WithBindGroupLayout(shared), WithBufferSize(0, 64))
	require.NoError(t, p.Init(device))

	assert.Same(t, shared, p.BindGroupLayout())
	assert.Equal(t, uint64(64), p.Buffer(0).Size())
	assert.Equal(t, 1, device.Stats().Count(renderer.ResourceBindGroupLayout))

	p.Release()
	assert.Nil(t, p.BindGroup())
	assert.Same(t, shared, p.BindGroupLayout(), "shared layout is not released by the provider")
}

func TestInitRequiresTexturesAndSamplers(t *testing.T) {
	device, err := renderer.NewRenderer(renderer.BackendTypeRecording)
	require.NoError(t, err)
	defer device.Release()

	entries := []wgpu.BindGroupLayoutEntry{
		uniformEntry(0, 48),
		{Binding: 1, Visibility: wgpu.ShaderStageFragment, Sampler: wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering}},
		{Binding: 2, Visibility: wgpu.ShaderStageFragment, Texture: wgpu.TextureBindingLayout{SampleType: wgpu.TextureSampleTypeFloat, ViewDimension: wgpu.TextureViewDimension2D}},
	}

	missing := NewBindGroupProvider("Material", entries)
	assert.ErrorContains(t, missing.Init(device), "sampler binding 1")

	samp, err := device.CreateSampler("s", common.SamplerStagingData{})
	require.NoError(t, err)
	tex, err := device.CreateTexture(renderer.TextureDescriptor{Label: "t", Width: 1, Height: 1}, make([]byte, 4))
	require.NoError(t, err)

	p := NewBindGroupProvider("Material", entries, WithSampler(1, samp), WithTexture(2, tex))
	require.NoError(t, p.Init(device))
	assert.Same(t, samp, p.Sampler(1))
	assert.Same(t, tex, p.Texture(2))
	assert.Len(t, p.BindGroup().Entries(), 3)
}

func TestApplyWrites(t *testing.T) {
	device, err := renderer.NewRenderer(renderer.BackendTypeRecording)
	require.NoError(t, err)
	defer device.Release()

	a := NewBindGroupProvider("A", []wgpu.BindGroupLayoutEntry{uniformEntry(0, 8)})
	b := NewBindGroupProvider("B", []wgpu.BindGroupLayoutEntry{uniformEntry(0, 8)})
	require.NoError(t, a.Init(device))

	err = ApplyWrites(device, []BufferWrite{
		{Provider: a, Binding: 0, Offset: 4, Data: []byte{1, 1, 1, 1}},
		{Provider: b, Binding: 0, Data: []byte{2, 2, 2, 2}},
	})
	assert.ErrorContains(t, err, "write to B binding 0")
	assert.Equal(t, []byte{0, 0, 0, 0, 1, 1, 1, 1}, a.Buffer(0).Contents())
}
