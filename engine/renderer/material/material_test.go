package material

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDevice(t *testing.T, options ...renderer.RendererBuilderOption) (renderer.Renderer, shader.Cache) {
	t.Helper()
	device, err := renderer.NewRenderer(renderer.BackendTypeRecording, options...)
	require.NoError(t, err)
	cache := shader.NewCache(device)
	t.Cleanup(func() {
		cache.Release()
		device.Release()
	})
	return device, cache
}

func f32At(buf []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset:]))
}

func TestDefaults(t *testing.T) {
	m := NewMaterial()
	assert.Equal(t, common.NoIndex, m.Index())
	assert.Equal(t, [4]float32{1, 1, 1, 1}, m.BaseColorFactor())
	assert.Equal(t, [4]float32{0, 0, 0, 1}, m.EmissiveFactor())
	assert.Equal(t, float32(1), m.MetallicFactor())
	assert.Equal(t, float32(1), m.RoughnessFactor())
	assert.Nil(t, m.BaseColorTexture())
	assert.True(t, m.NeedsUpload())
}

func TestParamsLayout(t *testing.T) {
	m := NewMaterial(
		WithBaseColorFactor([4]float32{0.1, 0.2, 0.3, 0.4}),
		WithEmissiveFactor([3]float32{0.5, 0.6, 0.7}),
		WithMetallicFactor(0.25),
		WithRoughnessFactor(0.75),
	)
	params := m.Params()
	assert.Equal(t, 48, params.Size())

	buf := params.Marshal()
	require.Len(t, buf, 48)
	assert.Equal(t, float32(0.1), f32At(buf, 0))
	assert.Equal(t, float32(0.4), f32At(buf, 12))
	assert.Equal(t, float32(0.5), f32At(buf, 16))
	assert.Equal(t, float32(1), f32At(buf, 28), "emissive w is reserved as 1")
	assert.Equal(t, float32(0.25), f32At(buf, 32))
	assert.Equal(t, float32(0.75), f32At(buf, 36))
	assert.Equal(t, make([]byte, 8), buf[40:])
}

func TestUploadUntextured(t *testing.T) {
	device, cache := newDevice(t)

	m := NewMaterial(WithIndex(3), WithName("red"), WithBaseColorFactor([4]float32{1, 0, 0, 1}))
	require.NoError(t, m.Upload(device, cache))
	require.False(t, m.NeedsUpload())

	bg := m.BindGroupProvider().BindGroup()
	require.Len(t, bg.Entries(), 1)
	params := m.Params()
	assert.Equal(t, params.Marshal(), m.BindGroupProvider().Buffer(0).Contents())

	require.NoError(t, m.Upload(device, cache))
	assert.Equal(t, 1, device.Stats().Count(renderer.ResourceBindGroup), "second upload is a no-op")
}

func TestUploadTexturedSharesImageAndSampler(t *testing.T) {
	device, cache := newDevice(t)

	img := NewImage(0, "checker", common.TextureStagingData{Pixels: make([]byte, 16), Width: 2, Height: 2})
	samp := NewSampler(common.NoIndex, DefaultSamplerData)
	a := NewMaterial(WithIndex(0), WithBaseColorTexture(NewTexture(0, img, samp)))
	b := NewMaterial(WithIndex(1), WithBaseColorTexture(NewTexture(1, img, samp)))

	require.NoError(t, a.Upload(device, cache))
	require.NoError(t, b.Upload(device, cache))

	assert.Equal(t, 1, device.Stats().Count(renderer.ResourceTexture))
	assert.Equal(t, 1, device.Stats().Count(renderer.ResourceSampler))
	assert.Equal(t, wgpu.TextureFormatRGBA8UnormSrgb, img.GPU().Format())

	entries := a.BindGroupProvider().BindGroup().Entries()
	require.Len(t, entries, 3)
	assert.Same(t, samp.GPU(), entries[1].Sampler)
	assert.Same(t, img.GPU(), entries[2].Texture)
	assert.Same(t, a.BindGroupProvider().BindGroupLayout(), b.BindGroupProvider().BindGroupLayout())
}

func TestUploadFailureIsResourceCreationError(t *testing.T) {
	device, cache := newDevice(t, renderer.WithFailureInjection(renderer.ResourceTexture, 0))

	img := NewImage(4, "", common.TextureStagingData{Pixels: make([]byte, 4), Width: 1, Height: 1})
	m := NewMaterial(WithBaseColorTexture(NewTexture(0, img, NewSampler(common.NoIndex, DefaultSamplerData))))

	err := m.Upload(device, cache)
	var rce *common.ResourceCreationError
	require.True(t, errors.As(err, &rce))
	assert.Equal(t, "image", rce.Resource)
	assert.Equal(t, 4, rce.Index)
	assert.True(t, m.NeedsUpload())
}
