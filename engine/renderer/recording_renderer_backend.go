package renderer

import (
	"fmt"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// recordingRendererBackend keeps every resource on the CPU. Buffers carry a shadow copy of
// their contents so uploads can be inspected without a device.
type recordingRendererBackend struct {
	released bool
}

var _ RendererBackend = &recordingRendererBackend{}

func newRecordingRendererBackend() *recordingRendererBackend {
	return &recordingRendererBackend{}
}

func (b *recordingRendererBackend) checkAlive() error {
	if b.released {
		return fmt.Errorf("recording backend has been released")
	}
	return nil
}

func (b *recordingRendererBackend) CreateBuffer(desc BufferDescriptor) (*Buffer, error) {
	if err := b.checkAlive(); err != nil {
		return nil, err
	}
	buf := &Buffer{
		size:   desc.Size,
		usage:  desc.Usage,
		shadow: make([]byte, desc.Size),
	}
	buf.resource = resource{label: desc.Label, release: func() { buf.shadow = nil }}
	return buf, nil
}

func (b *recordingRendererBackend) WriteBuffer(buf *Buffer, offset uint64, data []byte) error {
	if err := b.checkAlive(); err != nil {
		return err
	}
	if buf.shadow == nil {
		return fmt.Errorf("buffer %q has been released", buf.label)
	}
	copy(buf.shadow[offset:], data)
	return nil
}

func (b *recordingRendererBackend) CreateTexture(desc TextureDescriptor, pixels []byte) (*Texture, error) {
	if err := b.checkAlive(); err != nil {
		return nil, err
	}
	return &Texture{
		resource: resource{label: desc.Label, release: func() {}},
		width:    desc.Width,
		height:   desc.Height,
		format:   desc.Format,
	}, nil
}

func (b *recordingRendererBackend) CreateSampler(label string, desc wgpu.SamplerDescriptor) (*Sampler, error) {
	if err := b.checkAlive(); err != nil {
		return nil, err
	}
	return &Sampler{resource: resource{label: label, release: func() {}}, descriptor: desc}, nil
}

func (b *recordingRendererBackend) CreateShaderModule(label, code string) (*ShaderModule, error) {
	if err := b.checkAlive(); err != nil {
		return nil, err
	}
	for _, entry := range []string{"fn vertex_main", "fn fragment_main"} {
		if !strings.Contains(code, entry) {
			return nil, fmt.Errorf("shader module %q: missing entry point %q", label, strings.TrimPrefix(entry, "fn "))
		}
	}
	return &ShaderModule{resource: resource{label: label, release: func() {}}, code: code}, nil
}

func (b *recordingRendererBackend) CreateBindGroupLayout(label string, entries []wgpu.BindGroupLayoutEntry) (*BindGroupLayout, error) {
	if err := b.checkAlive(); err != nil {
		return nil, err
	}
	return &BindGroupLayout{resource: resource{label: label, release: func() {}}, entries: entries}, nil
}

func (b *recordingRendererBackend) CreateBindGroup(desc BindGroupDescriptor) (*BindGroup, error) {
	if err := b.checkAlive(); err != nil {
		return nil, err
	}
	return &BindGroup{resource: resource{label: desc.Label, release: func() {}}, layout: desc.Layout, entries: desc.Entries}, nil
}

func (b *recordingRendererBackend) CreatePipelineLayout(label string, groups []*BindGroupLayout) (*PipelineLayout, error) {
	if err := b.checkAlive(); err != nil {
		return nil, err
	}
	return &PipelineLayout{resource: resource{label: label, release: func() {}}, groups: groups}, nil
}

func (b *recordingRendererBackend) CreateRenderPipeline(desc RenderPipelineDescriptor) (*RenderPipeline, error) {
	if err := b.checkAlive(); err != nil {
		return nil, err
	}
	return &RenderPipeline{resource: resource{label: desc.Label, release: func() {}}, descriptor: desc}, nil
}

func (b *recordingRendererBackend) CreateRenderBundleEncoder(desc RenderBundleEncoderDescriptor) (bundleEncoderBackend, error) {
	if err := b.checkAlive(); err != nil {
		return nil, err
	}
	return recordingBundleEncoder{}, nil
}

func (b *recordingRendererBackend) Release() {
	b.released = true
}

// recordingBundleEncoder relies on RenderBundleEncoder for the command list.
type recordingBundleEncoder struct{}

func (recordingBundleEncoder) SetPipeline(*RenderPipeline) {}
func (recordingBundleEncoder) SetBindGroup(uint32, *BindGroup) {}
func (recordingBundleEncoder) SetVertexBuffer(uint32, *Buffer, uint64, uint64) {}
func (recordingBundleEncoder) SetIndexBuffer(*Buffer, wgpu.IndexFormat, uint64, uint64) {}
func (recordingBundleEncoder) Draw(uint32) {}
func (recordingBundleEncoder) DrawIndexed(uint32) {}

func (recordingBundleEncoder) Finish(string) (*wgpu.RenderBundle, func(), error) {
	return nil, func() {}, nil
}
