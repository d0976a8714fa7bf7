package renderer

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// wgpuRendererBackendImpl runs on a headless WebGPU device. Surface configuration and
// presentation belong to the host application and are not handled here.
type wgpuRendererBackendImpl struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(forceFallbackAdapter bool) (*wgpuRendererBackendImpl, error) {
	runtime.LockOSThread()
	w := &wgpuRendererBackendImpl{
		instance: wgpu.CreateInstance(nil),
	}

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
	})
	if err != nil {
		w.instance.Release()
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	w.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "GLB Import Device",
	})
	if err != nil {
		a.Release()
		w.instance.Release()
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	w.device = d
	w.queue = d.GetQueue()

	return w, nil
}

func (b *wgpuRendererBackendImpl) CreateBuffer(desc BufferDescriptor) (*Buffer, error) {
	raw, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size,
		Usage: desc.Usage,
	})
	if err != nil {
		return nil, err
	}
	return &Buffer{
		resource: resource{label: desc.Label, release: raw.Release},
		size:     desc.Size,
		usage:    desc.Usage,
		raw:      raw,
	}, nil
}

func (b *wgpuRendererBackendImpl) WriteBuffer(buf *Buffer, offset uint64, data []byte) error {
	if buf.raw == nil {
		return fmt.Errorf("buffer %q was not created by this backend", buf.label)
	}
	b.queue.WriteBuffer(buf.raw, offset, data)
	return nil
}

func (b *wgpuRendererBackendImpl) CreateTexture(desc TextureDescriptor, pixels []byte) (*Texture, error) {
	extent := wgpu.Extent3D{
		Width:              desc.Width,
		Height:             desc.Height,
		DepthOrArrayLayers: 1,
	}
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         desc.Label,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		Size:          extent,
		Format:        desc.Format,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, err
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  desc.Width * 4,
			RowsPerImage: desc.Height,
		},
		&extent,
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, err
	}

	return &Texture{
		resource: resource{label: desc.Label, release: func() {
			view.Release()
			tex.Release()
		}},
		width:  desc.Width,
		height: desc.Height,
		format: desc.Format,
		raw:    tex,
		view:   view,
	}, nil
}

func (b *wgpuRendererBackendImpl) CreateSampler(label string, desc wgpu.SamplerDescriptor) (*Sampler, error) {
	raw, err := b.device.CreateSampler(&desc)
	if err != nil {
		return nil, err
	}
	return &Sampler{resource: resource{label: label, release: raw.Release}, descriptor: desc, raw: raw}, nil
}

func (b *wgpuRendererBackendImpl) CreateShaderModule(label, code string) (*ShaderModule, error) {
	raw, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: code,
		},
	})
	if err != nil {
		return nil, err
	}
	return &ShaderModule{resource: resource{label: label, release: raw.Release}, code: code, raw: raw}, nil
}

func (b *wgpuRendererBackendImpl) CreateBindGroupLayout(label string, entries []wgpu.BindGroupLayoutEntry) (*BindGroupLayout, error) {
	raw, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   label,
		Entries: entries,
	})
	if err != nil {
		return nil, err
	}
	return &BindGroupLayout{resource: resource{label: label, release: raw.Release}, entries: entries, raw: raw}, nil
}

func (b *wgpuRendererBackendImpl) CreateBindGroup(desc BindGroupDescriptor) (*BindGroup, error) {
	if desc.Layout.raw == nil {
		return nil, fmt.Errorf("bind group %q: layout was not created by this backend", desc.Label)
	}

	entries := make([]wgpu.BindGroupEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		switch {
		case e.Buffer != nil:
			entries[i] = wgpu.BindGroupEntry{
				Binding: e.Binding,
				Buffer:  e.Buffer.raw,
				Offset:  e.Offset,
				Size:    wgpu.WholeSize,
			}
			if e.Size != 0 {
				entries[i].Size = e.Size
			}
		case e.Sampler != nil:
			entries[i] = wgpu.BindGroupEntry{
				Binding: e.Binding,
				Sampler: e.Sampler.raw,
			}
		case e.Texture != nil:
			entries[i] = wgpu.BindGroupEntry{
				Binding:     e.Binding,
				TextureView: e.Texture.view,
			}
		default:
			return nil, fmt.Errorf("bind group %q: binding %d has no resource", desc.Label, e.Binding)
		}
	}

	raw, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  desc.Layout.raw,
		Entries: entries,
	})
	if err != nil {
		return nil, err
	}
	return &BindGroup{
		resource: resource{label: desc.Label, release: raw.Release},
		layout:   desc.Layout,
		entries:  desc.Entries,
		raw:      raw,
	}, nil
}

func (b *wgpuRendererBackendImpl) CreatePipelineLayout(label string, groups []*BindGroupLayout) (*PipelineLayout, error) {
	layouts := make([]*wgpu.BindGroupLayout, len(groups))
	for i, g := range groups {
		layouts[i] = g.raw
	}
	raw, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            label,
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return nil, err
	}
	return &PipelineLayout{resource: resource{label: label, release: raw.Release}, groups: groups, raw: raw}, nil
}

func (b *wgpuRendererBackendImpl) CreateRenderPipeline(desc RenderPipelineDescriptor) (*RenderPipeline, error) {
	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: desc.Layout.raw,
		Vertex: wgpu.VertexState{
			Module:     desc.Module.raw,
			EntryPoint: desc.VertexEntryPoint,
			Buffers:    desc.VertexBuffers,
		},
		Fragment: &wgpu.FragmentState{
			Module:     desc.Module.raw,
			EntryPoint: desc.FragmentEntryPoint,
			Targets: []wgpu.ColorTargetState{
				{
					Format:    desc.ColorFormat,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: desc.Primitive,
		Multisample: wgpu.MultisampleState{
			Count: desc.SampleCount,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            desc.DepthStencilFormat,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return nil, err
	}
	return &RenderPipeline{resource: resource{label: desc.Label, release: created.Release}, descriptor: desc, raw: created}, nil
}

func (b *wgpuRendererBackendImpl) CreateRenderBundleEncoder(desc RenderBundleEncoderDescriptor) (bundleEncoderBackend, error) {
	enc, err := b.device.CreateRenderBundleEncoder(&wgpu.RenderBundleEncoderDescriptor{
		Label:              desc.Label,
		ColorFormats:       desc.ColorFormats,
		DepthStencilFormat: desc.DepthStencilFormat,
		SampleCount:        desc.SampleCount,
	})
	if err != nil {
		return nil, err
	}
	return &wgpuBundleEncoder{encoder: enc}, nil
}

func (b *wgpuRendererBackendImpl) Release() {
	if b.queue != nil {
		b.queue.Release()
	}
	if b.device != nil {
		b.device.Release()
	}
	if b.adapter != nil {
		b.adapter.Release()
	}
	if b.instance != nil {
		b.instance.Release()
	}
	runtime.UnlockOSThread()
}

// wgpuBundleEncoder forwards recorded commands to a native render bundle encoder.
type wgpuBundleEncoder struct {
	encoder *wgpu.RenderBundleEncoder
}

func (e *wgpuBundleEncoder) SetPipeline(p *RenderPipeline) {
	e.encoder.SetPipeline(p.raw)
}

func (e *wgpuBundleEncoder) SetBindGroup(group uint32, bg *BindGroup) {
	e.encoder.SetBindGroup(group, bg.raw, nil)
}

func (e *wgpuBundleEncoder) SetVertexBuffer(slot uint32, buf *Buffer, offset, size uint64) {
	e.encoder.SetVertexBuffer(slot, buf.raw, offset, size)
}

func (e *wgpuBundleEncoder) SetIndexBuffer(buf *Buffer, format wgpu.IndexFormat, offset, size uint64) {
	e.encoder.SetIndexBuffer(buf.raw, format, offset, size)
}

func (e *wgpuBundleEncoder) Draw(vertexCount uint32) {
	e.encoder.Draw(vertexCount, 1, 0, 0)
}

func (e *wgpuBundleEncoder) DrawIndexed(indexCount uint32) {
	e.encoder.DrawIndexed(indexCount, 1, 0, 0, 0)
}

func (e *wgpuBundleEncoder) Finish(label string) (*wgpu.RenderBundle, func(), error) {
	bundle := e.encoder.Finish(&wgpu.RenderBundleDescriptor{Label: label})
	e.encoder.Release()
	if bundle == nil {
		return nil, nil, fmt.Errorf("render bundle %q: finish returned no bundle", label)
	}
	return bundle, bundle.Release, nil
}
