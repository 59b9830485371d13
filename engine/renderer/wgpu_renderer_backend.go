package renderer

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/karst-gfx/karst/common"
	"github.com/karst-gfx/karst/engine/renderer/bind_group_provider"
	"github.com/karst-gfx/karst/engine/renderer/pipeline"
	"github.com/karst-gfx/karst/engine/window"
)

// wgpuRendererBackend is the WebGPU implementation surface consumed by the Renderer
// facade. It maps the renderer's pass and draw primitives onto wgpu command encoders.
type wgpuRendererBackend interface {
	// ConfigureSurface (re)configures the window surface for the given drawable size.
	ConfigureSurface(width, height uint32)

	// SurfaceFormat returns the configured surface texture format.
	SurfaceFormat() wgpu.TextureFormat

	// RegisterRenderPipeline lowers the pipeline's shader core to WGSL and creates
	// the concrete GPU render pipeline, storing it on the pipeline object.
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// CreateColorTexture creates a renderable texture that can also be bound for
	// shader reads.
	CreateColorTexture(width, height uint32, format wgpu.TextureFormat, label string) (*wgpu.Texture, *wgpu.TextureView, error)

	// CreateDepthTexture creates a Depth32Float render-attachment texture.
	CreateDepthTexture(width, height uint32, label string) (*wgpu.Texture, *wgpu.TextureView, error)

	// InitMeshBuffers creates vertex and index buffers on the provider.
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData []byte, indices []uint32) error

	// InitBindGroup creates the buffers and bind group for one group of the
	// pipeline's layout and stores them on the provider.
	InitBindGroup(provider bind_group_provider.BindGroupProvider, p pipeline.Pipeline, group int, bufferSizeOverrides map[int]uint64) error

	// CreateInstanceBuffer creates a vertex-usage buffer for per-instance records.
	CreateInstanceBuffer(label string, size uint64) (*wgpu.Buffer, error)

	// WriteBuffer writes data into a buffer at the given byte offset.
	WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte) error

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	WriteBuffers(writes []bind_group_provider.BufferWrite) error

	// ClearTextures clears the given color views to transparent black.
	ClearTextures(views []*wgpu.TextureView) error

	// BeginTexturePass begins an offscreen pass over the given attachments.
	BeginTexturePass(colors []*wgpu.TextureView, depth *wgpu.TextureView, clear bool) error

	// EndTexturePass ends the offscreen pass and submits its commands.
	EndTexturePass() error

	// DrawIndexed records an indexed draw inside the active pass.
	//
	// Parameters:
	//   - p: the registered pipeline to bind.
	//   - meshProvider: provider holding the vertex and index buffers.
	//   - instanceBuffer: optional per-instance vertex buffer, bound to slot 1.
	//   - instanceCount: number of instances to draw.
	//   - bindGroups: bind group providers in group-index order.
	//   - dynamicOffsets: optional dynamic uniform offsets keyed by group index.
	DrawIndexed(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, instanceBuffer *wgpu.Buffer, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider, dynamicOffsets map[int][]uint32) error

	// BeginFrame acquires the next surface texture and begins the surface pass.
	BeginFrame() error

	// EndFrame ends the surface pass and submits its commands. Does not present
	// the surface, call Present() after EndFrame to display the frame.
	EndFrame() error

	// Present presents the acquired surface texture.
	Present() error

	// Release releases the device, queue, surface and instance.
	Release()
}

type wgpuRendererBackendImpl struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	surfaceFormat *wgpu.TextureFormat
	presentMode   wgpu.PresentMode

	// Swapchain frame state, valid between BeginFrame and Present.
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView

	// Offscreen pass state, valid between BeginTexturePass and EndTexturePass.
	texEncoder *wgpu.CommandEncoder
	texPass    *wgpu.RenderPassEncoder
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(w window.Window, b *rendererBuilder) (wgpuRendererBackend, error) {
	runtime.LockOSThread()

	backend := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
	}
	if b.presentMode == PresentModeUncapped {
		backend.presentMode = wgpu.PresentModeImmediate
	}
	backend.surface = backend.instance.CreateSurface(w.SurfaceDescriptor())

	a, err := backend.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: b.forceFallbackAdapter,
		CompatibleSurface:    backend.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	backend.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}
	backend.device = d
	backend.queue = d.GetQueue()

	backend.ConfigureSurface(uint32(w.Width()), uint32(w.Height()))

	return backend, nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = &capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       width,
		Height:      height,
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
}

func (b *wgpuRendererBackendImpl) SurfaceFormat() wgpu.TextureFormat {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.surfaceFormat == nil {
		return wgpu.TextureFormatUndefined
	}
	return *b.surfaceFormat
}

func (b *wgpuRendererBackendImpl) RegisterRenderPipeline(p pipeline.Pipeline) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	core := p.Core()
	mode := p.InstancingMode()

	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: p.PipelineKey(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: core.Source(mode),
		},
	})
	if err != nil {
		return err
	}

	descriptors := core.BindGroupLayoutDescriptors(mode)
	maxGroup := -1
	for g := range descriptors {
		if g > maxGroup {
			maxGroup = g
		}
	}
	bindGroupLayouts := make([]*wgpu.BindGroupLayout, maxGroup+1)
	for g, desc := range descriptors {
		layout, layoutErr := b.device.CreateBindGroupLayout(&desc)
		if layoutErr != nil {
			return fmt.Errorf("failed to create bind group layout for group %d: %w", g, layoutErr)
		}
		bindGroupLayouts[g] = layout
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: bindGroupLayouts,
	})
	if err != nil {
		return err
	}

	colorFormats := p.ColorFormats()
	if len(colorFormats) == 0 {
		colorFormats = []wgpu.TextureFormat{*b.surfaceFormat}
	}
	targets := make([]wgpu.ColorTargetState, len(colorFormats))
	for i, format := range colorFormats {
		state := wgpu.ColorTargetState{
			Format:    format,
			WriteMask: p.WriteMask(),
		}
		if p.BlendEnabled() {
			state.Blend = p.BlendState()
		}
		targets[i] = state
	}

	var depthStencil *wgpu.DepthStencilState
	if p.DepthFormat() != wgpu.TextureFormatUndefined {
		depthCompare := wgpu.CompareFunctionLess
		if !p.DepthTestEnabled() {
			depthCompare = wgpu.CompareFunctionAlways
		}
		depthStencil = &wgpu.DepthStencilState{
			Format:            p.DepthFormat(),
			DepthWriteEnabled: p.DepthWriteEnabled(),
			DepthCompare:      depthCompare,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		}
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers:    core.VertexBufferLayouts(mode),
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets:    targets,
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: depthStencil,
	})
	if err != nil {
		return err
	}

	p.SetRenderPipeline(created)

	return nil
}

func (b *wgpuRendererBackendImpl) CreateColorTexture(width, height uint32, format wgpu.TextureFormat, label string) (*wgpu.Texture, *wgpu.TextureView, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return nil, nil, err
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, err
	}
	return tex, view, nil
}

func (b *wgpuRendererBackendImpl) CreateDepthTexture(width, height uint32, label string) (*wgpu.Texture, *wgpu.TextureView, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth32Float,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, nil, err
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, err
	}
	return tex, view, nil
}

func (b *wgpuRendererBackendImpl) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData []byte, indices []uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(vertexData) > 0 {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            provider.Label() + " Vertex Buffer",
			Size:             uint64(len(vertexData)),
			Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if err != nil {
			return err
		}
		b.queue.WriteBuffer(buf, 0, vertexData)
		provider.SetVertexBuffer(buf)
	}

	if len(indices) > 0 {
		indexData := common.SliceToBytes(indices)
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            provider.Label() + " Index Buffer",
			Size:             uint64(len(indexData)),
			Usage:            wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if err != nil {
			return err
		}
		b.queue.WriteBuffer(buf, 0, indexData)
		provider.SetIndexBuffer(buf)
	}

	provider.SetIndexCount(len(indices))

	return nil
}

func (b *wgpuRendererBackendImpl) InitBindGroup(provider bind_group_provider.BindGroupProvider, p pipeline.Pipeline, group int, bufferSizeOverrides map[int]uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	descriptors := p.Core().BindGroupLayoutDescriptors(p.InstancingMode())
	descriptor, ok := descriptors[group]
	if !ok {
		return fmt.Errorf("pipeline %q has no bind group %d", p.PipelineKey(), group)
	}
	if len(descriptor.Entries) == 0 {
		return nil
	}

	layout := provider.BindGroupLayout()
	if layout == nil {
		var err error
		layout, err = b.device.CreateBindGroupLayout(&descriptor)
		if err != nil {
			return err
		}
		provider.SetBindGroupLayout(layout)
	}

	bindGroupEntries := make([]wgpu.BindGroupEntry, len(descriptor.Entries))
	for i, entry := range descriptor.Entries {
		binding := int(entry.Binding)

		if entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined {
			tv := provider.TextureView(binding)
			if tv == nil {
				return fmt.Errorf("texture binding %d has no texture view, call SetTextureView first", binding)
			}
			bindGroupEntries[i] = wgpu.BindGroupEntry{
				Binding:     entry.Binding,
				TextureView: tv,
			}
			continue
		}

		buf := provider.Buffer(binding)
		if buf == nil {
			bufSize := entry.Buffer.MinBindingSize
			if overrideSize, ok := bufferSizeOverrides[binding]; ok {
				bufSize = overrideSize
			}
			var bufErr error
			buf, bufErr = b.device.CreateBuffer(&wgpu.BufferDescriptor{
				Label: provider.Label() + " Buffer",
				Size:  bufSize,
				Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
			})
			if bufErr != nil {
				return bufErr
			}
			provider.SetBuffer(binding, buf)
		}

		// Dynamically offset bindings are bound with the per-draw record size;
		// the offset selects the record at draw time.
		size := uint64(wgpu.WholeSize)
		if entry.Buffer.HasDynamicOffset {
			size = entry.Buffer.MinBindingSize
		}
		bindGroupEntries[i] = wgpu.BindGroupEntry{
			Binding: entry.Binding,
			Buffer:  buf,
			Offset:  0,
			Size:    size,
		}
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: bindGroupEntries,
	})
	if err != nil {
		return err
	}
	provider.SetBindGroup(bindGroup)

	return nil
}

func (b *wgpuRendererBackendImpl) CreateInstanceBuffer(label string, size uint64) (*wgpu.Buffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             size,
		Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
}

func (b *wgpuRendererBackendImpl) WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.queue.WriteBuffer(buf, offset, data)
	return nil
}

func (b *wgpuRendererBackendImpl) WriteBuffers(writes []bind_group_provider.BufferWrite) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			return fmt.Errorf("buffer write to %q binding %d: no buffer", w.Provider.Label(), w.Binding)
		}
		b.queue.WriteBuffer(buf, w.Offset, w.Data)
	}
	return nil
}

func (b *wgpuRendererBackendImpl) ClearTextures(views []*wgpu.TextureView) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(views) == 0 {
		return nil
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	attachments := make([]wgpu.RenderPassColorAttachment, len(views))
	for i, view := range views {
		attachments[i] = wgpu.RenderPassColorAttachment{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{},
		}
	}
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label:            "Clear Pass",
		ColorAttachments: attachments,
	})
	pass.End()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	defer commandBuffer.Release()
	b.queue.Submit(commandBuffer)

	return nil
}

func (b *wgpuRendererBackendImpl) BeginTexturePass(colors []*wgpu.TextureView, depth *wgpu.TextureView, clear bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.texPass != nil {
		return fmt.Errorf("texture pass already in progress")
	}
	if b.framePass != nil {
		return fmt.Errorf("surface frame in progress")
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}

	loadOp := wgpu.LoadOpLoad
	if clear {
		loadOp = wgpu.LoadOpClear
	}

	attachments := make([]wgpu.RenderPassColorAttachment, len(colors))
	for i, view := range colors {
		attachments[i] = wgpu.RenderPassColorAttachment{
			View:       view,
			LoadOp:     loadOp,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{},
		}
	}

	descriptor := &wgpu.RenderPassDescriptor{
		Label:            "Texture Pass",
		ColorAttachments: attachments,
	}
	if depth != nil {
		depthLoadOp := wgpu.LoadOpLoad
		if clear {
			depthLoadOp = wgpu.LoadOpClear
		}
		descriptor.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            depth,
			DepthLoadOp:     depthLoadOp,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		}
	}

	b.texEncoder = encoder
	b.texPass = encoder.BeginRenderPass(descriptor)

	return nil
}

func (b *wgpuRendererBackendImpl) EndTexturePass() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.texPass == nil {
		return fmt.Errorf("no texture pass in progress")
	}

	b.texPass.End()
	b.texPass = nil

	commandBuffer, err := b.texEncoder.Finish(nil)
	if err != nil {
		b.texEncoder.Release()
		b.texEncoder = nil
		return err
	}

	b.queue.Submit(commandBuffer)

	commandBuffer.Release()
	b.texEncoder.Release()
	b.texEncoder = nil

	return nil
}

func (b *wgpuRendererBackendImpl) DrawIndexed(
	p pipeline.Pipeline,
	meshProvider bind_group_provider.BindGroupProvider,
	instanceBuffer *wgpu.Buffer,
	instanceCount uint32,
	bindGroups []bind_group_provider.BindGroupProvider,
	dynamicOffsets map[int][]uint32,
) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	pass := b.texPass
	if pass == nil {
		pass = b.framePass
	}
	if pass == nil {
		return fmt.Errorf("no render pass in progress")
	}

	pass.SetPipeline(p.Pipeline())

	for i, bg := range bindGroups {
		pass.SetBindGroup(uint32(i), bg.BindGroup(), dynamicOffsets[i])
	}

	pass.SetVertexBuffer(0, meshProvider.VertexBuffer(), 0, wgpu.WholeSize)
	if instanceBuffer != nil {
		pass.SetVertexBuffer(1, instanceBuffer, 0, wgpu.WholeSize)
	}
	pass.SetIndexBuffer(meshProvider.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	pass.DrawIndexed(uint32(meshProvider.IndexCount()), instanceCount, 0, 0, 0)

	return nil
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// If a previous frame's surface texture is still held, avoid attempting to
	// acquire another one. This prevents wgpu-native validation errors like
	// "Surface image is already acquired" when frames overlap.
	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}
	if b.texPass != nil {
		return fmt.Errorf("texture pass in progress")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{A: 1.0},
			},
		},
	})

	b.frameEncoder = encoder
	b.framePass = pass
	b.frameSurface = surfaceTexture
	b.frameView = view

	return nil
}

func (b *wgpuRendererBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return fmt.Errorf("no frame in progress")
	}

	b.framePass.End()

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		b.frameEncoder.Release()
		b.frameView.Release()
		b.frameSurface.Release()
		b.frameEncoder = nil
		b.framePass = nil
		b.frameSurface = nil
		b.frameView = nil
		return err
	}

	b.queue.Submit(commandBuffer)

	commandBuffer.Release()
	b.frameEncoder.Release()
	b.frameEncoder = nil
	b.framePass = nil

	return nil
}

func (b *wgpuRendererBackendImpl) Present() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return nil
	}

	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	b.frameSurface.Release()
	b.frameSurface = nil

	return nil
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
