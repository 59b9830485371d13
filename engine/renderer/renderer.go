package renderer

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/karst-gfx/karst/engine/renderer/bind_group_provider"
	"github.com/karst-gfx/karst/engine/renderer/pipeline"
	"github.com/karst-gfx/karst/engine/window"
)

var _ Renderer = &renderer{}

// Renderer is the top-level GPU rendering interface. It owns the device, queue and
// surface, keeps a registry of named render pipelines, and exposes the pass and draw
// primitives the higher-level rendering components are built on.
//
// Offscreen work goes through BeginTexturePass / draw calls / EndTexturePass, which
// records and submits one command encoder per pass. Presentation to the window surface
// goes through BeginFrame / draw calls / EndFrame / Present.
type Renderer interface {
	// RegisterPipelines compiles and registers the given pipelines with the backend.
	// Each pipeline's shader core is lowered to WGSL for the pipeline's instancing
	// mode and compiled into a concrete GPU pipeline. Registering a key twice is an
	// error.
	//
	// Parameters:
	//   - pipelines: the pipelines to register.
	//
	// Returns:
	//   - error: an error if shader compilation or pipeline creation fails.
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// Pipeline returns the registered pipeline for the given key, if any.
	Pipeline(key string) (pipeline.Pipeline, bool)

	// SurfaceFormat returns the texture format of the window surface. Composition
	// pipelines that render to the swapchain must use this as their color format.
	SurfaceFormat() wgpu.TextureFormat

	// Resize reconfigures the surface for a new drawable size. Offscreen textures
	// are owned by the components that created them and must be recreated by their
	// owners.
	Resize(width, height uint32)

	// CreateColorTexture creates a render-attachment texture that can also be bound
	// for shader reads.
	//
	// Parameters:
	//   - width: texture width in pixels.
	//   - height: texture height in pixels.
	//   - format: the texture format, e.g. wgpu.TextureFormatRGBA32Float.
	//   - label: a debug label for the texture.
	//
	// Returns:
	//   - *wgpu.Texture: the created texture.
	//   - *wgpu.TextureView: a default view over the whole texture.
	//   - error: an error if creation fails.
	CreateColorTexture(width, height uint32, format wgpu.TextureFormat, label string) (*wgpu.Texture, *wgpu.TextureView, error)

	// CreateDepthTexture creates a Depth32Float render-attachment texture.
	CreateDepthTexture(width, height uint32, label string) (*wgpu.Texture, *wgpu.TextureView, error)

	// InitMeshBuffers creates the vertex and index buffers for a mesh and stores
	// them on the provider. The index count is taken from len(indices).
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertices []byte, indices []uint32) error

	// InitBindGroup creates the uniform buffers and bind group for one bind group
	// index of a registered pipeline, and stores them on the provider. Texture
	// bindings are taken from the views previously set on the provider.
	//
	// Parameters:
	//   - provider: the provider that will own the created resources.
	//   - pipelineKey: the registered pipeline whose layout the group must match.
	//   - group: the bind group index within the pipeline layout.
	//   - bufferSizeOverrides: optional per-binding buffer sizes, keyed by binding
	//     index. Used for dynamically offset uniform buffers that hold many
	//     aligned records. May be nil.
	//
	// Returns:
	//   - error: an error if the pipeline is unknown or resource creation fails.
	InitBindGroup(provider bind_group_provider.BindGroupProvider, pipelineKey string, group int, bufferSizeOverrides map[int]uint64) error

	// CreateInstanceBuffer creates a vertex-usage buffer for per-instance data.
	CreateInstanceBuffer(label string, size uint64) (*wgpu.Buffer, error)

	// WriteBuffer writes data into a buffer at the given byte offset.
	WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte) error

	// WriteBuffers applies a batch of uniform buffer writes.
	WriteBuffers(writes []bind_group_provider.BufferWrite) error

	// ClearTextures clears the given color texture views to transparent black in a
	// single throwaway render pass.
	ClearTextures(views ...*wgpu.TextureView) error

	// BeginTexturePass begins an offscreen render pass targeting the given color
	// attachments and optional depth attachment.
	//
	// Parameters:
	//   - colors: the color attachment views, in shader output order.
	//   - depth: the depth attachment view, or nil for no depth.
	//   - clear: whether to clear the attachments on load. When false the previous
	//     contents are preserved, which is how additive accumulation passes layer
	//     their results.
	//
	// Returns:
	//   - error: an error if a pass or frame is already in progress.
	BeginTexturePass(colors []*wgpu.TextureView, depth *wgpu.TextureView, clear bool) error

	// EndTexturePass ends the current offscreen pass and submits it to the queue.
	EndTexturePass() error

	// DrawCall records a non-instanced indexed draw with the given pipeline, mesh
	// and bind groups, inside the current pass.
	DrawCall(pipelineKey string, mesh bind_group_provider.BindGroupProvider, groups []bind_group_provider.BindGroupProvider) error

	// DrawCallInstanced records a single indexed draw of instanceCount instances,
	// with instanceBuffer bound to the per-instance vertex slot. The pipeline must
	// have been built for vertex-pulled instancing.
	DrawCallInstanced(pipelineKey string, mesh bind_group_provider.BindGroupProvider, instanceBuffer *wgpu.Buffer, instanceCount uint32, groups []bind_group_provider.BindGroupProvider) error

	// DrawCallDynamic records an indexed draw with per-group dynamic uniform
	// offsets, keyed by bind group index. Used by the uniform-buffer instancing
	// path, which issues one draw per aligned record.
	DrawCallDynamic(pipelineKey string, mesh bind_group_provider.BindGroupProvider, groups []bind_group_provider.BindGroupProvider, offsets map[int][]uint32) error

	// BeginFrame acquires the next surface texture and begins a render pass
	// targeting it.
	BeginFrame() error

	// EndFrame ends the surface pass and submits it.
	EndFrame() error

	// Present presents the current surface texture and releases frame resources.
	Present() error

	// Release releases all GPU resources held by the renderer.
	Release()
}

type renderer struct {
	backend RendererBackend

	mu        sync.Mutex
	pipelines map[string]pipeline.Pipeline
}

// NewRenderer creates a Renderer for the given window.
//
// Parameters:
//   - w: the window whose surface the renderer presents to.
//   - options: optional builder options, see renderer_builder.go.
//
// Returns:
//   - Renderer: the created renderer.
//   - error: an error if adapter or device acquisition fails.
func NewRenderer(w window.Window, options ...RendererOption) (Renderer, error) {
	b := &rendererBuilder{
		presentMode: PresentModeVSync,
	}
	for _, opt := range options {
		opt(b)
	}

	backend, err := newWGPURendererBackend(w, b)
	if err != nil {
		return nil, fmt.Errorf("create renderer backend: %w", err)
	}

	return &renderer{
		backend:   backend,
		pipelines: make(map[string]pipeline.Pipeline),
	}, nil
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		if _, exists := r.pipelines[p.PipelineKey()]; exists {
			return fmt.Errorf("pipeline %q already registered", p.PipelineKey())
		}
		if err := r.backend.RegisterRenderPipeline(p); err != nil {
			return fmt.Errorf("register pipeline %q: %w", p.PipelineKey(), err)
		}
		r.pipelines[p.PipelineKey()] = p
	}
	return nil
}

func (r *renderer) Pipeline(key string) (pipeline.Pipeline, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pipelines[key]
	return p, ok
}

func (r *renderer) SurfaceFormat() wgpu.TextureFormat {
	return r.backend.SurfaceFormat()
}

func (r *renderer) Resize(width, height uint32) {
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) CreateColorTexture(width, height uint32, format wgpu.TextureFormat, label string) (*wgpu.Texture, *wgpu.TextureView, error) {
	return r.backend.CreateColorTexture(width, height, format, label)
}

func (r *renderer) CreateDepthTexture(width, height uint32, label string) (*wgpu.Texture, *wgpu.TextureView, error) {
	return r.backend.CreateDepthTexture(width, height, label)
}

func (r *renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertices []byte, indices []uint32) error {
	return r.backend.InitMeshBuffers(provider, vertices, indices)
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, pipelineKey string, group int, bufferSizeOverrides map[int]uint64) error {
	p, ok := r.Pipeline(pipelineKey)
	if !ok {
		return fmt.Errorf("unknown pipeline %q", pipelineKey)
	}
	return r.backend.InitBindGroup(provider, p, group, bufferSizeOverrides)
}

func (r *renderer) CreateInstanceBuffer(label string, size uint64) (*wgpu.Buffer, error) {
	return r.backend.CreateInstanceBuffer(label, size)
}

func (r *renderer) WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte) error {
	return r.backend.WriteBuffer(buf, offset, data)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) error {
	return r.backend.WriteBuffers(writes)
}

func (r *renderer) ClearTextures(views ...*wgpu.TextureView) error {
	return r.backend.ClearTextures(views)
}

func (r *renderer) BeginTexturePass(colors []*wgpu.TextureView, depth *wgpu.TextureView, clear bool) error {
	return r.backend.BeginTexturePass(colors, depth, clear)
}

func (r *renderer) EndTexturePass() error {
	return r.backend.EndTexturePass()
}

func (r *renderer) DrawCall(pipelineKey string, mesh bind_group_provider.BindGroupProvider, groups []bind_group_provider.BindGroupProvider) error {
	p, ok := r.Pipeline(pipelineKey)
	if !ok {
		return fmt.Errorf("unknown pipeline %q", pipelineKey)
	}
	return r.backend.DrawIndexed(p, mesh, nil, 1, groups, nil)
}

func (r *renderer) DrawCallInstanced(pipelineKey string, mesh bind_group_provider.BindGroupProvider, instanceBuffer *wgpu.Buffer, instanceCount uint32, groups []bind_group_provider.BindGroupProvider) error {
	p, ok := r.Pipeline(pipelineKey)
	if !ok {
		return fmt.Errorf("unknown pipeline %q", pipelineKey)
	}
	if instanceCount == 0 {
		return nil
	}
	return r.backend.DrawIndexed(p, mesh, instanceBuffer, instanceCount, groups, nil)
}

func (r *renderer) DrawCallDynamic(pipelineKey string, mesh bind_group_provider.BindGroupProvider, groups []bind_group_provider.BindGroupProvider, offsets map[int][]uint32) error {
	p, ok := r.Pipeline(pipelineKey)
	if !ok {
		return fmt.Errorf("unknown pipeline %q", pipelineKey)
	}
	return r.backend.DrawIndexed(p, mesh, nil, 1, groups, offsets)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) EndFrame() error {
	return r.backend.EndFrame()
}

func (r *renderer) Present() error {
	return r.backend.Present()
}

func (r *renderer) Release() {
	r.backend.Release()
}
