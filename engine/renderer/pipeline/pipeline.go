package pipeline

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/karst-gfx/karst/engine/renderer/shader"
)

// pipeline is the implementation of the Pipeline interface.
// It holds the shader Core and fixed-function configuration used to build the
// underlying WebGPU render pipeline, plus the built pipeline object itself.
type pipeline struct {
	// pipelineKey is the unique identifier for this pipeline, used for caching and lookups
	pipelineKey string

	// core is the shader Core this pipeline renders with; required before registration.
	core shader.Core
	// instancingMode selects how the core's instance record reaches the vertex stage.
	instancingMode shader.InstancingMode

	// renderPipeline is the built WebGPU pipeline, nil until registered.
	renderPipeline *wgpu.RenderPipeline

	// The following properties configure the pipeline during creation and are
	// set with the builder options.

	colorFormats        []wgpu.TextureFormat
	depthFormat         wgpu.TextureFormat
	depthTestEnabled    bool
	depthWriteEnabled   bool
	blendEnabled        bool
	blendState          *wgpu.BlendState
	cullMode            wgpu.CullMode
	topology            wgpu.PrimitiveTopology
	frontFace           wgpu.FrontFace
	writeMask           wgpu.ColorWriteMask
}

// Pipeline defines the interface for a render pipeline: a shader Core plus
// the fixed-function state (color targets, blend, cull, depth, topology)
// required to build it. The GPU pipeline object is attached by the renderer
// at registration time.
type Pipeline interface {
	// PipelineKey returns the unique key associated with this pipeline, used for caching and lookups.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Core returns the shader Core this pipeline renders with.
	//
	// Returns:
	//   - shader.Core: the shader Core
	Core() shader.Core

	// InstancingMode returns how instance records reach the vertex stage.
	//
	// Returns:
	//   - shader.InstancingMode: the instancing mode
	InstancingMode() shader.InstancingMode

	// Pipeline returns the built WebGPU render pipeline, or nil before registration.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the underlying pipeline object or nil
	Pipeline() *wgpu.RenderPipeline

	// ColorFormats returns the color attachment formats this pipeline renders to.
	//
	// Returns:
	//   - []wgpu.TextureFormat: the color target formats in attachment order
	ColorFormats() []wgpu.TextureFormat

	// DepthFormat returns the depth attachment format, or TextureFormatUndefined
	// when the pipeline renders without a depth buffer.
	//
	// Returns:
	//   - wgpu.TextureFormat: the depth format or TextureFormatUndefined
	DepthFormat() wgpu.TextureFormat

	// DepthTestEnabled returns whether depth testing is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if depth testing is enabled, false otherwise
	DepthTestEnabled() bool

	// DepthWriteEnabled returns whether depth writing is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if depth writing is enabled, false otherwise
	DepthWriteEnabled() bool

	// BlendEnabled returns whether blending is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if blending is enabled, false otherwise
	BlendEnabled() bool

	// BlendState returns the blend state applied to every color target when
	// blending is enabled.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state
	BlendState() *wgpu.BlendState

	// CullMode returns the cull mode configured for this pipeline.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode for this pipeline
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology configured for this pipeline.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: the primitive topology for this pipeline
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order configured for this pipeline.
	//
	// Returns:
	//   - wgpu.FrontFace: the front face winding order for this pipeline
	FrontFace() wgpu.FrontFace

	// WriteMask returns the color write mask configured for this pipeline.
	//
	// Returns:
	//   - wgpu.ColorWriteMask: the color write mask for this pipeline
	WriteMask() wgpu.ColorWriteMask

	// SetRenderPipeline attaches the built WebGPU pipeline object.
	//
	// Parameters:
	//   - p: the WebGPU render pipeline to set
	SetRenderPipeline(p *wgpu.RenderPipeline)
}

var _ Pipeline = &pipeline{}

// AdditiveBlendState returns the blend state used for light accumulation:
// source and destination factors of one with addition on both color and
// alpha, so any number of overlapping draws sum in the target.
//
// Returns:
//   - *wgpu.BlendState: the additive blend state
func AdditiveBlendState() *wgpu.BlendState {
	return &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOne,
			Operation: wgpu.BlendOperationAdd,
		},
		Alpha: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOne,
			Operation: wgpu.BlendOperationAdd,
		},
	}
}

// NewPipeline is the entry point to create a new Pipeline. A shader Core must
// be supplied via WithCore before the pipeline can be registered.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance with the specified configuration
func NewPipeline(pipelineKey string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:       pipelineKey,
		instancingMode:    shader.InstancingModeUniforms,
		depthTestEnabled:  false,
		depthWriteEnabled: false,
		blendEnabled:      false,
		blendState:        AdditiveBlendState(),
		cullMode:          wgpu.CullModeNone,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
		depthFormat:       wgpu.TextureFormatUndefined,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Core() shader.Core {
	return p.core
}

func (p *pipeline) InstancingMode() shader.InstancingMode {
	return p.instancingMode
}

func (p *pipeline) Pipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) ColorFormats() []wgpu.TextureFormat {
	return p.colorFormats
}

func (p *pipeline) DepthFormat() wgpu.TextureFormat {
	return p.depthFormat
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}
