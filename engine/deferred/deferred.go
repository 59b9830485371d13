// Package deferred implements deferred shading: the scene pass writes world
// positions and normals into a G-buffer, a light pass accumulates every
// light's diffuse contribution into a light texture, and the composition
// pass modulates the final color by the accumulated light.
//
// The component plugs into the render pass driver on both ends: it
// transforms the scene core to emit the G-buffer outputs and the composition
// core to consume the light texture. The light pass itself runs between the
// two, with main (directional-style) lights drawn as full-screen quads and
// point lights drawn as one instanced batch of front-culled sphere volumes,
// both blending additively into the light texture.
package deferred

import (
	"fmt"
	"log"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/karst-gfx/karst/engine/basicobj"
	"github.com/karst-gfx/karst/engine/camera"
	"github.com/karst-gfx/karst/engine/light"
	"github.com/karst-gfx/karst/engine/renderer"
	"github.com/karst-gfx/karst/engine/renderer/bind_group_provider"
	"github.com/karst-gfx/karst/engine/renderer/pipeline"
	"github.com/karst-gfx/karst/engine/renderer/shader"
	"github.com/karst-gfx/karst/engine/renderpass"
	"github.com/karst-gfx/karst/engine/screenquad"
)

// deferredShading is the implementation of the DeferredShading interface.
type deferredShading struct {
	config      Config
	haveShadows bool

	width  uint32
	height uint32

	// G-buffer and light accumulation targets, reallocated on resize.
	posTexture    *wgpu.Texture
	posView       *wgpu.TextureView
	normalTexture *wgpu.Texture
	normalView    *wgpu.TextureView
	shadowTexture *wgpu.Texture
	shadowView    *wgpu.TextureView
	lightTexture  *wgpu.Texture
	lightView     *wgpu.TextureView

	// quad covers the full screen for main light draws; sphere is the unit
	// volume proxy instanced per point light.
	quad   bind_group_provider.BindGroupProvider
	sphere bind_group_provider.BindGroupProvider

	// cameraProvider carries the scene camera for the light object pipeline;
	// identityProvider carries identity matrices for the full-screen quad.
	cameraProvider   bind_group_provider.BindGroupProvider
	identityProvider bind_group_provider.BindGroupProvider

	// Main lights queue one uniform record each at the Quad kind; the series
	// packs them at dynamic-offset stride and the drawable draws the
	// full-screen quad once per record.
	mainList     *basicobj.RenderList[*light.GPULightUniform]
	mainSeries   *basicobj.UniformSeries[*light.GPULightUniform]
	mainDrawable basicobj.Drawable

	// mainTexProvider and objectTexProvider bind the G-buffer views into the
	// two light pipelines; rebuilt on resize.
	mainTexProvider   bind_group_provider.BindGroupProvider
	objectTexProvider bind_group_provider.BindGroupProvider

	lightList      *basicobj.RenderList[*light.GPULightInstance]
	lightInstances *basicobj.Instancing[*light.GPULightInstance]
}

// DeferredShading owns the G-buffer, the light accumulation texture, and the
// two light pipelines, and contributes to the scene and composition passes
// through the render pass component interfaces.
type DeferredShading interface {
	renderpass.SceneComponent
	renderpass.CompositionComponent

	// OnTargetResize reallocates the resolution-dependent textures and
	// rebinds them. The component identity and all non-texture GPU state are
	// preserved.
	//
	// Parameters:
	//   - r: the renderer
	//   - width: the new target width in pixels
	//   - height: the new target height in pixels
	//
	// Returns:
	//   - error: an error if texture creation or rebinding fails
	OnTargetResize(r renderer.Renderer, width, height uint32) error

	// LightPass accumulates every light's contribution into the light
	// texture. Main lights draw as full-screen additive quads; point lights
	// solve their influence radius against the configured threshold and draw
	// as one instanced batch of front-culled sphere volumes. Point lights
	// whose attenuation never reaches the threshold are skipped.
	//
	// Parameters:
	//   - r: the renderer
	//   - cam: the scene camera
	//   - lights: all lights in the scene
	//
	// Returns:
	//   - error: an error if an upload or draw fails
	LightPass(r renderer.Renderer, cam camera.Camera, lights []light.Light) error

	// LightTextureView returns the light accumulation texture view. The
	// view changes on resize.
	//
	// Returns:
	//   - *wgpu.TextureView: the light texture view
	LightTextureView() *wgpu.TextureView

	// NormalTextureView returns the world normal G-buffer view. The view
	// changes on resize.
	//
	// Returns:
	//   - *wgpu.TextureView: the normal texture view
	NormalTextureView() *wgpu.TextureView

	// Release releases all GPU resources owned by the component.
	Release()
}

var _ DeferredShading = &deferredShading{}

// screenQuadSource supplies the full-screen quad for every kind, backing the
// main light uniforms drawable.
type screenQuadSource struct {
	quad bind_group_provider.BindGroupProvider
}

var _ basicobj.MeshSource = screenQuadSource{}

func (s screenQuadSource) Mesh(basicobj.BasicObj) bind_group_provider.BindGroupProvider {
	return s.quad
}

// NewDeferredShading creates the deferred shading component: it allocates
// the G-buffer and light textures at the given resolution, registers the two
// light pipelines, and uploads the full-screen quad and sphere proxy meshes.
//
// Parameters:
//   - r: the renderer to create GPU resources with
//   - cfg: the component configuration; a zero threshold falls back to the default
//   - haveShadows: whether the scene pass additionally writes a shadow factor target
//   - width: the initial target width in pixels
//   - height: the initial target height in pixels
//
// Returns:
//   - DeferredShading: the created component
//   - error: an error if GPU resource creation fails
func NewDeferredShading(r renderer.Renderer, cfg Config, haveShadows bool, width, height uint32) (DeferredShading, error) {
	if cfg.LightMinThreshold <= 0 {
		cfg.LightMinThreshold = light.DefaultThreshold
	}

	d := &deferredShading{
		config:         cfg,
		haveShadows:    haveShadows,
		width:          width,
		height:         height,
		mainList:       basicobj.NewRenderList[*light.GPULightUniform](),
		mainSeries:     basicobj.NewUniformSeries[*light.GPULightUniform]("deferred_main_lights", MainLightSeriesGroup, 0),
		lightList:      basicobj.NewRenderList[*light.GPULightInstance](),
		lightInstances: basicobj.NewInstancing[*light.GPULightInstance]("deferred_point_lights"),
	}

	if err := d.createTextures(r); err != nil {
		d.Release()
		return nil, err
	}

	mainPipe := pipeline.NewPipeline(MainLightPipelineKey,
		pipeline.WithCore(mainLightCore(haveShadows), shader.InstancingModeUniforms),
		pipeline.WithColorFormats(LightTextureFormat),
		pipeline.WithBlendState(pipeline.AdditiveBlendState()),
	)
	objPipe := pipeline.NewPipeline(LightObjectPipelineKey,
		pipeline.WithCore(lightObjectCore(), shader.InstancingModeVertex),
		pipeline.WithColorFormats(LightTextureFormat),
		pipeline.WithBlendState(pipeline.AdditiveBlendState()),
		pipeline.WithCullMode(wgpu.CullModeFront),
	)
	if err := r.RegisterPipelines(mainPipe, objPipe); err != nil {
		d.Release()
		return nil, fmt.Errorf("failed to register light pipelines: %w", err)
	}

	quad, err := screenquad.New(r)
	if err != nil {
		d.Release()
		return nil, err
	}
	d.quad = quad
	d.mainDrawable = basicobj.NewUniformsDrawable(screenQuadSource{quad: quad}, d.mainSeries)

	vertices, indices, err := basicobj.GenerateMesh(basicobj.Sphere)
	if err != nil {
		d.Release()
		return nil, err
	}
	d.sphere = bind_group_provider.NewBindGroupProvider("deferred_light_sphere")
	if err := r.InitMeshBuffers(d.sphere, basicobj.MarshalVertices(vertices), indices); err != nil {
		d.Release()
		return nil, err
	}

	if err := d.initBindGroups(r); err != nil {
		d.Release()
		return nil, err
	}

	if err := d.writeIdentityCamera(r); err != nil {
		d.Release()
		return nil, err
	}

	return d, nil
}

// createTextures allocates the resolution-dependent render targets.
func (d *deferredShading) createTextures(r renderer.Renderer) error {
	var err error
	d.posTexture, d.posView, err = r.CreateColorTexture(d.width, d.height, GBufferTextureFormat, "deferred_gbuffer_position")
	if err != nil {
		return err
	}
	d.normalTexture, d.normalView, err = r.CreateColorTexture(d.width, d.height, GBufferTextureFormat, "deferred_gbuffer_normal")
	if err != nil {
		return err
	}
	if d.haveShadows {
		d.shadowTexture, d.shadowView, err = r.CreateColorTexture(d.width, d.height, ShadowTextureFormat, "deferred_shadow")
		if err != nil {
			return err
		}
	}
	d.lightTexture, d.lightView, err = r.CreateColorTexture(d.width, d.height, LightTextureFormat, "deferred_light")
	return err
}

// releaseTextures drops the resolution-dependent render targets.
func (d *deferredShading) releaseTextures() {
	views := []*wgpu.TextureView{d.posView, d.normalView, d.shadowView, d.lightView}
	textures := []*wgpu.Texture{d.posTexture, d.normalTexture, d.shadowTexture, d.lightTexture}
	for _, v := range views {
		if v != nil {
			v.Release()
		}
	}
	for _, t := range textures {
		if t != nil {
			t.Release()
		}
	}
	d.posTexture, d.posView = nil, nil
	d.normalTexture, d.normalView = nil, nil
	d.shadowTexture, d.shadowView = nil, nil
	d.lightTexture, d.lightView = nil, nil
}

// initBindGroups creates the uniform and texture bind groups of both light
// pipelines.
func (d *deferredShading) initBindGroups(r renderer.Renderer) error {
	d.identityProvider = bind_group_provider.NewBindGroupProvider("deferred_identity_camera")
	if err := r.InitBindGroup(d.identityProvider, MainLightPipelineKey, 0, nil); err != nil {
		return err
	}

	if err := d.mainSeries.Init(r, MainLightPipelineKey); err != nil {
		return err
	}

	d.cameraProvider = bind_group_provider.NewBindGroupProvider("deferred_camera")
	if err := r.InitBindGroup(d.cameraProvider, LightObjectPipelineKey, 0, nil); err != nil {
		return err
	}

	return d.bindGBufferTextures(r)
}

// bindGBufferTextures (re)creates the texture bind groups against the
// current G-buffer views.
func (d *deferredShading) bindGBufferTextures(r renderer.Renderer) error {
	if d.mainTexProvider == nil {
		d.mainTexProvider = bind_group_provider.NewBindGroupProvider("deferred_gbuffer_main")
	}
	if d.objectTexProvider == nil {
		d.objectTexProvider = bind_group_provider.NewBindGroupProvider("deferred_gbuffer_lights")
	}
	for _, p := range []bind_group_provider.BindGroupProvider{d.mainTexProvider, d.objectTexProvider} {
		if bg := p.BindGroup(); bg != nil {
			bg.Release()
			p.SetBindGroup(nil)
		}
	}

	d.mainTexProvider.SetTextureView(0, d.posView)
	d.mainTexProvider.SetTextureView(1, d.normalView)
	if d.haveShadows {
		d.mainTexProvider.SetTextureView(2, d.shadowView)
	}
	if err := r.InitBindGroup(d.mainTexProvider, MainLightPipelineKey, 1, nil); err != nil {
		return err
	}

	d.objectTexProvider.SetTextureView(0, d.posView)
	d.objectTexProvider.SetTextureView(1, d.normalView)
	return r.InitBindGroup(d.objectTexProvider, LightObjectPipelineKey, 1, nil)
}

// writeIdentityCamera uploads identity matrices and the current viewport for
// the full-screen quad draws.
func (d *deferredShading) writeIdentityCamera(r renderer.Renderer) error {
	u := camera.IdentityCameraUniform(float32(d.width), float32(d.height))
	return r.WriteBuffer(d.identityProvider.Buffer(0), 0, u.Marshal())
}

func (d *deferredShading) OnTargetResize(r renderer.Renderer, width, height uint32) error {
	d.width = width
	d.height = height

	d.releaseTextures()
	if err := d.createTextures(r); err != nil {
		return err
	}
	if err := d.bindGBufferTextures(r); err != nil {
		return err
	}
	return d.writeIdentityCamera(r)
}

func (d *deferredShading) LightPass(r renderer.Renderer, cam camera.Camera, lights []light.Light) error {
	d.mainList.Clear()
	d.lightList.Clear()
	for _, l := range lights {
		if l.IsMain() {
			u := light.GPULightUniform{Position: l.Position(), Color: l.Color()}
			d.mainList.Add(basicobj.Quad, &u)
			continue
		}
		radius, ok := l.InfluenceRadius(d.config.LightMinThreshold)
		if !ok {
			log.Printf("deferred: skipping point light at %v: attenuation never reaches threshold %v",
				l.Position(), d.config.LightMinThreshold)
			continue
		}
		instance := light.InstanceFromLight(l, radius)
		d.lightList.Add(basicobj.Sphere, &instance)
	}

	if err := d.mainSeries.Update(r, d.mainList); err != nil {
		return err
	}
	if err := d.lightInstances.Update(r, d.lightList); err != nil {
		return err
	}

	camUniform := cam.Uniform()
	if err := r.WriteBuffer(d.cameraProvider.Buffer(0), 0, camUniform.Marshal()); err != nil {
		return err
	}

	// The light texture was cleared by ClearBuffers; both pipelines blend
	// additively so draws accumulate.
	if err := r.BeginTexturePass([]*wgpu.TextureView{d.lightView}, nil, false); err != nil {
		return err
	}
	drawErr := d.drawLights(r)
	endErr := r.EndTexturePass()
	if drawErr != nil {
		return drawErr
	}
	return endErr
}

// drawLights issues the main light quad draws and the instanced point light
// draw inside an open texture pass.
func (d *deferredShading) drawLights(r renderer.Renderer) error {
	if err := d.mainDrawable.Draw(r, MainLightPipelineKey, d.identityProvider, d.mainTexProvider); err != nil {
		return err
	}

	count := d.lightInstances.Count(basicobj.Sphere)
	if count == 0 {
		return nil
	}
	return r.DrawCallInstanced(LightObjectPipelineKey, d.sphere,
		d.lightInstances.Buffer(basicobj.Sphere), count,
		[]bind_group_provider.BindGroupProvider{d.cameraProvider, d.objectTexProvider})
}

func (d *deferredShading) ClearBuffers(r renderer.Renderer) error {
	views := []*wgpu.TextureView{d.posView, d.normalView}
	if d.haveShadows {
		views = append(views, d.shadowView)
	}
	views = append(views, d.lightView)
	return r.ClearTextures(views...)
}

func (d *deferredShading) SceneCoreTransform() shader.CoreTransform {
	return sceneOutputsTransform(d.haveShadows)
}

func (d *deferredShading) SceneOutputTextures() []renderpass.OutputTexture {
	outputs := []renderpass.OutputTexture{
		{Name: "world_pos", Format: GBufferTextureFormat, View: d.posView},
		{Name: "world_normal", Format: GBufferTextureFormat, View: d.normalView},
	}
	if d.haveShadows {
		outputs = append(outputs, renderpass.OutputTexture{
			Name: "shadow", Format: ShadowTextureFormat, View: d.shadowView,
		})
	}
	return outputs
}

func (d *deferredShading) CompositionCoreTransform() shader.CoreTransform {
	return compositionTransform()
}

func (d *deferredShading) CompositionBufferWrites() []bind_group_provider.BufferWrite {
	return nil
}

func (d *deferredShading) LightTextureView() *wgpu.TextureView {
	return d.lightView
}

func (d *deferredShading) NormalTextureView() *wgpu.TextureView {
	return d.normalView
}

func (d *deferredShading) Release() {
	providers := []bind_group_provider.BindGroupProvider{
		d.quad, d.sphere,
		d.cameraProvider, d.identityProvider,
		d.mainTexProvider, d.objectTexProvider,
	}
	for _, p := range providers {
		if p != nil {
			p.Release()
		}
	}
	d.quad, d.sphere = nil, nil
	d.cameraProvider, d.identityProvider = nil, nil
	d.mainTexProvider, d.objectTexProvider = nil, nil

	if d.mainSeries != nil {
		d.mainSeries.Release()
	}
	if d.lightInstances != nil {
		d.lightInstances.Release()
	}
	d.releaseTextures()
}
