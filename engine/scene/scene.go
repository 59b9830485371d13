// Package scene ties the rendering core together: it owns the primitive
// registry, the deferred shading component, the render pass driver, and the
// per-frame instance gathering for its game objects. A frame renders in
// three offscreen phases (clear, scene pass, light pass) followed by the
// composition draw into the surface frame.
package scene

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/karst-gfx/karst/engine/basicobj"
	"github.com/karst-gfx/karst/engine/camera"
	"github.com/karst-gfx/karst/engine/deferred"
	"github.com/karst-gfx/karst/engine/game_object"
	"github.com/karst-gfx/karst/engine/light"
	"github.com/karst-gfx/karst/engine/renderer"
	"github.com/karst-gfx/karst/engine/renderer/bind_group_provider"
	"github.com/karst-gfx/karst/engine/renderer/pipeline"
	"github.com/karst-gfx/karst/engine/renderer/shader"
	"github.com/karst-gfx/karst/engine/renderpass"
	"github.com/karst-gfx/karst/engine/screenquad"
)

const (
	// ScenePipelineKey identifies the geometry pipeline writing the G-buffer.
	ScenePipelineKey = "scene_geometry"

	// CompositionPipelineKey identifies the final full-screen pipeline
	// drawing into the surface.
	CompositionPipelineKey = "scene_composition"
)

// scene is the implementation of the Scene interface.
type scene struct {
	mu sync.Mutex

	active bool

	rend renderer.Renderer
	cam  camera.Camera

	width  uint32
	height uint32

	registry basicobj.Registry
	shading  deferred.DeferredShading
	driver   *renderpass.Driver

	depthTexture *wgpu.Texture
	depthView    *wgpu.TextureView

	objects []game_object.GameObject
	lights  []light.Light

	// updatePool spreads per-object updates across workers each tick.
	// Workers are reused across ticks to avoid goroutine spawn overhead.
	updatePool worker.DynamicWorkerPool

	objectList *basicobj.RenderList[*basicobj.GPUObjectInstance]
	instancing *basicobj.Instancing[*basicobj.GPUObjectInstance]
	drawable   basicobj.Drawable

	// cameraProvider binds the scene camera into the geometry pipeline.
	cameraProvider bind_group_provider.BindGroupProvider

	// Composition resources: a clip-space quad, an identity camera, and the
	// texture bind group over the light and normal views.
	compositionQuad     bind_group_provider.BindGroupProvider
	compositionCamera   bind_group_provider.BindGroupProvider
	compositionTextures bind_group_provider.BindGroupProvider
}

// Scene owns a renderable world: game objects over the primitive registry,
// lights, a camera, and the deferred shading pipelines rendering them.
type Scene interface {
	// Active returns whether this scene renders.
	//
	// Returns:
	//   - bool: true if active
	Active() bool

	// SetActive sets whether this scene renders.
	//
	// Parameters:
	//   - active: true to render this scene
	SetActive(active bool)

	// Renderer returns the renderer this scene draws with.
	//
	// Returns:
	//   - renderer.Renderer: the renderer
	Renderer() renderer.Renderer

	// Camera returns the scene camera.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// Shading returns the deferred shading component.
	//
	// Returns:
	//   - deferred.DeferredShading: the shading component
	Shading() deferred.DeferredShading

	// AddObject adds a game object to the scene.
	//
	// Parameters:
	//   - obj: the object to add
	AddObject(obj game_object.GameObject)

	// RemoveObject removes the object with the given id.
	//
	// Parameters:
	//   - id: the id of the object to remove
	RemoveObject(id uint64)

	// Objects returns a copy of the scene's object list.
	//
	// Returns:
	//   - []game_object.GameObject: the objects
	Objects() []game_object.GameObject

	// AddLight adds a free-standing light to the scene. Lights attached to
	// game objects are gathered automatically and must not be added here.
	//
	// Parameters:
	//   - l: the light to add
	AddLight(l light.Light)

	// Lights returns the scene's free-standing lights.
	//
	// Returns:
	//   - []light.Light: the lights
	Lights() []light.Light

	// Update advances every object by the elapsed time.
	//
	// Parameters:
	//   - deltaTime: elapsed time in seconds
	Update(deltaTime float32)

	// Resize reallocates the scene's resolution-dependent targets and
	// updates the camera viewport.
	//
	// Parameters:
	//   - width: the new target width in pixels
	//   - height: the new target height in pixels
	//
	// Returns:
	//   - error: an error if reallocation fails
	Resize(width, height uint32) error

	// RenderFrame runs the offscreen phases of a frame: clears all pass
	// targets, draws the geometry into the G-buffer, and accumulates the
	// lights into the light texture.
	//
	// Returns:
	//   - error: an error if an upload, pass, or draw fails
	RenderFrame() error

	// Composition draws the final full-screen quad into the current surface
	// frame. Must be called between the renderer's BeginFrame and EndFrame.
	//
	// Returns:
	//   - error: an error if the draw fails
	Composition() error

	// Release releases all GPU resources owned by the scene.
	Release()
}

var _ Scene = &scene{}

// NewScene creates a Scene over the given renderer and camera: it builds the
// primitive registry, the deferred shading component, and the geometry and
// composition pipelines derived from the pass driver's folded shader cores.
//
// Parameters:
//   - rend: the renderer to create GPU resources with
//   - cam: the scene camera
//   - width: the initial target width in pixels
//   - height: the initial target height in pixels
//   - options: functional options for shadows and the shading configuration
//
// Returns:
//   - Scene: the created scene
//   - error: an error if GPU resource creation fails
func NewScene(rend renderer.Renderer, cam camera.Camera, width, height uint32, options ...SceneBuilderOption) (Scene, error) {
	b := &sceneBuilder{
		config:        deferred.DefaultConfig(),
		updateWorkers: max(runtime.NumCPU()-1, 1),
	}
	for _, opt := range options {
		opt(b)
	}

	s := &scene{
		active:     true,
		rend:       rend,
		cam:        cam,
		width:      width,
		height:     height,
		objectList: basicobj.NewRenderList[*basicobj.GPUObjectInstance](),
		instancing: basicobj.NewInstancing[*basicobj.GPUObjectInstance]("scene_objects"),
	}

	registry, err := basicobj.NewRegistry(rend)
	if err != nil {
		return nil, err
	}
	s.registry = registry
	s.drawable = basicobj.NewInstancedDrawable(s.registry, s.instancing)

	shading, err := deferred.NewDeferredShading(rend, b.config, b.shadows, width, height)
	if err != nil {
		s.Release()
		return nil, err
	}
	s.shading = shading
	s.driver = renderpass.NewDriver(shading)

	if err := s.initPipelines(); err != nil {
		s.Release()
		return nil, err
	}
	if err := s.initTargets(); err != nil {
		s.Release()
		return nil, err
	}
	if err := s.initBindGroups(); err != nil {
		s.Release()
		return nil, err
	}

	// The pool starts last so failed construction never leaves workers behind.
	s.updatePool = worker.NewDynamicWorkerPool(b.updateWorkers, 256, 1*time.Second)

	return s, nil
}

// initPipelines registers the geometry and composition pipelines built from
// the driver's folded shader cores.
func (s *scene) initPipelines() error {
	sceneCore := s.driver.SceneCore(basicobj.SceneCore())
	formats := make([]wgpu.TextureFormat, 0, len(s.driver.SceneOutputTextures()))
	for _, out := range s.driver.SceneOutputTextures() {
		formats = append(formats, out.Format)
	}

	geometry := pipeline.NewPipeline(ScenePipelineKey,
		pipeline.WithCore(sceneCore, shader.InstancingModeVertex),
		pipeline.WithColorFormats(formats...),
		pipeline.WithDepthFormat(wgpu.TextureFormatDepth32Float),
		pipeline.WithCullMode(wgpu.CullModeBack),
	)

	composition := pipeline.NewPipeline(CompositionPipelineKey,
		pipeline.WithCore(s.driver.CompositionCore(compositionCore()), shader.InstancingModeUniforms),
	)

	return s.rend.RegisterPipelines(geometry, composition)
}

// initTargets allocates the scene's depth buffer.
func (s *scene) initTargets() error {
	var err error
	s.depthTexture, s.depthView, err = s.rend.CreateDepthTexture(s.width, s.height, "scene_depth")
	return err
}

// initBindGroups creates the camera and composition bind groups and uploads
// the composition quad.
func (s *scene) initBindGroups() error {
	s.cameraProvider = bind_group_provider.NewBindGroupProvider("scene_camera")
	if err := s.rend.InitBindGroup(s.cameraProvider, ScenePipelineKey, 0, nil); err != nil {
		return err
	}

	quad, err := screenquad.New(s.rend)
	if err != nil {
		return err
	}
	s.compositionQuad = quad

	s.compositionCamera = bind_group_provider.NewBindGroupProvider("scene_composition_camera")
	if err := s.rend.InitBindGroup(s.compositionCamera, CompositionPipelineKey, 0, nil); err != nil {
		return err
	}
	u := camera.IdentityCameraUniform(float32(s.width), float32(s.height))
	if err := s.rend.WriteBuffer(s.compositionCamera.Buffer(0), 0, u.Marshal()); err != nil {
		return err
	}

	return s.bindCompositionTextures()
}

// bindCompositionTextures (re)creates the composition texture bind group
// over the current light and normal views.
func (s *scene) bindCompositionTextures() error {
	if s.compositionTextures == nil {
		s.compositionTextures = bind_group_provider.NewBindGroupProvider("scene_composition_textures")
	}
	if bg := s.compositionTextures.BindGroup(); bg != nil {
		bg.Release()
		s.compositionTextures.SetBindGroup(nil)
	}
	s.compositionTextures.SetTextureView(0, s.shading.LightTextureView())
	s.compositionTextures.SetTextureView(1, s.shading.NormalTextureView())
	return s.rend.InitBindGroup(s.compositionTextures, CompositionPipelineKey, deferred.CompositionTextureGroup, nil)
}

func (s *scene) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Renderer() renderer.Renderer {
	return s.rend
}

func (s *scene) Camera() camera.Camera {
	return s.cam
}

func (s *scene) Shading() deferred.DeferredShading {
	return s.shading
}

func (s *scene) AddObject(obj game_object.GameObject) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects = append(s.objects, obj)
}

func (s *scene) RemoveObject(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, obj := range s.objects {
		if obj.ID() == id {
			s.objects = append(s.objects[:i], s.objects[i+1:]...)
			return
		}
	}
}

func (s *scene) Objects() []game_object.GameObject {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]game_object.GameObject, len(s.objects))
	copy(cp, s.objects)
	return cp
}

func (s *scene) AddLight(l light.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lights = append(s.lights, l)
}

func (s *scene) Lights() []light.Light {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]light.Light, len(s.lights))
	copy(cp, s.lights)
	return cp
}

func (s *scene) Update(deltaTime float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Spread object updates over the pool. Objects are independent, so the
	// only ordering requirement is the per-tick WaitGroup barrier; Wait on
	// the pool itself blocks until workers idle-exit which is unsuitable
	// for tick-rate workloads.
	var wg sync.WaitGroup
	for i, obj := range s.objects {
		wg.Add(1)
		o := obj
		s.updatePool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				o.Update(deltaTime)
				return nil, nil
			},
		})
	}
	wg.Wait()
}

func (s *scene) Resize(width, height uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.width = width
	s.height = height

	if s.depthView != nil {
		s.depthView.Release()
	}
	if s.depthTexture != nil {
		s.depthTexture.Release()
	}
	var err error
	s.depthTexture, s.depthView, err = s.rend.CreateDepthTexture(width, height, "scene_depth")
	if err != nil {
		return err
	}

	if err := s.shading.OnTargetResize(s.rend, width, height); err != nil {
		return err
	}
	if err := s.bindCompositionTextures(); err != nil {
		return err
	}

	s.cam.SetViewport(float32(width), float32(height))
	u := camera.IdentityCameraUniform(float32(width), float32(height))
	return s.rend.WriteBuffer(s.compositionCamera.Buffer(0), 0, u.Marshal())
}

func (s *scene) RenderFrame() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Gather enabled objects into per-kind instance records, plus every
	// light in the scene including those attached to objects.
	s.objectList.Clear()
	lights := make([]light.Light, 0, len(s.lights))
	lights = append(lights, s.lights...)
	for _, obj := range s.objects {
		if !obj.Enabled() {
			continue
		}
		rec := obj.InstanceRecord()
		s.objectList.Add(obj.Kind(), &rec)
		if l := obj.AttachedLight(); l != nil {
			lights = append(lights, l)
		}
	}
	if err := s.instancing.Update(s.rend, s.objectList); err != nil {
		return err
	}

	s.cam.Update()
	camUniform := s.cam.Uniform()
	if err := s.rend.WriteBuffer(s.cameraProvider.Buffer(0), 0, camUniform.Marshal()); err != nil {
		return err
	}

	if err := s.driver.ClearAll(s.rend); err != nil {
		return err
	}

	outputs := s.driver.SceneOutputTextures()
	views := make([]*wgpu.TextureView, 0, len(outputs))
	for _, out := range outputs {
		views = append(views, out.View)
	}
	if err := s.rend.BeginTexturePass(views, s.depthView, true); err != nil {
		return err
	}
	drawErr := s.drawable.Draw(s.rend, ScenePipelineKey, s.cameraProvider)
	endErr := s.rend.EndTexturePass()
	if drawErr != nil {
		return drawErr
	}
	if endErr != nil {
		return endErr
	}

	return s.shading.LightPass(s.rend, s.cam, lights)
}

func (s *scene) Composition() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.driver.StageCompositionWrites(s.rend); err != nil {
		return err
	}
	groups := []bind_group_provider.BindGroupProvider{s.compositionCamera, s.compositionTextures}
	return s.rend.DrawCall(CompositionPipelineKey, s.compositionQuad, groups)
}

func (s *scene) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	providers := []bind_group_provider.BindGroupProvider{
		s.cameraProvider, s.compositionQuad, s.compositionCamera, s.compositionTextures,
	}
	for _, p := range providers {
		if p != nil {
			p.Release()
		}
	}
	s.cameraProvider, s.compositionQuad = nil, nil
	s.compositionCamera, s.compositionTextures = nil, nil

	if s.instancing != nil {
		s.instancing.Release()
	}
	if s.shading != nil {
		s.shading.Release()
		s.shading = nil
	}
	if s.registry != nil {
		s.registry.Release()
		s.registry = nil
	}
	if s.depthView != nil {
		s.depthView.Release()
		s.depthView = nil
	}
	if s.depthTexture != nil {
		s.depthTexture.Release()
		s.depthTexture = nil
	}
}

// compositionCore builds the base composition shader core: a clip-space quad
// writing plain white, which pass components modulate through their
// composition transforms.
func compositionCore() shader.Core {
	var camUniform camera.GPUCameraUniform
	return shader.Core{
		Name: "SceneComposition",
		VertexAttributes: []shader.Field{
			{Name: "position", Type: "vec3<f32>"},
			{Name: "normal", Type: "vec3<f32>"},
		},
		Bindings: []shader.Binding{
			{
				Group:          0,
				Index:          0,
				Name:           "camera",
				Type:           "CameraUniform",
				Kind:           shader.BindingKindUniform,
				StructSource:   camera.GPUCameraUniformSource,
				Visibility:     wgpu.ShaderStageVertex,
				MinBindingSize: uint64(camUniform.Size()),
			},
		},
		VertexBody: `
out.clip_position = camera.projection * camera.view * vec4<f32>(in.position, 1.0);
`,
		Outputs: []shader.Output{
			{Name: "color", Type: "vec4<f32>", Expr: "vec4<f32>(1.0, 1.0, 1.0, 1.0)"},
		},
	}
}
