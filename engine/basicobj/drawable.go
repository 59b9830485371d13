package basicobj

import (
	"fmt"

	"github.com/karst-gfx/karst/engine/renderer"
	"github.com/karst-gfx/karst/engine/renderer/bind_group_provider"
	"github.com/karst-gfx/karst/engine/renderer/shader"
)

// MeshSource supplies the mesh drawn for a kind. Registry is the usual
// source; passes that replicate a single mesh can supply their own.
type MeshSource interface {
	// Mesh returns the mesh buffers for a kind.
	Mesh(kind BasicObj) bind_group_provider.BindGroupProvider
}

// Drawable issues the draw calls for one frame's worth of replicated
// primitives. The two implementations cover the two instancing strategies;
// callers pass shared bind groups and stay agnostic of the mode, except that
// the pipeline they name must have been built for the drawable's mode.
type Drawable interface {
	// Mode returns the instancing mode the drawable's pipelines must use.
	Mode() shader.InstancingMode

	// Draw records the draw calls for every kind with queued instances inside
	// the current render pass.
	//
	// Parameters:
	//   - r: the renderer
	//   - pipelineKey: the registered pipeline to draw with
	//   - sharedGroups: bind group providers for the groups below the
	//     drawable's own, in group-index order
	//
	// Returns:
	//   - error: an error if a draw call fails
	Draw(r renderer.Renderer, pipelineKey string, sharedGroups ...bind_group_provider.BindGroupProvider) error
}

type instancedDrawable[R Record] struct {
	meshes     MeshSource
	instancing *Instancing[R]
}

var _ Drawable = &instancedDrawable[*GPUObjectInstance]{}

// NewInstancedDrawable creates a Drawable that draws each kind with a single
// instanced call, pulling records from the Instancing aggregate's per-instance
// vertex buffers.
//
// Parameters:
//   - meshes: the mesh source, usually the Registry
//   - instancing: the per-kind instance buffers, updated by the caller each frame
//
// Returns:
//   - Drawable: the drawable
func NewInstancedDrawable[R Record](meshes MeshSource, instancing *Instancing[R]) Drawable {
	return &instancedDrawable[R]{meshes: meshes, instancing: instancing}
}

func (d *instancedDrawable[R]) Mode() shader.InstancingMode {
	return shader.InstancingModeVertex
}

func (d *instancedDrawable[R]) Draw(r renderer.Renderer, pipelineKey string, sharedGroups ...bind_group_provider.BindGroupProvider) error {
	for _, kind := range AllKinds {
		count := d.instancing.Count(kind)
		if count == 0 {
			continue
		}
		err := r.DrawCallInstanced(pipelineKey, d.meshes.Mesh(kind), d.instancing.Buffer(kind), count, sharedGroups)
		if err != nil {
			return fmt.Errorf("draw %v instances: %w", kind, err)
		}
	}
	return nil
}

type uniformsDrawable[R Record] struct {
	meshes MeshSource
	series *UniformSeries[R]
}

var _ Drawable = &uniformsDrawable[*GPUObjectInstance]{}

// NewUniformsDrawable creates a Drawable that issues one draw call per record,
// selecting each record in the series' uniform buffer with a dynamic offset.
// The series' bind group is appended after the shared groups, so its group
// index must be the highest in the pipeline layout.
//
// Parameters:
//   - meshes: the mesh source, usually the Registry
//   - series: the uniform series, updated by the caller each frame
//
// Returns:
//   - Drawable: the drawable
func NewUniformsDrawable[R Record](meshes MeshSource, series *UniformSeries[R]) Drawable {
	return &uniformsDrawable[R]{meshes: meshes, series: series}
}

func (d *uniformsDrawable[R]) Mode() shader.InstancingMode {
	return shader.InstancingModeUniforms
}

func (d *uniformsDrawable[R]) Draw(r renderer.Renderer, pipelineKey string, sharedGroups ...bind_group_provider.BindGroupProvider) error {
	provider := d.series.Provider()
	if provider == nil {
		return fmt.Errorf("uniform series for pipeline %q not initialized", pipelineKey)
	}
	groups := append(append([]bind_group_provider.BindGroupProvider{}, sharedGroups...), provider)

	for _, kind := range AllKinds {
		offsets := d.series.Offsets(kind)
		if len(offsets) == 0 {
			continue
		}
		mesh := d.meshes.Mesh(kind)
		for _, offset := range offsets {
			err := r.DrawCallDynamic(pipelineKey, mesh, groups, map[int][]uint32{
				d.series.Group(): {offset},
			})
			if err != nil {
				return fmt.Errorf("draw %v record: %w", kind, err)
			}
		}
	}
	return nil
}
