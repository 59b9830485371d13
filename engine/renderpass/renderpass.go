// Package renderpass defines the capability interfaces rendering components
// implement to participate in frame composition, and the Driver that folds
// their contributions in declaration order.
//
// A component may clear its own offscreen targets at the start of a frame,
// contribute a shader-core transform and output textures to the scene
// (geometry) pass, and contribute a shader-core transform to the final
// composition pass. Components never edit each other's shader text; the
// driver composes their CoreTransforms over a base core instead.
package renderpass

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/karst-gfx/karst/engine/renderer"
	"github.com/karst-gfx/karst/engine/renderer/bind_group_provider"
	"github.com/karst-gfx/karst/engine/renderer/shader"
)

// OutputTexture is one color target a scene component adds to the scene pass.
type OutputTexture struct {
	// Name is the fragment output name the scene core transform declares.
	Name string

	// Format is the texture format of the attachment.
	Format wgpu.TextureFormat

	// View is the current attachment view. Reassigned wholesale on resize.
	View *wgpu.TextureView
}

// Component is a rendering component with per-frame offscreen state.
type Component interface {
	// ClearBuffers clears the component's offscreen targets for a new frame.
	ClearBuffers(r renderer.Renderer) error
}

// SceneComponent contributes to the scene (geometry) pass.
type SceneComponent interface {
	Component

	// SceneCoreTransform returns the transform applied to the scene shader
	// core, typically replacing or appending fragment outputs.
	SceneCoreTransform() shader.CoreTransform

	// SceneOutputTextures returns the color targets this component adds to
	// the scene pass, in fragment output order.
	SceneOutputTextures() []OutputTexture
}

// CompositionComponent contributes to the final composition pass.
type CompositionComponent interface {
	Component

	// CompositionCoreTransform returns the transform applied to the
	// composition shader core, typically adding texture bindings and mixing
	// their samples into the output.
	CompositionCoreTransform() shader.CoreTransform

	// CompositionBufferWrites returns uniform writes that must land before
	// the composition pass draws.
	CompositionBufferWrites() []bind_group_provider.BufferWrite
}

// Driver holds an ordered component list and folds their contributions.
// Order is declaration order in every fold, so the shader cores the driver
// produces are deterministic for a given component list.
type Driver struct {
	components []Component
}

// NewDriver creates a Driver over the given components, kept in the given order.
//
// Parameters:
//   - components: the participating components
//
// Returns:
//   - *Driver: the driver
func NewDriver(components ...Component) *Driver {
	return &Driver{components: components}
}

// ClearAll clears every component's offscreen targets. The first failure
// aborts the frame.
//
// Parameters:
//   - r: the renderer
//
// Returns:
//   - error: the first clear error
func (d *Driver) ClearAll(r renderer.Renderer) error {
	for _, c := range d.components {
		if err := c.ClearBuffers(r); err != nil {
			return err
		}
	}
	return nil
}

// SceneCore folds every scene component's core transform over the base core,
// in declaration order.
//
// Parameters:
//   - base: the untransformed scene core
//
// Returns:
//   - shader.Core: the composed core
func (d *Driver) SceneCore(base shader.Core) shader.Core {
	out := base
	for _, c := range d.components {
		if sc, ok := c.(SceneComponent); ok {
			out = out.Transform(sc.SceneCoreTransform())
		}
	}
	return out
}

// SceneOutputTextures concatenates every scene component's output textures in
// declaration order, matching the fragment output order of SceneCore.
//
// Returns:
//   - []OutputTexture: the scene pass color targets
func (d *Driver) SceneOutputTextures() []OutputTexture {
	var out []OutputTexture
	for _, c := range d.components {
		if sc, ok := c.(SceneComponent); ok {
			out = append(out, sc.SceneOutputTextures()...)
		}
	}
	return out
}

// CompositionCore folds every composition component's core transform over the
// base core, in declaration order.
//
// Parameters:
//   - base: the untransformed composition core
//
// Returns:
//   - shader.Core: the composed core
func (d *Driver) CompositionCore(base shader.Core) shader.Core {
	out := base
	for _, c := range d.components {
		if cc, ok := c.(CompositionComponent); ok {
			out = out.Transform(cc.CompositionCoreTransform())
		}
	}
	return out
}

// StageCompositionWrites applies every composition component's staged uniform
// writes.
//
// Parameters:
//   - r: the renderer
//
// Returns:
//   - error: an error if a write fails
func (d *Driver) StageCompositionWrites(r renderer.Renderer) error {
	for _, c := range d.components {
		if cc, ok := c.(CompositionComponent); ok {
			if err := r.WriteBuffers(cc.CompositionBufferWrites()); err != nil {
				return err
			}
		}
	}
	return nil
}
