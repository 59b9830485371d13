// Package screenquad provides the full-screen quad mesh used by full-screen
// shading passes. The quad's positions are already in clip space, so passes
// drawing it use an identity view and projection.
package screenquad

import (
	"fmt"

	"github.com/karst-gfx/karst/engine/basicobj"
	"github.com/karst-gfx/karst/engine/renderer"
	"github.com/karst-gfx/karst/engine/renderer/bind_group_provider"
)

// New creates the full-screen quad mesh: two triangles spanning clip space
// [-1, 1] x [-1, 1] at z = 0, normals facing the camera. The vertex layout is
// the shared basicobj.Vertex so the quad can be drawn with any scene-derived
// pipeline.
//
// Parameters:
//   - r: the renderer that owns the GPU buffers
//
// Returns:
//   - bind_group_provider.BindGroupProvider: the provider holding the quad mesh
//   - error: an error if buffer creation fails
func New(r renderer.Renderer) (bind_group_provider.BindGroupProvider, error) {
	n := [3]float32{0, 0, 1}
	vertices := []basicobj.Vertex{
		{Position: [3]float32{-1, -1, 0}, Normal: n},
		{Position: [3]float32{1, -1, 0}, Normal: n},
		{Position: [3]float32{1, 1, 0}, Normal: n},
		{Position: [3]float32{-1, 1, 0}, Normal: n},
	}
	indices := []uint32{0, 1, 2, 0, 2, 3}

	provider := bind_group_provider.NewBindGroupProvider("screen_quad")
	if err := r.InitMeshBuffers(provider, basicobj.MarshalVertices(vertices), indices); err != nil {
		return nil, fmt.Errorf("upload screen quad: %w", err)
	}
	return provider, nil
}
