package basicobj

import (
	"fmt"

	"github.com/karst-gfx/karst/engine/renderer"
	"github.com/karst-gfx/karst/engine/renderer/bind_group_provider"
)

// Registry holds the immutable GPU mesh for every primitive kind. Meshes are
// created once, in index order, and shared by all draws for their kind.
type Registry interface {
	// Mesh returns the mesh provider for a kind. Registry construction is
	// exhaustive, so every kind has a mesh.
	//
	// Parameters:
	//   - kind: the primitive kind
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the provider holding the
	//     kind's vertex and index buffers
	Mesh(kind BasicObj) bind_group_provider.BindGroupProvider

	// Release releases every mesh buffer held by the registry.
	Release()
}

type registry struct {
	meshes [NumKinds]bind_group_provider.BindGroupProvider
}

var _ Registry = &registry{}

// NewRegistry generates and uploads the mesh for every primitive kind, in
// index order. Any failure releases the meshes created so far and fails the
// whole registry; there is no partially usable state.
//
// Parameters:
//   - r: the renderer that owns the GPU buffers
//
// Returns:
//   - Registry: the completed registry
//   - error: an error if mesh generation or upload fails
func NewRegistry(r renderer.Renderer) (Registry, error) {
	reg := &registry{}
	for _, kind := range AllKinds {
		vertices, indices, err := meshFor(kind)
		if err != nil {
			reg.Release()
			return nil, fmt.Errorf("generate %v mesh: %w", kind, err)
		}

		provider := bind_group_provider.NewBindGroupProvider("basicobj_" + kind.String())
		if err := r.InitMeshBuffers(provider, MarshalVertices(vertices), indices); err != nil {
			reg.Release()
			return nil, fmt.Errorf("upload %v mesh: %w", kind, err)
		}
		reg.meshes[kind.Index()] = provider
	}
	return reg, nil
}

func (r *registry) Mesh(kind BasicObj) bind_group_provider.BindGroupProvider {
	return r.meshes[kind.Index()]
}

func (r *registry) Release() {
	for i, m := range r.meshes {
		if m != nil {
			m.Release()
			r.meshes[i] = nil
		}
	}
}
