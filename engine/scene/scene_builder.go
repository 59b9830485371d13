package scene

import (
	"github.com/karst-gfx/karst/engine/deferred"
)

// sceneBuilder collects construction options for NewScene.
type sceneBuilder struct {
	shadows       bool
	config        deferred.Config
	updateWorkers int
}

// SceneBuilderOption is a functional option used to configure a Scene during construction.
type SceneBuilderOption func(*sceneBuilder)

// WithShadows adds a shadow factor target to the scene pass.
//
// Returns:
//   - SceneBuilderOption: a function that enables the shadow target
func WithShadows() SceneBuilderOption {
	return func(b *sceneBuilder) {
		b.shadows = true
	}
}

// WithShadingConfig sets the deferred shading configuration.
//
// Parameters:
//   - cfg: the shading configuration
//
// Returns:
//   - SceneBuilderOption: a function that sets the configuration
func WithShadingConfig(cfg deferred.Config) SceneBuilderOption {
	return func(b *sceneBuilder) {
		b.config = cfg
	}
}

// WithUpdateWorkers sets the number of workers updating game objects each
// tick. Defaults to the machine's CPU count minus one.
//
// Parameters:
//   - workers: the worker count, clamped to at least 1
//
// Returns:
//   - SceneBuilderOption: a function that sets the worker count
func WithUpdateWorkers(workers int) SceneBuilderOption {
	return func(b *sceneBuilder) {
		b.updateWorkers = max(workers, 1)
	}
}
