package engine

import (
	"time"

	"github.com/karst-gfx/karst/engine/window"
)

// EngineBuilderOption is a functional option used to configure an Engine during construction.
type EngineBuilderOption func(*engine)

// WithWindow sets the window the engine manages. The engine wires resize
// propagation to every registered scene.
//
// Parameters:
//   - w: the window to manage
//
// Returns:
//   - EngineBuilderOption: a function that sets the window
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithProfiling enables performance profiling output from the start.
//
// Returns:
//   - EngineBuilderOption: a function that enables profiling
func WithProfiling() EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = true
	}
}

// WithTickRate sets the engine tick rate in frames per second.
//
// Parameters:
//   - fps: target frames per second (defaults to 60 if <= 0)
//
// Returns:
//   - EngineBuilderOption: a function that sets the tick rate
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60
		}
		e.engineTickRate = time.Second / time.Duration(fps)
	}
}

// WithRenderFrameLimit caps the render loop at the given frames per second.
// Zero leaves the loop uncapped.
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: a function that sets the frame limit
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Second / time.Duration(fps)
	}
}
