package deferred

import (
	"github.com/karst-gfx/karst/engine/light"
)

// Config holds the tunable parameters of the deferred shading component.
type Config struct {
	// LightMinThreshold is the attenuated intensity below which a point
	// light no longer contributes, used to solve each light's influence
	// radius. Must be positive.
	LightMinThreshold float32
}

// DefaultConfig returns the default deferred shading configuration.
//
// Returns:
//   - Config: the default configuration
func DefaultConfig() Config {
	return Config{
		LightMinThreshold: light.DefaultThreshold,
	}
}
