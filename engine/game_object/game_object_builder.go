package game_object

import (
	"github.com/karst-gfx/karst/engine/light"
)

// GameObjectBuilderOption is a functional option used to configure a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithPosition sets the object's world position.
//
// Parameters:
//   - x, y, z: position components
//
// Returns:
//   - GameObjectBuilderOption: a function that sets the position
func WithPosition(x, y, z float32) GameObjectBuilderOption {
	return func(o *gameObject) {
		o.position = [3]float32{x, y, z}
	}
}

// WithRotation sets the object's Euler rotation in radians.
//
// Parameters:
//   - rx, ry, rz: rotation angles
//
// Returns:
//   - GameObjectBuilderOption: a function that sets the rotation
func WithRotation(rx, ry, rz float32) GameObjectBuilderOption {
	return func(o *gameObject) {
		o.rotation = [3]float32{rx, ry, rz}
	}
}

// WithRotationSpeed sets the rotation advance per second applied by Update.
//
// Parameters:
//   - rx, ry, rz: rotation speed in radians per second
//
// Returns:
//   - GameObjectBuilderOption: a function that sets the rotation speed
func WithRotationSpeed(rx, ry, rz float32) GameObjectBuilderOption {
	return func(o *gameObject) {
		o.rotationSpeed = [3]float32{rx, ry, rz}
	}
}

// WithScale sets the object's per-axis scale.
//
// Parameters:
//   - sx, sy, sz: scale factors
//
// Returns:
//   - GameObjectBuilderOption: a function that sets the scale
func WithScale(sx, sy, sz float32) GameObjectBuilderOption {
	return func(o *gameObject) {
		o.scale = [3]float32{sx, sy, sz}
	}
}

// WithColor sets the object's rgba color.
//
// Parameters:
//   - r, g, b, a: color components
//
// Returns:
//   - GameObjectBuilderOption: a function that sets the color
func WithColor(r, g, b, a float32) GameObjectBuilderOption {
	return func(o *gameObject) {
		o.color = [4]float32{r, g, b, a}
	}
}

// WithAttachedLight ties a light to the object. The light's position follows
// the object on every Update.
//
// Parameters:
//   - l: the light to attach
//
// Returns:
//   - GameObjectBuilderOption: a function that attaches the light
func WithAttachedLight(l light.Light) GameObjectBuilderOption {
	return func(o *gameObject) {
		o.attachedLight = l
	}
}

// WithEnabled sets whether the object starts enabled.
//
// Parameters:
//   - enabled: true to start enabled
//
// Returns:
//   - GameObjectBuilderOption: a function that sets the enabled state
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(o *gameObject) {
		o.enabled.Store(enabled)
	}
}
