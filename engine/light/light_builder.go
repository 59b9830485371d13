package light

// LightBuilderOption is a functional option for configuring a light during construction.
type LightBuilderOption func(*lightImpl)

// WithPosition sets the world-space position of the light.
//
// Parameters:
//   - x, y, z: position components
//
// Returns:
//   - LightBuilderOption: option function to apply
func WithPosition(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.position = [3]float32{x, y, z}
	}
}

// WithColor sets the RGB color of the light.
//
// Parameters:
//   - r, g, b: color components, may exceed 1 for high-intensity lights
//
// Returns:
//   - LightBuilderOption: option function to apply
func WithColor(r, g, b float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = [3]float32{r, g, b}
	}
}

// WithAttenuation sets the distance attenuation coefficients.
//
// Parameters:
//   - a0: constant coefficient
//   - a1: linear coefficient
//   - a2: quadratic coefficient
//
// Returns:
//   - LightBuilderOption: option function to apply
func WithAttenuation(a0, a1, a2 float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.attenuation = [3]float32{a0, a1, a2}
	}
}

// WithMain marks the light as the scene's main light, rendered via the
// full-screen pass rather than a bounded light volume.
//
// Returns:
//   - LightBuilderOption: option function to apply
func WithMain() LightBuilderOption {
	return func(l *lightImpl) {
		l.isMain = true
	}
}
