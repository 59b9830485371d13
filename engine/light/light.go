package light

import (
	"github.com/chewxy/math32"
)

// DefaultThreshold is the default intensity threshold used to compute a point
// light's influence radius. The radius is the distance at which the light's
// attenuated peak intensity falls to this value.
const DefaultThreshold float32 = 0.02

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	position    [3]float32
	color       [3]float32
	attenuation [3]float32
	isMain      bool
}

// Light describes a light source contributing to the deferred light
// accumulation pass.
//
// The attenuation coefficients (a0, a1, a2) define the distance falloff
// 1 / (a0 + a1*d + a2*d^2). The main light is rendered as a full-screen pass
// and ignores attenuation; all other lights are rendered as bounded sphere
// volumes sized by their influence radius.
type Light interface {
	// Position returns the world-space position of the light.
	//
	// Returns:
	//   - [3]float32: position as (x, y, z)
	Position() [3]float32

	// Color returns the RGB color of the light. Channel values may exceed 1
	// for high-intensity lights.
	//
	// Returns:
	//   - [3]float32: color as (r, g, b)
	Color() [3]float32

	// Attenuation returns the distance attenuation coefficients (a0, a1, a2).
	//
	// Returns:
	//   - [3]float32: constant, linear and quadratic coefficients
	Attenuation() [3]float32

	// IsMain returns whether this is the scene's main light. The main light is
	// applied to every fragment via a full-screen pass instead of a bounded
	// light volume.
	IsMain() bool

	// InfluenceRadius computes the distance at which the light's peak color
	// channel, attenuated by the light's coefficients, falls to the given
	// threshold.
	//
	// Lights whose attenuation never reaches the threshold (for example a
	// purely constant attenuation) have no finite influence radius and report
	// ok=false; such lights contribute nothing to the accumulation pass.
	//
	// Parameters:
	//   - threshold: the intensity cutoff, must be positive.
	//
	// Returns:
	//   - float32: the influence radius in world units.
	//   - bool: false if no finite positive radius exists.
	InfluenceRadius(threshold float32) (float32, bool)

	// SetPosition sets the world-space position of the light.
	SetPosition(x, y, z float32)

	// SetColor sets the RGB color of the light.
	SetColor(r, g, b float32)

	// SetAttenuation sets the distance attenuation coefficients.
	//
	// Parameters:
	//   - a0: constant coefficient
	//   - a1: linear coefficient
	//   - a2: quadratic coefficient
	SetAttenuation(a0, a1, a2 float32)
}

var _ Light = &lightImpl{}

// NewLight creates a new Light with sensible defaults and any provided options
// applied. The default is a white point light at the origin with purely
// quadratic attenuation.
//
// Parameters:
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(opts ...LightBuilderOption) Light {
	l := &lightImpl{
		position:    [3]float32{0, 0, 0},
		color:       [3]float32{1, 1, 1},
		attenuation: [3]float32{1, 0, 0.05},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Position() [3]float32 {
	return l.position
}

func (l *lightImpl) Color() [3]float32 {
	return l.color
}

func (l *lightImpl) Attenuation() [3]float32 {
	return l.attenuation
}

func (l *lightImpl) IsMain() bool {
	return l.isMain
}

func (l *lightImpl) InfluenceRadius(threshold float32) (float32, bool) {
	if threshold <= 0 {
		return 0, false
	}

	// Peak channel intensity; the radius bounds the strongest channel so the
	// dimmer channels are bounded as well.
	peak := max(l.color[0], l.color[1], l.color[2])
	target := peak / threshold

	a0, a1, a2 := l.attenuation[0], l.attenuation[1], l.attenuation[2]

	var radius float32
	switch {
	case a2 != 0:
		// Solve a2*d^2 + a1*d + (a0 - target) = 0 for the positive root.
		disc := a1*a1 - 4*a2*(a0-target)
		if disc < 0 {
			return 0, false
		}
		radius = (-a1 + math32.Sqrt(disc)) / (2 * a2)
	case a1 > 0:
		radius = (target - a0) / a1
	default:
		// Constant attenuation never decays below the threshold.
		return 0, false
	}

	if math32.IsNaN(radius) || math32.IsInf(radius, 0) || radius <= 0 {
		return 0, false
	}
	return radius, true
}

func (l *lightImpl) SetPosition(x, y, z float32) {
	l.position = [3]float32{x, y, z}
}

func (l *lightImpl) SetColor(r, g, b float32) {
	l.color = [3]float32{r, g, b}
}

func (l *lightImpl) SetAttenuation(a0, a1, a2 float32) {
	l.attenuation = [3]float32{a0, a1, a2}
}
