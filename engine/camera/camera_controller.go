package camera

import (
	"math"
	"sync"
)

// CameraController owns positional state for a Camera. The camera reads position
// and target from its controller and computes view/projection matrices.
type CameraController interface {
	// Position returns the camera's world-space position.
	Position() (x, y, z float32)

	// Target returns the look-at point.
	Target() (x, y, z float32)

	// SetTarget sets the look-at/pivot point.
	SetTarget(x, y, z float32)

	// OrbitLeft rotates the camera left around the target by one orbit speed step.
	OrbitLeft()

	// OrbitRight rotates the camera right around the target by one orbit speed step.
	OrbitRight()

	// OrbitUp tilts the camera upward by one orbit speed step, clamped to max elevation.
	OrbitUp()

	// OrbitDown tilts the camera downward by one orbit speed step, clamped to min elevation.
	OrbitDown()

	// Zoom adjusts the orbit radius. Positive delta zooms in (closer to target).
	Zoom(delta float32)
}

type orbitController struct {
	mu *sync.Mutex

	target    [3]float32
	radius    float32
	azimuth   float32
	elevation float32

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32
	orbitSpeed   float32
	zoomSpeed    float32
}

var _ CameraController = &orbitController{}

// NewOrbitController creates a CameraController that orbits a target point using
// spherical coordinates (radius, azimuth, elevation).
//
// Parameters:
//   - radius: initial distance from the target.
//   - azimuth: initial horizontal angle in radians.
//   - elevation: initial vertical angle in radians.
//
// Returns:
//   - CameraController: the created controller.
func NewOrbitController(radius, azimuth, elevation float32) CameraController {
	return &orbitController{
		mu:           &sync.Mutex{},
		radius:       radius,
		azimuth:      azimuth,
		elevation:    elevation,
		minRadius:    0.5,
		maxRadius:    200.0,
		minElevation: -1.5,
		maxElevation: 1.5,
		orbitSpeed:   0.05,
		zoomSpeed:    1.0,
	}
}

func (o *orbitController) Position() (x, y, z float32) {
	o.mu.Lock()
	defer o.mu.Unlock()

	cosEl := float32(math.Cos(float64(o.elevation)))
	x = o.target[0] + o.radius*cosEl*float32(math.Sin(float64(o.azimuth)))
	y = o.target[1] + o.radius*float32(math.Sin(float64(o.elevation)))
	z = o.target[2] + o.radius*cosEl*float32(math.Cos(float64(o.azimuth)))
	return x, y, z
}

func (o *orbitController) Target() (x, y, z float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.target[0], o.target[1], o.target[2]
}

func (o *orbitController) SetTarget(x, y, z float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.target = [3]float32{x, y, z}
}

func (o *orbitController) OrbitLeft() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.azimuth -= o.orbitSpeed
}

func (o *orbitController) OrbitRight() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.azimuth += o.orbitSpeed
}

func (o *orbitController) OrbitUp() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.elevation = min(o.elevation+o.orbitSpeed, o.maxElevation)
}

func (o *orbitController) OrbitDown() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.elevation = max(o.elevation-o.orbitSpeed, o.minElevation)
}

func (o *orbitController) Zoom(delta float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.radius = min(max(o.radius-delta*o.zoomSpeed, o.minRadius), o.maxRadius)
}
