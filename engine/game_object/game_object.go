// Package game_object defines scene entities built from the primitive
// registry: a primitive kind, a transform, a color, and an optional attached
// light that follows the object's position.
package game_object

import (
	"sync/atomic"

	"github.com/karst-gfx/karst/common"
	"github.com/karst-gfx/karst/engine/basicobj"
	"github.com/karst-gfx/karst/engine/light"
)

type gameObject struct {
	id      uint64
	enabled atomic.Bool

	kind basicobj.BasicObj

	position      [3]float32
	rotation      [3]float32
	rotationSpeed [3]float32
	scale         [3]float32
	color         [4]float32

	attachedLight light.Light
}

// GameObject defines the interface for a scene entity: a primitive kind plus
// its transform and color. The scene gathers enabled objects into per-kind
// instance records each frame.
type GameObject interface {
	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Enabled returns whether this object is enabled for rendering.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Kind returns the primitive kind this object renders as.
	//
	// Returns:
	//   - basicobj.BasicObj: the primitive kind
	Kind() basicobj.BasicObj

	// Position returns the object's world position.
	//
	// Returns:
	//   - [3]float32: the position
	Position() [3]float32

	// Rotation returns the object's Euler rotation in radians.
	//
	// Returns:
	//   - [3]float32: the rotation angles
	Rotation() [3]float32

	// Scale returns the object's per-axis scale.
	//
	// Returns:
	//   - [3]float32: the scale factors
	Scale() [3]float32

	// Color returns the object's rgba color.
	//
	// Returns:
	//   - [4]float32: the color
	Color() [4]float32

	// AttachedLight returns the light tied to this object, or nil.
	//
	// Returns:
	//   - light.Light: the attached light or nil
	AttachedLight() light.Light

	// Update advances the object's rotation by its rotation speed and keeps
	// any attached light at the object's position.
	//
	// Parameters:
	//   - deltaTime: elapsed time in seconds
	Update(deltaTime float32)

	// InstanceRecord builds the GPU instance record for the object's current
	// transform and color.
	//
	// Returns:
	//   - basicobj.GPUObjectInstance: the instance record
	InstanceRecord() basicobj.GPUObjectInstance

	// SetEnabled sets whether the object is enabled for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetPosition sets the object's world position.
	//
	// Parameters:
	//   - x, y, z: position components
	SetPosition(x, y, z float32)

	// SetRotation sets the object's Euler rotation in radians.
	//
	// Parameters:
	//   - rx, ry, rz: rotation angles
	SetRotation(rx, ry, rz float32)

	// SetScale sets the object's per-axis scale.
	//
	// Parameters:
	//   - sx, sy, sz: scale factors
	SetScale(sx, sy, sz float32)

	// SetColor sets the object's rgba color.
	//
	// Parameters:
	//   - r, g, b, a: color components
	SetColor(r, g, b, a float32)
}

var _ GameObject = &gameObject{}

var objectCount uint64

// NewGameObject creates a GameObject of the given primitive kind with the
// provided options. Defaults: enabled, unit scale, white, at the origin.
//
// Parameters:
//   - kind: the primitive kind to render as
//   - options: functional options for the object's transform, color, and light
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(kind basicobj.BasicObj, options ...GameObjectBuilderOption) GameObject {
	o := &gameObject{
		id:    atomic.AddUint64(&objectCount, 1),
		kind:  kind,
		scale: [3]float32{1, 1, 1},
		color: [4]float32{1, 1, 1, 1},
	}
	o.enabled.Store(true)

	for _, opt := range options {
		opt(o)
	}

	if o.attachedLight != nil {
		o.attachedLight.SetPosition(o.position[0], o.position[1], o.position[2])
	}

	return o
}

func (o *gameObject) ID() uint64 {
	return o.id
}

func (o *gameObject) Enabled() bool {
	return o.enabled.Load()
}

func (o *gameObject) Kind() basicobj.BasicObj {
	return o.kind
}

func (o *gameObject) Position() [3]float32 {
	return o.position
}

func (o *gameObject) Rotation() [3]float32 {
	return o.rotation
}

func (o *gameObject) Scale() [3]float32 {
	return o.scale
}

func (o *gameObject) Color() [4]float32 {
	return o.color
}

func (o *gameObject) AttachedLight() light.Light {
	return o.attachedLight
}

func (o *gameObject) Update(deltaTime float32) {
	o.rotation[0] += o.rotationSpeed[0] * deltaTime
	o.rotation[1] += o.rotationSpeed[1] * deltaTime
	o.rotation[2] += o.rotationSpeed[2] * deltaTime

	if o.attachedLight != nil {
		o.attachedLight.SetPosition(o.position[0], o.position[1], o.position[2])
	}
}

func (o *gameObject) InstanceRecord() basicobj.GPUObjectInstance {
	rec := basicobj.GPUObjectInstance{Color: o.color}
	common.BuildModelMatrix(rec.Model[:],
		o.position[0], o.position[1], o.position[2],
		o.rotation[0], o.rotation[1], o.rotation[2],
		o.scale[0], o.scale[1], o.scale[2])
	return rec
}

func (o *gameObject) SetEnabled(enabled bool) {
	o.enabled.Store(enabled)
}

func (o *gameObject) SetPosition(x, y, z float32) {
	o.position = [3]float32{x, y, z}
}

func (o *gameObject) SetRotation(rx, ry, rz float32) {
	o.rotation = [3]float32{rx, ry, rz}
}

func (o *gameObject) SetScale(sx, sy, sz float32) {
	o.scale = [3]float32{sx, sy, sz}
}

func (o *gameObject) SetColor(r, g, b, a float32) {
	o.color = [4]float32{r, g, b, a}
}
