package light

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPULightUniformSource is the canonical WGSL definition of the LightUniform struct.
// Matches GPULightUniform layout exactly (32 bytes, std140 aligned).
//
//go:embed assets/light_uniform.wgsl
var GPULightUniformSource string

// GPULightUniform is the GPU-aligned representation of the main light uniform.
// Matches the WGSL LightUniform struct layout exactly (see GPULightUniformSource).
// Size: 32 bytes.
type GPULightUniform struct {
	Position [3]float32 // offset  0: world-space light position (vec3<f32>)
	_pad0    float32    // offset 12: padding
	Color    [3]float32 // offset 16: light color (vec3<f32>)
	_pad1    float32    // offset 28: padding to 32 bytes
}

// Size returns the size of the GPULightUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *GPULightUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPULightUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPULightUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Position[i]))
	}
	binary.LittleEndian.PutUint32(buf[12:], 0) // _pad0
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(g.Color[i]))
	}
	binary.LittleEndian.PutUint32(buf[28:], 0) // _pad1
	return buf
}

// GPULightInstance is the per-instance record for one point light volume in the
// light accumulation pass. The layout matches the instance fields declared by
// the light-object shader core: three vec4s, so the same record is legal as a
// dynamically offset uniform struct. Size: 48 bytes.
type GPULightInstance struct {
	PositionRadius [4]float32 // offset  0: xyz world position, w influence radius
	Color          [4]float32 // offset 16: rgb light color, w unused
	Attenuation    [4]float32 // offset 32: xyz attenuation coefficients (a0, a1, a2), w unused
}

// Size returns the size of the GPULightInstance struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (48)
func (g *GPULightInstance) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPULightInstance struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPULightInstance) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.PositionRadius[i]))
	}
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(g.Color[i]))
	}
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[32+i*4:], math.Float32bits(g.Attenuation[i]))
	}
	return buf
}

// InstanceFromLight builds the GPU instance record for a light using the given
// influence radius.
//
// Parameters:
//   - l: the source light
//   - radius: the precomputed influence radius
//
// Returns:
//   - GPULightInstance: the packed instance record
func InstanceFromLight(l Light, radius float32) GPULightInstance {
	pos := l.Position()
	color := l.Color()
	att := l.Attenuation()
	return GPULightInstance{
		PositionRadius: [4]float32{pos[0], pos[1], pos[2], radius},
		Color:          [4]float32{color[0], color[1], color[2], 0},
		Attenuation:    [4]float32{att[0], att[1], att[2], 0},
	}
}
