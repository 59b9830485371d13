package basicobj

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// Vertex is the GPU vertex layout shared by every primitive mesh.
// Size: 24 bytes.
type Vertex struct {
	Position [3]float32 // offset  0: object-space position (vec3<f32>)
	Normal   [3]float32 // offset 12: object-space normal (vec3<f32>)
}

// Size returns the size of the Vertex struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (24)
func (v *Vertex) Size() int {
	return int(unsafe.Sizeof(*v))
}

// Marshal serializes the Vertex into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (v *Vertex) Marshal() []byte {
	buf := make([]byte, v.Size())
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v.Position[i]))
	}
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[12+i*4:], math.Float32bits(v.Normal[i]))
	}
	return buf
}

// MarshalVertices serializes a vertex slice into one contiguous byte buffer.
//
// Parameters:
//   - vertices: the vertices to serialize
//
// Returns:
//   - []byte: the serialized byte buffer
func MarshalVertices(vertices []Vertex) []byte {
	buf := make([]byte, 0, len(vertices)*24)
	for i := range vertices {
		buf = append(buf, vertices[i].Marshal()...)
	}
	return buf
}

// GPUObjectInstance is the per-instance record for one replicated primitive:
// a model matrix and a flat color. The layout matches the instance fields
// declared by the scene shader core. Size: 80 bytes.
type GPUObjectInstance struct {
	Model [16]float32 // offset  0: model matrix (mat4x4<f32>, column-major)
	Color [4]float32  // offset 64: rgba object color (vec4<f32>)
}

// Size returns the size of the GPUObjectInstance struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (80)
func (g *GPUObjectInstance) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUObjectInstance into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUObjectInstance) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Model[i]))
	}
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(g.Color[i]))
	}
	return buf
}
