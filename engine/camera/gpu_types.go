package camera

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUCameraUniformSource is the canonical WGSL definition of the CameraUniform struct.
// Matches GPUCameraUniform layout exactly (144 bytes, std140 aligned).
//
//go:embed assets/camera_uniform.wgsl
var GPUCameraUniformSource string

// GPUCameraUniform is the GPU-aligned representation of the camera uniform buffer.
// Matches the WGSL CameraUniform struct layout exactly (see GPUCameraUniformSource).
// View and projection are kept separate so shaders can compose them with per-instance
// model matrices. Size: 144 bytes.
type GPUCameraUniform struct {
	View       [16]float32 // offset   0: view matrix (mat4x4<f32>)
	Projection [16]float32 // offset  64: projection matrix (mat4x4<f32>)
	Viewport   [2]float32  // offset 128: viewport size in pixels (vec2<f32>)
	_pad       [2]float32  // offset 136: padding to 144 bytes
}

// IdentityCameraUniform returns a GPUCameraUniform with identity view and
// projection matrices and the given viewport size. Used by full-screen passes
// whose quad geometry is already in clip space.
//
// Parameters:
//   - width: viewport width in pixels
//   - height: viewport height in pixels
//
// Returns:
//   - GPUCameraUniform: the identity uniform value
func IdentityCameraUniform(width, height float32) GPUCameraUniform {
	u := GPUCameraUniform{
		Viewport: [2]float32{width, height},
	}
	for i := range 4 {
		u.View[i*4+i] = 1
		u.Projection[i*4+i] = 1
	}
	return u
}

// Size returns the size of the GPUCameraUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (144)
func (g *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUCameraUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.View[i]))
	}
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(g.Projection[i]))
	}
	for i := range 2 {
		binary.LittleEndian.PutUint32(buf[128+i*4:], math.Float32bits(g.Viewport[i]))
	}
	binary.LittleEndian.PutUint32(buf[136:], 0)
	binary.LittleEndian.PutUint32(buf[140:], 0)
	return buf
}
