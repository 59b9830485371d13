package basicobj

import (
	"fmt"

	"github.com/chewxy/math32"
)

const (
	// sphereSlices and sphereStacks control the UV sphere resolution. The
	// sphere doubles as the point-light volume proxy, where a coarse mesh is
	// fine because the fragment shader bounds the light analytically.
	sphereSlices = 24
	sphereStacks = 16

	// lineThickness is the cross-section half-extent of the line primitives.
	lineThickness = 0.02

	// tessellation is the per-face subdivision count of the tessellated kinds.
	tessellation = 4

	cylinderSlices = 24
)

// Mesh generation for the primitive kinds. All meshes share the Vertex layout
// and uint32 indices, and are uploaded once by the Registry.

// GenerateMesh generates the vertex and index data for a primitive kind
// without uploading it. Components that need a standalone proxy mesh (rather
// than the shared Registry meshes) build theirs from this.
//
// Parameters:
//   - kind: the primitive kind to generate
//
// Returns:
//   - []Vertex: the vertex data
//   - []uint32: the triangle index data
//   - error: an error if the kind is unknown
func GenerateMesh(kind BasicObj) ([]Vertex, []uint32, error) {
	return meshFor(kind)
}

// meshFor generates the vertex and index data for a primitive kind.
//
// Parameters:
//   - kind: the primitive kind to generate
//
// Returns:
//   - []Vertex: the vertex data
//   - []uint32: the triangle index data
//   - error: an error if the kind is unknown
func meshFor(kind BasicObj) ([]Vertex, []uint32, error) {
	switch kind {
	case Triangle:
		return triangleMesh()
	case Quad:
		return quadMesh()
	case Cube:
		return boxMesh([3]float32{-0.5, -0.5, -0.5}, [3]float32{0.5, 0.5, 0.5}, 1)
	case Sphere:
		return sphereMesh(sphereSlices, sphereStacks)
	case LineX:
		return boxMesh([3]float32{0, -lineThickness, -lineThickness}, [3]float32{1, lineThickness, lineThickness}, 1)
	case LineY:
		return boxMesh([3]float32{-lineThickness, 0, -lineThickness}, [3]float32{lineThickness, 1, lineThickness}, 1)
	case LineZ:
		return boxMesh([3]float32{-lineThickness, -lineThickness, 0}, [3]float32{lineThickness, lineThickness, 1}, 1)
	case TessellatedCube:
		return boxMesh([3]float32{-0.5, -0.5, -0.5}, [3]float32{0.5, 0.5, 0.5}, tessellation)
	case TessellatedCylinder:
		return cylinderMesh(cylinderSlices)
	default:
		return nil, nil, fmt.Errorf("basicobj: unknown kind %v", kind)
	}
}

func triangleMesh() ([]Vertex, []uint32, error) {
	n := [3]float32{0, 0, 1}
	vertices := []Vertex{
		{Position: [3]float32{0, 0, 0}, Normal: n},
		{Position: [3]float32{1, 0, 0}, Normal: n},
		{Position: [3]float32{0, 1, 0}, Normal: n},
	}
	return vertices, []uint32{0, 1, 2}, nil
}

func quadMesh() ([]Vertex, []uint32, error) {
	n := [3]float32{0, 0, 1}
	vertices := []Vertex{
		{Position: [3]float32{0, 0, 0}, Normal: n},
		{Position: [3]float32{1, 0, 0}, Normal: n},
		{Position: [3]float32{1, 1, 0}, Normal: n},
		{Position: [3]float32{0, 1, 0}, Normal: n},
	}
	return vertices, []uint32{0, 1, 2, 0, 2, 3}, nil
}

// boxMesh builds an axis-aligned box between min and max with each face
// subdivided divisions x divisions times. Faces carry flat normals.
func boxMesh(bmin, bmax [3]float32, divisions int) ([]Vertex, []uint32, error) {
	if divisions < 1 {
		return nil, nil, fmt.Errorf("basicobj: box divisions must be >= 1, got %d", divisions)
	}

	type face struct {
		normal [3]float32
		// origin is the face corner; du and dv span the face.
		origin, du, dv [3]float32
	}

	sx := bmax[0] - bmin[0]
	sy := bmax[1] - bmin[1]
	sz := bmax[2] - bmin[2]

	faces := []face{
		// +X
		{[3]float32{1, 0, 0}, [3]float32{bmax[0], bmin[1], bmax[2]}, [3]float32{0, 0, -sz}, [3]float32{0, sy, 0}},
		// -X
		{[3]float32{-1, 0, 0}, [3]float32{bmin[0], bmin[1], bmin[2]}, [3]float32{0, 0, sz}, [3]float32{0, sy, 0}},
		// +Y
		{[3]float32{0, 1, 0}, [3]float32{bmin[0], bmax[1], bmax[2]}, [3]float32{sx, 0, 0}, [3]float32{0, 0, -sz}},
		// -Y
		{[3]float32{0, -1, 0}, [3]float32{bmin[0], bmin[1], bmin[2]}, [3]float32{sx, 0, 0}, [3]float32{0, 0, sz}},
		// +Z
		{[3]float32{0, 0, 1}, [3]float32{bmin[0], bmin[1], bmax[2]}, [3]float32{sx, 0, 0}, [3]float32{0, sy, 0}},
		// -Z
		{[3]float32{0, 0, -1}, [3]float32{bmax[0], bmin[1], bmin[2]}, [3]float32{-sx, 0, 0}, [3]float32{0, sy, 0}},
	}

	var vertices []Vertex
	var indices []uint32
	for _, f := range faces {
		base := uint32(len(vertices))
		steps := divisions + 1
		for v := 0; v < steps; v++ {
			for u := 0; u < steps; u++ {
				fu := float32(u) / float32(divisions)
				fv := float32(v) / float32(divisions)
				vertices = append(vertices, Vertex{
					Position: [3]float32{
						f.origin[0] + f.du[0]*fu + f.dv[0]*fv,
						f.origin[1] + f.du[1]*fu + f.dv[1]*fv,
						f.origin[2] + f.du[2]*fu + f.dv[2]*fv,
					},
					Normal: f.normal,
				})
			}
		}
		for v := 0; v < divisions; v++ {
			for u := 0; u < divisions; u++ {
				i0 := base + uint32(v*steps+u)
				i1 := i0 + 1
				i2 := i0 + uint32(steps)
				i3 := i2 + 1
				indices = append(indices, i0, i1, i3, i0, i3, i2)
			}
		}
	}
	return vertices, indices, nil
}

// sphereMesh builds a unit-radius UV sphere. Normals equal positions, which is
// what makes the unit sphere reusable as a scalable light volume proxy.
func sphereMesh(slices, stacks int) ([]Vertex, []uint32, error) {
	if slices < 3 || stacks < 2 {
		return nil, nil, fmt.Errorf("basicobj: sphere needs >= 3 slices and >= 2 stacks, got %d/%d", slices, stacks)
	}

	var vertices []Vertex
	for stack := 0; stack <= stacks; stack++ {
		phi := math32.Pi * float32(stack) / float32(stacks)
		y := math32.Cos(phi)
		ring := math32.Sin(phi)
		for slice := 0; slice <= slices; slice++ {
			theta := 2 * math32.Pi * float32(slice) / float32(slices)
			p := [3]float32{ring * math32.Cos(theta), y, ring * math32.Sin(theta)}
			vertices = append(vertices, Vertex{Position: p, Normal: p})
		}
	}

	var indices []uint32
	cols := uint32(slices + 1)
	for stack := 0; stack < stacks; stack++ {
		for slice := 0; slice < slices; slice++ {
			i0 := uint32(stack)*cols + uint32(slice)
			i1 := i0 + 1
			i2 := i0 + cols
			i3 := i2 + 1
			indices = append(indices, i0, i2, i1, i1, i2, i3)
		}
	}
	return vertices, indices, nil
}

// cylinderMesh builds a unit-radius cylinder of height 1 centered on the
// origin, aligned to the Y axis, with capped ends.
func cylinderMesh(slices int) ([]Vertex, []uint32, error) {
	if slices < 3 {
		return nil, nil, fmt.Errorf("basicobj: cylinder needs >= 3 slices, got %d", slices)
	}

	var vertices []Vertex
	var indices []uint32

	// Wall: two rings with outward normals.
	base := uint32(0)
	for slice := 0; slice <= slices; slice++ {
		theta := 2 * math32.Pi * float32(slice) / float32(slices)
		x := math32.Cos(theta)
		z := math32.Sin(theta)
		vertices = append(vertices,
			Vertex{Position: [3]float32{x, -0.5, z}, Normal: [3]float32{x, 0, z}},
			Vertex{Position: [3]float32{x, 0.5, z}, Normal: [3]float32{x, 0, z}},
		)
	}
	for slice := 0; slice < slices; slice++ {
		i0 := base + uint32(slice*2)
		indices = append(indices, i0, i0+1, i0+2, i0+2, i0+1, i0+3)
	}

	// Caps: center fan per end.
	for _, end := range []struct {
		y      float32
		normal [3]float32
	}{
		{0.5, [3]float32{0, 1, 0}},
		{-0.5, [3]float32{0, -1, 0}},
	} {
		center := uint32(len(vertices))
		vertices = append(vertices, Vertex{Position: [3]float32{0, end.y, 0}, Normal: end.normal})
		ringStart := uint32(len(vertices))
		for slice := 0; slice <= slices; slice++ {
			theta := 2 * math32.Pi * float32(slice) / float32(slices)
			vertices = append(vertices, Vertex{
				Position: [3]float32{math32.Cos(theta), end.y, math32.Sin(theta)},
				Normal:   end.normal,
			})
		}
		for slice := 0; slice < slices; slice++ {
			i0 := ringStart + uint32(slice)
			if end.normal[1] > 0 {
				indices = append(indices, center, i0+1, i0)
			} else {
				indices = append(indices, center, i0, i0+1)
			}
		}
	}

	return vertices, indices, nil
}
