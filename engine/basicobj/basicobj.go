// Package basicobj provides the closed set of primitive object kinds the
// renderer can draw, their generated meshes, and the render-list and
// instancing machinery that replicates them per frame.
package basicobj

import "fmt"

// BasicObj identifies one primitive object kind. The set is closed and each
// kind maps to a dense index in [0, NumKinds) used to address per-kind meshes,
// render lists, and instancing buffers.
type BasicObj int

const (
	// Triangle is a single triangle in the XY plane.
	Triangle BasicObj = iota

	// Quad is a unit quad in the XY plane.
	Quad

	// Cube is a unit cube centered on the origin.
	Cube

	// Sphere is a unit UV sphere centered on the origin.
	Sphere

	// LineX is a thin elongated box along the X axis.
	LineX

	// LineY is a thin elongated box along the Y axis.
	LineY

	// LineZ is a thin elongated box along the Z axis.
	LineZ

	// TessellatedCube is a cube with subdivided faces.
	TessellatedCube

	// TessellatedCylinder is a cylinder with subdivided caps and wall.
	TessellatedCylinder

	// NumKinds is the number of primitive kinds.
	NumKinds int = iota
)

// AllKinds lists every primitive kind in index order.
var AllKinds = [NumKinds]BasicObj{
	Triangle,
	Quad,
	Cube,
	Sphere,
	LineX,
	LineY,
	LineZ,
	TessellatedCube,
	TessellatedCylinder,
}

func init() {
	// The dense index is relied on everywhere a per-kind array is addressed,
	// so a broken table is a programming error worth dying for at startup.
	for i, kind := range AllKinds {
		if kind.Index() != i {
			panic(fmt.Sprintf("basicobj: kind %v has index %d, want %d", kind, kind.Index(), i))
		}
		roundTrip, err := FromIndex(i)
		if err != nil || roundTrip != kind {
			panic(fmt.Sprintf("basicobj: index %d does not round-trip to %v", i, kind))
		}
	}
}

// Index returns the dense index of the kind.
//
// Returns:
//   - int: the index in [0, NumKinds)
func (b BasicObj) Index() int {
	return int(b)
}

// FromIndex returns the kind for a dense index.
//
// Parameters:
//   - i: the index to look up
//
// Returns:
//   - BasicObj: the kind at that index
//   - error: an error if the index is out of range
func FromIndex(i int) (BasicObj, error) {
	if i < 0 || i >= NumKinds {
		return 0, fmt.Errorf("basicobj: index %d out of range [0, %d)", i, NumKinds)
	}
	return BasicObj(i), nil
}

// String returns the kind's name.
func (b BasicObj) String() string {
	switch b {
	case Triangle:
		return "Triangle"
	case Quad:
		return "Quad"
	case Cube:
		return "Cube"
	case Sphere:
		return "Sphere"
	case LineX:
		return "LineX"
	case LineY:
		return "LineY"
	case LineZ:
		return "LineZ"
	case TessellatedCube:
		return "TessellatedCube"
	case TessellatedCylinder:
		return "TessellatedCylinder"
	default:
		return fmt.Sprintf("BasicObj(%d)", int(b))
	}
}
