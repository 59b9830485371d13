package common

import (
	"math"
	"testing"
)

const tolerance = 1e-5

func approxEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) < tolerance
}

// transformPoint applies a column-major 4x4 matrix to a point with w=1 and
// divides by the resulting w.
func transformPoint(m []float32, x, y, z float32) (float32, float32, float32) {
	ox := m[0]*x + m[4]*y + m[8]*z + m[12]
	oy := m[1]*x + m[5]*y + m[9]*z + m[13]
	oz := m[2]*x + m[6]*y + m[10]*z + m[14]
	ow := m[3]*x + m[7]*y + m[11]*z + m[15]
	if ow != 0 && ow != 1 {
		ox /= ow
		oy /= ow
		oz /= ow
	}
	return ox, oy, oz
}

func TestIdentityMatrix(t *testing.T) {
	m := IdentityMatrix()
	for i := 0; i < 16; i++ {
		want := float32(0)
		if i%5 == 0 {
			want = 1
		}
		if m[i] != want {
			t.Errorf("identity[%d] = %v, want %v", i, m[i], want)
		}
	}
}

func TestMul4Identity(t *testing.T) {
	id := IdentityMatrix()
	a := [16]float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	}
	var out [16]float32
	Mul4(out[:], a[:], id[:])
	if out != a {
		t.Errorf("A * I = %v, want %v", out, a)
	}
	Mul4(out[:], id[:], a[:])
	if out != a {
		t.Errorf("I * A = %v, want %v", out, a)
	}
}

func TestMul4InPlace(t *testing.T) {
	// Mul4 must tolerate out aliasing one of its inputs.
	translate := IdentityMatrix()
	translate[12] = 3
	m := IdentityMatrix()
	m[12] = 1
	Mul4(m[:], translate[:], m[:])
	if !approxEqual(m[12], 4) {
		t.Errorf("composed translation x = %v, want 4", m[12])
	}
}

func TestPerspectiveClipSpace(t *testing.T) {
	var proj [16]float32
	near, far := float32(0.1), float32(100.0)
	Perspective(proj[:], float32(math.Pi)/3, 16.0/9.0, near, far)

	// A point on the near plane in front of the camera maps to z=0, one on
	// the far plane to z=1 (WebGPU clip space).
	_, _, zNear := transformPoint(proj[:], 0, 0, -near)
	if !approxEqual(zNear, 0) {
		t.Errorf("near plane maps to z=%v, want 0", zNear)
	}
	_, _, zFar := transformPoint(proj[:], 0, 0, -far)
	if !approxEqual(zFar, 1) {
		t.Errorf("far plane maps to z=%v, want 1", zFar)
	}
}

func TestBuildModelMatrixTranslationScale(t *testing.T) {
	var m [16]float32
	BuildModelMatrix(m[:], 1, 2, 3, 0, 0, 0, 2, 4, 8)

	x, y, z := transformPoint(m[:], 1, 1, 1)
	if !approxEqual(x, 3) || !approxEqual(y, 6) || !approxEqual(z, 11) {
		t.Errorf("transformed point = (%v, %v, %v), want (3, 6, 11)", x, y, z)
	}
}

func TestBuildModelMatrixRotationY(t *testing.T) {
	var m [16]float32
	BuildModelMatrix(m[:], 0, 0, 0, 0, float32(math.Pi)/2, 0, 1, 1, 1)

	// A quarter turn around Y maps +X to -Z.
	x, y, z := transformPoint(m[:], 1, 0, 0)
	if !approxEqual(x, 0) || !approxEqual(y, 0) || !approxEqual(z, -1) {
		t.Errorf("rotated +X = (%v, %v, %v), want (0, 0, -1)", x, y, z)
	}
}

func TestLookAtTransformsEyeToOrigin(t *testing.T) {
	var view [16]float32
	LookAt(view[:], 5, 3, 7, 0, 0, 0, 0, 1, 0)

	x, y, z := transformPoint(view[:], 5, 3, 7)
	if !approxEqual(x, 0) || !approxEqual(y, 0) || !approxEqual(z, 0) {
		t.Errorf("eye transforms to (%v, %v, %v), want origin", x, y, z)
	}

	// The target lies on the negative view Z axis.
	x, y, z = transformPoint(view[:], 0, 0, 0)
	if !approxEqual(x, 0) || !approxEqual(y, 0) || z >= 0 {
		t.Errorf("target transforms to (%v, %v, %v), want on -Z", x, y, z)
	}
}

func TestNormalize3(t *testing.T) {
	v := Normalize3(3, 4, 0)
	if !approxEqual(v[0], 0.6) || !approxEqual(v[1], 0.8) || !approxEqual(v[2], 0) {
		t.Errorf("Normalize3(3,4,0) = %v, want (0.6, 0.8, 0)", v)
	}

	zero := Normalize3(0, 0, 0)
	if zero != [3]float32{0, 0, 0} {
		t.Errorf("Normalize3(0,0,0) = %v, want zero vector", zero)
	}
}

func TestSliceToBytes(t *testing.T) {
	data := []uint32{0x04030201, 0x08070605}
	b := SliceToBytes(data)
	if len(b) != 8 {
		t.Fatalf("len = %d, want 8", len(b))
	}
	for i := 0; i < 8; i++ {
		if b[i] != byte(i+1) {
			t.Errorf("byte %d = %#x, want %#x", i, b[i], i+1)
		}
	}

	if SliceToBytes([]float32(nil)) != nil {
		t.Error("empty slice should convert to nil")
	}
}
