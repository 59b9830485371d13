package camera

import (
	"math"
	"testing"
)

func TestGPUCameraUniformSize(t *testing.T) {
	var u GPUCameraUniform
	if u.Size() != 144 {
		t.Fatalf("Size() = %d, want 144", u.Size())
	}
	if len(u.Marshal()) != 144 {
		t.Fatalf("Marshal() length = %d, want 144", len(u.Marshal()))
	}
}

func TestIdentityCameraUniform(t *testing.T) {
	u := IdentityCameraUniform(1920, 1080)
	for i := 0; i < 16; i++ {
		want := float32(0)
		if i%5 == 0 {
			want = 1
		}
		if u.View[i] != want {
			t.Errorf("View[%d] = %v, want %v", i, u.View[i], want)
		}
		if u.Projection[i] != want {
			t.Errorf("Projection[%d] = %v, want %v", i, u.Projection[i], want)
		}
	}
	if u.Viewport != [2]float32{1920, 1080} {
		t.Errorf("Viewport = %v, want (1920, 1080)", u.Viewport)
	}
}

func TestSetViewportUpdatesAspect(t *testing.T) {
	c := NewCamera(WithController(NewOrbitController(10, 0, 0.5)))
	c.SetViewport(1600, 800)
	if got := c.Aspect(); math.Abs(float64(got-2)) > 1e-6 {
		t.Errorf("Aspect() = %v, want 2", got)
	}
	w, h := c.ViewportSize()
	if w != 1600 || h != 800 {
		t.Errorf("ViewportSize() = (%v, %v), want (1600, 800)", w, h)
	}
}

func TestOrbitControllerPosition(t *testing.T) {
	ctrl := NewOrbitController(10, 0, 0)
	x, y, z := ctrl.Position()
	dist := math.Sqrt(float64(x*x + y*y + z*z))
	if math.Abs(dist-10) > 1e-4 {
		t.Errorf("orbit position distance = %v, want 10", dist)
	}

	ctrl.Zoom(2)
	x, y, z = ctrl.Position()
	dist = math.Sqrt(float64(x*x + y*y + z*z))
	if dist >= 10 {
		t.Errorf("zooming in should reduce radius, got %v", dist)
	}
}

func TestCameraUniformUsesController(t *testing.T) {
	c := NewCamera(
		WithController(NewOrbitController(10, 0.3, 0.4)),
		WithViewport(800, 600),
	)
	c.Update()
	u := c.Uniform()

	identity := true
	for i := 0; i < 16; i++ {
		want := float32(0)
		if i%5 == 0 {
			want = 1
		}
		if u.View[i] != want {
			identity = false
			break
		}
	}
	if identity {
		t.Error("view matrix should not be identity with an orbit controller attached")
	}
	if u.Viewport != [2]float32{800, 600} {
		t.Errorf("Viewport = %v, want (800, 600)", u.Viewport)
	}
}
