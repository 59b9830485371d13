package light

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestInfluenceRadiusReachesThreshold(t *testing.T) {
	l := NewLight(
		WithColor(1, 1, 1),
		WithAttenuation(1, 0.1, 0.01),
	)

	radius, ok := l.InfluenceRadius(0.02)
	if !ok {
		t.Fatal("expected a finite influence radius")
	}

	// At the radius the attenuated peak intensity equals the threshold.
	att := 1 + 0.1*radius + 0.01*radius*radius
	intensity := 1 / att
	if math.Abs(float64(intensity-0.02)) > 1e-4 {
		t.Errorf("intensity at radius = %v, want 0.02", intensity)
	}
}

func TestInfluenceRadiusScalesWithColor(t *testing.T) {
	dim := NewLight(WithColor(0.5, 0.5, 0.5), WithAttenuation(1, 0, 0.05))
	bright := NewLight(WithColor(4, 2, 1), WithAttenuation(1, 0, 0.05))

	dimRadius, ok := dim.InfluenceRadius(DefaultThreshold)
	if !ok {
		t.Fatal("dim light should have a radius")
	}
	brightRadius, ok := bright.InfluenceRadius(DefaultThreshold)
	if !ok {
		t.Fatal("bright light should have a radius")
	}
	if brightRadius <= dimRadius {
		t.Errorf("bright radius %v should exceed dim radius %v", brightRadius, dimRadius)
	}
}

func TestInfluenceRadiusLinearFallback(t *testing.T) {
	l := NewLight(WithColor(1, 1, 1), WithAttenuation(1, 0.5, 0))

	radius, ok := l.InfluenceRadius(0.02)
	if !ok {
		t.Fatal("linear attenuation should have a radius")
	}
	// 1/(1 + 0.5*d) = 0.02 at d = (50-1)/0.5 = 98.
	if math.Abs(float64(radius-98)) > 1e-3 {
		t.Errorf("radius = %v, want 98", radius)
	}
}

func TestInfluenceRadiusDegenerateCases(t *testing.T) {
	cases := []struct {
		name        string
		attenuation [3]float32
		threshold   float32
	}{
		{"constant only", [3]float32{1, 0, 0}, 0.02},
		{"zero threshold", [3]float32{1, 0, 0.05}, 0},
		{"negative threshold", [3]float32{1, 0, 0.05}, -1},
		{"already below threshold", [3]float32{1000, 0, 0.05}, 0.02},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := NewLight(WithAttenuation(tc.attenuation[0], tc.attenuation[1], tc.attenuation[2]))
			if _, ok := l.InfluenceRadius(tc.threshold); ok {
				t.Error("expected ok=false")
			}
		})
	}
}

func TestDefaultThresholdValue(t *testing.T) {
	if DefaultThreshold != 0.02 {
		t.Errorf("DefaultThreshold = %v, want 0.02", DefaultThreshold)
	}
}

func TestGPULightInstanceLayout(t *testing.T) {
	var g GPULightInstance
	if g.Size() != 48 {
		t.Fatalf("Size() = %d, want 48", g.Size())
	}

	l := NewLight(
		WithPosition(1, 2, 3),
		WithColor(0.5, 0.25, 0.125),
		WithAttenuation(1, 0.1, 0.01),
	)
	inst := InstanceFromLight(l, 9)
	buf := inst.Marshal()
	if len(buf) != 48 {
		t.Fatalf("Marshal() length = %d, want 48", len(buf))
	}

	readF32 := func(offset int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset:]))
	}
	// position + radius in the first vec4.
	for i, want := range []float32{1, 2, 3, 9} {
		if got := readF32(i * 4); got != want {
			t.Errorf("position_radius[%d] = %v, want %v", i, got, want)
		}
	}
	// color in the second vec4.
	for i, want := range []float32{0.5, 0.25, 0.125} {
		if got := readF32(16 + i*4); got != want {
			t.Errorf("color[%d] = %v, want %v", i, got, want)
		}
	}
	// attenuation in the third vec4.
	for i, want := range []float32{1, 0.1, 0.01} {
		if got := readF32(32 + i*4); got != want {
			t.Errorf("attenuation[%d] = %v, want %v", i, got, want)
		}
	}
}

func TestGPULightUniformLayout(t *testing.T) {
	g := GPULightUniform{
		Position: [3]float32{1, 2, 3},
		Color:    [3]float32{4, 5, 6},
	}
	if g.Size() != 32 {
		t.Fatalf("Size() = %d, want 32", g.Size())
	}
	buf := g.Marshal()
	if len(buf) != 32 {
		t.Fatalf("Marshal() length = %d, want 32", len(buf))
	}
	readF32 := func(offset int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset:]))
	}
	if readF32(0) != 1 || readF32(4) != 2 || readF32(8) != 3 {
		t.Error("position not at offset 0")
	}
	if readF32(16) != 4 || readF32(20) != 5 || readF32(24) != 6 {
		t.Error("color not at offset 16")
	}
}

func TestMainLightFlag(t *testing.T) {
	if NewLight().IsMain() {
		t.Error("lights default to point lights")
	}
	if !NewLight(WithMain()).IsMain() {
		t.Error("WithMain should mark the light as main")
	}
}
