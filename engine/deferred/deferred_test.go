package deferred

import (
	"strings"
	"testing"

	"github.com/karst-gfx/karst/engine/light"
	"github.com/karst-gfx/karst/engine/renderer/shader"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.LightMinThreshold != 0.02 {
		t.Errorf("LightMinThreshold = %v, want 0.02", cfg.LightMinThreshold)
	}
}

func TestSceneOutputsTransformWithoutShadows(t *testing.T) {
	base := shader.Core{
		Name:    "Scene",
		Outputs: []shader.Output{{Name: "color", Type: "vec4<f32>"}},
	}
	out := sceneOutputsTransform(false)(base)
	if len(out.Outputs) != 2 {
		t.Fatalf("output count = %d, want 2", len(out.Outputs))
	}
	if out.Outputs[0].Name != "world_pos" || out.Outputs[1].Name != "world_normal" {
		t.Errorf("outputs = [%s, %s], want [world_pos, world_normal]",
			out.Outputs[0].Name, out.Outputs[1].Name)
	}
}

func TestSceneOutputsTransformWithShadows(t *testing.T) {
	out := sceneOutputsTransform(true)(shader.Core{Name: "Scene"})
	if len(out.Outputs) != 3 {
		t.Fatalf("output count = %d, want 3", len(out.Outputs))
	}
	if out.Outputs[2].Name != "shadow" {
		t.Errorf("third output = %s, want shadow", out.Outputs[2].Name)
	}
}

func TestCompositionTransform(t *testing.T) {
	base := shader.Core{
		Name: "Composition",
		Outputs: []shader.Output{
			{Name: "color", Type: "vec4<f32>", Expr: "vec4<f32>(1.0, 1.0, 1.0, 1.0)"},
		},
	}
	out := compositionTransform()(base)

	names := map[string]bool{}
	for _, b := range out.Bindings {
		if b.Group == CompositionTextureGroup {
			names[b.Name] = true
		}
	}
	if !names["light_tex"] || !names["normal_tex"] {
		t.Errorf("composition bindings = %v, want light_tex and normal_tex", names)
	}

	expr := out.Outputs[0].Expr
	if !strings.Contains(expr, "textureLoad(light_tex") {
		t.Errorf("color output does not read the light texture: %s", expr)
	}
	if !strings.Contains(expr, "vec4<f32>(1.0, 1.0, 1.0, 1.0)") {
		t.Errorf("color output lost the base expression: %s", expr)
	}
	if base.Outputs[0].Expr != "vec4<f32>(1.0, 1.0, 1.0, 1.0)" {
		t.Error("transform mutated the base core")
	}
}

func TestMainLightCoreShape(t *testing.T) {
	var lightUniform light.GPULightUniform

	for _, haveShadows := range []bool{false, true} {
		core := mainLightCore(haveShadows)

		var lightBinding *shader.Binding
		textures := 0
		for i := range core.Bindings {
			b := &core.Bindings[i]
			if b.Name == "light" {
				lightBinding = b
			}
			if b.Kind == shader.BindingKindTexture {
				textures++
				if b.Group != 1 {
					t.Errorf("texture %s at group %d, want 1", b.Name, b.Group)
				}
			}
		}
		if lightBinding == nil {
			t.Fatal("no light binding")
		}
		if !lightBinding.DynamicOffset {
			t.Error("light binding must use a dynamic offset")
		}
		if lightBinding.Group != MainLightSeriesGroup {
			t.Errorf("light binding at group %d, want %d", lightBinding.Group, MainLightSeriesGroup)
		}
		if lightBinding.MinBindingSize != uint64(lightUniform.Size()) {
			t.Errorf("light MinBindingSize = %d, want %d", lightBinding.MinBindingSize, lightUniform.Size())
		}

		wantTextures := 2
		if haveShadows {
			wantTextures = 3
		}
		if textures != wantTextures {
			t.Errorf("haveShadows=%v: texture binding count = %d, want %d", haveShadows, textures, wantTextures)
		}
	}
}

func TestLightObjectCoreShape(t *testing.T) {
	core := lightObjectCore()

	var inst light.GPULightInstance
	if int(core.InstanceStride()) != inst.Size() {
		t.Errorf("instance stride %d does not match light instance size %d",
			core.InstanceStride(), inst.Size())
	}

	src := core.Source(shader.InstancingModeVertex)
	for _, want := range []string{
		"position_radius",
		"textureLoad(gbuffer_pos",
		"textureLoad(gbuffer_normal",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("light object source missing %q", want)
		}
	}
}
