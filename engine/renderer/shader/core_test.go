package shader

import (
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func testCore() Core {
	return Core{
		Name: "Test",
		VertexAttributes: []Field{
			{Name: "position", Type: "vec3<f32>"},
			{Name: "normal", Type: "vec3<f32>"},
		},
		InstanceFields: []Field{
			{Name: "model", Type: "mat4x4<f32>"},
			{Name: "color", Type: "vec4<f32>"},
		},
		InstanceGroup:   1,
		InstanceBinding: 0,
		Bindings: []Binding{
			{
				Group: 0, Index: 0, Name: "camera", Type: "CameraUniform",
				Kind:           BindingKindUniform,
				StructSource:   "struct CameraUniform {\n    view: mat4x4<f32>,\n}",
				Visibility:     wgpu.ShaderStageVertex,
				MinBindingSize: 64,
			},
		},
		Varyings: []Field{
			{Name: "world_pos", Type: "vec3<f32>"},
		},
		VertexBody:   "out.world_pos = in.position;\nout.clip_position = vec4<f32>(in.position, 1.0);",
		FragmentBody: "",
		Outputs: []Output{
			{Name: "color", Type: "vec4<f32>", Expr: "vec4<f32>(in.world_pos, 1.0)"},
		},
	}
}

func TestInstanceStride(t *testing.T) {
	c := testCore()
	if got := c.InstanceStride(); got != 80 {
		t.Errorf("InstanceStride() = %d, want 80", got)
	}

	empty := Core{Name: "Empty"}
	if got := empty.InstanceStride(); got != 0 {
		t.Errorf("InstanceStride() with no fields = %d, want 0", got)
	}
}

func TestTransformOrder(t *testing.T) {
	c := Core{Name: "Order"}
	appendOutput := func(name string) CoreTransform {
		return func(c Core) Core {
			return c.WithOutputs(Output{Name: name, Type: "vec4<f32>"})
		}
	}
	out := c.Transform(appendOutput("first"), appendOutput("second"), appendOutput("third"))
	if len(out.Outputs) != 3 {
		t.Fatalf("len(Outputs) = %d, want 3", len(out.Outputs))
	}
	for i, want := range []string{"first", "second", "third"} {
		if out.Outputs[i].Name != want {
			t.Errorf("Outputs[%d].Name = %q, want %q", i, out.Outputs[i].Name, want)
		}
	}
	if len(c.Outputs) != 0 {
		t.Error("transform mutated the input core")
	}
}

func TestSourceUniformsMode(t *testing.T) {
	src := testCore().Source(InstancingModeUniforms)

	for _, want := range []string{
		"struct CameraUniform",
		"struct TestInstance",
		"@group(1) @binding(0) var<uniform> inst: TestInstance;",
		"@vertex",
		"fn vs_main(in: VertexIn) -> VertexOut",
		"@fragment",
		"fn fs_main(in: VertexOut) -> FragmentOut",
		"out.color = vec4<f32>(in.world_pos, 1.0);",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("uniforms-mode source missing %q\n%s", want, src)
		}
	}
	if strings.Contains(src, "InstanceIn") {
		t.Error("uniforms-mode source should not declare a per-instance vertex input")
	}
}

func TestSourceVertexMode(t *testing.T) {
	src := testCore().Source(InstancingModeVertex)

	for _, want := range []string{
		"struct InstanceIn",
		"fn vs_main(in: VertexIn, inst_in: InstanceIn) -> VertexOut",
		"mat4x4<f32>(inst_in.model_0, inst_in.model_1, inst_in.model_2, inst_in.model_3)",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("vertex-mode source missing %q\n%s", want, src)
		}
	}
	if strings.Contains(src, "var<uniform> inst") {
		t.Error("vertex-mode source should not declare the instance uniform")
	}
}

func TestBindGroupLayoutDescriptors(t *testing.T) {
	c := testCore()

	uniforms := c.BindGroupLayoutDescriptors(InstancingModeUniforms)
	if len(uniforms) != 2 {
		t.Fatalf("uniforms mode group count = %d, want 2", len(uniforms))
	}
	instEntries := uniforms[1].Entries
	if len(instEntries) != 1 {
		t.Fatalf("instance group entry count = %d, want 1", len(instEntries))
	}
	if !instEntries[0].Buffer.HasDynamicOffset {
		t.Error("instance uniform must use a dynamic offset")
	}
	if instEntries[0].Buffer.MinBindingSize != c.InstanceStride() {
		t.Errorf("instance MinBindingSize = %d, want %d", instEntries[0].Buffer.MinBindingSize, c.InstanceStride())
	}

	vertex := c.BindGroupLayoutDescriptors(InstancingModeVertex)
	if len(vertex) != 1 {
		t.Fatalf("vertex mode group count = %d, want 1", len(vertex))
	}
	camEntry := vertex[0].Entries[0]
	if camEntry.Buffer.MinBindingSize != 64 {
		t.Errorf("camera MinBindingSize = %d, want 64", camEntry.Buffer.MinBindingSize)
	}
}

func TestVertexBufferLayouts(t *testing.T) {
	c := testCore()

	uniforms := c.VertexBufferLayouts(InstancingModeUniforms)
	if len(uniforms) != 1 {
		t.Fatalf("uniforms mode layout count = %d, want 1", len(uniforms))
	}
	if uniforms[0].ArrayStride != 24 {
		t.Errorf("vertex stride = %d, want 24", uniforms[0].ArrayStride)
	}

	vertex := c.VertexBufferLayouts(InstancingModeVertex)
	if len(vertex) != 2 {
		t.Fatalf("vertex mode layout count = %d, want 2", len(vertex))
	}
	inst := vertex[1]
	if inst.ArrayStride != 80 {
		t.Errorf("instance stride = %d, want 80", inst.ArrayStride)
	}
	if inst.StepMode != wgpu.VertexStepModeInstance {
		t.Error("instance slot must step per instance")
	}
	// mat4x4 expands to four vec4 attributes plus one for color.
	if len(inst.Attributes) != 5 {
		t.Errorf("instance attribute count = %d, want 5", len(inst.Attributes))
	}
	// Shader locations continue after the vertex attributes.
	if inst.Attributes[0].ShaderLocation != 2 {
		t.Errorf("first instance location = %d, want 2", inst.Attributes[0].ShaderLocation)
	}
}
