package basicobj

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/karst-gfx/karst/engine/camera"
	"github.com/karst-gfx/karst/engine/renderer/shader"
)

// SceneCore returns the base shader core for drawing replicated primitives:
// camera uniform at group 0, the GPUObjectInstance record as instance data,
// world-space position and normal carried to the fragment stage. On its own
// the core outputs the instance color; render pass components transform it to
// emit their own outputs.
//
// Returns:
//   - shader.Core: the scene core
func SceneCore() shader.Core {
	var u camera.GPUCameraUniform
	return shader.Core{
		Name: "BasicObjScene",
		VertexAttributes: []shader.Field{
			{Name: "position", Type: "vec3<f32>"},
			{Name: "normal", Type: "vec3<f32>"},
		},
		InstanceFields: []shader.Field{
			{Name: "model", Type: "mat4x4<f32>"},
			{Name: "color", Type: "vec4<f32>"},
		},
		InstanceGroup:   1,
		InstanceBinding: 0,
		Bindings: []shader.Binding{
			{
				Group:          0,
				Index:          0,
				Name:           "camera",
				Type:           "CameraUniform",
				Kind:           shader.BindingKindUniform,
				StructSource:   camera.GPUCameraUniformSource,
				Visibility:     wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				MinBindingSize: uint64(u.Size()),
			},
		},
		Varyings: []shader.Field{
			{Name: "world_pos", Type: "vec3<f32>"},
			{Name: "world_normal", Type: "vec3<f32>"},
			{Name: "color", Type: "vec4<f32>"},
		},
		VertexBody: `    let world = inst.model * vec4<f32>(in.position, 1.0);
    out.world_pos = world.xyz;
    out.world_normal = normalize((inst.model * vec4<f32>(in.normal, 0.0)).xyz);
    out.color = inst.color;
    out.clip_position = camera.projection * camera.view * world;`,
		Outputs: []shader.Output{
			{Name: "color", Type: "vec4<f32>", Expr: "in.color"},
		},
	}
}
