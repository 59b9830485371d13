// shaders.go declares the shader cores of the two light accumulation
// pipelines and the transforms the component contributes to the scene and
// composition passes. Both light pipelines read the G-buffer with textureLoad
// at the fragment's framebuffer coordinate, so no sampler is involved and the
// light texture resolution always matches the G-buffer resolution.
package deferred

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/karst-gfx/karst/engine/camera"
	"github.com/karst-gfx/karst/engine/light"
	"github.com/karst-gfx/karst/engine/renderer/shader"
)

const (
	// GBufferTextureFormat is the format of the world position and world
	// normal scene outputs.
	GBufferTextureFormat = wgpu.TextureFormatRGBA32Float

	// ShadowTextureFormat is the format of the optional shadow factor
	// scene output.
	ShadowTextureFormat = wgpu.TextureFormatR32Float

	// LightTextureFormat is the format of the light accumulation texture.
	// Half float keeps the target blendable while leaving headroom for many
	// overlapping additive light draws.
	LightTextureFormat = wgpu.TextureFormatRGBA16Float
)

const (
	// MainLightPipelineKey identifies the full-screen main light pipeline.
	MainLightPipelineKey = "deferred_main_light"

	// LightObjectPipelineKey identifies the instanced point light volume
	// pipeline.
	LightObjectPipelineKey = "deferred_light_object"

	// CompositionTextureGroup is the bind group index at which the
	// composition core transform declares the light and normal textures.
	// Composition cores must leave this group free.
	CompositionTextureGroup = 1

	// MainLightSeriesGroup is the bind group index of the main light uniform
	// series in the main light pipeline. It is the highest group so the
	// uniforms drawable can append the series' bind group after the shared
	// camera and texture groups.
	MainLightSeriesGroup = 2
)

// mainLightCore builds the shader core of the full-screen main light
// pipeline. One draw per main light, quad in clip space through identity
// view and projection matrices, light uniform selected by dynamic offset.
func mainLightCore(haveShadows bool) shader.Core {
	var camUniform camera.GPUCameraUniform
	var lightUniform light.GPULightUniform

	bindings := []shader.Binding{
		{
			Group:          0,
			Index:          0,
			Name:           "camera",
			Type:           "CameraUniform",
			Kind:           shader.BindingKindUniform,
			StructSource:   camera.GPUCameraUniformSource,
			Visibility:     wgpu.ShaderStageVertex,
			MinBindingSize: uint64(camUniform.Size()),
		},
		{Group: 1, Index: 0, Name: "gbuffer_pos", Kind: shader.BindingKindTexture, Visibility: wgpu.ShaderStageFragment},
		{Group: 1, Index: 1, Name: "gbuffer_normal", Kind: shader.BindingKindTexture, Visibility: wgpu.ShaderStageFragment},
		{
			Group:          MainLightSeriesGroup,
			Index:          0,
			Name:           "light",
			Type:           "LightUniform",
			Kind:           shader.BindingKindUniform,
			StructSource:   light.GPULightUniformSource,
			Visibility:     wgpu.ShaderStageFragment,
			DynamicOffset:  true,
			MinBindingSize: uint64(lightUniform.Size()),
		},
	}

	fragmentBody := `
let coords = vec2<i32>(in.clip_position.xy);
let pos_sample = textureLoad(gbuffer_pos, coords, 0);
let world_normal = textureLoad(gbuffer_normal, coords, 0).xyz;
let to_light = normalize(light.position - pos_sample.xyz);
var diffuse = max(dot(world_normal, to_light), 0.0);
`
	if haveShadows {
		bindings = append(bindings, shader.Binding{
			Group: 1, Index: 2, Name: "shadow_tex", Kind: shader.BindingKindTexture, Visibility: wgpu.ShaderStageFragment,
		})
		fragmentBody += "diffuse = diffuse * textureLoad(shadow_tex, coords, 0).x;\n"
	}
	// pos_sample.w is 1 where geometry was written and 0 on the cleared
	// background, masking out lighting on empty pixels.
	fragmentBody += "out.light = vec4<f32>(light.color * diffuse, 1.0) * pos_sample.w;\n"

	return shader.Core{
		Name: "DeferredMainLight",
		VertexAttributes: []shader.Field{
			{Name: "position", Type: "vec3<f32>"},
			{Name: "normal", Type: "vec3<f32>"},
		},
		Bindings: bindings,
		VertexBody: `
out.clip_position = camera.projection * camera.view * vec4<f32>(in.position, 1.0);
`,
		FragmentBody: fragmentBody,
		Outputs: []shader.Output{
			{Name: "light", Type: "vec4<f32>"},
		},
	}
}

// lightObjectCore builds the shader core of the instanced point light
// pipeline. Each instance scales and translates a unit sphere to the light's
// influence volume; all lights draw in a single instanced call.
func lightObjectCore() shader.Core {
	var camUniform camera.GPUCameraUniform

	return shader.Core{
		Name: "DeferredLightObject",
		VertexAttributes: []shader.Field{
			{Name: "position", Type: "vec3<f32>"},
			{Name: "normal", Type: "vec3<f32>"},
		},
		InstanceFields: []shader.Field{
			{Name: "position_radius", Type: "vec4<f32>"},
			{Name: "color", Type: "vec4<f32>"},
			{Name: "attenuation", Type: "vec4<f32>"},
		},
		InstanceGroup:   2,
		InstanceBinding: 0,
		Bindings: []shader.Binding{
			{
				Group:          0,
				Index:          0,
				Name:           "camera",
				Type:           "CameraUniform",
				Kind:           shader.BindingKindUniform,
				StructSource:   camera.GPUCameraUniformSource,
				Visibility:     wgpu.ShaderStageVertex,
				MinBindingSize: uint64(camUniform.Size()),
			},
			{Group: 1, Index: 0, Name: "gbuffer_pos", Kind: shader.BindingKindTexture, Visibility: wgpu.ShaderStageFragment},
			{Group: 1, Index: 1, Name: "gbuffer_normal", Kind: shader.BindingKindTexture, Visibility: wgpu.ShaderStageFragment},
		},
		Varyings: []shader.Field{
			{Name: "light_pos", Type: "vec3<f32>"},
			{Name: "light_color", Type: "vec3<f32>"},
			{Name: "attenuation", Type: "vec3<f32>"},
		},
		VertexBody: `
let world_pos = in.position * inst.position_radius.w + inst.position_radius.xyz;
out.light_pos = inst.position_radius.xyz;
out.light_color = inst.color.xyz;
out.attenuation = inst.attenuation.xyz;
out.clip_position = camera.projection * camera.view * vec4<f32>(world_pos, 1.0);
`,
		FragmentBody: `
let coords = vec2<i32>(in.clip_position.xy);
let pos_sample = textureLoad(gbuffer_pos, coords, 0);
let world_normal = textureLoad(gbuffer_normal, coords, 0).xyz;
let to_light = in.light_pos - pos_sample.xyz;
let dist = length(to_light);
let diffuse = max(dot(world_normal, normalize(to_light)), 0.0);
let att = in.attenuation.x + in.attenuation.y * dist + in.attenuation.z * dist * dist;
out.light = vec4<f32>(in.light_color * (diffuse / max(att, 1e-4)), 1.0) * pos_sample.w;
`,
		Outputs: []shader.Output{
			{Name: "light", Type: "vec4<f32>"},
		},
	}
}

// sceneOutputsTransform replaces the scene core's fragment outputs with the
// G-buffer outputs the light pipelines consume.
func sceneOutputsTransform(haveShadows bool) shader.CoreTransform {
	return func(c shader.Core) shader.Core {
		c.Outputs = []shader.Output{
			{Name: "world_pos", Type: "vec4<f32>", Expr: "vec4<f32>(in.world_pos, 1.0)"},
			{Name: "world_normal", Type: "vec4<f32>", Expr: "vec4<f32>(normalize(in.world_normal), 0.0)"},
		}
		if haveShadows {
			// Shadow map generation is a separate component; without one
			// every fragment is fully lit.
			c.Outputs = append(c.Outputs, shader.Output{
				Name: "shadow", Type: "vec4<f32>", Expr: "vec4<f32>(1.0, 0.0, 0.0, 0.0)",
			})
		}
		return c
	}
}

// compositionTransform binds the light and normal textures into the
// composition core and modulates its color output by the accumulated light.
func compositionTransform() shader.CoreTransform {
	return func(c shader.Core) shader.Core {
		c = c.WithBindings(
			shader.Binding{
				Group: CompositionTextureGroup, Index: 0, Name: "light_tex",
				Kind: shader.BindingKindTexture, Visibility: wgpu.ShaderStageFragment,
			},
			shader.Binding{
				Group: CompositionTextureGroup, Index: 1, Name: "normal_tex",
				Kind: shader.BindingKindTexture, Visibility: wgpu.ShaderStageFragment,
			},
		)
		outputs := append([]shader.Output{}, c.Outputs...)
		for i, o := range outputs {
			if o.Name != "color" {
				continue
			}
			expr := "out.color"
			if o.Expr != "" {
				expr = "(" + o.Expr + ")"
			}
			outputs[i].Expr = fmt.Sprintf(
				"vec4<f32>(%s.rgb * textureLoad(light_tex, vec2<i32>(in.clip_position.xy), 0).rgb, 1.0)", expr)
		}
		c.Outputs = outputs
		return c
	}
}
