// core.go implements the shader Core model. A Core is a declarative
// description of one render shader: its vertex and instance inputs, resource
// bindings, vertex-to-fragment varyings, stage bodies, and fragment outputs.
// Rendering features never edit each other's WGSL text; instead they apply
// CoreTransform functions that append declarations and outputs to a shared
// Core, and the renderer backend turns the final Core into WGSL source, bind
// group layouts, and vertex buffer layouts at pipeline registration time.
//
// The same Core builds under either instancing mode: in
// InstancingModeUniforms the instance record is declared as a uniform struct
// with a dynamic offset, in InstancingModeVertex it is expanded into a
// per-instance vertex buffer slot and reconstructed into the same struct at
// the top of the vertex entry point. Stage bodies always access the record
// through the `inst` variable and are identical between modes.
package shader

import (
	"fmt"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// InstancingMode selects how per-instance data reaches the vertex stage.
type InstancingMode int

const (
	// InstancingModeUniforms passes the instance record as a uniform struct
	// with a dynamic buffer offset, one draw call per record. Appropriate for
	// small or highly dynamic instance sets where re-uploading a vertex
	// buffer every frame isn't worthwhile.
	InstancingModeUniforms InstancingMode = iota

	// InstancingModeVertex passes instance records through a per-instance
	// vertex buffer slot, covering all records in a single draw call.
	// Appropriate for larger, regular replication such as many point lights.
	InstancingModeVertex
)

// BindingKind identifies what GPU resource a Binding declares.
type BindingKind int

const (
	// BindingKindUniform declares a uniform buffer binding.
	BindingKindUniform BindingKind = iota

	// BindingKindTexture declares an unfilterable float 2D texture binding,
	// read in shaders with textureLoad.
	BindingKindTexture
)

// Binding declares one GPU resource visible to a Core's stage bodies.
type Binding struct {
	// Group and Index are the WGSL @group / @binding slots.
	Group uint32
	Index uint32

	// Name is the WGSL variable name the stage bodies use.
	Name string

	// Type is the WGSL type. For uniforms this is the struct type name
	// (its definition supplied via StructSource); ignored for textures.
	Type string

	// Kind selects the resource category.
	Kind BindingKind

	// StructSource optionally carries the WGSL struct definition for a
	// uniform binding's type. Identical type names are emitted once.
	StructSource string

	// Visibility is the shader stage mask this binding is visible to.
	Visibility wgpu.ShaderStage

	// DynamicOffset marks a uniform binding as using dynamic buffer offsets.
	DynamicOffset bool

	// MinBindingSize is the minimum bound buffer size in bytes for uniform
	// bindings. Zero leaves it unconstrained.
	MinBindingSize uint64
}

// Field is a named WGSL-typed field of a vertex input, instance record, or
// varying struct. Supported types: f32, u32, vec2<f32>, vec3<f32>, vec4<f32>,
// and (instance records only) mat4x4<f32>.
type Field struct {
	Name string
	Type string
}

// Output is one fragment color output. When Expr is non-empty the generated
// fragment entry point assigns it after the fragment body runs; an empty Expr
// means the body assigns `out.<Name>` itself.
type Output struct {
	Name string
	Type string
	Expr string
}

// Core is the complete declarative description of one render shader. Cores
// are value types; transforms copy-and-extend them, leaving the input
// untouched.
type Core struct {
	// Name labels the shader and names the generated instance struct.
	Name string

	// VertexAttributes are the per-vertex inputs in buffer slot 0, assigned
	// consecutive shader locations from 0.
	VertexAttributes []Field

	// InstanceFields describe the per-instance record. Empty means the
	// shader draws without instance data.
	InstanceFields []Field

	// InstanceGroup and InstanceBinding locate the instance uniform in
	// InstancingModeUniforms.
	InstanceGroup   uint32
	InstanceBinding uint32

	// Bindings are the uniform and texture resources the stage bodies read.
	Bindings []Binding

	// Varyings are passed from the vertex to the fragment stage. The vertex
	// body must assign each as `out.<name>`.
	Varyings []Field

	// VertexBody is the vertex entry point body. In scope: `in` (vertex
	// inputs), `inst` (instance record, when InstanceFields is non-empty),
	// `out` (varyings struct; must set out.clip_position).
	VertexBody string

	// FragmentBody is the fragment entry point body. In scope: `in`
	// (varyings; in.clip_position carries framebuffer coordinates) and
	// `out` (fragment outputs).
	FragmentBody string

	// Outputs are the fragment color outputs, mapped to consecutive color
	// attachment locations in order.
	Outputs []Output
}

// CoreTransform maps a Core to an augmented Core. Unrelated rendering
// features each contribute one transform; the pass driver folds them over a
// base Core in declaration order.
type CoreTransform func(Core) Core

// Transform applies the given transforms to the Core in order and returns the
// final Core.
//
// Parameters:
//   - transforms: the transforms to fold, first-declared first
//
// Returns:
//   - Core: the transformed Core
func (c Core) Transform(transforms ...CoreTransform) Core {
	out := c
	for _, t := range transforms {
		out = t(out)
	}
	return out
}

// WithBindings returns a copy of the Core with the given bindings appended.
//
// Parameters:
//   - bindings: the bindings to append
//
// Returns:
//   - Core: the extended Core
func (c Core) WithBindings(bindings ...Binding) Core {
	c.Bindings = append(append([]Binding{}, c.Bindings...), bindings...)
	return c
}

// WithOutputs returns a copy of the Core with the given fragment outputs
// appended.
//
// Parameters:
//   - outputs: the outputs to append
//
// Returns:
//   - Core: the extended Core
func (c Core) WithOutputs(outputs ...Output) Core {
	c.Outputs = append(append([]Output{}, c.Outputs...), outputs...)
	return c
}

// instanceStructName returns the WGSL type name of the generated instance
// record struct.
func (c Core) instanceStructName() string {
	name := strings.ReplaceAll(c.Name, " ", "")
	name = strings.ReplaceAll(name, "/", "")
	name = strings.ReplaceAll(name, "-", "")
	return name + "Instance"
}

// fieldTypeSize returns the byte size of a supported WGSL field type.
func fieldTypeSize(t string) uint64 {
	switch t {
	case "f32", "u32":
		return 4
	case "vec2<f32>":
		return 8
	case "vec3<f32>":
		return 12
	case "vec4<f32>":
		return 16
	case "mat4x4<f32>":
		return 64
	default:
		panic(fmt.Sprintf("shader: unsupported field type %q", t))
	}
}

// fieldVertexFormat returns the vertex attribute format for a scalar or
// vector field type. mat4x4 fields are expanded to four vec4 attributes by
// the layout builder and never reach this function.
func fieldVertexFormat(t string) wgpu.VertexFormat {
	switch t {
	case "f32":
		return wgpu.VertexFormatFloat32
	case "u32":
		return wgpu.VertexFormatUint32
	case "vec2<f32>":
		return wgpu.VertexFormatFloat32x2
	case "vec3<f32>":
		return wgpu.VertexFormatFloat32x3
	case "vec4<f32>":
		return wgpu.VertexFormatFloat32x4
	default:
		panic(fmt.Sprintf("shader: unsupported vertex attribute type %q", t))
	}
}

// InstanceStride returns the tightly packed byte stride of one instance
// record, the layout Marshal implementations of record types must produce.
//
// Returns:
//   - uint64: the per-record byte stride, 0 when the Core has no instance data
func (c Core) InstanceStride() uint64 {
	var stride uint64
	for _, f := range c.InstanceFields {
		stride += fieldTypeSize(f.Type)
	}
	return stride
}
