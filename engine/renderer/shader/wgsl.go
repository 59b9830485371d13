// wgsl.go generates WGSL source, bind group layout descriptors, and vertex
// buffer layouts from a Core. Generation happens once, at pipeline
// registration time; the emitted module contains both the vs_main and
// fs_main entry points.
package shader

import (
	"fmt"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// Source generates the complete WGSL module for the Core under the given
// instancing mode.
//
// Parameters:
//   - mode: how instance records reach the vertex stage
//
// Returns:
//   - string: the WGSL module source containing vs_main and fs_main
func (c Core) Source(mode InstancingMode) string {
	var b strings.Builder

	c.writeStructSources(&b)
	c.writeInstanceStruct(&b)
	c.writeBindingDecls(&b, mode)
	c.writeVertexStage(&b, mode)
	c.writeFragmentStage(&b)

	return b.String()
}

// writeStructSources emits each distinct uniform struct definition once,
// keyed by WGSL type name.
func (c Core) writeStructSources(b *strings.Builder) {
	seen := map[string]bool{}
	for _, bind := range c.Bindings {
		if bind.StructSource == "" || seen[bind.Type] {
			continue
		}
		seen[bind.Type] = true
		b.WriteString(strings.TrimSpace(bind.StructSource))
		b.WriteString("\n\n")
	}
}

// writeInstanceStruct emits the generated instance record struct shared by
// both instancing modes.
func (c Core) writeInstanceStruct(b *strings.Builder) {
	if len(c.InstanceFields) == 0 {
		return
	}
	fmt.Fprintf(b, "struct %s {\n", c.instanceStructName())
	for _, f := range c.InstanceFields {
		fmt.Fprintf(b, "    %s: %s,\n", f.Name, f.Type)
	}
	b.WriteString("}\n\n")
}

// writeBindingDecls emits the @group/@binding variable declarations,
// including the instance uniform in InstancingModeUniforms.
func (c Core) writeBindingDecls(b *strings.Builder, mode InstancingMode) {
	for _, bind := range c.Bindings {
		switch bind.Kind {
		case BindingKindUniform:
			fmt.Fprintf(b, "@group(%d) @binding(%d) var<uniform> %s: %s;\n",
				bind.Group, bind.Index, bind.Name, bind.Type)
		case BindingKindTexture:
			fmt.Fprintf(b, "@group(%d) @binding(%d) var %s: texture_2d<f32>;\n",
				bind.Group, bind.Index, bind.Name)
		}
	}
	if len(c.InstanceFields) > 0 && mode == InstancingModeUniforms {
		fmt.Fprintf(b, "@group(%d) @binding(%d) var<uniform> inst: %s;\n",
			c.InstanceGroup, c.InstanceBinding, c.instanceStructName())
	}
	b.WriteString("\n")
}

// writeVertexStage emits the vertex input structs, the varyings struct, and
// the vs_main entry point.
func (c Core) writeVertexStage(b *strings.Builder, mode InstancingMode) {
	location := 0

	b.WriteString("struct VertexIn {\n")
	for _, f := range c.VertexAttributes {
		fmt.Fprintf(b, "    @location(%d) %s: %s,\n", location, f.Name, f.Type)
		location++
	}
	b.WriteString("}\n\n")

	vertexInstancing := len(c.InstanceFields) > 0 && mode == InstancingModeVertex
	if vertexInstancing {
		b.WriteString("struct InstanceIn {\n")
		for _, f := range c.InstanceFields {
			if f.Type == "mat4x4<f32>" {
				for col := 0; col < 4; col++ {
					fmt.Fprintf(b, "    @location(%d) %s_%d: vec4<f32>,\n", location, f.Name, col)
					location++
				}
				continue
			}
			fmt.Fprintf(b, "    @location(%d) %s: %s,\n", location, f.Name, f.Type)
			location++
		}
		b.WriteString("}\n\n")
	}

	b.WriteString("struct VertexOut {\n")
	b.WriteString("    @builtin(position) clip_position: vec4<f32>,\n")
	for i, f := range c.Varyings {
		fmt.Fprintf(b, "    @location(%d) %s: %s,\n", i, f.Name, f.Type)
	}
	b.WriteString("}\n\n")

	b.WriteString("@vertex\n")
	if vertexInstancing {
		b.WriteString("fn vs_main(in: VertexIn, inst_in: InstanceIn) -> VertexOut {\n")
		fmt.Fprintf(b, "    let inst = %s(\n", c.instanceStructName())
		for i, f := range c.InstanceFields {
			sep := ","
			if i == len(c.InstanceFields)-1 {
				sep = ""
			}
			if f.Type == "mat4x4<f32>" {
				fmt.Fprintf(b, "        mat4x4<f32>(inst_in.%s_0, inst_in.%s_1, inst_in.%s_2, inst_in.%s_3)%s\n",
					f.Name, f.Name, f.Name, f.Name, sep)
				continue
			}
			fmt.Fprintf(b, "        inst_in.%s%s\n", f.Name, sep)
		}
		b.WriteString("    );\n")
	} else {
		b.WriteString("fn vs_main(in: VertexIn) -> VertexOut {\n")
	}
	b.WriteString("    var out: VertexOut;\n")
	writeIndented(b, c.VertexBody)
	b.WriteString("    return out;\n}\n\n")
}

// writeFragmentStage emits the fragment output struct and the fs_main entry
// point, appending transform-supplied output expressions after the body.
func (c Core) writeFragmentStage(b *strings.Builder) {
	b.WriteString("struct FragmentOut {\n")
	for i, o := range c.Outputs {
		fmt.Fprintf(b, "    @location(%d) %s: %s,\n", i, o.Name, o.Type)
	}
	b.WriteString("}\n\n")

	b.WriteString("@fragment\nfn fs_main(in: VertexOut) -> FragmentOut {\n")
	b.WriteString("    var out: FragmentOut;\n")
	writeIndented(b, c.FragmentBody)
	for _, o := range c.Outputs {
		if o.Expr != "" {
			fmt.Fprintf(b, "    out.%s = %s;\n", o.Name, o.Expr)
		}
	}
	b.WriteString("    return out;\n}\n")
}

// writeIndented writes a stage body with uniform four-space indentation,
// skipping blank leading/trailing lines.
func writeIndented(b *strings.Builder, body string) {
	for _, line := range strings.Split(strings.TrimSpace(body), "\n") {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			b.WriteString("\n")
			continue
		}
		b.WriteString("    ")
		b.WriteString(strings.TrimPrefix(line, "\t"))
		b.WriteString("\n")
	}
}

// BindGroupLayoutDescriptors derives the bind group layout descriptors for
// the Core under the given instancing mode, keyed by group index.
//
// Parameters:
//   - mode: how instance records reach the vertex stage
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: one descriptor per bind group
func (c Core) BindGroupLayoutDescriptors(mode InstancingMode) map[int]wgpu.BindGroupLayoutDescriptor {
	entries := map[int][]wgpu.BindGroupLayoutEntry{}

	for _, bind := range c.Bindings {
		entry := wgpu.BindGroupLayoutEntry{
			Binding:    bind.Index,
			Visibility: bind.Visibility,
		}
		switch bind.Kind {
		case BindingKindUniform:
			entry.Buffer = wgpu.BufferBindingLayout{
				Type:             wgpu.BufferBindingTypeUniform,
				HasDynamicOffset: bind.DynamicOffset,
				MinBindingSize:   bind.MinBindingSize,
			}
		case BindingKindTexture:
			entry.Texture = wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeUnfilterableFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
			}
		}
		entries[int(bind.Group)] = append(entries[int(bind.Group)], entry)
	}

	if len(c.InstanceFields) > 0 && mode == InstancingModeUniforms {
		entries[int(c.InstanceGroup)] = append(entries[int(c.InstanceGroup)], wgpu.BindGroupLayoutEntry{
			Binding:    c.InstanceBinding,
			Visibility: wgpu.ShaderStageVertex,
			Buffer: wgpu.BufferBindingLayout{
				Type:             wgpu.BufferBindingTypeUniform,
				HasDynamicOffset: true,
				MinBindingSize:   c.InstanceStride(),
			},
		})
	}

	descriptors := make(map[int]wgpu.BindGroupLayoutDescriptor, len(entries))
	for group, groupEntries := range entries {
		descriptors[group] = wgpu.BindGroupLayoutDescriptor{
			Label:   fmt.Sprintf("%s group %d", c.Name, group),
			Entries: groupEntries,
		}
	}
	return descriptors
}

// VertexBufferLayouts derives the vertex buffer layouts for the Core: slot 0
// carries the per-vertex attributes, and, in InstancingModeVertex, slot 1
// carries the tightly packed per-instance record.
//
// Parameters:
//   - mode: how instance records reach the vertex stage
//
// Returns:
//   - []wgpu.VertexBufferLayout: the vertex buffer layouts in slot order
func (c Core) VertexBufferLayouts(mode InstancingMode) []wgpu.VertexBufferLayout {
	location := uint32(0)
	var vertexOffset uint64
	vertexAttrs := make([]wgpu.VertexAttribute, 0, len(c.VertexAttributes))
	for _, f := range c.VertexAttributes {
		vertexAttrs = append(vertexAttrs, wgpu.VertexAttribute{
			Format:         fieldVertexFormat(f.Type),
			Offset:         vertexOffset,
			ShaderLocation: location,
		})
		vertexOffset += fieldTypeSize(f.Type)
		location++
	}

	layouts := []wgpu.VertexBufferLayout{{
		ArrayStride: vertexOffset,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  vertexAttrs,
	}}

	if len(c.InstanceFields) == 0 || mode != InstancingModeVertex {
		return layouts
	}

	var instanceOffset uint64
	var instanceAttrs []wgpu.VertexAttribute
	for _, f := range c.InstanceFields {
		if f.Type == "mat4x4<f32>" {
			for col := 0; col < 4; col++ {
				instanceAttrs = append(instanceAttrs, wgpu.VertexAttribute{
					Format:         wgpu.VertexFormatFloat32x4,
					Offset:         instanceOffset,
					ShaderLocation: location,
				})
				instanceOffset += 16
				location++
			}
			continue
		}
		instanceAttrs = append(instanceAttrs, wgpu.VertexAttribute{
			Format:         fieldVertexFormat(f.Type),
			Offset:         instanceOffset,
			ShaderLocation: location,
		})
		instanceOffset += fieldTypeSize(f.Type)
		location++
	}

	return append(layouts, wgpu.VertexBufferLayout{
		ArrayStride: instanceOffset,
		StepMode:    wgpu.VertexStepModeInstance,
		Attributes:  instanceAttrs,
	})
}
