package renderpass

import (
	"testing"

	"github.com/karst-gfx/karst/engine/renderer"
	"github.com/karst-gfx/karst/engine/renderer/bind_group_provider"
	"github.com/karst-gfx/karst/engine/renderer/shader"
)

// fakeComponent contributes one named scene output and one named composition
// output so fold order is observable.
type fakeComponent struct {
	name    string
	cleared *[]string
}

func (f *fakeComponent) ClearBuffers(r renderer.Renderer) error {
	*f.cleared = append(*f.cleared, f.name)
	return nil
}

func (f *fakeComponent) SceneCoreTransform() shader.CoreTransform {
	return func(c shader.Core) shader.Core {
		return c.WithOutputs(shader.Output{Name: f.name, Type: "vec4<f32>"})
	}
}

func (f *fakeComponent) SceneOutputTextures() []OutputTexture {
	return []OutputTexture{{Name: f.name}}
}

func (f *fakeComponent) CompositionCoreTransform() shader.CoreTransform {
	return func(c shader.Core) shader.Core {
		return c.WithOutputs(shader.Output{Name: f.name + "_comp", Type: "vec4<f32>"})
	}
}

func (f *fakeComponent) CompositionBufferWrites() []bind_group_provider.BufferWrite {
	return nil
}

var (
	_ SceneComponent       = &fakeComponent{}
	_ CompositionComponent = &fakeComponent{}
)

func TestSceneCoreFoldsInDeclarationOrder(t *testing.T) {
	var cleared []string
	first := &fakeComponent{name: "first", cleared: &cleared}
	second := &fakeComponent{name: "second", cleared: &cleared}

	d := NewDriver(first, second)
	core := d.SceneCore(shader.Core{Name: "Base"})

	if len(core.Outputs) != 2 {
		t.Fatalf("output count = %d, want 2", len(core.Outputs))
	}
	if core.Outputs[0].Name != "first" || core.Outputs[1].Name != "second" {
		t.Errorf("outputs = [%s, %s], want [first, second]",
			core.Outputs[0].Name, core.Outputs[1].Name)
	}
}

func TestSceneOutputTexturesConcatenateInOrder(t *testing.T) {
	var cleared []string
	d := NewDriver(
		&fakeComponent{name: "a", cleared: &cleared},
		&fakeComponent{name: "b", cleared: &cleared},
	)
	outputs := d.SceneOutputTextures()
	if len(outputs) != 2 || outputs[0].Name != "a" || outputs[1].Name != "b" {
		t.Errorf("outputs = %v, want [a, b]", outputs)
	}
}

func TestCompositionCoreFoldsInDeclarationOrder(t *testing.T) {
	var cleared []string
	d := NewDriver(
		&fakeComponent{name: "x", cleared: &cleared},
		&fakeComponent{name: "y", cleared: &cleared},
	)
	core := d.CompositionCore(shader.Core{Name: "Base"})
	if len(core.Outputs) != 2 {
		t.Fatalf("output count = %d, want 2", len(core.Outputs))
	}
	if core.Outputs[0].Name != "x_comp" || core.Outputs[1].Name != "y_comp" {
		t.Errorf("outputs folded out of order: [%s, %s]",
			core.Outputs[0].Name, core.Outputs[1].Name)
	}
}

func TestClearAllVisitsEveryComponent(t *testing.T) {
	var cleared []string
	d := NewDriver(
		&fakeComponent{name: "one", cleared: &cleared},
		&fakeComponent{name: "two", cleared: &cleared},
	)
	if err := d.ClearAll(nil); err != nil {
		t.Fatal(err)
	}
	if len(cleared) != 2 || cleared[0] != "one" || cleared[1] != "two" {
		t.Errorf("cleared = %v, want [one, two]", cleared)
	}
}
