package scene

import (
	"errors"
	"testing"

	"github.com/karst-gfx/karst/engine/camera"
	"github.com/karst-gfx/karst/engine/renderer"
	"github.com/karst-gfx/karst/engine/renderer/bind_group_provider"
)

// meshFailRenderer fails the first GPU upload NewScene attempts; every other
// Renderer method panics through the embedded nil interface.
type meshFailRenderer struct {
	renderer.Renderer
}

func (meshFailRenderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertices []byte, indices []uint32) error {
	return errors.New("device lost")
}

func TestNewSceneFailsCleanlyOnMeshUpload(t *testing.T) {
	cam := camera.NewCamera(camera.WithViewport(640, 480))
	s, err := NewScene(meshFailRenderer{}, cam, 640, 480)
	if err == nil {
		t.Fatal("NewScene should fail when mesh upload fails")
	}
	if s != nil {
		t.Error("failed NewScene should return a nil scene")
	}
}

func TestCompositionCoreBase(t *testing.T) {
	core := compositionCore()
	if len(core.Outputs) != 1 || core.Outputs[0].Name != "color" {
		t.Fatalf("composition core outputs = %v, want a single color output", core.Outputs)
	}
	if core.Outputs[0].Expr != "vec4<f32>(1.0, 1.0, 1.0, 1.0)" {
		t.Errorf("base color expr = %q, want plain white", core.Outputs[0].Expr)
	}
}
