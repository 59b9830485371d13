package game_object

import (
	"math"
	"testing"

	"github.com/karst-gfx/karst/engine/basicobj"
	"github.com/karst-gfx/karst/engine/light"
)

func TestNewGameObjectDefaults(t *testing.T) {
	o := NewGameObject(basicobj.Cube)
	if !o.Enabled() {
		t.Error("objects default to enabled")
	}
	if o.Kind() != basicobj.Cube {
		t.Errorf("Kind() = %v, want Cube", o.Kind())
	}
	if o.Scale() != [3]float32{1, 1, 1} {
		t.Errorf("Scale() = %v, want unit", o.Scale())
	}
	if o.Color() != [4]float32{1, 1, 1, 1} {
		t.Errorf("Color() = %v, want white", o.Color())
	}
}

func TestObjectIDsUnique(t *testing.T) {
	a := NewGameObject(basicobj.Cube)
	b := NewGameObject(basicobj.Sphere)
	if a.ID() == b.ID() {
		t.Error("object IDs must be unique")
	}
}

func TestUpdateAdvancesRotation(t *testing.T) {
	o := NewGameObject(basicobj.Cube, WithRotationSpeed(0, 1, 0))
	o.Update(0.5)
	rot := o.Rotation()
	if math.Abs(float64(rot[1]-0.5)) > 1e-6 {
		t.Errorf("rotation y = %v, want 0.5", rot[1])
	}
}

func TestAttachedLightFollowsObject(t *testing.T) {
	l := light.NewLight()
	o := NewGameObject(basicobj.Sphere,
		WithPosition(1, 2, 3),
		WithAttachedLight(l),
	)
	if l.Position() != [3]float32{1, 2, 3} {
		t.Errorf("light position = %v, want object position", l.Position())
	}

	o.SetPosition(4, 5, 6)
	o.Update(0)
	if l.Position() != [3]float32{4, 5, 6} {
		t.Errorf("light position after move = %v, want (4, 5, 6)", l.Position())
	}
}

func TestInstanceRecordTranslation(t *testing.T) {
	o := NewGameObject(basicobj.Cube,
		WithPosition(7, 8, 9),
		WithColor(0.1, 0.2, 0.3, 1),
	)
	rec := o.InstanceRecord()
	if rec.Model[12] != 7 || rec.Model[13] != 8 || rec.Model[14] != 9 {
		t.Errorf("translation column = (%v, %v, %v), want (7, 8, 9)",
			rec.Model[12], rec.Model[13], rec.Model[14])
	}
	if rec.Color != [4]float32{0.1, 0.2, 0.3, 1} {
		t.Errorf("Color = %v", rec.Color)
	}
}
