package engineconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	p := Default()
	if p.Width != 1280 || p.Height != 720 {
		t.Errorf("default resolution = %dx%d, want 1280x720", p.Width, p.Height)
	}
	if p.LightMinThreshold != 0.02 {
		t.Errorf("default threshold = %v, want 0.02", p.LightMinThreshold)
	}
	if p.Shadows {
		t.Error("shadows default off")
	}
	if !p.VSync {
		t.Error("vsync defaults on")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	p, err := Load()
	if err != nil {
		t.Fatalf("Load() with missing file: %v", err)
	}
	if p != Default() {
		t.Errorf("Load() = %+v, want defaults", p)
	}
}

func TestLoadInvalidJSONReturnsDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	if err := os.MkdirAll(filepath.Dir(EngineConfigPath), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(EngineConfigPath, []byte("{nope"), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := Load()
	if err != nil {
		t.Fatalf("Load() with invalid file: %v", err)
	}
	if p != Default() {
		t.Errorf("Load() = %+v, want defaults", p)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Chdir(t.TempDir())

	want := EnginePrefs{
		Width:             1920,
		Height:            1080,
		Shadows:           true,
		LightMinThreshold: 0.05,
		VSync:             false,
	}
	if err := Save(want); err != nil {
		t.Fatal(err)
	}
	got, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

func TestLoadSanitizesZeroValues(t *testing.T) {
	t.Chdir(t.TempDir())

	if err := Save(EnginePrefs{}); err != nil {
		t.Fatal(err)
	}
	p, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if p.Width != 1280 || p.Height != 720 {
		t.Errorf("zero resolution should fall back to defaults, got %dx%d", p.Width, p.Height)
	}
	if p.LightMinThreshold != 0.02 {
		t.Errorf("zero threshold should fall back to 0.02, got %v", p.LightMinThreshold)
	}
}
