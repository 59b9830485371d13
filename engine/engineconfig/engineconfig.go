// Package engineconfig loads and persists engine preferences as JSON.
// Preferences cover the initial window resolution, the shadow target, and
// the point light cutoff threshold. A missing or invalid file falls back to
// defaults without creating anything.
package engineconfig

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/karst-gfx/karst/engine/light"
)

// EngineConfigPath is the path to the engine config file, relative to the process working directory.
const EngineConfigPath = "config/engine.json"

// EnginePrefs holds engine preferences persisted across runs.
type EnginePrefs struct {
	Width             uint32  `json:"width"`
	Height            uint32  `json:"height"`
	Shadows           bool    `json:"shadows"`
	LightMinThreshold float32 `json:"light_min_threshold"`
	VSync             bool    `json:"vsync"`
}

// Default returns default engine preferences: 1280x720, no shadow target,
// the default light cutoff threshold, vsync on.
func Default() EnginePrefs {
	return EnginePrefs{
		Width:             1280,
		Height:            720,
		Shadows:           false,
		LightMinThreshold: light.DefaultThreshold,
		VSync:             true,
	}
}

// Load reads engine preferences from config/engine.json. If the file is
// missing or invalid, returns Default() and does not create a file. A
// non-positive threshold in the file is replaced with the default.
func Load() (EnginePrefs, error) {
	data, err := os.ReadFile(EngineConfigPath)
	if err != nil {
		return Default(), nil
	}
	var p EnginePrefs
	if err := json.Unmarshal(data, &p); err != nil {
		return Default(), nil
	}
	if p.LightMinThreshold <= 0 {
		p.LightMinThreshold = light.DefaultThreshold
	}
	if p.Width == 0 || p.Height == 0 {
		d := Default()
		p.Width, p.Height = d.Width, d.Height
	}
	return p, nil
}

// Save writes engine preferences to config/engine.json, creating the config directory if needed.
func Save(p EnginePrefs) error {
	dir := filepath.Dir(EngineConfigPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(EngineConfigPath, data, 0644)
}
