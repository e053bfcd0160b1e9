package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/pointlab/internal/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadSetupJSONColorMode(t *testing.T) {
	path := writeFile(t, "setup.json", `{
		"participant": 3,
		"repetitions": 5,
		"mode": "color",
		"colors": [[200, 0, 0], [0, 200, 0], [0, 0, 200]],
		"grid": [4, 4],
		"snapping": "yes"
	}`)
	setup, err := LoadSetup(path)
	if err != nil {
		t.Fatalf("load setup: %v", err)
	}
	if setup.Participant != 3 || setup.Repetitions != 5 || setup.Mode != model.ModeColor {
		t.Fatalf("unexpected setup: %+v", setup)
	}
	if len(setup.Conditions) != 3 || setup.Conditions[1] != model.ColorCondition(model.Color{G: 200}) {
		t.Fatalf("unexpected conditions: %+v", setup.Conditions)
	}
	if setup.Grid != (model.GridShape{Columns: 4, Rows: 4}) || !setup.Snapping || setup.MaxSize != DefaultMaxSize {
		t.Fatalf("unexpected grid/snapping/size: %+v", setup)
	}
}

func TestLoadSetupYAMLGridMode(t *testing.T) {
	path := writeFile(t, "setup.yaml", `
participant: 1
repetitions: 2
mode: grid
grids:
  - [2, 2]
  - [4, 3]
highlight: [0, 120, 255]
max_size: 600
snapping: false
`)
	setup, err := LoadSetup(path)
	if err != nil {
		t.Fatalf("load setup: %v", err)
	}
	if setup.Mode != model.ModeGrid || len(setup.Conditions) != 2 {
		t.Fatalf("unexpected setup: %+v", setup)
	}
	if setup.Conditions[1].Grid != (model.GridShape{Columns: 4, Rows: 3}) {
		t.Fatalf("unexpected grid condition: %+v", setup.Conditions[1])
	}
	if setup.Highlight != (model.Color{G: 120, B: 255}) || setup.MaxSize != 600 || setup.Snapping {
		t.Fatalf("unexpected highlight/size/snapping: %+v", setup)
	}
}

func TestLoadSetupTOML(t *testing.T) {
	path := writeFile(t, "setup.toml", `
participant = 8
repetitions = 3
mode = "grid"
grids = [[3, 3]]
snapping = "on"
`)
	setup, err := LoadSetup(path)
	if err != nil {
		t.Fatalf("load setup: %v", err)
	}
	if setup.Participant != 8 || !setup.Snapping || setup.Highlight != DefaultHighlight {
		t.Fatalf("unexpected setup: %+v", setup)
	}
}

func TestLoadSetupRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"missing participant": `{"repetitions": 1, "mode": "grid", "grids": [[2, 2]]}`,
		"zero repetitions":    `{"participant": 1, "repetitions": 0, "mode": "grid", "grids": [[2, 2]]}`,
		"unknown mode":        `{"participant": 1, "repetitions": 1, "mode": "shape", "grids": [[2, 2]]}`,
		"no conditions":       `{"participant": 1, "repetitions": 1, "mode": "color", "grid": [2, 2]}`,
		"bad color":           `{"participant": 1, "repetitions": 1, "mode": "color", "grid": [2, 2], "colors": [[300, 0, 0]]}`,
		"bad shape":           `{"participant": 1, "repetitions": 1, "mode": "grid", "grids": [[0, 2]]}`,
		"mixed variants":      `{"participant": 1, "repetitions": 1, "mode": "grid", "grids": [[2, 2]], "colors": [[1, 2, 3]]}`,
		"unknown key":         `{"participant": 1, "repetitions": 1, "mode": "grid", "grids": [[2, 2]], "USER_ID": 4}`,
		"bad toggle":          `{"participant": 1, "repetitions": 1, "mode": "grid", "grids": [[2, 2]], "snapping": "maybe"}`,
		"negative size":       `{"participant": 1, "repetitions": 1, "mode": "grid", "grids": [[2, 2]], "max_size": -5}`,
	}
	for name, content := range cases {
		path := writeFile(t, "setup.json", content)
		if _, err := LoadSetup(path); !errors.Is(err, model.ErrInvalidConfiguration) {
			t.Fatalf("%s: expected ErrInvalidConfiguration, got %v", name, err)
		}
	}
}

func TestLoadSetupRejectsUnknownExtension(t *testing.T) {
	path := writeFile(t, "setup.ini", "participant=1")
	_, err := LoadSetup(path)
	if !errors.Is(err, model.ErrInvalidConfiguration) || !strings.Contains(err.Error(), ".ini") {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
}

func TestParseToggle(t *testing.T) {
	for _, v := range []string{"yes", "YES", "true", "on", "1"} {
		if got, err := ParseToggle(v); err != nil || !bool(got) {
			t.Fatalf("ParseToggle(%q) = %v, %v", v, got, err)
		}
	}
	for _, v := range []string{"no", "False", "off", "0"} {
		if got, err := ParseToggle(v); err != nil || bool(got) {
			t.Fatalf("ParseToggle(%q) = %v, %v", v, got, err)
		}
	}
	if _, err := ParseToggle("y"); err == nil {
		t.Fatalf("expected rejection of unrecognized value")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("missing config should not fail: %v", err)
	}
	if cfg.Run.Out != nil || cfg.Run.Snapping != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigRunTable(t *testing.T) {
	path := writeFile(t, "config.toml", `
[run]
out = "trials.csv"
header = true
seed = 11
snapping = "yes"
log-level = "debug"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Run.Out == nil || *cfg.Run.Out != "trials.csv" {
		t.Fatalf("unexpected out: %v", cfg.Run.Out)
	}
	if cfg.Run.Seed == nil || *cfg.Run.Seed != 11 || cfg.Run.Snapping == nil || !bool(*cfg.Run.Snapping) {
		t.Fatalf("unexpected run config: %+v", cfg.Run)
	}
}
