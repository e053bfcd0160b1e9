package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/pointlab/internal/model"
)

const (
	// DefaultMaxSize is the layout extent used when a setup omits max_size.
	DefaultMaxSize = 800.0
)

// DefaultHighlight is the active target color in grid mode.
var DefaultHighlight = model.Color{R: 200}

// SetupFile is the on-disk experiment setup. JSON and YAML files are
// decoded with the YAML decoder, TOML files with the TOML decoder.
type SetupFile struct {
	Participant *int     `yaml:"participant" toml:"participant"`
	Repetitions *int     `yaml:"repetitions" toml:"repetitions"`
	Mode        string   `yaml:"mode" toml:"mode"`
	Colors      [][]int  `yaml:"colors" toml:"colors"`
	Grid        []int    `yaml:"grid" toml:"grid"`
	Grids       [][]int  `yaml:"grids" toml:"grids"`
	Highlight   []int    `yaml:"highlight" toml:"highlight"`
	MaxSize     *float64 `yaml:"max_size" toml:"max_size"`
	Snapping    *Toggle  `yaml:"snapping" toml:"snapping"`
}

// LoadSetup reads and validates an experiment setup file.
func LoadSetup(path string) (model.Setup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Setup{}, fmt.Errorf("failed to read setup: %w: %w", model.ErrInvalidConfiguration, err)
	}
	var file SetupFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		file, err = decodeTOMLSetup(data)
	case ".json", ".yaml", ".yml":
		file, err = decodeYAMLSetup(data)
	default:
		return model.Setup{}, fmt.Errorf("unsupported setup format %q: %w", ext, model.ErrInvalidConfiguration)
	}
	if err != nil {
		return model.Setup{}, fmt.Errorf("failed to decode setup %s: %w: %w", path, model.ErrInvalidConfiguration, err)
	}
	return file.Validate()
}

func decodeYAMLSetup(data []byte) (SetupFile, error) {
	var file SetupFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return SetupFile{}, fmt.Errorf("setup is empty")
		}
		return SetupFile{}, err
	}
	return file, nil
}

func decodeTOMLSetup(data []byte) (SetupFile, error) {
	var file SetupFile
	md, err := toml.Decode(string(data), &file)
	if err != nil {
		return SetupFile{}, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return SetupFile{}, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return file, nil
}

// Validate checks required fields and builds the typed setup.
func (f SetupFile) Validate() (model.Setup, error) {
	invalid := func(format string, args ...any) (model.Setup, error) {
		return model.Setup{}, fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), model.ErrInvalidConfiguration)
	}
	if f.Participant == nil {
		return invalid("participant is required")
	}
	if f.Repetitions == nil {
		return invalid("repetitions is required")
	}
	if *f.Repetitions <= 0 {
		return invalid("repetitions must be > 0")
	}
	setup := model.Setup{
		Participant: *f.Participant,
		Repetitions: *f.Repetitions,
		Mode:        model.Mode(strings.ToLower(strings.TrimSpace(f.Mode))),
		Highlight:   DefaultHighlight,
		MaxSize:     DefaultMaxSize,
	}
	if f.MaxSize != nil {
		if *f.MaxSize <= 0 {
			return invalid("max_size must be > 0")
		}
		setup.MaxSize = *f.MaxSize
	}
	if f.Snapping != nil {
		setup.Snapping = bool(*f.Snapping)
	}

	switch setup.Mode {
	case model.ModeColor:
		if len(f.Grids) > 0 {
			return invalid("grids is only valid in grid mode")
		}
		if len(f.Colors) == 0 {
			return invalid("colors must list at least one condition")
		}
		grid, err := parseShape(f.Grid)
		if err != nil {
			return invalid("grid: %v", err)
		}
		setup.Grid = grid
		for i, raw := range f.Colors {
			c, err := parseColor(raw)
			if err != nil {
				return invalid("colors[%d]: %v", i, err)
			}
			setup.Conditions = append(setup.Conditions, model.ColorCondition(c))
		}
	case model.ModeGrid:
		if len(f.Colors) > 0 || len(f.Grid) > 0 {
			return invalid("colors and grid are only valid in color mode")
		}
		if len(f.Grids) == 0 {
			return invalid("grids must list at least one condition")
		}
		for i, raw := range f.Grids {
			g, err := parseShape(raw)
			if err != nil {
				return invalid("grids[%d]: %v", i, err)
			}
			setup.Conditions = append(setup.Conditions, model.GridCondition(g))
		}
		if len(f.Highlight) > 0 {
			c, err := parseColor(f.Highlight)
			if err != nil {
				return invalid("highlight: %v", err)
			}
			setup.Highlight = c
		}
	case "":
		return invalid("mode is required (color or grid)")
	default:
		return invalid("unknown mode %q (use color or grid)", f.Mode)
	}
	return setup, nil
}

func parseColor(raw []int) (model.Color, error) {
	if len(raw) != 3 {
		return model.Color{}, fmt.Errorf("expected [r, g, b], got %d values", len(raw))
	}
	for _, v := range raw {
		if v < 0 || v > 255 {
			return model.Color{}, fmt.Errorf("channel %d out of range 0-255", v)
		}
	}
	return model.Color{R: uint8(raw[0]), G: uint8(raw[1]), B: uint8(raw[2])}, nil
}

func parseShape(raw []int) (model.GridShape, error) {
	if len(raw) != 2 {
		return model.GridShape{}, fmt.Errorf("expected [columns, rows], got %d values", len(raw))
	}
	if raw[0] < 1 || raw[1] < 1 {
		return model.GridShape{}, fmt.Errorf("columns and rows must be >= 1")
	}
	return model.GridShape{Columns: raw[0], Rows: raw[1]}, nil
}
