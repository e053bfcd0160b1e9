package layout

import (
	"errors"
	"math"
	"testing"

	"github.com/verte-zerg/pointlab/internal/model"
)

func TestGridGeometry(t *testing.T) {
	targets, size, err := Grid(model.GridShape{Columns: 4, Rows: 2}, 800)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	if len(targets) != 8 {
		t.Fatalf("expected 8 targets, got %d", len(targets))
	}
	if size.Width != 800 || size.Height != 400 {
		t.Fatalf("unexpected size %+v", size)
	}
	// cell 200, gap 50, radius 75.
	first := targets[0]
	if first.X != 100 || first.Y != 100 || first.Radius != 75 {
		t.Fatalf("unexpected first target %+v", first)
	}
	// Row-major: index 5 is row 1, column 1.
	if targets[5].X != 300 || targets[5].Y != 300 {
		t.Fatalf("unexpected target 5 %+v", targets[5])
	}
}

func TestGridTargetsDoNotOverlap(t *testing.T) {
	targets, _, err := Grid(model.GridShape{Columns: 3, Rows: 5}, 640)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	for i := range targets {
		for j := i + 1; j < len(targets); j++ {
			d := math.Hypot(targets[i].X-targets[j].X, targets[i].Y-targets[j].Y)
			if d <= targets[i].Radius+targets[j].Radius {
				t.Fatalf("targets %d and %d overlap", i, j)
			}
		}
	}
}

func TestGridRejectsInvalidInput(t *testing.T) {
	if _, _, err := Grid(model.GridShape{Columns: 0, Rows: 2}, 800); !errors.Is(err, model.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for empty shape, got %v", err)
	}
	if _, _, err := Grid(model.GridShape{Columns: 2, Rows: 2}, 0); !errors.Is(err, model.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for zero size, got %v", err)
	}
}
