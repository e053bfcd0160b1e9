package snap

import (
	"errors"
	"testing"

	"github.com/verte-zerg/pointlab/internal/model"
)

func square() []model.Target {
	return []model.Target{
		{X: 0, Y: 0, Radius: 4},
		{X: 10, Y: 0, Radius: 4},
		{X: 0, Y: 10, Radius: 4},
		{X: 10, Y: 10, Radius: 4},
	}
}

func TestResolveTwoByTwo(t *testing.T) {
	g, err := New(square(), model.GridShape{Columns: 2, Rows: 2})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	cases := []struct {
		p    model.Point
		want model.Point
	}{
		{model.Point{X: 9, Y: 1}, model.Point{X: 10, Y: 0}},
		{model.Point{X: 1, Y: 9}, model.Point{X: 0, Y: 10}},
		{model.Point{X: 5, Y: 5}, model.Point{X: 0, Y: 0}},
		{model.Point{X: 40, Y: 40}, model.Point{X: 10, Y: 10}},
		{model.Point{X: -5, Y: 7}, model.Point{X: 0, Y: 10}},
	}
	for _, tc := range cases {
		got := g.Resolve(tc.p).Center()
		if got != tc.want {
			t.Fatalf("resolve(%v) = %v, want %v", tc.p, got, tc.want)
		}
	}
}

func TestResolveNonSquareGrid(t *testing.T) {
	// 3 columns, 2 rows.
	var targets []model.Target
	for r := 0; r < 2; r++ {
		for c := 0; c < 3; c++ {
			targets = append(targets, model.Target{X: float64(c * 20), Y: float64(r * 30), Radius: 5})
		}
	}
	g, err := New(targets, model.GridShape{Columns: 3, Rows: 2})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if idx := g.ResolveIndex(model.Point{X: 38, Y: 29}); idx != 5 {
		t.Fatalf("expected index 5, got %d", idx)
	}
	if idx := g.ResolveIndex(model.Point{X: 21, Y: 2}); idx != 1 {
		t.Fatalf("expected index 1, got %d", idx)
	}
}

func TestResolvePerAxisDiffersFromEuclidean(t *testing.T) {
	// Columns come from the first row only, so a sheared second row makes
	// the per-axis answer differ from the straight-line nearest (4,10).
	targets := []model.Target{
		{X: 0, Y: 0}, {X: 10, Y: 0},
		{X: 4, Y: 10}, {X: 14, Y: 10},
	}
	g, err := New(targets, model.GridShape{Columns: 2, Rows: 2})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := g.Resolve(model.Point{X: 6, Y: 9}).Center(); got != (model.Point{X: 14, Y: 10}) {
		t.Fatalf("unexpected target %v", got)
	}
}

func TestNewRejectsMismatchedShape(t *testing.T) {
	cases := []model.GridShape{
		{Columns: 3, Rows: 2},
		{Columns: 0, Rows: 4},
		{Columns: 4, Rows: 0},
	}
	for _, shape := range cases {
		if _, err := New(square(), shape); !errors.Is(err, model.ErrInvalidArgument) {
			t.Fatalf("shape %v: expected ErrInvalidArgument, got %v", shape, err)
		}
	}
}
