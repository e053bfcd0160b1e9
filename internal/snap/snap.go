// Package snap implements grid snapping: the pointer is resolved to the
// target whose column and row are each nearest to it.
//
// Each axis is snapped independently, which costs O(columns+rows) rather than
// a full distance scan. Near cell diagonals the result can differ from the
// Euclidean-nearest target; the per-axis answer is the one users expect on a
// regular grid.
package snap

import (
	"fmt"
	"math"

	"github.com/verte-zerg/pointlab/internal/model"
)

// Grid resolves pointer positions against targets laid out row-major.
type Grid struct {
	targets []model.Target
	columns int
}

// New validates that targets fill the shape exactly.
func New(targets []model.Target, shape model.GridShape) (*Grid, error) {
	if shape.Columns < 1 || shape.Rows < 1 {
		return nil, fmt.Errorf("grid shape %s must have at least one column and row: %w", shape, model.ErrInvalidArgument)
	}
	if len(targets) != shape.Len() {
		return nil, fmt.Errorf("grid shape %s needs %d targets, got %d: %w", shape, shape.Len(), len(targets), model.ErrInvalidArgument)
	}
	return &Grid{targets: targets, columns: shape.Columns}, nil
}

// Resolve returns the target nearest to p per axis.
func (g *Grid) Resolve(p model.Point) model.Target {
	return g.targets[g.ResolveIndex(p)]
}

// ResolveIndex returns the flat index of the target Resolve would return.
func (g *Grid) ResolveIndex(p model.Point) int {
	cx := nearest(g.columns, func(i int) float64 { return g.targets[i].X }, p.X)
	rows := len(g.targets) / g.columns
	cy := nearest(rows, func(i int) float64 { return g.targets[cx+i*g.columns].Y }, p.Y)
	return cy*g.columns + cx
}

// nearest returns the lowest index i in [0,n) minimizing |at(i)-v|.
func nearest(n int, at func(int) float64, v float64) int {
	best := 0
	bestDiff := math.Abs(at(0) - v)
	for i := 1; i < n; i++ {
		if d := math.Abs(at(i) - v); d < bestDiff {
			best = i
			bestDiff = d
		}
	}
	return best
}
