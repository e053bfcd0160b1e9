// Package layout places a grid of circular targets inside a bounded area.
package layout

import (
	"fmt"

	"github.com/verte-zerg/pointlab/internal/model"
)

// Size is the extent of a laid-out grid.
type Size struct {
	Width  float64
	Height float64
}

// Grid lays shape out row-major so that the longer side spans maxSize.
// Every cell holds a circle separated from its neighbours by a quarter cell.
func Grid(shape model.GridShape, maxSize float64) ([]model.Target, Size, error) {
	if shape.Columns < 1 || shape.Rows < 1 {
		return nil, Size{}, fmt.Errorf("grid shape %s must have at least one column and row: %w", shape, model.ErrInvalidArgument)
	}
	if maxSize <= 0 {
		return nil, Size{}, fmt.Errorf("layout size must be > 0, got %g: %w", maxSize, model.ErrInvalidArgument)
	}
	longest := max(shape.Columns, shape.Rows)
	cell := maxSize / float64(longest)
	gap := cell / 4
	radius := (cell - gap) / 2

	targets := make([]model.Target, 0, shape.Len())
	for r := 0; r < shape.Rows; r++ {
		for c := 0; c < shape.Columns; c++ {
			targets = append(targets, model.Target{
				X:      gap/2 + float64(c)*cell + radius,
				Y:      gap/2 + float64(r)*cell + radius,
				Radius: radius,
			})
		}
	}
	size := Size{
		Width:  cell * float64(shape.Columns),
		Height: cell * float64(shape.Rows),
	}
	return targets, size, nil
}
