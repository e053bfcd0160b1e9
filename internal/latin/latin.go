// Package latin builds balanced Latin squares for counterbalancing condition order.
package latin

import (
	"fmt"

	"github.com/verte-zerg/pointlab/internal/model"
)

// Rows returns every row of the balanced Latin square of size n. For odd n
// the reversed rows are appended so first-order carryover stays balanced.
func Rows(n int) ([][]int, error) {
	if n <= 0 {
		return nil, fmt.Errorf("latin square size must be > 0, got %d: %w", n, model.ErrInvalidArgument)
	}
	rows := make([][]int, 0, 2*n)
	for i := 0; i < n; i++ {
		row := make([]int, n)
		for j := 0; j < n; j++ {
			var v int
			if j%2 == 1 {
				v = j/2 + 1
			} else {
				v = n - j/2
			}
			row[j] = (v+i)%n + 1
		}
		rows = append(rows, row)
	}
	if n%2 == 1 {
		for i := 0; i < n; i++ {
			rev := make([]int, n)
			for j, v := range rows[i] {
				rev[n-1-j] = v
			}
			rows = append(rows, rev)
		}
	}
	return rows, nil
}

// Generate returns the 1-based condition order for a participant.
func Generate(n, participant int) ([]int, error) {
	rows, err := Rows(n)
	if err != nil {
		return nil, err
	}
	idx := participant % len(rows)
	if idx < 0 {
		idx += len(rows)
	}
	return rows[idx], nil
}

// Permute reorders conditions by a 1-based order from Generate.
func Permute[T any](conditions []T, order []int) ([]T, error) {
	if len(order) != len(conditions) {
		return nil, fmt.Errorf("order has %d entries for %d conditions: %w", len(order), len(conditions), model.ErrInvalidArgument)
	}
	out := make([]T, len(order))
	for i, idx := range order {
		if idx < 1 || idx > len(conditions) {
			return nil, fmt.Errorf("order index %d out of range: %w", idx, model.ErrInvalidArgument)
		}
		out[i] = conditions[idx-1]
	}
	return out, nil
}
