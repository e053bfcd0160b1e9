package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/pointlab/internal/layout"
	"github.com/verte-zerg/pointlab/internal/model"
)

// cellAspect is how many times taller a terminal cell is than it is wide.
const cellAspect = 2.0

// canvas maps layout coordinates onto terminal cells.
type canvas struct {
	// scale is layout units per cell column.
	scale      float64
	offsetX    int
	offsetY    int
	cols, rows int
}

// fitCanvas scales bounds to fit width x height cells, centred.
func fitCanvas(bounds layout.Size, width, height int) canvas {
	if width < 1 || height < 1 || bounds.Width <= 0 || bounds.Height <= 0 {
		return canvas{}
	}
	scale := math.Max(bounds.Width/float64(width), bounds.Height/(float64(height)*cellAspect))
	cols := min(width, int(math.Ceil(bounds.Width/scale)))
	rows := min(height, int(math.Ceil(bounds.Height/(scale*cellAspect))))
	return canvas{
		scale:   scale,
		offsetX: (width - cols) / 2,
		offsetY: (height - rows) / 2,
		cols:    cols,
		rows:    rows,
	}
}

// toLayout returns the layout point at the centre of a terminal cell.
func (c canvas) toLayout(x, y int) model.Point {
	return model.Point{
		X: (float64(x-c.offsetX) + 0.5) * c.scale,
		Y: (float64(y-c.offsetY) + 0.5) * c.scale * cellAspect,
	}
}

// toCell returns the terminal cell containing a layout point.
func (c canvas) toCell(p model.Point) (x, y int) {
	if c.scale == 0 {
		return 0, 0
	}
	x = int(math.Floor(p.X/c.scale)) + c.offsetX
	y = int(math.Floor(p.Y/(c.scale*cellAspect))) + c.offsetY
	return x, y
}

type cellKind int

const (
	cellEmpty cellKind = iota
	cellTarget
	cellActive
	cellCursor
)

// cells rasterizes targets into the canvas grid.
func (c canvas) cells(targets []model.Target, active int, cursor *model.Point) [][]cellKind {
	grid := make([][]cellKind, c.rows)
	for y := range grid {
		grid[y] = make([]cellKind, c.cols)
		for x := range grid[y] {
			p := c.toLayout(x+c.offsetX, y+c.offsetY)
			for i, t := range targets {
				if math.Hypot(p.X-t.X, p.Y-t.Y) < t.Radius {
					grid[y][x] = cellTarget
					if i == active {
						grid[y][x] = cellActive
					}
					break
				}
			}
		}
	}
	if cursor != nil {
		x, y := c.toCell(*cursor)
		x -= c.offsetX
		y -= c.offsetY
		if y >= 0 && y < c.rows && x >= 0 && x < c.cols {
			grid[y][x] = cellCursor
		}
	}
	return grid
}

func renderCells(grid [][]cellKind, highlight model.Color) string {
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(highlight.Hex()))
	lines := make([]string, len(grid))
	for y, row := range grid {
		var b strings.Builder
		for _, k := range row {
			switch k {
			case cellTarget:
				b.WriteString(targetStyle.Render("█"))
			case cellActive:
				b.WriteString(activeStyle.Render("█"))
			case cellCursor:
				b.WriteString(cursorStyle.Render("✛"))
			default:
				b.WriteByte(' ')
			}
		}
		lines[y] = b.String()
	}
	return strings.Join(lines, "\n")
}
