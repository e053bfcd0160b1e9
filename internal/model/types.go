// Package model defines shared data structures.
package model

import (
	"fmt"
	"time"
)

// Mode selects which attribute the experiment manipulates per condition.
type Mode string

const (
	// ModeColor varies the highlight color on a fixed grid.
	ModeColor Mode = "color"
	// ModeGrid varies the grid shape with a fixed highlight color.
	ModeGrid Mode = "grid"
)

// ConditionKind tags the variant held by a ConditionSpec.
type ConditionKind int

const (
	KindColor ConditionKind = iota
	KindGrid
)

// Color is an RGB triple.
type Color struct {
	R, G, B uint8
}

// Hex returns the color as #RRGGBB.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// GridShape is a rectangular target arrangement.
type GridShape struct {
	Columns int
	Rows    int
}

// Len returns the number of cells in the grid.
func (g GridShape) Len() int {
	return g.Columns * g.Rows
}

func (g GridShape) String() string {
	return fmt.Sprintf("%dx%d", g.Columns, g.Rows)
}

// ConditionSpec is one experimentally manipulated configuration: either a
// highlight color or a grid shape.
type ConditionSpec struct {
	Kind  ConditionKind
	Color Color
	Grid  GridShape
}

// ColorCondition builds a color condition.
func ColorCondition(c Color) ConditionSpec {
	return ConditionSpec{Kind: KindColor, Color: c}
}

// GridCondition builds a grid-shape condition.
func GridCondition(g GridShape) ConditionSpec {
	return ConditionSpec{Kind: KindGrid, Grid: g}
}

func (c ConditionSpec) String() string {
	if c.Kind == KindGrid {
		return "grid " + c.Grid.String()
	}
	return "color " + c.Color.Hex()
}

// Point is a position in layout coordinates.
type Point struct {
	X float64
	Y float64
}

// Target is a circular target.
type Target struct {
	X      float64
	Y      float64
	Radius float64
}

// Center returns the target center.
func (t Target) Center() Point {
	return Point{X: t.X, Y: t.Y}
}

// Setup is a validated experiment setup.
type Setup struct {
	Participant int
	Repetitions int
	Mode        Mode
	Conditions  []ConditionSpec
	// Grid is the shape used for every condition in color mode.
	Grid GridShape
	// Highlight is the active target color in grid mode.
	Highlight Color
	MaxSize   float64
	Snapping  bool
}

// TrialRecord captures a completed trial.
type TrialRecord struct {
	Participant int
	Condition   int
	Repetition  int
	Target      Target
	OffsetX     float64
	OffsetY     float64
	Distance    float64
	Elapsed     time.Duration
	Errors      int
	Timestamp   time.Time
}

// SessionInfo describes a stored experiment session.
type SessionInfo struct {
	ID          int64
	UUID        string
	Participant int
	Mode        Mode
	Snapping    bool
	Repetitions int
	Conditions  string
	StartedAt   time.Time
	EndedAt     *time.Time
	Trials      int
}

// TrialFilter narrows stored trial queries.
type TrialFilter struct {
	SessionID   int64
	Participant *int
}
