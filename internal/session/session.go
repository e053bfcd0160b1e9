// Package session is the boundary between the experiment core and a
// presentation layer. The renderer forwards input events here and reads
// state back; it never touches the model directly.
package session

import (
	"fmt"
	"time"

	"github.com/verte-zerg/pointlab/internal/experiment"
	"github.com/verte-zerg/pointlab/internal/generator"
	"github.com/verte-zerg/pointlab/internal/layout"
	"github.com/verte-zerg/pointlab/internal/model"
	"github.com/verte-zerg/pointlab/internal/snap"
	"github.com/verte-zerg/pointlab/internal/triallog"
)

// Deps are the collaborators a session needs.
type Deps struct {
	Sink      triallog.Sink
	Generator *generator.Generator
	// Now overrides the clock; nil uses time.Now.
	Now func() time.Time
}

// Progress summarizes where the participant is.
type Progress struct {
	Condition     int
	NumConditions int
	Repetition    int
	Repetitions   int
	Errors        int
}

// Session owns one participant's run through the experiment.
type Session struct {
	setup model.Setup
	exp   *experiment.Model
	gen   *generator.Generator

	targets []model.Target
	bounds  layout.Size
	shape   model.GridShape
	active  int
	snapper *snap.Grid
	cursor  model.Point
	started time.Time
	now     func() time.Time
}

// New validates setup and builds a session showing instructions.
func New(setup model.Setup, deps Deps) (*Session, error) {
	if setup.MaxSize <= 0 {
		return nil, fmt.Errorf("max size must be > 0: %w", model.ErrInvalidConfiguration)
	}
	switch setup.Mode {
	case model.ModeColor:
		if setup.Grid.Columns < 1 || setup.Grid.Rows < 1 {
			return nil, fmt.Errorf("color mode needs a grid shape: %w", model.ErrInvalidConfiguration)
		}
	case model.ModeGrid:
	default:
		return nil, fmt.Errorf("unknown mode %q: %w", setup.Mode, model.ErrInvalidConfiguration)
	}
	for i, c := range setup.Conditions {
		if (setup.Mode == model.ModeColor) != (c.Kind == model.KindColor) {
			return nil, fmt.Errorf("condition %d (%s) does not match %s mode: %w", i, c, setup.Mode, model.ErrInvalidConfiguration)
		}
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	exp, err := experiment.New(experiment.Options{
		Participant: setup.Participant,
		Repetitions: setup.Repetitions,
		Conditions:  setup.Conditions,
		Sink:        deps.Sink,
		Now:         now,
	})
	if err != nil {
		return nil, err
	}
	gen := deps.Generator
	if gen == nil {
		gen = generator.New(0)
	}
	return &Session{setup: setup, exp: exp, gen: gen, active: -1, now: now}, nil
}

// StartSession marks the session start. The participant sees the
// instructions until the first start signal.
func (s *Session) StartSession() {
	s.started = s.now()
}

// StartedAt returns when StartSession was called.
func (s *Session) StartedAt() time.Time {
	return s.started
}

// OnStartSignal forwards a key press. Entering a trial lays out the
// condition's grid and picks the first active target.
func (s *Session) OnStartSignal() (experiment.State, error) {
	if s.exp.State() != experiment.ShowingInstructions {
		return s.exp.State(), nil
	}
	if !s.exp.IsComplete() {
		if err := s.prepareCondition(); err != nil {
			return s.exp.State(), err
		}
	}
	return s.exp.Start(), nil
}

// OnClick forwards a click at the raw pointer position. With snapping the
// click lands on the snapped cursor instead.
func (s *Session) OnClick(p model.Point) (experiment.HitResult, error) {
	if s.exp.State() != experiment.TrialActive {
		return experiment.HitResult{}, nil
	}
	pos := s.OnPointerMove(p)
	res, err := s.exp.RegisterClick(pos, s.targets[s.active])
	if err != nil {
		return res, err
	}
	if res.Hit && !res.ConditionComplete {
		s.active = s.gen.NextTarget(len(s.targets), s.active)
	}
	return res, nil
}

// OnPointerMove updates the cursor and returns where the participant
// perceives it: the snapped target centre when snapping is on, otherwise p.
func (s *Session) OnPointerMove(p model.Point) model.Point {
	if s.snapper != nil && s.exp.State() == experiment.TrialActive {
		s.cursor = s.snapper.Resolve(p).Center()
	} else {
		s.cursor = p
	}
	return s.cursor
}

func (s *Session) prepareCondition() error {
	spec, ok := s.exp.CurrentCondition()
	if !ok {
		return nil
	}
	shape := s.setup.Grid
	if spec.Kind == model.KindGrid {
		shape = spec.Grid
	}
	targets, bounds, err := layout.Grid(shape, s.setup.MaxSize)
	if err != nil {
		return err
	}
	s.targets = targets
	s.bounds = bounds
	s.shape = shape
	s.snapper = nil
	if s.setup.Snapping {
		g, err := snap.New(targets, shape)
		if err != nil {
			return err
		}
		s.snapper = g
	}
	s.active = s.gen.PickTarget(len(targets))
	s.cursor = model.Point{X: bounds.Width / 2, Y: bounds.Height / 2}
	return nil
}

// State returns the experiment phase.
func (s *Session) State() experiment.State {
	return s.exp.State()
}

// IsComplete reports whether every condition has elapsed.
func (s *Session) IsComplete() bool {
	return s.exp.IsComplete()
}

// CurrentCondition returns the condition being run or about to run.
func (s *Session) CurrentCondition() (model.ConditionSpec, bool) {
	return s.exp.CurrentCondition()
}

// Targets returns the laid-out targets of the current condition.
func (s *Session) Targets() []model.Target {
	return s.targets
}

// Shape returns the grid shape of the current condition.
func (s *Session) Shape() model.GridShape {
	return s.shape
}

// ActiveIndex returns the index of the target to click, or -1 before the
// first trial.
func (s *Session) ActiveIndex() int {
	return s.active
}

// ActiveTarget returns the target to click.
func (s *Session) ActiveTarget() (model.Target, bool) {
	if s.active < 0 || s.active >= len(s.targets) {
		return model.Target{}, false
	}
	return s.targets[s.active], true
}

// Cursor returns the perceived cursor position.
func (s *Session) Cursor() model.Point {
	return s.cursor
}

// Bounds returns the extent of the current layout.
func (s *Session) Bounds() layout.Size {
	return s.bounds
}

// Snapping reports whether the snapping technique is enabled.
func (s *Session) Snapping() bool {
	return s.setup.Snapping
}

// HighlightColor returns the color of the active target.
func (s *Session) HighlightColor() model.Color {
	spec, ok := s.exp.CurrentCondition()
	if ok && spec.Kind == model.KindColor {
		return spec.Color
	}
	return s.setup.Highlight
}

// Progress returns the participant's position in the experiment.
func (s *Session) Progress() Progress {
	counters := s.exp.Snapshot()
	cond := counters.ElapsedConditions + 1
	if cond > s.exp.NumConditions() {
		cond = s.exp.NumConditions()
	}
	return Progress{
		Condition:     cond,
		NumConditions: s.exp.NumConditions(),
		Repetition:    counters.ElapsedRepetitions + 1,
		Repetitions:   s.exp.Repetitions(),
		Errors:        counters.Errors,
	}
}

// Order returns the participant's 1-based condition order.
func (s *Session) Order() []int {
	return s.exp.Order()
}
