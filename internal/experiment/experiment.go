// Package experiment drives the trial state machine of a pointing experiment.
package experiment

import (
	"fmt"
	"math"
	"time"

	"github.com/verte-zerg/pointlab/internal/latin"
	"github.com/verte-zerg/pointlab/internal/model"
	"github.com/verte-zerg/pointlab/internal/triallog"
)

// State is the phase of an experiment session.
type State int

const (
	ShowingInstructions State = iota
	TrialActive
	Complete
)

func (s State) String() string {
	switch s {
	case ShowingInstructions:
		return "instructions"
	case TrialActive:
		return "trial"
	case Complete:
		return "complete"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Snapshot is a read-only view of the experiment counters.
type Snapshot struct {
	State              State
	ElapsedConditions  int
	ElapsedRepetitions int
	Errors             int
	TimerRunning       bool
}

// HitResult reports the outcome of a click.
type HitResult struct {
	Hit      bool
	Distance float64
	// ConditionComplete is set when the hit finished the condition's
	// repetitions and the session returned to the instructions.
	ConditionComplete bool
	// ExperimentComplete is set when no conditions remain.
	ExperimentComplete bool
}

// Options configures a Model.
type Options struct {
	Participant int
	Repetitions int
	Conditions  []model.ConditionSpec
	Sink        triallog.Sink
	// Now overrides the clock; nil uses time.Now.
	Now func() time.Time
}

// Model owns the condition order, counters and trial timer.
type Model struct {
	participant int
	repetitions int
	conditions  []model.ConditionSpec
	order       []int
	sink        triallog.Sink
	now         func() time.Time
	timer       *Stopwatch

	state              State
	elapsedConditions  int
	elapsedRepetitions int
	errors             int
}

// New validates opts and returns a model showing instructions.
func New(opts Options) (*Model, error) {
	if opts.Repetitions <= 0 {
		return nil, fmt.Errorf("repetitions must be > 0, got %d: %w", opts.Repetitions, model.ErrInvalidConfiguration)
	}
	if len(opts.Conditions) == 0 {
		return nil, fmt.Errorf("at least one condition is required: %w", model.ErrInvalidConfiguration)
	}
	if opts.Sink == nil {
		return nil, fmt.Errorf("trial sink is required: %w", model.ErrInvalidConfiguration)
	}
	order, err := latin.Generate(len(opts.Conditions), opts.Participant)
	if err != nil {
		return nil, err
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	conditions := make([]model.ConditionSpec, len(opts.Conditions))
	copy(conditions, opts.Conditions)
	return &Model{
		participant: opts.Participant,
		repetitions: opts.Repetitions,
		conditions:  conditions,
		order:       order,
		sink:        opts.Sink,
		now:         now,
		timer:       NewStopwatch(now),
		state:       ShowingInstructions,
	}, nil
}

// Start handles the start signal. It begins the next condition, or marks the
// experiment complete when none remain.
func (m *Model) Start() State {
	if m.state != ShowingInstructions {
		return m.state
	}
	if m.elapsedConditions >= len(m.conditions) {
		m.state = Complete
		return m.state
	}
	m.state = TrialActive
	m.timer.Start()
	return m.state
}

// RegisterClick hit-tests click against the active target. Clicks outside an
// active trial are ignored.
func (m *Model) RegisterClick(click model.Point, target model.Target) (HitResult, error) {
	if m.state != TrialActive {
		return HitResult{}, nil
	}
	distance := math.Hypot(click.X-target.X, click.Y-target.Y)
	if distance >= target.Radius {
		m.errors++
		return HitResult{Distance: distance}, nil
	}

	rec := model.TrialRecord{
		Participant: m.participant,
		Condition:   m.elapsedConditions,
		Repetition:  m.elapsedRepetitions + 1,
		Target:      target,
		OffsetX:     target.X - click.X,
		OffsetY:     target.Y - click.Y,
		Distance:    distance,
		Elapsed:     m.timer.Elapsed(),
		Errors:      m.errors,
		Timestamp:   m.now(),
	}
	if err := m.sink.Emit(rec); err != nil {
		return HitResult{}, fmt.Errorf("failed to record trial: %w", err)
	}

	m.elapsedRepetitions++
	m.timer.Restart()
	m.errors = 0
	result := HitResult{Hit: true, Distance: distance}
	if m.elapsedRepetitions >= m.repetitions {
		m.elapsedRepetitions = 0
		m.elapsedConditions++
		m.timer.Stop()
		m.state = ShowingInstructions
		result.ConditionComplete = true
		result.ExperimentComplete = m.elapsedConditions >= len(m.conditions)
	}
	return result, nil
}

// State returns the current phase.
func (m *Model) State() State {
	return m.state
}

// IsComplete reports whether every condition has elapsed.
func (m *Model) IsComplete() bool {
	return m.elapsedConditions >= len(m.conditions)
}

// CurrentCondition returns the condition the participant is on, following
// the counterbalanced order. ok is false once all conditions have elapsed.
func (m *Model) CurrentCondition() (spec model.ConditionSpec, ok bool) {
	if m.IsComplete() {
		return model.ConditionSpec{}, false
	}
	return m.conditions[m.order[m.elapsedConditions]-1], true
}

// Order returns the participant's 1-based condition order.
func (m *Model) Order() []int {
	out := make([]int, len(m.order))
	copy(out, m.order)
	return out
}

// NumConditions returns the number of conditions.
func (m *Model) NumConditions() int {
	return len(m.conditions)
}

// Repetitions returns the repetitions per condition.
func (m *Model) Repetitions() int {
	return m.repetitions
}

// Snapshot returns the current counters.
func (m *Model) Snapshot() Snapshot {
	return Snapshot{
		State:              m.state,
		ElapsedConditions:  m.elapsedConditions,
		ElapsedRepetitions: m.elapsedRepetitions,
		Errors:             m.errors,
		TimerRunning:       m.timer.Running(),
	}
}
