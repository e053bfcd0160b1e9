//go:build cucumber

package experiment

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/cucumber/godog"

	"github.com/verte-zerg/pointlab/internal/model"
)

// TestTrialFeatures executes the trial state machine scenarios via godog.
func TestTrialFeatures(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "trials",
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:    "pretty",
			Paths:     []string{filepath.Join("testdata", "trials.feature")},
			Strict:    true,
			TestingT:  t,
			Randomize: 0,
		},
	}
	if suite.Run() != 0 {
		t.Fatalf("non-zero godog status")
	}
}

// InitializeScenario wires step definitions for the trial feature tests.
func InitializeScenario(ctx *godog.ScenarioContext) {
	state := &trialState{}
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		*state = trialState{}
		return ctx, nil
	})

	ctx.Step(`^an experiment with (\d+) conditions and (\d+) repetitions per condition$`, state.givenExperiment)
	ctx.Step(`^the active target is at (\d+),(\d+) with radius (\d+)$`, state.givenTarget)
	ctx.Step(`^the participant presses a key$`, state.pressKey)
	ctx.Step(`^the participant clicks at (\d+),(\d+)$`, state.clickAt)
	ctx.Step(`^the participant completes every condition$`, state.completeAll)
	ctx.Step(`^the click is a hit$`, state.lastWasHit)
	ctx.Step(`^the click is a miss$`, state.lastWasMiss)
	ctx.Step(`^the error count is (\d+)$`, state.errorCountIs)
	ctx.Step(`^(\d+) trial records? (?:has|have) been written$`, state.recordsWritten)
	ctx.Step(`^the state is "([^"]+)"$`, state.stateIs)
	ctx.Step(`^(\d+) conditions? (?:has|have) elapsed$`, state.conditionsElapsed)
}

// trialState holds scenario state for the feature tests.
type trialState struct {
	model  *Model
	sink   *memorySink
	target model.Target
	last   HitResult
}

func (s *trialState) givenExperiment(conditions, reps int) error {
	specs := make([]model.ConditionSpec, conditions)
	for i := range specs {
		specs[i] = model.GridCondition(model.GridShape{Columns: i + 1, Rows: i + 1})
	}
	s.sink = &memorySink{}
	m, err := New(Options{Repetitions: reps, Conditions: specs, Sink: s.sink})
	if err != nil {
		return err
	}
	s.model = m
	return nil
}

func (s *trialState) givenTarget(x, y, r int) error {
	s.target = model.Target{X: float64(x), Y: float64(y), Radius: float64(r)}
	return nil
}

func (s *trialState) pressKey() error {
	s.model.Start()
	return nil
}

func (s *trialState) clickAt(x, y int) error {
	res, err := s.model.RegisterClick(model.Point{X: float64(x), Y: float64(y)}, s.target)
	if err != nil {
		return err
	}
	s.last = res
	return nil
}

func (s *trialState) completeAll() error {
	for !s.model.IsComplete() {
		s.model.Start()
		if err := s.clickAt(int(s.target.X), int(s.target.Y)); err != nil {
			return err
		}
	}
	return nil
}

func (s *trialState) lastWasHit() error {
	if !s.last.Hit {
		return fmt.Errorf("expected hit, got %+v", s.last)
	}
	return nil
}

func (s *trialState) lastWasMiss() error {
	if s.last.Hit {
		return fmt.Errorf("expected miss, got %+v", s.last)
	}
	return nil
}

func (s *trialState) errorCountIs(n int) error {
	if got := s.model.Snapshot().Errors; got != n {
		return fmt.Errorf("expected %d errors, got %d", n, got)
	}
	return nil
}

func (s *trialState) recordsWritten(n int) error {
	if got := len(s.sink.records); got != n {
		return fmt.Errorf("expected %d records, got %d", n, got)
	}
	return nil
}

func (s *trialState) stateIs(name string) error {
	if got := s.model.State().String(); got != name {
		return fmt.Errorf("expected state %q, got %q", name, got)
	}
	return nil
}

func (s *trialState) conditionsElapsed(n int) error {
	if got := s.model.Snapshot().ElapsedConditions; got != n {
		return fmt.Errorf("expected %d elapsed conditions, got %d", n, got)
	}
	return nil
}
