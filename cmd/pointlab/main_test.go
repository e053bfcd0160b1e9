package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/pointlab/internal/config"
	"github.com/verte-zerg/pointlab/internal/model"
	"github.com/verte-zerg/pointlab/internal/store"
)

func TestOrderCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"order", "--conditions", "4", "--participants", "1"})
	if err := root.Execute(); err != nil {
		t.Fatalf("order: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %q", out.String())
	}
	if got := strings.Join(strings.Fields(lines[1]), " "); got != "0 0 1 2 4 3" {
		t.Fatalf("unexpected order row: %q", got)
	}
}

func TestOrderCommandRejectsMissingConditions(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"order"})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected error without --conditions")
	}
}

func TestExportCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "pointlab.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	ctx := context.Background()
	id, err := st.CreateSession(ctx, model.SessionInfo{
		UUID:        uuid.NewString(),
		Participant: 7,
		Mode:        model.ModeGrid,
		Repetitions: 1,
		Conditions:  "grid 2x2",
		StartedAt:   time.Now(),
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	rec := model.TrialRecord{
		Participant: 7,
		Condition:   1,
		Repetition:  3,
		Target:      model.Target{X: 100, Y: 100, Radius: 10},
		OffsetX:     3,
		OffsetY:     -4,
		Distance:    5,
		Elapsed:     1234 * time.Millisecond,
		Errors:      2,
		Timestamp:   time.Date(2024, 5, 20, 14, 3, 11, 0, time.UTC),
	}
	if err := st.Recorder(ctx, id).Emit(rec); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"export", "--db", dbPath, "--header"})
	if err := root.Execute(); err != nil {
		t.Fatalf("export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one record, got %q", out.String())
	}
	want := `7,1,3,"(100, 100, 10)","(3, -4)",5,1234,2,2024-05-20T14:03:11Z`
	if lines[1] != want {
		t.Fatalf("unexpected record line:\nwant %s\ngot  %s", want, lines[1])
	}
}

func TestApplyConfigKeepsChangedFlags(t *testing.T) {
	root := newRootCmd()
	if err := root.Flags().Set("out", "trials.csv"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	fromFile := "config.csv"
	applyStringConfig(root, "out", &runOut, &fromFile)
	if runOut != "trials.csv" {
		t.Fatalf("expected flag value to win, got %q", runOut)
	}

	level := "debug"
	applyStringConfig(root, "log-level", &runLogLevel, &level)
	if runLogLevel != "debug" {
		t.Fatalf("expected config value for unset flag, got %q", runLogLevel)
	}
	applyBoolConfig(root, "header", &runHeader, nil)
	if runHeader {
		t.Fatalf("nil config value must not change the flag")
	}
}

func TestDefaultConfigTemplateParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	if cfg.Run.Out != nil || cfg.Run.Snapping != nil {
		t.Fatalf("commented template must leave values unset: %+v", cfg.Run)
	}
}
