// Package main provides the CLI entrypoint for pointlab.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/pointlab/internal/config"
	"github.com/verte-zerg/pointlab/internal/generator"
	"github.com/verte-zerg/pointlab/internal/logging"
	"github.com/verte-zerg/pointlab/internal/model"
	"github.com/verte-zerg/pointlab/internal/report"
	"github.com/verte-zerg/pointlab/internal/session"
	"github.com/verte-zerg/pointlab/internal/sessionsui"
	"github.com/verte-zerg/pointlab/internal/store"
	"github.com/verte-zerg/pointlab/internal/triallog"
	"github.com/verte-zerg/pointlab/internal/tui"
)

const (
	defaultOut       = "-"
	defaultLogLevel  = "info"
	defaultLogFormat = "text"
)

var (
	runParticipant int
	runSnap        bool
	runOut         string
	runHeader      bool
	runDB          string
	runStore       bool
	runSeed        int64
	runLogLevel    string
	runLogFormat   string

	orderConditions   int
	orderParticipants int

	sessionsParticipant int
	sessionsBrowse      bool

	exportSession     int64
	exportParticipant int
	exportHeader      bool
	exportDB          string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "pointlab <setup-file>",
		Short:         "Counterbalanced pointing experiment runner",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runExperimentCmd,
	}

	rootCmd.Flags().IntVar(&runParticipant, "participant", 0, "override the setup's participant id")
	rootCmd.Flags().BoolVar(&runSnap, "snap", false, "enable grid snapping (overrides setup)")
	rootCmd.Flags().StringVar(&runOut, "out", defaultOut, "trial record output file ('-' for stdout)")
	rootCmd.Flags().BoolVar(&runHeader, "header", false, "write a CSV header line")
	rootCmd.Flags().StringVar(&runDB, "db", config.DefaultDBPath(), "SQLite database path")
	rootCmd.Flags().BoolVar(&runStore, "store", true, "also store trial records in the database")
	rootCmd.Flags().Int64Var(&runSeed, "seed", 0, "random seed for target selection (0 = time based)")
	rootCmd.Flags().StringVar(&runLogLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.Flags().StringVar(&runLogFormat, "log-format", defaultLogFormat, "log format (text, json)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newOrderCmd())
	rootCmd.AddCommand(newSessionsCmd())
	rootCmd.AddCommand(newExportCmd())

	return rootCmd
}

func runExperimentCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "out", &runOut, fileCfg.Run.Out)
	applyBoolConfig(cmd, "header", &runHeader, fileCfg.Run.Header)
	applyStringConfig(cmd, "db", &runDB, fileCfg.Run.DB)
	applyBoolConfig(cmd, "store", &runStore, fileCfg.Run.Store)
	applyInt64Config(cmd, "seed", &runSeed, fileCfg.Run.Seed)
	applyStringConfig(cmd, "log-level", &runLogLevel, fileCfg.Run.LogLevel)
	applyStringConfig(cmd, "log-format", &runLogFormat, fileCfg.Run.LogFormat)

	logger, err := logging.New(logging.Options{Level: runLogLevel, Format: runLogFormat})
	if err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}

	setup, err := config.LoadSetup(args[0])
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("participant") {
		setup.Participant = runParticipant
	}
	if cmd.Flags().Changed("snap") {
		setup.Snapping = runSnap
	} else if fileCfg.Run.Snapping != nil {
		setup.Snapping = bool(*fileCfg.Run.Snapping)
	}

	out, closeOut, err := openOutput(runOut)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeOut(); cerr != nil {
			logger.Error("failed to close trial output", "error", cerr)
		}
	}()
	if runOut == defaultOut && term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stderr.Fd())) {
		logger.Warn("trial records go to the terminal; use --out or redirect stdout to keep them")
	}

	var opts []triallog.Option
	if runHeader {
		opts = append(opts, triallog.WithHeader())
	}
	sinks := []triallog.Sink{triallog.New(out, opts...)}

	ctx := context.Background()
	sessionUUID := uuid.NewString()
	var st *store.Store
	var sessionID int64
	if runStore {
		st, err = store.Open(runDB)
		if err != nil {
			return fmt.Errorf("failed to open db: %w", err)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logger.Error("failed to close db", "error", cerr)
			}
		}()
		sessionID, err = st.CreateSession(ctx, model.SessionInfo{
			UUID:        sessionUUID,
			Participant: setup.Participant,
			Mode:        setup.Mode,
			Snapping:    setup.Snapping,
			Repetitions: setup.Repetitions,
			Conditions:  report.ConditionList(setup.Conditions),
			StartedAt:   time.Now(),
		})
		if err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
		sinks = append(sinks, st.Recorder(ctx, sessionID))
	}

	sess, err := session.New(setup, session.Deps{
		Sink:      triallog.Multi(sinks...),
		Generator: generator.New(runSeed),
	})
	if err != nil {
		return err
	}
	logger.Info("session starting",
		"session", sessionUUID,
		"participant", setup.Participant,
		"mode", setup.Mode,
		"snapping", setup.Snapping,
		"order", sess.Order(),
	)
	sess.StartSession()

	ui := tui.NewModel(sess)
	program := tea.NewProgram(ui, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithOutput(os.Stderr))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	if st != nil {
		if err := st.FinishSession(ctx, sessionID, time.Now()); err != nil {
			logger.Error("failed to finish session", "error", err)
		}
	}
	return finishRun(logger, ui, sessionUUID)
}

func finishRun(logger *slog.Logger, ui *tui.Model, sessionUUID string) error {
	if err := ui.Err(); err != nil {
		if errors.Is(err, model.ErrIO) {
			return fmt.Errorf("session aborted, trial records could not be written: %w", err)
		}
		return err
	}
	if ui.Aborted() {
		logger.Warn("session aborted before completion", "session", sessionUUID)
		return nil
	}
	logger.Info("session complete", "session", sessionUUID)
	return nil
}

func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" || path == defaultOut {
		return os.Stdout, func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open output: %w", err)
	}
	return f, f.Close, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newOrderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Print counterbalanced condition orders",
		Args:  cobra.NoArgs,
		RunE:  runOrderCmd,
	}
	cmd.Flags().IntVar(&orderConditions, "conditions", 0, "number of conditions")
	cmd.Flags().IntVar(&orderParticipants, "participants", 0, "number of participants (default: one full square)")
	return cmd
}

func runOrderCmd(cmd *cobra.Command, _ []string) error {
	if orderConditions <= 0 {
		return fmt.Errorf("--conditions must be > 0")
	}
	if orderParticipants < 0 {
		return fmt.Errorf("--participants must be >= 0")
	}
	return report.RenderOrders(cmd.OutOrStdout(), orderConditions, orderParticipants)
}

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List stored sessions",
		Args:  cobra.NoArgs,
		RunE:  runSessionsCmd,
	}
	cmd.Flags().IntVar(&sessionsParticipant, "participant", 0, "participant filter")
	cmd.Flags().BoolVar(&sessionsBrowse, "browse", false, "browse sessions and their trials interactively")
	cmd.Flags().StringVar(&exportDB, "db", config.DefaultDBPath(), "SQLite database path")
	return cmd
}

func runSessionsCmd(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(exportDB)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	var participant *int
	if cmd.Flags().Changed("participant") {
		participant = &sessionsParticipant
	}
	if sessionsBrowse {
		ui := sessionsui.NewModel(st, participant)
		program := tea.NewProgram(ui, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run sessions UI: %w", err)
		}
		return nil
	}
	sessions, err := st.ListSessions(cmd.Context(), participant)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	return report.RenderSessions(cmd.OutOrStdout(), sessions)
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write stored trial records as CSV",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	cmd.Flags().Int64Var(&exportSession, "session", 0, "session id filter")
	cmd.Flags().IntVar(&exportParticipant, "participant", 0, "participant filter")
	cmd.Flags().BoolVar(&exportHeader, "header", false, "write a CSV header line")
	cmd.Flags().StringVar(&exportDB, "db", config.DefaultDBPath(), "SQLite database path")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(exportDB)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	filter := model.TrialFilter{SessionID: exportSession}
	if cmd.Flags().Changed("participant") {
		filter.Participant = &exportParticipant
	}
	records, err := st.ListTrials(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("failed to list trials: %w", err)
	}
	var opts []triallog.Option
	if exportHeader {
		opts = append(opts, triallog.WithHeader())
	}
	log := triallog.New(cmd.OutOrStdout(), opts...)
	for _, rec := range records {
		if err := log.Emit(rec); err != nil {
			return err
		}
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# pointlab configuration
# Uncomment a value to enable it. CLI flags override config values.

[run]
# out = %q                 # Trial record output ('-' for stdout)
# header = false           # Write a CSV header line
# db = %q
# store = true             # Also store trial records in the database
# seed = 0                 # Target selection seed (0 = time based)
# snapping = "no"          # Force grid snapping on or off (yes/no)
# log-level = %q
# log-format = %q
`,
		defaultOut,
		config.DefaultDBPath(),
		defaultLogLevel,
		defaultLogFormat,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
