// Package store handles SQLite persistence of sessions and raw trial records.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/pointlab/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for experiment data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			uuid TEXT NOT NULL UNIQUE,
			participant INTEGER NOT NULL,
			mode TEXT NOT NULL,
			snapping INTEGER NOT NULL,
			repetitions INTEGER NOT NULL,
			conditions TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS trials (
			id INTEGER PRIMARY KEY,
			session_id INTEGER NOT NULL REFERENCES sessions(id),
			participant INTEGER NOT NULL,
			condition_index INTEGER NOT NULL,
			repetition INTEGER NOT NULL,
			target_x REAL NOT NULL,
			target_y REAL NOT NULL,
			target_radius REAL NOT NULL,
			offset_x REAL NOT NULL,
			offset_y REAL NOT NULL,
			distance REAL NOT NULL,
			elapsed_ms INTEGER NOT NULL,
			errors INTEGER NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_trials_session ON trials(session_id);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_participant ON sessions(participant);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// CreateSession stores a new session and returns its row id.
func (s *Store) CreateSession(ctx context.Context, info model.SessionInfo) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (uuid, participant, mode, snapping, repetitions, conditions, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		info.UUID,
		info.Participant,
		string(info.Mode),
		boolToInt(info.Snapping),
		info.Repetitions,
		info.Conditions,
		info.StartedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// FinishSession records when a session ended.
func (s *Store) FinishSession(ctx context.Context, id int64, endedAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE sessions SET ended_at = ? WHERE id = ?`, endedAt.Format(time.RFC3339Nano), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("session %d not found", id)
	}
	return nil
}

// InsertTrial stores one raw trial record for a session.
func (s *Store) InsertTrial(ctx context.Context, sessionID int64, rec model.TrialRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO trials (session_id, participant, condition_index, repetition, target_x, target_y, target_radius,
			offset_x, offset_y, distance, elapsed_ms, errors, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID,
		rec.Participant,
		rec.Condition,
		rec.Repetition,
		rec.Target.X,
		rec.Target.Y,
		rec.Target.Radius,
		rec.OffsetX,
		rec.OffsetY,
		rec.Distance,
		rec.Elapsed.Milliseconds(),
		rec.Errors,
		rec.Timestamp.Format(time.RFC3339Nano),
	)
	return err
}

// ListSessions returns stored sessions with their trial counts, oldest first.
func (s *Store) ListSessions(ctx context.Context, participant *int) ([]model.SessionInfo, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if participant != nil {
		clauses = append(clauses, "s.participant = ?")
		args = append(args, *participant)
	}
	query := fmt.Sprintf(`SELECT s.id, s.uuid, s.participant, s.mode, s.snapping, s.repetitions, s.conditions,
			s.started_at, s.ended_at, COUNT(t.id)
		FROM sessions s
		LEFT JOIN trials t ON t.session_id = s.id
		WHERE %s
		GROUP BY s.id
		ORDER BY s.started_at ASC, s.id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionInfo
	for rows.Next() {
		var info model.SessionInfo
		var mode, startedAt string
		var endedAt sql.NullString
		var snapping int
		if err := rows.Scan(&info.ID, &info.UUID, &info.Participant, &mode, &snapping, &info.Repetitions,
			&info.Conditions, &startedAt, &endedAt, &info.Trials); err != nil {
			return nil, err
		}
		info.Mode = model.Mode(mode)
		info.Snapping = snapping != 0
		parsed, err := time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, err
		}
		info.StartedAt = parsed
		if endedAt.Valid {
			ended, err := time.Parse(time.RFC3339Nano, endedAt.String)
			if err != nil {
				return nil, err
			}
			info.EndedAt = &ended
		}
		sessions = append(sessions, info)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListTrials returns stored trial records in emission order.
func (s *Store) ListTrials(ctx context.Context, filter model.TrialFilter) ([]model.TrialRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.SessionID > 0 {
		clauses = append(clauses, "session_id = ?")
		args = append(args, filter.SessionID)
	}
	if filter.Participant != nil {
		clauses = append(clauses, "participant = ?")
		args = append(args, *filter.Participant)
	}
	query := fmt.Sprintf(`SELECT participant, condition_index, repetition, target_x, target_y, target_radius,
			offset_x, offset_y, distance, elapsed_ms, errors, recorded_at
		FROM trials
		WHERE %s
		ORDER BY id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.TrialRecord
	for rows.Next() {
		var rec model.TrialRecord
		var elapsedMs int64
		var recordedAt string
		if err := rows.Scan(&rec.Participant, &rec.Condition, &rec.Repetition, &rec.Target.X, &rec.Target.Y,
			&rec.Target.Radius, &rec.OffsetX, &rec.OffsetY, &rec.Distance, &elapsedMs, &rec.Errors, &recordedAt); err != nil {
			return nil, err
		}
		rec.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		parsed, err := time.Parse(time.RFC3339Nano, recordedAt)
		if err != nil {
			return nil, err
		}
		rec.Timestamp = parsed
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// Recorder returns a trial sink that stores records under sessionID.
func (s *Store) Recorder(ctx context.Context, sessionID int64) *Recorder {
	return &Recorder{ctx: ctx, store: s, sessionID: sessionID}
}

// Recorder adapts the store to the trial log sink interface.
type Recorder struct {
	ctx       context.Context
	store     *Store
	sessionID int64
}

// Emit stores rec. Failures are reported as trial log write failures.
func (r *Recorder) Emit(rec model.TrialRecord) error {
	if err := r.store.InsertTrial(r.ctx, r.sessionID, rec); err != nil {
		return fmt.Errorf("failed to store trial: %w: %w", model.ErrIO, err)
	}
	return nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
