// Package triallog writes per-trial records as CSV.
package triallog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/verte-zerg/pointlab/internal/model"
)

// Header lists the CSV columns in emission order.
var Header = []string{
	"participant",
	"condition",
	"repetition",
	"target",
	"click_offset",
	"distance",
	"time_ms",
	"errors",
	"timestamp",
}

// Sink receives completed trial records.
type Sink interface {
	Emit(rec model.TrialRecord) error
}

// Log emits trial records as CSV lines to a writer.
type Log struct {
	w          *csv.Writer
	header     bool
	headerDone bool
}

// Option configures a Log.
type Option func(*Log)

// WithHeader writes the column header before the first record.
func WithHeader() Option {
	return func(l *Log) {
		l.header = true
	}
}

// New returns a Log writing to w.
func New(w io.Writer, opts ...Option) *Log {
	l := &Log{w: csv.NewWriter(w)}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Emit writes one record and flushes it before returning.
func (l *Log) Emit(rec model.TrialRecord) error {
	if l.header && !l.headerDone {
		if err := l.w.Write(Header); err != nil {
			return fmt.Errorf("failed to write header: %w: %w", model.ErrIO, err)
		}
		l.headerDone = true
	}
	if err := l.w.Write(Row(rec)); err != nil {
		return fmt.Errorf("failed to write trial: %w: %w", model.ErrIO, err)
	}
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		return fmt.Errorf("failed to flush trial: %w: %w", model.ErrIO, err)
	}
	return nil
}

// Row formats a record as CSV fields.
func Row(rec model.TrialRecord) []string {
	return []string{
		strconv.Itoa(rec.Participant),
		strconv.Itoa(rec.Condition),
		strconv.Itoa(rec.Repetition),
		fmt.Sprintf("(%s, %s, %s)", formatFloat(rec.Target.X), formatFloat(rec.Target.Y), formatFloat(rec.Target.Radius)),
		fmt.Sprintf("(%s, %s)", formatFloat(rec.OffsetX), formatFloat(rec.OffsetY)),
		formatFloat(rec.Distance),
		strconv.FormatInt(rec.Elapsed.Milliseconds(), 10),
		strconv.Itoa(rec.Errors),
		rec.Timestamp.Format(time.RFC3339),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type multi []Sink

// Multi fans records out to every sink, stopping at the first failure.
func Multi(sinks ...Sink) Sink {
	out := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (m multi) Emit(rec model.TrialRecord) error {
	for _, s := range m {
		if err := s.Emit(rec); err != nil {
			return err
		}
	}
	return nil
}
