package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/pointlab/internal/latin"
	"github.com/verte-zerg/pointlab/internal/model"
)

// RenderOrders prints the counterbalanced condition order for participants
// 0 through participants-1. When participants is zero one full square is
// printed.
func RenderOrders(w io.Writer, conditions, participants int) error {
	rows, err := latin.Rows(conditions)
	if err != nil {
		return err
	}
	if participants <= 0 {
		participants = len(rows)
	}
	headers := []string{"Participant", "Row"}
	for i := 1; i <= conditions; i++ {
		headers = append(headers, fmt.Sprintf("#%d", i))
	}
	right := map[int]bool{0: true, 1: true}
	tableRows := make([][]string, 0, participants)
	for p := 0; p < participants; p++ {
		order, err := latin.Generate(conditions, p)
		if err != nil {
			return err
		}
		row := []string{strconv.Itoa(p), strconv.Itoa(p % len(rows))}
		for i, v := range order {
			row = append(row, strconv.Itoa(v))
			right[i+2] = true
		}
		tableRows = append(tableRows, row)
	}
	return writeLines(w, formatTable(headers, tableRows, right))
}

// RenderSessions prints stored sessions.
func RenderSessions(w io.Writer, sessions []model.SessionInfo) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	headers := []string{"ID", "Participant", "Mode", "Snap", "Reps", "Trials", "Started", "Ended", "Conditions"}
	tableRows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		ended := "-"
		if s.EndedAt != nil {
			ended = s.EndedAt.Local().Format(time.DateTime)
		}
		snap := "no"
		if s.Snapping {
			snap = "yes"
		}
		tableRows = append(tableRows, []string{
			strconv.FormatInt(s.ID, 10),
			strconv.Itoa(s.Participant),
			string(s.Mode),
			snap,
			strconv.Itoa(s.Repetitions),
			strconv.Itoa(s.Trials),
			s.StartedAt.Local().Format(time.DateTime),
			ended,
			s.Conditions,
		})
	}
	right := map[int]bool{0: true, 1: true, 4: true, 5: true}
	return writeLines(w, formatTable(headers, tableRows, right))
}

// ConditionList formats conditions for storage and listings.
func ConditionList(conditions []model.ConditionSpec) string {
	parts := make([]string, len(conditions))
	for i, c := range conditions {
		parts[i] = c.String()
	}
	return strings.Join(parts, "; ")
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
