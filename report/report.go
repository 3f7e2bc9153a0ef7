// Package report assembles the outcome of a gate run into a summary that
// CI systems can archive. The report supplements the lint tools' own
// output; it never replaces the pass-through stream.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// CheckerReport is the outcome of one checker.
type CheckerReport struct {
	Name     string `json:"name"`
	Success  bool   `json:"success"`
	ExitCode int    `json:"exitCode"`
	Findings int    `json:"findings"`
	Errors   int    `json:"errors"`
	// Failure carries the execution error when the checker could not run.
	Failure string `json:"failure,omitempty"`
}

// Report describes a complete gate run.
type Report struct {
	RunID     string          `json:"runId"`
	Target    string          `json:"target"`
	StartedAt time.Time       `json:"startedAt"`
	ElapsedMS int64           `json:"elapsedMs"`
	Passed    bool            `json:"passed"`
	Checkers  []CheckerReport `json:"checkers"`
}

// New starts a report for a run against the given target.
func New(target string) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		Target:    target,
		StartedAt: time.Now(),
	}
}

// Add records one checker outcome.
func (r *Report) Add(cr CheckerReport) {
	r.Checkers = append(r.Checkers, cr)
}

// Finish stamps the elapsed time and the overall verdict.
func (r *Report) Finish(passed bool) {
	r.ElapsedMS = time.Since(r.StartedAt).Milliseconds()
	r.Passed = passed
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// WriteText writes a short human summary, one line per checker.
func (r *Report) WriteText(w io.Writer) error {
	verdict := "PASS"
	if !r.Passed {
		verdict = "FAIL"
	}
	if _, err := fmt.Fprintf(w, "lintgate %s  target=%s  run=%s  (%dms)\n", verdict, r.Target, r.RunID, r.ElapsedMS); err != nil {
		return err
	}
	for _, c := range r.Checkers {
		status := "ok"
		switch {
		case c.Failure != "":
			status = "error: " + c.Failure
		case !c.Success:
			status = fmt.Sprintf("failed (exit %d, %d findings)", c.ExitCode, c.Findings)
		}
		if _, err := fmt.Fprintf(w, "  %-8s %s\n", c.Name, status); err != nil {
			return err
		}
	}
	return nil
}
