package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestNew(t *testing.T) {
	rep := New("/srv/app")

	if rep.RunID == "" {
		t.Error("expected a run ID")
	}
	if rep.Target != "/srv/app" {
		t.Errorf("Target = %q, want %q", rep.Target, "/srv/app")
	}
	if rep.StartedAt.IsZero() {
		t.Error("expected StartedAt to be stamped")
	}
	if len(rep.Checkers) != 0 {
		t.Errorf("expected no checkers yet, got %d", len(rep.Checkers))
	}
}

func TestReport_RunIDsDiffer(t *testing.T) {
	if New("a").RunID == New("a").RunID {
		t.Error("expected distinct run IDs")
	}
}

func TestReport_AddFinish(t *testing.T) {
	rep := New(".")
	rep.Add(CheckerReport{Name: "flake8", Success: true})
	rep.Add(CheckerReport{Name: "docs", Success: false, ExitCode: 1, Findings: 3, Errors: 3})
	rep.Finish(false)

	if len(rep.Checkers) != 2 {
		t.Fatalf("Checkers = %d, want 2", len(rep.Checkers))
	}
	if rep.Passed {
		t.Error("expected Passed to be false")
	}
	if rep.ElapsedMS < 0 {
		t.Errorf("ElapsedMS = %d, want >= 0", rep.ElapsedMS)
	}
}

func TestReport_WriteJSON(t *testing.T) {
	rep := New("/srv/app")
	rep.Add(CheckerReport{Name: "flake8", Success: false, ExitCode: 2, Failure: ""})
	rep.Finish(false)

	var buf bytes.Buffer
	if err := rep.WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Error("expected trailing newline")
	}

	var decoded Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.RunID != rep.RunID {
		t.Errorf("RunID = %q, want %q", decoded.RunID, rep.RunID)
	}
	if len(decoded.Checkers) != 1 || decoded.Checkers[0].ExitCode != 2 {
		t.Errorf("Checkers = %+v, want the recorded exit code", decoded.Checkers)
	}
}

func TestReport_WriteText(t *testing.T) {
	rep := New(".")
	rep.Add(CheckerReport{Name: "flake8", Success: true})
	rep.Add(CheckerReport{Name: "ruff", Success: false, ExitCode: 1, Findings: 2})
	rep.Add(CheckerReport{Name: "docs", Failure: "walking tree: permission denied"})
	rep.Finish(false)

	var buf bytes.Buffer
	if err := rep.WriteText(&buf); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "lintgate FAIL") {
		t.Errorf("missing verdict line in %q", out)
	}
	if !strings.Contains(out, "failed (exit 1, 2 findings)") {
		t.Errorf("missing failed checker line in %q", out)
	}
	if !strings.Contains(out, "error: walking tree") {
		t.Errorf("missing errored checker line in %q", out)
	}
}

func TestReport_WriteTextPass(t *testing.T) {
	rep := New(".")
	rep.Add(CheckerReport{Name: "flake8", Success: true})
	rep.Finish(true)

	var buf bytes.Buffer
	if err := rep.WriteText(&buf); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}
	if !strings.Contains(buf.String(), "lintgate PASS") {
		t.Errorf("missing PASS verdict in %q", buf.String())
	}
}
