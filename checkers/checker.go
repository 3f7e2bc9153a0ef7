package checkers

import (
	"context"

	"github.com/jrossi/lintgate/toolcache"
	"github.com/jrossi/lintgate/venv"
)

// Project is the resolved context a checker runs against.
type Project struct {
	// Dir is the absolute path to the target project directory.
	Dir string
	// Env is the project's virtual environment, nil when a checker does
	// not need one (pure-Go checkers such as docs).
	Env *venv.Env
	// Tools caches tool discovery across checkers and runs.
	Tools *toolcache.Cache
}

// Checker runs one static-analysis pass over a whole project.
type Checker interface {
	// Name returns the checker name for configuration and logging.
	Name() string

	// Check runs the checker against the project. A tool reporting
	// violations is a failed Result, not an error; errors are reserved
	// for the checker itself being unable to run.
	Check(ctx context.Context, proj Project) (*Result, error)
}

// Result contains the outcome of one checker over a project.
type Result struct {
	// Success is false when the underlying tool reported violations.
	Success bool
	// ExitCode is the tool's own exit code, preserved for reporting even
	// though the gate collapses any non-zero code to 1.
	ExitCode int
	// Output is the tool's raw combined output, passed through verbatim.
	Output []byte
	// Findings are the parsed violations, when the output format allows.
	Findings []Finding
}

// Finding is a single parsed violation.
type Finding struct {
	File     string
	Line     int
	Column   int
	Severity string // "error", "warning", "info"
	Code     string // tool rule code, e.g. E501, F401
	Message  string
}

// ErrorCount returns the number of findings with error severity.
func (r *Result) ErrorCount() int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == "error" {
			n++
		}
	}
	return n
}
