// Package ruff drives ruff over a project as a supplementary checker.
// Unlike flake8's text output, ruff emits structured JSON diagnostics.
package ruff

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/goccy/go-json"

	"github.com/jrossi/lintgate/checkers"
)

// RuffChecker runs `ruff check` with JSON output over a project.
type RuffChecker struct {
	config *RuffConfig
}

// Diagnostic represents a single entry of ruff's JSON output.
type Diagnostic struct {
	Code     string    `json:"code"`
	Message  string    `json:"message"`
	Filename string    `json:"filename"`
	Location *Location `json:"location"`
	End      *Location `json:"end_location"`
}

// Location is a position in a file.
type Location struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// NewRuffChecker creates a checker with default configuration.
func NewRuffChecker() *RuffChecker {
	return &RuffChecker{config: DefaultRuffConfig()}
}

// NewRuffCheckerWithConfig creates a checker with custom configuration.
func NewRuffCheckerWithConfig(config *RuffConfig) *RuffChecker {
	if config == nil {
		config = DefaultRuffConfig()
	}
	return &RuffChecker{config: config}
}

// Name returns the checker name.
func (c *RuffChecker) Name() string {
	return "ruff"
}

// SetConfig updates the checker configuration from raw JSON.
func (c *RuffChecker) SetConfig(config json.RawMessage) error {
	var cfg RuffConfig
	if err := json.Unmarshal(config, &cfg); err != nil {
		return fmt.Errorf("failed to unmarshal ruff config: %w", err)
	}
	c.config = &cfg
	return nil
}

// Check runs ruff over the project directory.
func (c *RuffChecker) Check(ctx context.Context, proj checkers.Project) (*checkers.Result, error) {
	if proj.Env == nil {
		return nil, fmt.Errorf("ruff requires a virtual environment")
	}

	path, err := c.resolveTool(proj)
	if err != nil {
		return nil, err
	}

	args := []string{"check", "--output-format", "json"}
	args = append(args, c.config.Args...)
	args = append(args, ".")

	cmd := exec.CommandContext(ctx, path, args...) // #nosec G204 -- path resolved from the project venv
	cmd.Dir = proj.Dir
	cmd.Env = proj.Env.Environ()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// ruff exits 1 when diagnostics exist, 2 on its own errors.
	exitCode := 0
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("executing ruff: %w", err)
		}
		exitCode = exitErr.ExitCode()
	}

	findings, err := ParseOutput(stdout.Bytes())
	if err != nil && exitCode <= 1 {
		return nil, fmt.Errorf("failed to parse ruff output: %w", err)
	}

	output := append(stdout.Bytes(), stderr.Bytes()...)

	return &checkers.Result{
		Success:  exitCode == 0,
		ExitCode: exitCode,
		Output:   output,
		Findings: findings,
	}, nil
}

func (c *RuffChecker) resolveTool(proj checkers.Project) (string, error) {
	if proj.Tools == nil {
		return proj.Env.Look("ruff")
	}

	info, err := proj.Tools.Lookup("ruff", func(name string) (string, error) {
		return proj.Env.Look(name)
	})
	if err != nil {
		return "", err
	}
	if info == nil || !info.Available {
		return proj.Env.Look("ruff")
	}
	return info.Path, nil
}

// ParseOutput decodes ruff's JSON diagnostics into findings.
func ParseOutput(output []byte) ([]checkers.Finding, error) {
	if len(bytes.TrimSpace(output)) == 0 {
		return nil, nil
	}

	var diags []Diagnostic
	if err := json.Unmarshal(output, &diags); err != nil {
		return nil, err
	}

	findings := make([]checkers.Finding, 0, len(diags))
	for _, d := range diags {
		f := checkers.Finding{
			File:     d.Filename,
			Severity: "error",
			Code:     d.Code,
			Message:  d.Message,
		}
		if d.Location != nil {
			f.Line = d.Location.Row
			f.Column = d.Location.Column
		}
		findings = append(findings, f)
	}

	return findings, nil
}
