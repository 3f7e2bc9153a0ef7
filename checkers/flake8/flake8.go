// Package flake8 drives flake8 over a project inside its virtual
// environment. This is the primary gate checker.
package flake8

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/jrossi/lintgate/checkers"
)

// Flake8Checker runs flake8 with the tool's own recursive file discovery.
type Flake8Checker struct {
	config *Flake8Config
}

// NewFlake8Checker creates a checker with default configuration.
func NewFlake8Checker() *Flake8Checker {
	return &Flake8Checker{config: DefaultFlake8Config()}
}

// NewFlake8CheckerWithConfig creates a checker with custom configuration.
func NewFlake8CheckerWithConfig(config *Flake8Config) *Flake8Checker {
	if config == nil {
		config = DefaultFlake8Config()
	}
	return &Flake8Checker{config: config}
}

// Name returns the checker name.
func (c *Flake8Checker) Name() string {
	return "flake8"
}

// SetConfig updates the checker configuration from raw JSON.
func (c *Flake8Checker) SetConfig(config json.RawMessage) error {
	var cfg Flake8Config
	if err := json.Unmarshal(config, &cfg); err != nil {
		return fmt.Errorf("failed to unmarshal flake8 config: %w", err)
	}
	c.config = &cfg
	return nil
}

// Check runs flake8 over the project directory. Violations produce a
// failed result; only the inability to run flake8 at all is an error.
func (c *Flake8Checker) Check(ctx context.Context, proj checkers.Project) (*checkers.Result, error) {
	if proj.Env == nil {
		return nil, fmt.Errorf("flake8 requires a virtual environment")
	}

	path, err := c.resolveTool(proj)
	if err != nil {
		return nil, err
	}

	args := []string{"."}
	if c.config.MaxLineLength != nil {
		args = append(args, fmt.Sprintf("--max-line-length=%d", *c.config.MaxLineLength))
	}
	if len(c.config.Select) > 0 {
		args = append(args, "--select="+strings.Join(c.config.Select, ","))
	}
	if len(c.config.Ignore) > 0 {
		args = append(args, "--extend-ignore="+strings.Join(c.config.Ignore, ","))
	}
	args = append(args, c.config.Args...)

	cmd := exec.CommandContext(ctx, path, args...) // #nosec G204 -- path resolved from the project venv
	cmd.Dir = proj.Dir
	cmd.Env = proj.Env.Environ()

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	exitCode := 0
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("executing flake8: %w", err)
		}
		exitCode = exitErr.ExitCode()
	}

	return &checkers.Result{
		Success:  exitCode == 0,
		ExitCode: exitCode,
		Output:   out.Bytes(),
		Findings: ParseOutput(out.Bytes()),
	}, nil
}

// resolveTool finds the flake8 binary inside the venv, through the tool
// cache when one is attached to the project.
func (c *Flake8Checker) resolveTool(proj checkers.Project) (string, error) {
	if proj.Tools == nil {
		return proj.Env.Look("flake8")
	}

	info, err := proj.Tools.Lookup("flake8", func(name string) (string, error) {
		return proj.Env.Look(name)
	})
	if err != nil {
		return "", err
	}
	if info == nil || !info.Available {
		// Bypass a stale negative entry with a direct look.
		return proj.Env.Look("flake8")
	}
	return info.Path, nil
}

// violationLine matches flake8's default output format:
// path:row:col: CODE message
var violationLine = regexp.MustCompile(`^(.+?):(\d+):(\d+):\s+([A-Z]+\d+)\s+(.*)$`)

// ParseOutput parses flake8's default text format into findings. Lines
// that do not match (tool noise, stderr warnings) are skipped; the raw
// output is preserved separately for pass-through.
func ParseOutput(output []byte) []checkers.Finding {
	var findings []checkers.Finding

	for _, line := range strings.Split(string(output), "\n") {
		m := violationLine.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		row, _ := strconv.Atoi(m[2])
		col, _ := strconv.Atoi(m[3])
		findings = append(findings, checkers.Finding{
			File:     m[1],
			Line:     row,
			Column:   col,
			Severity: severityFor(m[4]),
			Code:     m[4],
			Message:  m[5],
		})
	}

	return findings
}

// severityFor maps flake8 code families onto severities. W rules are
// pycodestyle warnings; everything else fails the gate outright anyway,
// so it reports as error.
func severityFor(code string) string {
	if strings.HasPrefix(code, "W") {
		return "warning"
	}
	return "error"
}
