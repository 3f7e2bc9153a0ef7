// Package lintgate runs static-analysis gates over Python backend projects.
// It resolves the project's virtual environment explicitly, executes the
// configured checkers, passes their output through untouched, and collapses
// any lint failure into a single non-zero exit status.
package lintgate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"

	"github.com/jrossi/lintgate/checkers"
	"github.com/jrossi/lintgate/checkers/docs"
	"github.com/jrossi/lintgate/checkers/flake8"
	"github.com/jrossi/lintgate/checkers/ruff"
	"github.com/jrossi/lintgate/report"
	"github.com/jrossi/lintgate/toolcache"
	"github.com/jrossi/lintgate/venv"
)

var (
	// ErrTargetNotFound indicates the target project directory is absent.
	ErrTargetNotFound = errors.New("target directory not found")
	// ErrUnknownChecker indicates the gate names a checker that does not
	// exist.
	ErrUnknownChecker = errors.New("unknown checker")
	// ErrBadConfig indicates per-checker configuration could not be
	// applied; a configuration mistake, not an environment problem.
	ErrBadConfig = errors.New("invalid checker configuration")
)

// configurable is implemented by checkers that accept raw JSON config.
type configurable interface {
	SetConfig(config json.RawMessage) error
}

// Runner orchestrates a single gate run.
type Runner struct {
	config  *AppConfig
	timeout time.Duration
	stdout  io.Writer
	logger  *log.Entry
}

// NewRunner creates a runner for the given configuration. A nil config
// uses the built-in defaults.
func NewRunner(config *AppConfig) *Runner {
	if config == nil {
		config = NewAppConfig()
	}
	r := &Runner{
		config: config,
		stdout: os.Stdout,
		logger: log.WithField("component", "runner"),
	}
	if config.Timeout != nil {
		r.timeout = config.Timeout.Duration
	}
	return r
}

// SetOutput redirects the pass-through stream, used by tests and by
// callers that capture tool output.
func (r *Runner) SetOutput(w io.Writer) {
	r.stdout = w
}

// SetLogger replaces the diagnostic logger.
func (r *Runner) SetLogger(logger *log.Entry) {
	r.logger = logger
}

// SetTimeout overrides the run timeout. Zero disables the deadline.
func (r *Runner) SetTimeout(timeout time.Duration) {
	r.timeout = timeout
}

// Run executes the gate. The returned report is non-nil whenever the run
// got far enough to execute checkers; the error covers setup failures and
// checker execution failures, never plain lint findings.
func (r *Runner) Run(ctx context.Context) (*report.Report, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	target, err := r.resolveTarget()
	if err != nil {
		return nil, err
	}
	logger := r.logger.WithField("target", target)

	gate := r.config.Gate
	if len(gate) == 0 {
		gate = []string{"flake8"}
	}

	cs, err := r.buildCheckers(gate)
	if err != nil {
		return nil, err
	}
	if len(cs) == 0 {
		return nil, fmt.Errorf("%w: every gate checker is disabled", ErrUnknownChecker)
	}

	proj := checkers.Project{Dir: target}

	if needsEnv(cs) {
		venvPath := "venv"
		if r.config.VenvPath != nil {
			venvPath = *r.config.VenvPath
		}
		env, err := venv.Resolve(target, venvPath)
		if err != nil {
			return nil, fmt.Errorf("activating environment: %w", err)
		}
		proj.Env = env
		logger = logger.WithField("venv", env.Root)
	}

	if tools, err := toolcache.Open(target); err == nil {
		proj.Tools = tools
	} else {
		logger.WithError(err).Warn("tool cache unavailable, discovery will not be cached")
	}

	maxWorkers := 0
	if r.config.Parallel != nil {
		if r.config.Parallel.DisableParallel != nil && *r.config.Parallel.DisableParallel {
			maxWorkers = 1
		} else if r.config.Parallel.MaxWorkers != nil {
			maxWorkers = *r.config.Parallel.MaxWorkers
		}
	}

	rep := report.New(target)
	logger.WithField("run", rep.RunID).WithField("checkers", len(cs)).Debug("starting gate run")

	executor := checkers.NewParallelExecutor(maxWorkers)
	outcomes := executor.Run(ctx, cs, proj)

	var merr *multierror.Error
	for _, o := range outcomes {
		cr := report.CheckerReport{Name: o.Checker}

		if o.Err != nil {
			cr.Failure = o.Err.Error()
			merr = multierror.Append(merr, fmt.Errorf("%s: %w", o.Checker, o.Err))
			rep.Add(cr)
			continue
		}

		// The tool's own output passes through byte-for-byte.
		if len(o.Result.Output) > 0 {
			if _, err := r.stdout.Write(o.Result.Output); err != nil {
				merr = multierror.Append(merr, fmt.Errorf("writing %s output: %w", o.Checker, err))
			}
		}

		cr.Success = o.Result.Success
		cr.ExitCode = o.Result.ExitCode
		cr.Findings = len(o.Result.Findings)
		cr.Errors = o.Result.ErrorCount()
		rep.Add(cr)

		if !o.Result.Success {
			logger.WithFields(log.Fields{
				"checker":  o.Checker,
				"exitCode": o.Result.ExitCode,
				"findings": len(o.Result.Findings),
			}).Debug("checker failed")
		}
	}

	rep.Finish(checkers.Passed(outcomes))
	return rep, merr.ErrorOrNil()
}

// resolveTarget validates the configured target directory.
func (r *Runner) resolveTarget() (string, error) {
	target := "."
	if r.config.Target != nil {
		target = *r.config.Target
	}

	abs, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("resolving target %s: %w", target, err)
	}

	info, err := os.Stat(abs)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("%w: %s", ErrTargetNotFound, abs)
	}
	if err != nil {
		return "", fmt.Errorf("statting target %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrTargetNotFound, abs)
	}

	return abs, nil
}

// buildCheckers instantiates the named gate checkers, applying any
// per-checker configuration and dropping the explicitly disabled ones.
func (r *Runner) buildCheckers(gate []string) ([]checkers.Checker, error) {
	cs := make([]checkers.Checker, 0, len(gate))

	for _, name := range gate {
		if !r.config.IsCheckerEnabled(name) {
			continue
		}

		var c checkers.Checker
		switch name {
		case "flake8":
			c = flake8.NewFlake8Checker()
		case "ruff":
			c = ruff.NewRuffChecker()
		case "docs":
			c = docs.NewDocsChecker()
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownChecker, name)
		}

		if raw, ok := r.config.GetCheckerConfig(name); ok {
			if cfg, ok := c.(configurable); ok {
				if err := cfg.SetConfig(raw); err != nil {
					return nil, fmt.Errorf("configuring %s: %w: %w", name, ErrBadConfig, err)
				}
			}
		}

		cs = append(cs, c)
	}

	return cs, nil
}

// needsEnv reports whether any gate checker requires a virtual environment.
func needsEnv(cs []checkers.Checker) bool {
	for _, c := range cs {
		if c.Name() != "docs" {
			return true
		}
	}
	return false
}

// ExitCodeFor maps a run outcome onto the process exit status contract:
// 0 pass, 1 lint failure, 2 usage/config error, 3 environment error.
func ExitCodeFor(rep *report.Report, err error) ExitCode {
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownChecker),
			errors.Is(err, ErrBadConfig):
			return ExitUsageError
		case errors.Is(err, ErrTargetNotFound),
			errors.Is(err, venv.ErrNotFound),
			errors.Is(err, venv.ErrCorrupt),
			errors.Is(err, venv.ErrToolMissing):
			return ExitEnvironmentError
		default:
			return ExitEnvironmentError
		}
	}
	if rep != nil && !rep.Passed {
		return ExitLintFailure
	}
	return ExitSuccess
}
