package lintgate

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// AppConfig represents the complete configuration for lintgate.
type AppConfig struct {
	// Target is the project directory the gate runs against.
	Target *string `json:"target,omitempty"`
	// VenvPath is the virtual environment location, relative to the
	// target unless absolute.
	VenvPath *string `json:"venvPath,omitempty"`
	// Gate names the checkers that decide pass/fail, in report order.
	Gate []string `json:"gate,omitempty"`

	Parallel *ParallelConfig `json:"parallel,omitempty"`
	Timeout  *Duration       `json:"timeout,omitempty"`

	// Checkers holds per-checker configuration keyed by checker name.
	Checkers map[string]CheckerConfig `json:"checkers,omitempty"`
}

// ParallelConfig controls checker fan-out.
type ParallelConfig struct {
	MaxWorkers      *int  `json:"maxWorkers,omitempty"`
	DisableParallel *bool `json:"disableParallel,omitempty"`
}

// CheckerConfig represents configuration for a specific checker.
type CheckerConfig struct {
	Enabled *bool           `json:"enabled,omitempty"`
	Config  json.RawMessage `json:"config,omitempty"`
}

// Duration is a wrapper around time.Duration accepting both Go duration
// strings and raw nanosecond numbers in JSON.
type Duration struct {
	time.Duration
}

// UnmarshalJSON implements json.Unmarshaler for Duration.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("invalid duration type: %T", v)
	}
}

// MarshalJSON implements json.Marshaler for Duration.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Duration.String())
}

// NewAppConfig creates an AppConfig with the built-in defaults: current
// directory, a venv named "venv", flake8 as the sole gate checker.
func NewAppConfig() *AppConfig {
	target := "."
	venvPath := "venv"
	return &AppConfig{
		Target:   &target,
		VenvPath: &venvPath,
		Gate:     []string{"flake8"},
		Checkers: make(map[string]CheckerConfig),
	}
}

// Merge combines two configs, with other taking precedence.
func (c *AppConfig) Merge(other *AppConfig) {
	if other == nil {
		return
	}

	if other.Target != nil {
		c.Target = other.Target
	}
	if other.VenvPath != nil {
		c.VenvPath = other.VenvPath
	}
	if other.Gate != nil {
		c.Gate = other.Gate
	}
	if other.Timeout != nil {
		c.Timeout = other.Timeout
	}

	if other.Parallel != nil {
		if c.Parallel == nil {
			c.Parallel = &ParallelConfig{}
		}
		if other.Parallel.MaxWorkers != nil {
			c.Parallel.MaxWorkers = other.Parallel.MaxWorkers
		}
		if other.Parallel.DisableParallel != nil {
			c.Parallel.DisableParallel = other.Parallel.DisableParallel
		}
	}

	if c.Checkers == nil {
		c.Checkers = make(map[string]CheckerConfig)
	}
	for name, checkerConfig := range other.Checkers {
		existing, exists := c.Checkers[name]
		if !exists {
			c.Checkers[name] = checkerConfig
			continue
		}
		if checkerConfig.Enabled != nil {
			existing.Enabled = checkerConfig.Enabled
		}
		if checkerConfig.Config != nil {
			existing.Config = checkerConfig.Config
		}
		c.Checkers[name] = existing
	}
}

// GetCheckerConfig returns the raw configuration for a specific checker.
func (c *AppConfig) GetCheckerConfig(name string) (json.RawMessage, bool) {
	if c.Checkers == nil {
		return nil, false
	}
	checkerConfig, ok := c.Checkers[name]
	if !ok || checkerConfig.Config == nil {
		return nil, false
	}
	return checkerConfig.Config, true
}

// IsCheckerEnabled reports whether a checker should run. Checkers named in
// the gate default to enabled unless explicitly disabled.
func (c *AppConfig) IsCheckerEnabled(name string) bool {
	if c.Checkers == nil {
		return true
	}
	checkerConfig, ok := c.Checkers[name]
	if !ok || checkerConfig.Enabled == nil {
		return true
	}
	return *checkerConfig.Enabled
}
