package ruff

// RuffConfig holds configuration for the ruff checker.
type RuffConfig struct {
	// Args are extra arguments inserted before the target path.
	Args []string `json:"args,omitempty"`
}

// DefaultRuffConfig returns the default configuration. Rule selection is
// left to the project's own pyproject.toml.
func DefaultRuffConfig() *RuffConfig {
	return &RuffConfig{}
}
