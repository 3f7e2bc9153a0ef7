package flake8

// Flake8Config holds configuration for the flake8 checker.
type Flake8Config struct {
	// Args are extra arguments appended to the flake8 invocation.
	Args []string `json:"args,omitempty"`
	// MaxLineLength overrides flake8's line length limit when set.
	MaxLineLength *int `json:"maxLineLength,omitempty"`
	// Select restricts checking to the given code prefixes.
	Select []string `json:"select,omitempty"`
	// Ignore disables the given code prefixes.
	Ignore []string `json:"ignore,omitempty"`
}

// DefaultFlake8Config returns the default configuration: flake8's own
// defaults, no extra arguments. The project's setup.cfg/tox.ini keep
// working because nothing is overridden.
func DefaultFlake8Config() *Flake8Config {
	return &Flake8Config{}
}
