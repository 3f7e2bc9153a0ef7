package lintgate

// ExitCode is the process exit status surfaced to the caller, typically a
// CI pipeline.
type ExitCode int

const (
	// ExitSuccess means every gate checker passed.
	ExitSuccess ExitCode = 0
	// ExitLintFailure means a lint tool reported violations. The tool's
	// own non-zero code is collapsed to 1 on purpose; CI only needs the
	// verdict, the detail lives in the passed-through output.
	ExitLintFailure ExitCode = 1
	// ExitUsageError means flags or configuration were invalid.
	ExitUsageError ExitCode = 2
	// ExitEnvironmentError means the target directory or its virtual
	// environment could not be resolved, or a required tool is missing.
	ExitEnvironmentError ExitCode = 3
)
