package runner

import (
	"time"
)

// Config controls a run.
type Config struct {
	// TestTimeout bounds the wait for the prompt after each form, and
	// after the pre-eval line.
	TestTimeout time.Duration

	// StartTimeout bounds the wait for the initial prompt.
	StartTimeout time.Duration

	// PreEval is sent once, after the initial prompt, if non-empty.
	PreEval string

	// Hard reports soft failures as (hard) failures.
	Hard bool

	// Deferrable runs the tests following a deferrable=True directive.
	// If false, the run stops at the directive.
	Deferrable bool

	// Optional runs the tests following an optional=True directive.
	// If false, the run stops at the directive.
	Optional bool

	// ScriptPath is the script path, as shown in the summary.
	ScriptPath string

	// Diff adds a unified diff to each reported failure.
	Diff bool
}

// DefaultConfig returns the defaults used by the command line.
func DefaultConfig() Config {
	return Config{
		TestTimeout:  20 * time.Second,
		StartTimeout: 10 * time.Second,
		Deferrable:   true,
		Optional:     true,
	}
}
