package runner

import (
	"fmt"
	"time"
)

// FatalError aborts a run, e.g. if the initial prompt is not observed, or
// the process cannot be written to.
type FatalError struct {
	// Op is the phase of the run, e.g. "start", "pre-eval" or "test".
	Op string
	// Line is the script line of the test, if any.
	Line int
	Err  error
}

func (x *FatalError) Error() string {
	if x.Line > 0 {
		return fmt.Sprintf("runner: %s (line %d): %v", x.Op, x.Line, x.Err)
	}
	return fmt.Sprintf("runner: %s: %v", x.Op, x.Err)
}

func (x *FatalError) Unwrap() error {
	return x.Err
}

// TimeoutError is a test that did not complete within the test timeout.
// The test is counted as a failure, and the run is then aborted.
type TimeoutError struct {
	Line    int
	Timeout time.Duration
	Err     error
}

func (x *TimeoutError) Error() string {
	return fmt.Sprintf("TIMEOUT (line %d): no prompt within %s", x.Line, x.Timeout)
}

func (x *TimeoutError) Unwrap() error {
	return x.Err
}
