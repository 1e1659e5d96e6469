// Package exitcodes defines the exit codes used by runtest.
package exitcodes

// Exit code constants used by runtest.
//
// * Success (0): every test passed, or only soft failures occurred
// * Failure (1): one or more hard failures, or a fatal run error (script
// syntax error, spawn failure, missing initial prompt, test timeout)
// * Usage (2): the command line could not be parsed
const (
	Success = 0
	Failure = 1
	Usage   = 2
)
