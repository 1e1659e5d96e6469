package script

import (
	"fmt"
)

// SyntaxError is a malformed script line. It is fatal to a run.
type SyntaxError struct {
	// Line is the 1-based line number.
	Line int
	// Text is the offending line.
	Text string
	// Err is the underlying cause, if any.
	Err error
}

func (x *SyntaxError) Error() string {
	if x.Err != nil {
		return fmt.Sprintf("test data error at line %d: %v:\n%s", x.Line, x.Err, x.Text)
	}
	return fmt.Sprintf("test data error at line %d:\n%s", x.Line, x.Text)
}

func (x *SyntaxError) Unwrap() error {
	return x.Err
}
