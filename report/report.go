// Package report writes the human-readable transcript of a run: to
// standard output always, to an append-only log file if configured, and
// it holds the raw interaction trace (the debug file), if configured.
package report

import (
	"fmt"
	"io"
	"os"
)

type (
	// Reporter is a pure output sink. It is not safe for concurrent use,
	// except for the writer returned by Trace, which is used by a single
	// other goroutine.
	Reporter struct {
		out   io.Writer
		log   io.Writer
		trace io.Writer
		err   error
	}

	// Option configures a Reporter.
	Option func(*Reporter)
)

// New returns a Reporter writing to stdout.
func New(stdout io.Writer, opts ...Option) *Reporter {
	x := Reporter{out: stdout}
	for _, opt := range opts {
		opt(&x)
	}
	return &x
}

// WithLogFile receives a copy of everything written by Log, Logf and
// Write.
func WithLogFile(w io.Writer) Option {
	return func(x *Reporter) {
		x.log = w
	}
}

// WithTrace sets the raw interaction trace, see Reporter.Trace.
func WithTrace(w io.Writer) Option {
	return func(x *Reporter) {
		x.trace = w
	}
}

// OpenAppend opens path for appending, creating it if necessary, for use
// as a log file or trace.
func OpenAppend(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	return f, nil
}

// Log writes text followed by a newline.
func (x *Reporter) Log(text string) {
	x.Write(text + "\n")
}

// Logf formats according to a format specifier, then calls Log.
func (x *Reporter) Logf(format string, args ...any) {
	x.Log(fmt.Sprintf(format, args...))
}

// Write writes text as-is, e.g. to continue the current line later.
func (x *Reporter) Write(text string) {
	if x.log != nil {
		x.write(x.log, text)
	}
	x.write(x.out, text)
}

// Print writes text to standard output only.
func (x *Reporter) Print(text string) {
	x.write(x.out, text)
}

// Trace returns the raw interaction trace, or io.Discard.
func (x *Reporter) Trace() io.Writer {
	if x.trace == nil {
		return io.Discard
	}
	return x.trace
}

// Err returns the first write error, if any. Write errors do not stop
// subsequent writes.
func (x *Reporter) Err() error {
	return x.err
}

func (x *Reporter) write(w io.Writer, text string) {
	if _, err := io.WriteString(w, text); err != nil && x.err == nil {
		x.err = fmt.Errorf("report: %w", err)
	}
}
