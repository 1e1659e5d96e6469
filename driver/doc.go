// Package driver runs a single interactive, line-oriented child process
// (a REPL) and exchanges lines with it, framing the output by a recurring
// prompt rather than by message boundaries.
//
// A [Driver] owns the child, its input and output handles, and a buffer
// of output that has not yet been consumed by [Driver.ReadToPrompt]. A
// background goroutine drains the child's output into that buffer, so the
// child never blocks on a full pipe, and [Driver.ReadToPrompt] blocks only
// until a prompt pattern matches or its deadline elapses.
//
// By default the child's standard output and standard error share a
// single pipe. [WithPTY] attaches the child to a pseudo-terminal instead,
// in which case the terminal's echo of each input line shows up in the
// output (see [WithEcho]).
//
// Prompt patterns must be prefix-monotonic: if a pattern matches some
// prefix of the output, it must also match every longer prefix. Patterns
// without end anchors (`$`, `\z`, trailing `\b`) have this property.
package driver
