// Package script parses the line-oriented test script format, producing
// one Unit per call to Reader.Next.
//
// The format, one directive per line:
//
//	;;; a comment, ignored
//	;; a message, logged verbatim
//	;>>> soft=True
//	;>>> deferrable=True
//	;>>> optional=True
//	(some input form)
//	;/expected output line 1
//	;/expected output line 2
//	;=>expected return value
//
// Blank lines are ignored. Any other line beginning with a semicolon is a
// syntax error. Any other line is a form, the literal input for one test,
// optionally followed by expected output lines and one expected return
// line.
package script
