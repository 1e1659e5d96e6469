package script

import (
	"fmt"
)

// Separator joins the expected output lines of a Unit.
const Separator = "\n"

// Unit is one item produced by Reader.Next.
//
// At most one of Message and Form is set. A Unit with neither is a pure
// directive, which may still carry the Deferrable or Optional signals.
type Unit struct {
	// Message is text to log, without interacting with the process.
	Message *string

	// Form is the literal line to send to the process.
	Form *string

	// Output is the expected output, a regular expression, as lines
	// joined by Separator.
	Output string

	// Return is the expected return value, matched literally. It is empty
	// if none was declared, see HasReturn.
	Return string

	// HasReturn is true if a return line was declared, even if empty.
	HasReturn bool

	// Soft is the sticky soft flag, as of this unit.
	Soft bool

	// Deferrable signals that the remainder of the script is deferrable.
	Deferrable bool

	// Optional signals that the remainder of the script is optional.
	Optional bool

	// Line is the 1-based number of the last line consumed for this unit.
	Line int
}

// String describes a test unit the way it is reported, e.g.
// `'(+ 1 1)' -> ['',2]`.
func (x Unit) String() string {
	var form string
	if x.Form != nil {
		form = *x.Form
	}
	return fmt.Sprintf("%s -> [%s,%s]", Quote(form), Quote(x.Output), x.Return)
}

// IsTest reports whether x has a form to send.
func (x Unit) IsTest() bool {
	return x.Form != nil
}

// IgnoresResult reports whether any response to x counts as success.
func (x Unit) IgnoresResult() bool {
	return x.Output == `` && x.Return == ``
}
