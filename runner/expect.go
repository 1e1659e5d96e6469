package runner

import (
	"regexp"

	"github.com/joeycumines/go-runtest/script"
)

// Expectation matches a response against the expected output and return
// value of a test, in either of two forms:
//
//  1. anything, a separator, then the output and return value
//  2. anything, a separator, anything, another separator, then the output
//     and return value
//
// The second form tolerates terminals that echo the form twice. The
// output is a regular expression, falling back to a literal match if it
// doesn't compile, and the return value is always literal.
type Expectation struct {
	source   string
	patterns [2]*regexp.Regexp
}

// NewExpectation builds the Expectation for output and ret.
func NewExpectation(output, ret string) *Expectation {
	build := func(output string) [2]string {
		tail := output + regexp.QuoteMeta(ret)
		return [2]string{
			`.*` + script.Separator + tail,
			`.*` + script.Separator + `.*` + script.Separator + tail,
		}
	}

	sources := build(output)
	x := Expectation{source: sources[0]}
	for i, source := range sources {
		re, err := regexp.Compile(`(?s)` + source)
		if err != nil {
			return newLiteralExpectation(output, ret)
		}
		x.patterns[i] = re
	}
	return &x
}

func newLiteralExpectation(output, ret string) *Expectation {
	x := NewExpectation(regexp.QuoteMeta(output), ret)
	x.source = `.*` + script.Separator + output + regexp.QuoteMeta(ret)
	return x
}

// Match reports whether either form matches anywhere in s.
func (x *Expectation) Match(s string) bool {
	return x.patterns[0].MatchString(s) || x.patterns[1].MatchString(s)
}

// String returns the first form, as reported on failure.
func (x *Expectation) String() string {
	return x.source
}
