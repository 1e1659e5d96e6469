package report

import (
	"fmt"
	"strings"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
	"github.com/joeycumines/go-runtest/script"
)

// Failure is one failed test, as listed after the test loop.
type Failure struct {
	Soft bool
	Line int
	// Form is the literal input line.
	Form string
	// Output is the expected output, as declared.
	Output string
	// Return is the expected return value, as declared.
	Return string
	// Expected is the pattern that was reported.
	Expected string
	// Got is the response before the prompt.
	Got string
	// Diff is an optional unified diff, see Diff.
	Diff string
}

func (x Failure) String() string {
	var b strings.Builder
	if x.Soft {
		b.WriteString(`SOFT `)
	}
	_, _ = fmt.Fprintf(&b, "FAILED TEST (line %d): %s -> [%s,%s]:\n", x.Line, x.Form, script.Quote(x.Output), x.Return)
	_, _ = fmt.Fprintf(&b, "    Expected : %s\n", script.Quote(x.Expected))
	_, _ = fmt.Fprintf(&b, "    Got      : %s", script.Quote(x.Got))
	if x.Diff != `` {
		b.WriteString("\n    Diff     :\n")
		b.WriteString(indent(strings.TrimSuffix(x.Diff, "\n"), `      `))
	}
	return b.String()
}

// Summary is the final tally of a run.
type Summary struct {
	Path     string
	SoftFail int
	Fail     int
	Pass     int
	Total    int
}

func (x Summary) String() string {
	return fmt.Sprintf("\nTEST RESULTS (for %s):\n"+
		"  %3d: soft failing tests\n"+
		"  %3d: failing tests\n"+
		"  %3d: passing tests\n"+
		"  %3d: total tests\n",
		x.Path,
		x.SoftFail,
		x.Fail,
		x.Pass,
		x.Total,
	)
}

// Diff renders a unified diff from expected to got, or an empty string if
// they are equal.
func Diff(expected, got string) string {
	if expected == got {
		return ``
	}
	return fmt.Sprint(gotextdiff.ToUnified(
		`expected`,
		`got`,
		expected,
		myers.ComputeEdits(span.URIFromPath(`expected`), expected, got),
	))
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
