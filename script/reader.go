package script

import (
	"fmt"
	"os"
	"strings"
)

const (
	markerComment   = `;;;`
	markerMessage   = `;;`
	markerDirective = `;>>> `
	markerOutput    = `;/`
	markerReturn    = `;=>`
)

// Reader is a forward-only cursor over the lines of a script.
type Reader struct {
	lines []string
	// line is the 1-based number of the last consumed line
	line int
	soft bool
}

// NewReader splits text on "\n", preserving anything else, including
// carriage returns, as written.
func NewReader(text string) *Reader {
	return &Reader{lines: strings.Split(text, "\n")}
}

// Load reads the script at path.
func Load(path string) (*Reader, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("script: %w", err)
	}
	return NewReader(string(b)), nil
}

// Line returns the 1-based number of the last consumed line, or 0.
func (x *Reader) Line() int {
	return x.line
}

// Soft returns the current value of the sticky soft flag.
func (x *Reader) Soft() bool {
	return x.soft
}

// Next consumes lines until it can produce a unit, returning false once
// the script is exhausted. Errors are of type *SyntaxError, and the
// Reader must not be used after one is returned.
func (x *Reader) Next() (Unit, bool, error) {
	for len(x.lines) != 0 {
		line := x.consume()

		switch {
		case strings.TrimSpace(line) == ``:
			continue

		case strings.HasPrefix(line, markerComment):
			continue

		case line == markerMessage:
			return x.message(``), true, nil

		case strings.HasPrefix(line, markerMessage+` `):
			return x.message(line[len(markerMessage)+1:]), true, nil

		case strings.HasPrefix(line, markerDirective):
			d, err := ParseDirective(line[len(markerDirective):])
			if err != nil {
				return Unit{}, false, &SyntaxError{Line: x.line, Text: line, Err: err}
			}
			if d.Soft != nil {
				x.soft = *d.Soft
			}
			if d.Deferrable != nil && *d.Deferrable {
				return Unit{Soft: x.soft, Deferrable: true, Line: x.line}, true, nil
			}
			if d.Optional != nil && *d.Optional {
				return Unit{Soft: x.soft, Optional: true, Line: x.line}, true, nil
			}
			continue

		case strings.HasPrefix(line, `;`):
			return Unit{}, false, &SyntaxError{Line: x.line, Text: line}
		}

		return x.test(line), true, nil
	}

	return Unit{}, false, nil
}

func (x *Reader) consume() string {
	line := x.lines[0]
	x.lines = x.lines[1:]
	x.line++
	return line
}

func (x *Reader) message(text string) Unit {
	return Unit{Message: &text, Soft: x.soft, Line: x.line}
}

// test consumes the output and return lines following form.
func (x *Reader) test(form string) Unit {
	unit := Unit{Form: &form, Soft: x.soft}

	var output strings.Builder
	for len(x.lines) != 0 {
		line := x.lines[0]
		if strings.HasPrefix(line, markerReturn) {
			x.consume()
			unit.Return = line[len(markerReturn):]
			unit.HasReturn = true
			break
		}
		if !strings.HasPrefix(line, markerOutput) {
			break
		}
		x.consume()
		output.WriteString(line[len(markerOutput):])
		output.WriteString(Separator)
	}

	unit.Output = output.String()
	if !unit.HasReturn {
		unit.Output = strings.TrimSuffix(unit.Output, Separator)
	}
	unit.Line = x.line

	return unit
}
