package script

import (
	"fmt"
	"strings"
)

// Directive is the result of parsing the body of a `;>>> ` line. Each
// field is nil unless the corresponding key was assigned.
type Directive struct {
	Soft       *bool
	Deferrable *bool
	Optional   *bool
}

// ParseDirective parses one or more `key=value` assignments, separated
// by `;` or `,`. The recognised keys are soft, deferrable and optional,
// and the values are boolean literals (True, False, true, false, 1, 0).
// Unrecognised keys are ignored, but must still be well-formed. A later
// assignment to the same key wins.
func ParseDirective(s string) (Directive, error) {
	var d Directive
	for _, assignment := range strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ',' }) {
		assignment = strings.TrimSpace(assignment)
		if assignment == `` {
			continue
		}

		key, value, ok := strings.Cut(assignment, `=`)
		if !ok {
			return Directive{}, fmt.Errorf("expected key=value, got %q", assignment)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if !isIdentifier(key) {
			return Directive{}, fmt.Errorf("invalid key %q", key)
		}

		v, err := parseBool(value)
		if err != nil {
			return Directive{}, fmt.Errorf("%s: %w", key, err)
		}

		switch key {
		case `soft`:
			d.Soft = &v
		case `deferrable`:
			d.Deferrable = &v
		case `optional`:
			d.Optional = &v
		}
	}
	return d, nil
}

func parseBool(s string) (bool, error) {
	switch s {
	case `True`, `true`, `1`:
		return true, nil
	case `False`, `false`, `0`:
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}

func isIdentifier(s string) bool {
	if s == `` {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i != 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}
