package script

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Quote renders s as a single or double quoted string literal, escaping
// backslashes, the quote character, and non-printable characters, e.g.
// `'a\nb'` or `"it's"`. This is the quoting used throughout the report.
func Quote(s string) string {
	quote := byte('\'')
	if strings.IndexByte(s, '\'') >= 0 && strings.IndexByte(s, '"') < 0 {
		quote = '"'
	}

	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte(quote)
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == utf8.RuneError && size == 1:
			_, _ = fmt.Fprintf(&b, `\x%02x`, s[i])
		case r == rune(quote) || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < utf8.RuneSelf && (r < 0x20 || r == 0x7f):
			_, _ = fmt.Fprintf(&b, `\x%02x`, r)
		case r < utf8.RuneSelf || unicode.IsPrint(r):
			b.WriteRune(r)
		case r <= 0xff:
			_, _ = fmt.Fprintf(&b, `\x%02x`, r)
		case r <= 0xffff:
			_, _ = fmt.Fprintf(&b, `\u%04x`, r)
		default:
			_, _ = fmt.Fprintf(&b, `\U%08x`, r)
		}
		i += size
	}
	b.WriteByte(quote)
	return b.String()
}

// QuoteList renders values as a bracketed, comma separated list of
// quoted strings, e.g. `['a', 'b']`.
func QuoteList(values []string) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range values {
		if i != 0 {
			b.WriteString(`, `)
		}
		b.WriteString(Quote(v))
	}
	b.WriteByte(']')
	return b.String()
}
