package fakerepl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func run(t *testing.T, input string, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var o, e bytes.Buffer
	code = Main(args, strings.NewReader(input), &o, &e)
	return o.String(), e.String(), code
}

func TestREPL_arithmetic(t *testing.T) {
	out, _, code := run(t, "(+ 1 1)\n(- 10 3 2)\n(* 2 3 4)\n")
	assert.Equal(t, 0, code)
	assert.Equal(t,
		"user> (+ 1 1)\n2\nuser> (- 10 3 2)\n5\nuser> (* 2 3 4)\n24\nuser> ",
		out)
}

func TestREPL_noEcho(t *testing.T) {
	out, _, code := run(t, "(+ 1 1)\n", `--no-echo`)
	assert.Equal(t, 0, code)
	assert.Equal(t, "user> \n2\nuser> ", out)
}

func TestREPL_promptBannerCRLF(t *testing.T) {
	out, _, code := run(t, "abc\n", `--prompt`, `mal> `, `--banner`, `Mal [go]`, `--crlf`)
	assert.Equal(t, 0, code)
	assert.Equal(t, "Mal [go]\r\nmal> abc\r\nabc\r\nmal> ", out)
}

func TestREPL_silentStart(t *testing.T) {
	out, _, code := run(t, ``, `--silent-start`)
	assert.Equal(t, 0, code)
	assert.Empty(t, out)
}

func TestREPL_prnAndStderr(t *testing.T) {
	out, errOut, code := run(t, "(prn a b)\n(stderr oops)\n", `--no-echo`)
	assert.Equal(t, 0, code)
	assert.Equal(t, "user> \na b\nnil\nuser> \nnil\nuser> ", out)
	assert.Equal(t, "oops\n", errOut)
}

func TestREPL_exit(t *testing.T) {
	out, _, code := run(t, "(exit 3)\n(+ 1 1)\n", `--no-echo`)
	assert.Equal(t, 3, code)
	assert.Equal(t, "user> \n", out)
}

func TestREPL_arithmeticError(t *testing.T) {
	out, _, _ := run(t, "(+ 1 x)\n", `--no-echo`)
	assert.Contains(t, out, "Error: +: ")
}

func TestREPL_lastLineWithoutNewline(t *testing.T) {
	out, _, code := run(t, "(+ 2 2)", `--no-echo`)
	assert.Equal(t, 0, code)
	assert.Equal(t, "user> \n4\nuser> ", out)
}

func TestREPL_badFlag(t *testing.T) {
	_, errOut, code := run(t, ``, `--bogus`)
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, `fakerepl: error:`)
}

func TestREPL_help(t *testing.T) {
	out, _, code := run(t, ``, `--help`)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, `--prompt`)
}

func TestREPL_getenv(t *testing.T) {
	t.Setenv(`FAKEREPL_TEST_VAR`, `dumb`)
	out, _, _ := run(t, "(getenv FAKEREPL_TEST_VAR)\n", `--no-echo`)
	assert.Equal(t, "user> \n\"dumb\"\nuser> ", out)
}
