// Package fakerepl implements a tiny line-oriented REPL, used as the
// target process in tests.
//
// It understands a handful of forms, e.g. `(+ 1 2)`, `(prn x)`,
// `(getenv TERM)`, `(hang)` and `(exit 3)`, and evaluates any other line
// to itself.
package fakerepl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kong"
)

type config struct {
	Prompt      string `kong:"default='user> ',help='prompt printed before each line is read'"`
	Banner      string `kong:"help='text printed once, before the first prompt'"`
	Echo        bool   `kong:"default=true,negatable,help='echo each input line before its result'"`
	SilentStart bool   `kong:"name=silent-start,help='never print the first prompt'"`
	CRLF        bool   `kong:"name=crlf,help='use CRLF line endings for output'"`
}

type exitPanic int

// Main runs the REPL until stdin is exhausted or an exit form is read,
// returning the process exit code.
func Main(args []string, stdin io.Reader, stdout, stderr io.Writer) (exitCode int) {
	var cfg config

	defer func() {
		if r := recover(); r != nil {
			code, ok := r.(exitPanic)
			if !ok {
				panic(r)
			}
			exitCode = int(code)
		}
	}()

	parser, err := kong.New(&cfg,
		kong.Name(`fakerepl`),
		kong.Description(`A tiny REPL for exercising runtest.`),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { panic(exitPanic(code)) }),
	)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "fakerepl: %v\n", err)
		return 2
	}
	if _, err := parser.Parse(args); err != nil {
		parser.Errorf("%s", err)
		return 2
	}

	r := repl{
		cfg:    cfg,
		stdout: stdout,
		stderr: stderr,
		eol:    "\n",
	}
	if cfg.CRLF {
		r.eol = "\r\n"
	}
	return r.run(stdin)
}

type repl struct {
	cfg    config
	stdout io.Writer
	stderr io.Writer
	eol    string
}

func (r *repl) run(stdin io.Reader) int {
	if r.cfg.Banner != `` {
		r.print(r.cfg.Banner + r.eol)
	}
	if !r.cfg.SilentStart {
		r.print(r.cfg.Prompt)
	}

	in := bufio.NewReader(stdin)
	for {
		line, err := in.ReadString('\n')
		if line == `` && err != nil {
			return 0
		}
		line = strings.TrimRight(line, "\r\n")

		if r.cfg.Echo {
			r.print(line + r.eol)
		} else {
			r.print(r.eol)
		}

		result, code, exit := r.eval(line)
		if exit {
			return code
		}
		if result != `` {
			r.print(result + r.eol)
		}
		r.print(r.cfg.Prompt)

		if err != nil {
			return 0
		}
	}
}

// eval returns the text to print for line, or an exit code.
func (r *repl) eval(line string) (result string, code int, exit bool) {
	line = strings.TrimSpace(line)
	if line == `` {
		return ``, 0, false
	}
	if !strings.HasPrefix(line, `(`) || !strings.HasSuffix(line, `)`) {
		return line, 0, false
	}

	fields := strings.Fields(line[1 : len(line)-1])
	if len(fields) == 0 {
		return `()`, 0, false
	}
	op, operands := fields[0], fields[1:]

	switch op {
	case `+`, `-`, `*`:
		v, err := arithmetic(op, operands)
		if err != nil {
			return `Error: ` + err.Error(), 0, false
		}
		return strconv.Itoa(v), 0, false

	case `prn`:
		r.print(strings.Join(operands, ` `) + r.eol)
		return `nil`, 0, false

	case `getenv`:
		if len(operands) == 1 {
			return strconv.Quote(os.Getenv(operands[0])), 0, false
		}
		return `nil`, 0, false

	case `stderr`:
		_, _ = io.WriteString(r.stderr, strings.Join(operands, ` `)+r.eol)
		return `nil`, 0, false

	case `hang`:
		for {
			time.Sleep(time.Hour)
		}

	case `exit`:
		if len(operands) == 1 {
			if v, err := strconv.Atoi(operands[0]); err == nil {
				return ``, v, true
			}
		}
		return ``, 0, true
	}

	return line, 0, false
}

func arithmetic(op string, operands []string) (int, error) {
	if len(operands) == 0 {
		return 0, fmt.Errorf("%s: no operands", op)
	}
	var result int
	for i, s := range operands {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
		if i == 0 {
			result = v
			continue
		}
		switch op {
		case `+`:
			result += v
		case `-`:
			result -= v
		case `*`:
			result *= v
		}
	}
	return result, nil
}

func (r *repl) print(s string) {
	_, _ = io.WriteString(r.stdout, s)
}
