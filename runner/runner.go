// Package runner drives a scripted conversation with a REPL: it pulls
// units from a script, sends each form to the process, waits for the next
// prompt, and checks the response against the expected output and return
// value.
package runner

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/joeycumines/go-runtest/internal/exitcodes"
	"github.com/joeycumines/go-runtest/report"
	"github.com/joeycumines/go-runtest/script"
	"github.com/joeycumines/logiface"
)

var (
	// initialPrompt is the prompt expected at start, and after PreEval
	initialPrompt = regexp.MustCompile(`[^\s()<>]+> `)

	// testPrompts are the prompts expected after each test form
	testPrompts = []*regexp.Regexp{
		regexp.MustCompile(`\r\n[^\s()<>]+> `),
		regexp.MustCompile(`\n[^\s()<>]+> `),
	}
)

const (
	skipDeferrable = "\nSkipping deferrable and optional tests"
	skipOptional   = "\nSkipping optional tests"
)

type (
	// Session is the process being tested, see driver.Driver.
	Session interface {
		ReadToPrompt(ctx context.Context, timeout time.Duration, prompts ...*regexp.Regexp) (string, error)
		WriteLine(text string) error
		Buffered() string
	}

	// UnitSource produces the units of a script, see script.Reader.
	UnitSource interface {
		Next() (script.Unit, bool, error)
	}

	// Runner runs one script against one Session.
	Runner struct {
		cfg      Config
		session  Session
		units    UnitSource
		reporter *report.Reporter
		logger   *logiface.Logger[logiface.Event]
	}

	// Option configures a Runner.
	Option func(*Runner)

	// Stats counts test outcomes. Pass+Fail+SoftFail == Total after every
	// test.
	Stats struct {
		Total    int
		Pass     int
		Fail     int
		SoftFail int
	}

	// Result is the outcome of Runner.Run.
	Result struct {
		Stats    Stats
		Failures []report.Failure
	}
)

// WithLogger sets the diagnostic logger.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return func(x *Runner) {
		x.logger = logger
	}
}

// New returns a Runner. The session must already be started.
func New(cfg Config, session Session, units UnitSource, reporter *report.Reporter, opts ...Option) *Runner {
	x := Runner{
		cfg:      cfg,
		session:  session,
		units:    units,
		reporter: reporter,
	}
	for _, opt := range opts {
		opt(&x)
	}
	return &x
}

// ExitCode returns the process exit code for a completed run.
func (x Result) ExitCode() int {
	if x.Stats.Fail > 0 {
		return exitcodes.Failure
	}
	return exitcodes.Success
}

// Summary returns the final tally, for the script at path.
func (x Stats) Summary(path string) report.Summary {
	return report.Summary{
		Path:     path,
		SoftFail: x.SoftFail,
		Fail:     x.Fail,
		Pass:     x.Pass,
		Total:    x.Total,
	}
}

// Run waits for the initial prompt, sends the pre-eval line (if any), then
// runs every test, finally reporting the failures and a summary.
//
// A non-nil error means the run was aborted, by a *script.SyntaxError,
// *TimeoutError, or *FatalError, and has already been reported, along
// with the unconsumed output. The Result reflects the tests run so far.
func (x *Runner) Run(ctx context.Context) (Result, error) {
	var result Result

	if err := x.start(ctx); err != nil {
		return result, x.abort(err)
	}

	for {
		unit, ok, err := x.units.Next()
		if err != nil {
			return result, x.abort(err)
		}
		if !ok {
			break
		}

		if unit.Deferrable && !x.cfg.Deferrable {
			x.reporter.Log(skipDeferrable)
			break
		}
		if unit.Optional && !x.cfg.Optional {
			x.reporter.Log(skipOptional)
			break
		}

		if unit.Message != nil {
			x.reporter.Log(*unit.Message)
			continue
		}

		if !unit.IsTest() {
			continue
		}

		if err := x.test(ctx, unit, &result); err != nil {
			return result, x.abort(err)
		}
	}

	if len(result.Failures) != 0 {
		x.reporter.Log("\nFAILURES:")
		for _, f := range result.Failures {
			x.reporter.Log(f.String())
		}
	}

	x.reporter.Log(result.Stats.Summary(x.cfg.ScriptPath).String())

	x.logger.Info().
		Int(`total`, result.Stats.Total).
		Int(`pass`, result.Stats.Pass).
		Int(`fail`, result.Stats.Fail).
		Int(`soft_fail`, result.Stats.SoftFail).
		Log(`run complete`)

	return result, nil
}

func (x *Runner) start(ctx context.Context) error {
	if err := x.awaitPrompt(ctx, x.cfg.StartTimeout); err != nil {
		return &FatalError{Op: `start`, Err: err}
	}

	if x.cfg.PreEval != `` {
		x.reporter.Print(`RUNNING pre-eval: ` + x.cfg.PreEval)
		if err := x.session.WriteLine(x.cfg.PreEval); err != nil {
			return &FatalError{Op: `pre-eval`, Err: err}
		}
		if err := x.awaitPrompt(ctx, x.cfg.TestTimeout); err != nil {
			return &FatalError{Op: `pre-eval`, Err: err}
		}
	}

	return nil
}

// awaitPrompt waits for the initial prompt, logging any output before it.
func (x *Runner) awaitPrompt(ctx context.Context, timeout time.Duration) error {
	header, err := x.session.ReadToPrompt(ctx, timeout, initialPrompt)
	if err != nil {
		x.reporter.Logf(`Did not receive one of following prompt(s): %s`, script.QuoteList([]string{initialPrompt.String()}))
		x.reporter.Logf(`    Got      : %s`, script.Quote(x.session.Buffered()))
		return err
	}
	if header != `` {
		x.reporter.Logf("Started with:\n%s", header)
	}
	return nil
}

func (x *Runner) test(ctx context.Context, unit script.Unit, result *Result) error {
	x.reporter.Write(`TEST: ` + unit.String())

	x.logger.Debug().
		Int(`line`, unit.Line).
		Str(`form`, *unit.Form).
		Log(`running test`)

	expect := NewExpectation(unit.Output, unit.Return)

	if err := x.session.WriteLine(*unit.Form); err != nil {
		return &FatalError{Op: `test`, Line: unit.Line, Err: err}
	}

	result.Stats.Total++

	res, err := x.session.ReadToPrompt(ctx, x.cfg.TestTimeout, testPrompts...)
	if err != nil {
		// a hard failure, regardless of soft, that also aborts the run
		result.Stats.Fail++
		if errors.Is(err, context.DeadlineExceeded) {
			x.reporter.Logf(` -> TIMEOUT (line %d)`, unit.Line)
			return &TimeoutError{Line: unit.Line, Timeout: x.cfg.TestTimeout, Err: err}
		}
		return &FatalError{Op: `test`, Line: unit.Line, Err: err}
	}

	if unit.IgnoresResult() {
		x.reporter.Log(` -> SUCCESS (result ignored)`)
		result.Stats.Pass++
		return nil
	}

	if expect.Match(res) {
		x.reporter.Log(` -> SUCCESS`)
		result.Stats.Pass++
		return nil
	}

	soft := unit.Soft && !x.cfg.Hard
	if soft {
		x.reporter.Logf(` -> SOFT FAIL (line %d):`, unit.Line)
		result.Stats.SoftFail++
	} else {
		x.reporter.Logf(` -> FAIL (line %d):`, unit.Line)
		result.Stats.Fail++
	}
	x.reporter.Logf(`    Expected : %s`, script.Quote(expect.String()))
	x.reporter.Logf(`    Got      : %s`, script.Quote(res))

	failure := report.Failure{
		Soft:     soft,
		Line:     unit.Line,
		Form:     *unit.Form,
		Output:   unit.Output,
		Return:   unit.Return,
		Expected: expect.String(),
		Got:      res,
	}
	if x.cfg.Diff {
		failure.Diff = report.Diff(script.Separator+unit.Output+unit.Return, res)
	}
	result.Failures = append(result.Failures, failure)

	x.logger.Debug().
		Int(`line`, unit.Line).
		Bool(`soft`, soft).
		Log(`test failed`)

	return nil
}

// abort reports err, along with the unconsumed output, returning err.
func (x *Runner) abort(err error) error {
	x.reporter.Logf("\nException: %v", err)
	x.reporter.Logf("Output before exception:\n%s", x.session.Buffered())

	x.logger.Err().
		Err(err).
		Log(`run aborted`)

	return err
}
