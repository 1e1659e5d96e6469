package main

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joeycumines/go-runtest/driver"
	"github.com/joeycumines/go-runtest/internal/exitcodes"
	"github.com/joeycumines/go-runtest/internal/logging"
	"github.com/joeycumines/go-runtest/report"
	"github.com/joeycumines/go-runtest/runner"
	"github.com/joeycumines/go-runtest/script"
)

var kongVars = kong.Vars{
	"rundir_help":        `change to the directory before running tests`,
	"start_timeout_help": `timeout for the initial prompt, in seconds`,
	"test_timeout_help":  `timeout for each individual test action, in seconds`,
	"pre_eval_help":      `code to evaluate prior to running the tests`,
	"log_file_help":      `append messages to the named file, in addition to stdout`,
	"debug_file_help":    `append all test interaction to the named file`,
	"hard_help":          `turn soft failures into hard failures`,
	"deferrable_help":    `run the tests that follow a ';>>> deferrable=True' directive`,
	"optional_help":      `run the tests that follow a ';>>> optional=True' directive`,
	"crlf_help":          `write CRLF line breaks to the input, instead of LF`,
	"pty_help":           `attach the command to a pseudo-terminal, instead of pipes`,
	"no_echo_help":       `disable terminal echo, with --pty`,
	"diff_help":          `include a unified diff with each failure`,
	"log_level_help":     `level of diagnostic logs, written to stderr`,
	"log_level_default":  logging.DefaultLevel.String(),
	"log_json_help":      `write diagnostic logs as JSON lines`,
	"test_file_help":     `a test file, formatted as mal test data`,
	"command_help":       `the command line to test, use -- to pass dashed options`,
}

type rootCmd struct {
	Rundir       string `kong:"help=${rundir_help}"`
	StartTimeout int    `kong:"name=start-timeout,default=10,help=${start_timeout_help}"`
	TestTimeout  int    `kong:"name=test-timeout,default=20,help=${test_timeout_help}"`
	PreEval      string `kong:"name=pre-eval,help=${pre_eval_help}"`
	LogFile      string `kong:"name=log-file,help=${log_file_help}"`
	DebugFile    string `kong:"name=debug-file,help=${debug_file_help}"`
	Hard         bool   `kong:"help=${hard_help}"`
	Deferrable   bool   `kong:"default=true,negatable,help=${deferrable_help}"`
	Optional     bool   `kong:"default=true,negatable,help=${optional_help}"`
	CRLF         bool   `kong:"name=crlf,help=${crlf_help}"`
	PTY          bool   `kong:"name=pty,help=${pty_help}"`
	NoEcho       bool   `kong:"name=no-echo,help=${no_echo_help}"`
	Diff         bool   `kong:"help=${diff_help}"`
	LogLevel     string `kong:"name=log-level,default=${log_level_default},env='RUNTEST_LOG_LEVEL',help=${log_level_help}"`
	LogJSON      bool   `kong:"name=log-json,help=${log_json_help}"`

	TestFile string   `kong:"arg,name=test-file,help=${test_file_help}"`
	Command  []string `kong:"arg,optional,name=command,help=${command_help}"`
}

type runOpts struct {
	stdout  io.Writer
	stderr  io.Writer
	cmdName string
}

type kongExit int

// Run runs the command line, returning the exit code.
func Run(ctx context.Context, args []string, opts *runOpts) (exitCode int) {
	if opts == nil {
		opts = &runOpts{}
	}
	stdout := opts.stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := opts.stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	defer func() {
		if r := recover(); r != nil {
			code, ok := r.(kongExit)
			if !ok {
				panic(r)
			}
			exitCode = int(code)
		}
	}()

	var root rootCmd
	kongOptions := []kong.Option{
		kong.Description(`Run a test file against a REPL.`),
		kong.HelpOptions{Compact: true},
		kongVars,
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { panic(kongExit(code)) }),
	}
	if opts.cmdName != `` {
		kongOptions = append(kongOptions, kong.Name(opts.cmdName))
	}

	parser := kong.Must(&root, kongOptions...)

	if _, err := parser.Parse(args); err != nil {
		parser.Errorf("%s", err)
		return exitcodes.Usage
	}

	level, err := logging.ParseLevel(root.LogLevel)
	if err != nil {
		parser.Errorf("--log-level: %s", err)
		return exitcodes.Usage
	}
	if root.StartTimeout <= 0 || root.TestTimeout <= 0 {
		parser.Errorf("%s", errTimeout)
		return exitcodes.Usage
	}

	newLogger := logging.New
	if root.LogJSON {
		newLogger = logging.NewJSON
	}
	logger := newLogger(stderr, level)

	code, err := root.run(ctx, stdout, logger)
	if err != nil {
		parser.Errorf("%s", err)
	}
	return code
}

func (c *rootCmd) run(ctx context.Context, stdout io.Writer, logger *logging.Logger) (int, error) {
	if len(c.Command) == 0 {
		return exitcodes.Failure, errNoCommand
	}

	if c.Rundir != `` {
		if err := os.Chdir(c.Rundir); err != nil {
			return exitcodes.Failure, err
		}
	}

	var reportOpts []report.Option
	if c.LogFile != `` {
		f, err := report.OpenAppend(c.LogFile)
		if err != nil {
			return exitcodes.Failure, err
		}
		defer f.Close()
		reportOpts = append(reportOpts, report.WithLogFile(f))
	}
	if c.DebugFile != `` {
		f, err := report.OpenAppend(c.DebugFile)
		if err != nil {
			return exitcodes.Failure, err
		}
		defer f.Close()
		reportOpts = append(reportOpts, report.WithTrace(f))
	}
	reporter := report.New(stdout, reportOpts...)

	units, err := script.Load(c.TestFile)
	if err != nil {
		return exitcodes.Failure, err
	}

	lineBreak := "\n"
	if c.CRLF {
		lineBreak = "\r\n"
	}

	session, err := driver.Start(ctx,
		driver.WithCommand(c.Command[0], c.Command[1:]...),
		driver.WithLineBreak(lineBreak),
		driver.WithTrace(reporter.Trace()),
		driver.WithLogger(logger),
		driver.WithPTY(c.PTY),
		driver.WithEcho(!c.NoEcho),
	)
	if err != nil {
		return exitcodes.Failure, err
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warning().
				Err(err).
				Log(`failed to close session`)
		}
	}()

	cfg := runner.Config{
		TestTimeout:  time.Duration(c.TestTimeout) * time.Second,
		StartTimeout: time.Duration(c.StartTimeout) * time.Second,
		PreEval:      c.PreEval,
		Hard:         c.Hard,
		Deferrable:   c.Deferrable,
		Optional:     c.Optional,
		ScriptPath:   c.TestFile,
		Diff:         c.Diff,
	}

	result, err := runner.New(cfg, session, units, reporter, runner.WithLogger(logger)).Run(ctx)
	if err != nil {
		// already reported
		return exitcodes.Failure, nil
	}

	// the trace must be complete before it is terminated
	if err := session.Close(); err != nil {
		logger.Warning().
			Err(err).
			Log(`failed to close session`)
	}
	if _, err := io.WriteString(reporter.Trace(), "\n"); err != nil {
		logger.Warning().
			Err(err).
			Log(`failed to write debug file`)
	}

	if err := reporter.Err(); err != nil {
		logger.Err().
			Err(err).
			Log(`failed to write report`)
	}

	return result.ExitCode(), nil
}

var (
	errNoCommand = errors.New(`no command specified`)
	errTimeout   = errors.New(`--start-timeout and --test-timeout must be positive`)
)
