package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/joeycumines/go-runtest/internal/exitcodes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cliResult struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, args ...string) cliResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run(t.Context(), args, &runOpts{
		stdout:  &stdout,
		stderr:  &stderr,
		cmdName: `runtest`,
	})
	return cliResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

// helperCommand returns the arguments that run the fake REPL, via the
// test binary, with the given flags.
func helperCommand(t *testing.T, flags ...string) []string {
	t.Helper()
	t.Setenv(`GO_TEST_MODE`, `helper`)
	return append([]string{`--`, os.Args[0], `-test.run=^TestMain$`}, flags...)
}

func writeScript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), `step.mal`)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun_pass(t *testing.T) {
	path := writeScript(t, ";; arithmetic\n(+ 1 1)\n;=>2\n(+ 2 3)\n;=>5\n")
	res := runCLI(t, append([]string{path}, helperCommand(t, `--no-echo`)...)...)
	assert.Equal(t, exitcodes.Success, res.code, res.stderr)
	assert.Contains(t, res.stdout, "arithmetic\n")
	assert.Contains(t, res.stdout, "TEST: '(+ 1 1)' -> ['',2] -> SUCCESS\n")
	assert.Contains(t, res.stdout, "TEST: '(+ 2 3)' -> ['',5] -> SUCCESS\n")
	assert.Contains(t, res.stdout, "    2: passing tests\n")
	assert.Contains(t, res.stdout, "    0: failing tests\n")
	assert.Empty(t, res.stderr)
}

func TestRun_echo(t *testing.T) {
	path := writeScript(t, "(+ 1 1)\n;=>2\n")
	res := runCLI(t, append([]string{path}, helperCommand(t)...)...)
	assert.Equal(t, exitcodes.Success, res.code, res.stderr)
	assert.Contains(t, res.stdout, "-> SUCCESS\n")
}

func TestRun_fail(t *testing.T) {
	path := writeScript(t, "(+ 1 2)\n;=>2\n")
	res := runCLI(t, append([]string{path}, helperCommand(t, `--no-echo`)...)...)
	assert.Equal(t, exitcodes.Failure, res.code)
	assert.Contains(t, res.stdout, " -> FAIL (line 2):\n")
	assert.Contains(t, res.stdout, "\nFAILURES:\n")
	assert.Contains(t, res.stdout, "    1: failing tests\n")
}

func TestRun_softFail(t *testing.T) {
	path := writeScript(t, ";>>> soft=True\n(+ 1 2)\n;=>2\n")
	args := append([]string{path}, helperCommand(t, `--no-echo`)...)

	res := runCLI(t, args...)
	assert.Equal(t, exitcodes.Success, res.code)
	assert.Contains(t, res.stdout, " -> SOFT FAIL (line 3):\n")

	res = runCLI(t, append([]string{`--hard`}, args...)...)
	assert.Equal(t, exitcodes.Failure, res.code)
	assert.Contains(t, res.stdout, " -> FAIL (line 3):\n")
}

func TestRun_diff(t *testing.T) {
	path := writeScript(t, "(+ 1 2)\n;=>2\n")
	res := runCLI(t, append([]string{`--diff`, path}, helperCommand(t, `--no-echo`)...)...)
	assert.Equal(t, exitcodes.Failure, res.code)
	assert.Contains(t, res.stdout, "    Diff     :\n")
}

func TestRun_noDeferrable(t *testing.T) {
	path := writeScript(t, "(+ 1 1)\n;=>2\n;>>> deferrable=True\n(hang)\n;=>1\n")
	res := runCLI(t, append([]string{`--no-deferrable`, path}, helperCommand(t, `--no-echo`)...)...)
	assert.Equal(t, exitcodes.Success, res.code, res.stdout)
	assert.Contains(t, res.stdout, "\nSkipping deferrable and optional tests")
	assert.NotContains(t, res.stdout, `(hang)`)
	assert.Contains(t, res.stdout, "    1: passing tests\n")
}

func TestRun_preEval(t *testing.T) {
	path := writeScript(t, "(+ 1 1)\n;=>2\n")
	res := runCLI(t, append([]string{`--pre-eval`, `(prn 7)`, path}, helperCommand(t, `--no-echo`)...)...)
	assert.Equal(t, exitcodes.Success, res.code, res.stdout)
	assert.Contains(t, res.stdout, "RUNNING pre-eval: (prn 7)")
}

func TestRun_testTimeout(t *testing.T) {
	path := writeScript(t, "(hang)\n;=>1\n")
	res := runCLI(t, append([]string{`--test-timeout`, `1`, path}, helperCommand(t, `--no-echo`)...)...)
	assert.Equal(t, exitcodes.Failure, res.code)
	assert.Contains(t, res.stdout, " -> TIMEOUT (line 2)")
	assert.Contains(t, res.stdout, "\nException: ")
	assert.Contains(t, res.stdout, "Output before exception:\n")
}

func TestRun_startTimeout(t *testing.T) {
	path := writeScript(t, "(+ 1 1)\n;=>2\n")
	res := runCLI(t, append([]string{`--start-timeout`, `1`, path}, helperCommand(t, `--silent-start`)...)...)
	assert.Equal(t, exitcodes.Failure, res.code)
	assert.Contains(t, res.stdout, "Did not receive one of following prompt(s): ")
	assert.NotContains(t, res.stdout, `TEST:`)
}

func TestRun_syntaxError(t *testing.T) {
	path := writeScript(t, "(+ 1 1)\n;=>2\n;oops\n")
	res := runCLI(t, append([]string{path}, helperCommand(t, `--no-echo`)...)...)
	assert.Equal(t, exitcodes.Failure, res.code)
	assert.Contains(t, res.stdout, "Exception: test data error at line 3")
}

func TestRun_logAndDebugFiles(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, `log.txt`)
	debugFile := filepath.Join(dir, `debug.txt`)
	require.NoError(t, os.WriteFile(logFile, []byte("previous\n"), 0o644))

	path := writeScript(t, "(+ 1 1)\n;=>2\n")
	res := runCLI(t, append([]string{`--log-file`, logFile, `--debug-file`, debugFile, path}, helperCommand(t, `--no-echo`)...)...)
	require.Equal(t, exitcodes.Success, res.code, res.stdout)

	logData, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(logData), "previous\n")
	assert.Contains(t, string(logData), "-> SUCCESS\n")
	assert.Contains(t, string(logData), "    1: passing tests\n")

	debugData, err := os.ReadFile(debugFile)
	require.NoError(t, err)
	assert.Contains(t, string(debugData), "user> ")
	assert.Contains(t, string(debugData), "2\n")
}

func TestRun_rundir(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, `step.mal`), []byte("(+ 1 1)\n;=>2\n"), 0o644))
	res := runCLI(t, append([]string{`--rundir`, dir, `step.mal`}, helperCommand(t, `--no-echo`)...)...)
	assert.Equal(t, exitcodes.Success, res.code, res.stderr)
}

func TestRun_missingScript(t *testing.T) {
	res := runCLI(t, append([]string{filepath.Join(t.TempDir(), `missing.mal`)}, helperCommand(t)...)...)
	assert.Equal(t, exitcodes.Failure, res.code)
	assert.Contains(t, res.stderr, `runtest: error: script: `)
}

func TestRun_spawnFailure(t *testing.T) {
	path := writeScript(t, "(+ 1 1)\n;=>2\n")
	res := runCLI(t, path, filepath.Join(t.TempDir(), `no-such-command`))
	assert.Equal(t, exitcodes.Failure, res.code)
	assert.Contains(t, res.stderr, `driver: failed to start`)
}

func TestRun_usage(t *testing.T) {
	for _, tc := range [...]struct {
		name string
		args []string
	}{
		{`no args`, nil},
		{`bad timeout`, []string{`--test-timeout`, `x`, `step.mal`, `cmd`}},
		{`zero test timeout`, []string{`--test-timeout`, `0`, `step.mal`, `cmd`}},
		{`negative start timeout`, []string{`--start-timeout=-1`, `step.mal`, `cmd`}},
		{`bad log level`, []string{`--log-level`, `verbose`, `step.mal`, `cmd`}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			res := runCLI(t, tc.args...)
			assert.Equal(t, exitcodes.Usage, res.code)
			assert.Contains(t, res.stderr, `runtest: error: `)
		})
	}
}

func TestRun_noCommand(t *testing.T) {
	path := writeScript(t, "(+ 1 1)\n;=>2\n")
	res := runCLI(t, path)
	assert.Equal(t, exitcodes.Failure, res.code)
	assert.Contains(t, res.stderr, `runtest: error: no command specified`)
	assert.Empty(t, res.stdout)
}

func TestRun_logJSON(t *testing.T) {
	path := writeScript(t, "(+ 1 1)\n;=>2\n")
	res := runCLI(t, append([]string{`--log-json`, `--log-level`, `info`, path}, helperCommand(t, `--no-echo`)...)...)
	assert.Equal(t, exitcodes.Success, res.code, res.stderr)
	assert.Contains(t, res.stderr, `"level":"info"`)
	assert.Contains(t, res.stderr, `"message":"run complete"`)
}

func TestRun_defaultLogLevel(t *testing.T) {
	path := writeScript(t, "(+ 1 1)\n;=>2\n")
	res := runCLI(t, append([]string{`--log-json`, path}, helperCommand(t, `--no-echo`)...)...)
	assert.Equal(t, exitcodes.Success, res.code)
	assert.NotContains(t, res.stderr, `run complete`)
}

func TestRun_help(t *testing.T) {
	res := runCLI(t, `--help`)
	assert.Equal(t, exitcodes.Success, res.code)
	assert.Contains(t, res.stdout, `deferrable`)
	assert.Contains(t, res.stdout, `--start-timeout`)
	assert.Contains(t, res.stdout, `--debug-file`)
}
