package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/joeycumines/logiface"
)

const (
	closeWaitTimeout = time.Second
	readChunkSize    = 4096
)

var (
	// ErrTimeout is returned by Driver.ReadToPrompt when no prompt was
	// observed before the deadline.
	ErrTimeout = fmt.Errorf("driver: timed out waiting for prompt: %w", context.DeadlineExceeded)

	// ErrOutputClosed is returned by Driver.ReadToPrompt when the child's
	// output reached end of file before a prompt was observed.
	ErrOutputClosed = errors.New("driver: output closed before prompt")

	// ErrClosed is returned by Driver.WriteLine after Driver.Close.
	ErrClosed = errors.New("driver: closed")

	errProcessWaitTimeout = errors.New("timeout waiting for process to exit")
	errReadLoopTimeout    = errors.New("timeout waiting for reader loop to exit")
)

// terminalEnv keeps the child away from line editing and colour output,
// either of which would corrupt prompt matching.
var terminalEnv = []string{
	`TERM=dumb`,
	`INPUTRC=/dev/null`,
	`PERL_RL=false`,
}

// Driver exchanges lines with a child process, see the package docs.
//
// ReadToPrompt and WriteLine are intended to be called from a single
// goroutine. Close may be called from any goroutine.
type Driver struct {
	mu         sync.Mutex
	buf        []byte
	eof        bool
	readErr    error
	lastPrompt int

	// notify receives a value (non-blocking, buffered) whenever buf or eof
	// changes
	notify chan struct{}

	cmd       *exec.Cmd
	input     *os.File
	output    *os.File
	lineBreak string
	trace     io.Writer
	logger    *logiface.Logger[logiface.Event]

	cancel context.CancelFunc
	done   chan struct{} // closed when readLoop exits
	exited chan struct{} // closed when the process has been reaped

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Start spawns the configured command, and begins draining its output.
// The child is killed if ctx is cancelled, and always by Close.
func Start(ctx context.Context, opts ...Option) (*Driver, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)

	cmd := exec.CommandContext(ctx, cfg.name, cfg.args...)
	cmd.Env = append(os.Environ(), terminalEnv...)
	cmd.Env = append(cmd.Env, cfg.env...)
	cmd.Dir = cfg.dir
	cmd.SysProcAttr = newSysProcAttr()
	cmd.Cancel = func() error { return killProcess(cmd.Process) }

	var input, output *os.File
	if cfg.pty {
		input, output, err = startPTY(cmd, cfg.echo)
	} else {
		input, output, err = startPipes(cmd)
	}
	if err != nil {
		cancel()
		return nil, fmt.Errorf("driver: failed to start %s: %w", cfg.name, err)
	}

	d := &Driver{
		lastPrompt: -1,
		notify:     make(chan struct{}, 1),
		cmd:        cmd,
		input:      input,
		output:     output,
		lineBreak:  cfg.lineBreak,
		trace:      cfg.trace,
		logger:     cfg.logger,
		cancel:     cancel,
		done:       make(chan struct{}),
		exited:     make(chan struct{}),
	}

	go d.waitProcess()
	go d.readLoop()

	d.logger.Debug().
		Str(`command`, cmd.String()).
		Int(`pid`, cmd.Process.Pid).
		Bool(`pty`, cfg.pty).
		Log(`started process`)

	return d, nil
}

// startPipes connects the child's standard input to one pipe, and both
// standard output and standard error to another.
func startPipes(cmd *exec.Cmd) (input, output *os.File, err error) {
	inR, inW, err := os.Pipe()
	if err != nil {
		return nil, nil, err
	}
	outR, outW, err := os.Pipe()
	if err != nil {
		_ = inR.Close()
		_ = inW.Close()
		return nil, nil, err
	}

	cmd.Stdin = inR
	cmd.Stdout = outW
	cmd.Stderr = outW

	err = cmd.Start()

	// the child holds its own copies
	_ = inR.Close()
	_ = outW.Close()

	if err != nil {
		_ = inW.Close()
		_ = outR.Close()
		return nil, nil, err
	}

	return inW, outR, nil
}

// ReadToPrompt waits until any of prompts matches the unconsumed output,
// choosing the match that completes at the earliest byte, and the first
// pattern (in argument order) among those completing at that byte.
//
// Carriage returns are stripped from the output. On a match, the text
// before the match is returned, the output through the end of the match
// is consumed, and the pattern index is recorded, see LastPrompt.
// Unconsumed output is retained for the next call.
//
// A timeout of zero or less waits until ctx is done. If the timeout
// elapses, ErrTimeout is returned, and the unconsumed output remains
// available via Buffered. ErrOutputClosed is returned if the output ends
// first.
func (d *Driver) ReadToPrompt(ctx context.Context, timeout time.Duration, prompts ...*regexp.Regexp) (string, error) {
	if len(prompts) == 0 {
		return ``, errors.New("driver: no prompt patterns")
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	scanner := newPromptScanner(prompts)

	for {
		text, matched, eof, readErr := d.scanBuffer(scanner)
		if matched {
			return text, nil
		}

		if eof {
			if readErr != nil {
				return ``, fmt.Errorf("%w: %w", ErrOutputClosed, readErr)
			}
			return ``, ErrOutputClosed
		}

		select {
		case <-ctx.Done():
			// output may have arrived alongside the deadline
			if text, matched, _, _ := d.scanBuffer(scanner); matched {
				return text, nil
			}
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				d.logger.Debug().
					Dur(`timeout`, timeout).
					Int(`buffered`, d.bufferedLen()).
					Log(`timed out waiting for prompt`)
				return ``, ErrTimeout
			}
			return ``, fmt.Errorf("driver: waiting for prompt: %w", ctx.Err())

		case <-d.notify:
		}
	}
}

func (d *Driver) scanBuffer(scanner *promptScanner) (text string, matched, eof bool, readErr error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	m, ok := scanner.scan(d.buf)
	if !ok {
		return ``, false, d.eof, d.readErr
	}

	text = string(d.buf[:m.start])
	d.buf = append(d.buf[:0], d.buf[m.end:]...)
	d.lastPrompt = m.index

	d.logger.Trace().
		Int(`prompt`, m.index).
		Int(`length`, len(text)).
		Log(`matched prompt`)

	return text, true, d.eof, d.readErr
}

func (d *Driver) bufferedLen() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.buf)
}

// WriteLine writes text, followed by the configured line break, to the
// child's input, in a single unbuffered write. Each carriage return in
// text is preceded by a literal-next control character (0x16), so that
// line editing layers pass it through.
func (d *Driver) WriteLine(text string) error {
	if d.closed.Load() {
		return ErrClosed
	}

	var b bytes.Buffer
	b.Grow(len(text) + len(d.lineBreak) + 1)
	for i := 0; i < len(text); i++ {
		if text[i] == '\r' {
			b.WriteByte('\x16')
		}
		b.WriteByte(text[i])
	}
	b.WriteString(d.lineBreak)

	if _, err := d.input.Write(b.Bytes()); err != nil {
		return fmt.Errorf("driver: write: %w", err)
	}

	d.logger.Trace().
		Str(`line`, text).
		Log(`wrote line`)

	return nil
}

// Buffered returns the output received but not yet consumed, with
// carriage returns stripped.
func (d *Driver) Buffered() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return string(d.buf)
}

// LastPrompt returns the index of the pattern that satisfied the most
// recent successful ReadToPrompt, or -1.
func (d *Driver) LastPrompt() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastPrompt
}

// Exited is closed once the child has exited and been reaped.
func (d *Driver) Exited() <-chan struct{} {
	return d.exited
}

// Close kills the child (and its process group, where supported), closes
// its handles, and waits a bounded time for it to be reaped. It is safe
// to call more than once.
func (d *Driver) Close() error {
	d.closeOnce.Do(func() {
		d.closeErr = errors.New("panic during close")
		d.closeErr = d.close()
	})
	return d.closeErr
}

func (d *Driver) close() error {
	d.closed.Store(true)

	var errs []error

	if err := d.input.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		errs = append(errs, err)
	}

	if err := killProcess(d.cmd.Process); err != nil {
		errs = append(errs, err)
	}

	select {
	case <-d.exited:
	case <-time.After(closeWaitTimeout):
		errs = append(errs, errProcessWaitTimeout)
	}

	d.cancel()

	if err := d.output.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		errs = append(errs, err)
	}

	select {
	case <-d.done:
	case <-time.After(closeWaitTimeout):
		errs = append(errs, errReadLoopTimeout)
	}

	d.logger.Debug().
		Int(`pid`, d.cmd.Process.Pid).
		Log(`closed process`)

	if len(errs) != 0 {
		return fmt.Errorf("driver: close errors: %w", errors.Join(errs...))
	}

	return nil
}

func (d *Driver) waitProcess() {
	err := d.cmd.Wait()
	close(d.exited)

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		d.logger.Warning().
			Err(err).
			Log(`failed waiting for process`)
		return
	}
	d.logger.Debug().
		Int(`exit_code`, d.cmd.ProcessState.ExitCode()).
		Log(`process exited`)
}

func (d *Driver) readLoop() {
	defer close(d.done)

	chunk := make([]byte, readChunkSize)
	var traceFailed bool

	for {
		n, err := d.output.Read(chunk)

		if n > 0 {
			if d.trace != nil && !traceFailed {
				if _, err := d.trace.Write(chunk[:n]); err != nil {
					traceFailed = true
					d.logger.Warning().
						Err(err).
						Log(`failed writing trace, disabling`)
				}
			}

			d.mu.Lock()
			for _, c := range chunk[:n] {
				if c != '\r' {
					d.buf = append(d.buf, c)
				}
			}
			d.mu.Unlock()
			d.signal()
		}

		if err != nil {
			if isEndOfOutput(err) {
				err = nil
			}
			d.mu.Lock()
			d.eof = true
			d.readErr = err
			d.mu.Unlock()
			d.signal()

			d.logger.Debug().
				Err(err).
				Log(`output closed`)

			return
		}
	}
}

func (d *Driver) signal() {
	select {
	case d.notify <- struct{}{}:
	default:
	}
}

// isEndOfOutput reports errors that indicate the output is finished,
// rather than failed. A pseudo-terminal reports EIO once the child side
// has been closed.
func isEndOfOutput(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, os.ErrClosed) ||
		errors.Is(err, syscall.EIO)
}
