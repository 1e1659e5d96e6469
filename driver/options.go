package driver

import (
	"errors"
	"fmt"
	"io"

	"github.com/joeycumines/logiface"
)

// Option configures a Driver, see Start.
type Option interface {
	applyDriver(*driverConfig) error
}

type driverConfig struct {
	logger    *logiface.Logger[logiface.Event]
	trace     io.Writer
	name      string
	args      []string
	dir       string
	env       []string
	lineBreak string
	pty       bool
	echo      bool
}

// optionImpl implements Option.
type optionImpl func(*driverConfig) error

func (f optionImpl) applyDriver(c *driverConfig) error {
	return f(c)
}

// WithCommand configures the command name/path and arguments to execute.
// It is required.
func WithCommand(name string, args ...string) Option {
	return optionImpl(func(c *driverConfig) error {
		c.name = name
		// WARNING: replace, do not append
		c.args = args
		return nil
	})
}

// WithLineBreak sets the terminator appended by Driver.WriteLine.
// The default is "\n".
func WithLineBreak(lineBreak string) Option {
	return optionImpl(func(c *driverConfig) error {
		if lineBreak == `` {
			return errors.New(`empty line break`)
		}
		c.lineBreak = lineBreak
		return nil
	})
}

// WithDir sets the working directory of the child.
func WithDir(path string) Option {
	return optionImpl(func(c *driverConfig) error {
		c.dir = path
		return nil
	})
}

// WithEnv appends KEY=VALUE pairs to the child's environment. They are
// applied last, after the terminal variables forced by Start.
func WithEnv(env ...string) Option {
	return optionImpl(func(c *driverConfig) error {
		c.env = append(c.env, env...)
		return nil
	})
}

// WithTrace receives every byte read from the child, as read, before any
// carriage returns are stripped. Write errors are logged and otherwise
// ignored.
func WithTrace(w io.Writer) Option {
	return optionImpl(func(c *driverConfig) error {
		c.trace = w
		return nil
	})
}

// WithLogger sets the diagnostic logger. A nil logger disables logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return optionImpl(func(c *driverConfig) error {
		c.logger = logger
		return nil
	})
}

// WithPTY attaches the child to a pseudo-terminal, instead of pipes.
func WithPTY(enabled bool) Option {
	return optionImpl(func(c *driverConfig) error {
		c.pty = enabled
		return nil
	})
}

// WithEcho controls the terminal echo of the pseudo-terminal, and has no
// effect unless WithPTY is enabled. Echo is enabled by default.
func WithEcho(enabled bool) Option {
	return optionImpl(func(c *driverConfig) error {
		c.echo = enabled
		return nil
	})
}

func resolveOptions(opts []Option) (*driverConfig, error) {
	cfg := &driverConfig{
		lineBreak: "\n",
		echo:      true,
	}
	for _, opt := range opts {
		if err := opt.applyDriver(cfg); err != nil {
			return nil, fmt.Errorf("driver: failed to apply option: %w", err)
		}
	}
	if cfg.name == `` {
		return nil, errors.New("driver: no command specified: use WithCommand(name, args...) to specify the command")
	}
	return cfg, nil
}
