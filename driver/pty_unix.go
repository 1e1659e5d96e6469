//go:build linux || darwin || freebsd

package driver

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/creack/pty"
	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
)

// startPTY attaches the child to a new pseudo-terminal, as its
// controlling terminal, returning the master side as both input and
// output.
func startPTY(cmd *exec.Cmd, echo bool) (input, output *os.File, err error) {
	ptm, pts, err := pty.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open pty: %w", err)
	}
	// the child holds its own copy
	defer func() { _ = pts.Close() }()

	if err := pty.Setsize(ptm, &pty.Winsize{Rows: 24, Cols: 80}); err != nil {
		_ = ptm.Close()
		return nil, nil, fmt.Errorf("failed to set pty size: %w", err)
	}

	if !echo {
		if err := disableEcho(pts); err != nil {
			_ = ptm.Close()
			return nil, nil, err
		}
	}

	cmd.Stdin = pts
	cmd.Stdout = pts
	cmd.Stderr = pts
	// N.B. Setsid also makes the child a process group leader
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid:  true,
		Setctty: true,
	}

	if err := cmd.Start(); err != nil {
		_ = ptm.Close()
		return nil, nil, err
	}

	return ptm, ptm, nil
}

func disableEcho(tty *os.File) error {
	attr, err := termios.Tcgetattr(tty.Fd())
	if err != nil {
		return fmt.Errorf("failed to get terminal attributes: %w", err)
	}
	attr.Lflag &^= unix.ECHO
	if err := termios.Tcsetattr(tty.Fd(), termios.TCSANOW, attr); err != nil {
		return fmt.Errorf("failed to set terminal attributes: %w", err)
	}
	return nil
}
