//go:build unix

package driver

import (
	"errors"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// newSysProcAttr places the child in a new process group, so that
// killProcess reaches anything it spawns.
func newSysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

// killProcess sends SIGKILL to the process group led by p.
func killProcess(p *os.Process) error {
	if p == nil {
		return nil
	}
	if err := unix.Kill(-p.Pid, unix.SIGKILL); err != nil && !errors.Is(err, unix.ESRCH) {
		// fall back to the process itself, e.g. if it never became a leader
		if err := p.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			return err
		}
	}
	return nil
}
