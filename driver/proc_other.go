//go:build !unix

package driver

import (
	"errors"
	"os"
	"syscall"
)

func newSysProcAttr() *syscall.SysProcAttr {
	return nil
}

func killProcess(p *os.Process) error {
	if p == nil {
		return nil
	}
	if err := p.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}
