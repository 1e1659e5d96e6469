//go:build !linux && !darwin && !freebsd

package driver

import (
	"errors"
	"os"
	"os/exec"
)

func startPTY(*exec.Cmd, bool) (input, output *os.File, err error) {
	return nil, nil, errors.New("pty mode is not supported on this platform")
}
