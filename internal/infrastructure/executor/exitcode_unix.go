//go:build unix

package executor

import (
	"os/exec"
	"syscall"
)

// signalExitBase follows the shell convention of reporting 128+N for a
// process terminated by signal N.
const signalExitBase = 128

func exitCode(exitErr *exec.ExitError) int {
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return signalExitBase + int(status.Signal())
	}
	return exitErr.ExitCode()
}
