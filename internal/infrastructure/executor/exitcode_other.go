//go:build !unix

package executor

import "os/exec"

func exitCode(exitErr *exec.ExitError) int {
	return exitErr.ExitCode()
}
