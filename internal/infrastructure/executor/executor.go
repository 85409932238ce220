// Package executor runs approved commands against the tracked working directory.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/neeleshseerapu/termagent/internal/domain"
	"github.com/neeleshseerapu/termagent/internal/pkg/filesystem"
	"github.com/neeleshseerapu/termagent/internal/ports"
)

const waitDelay = time.Second

// RunOutput is what a Runner captured from a finished process.
type RunOutput struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner spawns a shell process. A non-nil error means the process could not
// be run to completion; a non-zero exit status is not an error.
type Runner interface {
	Run(ctx context.Context, shell, command, dir string) (RunOutput, error)
}

// ShellRunner runs `<shell> -c <command>` on the host.
type ShellRunner struct{}

func (ShellRunner) Run(ctx context.Context, shell, command, dir string) (RunOutput, error) {
	c := exec.CommandContext(ctx, shell, "-c", command)
	c.Dir = dir
	c.WaitDelay = waitDelay
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	out := RunOutput{Stdout: stdout.String(), Stderr: stderr.String()}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		out.ExitCode = exitCode(exitErr)
		return out, nil
	}
	if err != nil {
		return out, err
	}
	return out, nil
}

// Engine implements ports.CommandExecutor.
type Engine struct {
	shell   string
	timeout time.Duration
	runner  Runner
	logger  ports.Logger
	getwd   func() (string, error)
	home    func() string
}

// Option customises an Engine.
type Option func(*Engine)

// WithRunner replaces the process runner.
func WithRunner(r Runner) Option {
	return func(e *Engine) { e.runner = r }
}

// WithGetwd replaces the function used to read the process directory.
func WithGetwd(fn func() (string, error)) Option {
	return func(e *Engine) { e.getwd = fn }
}

// WithHome replaces the home directory lookup.
func WithHome(fn func() string) Option {
	return func(e *Engine) { e.home = fn }
}

// NewEngine builds an engine. Empty shell means /bin/sh; non-positive timeout
// means domain.DefaultCommandTimeout.
func NewEngine(shell string, timeout time.Duration, logger ports.Logger, opts ...Option) *Engine {
	if shell == "" {
		shell = domain.DefaultShell
	}
	if timeout <= 0 {
		timeout = domain.DefaultCommandTimeout
	}
	e := &Engine{
		shell:   shell,
		timeout: timeout,
		runner:  ShellRunner{},
		logger:  logger,
		getwd:   os.Getwd,
		home:    filesystem.UserHomeDir,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs command. Directory changes are applied to wd without spawning
// a process; everything else runs in a shell rooted at wd.
func (e *Engine) Execute(ctx context.Context, wd *domain.WorkingDir, command string) domain.ExecutionResult {
	start := time.Now()
	trimmed := strings.TrimSpace(command)

	var result domain.ExecutionResult
	if strings.HasPrefix(trimmed, "cd ") {
		result = e.changeDirectory(wd, strings.TrimSpace(trimmed[len("cd "):]))
	} else {
		result = e.run(ctx, wd, command)
	}
	result.Duration = time.Since(start)

	e.logger.Debug("command finished", map[string]interface{}{
		"success":     result.Success,
		"exit_code":   result.ExitCode,
		"duration_ms": result.Duration.Milliseconds(),
		"working_dir": wd.Path(),
	})
	return result
}

func (e *Engine) changeDirectory(wd *domain.WorkingDir, target string) domain.ExecutionResult {
	dest := wd.Resolve(e.expand(unquote(target)))

	info, err := os.Stat(dest)
	if err == nil && !info.IsDir() {
		err = fmt.Errorf("not a directory: %s", dest)
	}
	if err != nil {
		return domain.ExecutionResult{
			Success:  false,
			Stderr:   fmt.Sprintf("Failed to change directory: %v", err),
			ExitCode: domain.DirectoryChangeFailureExitCode,
		}
	}

	wd.Set(dest)
	return domain.ExecutionResult{
		Success:  true,
		Stdout:   fmt.Sprintf("Changed directory to: %s", wd.Path()),
		ExitCode: 0,
	}
}

// expand maps the home shorthands. "-" also means home because previous
// directories are not tracked.
func (e *Engine) expand(target string) string {
	switch {
	case target == "~", target == "-", target == "":
		return e.home()
	case strings.HasPrefix(target, "~/"):
		return e.home() + target[1:]
	default:
		return target
	}
}

func (e *Engine) run(ctx context.Context, wd *domain.WorkingDir, command string) domain.ExecutionResult {
	baseline, baselineErr := e.getwd()

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	out, err := e.runner.Run(runCtx, e.shell, command, wd.Path())

	var result domain.ExecutionResult
	switch {
	case errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		e.logger.Warn("command timed out", map[string]interface{}{"timeout": e.timeout.String()})
		result = domain.ExecutionResult{
			Success:  false,
			Stderr:   fmt.Sprintf("Command timed out after %s", describeTimeout(e.timeout)),
			ExitCode: domain.ExitCodeSentinel,
		}
	case err != nil:
		e.logger.Error("command could not be executed", err, nil)
		result = domain.ExecutionResult{
			Success:  false,
			Stderr:   fmt.Sprintf("Error executing command: %v", err),
			ExitCode: domain.ExitCodeSentinel,
		}
	default:
		result = domain.ExecutionResult{
			Success:  out.ExitCode == 0,
			Stdout:   out.Stdout,
			Stderr:   out.Stderr,
			ExitCode: out.ExitCode,
		}
	}

	e.resync(wd, baseline, baselineErr)
	return result
}

// resync follows the process directory if it moved while the command ran.
func (e *Engine) resync(wd *domain.WorkingDir, baseline string, baselineErr error) {
	if baselineErr != nil {
		return
	}
	current, err := e.getwd()
	if err != nil || current == baseline || current == wd.Path() {
		return
	}
	e.logger.Debug("working directory resynchronised", map[string]interface{}{
		"from": wd.Path(),
		"to":   current,
	})
	wd.Set(current)
}

func describeTimeout(d time.Duration) string {
	if d%time.Second == 0 {
		return fmt.Sprintf("%d seconds", int(d/time.Second))
	}
	return d.String()
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

var _ ports.CommandExecutor = (*Engine)(nil)
