package executor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/neeleshseerapu/termagent/internal/domain"
	"github.com/neeleshseerapu/termagent/internal/pkg/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type spyRunner struct {
	calls []string
	dirs  []string
	out   RunOutput
	err   error
}

func (s *spyRunner) Run(_ context.Context, _ string, command, dir string) (RunOutput, error) {
	s.calls = append(s.calls, command)
	s.dirs = append(s.dirs, dir)
	return s.out, s.err
}

func newSpyEngine(t *testing.T, runner Runner, home string) *Engine {
	t.Helper()
	return NewEngine("/bin/sh", time.Second, logger.NewNop(),
		WithRunner(runner),
		WithHome(func() string { return home }),
	)
}

func TestChangeDirectoryNeverSpawns(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "project")
	require.NoError(t, os.Mkdir(sub, 0o755))

	spy := &spyRunner{}
	engine := newSpyEngine(t, spy, root)
	wd := domain.NewWorkingDir(root)

	result := engine.Execute(context.Background(), wd, "cd project")

	assert.True(t, result.Success)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "Changed directory to: "+sub, result.Stdout)
	assert.Empty(t, result.Stderr)
	assert.Equal(t, sub, wd.Path())
	assert.Empty(t, spy.calls)
}

func TestChangeDirectoryShorthands(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(home, "docs"), 0o755))
	elsewhere := t.TempDir()

	tests := []struct {
		command string
		want    string
	}{
		{"cd ~", home},
		{"cd -", home},
		{"cd ~/docs", filepath.Join(home, "docs")},
		{"cd " + elsewhere, elsewhere},
		{`cd "` + elsewhere + `"`, elsewhere},
		{"  cd ..  ", filepath.Dir(elsewhere)},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			spy := &spyRunner{}
			engine := newSpyEngine(t, spy, home)
			wd := domain.NewWorkingDir(elsewhere)

			result := engine.Execute(context.Background(), wd, tt.command)

			require.True(t, result.Success, result.Stderr)
			assert.Equal(t, tt.want, wd.Path())
			assert.Empty(t, spy.calls)
		})
	}
}

func TestChangeDirectoryFailureLeavesTracker(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "notes.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	for _, command := range []string{"cd /nonexistent-termagent-dir", "cd notes.txt"} {
		t.Run(command, func(t *testing.T) {
			spy := &spyRunner{}
			engine := newSpyEngine(t, spy, root)
			wd := domain.NewWorkingDir(root)

			result := engine.Execute(context.Background(), wd, command)

			assert.False(t, result.Success)
			assert.Equal(t, 1, result.ExitCode)
			assert.True(t, strings.HasPrefix(result.Stderr, "Failed to change directory: "), result.Stderr)
			assert.Equal(t, root, wd.Path())
			assert.Empty(t, spy.calls)
		})
	}
}

func TestNonDirectoryCommandAlwaysSpawnsInTrackedDir(t *testing.T) {
	spy := &spyRunner{out: RunOutput{Stdout: "a.txt\n"}}
	engine := newSpyEngine(t, spy, "/home/user")
	wd := domain.NewWorkingDir("/tmp/project")

	for _, command := range []string{"ls", "cd", "echo cd /", "cdx foo"} {
		engine.Execute(context.Background(), wd, command)
	}

	assert.Equal(t, []string{"ls", "cd", "echo cd /", "cdx foo"}, spy.calls)
	for _, dir := range spy.dirs {
		assert.Equal(t, "/tmp/project", dir)
	}
}

func TestRunnerErrorUsesSentinel(t *testing.T) {
	spy := &spyRunner{err: errors.New("exec: \"/bin/nope\": no such file")}
	engine := newSpyEngine(t, spy, "/")
	wd := domain.NewWorkingDir("/")

	result := engine.Execute(context.Background(), wd, "ls")

	assert.False(t, result.Success)
	assert.Equal(t, domain.ExitCodeSentinel, result.ExitCode)
	assert.Equal(t, "Error executing command: exec: \"/bin/nope\": no such file", result.Stderr)
}

func TestShellListsTrackedDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), nil, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), nil, 0o600))

	engine := NewEngine("/bin/sh", 5*time.Second, logger.NewNop())
	wd := domain.NewWorkingDir(dir)

	result := engine.Execute(context.Background(), wd, "ls")

	assert.True(t, result.Success)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "a.txt\nb.txt\n", result.Stdout)
	assert.Equal(t, dir, wd.Path())
}

func TestShellNonZeroExit(t *testing.T) {
	engine := NewEngine("/bin/sh", 5*time.Second, logger.NewNop())
	wd := domain.NewWorkingDir(t.TempDir())

	result := engine.Execute(context.Background(), wd, "echo oops >&2; exit 3")

	assert.False(t, result.Success)
	assert.Equal(t, 3, result.ExitCode)
	assert.Equal(t, "oops\n", result.Stderr)
}

func TestShellSignalledProcessIsNotSentinel(t *testing.T) {
	engine := NewEngine("/bin/sh", 5*time.Second, logger.NewNop())
	wd := domain.NewWorkingDir(t.TempDir())

	result := engine.Execute(context.Background(), wd, "kill -9 $$")

	assert.False(t, result.Success)
	assert.Equal(t, 128+9, result.ExitCode)
	assert.NotEqual(t, domain.ExitCodeSentinel, result.ExitCode)
	assert.False(t, result.TimedOut())
}

func TestShellTimeoutUsesSentinel(t *testing.T) {
	engine := NewEngine("/bin/sh", 200*time.Millisecond, logger.NewNop())
	wd := domain.NewWorkingDir(t.TempDir())

	start := time.Now()
	result := engine.Execute(context.Background(), wd, "sleep 5")

	assert.Less(t, time.Since(start), 4*time.Second)
	assert.False(t, result.Success)
	assert.Equal(t, domain.ExitCodeSentinel, result.ExitCode)
	assert.Equal(t, "Command timed out after 200ms", result.Stderr)
	assert.True(t, result.TimedOut())
}

func TestDescribeTimeout(t *testing.T) {
	assert.Equal(t, "30 seconds", describeTimeout(30*time.Second))
	assert.Equal(t, "1.5s", describeTimeout(1500*time.Millisecond))
}

func TestResyncFollowsProcessDirectory(t *testing.T) {
	cwd := "/start"
	getwd := func() (string, error) { return cwd, nil }
	runner := runnerFunc(func() { cwd = "/moved" })

	engine := NewEngine("/bin/sh", time.Second, logger.NewNop(), WithRunner(runner), WithGetwd(getwd))
	wd := domain.NewWorkingDir("/tracked")

	engine.Execute(context.Background(), wd, "weird-builtin")

	assert.Equal(t, "/moved", wd.Path())
}

func TestResyncKeepsTrackerWhenProcessDirectoryIsStable(t *testing.T) {
	getwd := func() (string, error) { return "/start", nil }
	engine := NewEngine("/bin/sh", time.Second, logger.NewNop(), WithRunner(&spyRunner{}), WithGetwd(getwd))
	wd := domain.NewWorkingDir("/tracked")

	engine.Execute(context.Background(), wd, "ls")

	assert.Equal(t, "/tracked", wd.Path())
}

func TestResyncIgnoresGetwdFailure(t *testing.T) {
	getwd := func() (string, error) { return "", errors.New("getwd: no such file") }
	engine := NewEngine("/bin/sh", time.Second, logger.NewNop(), WithRunner(&spyRunner{}), WithGetwd(getwd))
	wd := domain.NewWorkingDir("/tracked")

	result := engine.Execute(context.Background(), wd, "ls")

	assert.True(t, result.Success)
	assert.Equal(t, "/tracked", wd.Path())
}

type runnerFunc func()

func (f runnerFunc) Run(context.Context, string, string, string) (RunOutput, error) {
	f()
	return RunOutput{}, nil
}
