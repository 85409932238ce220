package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neeleshseerapu/termagent/internal/domain"
)

func TestPlainReaderReadsLines(t *testing.T) {
	var out bytes.Buffer
	reader := NewPlainReader(strings.NewReader("list files\r\nlast line"), &out)

	line, err := reader.ReadLine(context.Background(), "> ")
	require.NoError(t, err)
	assert.Equal(t, "list files", line)

	line, err = reader.ReadLine(context.Background(), "> ")
	require.NoError(t, err)
	assert.Equal(t, "last line", line)

	_, err = reader.ReadLine(context.Background(), "> ")
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "> > > ", out.String())
}

func TestPlainReaderReturnsOnCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	reader := NewPlainReader(pr, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := reader.ReadLine(ctx, "> ")
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, domain.ErrAborted)
	case <-time.After(2 * time.Second):
		t.Fatal("ReadLine did not return after cancellation")
	}

	_, err := reader.ReadLine(ctx, "> ")
	assert.ErrorIs(t, err, domain.ErrAborted)
}

func TestPrompterCancelledAborts(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	prompter := NewPrompter(domain.ConfirmStylePlain, NewPlainReader(pr, io.Discard))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := prompter.Confirm(ctx, domain.CommandProposal{Command: "ls"}, domain.Advisory{})
	assert.ErrorIs(t, err, domain.ErrAborted)
}

func TestPrompterAnswers(t *testing.T) {
	cases := map[string]bool{
		"y\n":     true,
		"YES\n":   true,
		" yes \n": true,
		"n\n":     false,
		"\n":      false,
		"sure\n":  false,
	}
	for input, want := range cases {
		var out bytes.Buffer
		prompter := NewPrompter(domain.ConfirmStylePlain, NewPlainReader(strings.NewReader(input), &out))
		got, err := prompter.Confirm(context.Background(), domain.CommandProposal{Command: "ls"}, domain.Advisory{})
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
		assert.Contains(t, out.String(), "Execute this command? (y/n): ")
	}
}

func TestPrompterEOFAborts(t *testing.T) {
	prompter := NewPrompter(domain.ConfirmStylePlain, NewPlainReader(strings.NewReader(""), io.Discard))
	_, err := prompter.Confirm(context.Background(), domain.CommandProposal{Command: "ls"}, domain.Advisory{})
	assert.ErrorIs(t, err, domain.ErrAborted)
}

func TestNewPrompterSelectsHuh(t *testing.T) {
	_, ok := NewPrompter(domain.ConfirmStyleHuh, nil).(*HuhPrompter)
	assert.True(t, ok)
}

func newTestRenderer(out *bytes.Buffer) *Renderer {
	r := NewRenderer(out, 10)
	r.now = func() time.Time { return time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC) }
	return r
}

func TestRendererProposalAndResult(t *testing.T) {
	var out bytes.Buffer
	r := newTestRenderer(&out)

	r.Proposal(domain.CommandProposal{
		Command:     "rm -r build",
		Explanation: "Removes the build directory",
		IsSafe:      true,
		Warning:     "Deletes files",
	}, domain.Advisory{Level: domain.RiskHigh, Reasons: []string{"recursive delete"}})
	r.Result(domain.ExecutionResult{Success: false, Stderr: "permission denied", ExitCode: 1})

	text := out.String()
	assert.Contains(t, text, "Generated command: rm -r build")
	assert.Contains(t, text, "Explanation: Removes the build directory")
	assert.Contains(t, text, "Warning: Deletes files")
	assert.Contains(t, text, "Advisory: HIGH")
	assert.Contains(t, text, " - recursive delete")
	assert.Contains(t, text, "Command failed (exit code 1)")
	assert.Contains(t, text, "permission denied\n")
	assert.Contains(t, text, strings.Repeat("-", separatorWidth))
}

func TestRendererHistory(t *testing.T) {
	var out bytes.Buffer
	r := newTestRenderer(&out)

	r.History(nil)
	assert.Equal(t, "No conversation history yet.\n", out.String())

	out.Reset()
	r.History([]domain.Exchange{{
		UserInput: "show files",
		Proposal:  domain.CommandProposal{Command: "ls"},
		Result:    domain.ExecutionResult{Success: true, Stdout: "abcdefghijklmnop\n"},
		Timestamp: time.Date(2026, 1, 2, 11, 0, 0, 0, time.UTC),
	}})
	text := out.String()
	assert.Contains(t, text, "Conversation History (1 exchanges):")
	assert.Contains(t, text, "User: show files")
	assert.Contains(t, text, "AI Command: ls")
	assert.Contains(t, text, "Result: Success")
	assert.Contains(t, text, "Output: abcdefghij...")
	assert.Contains(t, text, "Time: 1 hour ago")
}

func TestRendererMessages(t *testing.T) {
	var out bytes.Buffer
	r := newTestRenderer(&out)

	stop := r.Thinking()
	stop()
	r.Refused(domain.Verdict{Reason: "Command deemed unsafe"})
	r.Skipped()
	r.HistoryCleared()
	r.WorkingDir("/tmp")
	r.Failure(errors.New("boom"))
	r.Goodbye()

	text := out.String()
	for _, want := range []string{
		"Thinking...",
		"Command deemed unsafe",
		"Skipped.",
		"Conversation history cleared!",
		"Current working directory: /tmp",
		"Error: boom",
		"Goodbye!",
	} {
		assert.Contains(t, text, want)
	}
}

func TestRendererModelsMarksCurrent(t *testing.T) {
	var out bytes.Buffer
	r := newTestRenderer(&out)
	r.Models([]string{"mistral:latest", "llama3.2:latest"}, "llama3.2")
	assert.Equal(t, "  mistral:latest\n* llama3.2:latest\n", out.String())
}

func TestRendererReport(t *testing.T) {
	var out bytes.Buffer
	r := newTestRenderer(&out)
	r.Report(domain.HealthReport{Checks: []domain.HealthCheck{
		{Name: "Backend", Status: domain.HealthOK, Details: "reachable"},
		{Name: "Model", Status: domain.HealthError, Details: "missing"},
	}})
	text := out.String()
	assert.Contains(t, text, "[ok]")
	assert.Contains(t, text, "[fail]")
	assert.Contains(t, text, "missing")
}

func TestDescribeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.jsonl")
	assert.Equal(t, path, describeFile(path))

	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("x"), 2048), 0o600))
	assert.Equal(t, path+" (2.0 kB)", describeFile(path))
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	var out bytes.Buffer
	stop := StartSpinner(&out, "Thinking...")
	stop()
	stop()
	assert.True(t, strings.HasSuffix(out.String(), "\r\033[K"))
}
