package prompt

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neeleshseerapu/termagent/internal/domain"
)

func exchange(n int, stdout string, success bool) domain.Exchange {
	return domain.Exchange{
		UserInput: fmt.Sprintf("request %d", n),
		Proposal:  domain.CommandProposal{Command: fmt.Sprintf("echo %d", n), IsSafe: true},
		Result:    domain.ExecutionResult{Success: success, Stdout: stdout},
		Timestamp: time.Date(2024, 1, 1, 0, 0, n, 0, time.UTC),
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	b := NewBuilder(0, 0)
	history := []domain.Exchange{exchange(1, "a.txt\n", true), exchange(2, "", false)}

	first := b.Build("list files", "/tmp/project", history)
	second := b.Build("list files", "/tmp/project", history)

	assert.Equal(t, first, second)
}

func TestBuildWithoutHistory(t *testing.T) {
	out := NewBuilder(3, 100).Build("list files", "/tmp/project", nil)

	assert.Contains(t, out, "\nCURRENT WORKING DIRECTORY: /tmp/project")
	assert.NotContains(t, out, "CONVERSATION HISTORY:")
	assert.True(t, strings.HasSuffix(out, "Current User Request: list files\n\nGenerate a safe terminal command:"))
	assert.Contains(t, out, `"is_safe": true/false`)
}

func TestBuildIncludesOnlyRecentExchanges(t *testing.T) {
	var history []domain.Exchange
	for i := 1; i <= 5; i++ {
		history = append(history, exchange(i, "", true))
	}

	out := NewBuilder(3, 100).Build("next", "/", history)

	assert.NotContains(t, out, "User: request 1\n")
	assert.NotContains(t, out, "User: request 2\n")
	for i := 3; i <= 5; i++ {
		assert.Contains(t, out, fmt.Sprintf("User: request %d\n", i))
	}
	assert.Equal(t, 3, strings.Count(out, "--- Exchange "))
	assert.Contains(t, out, "--- Exchange 1 ---\nUser: request 3")
	assert.NotContains(t, out, "--- Exchange 4 ---")
}

func TestBuildNeverExceedsThreeExchanges(t *testing.T) {
	var history []domain.Exchange
	for i := 1; i <= 10; i++ {
		history = append(history, exchange(i, "", true))
	}

	out := NewBuilder(10, 100).Build("next", "/", history)

	assert.Equal(t, 3, strings.Count(out, "--- Exchange "))
	assert.Contains(t, out, "--- Exchange 1 ---\nUser: request 8")
	assert.NotContains(t, out, "User: request 7\n")
}

func TestBuildExchangeLayout(t *testing.T) {
	history := []domain.Exchange{exchange(1, "", false)}

	out := NewBuilder(3, 100).Build("again", "/home", history)

	want := "\n\nCONVERSATION HISTORY:\n\n--- Exchange 1 ---\nUser: request 1\nAI Command: echo 1\nResult: Failed\n\n\nCurrent User Request: again"
	assert.Contains(t, out, want)
	assert.NotContains(t, out, "Output:")
}

func TestBuildTruncatesOutputPreview(t *testing.T) {
	long := strings.Repeat("x", 250)
	history := []domain.Exchange{exchange(1, long, true)}

	out := NewBuilder(3, 100).Build("again", "/home", history)

	require.Contains(t, out, "Output: "+strings.Repeat("x", 100)+"...\n")
	assert.NotContains(t, out, strings.Repeat("x", 101))
}

func TestPreviewCountsRunes(t *testing.T) {
	assert.Equal(t, "héé", Preview("héééé", 3))
	assert.Equal(t, "ab", Preview("ab", 10))
}
