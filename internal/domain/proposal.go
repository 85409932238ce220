// Package domain defines core entities and value objects for termagent.
//
// The domain layer is independent of infrastructure concerns: it holds the
// command proposal produced by the model, the result of running it, the
// bounded conversation history and the tracked working directory.
package domain

import (
	"fmt"
	"time"
)

// CommandProposal is the structured reply the model is asked to produce.
// It is created fresh for every turn and never mutated afterwards.
type CommandProposal struct {
	Command     string `json:"command" mapstructure:"command"`
	Explanation string `json:"explanation" mapstructure:"explanation"`
	IsSafe      bool   `json:"is_safe" mapstructure:"is_safe"`
	Warning     string `json:"warning,omitempty" mapstructure:"warning"`
}

// HasWarning reports whether the proposal carries a non-blank warning.
func (p CommandProposal) HasWarning() bool {
	return p.Warning != ""
}

// BackendFailureProposal is offered when the model could not be reached
// mid-session. Its command is a harmless echo.
func BackendFailureProposal(err error) CommandProposal {
	return CommandProposal{
		Command:     "echo 'Error generating command'",
		Explanation: fmt.Sprintf("Error: %v", err),
		IsSafe:      true,
		Warning:     "Failed to generate command",
	}
}

// ExecutionResult captures the outcome of running a proposal.
type ExecutionResult struct {
	Success  bool          `json:"success"`
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr"`
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"duration"`
}

// TimedOut reports whether the result is the timeout/internal failure sentinel.
func (r ExecutionResult) TimedOut() bool {
	return !r.Success && r.ExitCode == ExitCodeSentinel
}

// Exchange is one completed turn. Immutable once appended to a History.
type Exchange struct {
	UserInput string          `json:"user_input"`
	Proposal  CommandProposal `json:"command_proposal"`
	Result    ExecutionResult `json:"execution_result"`
	Timestamp time.Time       `json:"timestamp"`
}
