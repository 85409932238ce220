// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and external
// adapters (infrastructure). The session loop depends only on these abstractions,
// so the model backend, the process runner and the terminal can all be swapped
// for stubs in tests.
//
// Key architectural concepts:
//   - Ports: Interfaces defined here (e.g., ModelClient, CommandExecutor)
//   - Adapters: Concrete implementations in the infrastructure layer
//   - Dependency inversion: Application depends on abstractions, not implementations
package ports

import (
	"context"

	"github.com/neeleshseerapu/termagent/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.termagent/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// ModelClient sends prompts to the completion backend.
// Generate returns the raw completion text unmodified; parsing is not its job.
type ModelClient interface {
	Model() string
	Generate(ctx context.Context, prompt string) (string, error)
	ListModels(ctx context.Context) ([]string, error)
}

// ResponseInterpreter turns raw completion text into a proposal. It never fails.
type ResponseInterpreter interface {
	Interpret(raw string) domain.CommandProposal
}

// SafetyGate decides whether a proposal may proceed to confirmation.
type SafetyGate interface {
	Check(domain.CommandProposal) domain.Verdict
}

// CommandAdvisor annotates a command with display-only notes.
type CommandAdvisor interface {
	Advise(command string) domain.Advisory
}

// CommandExecutor runs a command against the tracked working directory,
// updating the tracker when the command changes directory.
type CommandExecutor interface {
	Execute(ctx context.Context, wd *domain.WorkingDir, command string) domain.ExecutionResult
}

// ConfirmationPrompter asks the human to approve a proposal.
// It returns domain.ErrAborted when the user interrupts or ctx is cancelled.
type ConfirmationPrompter interface {
	Confirm(ctx context.Context, proposal domain.CommandProposal, advisory domain.Advisory) (bool, error)
}

// LineReader reads one request per call. It returns domain.ErrAborted on
// interrupt or ctx cancellation, and io.EOF when input ends.
type LineReader interface {
	ReadLine(ctx context.Context, prompt string) (string, error)
	Close() error
}

// Presenter renders session events for the human.
type Presenter interface {
	Banner(model, workingDir string)
	Thinking() func()
	Proposal(proposal domain.CommandProposal, advisory domain.Advisory)
	Refused(verdict domain.Verdict)
	Skipped()
	Result(result domain.ExecutionResult)
	History(exchanges []domain.Exchange)
	HistoryCleared()
	WorkingDir(path string)
	Failure(err error)
	Goodbye()
}

// HistoryRepository persists turns across sessions.
type HistoryRepository interface {
	Save(record domain.HistoryRecord) error
	Records(limit int, search string) ([]domain.HistoryRecord, error)
	Clear() error
	ExportJSON(dest string) error
	Path() string
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
