package session

import (
	"strings"

	"github.com/google/uuid"

	"github.com/neeleshseerapu/termagent/internal/domain"
)

// Phase is where a session is within a turn.
type Phase string

const (
	PhaseIdle               Phase = "idle"
	PhaseAwaitingGeneration Phase = "awaiting_generation"
	PhaseProposalReady      Phase = "proposal_ready"
	PhaseConfirmed          Phase = "confirmed"
	PhaseSkipped            Phase = "skipped"
	PhaseExecuted           Phase = "executed"
	PhaseAborted            Phase = "aborted"
)

// State is everything a session owns: the conversation window, the tracked
// directory and an identifier tying archived turns together.
type State struct {
	ID         string
	History    *domain.History
	WorkingDir *domain.WorkingDir
	Phase      Phase
}

// NewState starts a session in dir with a history window of historySize.
func NewState(historySize int, dir string) *State {
	return &State{
		ID:         uuid.NewString(),
		History:    domain.NewHistory(historySize),
		WorkingDir: domain.NewWorkingDir(dir),
		Phase:      PhaseIdle,
	}
}

// Meta is a request handled locally without consulting the model.
type Meta int

const (
	MetaNone Meta = iota
	MetaEmpty
	MetaQuit
	MetaHistory
	MetaClear
	MetaWhere
)

// ParseMeta classifies input. Matching is exact after trimming and lower-casing.
func ParseMeta(input string) Meta {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "":
		return MetaEmpty
	case "quit", "exit", "q":
		return MetaQuit
	case "history":
		return MetaHistory
	case "clear":
		return MetaClear
	case "pwd", "where am i", "current directory":
		return MetaWhere
	default:
		return MetaNone
	}
}
