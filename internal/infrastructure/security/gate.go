// Package security holds the safety gate and the display-only command advisor.
package security

import (
	"github.com/neeleshseerapu/termagent/internal/domain"
	"github.com/neeleshseerapu/termagent/internal/ports"
)

const defaultRefusalReason = "Command deemed unsafe"

// Gate refuses proposals the model itself marked unsafe. It does not inspect
// the command text.
type Gate struct{}

// NewGate returns the gate.
func NewGate() Gate {
	return Gate{}
}

// Check implements ports.SafetyGate.
func (Gate) Check(proposal domain.CommandProposal) domain.Verdict {
	if proposal.IsSafe {
		return domain.Verdict{Allowed: true}
	}
	reason := proposal.Warning
	if reason == "" {
		reason = defaultRefusalReason
	}
	return domain.Verdict{Allowed: false, Reason: reason}
}

var _ ports.SafetyGate = Gate{}
