package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neeleshseerapu/termagent/internal/domain"
)

func TestGateRefusesUnsafeProposal(t *testing.T) {
	verdict := NewGate().Check(domain.CommandProposal{Command: "rm -rf build", IsSafe: false, Warning: "destructive"})
	assert.False(t, verdict.Allowed)
	assert.Equal(t, "destructive", verdict.Reason)

	verdict = NewGate().Check(domain.CommandProposal{Command: "rm -rf build"})
	assert.Equal(t, defaultRefusalReason, verdict.Reason)
}

func TestGateIgnoresCommandText(t *testing.T) {
	verdict := NewGate().Check(domain.CommandProposal{Command: "rm -rf /", IsSafe: true})
	assert.True(t, verdict.Allowed, "gate must trust is_safe")
}

func TestAdvisorFlagsCriticalCommands(t *testing.T) {
	advisor, err := NewAdvisor("", true)
	require.NoError(t, err)

	advisory := advisor.Advise("rm -rf /")
	assert.Equal(t, domain.RiskCritical, advisory.Level)
	assert.False(t, advisory.Empty())
}

func TestAdvisorLeavesSafeCommandAlone(t *testing.T) {
	advisor, err := NewAdvisor("", true)
	require.NoError(t, err)

	advisory := advisor.Advise("ls -la")
	assert.Equal(t, domain.RiskSafe, advisory.Level)
	assert.True(t, advisory.Empty())
}

func TestAdvisorDisabled(t *testing.T) {
	advisor, err := NewAdvisor("/does/not/matter.yaml", false)
	require.NoError(t, err)
	assert.True(t, advisor.Advise("sudo rm -rf /").Empty())
}

func TestAdvisorLoadsRulesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "advisory.yaml")
	content := []byte(`rules:
  advisories:
    - pattern: 'git\s+push\s+--force'
      level: high
      message: Rewrites remote history
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	advisor, err := NewAdvisor(path, true)
	require.NoError(t, err)

	advisory := advisor.Advise("git push --force origin main")
	assert.Equal(t, domain.RiskHigh, advisory.Level)
	assert.Equal(t, []string{"Rewrites remote history"}, advisory.Reasons)
	assert.True(t, advisor.Advise("rm -rf /").Empty(), "file rules replace defaults")
}

func TestAdvisorRejectsBadPattern(t *testing.T) {
	path := filepath.Join(t.TempDir(), "advisory.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  advisories:\n    - pattern: '('\n"), 0o600))

	_, err := NewAdvisor(path, true)
	assert.Error(t, err)
}
