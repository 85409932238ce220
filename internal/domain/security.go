package domain

// Verdict is the safety gate outcome for a proposal.
type Verdict struct {
	Allowed bool
	Reason  string
}

// RiskLevel grades an advisory note.
type RiskLevel string

const (
	RiskSafe     RiskLevel = "safe"
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Advisory collects display-only notes about a proposed command. It never
// changes whether the command may run; that is decided by the gate and the
// human confirmation alone.
type Advisory struct {
	Level        RiskLevel
	Reasons      []string
	MatchedRules []string
}

// Empty reports whether no advisory rule matched.
func (a Advisory) Empty() bool {
	return len(a.Reasons) == 0
}
