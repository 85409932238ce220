package security

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/neeleshseerapu/termagent/internal/domain"
	"github.com/neeleshseerapu/termagent/internal/pkg/filesystem"
	"github.com/neeleshseerapu/termagent/internal/ports"
)

// Advisor annotates proposed commands with notes from regex rules. Its output
// is shown next to the proposal and never changes whether it may run.
type Advisor struct {
	enabled  bool
	patterns []compiledRule
}

type compiledRule struct {
	re   *regexp.Regexp
	rule AdvisoryRule
}

// AdvisoryRule describes one regex rule.
type AdvisoryRule struct {
	Pattern string `yaml:"pattern"`
	Level   string `yaml:"level"`
	Message string `yaml:"message"`
}

// RulesFile is the YAML schema root.
type RulesFile struct {
	Rules struct {
		Advisories []AdvisoryRule `yaml:"advisories"`
	} `yaml:"rules"`
}

// NewAdvisor loads rules from path, falling back to the built-in rules when the
// file is missing or lists none. A disabled advisor matches nothing.
func NewAdvisor(path string, enabled bool) (*Advisor, error) {
	if !enabled {
		return &Advisor{}, nil
	}
	rules, err := loadRules(path)
	if err != nil {
		return nil, err
	}

	compiled := make([]compiledRule, 0, len(rules.Rules.Advisories))
	for _, rule := range rules.Rules.Advisories {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile advisory pattern %q: %w", rule.Pattern, err)
		}
		compiled = append(compiled, compiledRule{re: re, rule: rule})
	}
	return &Advisor{enabled: true, patterns: compiled}, nil
}

// Advise implements ports.CommandAdvisor.
func (a *Advisor) Advise(command string) domain.Advisory {
	advisory := domain.Advisory{Level: domain.RiskSafe}
	if a == nil || !a.enabled {
		return advisory
	}
	for _, pattern := range a.patterns {
		if !pattern.re.MatchString(command) {
			continue
		}
		level := parseRiskLevel(pattern.rule.Level)
		if moreSevere(level, advisory.Level) {
			advisory.Level = level
		}
		advisory.Reasons = append(advisory.Reasons, pattern.rule.Message)
		advisory.MatchedRules = append(advisory.MatchedRules, pattern.rule.Pattern)
	}
	return advisory
}

func loadRules(path string) (RulesFile, error) {
	var rules RulesFile
	data, err := os.ReadFile(filesystem.ExpandHome(path))
	if err != nil {
		if path != "" && !errors.Is(err, os.ErrNotExist) {
			return RulesFile{}, fmt.Errorf("read advisory rules: %w", err)
		}
		rules.Rules.Advisories = DefaultRules()
		return rules, nil
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return RulesFile{}, fmt.Errorf("parse advisory rules: %w", err)
	}
	if len(rules.Rules.Advisories) == 0 {
		rules.Rules.Advisories = DefaultRules()
	}
	return rules, nil
}

func parseRiskLevel(value string) domain.RiskLevel {
	switch strings.ToLower(value) {
	case "low":
		return domain.RiskLow
	case "medium":
		return domain.RiskMedium
	case "high":
		return domain.RiskHigh
	case "critical":
		return domain.RiskCritical
	default:
		return domain.RiskSafe
	}
}

var severity = map[domain.RiskLevel]int{
	domain.RiskSafe:     0,
	domain.RiskLow:      1,
	domain.RiskMedium:   2,
	domain.RiskHigh:     3,
	domain.RiskCritical: 4,
}

func moreSevere(next, current domain.RiskLevel) bool {
	return severity[next] > severity[current]
}

// DefaultRules are used when no rules file is configured.
func DefaultRules() []AdvisoryRule {
	return []AdvisoryRule{
		{Pattern: `rm\s+-rf\s+/`, Level: "critical", Message: "Deletes from the filesystem root"},
		{Pattern: `rm\s+-rf\s+\*`, Level: "critical", Message: "Recursively deletes everything here"},
		{Pattern: `\bdd\s+if=`, Level: "critical", Message: "Raw disk write"},
		{Pattern: `\bmkfs\.`, Level: "critical", Message: "Formats a filesystem"},
		{Pattern: `>\s*/dev/(sd[a-z]|nvme)`, Level: "critical", Message: "Writes to a block device"},
		{Pattern: `:\(\)\s*\{\s*:\|:&\s*\};:`, Level: "critical", Message: "Fork bomb"},
		{Pattern: `curl.*\|\s*(sudo|sh|bash)`, Level: "high", Message: "Pipes a remote script into a shell"},
		{Pattern: `rm\s+-rf\s+(\$HOME|~)`, Level: "high", Message: "Deletes the home directory"},
		{Pattern: `\bsudo\b`, Level: "medium", Message: "Runs with elevated privileges"},
		{Pattern: `chmod\s+(-R\s+)?777`, Level: "medium", Message: "Overly permissive chmod"},
		{Pattern: `\brm\s`, Level: "low", Message: "Removes files"},
	}
}

var _ ports.CommandAdvisor = (*Advisor)(nil)
