package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/neeleshseerapu/termagent/internal/domain"
	"github.com/neeleshseerapu/termagent/internal/ports"
)

const (
	// NoOpCommand is proposed when nothing usable can be recovered from the response.
	NoOpCommand = "echo 'Could not parse AI response'"

	fallbackExplanation = "AI response could not be parsed as JSON"
	fallbackWarning     = "Response format was unexpected, using fallback parsing"
)

var (
	fenceWithTag    = regexp.MustCompile("^```[A-Za-z0-9_+-]*[ \t]*\r?\n")
	fenceInlineJSON = regexp.MustCompile("^```(?i:json)")
	commandKeywords = regexp.MustCompile(`\b(ls|pwd|echo|cat|find|grep)\b`)
)

// extractor recovers a candidate command from response text, or reports no match.
type extractor func(text string) (string, bool)

// Interpreter converts raw completion text into a CommandProposal.
// It is total: every input yields a proposal.
type Interpreter struct {
	logger ports.Logger
	chain  []extractor
}

// NewInterpreter returns an interpreter using the default fallback chain:
// key/value command line, then a line mentioning a common read-only command.
func NewInterpreter(logger ports.Logger) *Interpreter {
	return &Interpreter{
		logger: logger,
		chain:  []extractor{extractKeyValueLine, extractKeywordLine},
	}
}

// Interpret never fails. Well-formed JSON is returned verbatim, including the
// model's own is_safe judgement. Anything recovered by the fallback chain is
// marked safe and carries a warning so the human sees it came from guessing.
func (i *Interpreter) Interpret(raw string) domain.CommandProposal {
	text := StripFences(raw)

	if proposal, isObject := decodeStrict(text); isObject {
		if proposal.Command != "" {
			return proposal
		}
		i.logger.Warn("model response has no command", map[string]interface{}{
			"response_bytes": len(raw),
		})
		return fallbackProposal(NoOpCommand)
	}

	command := NoOpCommand
	for idx, extract := range i.chain {
		if candidate, ok := extract(text); ok {
			command = candidate
			i.logger.Debug("recovered command with fallback extractor", map[string]interface{}{
				"extractor": idx,
			})
			break
		}
	}
	if command == NoOpCommand {
		i.logger.Warn("model response could not be interpreted", map[string]interface{}{
			"response_bytes": len(raw),
		})
	}

	return fallbackProposal(command)
}

func fallbackProposal(command string) domain.CommandProposal {
	return domain.CommandProposal{
		Command:     command,
		Explanation: fallbackExplanation,
		IsSafe:      true,
		Warning:     fallbackWarning,
	}
}

// StripFences removes a surrounding markdown code fence, with or without a
// language tag, along with outer whitespace.
func StripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		switch {
		case fenceWithTag.MatchString(text):
			text = fenceWithTag.ReplaceAllString(text, "")
		case fenceInlineJSON.MatchString(text):
			text = text[len("```json"):]
		default:
			text = text[len("```"):]
		}
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// decodeStrict reports whether text is a JSON object. An object is never
// handed to the fallback chain: its command is empty when the object has no
// usable string command.
func decodeStrict(text string) (domain.CommandProposal, bool) {
	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(text), &fields); err != nil || fields == nil {
		return domain.CommandProposal{}, false
	}
	command, _ := fields["command"].(string)
	if strings.TrimSpace(command) == "" {
		return domain.CommandProposal{}, true
	}

	normalized := map[string]interface{}{
		"command":     command,
		"explanation": stringify(fields["explanation"]),
		"warning":     stringify(fields["warning"]),
		"is_safe":     true,
	}
	if value, present := fields["is_safe"]; present {
		normalized["is_safe"] = truthy(value)
	}

	var proposal domain.CommandProposal
	if err := mapstructure.Decode(normalized, &proposal); err != nil {
		proposal = domain.CommandProposal{
			Command:     command,
			Explanation: normalized["explanation"].(string),
			IsSafe:      normalized["is_safe"].(bool),
			Warning:     normalized["warning"].(string),
		}
	}
	return proposal, true
}

// stringify renders any JSON value as display text.
func stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if text := stringify(item); text != "" {
				parts = append(parts, text)
			}
		}
		return strings.Join(parts, "; ")
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}

// truthy treats null, false, zero, empty values and negative words as unsafe.
func truthy(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "", "false", "no", "n", "0", "off":
			return false
		}
		return true
	case []interface{}:
		return len(v) > 0
	case map[string]interface{}:
		return len(v) > 0
	default:
		return true
	}
}

func extractKeyValueLine(text string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)
		if !strings.HasPrefix(lower, `"command"`) && !strings.HasPrefix(lower, "command") {
			continue
		}
		_, value, found := strings.Cut(trimmed, ":")
		if !found {
			continue
		}
		if candidate := cleanValue(value); candidate != "" {
			return candidate, true
		}
	}
	return "", false
}

func extractKeywordLine(text string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		if commandKeywords.MatchString(strings.ToLower(line)) {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				return trimmed, true
			}
		}
	}
	return "", false
}

func cleanValue(value string) string {
	value = strings.TrimSpace(value)
	value = strings.TrimRight(value, ",")
	value = strings.TrimSpace(value)
	for _, quote := range []string{`"`, "`"} {
		if len(value) >= 2 && strings.HasPrefix(value, quote) && strings.HasSuffix(value, quote) {
			value = value[1 : len(value)-1]
			break
		}
	}
	return strings.TrimSpace(value)
}

var _ ports.ResponseInterpreter = (*Interpreter)(nil)
