// Package prompt renders the text prompt sent to the model for each turn.
package prompt

import (
	"fmt"
	"strings"

	"github.com/neeleshseerapu/termagent/internal/domain"
)

const systemInstructions = `
You are a helpful AI assistant that converts natural language requests into safe terminal commands.
Your role is to:
1. Understand what the user wants to do
2. Generate appropriate terminal commands
3. ONLY generate safe commands (no destructive operations)
4. Provide clear explanations
5. Remember previous commands and context from the conversation

IMPORTANT SAFETY RULES:
- NEVER generate commands like 'rm -rf /', 'format', 'dd', or any destructive operations
- NEVER generate commands that could harm the system
- ONLY generate commands for file operations, system info, and safe utilities
- If unsure about safety, ask for clarification

Respond with a JSON object containing:
{
    "command": "the terminal command to run",
    "explanation": "what this command does",
    "is_safe": true/false,
    "warning": "any safety warnings (if applicable)"
}
`

// Builder assembles prompts from the request, the tracked directory and the
// most recent exchanges. It holds no state between calls.
type Builder struct {
	Window       int
	PreviewChars int
}

// NewBuilder returns a builder with the given history window and stdout preview length.
// Non-positive values fall back to the defaults.
func NewBuilder(window, previewChars int) Builder {
	if window <= 0 {
		window = domain.DefaultPromptWindow
	}
	if previewChars <= 0 {
		previewChars = domain.DefaultOutputPreviewChars
	}
	return Builder{Window: window, PreviewChars: previewChars}
}

// Build renders the prompt. Identical inputs always produce identical output.
func (b Builder) Build(request, workingDir string, history []domain.Exchange) string {
	parts := []string{systemInstructions}
	parts = append(parts, fmt.Sprintf("\nCURRENT WORKING DIRECTORY: %s", workingDir))

	recent := tail(history, b.window())
	if len(recent) > 0 {
		parts = append(parts, "\n\nCONVERSATION HISTORY:")
		for i, exchange := range recent {
			parts = append(parts,
				fmt.Sprintf("\n--- Exchange %d ---", i+1),
				"User: "+exchange.UserInput,
				"AI Command: "+commandOrNA(exchange.Proposal.Command),
				"Result: "+resultLabel(exchange.Result.Success),
			)
			if exchange.Result.Stdout != "" {
				parts = append(parts, fmt.Sprintf("Output: %s...", Preview(exchange.Result.Stdout, b.previewChars())))
			}
		}
	}

	parts = append(parts,
		fmt.Sprintf("\n\nCurrent User Request: %s", request),
		"\nGenerate a safe terminal command:",
	)
	return strings.Join(parts, "\n")
}

// Preview returns at most n characters of s, counted in runes.
func Preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// window never exceeds DefaultPromptWindow, whatever the configuration says.
func (b Builder) window() int {
	if b.Window <= 0 || b.Window > domain.DefaultPromptWindow {
		return domain.DefaultPromptWindow
	}
	return b.Window
}

func (b Builder) previewChars() int {
	if b.PreviewChars <= 0 {
		return domain.DefaultOutputPreviewChars
	}
	return b.PreviewChars
}

func tail(history []domain.Exchange, n int) []domain.Exchange {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

func commandOrNA(command string) string {
	if command == "" {
		return "N/A"
	}
	return command
}

func resultLabel(success bool) string {
	if success {
		return "Success"
	}
	return "Failed"
}
