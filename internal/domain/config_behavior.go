package domain

import (
	"fmt"
	"strings"
	"time"
)

// Rich domain model: configuration knows its own defaults and invariants.

// GetBackendTimeout returns the model request timeout.
func (c *Config) GetBackendTimeout() time.Duration {
	if c.Backend.TimeoutSeconds <= 0 {
		return DefaultBackendTimeout
	}
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// GetCommandTimeout returns the wall-clock limit for executed commands.
func (c *Config) GetCommandTimeout() time.Duration {
	if c.Execution.TimeoutSeconds <= 0 {
		return DefaultCommandTimeout
	}
	return time.Duration(c.Execution.TimeoutSeconds) * time.Second
}

// GetExecutionShell returns the shell used to run non-cd commands.
func (c *Config) GetExecutionShell() string {
	if c.Execution.Shell == "" {
		return DefaultShell
	}
	return c.Execution.Shell
}

// GetHistorySize returns the conversation window capacity.
func (c *Config) GetHistorySize() int {
	if c.Session.HistorySize <= 0 {
		return DefaultHistorySize
	}
	return c.Session.HistorySize
}

// GetPromptWindow returns how many recent exchanges are rendered into a prompt.
func (c *Config) GetPromptWindow() int {
	if c.Session.PromptWindow <= 0 {
		return DefaultPromptWindow
	}
	return c.Session.PromptWindow
}

// GetOutputPreviewChars returns how much captured stdout is echoed into prompts.
func (c *Config) GetOutputPreviewChars() int {
	if c.Session.OutputPreviewChars <= 0 {
		return DefaultOutputPreviewChars
	}
	return c.Session.OutputPreviewChars
}

// GetConfirmStyle returns the confirmation prompt style.
func (c *Config) GetConfirmStyle() string {
	switch strings.ToLower(c.Execution.ConfirmStyle) {
	case ConfirmStyleHuh:
		return ConfirmStyleHuh
	default:
		return ConfirmStylePlain
	}
}

// IsAdvisoryEnabled checks if advisory rules should annotate proposals.
func (c *Config) IsAdvisoryEnabled() bool {
	return c.Security.AdvisoryEnabled
}

// ShouldPersistHistory checks if turns are archived across sessions.
func (c *Config) ShouldPersistHistory() bool {
	return c.History.Persist
}

// Validate checks the internal consistency of the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Backend.Endpoint) == "" {
		return fmt.Errorf("backend.endpoint must be set")
	}
	if !strings.HasPrefix(c.Backend.Endpoint, "http://") && !strings.HasPrefix(c.Backend.Endpoint, "https://") {
		return fmt.Errorf("backend.endpoint %q must be an http(s) URL", c.Backend.Endpoint)
	}
	if strings.TrimSpace(c.Backend.Model) == "" {
		return fmt.Errorf("backend.model must be set")
	}
	if c.Session.PromptWindow > DefaultPromptWindow {
		return fmt.Errorf("session.prompt_window (%d) must not exceed %d", c.Session.PromptWindow, DefaultPromptWindow)
	}
	if c.Session.PromptWindow > c.GetHistorySize() {
		return fmt.Errorf("session.prompt_window (%d) exceeds session.history_size (%d)", c.Session.PromptWindow, c.GetHistorySize())
	}
	switch strings.ToLower(c.Execution.ConfirmStyle) {
	case "", ConfirmStylePlain, ConfirmStyleHuh:
	default:
		return fmt.Errorf("execution.confirm_style %q must be %q or %q", c.Execution.ConfirmStyle, ConfirmStylePlain, ConfirmStyleHuh)
	}
	return nil
}
