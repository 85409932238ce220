package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Backend constants
const (
	// DefaultBackendEndpoint is the local Ollama server.
	DefaultBackendEndpoint = "http://localhost:11434"
	// DefaultModel is the model used for command synthesis.
	DefaultModel = "llama3.2"
	// DefaultBackendTimeout bounds a single completion request.
	DefaultBackendTimeout = 60 * time.Second
)

// Execution constants
const (
	// DefaultCommandTimeout is the hard wall-clock limit for an executed command.
	DefaultCommandTimeout = 30 * time.Second
	// DefaultShell runs non-cd commands.
	DefaultShell = "/bin/sh"
	// ExitCodeSentinel marks timeouts and internal failures; no real process exits with it.
	ExitCodeSentinel = -1
	// DirectoryChangeFailureExitCode is reported when a cd request fails.
	DirectoryChangeFailureExitCode = 1
)

// Session constants
const (
	// DefaultHistorySize is the conversation window capacity.
	DefaultHistorySize = 10
	// DefaultPromptWindow is the number of exchanges rendered into a prompt.
	DefaultPromptWindow = 3
	// DefaultOutputPreviewChars is how much stdout is echoed back into a prompt.
	DefaultOutputPreviewChars = 100
)

// Confirmation styles
const (
	ConfirmStylePlain = "plain"
	ConfirmStyleHuh   = "huh"
)

// History archive constants
const (
	// DefaultHistoryLimit is the default number of archived records to display
	DefaultHistoryLimit = 20
	// DefaultHistorySearchLimit is the default number of search results to return
	DefaultHistorySearchLimit = 50
)

// Time formats
const (
	// TimestampFormat is the standard timestamp format
	TimestampFormat = time.RFC3339
)
