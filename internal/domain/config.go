package domain

// Config mirrors ~/.termagent/config.yaml.
type Config struct {
	ConfigFormatVersion string            `yaml:"config_format_version"`
	Backend             BackendSettings   `yaml:"backend"`
	Session             SessionSettings   `yaml:"session"`
	Execution           ExecutionSettings `yaml:"execution"`
	Security            SecuritySettings  `yaml:"security"`
	History             HistorySettings   `yaml:"history"`
}

// BackendSettings locates the completion backend and the model to use.
type BackendSettings struct {
	Endpoint       string `yaml:"endpoint"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// SessionSettings bounds the conversational context.
type SessionSettings struct {
	HistorySize        int `yaml:"history_size"`
	PromptWindow       int `yaml:"prompt_window"`
	OutputPreviewChars int `yaml:"output_preview_chars"`
}

// ExecutionSettings controls how commands run.
type ExecutionSettings struct {
	Shell          string `yaml:"shell"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	ConfirmStyle   string `yaml:"confirm_style"`
}

// SecuritySettings configures the display-only command advisory.
type SecuritySettings struct {
	AdvisoryEnabled bool   `yaml:"advisory_enabled"`
	RulesFile       string `yaml:"rules_file"`
}

// HistorySettings configures the persistent history archive.
type HistorySettings struct {
	Persist bool   `yaml:"persist"`
	Path    string `yaml:"path"`
}
