package app

import (
	"context"
	"fmt"
	"io"

	"github.com/neeleshseerapu/termagent/internal/application/doctor"
	"github.com/neeleshseerapu/termagent/internal/application/prompt"
	"github.com/neeleshseerapu/termagent/internal/application/session"
	"github.com/neeleshseerapu/termagent/internal/domain"
	"github.com/neeleshseerapu/termagent/internal/infrastructure/ai"
	"github.com/neeleshseerapu/termagent/internal/infrastructure/config"
	"github.com/neeleshseerapu/termagent/internal/infrastructure/executor"
	"github.com/neeleshseerapu/termagent/internal/infrastructure/history"
	"github.com/neeleshseerapu/termagent/internal/infrastructure/security"
	"github.com/neeleshseerapu/termagent/internal/pkg/logger"
	"github.com/neeleshseerapu/termagent/internal/ports"
)

// Options selects how the container is built.
type Options struct {
	ConfigPath string
	Model      string
	Verbose    bool
}

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config        domain.Config
	ConfigLoader  *config.FileLoader
	Logger        *logger.ZapLogger
	Client        *ai.OllamaClient
	Interpreter   *ai.Interpreter
	Gate          security.Gate
	Advisor       *security.Advisor
	Executor      *executor.Engine
	Builder       prompt.Builder
	HistoryStore  ports.HistoryRepository
	DoctorService *doctor.Service
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	log, err := logger.New(opts.Verbose)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	cfgLoader := config.NewFileLoader(opts.ConfigPath)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}
	if opts.Model != "" {
		cfg.Backend.Model = opts.Model
	}
	log.Debug("configuration loaded", map[string]interface{}{
		"path":     cfgLoader.Path(),
		"endpoint": cfg.Backend.Endpoint,
		"model":    cfg.Backend.Model,
	})

	advisor, err := security.NewAdvisor(cfg.Security.RulesFile, cfg.IsAdvisoryEnabled())
	if err != nil {
		log.Warn("advisory rules unusable, falling back to defaults", map[string]interface{}{
			"rules_file": cfg.Security.RulesFile,
			"error":      err.Error(),
		})
		advisor, err = security.NewAdvisor("", cfg.IsAdvisoryEnabled())
		if err != nil {
			return nil, err
		}
	}

	var historyStore ports.HistoryRepository
	if cfg.ShouldPersistHistory() {
		historyStore, err = history.Open(cfg.History.Path)
		if err != nil {
			log.Warn("history archive unavailable", map[string]interface{}{
				"path":  cfg.History.Path,
				"error": err.Error(),
			})
			historyStore = nil
		}
	}

	client := ai.NewOllamaClient(cfg.Backend.Endpoint, cfg.Backend.Model, cfg.GetBackendTimeout(), log)

	return &Container{
		Config:       cfg,
		ConfigLoader: cfgLoader,
		Logger:       log,
		Client:       client,
		Interpreter:  ai.NewInterpreter(log),
		Gate:         security.NewGate(),
		Advisor:      advisor,
		Executor:     executor.NewEngine(cfg.GetExecutionShell(), cfg.GetCommandTimeout(), log),
		Builder:      prompt.NewBuilder(cfg.GetPromptWindow(), cfg.GetOutputPreviewChars()),
		HistoryStore: historyStore,
		DoctorService: &doctor.Service{
			Client:  client,
			Advisor: advisor,
			Archive: historyStore,
		},
	}, nil
}

// NewSessionService builds the session loop around the terminal adapters.
func (c *Container) NewSessionService(prompter ports.ConfirmationPrompter, presenter ports.Presenter) *session.Service {
	return &session.Service{
		Client:      c.Client,
		Builder:     c.Builder,
		Interpreter: c.Interpreter,
		Gate:        c.Gate,
		Advisor:     c.Advisor,
		Executor:    c.Executor,
		Prompter:    prompter,
		Presenter:   presenter,
		Archive:     c.HistoryStore,
		Logger:      c.Logger,
	}
}

// NewSessionState starts a session rooted at dir.
func (c *Container) NewSessionState(dir string) *session.State {
	return session.NewState(c.Config.GetHistorySize(), dir)
}

// Close releases held resources.
func (c *Container) Close() error {
	if closer, ok := c.HistoryStore.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return err
		}
	}
	_ = c.Logger.Sync()
	return nil
}
