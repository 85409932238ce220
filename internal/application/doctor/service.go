package doctor

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/neeleshseerapu/termagent/internal/domain"
	"github.com/neeleshseerapu/termagent/internal/ports"
)

// Service runs environment diagnostics.
type Service struct {
	Client  ports.ModelClient
	Advisor ports.CommandAdvisor
	Archive ports.HistoryRepository
}

// Preflight checks that the backend answers and serves the configured model.
// Its error wraps domain.ErrBackendUnavailable or domain.ErrModelNotFound.
func (s *Service) Preflight(ctx context.Context) ([]string, error) {
	models, err := s.Client.ListModels(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrBackendUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
	}
	if !domain.ModelAvailable(models, s.Client.Model()) {
		return models, fmt.Errorf("%w: %s", domain.ErrModelNotFound, s.Client.Model())
	}
	return models, nil
}

// Run executes checks and returns a report.
func (s *Service) Run(ctx context.Context, cfg domain.Config) domain.HealthReport {
	var checks []domain.HealthCheck

	if err := cfg.Validate(); err != nil {
		checks = append(checks, fail("Config", err.Error()))
	} else {
		checks = append(checks, ok("Config", fmt.Sprintf("format version %s", cfg.ConfigFormatVersion)))
	}

	models, err := s.Preflight(ctx)
	switch {
	case errors.Is(err, domain.ErrModelNotFound):
		checks = append(checks, ok("Backend", fmt.Sprintf("%s reachable, %d models", cfg.Backend.Endpoint, len(models))))
		checks = append(checks, fail("Model", Remediation(err, s.Client.Model())))
	case err != nil:
		checks = append(checks, fail("Backend", Remediation(err, s.Client.Model())))
	default:
		checks = append(checks, ok("Backend", fmt.Sprintf("%s reachable, %d models", cfg.Backend.Endpoint, len(models))))
		checks = append(checks, ok("Model", fmt.Sprintf("%s installed", s.Client.Model())))
	}

	shell := cfg.GetExecutionShell()
	if path, err := exec.LookPath(shell); err != nil {
		checks = append(checks, fail("Shell", fmt.Sprintf("%s not found: %v", shell, err)))
	} else {
		checks = append(checks, ok("Shell", path))
	}

	switch {
	case !cfg.IsAdvisoryEnabled():
		checks = append(checks, warn("Advisory rules", "disabled"))
	case s.Advisor == nil:
		checks = append(checks, warn("Advisory rules", "advisor not initialized"))
	default:
		checks = append(checks, ok("Advisory rules", "rules loaded"))
	}

	switch {
	case !cfg.ShouldPersistHistory():
		checks = append(checks, warn("History archive", "persistence disabled"))
	case s.Archive == nil:
		checks = append(checks, warn("History archive", "archive not initialized"))
	default:
		if _, err := s.Archive.Records(1, ""); err != nil {
			checks = append(checks, fail("History archive", err.Error()))
		} else {
			checks = append(checks, ok("History archive", s.Archive.Path()))
		}
	}

	return domain.HealthReport{Checks: checks, Models: models}
}

// Remediation explains how to fix a preflight failure.
func Remediation(err error, model string) string {
	switch {
	case errors.Is(err, domain.ErrModelNotFound):
		return fmt.Sprintf("model %s is not installed; run: ollama pull %s", model, model)
	case errors.Is(err, domain.ErrBackendUnavailable):
		return fmt.Sprintf("cannot reach Ollama (%v); start it with: ollama serve", err)
	default:
		return err.Error()
	}
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
