package domain

// HealthStatus indicates doctor check outcomes.
type HealthStatus string

const (
	HealthOK    HealthStatus = "ok"
	HealthWarn  HealthStatus = "warn"
	HealthError HealthStatus = "error"
)

// HealthCheck captures a single diagnostic result.
type HealthCheck struct {
	Name    string
	Status  HealthStatus
	Details string
}

// HealthReport aggregates checks.
type HealthReport struct {
	Checks []HealthCheck
	// Models lists what the backend reported, when it was reachable.
	Models []string
}

// Failed reports whether any check ended in error.
func (r HealthReport) Failed() bool {
	for _, check := range r.Checks {
		if check.Status == HealthError {
			return true
		}
	}
	return false
}

// ModelAvailable reports whether model appears in names, accepting the
// implicit ":latest" tag Ollama adds to untagged pulls.
func ModelAvailable(names []string, model string) bool {
	for _, name := range names {
		if name == model || name == model+":latest" {
			return true
		}
	}
	return false
}
