package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks: the index must have been built at least
// once, and every registered provider backend must answer a ping.
type Service struct {
	index    IndexReader
	backends map[string]BackendPinger
}

// New creates a Service.
func New(index IndexReader) *Service {
	return &Service{index: index, backends: make(map[string]BackendPinger)}
}

// WithBackend registers a named backend ping (called during composition).
func (s *Service) WithBackend(name string, p BackendPinger) *Service {
	s.backends[name] = p
	return s
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.index.Current().Ready() {
		checks["index"] = CheckOK
	} else {
		checks["index"] = CheckError
	}

	for name, p := range s.backends {
		if err := p.Ping(ctx); err != nil {
			checks[name] = CheckError
		} else {
			checks[name] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
