package health

import (
	"context"
	"sync"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names reported by Check.
const (
	ComponentDatasets  = "datasets"
	ComponentEmbedding = "embedding"
	ComponentCache     = "cache"
)

// DefaultTimeout bounds each component check.
const DefaultTimeout = 5 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// Service coordinates health checks.
type Service struct {
	checks  map[string]Checker
	timeout time.Duration
}

// New creates a Service. Nil checkers are skipped; datasets is required.
func New(datasets, embedding, cache Checker) *Service {
	checks := map[string]Checker{ComponentDatasets: datasets}
	if embedding != nil {
		checks[ComponentEmbedding] = embedding
	}
	if cache != nil {
		checks[ComponentCache] = cache
	}
	return &Service{checks: checks, timeout: DefaultTimeout}
}

// Check runs all component checks concurrently.
// Every check failing is Unhealthy, some failing is Degraded.
func (s *Service) Check(ctx context.Context) Report {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		checks = make(map[string]CheckResult, len(s.checks))
	)
	for name, c := range s.checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			res := CheckOK
			if err := c.HealthCheck(cctx); err != nil {
				res = CheckError
			}
			mu.Lock()
			checks[name] = res
			mu.Unlock()
		}()
	}
	wg.Wait()

	failed := 0
	for _, v := range checks {
		if v == CheckError {
			failed++
		}
	}

	status := Healthy
	switch {
	case failed == len(checks):
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
