package health

import "context"

// Checker reports the availability of one component.
type Checker interface {
	HealthCheck(ctx context.Context) error
}

// DBPinger checks cache store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// PingChecker adapts a DBPinger to Checker.
type PingChecker struct{ DB DBPinger }

// HealthCheck pings the store.
func (p PingChecker) HealthCheck(ctx context.Context) error { return p.DB.Ping(ctx) } //nolint:wrapcheck
