package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

// --- Mocks ---

type mockChecker struct {
	err error
}

func (m *mockChecker) HealthCheck(_ context.Context) error { return m.err }

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) Ping(_ context.Context) error { return m.err }

type slowChecker struct{}

func (slowChecker) HealthCheck(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockChecker{}, &mockChecker{}, PingChecker{DB: &mockDBPinger{}})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	for _, name := range []string{ComponentDatasets, ComponentEmbedding, ComponentCache} {
		if r.Checks[name] != CheckOK {
			t.Errorf("expected %s %q, got %q", name, CheckOK, r.Checks[name])
		}
	}
}

func TestCheck_DatasetsError(t *testing.T) {
	svc := New(&mockChecker{err: errors.New("missing file")}, &mockChecker{}, nil)
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks[ComponentDatasets] != CheckError {
		t.Errorf("expected datasets %q, got %q", CheckError, r.Checks[ComponentDatasets])
	}
	if r.Checks[ComponentEmbedding] != CheckOK {
		t.Errorf("expected embedding %q, got %q", CheckOK, r.Checks[ComponentEmbedding])
	}
}

func TestCheck_CacheError(t *testing.T) {
	svc := New(&mockChecker{}, &mockChecker{}, PingChecker{DB: &mockDBPinger{err: errors.New("conn refused")}})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks[ComponentCache] != CheckError {
		t.Errorf("expected cache %q, got %q", CheckError, r.Checks[ComponentCache])
	}
}

func TestCheck_AllFail(t *testing.T) {
	svc := New(
		&mockChecker{err: errors.New("no data")},
		&mockChecker{err: errors.New("emb down")},
		nil,
	)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
}

func TestCheck_OptionalComponentsAbsent(t *testing.T) {
	svc := New(&mockChecker{}, nil, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks[ComponentEmbedding]; ok {
		t.Error("embedding check should be absent when embedding is nil")
	}
	if _, ok := r.Checks[ComponentCache]; ok {
		t.Error("cache check should be absent when cache is nil")
	}
}

func TestCheck_Timeout(t *testing.T) {
	svc := New(&mockChecker{}, slowChecker{}, nil)
	svc.timeout = 10 * time.Millisecond

	r := svc.Check(context.Background())
	if r.Checks[ComponentEmbedding] != CheckError {
		t.Errorf("expected timed out check to fail, got %q", r.Checks[ComponentEmbedding])
	}
	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
}
