package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doFrom(h http.Handler, path, addr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	req.RemoteAddr = addr
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestRateLimit_Disabled_PassThrough(t *testing.T) {
	handler := RateLimitMiddleware(0, 0)(okHandler())

	for range 50 {
		if rr := doFrom(handler, "/v1/occupations", "10.0.0.1:1234"); rr.Code != http.StatusOK {
			t.Fatalf("disabled limiter: got %d, want %d", rr.Code, http.StatusOK)
		}
	}
}

func TestRateLimit_BurstThen429(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	handler := rateLimit(1, 2, clock.now)(okHandler())

	for i := range 2 {
		if rr := doFrom(handler, "/v1/match", "10.0.0.1:1234"); rr.Code != http.StatusOK {
			t.Fatalf("request %d: got %d, want %d", i, rr.Code, http.StatusOK)
		}
	}

	rr := doFrom(handler, "/v1/match", "10.0.0.1:1234")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusTooManyRequests)
	}
	if rr.Header().Get("Retry-After") != "1" {
		t.Errorf("expected Retry-After 1, got %q", rr.Header().Get("Retry-After"))
	}
	var errResp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Code != CodeRateLimited {
		t.Errorf("got code %q, want %q", errResp.Code, CodeRateLimited)
	}

	clock.t = clock.t.Add(time.Second)
	if rr := doFrom(handler, "/v1/match", "10.0.0.1:1234"); rr.Code != http.StatusOK {
		t.Errorf("after refill: got %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestRateLimit_PerClient(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	handler := rateLimit(1, 1, clock.now)(okHandler())

	if rr := doFrom(handler, "/v1/match", "10.0.0.1:1"); rr.Code != http.StatusOK {
		t.Fatalf("client A: got %d", rr.Code)
	}
	// same host, different port
	if rr := doFrom(handler, "/v1/match", "10.0.0.1:2"); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("client A second port: got %d", rr.Code)
	}
	if rr := doFrom(handler, "/v1/match", "10.0.0.2:1"); rr.Code != http.StatusOK {
		t.Fatalf("client B: got %d", rr.Code)
	}
}

func TestRateLimit_ExemptPaths(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	handler := rateLimit(1, 1, clock.now)(okHandler())

	for _, path := range []string{"/health", "/metrics"} {
		for range 5 {
			if rr := doFrom(handler, path, "10.0.0.1:1"); rr.Code != http.StatusOK {
				t.Fatalf("%s: got %d, want %d", path, rr.Code, http.StatusOK)
			}
		}
	}
}

func TestClientLimiters_EvictsIdle(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	l := newClientLimiters(1, 1)
	l.now = clock.now

	l.reserve("a")
	clock.t = clock.t.Add(clientIdleTTL + time.Second)
	l.reserve("b")

	if _, ok := l.clients["a"]; ok {
		t.Error("idle client must be evicted")
	}
	if len(l.clients) != 1 {
		t.Errorf("expected 1 client, got %d", len(l.clients))
	}
}

func TestClientLimiters_DefaultBurst(t *testing.T) {
	if l := newClientLimiters(2.5, 0); l.burst != 3 {
		t.Errorf("expected burst ceil(rps)=3, got %d", l.burst)
	}
}
