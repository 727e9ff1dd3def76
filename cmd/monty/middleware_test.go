package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	logpkg "github.com/josephmathew0/Monty/internal/logger"
	chiTransport "github.com/josephmathew0/Monty/internal/transport/chi"
)

func TestJSONRecoverer(t *testing.T) {
	h := jsonRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/occupations", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusInternalServerError)
	}
	var body map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["code"] != "internal_error" {
		t.Errorf("unexpected body %v", body)
	}
}

func TestWideEventMiddleware(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	var ctxLogger *zap.Logger
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxLogger = logpkg.FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})
	h := chiMiddleware.RequestID(wideEventMiddleware(logger)(inner))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health?x=1", http.NoBody))

	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
	if ctxLogger == nil {
		t.Fatal("expected request logger in context")
	}

	entries := logs.FilterMessage("http_request").All()
	if len(entries) != 1 {
		t.Fatalf("expected one canonical log line, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["status"] != int64(http.StatusTeapot) {
		t.Errorf("unexpected status field %v", fields["status"])
	}
	if fields["path"] != "/health" || fields["query"] != "x=1" {
		t.Errorf("unexpected path/query %v / %v", fields["path"], fields["query"])
	}
	if fields["request_id"] == "" {
		t.Error("expected request_id field")
	}
}

func TestWideEventMiddleware_EmbeddingTokens(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(chiTransport.EmbeddingTokensHeader, "17")
		w.WriteHeader(http.StatusOK)
	})
	h := wideEventMiddleware(zap.New(core))(inner)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/match", http.NoBody))

	entries := logs.FilterMessage("http_request").All()
	if len(entries) != 1 {
		t.Fatalf("expected one canonical log line, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["embedding_tokens"]; got != "17" {
		t.Errorf("expected embedding_tokens=17, got %v", got)
	}
}
