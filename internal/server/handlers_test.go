package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "github.com/agbru/fibapi/internal/errors"
	"github.com/agbru/fibapi/internal/fibonacci"
	"github.com/agbru/fibapi/internal/logging"
	"github.com/agbru/fibapi/internal/service"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	engine := fibonacci.NewEngine(fibonacci.Options{})
	return New(Config{Security: DefaultSecurityConfig(), Version: "test"},
		service.New(engine, nil), engine, newTestLogger())
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, http.NoBody))
	return rec
}

func TestHandlers_Value(t *testing.T) {
	t.Parallel()
	h := newTestServer(t).Handler()

	tests := []struct {
		name       string
		target     string
		wantStatus int
		want       service.FibonacciResponse
	}{
		{"F(10)", "/api/fibonacci/10", http.StatusOK, service.FibonacciResponse{Index: 10, Value: 55, Message: "F(10)"}},
		{"F(0)", "/api/fibonacci/0", http.StatusOK, service.FibonacciResponse{Index: 0, Value: 0, Message: "F(0)"}},
		{"largest int64 value", "/api/fibonacci/92", http.StatusOK, service.FibonacciResponse{Index: 92, Value: fibonacci.MaxValue, Message: "F(92)"}},
		{"negative index", "/api/fibonacci/-1", http.StatusBadRequest, service.FibonacciResponse{Index: -1, Value: -1, Message: "Index cannot be negative"}},
		{"overflow", "/api/fibonacci/93", http.StatusBadRequest, service.FibonacciResponse{Index: 93, Value: -1, Message: "Overflow: Fibonacci number too large for int64 at index 93"}},
		{"non-integer index", "/api/fibonacci/ten", http.StatusBadRequest, service.FibonacciResponse{Index: -1, Value: -1, Message: `Error: invalid index "ten"`}},
		{"index beyond int range", "/api/fibonacci/99999999999999999999", http.StatusBadRequest, service.FibonacciResponse{Index: -1, Value: -1, Message: `Error: invalid index "99999999999999999999"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.target)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			var got service.FibonacciResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got != tt.want {
				t.Errorf("body = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestHandlers_Next(t *testing.T) {
	t.Parallel()
	h := newTestServer(t).Handler()

	tests := []struct {
		name       string
		target     string
		wantStatus int
		want       service.FibonacciResponse
	}{
		{"after F(10)", "/api/fibonacci/next/10", http.StatusOK, service.FibonacciResponse{Index: 11, Value: 89, Message: "Next after F(10)"}},
		{"after F(0)", "/api/fibonacci/next/0", http.StatusOK, service.FibonacciResponse{Index: 1, Value: 1, Message: "Next after F(0)"}},
		{"negative index reports index+1", "/api/fibonacci/next/-5", http.StatusBadRequest, service.FibonacciResponse{Index: -4, Value: -1, Message: "Index cannot be negative"}},
		{"overflow", "/api/fibonacci/next/92", http.StatusBadRequest, service.FibonacciResponse{Index: 93, Value: -1, Message: "Overflow: Fibonacci number too large for int64 at index 93"}},
		{"non-integer index", "/api/fibonacci/next/1.5", http.StatusBadRequest, service.FibonacciResponse{Index: -1, Value: -1, Message: `Error: invalid index "1.5"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.target)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			var got service.FibonacciResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got != tt.want {
				t.Errorf("body = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestHandlers_Sequence(t *testing.T) {
	t.Parallel()
	h := newTestServer(t).Handler()

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "start and count",
			target:     "/api/fibonacci/sequence?start=5&count=5",
			wantStatus: http.StatusOK,
			wantBody:   `{"start":5,"count":5,"sequence":[5,8,13,21,34],"error":null}`,
		},
		{
			name:       "defaults",
			target:     "/api/fibonacci/sequence",
			wantStatus: http.StatusOK,
			wantBody:   `{"start":0,"count":10,"sequence":[0,1,1,2,3,5,8,13,21,34],"error":null}`,
		},
		{
			name:       "empty parameters take defaults",
			target:     "/api/fibonacci/sequence?start=&count=3",
			wantStatus: http.StatusOK,
			wantBody:   `{"start":0,"count":3,"sequence":[0,1,1],"error":null}`,
		},
		{
			name:       "count too large",
			target:     "/api/fibonacci/sequence?count=101",
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"start":-1,"count":-1,"sequence":[],"error":"Count cannot exceed 100"}`,
		},
		{
			name:       "count too small",
			target:     "/api/fibonacci/sequence?count=0",
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"start":-1,"count":-1,"sequence":[],"error":"Count must be at least 1"}`,
		},
		{
			name:       "negative start",
			target:     "/api/fibonacci/sequence?start=-3",
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"start":-1,"count":-1,"sequence":[],"error":"Start index cannot be negative"}`,
		},
		{
			name:       "overflow inside the range",
			target:     "/api/fibonacci/sequence?start=90&count=5",
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"start":-1,"count":-1,"sequence":[],"error":"Overflow: Fibonacci number too large for int64 at index 93"}`,
		},
		{
			name:       "non-integer count",
			target:     "/api/fibonacci/sequence?count=many",
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"start":-1,"count":-1,"sequence":[],"error":"Error: invalid count \"many\""}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.target)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if got := strings.TrimSpace(rec.Body.String()); got != tt.wantBody {
				t.Errorf("body =\n%s\nwant\n%s", got, tt.wantBody)
			}
		})
	}
}

func TestParseIntParam(t *testing.T) {
	t.Parallel()

	if v, err := parseIntParam("start", "-12"); err != nil || v != -12 {
		t.Errorf("parseIntParam(-12) = %d, %v", v, err)
	}

	_, err := parseIntParam("count", "ten")
	var verr apperrors.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if verr.Field != "count" || verr.Message != `invalid count "ten"` {
		t.Errorf("ValidationError = %+v", verr)
	}
	if got := paramMessage(err); got != `Error: invalid count "ten"` {
		t.Errorf("paramMessage = %q", got)
	}
}

func TestHandlers_NextOnLargestInt(t *testing.T) {
	t.Parallel()
	rec := do(t, newTestServer(t).Handler(), http.MethodGet, "/api/fibonacci/next/9223372036854775807")

	want := `{"index":9223372036854775807,"value":-1,"message":"Overflow: Fibonacci number too large for int64 at index 9223372036854775807"}`
	if rec.Code != http.StatusBadRequest || strings.TrimSpace(rec.Body.String()) != want {
		t.Errorf("got %d %s\nwant 400 %s", rec.Code, rec.Body.String(), want)
	}
}

func TestHandlers_MethodNotAllowed(t *testing.T) {
	t.Parallel()
	h := newTestServer(t).Handler()

	for _, target := range []string{"/api/fibonacci/10", "/api/fibonacci/sequence", "/health"} {
		if rec := do(t, h, http.MethodPost, target); rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("POST %s: status = %d, want 405", target, rec.Code)
		}
	}
}

func TestHandlers_Health(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	h := s.Handler()
	do(t, h, http.MethodGet, "/api/fibonacci/20")

	rec := do(t, h, http.MethodGet, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Status != "ok" || got.Version != "test" {
		t.Errorf("status/version = %q/%q", got.Status, got.Version)
	}
	if got.Cache.Entries != 21 || got.Cache.Limit != fibonacci.DefaultCacheLimit || got.Cache.Misses != 1 {
		t.Errorf("cache = %+v", got.Cache)
	}
	if got.Runtime.HeapAllocBytes == 0 || got.HeapInUse == "" {
		t.Errorf("runtime section missing: %+v", got.Runtime)
	}
}

func TestHandlers_OpenAPI(t *testing.T) {
	t.Parallel()
	rec := do(t, newTestServer(t).Handler(), http.MethodGet, "/openapi.yaml")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/yaml" {
		t.Errorf("Content-Type = %q", ct)
	}
	for _, path := range []string{"/api/fibonacci/{index}:", "/api/fibonacci/next/{index}:", "/api/fibonacci/sequence:"} {
		if !strings.Contains(rec.Body.String(), path) {
			t.Errorf("document should describe %s", path)
		}
	}
}

func TestHandlers_MiddlewareChain(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	engine := fibonacci.NewEngine(fibonacci.Options{})
	s := New(Config{Security: DefaultSecurityConfig()}, service.New(engine, nil), engine, logging.NewLogger(&logs, "server"))

	req := httptest.NewRequest(http.MethodGet, "/api/fibonacci/10", http.NoBody)
	req.Header.Set(RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "req-42" {
		t.Errorf("request ID = %q, want the caller's", got)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
	for _, want := range []string{`"request_id":"req-42"`, `"status":200`, `"path":"/api/fibonacci/10"`} {
		if !strings.Contains(logs.String(), want) {
			t.Errorf("access log should contain %s, got: %s", want, logs.String())
		}
	}
	body := scrape(t, s.metrics)
	if !strings.Contains(body, `fibapi_requests_total{method="GET",route="GET /api/fibonacci/{index}",status="200"} 1`) {
		t.Errorf("route label missing:\n%s", grepLines(body, "fibapi_requests_total"))
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	t.Parallel()

	var seen string
	handler := requestIDMiddleware(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	})

	t.Run("generates an ID when absent", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
		if len(seen) != 36 || rec.Header().Get(RequestIDHeader) != seen {
			t.Errorf("generated ID = %q, header = %q", seen, rec.Header().Get(RequestIDHeader))
		}
	})

	t.Run("replaces an oversized ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
		req.Header.Set(RequestIDHeader, strings.Repeat("x", maxRequestIDLength+1))
		handler(httptest.NewRecorder(), req)
		if len(seen) != 36 {
			t.Errorf("oversized ID should be replaced, got %q", seen)
		}
	})

	t.Run("empty outside a request", func(t *testing.T) {
		if id := RequestIDFromContext(context.Background()); id != "" {
			t.Errorf("RequestIDFromContext = %q, want empty", id)
		}
	})
}

func TestRecoverMiddleware(t *testing.T) {
	t.Parallel()
	s := &Server{logger: newTestLogger()}

	handler := s.recoverMiddleware(func(w http.ResponseWriter, r *http.Request) {
		panic("engine exploded")
	})
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/fibonacci/1", http.NoBody))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Internal Server Error") {
		t.Errorf("body = %s", rec.Body.String())
	}
}
