package httpadapter

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestIDMiddlewareKeepsClientID(t *testing.T) {
	var seen string
	handler := requestIDMiddleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = requestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "  client-42 ")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if seen != "client-42" {
		t.Fatalf("expected trimmed client id in context, got %q", seen)
	}
	if got := res.Header().Get(requestIDHeader); got != "client-42" {
		t.Fatalf("expected echoed id, got %q", got)
	}
}

func TestRequestIDMiddlewareReplacesUnsafeID(t *testing.T) {
	cases := map[string]string{
		"too long":   strings.Repeat("a", maxRequestIDLength+1),
		"whitespace": "abc def",
		"non ascii":  "идентификатор",
	}
	for name, id := range cases {
		t.Run(name, func(t *testing.T) {
			handler := requestIDMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			req.Header.Set(requestIDHeader, id)
			res := httptest.NewRecorder()
			handler.ServeHTTP(res, req)

			got := res.Header().Get(requestIDHeader)
			if got == "" || got == id {
				t.Fatalf("expected a generated id, got %q", got)
			}
		})
	}
}

func TestAccessLogMiddlewareLevelFollowsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	handler := accessLogMiddleware(logger, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("missing"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/documents/x", nil))

	line := buf.String()
	for _, want := range []string{`"level":"WARN"`, `"msg":"http_request"`, `"status":404`, `"bytes":7`} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %s in access log, got %s", want, line)
		}
	}
}

func TestAccessLogLevel(t *testing.T) {
	if accessLogLevel(http.StatusOK) != slog.LevelInfo {
		t.Fatalf("2xx should log at info")
	}
	if accessLogLevel(http.StatusTooManyRequests) != slog.LevelWarn {
		t.Fatalf("4xx should log at warn")
	}
	if accessLogLevel(http.StatusServiceUnavailable) != slog.LevelError {
		t.Fatalf("5xx should log at error")
	}
}
