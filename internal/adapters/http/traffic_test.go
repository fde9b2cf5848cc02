package httpadapter

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/prangggshu/legal-chatbot/internal/config"
)

func TestRateLimitMiddlewareRejectsWithRetryAfter(t *testing.T) {
	base := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	var rejected []string
	handler := rateLimitMiddleware(base, rate.NewLimiter(rate.Limit(1), 1), func(reason string) {
		rejected = append(rejected, reason)
	})

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/v1/index/stats", nil))
	if first.Code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/v1/index/stats", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
	if len(rejected) != 1 || rejected[0] != rejectRateLimited {
		t.Fatalf("expected one rate_limited rejection, got %v", rejected)
	}
}

func TestBackpressureMiddlewareRejectsWhenSaturated(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	base := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		entered <- struct{}{}
		<-release
		w.WriteHeader(http.StatusOK)
	})
	handler := backpressureMiddleware(base, 1, 20*time.Millisecond, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/ask", nil))
	}()
	<-entered

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/ask", nil))
	close(release)
	wg.Wait()

	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), `"error"`) {
		t.Fatalf("expected json error body, got %s", res.Body.String())
	}
}

func TestBackpressureMiddlewareAdmitsAfterRelease(t *testing.T) {
	handler := backpressureMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), 1, 0, nil)

	for i := 0; i < 3; i++ {
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/ask", nil))
		if res.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, res.Code)
		}
	}
}

func TestHealthzBypassesRateLimit(t *testing.T) {
	handler := NewRouter(config.Config{APIRateLimitRPS: 1, APIRateLimitBurst: 1}, Services{}, nil, nil).Handler()

	for i := 0; i < 3; i++ {
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if res.Code != http.StatusOK {
			t.Fatalf("healthz %d: expected 200, got %d", i, res.Code)
		}
	}

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/v1/index/stats", nil))
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/v1/index/stats", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second api call to be rate limited, got %d", second.Code)
	}
}
