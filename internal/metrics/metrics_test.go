package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"arthasync/internal/cache"
)

func TestResult(t *testing.T) {
	if got := Result(nil); got != ResultOK {
		t.Errorf("Result(nil) = %q, want %q", got, ResultOK)
	}
	if got := Result(errors.New("boom")); got != ResultError {
		t.Errorf("Result(err) = %q, want %q", got, ResultError)
	}
}

func TestRegisterCache(t *testing.T) {
	c := cache.NewLRUCache[string](4, time.Minute)
	c.Set("a", "1")
	c.Get("a")
	c.Get("a")
	c.Get("b")
	RegisterCache("test_lru", c.Stats)

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	for _, line := range []string{
		`arthasync_cache_hits_total{cache="test_lru"} 2`,
		`arthasync_cache_misses_total{cache="test_lru"} 1`,
		`arthasync_cache_entries{cache="test_lru"} 1`,
	} {
		if !strings.Contains(string(body), line) {
			t.Errorf("metrics output missing %s", line)
		}
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	RateLimited.Inc()
	StoreOperations.WithLabelValues("income", "add", ResultOK).Inc()

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	for _, name := range []string{
		"arthasync_rate_limited_requests_total",
		`arthasync_store_operations_total{collection="income",op="add",result="ok"}`,
	} {
		if !strings.Contains(string(body), name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}
