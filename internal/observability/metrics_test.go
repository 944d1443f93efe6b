package observability

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func TestMetricsSnapshotIsACopy(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/auth/signin", http.MethodPost, 200, 10*time.Millisecond)
	m.RecordRequest("/api/auth/signin", http.MethodPost, 200, 30*time.Millisecond)
	m.RecordError("/api/auth/signin", http.MethodPost, "UNAUTHORIZED")
	m.RecordAuthOutcome("user_signed_in")
	m.RecordAuthOutcome("")

	snap := m.Snapshot()
	if snap.Requests["/api/auth/signin|POST|200"] != 2 {
		t.Fatalf("unexpected requests %v", snap.Requests)
	}
	if snap.Errors["/api/auth/signin|POST|UNAUTHORIZED"] != 1 {
		t.Fatalf("unexpected errors %v", snap.Errors)
	}
	if len(snap.AuthOutcomes) != 1 || snap.AuthOutcomes["user_signed_in"] != 1 {
		t.Fatalf("unexpected outcomes %v", snap.AuthOutcomes)
	}
	if snap.AverageLatency != (20 * time.Millisecond).String() {
		t.Fatalf("unexpected average latency %s", snap.AverageLatency)
	}

	snap.AuthOutcomes["user_signed_in"] = 99
	if m.Snapshot().AuthOutcomes["user_signed_in"] != 1 {
		t.Fatalf("snapshot must not alias internal state")
	}
}

func TestMetricsConcurrentUse(t *testing.T) {
	m := NewMetrics()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordAuthOutcome("sign_in_failed")
			_ = m.Snapshot()
		}()
	}
	wg.Wait()
	if got := m.Snapshot().AuthOutcomes["sign_in_failed"]; got != 50 {
		t.Fatalf("expected 50, got %d", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", http.MethodGet, 200, time.Millisecond)
	m.RecordAuthOutcome("x")
	if snap := m.Snapshot(); snap.Requests == nil || len(snap.AuthOutcomes) != 0 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestRequestLoggerCountsByRoute(t *testing.T) {
	m := NewMetrics()
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), m))
	app.Get("/status/:slug", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	for _, slug := range []string{"acme", "globex"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/status/"+slug, nil))
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("unexpected status %d", resp.StatusCode)
		}
	}

	if got := m.Snapshot().Requests["/status/:slug|GET|200"]; got != 2 {
		t.Fatalf("expected both requests under the route pattern, got %v", m.Snapshot().Requests)
	}
}

func TestRequestLoggerBucketsUnknownPaths(t *testing.T) {
	m := NewMetrics()
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), m))
	app.Get("/status/:slug", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	for i := 0; i < 50; i++ {
		target := fmt.Sprintf("/nowhere/%d", i)
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("%s: unexpected status %d", target, resp.StatusCode)
		}
	}

	requests := m.Snapshot().Requests
	if len(requests) != 1 || requests[UnmatchedRoute+"|GET|404"] != 50 {
		t.Fatalf("unknown paths must share one bucket, got %v", requests)
	}
}
