package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestConfig_Defaults(t *testing.T) {
	tp := NewProvider(Config{})
	defer tp.Shutdown(context.Background())

	if tp.cfg.ServiceName != "sim-server" {
		t.Fatalf("expected default ServiceName='sim-server', got %q", tp.cfg.ServiceName)
	}
	if tp.cfg.Environment != "development" {
		t.Fatalf("expected default Environment='development', got %q", tp.cfg.Environment)
	}
	if tp.cfg.EventBuffer != 256 {
		t.Fatalf("expected default EventBuffer=256, got %d", tp.cfg.EventBuffer)
	}
	if !tp.cfg.metricsOn() {
		t.Fatal("expected MetricsEnabled=true by default")
	}
}

func TestShutdown_Clean(t *testing.T) {
	tp := NewProvider(Config{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := tp.Shutdown(ctx); err != nil {
		t.Fatalf("expected clean shutdown, got error: %v", err)
	}
	// Calling shutdown again should not panic.
	if err := tp.Shutdown(ctx); err != nil {
		t.Fatalf("second shutdown should not error: %v", err)
	}
}

func TestMetricsMiddleware_RecordsDuration(t *testing.T) {
	tp := NewProvider(Config{MetricsEnabled: BoolPtr(true)})
	defer tp.Shutdown(context.Background())

	e := echo.New()
	e.Use(tp.MetricsMiddleware())
	e.GET("/api/v1/scenarios", func(c echo.Context) error {
		time.Sleep(5 * time.Millisecond)
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/scenarios", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	hist := tp.GetHistogram("http.server.request.duration")
	if hist == nil {
		t.Fatal("expected http.server.request.duration histogram to exist")
	}
	if hist.Count() == 0 {
		t.Fatal("expected at least 1 observation in duration histogram")
	}
	if hist.Sum() <= 0 {
		t.Fatal("expected positive sum in duration histogram")
	}
}

func TestMetricsMiddleware_Disabled(t *testing.T) {
	tp := NewProvider(Config{MetricsEnabled: BoolPtr(false)})
	defer tp.Shutdown(context.Background())

	e := echo.New()
	e.Use(tp.MetricsMiddleware())
	e.GET("/test", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected passthrough 200, got %d", rec.Code)
	}
	if tp.GetHistogram("http.server.request.duration") != nil {
		t.Fatal("expected no histogram when metrics disabled")
	}
}

func TestMetricsMiddleware_Labels(t *testing.T) {
	tp := NewProvider(Config{MetricsEnabled: BoolPtr(true)})
	defer tp.Shutdown(context.Background())

	e := echo.New()
	e.Use(tp.MetricsMiddleware())
	e.POST("/api/v1/encounters", func(c echo.Context) error {
		return c.String(http.StatusCreated, "created")
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/encounters", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	key := LabelsKey("POST", "/api/v1/encounters", "201")
	hist := tp.GetLabeledHistogram("http.server.request.duration", key)
	if hist == nil {
		t.Fatalf("expected labeled histogram for key %q", key)
	}
	if hist.Count() != 1 {
		t.Fatalf("expected count=1, got %d", hist.Count())
	}
}

func TestTrainingEventCounter_Increments(t *testing.T) {
	tp := NewProvider(Config{})
	defer tp.Shutdown(context.Background())

	tp.TrainingEventCounter("scenario", EventActivityStarted)
	tp.TrainingEventCounter("scenario", EventActivityStarted)
	tp.TrainingEventCounter("scenario", EventActivityCompleted)
	tp.TrainingEventCounter("assessment", EventActivityCompleted)

	if got := tp.GetCounter("training.event.count", "scenario", EventActivityStarted); got != 2 {
		t.Fatalf("expected scenario/started count=2, got %d", got)
	}
	if got := tp.GetCounter("training.event.count", "assessment", EventActivityCompleted); got != 1 {
		t.Fatalf("expected assessment/completed count=1, got %d", got)
	}
}

func TestPrometheusHandler_ValidFormat(t *testing.T) {
	tp := NewProvider(Config{MetricsEnabled: BoolPtr(true)})
	defer tp.Shutdown(context.Background())

	e := echo.New()
	e.Use(tp.MetricsMiddleware())
	e.GET("/api/v1/scenarios", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", tp.PrometheusHandler())

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/scenarios", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
	}
	tp.TrainingEventCounter("scenario", EventActivityStarted)
	tp.SetActiveEncounters(2)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()

	required := []string{
		"http_server_request_duration_seconds",
		"http_server_active_requests",
		"training_event_count",
		"sim_encounters_active 2",
	}
	for _, m := range required {
		if !strings.Contains(body, m) {
			t.Errorf("expected metrics output to contain %q, body:\n%s", m, body)
		}
	}
	if !strings.Contains(body, "# HELP") || !strings.Contains(body, "# TYPE") {
		t.Error("expected Prometheus HELP/TYPE comments in output")
	}
}

func TestHistogramBuckets_Observation(t *testing.T) {
	buckets := []float64{0.010, 0.025, 0.050, 0.100, 0.250, 0.500, 1.0, 2.5, 5.0, 10.0}
	h := newHistogram(buckets)

	h.Observe(0.005)
	h.Observe(0.015)
	h.Observe(3.0)

	if h.Count() != 3 {
		t.Fatalf("expected count=3, got %d", h.Count())
	}
	if h.bucketCounts[0] != 1 {
		t.Fatalf("expected bucket[0.010]=1, got %d", h.bucketCounts[0])
	}
	if h.bucketCounts[1] != 1 {
		t.Fatalf("expected bucket[0.025]=1, got %d", h.bucketCounts[1])
	}
	if h.bucketCounts[8] != 1 {
		t.Fatalf("expected bucket[5.0]=1, got %d", h.bucketCounts[8])
	}
}

func TestMetrics_ConcurrentSafe(t *testing.T) {
	tp := NewProvider(Config{MetricsEnabled: BoolPtr(true)})
	defer tp.Shutdown(context.Background())

	e := echo.New()
	e.Use(tp.MetricsMiddleware())
	e.GET("/api/v1/encounters/:id", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	var wg sync.WaitGroup
	goroutines := 50
	perGoroutine := 20

	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/encounters/%d", i), nil)
				rec := httptest.NewRecorder()
				e.ServeHTTP(rec, req)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			tp.TrainingEventCounter("scenario", EventActivityProgress)
			tp.GetGauge("http.server.active_requests")
			time.Sleep(time.Millisecond)
		}
	}()

	wg.Wait()

	hist := tp.GetHistogram("http.server.request.duration")
	if hist == nil {
		t.Fatal("expected duration histogram to exist after concurrent test")
	}
	if want := int64(goroutines * perGoroutine); hist.Count() != want {
		t.Fatalf("expected count=%d, got %d", want, hist.Count())
	}
}

// ---------------------------------------------------------------------------
// Recorders
// ---------------------------------------------------------------------------

type captureRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *captureRecorder) Record(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *captureRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestLogRecorder_BumpsCounter(t *testing.T) {
	tp := NewProvider(Config{})
	defer tp.Shutdown(context.Background())

	r := NewLogRecorder(zerolog.Nop(), tp)
	r.Record(Event{
		Type:       EventActivityCompleted,
		Activity:   "scenario",
		LearnerID:  uuid.New(),
		ActivityID: uuid.New(),
		Score:      85,
	})

	if got := tp.GetCounter("training.event.count", "scenario", EventActivityCompleted); got != 1 {
		t.Fatalf("expected counter=1, got %d", got)
	}
}

func TestAsyncRecorder_Delivers(t *testing.T) {
	sink := &captureRecorder{}
	r := NewAsyncRecorder(sink, 16, zerolog.Nop())

	for i := 0; i < 10; i++ {
		r.Record(Event{Type: EventActivityProgress, Activity: "assessment"})
	}
	r.Close()

	if sink.count() != 10 {
		t.Fatalf("expected 10 delivered events, got %d", sink.count())
	}
}

func TestAsyncRecorder_DropsWhenFull(t *testing.T) {
	block := make(chan struct{})
	sink := recorderFunc(func(Event) { <-block })
	r := NewAsyncRecorder(sink, 1, zerolog.Nop())

	// First event occupies the drain goroutine, second fills the queue,
	// the rest are dropped.
	for i := 0; i < 10; i++ {
		r.Record(Event{Type: EventActivityProgress})
	}

	if r.Dropped() == 0 {
		t.Error("expected dropped events with a full queue")
	}
	close(block)
	r.Close()
}

type recorderFunc func(Event)

func (f recorderFunc) Record(ev Event) { f(ev) }
