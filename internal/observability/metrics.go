package observability

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
	"github.com/yungbote/projectdesk-backend/internal/realtime"
)

const dbStatsInterval = 15 * time.Second

// Metrics holds the process-wide collectors served at /metrics.
type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge
	apiErrors   *Counter
	events      *CounterVec
	eventErrors *CounterVec
	dbStats     *GaugeVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("pd_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"pd_api_request_duration_seconds",
			"API request latency in seconds by method/route.",
			[]string{"method", "route"},
			[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		),
		apiInflight: NewGauge("pd_api_inflight_requests", "In-flight API requests."),
		apiErrors:   NewCounter("pd_api_server_errors_total", "API responses with a 5xx status."),
		events:      NewCounterVec("pd_events_published_total", "Live-update events published by type.", []string{"type"}),
		eventErrors: NewCounterVec("pd_events_failed_total", "Live-update events that failed to publish by type.", []string{"type"}),
		dbStats:     NewGaugeVec("pd_db_pool", "database/sql connection pool stats.", []string{"stat"}),
	}
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unknown"
	}
	m.apiRequests.Inc(method, route, strconv.Itoa(status))
	m.apiLatency.Observe(dur.Seconds(), method, route)
	if status >= http.StatusInternalServerError {
		m.apiErrors.Inc()
	}
}

func (m *Metrics) InflightInc() {
	if m != nil {
		m.apiInflight.Inc()
	}
}

func (m *Metrics) InflightDec() {
	if m != nil {
		m.apiInflight.Dec()
	}
}

// StartDBCollector samples the connection pool until ctx is done.
func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(dbStatsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.sampleDB(log, db)
			}
		}
	}()
}

func (m *Metrics) sampleDB(log *logger.Logger, db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("metrics: db stats unavailable", "error", err)
		return
	}
	stats := sqlDB.Stats()
	m.dbStats.Set(float64(stats.OpenConnections), "open_connections")
	m.dbStats.Set(float64(stats.InUse), "in_use")
	m.dbStats.Set(float64(stats.Idle), "idle")
	m.dbStats.Set(float64(stats.WaitCount), "wait_count")
	m.dbStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
	m.dbStats.Set(float64(stats.MaxOpenConnections), "max_open_connections")
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, _ *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight, m.apiErrors, m.events, m.eventErrors, m.dbStats,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

type instrumentedPublisher struct {
	next realtime.Publisher
	m    *Metrics
}

// InstrumentPublisher counts every event passed to next by type and outcome.
func InstrumentPublisher(next realtime.Publisher, m *Metrics) realtime.Publisher {
	if m == nil {
		return next
	}
	return &instrumentedPublisher{next: next, m: m}
}

func (p *instrumentedPublisher) Publish(ctx context.Context, ev realtime.Event) error {
	err := p.next.Publish(ctx, ev)
	if err != nil {
		p.m.eventErrors.Inc(string(ev.Type))
		return err
	}
	p.m.events.Inc(string(ev.Type))
	return nil
}
