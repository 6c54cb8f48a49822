// Package metrics exposes Prometheus instrumentation and a health endpoint
// for the batch analytics engine.
package metrics

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for a batch run.
type Metrics struct {
	InstrumentsProcessed prometheus.Counter
	InstrumentsSkipped   prometheus.Counter
	InstrumentsFailed    prometheus.Counter
	RowsWritten          prometheus.Counter
	SignalsTotal         *prometheus.CounterVec // labels: signal

	ComputeDur prometheus.Histogram
	CommitDur  prometheus.Histogram
	RunDur     prometheus.Histogram

	SnapshotSize    prometheus.Gauge
	SnapshotSkipped prometheus.Gauge
	LastRunUnix     prometheus.Gauge
}

// NewMetrics registers and returns all Prometheus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		InstrumentsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scanner_instruments_processed_total",
			Help: "Instruments whose indicator rows were recomputed and committed",
		}),
		InstrumentsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scanner_instruments_skipped_total",
			Help: "Instruments skipped for insufficient bar history",
		}),
		InstrumentsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scanner_instruments_failed_total",
			Help: "Instruments whose batch failed (invalid bars or storage errors)",
		}),
		RowsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scanner_indicator_rows_written_total",
			Help: "Indicator rows committed to storage",
		}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scanner_signals_total",
			Help: "Latest-row signals observed per run (by classification)",
		}, []string{"signal"}),

		ComputeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scanner_compute_duration_seconds",
			Help:    "Per-instrument indicator computation latency",
			Buckets: prometheus.DefBuckets,
		}),
		CommitDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scanner_commit_duration_seconds",
			Help:    "Per-instrument row replace latency",
			Buckets: prometheus.DefBuckets,
		}),
		RunDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scanner_run_duration_seconds",
			Help:    "Full batch run latency",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),

		SnapshotSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scanner_snapshot_size",
			Help: "Instruments in the latest published snapshot",
		}),
		SnapshotSkipped: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scanner_snapshot_skipped",
			Help: "Instruments omitted from the snapshot (no computed rows yet)",
		}),
		LastRunUnix: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scanner_last_run_timestamp_seconds",
			Help: "Unix time of the last completed batch run",
		}),
	}

	prometheus.MustRegister(
		m.InstrumentsProcessed, m.InstrumentsSkipped, m.InstrumentsFailed,
		m.RowsWritten, m.SignalsTotal,
		m.ComputeDur, m.CommitDur, m.RunDur,
		m.SnapshotSize, m.SnapshotSkipped, m.LastRunUnix,
	)
	return m
}

// HealthStatus tracks dependency health for the /healthz endpoint.
type HealthStatus struct {
	mu sync.RWMutex

	StartedAt       time.Time
	RedisConnected  bool
	RedisLatencyMs  float64
	SQLiteOK        bool
	SQLiteLatencyMs float64
	LastRunAt       time.Time
	LastCheckAt     time.Time
}

// NewHealthStatus creates an empty health tracker.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{StartedAt: time.Now()}
}

// CheckRedis pings Redis and records latency + health.
func (h *HealthStatus) CheckRedis(ctx context.Context, rdb *goredis.Client) {
	start := time.Now()
	err := rdb.Ping(ctx).Err()
	latency := time.Since(start)

	h.mu.Lock()
	h.RedisConnected = err == nil
	h.RedisLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// CheckSQLite runs a trivial query and records latency + health.
func (h *HealthStatus) CheckSQLite(ctx context.Context, db *sql.DB) {
	start := time.Now()
	err := db.PingContext(ctx)
	latency := time.Since(start)

	h.mu.Lock()
	h.SQLiteOK = err == nil
	h.SQLiteLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// MarkRunComplete records the completion time of a batch run.
func (h *HealthStatus) MarkRunComplete(t time.Time) {
	h.mu.Lock()
	h.LastRunAt = t
	h.mu.Unlock()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	overallStatus := "healthy"
	httpCode := http.StatusOK
	if !h.SQLiteOK {
		overallStatus = "unhealthy"
		httpCode = http.StatusServiceUnavailable
	} else if !h.RedisConnected {
		overallStatus = "degraded"
	}

	lastRun := ""
	if !h.LastRunAt.IsZero() {
		lastRun = h.LastRunAt.Format(time.RFC3339)
	}

	status := struct {
		Status          string  `json:"status"`
		Uptime          string  `json:"uptime"`
		RedisConnected  bool    `json:"redis_connected"`
		RedisLatencyMs  float64 `json:"redis_latency_ms"`
		SQLiteOK        bool    `json:"sqlite_ok"`
		SQLiteLatencyMs float64 `json:"sqlite_latency_ms"`
		LastRunAt       string  `json:"last_run_at"`
		LastCheckAt     string  `json:"last_check_at"`
	}{
		Status:          overallStatus,
		Uptime:          time.Since(h.StartedAt).Round(time.Second).String(),
		RedisConnected:  h.RedisConnected,
		RedisLatencyMs:  h.RedisLatencyMs,
		SQLiteOK:        h.SQLiteOK,
		SQLiteLatencyMs: h.SQLiteLatencyMs,
		LastRunAt:       lastRun,
		LastCheckAt:     h.LastCheckAt.Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if httpCode != http.StatusOK {
		w.WriteHeader(httpCode)
	}
	json.NewEncoder(w).Encode(status)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	addr string
	srv  *http.Server
}

// NewServer creates a metrics and health server.
func NewServer(addr string, health *HealthStatus) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", health.ServeHTTP)

	return &Server{
		addr: addr,
		srv: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		slog.Info("metrics server listening", "addr", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("metrics server", "err", err)
		}
	}()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
