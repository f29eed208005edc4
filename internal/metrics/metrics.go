// Package metrics exposes prometheus instrumentation for queries and index
// reloads.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/domain"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Queries       *prometheus.CounterVec
	QueryDuration prometheus.Histogram
	RiskFlags     *prometheus.CounterVec
	Reloads       *prometheus.CounterVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Queries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ghosttrace_queries_total",
			Help: "Analyzed queries by resulting risk level",
		}, []string{"level"}),
		QueryDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "ghosttrace_query_duration_seconds",
			Help:    "Time spent searching and scoring one query",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~800ms
		}),
		RiskFlags: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ghosttrace_risk_flags_total",
			Help: "Risk rules fired across all queries",
		}, []string{"flag"}),
		Reloads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ghosttrace_index_reloads_total",
			Help: "Index reload attempts by result",
		}, []string{"result"}),
	}
}

// ObserveAnalysis records one completed query.
func (m *Metrics) ObserveAnalysis(v domain.RiskVerdict, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Queries.WithLabelValues(string(v.Level)).Inc()
	m.QueryDuration.Observe(elapsed.Seconds())
	for _, f := range v.Flags {
		m.RiskFlags.WithLabelValues(f).Inc()
	}
}

// ObserveReload records a reload attempt.
func (m *Metrics) ObserveReload(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Reloads.WithLabelValues(result).Inc()
}

// Serve exposes the registry on addr under /metrics until ctx is done.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics listener started", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
