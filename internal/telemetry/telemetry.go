// Package telemetry exposes the agent's own health metrics (cycle outcomes,
// push responses) on an optional Prometheus scrape endpoint.
package telemetry

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "agemon_agent"

// Metrics holds the agent self-metrics. All methods are safe on a nil
// receiver so components can run without telemetry.
type Metrics struct {
	registry *prometheus.Registry

	cycles         *prometheus.CounterVec
	cycleDuration  prometheus.Histogram
	pushResponses  *prometheus.CounterVec
	pushErrors     *prometheus.CounterVec
	seriesLastPush prometheus.Gauge
}

// New creates the metrics and registers them, together with the Go runtime
// and process collectors, on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Collect-and-push cycles by result.",
		}, []string{"result"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Wall time spent collecting and pushing one cycle.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		pushResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "push_responses_total",
			Help:      "Remote write responses by HTTP status code.",
		}, []string{"code"}),
		pushErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "push_errors_total",
			Help:      "Pushes that failed before a response was received, by kind.",
		}, []string{"kind"}),
		seriesLastPush: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "series_last_push",
			Help:      "Number of series in the most recent push attempt.",
		}),
	}

	m.registry.MustRegister(
		m.cycles,
		m.cycleDuration,
		m.pushResponses,
		m.pushErrors,
		m.seriesLastPush,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveCycle records one scheduler tick.
func (m *Metrics) ObserveCycle(elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.cycles.WithLabelValues(result).Inc()
	m.cycleDuration.Observe(elapsed.Seconds())
}

// ObservePushResponse records the status code of a completed push.
func (m *Metrics) ObservePushResponse(code int) {
	if m == nil {
		return
	}
	m.pushResponses.WithLabelValues(strconv.Itoa(code)).Inc()
}

// ObservePushError records a push that failed with kind "build" or "transport".
func (m *Metrics) ObservePushError(kind string) {
	if m == nil {
		return
	}
	m.pushErrors.WithLabelValues(kind).Inc()
}

// SetSeriesPushed records the batch size of the latest push attempt.
func (m *Metrics) SetSeriesPushed(n int) {
	if m == nil {
		return
	}
	m.seriesLastPush.Set(float64(n))
}

// Handler returns the scrape handler for the private registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, m *Metrics, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Telemetry server shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("Serving agent telemetry", zap.String("address", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
