// Package collector provides the registry that aggregates all collectors.
// The scheduler calls Collect once per cycle; the registry refreshes the
// sampler snapshot once and runs every collector against it in order.
package collector

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sakti/agemon/internal/models"
	"github.com/sakti/agemon/internal/sampler"
)

// Registry owns the sampler snapshot and the ordered list of collectors.
// It is not safe for concurrent use; the scheduler runs one cycle at a time.
type Registry struct {
	source     sampler.Source
	snapshot   sampler.Snapshot
	collectors []Collector
	hostname   string
	now        func() time.Time
	logger     *zap.Logger
}

// NewRegistry creates a registry reading from source. A non-empty hostname
// overrides the one reported by the sampler.
func NewRegistry(source sampler.Source, hostname string, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		source:     source,
		collectors: make([]Collector, 0),
		hostname:   hostname,
		now:        time.Now,
		logger:     logger,
	}
}

// Register appends a collector. Collectors run in registration order.
func (r *Registry) Register(c Collector) {
	r.collectors = append(r.collectors, c)
	r.logger.Info("Registered collector", zap.String("name", c.Name()))
}

// Collect refreshes the snapshot once, resolves the cycle hostname and
// timestamp once, and concatenates every collector's output.
// Sampler failures only degrade readings; they are logged and never abort.
func (r *Registry) Collect(ctx context.Context) []models.TimeSeries {
	if err := r.source.Refresh(ctx, &r.snapshot); err != nil {
		r.logger.Warn("Some OS readings unavailable, using fallbacks", zap.Error(err))
	}

	cycle := models.Cycle{
		Hostname:  r.resolveHostname(),
		Timestamp: r.now().UnixMilli(),
	}

	var series []models.TimeSeries
	for _, c := range r.collectors {
		out := c.Collect(&r.snapshot, cycle)
		r.logger.Debug("Collector finished",
			zap.String("collector", c.Name()),
			zap.Int("series", len(out)))
		series = append(series, out...)
	}
	return series
}

// Collectors returns a copy of all registered collectors.
func (r *Registry) Collectors() []Collector {
	result := make([]Collector, len(r.collectors))
	copy(result, r.collectors)
	return result
}

func (r *Registry) resolveHostname() string {
	if r.hostname != "" {
		return r.hostname
	}
	if r.snapshot.Hostname != "" {
		return r.snapshot.Hostname
	}
	return models.Unknown
}
