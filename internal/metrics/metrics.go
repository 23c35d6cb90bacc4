// Package metrics holds the simulator's Prometheus collectors. Unlike
// Orbit's global registry (registered via init() against the default
// registry), these are held in a private registry per Collectors
// instance so a test run never leaks state into another — the simulator
// starts no HTTP listener (spec Non-goals exclude network I/O), so the
// registry is only ever read back through Dump at shutdown.
package metrics

import (
	"bytes"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Collectors groups the simulator's runtime metrics.
type Collectors struct {
	registry *prometheus.Registry

	CycleDuration           prometheus.Histogram
	DispatchSearchDuration  prometheus.Histogram
	FleetLoadFactor         prometheus.Gauge
}

// New builds and registers a fresh set of collectors.
func New() *Collectors {
	c := &Collectors{
		registry: prometheus.NewRegistry(),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "modabm_cycle_duration_seconds",
			Help:    "Wall-clock time spent processing one simulation cycle.",
			Buckets: prometheus.DefBuckets,
		}),
		DispatchSearchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "modabm_dispatch_search_duration_seconds",
			Help:    "Wall-clock time spent per dispatch invocation.",
			Buckets: prometheus.DefBuckets,
		}),
		FleetLoadFactor: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "modabm_fleet_load_factor",
			Help: "Loaded distance divided by total distance across the fleet.",
		}),
	}
	c.registry.MustRegister(c.CycleDuration, c.DispatchSearchDuration, c.FleetLoadFactor)
	return c
}

// Dump renders all registered metrics in Prometheus's text exposition
// format, for inclusion in the textual end-of-run report.
func (c *Collectors) Dump() (string, error) {
	families, err := c.registry.Gather()
	if err != nil {
		return "", fmt.Errorf("metrics: gather: %w", err)
	}
	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return "", fmt.Errorf("metrics: encode: %w", err)
		}
	}
	return buf.String(), nil
}
