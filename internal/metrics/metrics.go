// Package metrics records the outcome of a scrape run as Prometheus metrics.
//
// A run is a short-lived process, so nothing is served over HTTP: the
// registry is written once, at the end of the run, in the text exposition
// format for node_exporter's textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pfrederiksen/standings-scraper/internal/standings"
)

const namespace = "standings"

// Recorder holds the collectors of a single run
type Recorder struct {
	registry      *prometheus.Registry
	fetchAttempts *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	rows          prometheus.Gauge
	degraded      prometheus.Gauge
	lastRun       prometheus.Gauge
}

// New creates a Recorder with its own registry
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		fetchAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_attempts_total",
				Help:      "Fetch attempts, labeled by transport and result.",
			},
			[]string{"transport", "result"},
		),
		fetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fetch_duration_seconds",
				Help:      "Duration of fetch attempts, labeled by transport.",
				Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 25, 60},
			},
			[]string{"transport"},
		),
		rows: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows",
			Help:      "Number of standings rows in the written snapshot.",
		}),
		degraded: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "degraded",
			Help:      "1 when the written snapshot is degraded, 0 otherwise.",
		}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time at which the snapshot was built.",
		}),
	}
}

// ObserveFetch records one transport attempt
func (r *Recorder) ObserveFetch(transport string, d time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	r.fetchAttempts.WithLabelValues(transport, result).Inc()
	r.fetchDuration.WithLabelValues(transport).Observe(d.Seconds())
}

// ObserveSnapshot records the state of the snapshot written by the run
func (r *Recorder) ObserveSnapshot(snap *standings.Snapshot, at time.Time) {
	r.rows.Set(float64(len(snap.Standings)))
	if snap.Degraded() {
		r.degraded.Set(1)
	} else {
		r.degraded.Set(0)
	}
	r.lastRun.Set(float64(at.Unix()))
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes all metrics to path in the text exposition format
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
