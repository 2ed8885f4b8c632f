// Package metrics exposes swiftselect run counters in Prometheus format.
//
// A projection is a batch job, so counters are written once at exit to a
// file for the node_exporter textfile collector instead of being served.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/oleg578/swiftselect"
)

const namespace = "swiftselect"

// Metrics holds the counters of one process.
type Metrics struct {
	registry *prometheus.Registry

	recordsRead    prometheus.Counter
	recordsEmitted prometheus.Counter
	recordsSkipped prometheus.Counter
	bytesRead      prometheus.Counter
	bytesWritten   prometheus.Counter
	lastSuccess    prometheus.Gauge
	lastRun        prometheus.Gauge
}

// New registers the counters on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		recordsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_read_total",
			Help:      "Input records read, empty ones included.",
		}),
		recordsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_emitted_total",
			Help:      "Projected records written.",
		}),
		recordsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_skipped_total",
			Help:      "Empty input records skipped.",
		}),
		bytesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_read_total",
			Help:      "Bytes consumed from the inputs after decompression.",
		}),
		bytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_written_total",
			Help:      "Bytes of projected output.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success",
			Help:      "1 if the last run reached end of input without error, 0 otherwise.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time at which the last run finished.",
		}),
	}
	m.registry.MustRegister(
		m.recordsRead,
		m.recordsEmitted,
		m.recordsSkipped,
		m.bytesRead,
		m.bytesWritten,
		m.lastSuccess,
		m.lastRun,
	)
	return m
}

// Observe adds the counts of one run and records its outcome.
func (m *Metrics) Observe(st swiftselect.Stats, runErr error, finished time.Time) {
	m.recordsRead.Add(float64(st.Records))
	m.recordsEmitted.Add(float64(st.Emitted))
	m.recordsSkipped.Add(float64(st.Skipped))
	m.bytesRead.Add(float64(st.BytesRead))
	m.bytesWritten.Add(float64(st.BytesWritten))
	if runErr == nil {
		m.lastSuccess.Set(1)
	} else {
		m.lastSuccess.Set(0)
	}
	m.lastRun.Set(float64(finished.Unix()))
}

// Registry returns the registry holding the counters.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile atomically writes the counters to path in text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
