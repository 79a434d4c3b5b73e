// internal/telemetry/telemetry.go
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dtm"

// Metrics is the meter's self-telemetry. A nil *Metrics is a valid
// no-op receiver so the meter can run without a registry in tests.
type Metrics struct {
	sweeps    prometheus.Counter
	skips     *prometheus.CounterVec
	tsBytes   prometheus.Counter
	linesSent prometheus.Counter
}

// New registers the meter's counters with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeps_total",
			Help:      "Completed sweeps over the channel list.",
		}),
		skips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "channels_skipped_total",
			Help:      "Channels skipped for one sweep, by reason.",
		}, []string{"reason"}),
		tsBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transport_stream_bytes_total",
			Help:      "Transport stream bytes sampled across all channels.",
		}),
		linesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "carbon_lines_total",
			Help:      "Metric lines handed to the carbon client.",
		}),
	}
	reg.MustRegister(m.sweeps, m.skips, m.tsBytes, m.linesSent)
	return m
}

func (m *Metrics) SweepCompleted() {
	if m == nil {
		return
	}
	m.sweeps.Inc()
}

func (m *Metrics) ChannelSkipped(reason string) {
	if m == nil {
		return
	}
	m.skips.WithLabelValues(reason).Inc()
}

func (m *Metrics) SampledBytes(n uint64) {
	if m == nil {
		return
	}
	m.tsBytes.Add(float64(n))
}

func (m *Metrics) LinesSent(n int) {
	if m == nil {
		return
	}
	m.linesSent.Add(float64(n))
}

// Handler serves the registry for an optional /metrics listener.
func Handler() http.Handler {
	return promhttp.Handler()
}
