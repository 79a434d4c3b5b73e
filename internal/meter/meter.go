// internal/meter/meter.go
package meter

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kvollmer/dtm/internal/telemetry"
)

// Config is the immutable sweep configuration.
type Config struct {
	Prefix   string
	Channels []Channel
	// Step is the shared time budget for one full sweep; each channel
	// gets Step / len(Channels).
	Step time.Duration
}

// Meter runs the infinite sweep over the channel list. Exactly one
// tune/demux/sample cycle is in flight at a time; the tuner, filter,
// collector and sender are owned exclusively by the meter for the
// process lifetime.
type Meter struct {
	cfg       Config
	tuner     Tuner
	filter    Filter
	collector Collector
	sender    Sender
	metrics   *telemetry.Metrics
	now       func() time.Time
	log       *zap.Logger
}

// New creates a meter with immutable config. metrics may be nil.
func New(cfg Config, tuner Tuner, filter Filter, collector Collector, sender Sender, metrics *telemetry.Metrics, log *zap.Logger) (*Meter, error) {
	if len(cfg.Channels) == 0 {
		return nil, errors.New("meter: at least one channel required")
	}
	if cfg.Step/time.Duration(len(cfg.Channels)) < time.Second {
		return nil, errors.New("meter: step leaves less than one second per channel")
	}
	if tuner == nil || filter == nil || collector == nil || sender == nil {
		return nil, errors.New("meter: tuner, filter, collector and sender required")
	}
	return &Meter{
		cfg:       cfg,
		tuner:     tuner,
		filter:    filter,
		collector: collector,
		sender:    sender,
		metrics:   metrics,
		now:       time.Now,
		log:       log,
	}, nil
}

// Run sweeps the channel list until the context is canceled, flushing
// one metrics burst per full sweep.
func (m *Meter) Run(ctx context.Context) error {
	m.log.Debug("starting main event loop")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		lines := m.Sweep(ctx)
		if len(lines) > 0 {
			if err := m.sender.Send(lines); err != nil {
				m.log.Error("metrics flush failed", zap.Error(err))
			}
			m.metrics.LinesSent(len(lines))
		}
		m.metrics.SweepCompleted()
	}
}

// Sweep measures every configured channel once and returns the
// formatted metric lines. Per-channel failures are logged and skip that
// channel for this sweep only.
func (m *Meter) Sweep(ctx context.Context) []string {
	window := m.cfg.Step / time.Duration(len(m.cfg.Channels))
	lines := make([]string, 0, len(m.cfg.Channels))

	for _, ch := range m.cfg.Channels {
		if ctx.Err() != nil {
			break
		}

		log := m.log.With(
			zap.Uint32("frequency_mhz", ch.FrequencyMHz),
			zap.String("modulation", ch.Modulation.Label()))

		if err := m.tuner.Tune(ctx, ch.Tunable()); err != nil {
			log.Error("tune failed", zap.Error(err))
			m.metrics.ChannelSkipped("tune")
			continue
		}

		if err := m.filter.Start(); err != nil {
			log.Error("demuxer start failed", zap.Error(err))
			m.metrics.ChannelSkipped("demux")
			continue
		}

		sample, err := m.collector.Collect(window)

		// Stop regardless of the collection outcome, so the device is
		// clean for the next channel. A failed stop is logged only;
		// the filter may already be stopped.
		if stopErr := m.filter.Stop(); stopErr != nil {
			log.Error("demuxer stop failed", zap.Error(stopErr))
		}

		if err != nil {
			log.Error("collection failed", zap.Error(err))
			m.metrics.ChannelSkipped("collect")
			continue
		}
		if sample.Interrupted {
			log.Warn("collection interrupted, using partial sample",
				zap.Uint64("bytes", sample.Bytes))
		}
		m.metrics.SampledBytes(sample.Bytes)

		rate, ok := Rate(sample)
		if !ok {
			log.Warn("no data within window, skipping report")
			m.metrics.ChannelSkipped("no_data")
			continue
		}

		log.Debug("channel measured",
			zap.Uint64("bytes", sample.Bytes),
			zap.Duration("elapsed", sample.Elapsed),
			zap.Float64("rate_bps", rate))
		lines = append(lines, FormatLine(m.cfg.Prefix, ch, rate, m.now()))
	}

	return lines
}
