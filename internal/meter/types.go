// internal/meter/types.go
package meter

import (
	"context"
	"time"

	"github.com/kvollmer/dtm/internal/dvb"
	"github.com/kvollmer/dtm/internal/sampler"
)

// Channel is one configured measurement target. The frequency is kept
// in MHz as configured; it is both the tuning input (scaled to Hz) and
// the metric path component.
type Channel struct {
	FrequencyMHz uint32
	Modulation   dvb.Modulation
}

// Tunable returns the frontend tuning parameters for the channel.
func (c Channel) Tunable() dvb.Tunable {
	return dvb.Tunable{
		FrequencyHz: c.FrequencyMHz * 1000000,
		Modulation:  c.Modulation,
	}
}

// The meter depends on contracts only; production implementations live
// in internal/dvb, internal/sampler and internal/carbon.

// Tuner locks the frontend onto one channel.
type Tuner interface {
	Tune(ctx context.Context, t dvb.Tunable) error
}

// Filter is the demuxer passthrough filter lifecycle.
type Filter interface {
	Start() error
	Stop() error
}

// Collector accumulates transport-stream bytes for one window.
type Collector interface {
	Collect(window time.Duration) (sampler.Sample, error)
}

// Sender flushes one sweep's worth of metric lines.
type Sender interface {
	Send(lines []string) error
}
