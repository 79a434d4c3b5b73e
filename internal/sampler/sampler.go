// internal/sampler/sampler.go
package sampler

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// Stream is the readiness + read contract of the transport-stream tap.
// The collector depends on byte counts only; packet framing is opaque.
type Stream interface {
	// Wait blocks until the stream is readable or the timeout expires.
	// An EINTR from the underlying wait is passed through unwrapped.
	Wait(timeout time.Duration) (bool, error)
	Read(p []byte) (int, error)
}

// Sample is the outcome of one channel's measurement window. Elapsed is
// measured from the start of collection to the last successful read,
// not wall clock at return: a locked but silent channel yields
// Elapsed == 0 and callers must not divide by it.
type Sample struct {
	Bytes       uint64
	Elapsed     time.Duration
	Interrupted bool
}

// Config is the minimal runtime config the collector needs.
type Config struct {
	BufferSize  int
	PollTimeout time.Duration
}

// The wait timeout keeps the loop responsive to the window deadline
// when no data arrives; it is not itself the measurement window.
const defaultPollTimeout = 2 * time.Second

// Collector runs the time-boxed polling loop over one stream.
type Collector struct {
	cfg    Config
	stream Stream
	now    func() time.Time
	buf    []byte
	log    *zap.Logger
}

// New creates a collector with immutable config.
func New(cfg Config, stream Stream, log *zap.Logger) (*Collector, error) {
	if cfg.BufferSize <= 0 {
		return nil, errors.New("sampler: buffer size must be > 0")
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = defaultPollTimeout
	}
	if stream == nil {
		return nil, errors.New("sampler: stream required")
	}
	return &Collector{
		cfg:    cfg,
		stream: stream,
		now:    time.Now,
		buf:    make([]byte, cfg.BufferSize),
		log:    log,
	}, nil
}

// Collect accumulates transport-stream bytes until the window deadline.
// A signal interruption during the readiness wait ends collection early
// with the partial sample flagged Interrupted; any other stream failure
// aborts with an error. Exactly one collection is in flight at a time.
func (c *Collector) Collect(window time.Duration) (Sample, error) {
	start := c.now()
	deadline := start.Add(window)
	c.log.Debug("collecting", zap.Duration("window", window))

	var s Sample
	var lastRead time.Time

	for c.now().Before(deadline) {
		ready, err := c.stream.Wait(c.cfg.PollTimeout)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				c.log.Warn("readiness wait interrupted, ending collection early")
				s.Interrupted = true
				break
			}
			return s, fmt.Errorf("sampler: wait: %w", err)
		}
		if !ready {
			continue
		}

		n, err := c.stream.Read(c.buf)
		if err != nil {
			return s, fmt.Errorf("sampler: read: %w", err)
		}
		if n > 0 {
			s.Bytes += uint64(n)
			lastRead = c.now()
		}
	}

	if !lastRead.IsZero() {
		s.Elapsed = lastRead.Sub(start)
	}
	c.log.Debug("collection finished",
		zap.Uint64("bytes", s.Bytes),
		zap.Duration("elapsed", s.Elapsed),
		zap.Bool("interrupted", s.Interrupted))
	return s, nil
}
