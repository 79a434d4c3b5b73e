// internal/sampler/sampler_test.go
package sampler

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// fakeStream scripts readiness and read outcomes against a simulated
// clock, so windows elapse instantly in tests.
type fakeStream struct {
	clock *fakeClock

	readySeconds int   // number of waits that report data, 1s apart
	readSize     int   // bytes delivered per ready wait
	waitErr      error // returned once readySeconds is exhausted

	waits int
	reads int
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (f *fakeStream) Wait(timeout time.Duration) (bool, error) {
	f.waits++
	if f.waits <= f.readySeconds {
		f.clock.now = f.clock.now.Add(time.Second)
		return true, nil
	}
	if f.waitErr != nil {
		return false, f.waitErr
	}
	f.clock.now = f.clock.now.Add(timeout)
	return false, nil
}

func (f *fakeStream) Read(p []byte) (int, error) {
	f.reads++
	n := f.readSize
	if n > len(p) {
		n = len(p)
	}
	return n, nil
}

func newTestCollector(t *testing.T, stream *fakeStream, bufSize int) *Collector {
	t.Helper()
	c, err := New(Config{BufferSize: bufSize}, stream, zap.NewNop())
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}
	c.now = stream.clock.Now
	return c
}

func TestCollectAccumulates(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	stream := &fakeStream{clock: clock, readySeconds: 10, readSize: 4096}
	c := newTestCollector(t, stream, 188*2048)

	s, err := c.Collect(60 * time.Second)
	if err != nil {
		t.Fatalf("Collect() err=%v", err)
	}

	if s.Bytes != 40960 {
		t.Errorf("Bytes=%d, want 40960", s.Bytes)
	}
	if s.Elapsed != 10*time.Second {
		t.Errorf("Elapsed=%v, want 10s", s.Elapsed)
	}
	if s.Interrupted {
		t.Error("Interrupted=true, want false")
	}
	if s.Bytes > uint64(stream.reads)*uint64(188*2048) {
		t.Errorf("Bytes=%d exceeds reads(%d) x buffer", s.Bytes, stream.reads)
	}
}

func TestCollectSilentChannel(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	stream := &fakeStream{clock: clock}
	c := newTestCollector(t, stream, 188*2048)

	s, err := c.Collect(10 * time.Second)
	if err != nil {
		t.Fatalf("Collect() err=%v", err)
	}

	// Terminates at the deadline even with zero traffic, and the
	// elapsed measurement stays zero so callers skip the rate.
	if s.Bytes != 0 {
		t.Errorf("Bytes=%d, want 0", s.Bytes)
	}
	if s.Elapsed != 0 {
		t.Errorf("Elapsed=%v, want 0", s.Elapsed)
	}
	if stream.reads != 0 {
		t.Errorf("reads=%d, want 0", stream.reads)
	}
	// 10s window with 2s wait timeouts: five waits, no more.
	if stream.waits != 5 {
		t.Errorf("waits=%d, want 5", stream.waits)
	}
}

func TestCollectInterrupted(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	stream := &fakeStream{clock: clock, readySeconds: 3, readSize: 188, waitErr: unix.EINTR}
	c := newTestCollector(t, stream, 188*2048)

	s, err := c.Collect(60 * time.Second)
	if err != nil {
		t.Fatalf("Collect() err=%v", err)
	}
	if !s.Interrupted {
		t.Fatal("Interrupted=false, want true")
	}
	// Partial sample is preserved.
	if s.Bytes != 3*188 {
		t.Errorf("Bytes=%d, want %d", s.Bytes, 3*188)
	}
	if s.Elapsed != 3*time.Second {
		t.Errorf("Elapsed=%v, want 3s", s.Elapsed)
	}
}

func TestCollectWaitError(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	stream := &fakeStream{clock: clock, waitErr: errors.New("EBADF")}
	c := newTestCollector(t, stream, 188*2048)

	if _, err := c.Collect(10 * time.Second); err == nil {
		t.Fatal("Collect() err=nil, want error")
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(Config{BufferSize: 0}, &fakeStream{clock: &fakeClock{}}, zap.NewNop()); err == nil {
		t.Error("New() with zero buffer size: err=nil, want error")
	}
	if _, err := New(Config{BufferSize: 188}, nil, zap.NewNop()); err == nil {
		t.Error("New() with nil stream: err=nil, want error")
	}
}
