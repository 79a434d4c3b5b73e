// internal/dvb/demux_test.go
package dvb

import (
	"errors"
	"testing"
	"unsafe"

	"go.uber.org/zap"
)

type fakeDemuxControl struct {
	filter   *pesFilterParams
	intCalls []struct{ req, arg uintptr }
	failPtr  error
	failInt  error
}

func (f *fakeDemuxControl) ioctl(fd, req uintptr, arg unsafe.Pointer) error {
	if f.failPtr != nil {
		return f.failPtr
	}
	if req == dmxSetPesFilter {
		cp := *(*pesFilterParams)(arg)
		f.filter = &cp
	}
	return nil
}

func (f *fakeDemuxControl) ioctlInt(fd, req, arg uintptr) error {
	f.intCalls = append(f.intCalls, struct{ req, arg uintptr }{req, arg})
	return f.failInt
}

func newTestDemux(fc *fakeDemuxControl) *Demux {
	return &Demux{fd: 4, ioctl: fc.ioctl, ioctlInt: fc.ioctlInt, log: zap.NewNop()}
}

func TestDemuxStart(t *testing.T) {
	fc := &fakeDemuxControl{}
	d := newTestDemux(fc)

	if err := d.Start(); err != nil {
		t.Fatalf("Start() err=%v", err)
	}
	if fc.filter == nil {
		t.Fatal("DMX_SET_PES_FILTER was not issued")
	}

	want := pesFilterParams{
		PID:     8190,
		Input:   dmxInFrontend,
		Output:  dmxOutTSTap,
		PESType: dmxPESOther,
		Flags:   dmxImmediateStart,
	}
	if *fc.filter != want {
		t.Fatalf("filter=%+v, want %+v", *fc.filter, want)
	}
}

func TestDemuxStartFailed(t *testing.T) {
	fc := &fakeDemuxControl{failPtr: errors.New("EBUSY")}
	d := newTestDemux(fc)

	if err := d.Start(); !errors.Is(err, ErrStartFailed) {
		t.Fatalf("Start() err=%v, want ErrStartFailed", err)
	}
}

func TestDemuxStop(t *testing.T) {
	fc := &fakeDemuxControl{}
	d := newTestDemux(fc)

	if err := d.Stop(); err != nil {
		t.Fatalf("Stop() err=%v", err)
	}
	if len(fc.intCalls) != 1 || fc.intCalls[0].req != dmxStop || fc.intCalls[0].arg != 0 {
		t.Fatalf("intCalls=%+v, want one DMX_STOP with no payload", fc.intCalls)
	}
}

func TestDemuxStopFailed(t *testing.T) {
	fc := &fakeDemuxControl{failInt: errors.New("EINVAL")}
	d := newTestDemux(fc)

	if err := d.Stop(); !errors.Is(err, ErrStopFailed) {
		t.Fatalf("Stop() err=%v, want ErrStopFailed", err)
	}
}

func TestDemuxSetBufferSize(t *testing.T) {
	fc := &fakeDemuxControl{}
	d := newTestDemux(fc)

	if err := d.SetBufferSize(TSBufferSize); err != nil {
		t.Fatalf("SetBufferSize() err=%v", err)
	}
	if len(fc.intCalls) != 1 || fc.intCalls[0].req != dmxSetBufferSize {
		t.Fatalf("intCalls=%+v, want one DMX_SET_BUFFER_SIZE", fc.intCalls)
	}
	if fc.intCalls[0].arg != 188*2048 {
		t.Fatalf("buffer size=%d, want %d", fc.intCalls[0].arg, 188*2048)
	}

	fc.failInt = errors.New("ENOMEM")
	if err := d.SetBufferSize(TSBufferSize); !errors.Is(err, ErrBufferSize) {
		t.Fatalf("SetBufferSize() err=%v, want ErrBufferSize", err)
	}
}
