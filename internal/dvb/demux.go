// internal/dvb/demux.go
package dvb

import (
	"errors"
	"fmt"
	"unsafe"

	"go.uber.org/zap"
)

var (
	// ErrStartFailed means the demuxer refused the PES filter.
	ErrStartFailed = errors.New("dvb: demuxer start failed")
	// ErrStopFailed means DMX_STOP failed. The filter may already be
	// stopped; callers log and carry on.
	ErrStopFailed = errors.New("dvb: demuxer stop failed")
	// ErrBufferSize means the kernel ring buffer could not be sized.
	// Fatal: the device cannot be used without an adequate buffer.
	ErrBufferSize = errors.New("dvb: demuxer buffer size rejected")
)

// Demux manages the transport-stream passthrough filter on one demux
// device.
type Demux struct {
	fd       uintptr
	ioctl    ioctlPtrFn
	ioctlInt ioctlIntFn
	log      *zap.Logger
}

// Start opens a filter passing the raw transport stream on the DOCSIS
// PID to the stream tap, starting immediately.
func (d *Demux) Start() error {
	d.log.Debug("starting demuxer", zap.Uint16("pid", docsisPID))

	filter := pesFilterParams{
		PID:     docsisPID,
		Input:   dmxInFrontend,
		Output:  dmxOutTSTap,
		PESType: dmxPESOther,
		Flags:   dmxImmediateStart,
	}
	if err := d.ioctl(d.fd, dmxSetPesFilter, unsafe.Pointer(&filter)); err != nil {
		return fmt.Errorf("%w: %v", ErrStartFailed, err)
	}
	return nil
}

// Stop tears the filter down. Must be attempted even after a failed
// measurement, to leave the device clean for the next channel.
func (d *Demux) Stop() error {
	d.log.Debug("stopping demuxer")

	if err := d.ioctlInt(d.fd, dmxStop, 0); err != nil {
		return fmt.Errorf("%w: %v", ErrStopFailed, err)
	}
	return nil
}

// SetBufferSize sizes the kernel-side ring buffer. The value is passed
// by value, not by pointer. One-time call at startup.
func (d *Demux) SetBufferSize(bytes int) error {
	d.log.Debug("setting demuxer buffer size", zap.Int("bytes", bytes))

	if err := d.ioctlInt(d.fd, dmxSetBufferSize, uintptr(bytes)); err != nil {
		return fmt.Errorf("%w: %v", ErrBufferSize, err)
	}
	return nil
}
