// internal/dvb/device.go
package dvb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// ErrOpen means one of the adapter's device nodes could not be opened.
// Fatal: there is no tuner to drive.
var ErrOpen = errors.New("dvb: device open failed")

// Device owns the three file descriptors of one adapter/tuner pair:
// frontend and demux for control, dvr for the transport-stream tap.
// Handles are acquired once and must be released via Close on every
// exit path.
type Device struct {
	frontend *Frontend
	demux    *Demux
	dvr      *DVR
	log      *zap.Logger
}

// Open opens /dev/dvb/adapterN/{frontendM,demuxM,dvrM}. The dvr device
// is opened non-blocking so the collector can poll it.
func Open(adapter, tuner int, log *zap.Logger) (*Device, error) {
	base := fmt.Sprintf("/dev/dvb/adapter%d", adapter)
	log.Debug("opening adapter devices", zap.String("base", base), zap.Int("tuner", tuner))

	fefd, err := unix.Open(filepath.Join(base, fmt.Sprintf("frontend%d", tuner)), unix.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: frontend%d: %v", ErrOpen, tuner, err)
	}
	dmxfd, err := unix.Open(filepath.Join(base, fmt.Sprintf("demux%d", tuner)), unix.O_RDWR, 0)
	if err != nil {
		unix.Close(fefd)
		return nil, fmt.Errorf("%w: demux%d: %v", ErrOpen, tuner, err)
	}
	dvrfd, err := unix.Open(filepath.Join(base, fmt.Sprintf("dvr%d", tuner)), unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		unix.Close(fefd)
		unix.Close(dmxfd)
		return nil, fmt.Errorf("%w: dvr%d: %v", ErrOpen, tuner, err)
	}

	return &Device{
		frontend: &Frontend{
			fd:    uintptr(fefd),
			ioctl: rawIoctlPtr,
			sleep: sleepContext,
			log:   log.Named("frontend"),
		},
		demux: &Demux{
			fd:       uintptr(dmxfd),
			ioctl:    rawIoctlPtr,
			ioctlInt: rawIoctlInt,
			log:      log.Named("demux"),
		},
		dvr: &DVR{fd: dvrfd},
		log: log,
	}, nil
}

func (d *Device) Frontend() *Frontend { return d.frontend }
func (d *Device) Demux() *Demux       { return d.demux }
func (d *Device) DVR() *DVR           { return d.dvr }

// Close releases all three descriptors, collecting errors.
func (d *Device) Close() error {
	var errs []error
	for _, fd := range []int{int(d.frontend.fd), int(d.demux.fd), d.dvr.fd} {
		if err := unix.Close(fd); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
