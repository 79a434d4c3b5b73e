// internal/dvb/frontend.go
package dvb

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"
	"unsafe"

	"go.uber.org/zap"
)

var (
	// ErrCommandRejected means the driver refused the tuning command
	// set (frequency out of range, busy device).
	ErrCommandRejected = errors.New("dvb: frontend rejected tuning command set")
	// ErrStatusUnreadable means the lock status could not be read back.
	ErrStatusUnreadable = errors.New("dvb: frontend status unreadable")
	// ErrNoLock means the frontend tuned but never synchronized to the
	// requested parameters. Skippable: the channel may just be dark.
	ErrNoLock = errors.New("dvb: frontend has no lock")
)

// The hardware lock indicator is not valid immediately after a tune
// command; 250ms is enough for the supported cable frontends.
const settleDelay = 250 * time.Millisecond

// Frontend drives one tuner frontend device. No retries are performed
// here; retry policy belongs to the sweep loop.
type Frontend struct {
	fd    uintptr
	ioctl ioctlPtrFn
	sleep func(context.Context, time.Duration) error
	log   *zap.Logger
}

// Tune issues the 7-command property batch in one FE_SET_PROPERTY call
// and verifies signal lock after the settle delay. Exactly one status
// read is performed; no further calls are made after the first failure.
func (f *Frontend) Tune(ctx context.Context, t Tunable) error {
	f.log.Debug("tuning",
		zap.Uint32("frequency_hz", t.FrequencyHz),
		zap.String("modulation", t.Modulation.Label()))

	props := tuneProps(t)
	batch := properties{Num: tunePropertyCount, Props: &props[0]}
	err := f.ioctl(f.fd, feSetProperty, unsafe.Pointer(&batch))
	runtime.KeepAlive(&props)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCommandRejected, err)
	}

	if err := f.sleep(ctx, settleDelay); err != nil {
		return err
	}

	var status uint32
	if err := f.ioctl(f.fd, feReadStatus, unsafe.Pointer(&status)); err != nil {
		return fmt.Errorf("%w: %v", ErrStatusUnreadable, err)
	}
	if status&feHasLock == 0 {
		return ErrNoLock
	}

	f.log.Debug("tuning successful", zap.Uint32("status", status))
	return nil
}
