// internal/dvb/dvr.go
package dvb

import (
	"time"

	"golang.org/x/sys/unix"
)

// DVR is the non-blocking transport-stream tap of one tuner. It
// implements the sampler's Stream contract: wait for readability with a
// bounded timeout, then drain up to one buffer's worth of bytes.
type DVR struct {
	fd int
}

// Wait blocks until the device is readable (data or priority data), the
// timeout expires, or the call is interrupted. EINTR is returned to the
// caller untranslated; the collector treats it as an early end to the
// measurement window.
func (d *DVR) Wait(timeout time.Duration) (bool, error) {
	fds := []unix.PollFd{{Fd: int32(d.fd), Events: unix.POLLIN | unix.POLLPRI}}
	n, err := unix.Poll(fds, int(timeout.Milliseconds()))
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	return fds[0].Revents&(unix.POLLIN|unix.POLLPRI) != 0, nil
}

// Read reads available transport-stream bytes. The device is
// non-blocking and a poll wakeup is not a guarantee of data, so EAGAIN
// counts as zero bytes, not an error.
func (d *DVR) Read(p []byte) (int, error) {
	n, err := unix.Read(d.fd, p)
	if err == unix.EAGAIN {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}
