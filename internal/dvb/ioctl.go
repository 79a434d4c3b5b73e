// internal/dvb/ioctl.go
package dvb

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// _IOC request-number arithmetic from <asm-generic/ioctl.h>. The DVB
// ioctls encode the argument struct size, so the numbers derived here
// track the Go struct layouts verified in props_test.go.
const (
	iocNrBits   = 8
	iocTypeBits = 8
	iocSizeBits = 14

	iocNrShift   = 0
	iocTypeShift = iocNrShift + iocNrBits
	iocSizeShift = iocTypeShift + iocTypeBits
	iocDirShift  = iocSizeShift + iocSizeBits

	iocNone  = 0
	iocWrite = 1
	iocRead  = 2
)

func ioc(dir, typ, nr, size uintptr) uintptr {
	return dir<<iocDirShift | typ<<iocTypeShift | nr<<iocNrShift | size<<iocSizeShift
}

func ioNone(typ, nr uintptr) uintptr    { return ioc(iocNone, typ, nr, 0) }
func ioR(typ, nr, size uintptr) uintptr { return ioc(iocRead, typ, nr, size) }
func ioW(typ, nr, size uintptr) uintptr { return ioc(iocWrite, typ, nr, size) }

// DVB control requests, type 'o'.
var (
	feSetProperty    = ioW('o', 82, unsafe.Sizeof(properties{}))
	feReadStatus     = ioR('o', 69, unsafe.Sizeof(uint32(0)))
	dmxSetPesFilter  = ioW('o', 44, unsafe.Sizeof(pesFilterParams{}))
	dmxStop          = ioNone('o', 42)
	dmxSetBufferSize = ioNone('o', 45)
)

// ioctlPtrFn issues a control call whose argument is a pointer to a
// fixed-layout record. ioctlIntFn passes the argument by value
// (DMX_STOP, DMX_SET_BUFFER_SIZE). Both are injectable for tests.
type (
	ioctlPtrFn func(fd, req uintptr, arg unsafe.Pointer) error
	ioctlIntFn func(fd, req, arg uintptr) error
)

func rawIoctlPtr(fd, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

func rawIoctlInt(fd, req, arg uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, req, arg)
	if errno != 0 {
		return errno
	}
	return nil
}
