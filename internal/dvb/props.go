// internal/dvb/props.go
package dvb

// Constants from the Linux DVB v5 API headers
// (<linux/dvb/frontend.h>, <linux/dvb/dmx.h>).
const (
	dtvFrequency      = 0x03
	dtvModulation     = 0x04
	dtvInversion      = 0x06
	dtvSymbolRate     = 0x08
	dtvInnerFEC       = 0x09
	dtvDeliverySystem = 0x11
	dtvTune           = 0x01

	sysDVBCAnnexAC = 0x01
	inversionOff   = 0x00
	fecAuto        = 0x09

	dmxInFrontend     = 0x00
	dmxOutTSTap       = 0x02
	dmxPESOther       = 0x14
	dmxImmediateStart = 0x04

	feHasLock = 0x10
)

// EuroDOCSIS 3.0 downstream channels are DVB-C annex A/C with a fixed
// symbol rate and the transport stream carried on PID 8190.
const (
	euroDocsisSymbolRate = 6952000
	docsisPID            = 8190
)

// MPEG-TS geometry. The demuxer ring buffer holds 2048 packets.
const (
	tsPacketSize  = 188
	tsPacketCount = 2048
	TSBufferSize  = tsPacketSize * tsPacketCount
)

// Modulation is the DVB API modulation identifier for the two QAM
// profiles EuroDOCSIS uses.
type Modulation uint32

const (
	QAM64  Modulation = 0x03
	QAM256 Modulation = 0x05
)

// Label returns the metric path component for the modulation.
func (m Modulation) Label() string {
	if m == QAM64 {
		return "qam64"
	}
	return "qam256"
}

// Tunable is one RF channel to measure. Immutable for the run's lifetime.
type Tunable struct {
	FrequencyHz uint32
	Modulation  Modulation
}

// property mirrors struct dtv_property. The kernel declares it packed;
// the union at offset 16 is 56 bytes wide, of which only the scalar u32
// variant is used here. Field order and offsets are load-bearing:
//
//	offset  0  cmd      u32
//	offset  4  reserved [3]u32
//	offset 16  u.data   u32 (scalar variant of the 56-byte union)
//	offset 72  result   i32
//	size   76
//
// A mismatch is not detected by the driver; it silently mis-tunes.
// props_test.go pins the layout.
type property struct {
	Cmd      uint32
	Reserved [3]uint32
	Data     uint32
	_        [52]byte // remainder of the union (buffer variant, unused)
	Result   int32
}

// properties mirrors struct dtv_properties: a count plus a pointer to a
// contiguous property array. Not packed in the kernel, so natural Go
// alignment matches (size 16 on 64-bit).
type properties struct {
	Num   uint32
	Props *property
}

// pesFilterParams mirrors struct dmx_pes_filter_params (size 20, two pad
// bytes after the u16 pid).
type pesFilterParams struct {
	PID     uint16
	_       [2]byte
	Input   uint32
	Output  uint32
	PESType uint32
	Flags   uint32
}

const tunePropertyCount = 7

// tuneProps builds the frontend command batch for one tune attempt.
// Order matters and is fixed by the DVB API: the terminal DTV_TUNE
// commits everything set before it.
func tuneProps(t Tunable) [tunePropertyCount]property {
	return [tunePropertyCount]property{
		{Cmd: dtvDeliverySystem, Data: sysDVBCAnnexAC},
		{Cmd: dtvModulation, Data: uint32(t.Modulation)},
		{Cmd: dtvSymbolRate, Data: euroDocsisSymbolRate},
		{Cmd: dtvInversion, Data: inversionOff},
		{Cmd: dtvInnerFEC, Data: fecAuto},
		{Cmd: dtvFrequency, Data: t.FrequencyHz},
		{Cmd: dtvTune},
	}
}
