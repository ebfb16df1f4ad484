// Package flash emulates the controller's SPI flash: a flat byte store holding
// factory and user stick calibration at fixed offsets.
package flash

import (
	"fmt"
	"io"

	"github.com/rigado/procon"
)

// DefaultSize is the size of the controller's SPI flash.
const DefaultSize = 0x80000

// Offsets into the flash. Each calibration block is CalibrationLen bytes.
const (
	FactoryLStickCalibration = 0x603D
	FactoryRStickCalibration = 0x6046

	UserLStickMarker = 0x8010
	UserRStickMarker = 0x801B

	CalibrationLen = 9
	markerLen      = 2

	// MinSize is the smallest image holding every calibration block.
	MinSize = UserRStickMarker + markerLen + CalibrationLen
)

var (
	// userMarker precedes valid user calibration.
	userMarker = [markerLen]byte{0xB2, 0xA1}

	defaultLStick = [CalibrationLen]byte{0x00, 0x07, 0x70, 0x00, 0x08, 0x80, 0x00, 0x07, 0x70}
	defaultRStick = [CalibrationLen]byte{0x00, 0x08, 0x80, 0x00, 0x07, 0x70, 0x00, 0x07, 0x70}
)

// Memory is an immutable flash image.
type Memory struct {
	data []byte
}

var _ procon.Flash = (*Memory)(nil)

// New returns a Memory of size bytes. With a nil dump the memory is blank
// (all 0xFF) apart from the default factory stick calibration. A non-nil dump
// must be exactly size bytes and is copied.
func New(dump []byte, size int) (*Memory, error) {
	if size < MinSize {
		return nil, &procon.ConfigurationError{
			Size:   size,
			Got:    len(dump),
			Reason: fmt.Sprintf("size 0x%x is smaller than 0x%x", size, MinSize),
		}
	}

	if dump != nil {
		if len(dump) != size {
			return nil, &procon.ConfigurationError{Size: size, Got: len(dump)}
		}
		d := make([]byte, size)
		copy(d, dump)
		return &Memory{data: d}, nil
	}

	d := make([]byte, size)
	for i := range d {
		d[i] = 0xFF
	}
	copy(d[FactoryLStickCalibration:], defaultLStick[:])
	copy(d[FactoryRStickCalibration:], defaultRStick[:])
	return &Memory{data: d}, nil
}

// Size returns the length of the flash image.
func (m *Memory) Size() int {
	return len(m.data)
}

// Bytes returns a copy of the whole image.
func (m *Memory) Bytes() []byte {
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out
}

// ReadAt implements io.ReaderAt, for engines answering SPI flash reads.
func (m *Memory) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *Memory) FactoryLStickCalibration() []byte {
	return m.slice(FactoryLStickCalibration, CalibrationLen)
}

func (m *Memory) FactoryRStickCalibration() []byte {
	return m.slice(FactoryRStickCalibration, CalibrationLen)
}

// UserLStickCalibration returns the user calibration of the left stick, or
// false when none was stored.
func (m *Memory) UserLStickCalibration() ([]byte, bool) {
	return m.user(UserLStickMarker)
}

// UserRStickCalibration is UserLStickCalibration for the right stick.
func (m *Memory) UserRStickCalibration() ([]byte, bool) {
	return m.user(UserRStickMarker)
}

func (m *Memory) user(marker int) ([]byte, bool) {
	if m.data[marker] != userMarker[0] || m.data[marker+1] != userMarker[1] {
		return nil, false
	}
	return m.slice(marker+markerLen, CalibrationLen), true
}

func (m *Memory) slice(off, n int) []byte {
	out := make([]byte, n)
	copy(out, m.data[off:off+n])
	return out
}
