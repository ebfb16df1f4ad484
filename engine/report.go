package engine

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// Header of a HID DATA | Output transaction on the interrupt channel.
const outputHeader = 0xA2

// Output report IDs sent by the host.
const (
	ReportSubcommand byte = 0x01
	ReportRumble     byte = 0x10
	ReportMCU        byte = 0x11
)

// Subcommands the passive engine knows by name.
const (
	SubcmdDeviceInfo  byte = 0x02
	SubcmdInputMode   byte = 0x03
	SubcmdTriggerTime byte = 0x04
	SubcmdShipmentLow byte = 0x08
	SubcmdSPIRead     byte = 0x10
	SubcmdMCUConfig   byte = 0x21
	SubcmdMCUState    byte = 0x22
	SubcmdPlayerLEDs  byte = 0x30
	SubcmdHomeLED     byte = 0x38
	SubcmdIMU         byte = 0x40
	SubcmdVibration   byte = 0x48
)

var subcmdNames = map[byte]string{
	SubcmdDeviceInfo:  "request device info",
	SubcmdInputMode:   "set input report mode",
	SubcmdTriggerTime: "trigger buttons elapsed time",
	SubcmdShipmentLow: "set shipment low power state",
	SubcmdSPIRead:     "spi flash read",
	SubcmdMCUConfig:   "set nfc/ir mcu configuration",
	SubcmdMCUState:    "set nfc/ir mcu state",
	SubcmdPlayerLEDs:  "set player lights",
	SubcmdHomeLED:     "set home light",
	SubcmdIMU:         "enable imu",
	SubcmdVibration:   "enable vibration",
}

// SPIMaxRead is the largest flash read a host may request in one subcommand.
const SPIMaxRead = 0x1D

// OutputReport is a decoded host to controller report.
type OutputReport struct {
	ID         byte
	Counter    byte
	Rumble     [8]byte
	Subcommand byte
	Args       []byte
}

// DecodeOutputReport parses b as received on the interrupt channel. The
// leading 0xA2 transaction header is optional.
func DecodeOutputReport(b []byte) (OutputReport, error) {
	var r OutputReport
	if len(b) > 0 && b[0] == outputHeader {
		b = b[1:]
	}
	if len(b) < 10 {
		return r, errors.Errorf("output report too short: %d bytes", len(b))
	}

	r.ID = b[0]
	r.Counter = b[1]
	copy(r.Rumble[:], b[2:10])

	switch r.ID {
	case ReportSubcommand, ReportMCU:
		if len(b) < 11 {
			return r, errors.Errorf("report 0x%02x without subcommand", r.ID)
		}
		r.Subcommand = b[10]
		r.Args = b[11:]
	case ReportRumble:
	default:
		return r, errors.Errorf("unknown output report 0x%02x", r.ID)
	}
	return r, nil
}

// SPIRead returns the flash range of a spi flash read subcommand.
func (r OutputReport) SPIRead() (addr uint32, n int, err error) {
	if r.ID != ReportSubcommand || r.Subcommand != SubcmdSPIRead {
		return 0, 0, errors.New("not a spi flash read")
	}
	if len(r.Args) < 5 {
		return 0, 0, errors.Errorf("spi flash read arguments too short: %d bytes", len(r.Args))
	}
	addr = binary.LittleEndian.Uint32(r.Args[:4])
	n = int(r.Args[4])
	if n > SPIMaxRead {
		return 0, 0, errors.Errorf("spi flash read of %d bytes exceeds 0x%x", n, SPIMaxRead)
	}
	return addr, n, nil
}

func (r OutputReport) String() string {
	switch r.ID {
	case ReportRumble:
		return fmt.Sprintf("rumble #%d", r.Counter)
	case ReportMCU:
		return fmt.Sprintf("mcu #%d 0x%02x", r.Counter, r.Subcommand)
	}
	name, ok := subcmdNames[r.Subcommand]
	if !ok {
		name = "unknown"
	}
	return fmt.Sprintf("subcommand #%d 0x%02x (%s)", r.Counter, r.Subcommand, name)
}
