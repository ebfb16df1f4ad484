// Package cmd holds the HCI commands used to bring up a classic HID device.
package cmd

import (
	"bytes"
	"encoding/binary"
	"io"
)

const (
	linkCtl    = 0x01
	hostCtl    = 0x03
	infoParam  = 0x04
	testingCmd = 0x06
)

func opcode(ogf, ocf int) int { return ogf<<10 | ocf }

func marshal(c interface{}, b []byte) error {
	buf := bytes.NewBuffer(b)
	buf.Reset()
	if buf.Cap() < binary.Size(c) {
		return io.ErrShortBuffer
	}
	return binary.Write(buf, binary.LittleEndian, c)
}

func unmarshal(c interface{}, b []byte) error {
	return binary.Read(bytes.NewReader(b), binary.LittleEndian, c)
}

// CreateConnection implements Create Connection (0x01|0x0005) [Vol 2, Part E, 7.1.5].
type CreateConnection struct {
	BDADDR                 [6]byte
	PacketType             uint16
	PageScanRepetitionMode uint8
	Reserved               uint8
	ClockOffset            uint16
	AllowRoleSwitch        uint8
}

func (c *CreateConnection) String() string         { return "Create Connection (0x01|0x0005)" }
func (c *CreateConnection) OpCode() int            { return opcode(linkCtl, 0x0005) }
func (c *CreateConnection) Len() int               { return 13 }
func (c *CreateConnection) Marshal(b []byte) error { return marshal(c, b) }

// Disconnect implements Disconnect (0x01|0x0006) [Vol 2, Part E, 7.1.6].
type Disconnect struct {
	ConnectionHandle uint16
	Reason           uint8
}

func (c *Disconnect) String() string         { return "Disconnect (0x01|0x0006)" }
func (c *Disconnect) OpCode() int            { return opcode(linkCtl, 0x0006) }
func (c *Disconnect) Len() int               { return 3 }
func (c *Disconnect) Marshal(b []byte) error { return marshal(c, b) }

// Reset implements Reset (0x03|0x0003) [Vol 2, Part E, 7.3.2].
type Reset struct{}

func (c *Reset) String() string         { return "Reset (0x03|0x0003)" }
func (c *Reset) OpCode() int            { return opcode(hostCtl, 0x0003) }
func (c *Reset) Len() int               { return 0 }
func (c *Reset) Marshal(b []byte) error { return nil }

// WriteLocalName implements Write Local Name (0x03|0x0013) [Vol 2, Part E, 7.3.11].
type WriteLocalName struct {
	LocalName [248]byte
}

func (c *WriteLocalName) String() string         { return "Write Local Name (0x03|0x0013)" }
func (c *WriteLocalName) OpCode() int            { return opcode(hostCtl, 0x0013) }
func (c *WriteLocalName) Len() int               { return 248 }
func (c *WriteLocalName) Marshal(b []byte) error { return marshal(c, b) }

// ReadScanEnable implements Read Scan Enable (0x03|0x0019) [Vol 2, Part E, 7.3.17].
type ReadScanEnable struct{}

func (c *ReadScanEnable) String() string         { return "Read Scan Enable (0x03|0x0019)" }
func (c *ReadScanEnable) OpCode() int            { return opcode(hostCtl, 0x0019) }
func (c *ReadScanEnable) Len() int               { return 0 }
func (c *ReadScanEnable) Marshal(b []byte) error { return nil }

// ReadScanEnableRP returns the return parameter of Read Scan Enable.
type ReadScanEnableRP struct {
	Status     uint8
	ScanEnable uint8
}

func (c *ReadScanEnableRP) Unmarshal(b []byte) error { return unmarshal(c, b) }

// Scan enable values.
const (
	NoScans            = 0x00
	InquiryScan        = 0x01
	PageScan           = 0x02
	InquiryAndPageScan = 0x03
)

// WriteScanEnable implements Write Scan Enable (0x03|0x001A) [Vol 2, Part E, 7.3.18].
type WriteScanEnable struct {
	ScanEnable uint8
}

func (c *WriteScanEnable) String() string         { return "Write Scan Enable (0x03|0x001A)" }
func (c *WriteScanEnable) OpCode() int            { return opcode(hostCtl, 0x001A) }
func (c *WriteScanEnable) Len() int               { return 1 }
func (c *WriteScanEnable) Marshal(b []byte) error { return marshal(c, b) }

// WriteAuthenticationEnable implements Write Authentication Enable (0x03|0x0020) [Vol 2, Part E, 7.3.24].
type WriteAuthenticationEnable struct {
	AuthenticationEnable uint8
}

func (c *WriteAuthenticationEnable) String() string {
	return "Write Authentication Enable (0x03|0x0020)"
}
func (c *WriteAuthenticationEnable) OpCode() int            { return opcode(hostCtl, 0x0020) }
func (c *WriteAuthenticationEnable) Len() int               { return 1 }
func (c *WriteAuthenticationEnable) Marshal(b []byte) error { return marshal(c, b) }

// WriteClassOfDevice implements Write Class of Device (0x03|0x0024) [Vol 2, Part E, 7.3.26].
type WriteClassOfDevice struct {
	ClassOfDevice [3]byte
}

func (c *WriteClassOfDevice) String() string         { return "Write Class of Device (0x03|0x0024)" }
func (c *WriteClassOfDevice) OpCode() int            { return opcode(hostCtl, 0x0024) }
func (c *WriteClassOfDevice) Len() int               { return 3 }
func (c *WriteClassOfDevice) Marshal(b []byte) error { return marshal(c, b) }

// WriteExtendedInquiryResponse implements Write Extended Inquiry Response (0x03|0x0052) [Vol 2, Part E, 7.3.56].
type WriteExtendedInquiryResponse struct {
	FECRequired             uint8
	ExtendedInquiryResponse [240]byte
}

func (c *WriteExtendedInquiryResponse) String() string {
	return "Write Extended Inquiry Response (0x03|0x0052)"
}
func (c *WriteExtendedInquiryResponse) OpCode() int            { return opcode(hostCtl, 0x0052) }
func (c *WriteExtendedInquiryResponse) Len() int               { return 241 }
func (c *WriteExtendedInquiryResponse) Marshal(b []byte) error { return marshal(c, b) }

// WriteSimplePairingMode implements Write Simple Pairing Mode (0x03|0x0056) [Vol 2, Part E, 7.3.59].
type WriteSimplePairingMode struct {
	SimplePairingMode uint8
}

func (c *WriteSimplePairingMode) String() string {
	return "Write Simple Pairing Mode (0x03|0x0056)"
}
func (c *WriteSimplePairingMode) OpCode() int            { return opcode(hostCtl, 0x0056) }
func (c *WriteSimplePairingMode) Len() int               { return 1 }
func (c *WriteSimplePairingMode) Marshal(b []byte) error { return marshal(c, b) }

// ReadBDADDR implements Read BD_ADDR (0x04|0x0009) [Vol 2, Part E, 7.4.6].
type ReadBDADDR struct{}

func (c *ReadBDADDR) String() string         { return "Read BD_ADDR (0x04|0x0009)" }
func (c *ReadBDADDR) OpCode() int            { return opcode(infoParam, 0x0009) }
func (c *ReadBDADDR) Len() int               { return 0 }
func (c *ReadBDADDR) Marshal(b []byte) error { return nil }

// ReadBDADDRRP returns the return parameter of Read BD_ADDR.
type ReadBDADDRRP struct {
	Status uint8
	BDADDR [6]byte
}

func (c *ReadBDADDRRP) Unmarshal(b []byte) error { return unmarshal(c, b) }

// WriteSimplePairingDebugMode implements Write Simple Pairing Debug Mode (0x06|0x0004) [Vol 2, Part E, 7.6.4].
type WriteSimplePairingDebugMode struct {
	DebugMode uint8
}

func (c *WriteSimplePairingDebugMode) String() string {
	return "Write Simple Pairing Debug Mode (0x06|0x0004)"
}
func (c *WriteSimplePairingDebugMode) OpCode() int            { return opcode(testingCmd, 0x0004) }
func (c *WriteSimplePairingDebugMode) Len() int               { return 1 }
func (c *WriteSimplePairingDebugMode) Marshal(b []byte) error { return marshal(c, b) }

// StatusRP is the return parameter of commands that only return a status.
type StatusRP struct {
	Status uint8
}

func (c *StatusRP) Unmarshal(b []byte) error { return unmarshal(c, b) }
