package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type command interface {
	OpCode() int
	Len() int
	Marshal([]byte) error
}

func marshalled(t *testing.T, c command) []byte {
	b := make([]byte, 260)
	require.NoError(t, c.Marshal(b))
	return b[:c.Len()]
}

func TestOpCodes(t *testing.T) {
	for want, c := range map[int]command{
		0x0405: &CreateConnection{},
		0x0406: &Disconnect{},
		0x0C03: &Reset{},
		0x0C13: &WriteLocalName{},
		0x0C19: &ReadScanEnable{},
		0x0C1A: &WriteScanEnable{},
		0x0C20: &WriteAuthenticationEnable{},
		0x0C24: &WriteClassOfDevice{},
		0x0C52: &WriteExtendedInquiryResponse{},
		0x0C56: &WriteSimplePairingMode{},
		0x1009: &ReadBDADDR{},
		0x1804: &WriteSimplePairingDebugMode{},
	} {
		assert.Equal(t, want, c.OpCode(), "%v", c)
	}
}

func TestMarshal(t *testing.T) {
	assert.Equal(t, []byte{0x03}, marshalled(t, &WriteScanEnable{ScanEnable: InquiryAndPageScan}))
	assert.Equal(t, []byte{0x08, 0x05, 0x00}, marshalled(t, &WriteClassOfDevice{ClassOfDevice: [3]byte{0x08, 0x05, 0x00}}))
	assert.Equal(t, []byte{0x40, 0x00, 0x13}, marshalled(t, &Disconnect{ConnectionHandle: 0x0040, Reason: 0x13}))

	cc := &CreateConnection{
		BDADDR:          [6]byte{0x56, 0x34, 0x12, 0xe9, 0xb6, 0x98},
		PacketType:      0xcc18,
		AllowRoleSwitch: 0x01,
	}
	assert.Equal(t, []byte{
		0x56, 0x34, 0x12, 0xe9, 0xb6, 0x98,
		0x18, 0xcc,
		0x00, 0x00,
		0x00, 0x00,
		0x01,
	}, marshalled(t, cc))

	var n WriteLocalName
	copy(n.LocalName[:], "Pro Controller")
	b := marshalled(t, &n)
	assert.Len(t, b, 248)
	assert.Equal(t, "Pro Controller", string(b[:14]))
	assert.Zero(t, b[14])

	e := WriteExtendedInquiryResponse{FECRequired: 0x00}
	e.ExtendedInquiryResponse[0] = 0x0f
	b = marshalled(t, &e)
	assert.Len(t, b, 241)
	assert.Equal(t, byte(0x0f), b[1])
}

func TestMarshalShortBuffer(t *testing.T) {
	assert.Error(t, (&WriteLocalName{}).Marshal(make([]byte, 10)))
}

func TestUnmarshal(t *testing.T) {
	var rp ReadBDADDRRP
	require.NoError(t, rp.Unmarshal([]byte{0x00, 0x01, 0x00, 0x00, 0x32, 0xa6, 0xdc}))
	assert.Equal(t, [6]byte{0x01, 0x00, 0x00, 0x32, 0xa6, 0xdc}, rp.BDADDR)

	var se ReadScanEnableRP
	require.NoError(t, se.Unmarshal([]byte{0x00, 0x03}))
	assert.Equal(t, uint8(InquiryAndPageScan), se.ScanEnable)

	assert.Error(t, se.Unmarshal([]byte{0x00}))
}
