package evt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandComplete(t *testing.T) {
	// Read BD_ADDR complete
	e := CommandComplete{0x01, 0x09, 0x10, 0x00, 0x01, 0x00, 0x00, 0x32, 0xa6, 0xdc}
	assert.Equal(t, uint8(1), e.NumHCICommandPackets())
	assert.Equal(t, uint16(0x1009), e.CommandOpcode())
	assert.Equal(t, []byte{0x00, 0x01, 0x00, 0x00, 0x32, 0xa6, 0xdc}, e.ReturnParameters())

	nop := CommandComplete{0x01, 0x00, 0x00}
	rp, err := nop.ReturnParametersWErr()
	require.NoError(t, err)
	assert.Empty(t, rp)

	_, err = CommandComplete{0x01, 0x09}.CommandOpcodeWErr()
	assert.Error(t, err)
}

func TestCommandStatus(t *testing.T) {
	e := CommandStatus{0x00, 0x01, 0x05, 0x04}
	assert.True(t, e.Valid())
	assert.Zero(t, e.Status())
	assert.Equal(t, uint16(0x0405), e.CommandOpcode())

	assert.False(t, CommandStatus{0x00, 0x01}.Valid())
	assert.Equal(t, uint16(0xffff), CommandStatus{0x00, 0x01}.CommandOpcode())
}

func TestConnectionComplete(t *testing.T) {
	e := ConnectionComplete{0x00, 0x0b, 0x20, 0x56, 0x34, 0x12, 0xe9, 0xb6, 0x98, 0x01, 0x00}
	assert.Zero(t, e.Status())
	assert.Equal(t, uint16(0x000b), e.ConnectionHandle())
	assert.Equal(t, [6]byte{0x56, 0x34, 0x12, 0xe9, 0xb6, 0x98}, e.BDADDR())
	assert.Equal(t, uint8(1), e.LinkType())

	_, err := ConnectionComplete{0x00, 0x0b}.BDADDRWErr()
	assert.Error(t, err)
}

func TestConnectionRequest(t *testing.T) {
	e := ConnectionRequest{0x56, 0x34, 0x12, 0xe9, 0xb6, 0x98, 0x08, 0x05, 0x00, 0x01}
	assert.Equal(t, [6]byte{0x56, 0x34, 0x12, 0xe9, 0xb6, 0x98}, e.BDADDR())
	assert.Equal(t, uint32(0x000508), e.ClassOfDevice())
}

func TestDisconnectionComplete(t *testing.T) {
	e := DisconnectionComplete{0x00, 0x0b, 0x00, 0x13}
	assert.Zero(t, e.Status())
	assert.Equal(t, uint16(0x000b), e.ConnectionHandle())
	assert.Equal(t, uint8(0x13), e.Reason())

	_, err := DisconnectionComplete{0x00}.ReasonWErr()
	assert.Error(t, err)
}
