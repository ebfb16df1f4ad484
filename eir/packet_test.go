package eir

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameField(t *testing.T) {
	p, err := NewPacket(CompleteName("Pro Controller"))
	require.NoError(t, err)

	assert.Equal(t, append([]byte{15, 0x09}, "Pro Controller"...), p.Bytes())
	assert.Equal(t, "Pro Controller", p.LocalName())
	assert.True(t, p.NameComplete())

	b := p.Padded()
	assert.Len(t, b, MaxLength)
	assert.Equal(t, p.Bytes(), b[:p.Len()])
	for _, c := range b[p.Len():] {
		assert.Zero(t, c)
	}
}

func TestLongNameIsShortened(t *testing.T) {
	long := strings.Repeat("x", 300)
	p, err := NewPacket(AllUUID16(0x1124, 0x1200), Name(long))
	require.NoError(t, err)

	assert.Equal(t, MaxLength, p.Len())
	assert.False(t, p.NameComplete())
	assert.Equal(t, long[:MaxLength-6-2], p.LocalName())
	assert.Equal(t, []uint16{0x1124, 0x1200}, p.UUID16s())
}

func TestFieldDoesNotFit(t *testing.T) {
	_, err := NewPacket(CompleteName(strings.Repeat("x", MaxLength-1)))
	assert.Equal(t, ErrNotFit, err)

	_, err = NewPacket(Raw(make([]byte, MaxLength+1)))
	assert.Equal(t, ErrNotFit, err)

	_, err = NewPacket(AllUUID16())
	assert.Equal(t, ErrInvalid, err)
}

func TestParse(t *testing.T) {
	src, err := NewPacket(
		CompleteName("Pro Controller"),
		AllUUID16(0x1124),
		TxPower(-4),
		DeviceID(0x0002, 0x057E, 0x2009, 0x0001),
		ManufacturerData(0x0553, []byte{0x01, 0x02}),
	)
	require.NoError(t, err)

	p, err := Parse(src.Padded())
	require.NoError(t, err)

	assert.Equal(t, src.Bytes(), p.Bytes())
	assert.Equal(t, "Pro Controller", p.LocalName())
	assert.Equal(t, []uint16{0x1124}, p.UUID16s())
	pwr, ok := p.TxPower()
	assert.True(t, ok)
	assert.Equal(t, -4, pwr)
	assert.Equal(t, []byte{0x53, 0x05, 0x01, 0x02}, p.ManufacturerData())
}

func TestParseSkipsUnknownTypes(t *testing.T) {
	p, err := Parse([]byte{0x03, 0x19, 0xc1, 0x03, 0x04, 0x08, 'P', 'r', 'o', 0x00, 0x00})
	require.NoError(t, err)
	assert.Equal(t, "Pro", p.LocalName())
	assert.False(t, p.NameComplete())
	_, ok := p.TxPower()
	assert.False(t, ok)
}

func TestParseErrors(t *testing.T) {
	for name, b := range map[string][]byte{
		"overflow":     {0x05, 0x09, 'a'},
		"short uuid":   {0x02, 0x03, 0x24},
		"empty txpwr":  {0x01, 0x0a},
		"odd uuids":    {0x04, 0x03, 0x24, 0x11, 0x00},
		"short mfg id": {0x02, 0xff, 0x53},
	} {
		_, err := Parse(b)
		assert.Error(t, err, name)
	}
}
