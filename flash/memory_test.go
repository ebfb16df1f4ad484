package flash

import (
	"bytes"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/rigado/procon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBlank(t *testing.T) {
	for _, size := range []int{MinSize, 0x10000, DefaultSize} {
		m, err := New(nil, size)
		require.NoError(t, err)
		require.Equal(t, size, m.Size())

		b := m.Bytes()
		for i, v := range b {
			inFactory := (i >= FactoryLStickCalibration && i < FactoryLStickCalibration+CalibrationLen) ||
				(i >= FactoryRStickCalibration && i < FactoryRStickCalibration+CalibrationLen)
			if inFactory {
				continue
			}
			if v != 0xFF {
				t.Fatalf("size 0x%x: byte 0x%x = 0x%02x, want 0xff", size, i, v)
			}
		}
	}
}

func TestFactoryCalibrationDefaults(t *testing.T) {
	m, err := New(nil, DefaultSize)
	require.NoError(t, err)

	assert.Equal(t, []byte{0x00, 0x07, 0x70, 0x00, 0x08, 0x80, 0x00, 0x07, 0x70}, m.FactoryLStickCalibration())
	assert.Equal(t, []byte{0x00, 0x08, 0x80, 0x00, 0x07, 0x70, 0x00, 0x07, 0x70}, m.FactoryRStickCalibration())
}

func TestFactoryCalibrationIsCopy(t *testing.T) {
	m, err := New(nil, DefaultSize)
	require.NoError(t, err)

	c := m.FactoryLStickCalibration()
	c[0] = 0x42
	assert.Equal(t, byte(0x00), m.FactoryLStickCalibration()[0])
}

func TestUserCalibrationAbsentOnBlank(t *testing.T) {
	m, err := New(nil, DefaultSize)
	require.NoError(t, err)

	_, ok := m.UserLStickCalibration()
	assert.False(t, ok)
	_, ok = m.UserRStickCalibration()
	assert.False(t, ok)
}

func TestUserCalibrationMarker(t *testing.T) {
	blank, err := New(nil, DefaultSize)
	require.NoError(t, err)

	dump := blank.Bytes()
	dump[0x8010], dump[0x8011] = 0xB2, 0xA1
	for i := 0; i < CalibrationLen; i++ {
		dump[0x8012+i] = byte(i + 1)
	}

	m, err := New(dump, DefaultSize)
	require.NoError(t, err)

	l, ok := m.UserLStickCalibration()
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}, l)

	// right block is independent
	_, ok = m.UserRStickCalibration()
	assert.False(t, ok)

	dump[0x801B], dump[0x801C] = 0xB2, 0xA1
	copy(dump[0x801D:], []byte{9, 8, 7, 6, 5, 4, 3, 2, 1})
	dump[0x8011] = 0xA2

	m, err = New(dump, DefaultSize)
	require.NoError(t, err)

	_, ok = m.UserLStickCalibration()
	assert.False(t, ok, "half a marker is no marker")

	r, ok := m.UserRStickCalibration()
	require.True(t, ok)
	assert.Equal(t, []byte{9, 8, 7, 6, 5, 4, 3, 2, 1}, r)
}

func TestDumpOverridesFactory(t *testing.T) {
	dump := make([]byte, DefaultSize)
	m, err := New(dump, DefaultSize)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, CalibrationLen), m.FactoryLStickCalibration())

	// the dump is copied
	dump[FactoryLStickCalibration] = 0x11
	assert.Equal(t, byte(0), m.FactoryLStickCalibration()[0])
}

func TestSizeMismatch(t *testing.T) {
	cases := []struct {
		name string
		dump []byte
		size int
	}{
		{"short", make([]byte, DefaultSize-1), DefaultSize},
		{"long", bytes.Repeat([]byte{0xB2}, DefaultSize+1), DefaultSize},
		{"empty", []byte{}, DefaultSize},
		{"tiny size", nil, 16},
		{"zero size", nil, 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m, err := New(c.dump, c.size)
			assert.Nil(t, m)

			var ce *procon.ConfigurationError
			require.True(t, errors.As(err, &ce), "got %v", err)
			assert.Equal(t, c.size, ce.Size)
		})
	}
}

func TestReadAt(t *testing.T) {
	m, err := New(nil, DefaultSize)
	require.NoError(t, err)

	p := make([]byte, CalibrationLen)
	n, err := m.ReadAt(p, FactoryRStickCalibration)
	require.NoError(t, err)
	assert.Equal(t, CalibrationLen, n)
	assert.Equal(t, m.FactoryRStickCalibration(), p)

	n, err = m.ReadAt(p, DefaultSize-4)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 4, n)

	_, err = m.ReadAt(p, DefaultSize)
	assert.Equal(t, io.EOF, err)
}

func TestLoad(t *testing.T) {
	dir, err := ioutil.TempDir("", "flash")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	blank, err := New(nil, DefaultSize)
	require.NoError(t, err)

	path := filepath.Join(dir, "spi.bin")
	require.NoError(t, ioutil.WriteFile(path, blank.Bytes(), 0644))

	m, err := Load(path, DefaultSize)
	require.NoError(t, err)
	assert.Equal(t, blank.Bytes(), m.Bytes())

	_, err = Load(path, 0x10000)
	var ce *procon.ConfigurationError
	assert.True(t, errors.As(err, &ce))

	_, err = Load(filepath.Join(dir, "missing.bin"), DefaultSize)
	assert.Error(t, err)
}
