package engine

import (
	"testing"

	"github.com/rigado/procon"
	"github.com/rigado/procon/flash"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopChannel struct{ writes int }

func (c *nopChannel) PSM() procon.PSM         { return procon.PSMInterrupt }
func (c *nopChannel) RemoteAddr() procon.Addr { return procon.NewAddr("98:b6:e9:12:34:56") }
func (c *nopChannel) Write(b []byte) (int, error) {
	c.writes++
	return len(b), nil
}
func (c *nopChannel) Close() error { return nil }

func capture(t *testing.T) *test.Hook {
	l, hook := test.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)

	prev := procon.GetLogger()
	procon.SetLogger(procon.NewLogger(l))
	t.Cleanup(func() { procon.SetLogger(prev) })
	return hook
}

func newPassive(t *testing.T) (*Passive, *nopChannel) {
	mem, err := flash.New(nil, flash.DefaultSize)
	require.NoError(t, err)
	ch := &nopChannel{}
	e, err := PassiveFactory(mem, procon.NewAddr("dc:a6:32:00:00:01"), ch)
	require.NoError(t, err)
	return e.(*Passive), ch
}

func TestPassiveLogsFlashReads(t *testing.T) {
	hook := capture(t)
	p, ch := newPassive(t)

	p.OnBytesReceived(spiRead(1, flash.FactoryLStickCalibration, flash.CalibrationLen))

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	assert.Equal(t, "host read 0x9 bytes at 0x0603d: 000770000880000770", hook.LastEntry().Message)
	assert.Equal(t, "engine", hook.LastEntry().Data["pkg"])
	assert.Zero(t, ch.writes)

	ok, bad := p.Reports()
	assert.Equal(t, uint64(1), ok)
	assert.Zero(t, bad)
}

func TestPassiveCountsMalformed(t *testing.T) {
	hook := capture(t)
	p, _ := newPassive(t)

	p.OnBytesReceived([]byte{0xA2, 0x01})

	ok, bad := p.Reports()
	assert.Zero(t, ok)
	assert.Equal(t, uint64(1), bad)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestPassiveReadPastEnd(t *testing.T) {
	hook := capture(t)
	p, _ := newPassive(t)

	p.OnBytesReceived(spiRead(1, flash.DefaultSize-4, 8))

	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestPassiveConnectionLost(t *testing.T) {
	capture(t)
	p, _ := newPassive(t)
	assert.False(t, p.Lost())
	p.OnConnectionLost()
	assert.True(t, p.Lost())
}
