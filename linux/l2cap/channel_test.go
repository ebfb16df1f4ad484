//go:build linux
// +build linux

package l2cap

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rigado/procon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

var console = procon.NewAddr("98:b6:e9:12:34:56")

type observer struct {
	sync.Mutex
	opened  int
	packets [][]byte
	closed  int
}

func (o *observer) ChannelOpened(ch procon.Channel) {
	o.Lock()
	defer o.Unlock()
	o.opened++
}

func (o *observer) ChannelData(ch procon.Channel, b []byte) {
	o.Lock()
	defer o.Unlock()
	o.packets = append(o.packets, b)
}

func (o *observer) ChannelClosed(ch procon.Channel) {
	o.Lock()
	defer o.Unlock()
	o.closed++
}

func (o *observer) counts() (int, int) {
	o.Lock()
	defer o.Unlock()
	return len(o.packets), o.closed
}

// pair returns a channel on one end of a packet socket pair and the raw fd
// of the other end.
func pair(t *testing.T) (*Channel, int) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_SEQPACKET, 0)
	require.NoError(t, err)
	t.Cleanup(func() { unix.Close(fds[1]) })
	c := newChannel(fds[0], procon.PSMInterrupt, console)
	t.Cleanup(func() { c.Close() })
	return c, fds[1]
}

func TestSockaddr(t *testing.T) {
	sa, err := sockaddr(console, procon.PSMControl)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x11), sa.PSM)
	assert.Equal(t, [6]uint8{0x98, 0xb6, 0xe9, 0x12, 0x34, 0x56}, sa.Addr)
	assert.Equal(t, uint8(unix.BDADDR_BREDR), sa.AddrType)

	sa, err = sockaddr(nil, procon.PSMInterrupt)
	require.NoError(t, err)
	assert.Equal(t, [6]uint8{}, sa.Addr)

	_, err = sockaddr(procon.NewAddr("nope"), procon.PSMControl)
	assert.Error(t, err)
}

func TestPeerAddrReversesWireOrder(t *testing.T) {
	sa := &unix.SockaddrL2{Addr: [6]uint8{0x56, 0x34, 0x12, 0xe9, 0xb6, 0x98}}
	assert.Equal(t, "98:b6:e9:12:34:56", peerAddr(sa).String())
	assert.Equal(t, "00:00:00:00:00:00", peerAddr(&unix.SockaddrInet4{}).String())
}

func TestChannelIdentity(t *testing.T) {
	c, _ := pair(t)
	assert.Equal(t, procon.PSMInterrupt, c.PSM())
	assert.Equal(t, console, c.RemoteAddr())
}

func TestChannelWrite(t *testing.T) {
	c, peer := pair(t)

	n, err := c.Write([]byte{0xa1, 0x3f, 0x00})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	buf := make([]byte, 16)
	n, err = unix.Read(peer, buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xa1, 0x3f, 0x00}, buf[:n])
}

func TestServeKeepsPacketBoundaries(t *testing.T) {
	c, peer := pair(t)
	o := &observer{}
	go c.Serve(o)

	_, err := unix.Write(peer, []byte{0xa2, 0x01, 0x02})
	require.NoError(t, err)
	_, err = unix.Write(peer, []byte{0xa2, 0x10})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		n, _ := o.counts()
		return n == 2
	}, 3*time.Second, 10*time.Millisecond)

	o.Lock()
	defer o.Unlock()
	assert.Equal(t, []byte{0xa2, 0x01, 0x02}, o.packets[0])
	assert.Equal(t, []byte{0xa2, 0x10}, o.packets[1])
	assert.Equal(t, 0, o.closed)
}

func TestServeReportsPeerClose(t *testing.T) {
	c, peer := pair(t)
	o := &observer{}
	done := make(chan struct{})
	go func() {
		c.Serve(o)
		close(done)
	}()

	unix.Shutdown(peer, unix.SHUT_RDWR)

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("read loop didn't end")
	}
	_, closed := o.counts()
	assert.Equal(t, 1, closed)

	_, err := c.Write([]byte{0x01})
	assert.Equal(t, io.ErrClosedPipe, err)
}

func TestLocalCloseEndsServe(t *testing.T) {
	c, _ := pair(t)
	o := &observer{}
	done := make(chan struct{})
	go func() {
		c.Serve(o)
		close(done)
	}()

	require.NoError(t, c.Close())
	assert.NoError(t, c.Close())

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("read loop didn't end")
	}
	_, closed := o.counts()
	assert.Equal(t, 1, closed)

	n, err := c.Read(make([]byte, 4))
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, err)
}
