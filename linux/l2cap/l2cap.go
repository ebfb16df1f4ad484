//go:build linux
// +build linux

// Package l2cap carries HID channels over kernel L2CAP sequential packet
// sockets. One Listener is bound per PSM; every accepted or dialed Channel
// runs a read loop that reports packets to an Observer.
package l2cap

import (
	"github.com/pkg/errors"
	"github.com/rigado/procon"
	"github.com/rigado/procon/sliceops"
	"golang.org/x/sys/unix"
)

const (
	// readBufSize covers the largest MTU BlueZ negotiates for HID.
	readBufSize = 4096

	pollTimeout    = 1000
	unixPollErrors = int16(unix.POLLHUP | unix.POLLNVAL | unix.POLLERR)
	unixPollDataIn = int16(unix.POLLIN)
	unixPollOut    = int16(unix.POLLOUT)
)

// Observer receives the events of channels served by this package.
type Observer interface {
	ChannelOpened(ch procon.Channel)
	ChannelData(ch procon.Channel, b []byte)
	ChannelClosed(ch procon.Channel)
}

func socket() (int, error) {
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_SEQPACKET|unix.SOCK_CLOEXEC, unix.BTPROTO_L2CAP)
	return fd, errors.Wrap(err, "can't create l2cap socket")
}

// sockaddr builds the kernel address of a. SockaddrL2 takes the display
// order and reverses it itself.
func sockaddr(a procon.Addr, psm procon.PSM) (*unix.SockaddrL2, error) {
	sa := &unix.SockaddrL2{PSM: uint16(psm), AddrType: unix.BDADDR_BREDR}
	if a == nil {
		return sa, nil
	}
	b := a.Bytes()
	if len(b) != 6 {
		return nil, errors.Errorf("invalid device address %q", a.String())
	}
	copy(sa.Addr[:], b)
	return sa, nil
}

// peerAddr converts an address reported by the kernel, which keeps the
// wire order, to a procon.Addr.
func peerAddr(sa unix.Sockaddr) procon.Addr {
	l2, ok := sa.(*unix.SockaddrL2)
	if !ok {
		return procon.NewAddr("00:00:00:00:00:00")
	}
	return procon.AddrFromBytes(sliceops.SwapBuf(l2.Addr[:]))
}
