//go:build linux
// +build linux

package l2cap

import (
	"io"
	"sync"

	"github.com/pkg/errors"
	"github.com/rigado/procon"
	"golang.org/x/sys/unix"
)

// Channel is a connected L2CAP socket. It implements procon.Channel.
type Channel struct {
	fd   int
	psm  procon.PSM
	peer procon.Addr

	wmu  sync.Mutex
	rmu  sync.Mutex
	cmu  sync.Mutex
	done chan struct{}

	log procon.Logger
}

func newChannel(fd int, psm procon.PSM, peer procon.Addr) *Channel {
	return &Channel{
		fd:   fd,
		psm:  psm,
		peer: peer,
		done: make(chan struct{}),
		log: procon.GetLogger().ChildLogger(map[string]interface{}{
			"pkg":  "l2cap",
			"psm":  psm.String(),
			"peer": peer.String(),
		}),
	}
}

func (c *Channel) PSM() procon.PSM         { return c.psm }
func (c *Channel) RemoteAddr() procon.Addr { return c.peer }

// Write sends b as one packet. A packet the kernel takes only in part is
// reported as io.ErrShortWrite.
func (c *Channel) Write(b []byte) (int, error) {
	if !c.isOpen() {
		return 0, io.ErrClosedPipe
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()
	n, err := unix.Write(c.fd, b)
	if err != nil {
		return 0, errors.Wrapf(err, "can't write %v channel", c.psm)
	}
	if n < len(b) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

// Read returns one packet. It returns (0, nil) when nothing arrived within
// the poll timeout and io.EOF once the channel is closed on either side.
func (c *Channel) Read(p []byte) (int, error) {
	if !c.isOpen() {
		return 0, io.EOF
	}

	c.rmu.Lock()
	defer c.rmu.Unlock()
	pfds := []unix.PollFd{{Fd: int32(c.fd), Events: unixPollDataIn}}
	if _, err := unix.Poll(pfds, pollTimeout); err != nil && err != unix.EINTR {
		return 0, errors.Wrap(err, "can't poll l2cap socket")
	}
	evts := pfds[0].Revents

	switch {
	case evts&unixPollDataIn != 0:
		n, err := unix.Read(c.fd, p)
		if err != nil {
			return 0, errors.Wrapf(err, "can't read %v channel", c.psm)
		}
		if n == 0 {
			return 0, io.EOF
		}
		return n, nil

	case evts&unixPollErrors != 0:
		return 0, io.EOF

	default:
		return 0, nil
	}
}

// Close shuts the socket down. It is safe to call more than once.
func (c *Channel) Close() error {
	c.cmu.Lock()
	defer c.cmu.Unlock()

	select {
	case <-c.done:
		return nil
	default:
	}

	close(c.done)
	c.log.Debug("closing channel")
	unix.Shutdown(c.fd, unix.SHUT_RDWR)
	c.rmu.Lock()
	err := unix.Close(c.fd)
	c.rmu.Unlock()
	return errors.Wrapf(err, "can't close %v channel", c.psm)
}

func (c *Channel) isOpen() bool {
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

// Serve reads packets until the channel closes, then reports the close once.
func (c *Channel) Serve(o Observer) {
	defer o.ChannelClosed(c)

	buf := make([]byte, readBufSize)
	for {
		n, err := c.Read(buf)
		if err != nil {
			if errors.Cause(err) != io.EOF {
				c.log.Debugf("read loop ends: %v", err)
			}
			c.Close()
			return
		}
		if n == 0 {
			continue
		}
		b := make([]byte, n)
		copy(b, buf[:n])
		o.ChannelData(c, b)
	}
}
