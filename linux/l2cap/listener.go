//go:build linux
// +build linux

package l2cap

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/rigado/procon"
	"golang.org/x/sys/unix"
)

// Listener accepts channels that peers open on one PSM.
type Listener struct {
	fd  int
	psm procon.PSM

	mu sync.Mutex
	o  Observer

	amu  sync.Mutex
	cmu  sync.Mutex
	done chan struct{}

	log procon.Logger
}

// Listen binds psm on every local adapter.
func Listen(psm procon.PSM) (*Listener, error) {
	fd, err := socket()
	if err != nil {
		return nil, err
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, errors.Wrap(err, "can't set SO_REUSEADDR")
	}
	sa, _ := sockaddr(nil, psm)
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, errors.Wrapf(err, "can't bind psm 0x%04x", uint16(psm))
	}
	if err := unix.Listen(fd, 1); err != nil {
		unix.Close(fd)
		return nil, errors.Wrapf(err, "can't listen on psm 0x%04x", uint16(psm))
	}

	return &Listener{
		fd:   fd,
		psm:  psm,
		done: make(chan struct{}),
		log:  procon.GetLogger().ChildLogger(map[string]interface{}{"pkg": "l2cap", "psm": psm.String()}),
	}, nil
}

// PSM returns the PSM the listener is bound to.
func (l *Listener) PSM() procon.PSM { return l.psm }

// SetObserver replaces the observer of channels accepted from now on.
func (l *Listener) SetObserver(o Observer) {
	l.mu.Lock()
	l.o = o
	l.mu.Unlock()
}

func (l *Listener) observer() Observer {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.o
}

// Accept waits up to the poll timeout for a peer. It returns a nil channel
// and nil error on timeout.
func (l *Listener) Accept() (*Channel, error) {
	if !l.isOpen() {
		return nil, errors.New("listener closed")
	}

	l.amu.Lock()
	defer l.amu.Unlock()
	pfds := []unix.PollFd{{Fd: int32(l.fd), Events: unixPollDataIn}}
	if _, err := unix.Poll(pfds, pollTimeout); err != nil && err != unix.EINTR {
		return nil, errors.Wrap(err, "can't poll listener")
	}
	evts := pfds[0].Revents

	switch {
	case evts&unixPollDataIn != 0:
		nfd, sa, err := unix.Accept4(l.fd, unix.SOCK_CLOEXEC)
		if err != nil {
			return nil, errors.Wrapf(err, "can't accept on psm 0x%04x", uint16(l.psm))
		}
		return newChannel(nfd, l.psm, peerAddr(sa)), nil

	case evts&unixPollErrors != 0:
		return nil, errors.Errorf("listener on psm 0x%04x failed: poll events 0x%04x", uint16(l.psm), evts)

	default:
		return nil, nil
	}
}

// Serve accepts channels until the listener is closed. Each accepted channel
// is announced to the observer before its read loop starts.
func (l *Listener) Serve() {
	for {
		ch, err := l.Accept()
		if err != nil {
			if l.isOpen() {
				l.log.Errorf("accept: %v", err)
			}
			return
		}
		if ch == nil {
			continue
		}

		o := l.observer()
		if o == nil {
			l.log.Warnf("no observer, refusing channel from %v", ch.RemoteAddr())
			ch.Close()
			continue
		}
		l.log.Debugf("accepted channel from %v", ch.RemoteAddr())
		o.ChannelOpened(ch)
		go ch.Serve(o)
	}
}

func (l *Listener) Close() error {
	l.cmu.Lock()
	defer l.cmu.Unlock()

	select {
	case <-l.done:
		return nil
	default:
	}

	close(l.done)
	unix.Shutdown(l.fd, unix.SHUT_RDWR)
	l.amu.Lock()
	err := unix.Close(l.fd)
	l.amu.Unlock()
	return errors.Wrap(err, "can't close listener")
}

func (l *Listener) isOpen() bool {
	select {
	case <-l.done:
		return false
	default:
		return true
	}
}
