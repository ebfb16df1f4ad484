//go:build linux
// +build linux

package l2cap

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rigado/procon"
	"golang.org/x/sys/unix"
)

const dialPollInterval = 100

// Dial opens a channel to psm on a. The baseband link has to exist or be
// creatable by the kernel. Dial gives up when ctx is done.
func Dial(ctx context.Context, a procon.Addr, psm procon.PSM) (*Channel, error) {
	sa, err := sockaddr(a, psm)
	if err != nil {
		return nil, err
	}

	fd, err := socket()
	if err != nil {
		return nil, err
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, errors.Wrap(err, "can't set non-blocking")
	}

	if err := connect(ctx, fd, sa); err != nil {
		unix.Close(fd)
		return nil, errors.Wrapf(err, "can't connect %v channel to %v", psm, a)
	}
	if err := unix.SetNonblock(fd, false); err != nil {
		unix.Close(fd)
		return nil, errors.Wrap(err, "can't set blocking")
	}
	return newChannel(fd, psm, procon.NewAddr(a.String())), nil
}

func connect(ctx context.Context, fd int, sa unix.Sockaddr) error {
	err := unix.Connect(fd, sa)
	switch err {
	case nil:
		return nil
	case unix.EINPROGRESS, unix.EAGAIN:
	default:
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		pfds := []unix.PollFd{{Fd: int32(fd), Events: unixPollOut}}
		if _, err := unix.Poll(pfds, dialPollInterval); err != nil && err != unix.EINTR {
			return err
		}
		if pfds[0].Revents&(unixPollOut|unixPollErrors) == 0 {
			continue
		}

		soerr, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
		if err != nil {
			return err
		}
		if soerr != 0 {
			return unix.Errno(soerr)
		}
		return nil
	}
}
