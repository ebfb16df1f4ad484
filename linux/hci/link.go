package hci

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/rigado/procon"
	"github.com/rigado/procon/linux/hci/cmd"
	"github.com/rigado/procon/linux/hci/evt"
	"github.com/rigado/procon/sliceops"
)

// link is an ACL link to a peer.
type link struct {
	handle uint16
	addr   procon.Addr
	down   chan struct{}
}

// wire returns a in the little endian order used on the wire.
func wire(a procon.Addr) ([6]byte, error) {
	var w [6]byte
	b := a.Bytes()
	if len(b) != 6 {
		return w, errors.Errorf("invalid device address %q", a)
	}
	copy(w[:], sliceops.SwapBuf(b))
	return w, nil
}

func display(w [6]byte) procon.Addr {
	return procon.AddrFromBytes(sliceops.SwapBuf(w[:]))
}

func (h *HCI) linkTo(a procon.Addr) (*link, bool) {
	h.muLinks.Lock()
	defer h.muLinks.Unlock()
	for _, l := range h.links {
		if l.addr.String() == a.String() {
			return l, true
		}
	}
	return nil, false
}

// IsLinked reports whether an ACL link to a is up.
func (h *HCI) IsLinked(a procon.Addr) bool {
	_, ok := h.linkTo(a)
	return ok
}

// CreateConnection pages a and waits until the ACL link is up. It returns
// at once when the link already exists.
func (h *HCI) CreateConnection(ctx context.Context, a procon.Addr) error {
	if h.IsLinked(a) {
		return nil
	}
	w, err := wire(a)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	h.muLinks.Lock()
	if _, busy := h.pending[a.String()]; busy {
		h.muLinks.Unlock()
		return errors.Errorf("connection to %v already in progress", a)
	}
	h.pending[a.String()] = done
	h.muLinks.Unlock()

	defer func() {
		h.muLinks.Lock()
		delete(h.pending, a.String())
		h.muLinks.Unlock()
	}()

	h.log.Infof("paging %v", a)
	c := &cmd.CreateConnection{
		BDADDR:                 w,
		PacketType:             aclPacketTypes,
		PageScanRepetitionMode: pageScanRepetition,
		AllowRoleSwitch:        allowRoleSwitch,
	}
	if err := h.Send(c, nil); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, h.linkTimeout)
	defer cancel()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return errors.Wrapf(ctx.Err(), "waiting for link to %v", a)
	case <-h.done:
		return errors.New("hci closed")
	}
}

// Disconnect terminates the ACL link to a and waits until it is down. It
// does nothing when there is no link.
func (h *HCI) Disconnect(ctx context.Context, a procon.Addr) error {
	l, ok := h.linkTo(a)
	if !ok {
		return nil
	}

	h.log.Infof("disconnecting %v (handle 0x%04x)", a, l.handle)
	err := h.Send(&cmd.Disconnect{ConnectionHandle: l.handle, Reason: uint8(ErrRemoteUser)}, nil)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, h.linkTimeout)
	defer cancel()
	select {
	case <-l.down:
		return nil
	case <-ctx.Done():
		return errors.Wrapf(ctx.Err(), "waiting for link to %v to drop", a)
	case <-h.done:
		return errors.New("hci closed")
	}
}

func (h *HCI) handleConnectionComplete(b []byte) error {
	e := evt.ConnectionComplete(b)
	w, err := e.BDADDRWErr()
	if err != nil {
		return errors.Wrap(err, "connection complete")
	}
	if e.LinkType() != linkTypeACL {
		return nil
	}
	a := display(w)

	h.muLinks.Lock()
	done := h.pending[a.String()]
	var up func(procon.Addr, bool)
	if e.Status() == 0 {
		h.links[e.ConnectionHandle()] = &link{handle: e.ConnectionHandle(), addr: a, down: make(chan struct{})}
		up = h.linkHandler
	}
	h.muLinks.Unlock()

	if e.Status() != 0 {
		h.log.Warnf("connection to %v failed: %v", a, ErrCommand(e.Status()))
	} else {
		h.log.Infof("link to %v up, handle 0x%04x", a, e.ConnectionHandle())
	}

	if done != nil {
		var err error
		if e.Status() != 0 {
			err = ErrCommand(e.Status())
		}
		select {
		case done <- err:
		default:
		}
	}
	if up != nil {
		up(a, true)
	}
	return nil
}

func (h *HCI) handleDisconnectionComplete(b []byte) error {
	e := evt.DisconnectionComplete(b)
	ch, err := e.ConnectionHandleWErr()
	if err != nil {
		return errors.Wrap(err, "disconnection complete")
	}
	if e.Status() != 0 {
		return fmt.Errorf("disconnect of handle 0x%04x failed: %v", ch, ErrCommand(e.Status()))
	}

	h.muLinks.Lock()
	l, found := h.links[ch]
	delete(h.links, ch)
	down := h.linkHandler
	h.muLinks.Unlock()

	if !found {
		return nil
	}
	h.log.Infof("link to %v down: %v", l.addr, ErrCommand(e.Reason()))
	close(l.down)
	if down != nil {
		down(l.addr, false)
	}
	return nil
}

// Links returns the addresses of all ACL links.
func (h *HCI) Links() []procon.Addr {
	h.muLinks.Lock()
	defer h.muLinks.Unlock()
	aa := make([]procon.Addr, 0, len(h.links))
	for _, l := range h.links {
		aa = append(aa, l.addr)
	}
	return aa
}
