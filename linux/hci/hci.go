// Package hci drives a Bluetooth controller through HCI commands: the
// classic radio configuration of an HID device and ACL link tracking.
package hci

import (
	"encoding/hex"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/procon"
	"github.com/rigado/procon/linux/hci/cmd"
	"github.com/rigado/procon/linux/hci/evt"
)

// Command ...
type Command interface {
	OpCode() int
	Len() int
	Marshal([]byte) error
}

// CommandRP ...
type CommandRP interface {
	Unmarshal(b []byte) error
}

type handlerFn func(b []byte) error

type pkt struct {
	cmd  Command
	done chan []byte
}

// NewHCI returns a hci device. Call Init to open the transport.
func NewHCI(opts ...Option) (*HCI, error) {
	h := &HCI{
		transport: transport{hci: &transportHci{-1}},
		log:       procon.GetLogger().ChildLogger(map[string]interface{}{"pkg": "hci"}),

		chCmdBufs: make(chan []byte, chCmdBufChanSize),
		sent:      make(map[int]*pkt),
		evth:      map[int]handlerFn{},

		links:   make(map[uint16]*link),
		pending: make(map[string]chan error),

		cmdTimeout:  defaultCmdTimeout,
		linkTimeout: defaultLinkTimeout,

		done:      make(chan bool),
		sktRxChan: make(chan []byte, 16),
	}

	for _, opt := range opts {
		if err := opt(h); err != nil {
			return nil, errors.Wrap(err, "can't set options")
		}
	}
	return h, nil
}

// HCI ...
type HCI struct {
	transport transport
	skt       io.ReadWriteCloser
	log       procon.Logger

	// Host to Controller command flow control [Vol 2, Part E, 4.4]
	chCmdBufs chan []byte
	muSent    sync.Mutex
	sent      map[int]*pkt

	evth map[int]handlerFn

	addr procon.Addr

	// ACL links, by connection handle
	muLinks     sync.Mutex
	links       map[uint16]*link
	pending     map[string]chan error
	linkHandler func(a procon.Addr, up bool)

	cmdTimeout  time.Duration
	linkTimeout time.Duration

	errorHandler func(error)
	muErr        sync.Mutex
	err          error

	muClose sync.Mutex
	done    chan bool

	sktRxChan chan []byte
}

// Init opens the transport, starts the event loops and reads the controller
// address.
func (h *HCI) Init() error {
	h.evth[evt.CommandCompleteCode] = h.handleCommandComplete
	h.evth[evt.CommandStatusCode] = h.handleCommandStatus
	h.evth[evt.ConnectionCompleteCode] = h.handleConnectionComplete
	h.evth[evt.DisconnectionCompleteCode] = h.handleDisconnectionComplete
	h.evth[evt.HardwareErrorCode] = h.handleHardwareError

	var err error
	h.skt, err = getTransport(h.transport)
	if err != nil {
		return errors.Wrapf(err, "can't open %v", h.transport)
	}
	h.log.Infof("opened %v", h.transport)

	h.setAllowedCommands(1)

	go h.sktReadLoop()
	go h.sktProcessLoop()

	return h.init()
}

func (h *HCI) init() error {
	rp := cmd.ReadBDADDRRP{}
	if err := h.Send(&cmd.ReadBDADDR{}, &rp); err != nil {
		h.Close()
		return errors.Wrap(err, "can't read controller address")
	}

	h.addr = display(rp.BDADDR)
	h.log.Infof("controller address %v", h.addr)
	return nil
}

// Addr returns the controller address read during Init.
func (h *HCI) Addr() procon.Addr {
	return h.addr
}

// SetLinkHandler registers f for link up and down notifications.
func (h *HCI) SetLinkHandler(f func(a procon.Addr, up bool)) {
	h.muLinks.Lock()
	defer h.muLinks.Unlock()
	h.linkHandler = f
}

// Close ...
func (h *HCI) Close() error {
	h.muClose.Lock()
	defer h.muClose.Unlock()

	select {
	case <-h.done:
		return nil
	default:
		close(h.done)
	}

	if h.skt == nil {
		return nil
	}
	return h.skt.Close()
}

// Error returns the error that ended the HCI, if any.
func (h *HCI) Error() error {
	h.muErr.Lock()
	defer h.muErr.Unlock()
	return h.err
}

func (h *HCI) setErr(err error) {
	h.muErr.Lock()
	defer h.muErr.Unlock()
	if h.err == nil {
		h.err = err
	}
}

func (h *HCI) isOpen() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

// Send sends c and waits for its Command Complete or Command Status. A non
// zero status is returned as ErrCommand. The return parameters are
// unmarshalled into r, if given.
func (h *HCI) Send(c Command, r CommandRP) error {
	b, err := h.send(c)
	if err != nil {
		return err
	}
	if len(b) > 0 && b[0] != 0x00 {
		return errors.Wrapf(ErrCommand(b[0]), "%v", c)
	}
	if r != nil {
		return errors.Wrapf(r.Unmarshal(b), "%v return parameters", c)
	}
	return nil
}

func (h *HCI) checkOpCodeFree(opCode int) error {
	h.muSent.Lock()
	defer h.muSent.Unlock()

	if _, ok := h.sent[opCode]; ok {
		return errors.Errorf("command with opcode 0x%04x pending", opCode)
	}
	return nil
}

func (h *HCI) send(c Command) ([]byte, error) {
	if err := h.Error(); err != nil {
		return nil, err
	}

	p := &pkt{c, make(chan []byte, 1)}

	// verify opcode is free before taking a command buffer, so a buffer is
	// only taken if the command can be sent
	if err := h.checkOpCodeFree(c.OpCode()); err != nil {
		return nil, err
	}

	var b []byte
	select {
	case <-h.done:
		return nil, errors.New("hci closed")
	case b = <-h.chCmdBufs:
	case <-time.After(chCmdBufTimeout):
		err := errors.New("chCmdBufs get timeout")
		h.dispatchError(err)
		return nil, err
	}

	// HCI header
	b[0] = pktTypeCommand
	b[1] = byte(c.OpCode())
	b[2] = byte(c.OpCode() >> 8)
	b[3] = byte(c.Len())
	if err := c.Marshal(b[4:]); err != nil {
		h.putCmdBuf()
		return nil, errors.Wrapf(err, "can't marshal %v", c)
	}

	h.muSent.Lock()
	h.sent[c.OpCode()] = p
	h.muSent.Unlock()

	defer func() {
		// a late complete must not find a stale entry
		h.muSent.Lock()
		delete(h.sent, c.OpCode())
		h.muSent.Unlock()
	}()

	h.log.Debugf("< %v [% x]", c, b[4:4+c.Len()])
	if n, err := h.skt.Write(b[:4+c.Len()]); err != nil {
		h.close(errors.Wrap(err, "can't send cmd"))
		return nil, h.Error()
	} else if n != 4+c.Len() {
		h.close(errors.New("failed to send whole cmd pkt to hci socket"))
		return nil, h.Error()
	}

	select {
	case <-time.After(h.cmdTimeout):
		err := errors.Errorf("no response to %v, pkt: %s", c, hex.EncodeToString(b[:4+c.Len()]))
		h.dispatchError(err)
		h.putCmdBuf()
		return nil, err
	case <-h.done:
		if err := h.Error(); err != nil {
			return nil, err
		}
		return nil, errors.New("hci closed")
	case rp := <-p.done:
		return rp, nil
	}
}

func (h *HCI) putCmdBuf() {
	select {
	case h.chCmdBufs <- make([]byte, chCmdBufElementSize):
	default:
	}
}

func (h *HCI) sktProcessLoop() {
	for {
		var p []byte
		var ok bool

		select {
		case <-h.done:
			return

		case p, ok = <-h.sktRxChan:
			if !ok {
				h.setErr(io.EOF)
				h.Close()
				return
			}
		}

		if err := h.handlePkt(p); err != nil {
			h.log.Warnf("skt: %v", err)
		}
	}
}

func (h *HCI) sktReadLoop() {
	defer close(h.sktRxChan)

	b := make([]byte, 4096)
	for {
		n, err := h.skt.Read(b)

		switch {
		case n == 0 && err == nil:
			// read timeout
			if !h.isOpen() {
				return
			}
			continue

		case err != nil:
			if h.isOpen() {
				h.dispatchError(errors.Wrap(err, "skt read error"))
			}
			return
		}

		p := make([]byte, n)
		copy(p, b)
		select {
		case h.sktRxChan <- p:
		case <-h.done:
			return
		}
	}
}

func (h *HCI) close(err error) {
	h.setErr(err)
	h.Close()
}

func (h *HCI) handlePkt(b []byte) error {
	if len(b) == 0 {
		return errors.New("empty packet")
	}

	// Strip the 1-byte HCI header and pass down the rest of the packet.
	t, b := b[0], b[1:]
	switch t {
	case pktTypeEvent:
		return h.handleEvt(b)

	// the kernel owns ACL data
	case pktTypeACLData, pktTypeSCOData:
		return nil
	case pktTypeCommand:
		return fmt.Errorf("unmanaged cmd: % X", b)
	case pktTypeVendor:
		return fmt.Errorf("unsupported vendor packet: % X", b)
	default:
		return fmt.Errorf("invalid packet: 0x%02X % X", t, b)
	}
}

func (h *HCI) handleEvt(b []byte) error {
	if len(b) < 2 {
		return fmt.Errorf("invalid event packet: % X", b)
	}
	code, plen := int(b[0]), int(b[1])
	if plen != len(b[2:]) {
		return fmt.Errorf("invalid event packet: % X", b)
	}

	if f := h.evth[code]; f != nil {
		return f(b[2:])
	}
	// everything else belongs to the kernel stack
	return nil
}

func (h *HCI) handleCommandComplete(b []byte) error {
	e := evt.CommandComplete(b)
	n, err := e.NumHCICommandPacketsWErr()
	if err != nil {
		return errors.Wrap(err, "command complete")
	}
	h.setAllowedCommands(int(n))

	// NOP command, used for flow control purpose [Vol 2, Part E, 4.4]
	op := e.CommandOpcode()
	if op == 0x0000 {
		return nil
	}

	h.muSent.Lock()
	p, found := h.sent[int(op)]
	h.muSent.Unlock()
	if !found {
		// sent by the kernel on the same controller
		return nil
	}

	select {
	case p.done <- e.ReturnParameters():
	default:
	}
	return nil
}

func (h *HCI) handleCommandStatus(b []byte) error {
	e := evt.CommandStatus(b)
	if !e.Valid() {
		return fmt.Errorf("invalid command status: % X", b)
	}

	h.setAllowedCommands(int(e.NumHCICommandPackets()))

	h.muSent.Lock()
	p, found := h.sent[int(e.CommandOpcode())]
	h.muSent.Unlock()
	if !found {
		return nil
	}

	select {
	case p.done <- []byte{e.Status()}:
	default:
	}
	return nil
}

func (h *HCI) handleHardwareError(b []byte) error {
	err := fmt.Errorf("controller hardware error: % X", b)
	h.dispatchError(err)
	return err
}

func (h *HCI) setAllowedCommands(n int) {
	if n > chCmdBufChanSize {
		n = chCmdBufChanSize
	}

	for len(h.chCmdBufs) < n {
		select {
		case <-h.done:
			return
		case h.chCmdBufs <- make([]byte, chCmdBufElementSize):
		case <-time.After(chCmdBufTimeout):
			h.dispatchError(errors.New("chCmdBufs put timeout"))
			return
		}
	}
}

func (h *HCI) dispatchError(e error) {
	switch {
	case h.errorHandler == nil:
		h.log.Error(e)
	case !h.isOpen():
		h.log.Debugf("hci closing: %v", e)
	default:
		h.errorHandler(e)
	}
}
