// Package h4 carries HCI packets over a UART or a TCP connection using the
// H4 framing [Vol 4, Part A].
package h4

import (
	"io"
	"net"
	"sync"
	"time"

	"github.com/jacobsa/go-serial/serial"
	"github.com/pkg/errors"
	"github.com/rigado/procon"
)

const (
	commandPacket = 0x01
	aclPacket     = 0x02
	eventPacket   = 0x04

	rxQueueSize = 64
	readTimeout = time.Second
)

type h4 struct {
	rwc io.ReadWriteCloser
	rmu sync.Mutex
	wmu sync.Mutex

	rxQueue chan []byte
	frame   *frame

	// a UART read returns io.EOF when nothing arrived
	idleEOF bool

	done chan int
	cmu  sync.Mutex
	log  procon.Logger
}

// DefaultSerialOptions returns the UART settings of a typical HCI controller.
func DefaultSerialOptions() serial.OpenOptions {
	return serial.OpenOptions{
		BaudRate:              1000000,
		DataBits:              8,
		StopBits:              1,
		ParityMode:            serial.PARITY_NONE,
		RTSCTSFlowControl:     true,
		MinimumReadSize:       0,
		InterCharacterTimeout: 100,
	}
}

// NewSerial opens an H4 transport on a UART.
func NewSerial(opts serial.OpenOptions) (io.ReadWriteCloser, error) {
	// reads must not block forever or Close would hang
	opts.MinimumReadSize = 0
	if opts.InterCharacterTimeout == 0 {
		opts.InterCharacterTimeout = 100
	}

	sp, err := serial.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open %v", opts.PortName)
	}

	// drain whatever the controller sent before we were listening
	b := make([]byte, 2048)
	if _, err := sp.Read(b); err != nil && err != io.EOF {
		sp.Close()
		return nil, errors.Wrap(err, "can't flush uart")
	}

	return newH4(sp, true, map[string]interface{}{"pkg": "hci/h4", "port": opts.PortName}), nil
}

// NewSocket opens an H4 transport on a TCP connection to addr.
func NewSocket(addr string, timeout time.Duration) (io.ReadWriteCloser, error) {
	c, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, errors.Wrapf(err, "can't dial %v", addr)
	}
	cwt := &connWithTimeout{c: c, timeout: timeout}
	return newH4(cwt, false, map[string]interface{}{"pkg": "hci/h4", "addr": addr}), nil
}

func newH4(rwc io.ReadWriteCloser, idleEOF bool, tags map[string]interface{}) *h4 {
	h := &h4{
		rwc:     rwc,
		idleEOF: idleEOF,
		done:    make(chan int),
		rxQueue: make(chan []byte, rxQueueSize),
		log:     procon.GetLogger().ChildLogger(tags),
	}
	h.frame = newFrame(h.rxQueue)
	go h.rxLoop()
	return h
}

// Read returns one complete H4 packet. It returns 0 and no error when
// nothing arrived within a second.
func (h *h4) Read(p []byte) (int, error) {
	if !h.isOpen() {
		return 0, io.EOF
	}

	h.rmu.Lock()
	defer h.rmu.Unlock()

	select {
	case t := <-h.rxQueue:
		if len(p) < len(t) {
			return 0, io.ErrShortBuffer
		}
		return copy(p, t), nil
	case <-h.done:
		return 0, io.EOF
	case <-time.After(readTimeout):
		return 0, nil
	}
}

func (h *h4) Write(p []byte) (int, error) {
	if !h.isOpen() {
		return 0, io.EOF
	}

	h.wmu.Lock()
	defer h.wmu.Unlock()
	n, err := h.rwc.Write(p)
	h.log.Debugf("write [% x], %v, %v", p, n, err)
	return n, errors.Wrap(err, "can't write h4")
}

func (h *h4) Close() error {
	h.cmu.Lock()
	defer h.cmu.Unlock()

	select {
	case <-h.done:
		return nil

	default:
		close(h.done)
		h.log.Debug("closing h4")
		return errors.Wrap(h.rwc.Close(), "can't close h4")
	}
}

func (h *h4) isOpen() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

func (h *h4) rxLoop() {
	tmp := make([]byte, 512)
	for {
		select {
		case <-h.done:
			return
		default:
		}

		n, err := h.rwc.Read(tmp)
		switch {
		case err == io.EOF && n == 0 && h.idleEOF:
			continue
		case isTimeout(err):
			continue
		case err != nil:
			if h.isOpen() {
				h.log.Errorf("rx: %v", err)
				h.Close()
			}
			return
		}
		h.frame.Assemble(tmp[:n])
	}
}

func isTimeout(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}
