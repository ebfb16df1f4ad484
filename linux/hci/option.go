package hci

import (
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/procon"
)

// An Option configures an HCI.
type Option func(*HCI) error

// OptTransportHCISocket selects the raw HCI socket of device id, or the
// first device when id is -1.
func OptTransportHCISocket(id int) Option {
	return func(h *HCI) error {
		h.transport = transport{hci: &transportHci{id}}
		return nil
	}
}

// OptTransportH4Socket selects an H4 TCP server.
func OptTransportH4Socket(addr string, timeout time.Duration) Option {
	return func(h *HCI) error {
		if addr == "" {
			return errors.New("empty h4 socket address")
		}
		h.transport = transport{h4socket: &transportH4Socket{addr, timeout}}
		return nil
	}
}

// OptTransportH4Uart selects an H4 UART. A zero baud keeps the default.
func OptTransportH4Uart(path string, baud uint) Option {
	return func(h *HCI) error {
		if path == "" {
			return errors.New("empty uart path")
		}
		h.transport = transport{h4uart: &transportH4Uart{path, baud}}
		return nil
	}
}

// OptTransport uses an already open packet stream.
func OptTransport(rwc io.ReadWriteCloser) Option {
	return func(h *HCI) error {
		h.transport = transport{custom: rwc}
		return nil
	}
}

// OptCommandTimeout bounds the wait for a command to complete.
func OptCommandTimeout(d time.Duration) Option {
	return func(h *HCI) error {
		if d <= 0 {
			return errors.Errorf("invalid command timeout %v", d)
		}
		h.cmdTimeout = d
		return nil
	}
}

// OptLinkTimeout bounds the wait for a link to come up or go down.
func OptLinkTimeout(d time.Duration) Option {
	return func(h *HCI) error {
		if d <= 0 {
			return errors.Errorf("invalid link timeout %v", d)
		}
		h.linkTimeout = d
		return nil
	}
}

// OptLogger sets the logger.
func OptLogger(l procon.Logger) Option {
	return func(h *HCI) error {
		h.log = l
		return nil
	}
}

// OptErrorHandler is called with errors that end the HCI.
func OptErrorHandler(f func(error)) Option {
	return func(h *HCI) error {
		h.errorHandler = f
		return nil
	}
}
