package lifecycle

import (
	"context"
	"fmt"

	"github.com/rigado/procon"
)

// event is one input of the state machine. apply runs on the executor.
type event interface {
	apply(m *Manager) error
	fmt.Stringer
}

type powerEvent struct{ on bool }

func (e powerEvent) apply(m *Manager) error {
	if e.on {
		return m.powerOn()
	}
	m.powerOff()
	return nil
}

func (e powerEvent) String() string {
	if e.on {
		return "power on"
	}
	return "power off"
}

type openEvent struct{ ch procon.Channel }

func (e openEvent) apply(m *Manager) error { return m.opened(e.ch, false) }
func (e openEvent) String() string         { return fmt.Sprintf("%v channel open", e.ch.PSM()) }

type dataEvent struct {
	ch procon.Channel
	b  []byte
}

func (e dataEvent) apply(m *Manager) error { return m.data(e.ch, e.b) }
func (e dataEvent) String() string         { return fmt.Sprintf("%v channel data", e.ch.PSM()) }

type closeEvent struct{ ch procon.Channel }

func (e closeEvent) apply(m *Manager) error {
	m.onClosed(e.ch)
	return nil
}

func (e closeEvent) String() string { return fmt.Sprintf("%v channel closed", e.ch.PSM()) }

type connectRequest struct {
	ctx   context.Context
	addr  procon.Addr
	reply chan error
}

// apply answers the request; the error is the caller's to log.
func (e connectRequest) apply(m *Manager) error {
	e.reply <- m.connect(e.ctx, e.addr)
	return nil
}

func (e connectRequest) String() string { return fmt.Sprintf("connect %v", e.addr) }

type disconnectRequest struct {
	addr  procon.Addr
	reply chan error
}

func (e disconnectRequest) apply(m *Manager) error {
	e.reply <- m.disconnect(e.addr)
	return nil
}

func (e disconnectRequest) String() string { return fmt.Sprintf("disconnect %v", e.addr) }

type endSessionEvent struct{}

func (e endSessionEvent) apply(m *Manager) error {
	m.endSession()
	return nil
}

func (e endSessionEvent) String() string { return "end session" }
