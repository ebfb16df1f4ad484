// Package lifecycle brings up the HID control and interrupt channels a console
// expects from a controller, primes the interrupt channel and hands it to the
// controller protocol engine.
//
// All state is owned by the goroutine running Manager.Run. Platform callbacks
// and requests are turned into events and applied there one at a time.
package lifecycle

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rigado/procon"
	"github.com/rigado/procon/flash"
	"github.com/rigado/procon/sdp"
)

const defaultEventQueueSize = 64

// Manager is the channel lifecycle state machine of one emulated controller.
type Manager struct {
	radio     Radio
	transport Transport
	factory   procon.EngineFactory

	identity  procon.Identity
	record    []byte
	dump      []byte
	flashSize int
	queueSize int

	events chan event
	done   chan struct{}
	runMu  sync.Mutex
	closed bool

	log procon.Logger

	// owned by the executor
	state        State
	powered      bool
	control      ChannelSlot
	interrupt    ChannelSlot
	outControl   ChannelSlot
	outInterrupt ChannelSlot
	published    RecordSlot
	engine       EngineSlot
	scanOff      bool
	peer         string
	violations   uint64

	statusMu    sync.RWMutex
	status      Status
	current     State
	subscribers []chan Status
}

// New returns a Manager using radio and transport. It starts in LinkOff; call
// Run to start processing events.
func New(radio Radio, transport Transport, opts ...procon.Option) (*Manager, error) {
	m := &Manager{
		radio:     radio,
		transport: transport,
		identity:  procon.DefaultIdentity(),
		record:    sdp.Record(),
		flashSize: flash.DefaultSize,
		queueSize: defaultEventQueueSize,
		done:      make(chan struct{}),
		log:       procon.GetLogger().ChildLogger(map[string]interface{}{"pkg": "lifecycle"}),
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, errors.Wrap(err, "can't set options")
		}
	}

	if m.factory == nil {
		return nil, errors.New("no protocol engine factory")
	}

	// reject a bad dump now rather than on every session
	if _, err := flash.New(m.dump, m.flashSize); err != nil {
		return nil, err
	}

	m.events = make(chan event, m.queueSize)
	m.publish()
	return m, nil
}

// Run applies events until ctx is done, then powers the session down.
func (m *Manager) Run(ctx context.Context) error {
	m.runMu.Lock()
	if m.closed {
		m.runMu.Unlock()
		return errors.New("manager already stopped")
	}
	m.runMu.Unlock()

	defer func() {
		m.runMu.Lock()
		m.closed = true
		close(m.done)
		m.runMu.Unlock()
		m.drain()
	}()

	for {
		select {
		case <-ctx.Done():
			m.powerOff()
			m.publish()
			return ctx.Err()

		case e := <-m.events:
			err := e.apply(m)
			var pv *procon.ProtocolViolation
			switch {
			case err == nil:
			case errors.As(err, &pv):
				m.log.Warnf("dropping data: %v", err)
			default:
				m.log.Errorf("%v: %v", e, err)
			}
			m.publish()
		}
	}
}

// post queues e for the executor. It gives up when the executor stopped.
func (m *Manager) post(e event) bool {
	select {
	case <-m.done:
		return false
	default:
	}

	select {
	case m.events <- e:
		return true
	case <-m.done:
		return false
	}
}

// drain closes the channels of open events that were queued but never
// applied.
func (m *Manager) drain() {
	for {
		select {
		case e := <-m.events:
			if o, ok := e.(openEvent); ok {
				closeChannel(m.log, o.ch)
			}
		default:
			return
		}
	}
}

// request posts a request and waits for its reply.
func (m *Manager) request(ctx context.Context, e event, reply chan error) error {
	select {
	case m.events <- e:
	case <-m.done:
		return errors.New("manager stopped")
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-reply:
		return err
	case <-m.done:
		return errors.New("manager stopped")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PowerStateChanged implements PowerObserver.
func (m *Manager) PowerStateChanged(on bool) {
	m.post(powerEvent{on: on})
}

// ChannelOpened implements Observer for peer initiated channels. Channels
// opened after Run returned are closed.
func (m *Manager) ChannelOpened(ch procon.Channel) {
	if !m.post(openEvent{ch: ch}) {
		closeChannel(m.log, ch)
	}
}

// ChannelData implements Observer.
func (m *Manager) ChannelData(ch procon.Channel, b []byte) {
	m.post(dataEvent{ch: ch, b: b})
}

// ChannelClosed implements Observer.
func (m *Manager) ChannelClosed(ch procon.Channel) {
	m.post(closeEvent{ch: ch})
}

// Connect opens a link to the console at a, then the control and interrupt
// channels. It returns once both are open and the session is active, or with
// the error that made the attempt fail.
func (m *Manager) Connect(ctx context.Context, a procon.Addr) error {
	reply := make(chan error, 1)
	return m.request(ctx, connectRequest{ctx: ctx, addr: a, reply: reply}, reply)
}

// Disconnect closes the host initiated channels and the link to a. It does
// nothing when a is not linked.
func (m *Manager) Disconnect(ctx context.Context, a procon.Addr) error {
	reply := make(chan error, 1)
	return m.request(ctx, disconnectRequest{addr: a, reply: reply}, reply)
}

// EndSession closes the active interrupt channel, if any. Engines call it
// when the console stopped talking to them.
func (m *Manager) EndSession() {
	m.post(endSessionEvent{})
}

func (m *Manager) powerOn() error {
	m.powered = true
	if m.state != LinkOff {
		return nil
	}

	m.state = Configuring
	if err := m.configure(); err != nil {
		m.state = LinkOff
		return errors.Wrap(err, "can't configure radio")
	}
	m.state = Advertising
	m.log.Infof("advertising as %q (class 0x%06x), host %v", m.identity.Name, m.identity.Class, m.radio.Addr())
	return nil
}

func (m *Manager) configure() error {
	if err := m.radio.ConfigureIdentity(m.identity); err != nil {
		return err
	}

	if _, ok := m.published.Published(); !ok {
		h, err := m.radio.PublishServiceRecord(m.record)
		if err != nil {
			return errors.Wrap(err, "can't publish service record")
		}
		m.published.publish(h)
	}

	for _, psm := range []procon.PSM{procon.PSMControl, procon.PSMInterrupt} {
		if err := m.radio.RegisterChannelOpenObserver(psm, m); err != nil {
			m.unpublish()
			return errors.Wrapf(err, "can't register for %v channel open notifications", psm)
		}
	}

	if err := m.radio.SetScanEnable(true); err != nil {
		m.unpublish()
		return errors.Wrap(err, "can't enable scans")
	}
	m.scanOff = false
	return nil
}

func (m *Manager) unpublish() {
	h, ok := m.published.release()
	if !ok {
		return
	}
	m.log.Info("removing service record")
	if err := m.radio.RemoveServiceRecord(h); err != nil {
		m.log.Warnf("can't remove service record: %v", err)
	}
}

func (m *Manager) powerOff() {
	m.powered = false
	if m.state == LinkOff {
		return
	}

	if e, ok := m.engine.clear(); ok {
		e.OnConnectionLost()
	}
	for _, s := range []*ChannelSlot{&m.outInterrupt, &m.interrupt, &m.outControl, &m.control} {
		m.dropChannel(s)
	}
	m.unpublish()
	m.peer = ""
	m.scanOff = false
	m.state = LinkOff
}

// opened binds a newly opened channel. An interrupt channel starts a session.
func (m *Manager) opened(ch procon.Channel, outgoing bool) error {
	if m.state == LinkOff {
		closeChannel(m.log, ch)
		return procon.ErrLinkOff
	}

	switch ch.PSM() {
	case procon.PSMControl:
		m.log.Infof("control channel connected to %v", ch.RemoteAddr())
		if m.state == Active && procon.NewAddr(ch.RemoteAddr().String()).String() != m.peer {
			closeChannel(m.log, ch)
			return procon.ErrBusy
		}
		slot := &m.control
		if outgoing {
			slot = &m.outControl
		}
		if old, ok := slot.Bound(); ok && old != ch {
			closeChannel(m.log, old)
		}
		slot.bind(ch)
		return nil

	case procon.PSMInterrupt:
		m.log.Infof("interrupt channel connected to %v", ch.RemoteAddr())
		if m.state == Active {
			closeChannel(m.log, ch)
			return procon.ErrBusy
		}
		slot := &m.interrupt
		if outgoing {
			slot = &m.outInterrupt
		}
		slot.bind(ch)
		return m.activate(slot, ch)

	default:
		closeChannel(m.log, ch)
		return errors.Errorf("unexpected channel psm 0x%04x", uint16(ch.PSM()))
	}
}

// activate primes the interrupt channel and starts the engine on it. On any
// failure the channel is dropped and the manager stays Advertising.
func (m *Manager) activate(slot *ChannelSlot, ch procon.Channel) error {
	mem, err := flash.New(m.dump, m.flashSize)
	if err != nil {
		m.abandon(slot, ch)
		return err
	}

	if err := m.radio.SetScanEnable(false); err != nil {
		m.abandon(slot, ch)
		return errors.Wrap(err, "can't disable scans")
	}
	m.scanOff = true

	m.log.Info("triggering response from console")
	if err := TriggerHandshake(ch); err != nil {
		m.abandon(slot, ch)
		return err
	}

	e, err := m.factory(mem, m.radio.Addr(), ch)
	if err != nil {
		m.abandon(slot, ch)
		return errors.Wrap(err, "can't create protocol engine")
	}

	m.engine.activate(e, ch)
	m.peer = procon.NewAddr(ch.RemoteAddr().String()).String()
	m.state = Active
	m.log.ChildLogger(map[string]interface{}{"peer": m.peer}).Info("session active")
	return nil
}

// abandon undoes a partially activated session.
func (m *Manager) abandon(slot *ChannelSlot, ch procon.Channel) {
	slot.release()
	closeChannel(m.log, ch)
	m.peer = ""
	m.resumeScans()
	if m.state != LinkOff {
		m.state = Advertising
	}
}

func (m *Manager) resumeScans() {
	if !m.scanOff {
		return
	}
	if err := m.radio.SetScanEnable(true); err != nil {
		m.log.Errorf("can't re-enable scans: %v", err)
		return
	}
	m.scanOff = false
}

func (m *Manager) onClosed(ch procon.Channel) {
	switch {
	case m.interrupt.Holds(ch):
		m.interrupt.release()
		m.lose(ch)
		m.dropChannel(&m.control)
	case m.outInterrupt.Holds(ch):
		m.outInterrupt.release()
		m.lose(ch)
		m.dropChannel(&m.outControl)
	case m.control.Holds(ch):
		m.log.Info("control channel closed")
		m.control.release()
	case m.outControl.Holds(ch):
		m.log.Info("outgoing control channel closed")
		m.outControl.release()
	default:
		m.log.Debugf("ignoring close of unbound %v channel", ch.PSM())
	}
}

// lose ends the session on the interrupt channel ch, which the caller already
// released. The engine bound to it hears about it exactly once.
func (m *Manager) lose(ch procon.Channel) {
	m.log.Infof("interrupt channel to %v closed", ch.RemoteAddr())

	if m.engine.boundTo(ch) {
		e, _ := m.engine.clear()
		e.OnConnectionLost()
	}

	m.peer = ""
	if m.state == Active {
		m.state = Advertising
	}
	m.resumeScans()
}

func (m *Manager) dropChannel(s *ChannelSlot) {
	if ch, ok := s.release(); ok {
		closeChannel(m.log, ch)
	}
}

func (m *Manager) data(ch procon.Channel, b []byte) error {
	if !m.engine.boundTo(ch) {
		m.violations++
		reason := "no active protocol engine"
		if _, ok := m.engine.Active(); ok {
			reason = "data from non-interrupt channel"
		}
		return &procon.ProtocolViolation{PSM: ch.PSM(), Len: len(b), Reason: reason}
	}

	e, _ := m.engine.Active()
	e.OnBytesReceived(b)
	return nil
}

func (m *Manager) connect(ctx context.Context, a procon.Addr) error {
	switch m.state {
	case LinkOff, Configuring:
		return procon.ErrLinkOff
	case Active:
		return procon.ErrBusy
	}

	m.log.Infof("connecting to %v", a)
	if err := m.transport.OpenLink(ctx, a); err != nil {
		return &procon.ChannelOpenError{Addr: a, Err: err}
	}

	for _, psm := range []procon.PSM{procon.PSMControl, procon.PSMInterrupt} {
		ch, err := m.transport.Open(ctx, a, psm, m)
		if err != nil {
			m.abortConnect(a)
			return &procon.ChannelOpenError{Addr: a, PSM: psm, Err: err}
		}
		if err := m.opened(ch, true); err != nil {
			m.abortConnect(a)
			return err
		}
	}
	return nil
}

func (m *Manager) abortConnect(a procon.Addr) {
	m.dropChannel(&m.outInterrupt)
	m.dropChannel(&m.outControl)
	if err := m.transport.CloseLink(a); err != nil {
		m.log.Warnf("can't close link to %v: %v", a, err)
	}
}

func (m *Manager) disconnect(a procon.Addr) error {
	if !m.transport.IsLinked(a) {
		m.log.Debugf("%v isn't connected, skipping disconnect", a)
		return nil
	}

	if ch, ok := m.outInterrupt.release(); ok {
		closeChannel(m.log, ch)
		m.lose(ch)
	}
	m.dropChannel(&m.outControl)
	return errors.Wrapf(m.transport.CloseLink(a), "can't close link to %v", a)
}

func (m *Manager) endSession() {
	if _, ok := m.engine.Active(); !ok {
		return
	}

	ch := m.engine.ch
	control := &m.control
	if m.outInterrupt.Holds(ch) {
		m.outInterrupt.release()
		control = &m.outControl
	} else {
		m.interrupt.release()
	}
	closeChannel(m.log, ch)
	m.lose(ch)
	m.dropChannel(control)
}

func closeChannel(l procon.Logger, ch procon.Channel) {
	if err := ch.Close(); err != nil {
		l.Debugf("closing %v channel: %v", ch.PSM(), err)
	}
}
