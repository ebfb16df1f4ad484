package lifecycle

// Status is the observable state of a Manager, for presentation.
type Status struct {
	State           string `json:"state" yaml:"state"`
	Powered         bool   `json:"powered" yaml:"powered"`
	DeviceAddress   string `json:"deviceAddress" yaml:"deviceAddress"`
	HostAddress     string `json:"hostAddress" yaml:"hostAddress"`
	RecordPublished bool   `json:"recordPublished" yaml:"recordPublished"`
	Violations      uint64 `json:"violations" yaml:"violations"`
}

// Status returns the state as of the last processed event.
func (m *Manager) Status() Status {
	m.statusMu.RLock()
	defer m.statusMu.RUnlock()
	return m.status
}

// State returns the current link state.
func (m *Manager) State() State {
	m.statusMu.RLock()
	defer m.statusMu.RUnlock()
	return m.current
}

// Subscribe returns a channel receiving the latest Status after each change.
// A slow reader only misses intermediate snapshots.
func (m *Manager) Subscribe() <-chan Status {
	c := make(chan Status, 1)

	m.statusMu.Lock()
	defer m.statusMu.Unlock()
	m.subscribers = append(m.subscribers, c)
	c <- m.status
	return c
}

// publish snapshots the executor owned state.
func (m *Manager) publish() {
	s := Status{
		State:         m.state.String(),
		Powered:       m.powered,
		DeviceAddress: m.peer,
		Violations:    m.violations,
	}
	if a := m.radio.Addr(); a != nil && m.state != LinkOff {
		s.HostAddress = a.String()
	}
	_, s.RecordPublished = m.published.Published()

	m.statusMu.Lock()
	defer m.statusMu.Unlock()
	if s == m.status && m.current == m.state {
		return
	}
	m.status = s
	m.current = m.state

	for _, c := range m.subscribers {
		select {
		case <-c:
		default:
		}
		c <- s
	}
}
