package lifecycle

import (
	"github.com/pkg/errors"
	"github.com/rigado/procon"
	"github.com/rigado/procon/flash"
)

// SetIdentity sets the name, class and pairing mode configured on power-on.
func (m *Manager) SetIdentity(id procon.Identity) error {
	if id.Name == "" {
		return errors.New("empty device name")
	}
	if id.Class > 0xFFFFFF {
		return errors.Errorf("class of device 0x%x exceeds 24 bits", id.Class)
	}
	m.identity = id
	return nil
}

// SetServiceRecord replaces the published service record.
func (m *Manager) SetServiceRecord(record []byte) error {
	if len(record) == 0 {
		return errors.New("empty service record")
	}
	m.record = record
	return nil
}

// SetFlashDump sets the image every session's flash memory is built from.
func (m *Manager) SetFlashDump(dump []byte) error {
	m.dump = dump
	return nil
}

// SetFlashSize sets the size of the emulated flash.
func (m *Manager) SetFlashSize(size int) error {
	if size < flash.MinSize {
		return &procon.ConfigurationError{Size: size, Reason: "flash size too small"}
	}
	m.flashSize = size
	return nil
}

// SetEventQueueSize sets the depth of the event queue.
func (m *Manager) SetEventQueueSize(n int) error {
	if n < 1 {
		return errors.Errorf("invalid event queue size %d", n)
	}
	m.queueSize = n
	return nil
}

// SetLogger sets the logger.
func (m *Manager) SetLogger(l procon.Logger) error {
	if l == nil {
		return errors.New("nil logger")
	}
	m.log = l
	return nil
}

// SetEngineFactory sets the protocol engine constructor.
func (m *Manager) SetEngineFactory(f procon.EngineFactory) error {
	if f == nil {
		return errors.New("nil engine factory")
	}
	m.factory = f
	return nil
}
