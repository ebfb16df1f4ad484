package config

import (
	"github.com/pkg/errors"
	"github.com/rigado/procon"
	"github.com/rigado/procon/flash"
	"github.com/sirupsen/logrus"
)

const (
	maxNameLen = 248
	maxClass   = 0xffffff
)

// Validate checks the settings without changing them.
func (c *Config) Validate() error {
	if c.Identity.Name == "" {
		return errors.New("identity: empty name")
	}
	if len(c.Identity.Name) > maxNameLen {
		return errors.Errorf("identity: name longer than %d bytes", maxNameLen)
	}
	if c.Identity.Class > maxClass {
		return errors.Errorf("identity: class 0x%x exceeds 24 bits", c.Identity.Class)
	}

	if c.Flash.Size < flash.MinSize {
		return errors.Errorf("flash: size 0x%x below minimum 0x%x", c.Flash.Size, flash.MinSize)
	}

	t := c.Transport
	if t.UART != "" && t.TCP != "" {
		return errors.New("transport: uart and tcp are mutually exclusive")
	}
	if t.HCI < -1 {
		return errors.Errorf("transport: invalid hci index %d", t.HCI)
	}
	if t.Kernel() && t.Adapter == "" {
		return errors.New("transport: empty adapter")
	}
	for name, ms := range map[string]int{
		"tcp_timeout_ms":     t.TCPTimeoutMs,
		"command_timeout_ms": t.CommandTimeoutMs,
		"link_timeout_ms":    t.LinkTimeoutMs,
	} {
		if ms < 0 {
			return errors.Errorf("transport: negative %s", name)
		}
	}

	if c.Connect != "" {
		if _, err := procon.ParseAddr(c.Connect); err != nil {
			return errors.Wrap(err, "connect")
		}
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "log_level")
	}
	if c.EventQueueSize < 0 {
		return errors.Errorf("negative event_queue_size %d", c.EventQueueSize)
	}
	return nil
}
