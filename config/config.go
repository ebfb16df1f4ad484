// Package config holds the settings of a procon run, read from a JSON or YAML
// file and layered over defaults.
package config

import (
	"github.com/rigado/procon"
	"github.com/rigado/procon/flash"
)

type Config struct {
	Identity  IdentityConfig  `json:"identity" yaml:"identity"`
	Flash     FlashConfig     `json:"flash" yaml:"flash"`
	Transport TransportConfig `json:"transport" yaml:"transport"`

	// Connect is the console to reconnect to once advertising.
	Connect string `json:"connect" yaml:"connect"`

	// Cache is a file remembering the last console per adapter. When set
	// and Connect is empty, the cached console is reconnected.
	Cache string `json:"cache" yaml:"cache"`

	LogLevel       string `json:"log_level" yaml:"log_level"`
	EventQueueSize int    `json:"event_queue_size" yaml:"event_queue_size"`
}

type IdentityConfig struct {
	Name               string `json:"name" yaml:"name"`
	Class              uint32 `json:"class" yaml:"class"`
	SimplePairing      bool   `json:"simple_pairing" yaml:"simple_pairing"`
	SimplePairingDebug bool   `json:"simple_pairing_debug" yaml:"simple_pairing_debug"`
	Authentication     bool   `json:"authentication" yaml:"authentication"`
}

type FlashConfig struct {
	// Dump is a file of exactly Size bytes. Empty means factory defaults.
	Dump string `json:"dump" yaml:"dump"`
	Size int    `json:"size" yaml:"size"`
}

// TransportConfig selects the controller. UART and TCP pick an H4
// transport instead of the kernel HCI socket HCI.
type TransportConfig struct {
	HCI         int    `json:"hci" yaml:"hci"`
	Adapter     string `json:"adapter" yaml:"adapter"`
	ProfilePath string `json:"profile_path" yaml:"profile_path"`

	UART string `json:"uart" yaml:"uart"`
	Baud uint   `json:"baud" yaml:"baud"`

	TCP          string `json:"tcp" yaml:"tcp"`
	TCPTimeoutMs int    `json:"tcp_timeout_ms" yaml:"tcp_timeout_ms"`

	CommandTimeoutMs int `json:"command_timeout_ms" yaml:"command_timeout_ms"`
	LinkTimeoutMs    int `json:"link_timeout_ms" yaml:"link_timeout_ms"`
}

// Kernel reports whether the kernel HCI socket transport is selected.
func (t TransportConfig) Kernel() bool {
	return t.UART == "" && t.TCP == ""
}

// Default returns the settings of a genuine Pro Controller on the first
// kernel controller.
func Default() *Config {
	id := procon.DefaultIdentity()
	return &Config{
		Identity: IdentityConfig{
			Name:               id.Name,
			Class:              id.Class,
			SimplePairing:      id.SimplePairing,
			SimplePairingDebug: id.SimplePairingDebug,
			Authentication:     id.Authentication,
		},
		Flash: FlashConfig{Size: flash.DefaultSize},
		Transport: TransportConfig{
			HCI:          -1,
			Adapter:      "hci0",
			ProfilePath:  "/procon/controller",
			TCPTimeoutMs: 5000,
		},
		LogLevel: "info",
	}
}

func (c *Config) ProconIdentity() procon.Identity {
	return procon.Identity{
		Name:               c.Identity.Name,
		Class:              c.Identity.Class,
		SimplePairing:      c.Identity.SimplePairing,
		SimplePairingDebug: c.Identity.SimplePairingDebug,
		Authentication:     c.Identity.Authentication,
	}
}

// Options returns the manager options the configuration implies. The flash
// dump is read here.
func (c *Config) Options() ([]procon.Option, error) {
	opts := []procon.Option{
		procon.OptIdentity(c.ProconIdentity()),
		procon.OptFlashSize(c.Flash.Size),
	}
	if c.Flash.Dump != "" {
		dump, err := flash.ReadDump(c.Flash.Dump)
		if err != nil {
			return nil, err
		}
		opts = append(opts, procon.OptFlashDump(dump))
	}
	if c.EventQueueSize > 0 {
		opts = append(opts, procon.OptEventQueueSize(c.EventQueueSize))
	}
	return opts, nil
}
