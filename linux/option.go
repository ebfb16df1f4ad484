//go:build linux
// +build linux

package linux

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/procon/linux/bluez"
	"github.com/rigado/procon/linux/hci"
)

// An Option configures a Device.
type Option func(*Device) error

// OptHCIIndex selects the controller hciN. -1 picks the first one up.
func OptHCIIndex(id int) Option {
	return func(d *Device) error {
		if id < -1 {
			return errors.Errorf("invalid hci index %d", id)
		}
		d.hciIndex = id
		return nil
	}
}

// OptAdapter names the BlueZ adapter paired with the controller.
func OptAdapter(name string) Option {
	return func(d *Device) error {
		if name == "" {
			return errors.New("empty adapter name")
		}
		d.adapter = name
		return nil
	}
}

// OptProfilePath sets the D-Bus object path prefix of published profiles.
func OptProfilePath(path string) Option {
	return func(d *Device) error {
		d.profilePath = path
		return nil
	}
}

// OptCommandTimeout bounds the wait for an HCI command to complete.
func OptCommandTimeout(t time.Duration) Option {
	return func(d *Device) error {
		d.hciOpts = append(d.hciOpts, hci.OptCommandTimeout(t))
		return nil
	}
}

// OptLinkTimeout bounds the wait for a host initiated link.
func OptLinkTimeout(t time.Duration) Option {
	return func(d *Device) error {
		d.hciOpts = append(d.hciOpts, hci.OptLinkTimeout(t))
		return nil
	}
}

func defaultDevice() *Device {
	return &Device{
		hciIndex:    -1,
		adapter:     bluez.DefaultAdapter,
		profilePath: bluez.DefaultProfilePath,
	}
}
