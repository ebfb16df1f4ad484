//go:build linux
// +build linux

package linux

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/pkg/errors"
	"github.com/rigado/procon"
	"github.com/rigado/procon/lifecycle"
	"github.com/rigado/procon/linux/bluez"
	"github.com/rigado/procon/linux/hci"
	"github.com/rigado/procon/linux/l2cap"
)

const disconnectTimeout = 5 * time.Second

// Device is the Linux platform of a lifecycle.Manager: the raw HCI socket
// for radio settings and links, BlueZ for the service record and adapter
// power, and kernel L2CAP sockets for the HID channels.
type Device struct {
	HCI   *hci.HCI
	BlueZ *bluez.BlueZ

	hciIndex    int
	adapter     string
	profilePath string
	hciOpts     []hci.Option

	mu        sync.Mutex
	listeners map[procon.PSM]*l2cap.Listener

	log procon.Logger
}

var (
	_ lifecycle.Radio     = (*Device)(nil)
	_ lifecycle.Transport = (*Device)(nil)
)

// NewDevice opens the controller and the BlueZ adapter it belongs to.
func NewDevice(opts ...Option) (*Device, error) {
	d := defaultDevice()
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, errors.Wrap(err, "can't set options")
		}
	}
	d.listeners = map[procon.PSM]*l2cap.Listener{}
	d.log = procon.GetLogger().ChildLogger(map[string]interface{}{"pkg": "linux", "adapter": d.adapter})

	hopts := append([]hci.Option{hci.OptTransportHCISocket(d.hciIndex)}, d.hciOpts...)
	h, err := hci.NewHCI(hopts...)
	if err != nil {
		return nil, errors.Wrap(err, "can't create hci")
	}
	if err := h.Init(); err != nil {
		h.Close()
		return nil, errors.Wrap(err, "can't init hci")
	}
	h.SetLinkHandler(func(a procon.Addr, up bool) {
		if up {
			d.log.Infof("link to %v up", a)
		} else {
			d.log.Infof("link to %v down", a)
		}
	})

	b, err := bluez.New(d.adapter, d.profilePath)
	if err != nil {
		h.Close()
		return nil, errors.Wrap(err, "can't connect to bluez")
	}

	d.HCI = h
	d.BlueZ = b
	return d, nil
}

// WatchPower reports adapter power changes to o until ctx is done.
func (d *Device) WatchPower(ctx context.Context, o lifecycle.PowerObserver) error {
	return d.BlueZ.WatchPower(ctx, o)
}

func (d *Device) Addr() procon.Addr {
	return d.HCI.Addr()
}

func (d *Device) SetScanEnable(enabled bool) error {
	return d.HCI.SetScanEnable(enabled)
}

// IsScanEnabled reads the scan enable setting back from the controller.
func (d *Device) IsScanEnabled() (bool, error) {
	return d.HCI.ScanEnabled()
}

// ConfigureIdentity sets the adapter alias and pairing properties through
// BlueZ, then writes the identity to the controller.
func (d *Device) ConfigureIdentity(id procon.Identity) error {
	if err := d.BlueZ.Adapter().Prepare(id.Name); err != nil {
		d.log.Warnf("adapter setup incomplete: %v", err)
	}
	return d.HCI.ConfigureIdentity(id)
}

func (d *Device) PublishServiceRecord(record []byte) (lifecycle.RecordHandle, error) {
	path, err := d.BlueZ.RegisterProfile(record)
	if err != nil {
		return "", err
	}
	return lifecycle.RecordHandle(path), nil
}

func (d *Device) RemoveServiceRecord(h lifecycle.RecordHandle) error {
	return d.BlueZ.UnregisterProfile(dbus.ObjectPath(h))
}

// RegisterChannelOpenObserver listens on psm once and points accepted
// channels at o. A later call for the same psm only swaps the observer.
func (d *Device) RegisterChannelOpenObserver(psm procon.PSM, o lifecycle.Observer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if l, ok := d.listeners[psm]; ok {
		l.SetObserver(o)
		return nil
	}

	l, err := l2cap.Listen(psm)
	if err != nil {
		return err
	}
	l.SetObserver(o)
	d.listeners[psm] = l
	go l.Serve()
	d.log.Infof("listening on %v psm 0x%04x", psm, uint16(psm))
	return nil
}

func (d *Device) OpenLink(ctx context.Context, a procon.Addr) error {
	if d.HCI.IsLinked(a) {
		return nil
	}
	return d.HCI.CreateConnection(ctx, a)
}

func (d *Device) IsLinked(a procon.Addr) bool {
	return d.HCI.IsLinked(a)
}

func (d *Device) CloseLink(a procon.Addr) error {
	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()
	return d.HCI.Disconnect(ctx, a)
}

// Open dials psm on a and starts reporting the channel's data and close to o.
func (d *Device) Open(ctx context.Context, a procon.Addr, psm procon.PSM, o lifecycle.Observer) (procon.Channel, error) {
	ch, err := l2cap.Dial(ctx, a, psm)
	if err != nil {
		return nil, err
	}
	go ch.Serve(o)
	return ch, nil
}

// Close stops the listeners and releases BlueZ and the controller.
func (d *Device) Close() error {
	d.mu.Lock()
	for psm, l := range d.listeners {
		if err := l.Close(); err != nil {
			d.log.Warn(err)
		}
		delete(d.listeners, psm)
	}
	d.mu.Unlock()

	var msg string
	if err := d.BlueZ.Close(); err != nil {
		msg += fmt.Sprintf("(bluez: %v)", err)
	}
	if err := d.HCI.Close(); err != nil {
		msg += fmt.Sprintf("(hci: %v)", err)
	}
	if msg != "" {
		return errors.Errorf("can't close device: %s", msg)
	}
	return nil
}
