// Package bluez talks to the BlueZ daemon over the system D-Bus. It
// publishes the HID service record as an external profile, drives the
// adapter properties BlueZ owns, and reports adapter power changes.
package bluez

import (
	"context"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/pkg/errors"
	"github.com/rigado/procon"
)

const (
	BusName = "org.bluez"

	Adapter1Interface        = "org.bluez.Adapter1"
	ProfileManager1Interface = "org.bluez.ProfileManager1"
	Profile1Interface        = "org.bluez.Profile1"

	PropertiesInterface = "org.freedesktop.DBus.Properties"
	PropertiesChanged   = "PropertiesChanged"

	// ProfileUUID is registered in place of the HID UUID so the BlueZ input
	// plugin keeps its hands off the HID PSMs.
	ProfileUUID = "00001000-0000-1000-8000-00805f9b34fb"

	DefaultAdapter     = "hci0"
	DefaultProfilePath = "/procon/controller"
)

// PowerObserver receives adapter power changes.
type PowerObserver interface {
	PowerStateChanged(on bool)
}

// BlueZ is a private system bus connection bound to one adapter.
type BlueZ struct {
	conn        *dbus.Conn
	adapter     *Adapter
	profilePath dbus.ObjectPath

	mu       sync.Mutex
	profiles map[dbus.ObjectPath]*Profile
	seq      int

	log procon.Logger
}

// New connects to the system bus. adapter is the BlueZ adapter name such as
// "hci0"; profilePath is the object path prefix of exported profiles.
func New(adapter string, profilePath string) (*BlueZ, error) {
	if adapter == "" {
		adapter = DefaultAdapter
	}
	if profilePath == "" {
		profilePath = DefaultProfilePath
	}
	if !dbus.ObjectPath(profilePath).IsValid() {
		return nil, errors.Errorf("invalid profile path %q", profilePath)
	}

	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, errors.Wrap(err, "can't connect to system bus")
	}

	return &BlueZ{
		conn:        conn,
		adapter:     newAdapter(conn, adapter),
		profilePath: dbus.ObjectPath(profilePath),
		profiles:    map[dbus.ObjectPath]*Profile{},
		log:         procon.GetLogger().ChildLogger(map[string]interface{}{"pkg": "bluez", "adapter": adapter}),
	}, nil
}

// Adapter returns the adapter the connection is bound to.
func (b *BlueZ) Adapter() *Adapter {
	return b.adapter
}

// RegisterProfile exports a Profile1 object carrying record and registers it
// with the profile manager. The returned path identifies the registration.
func (b *BlueZ) RegisterProfile(record []byte) (dbus.ObjectPath, error) {
	b.mu.Lock()
	b.seq++
	path := dbus.ObjectPath(profileObjectPath(string(b.profilePath), b.seq))
	b.mu.Unlock()

	p := NewProfile(path)
	if err := p.export(b.conn); err != nil {
		return "", err
	}

	obj := b.conn.Object(BusName, "/org/bluez")
	call := obj.Call(ProfileManager1Interface+".RegisterProfile", 0, path, ProfileUUID, ProfileOptions(record))
	if call.Err != nil {
		p.unexport(b.conn)
		return "", errors.Wrap(call.Err, "can't register profile")
	}

	b.mu.Lock()
	b.profiles[path] = p
	b.mu.Unlock()
	b.log.Infof("registered profile %s", path)
	return path, nil
}

// UnregisterProfile withdraws a profile registered by RegisterProfile.
func (b *BlueZ) UnregisterProfile(path dbus.ObjectPath) error {
	b.mu.Lock()
	p, ok := b.profiles[path]
	delete(b.profiles, path)
	b.mu.Unlock()
	if !ok {
		return errors.Errorf("unknown profile %s", path)
	}

	obj := b.conn.Object(BusName, "/org/bluez")
	call := obj.Call(ProfileManager1Interface+".UnregisterProfile", 0, path)
	p.unexport(b.conn)
	if call.Err != nil {
		return errors.Wrap(call.Err, "can't unregister profile")
	}
	b.log.Infof("unregistered profile %s", path)
	return nil
}

// WatchPower reports the current adapter power state to o and then every
// change of it, until ctx is done.
func (b *BlueZ) WatchPower(ctx context.Context, o PowerObserver) error {
	path := b.adapter.Path()
	err := b.conn.AddMatchSignal(
		dbus.WithMatchObjectPath(path),
		dbus.WithMatchInterface(PropertiesInterface),
		dbus.WithMatchMember(PropertiesChanged),
	)
	if err != nil {
		return errors.Wrap(err, "can't add signal match")
	}

	ch := make(chan *dbus.Signal, 16)
	b.conn.Signal(ch)

	on, err := b.adapter.Powered()
	if err != nil {
		b.conn.RemoveSignal(ch)
		return err
	}
	o.PowerStateChanged(on)

	go func() {
		defer b.conn.RemoveSignal(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case sig, ok := <-ch:
				if !ok {
					return
				}
				if on, ok := poweredChange(sig, path); ok {
					b.log.Infof("adapter powered: %v", on)
					o.PowerStateChanged(on)
				}
			}
		}
	}()
	return nil
}

// Close unregisters every profile left and drops the bus connection.
func (b *BlueZ) Close() error {
	b.mu.Lock()
	var paths []dbus.ObjectPath
	for p := range b.profiles {
		paths = append(paths, p)
	}
	b.mu.Unlock()

	for _, p := range paths {
		if err := b.UnregisterProfile(p); err != nil {
			b.log.Warn(err)
		}
	}
	return errors.Wrap(b.conn.Close(), "can't close bus connection")
}

// poweredChange extracts the new Powered value from a PropertiesChanged
// signal of the adapter at path.
func poweredChange(sig *dbus.Signal, path dbus.ObjectPath) (bool, bool) {
	if sig == nil || sig.Path != path || sig.Name != PropertiesInterface+"."+PropertiesChanged {
		return false, false
	}
	if len(sig.Body) < 2 {
		return false, false
	}
	if iface, ok := sig.Body[0].(string); !ok || iface != Adapter1Interface {
		return false, false
	}
	changed, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return false, false
	}
	v, ok := changed["Powered"]
	if !ok {
		return false, false
	}
	on, ok := v.Value().(bool)
	return on, ok
}
