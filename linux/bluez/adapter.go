package bluez

import (
	"github.com/godbus/dbus/v5"
	"github.com/pkg/errors"
)

// Adapter drives the properties of an org.bluez.Adapter1 object.
type Adapter struct {
	conn *dbus.Conn
	name string
	path dbus.ObjectPath
}

func newAdapter(conn *dbus.Conn, name string) *Adapter {
	return &Adapter{conn: conn, name: name, path: AdapterPath(name)}
}

// AdapterPath returns the object path of the adapter called name.
func AdapterPath(name string) dbus.ObjectPath {
	return dbus.ObjectPath("/org/bluez/" + name)
}

func (a *Adapter) Name() string          { return a.name }
func (a *Adapter) Path() dbus.ObjectPath { return a.path }

func (a *Adapter) Powered() (bool, error) {
	v, err := a.get("Powered")
	if err != nil {
		return false, err
	}
	on, ok := v.Value().(bool)
	if !ok {
		return false, errors.Errorf("Powered has unexpected type %T", v.Value())
	}
	return on, nil
}

// Address returns the adapter address as BlueZ reports it.
func (a *Adapter) Address() (string, error) {
	v, err := a.get("Address")
	if err != nil {
		return "", err
	}
	s, ok := v.Value().(string)
	if !ok {
		return "", errors.Errorf("Address has unexpected type %T", v.Value())
	}
	return s, nil
}

func (a *Adapter) SetPowered(on bool) error              { return a.set("Powered", on) }
func (a *Adapter) SetDiscoverable(on bool) error         { return a.set("Discoverable", on) }
func (a *Adapter) SetDiscoverableTimeout(s uint32) error { return a.set("DiscoverableTimeout", s) }
func (a *Adapter) SetPairable(on bool) error             { return a.set("Pairable", on) }
func (a *Adapter) SetPairableTimeout(s uint32) error     { return a.set("PairableTimeout", s) }
func (a *Adapter) SetAlias(name string) error            { return a.set("Alias", name) }

// Prepare powers the adapter and keeps it pairable without timeouts under
// alias. It tries every property and returns the first error.
func (a *Adapter) Prepare(alias string) error {
	var first error
	for _, f := range []func() error{
		func() error { return a.SetPowered(true) },
		func() error { return a.SetPairable(true) },
		func() error { return a.SetPairableTimeout(0) },
		func() error { return a.SetDiscoverableTimeout(0) },
		func() error { return a.SetAlias(alias) },
	} {
		if err := f(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (a *Adapter) get(prop string) (dbus.Variant, error) {
	var v dbus.Variant
	obj := a.conn.Object(BusName, a.path)
	err := obj.Call(PropertiesInterface+".Get", 0, Adapter1Interface, prop).Store(&v)
	return v, errors.Wrapf(err, "can't get %s.%s", a.name, prop)
}

func (a *Adapter) set(prop string, v interface{}) error {
	obj := a.conn.Object(BusName, a.path)
	call := obj.Call(PropertiesInterface+".Set", 0, Adapter1Interface, prop, dbus.MakeVariant(v))
	return errors.Wrapf(call.Err, "can't set %s.%s", a.name, prop)
}
