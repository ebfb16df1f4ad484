package bluez

import (
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/pkg/errors"
	"github.com/rigado/procon"
	"golang.org/x/sys/unix"
)

var profile1IntrospectData = introspect.Interface{
	Name: Profile1Interface,
	Methods: []introspect.Method{
		{Name: "Release"},
		{
			Name: "NewConnection",
			Args: []introspect.Arg{
				{Name: "device", Type: "o", Direction: "in"},
				{Name: "fd", Type: "h", Direction: "in"},
				{Name: "fd_properties", Type: "a{sv}", Direction: "in"},
			},
		},
		{
			Name: "RequestDisconnection",
			Args: []introspect.Arg{
				{Name: "device", Type: "o", Direction: "in"},
			},
		},
	},
}

// ProfileOptions returns the RegisterProfile options that publish record as
// a server side service record.
func ProfileOptions(record []byte) map[string]dbus.Variant {
	return map[string]dbus.Variant{
		"ServiceRecord":         dbus.MakeVariant(string(record)),
		"Role":                  dbus.MakeVariant("server"),
		"RequireAuthentication": dbus.MakeVariant(false),
		"RequireAuthorization":  dbus.MakeVariant(false),
		"AutoConnect":           dbus.MakeVariant(true),
	}
}

func profileObjectPath(prefix string, seq int) string {
	return fmt.Sprintf("%s/%d", prefix, seq)
}

// Profile is the exported org.bluez.Profile1 object. The HID channels are
// served by our own L2CAP listeners, so connections BlueZ hands over here
// are closed.
type Profile struct {
	path dbus.ObjectPath
	log  procon.Logger
}

func NewProfile(path dbus.ObjectPath) *Profile {
	return &Profile{
		path: path,
		log:  procon.GetLogger().ChildLogger(map[string]interface{}{"pkg": "bluez", "profile": string(path)}),
	}
}

func (p *Profile) Path() dbus.ObjectPath { return p.path }

func (p *Profile) export(conn *dbus.Conn) error {
	if err := conn.Export(p, p.path, Profile1Interface); err != nil {
		return errors.Wrap(err, "can't export profile")
	}
	node := &introspect.Node{
		Name: string(p.path),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			profile1IntrospectData,
		},
	}
	err := conn.Export(introspect.NewIntrospectable(node), p.path, "org.freedesktop.DBus.Introspectable")
	return errors.Wrap(err, "can't export profile introspection")
}

func (p *Profile) unexport(conn *dbus.Conn) {
	conn.Export(nil, p.path, Profile1Interface)
	conn.Export(nil, p.path, "org.freedesktop.DBus.Introspectable")
}

// Release is called when BlueZ drops the profile.
func (p *Profile) Release() *dbus.Error {
	p.log.Info("profile released")
	return nil
}

func (p *Profile) NewConnection(device dbus.ObjectPath, fd dbus.UnixFD, props map[string]dbus.Variant) *dbus.Error {
	p.log.Debugf("closing connection from %s handed over by bluez", device)
	unix.Close(int(fd))
	return nil
}

func (p *Profile) RequestDisconnection(device dbus.ObjectPath) *dbus.Error {
	p.log.Debugf("disconnection requested for %s", device)
	return nil
}
