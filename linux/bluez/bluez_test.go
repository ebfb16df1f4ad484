package bluez

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/rigado/procon/sdp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func changed(path dbus.ObjectPath, iface string, props map[string]dbus.Variant) *dbus.Signal {
	return &dbus.Signal{
		Path: path,
		Name: PropertiesInterface + "." + PropertiesChanged,
		Body: []interface{}{iface, props, []string{}},
	}
}

func TestPoweredChange(t *testing.T) {
	path := AdapterPath("hci0")

	on, ok := poweredChange(changed(path, Adapter1Interface, map[string]dbus.Variant{
		"Powered": dbus.MakeVariant(true),
	}), path)
	assert.True(t, ok)
	assert.True(t, on)

	on, ok = poweredChange(changed(path, Adapter1Interface, map[string]dbus.Variant{
		"Powered":      dbus.MakeVariant(false),
		"Discoverable": dbus.MakeVariant(false),
	}), path)
	assert.True(t, ok)
	assert.False(t, on)
}

func TestPoweredChangeIgnoresOthers(t *testing.T) {
	path := AdapterPath("hci0")
	powered := map[string]dbus.Variant{"Powered": dbus.MakeVariant(true)}

	for name, sig := range map[string]*dbus.Signal{
		"nil":           nil,
		"other adapter": changed(AdapterPath("hci1"), Adapter1Interface, powered),
		"device":        changed(path, "org.bluez.Device1", powered),
		"no powered":    changed(path, Adapter1Interface, map[string]dbus.Variant{"Alias": dbus.MakeVariant("x")}),
		"wrong type":    changed(path, Adapter1Interface, map[string]dbus.Variant{"Powered": dbus.MakeVariant("yes")}),
		"short body":    {Path: path, Name: PropertiesInterface + "." + PropertiesChanged, Body: []interface{}{Adapter1Interface}},
		"other member":  {Path: path, Name: "org.freedesktop.DBus.ObjectManager.InterfacesAdded", Body: []interface{}{Adapter1Interface, powered}},
	} {
		_, ok := poweredChange(sig, path)
		assert.False(t, ok, name)
	}
}

func TestProfileOptions(t *testing.T) {
	opts := ProfileOptions(sdp.Record())

	assert.Equal(t, string(sdp.Record()), opts["ServiceRecord"].Value())
	assert.Equal(t, "server", opts["Role"].Value())
	assert.Equal(t, false, opts["RequireAuthentication"].Value())
	assert.Equal(t, false, opts["RequireAuthorization"].Value())
	assert.Equal(t, true, opts["AutoConnect"].Value())
}

func TestPaths(t *testing.T) {
	assert.Equal(t, dbus.ObjectPath("/org/bluez/hci0"), AdapterPath("hci0"))
	assert.Equal(t, "/procon/controller/2", profileObjectPath(DefaultProfilePath, 2))
	assert.True(t, dbus.ObjectPath(profileObjectPath(DefaultProfilePath, 1)).IsValid())
}

func TestProfileClosesHandedOverConnection(t *testing.T) {
	fds := make([]int, 2)
	require.NoError(t, unix.Pipe(fds))
	defer unix.Close(fds[0])

	p := NewProfile("/procon/controller/1")
	assert.Nil(t, p.NewConnection("/org/bluez/hci0/dev_98_B6_E9_12_34_56", dbus.UnixFD(fds[1]), nil))

	_, err := unix.Write(fds[1], []byte{0})
	assert.Equal(t, unix.EBADF, err)
	assert.Nil(t, p.RequestDisconnection("/org/bluez/hci0/dev_98_B6_E9_12_34_56"))
	assert.Nil(t, p.Release())
}
