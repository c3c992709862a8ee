//go:build linux

package scanner

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	bluezService     = "org.bluez"
	adapterInterface = "org.bluez.Adapter1"
)

var _ PowerController = (*BLESource)(nil)

func (s *BLESource) adapterObject() (dbus.BusObject, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to system bus: %w", err)
	}
	return conn.Object(bluezService, dbus.ObjectPath("/org/bluez/"+s.adapterID)), nil
}

// Powered reports whether the BlueZ adapter is switched on.
func (s *BLESource) Powered() (bool, error) {
	obj, err := s.adapterObject()
	if err != nil {
		return false, err
	}

	v, err := obj.GetProperty(adapterInterface + ".Powered")
	if err != nil {
		return false, fmt.Errorf("failed to read %s power state: %w", s.adapterID, err)
	}

	powered, ok := v.Value().(bool)
	if !ok {
		return false, fmt.Errorf("unexpected Powered value type %T", v.Value())
	}
	return powered, nil
}

// PowerOn switches the BlueZ adapter on.
func (s *BLESource) PowerOn() error {
	obj, err := s.adapterObject()
	if err != nil {
		return err
	}

	call := obj.Call("org.freedesktop.DBus.Properties.Set", 0,
		adapterInterface, "Powered", dbus.MakeVariant(true))
	if call.Err != nil {
		return fmt.Errorf("failed to power on %s: %w", s.adapterID, call.Err)
	}
	return nil
}
