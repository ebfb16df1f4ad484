// Package sdp holds the HID service record a Pro Controller publishes.
package sdp

import (
	_ "embed"
)

// HIDServiceUUID is the Human Interface Device service class.
const HIDServiceUUID = "00001124-0000-1000-8000-00805f9b34fb"

//go:embed procon.xml
var record []byte

// Record returns a copy of the BlueZ XML form of the HID service record.
func Record() []byte {
	out := make([]byte, len(record))
	copy(out, record)
	return out
}
