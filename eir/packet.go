// Package eir builds and parses extended inquiry response data.
// Refer to Bluetooth Core Specification v5.3, Vol 3, Part C, 8 and the
// Core Specification Supplement, Part A.
package eir

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// MaxLength is the size of the EIR data carried by Write_Extended_Inquiry_Response.
const MaxLength = 240

var (
	// ErrNotFit is returned when a field doesn't fit into the remaining space.
	ErrNotFit = errors.New("data field doesn't fit into the inquiry response")

	ErrInvalid = errors.New("invalid data field")
)

// Packet is an extended inquiry response, either crafted or parsed.
type Packet struct {
	b []byte
	m map[string]interface{}
}

// Bytes returns the significant part of the packet.
func (p *Packet) Bytes() []byte {
	return p.b
}

// Padded returns the packet zero padded to MaxLength.
func (p *Packet) Padded() []byte {
	b := make([]byte, MaxLength)
	copy(b, p.b)
	return b
}

// Len returns the length of the significant part.
func (p *Packet) Len() int {
	return len(p.b)
}

// NewPacket returns a Packet holding fields in order.
func NewPacket(fields ...Field) (*Packet, error) {
	p := &Packet{b: make([]byte, 0, MaxLength)}
	for _, f := range fields {
		if err := f(p); err != nil {
			return nil, err
		}
	}

	m, err := decode(p.b)
	if err != nil {
		return nil, errors.Wrap(err, "eir decode")
	}
	p.m = m
	return p, nil
}

// Field is a data field which can be appended to a packet.
type Field func(p *Packet) error

// append appends a field to the packet. It returns ErrNotFit if the field
// doesn't fit into the packet, and leaves the packet intact.
func (p *Packet) append(typ byte, b []byte) error {
	if p.Len()+1+1+len(b) > MaxLength {
		return ErrNotFit
	}
	p.b = append(p.b, byte(len(b)+1))
	p.b = append(p.b, typ)
	p.b = append(p.b, b...)
	return nil
}

// Raw appends already encoded fields.
func Raw(b []byte) Field {
	return func(p *Packet) error {
		if p.Len()+len(b) > MaxLength {
			return ErrNotFit
		}
		p.b = append(p.b, b...)
		return nil
	}
}

// ShortName is a shortened local name.
func ShortName(n string) Field {
	return func(p *Packet) error {
		return p.append(types.nameshort, []byte(n))
	}
}

// CompleteName is a complete local name.
func CompleteName(n string) Field {
	return func(p *Packet) error {
		return p.append(types.namecomp, []byte(n))
	}
}

// Name is the complete local name, or as much of it as fits in the remaining
// space as a shortened name.
func Name(n string) Field {
	return func(p *Packet) error {
		if len(n) == 0 {
			return ErrInvalid
		}
		if err := CompleteName(n)(p); err != ErrNotFit {
			return err
		}
		room := MaxLength - p.Len() - 2
		if room < 1 {
			return ErrNotFit
		}
		return ShortName(n[:room])(p)
	}
}

// AllUUID16 is the complete list of 16-bit service class UUIDs.
func AllUUID16(ids ...uint16) Field {
	return func(p *Packet) error {
		if len(ids) == 0 {
			return ErrInvalid
		}
		b := make([]byte, 2*len(ids))
		for i, id := range ids {
			binary.LittleEndian.PutUint16(b[2*i:], id)
		}
		return p.append(types.uuid16comp, b)
	}
}

// TxPower is the transmit power level in dBm.
func TxPower(pwr int8) Field {
	return func(p *Packet) error {
		return p.append(types.txpwr, []byte{uint8(pwr)})
	}
}

// DeviceID is the Device ID profile record [DI 1.3, 5.1].
func DeviceID(source, vendor, product, version uint16) Field {
	return func(p *Packet) error {
		b := make([]byte, 8)
		binary.LittleEndian.PutUint16(b[0:], source)
		binary.LittleEndian.PutUint16(b[2:], vendor)
		binary.LittleEndian.PutUint16(b[4:], product)
		binary.LittleEndian.PutUint16(b[6:], version)
		return p.append(types.deviceid, b)
	}
}

// ManufacturerData is manufacturer specific data.
func ManufacturerData(id uint16, b []byte) Field {
	return func(p *Packet) error {
		d := append([]byte{uint8(id), uint8(id >> 8)}, b...)
		return p.append(types.mfgdata, d)
	}
}

// LocalName returns the complete or shortened name, if present.
func (p *Packet) LocalName() string {
	if b, ok := p.m[keys.name].([]byte); ok {
		return string(b)
	}
	return ""
}

// NameComplete reports whether LocalName is the complete name.
func (p *Packet) NameComplete() bool {
	_, ok := p.m[keys.namecomplete]
	return ok
}

// UUID16s returns the 16-bit service class UUIDs.
func (p *Packet) UUID16s() []uint16 {
	v, _ := p.m[keys.uuid16].([]interface{})
	u := make([]uint16, 0, len(v))
	for _, vv := range v {
		if b, ok := vv.([]byte); ok {
			u = append(u, binary.LittleEndian.Uint16(b))
		}
	}
	return u
}

// TxPower returns the TxPower, if it presents.
func (p *Packet) TxPower() (power int, present bool) {
	if b, ok := p.m[keys.txpwr].([]byte); ok {
		return int(int8(b[0])), true
	}
	return 0, false
}

// ManufacturerData returns the ManufacturerData field if it presents.
func (p *Packet) ManufacturerData() []byte {
	v, _ := p.m[keys.mfgdata].([]byte)
	return v
}
