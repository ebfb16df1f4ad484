package procon

import (
	"net"
	"strings"

	"github.com/pkg/errors"
)

// Addr represents a BR/EDR device address.
type Addr interface {
	String() string
	Bytes() []byte
}

// NewAddr creates an Addr from string. Both "aa:bb:.." and the "aa-bb-.."
// form reported by some stacks are accepted; the stored form is lower case
// and colon separated.
func NewAddr(s string) Addr {
	return addr(strings.ToLower(strings.Replace(s, "-", ":", -1)))
}

// ParseAddr is NewAddr with validation of the six octets.
func ParseAddr(s string) (Addr, error) {
	a := NewAddr(s)
	hw, err := net.ParseMAC(a.String())
	if err != nil {
		return nil, errors.Wrapf(err, "invalid device address %q", s)
	}
	if len(hw) != 6 {
		return nil, errors.Errorf("invalid device address %q: want 6 octets, got %d", s, len(hw))
	}
	return a, nil
}

type addr string

func (a addr) String() string {
	return string(a)
}

// Bytes returns the octets in display order, most significant first.
// It returns nil for a malformed address.
func (a addr) Bytes() []byte {
	hw, err := net.ParseMAC(a.String())
	if err != nil || len(hw) != 6 {
		return nil
	}
	return []byte(hw)
}

// AddrFromBytes builds an Addr from six octets in display order.
func AddrFromBytes(b []byte) Addr {
	return NewAddr(net.HardwareAddr(b).String())
}
