package procon

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrLinkOff is returned by requests which need a powered radio.
	ErrLinkOff = errors.New("link is powered off")

	// ErrBusy is returned by Connect while a session is already active.
	ErrBusy = errors.New("session already active")

	ErrNotSupported = errors.New("not supported")
)

// ConfigurationError rejects a flash memory construction.
type ConfigurationError struct {
	Size   int
	Got    int
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Reason != "" {
		return "invalid flash configuration: " + e.Reason
	}
	return fmt.Sprintf("given data size %d does not match size %d", e.Got, e.Size)
}

// ChannelOpenError means the stack refused to establish a channel.
type ChannelOpenError struct {
	Addr Addr
	PSM  PSM
	Err  error
}

func (e *ChannelOpenError) Error() string {
	return fmt.Sprintf("failed to open l2cap channel psm 0x%02x (%v) to %v: %v", uint16(e.PSM), e.PSM, e.Addr, e.Err)
}

func (e *ChannelOpenError) Cause() error  { return e.Err }
func (e *ChannelOpenError) Unwrap() error { return e.Err }

// WriteError means a channel write did not complete.
type WriteError struct {
	PSM PSM
	N   int // bytes reported written
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write on %v channel failed after %d bytes: %v", e.PSM, e.N, e.Err)
}

func (e *WriteError) Cause() error  { return e.Err }
func (e *WriteError) Unwrap() error { return e.Err }

// ProtocolViolation is data that arrived where no engine can take it.
type ProtocolViolation struct {
	PSM    PSM
	Len    int
	Reason string
}

func (e *ProtocolViolation) Error() string {
	return fmt.Sprintf("protocol violation on %v channel (%d bytes): %s", e.PSM, e.Len, e.Reason)
}
