package hci

import "fmt"

// ErrCommand is an HCI error code [Vol 1, Part F, 1.3].
type ErrCommand byte

const (
	ErrUnknownCommand        ErrCommand = 0x01
	ErrConnID                ErrCommand = 0x02
	ErrHardware              ErrCommand = 0x03
	ErrPageTimeout           ErrCommand = 0x04
	ErrAuth                  ErrCommand = 0x05
	ErrPINMissing            ErrCommand = 0x06
	ErrMemoryCapacity        ErrCommand = 0x07
	ErrConnTimeout           ErrCommand = 0x08
	ErrConnLimit             ErrCommand = 0x09
	ErrACLConnExists         ErrCommand = 0x0B
	ErrDisallowed            ErrCommand = 0x0C
	ErrLimitedResources      ErrCommand = 0x0D
	ErrSecurityRejected      ErrCommand = 0x0E
	ErrBDADDRRejected        ErrCommand = 0x0F
	ErrConnAcceptTimeout     ErrCommand = 0x10
	ErrUnsupportedParams     ErrCommand = 0x11
	ErrInvalidParams         ErrCommand = 0x12
	ErrRemoteUser            ErrCommand = 0x13
	ErrRemoteLowResources    ErrCommand = 0x14
	ErrRemotePowerOff        ErrCommand = 0x15
	ErrLocalHost             ErrCommand = 0x16
	ErrRepeatedAttempts      ErrCommand = 0x17
	ErrPairingNotAllowed     ErrCommand = 0x18
	ErrUnspecified           ErrCommand = 0x1F
	ErrControllerBusy        ErrCommand = 0x3A
	ErrConnFailedToEstablish ErrCommand = 0x3E
)

var errCmd = map[ErrCommand]string{
	ErrUnknownCommand:        "unknown hci command",
	ErrConnID:                "unknown connection identifier",
	ErrHardware:              "hardware failure",
	ErrPageTimeout:           "page timeout",
	ErrAuth:                  "authentication failure",
	ErrPINMissing:            "pin or key missing",
	ErrMemoryCapacity:        "memory capacity exceeded",
	ErrConnTimeout:           "connection timeout",
	ErrConnLimit:             "connection limit exceeded",
	ErrACLConnExists:         "acl connection already exists",
	ErrDisallowed:            "command disallowed",
	ErrLimitedResources:      "connection rejected due to limited resources",
	ErrSecurityRejected:      "connection rejected due to security reasons",
	ErrBDADDRRejected:        "connection rejected due to unacceptable bd_addr",
	ErrConnAcceptTimeout:     "connection accept timeout exceeded",
	ErrUnsupportedParams:     "unsupported feature or parameter value",
	ErrInvalidParams:         "invalid hci command parameters",
	ErrRemoteUser:            "remote user terminated connection",
	ErrRemoteLowResources:    "remote device terminated connection due to low resources",
	ErrRemotePowerOff:        "remote device terminated connection due to power off",
	ErrLocalHost:             "connection terminated by local host",
	ErrRepeatedAttempts:      "repeated attempts",
	ErrPairingNotAllowed:     "pairing not allowed",
	ErrUnspecified:           "unspecified error",
	ErrControllerBusy:        "controller busy",
	ErrConnFailedToEstablish: "connection failed to be established",
}

func (e ErrCommand) Error() string {
	if s, ok := errCmd[e]; ok {
		return s
	}
	return fmt.Sprintf("hci error 0x%02x", byte(e))
}
