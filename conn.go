package procon

// PSM is an L2CAP protocol/service multiplexer.
type PSM uint16

// HID PSMs [HID Profile 1.1, 7.1].
const (
	PSMControl   PSM = 0x11
	PSMInterrupt PSM = 0x13
)

func (p PSM) String() string {
	switch p {
	case 0:
		return "link"
	case PSMControl:
		return "control"
	case PSMInterrupt:
		return "interrupt"
	default:
		return "unknown"
	}
}

// Channel is an open L2CAP channel to a peer.
//
// Write is synchronous: it returns once the stack accepted the whole packet
// or reports why it did not.
type Channel interface {
	PSM() PSM
	RemoteAddr() Addr
	Write(b []byte) (int, error)
	Close() error
}

// Identity is what the radio presents during inquiry and pairing.
type Identity struct {
	Name string

	// Class is the 24-bit class of device.
	Class uint32

	SimplePairing      bool
	SimplePairingDebug bool
	Authentication     bool
}

const (
	DefaultName  = "Pro Controller"
	DefaultClass = 0x000508 // Peripheral, gamepad
)

// DefaultIdentity returns the identity of a genuine Pro Controller.
func DefaultIdentity() Identity {
	return Identity{
		Name:               DefaultName,
		Class:              DefaultClass,
		SimplePairing:      true,
		SimplePairingDebug: true,
	}
}
