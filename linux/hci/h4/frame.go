package h4

import (
	"time"

	"github.com/pkg/errors"
)

const (
	eventHeaderLength = 3 // type, code, parameter length
	aclHeaderLength   = 5 // type, handle, data length
	frameTimeout      = 500 * time.Millisecond
)

var errIncomplete = errors.New("incomplete frame")

// frame reassembles H4 packets from a byte stream and emits each complete
// packet, type byte included, on out.
type frame struct {
	b       []byte
	timeout time.Time
	out     chan []byte
	pktType byte
}

func newFrame(c chan []byte) *frame {
	return &frame{
		b:   make([]byte, 0, 256),
		out: c,
	}
}

func (f *frame) Assemble(b []byte) {
	switch {
	case len(b) == 0:
		return

	case !f.timeout.IsZero() && time.Now().After(f.timeout):
		// a stale partial frame can't be completed anymore
		f.reset()
	}

	if len(f.b) == 0 {
		if err := f.waitStart(b); err != nil {
			return
		}
	} else {
		f.b = append(f.b, b...)
	}

	rf, err := f.frame()
	if err != nil {
		return
	}
	out := make([]byte, len(rf))
	copy(out, rf)
	f.out <- out

	if len(f.b) > len(rf) {
		rem := make([]byte, len(f.b)-len(rf))
		copy(rem, f.b[len(rf):])
		f.reset()
		f.Assemble(rem)
	} else {
		f.reset()
	}
}

func (f *frame) reset() {
	f.b = make([]byte, 0, 256)
	f.timeout = time.Time{}
}

// waitStart skips bytes up to the first packet type byte.
func (f *frame) waitStart(b []byte) error {
	for i, v := range b {
		if v != eventPacket && v != aclPacket {
			continue
		}
		f.pktType = v
		f.timeout = time.Now().Add(frameTimeout)
		f.b = append(f.b, b[i:]...)
		return nil
	}
	return errors.New("couldn't find start byte")
}

func (f *frame) length() (int, error) {
	switch f.pktType {
	case eventPacket:
		if len(f.b) < eventHeaderLength {
			return 0, errIncomplete
		}
		return int(f.b[2]) + eventHeaderLength, nil

	case aclPacket:
		if len(f.b) < aclHeaderLength {
			return 0, errIncomplete
		}
		return (int(f.b[3]) | int(f.b[4])<<8) + aclHeaderLength, nil

	default:
		return 0, errors.Errorf("invalid packet type %v", f.pktType)
	}
}

func (f *frame) frame() ([]byte, error) {
	tl, err := f.length()
	if err != nil {
		return nil, err
	}
	if len(f.b) < tl {
		return nil, errIncomplete
	}
	return f.b[:tl], nil
}
