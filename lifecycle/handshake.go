package lifecycle

import (
	"io"

	"github.com/pkg/errors"
	"github.com/rigado/procon"
)

const (
	emptyReportLen   = 364
	emptyReportID    = 0xA1
	handshakeReports = 10
)

// TriggerHandshake writes a burst of empty input reports to ch, which makes
// the console start its side of the handshake. The first failed write ends
// the burst.
func TriggerHandshake(ch procon.Channel) error {
	r := make([]byte, emptyReportLen)
	r[0] = emptyReportID

	for i := 0; i < handshakeReports; i++ {
		n, err := ch.Write(r)
		if err == nil && n != len(r) {
			err = io.ErrShortWrite
		}
		if err != nil {
			return &procon.WriteError{
				PSM: ch.PSM(),
				N:   n,
				Err: errors.Wrapf(err, "empty input report %d/%d", i+1, handshakeReports),
			}
		}
	}
	return nil
}
