package flash

import (
	"io/ioutil"

	"github.com/pkg/errors"
)

// Load reads a flash dump from path. The file must be exactly size bytes.
func Load(path string, size int) (*Memory, error) {
	b, err := ReadDump(path)
	if err != nil {
		return nil, err
	}
	return New(b, size)
}

// ReadDump reads a dump file without validating it, so a session manager can
// hold the bytes and build a fresh Memory per session.
func ReadDump(path string) ([]byte, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "can't read flash dump")
	}
	return b, nil
}
