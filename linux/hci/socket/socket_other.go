//go:build !linux
// +build !linux

package socket

import "github.com/rigado/procon"

// Socket is unavailable outside Linux.
type Socket struct{}

// NewSocket is a dummy function for non-Linux platform.
func NewSocket(id int) (*Socket, error) {
	return nil, procon.ErrNotSupported
}

func (s *Socket) ID() int                     { return -1 }
func (s *Socket) Read(p []byte) (int, error)  { return 0, procon.ErrNotSupported }
func (s *Socket) Write(p []byte) (int, error) { return 0, procon.ErrNotSupported }
func (s *Socket) Close() error                { return nil }
