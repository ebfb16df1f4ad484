package procon

import "io"

// Flash is the emulated SPI flash a protocol engine serves host reads from.
// It is never written once a session started.
type Flash interface {
	io.ReaderAt
	Size() int
	Bytes() []byte

	FactoryLStickCalibration() []byte
	FactoryRStickCalibration() []byte
	UserLStickCalibration() ([]byte, bool)
	UserRStickCalibration() ([]byte, bool)
}

// Engine is the controller protocol engine driving an active session. It
// writes its own reports to the channel it was built with.
type Engine interface {
	OnBytesReceived(b []byte)
	OnConnectionLost()
}

// EngineFactory builds the engine for a session on the interrupt channel ch.
// host is the local device address.
type EngineFactory func(mem Flash, host Addr, ch Channel) (Engine, error)
