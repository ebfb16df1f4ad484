package lifecycle

import (
	"context"

	"github.com/rigado/procon"
)

// Radio configures the local controller. Every call is synchronous.
type Radio interface {
	// Addr returns the local device address, valid once configured.
	Addr() procon.Addr

	SetScanEnable(enabled bool) error
	ConfigureIdentity(id procon.Identity) error
	PublishServiceRecord(record []byte) (RecordHandle, error)
	RemoveServiceRecord(h RecordHandle) error

	// RegisterChannelOpenObserver makes the platform report channels that
	// peers open on psm. Repeated registration of the same psm is allowed.
	RegisterChannelOpenObserver(psm procon.PSM, o Observer) error
}

// Transport opens host initiated links and channels.
//
// Channels returned by Open are not reported through ChannelOpened, but
// their data and close events are delivered to the given Observer.
type Transport interface {
	OpenLink(ctx context.Context, a procon.Addr) error
	IsLinked(a procon.Addr) bool
	CloseLink(a procon.Addr) error
	Open(ctx context.Context, a procon.Addr, psm procon.PSM, o Observer) (procon.Channel, error)
}

// Observer receives channel events from the platform. Data for a single
// channel must be delivered in arrival order from a single goroutine.
type Observer interface {
	ChannelOpened(ch procon.Channel)
	ChannelData(ch procon.Channel, b []byte)
	ChannelClosed(ch procon.Channel)
}

// PowerObserver receives radio power state changes.
type PowerObserver interface {
	PowerStateChanged(on bool)
}
