package procon

import "time"

// Console is what is remembered about a console that had a session.
type Console struct {
	Addr     string    `json:"addr"`
	LastSeen time.Time `json:"lastSeen"`
}

// ConsoleCache remembers, per local adapter address, the console last
// served, so a later run can reconnect without pairing mode.
type ConsoleCache interface {
	Store(host Addr, c Console, replace bool) error
	Load(host Addr) (Console, error)
	Clear() error
}
