package procon

// DeviceOption is an interface which the session manager implements to allow
// using configuration options.
type DeviceOption interface {
	SetIdentity(Identity) error
	SetServiceRecord([]byte) error
	SetFlashDump([]byte) error
	SetFlashSize(int) error
	SetEventQueueSize(int) error
	SetLogger(Logger) error
	SetEngineFactory(EngineFactory) error
}

// An Option is a configuration function, which configures the device.
type Option func(DeviceOption) error

// OptIdentity overrides the name, class and pairing mode presented to peers.
func OptIdentity(id Identity) Option {
	return func(opt DeviceOption) error {
		return opt.SetIdentity(id)
	}
}

// OptDeviceName sets only the local name of the default identity.
func OptDeviceName(name string) Option {
	return func(opt DeviceOption) error {
		id := DefaultIdentity()
		id.Name = name
		return opt.SetIdentity(id)
	}
}

// OptServiceRecord replaces the published SDP record.
func OptServiceRecord(record []byte) Option {
	return func(opt DeviceOption) error {
		return opt.SetServiceRecord(record)
	}
}

// OptFlashDump seeds every session's flash memory from a dump instead of the
// factory defaults.
func OptFlashDump(dump []byte) Option {
	return func(opt DeviceOption) error {
		return opt.SetFlashDump(dump)
	}
}

// OptFlashSize overrides the emulated flash size.
func OptFlashSize(size int) Option {
	return func(opt DeviceOption) error {
		return opt.SetFlashSize(size)
	}
}

// OptEventQueueSize sets the depth of the event queue.
func OptEventQueueSize(n int) Option {
	return func(opt DeviceOption) error {
		return opt.SetEventQueueSize(n)
	}
}

// OptLogger sets the logger.
func OptLogger(l Logger) Option {
	return func(opt DeviceOption) error {
		return opt.SetLogger(l)
	}
}

// OptEngineFactory sets the constructor of the controller protocol engine.
func OptEngineFactory(f EngineFactory) Option {
	return func(opt DeviceOption) error {
		return opt.SetEngineFactory(f)
	}
}
