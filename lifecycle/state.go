package lifecycle

import "github.com/rigado/procon"

// State is the link state of a Manager.
type State int

const (
	LinkOff State = iota
	Configuring
	Advertising
	Active
)

func (s State) String() string {
	switch s {
	case LinkOff:
		return "link-off"
	case Configuring:
		return "configuring"
	case Advertising:
		return "advertising"
	case Active:
		return "active"
	default:
		return "invalid"
	}
}

// ChannelSlot is either unbound or bound to an open channel.
type ChannelSlot struct {
	ch procon.Channel
}

// Bound returns the channel held by the slot.
func (s ChannelSlot) Bound() (procon.Channel, bool) {
	return s.ch, s.ch != nil
}

// Holds reports whether the slot is bound to ch.
func (s ChannelSlot) Holds(ch procon.Channel) bool {
	return s.ch != nil && s.ch == ch
}

func (s *ChannelSlot) bind(ch procon.Channel) {
	s.ch = ch
}

// release unbinds the slot and returns what it held.
func (s *ChannelSlot) release() (procon.Channel, bool) {
	ch := s.ch
	s.ch = nil
	return ch, ch != nil
}

// EngineSlot is either absent or holds the active protocol engine together
// with the interrupt channel it is bound to.
type EngineSlot struct {
	e  procon.Engine
	ch procon.Channel
}

// Active returns the engine, if any.
func (s EngineSlot) Active() (procon.Engine, bool) {
	return s.e, s.e != nil
}

func (s EngineSlot) boundTo(ch procon.Channel) bool {
	return s.e != nil && s.ch == ch
}

func (s *EngineSlot) activate(e procon.Engine, ch procon.Channel) {
	s.e, s.ch = e, ch
}

func (s *EngineSlot) clear() (procon.Engine, bool) {
	e := s.e
	s.e, s.ch = nil, nil
	return e, e != nil
}

// RecordHandle identifies a published service record on the platform.
type RecordHandle string

// RecordSlot is either unpublished or holds the handle of the published
// service record.
type RecordSlot struct {
	h         RecordHandle
	published bool
}

// Published returns the record handle, if any.
func (s RecordSlot) Published() (RecordHandle, bool) {
	return s.h, s.published
}

func (s *RecordSlot) publish(h RecordHandle) {
	s.h, s.published = h, true
}

func (s *RecordSlot) release() (RecordHandle, bool) {
	h, ok := s.h, s.published
	s.h, s.published = "", false
	return h, ok
}
