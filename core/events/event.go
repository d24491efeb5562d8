package events

// Event represents a structured state change emitted by the vault engine.
type Event interface {
	EventType() string
}

// Emitter broadcasts events to downstream subscribers (e.g. RPC, indexers).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter satisfies the Emitter interface while discarding all events. It
// is the default wiring when a component does not care about emissions.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

// Record is the concrete payload broadcast for every vault state change.
// Events carry flat string attributes so subscribers can index them without
// decoding domain types.
type Record struct {
	Type       string
	Attributes map[string]string
}

// EventType implements the Event interface.
func (r *Record) EventType() string {
	if r == nil {
		return ""
	}
	return r.Type
}
