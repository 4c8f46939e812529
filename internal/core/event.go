package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventRoomCreated acknowledges a successful create.
	EventRoomCreated EventKind = iota
	// EventRoomJoined acknowledges a successful join.
	EventRoomJoined
	// EventSignal delivers a payload relayed from another room member.
	EventSignal
	// EventError reports a failed request to the client.
	EventError
)

// Event is sent to clients to describe what happened in the system.
// Payload is carried through untouched; the core never parses it.
type Event struct {
	Kind     EventKind
	RoomID   string
	SelfID   string
	SenderID string
	Payload  []byte
	Message  string
}
