package proto

import "encoding/json"

// Envelope is the single message shape exchanged over the transport.
// Kind discriminates; the remaining fields are kind-dependent and omitted
// when empty. Payload is opaque and never inspected by the server.
type Envelope struct {
	Kind     string          `json:"kind"`
	RoomID   string          `json:"roomId,omitempty"`
	MyID     string          `json:"myId,omitempty"`
	SenderID string          `json:"senderId,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	Message  string          `json:"message,omitempty"`
}

const (
	// Client to server.
	KindCreate = "create"
	KindJoin   = "join"
	KindSignal = "signal"

	// Server to client. Relayed signals reuse KindSignal with SenderID set.
	KindRoomCreated = "room_created"
	KindRoomJoined  = "room_joined"
	KindError       = "error"
)

// RoomCreated acknowledges a successful create.
func RoomCreated(roomID, myID string) Envelope {
	return Envelope{Kind: KindRoomCreated, RoomID: roomID, MyID: myID}
}

// RoomJoined acknowledges a successful join.
func RoomJoined(roomID, myID string) Envelope {
	return Envelope{Kind: KindRoomJoined, RoomID: roomID, MyID: myID}
}

// Error reports a failure to the requesting client.
func Error(msg string) Envelope {
	return Envelope{Kind: KindError, Message: msg}
}

// Relayed wraps a forwarded payload for the other room members.
func Relayed(senderID string, payload json.RawMessage) Envelope {
	return Envelope{Kind: KindSignal, SenderID: senderID, Payload: payload}
}
