package http

import (
	"github.com/peerlink/signal-server/internal/core"
	"github.com/peerlink/signal-server/internal/proto"
)

func outboundFromEvent(event core.Event) proto.Envelope {
	switch event.Kind {
	case core.EventRoomCreated:
		return proto.RoomCreated(event.RoomID, event.SelfID)
	case core.EventRoomJoined:
		return proto.RoomJoined(event.RoomID, event.SelfID)
	case core.EventSignal:
		return proto.Relayed(event.SenderID, event.Payload)
	case core.EventError:
		return proto.Error(event.Message)
	default:
		return proto.Error("internal error")
	}
}
