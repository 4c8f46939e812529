package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/peerlink/signal-server/internal/config"
	"github.com/peerlink/signal-server/internal/core"
	"github.com/peerlink/signal-server/internal/metrics"
	"github.com/peerlink/signal-server/internal/proto"
)

// errRoomClosed marks a connection shut down server-side because its room
// was expired or torn down. Teardown is silent: no envelope precedes it.
var errRoomClosed = errors.New("room closed")

// WSHandler upgrades HTTP connections and bridges them to the registry.
type WSHandler struct {
	reg *core.Registry
	cfg *config.Config
	log *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(reg *core.Registry, cfg *config.Config, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{reg: reg, cfg: cfg, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	if h.cfg.MaxMessageBytes > 0 {
		conn.SetReadLimit(h.cfg.MaxMessageBytes)
	}

	client := core.NewClient(uuid.NewString())
	metrics.ConnectionsLive.Inc()
	h.log.Debug().Str("client", client.ID).Msg("client connected")

	defer func() {
		h.reg.RemoveMember(client.Room(), client)
		client.Close()
		metrics.ConnectionsLive.Dec()
		h.log.Debug().Str("client", client.ID).Msg("client disconnected")
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	if errors.Is(err, errRoomClosed) {
		conn.Close(websocket.StatusGoingAway, "room closed")
		return
	}

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Str("client", client.ID).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

// readLoop decodes inbound envelopes and routes them. Malformed frames are
// dropped without reply; only transport failures end the loop.
func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		var env proto.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			h.log.Debug().Err(err).Str("client", client.ID).Msg("dropped malformed envelope")
			continue
		}

		h.route(client, env)
	}
}

// route dispatches one decoded envelope. Unknown kinds are dropped.
func (h *WSHandler) route(client *core.Client, env proto.Envelope) {
	switch env.Kind {
	case proto.KindCreate:
		snap, err := h.reg.Create(client)
		if err != nil {
			client.TrySend(core.Event{Kind: core.EventError, Message: err.Error()})
			return
		}
		h.leavePrevious(client, snap.RoomID)
		client.SetRoom(snap.RoomID)
		client.TrySend(core.Event{Kind: core.EventRoomCreated, RoomID: snap.RoomID, SelfID: snap.SelfID})

	case proto.KindJoin:
		if env.RoomID == "" {
			h.log.Debug().Str("client", client.ID).Msg("dropped join without room id")
			return
		}
		snap, err := h.reg.Join(env.RoomID, client)
		if err != nil {
			client.TrySend(core.Event{Kind: core.EventError, Message: err.Error()})
			return
		}
		h.leavePrevious(client, snap.RoomID)
		client.SetRoom(snap.RoomID)
		client.TrySend(core.Event{Kind: core.EventRoomJoined, RoomID: snap.RoomID, SelfID: snap.SelfID})

	case proto.KindSignal:
		h.reg.Relay(client, env.Payload)

	default:
		h.log.Debug().Str("client", client.ID).Str("kind", env.Kind).Msg("dropped unknown envelope kind")
	}
}

// leavePrevious removes the client from its prior room, if any. Clients
// belong to at most one room at a time, so switching rooms implies leaving
// the old one; re-joining the current room is not a switch.
func (h *WSHandler) leavePrevious(client *core.Client, next string) {
	if prev := client.Room(); prev != "" && prev != next {
		h.reg.RemoveMember(prev, client)
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		select {
		case event := <-client.Events:
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				h.log.Warn().Err(err).Str("client", client.ID).Msg("write ws event")
				return err
			}
		case <-client.Done():
			return errRoomClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
