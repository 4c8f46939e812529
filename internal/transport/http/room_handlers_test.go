package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/require"

	"github.com/peerlink/signal-server/internal/proto"
)

func TestAdminListAndDeleteRoom(t *testing.T) {
	ts, _ := startTestServer(t, time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, ts)
	require.NoError(t, wsjson.Write(ctx, conn, proto.Envelope{Kind: proto.KindCreate}))
	created := readEnvelope(t, ctx, conn)
	require.Equal(t, proto.KindRoomCreated, created.Kind)

	// The new room shows up in the listing with one member.
	resp, err := ts.Client().Get(ts.URL + "/api/rooms")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rooms []RoomResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rooms))
	require.Len(t, rooms, 1)
	require.Equal(t, created.RoomID, rooms[0].Code)
	require.Equal(t, 1, rooms[0].Members)

	expires, err := time.Parse(time.RFC3339, rooms[0].ExpiresAt)
	require.NoError(t, err)
	require.True(t, expires.After(time.Now()))

	// Deleting the room closes its members' transports.
	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/rooms/"+created.RoomID, nil)
	require.NoError(t, err)
	resp, err = ts.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, _, err = conn.Read(ctx)
	require.Error(t, err)
	require.Equal(t, websocket.StatusGoingAway, websocket.CloseStatus(err))

	// Gone from the listing; a second delete is a 404.
	resp, err = ts.Client().Get(ts.URL + "/api/rooms")
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rooms))
	resp.Body.Close()
	require.Empty(t, rooms)

	resp, err = ts.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	ts, _ := startTestServer(t, time.Minute)

	resp, err := ts.Client().Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(body), "peerlink_"))
}
