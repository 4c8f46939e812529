package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/peerlink/signal-server/internal/core"
)

// RoomHandlers provides the administrative HTTP surface over the registry.
type RoomHandlers struct {
	reg *core.Registry
	log *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(reg *core.Registry, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{reg: reg, log: logger}
}

// ErrorResponse is the JSON error body for admin endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RoomResponse describes one live room in API responses.
type RoomResponse struct {
	Code      string `json:"code"`
	Members   int    `json:"members"`
	ExpiresAt string `json:"expires_at"`
}

// ListRooms returns a snapshot of all live rooms.
// GET /api/rooms
func (h *RoomHandlers) ListRooms(c *gin.Context) {
	infos := h.reg.Rooms()

	response := make([]RoomResponse, 0, len(infos))
	for _, info := range infos {
		response = append(response, RoomResponse{
			Code:      info.Code,
			Members:   info.Members,
			ExpiresAt: info.ExpiresAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, response)
}

// DeleteRoom tears a room down immediately, closing every member connection.
// DELETE /api/rooms/:code
func (h *RoomHandlers) DeleteRoom(c *gin.Context) {
	code := c.Param("code")
	if !h.reg.Teardown(code) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
		return
	}

	h.log.Info().Str("room", code).Msg("room deleted via admin api")
	c.Status(http.StatusNoContent)
}
