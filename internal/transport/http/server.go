package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/peerlink/signal-server/internal/config"
	"github.com/peerlink/signal-server/internal/core"
	"github.com/peerlink/signal-server/internal/metrics"
)

// NewServer builds the HTTP server: WebSocket endpoint, health, metrics,
// and the admin API.
func NewServer(reg *core.Registry, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(LoggerMiddleware(logger), gin.Recovery())

	engine.GET("/health", healthHandler)
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))
	engine.GET("/ws", gin.WrapH(NewWSHandler(reg, cfg, logger)))

	rooms := NewRoomHandlers(reg, logger)
	api := engine.Group("/api")
	api.GET("/rooms", rooms.ListRooms)
	api.DELETE("/rooms/:code", rooms.DeleteRoom)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           engine,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
