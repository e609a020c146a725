package handler

import (
	"ai-tutor-be/internal/pkg/logger"
	"ai-tutor-be/internal/service"
	internalWS "ai-tutor-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// StreamHandler upgrades session watchers to websocket connections on the hub
type StreamHandler struct {
	sessions service.ISessionService
	hub      *internalWS.Hub
	logger   logger.ILogger
}

func NewStreamHandler(sessions service.ISessionService, hub *internalWS.Hub, log logger.ILogger) *StreamHandler {
	return &StreamHandler{
		sessions: sessions,
		hub:      hub,
		logger:   log,
	}
}

func (h *StreamHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/session/v1/:id/ws", h.ServeWs)
}

// ServeWs streams session updates and audio cues for one session.
func (h *StreamHandler) ServeWs(c *fiber.Ctx) error {
	sessionID := c.Params("id")
	if !h.sessions.Exists(sessionID) {
		return fiber.NewError(fiber.StatusNotFound, "session not found")
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("StreamHandler", "Starting WebSocket stream", map[string]interface{}{"session_id": sessionID})
			internalWS.ServeWs(h.hub, conn, sessionID)
			h.logger.Info("StreamHandler", "WebSocket stream ended", map[string]interface{}{"session_id": sessionID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}
