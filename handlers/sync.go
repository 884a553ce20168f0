package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/markbreneman/GuysMusicApp/services"
	"github.com/markbreneman/GuysMusicApp/types"
	"github.com/markbreneman/GuysMusicApp/websocket"
)

// SyncHandler exposes the sync engine and its progress feeds.
type SyncHandler struct {
	engine *services.SyncEngine
	hub    websocket.Hub
	log    zerolog.Logger
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(engine *services.SyncEngine, hub websocket.Hub, log zerolog.Logger) *SyncHandler {
	return &SyncHandler{engine: engine, hub: hub, log: log}
}

type startSyncRequest struct {
	URL string `json:"url" binding:"required"`
}

// StartSync wipes the library and begins a sync against the given manifest
// address. The HTTP call returns once every download has been submitted.
func (h *SyncHandler) StartSync(c *gin.Context) {
	var req startSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must include 'url'"})
		return
	}

	if err := h.engine.StartSync(req.URL); err != nil {
		status := http.StatusBadGateway
		if err == types.ErrInvalidURL {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message":  "sync started",
		"progress": h.engine.Progress(),
	})
}

// Status returns the current download counters.
func (h *SyncHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"progress": h.engine.Progress()})
}

// SyncSocket streams sync progress events over a WebSocket.
func (h *SyncHandler) SyncSocket(c *gin.Context) {
	h.serveSocket(c, types.TopicSync)
}

// AllSocket streams every event topic over a WebSocket.
func (h *SyncHandler) AllSocket(c *gin.Context) {
	h.serveSocket(c, types.TopicAll)
}

func (h *SyncHandler) serveSocket(c *gin.Context, topic string) {
	upgrader := websocket.GetUpgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := websocket.NewClient(h.hub, conn, topic)
	h.hub.RegisterClient(client)
	client.StartPumps()
}
