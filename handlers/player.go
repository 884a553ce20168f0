package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/markbreneman/GuysMusicApp/services"
	"github.com/markbreneman/GuysMusicApp/types"
	"github.com/markbreneman/GuysMusicApp/websocket"
)

// PlayerHandler exposes the playback session.
type PlayerHandler struct {
	player    *services.Player
	catalog   *services.CatalogStore
	playlists *services.PlaylistStore
	hub       websocket.Hub
	log       zerolog.Logger
}

// NewPlayerHandler creates a new player handler.
func NewPlayerHandler(player *services.Player, catalog *services.CatalogStore, playlists *services.PlaylistStore, hub websocket.Hub, log zerolog.Logger) *PlayerHandler {
	return &PlayerHandler{player: player, catalog: catalog, playlists: playlists, hub: hub, log: log}
}

// Status returns a playback session snapshot.
func (h *PlayerHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"player": h.player.Status()})
}

type setQueueRequest struct {
	SongIDs    []string `json:"songIds"`
	PlaylistID string   `json:"playlistId"`
	Start      int      `json:"start"`
	Autoplay   bool     `json:"autoplay"`
}

// SetQueue replaces the playback queue from song ids or a playlist. The
// player copies the songs, so later library mutations never corrupt an
// in-progress queue.
func (h *PlayerHandler) SetQueue(c *gin.Context) {
	var req setQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var songs []types.Song
	switch {
	case req.PlaylistID != "":
		playlist, ok := h.playlists.Get(req.PlaylistID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "playlist not found"})
			return
		}
		songs = playlist.Songs
	default:
		for _, id := range req.SongIDs {
			song, ok := h.catalog.SongByID(id)
			if !ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "unknown song id: " + id})
				return
			}
			songs = append(songs, song)
		}
	}

	if len(songs) == 0 || req.Start < 0 || req.Start >= len(songs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "queue must be non-empty with a valid start index"})
		return
	}

	h.player.SetQueue(songs, req.Start, req.Autoplay)
	c.JSON(http.StatusOK, gin.H{"player": h.player.Status()})
}

// PlayPause toggles playback.
func (h *PlayerHandler) PlayPause(c *gin.Context) {
	h.player.PlayPause()
	c.JSON(http.StatusOK, gin.H{"player": h.player.Status()})
}

// Next skips to the following track.
func (h *PlayerHandler) Next(c *gin.Context) {
	h.player.Next()
	c.JSON(http.StatusOK, gin.H{"player": h.player.Status()})
}

// Previous restarts or moves to the prior track.
func (h *PlayerHandler) Previous(c *gin.Context) {
	h.player.Previous()
	c.JSON(http.StatusOK, gin.H{"player": h.player.Status()})
}

type volumeRequest struct {
	Volume float64 `json:"volume"`
}

// SetVolume applies a clamped volume.
func (h *PlayerHandler) SetVolume(c *gin.Context) {
	var req volumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	h.player.SetVolume(req.Volume)
	c.JSON(http.StatusOK, gin.H{"player": h.player.Status()})
}

type repeatRequest struct {
	Mode types.RepeatMode `json:"mode"`
}

// SetRepeat changes the repeat mode.
func (h *PlayerHandler) SetRepeat(c *gin.Context) {
	var req repeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	switch req.Mode {
	case types.RepeatNone, types.RepeatAll, types.RepeatOne:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be none, all or one"})
		return
	}
	h.player.SetRepeat(req.Mode)
	c.JSON(http.StatusOK, gin.H{"player": h.player.Status()})
}

type phaseRequest struct {
	Phase types.ScenePhase `json:"phase"`
}

// SetPhase records a foreground/background switch from the host.
func (h *PlayerHandler) SetPhase(c *gin.Context) {
	var req phaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	switch req.Phase {
	case types.PhaseForeground, types.PhaseBackground:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "phase must be foreground or background"})
		return
	}
	h.player.SetPhase(req.Phase)
	c.JSON(http.StatusOK, gin.H{"player": h.player.Status()})
}

// PlayerSocket streams playback state events over a WebSocket.
func (h *PlayerHandler) PlayerSocket(c *gin.Context) {
	upgrader := websocket.GetUpgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := websocket.NewClient(h.hub, conn, types.TopicPlayer)
	h.hub.RegisterClient(client)
	client.StartPumps()
}
