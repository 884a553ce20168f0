package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/markbreneman/GuysMusicApp/services"
	"github.com/markbreneman/GuysMusicApp/types"
)

// PlaylistHandler exposes playlist CRUD.
type PlaylistHandler struct {
	playlists *services.PlaylistStore
	catalog   *services.CatalogStore
}

// NewPlaylistHandler creates a new playlist handler.
func NewPlaylistHandler(playlists *services.PlaylistStore, catalog *services.CatalogStore) *PlaylistHandler {
	return &PlaylistHandler{playlists: playlists, catalog: catalog}
}

// List returns every playlist.
func (h *PlaylistHandler) List(c *gin.Context) {
	playlists := h.playlists.All()
	c.JSON(http.StatusOK, gin.H{
		"playlists": playlists,
		"count":     len(playlists),
	})
}

type playlistNameRequest struct {
	Name string `json:"name" binding:"required"`
}

// Create adds a new empty playlist.
func (h *PlaylistHandler) Create(c *gin.Context) {
	var req playlistNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must include 'name'"})
		return
	}

	playlist, err := h.playlists.Create(req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"playlist": playlist})
}

// Get returns one playlist.
func (h *PlaylistHandler) Get(c *gin.Context) {
	playlist, ok := h.playlists.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "playlist not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"playlist": playlist})
}

// Rename changes a playlist's name.
func (h *PlaylistHandler) Rename(c *gin.Context) {
	var req playlistNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must include 'name'"})
		return
	}

	if err := h.playlists.Rename(c.Param("id"), req.Name); err != nil {
		writePlaylistError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "playlist renamed"})
}

// Delete removes a playlist.
func (h *PlaylistHandler) Delete(c *gin.Context) {
	if err := h.playlists.Delete(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "playlist deleted"})
}

type addSongRequest struct {
	SongID string `json:"songId" binding:"required"`
}

// AddSong appends a library song to a playlist; adding a song already in the
// playlist is a no-op.
func (h *PlaylistHandler) AddSong(c *gin.Context) {
	var req addSongRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must include 'songId'"})
		return
	}

	song, ok := h.catalog.SongByID(req.SongID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "song not found"})
		return
	}

	if err := h.playlists.AddSong(c.Param("id"), song); err != nil {
		writePlaylistError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "song added"})
}

// RemoveSong removes a song from a playlist; absent songs are a no-op.
func (h *PlaylistHandler) RemoveSong(c *gin.Context) {
	if err := h.playlists.RemoveSong(c.Param("id"), c.Param("songId")); err != nil {
		writePlaylistError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "song removed"})
}

type moveSongRequest struct {
	Index *int `json:"index" binding:"required"`
}

// MoveSong moves a song to a new position within a playlist.
func (h *PlaylistHandler) MoveSong(c *gin.Context) {
	var req moveSongRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Index == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must include 'index'"})
		return
	}

	if err := h.playlists.MoveSong(c.Param("id"), c.Param("songId"), *req.Index); err != nil {
		writePlaylistError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "song moved"})
}

func writePlaylistError(c *gin.Context, err error) {
	var ge *types.GeneralError
	if errors.As(err, &ge) {
		c.JSON(http.StatusNotFound, gin.H{"error": ge.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
