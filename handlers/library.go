package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/markbreneman/GuysMusicApp/services"
	"github.com/markbreneman/GuysMusicApp/storage"
	"github.com/markbreneman/GuysMusicApp/types"
)

// LibraryHandler exposes the catalog tree, the derived index and the cascade
// deletion operations.
type LibraryHandler struct {
	catalog *services.CatalogStore
	index   *services.LibraryIndex
	files   *storage.FileStore
	sync    *services.SyncEngine
	log     zerolog.Logger
}

// NewLibraryHandler creates a new library handler.
func NewLibraryHandler(catalog *services.CatalogStore, index *services.LibraryIndex, files *storage.FileStore, sync *services.SyncEngine, log zerolog.Logger) *LibraryHandler {
	return &LibraryHandler{catalog: catalog, index: index, files: files, sync: sync, log: log}
}

// GetLibrary returns the whole Artist→Album→Song tree.
func (h *LibraryHandler) GetLibrary(c *gin.Context) {
	artists := h.catalog.Artists()
	c.JSON(http.StatusOK, gin.H{
		"artists": artists,
		"count":   len(artists),
	})
}

// GetSongs returns the flat song list from the derived index.
func (h *LibraryHandler) GetSongs(c *gin.Context) {
	songs := h.index.Songs()
	c.JSON(http.StatusOK, gin.H{
		"songs": songs,
		"count": len(songs),
	})
}

// GetSongOwner reports which artist and album own a song.
func (h *LibraryHandler) GetSongOwner(c *gin.Context) {
	owner, ok := h.index.OwnerOf(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "song not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"owner": owner})
}

// Search matches songs by title, artist or album substring.
func (h *LibraryHandler) Search(c *gin.Context) {
	query := strings.ToLower(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}

	var results []types.Song
	for _, song := range h.index.Songs() {
		if strings.Contains(strings.ToLower(song.Title), query) ||
			strings.Contains(strings.ToLower(song.Artist), query) ||
			strings.Contains(strings.ToLower(song.Album), query) {
			results = append(results, song)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   c.Query("q"),
		"results": results,
	})
}

// DeleteSong removes one song, cascading empty-album and empty-artist prunes.
func (h *LibraryHandler) DeleteSong(c *gin.Context) {
	if err := h.catalog.DeleteSong(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.index.Rebuild(h.catalog.Artists())
	c.JSON(http.StatusOK, gin.H{"message": "song deleted"})
}

// DeleteAlbum removes an album and its songs.
func (h *LibraryHandler) DeleteAlbum(c *gin.Context) {
	if err := h.catalog.DeleteAlbum(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.index.Rebuild(h.catalog.Artists())
	c.JSON(http.StatusOK, gin.H{"message": "album deleted"})
}

// DeleteArtist removes an artist and everything under it.
func (h *LibraryHandler) DeleteArtist(c *gin.Context) {
	if err := h.catalog.DeleteArtist(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.index.Rebuild(h.catalog.Artists())
	c.JSON(http.StatusOK, gin.H{"message": "artist deleted"})
}

// DeleteLibrary wipes the whole library and any open download session.
func (h *LibraryHandler) DeleteLibrary(c *gin.Context) {
	if err := h.sync.DeleteLibrary(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "library deleted"})
}

// ListFiles reports every song file present in the file store.
func (h *LibraryHandler) ListFiles(c *gin.Context) {
	files, err := h.files.List()
	if err != nil {
		h.log.Error().Err(err).Msg("error scanning song files")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to scan files"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"files": files,
		"count": len(files),
	})
}
