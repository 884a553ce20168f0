package cmd

import (
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/markbreneman/GuysMusicApp/handlers"
	"github.com/markbreneman/GuysMusicApp/middleware"
	"github.com/markbreneman/GuysMusicApp/services"
	"github.com/markbreneman/GuysMusicApp/storage"
	"github.com/markbreneman/GuysMusicApp/websocket"
)

// Deps bundles the service objects the server exposes. Everything is
// constructed once at process start and passed down by reference; there is no
// ambient global lookup.
type Deps struct {
	Catalog   *services.CatalogStore
	Index     *services.LibraryIndex
	Files     *storage.FileStore
	Playlists *services.PlaylistStore
	Sync      *services.SyncEngine
	Player    *services.Player
	Hub       websocket.Hub
	Log       zerolog.Logger
}

// NewRouter builds the gin router over the given services.
func NewRouter(deps Deps) *gin.Engine {
	libraryHandler := handlers.NewLibraryHandler(deps.Catalog, deps.Index, deps.Files, deps.Sync, deps.Log)
	syncHandler := handlers.NewSyncHandler(deps.Sync, deps.Hub, deps.Log)
	playerHandler := handlers.NewPlayerHandler(deps.Player, deps.Catalog, deps.Playlists, deps.Hub, deps.Log)
	playlistHandler := handlers.NewPlaylistHandler(deps.Playlists, deps.Catalog)
	healthHandler := handlers.NewHealthHandler()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.Logging(deps.Log))
	r.Use(middleware.Security())

	r.GET("/health", healthHandler.HealthCheck)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/status", healthHandler.APIStatus)
		apiGroup.GET("/search", libraryHandler.Search)

		libraryGroup := apiGroup.Group("/library")
		{
			libraryGroup.GET("", libraryHandler.GetLibrary)
			libraryGroup.DELETE("", libraryHandler.DeleteLibrary)
			libraryGroup.GET("/songs", libraryHandler.GetSongs)
			libraryGroup.GET("/songs/:id/owner", libraryHandler.GetSongOwner)
			libraryGroup.DELETE("/songs/:id", libraryHandler.DeleteSong)
			libraryGroup.DELETE("/albums/:id", libraryHandler.DeleteAlbum)
			libraryGroup.DELETE("/artists/:id", libraryHandler.DeleteArtist)
		}

		syncGroup := apiGroup.Group("/sync")
		{
			syncGroup.POST("", syncHandler.StartSync)
			syncGroup.GET("/status", syncHandler.Status)
		}

		playerGroup := apiGroup.Group("/player")
		{
			playerGroup.GET("", playerHandler.Status)
			playerGroup.POST("/queue", playerHandler.SetQueue)
			playerGroup.POST("/playpause", playerHandler.PlayPause)
			playerGroup.POST("/next", playerHandler.Next)
			playerGroup.POST("/previous", playerHandler.Previous)
			playerGroup.PUT("/volume", playerHandler.SetVolume)
			playerGroup.PUT("/repeat", playerHandler.SetRepeat)
			playerGroup.PUT("/phase", playerHandler.SetPhase)
		}

		playlistGroup := apiGroup.Group("/playlists")
		{
			playlistGroup.GET("", playlistHandler.List)
			playlistGroup.POST("", playlistHandler.Create)
			playlistGroup.GET("/:id", playlistHandler.Get)
			playlistGroup.PUT("/:id", playlistHandler.Rename)
			playlistGroup.DELETE("/:id", playlistHandler.Delete)
			playlistGroup.POST("/:id/songs", playlistHandler.AddSong)
			playlistGroup.DELETE("/:id/songs/:songId", playlistHandler.RemoveSong)
			playlistGroup.PUT("/:id/songs/:songId", playlistHandler.MoveSong)
		}

		wsGroup := apiGroup.Group("/ws")
		{
			wsGroup.GET("", syncHandler.AllSocket)
			wsGroup.GET("/sync", syncHandler.SyncSocket)
			wsGroup.GET("/player", playerHandler.PlayerSocket)
		}

		apiGroup.GET("/files", libraryHandler.ListFiles)
	}

	return r
}

// StartWebServer starts the HTTP server.
func StartWebServer(port int, deps Deps) {
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := NewRouter(deps)

	portStr := strconv.Itoa(port)
	if serverPort := os.Getenv("SERVER_PORT"); serverPort != "" {
		portStr = serverPort
	}

	deps.Log.Info().Str("port", portStr).Msg("engine API listening")
	if err := r.Run(":" + portStr); err != nil {
		deps.Log.Fatal().Err(err).Msg("failed to start server")
	}
}
