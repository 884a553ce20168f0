package main

import (
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"

	"github.com/markbreneman/GuysMusicApp/audio"
	"github.com/markbreneman/GuysMusicApp/cmd"
	"github.com/markbreneman/GuysMusicApp/config"
	"github.com/markbreneman/GuysMusicApp/logging"
	"github.com/markbreneman/GuysMusicApp/services"
	"github.com/markbreneman/GuysMusicApp/storage"
	"github.com/markbreneman/GuysMusicApp/websocket"
)

func main() {
	config.LoadDotEnv()

	var (
		server  bool
		port    int
		syncURL string
	)
	flag.BoolVar(&server, "server", false, "Start the engine with its local API")
	flag.IntVar(&port, "port", 8080, "Port for the local API")
	flag.StringVar(&syncURL, "sync", "", "Run a one-shot library sync against this manifest URL")
	flag.Parse()

	log := logging.New(logging.Config{Level: config.GetLogLevel(), Format: "console"})

	deps, player := buildApp(log)

	if syncURL == "" {
		syncURL = config.GetEndpoint()
	}

	switch {
	case server:
		go player.Run()
		defer player.Close()
		cmd.StartWebServer(port, deps)
	case syncURL != "":
		runCLISync(deps.Sync, syncURL, log)
	default:
		flag.Usage()
	}
}

// buildApp constructs every service once and wires them together.
func buildApp(log zerolog.Logger) (cmd.Deps, *services.Player) {
	kv, err := storage.NewFileKV(config.GetStateDir())
	if err != nil {
		log.Fatal().Err(err).Msg("could not open state store")
	}

	files, err := storage.NewFileStore(config.GetMusicDir(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("could not open media store")
	}

	tmpDir := config.GetTmpDir()
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("could not create temp directory")
	}

	hub := websocket.NewHub(log)
	go hub.Run()

	catalog := services.NewCatalogStore(kv, files, log)
	if err := catalog.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load catalog, starting empty")
	}

	index := services.NewLibraryIndex()
	index.Rebuild(catalog.Artists())

	playlists := services.NewPlaylistStore(kv, log)
	if err := playlists.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load playlists, starting empty")
	}

	downloader := services.NewHTTPDownloader(tmpDir, config.GetDownloadWorkers(), log)

	syncEngine := services.NewSyncEngine(catalog, index, files, kv, downloader, hub, log)
	// Reconciliation runs before anything else touches download state.
	if err := syncEngine.Reconcile(); err != nil {
		log.Warn().Err(err).Msg("could not reconcile download session")
	}
	syncEngine.Start()

	engine, err := audio.NewMPV(filepath.Join(tmpDir, "mpv.sock"), log)
	if err != nil {
		log.Warn().Err(err).Msg("audio backend unavailable, playback disabled")
		engine = audio.Disabled()
	}

	player := services.NewPlayer(engine, files, hub, log)

	return cmd.Deps{
		Catalog:   catalog,
		Index:     index,
		Files:     files,
		Playlists: playlists,
		Sync:      syncEngine,
		Player:    player,
		Hub:       hub,
		Log:       log,
	}, player
}

// runCLISync performs one library sync and blocks until every background
// download has drained, rendering progress to the terminal.
func runCLISync(engine *services.SyncEngine, remote string, log zerolog.Logger) {
	if err := engine.StartSync(remote); err != nil {
		log.Fatal().Err(err).Msg("sync failed")
	}

	progress := engine.Progress()
	bar := progressbar.NewOptions(progress.Total,
		progressbar.OptionSetDescription("downloading library"),
		progressbar.OptionShowCount(),
	)

	for progress.InProgress {
		time.Sleep(200 * time.Millisecond)
		progress = engine.Progress()
		bar.Set(progress.Completed)
	}
	bar.Finish()
	log.Info().Msg("library sync complete")
}
