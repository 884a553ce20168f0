package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/markbreneman/GuysMusicApp/audio"
	"github.com/markbreneman/GuysMusicApp/cmd"
	"github.com/markbreneman/GuysMusicApp/services"
	"github.com/markbreneman/GuysMusicApp/storage"
	"github.com/markbreneman/GuysMusicApp/types"
	"github.com/markbreneman/GuysMusicApp/websocket"
)

// testApp spins up the full HTTP surface over throwaway state directories.
type testApp struct {
	t      *testing.T
	server *httptest.Server
	deps   cmd.Deps
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zerolog.Nop()

	kv, err := storage.NewFileKV(t.TempDir())
	require.NoError(t, err)
	files, err := storage.NewFileStore(t.TempDir(), log)
	require.NoError(t, err)

	hub := websocket.NewHub(log)
	go hub.Run()

	catalog := services.NewCatalogStore(kv, files, log)
	index := services.NewLibraryIndex()
	playlists := services.NewPlaylistStore(kv, log)
	downloader := services.NewHTTPDownloader(t.TempDir(), 1, log)

	syncEngine := services.NewSyncEngine(catalog, index, files, kv, downloader, hub, log)
	require.NoError(t, syncEngine.Reconcile())
	syncEngine.Start()

	player := services.NewPlayer(audio.Disabled(), files, hub, log)

	deps := cmd.Deps{
		Catalog:   catalog,
		Index:     index,
		Files:     files,
		Playlists: playlists,
		Sync:      syncEngine,
		Player:    player,
		Hub:       hub,
		Log:       log,
	}

	server := httptest.NewServer(cmd.NewRouter(deps))
	t.Cleanup(server.Close)

	return &testApp{t: t, server: server, deps: deps}
}

// seedLibrary installs a small catalog directly, bypassing the sync engine.
func (a *testApp) seedLibrary(artists []types.Artist) {
	a.t.Helper()
	require.NoError(a.t, a.deps.Catalog.Replace(artists))
	a.deps.Index.Rebuild(artists)
}

// request performs one JSON API call and decodes the response body.
func (a *testApp) request(method, path string, body any) (int, map[string]any) {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(a.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	decoded := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	if len(raw) > 0 {
		require.NoError(a.t, json.Unmarshal(raw, &decoded))
	}
	return resp.StatusCode, decoded
}

func testLibrary() []types.Artist {
	return []types.Artist{
		{
			ID:   "artist-1",
			Name: "Pink Floyd",
			Albums: []types.Album{
				{
					ID:   "album-1",
					Name: "The Wall",
					Songs: []types.Song{
						{ID: "song-1", Title: "Hey You", Artist: "Pink Floyd", Album: "The Wall", RelativePath: "Pink Floyd/The Wall/Hey You.mp3"},
						{ID: "song-2", Title: "Mother", Artist: "Pink Floyd", Album: "The Wall", RelativePath: "Pink Floyd/The Wall/Mother.mp3"},
					},
				},
			},
		},
	}
}
