package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/markbreneman/GuysMusicApp/storage"
	"github.com/markbreneman/GuysMusicApp/types"
	"github.com/markbreneman/GuysMusicApp/websocket"
)

// KeyDownloadSession is the key-value store key the download session record
// is persisted under.
const KeyDownloadSession = "download_session"

// SyncEngine replaces the local library from a remote catalog manifest and
// fans the per-song transfers out to the background download transport.
//
// The engine keeps no load-bearing state in memory: the persisted
// DownloadSession plus the files actually on disk are the source of truth, so
// a process restart mid-download reconciles instead of restarting. In-memory
// counters exist only for UI display.
type SyncEngine struct {
	catalog *CatalogStore
	index   *LibraryIndex
	files   *storage.FileStore
	kv      storage.KV
	dl      Downloader
	hub     websocket.Hub
	client  *http.Client
	log     zerolog.Logger

	mu        sync.Mutex
	syncing   bool
	completed int
	total     int
}

// NewSyncEngine creates a sync engine. hub may be nil.
func NewSyncEngine(catalog *CatalogStore, index *LibraryIndex, files *storage.FileStore, kv storage.KV, dl Downloader, hub websocket.Hub, log zerolog.Logger) *SyncEngine {
	return &SyncEngine{
		catalog: catalog,
		index:   index,
		files:   files,
		kv:      kv,
		dl:      dl,
		hub:     hub,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}
}

// Start launches the completion-event loop. Call once, after Reconcile.
func (e *SyncEngine) Start() {
	go e.run()
}

func (e *SyncEngine) run() {
	for ev := range e.dl.Events() {
		if ev.Terminal {
			e.finishSession()
			continue
		}
		e.handleCompletion(ev)
	}
}

// StartSync wipes the local library, fetches the manifest at remote, installs
// the new catalog and submits one background download per song. It returns
// once every download has been submitted; transfers complete asynchronously.
func (e *SyncEngine) StartSync(remote string) error {
	e.mu.Lock()
	if e.syncing {
		e.mu.Unlock()
		return &types.GeneralError{Message: "a sync is already in progress"}
	}
	e.syncing = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.syncing = false
		e.mu.Unlock()
	}()

	// Reset phase. The session record is persisted before any network I/O:
	// if the process dies right after this write, restart reconciliation must
	// conclude a sync was in progress.
	if err := e.reset(); err != nil {
		return err
	}

	manifest, base, err := e.fetchManifest(remote)
	if err != nil {
		return e.abortSync(err)
	}

	artists := materialize(manifest)
	if err := e.catalog.Replace(artists); err != nil {
		return e.abortSync(err)
	}
	e.index.Rebuild(artists)

	// The session record and counters must be in place before the first
	// submission: the event loop consumes completions concurrently, and a fast
	// transport can drain (terminal event included) while the fan-out is still
	// running.
	songs := e.catalog.AllSongs()
	if err := e.kv.Set(KeyDownloadSession, types.DownloadSession{InProgress: true, Total: len(songs)}); err != nil {
		return e.abortSync(err)
	}

	e.mu.Lock()
	e.completed = 0
	e.total = len(songs)
	e.mu.Unlock()

	if len(songs) == 0 {
		// Nothing to transfer means no terminal event will ever arrive.
		e.log.Info().Msg("manifest holds no songs, sync complete")
		e.finishSession()
		return nil
	}

	for _, song := range songs {
		e.dl.Submit(songURL(base, song.RelativePath), song.RelativePath)
	}

	e.log.Info().Int("songs", len(songs)).Int("artists", len(artists)).Msg("sync started")
	if e.hub != nil {
		e.hub.BroadcastSync("progress", 0, len(songs), "sync started")
	}
	return nil
}

// reset clears every trace of the old library so no stale song can be served
// mid-sync, then persists an open download session.
func (e *SyncEngine) reset() error {
	if err := e.catalog.Wipe(); err != nil {
		return err
	}
	e.index.Rebuild(nil)
	if err := e.files.Clear(); err != nil {
		return err
	}
	if err := e.kv.Set(KeyDownloadSession, types.DownloadSession{InProgress: true}); err != nil {
		return fmt.Errorf("failed to persist download session: %w", err)
	}
	return nil
}

// abortSync flips the session off so the user can retry without manual
// cleanup. The catalog stays in whatever state the failed sync left it.
func (e *SyncEngine) abortSync(cause error) error {
	if err := e.kv.Set(KeyDownloadSession, types.DownloadSession{}); err != nil {
		e.log.Error().Err(err).Msg("could not clear download session after failed sync")
	}

	e.mu.Lock()
	e.completed = 0
	e.total = 0
	e.mu.Unlock()

	e.log.Warn().Err(cause).Msg("sync failed")
	if e.hub != nil {
		e.hub.BroadcastSync("error", 0, 0, cause.Error())
	}
	return cause
}

// fetchManifest GETs and decodes the remote index. It also returns the base
// URL per-song paths are resolved against (the manifest URL with its last
// path component stripped).
func (e *SyncEngine) fetchManifest(remote string) ([]types.AlbumManifest, *url.URL, error) {
	u, err := url.Parse(remote)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, nil, types.ErrInvalidURL
	}

	resp, err := e.client.Get(u.String())
	if err != nil {
		return nil, nil, &types.RequestFailedError{Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, &types.DownloadFailedError{Reason: fmt.Sprintf("manifest request returned %s", resp.Status)}
	}

	var manifest []types.AlbumManifest
	if err := json.NewDecoder(resp.Body).Decode(&manifest); err != nil {
		return nil, nil, &types.DecodingFailedError{Cause: err}
	}

	base := *u
	base.Path = path.Dir(base.Path)
	if base.Path == "." {
		base.Path = ""
	}
	return manifest, &base, nil
}

// materialize groups manifest entries into the Artist→Album→Song tree, with
// artists and albums sorted by name and songs by title.
func materialize(manifest []types.AlbumManifest) []types.Artist {
	byArtist := make(map[string][]types.Album)
	for _, entry := range manifest {
		songs := append([]types.Song(nil), entry.Songs...)
		sort.Slice(songs, func(i, j int) bool { return songs[i].Title < songs[j].Title })
		byArtist[entry.Artist] = append(byArtist[entry.Artist], types.Album{
			ID:    uuid.New().String(),
			Name:  entry.Name,
			Songs: songs,
		})
	}

	names := make([]string, 0, len(byArtist))
	for name := range byArtist {
		names = append(names, name)
	}
	sort.Strings(names)

	artists := make([]types.Artist, 0, len(names))
	for _, name := range names {
		albums := byArtist[name]
		sort.Slice(albums, func(i, j int) bool { return albums[i].Name < albums[j].Name })
		artists = append(artists, types.Artist{
			ID:     uuid.New().String(),
			Name:   name,
			Albums: albums,
		})
	}
	return artists
}

// songURL joins the manifest base with the percent-encoded relative path.
func songURL(base *url.URL, rel string) string {
	segments := strings.Split(rel, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.TrimSuffix(base.String(), "/") + "/" + strings.Join(segments, "/")
}

// handleCompletion moves one delivered download into the file store at the
// path encoded in its correlation tag and bumps the completion counter.
// Completions may arrive for a session started before the last relaunch;
// those whose tag no longer resolves to a catalog song are discarded.
func (e *SyncEngine) handleCompletion(ev types.DownloadEvent) {
	if ev.Err != nil {
		if ev.TempPath != "" {
			os.Remove(ev.TempPath)
		}
		e.log.Warn().Err(ev.Err).Str("tag", ev.Tag).Msg("download completed with error")
		if e.hub != nil {
			e.hub.BroadcastSync("error", e.snapshotCompleted(), e.snapshotTotal(), ev.Err.Error())
		}
		return
	}

	if !e.catalog.HasSongAtPath(ev.Tag) {
		os.Remove(ev.TempPath)
		e.log.Info().Str("tag", ev.Tag).Msg("discarding download from a stale session")
		return
	}

	if err := e.files.Place(ev.TempPath, ev.Tag); err != nil {
		e.log.Warn().Err(err).Str("tag", ev.Tag).Msg("could not place downloaded song")
		return
	}

	if md := e.files.ProbeMetadata(ev.Tag); md != nil {
		e.log.Debug().Str("title", md.Title).Str("artist", md.Artist).Msg("song downloaded")
	}

	e.mu.Lock()
	e.completed++
	completed, total := e.completed, e.total
	e.mu.Unlock()

	if e.hub != nil {
		e.hub.BroadcastSync("progress", completed, total,
			fmt.Sprintf("downloaded %d of %d songs", completed, total))
	}
}

// finishSession handles the transport's terminal event: every outstanding
// transfer has been delivered, so the download session closes and the
// counters go back to idle.
func (e *SyncEngine) finishSession() {
	if err := e.kv.Set(KeyDownloadSession, types.DownloadSession{}); err != nil {
		e.log.Error().Err(err).Msg("could not clear download session")
	}

	e.mu.Lock()
	e.completed = 0
	e.total = 0
	e.mu.Unlock()

	e.log.Info().Msg("all downloads finished")
	if e.hub != nil {
		e.hub.BroadcastSync("complete", 0, 0, "library sync complete")
	}
}

// Reconcile restores the download counters after a process restart. If the
// persisted session says a sync was in flight, the total comes from the
// session record and the completed count is re-derived by checking which
// catalog songs already exist on disk — file-system truth is the only
// reliable signal after an arbitrary-length suspension. No downloads are
// re-issued; the transport is assumed to still be draining.
func (e *SyncEngine) Reconcile() error {
	var session types.DownloadSession
	ok, err := e.kv.Get(KeyDownloadSession, &session)
	if err != nil {
		return fmt.Errorf("failed to read download session: %w", err)
	}
	if !ok || !session.InProgress {
		return nil
	}

	completed := 0
	for _, song := range e.catalog.AllSongs() {
		if e.files.Exists(song.RelativePath) {
			completed++
		}
	}

	e.mu.Lock()
	e.completed = completed
	e.total = session.Total
	e.mu.Unlock()

	e.log.Info().Int("completed", completed).Int("total", session.Total).Msg("reconciled in-flight download session")
	return nil
}

// Progress returns the current sync counters for UI display.
func (e *SyncEngine) Progress() types.SyncProgress {
	e.mu.Lock()
	defer e.mu.Unlock()

	var session types.DownloadSession
	if ok, err := e.kv.Get(KeyDownloadSession, &session); err != nil || !ok {
		session.InProgress = false
	}
	return types.SyncProgress{
		InProgress: session.InProgress,
		Completed:  e.completed,
		Total:      e.total,
	}
}

// DeleteLibrary removes the whole library: catalog, song files and any open
// download session.
func (e *SyncEngine) DeleteLibrary() error {
	if err := e.catalog.DeleteAll(); err != nil {
		return err
	}
	e.index.Rebuild(nil)

	if err := e.kv.Set(KeyDownloadSession, types.DownloadSession{}); err != nil {
		return fmt.Errorf("failed to clear download session: %w", err)
	}

	e.mu.Lock()
	e.completed = 0
	e.total = 0
	e.mu.Unlock()
	return nil
}

func (e *SyncEngine) snapshotCompleted() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.completed
}

func (e *SyncEngine) snapshotTotal() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.total
}
