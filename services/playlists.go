package services

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/markbreneman/GuysMusicApp/storage"
	"github.com/markbreneman/GuysMusicApp/types"
)

// KeyPlaylists is the key-value store key the playlist blob is persisted under.
const KeyPlaylists = "playlists"

// PlaylistStore manages user-created named orderings of songs. Playlists hold
// song copies, not references into the catalog tree; every mutation persists
// the whole collection.
type PlaylistStore struct {
	mu        sync.RWMutex
	playlists []types.Playlist
	kv        storage.KV
	log       zerolog.Logger
}

// NewPlaylistStore creates a playlist store backed by kv.
func NewPlaylistStore(kv storage.KV, log zerolog.Logger) *PlaylistStore {
	return &PlaylistStore{kv: kv, log: log}
}

// Load restores persisted playlists. A missing blob means no playlists.
func (p *PlaylistStore) Load() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var playlists []types.Playlist
	ok, err := p.kv.Get(KeyPlaylists, &playlists)
	if err != nil {
		return fmt.Errorf("failed to load playlists: %w", err)
	}
	if ok {
		p.playlists = playlists
	}
	return nil
}

// All returns a copy of every playlist.
func (p *PlaylistStore) All() []types.Playlist {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]types.Playlist, len(p.playlists))
	for i, pl := range p.playlists {
		out[i] = pl
		out[i].Songs = append([]types.Song(nil), pl.Songs...)
	}
	return out
}

// Get returns the playlist with the given id.
func (p *PlaylistStore) Get(id string) (types.Playlist, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, pl := range p.playlists {
		if pl.ID == id {
			pl.Songs = append([]types.Song(nil), pl.Songs...)
			return pl, true
		}
	}
	return types.Playlist{}, false
}

// Create adds a new empty playlist with the given name.
func (p *PlaylistStore) Create(name string) (types.Playlist, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pl := types.Playlist{ID: uuid.New().String(), Name: name}
	p.playlists = append(p.playlists, pl)
	return pl, p.persistLocked()
}

// Rename changes a playlist's name.
func (p *PlaylistStore) Rename(id, name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.playlists {
		if p.playlists[i].ID == id {
			p.playlists[i].Name = name
			return p.persistLocked()
		}
	}
	return &types.GeneralError{Message: "playlist not found"}
}

// Delete removes a playlist. Deleting an absent playlist is a no-op.
func (p *PlaylistStore) Delete(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.playlists {
		if p.playlists[i].ID == id {
			p.playlists = append(p.playlists[:i], p.playlists[i+1:]...)
			return p.persistLocked()
		}
	}
	return nil
}

// AddSong appends a song to a playlist. Adding a song already present (by id)
// is a no-op; a playlist never holds duplicates.
func (p *PlaylistStore) AddSong(id string, song types.Song) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.playlists {
		if p.playlists[i].ID != id {
			continue
		}
		for _, existing := range p.playlists[i].Songs {
			if existing.ID == song.ID {
				return nil
			}
		}
		p.playlists[i].Songs = append(p.playlists[i].Songs, song)
		return p.persistLocked()
	}
	return &types.GeneralError{Message: "playlist not found"}
}

// RemoveSong removes a song from a playlist by id. Removing an absent song is
// a no-op.
func (p *PlaylistStore) RemoveSong(id, songID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.playlists {
		if p.playlists[i].ID != id {
			continue
		}
		for si, song := range p.playlists[i].Songs {
			if song.ID == songID {
				p.playlists[i].Songs = append(p.playlists[i].Songs[:si], p.playlists[i].Songs[si+1:]...)
				return p.persistLocked()
			}
		}
		return nil
	}
	return &types.GeneralError{Message: "playlist not found"}
}

// MoveSong moves a song to a new position within its playlist.
func (p *PlaylistStore) MoveSong(id, songID string, to int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.playlists {
		if p.playlists[i].ID != id {
			continue
		}
		songs := p.playlists[i].Songs
		from := -1
		for si, song := range songs {
			if song.ID == songID {
				from = si
				break
			}
		}
		if from < 0 {
			return &types.GeneralError{Message: "song not in playlist"}
		}
		if to < 0 || to >= len(songs) {
			return &types.GeneralError{Message: "position out of range"}
		}
		song := songs[from]
		songs = append(songs[:from], songs[from+1:]...)
		songs = append(songs[:to], append([]types.Song{song}, songs[to:]...)...)
		p.playlists[i].Songs = songs
		return p.persistLocked()
	}
	return &types.GeneralError{Message: "playlist not found"}
}

func (p *PlaylistStore) persistLocked() error {
	if err := p.kv.Set(KeyPlaylists, p.playlists); err != nil {
		return fmt.Errorf("failed to persist playlists: %w", err)
	}
	return nil
}
