package services

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/markbreneman/GuysMusicApp/storage"
	"github.com/markbreneman/GuysMusicApp/types"
)

// KeyCatalog is the key-value store key the catalog blob is persisted under.
const KeyCatalog = "catalog"

// CatalogStore owns the canonical Artist→Album→Song tree. All mutation goes
// through its lock, and every mutation persists the whole collection. Deleting
// the last song of an album prunes the album, and the last album of an artist
// prunes the artist; the tree never holds empty interior nodes.
type CatalogStore struct {
	mu      sync.RWMutex
	artists []types.Artist
	kv      storage.KV
	files   *storage.FileStore
	log     zerolog.Logger
}

// NewCatalogStore creates a catalog store backed by kv, with song file
// cleanup delegated to files.
func NewCatalogStore(kv storage.KV, files *storage.FileStore, log zerolog.Logger) *CatalogStore {
	return &CatalogStore{kv: kv, files: files, log: log}
}

// Load restores the persisted catalog. A missing blob means an empty library.
func (c *CatalogStore) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var artists []types.Artist
	ok, err := c.kv.Get(KeyCatalog, &artists)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	if ok {
		c.artists = artists
	}
	return nil
}

// Artists returns a deep copy of the tree so callers can never mutate the
// canonical copy.
func (c *CatalogStore) Artists() []types.Artist {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyArtists(c.artists)
}

// AllSongs returns every song in the catalog, in tree order.
func (c *CatalogStore) AllSongs() []types.Song {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var songs []types.Song
	for _, artist := range c.artists {
		for _, album := range artist.Albums {
			songs = append(songs, album.Songs...)
		}
	}
	return songs
}

// SongByID looks up a song by its id.
func (c *CatalogStore) SongByID(id string) (types.Song, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, artist := range c.artists {
		for _, album := range artist.Albums {
			for _, song := range album.Songs {
				if song.ID == id {
					return song, true
				}
			}
		}
	}
	return types.Song{}, false
}

// HasSongAtPath reports whether some catalog song resolves to rel. The sync
// engine uses it to discard stale completions from a previous session.
func (c *CatalogStore) HasSongAtPath(rel string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, artist := range c.artists {
		for _, album := range artist.Albums {
			for _, song := range album.Songs {
				if song.RelativePath == rel {
					return true
				}
			}
		}
	}
	return false
}

// Replace swaps in a whole new tree and persists it. The old tree is not
// merged; callers see either the full new catalog or nothing.
func (c *CatalogStore) Replace(artists []types.Artist) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.artists = copyArtists(artists)
	return c.persistLocked()
}

// Wipe clears the in-memory tree and removes the persisted blob.
func (c *CatalogStore) Wipe() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.artists = nil
	if err := c.kv.Delete(KeyCatalog); err != nil {
		return fmt.Errorf("failed to wipe catalog: %w", err)
	}
	return nil
}

// DeleteSong removes one song, pruning its album and artist if they empty
// out, and deletes the song's file.
func (c *CatalogStore) DeleteSong(songID string) error {
	c.mu.Lock()

	var removed []types.Song
	for ai := range c.artists {
		artist := &c.artists[ai]
		for bi := range artist.Albums {
			album := &artist.Albums[bi]
			for si, song := range album.Songs {
				if song.ID != songID {
					continue
				}
				removed = append(removed, song)
				album.Songs = append(album.Songs[:si], album.Songs[si+1:]...)
				if len(album.Songs) == 0 {
					artist.Albums = append(artist.Albums[:bi], artist.Albums[bi+1:]...)
				}
				if len(artist.Albums) == 0 {
					c.artists = append(c.artists[:ai], c.artists[ai+1:]...)
				}
				err := c.persistLocked()
				c.mu.Unlock()
				c.removeFiles(removed)
				return err
			}
		}
	}

	c.mu.Unlock()
	return nil // absent song is a no-op
}

// DeleteAlbum removes an album and all its songs, pruning the artist if it
// was the artist's last album.
func (c *CatalogStore) DeleteAlbum(albumID string) error {
	c.mu.Lock()

	var removed []types.Song
	for ai := range c.artists {
		artist := &c.artists[ai]
		for bi, album := range artist.Albums {
			if album.ID != albumID {
				continue
			}
			removed = append(removed, album.Songs...)
			artist.Albums = append(artist.Albums[:bi], artist.Albums[bi+1:]...)
			if len(artist.Albums) == 0 {
				c.artists = append(c.artists[:ai], c.artists[ai+1:]...)
			}
			err := c.persistLocked()
			c.mu.Unlock()
			c.removeFiles(removed)
			return err
		}
	}

	c.mu.Unlock()
	return nil
}

// DeleteArtist removes an artist and everything under it.
func (c *CatalogStore) DeleteArtist(artistID string) error {
	c.mu.Lock()

	var removed []types.Song
	for ai, artist := range c.artists {
		if artist.ID != artistID {
			continue
		}
		for _, album := range artist.Albums {
			removed = append(removed, album.Songs...)
		}
		c.artists = append(c.artists[:ai], c.artists[ai+1:]...)
		err := c.persistLocked()
		c.mu.Unlock()
		c.removeFiles(removed)
		return err
	}

	c.mu.Unlock()
	return nil
}

// DeleteAll clears the catalog and every song file on disk.
func (c *CatalogStore) DeleteAll() error {
	if err := c.Wipe(); err != nil {
		return err
	}
	if err := c.files.Clear(); err != nil {
		return fmt.Errorf("failed to clear song files: %w", err)
	}
	return nil
}

func (c *CatalogStore) persistLocked() error {
	if err := c.kv.Set(KeyCatalog, c.artists); err != nil {
		return fmt.Errorf("failed to persist catalog: %w", err)
	}
	return nil
}

// removeFiles deletes the files of removed songs. Local I/O failures here are
// soft: logged and skipped.
func (c *CatalogStore) removeFiles(songs []types.Song) {
	for _, song := range songs {
		if err := c.files.Remove(song.RelativePath); err != nil {
			c.log.Warn().Err(err).Str("path", song.RelativePath).Msg("could not remove song file")
		}
	}
}

func copyArtists(artists []types.Artist) []types.Artist {
	out := make([]types.Artist, len(artists))
	for i, artist := range artists {
		out[i] = artist
		out[i].Albums = make([]types.Album, len(artist.Albums))
		for j, album := range artist.Albums {
			out[i].Albums[j] = album
			out[i].Albums[j].Songs = append([]types.Song(nil), album.Songs...)
		}
	}
	return out
}
