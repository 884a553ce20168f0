package services

import (
	"sync"

	"github.com/markbreneman/GuysMusicApp/types"
)

// SongOwner names the artist and album a song belongs to.
type SongOwner struct {
	ArtistID   string `json:"artistId"`
	ArtistName string `json:"artistName"`
	AlbumID    string `json:"albumId"`
	AlbumName  string `json:"albumName"`
}

// LibraryIndex is a derived, read-only view over the catalog tree. It is
// never mutated in place, only replaced wholesale by Rebuild after the
// catalog changes.
type LibraryIndex struct {
	mu     sync.RWMutex
	owners map[string]SongOwner
	songs  []types.Song
}

// NewLibraryIndex creates an empty index.
func NewLibraryIndex() *LibraryIndex {
	return &LibraryIndex{owners: make(map[string]SongOwner)}
}

// Rebuild replaces the index with a fresh view over artists.
func (x *LibraryIndex) Rebuild(artists []types.Artist) {
	owners := make(map[string]SongOwner)
	var songs []types.Song
	for _, artist := range artists {
		for _, album := range artist.Albums {
			for _, song := range album.Songs {
				owners[song.ID] = SongOwner{
					ArtistID:   artist.ID,
					ArtistName: artist.Name,
					AlbumID:    album.ID,
					AlbumName:  album.Name,
				}
				songs = append(songs, song)
			}
		}
	}

	x.mu.Lock()
	x.owners = owners
	x.songs = songs
	x.mu.Unlock()
}

// OwnerOf reports which artist and album own the song with the given id.
func (x *LibraryIndex) OwnerOf(songID string) (SongOwner, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	owner, ok := x.owners[songID]
	return owner, ok
}

// Songs returns the flat song list in tree order.
func (x *LibraryIndex) Songs() []types.Song {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return append([]types.Song(nil), x.songs...)
}
