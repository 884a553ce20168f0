package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexOwnerOf(t *testing.T) {
	index := NewLibraryIndex()
	index.Rebuild(seedTree())

	owner, ok := index.OwnerOf("song-2")
	require.True(t, ok)
	assert.Equal(t, "artist-1", owner.ArtistID)
	assert.Equal(t, "Pink Floyd", owner.ArtistName)
	assert.Equal(t, "album-2", owner.AlbumID)
	assert.Equal(t, "The Wall", owner.AlbumName)

	_, ok = index.OwnerOf("nope")
	assert.False(t, ok)
}

func TestIndexSongsInTreeOrder(t *testing.T) {
	index := NewLibraryIndex()
	index.Rebuild(seedTree())

	songs := index.Songs()
	require.Len(t, songs, 4)
	assert.Equal(t, "song-1", songs[0].ID)
	assert.Equal(t, "song-4", songs[3].ID)
}

func TestIndexRebuildReplacesWholesale(t *testing.T) {
	index := NewLibraryIndex()
	index.Rebuild(seedTree())

	index.Rebuild(nil)

	assert.Empty(t, index.Songs())
	_, ok := index.OwnerOf("song-1")
	assert.False(t, ok)
}
