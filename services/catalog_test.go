package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markbreneman/GuysMusicApp/storage"
	"github.com/markbreneman/GuysMusicApp/types"
)

func newTestCatalog(t *testing.T) (*CatalogStore, *storage.FileStore, storage.KV) {
	t.Helper()

	log := zerolog.Nop()
	kv, err := storage.NewFileKV(t.TempDir())
	require.NoError(t, err)
	files, err := storage.NewFileStore(t.TempDir(), log)
	require.NoError(t, err)
	return NewCatalogStore(kv, files, log), files, kv
}

func seedTree() []types.Artist {
	return []types.Artist{
		{
			ID:   "artist-1",
			Name: "Pink Floyd",
			Albums: []types.Album{
				{
					ID:   "album-1",
					Name: "Animals",
					Songs: []types.Song{
						{ID: "song-1", Title: "Dogs", RelativePath: "Pink Floyd/Animals/Dogs.mp3"},
					},
				},
				{
					ID:   "album-2",
					Name: "The Wall",
					Songs: []types.Song{
						{ID: "song-2", Title: "Hey You", RelativePath: "Pink Floyd/The Wall/Hey You.mp3"},
						{ID: "song-3", Title: "Mother", RelativePath: "Pink Floyd/The Wall/Mother.mp3"},
					},
				},
			},
		},
		{
			ID:   "artist-2",
			Name: "Radiohead",
			Albums: []types.Album{
				{
					ID:   "album-3",
					Name: "OK Computer",
					Songs: []types.Song{
						{ID: "song-4", Title: "Airbag", RelativePath: "Radiohead/OK Computer/Airbag.mp3"},
					},
				},
			},
		},
	}
}

func placeSongFiles(t *testing.T, files *storage.FileStore, artists []types.Artist) {
	t.Helper()
	for _, artist := range artists {
		for _, album := range artist.Albums {
			for _, song := range album.Songs {
				tmp := filepath.Join(t.TempDir(), "blob")
				require.NoError(t, os.WriteFile(tmp, []byte("audio"), 0o644))
				require.NoError(t, files.Place(tmp, song.RelativePath))
			}
		}
	}
}

func TestCatalogPersistsAcrossReload(t *testing.T) {
	catalog, files, kv := newTestCatalog(t)
	require.NoError(t, catalog.Replace(seedTree()))

	reloaded := NewCatalogStore(kv, files, zerolog.Nop())
	require.NoError(t, reloaded.Load())

	assert.Equal(t, catalog.Artists(), reloaded.Artists())
	assert.Len(t, reloaded.AllSongs(), 4)
}

func TestCatalogLoadEmptyStore(t *testing.T) {
	catalog, _, _ := newTestCatalog(t)
	require.NoError(t, catalog.Load())
	assert.Empty(t, catalog.Artists())
}

func TestArtistsReturnsDeepCopy(t *testing.T) {
	catalog, _, _ := newTestCatalog(t)
	require.NoError(t, catalog.Replace(seedTree()))

	artists := catalog.Artists()
	artists[0].Albums[0].Songs[0].Title = "mutated"

	assert.Equal(t, "Dogs", catalog.Artists()[0].Albums[0].Songs[0].Title)
}

func TestSongByID(t *testing.T) {
	catalog, _, _ := newTestCatalog(t)
	require.NoError(t, catalog.Replace(seedTree()))

	song, ok := catalog.SongByID("song-3")
	require.True(t, ok)
	assert.Equal(t, "Mother", song.Title)

	_, ok = catalog.SongByID("nope")
	assert.False(t, ok)
}

func TestHasSongAtPath(t *testing.T) {
	catalog, _, _ := newTestCatalog(t)
	require.NoError(t, catalog.Replace(seedTree()))

	assert.True(t, catalog.HasSongAtPath("Radiohead/OK Computer/Airbag.mp3"))
	assert.False(t, catalog.HasSongAtPath("Radiohead/OK Computer/Gone.mp3"))
}

func TestDeleteSongRemovesFile(t *testing.T) {
	catalog, files, _ := newTestCatalog(t)
	tree := seedTree()
	require.NoError(t, catalog.Replace(tree))
	placeSongFiles(t, files, tree)

	require.NoError(t, catalog.DeleteSong("song-2"))

	_, ok := catalog.SongByID("song-2")
	assert.False(t, ok)
	assert.False(t, files.Exists("Pink Floyd/The Wall/Hey You.mp3"))
	// The album still has a song, so it survives.
	assert.Len(t, catalog.Artists()[0].Albums, 2)
}

func TestDeleteLastSongPrunesAlbumAndArtist(t *testing.T) {
	catalog, files, _ := newTestCatalog(t)
	tree := seedTree()
	require.NoError(t, catalog.Replace(tree))
	placeSongFiles(t, files, tree)

	// song-4 is the only song of Radiohead's only album.
	require.NoError(t, catalog.DeleteSong("song-4"))

	artists := catalog.Artists()
	require.Len(t, artists, 1)
	assert.Equal(t, "Pink Floyd", artists[0].Name)
	assert.False(t, files.Exists("Radiohead/OK Computer/Airbag.mp3"))
}

func TestDeleteAbsentSongIsNoOp(t *testing.T) {
	catalog, _, _ := newTestCatalog(t)
	require.NoError(t, catalog.Replace(seedTree()))

	require.NoError(t, catalog.DeleteSong("nope"))
	assert.Len(t, catalog.AllSongs(), 4)
}

func TestDeleteAlbumCascades(t *testing.T) {
	catalog, files, _ := newTestCatalog(t)
	tree := seedTree()
	require.NoError(t, catalog.Replace(tree))
	placeSongFiles(t, files, tree)

	require.NoError(t, catalog.DeleteAlbum("album-2"))

	assert.Len(t, catalog.Artists()[0].Albums, 1)
	assert.False(t, files.Exists("Pink Floyd/The Wall/Hey You.mp3"))
	assert.False(t, files.Exists("Pink Floyd/The Wall/Mother.mp3"))

	// Deleting the artist's last album prunes the artist too.
	require.NoError(t, catalog.DeleteAlbum("album-1"))
	require.NoError(t, catalog.DeleteAlbum("album-3"))
	assert.Empty(t, catalog.Artists())
}

func TestDeleteArtistRemovesEverything(t *testing.T) {
	catalog, files, _ := newTestCatalog(t)
	tree := seedTree()
	require.NoError(t, catalog.Replace(tree))
	placeSongFiles(t, files, tree)

	require.NoError(t, catalog.DeleteArtist("artist-1"))

	artists := catalog.Artists()
	require.Len(t, artists, 1)
	assert.Equal(t, "Radiohead", artists[0].Name)
	assert.False(t, files.Exists("Pink Floyd/Animals/Dogs.mp3"))
	assert.False(t, files.Exists("Pink Floyd/The Wall/Mother.mp3"))
	assert.True(t, files.Exists("Radiohead/OK Computer/Airbag.mp3"))
}

func TestDeleteAllClearsCatalogAndFiles(t *testing.T) {
	catalog, files, _ := newTestCatalog(t)
	tree := seedTree()
	require.NoError(t, catalog.Replace(tree))
	placeSongFiles(t, files, tree)

	require.NoError(t, catalog.DeleteAll())

	assert.Empty(t, catalog.Artists())
	assert.False(t, files.Exists("Radiohead/OK Computer/Airbag.mp3"))
}

func TestWipeDeletesPersistedBlob(t *testing.T) {
	catalog, files, kv := newTestCatalog(t)
	require.NoError(t, catalog.Replace(seedTree()))

	require.NoError(t, catalog.Wipe())

	reloaded := NewCatalogStore(kv, files, zerolog.Nop())
	require.NoError(t, reloaded.Load())
	assert.Empty(t, reloaded.Artists())
}
