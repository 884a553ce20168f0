package services

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markbreneman/GuysMusicApp/storage"
	"github.com/markbreneman/GuysMusicApp/types"
)

func newTestPlaylists(t *testing.T) (*PlaylistStore, storage.KV) {
	t.Helper()
	kv, err := storage.NewFileKV(t.TempDir())
	require.NoError(t, err)
	return NewPlaylistStore(kv, zerolog.Nop()), kv
}

func TestPlaylistCreateAndGet(t *testing.T) {
	store, _ := newTestPlaylists(t)

	created, err := store.Create("Road Trip")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Road Trip", created.Name)

	got, ok := store.Get(created.ID)
	require.True(t, ok)
	assert.Equal(t, "Road Trip", got.Name)
	assert.Empty(t, got.Songs)

	_, ok = store.Get("nope")
	assert.False(t, ok)
}

func TestPlaylistPersistsAcrossReload(t *testing.T) {
	store, kv := newTestPlaylists(t)

	created, err := store.Create("Workout")
	require.NoError(t, err)
	require.NoError(t, store.AddSong(created.ID, types.Song{ID: "s1", Title: "Dogs"}))

	reloaded := NewPlaylistStore(kv, zerolog.Nop())
	require.NoError(t, reloaded.Load())

	got, ok := reloaded.Get(created.ID)
	require.True(t, ok)
	assert.Equal(t, "Workout", got.Name)
	require.Len(t, got.Songs, 1)
	assert.Equal(t, "Dogs", got.Songs[0].Title)
}

func TestPlaylistAddSongIsIdempotent(t *testing.T) {
	store, _ := newTestPlaylists(t)
	created, err := store.Create("Favorites")
	require.NoError(t, err)

	song := types.Song{ID: "s1", Title: "Dogs"}
	require.NoError(t, store.AddSong(created.ID, song))
	require.NoError(t, store.AddSong(created.ID, song))

	got, _ := store.Get(created.ID)
	assert.Len(t, got.Songs, 1)
}

func TestPlaylistAddSongUnknownPlaylist(t *testing.T) {
	store, _ := newTestPlaylists(t)

	err := store.AddSong("nope", types.Song{ID: "s1"})
	var ge *types.GeneralError
	assert.ErrorAs(t, err, &ge)
}

func TestPlaylistRemoveSong(t *testing.T) {
	store, _ := newTestPlaylists(t)
	created, err := store.Create("Favorites")
	require.NoError(t, err)
	require.NoError(t, store.AddSong(created.ID, types.Song{ID: "s1"}))
	require.NoError(t, store.AddSong(created.ID, types.Song{ID: "s2"}))

	require.NoError(t, store.RemoveSong(created.ID, "s1"))
	got, _ := store.Get(created.ID)
	require.Len(t, got.Songs, 1)
	assert.Equal(t, "s2", got.Songs[0].ID)

	// Removing a song that is not in the playlist is a no-op.
	require.NoError(t, store.RemoveSong(created.ID, "s1"))
}

func TestPlaylistRename(t *testing.T) {
	store, _ := newTestPlaylists(t)
	created, err := store.Create("Old Name")
	require.NoError(t, err)

	require.NoError(t, store.Rename(created.ID, "New Name"))
	got, _ := store.Get(created.ID)
	assert.Equal(t, "New Name", got.Name)

	err = store.Rename("nope", "Whatever")
	var ge *types.GeneralError
	assert.ErrorAs(t, err, &ge)
}

func TestPlaylistDelete(t *testing.T) {
	store, _ := newTestPlaylists(t)
	created, err := store.Create("Doomed")
	require.NoError(t, err)

	require.NoError(t, store.Delete(created.ID))
	_, ok := store.Get(created.ID)
	assert.False(t, ok)

	// Deleting an absent playlist is a no-op.
	require.NoError(t, store.Delete(created.ID))
}

func TestPlaylistMoveSong(t *testing.T) {
	store, _ := newTestPlaylists(t)
	created, err := store.Create("Ordered")
	require.NoError(t, err)
	for _, id := range []string{"s1", "s2", "s3"} {
		require.NoError(t, store.AddSong(created.ID, types.Song{ID: id}))
	}

	require.NoError(t, store.MoveSong(created.ID, "s3", 0))

	got, _ := store.Get(created.ID)
	ids := make([]string, len(got.Songs))
	for i, song := range got.Songs {
		ids[i] = song.ID
	}
	assert.Equal(t, []string{"s3", "s1", "s2"}, ids)

	err = store.MoveSong(created.ID, "s1", 5)
	var ge *types.GeneralError
	assert.ErrorAs(t, err, &ge)

	err = store.MoveSong(created.ID, "absent", 0)
	assert.ErrorAs(t, err, &ge)
}

func TestPlaylistAllReturnsCopies(t *testing.T) {
	store, _ := newTestPlaylists(t)
	created, err := store.Create("Guarded")
	require.NoError(t, err)
	require.NoError(t, store.AddSong(created.ID, types.Song{ID: "s1", Title: "Dogs"}))

	all := store.All()
	require.Len(t, all, 1)
	all[0].Songs[0].Title = "mutated"

	got, _ := store.Get(created.ID)
	assert.Equal(t, "Dogs", got.Songs[0].Title)
}
