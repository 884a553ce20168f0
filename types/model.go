package types

// Song is a single track in the library. Immutable once created; identity is
// the ID, which is also how playlist membership is checked.
type Song struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Artist       string `json:"artist"`
	Album        string `json:"album"`
	RelativePath string `json:"relativePath"`
}

// Album groups the songs that belong to it. An album with zero songs is never
// kept in the catalog.
type Album struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Songs []Song `json:"songs"`
}

// Artist owns its albums. An artist with zero albums is never kept in the
// catalog.
type Artist struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Albums []Album `json:"albums"`
}

// Playlist is a user-created ordering of songs. Songs are stored by value, so
// deleting a song from the library does not touch playlists that reference it.
type Playlist struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Songs []Song `json:"songs"`
}

// AlbumManifest is one entry of the remote index.json catalog manifest.
type AlbumManifest struct {
	Name   string `json:"name"`
	Artist string `json:"artist"`
	Songs  []Song `json:"songs"`
}

// RepeatMode controls what happens when a track ends naturally.
type RepeatMode string

const (
	RepeatNone RepeatMode = "none"
	RepeatAll  RepeatMode = "all"
	RepeatOne  RepeatMode = "one"
)

// PlayerState is the playback lifecycle state.
type PlayerState string

const (
	StateIdle    PlayerState = "idle"
	StatePaused  PlayerState = "paused"
	StatePlaying PlayerState = "playing"
)

// ScenePhase tracks whether the host app is foregrounded. The inactivity
// timeout is shorter while backgrounded.
type ScenePhase string

const (
	PhaseForeground ScenePhase = "foreground"
	PhaseBackground ScenePhase = "background"
)

// PlayerStatus is the snapshot of the playback session reported to the UI.
type PlayerStatus struct {
	State       PlayerState `json:"state"`
	Song        *Song       `json:"song,omitempty"`
	Index       int         `json:"index"`
	QueueLength int         `json:"queueLength"`
	Progress    float64     `json:"progress"`
	Volume      float64     `json:"volume"`
	Repeat      RepeatMode  `json:"repeat"`
	Phase       ScenePhase  `json:"phase"`
}
