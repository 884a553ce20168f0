package types

// StoredFile describes one song file present in the media store.
type StoredFile struct {
	Path     string         `json:"path"`
	Size     int64          `json:"size"`
	Metadata *AudioMetadata `json:"metadata,omitempty"`
}

// AudioMetadata is what the tag probe could read from a stored song file.
// Fields the tags did not carry are filled from the file's relative path.
type AudioMetadata struct {
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Album       string `json:"album"`
	TrackNumber int    `json:"trackNumber,omitempty"`
}
