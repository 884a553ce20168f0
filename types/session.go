package types

// DownloadSession is the durable record that lets a library sync survive a
// process restart. It is written before any network I/O, and cleared when the
// transport reports every outstanding transfer delivered, when a sync fails,
// or when the library is deleted.
type DownloadSession struct {
	InProgress bool `json:"inProgress"`
	Total      int  `json:"total"`
}

// SyncProgress is the sync engine's counter snapshot for UI display. Completed
// is advisory only; after a restart it is re-derived from the file store.
type SyncProgress struct {
	InProgress bool `json:"inProgress"`
	Completed  int  `json:"completed"`
	Total      int  `json:"total"`
}

// DownloadEvent is delivered by the background download transport. Tag is the
// opaque correlation tag the task was submitted with (the song's relative
// path); TempPath points at the downloaded bytes. A Terminal event carries no
// file and signals that every outstanding transfer has been delivered.
type DownloadEvent struct {
	Tag      string
	TempPath string
	Err      error
	Terminal bool
}
