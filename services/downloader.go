package services

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/markbreneman/GuysMusicApp/types"
)

// Downloader is the background download transport. Submissions are
// fire-and-forget: the caller keeps no per-task state, and all coordination
// happens through the events channel. Each submitted task carries an opaque
// correlation tag that comes back with its completion event; after every
// outstanding task has been delivered, a single terminal event follows.
type Downloader interface {
	Submit(url, tag string)
	Events() <-chan types.DownloadEvent
}

type downloadRequest struct {
	url string
	tag string
}

// httpDownloader fetches songs over plain HTTP with a fixed worker pool.
// Bytes land in a temp directory; the consumer decides where they belong.
type httpDownloader struct {
	client *http.Client
	tmpDir string
	queue  chan downloadRequest
	events chan types.DownloadEvent
	log    zerolog.Logger

	mu          sync.Mutex
	outstanding int
}

// NewHTTPDownloader creates a downloader with the given worker count and
// starts its workers.
func NewHTTPDownloader(tmpDir string, workers int, log zerolog.Logger) Downloader {
	d := &httpDownloader{
		client: &http.Client{Timeout: 5 * time.Minute},
		tmpDir: tmpDir,
		queue:  make(chan downloadRequest, 256),
		events: make(chan types.DownloadEvent, 256),
		log:    log,
	}
	for i := 0; i < workers; i++ {
		go d.worker()
	}
	return d
}

// Submit queues one download. It never blocks the caller for the transfer
// itself, only for queue admission.
func (d *httpDownloader) Submit(url, tag string) {
	d.mu.Lock()
	d.outstanding++
	d.mu.Unlock()
	d.queue <- downloadRequest{url: url, tag: tag}
}

// Events returns the completion event channel.
func (d *httpDownloader) Events() <-chan types.DownloadEvent {
	return d.events
}

func (d *httpDownloader) worker() {
	for req := range d.queue {
		tempPath, err := d.fetch(req.url)
		if err != nil {
			d.log.Warn().Err(err).Str("tag", req.tag).Msg("song download failed")
		}
		d.deliver(types.DownloadEvent{Tag: req.tag, TempPath: tempPath, Err: err})
	}
}

// deliver emits a completion and, when it was the last outstanding transfer,
// the terminal all-finished event.
func (d *httpDownloader) deliver(ev types.DownloadEvent) {
	d.events <- ev

	d.mu.Lock()
	d.outstanding--
	drained := d.outstanding == 0
	d.mu.Unlock()

	if drained {
		d.events <- types.DownloadEvent{Terminal: true}
	}
}

func (d *httpDownloader) fetch(url string) (string, error) {
	resp, err := d.client.Get(url)
	if err != nil {
		return "", &types.RequestFailedError{Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &types.DownloadFailedError{Reason: fmt.Sprintf("server returned %s", resp.Status)}
	}

	tmp, err := os.CreateTemp(d.tmpDir, "download-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", &types.RequestFailedError{Cause: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}
