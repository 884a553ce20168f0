// Package audio abstracts the media-playback collaborator. The playback
// session only ever talks to the Engine interface; decoding and output belong
// to the implementation behind it.
package audio

import "errors"

// Engine is the audio playback collaborator: load/play/pause/seek/volume,
// position and duration queries, and a finished event when a track plays to
// its natural end.
type Engine interface {
	// Load opens the file at path and leaves it paused at position 0.
	Load(path string) error
	Play() error
	Pause() error
	Stop() error
	// Seek moves to an absolute position in seconds.
	Seek(seconds float64) error
	// SetVolume takes a value in [0.0, 1.0].
	SetVolume(v float64) error
	Position() float64
	Duration() float64
	// Finished delivers one value each time a track reaches its natural end.
	Finished() <-chan struct{}
	// Close releases the underlying audio session resource.
	Close() error
}

// ErrUnavailable is returned by the disabled engine.
var ErrUnavailable = errors.New("audio engine unavailable")

// Disabled returns an engine whose Load always fails. The playback session
// treats a failed load as a soft failure, so the rest of the app keeps
// working on hosts without an audio backend.
func Disabled() Engine {
	return disabledEngine{finished: make(chan struct{})}
}

type disabledEngine struct {
	finished chan struct{}
}

func (disabledEngine) Load(string) error       { return ErrUnavailable }
func (disabledEngine) Play() error             { return ErrUnavailable }
func (disabledEngine) Pause() error            { return ErrUnavailable }
func (disabledEngine) Stop() error             { return nil }
func (disabledEngine) Seek(float64) error      { return ErrUnavailable }
func (disabledEngine) SetVolume(float64) error { return nil }
func (disabledEngine) Position() float64       { return 0 }
func (disabledEngine) Duration() float64       { return 0 }
func (disabledEngine) Close() error            { return nil }

func (e disabledEngine) Finished() <-chan struct{} { return e.finished }
