package services

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/markbreneman/GuysMusicApp/audio"
	"github.com/markbreneman/GuysMusicApp/storage"
	"github.com/markbreneman/GuysMusicApp/types"
	"github.com/markbreneman/GuysMusicApp/websocket"
)

const (
	// ForegroundIdleTimeout stops playback after this long paused while the
	// host app is foregrounded.
	ForegroundIdleTimeout = 120 * time.Second
	// BackgroundIdleTimeout applies instead while backgrounded.
	BackgroundIdleTimeout = 60 * time.Second

	// previousRestartThreshold is how far into a track Previous restarts it
	// instead of moving to the prior track.
	previousRestartThreshold = 3.0

	progressSampleInterval = 100 * time.Millisecond
)

// Player owns the playback queue and drives the audio engine. All state lives
// behind one lock; the inactivity timeout is an explicit deadline compared
// against an injected clock, never a detached timer, so a state transition
// that invalidates it simply clears it.
type Player struct {
	engine audio.Engine
	files  *storage.FileStore
	hub    websocket.Hub
	log    zerolog.Logger
	now    func() time.Time

	fgTimeout time.Duration
	bgTimeout time.Duration

	mu           sync.Mutex
	queue        []types.Song
	index        int
	state        types.PlayerState
	repeat       types.RepeatMode
	volume       float64
	progress     float64
	phase        types.ScenePhase
	loaded       bool
	idleDeadline time.Time

	done chan struct{}
}

// NewPlayer creates an idle playback session. hub may be nil.
func NewPlayer(engine audio.Engine, files *storage.FileStore, hub websocket.Hub, log zerolog.Logger) *Player {
	return &Player{
		engine:    engine,
		files:     files,
		hub:       hub,
		log:       log,
		now:       time.Now,
		fgTimeout: ForegroundIdleTimeout,
		bgTimeout: BackgroundIdleTimeout,
		state:     types.StateIdle,
		repeat:    types.RepeatNone,
		volume:    1.0,
		phase:     types.PhaseForeground,
		done:      make(chan struct{}),
	}
}

// Run samples progress, watches the inactivity deadline and consumes the
// engine's finished events. Call in its own goroutine; Close stops it.
func (p *Player) Run() {
	ticker := time.NewTicker(progressSampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case <-p.engine.Finished():
			p.handleTrackEnd()
		case <-ticker.C:
			p.sampleProgress()
			p.checkIdle(p.now())
		}
	}
}

// Close stops the run loop and releases the audio engine.
func (p *Player) Close() {
	close(p.done)
	p.engine.Close()
}

// SetQueue replaces the queue with a copy of songs and loads the song at
// start. Empty queues and out-of-range indices are silent no-ops.
func (p *Player) SetQueue(songs []types.Song, start int, autoplay bool) {
	if len(songs) == 0 || start < 0 || start >= len(songs) {
		return
	}

	p.mu.Lock()
	p.queue = append([]types.Song(nil), songs...)
	p.index = start
	p.loadCurrentLocked(autoplay)
	p.mu.Unlock()

	p.notify()
}

// PlayPause toggles between playing and paused. No-op when idle, and a
// harmless no-op while a song is current but its audio failed to load.
func (p *Player) PlayPause() {
	p.mu.Lock()
	switch p.state {
	case types.StatePlaying:
		p.engine.Pause()
		p.state = types.StatePaused
		p.armIdleLocked()
	case types.StatePaused:
		if !p.loaded {
			p.mu.Unlock()
			return
		}
		p.engine.Play()
		p.state = types.StatePlaying
		p.idleDeadline = time.Time{}
	default:
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	p.notify()
}

// Next moves to the following track, wrapping at the end of the queue.
// Manual navigation ignores the repeat mode.
func (p *Player) Next() {
	p.mu.Lock()
	if len(p.queue) == 0 {
		p.mu.Unlock()
		return
	}
	p.index = (p.index + 1) % len(p.queue)
	p.loadCurrentLocked(p.state == types.StatePlaying)
	p.mu.Unlock()

	p.notify()
}

// Previous restarts the current track when more than three seconds have
// elapsed, otherwise moves to the prior track, wrapping at the front.
func (p *Player) Previous() {
	p.mu.Lock()
	if len(p.queue) == 0 {
		p.mu.Unlock()
		return
	}

	if p.loaded && p.engine.Position() > previousRestartThreshold {
		p.engine.Seek(0)
		p.progress = 0
		p.mu.Unlock()
		p.notify()
		return
	}

	p.index = (p.index - 1 + len(p.queue)) % len(p.queue)
	p.loadCurrentLocked(p.state == types.StatePlaying)
	p.mu.Unlock()

	p.notify()
}

// SetRepeat changes the repeat mode for natural end-of-track handling.
func (p *Player) SetRepeat(mode types.RepeatMode) {
	p.mu.Lock()
	p.repeat = mode
	p.mu.Unlock()

	p.notify()
}

// SetVolume clamps v to [0.0, 1.0] and applies it immediately.
func (p *Player) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}

	p.mu.Lock()
	p.volume = v
	p.engine.SetVolume(v)
	p.mu.Unlock()

	p.notify()
}

// SetPhase records a foreground/background switch. While paused with a song
// loaded this restarts the matching inactivity timer from its full duration;
// elapsed time never carries across a phase switch.
func (p *Player) SetPhase(phase types.ScenePhase) {
	p.mu.Lock()
	p.phase = phase
	if p.state == types.StatePaused && len(p.queue) > 0 {
		p.armIdleLocked()
	}
	p.mu.Unlock()
}

// Status returns a snapshot of the playback session.
func (p *Player) Status() types.PlayerStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	status := types.PlayerStatus{
		State:       p.state,
		Index:       p.index,
		QueueLength: len(p.queue),
		Progress:    p.progress,
		Volume:      p.volume,
		Repeat:      p.repeat,
		Phase:       p.phase,
	}
	if len(p.queue) > 0 {
		song := p.queue[p.index]
		status.Song = &song
	}
	return status
}

// handleTrackEnd reacts to the engine's natural end-of-track event according
// to the repeat mode.
func (p *Player) handleTrackEnd() {
	p.mu.Lock()
	if len(p.queue) == 0 {
		p.mu.Unlock()
		return
	}

	switch {
	case p.repeat == types.RepeatOne:
		p.engine.Seek(0)
		p.engine.Play()
		p.progress = 0
		p.state = types.StatePlaying
	case p.index < len(p.queue)-1:
		p.index++
		p.loadCurrentLocked(true)
	case p.repeat == types.RepeatAll:
		p.index = 0
		p.loadCurrentLocked(true)
	default:
		// RepeatNone on the last track: stop at the start, paused.
		p.engine.Seek(0)
		p.engine.Pause()
		p.progress = 0
		p.state = types.StatePaused
		p.armIdleLocked()
	}
	p.mu.Unlock()

	p.notify()
}

// loadCurrentLocked loads audio for the song at the current index. A failed
// load is a soft failure: the song stays current with no active engine, and
// PlayPause becomes a no-op until a valid song loads.
func (p *Player) loadCurrentLocked(autoplay bool) {
	song := p.queue[p.index]
	p.progress = 0

	abs, err := p.files.Abs(song.RelativePath)
	if err == nil {
		err = p.engine.Load(abs)
	}
	if err != nil {
		p.log.Warn().Err(err).Str("title", song.Title).Msg("could not load audio")
		p.loaded = false
		p.state = types.StatePaused
		p.armIdleLocked()
		return
	}
	p.loaded = true

	if autoplay {
		p.engine.Play()
		p.state = types.StatePlaying
		p.idleDeadline = time.Time{}
	} else {
		p.engine.Pause()
		p.state = types.StatePaused
		p.armIdleLocked()
	}
}

// armIdleLocked restarts the inactivity deadline for the current phase. Only
// one deadline is ever active; entering playback clears it.
func (p *Player) armIdleLocked() {
	timeout := p.fgTimeout
	if p.phase == types.PhaseBackground {
		timeout = p.bgTimeout
	}
	p.idleDeadline = p.now().Add(timeout)
}

// checkIdle tears playback down if the inactivity deadline has passed. It
// reports whether a teardown happened.
func (p *Player) checkIdle(now time.Time) bool {
	p.mu.Lock()
	if p.state != types.StatePaused || p.idleDeadline.IsZero() || now.Before(p.idleDeadline) {
		p.mu.Unlock()
		return false
	}

	p.log.Info().Msg("inactivity timeout, stopping playback")
	p.engine.Stop()
	p.queue = nil
	p.index = 0
	p.loaded = false
	p.progress = 0
	p.state = types.StateIdle
	p.idleDeadline = time.Time{}
	p.mu.Unlock()

	p.notify()
	return true
}

// sampleProgress refreshes the 0.0–1.0 progress value while playing.
func (p *Player) sampleProgress() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != types.StatePlaying || !p.loaded {
		return
	}
	if d := p.engine.Duration(); d > 0 {
		p.progress = p.engine.Position() / d
	}
}

func (p *Player) notify() {
	if p.hub != nil {
		p.hub.BroadcastPlayer(p.Status())
	}
}
