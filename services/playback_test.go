package services

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markbreneman/GuysMusicApp/audio"
	"github.com/markbreneman/GuysMusicApp/storage"
	"github.com/markbreneman/GuysMusicApp/types"
)

// fakeEngine is an in-memory audio.Engine that records what the player asks
// of it.
type fakeEngine struct {
	loads    []string
	failLoad bool
	playing  bool
	stopped  bool
	position float64
	duration float64
	volume   float64
	seeks    []float64
	finished chan struct{}
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{duration: 180, finished: make(chan struct{}, 1)}
}

func (f *fakeEngine) Load(path string) error {
	if f.failLoad {
		return audio.ErrUnavailable
	}
	f.loads = append(f.loads, path)
	f.position = 0
	f.playing = false
	f.stopped = false
	return nil
}

func (f *fakeEngine) Play() error  { f.playing = true; return nil }
func (f *fakeEngine) Pause() error { f.playing = false; return nil }
func (f *fakeEngine) Stop() error  { f.stopped = true; f.playing = false; return nil }

func (f *fakeEngine) Seek(seconds float64) error {
	f.seeks = append(f.seeks, seconds)
	f.position = seconds
	return nil
}

func (f *fakeEngine) SetVolume(v float64) error { f.volume = v; return nil }
func (f *fakeEngine) Position() float64         { return f.position }
func (f *fakeEngine) Duration() float64         { return f.duration }
func (f *fakeEngine) Finished() <-chan struct{} { return f.finished }
func (f *fakeEngine) Close() error              { return nil }

func newTestPlayer(t *testing.T) (*Player, *fakeEngine, *time.Time) {
	t.Helper()

	files, err := storage.NewFileStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)

	engine := newFakeEngine()
	player := NewPlayer(engine, files, nil, zerolog.Nop())

	clock := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	player.now = func() time.Time { return clock }
	return player, engine, &clock
}

func testQueue() []types.Song {
	return []types.Song{
		{ID: "s1", Title: "First", RelativePath: "Artist/Album/First.mp3"},
		{ID: "s2", Title: "Second", RelativePath: "Artist/Album/Second.mp3"},
		{ID: "s3", Title: "Third", RelativePath: "Artist/Album/Third.mp3"},
	}
}

func TestSetQueueAutoplay(t *testing.T) {
	player, engine, _ := newTestPlayer(t)

	player.SetQueue(testQueue(), 1, true)

	status := player.Status()
	assert.Equal(t, types.StatePlaying, status.State)
	assert.Equal(t, 1, status.Index)
	assert.Equal(t, 3, status.QueueLength)
	require.NotNil(t, status.Song)
	assert.Equal(t, "s2", status.Song.ID)
	assert.True(t, engine.playing)
}

func TestSetQueueWithoutAutoplayStaysPaused(t *testing.T) {
	player, engine, _ := newTestPlayer(t)

	player.SetQueue(testQueue(), 0, false)

	assert.Equal(t, types.StatePaused, player.Status().State)
	assert.False(t, engine.playing)
	assert.False(t, player.idleDeadline.IsZero())
}

func TestSetQueueInvalidInputIsNoOp(t *testing.T) {
	player, _, _ := newTestPlayer(t)

	player.SetQueue(nil, 0, true)
	player.SetQueue(testQueue(), -1, true)
	player.SetQueue(testQueue(), 3, true)

	status := player.Status()
	assert.Equal(t, types.StateIdle, status.State)
	assert.Zero(t, status.QueueLength)
}

func TestPlayPauseToggles(t *testing.T) {
	player, engine, _ := newTestPlayer(t)
	player.SetQueue(testQueue(), 0, true)

	player.PlayPause()
	assert.Equal(t, types.StatePaused, player.Status().State)
	assert.False(t, engine.playing)
	assert.False(t, player.idleDeadline.IsZero())

	player.PlayPause()
	assert.Equal(t, types.StatePlaying, player.Status().State)
	assert.True(t, engine.playing)
	assert.True(t, player.idleDeadline.IsZero())
}

func TestPlayPauseIdleIsNoOp(t *testing.T) {
	player, engine, _ := newTestPlayer(t)

	player.PlayPause()

	assert.Equal(t, types.StateIdle, player.Status().State)
	assert.False(t, engine.playing)
}

func TestPlayPauseAfterFailedLoadIsNoOp(t *testing.T) {
	player, engine, _ := newTestPlayer(t)
	engine.failLoad = true

	player.SetQueue(testQueue(), 0, true)

	// The song stays current but no audio is active.
	status := player.Status()
	assert.Equal(t, types.StatePaused, status.State)
	require.NotNil(t, status.Song)
	assert.Equal(t, "s1", status.Song.ID)

	player.PlayPause()
	assert.Equal(t, types.StatePaused, player.Status().State)
	assert.False(t, engine.playing)
}

func TestNextWrapsAround(t *testing.T) {
	player, engine, _ := newTestPlayer(t)
	player.SetQueue(testQueue(), 2, true)

	player.Next()

	status := player.Status()
	assert.Equal(t, 0, status.Index)
	assert.Equal(t, types.StatePlaying, status.State)
	assert.True(t, engine.playing)
}

func TestNextPreservesPausedState(t *testing.T) {
	player, engine, _ := newTestPlayer(t)
	player.SetQueue(testQueue(), 0, false)

	player.Next()

	assert.Equal(t, 1, player.Status().Index)
	assert.Equal(t, types.StatePaused, player.Status().State)
	assert.False(t, engine.playing)
}

func TestPreviousRestartsPastThreshold(t *testing.T) {
	player, engine, _ := newTestPlayer(t)
	player.SetQueue(testQueue(), 1, true)
	engine.position = 5.0

	player.Previous()

	assert.Equal(t, 1, player.Status().Index)
	assert.Equal(t, []float64{0}, engine.seeks)
}

func TestPreviousMovesBackWithinThreshold(t *testing.T) {
	player, engine, _ := newTestPlayer(t)
	player.SetQueue(testQueue(), 1, true)
	engine.position = 1.5

	player.Previous()

	assert.Equal(t, 0, player.Status().Index)
	assert.Empty(t, engine.seeks)
}

func TestPreviousWrapsToLastTrack(t *testing.T) {
	player, engine, _ := newTestPlayer(t)
	player.SetQueue(testQueue(), 0, true)
	engine.position = 1.0

	player.Previous()

	assert.Equal(t, 2, player.Status().Index)
}

func TestTrackEndAdvancesMidQueue(t *testing.T) {
	player, engine, _ := newTestPlayer(t)
	player.SetQueue(testQueue(), 0, true)

	player.handleTrackEnd()

	status := player.Status()
	assert.Equal(t, 1, status.Index)
	assert.Equal(t, types.StatePlaying, status.State)
	assert.True(t, engine.playing)
}

func TestTrackEndRepeatNoneStopsOnLast(t *testing.T) {
	player, engine, _ := newTestPlayer(t)
	player.SetQueue(testQueue(), 2, true)

	player.handleTrackEnd()

	status := player.Status()
	assert.Equal(t, 2, status.Index)
	assert.Equal(t, types.StatePaused, status.State)
	assert.Zero(t, status.Progress)
	assert.Equal(t, []float64{0}, engine.seeks)
	assert.False(t, engine.playing)
	assert.False(t, player.idleDeadline.IsZero())
}

func TestTrackEndRepeatOneRestartsSameTrack(t *testing.T) {
	player, engine, _ := newTestPlayer(t)
	player.SetQueue(testQueue(), 1, true)
	player.SetRepeat(types.RepeatOne)

	player.handleTrackEnd()

	status := player.Status()
	assert.Equal(t, 1, status.Index)
	assert.Equal(t, types.StatePlaying, status.State)
	assert.Equal(t, []float64{0}, engine.seeks)
	assert.True(t, engine.playing)
	// The track is restarted in place, never reloaded.
	assert.Len(t, engine.loads, 1)
}

func TestTrackEndRepeatAllWrapsToFirst(t *testing.T) {
	player, engine, _ := newTestPlayer(t)
	player.SetQueue(testQueue(), 2, true)
	player.SetRepeat(types.RepeatAll)

	player.handleTrackEnd()

	status := player.Status()
	assert.Equal(t, 0, status.Index)
	assert.Equal(t, types.StatePlaying, status.State)
	assert.True(t, engine.playing)
}

func TestSetVolumeClamps(t *testing.T) {
	player, engine, _ := newTestPlayer(t)

	player.SetVolume(1.5)
	assert.Equal(t, 1.0, player.Status().Volume)
	assert.Equal(t, 1.0, engine.volume)

	player.SetVolume(-0.2)
	assert.Equal(t, 0.0, player.Status().Volume)
	assert.Equal(t, 0.0, engine.volume)

	player.SetVolume(0.35)
	assert.Equal(t, 0.35, player.Status().Volume)
}

func TestIdleTimeoutForeground(t *testing.T) {
	player, engine, clock := newTestPlayer(t)
	start := *clock
	player.SetQueue(testQueue(), 0, false)

	assert.False(t, player.checkIdle(start.Add(ForegroundIdleTimeout-time.Second)))
	assert.Equal(t, types.StatePaused, player.Status().State)

	assert.True(t, player.checkIdle(start.Add(ForegroundIdleTimeout)))

	status := player.Status()
	assert.Equal(t, types.StateIdle, status.State)
	assert.Zero(t, status.QueueLength)
	assert.Nil(t, status.Song)
	assert.True(t, engine.stopped)
}

func TestIdleTimeoutBackgroundIsShorter(t *testing.T) {
	player, _, clock := newTestPlayer(t)
	start := *clock
	player.SetPhase(types.PhaseBackground)
	player.SetQueue(testQueue(), 0, false)

	assert.False(t, player.checkIdle(start.Add(BackgroundIdleTimeout-time.Second)))
	assert.True(t, player.checkIdle(start.Add(BackgroundIdleTimeout)))
	assert.Equal(t, types.StateIdle, player.Status().State)
}

func TestPhaseSwitchRestartsTimerFromFullDuration(t *testing.T) {
	player, _, clock := newTestPlayer(t)
	start := *clock
	player.SetQueue(testQueue(), 0, false)

	// 100 seconds into the foreground countdown the app backgrounds. The
	// background timer starts over from its full 60 seconds; elapsed time does
	// not carry across.
	*clock = start.Add(100 * time.Second)
	player.SetPhase(types.PhaseBackground)

	assert.False(t, player.checkIdle(start.Add(159*time.Second)))
	assert.True(t, player.checkIdle(start.Add(160*time.Second)))
}

func TestPlayingCancelsIdleDeadline(t *testing.T) {
	player, _, clock := newTestPlayer(t)
	start := *clock
	player.SetQueue(testQueue(), 0, false)

	player.PlayPause()
	require.Equal(t, types.StatePlaying, player.Status().State)

	// Far past either timeout, playback is untouched.
	assert.False(t, player.checkIdle(start.Add(time.Hour)))
	assert.Equal(t, types.StatePlaying, player.Status().State)
}

func TestIdleTimeoutWhileIdleIsNoOp(t *testing.T) {
	player, engine, clock := newTestPlayer(t)

	assert.False(t, player.checkIdle(clock.Add(time.Hour)))
	assert.False(t, engine.stopped)
}
