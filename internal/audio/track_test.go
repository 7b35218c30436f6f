package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testTrack(t *testing.T, source string) *Track {
	t.Helper()
	track := NewTrack(source, zerolog.Nop())
	t.Cleanup(track.Cleanup)
	return track
}

// fakeStrategy drives playback in-process so tests need no audio device.
type fakeStrategy struct {
	startErr error
	waitErr  error
	block    chan struct{} // wait blocks until finish is called

	mu       sync.Mutex
	started  bool
	stopped  bool
	finished bool
}

func (f *fakeStrategy) Name() string { return "fake" }

func (f *fakeStrategy) Start(path string) (func(), func() error, error) {
	if f.startErr != nil {
		return nil, nil, f.startErr
	}
	f.mu.Lock()
	f.started = true
	f.mu.Unlock()

	stop := func() {
		f.mu.Lock()
		f.stopped = true
		f.mu.Unlock()
		f.finish()
	}
	wait := func() error {
		<-f.block
		return f.waitErr
	}
	return stop, wait, nil
}

// finish unblocks wait; safe to call more than once.
func (f *fakeStrategy) finish() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.finished {
		f.finished = true
		close(f.block)
	}
}

func (f *fakeStrategy) isStarted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.started
}

func (f *fakeStrategy) isStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

func newFakeStrategy() *fakeStrategy {
	return &fakeStrategy{block: make(chan struct{})}
}

// extracted puts the track into the post-extraction state directly.
func extracted(t *testing.T, track *Track, strategies ...Strategy) {
	t.Helper()
	wav := filepath.Join(t.TempDir(), "audio.wav")
	if err := os.WriteFile(wav, []byte("RIFF"), 0o644); err != nil {
		t.Fatalf("Cannot write test wav: %v", err)
	}
	track.mu.Lock()
	track.wavPath = wav
	track.duration = 2 * time.Second
	track.mu.Unlock()
	track.strategies = strategies
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("Condition not met before timeout")
}

func TestTrack_Extract_MissingUtility(t *testing.T) {
	track := testTrack(t, "ignored.mp4")
	track.ffmpegBin = "definitely-not-a-real-binary"

	// Must disable the track, not error out.
	track.Extract(context.Background())

	if track.Available() {
		t.Error("Expected track to be unavailable when the decode utility is missing")
	}
	if track.State() != StateFailed {
		t.Errorf("Expected state failed, got %s", track.State())
	}
	if track.CurrentTime() != 0 {
		t.Error("Expected CurrentTime 0 for a disabled track")
	}
}

func TestTrack_InitialState(t *testing.T) {
	track := testTrack(t, "ignored.mp4")

	if track.State() != StateIdle {
		t.Errorf("Expected initial state idle, got %s", track.State())
	}
	if track.Available() {
		t.Error("Expected track to be unavailable before extraction")
	}
	if track.Duration() != 0 {
		t.Error("Expected duration 0 before extraction")
	}
}

func TestTrack_Play_RecordsStartBeforePlayback(t *testing.T) {
	track := testTrack(t, "ignored.mp4")
	strategy := newFakeStrategy()
	extracted(t, track, strategy)

	track.Play(0)

	// State and timestamp are set synchronously by Play.
	if !track.Playing() {
		t.Fatal("Expected track to report Playing immediately after Play")
	}

	waitFor(t, time.Second, func() bool { return strategy.isStarted() })

	if track.CurrentTime() < 0 {
		t.Error("Expected non-negative CurrentTime while playing")
	}

	track.Stop()
}

func TestTrack_CurrentTime_Advances(t *testing.T) {
	track := testTrack(t, "ignored.mp4")
	strategy := newFakeStrategy()
	extracted(t, track, strategy)

	track.Play(0)
	first := track.CurrentTime()
	time.Sleep(10 * time.Millisecond)
	second := track.CurrentTime()

	if second <= first {
		t.Errorf("Expected CurrentTime to advance, got %v then %v", first, second)
	}

	track.Stop()
	if track.CurrentTime() != 0 {
		t.Error("Expected CurrentTime 0 after Stop")
	}
}

func TestTrack_Stop_NoPlayback(t *testing.T) {
	track := testTrack(t, "ignored.mp4")

	// Must be a safe no-op.
	track.Stop()
	track.Stop()

	if track.State() != StateIdle {
		t.Errorf("Expected state idle after no-op Stop, got %s", track.State())
	}
}

func TestTrack_Stop_TerminatesWorker(t *testing.T) {
	track := testTrack(t, "ignored.mp4")
	strategy := newFakeStrategy()
	extracted(t, track, strategy)

	track.Play(0)
	waitFor(t, time.Second, func() bool { return strategy.isStarted() })

	track.Stop()

	if track.State() != StateStopped {
		t.Errorf("Expected state stopped, got %s", track.State())
	}
	waitFor(t, time.Second, func() bool { return strategy.isStopped() })
}

func TestTrack_PlaybackFailure_SetsFailed(t *testing.T) {
	track := testTrack(t, "ignored.mp4")
	strategy := newFakeStrategy()
	strategy.waitErr = errors.New("player crashed")
	extracted(t, track, strategy)

	track.Play(0)
	waitFor(t, time.Second, func() bool { return strategy.isStarted() })
	strategy.finish() // let wait return its error

	waitFor(t, time.Second, func() bool { return track.State() == StateFailed })

	if track.Playing() {
		t.Error("Expected track to not report Playing after failure")
	}
}

func TestTrack_NaturalEnd_SetsStopped(t *testing.T) {
	track := testTrack(t, "ignored.mp4")
	strategy := newFakeStrategy()
	extracted(t, track, strategy)

	track.Play(0)
	waitFor(t, time.Second, func() bool { return strategy.isStarted() })
	strategy.finish()

	waitFor(t, time.Second, func() bool { return track.State() == StateStopped })
}

func TestTrack_AllStrategiesFail_SetsFailed(t *testing.T) {
	track := testTrack(t, "ignored.mp4")
	failing := newFakeStrategy()
	failing.startErr = errors.New("no device")
	extracted(t, track, failing)

	track.Play(0)

	waitFor(t, time.Second, func() bool { return track.State() == StateFailed })
}

func TestTrack_Cleanup_Idempotent(t *testing.T) {
	track := testTrack(t, "ignored.mp4")
	strategy := newFakeStrategy()
	extracted(t, track, strategy)

	track.mu.Lock()
	wavPath := track.wavPath
	track.mu.Unlock()

	track.Cleanup()
	track.Cleanup()

	if _, err := os.Stat(wavPath); !os.IsNotExist(err) {
		t.Error("Expected temporary audio file to be removed")
	}
	if track.State() != StateStopped {
		t.Errorf("Expected state stopped after cleanup, got %s", track.State())
	}
	if track.Available() {
		t.Error("Expected track to be unavailable after cleanup")
	}
}

func TestState_String(t *testing.T) {
	tests := map[State]string{
		StateIdle:       "idle",
		StateExtracting: "extracting",
		StatePlaying:    "playing",
		StateStopped:    "stopped",
		StateFailed:     "failed",
		State(99):       "unknown",
	}
	for state, want := range tests {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}
