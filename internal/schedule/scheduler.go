// Package schedule paces frame rendering against the stream frame rate
// and, when available, the audio playback clock.
package schedule

import (
	"context"
	"time"
)

// defaultFrameDuration is used when the stream frame rate is unknown.
const defaultFrameDuration = 33 * time.Millisecond

// AudioClock is the audio subsystem's notion of elapsed playback time.
// While the clock reports Playing it is the synchronization ground
// truth; otherwise the scheduler falls back to wall clock.
type AudioClock interface {
	// CurrentTime returns elapsed playback time; never blocks.
	CurrentTime() time.Duration
	Playing() bool
	// Play requests playback to begin after the given delay.
	Play(delay time.Duration)
}

// Policy is the immutable pacing configuration for one session.
type Policy struct {
	Speed         float64
	FrameDuration time.Duration
}

// NewPolicy derives a policy from the stream frame rate and a speed
// multiplier. fps <= 0 falls back to the default frame duration;
// speed <= 0 falls back to 1.
func NewPolicy(fps, speed float64) Policy {
	frameDuration := defaultFrameDuration
	if fps > 0 {
		frameDuration = time.Duration(float64(time.Second) / fps)
	}
	if speed <= 0 {
		speed = 1
	}
	return Policy{Speed: speed, FrameDuration: frameDuration}
}

// Scheduler computes how long to hold before each frame. It is used by
// a single goroutine; the audio clock is the only shared input.
type Scheduler struct {
	policy Policy
	audio  AudioClock // nil when the session has no audio

	frame     int64
	startedAt time.Time

	// Test seams
	now     func() time.Time
	onClamp func()
}

// New creates a scheduler. audio may be nil for audio-less sessions.
func New(policy Policy, audio AudioClock) *Scheduler {
	return &Scheduler{
		policy: policy,
		audio:  audio,
		now:    time.Now,
	}
}

// OnClamp registers a hook invoked whenever a wait is clamped to zero
// because rendering ran behind the target cadence.
func (s *Scheduler) OnClamp(fn func()) {
	s.onClamp = fn
}

// Start resets the playback clock and, when requested, starts the
// audio track. It begins a new session; the frame counter restarts
// at zero.
func (s *Scheduler) Start(playAudio bool) {
	s.frame = 0
	s.startedAt = s.now()
	if playAudio && s.audio != nil {
		s.audio.Play(0)
	}
}

// WaitForNext suspends the caller until the next frame is due, then
// advances the frame counter. processing is the measured cost of the
// current frame and is subtracted from the hold. The wait is never
// negative: when rendering runs behind, the scheduler proceeds
// immediately without skipping frames. ctx cancellation cuts the wait
// short.
func (s *Scheduler) WaitForNext(ctx context.Context, processing time.Duration) {
	delay := s.nextDelay(processing)
	if delay > 0 {
		sleep(ctx, delay)
	} else if delay < 0 && s.onClamp != nil {
		s.onClamp()
	}
	s.frame++
}

// nextDelay computes expected - actual - processing. The expected time
// of frame N is N * frameDuration / speed; actual time comes from the
// audio clock while it is playing, else from the wall clock.
func (s *Scheduler) nextDelay(processing time.Duration) time.Duration {
	expected := time.Duration(float64(s.frame) * float64(s.policy.FrameDuration) / s.policy.Speed)

	var actual time.Duration
	if s.audio != nil && s.audio.Playing() {
		actual = s.audio.CurrentTime()
	} else {
		actual = s.now().Sub(s.startedAt)
	}

	return expected - actual - processing
}

// FrameCount returns how many frames have been scheduled this session.
func (s *Scheduler) FrameCount() int64 {
	return s.frame
}

func sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
