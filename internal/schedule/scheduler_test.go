package schedule

import (
	"context"
	"testing"
	"time"
)

// fakeClock is a controllable audio clock.
type fakeClock struct {
	playing bool
	current time.Duration
	started bool
}

func (f *fakeClock) CurrentTime() time.Duration { return f.current }
func (f *fakeClock) Playing() bool              { return f.playing }
func (f *fakeClock) Play(delay time.Duration)   { f.started = true }

// frozen pins the scheduler's wall clock for deterministic math.
func frozen(s *Scheduler) *time.Time {
	now := time.Unix(1000, 0)
	s.now = func() time.Time { return now }
	return &now
}

func TestNewPolicy(t *testing.T) {
	p := NewPolicy(25, 1.0)
	if p.FrameDuration != 40*time.Millisecond {
		t.Errorf("Expected frame duration 40ms for 25fps, got %v", p.FrameDuration)
	}

	// Unknown fps falls back to the default.
	p = NewPolicy(0, 1.0)
	if p.FrameDuration != defaultFrameDuration {
		t.Errorf("Expected default frame duration, got %v", p.FrameDuration)
	}

	// Non-positive speed falls back to 1.
	p = NewPolicy(30, -2)
	if p.Speed != 1 {
		t.Errorf("Expected speed fallback 1, got %f", p.Speed)
	}
}

func TestScheduler_NextDelay_WallClock(t *testing.T) {
	s := New(NewPolicy(10, 1.0), nil) // 100ms per frame
	now := frozen(s)
	s.Start(false)

	// Frame 0 is due immediately.
	if d := s.nextDelay(0); d != 0 {
		t.Errorf("Expected zero delay for frame 0, got %v", d)
	}

	s.frame = 1
	if d := s.nextDelay(0); d != 100*time.Millisecond {
		t.Errorf("Expected 100ms delay for frame 1, got %v", d)
	}

	// Processing time is subtracted from the hold.
	if d := s.nextDelay(30 * time.Millisecond); d != 70*time.Millisecond {
		t.Errorf("Expected 70ms delay with 30ms processing, got %v", d)
	}

	// Elapsed wall time is subtracted too.
	*now = now.Add(40 * time.Millisecond)
	if d := s.nextDelay(0); d != 60*time.Millisecond {
		t.Errorf("Expected 60ms delay after 40ms elapsed, got %v", d)
	}
}

func TestScheduler_ExpectedTimeNonDecreasing(t *testing.T) {
	s := New(NewPolicy(30, 1.0), nil)
	frozen(s)
	s.Start(false)

	prev := time.Duration(-1)
	for i := 0; i < 100; i++ {
		expected := time.Duration(float64(s.frame) * float64(s.policy.FrameDuration) / s.policy.Speed)
		if expected < prev {
			t.Fatalf("Expected time decreased at frame %d: %v after %v", i, expected, prev)
		}
		prev = expected
		s.frame++
	}
}

func TestScheduler_SpeedHalvesSpacing(t *testing.T) {
	normal := New(NewPolicy(10, 1.0), nil)
	double := New(NewPolicy(10, 2.0), nil)
	frozen(normal)
	frozen(double)
	normal.Start(false)
	double.Start(false)

	normal.frame = 1
	double.frame = 1

	dNormal := normal.nextDelay(0)
	dDouble := double.nextDelay(0)

	if dDouble*2 != dNormal {
		t.Errorf("Expected speed 2.0 spacing to be half of speed 1.0: got %v vs %v", dDouble, dNormal)
	}
}

func TestScheduler_WaitForNext_NeverNegative(t *testing.T) {
	s := New(NewPolicy(10, 1.0), nil)
	now := frozen(s)
	s.Start(false)

	clamped := 0
	s.OnClamp(func() { clamped++ })

	// Run far behind schedule: actual >> expected.
	*now = now.Add(10 * time.Second)

	start := time.Now()
	s.WaitForNext(context.Background(), 0)
	if elapsed := time.Since(start); elapsed > 20*time.Millisecond {
		t.Errorf("Expected immediate return when behind schedule, took %v", elapsed)
	}

	if clamped != 1 {
		t.Errorf("Expected one clamped wait, got %d", clamped)
	}
	if s.FrameCount() != 1 {
		t.Errorf("Expected frame counter 1, got %d", s.FrameCount())
	}
}

func TestScheduler_AudioClockIsGroundTruth(t *testing.T) {
	clock := &fakeClock{playing: true, current: 500 * time.Millisecond}
	s := New(NewPolicy(10, 1.0), clock) // 100ms per frame
	frozen(s)
	s.Start(false)

	// Frame 6 is expected at 600ms; audio says 500ms elapsed.
	s.frame = 6
	if d := s.nextDelay(0); d != 100*time.Millisecond {
		t.Errorf("Expected 100ms delay from audio clock, got %v", d)
	}

	// Audio ahead of schedule: proceed immediately.
	clock.current = 800 * time.Millisecond
	if d := s.nextDelay(0); d >= 0 {
		t.Errorf("Expected negative raw delay when audio is ahead, got %v", d)
	}

	// When the clock stops playing, wall clock takes over.
	clock.playing = false
	if d := s.nextDelay(0); d != 600*time.Millisecond {
		t.Errorf("Expected wall-clock delay 600ms, got %v", d)
	}
}

func TestScheduler_Start_RequestsAudioPlayback(t *testing.T) {
	clock := &fakeClock{}
	s := New(NewPolicy(30, 1.0), clock)

	s.Start(false)
	if clock.started {
		t.Error("Expected audio to stay idle when playAudio is false")
	}

	s.Start(true)
	if !clock.started {
		t.Error("Expected Start(true) to request audio playback")
	}
	if s.FrameCount() != 0 {
		t.Errorf("Expected frame counter reset, got %d", s.FrameCount())
	}
}

func TestScheduler_WaitForNext_ContextCancelled(t *testing.T) {
	s := New(NewPolicy(1, 1.0), nil) // 1s per frame
	s.Start(false)
	s.frame = 1

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	s.WaitForNext(ctx, 0)
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("Expected cancelled wait to return promptly, took %v", elapsed)
	}
}
