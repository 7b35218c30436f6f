// Package audio extracts an audio track from a media source and plays
// it on a background worker, exposing a playback clock for frame
// synchronization. Every failure here degrades to "no audio" instead
// of aborting playback.
package audio

import (
	"context"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/termvid/termvid/internal/observability"
)

// State is the audio track lifecycle state.
type State int

const (
	StateIdle State = iota
	StateExtracting
	StatePlaying
	StateStopped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateExtracting:
		return "extracting"
	case StatePlaying:
		return "playing"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

const (
	extractTimeout = 60 * time.Second
	probeTimeout   = 10 * time.Second
)

// Track owns one extracted audio file and its playback worker. The
// state and start timestamp pair is the only data shared with the
// worker; both are guarded by mu. The render loop reads them on every
// frame, the worker writes them a handful of times per session.
type Track struct {
	sourcePath string
	logger     zerolog.Logger

	// Test seams; default to the real binaries and strategies.
	ffmpegBin  string
	ffprobeBin string
	strategies []Strategy

	mu        sync.Mutex
	state     State
	startedAt time.Time
	wavPath   string
	duration  time.Duration
	stopFn    func()
}

// NewTrack creates a track for the given media source. Nothing runs
// until Extract is called.
func NewTrack(sourcePath string, logger zerolog.Logger) *Track {
	return &Track{
		sourcePath: sourcePath,
		logger:     logger.With().Str("component", "audio").Logger(),
		ffmpegBin:  "ffmpeg",
		ffprobeBin: "ffprobe",
		strategies: DefaultStrategies(),
	}
}

// Extract decodes the source's audio into a temporary 44.1 kHz stereo
// WAV file and probes its duration. A missing utility, timeout or
// non-zero exit disables the track with a single warning; it is never
// an error for the caller.
func (t *Track) Extract(ctx context.Context) {
	t.setState(StateExtracting)

	if _, err := exec.LookPath(t.ffmpegBin); err != nil {
		t.fail("audio decode utility not found, continuing without audio", err)
		return
	}

	tmp, err := os.CreateTemp("", "termvid-*.wav")
	if err != nil {
		t.fail("cannot create temporary audio file", err)
		return
	}
	tmp.Close()

	ectx, cancel := context.WithTimeout(ctx, extractTimeout)
	defer cancel()

	cmd := exec.CommandContext(ectx, t.ffmpegBin,
		"-y", "-v", "error",
		"-i", t.sourcePath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "44100",
		"-ac", "2",
		tmp.Name(),
	)
	if err := cmd.Run(); err != nil {
		os.Remove(tmp.Name())
		t.fail("audio extraction failed, continuing without audio", err)
		return
	}

	duration := t.probeDuration(ctx)

	t.mu.Lock()
	t.wavPath = tmp.Name()
	t.duration = duration
	t.mu.Unlock()

	t.logger.Info().
		Dur("duration", duration).
		Msg("Audio track extracted")
}

// probeDuration asks the probe utility for the source duration in
// seconds (plain text). Failures yield 0, the track stays usable.
func (t *Track) probeDuration(ctx context.Context) time.Duration {
	pctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(pctx, t.ffprobeBin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		t.sourcePath,
	)
	out, err := cmd.Output()
	if err != nil {
		t.logger.Debug().Err(err).Msg("Duration probe failed")
		return 0
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		t.logger.Debug().Err(err).Msg("Duration probe returned unparsable output")
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}

// Available reports whether an extracted track is ready for playback.
func (t *Track) Available() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.wavPath != "" && t.state != StateFailed
}

// State returns the current lifecycle state.
func (t *Track) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Duration returns the probed track length, 0 when unknown.
func (t *Track) Duration() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.duration
}

// Play starts playback asynchronously after the given delay. The state
// and start timestamp are recorded before any blocking work begins.
func (t *Track) Play(delay time.Duration) {
	if !t.Available() {
		return
	}
	t.Stop()

	t.mu.Lock()
	t.state = StatePlaying
	t.startedAt = time.Now().Add(delay)
	path := t.wavPath
	t.mu.Unlock()
	observability.SetAudioState(int(StatePlaying))

	go t.playWorker(path, delay)
}

func (t *Track) playWorker(path string, delay time.Duration) {
	if delay > 0 {
		time.Sleep(delay)
		if !t.Playing() {
			return // stopped during the delay
		}
	}

	stop, wait, err := startFirst(t.strategies, path, t.logger)
	if err != nil {
		t.fail("no audio playback strategy succeeded, continuing without audio", err)
		return
	}

	t.mu.Lock()
	if t.state != StatePlaying {
		t.mu.Unlock()
		stop()
		return
	}
	t.stopFn = stop
	t.mu.Unlock()

	err = wait()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StatePlaying {
		return // Stop already transitioned the state
	}
	if err != nil {
		t.state = StateFailed
		t.logger.Warn().Err(err).Msg("Audio playback failed mid-stream, falling back to wall clock")
	} else {
		t.state = StateStopped
	}
	observability.SetAudioState(int(t.state))
}

// CurrentTime returns elapsed playback time while Playing, else 0.
// It never blocks beyond the state cell lock.
func (t *Track) CurrentTime() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StatePlaying {
		return 0
	}
	elapsed := time.Since(t.startedAt)
	if elapsed < 0 {
		return 0 // still inside the start delay
	}
	return elapsed
}

// Playing reports whether the track is currently playing.
func (t *Track) Playing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == StatePlaying
}

// Stop transitions to Stopped and requests worker termination without
// waiting for it. Safe to call when nothing is playing.
func (t *Track) Stop() {
	t.mu.Lock()
	stop := t.stopFn
	t.stopFn = nil
	if t.state == StatePlaying {
		t.state = StateStopped
		observability.SetAudioState(int(StateStopped))
	}
	t.mu.Unlock()

	if stop != nil {
		stop()
	}
}

// Cleanup stops playback and removes the temporary audio file.
// Idempotent; every exit path calls it.
func (t *Track) Cleanup() {
	t.Stop()

	t.mu.Lock()
	path := t.wavPath
	t.wavPath = ""
	t.state = StateStopped
	t.mu.Unlock()
	observability.SetAudioState(int(StateStopped))

	if path != "" {
		if err := os.Remove(path); err != nil {
			t.logger.Debug().Err(err).Msg("Could not remove temporary audio file")
		}
	}
}

func (t *Track) setState(s State) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
	observability.SetAudioState(int(s))
}

func (t *Track) fail(msg string, err error) {
	t.setState(StateFailed)
	t.logger.Warn().Err(err).Msg(msg)
}
