package audio

import (
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	"github.com/rs/zerolog"
)

// Strategy is one way to get a decoded audio file to the speakers.
// Candidates are tried in order; the first that starts wins.
type Strategy interface {
	Name() string

	// Start begins playback of the WAV file at path. It returns a stop
	// function that requests termination without blocking, and a wait
	// function that blocks until playback finishes.
	Start(path string) (stop func(), wait func() error, err error)
}

// DefaultStrategies returns the candidate list: the in-process speaker
// first, then known external players.
func DefaultStrategies() []Strategy {
	return []Strategy{
		speakerStrategy{},
		execStrategy{bin: "ffplay", extraArgs: []string{"-nodisp", "-autoexit", "-loglevel", "quiet"}},
		execStrategy{bin: "mpv", extraArgs: []string{"--no-video", "--really-quiet"}},
		execStrategy{bin: "paplay"},
		execStrategy{bin: "aplay", extraArgs: []string{"-q"}},
		execStrategy{bin: "afplay"},
	}
}

// startFirst walks the candidate list until one strategy starts.
func startFirst(strategies []Strategy, path string, logger zerolog.Logger) (func(), func() error, error) {
	for _, s := range strategies {
		stop, wait, err := s.Start(path)
		if err != nil {
			logger.Debug().Err(err).Str("strategy", s.Name()).Msg("Playback strategy unavailable")
			continue
		}
		logger.Debug().Str("strategy", s.Name()).Msg("Playback strategy selected")
		return stop, wait, nil
	}
	return nil, nil, fmt.Errorf("no playback strategy available (tried %d)", len(strategies))
}

// speakerStrategy plays the WAV through the process's own audio device.
type speakerStrategy struct{}

func (speakerStrategy) Name() string { return "speaker" }

func (speakerStrategy) Start(path string) (func(), func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	streamer, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		streamer.Close()
		f.Close()
		return nil, nil, err
	}

	done := make(chan struct{})
	var once sync.Once
	finish := func() { once.Do(func() { close(done) }) }

	speaker.Play(beep.Seq(streamer, beep.Callback(finish)))

	stop := func() {
		speaker.Clear()
		finish()
	}
	wait := func() error {
		<-done
		streamer.Close()
		f.Close()
		return nil
	}
	return stop, wait, nil
}

// execStrategy shells out to a known player binary.
type execStrategy struct {
	bin       string
	extraArgs []string
}

func (e execStrategy) Name() string { return e.bin }

func (e execStrategy) Start(path string) (func(), func() error, error) {
	if _, err := exec.LookPath(e.bin); err != nil {
		return nil, nil, err
	}

	args := append(append([]string{}, e.extraArgs...), path)
	cmd := exec.Command(e.bin, args...)
	if err := cmd.Start(); err != nil {
		return nil, nil, err
	}

	stop := func() {
		if cmd.Process != nil {
			cmd.Process.Kill()
		}
	}
	return stop, cmd.Wait, nil
}
