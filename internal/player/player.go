// Package player drives the decode, convert, render, wait loop.
package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/termvid/termvid/internal/ascii"
	"github.com/termvid/termvid/internal/audio"
	"github.com/termvid/termvid/internal/charset"
	"github.com/termvid/termvid/internal/config"
	"github.com/termvid/termvid/internal/observability"
	"github.com/termvid/termvid/internal/schedule"
	"github.com/termvid/termvid/internal/video"
)

// frameSource is the video.Source surface the loop depends on.
type frameSource interface {
	NextFrame(skip int) (*video.Frame, error)
	Close() error
	FPS() float64
	FrameCount() int
	Width() int
	Height() int
	IsLive() bool
}

// Player converts and displays a video stream as glyph frames, paced by
// the scheduler, with optional color and audio.
type Player struct {
	cfg    *config.Config
	source frameSource
	conv   *ascii.Converter
	quant  *ascii.Quantizer
	track  *audio.Track
	sched  *schedule.Scheduler
	sink   Sink

	// info is where banner, status and summary text goes; stdout stays
	// reserved for frames.
	info io.Writer

	logger  zerolog.Logger
	metrics *observability.PlaybackMetrics
	styles  styles
}

// New validates cfg and constructs the full pipeline. Video and
// configuration problems abort construction; audio problems never do.
func New(cfg *config.Config) (*Player, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cs, err := charset.Get(cfg.Charset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}

	conv, err := ascii.NewConverter(cfg.Width, cs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}

	var quant *ascii.Quantizer
	if cfg.ColorMode != "" {
		mode, err := ascii.ParseMode(cfg.ColorMode)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
		}
		quant = ascii.NewQuantizer(mode)
	}

	source, err := video.Open(cfg.Source)
	if err != nil {
		return nil, err
	}

	logger := observability.WithSession()

	var track *audio.Track
	var clock schedule.AudioClock
	if cfg.Audio && !source.IsLive() {
		track = audio.NewTrack(cfg.Source, logger)
		clock = track
	}

	metrics := observability.NewPlaybackMetrics()
	sched := schedule.New(schedule.NewPolicy(source.FPS(), cfg.Speed), clock)
	sched.OnClamp(metrics.RecordClampedSleep)

	return &Player{
		cfg:     cfg,
		source:  source,
		conv:    conv,
		quant:   quant,
		track:   track,
		sched:   sched,
		sink:    NewTerminalSink(os.Stdout),
		info:    os.Stderr,
		logger:  logger,
		metrics: metrics,
		styles:  newStyles(),
	}, nil
}

// Play runs the playback loop until the stream ends or ctx is
// cancelled. Cancellation finishes the current iteration's render
// before breaking; resources are released on every exit path.
func (p *Player) Play(ctx context.Context) (err error) {
	defer p.shutdown()

	p.metrics.RecordSessionStart()
	defer p.metrics.RecordSessionEnd()

	if p.track != nil {
		p.track.Extract(ctx)
		if !p.track.Available() {
			p.logger.Warn().Msg("Audio unavailable, falling back to wall-clock timing")
		}
	}

	p.printBanner(p.info)

	p.logger.Info().
		Str("source", p.cfg.Source).
		Float64("fps", p.source.FPS()).
		Int("width", p.cfg.Width).
		Str("charset", p.cfg.Charset).
		Msg("Playback starting")

	p.sched.Start(p.track != nil && p.track.Available())

	total := expectedFrames(p.source.FrameCount(), p.cfg.Skip)
	rendered := 0
	started := time.Now()

	for {
		if ctx.Err() != nil {
			p.logger.Info().Int("frames", rendered).Msg("Playback interrupted")
			break
		}

		frameStart := time.Now()

		frame, err := p.source.NextFrame(p.cfg.Skip)
		if errors.Is(err, video.ErrEndOfStream) {
			break
		}
		if err != nil {
			return err
		}

		out := p.render(frame)
		if err := p.sink.WriteFrame(out + "\n" + p.status(rendered, total)); err != nil {
			return err
		}

		processing := time.Since(frameStart)
		p.metrics.RecordFrame(processing)
		rendered++

		p.sched.WaitForNext(ctx, processing)
	}

	p.printSummary(p.info, rendered, time.Since(started))
	p.logger.Info().Int("frames", rendered).Msg("Playback finished")
	return nil
}

// Export converts every (skip-filtered) frame and persists it to the
// configured export directory instead of playing it back.
func (p *Player) Export(ctx context.Context) error {
	defer p.shutdown()

	exporter, err := NewExporter(p.cfg.ExportDir)
	if err != nil {
		return err
	}

	quant := p.quant
	if !p.cfg.ExportColor {
		quant = nil
	} else if quant == nil {
		quant = ascii.NewQuantizer(ascii.ModeTrue)
	}

	p.logger.Info().Str("dir", p.cfg.ExportDir).Msg("Export starting")

	count := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		frame, err := p.source.NextFrame(p.cfg.Skip)
		if errors.Is(err, video.ErrEndOfStream) {
			break
		}
		if err != nil {
			return err
		}

		var out string
		if quant != nil {
			grid := p.conv.ToGrid(frame.Image)
			out = quant.Colorize(grid, frame.Image, p.conv)
		} else {
			out = p.conv.ToGrid(frame.Image).String()
		}

		if err := exporter.Write(frame.Index, out); err != nil {
			return err
		}
		p.metrics.RecordExportedFrame()

		count++
		if count%10 == 0 {
			p.logger.Info().Int("frames", count).Msg("Export progress")
		}
	}

	p.logger.Info().Int("frames", count).Msg("Export complete")
	return nil
}

func (p *Player) render(frame *video.Frame) string {
	grid := p.conv.ToGrid(frame.Image)
	if p.quant != nil {
		return p.quant.Colorize(grid, frame.Image, p.conv)
	}
	return grid.String()
}

// shutdown releases all resources; called on every exit path.
func (p *Player) shutdown() {
	if err := p.source.Close(); err != nil {
		p.logger.Warn().Err(err).Msg("Closing video source failed")
	}
	if p.track != nil {
		p.track.Cleanup()
	}
}

// expectedFrames is how many frames the skip filter will yield out of
// total, 0 when the total is unknown.
func expectedFrames(total, skip int) int {
	if total <= 0 {
		return 0
	}
	if skip < 0 {
		skip = 0
	}
	return (total + skip) / (skip + 1)
}
