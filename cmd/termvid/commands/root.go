package commands

import (
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/termvid/termvid/internal/config"
	"github.com/termvid/termvid/internal/observability"
	"github.com/termvid/termvid/internal/player"
)

var (
	flagWidth   int
	flagCharset string
	flagColor   string
	flagSpeed   float64
	flagSkip    int
	flagAudio   bool
)

var rootCmd = &cobra.Command{
	Use:   "termvid [flags] <source>",
	Short: "Play videos as colored glyph frames in the terminal",
	Long: `termvid - terminal video player.

Decodes a video file or camera stream, converts every frame to a grid
of glyphs chosen by pixel brightness, and writes the grids to the
terminal at the video's native frame rate. Audio from the source file
can be extracted and played alongside; the renderer then paces itself
against the audio clock instead of the wall clock.

Sources:
  path/to/video.mp4   a video file (any container ffmpeg can read)
  0, 1, ...           a camera index (/dev/video0, /dev/video1, ...)

Configuration comes from TERMVID_* environment variables (and a .env
file if present); flags override both.

Examples:
  termvid clip.mp4
  termvid --width 160 --color 256 clip.mp4
  termvid --audio --speed 1.5 clip.mp4
  termvid 0
  termvid export --dir frames clip.mp4
  termvid charsets`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, args[0])
		if err != nil {
			return err
		}

		p, err := player.New(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		startMetrics(cfg)
		return p.Play(ctx)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&flagWidth, "width", "w", 0, "output width in characters")
	rootCmd.PersistentFlags().StringVarP(&flagCharset, "charset", "c", "", "glyph ramp name (see 'termvid charsets')")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "", `color mode: "16", "256" or "true"`)
	rootCmd.PersistentFlags().Float64Var(&flagSpeed, "speed", 0, "playback speed multiplier")
	rootCmd.PersistentFlags().IntVar(&flagSkip, "skip", -1, "frames to skip between rendered frames")
	rootCmd.Flags().BoolVar(&flagAudio, "audio", false, "extract and play the source's audio track")
}

// loadConfig reads the environment configuration, applies flag
// overrides, and initializes logging. Only flags the user actually set
// override the environment.
func loadConfig(cmd *cobra.Command, source string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg.Source = source

	flags := cmd.Flags()
	if flags.Changed("width") {
		cfg.Width = flagWidth
	}
	if flags.Changed("charset") {
		cfg.Charset = flagCharset
	}
	if flags.Changed("color") {
		cfg.ColorMode = flagColor
	}
	if flags.Changed("speed") {
		cfg.Speed = flagSpeed
	}
	if flags.Changed("skip") {
		cfg.Skip = flagSkip
	}
	if flags.Changed("audio") {
		cfg.Audio = flagAudio
	}

	observability.InitLogger(cfg.LogLevel, cfg.LogPretty)
	return cfg, nil
}

// startMetrics exposes the Prometheus endpoint when enabled. The
// listener lives for the remainder of the process; playback does not
// wait for it.
func startMetrics(cfg *config.Config) {
	if !cfg.MetricsEnabled {
		return
	}

	logger := observability.GetLogger()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.MetricsPort),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.MetricsPort).Msg("Prometheus metrics enabled at /metrics")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn().Err(err).Msg("Metrics server failed")
		}
	}()
}
