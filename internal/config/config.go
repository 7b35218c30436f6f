package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ErrInvalidConfig is wrapped by every validation failure so callers can
// detect configuration problems with errors.Is.
var ErrInvalidConfig = errors.New("invalid configuration")

// MinWidth is the smallest usable output width in characters.
const MinWidth = 20

// Color mode names accepted by ColorMode. Empty string disables color.
const (
	Color16   = "16"
	Color256  = "256"
	ColorTrue = "true"
)

// Config holds all configuration for the terminal video player.
// Values are read once at startup; nothing re-reads them during playback.
type Config struct {
	// Source is the video file path or camera index ("0", "1", ...).
	// Set from the command line, not the environment.
	Source string `ignored:"true"`

	// Rendering configuration
	Width     int    `envconfig:"TERMVID_WIDTH" default:"120"` // Output width in characters (min 20)
	Charset   string `envconfig:"TERMVID_CHARSET" default:"standard"`
	ColorMode string `envconfig:"TERMVID_COLOR" default:""` // "", "16", "256" or "true"

	// Playback configuration
	Speed float64 `envconfig:"TERMVID_SPEED" default:"1.0"` // Playback speed multiplier (> 0)
	Skip  int     `envconfig:"TERMVID_SKIP" default:"0"`    // Frames to skip between rendered frames
	Audio bool    `envconfig:"TERMVID_AUDIO" default:"false"`

	// Export configuration
	ExportDir   string `envconfig:"TERMVID_EXPORT_DIR" default:"output_frames"`
	ExportColor bool   `envconfig:"TERMVID_EXPORT_COLOR" default:"false"` // Include ANSI codes in exported frames

	// Observability configuration
	LogLevel       string `envconfig:"TERMVID_LOG_LEVEL" default:"info"` // debug, info, warn, error
	LogPretty      bool   `envconfig:"TERMVID_LOG_PRETTY" default:"true"`
	MetricsEnabled bool   `envconfig:"TERMVID_METRICS_ENABLED" default:"false"`
	MetricsPort    string `envconfig:"TERMVID_METRICS_PORT" default:"9224"`
}

// Load reads configuration from environment variables.
// It first attempts to load from a .env file if one exists, then from the
// environment. The result is not yet validated; call Validate after
// applying command-line overrides.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the constraints the pipeline relies on. It must pass
// before any component is constructed.
func (c *Config) Validate() error {
	if c.Width < MinWidth {
		return fmt.Errorf("%w: width %d is below minimum %d", ErrInvalidConfig, c.Width, MinWidth)
	}
	if c.Speed <= 0 {
		return fmt.Errorf("%w: speed must be positive, got %g", ErrInvalidConfig, c.Speed)
	}
	if c.Skip < 0 {
		return fmt.Errorf("%w: skip must not be negative, got %d", ErrInvalidConfig, c.Skip)
	}
	switch c.ColorMode {
	case "", Color16, Color256, ColorTrue:
	default:
		return fmt.Errorf("%w: unknown color mode %q (use %q, %q or %q)",
			ErrInvalidConfig, c.ColorMode, Color16, Color256, ColorTrue)
	}
	return nil
}

// GetEnv returns the value of an environment variable or a default value.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
