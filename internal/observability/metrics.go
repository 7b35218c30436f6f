package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Playback metrics
	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "termvid_active_sessions",
		Help: "Number of active playback sessions",
	})

	totalSessions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "termvid_sessions_total",
		Help: "Total number of playback sessions",
	})

	sessionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "termvid_session_duration_seconds",
		Help:    "Duration of playback sessions in seconds",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	})

	// Frame metrics
	framesRendered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "termvid_frames_rendered_total",
		Help: "Total number of frames rendered",
	})

	frameLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "termvid_frame_processing_seconds",
		Help:    "Per-frame decode and conversion latency in seconds",
		Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
	})

	clampedSleeps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "termvid_clamped_sleeps_total",
		Help: "Frame waits where rendering ran behind the target cadence",
	})

	// Audio metrics
	audioState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "termvid_audio_state",
		Help: "Audio track state (0=idle, 1=extracting, 2=playing, 3=stopped, 4=failed)",
	})

	// Export metrics
	framesExported = promauto.NewCounter(prometheus.CounterOpts{
		Name: "termvid_frames_exported_total",
		Help: "Total number of frames exported to disk",
	})

	// Error metrics
	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "termvid_errors_total",
		Help: "Total number of errors",
	}, []string{"type", "component"})
)

// PlaybackMetrics tracks metrics for a single playback session.
type PlaybackMetrics struct {
	startTime time.Time
}

// NewPlaybackMetrics creates a metrics tracker for one session.
func NewPlaybackMetrics() *PlaybackMetrics {
	return &PlaybackMetrics{startTime: time.Now()}
}

// RecordSessionStart records the start of a playback session.
func (m *PlaybackMetrics) RecordSessionStart() {
	activeSessions.Inc()
	totalSessions.Inc()
}

// RecordSessionEnd records the end of a playback session.
func (m *PlaybackMetrics) RecordSessionEnd() {
	activeSessions.Dec()
	sessionDuration.Observe(time.Since(m.startTime).Seconds())
}

// RecordFrame records one rendered frame and its processing latency.
func (m *PlaybackMetrics) RecordFrame(processing time.Duration) {
	framesRendered.Inc()
	frameLatency.Observe(processing.Seconds())
}

// RecordClampedSleep records a frame wait that was clamped to zero.
func (m *PlaybackMetrics) RecordClampedSleep() {
	clampedSleeps.Inc()
}

// RecordExportedFrame records one frame persisted by the exporter.
func (m *PlaybackMetrics) RecordExportedFrame() {
	framesExported.Inc()
}

// RecordError records an error.
func (m *PlaybackMetrics) RecordError(errorType, component string) {
	errorsTotal.WithLabelValues(errorType, component).Inc()
}

// SetAudioState publishes the audio track state.
func SetAudioState(state int) {
	audioState.Set(float64(state))
}
