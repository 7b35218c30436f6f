package player

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// styles holds the lipgloss styles for the banner and status output.
type styles struct {
	Title lipgloss.Style
	Label lipgloss.Style
	Dim   lipgloss.Style
}

func newStyles() styles {
	return styles{
		Title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff9f")),
		Label: lipgloss.NewStyle().Bold(true),
		Dim:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6e7681")),
	}
}

// printBanner writes the session summary before playback starts.
func (p *Player) printBanner(out io.Writer) {
	line := func(label, value string) {
		fmt.Fprintf(out, "%s %s\n", p.styles.Label.Render(label+":"), value)
	}

	fmt.Fprintln(out, p.styles.Title.Render("termvid"))
	line("Source", p.cfg.Source)
	line("Dimensions", fmt.Sprintf("%dx%d", p.source.Width(), p.source.Height()))
	line("FPS", fmt.Sprintf("%.2f", p.source.FPS()))
	if !p.source.IsLive() {
		line("Frames", fmt.Sprintf("%d", p.source.FrameCount()))
	}
	line("Output width", fmt.Sprintf("%d characters", p.conv.Width()))
	line("Charset", p.cfg.Charset)
	line("Color", orDisabled(p.cfg.ColorMode))
	line("Speed", fmt.Sprintf("%gx", p.cfg.Speed))
	if p.track != nil && p.track.Available() {
		line("Audio", fmt.Sprintf("enabled (%.1fs)", p.track.Duration().Seconds()))
	} else {
		line("Audio", "disabled")
	}
	fmt.Fprintln(out, p.styles.Dim.Render("Press Ctrl+C to stop."))
}

// status renders the per-frame progress line appended below each frame.
func (p *Player) status(rendered, total int) string {
	var progress string
	if total > 0 {
		progress = fmt.Sprintf("Frame %d/%d (%.1f%%)", rendered+1, total, float64(rendered+1)/float64(total)*100)
	} else {
		progress = fmt.Sprintf("Frame %d", rendered+1)
	}
	if p.track != nil && p.track.Playing() {
		progress += fmt.Sprintf(" | audio %.1fs", p.track.CurrentTime().Seconds())
	}
	return p.styles.Dim.Render(progress)
}

// printSummary writes the completion summary after playback ends.
func (p *Player) printSummary(out io.Writer, rendered int, elapsed time.Duration) {
	fmt.Fprintln(out, p.styles.Title.Render("Playback complete"))
	fmt.Fprintf(out, "%s %d\n", p.styles.Label.Render("Frames rendered:"), rendered)
	fmt.Fprintf(out, "%s %.1fs\n", p.styles.Label.Render("Elapsed:"), elapsed.Seconds())
}

func orDisabled(v string) string {
	if v == "" {
		return "disabled"
	}
	return v
}
