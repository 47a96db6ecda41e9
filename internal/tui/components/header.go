package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jfoltran/copyredis/internal/metrics"
)

var (
	headerPhaseStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A78BFA"))
	headerValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
)

// headerField is one "Label: value" pair rendered into the status bar.
type headerField struct {
	label string
	value string
}

func (f headerField) String() string {
	return fmt.Sprintf("%s: %s", f.label, headerValueStyle.Render(f.value))
}

// RenderHeader renders the top status bar: phase, elapsed time, offset lag,
// and throughput.
func RenderHeader(snap metrics.Snapshot, width int) string {
	left := "  Phase: " + headerPhaseStyle.Render(strings.ToUpper(snap.Phase)) +
		"    " + headerField{"Elapsed", formatDuration(snap.ElapsedSec)}.String()

	rightFields := []headerField{
		{"Lag", fmt.Sprintf("%d", snap.OffsetLag)},
		{"Throughput", fmt.Sprintf("%.0f req/s", snap.RequestsPerSec)},
	}
	segments := make([]string, len(rightFields))
	for i, f := range rightFields {
		segments[i] = f.String()
	}
	right := strings.Join(segments, "    ") + "  "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return left + strings.Repeat(" ", gap) + right
}

func formatDuration(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second))
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
