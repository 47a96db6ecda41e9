package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jfoltran/copyredis/internal/metrics"
)

const sparklineChars = "▁▂▃▄▅▆▇█"

// Offset-lag thresholds, in bytes of wire distance between source and
// target, above which RenderLag escalates the lag color.
const (
	lagWarnThreshold = 1 << 20
	lagCritThreshold = 10 << 20
)

var (
	colorLagOK   = lipgloss.Color("#10B981")
	colorLagWarn = lipgloss.Color("#F59E0B")
	colorLagCrit = lipgloss.Color("#EF4444")
)

// lagColorFor picks the sparkline/value color for a given lag reading.
func lagColorFor(lag int64) lipgloss.Color {
	switch {
	case lag > lagCritThreshold:
		return colorLagCrit
	case lag > lagWarnThreshold:
		return colorLagWarn
	default:
		return colorLagOK
	}
}

// LagHistory keeps a rolling window of replication-offset lag values for
// sparkline rendering.
type LagHistory struct {
	values []int64
	cap    int
}

// NewLagHistory creates a history buffer with the given capacity.
func NewLagHistory(cap int) *LagHistory {
	return &LagHistory{
		values: make([]int64, 0, cap),
		cap:    cap,
	}
}

// Push adds a new lag value.
func (h *LagHistory) Push(lag int64) {
	if len(h.values) >= h.cap {
		copy(h.values, h.values[1:])
		h.values = h.values[:len(h.values)-1]
	}
	h.values = append(h.values, lag)
}

// Sparkline returns a sparkline string representation.
func (h *LagHistory) Sparkline(width int) string {
	if len(h.values) == 0 {
		return strings.Repeat("▁", width)
	}

	vals := h.values
	if len(vals) > width {
		vals = vals[len(vals)-width:]
	}

	var maxVal int64
	for _, v := range vals {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	runes := []rune(sparklineChars)
	var b strings.Builder
	for _, v := range vals {
		idx := int(float64(v) / float64(maxVal) * float64(len(runes)-1))
		if idx >= len(runes) {
			idx = len(runes) - 1
		}
		if idx < 0 {
			idx = 0
		}
		b.WriteRune(runes[idx])
	}

	for b.Len() < width {
		b.WriteRune(runes[0])
	}

	return b.String()
}

// RenderLag renders the replication-offset lag with a sparkline.
func RenderLag(snap metrics.Snapshot, history *LagHistory, width int) string {
	history.Push(snap.OffsetLag)

	lagStyle := lipgloss.NewStyle().Foreground(lagColorFor(snap.OffsetLag))

	sparkWidth := width - 30
	if sparkWidth < 10 {
		sparkWidth = 10
	}

	spark := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).Render(history.Sparkline(sparkWidth))

	return fmt.Sprintf("  Lag: %s  %s",
		lagStyle.Render(fmt.Sprintf("%d bytes", snap.OffsetLag)),
		spark)
}
