package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jfoltran/copyredis/internal/metrics"
)

// RenderProgress renders the overall fraction of targets that have reached
// the streaming phase.
func RenderProgress(snap metrics.Snapshot, width int) string {
	total := snap.TargetsTotal
	if total == 0 {
		return "  No targets configured"
	}

	streaming := 0
	for _, tp := range snap.Targets {
		if tp.Status == metrics.TargetStreaming {
			streaming++
		}
	}

	pct := float64(streaming) / float64(total) * 100

	barWidth := width - 40
	if barWidth < 10 {
		barWidth = 10
	}

	filled := int(float64(barWidth) * pct / 100)
	if filled > barWidth {
		filled = barWidth
	}
	empty := barWidth - filled

	coloredFull := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Render(strings.Repeat("█", filled))
	coloredEmpty := lipgloss.NewStyle().Foreground(lipgloss.Color("#374151")).Render(strings.Repeat("░", empty))

	return fmt.Sprintf("  Overall: %s%s %5.1f%% (%d/%d targets streaming)",
		coloredFull, coloredEmpty, pct, streaming, total)
}
