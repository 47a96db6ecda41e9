package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jfoltran/copyredis/internal/metrics"
)

var (
	tgtHeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3B82F6"))
	tgtSyncStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	tgtStreamStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	tgtPendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// RenderTargets renders the per-target dispatch progress table.
func RenderTargets(snap metrics.Snapshot, width, maxRows int) string {
	if len(snap.Targets) == 0 {
		return "  No target data available"
	}

	var b strings.Builder

	header := fmt.Sprintf("  %-28s %-12s %-14s %s", "Target", "Status", "Sent", "Dropped")
	b.WriteString(tgtHeaderStyle.Render(header))
	b.WriteByte('\n')

	shown := len(snap.Targets)
	if maxRows > 0 && shown > maxRows {
		shown = maxRows
	}

	for i := 0; i < shown; i++ {
		tp := snap.Targets[i]
		addr := tp.Address
		if len(addr) > 26 {
			addr = addr[:23] + "..."
		}

		var statusStr string
		switch tp.Status {
		case metrics.TargetSyncing:
			statusStr = tgtSyncStyle.Render("syncing")
		case metrics.TargetStreaming:
			statusStr = tgtStreamStyle.Render("streaming")
		default:
			statusStr = tgtPendingStyle.Render("pending")
		}

		line := fmt.Sprintf("  %-28s %-20s %-14s %d",
			addr, statusStr, formatCount(tp.RequestsSent), tp.RequestsDropped)
		b.WriteString(line)
		if i < shown-1 {
			b.WriteByte('\n')
		}
	}

	if len(snap.Targets) > shown {
		b.WriteByte('\n')
		b.WriteString(fmt.Sprintf("  ... and %d more targets", len(snap.Targets)-shown))
	}

	return b.String()
}

func formatCount(n int64) string {
	switch {
	case n >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", float64(n)/1e9)
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1e6)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1e3)
	default:
		return fmt.Sprintf("%d", n)
	}
}
