package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jfoltran/copyredis/internal/metrics"
)

var (
	throughputValueStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))
	throughputErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
)

// RenderThroughput renders the request throughput counters.
func RenderThroughput(snap metrics.Snapshot, width int) string {
	parts := []string{
		throughputValueStyle.Render(fmt.Sprintf("%.0f req/s", snap.RequestsPerSec)),
		fmt.Sprintf("Total: %s requests", formatCount(snap.TotalRequests)),
	}
	return "  " + strings.Join(parts, "  |  ") + errorSuffix(snap.ErrorCount)
}

// errorSuffix appends an "Errors: N" segment when count is positive, empty
// otherwise.
func errorSuffix(count int) string {
	if count <= 0 {
		return ""
	}
	return fmt.Sprintf("  Errors: %s", throughputErrorStyle.Render(fmt.Sprintf("%d", count)))
}
