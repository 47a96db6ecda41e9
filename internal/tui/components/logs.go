package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jfoltran/copyredis/internal/metrics"
)

var logTimeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

var logDefaultLevel = logLevel{label: "DBG", style: lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))}

type logLevel struct {
	label string
	style lipgloss.Style
}

var logLevels = map[string]logLevel{
	"info":  {label: "INF", style: lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6"))},
	"warn":  {label: "WRN", style: lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))},
	"error": {label: "ERR", style: lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))},
}

func renderLevel(level string) string {
	lvl, ok := logLevels[level]
	if !ok {
		lvl = logDefaultLevel
	}
	return lvl.style.Render(lvl.label)
}

// RenderLogs renders the last maxLines log entries, most recent last.
func RenderLogs(entries []metrics.LogEntry, maxLines int) string {
	if len(entries) == 0 {
		return "  No log entries yet"
	}

	start := 0
	if len(entries) > maxLines {
		start = len(entries) - maxLines
	}
	window := entries[start:]

	lines := make([]string, len(window))
	for i, e := range window {
		ts := logTimeStyle.Render(e.Time.Format("15:04:05"))
		lines[i] = fmt.Sprintf("  %s %s %s", ts, renderLevel(e.Level), e.Message)
	}
	return strings.Join(lines, "\n")
}
