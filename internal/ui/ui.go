// internal/ui/ui.go
package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Styles bundles every lipgloss style the CLI and the interactive
// front end render with. Styles are produced once from the configured
// theme and passed around as a value.
type Styles struct {
	Title     lipgloss.Style
	Prompt    lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Subtle    lipgloss.Style
	Highlight lipgloss.Style
	Panel     lipgloss.Style
	PanelDim  lipgloss.Style
}

// ForTheme returns the style set for a theme name. Unknown themes fall
// back to the default "frog" palette; "mono" renders without color for
// plain terminals.
func ForTheme(theme string) Styles {
	switch theme {
	case "mono":
		plain := lipgloss.NewStyle()
		border := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
		return Styles{
			Title:     plain.Copy().Bold(true),
			Prompt:    plain.Copy().Bold(true),
			Error:     plain.Copy().Bold(true),
			Success:   plain.Copy().Bold(true),
			Subtle:    plain.Copy().Faint(true),
			Highlight: plain.Copy().Reverse(true),
			Panel:     border.Copy(),
			PanelDim:  border.Copy().Faint(true),
		}
	default: // "frog"
		return Styles{
			Title: lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#10B981")).
				MarginBottom(1),
			Prompt: lipgloss.NewStyle().
				Foreground(lipgloss.Color("#06B6D4")).
				Bold(true),
			Error: lipgloss.NewStyle().
				Foreground(lipgloss.Color("#EF4444")).
				Bold(true),
			Success: lipgloss.NewStyle().
				Foreground(lipgloss.Color("#10B981")).
				Bold(true),
			Subtle: lipgloss.NewStyle().
				Foreground(lipgloss.Color("#6B7280")),
			Highlight: lipgloss.NewStyle().
				Foreground(lipgloss.Color("#111827")).
				Background(lipgloss.Color("#10B981")).
				Bold(true),
			Panel: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#10B981")).
				Padding(0, 1),
			PanelDim: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#374151")).
				Padding(0, 1),
		}
	}
}

// FormatFileSize converts bytes to human-readable format
func FormatFileSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// FormatDuration converts seconds to MM:SS format
func FormatDuration(seconds float64) string {
	totalSeconds := int(seconds)
	minutes := totalSeconds / 60
	remainingSeconds := totalSeconds % 60

	return fmt.Sprintf("%02d:%02d", minutes, remainingSeconds)
}

// EstimateDuration returns the clip length for a frame count at the
// given rate.
func EstimateDuration(frames, fps int) float64 {
	if fps <= 0 {
		return 0
	}
	return float64(frames) / float64(fps)
}
