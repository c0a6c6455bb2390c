package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"zotsync/internal/application"
	"zotsync/internal/ports"
)

var (
	primary = lipgloss.Color("#7C3AED") // Purple
	green   = lipgloss.Color("#10B981")
	muted   = lipgloss.Color("#6B7280")
	amber   = lipgloss.Color("#F59E0B")
	red     = lipgloss.Color("#EF4444")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(primary)
	countStyle    = lipgloss.NewStyle().Bold(true)
	okStyle       = lipgloss.NewStyle().Foreground(green)
	mutedStyle    = lipgloss.NewStyle().Foreground(muted)
	warningStyle  = lipgloss.NewStyle().Foreground(amber).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(red)
	helpKeyStyle  = lipgloss.NewStyle().Foreground(primary).Bold(true)
	helpDescStyle = lipgloss.NewStyle().Foreground(muted)
)

// RenderSummary formats the end-of-run totals for the terminal.
func RenderSummary(mode application.Mode, stats application.Stats) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Sync finished (%s)", mode)))
	b.WriteString("\n")

	line := func(label string, n int, style lipgloss.Style) {
		b.WriteString(fmt.Sprintf("  %-14s %s\n", label, style.Render(countStyle.Render(fmt.Sprintf("%d", n)))))
	}
	line("matched", stats.Matched, mutedStyle)
	line("processed", stats.Processed, okStyle)
	if mode.Live() {
		line("notes created", stats.NotesCreated, okStyle)
	} else {
		line("notes planned", stats.NotesCreated, mutedStyle)
	}
	line("duplicates", stats.Duplicates, mutedStyle)
	if stats.Failed > 0 {
		line("failed", stats.Failed, errorStyle)
	}
	return b.String()
}

// RenderRuns formats recent run history as a table.
func RenderRuns(runs []ports.RunSummary) string {
	if len(runs) == 0 {
		return mutedStyle.Render("no recorded runs") + "\n"
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Recent runs"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  %-5s %-8s %-17s %9s %7s %7s",
		"id", "mode", "started", "processed", "notes", "failed")))
	b.WriteString("\n")
	for _, r := range runs {
		row := fmt.Sprintf("  %-5d %-8s %-17s %9d %7d %7d",
			r.ID, r.Mode, r.StartedAt.Format("2006-01-02 15:04"),
			r.Processed, r.NotesCreated, r.Failed)
		if r.Failed > 0 {
			row = errorStyle.Render(row)
		}
		b.WriteString(row)
		b.WriteString("\n")
	}
	return b.String()
}
