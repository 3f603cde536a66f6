package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"})

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#AA6600", Dark: "#FFB86C"})

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#00AA00", Dark: "#50FA7B"})

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: "#AD8EE6"})

	matchStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#00AA00", Dark: "#50FA7B"})

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#999999", Dark: "#666666"})
)

// Stdout and Stderr are where messages go.
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

func Success(msg string) {
	fmt.Fprintln(Stdout, successStyle.Render("✅ "+msg))
}

func Info(msg string) {
	fmt.Fprintln(Stdout, "ℹ️", msg)
}

func Warn(msg string) {
	fmt.Fprintln(Stderr, warnStyle.Render("⚠️  "+msg))
}

// Error prints a fatal diagnostic to stderr.
func Error(err error) {
	fmt.Fprintln(Stderr, errorStyle.Render("ERROR: "+err.Error()))
}

// ProjectRow is one line of the projects table.
type ProjectRow struct {
	Name    string
	Pattern string
	Matched string // matched prefix, empty when the project does not apply
	Note    string
}

// ProjectsTable renders the configured projects. selected is the index of
// the project a run would use, or -1.
func ProjectsTable(rows []ProjectRow, selected int) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("", "PROJECT", "PATH", "MATCH")

	for i, r := range rows {
		marker := ""
		if i == selected {
			marker = "▶"
		}
		match := r.Matched
		if r.Note != "" {
			match = r.Note
		}
		t.Row(marker, r.Name, r.Pattern, match)
	}

	t.StyleFunc(func(row, col int) lipgloss.Style {
		base := lipgloss.NewStyle().Padding(0, 1)
		switch {
		case row == table.HeaderRow:
			return headerStyle.Padding(0, 1)
		case row == selected:
			return matchStyle.Padding(0, 1)
		case row >= 0 && row < len(rows) && rows[row].Matched == "":
			return base.Inherit(dimStyle)
		}
		return base
	})
	return t.String()
}
