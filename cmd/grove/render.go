package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aretw0/grove"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	untitledStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241"))
	idStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	markerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	statusStyles  = map[string]lipgloss.Style{
		"idle":    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		"syncing": lipgloss.NewStyle().Foreground(lipgloss.Color("110")),
		"saved":   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		"error":   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
)

const untitled = "Untitled"

// renderTree draws the hierarchy one note per line. Children of collapsed notes
// are hidden unless all is set.
func renderTree(roots []*grove.NoteTreeItem, selected string, all bool) string {
	var b strings.Builder
	grove.Walk(roots, func(item *grove.NoteTreeItem) bool {
		b.WriteString(strings.Repeat("  ", item.Depth))

		marker := " "
		if len(item.Children) > 0 {
			marker = "▸"
			if item.IsExpanded || all {
				marker = "▾"
			}
		}
		b.WriteString(markerStyle.Render(marker))
		b.WriteString(" ")

		if item.Title == "" {
			b.WriteString(untitledStyle.Render(untitled))
		} else {
			b.WriteString(titleStyle.Render(item.Title))
		}
		b.WriteString(" ")
		b.WriteString(idStyle.Render(shortID(item.ID)))
		if item.ID == selected {
			b.WriteString(markerStyle.Render(" *"))
		}
		b.WriteString("\n")
		return item.IsExpanded || all
	})
	return b.String()
}

func renderStatus(status string) string {
	style, ok := statusStyles[status]
	if !ok {
		return status
	}
	return style.Render(status)
}

// shortID trims uuids to their first group for display.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i >= 8 {
		return id[:i]
	}
	return id
}
