// Package picker is a small standalone list for choosing one uploaded image
// from history search results.
package picker

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/imgpick/internal/search"
	"github.com/nikbrunner/imgpick/internal/storage"
)

var (
	accent = lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}
	subtle = lipgloss.AdaptiveColor{Light: "#888888", Dark: "#606060"}

	selectedStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#505050", Dark: "#A0A0A0"})

	urlStyle = lipgloss.NewStyle().
			Foreground(subtle).
			Italic(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true).
			MarginBottom(1)
)

// Picker is a simple TUI for selecting from search results.
type Picker struct {
	results   []search.DocumentResult
	query     string
	cursor    int
	selected  bool
	cancelled bool
	width     int
	height    int
}

// New creates a new Picker with the given search results.
func New(results []search.DocumentResult, query string) Picker {
	return Picker{
		results: results,
		query:   query,
		width:   80,
		height:  24,
	}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return nil
}

func (p *Picker) move(delta int) {
	next := p.cursor + delta
	if next >= 0 && next < len(p.results) {
		p.cursor = next
	}
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		return p, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c", "q":
			p.cancelled = true
			return p, tea.Quit
		case "enter":
			p.selected = true
			return p, tea.Quit
		case "down", "j":
			p.move(1)
		case "up", "k":
			p.move(-1)
		}
	}

	return p, nil
}

// visibleRange keeps the cursor on screen. Each result takes two lines.
func (p Picker) visibleRange() (int, int) {
	rows := max((p.height-4)/2, 1)
	start := 0
	if p.cursor >= rows {
		start = p.cursor - rows + 1
	}
	return start, min(start+rows, len(p.results))
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder

	header := fmt.Sprintf("Uploads matching %q (%d)", p.query, len(p.results))
	if p.query == "" {
		header = fmt.Sprintf("Uploads (%d)", len(p.results))
	}
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n\n")

	start, end := p.visibleRange()
	for i := start; i < end; i++ {
		doc := p.results[i].Document

		cursor := "  "
		style := normalStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedStyle
		}

		title := doc.Name
		if doc.Description != "" {
			title += " - " + doc.Description
		}

		b.WriteString(fmt.Sprintf("%s%s\n", cursor, style.Render(title)))
		b.WriteString(fmt.Sprintf("   %s\n", urlStyle.Render(doc.URL)))
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(subtle).Render("j/k: move  Enter: copy URL  q/Esc: cancel"))

	return b.String()
}

// Selected returns the chosen document, or nil if cancelled.
func (p Picker) Selected() *storage.Document {
	if p.cancelled || !p.selected {
		return nil
	}
	if p.cursor < len(p.results) {
		return p.results[p.cursor].Document
	}
	return nil
}

// Cancelled returns true if the user cancelled the selection.
func (p Picker) Cancelled() bool {
	return p.cancelled
}
