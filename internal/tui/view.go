package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderView creates the complete screen for the current view.
func (a App) renderView() string {
	var body string
	switch a.view {
	case ViewEdit:
		body = a.renderEdit()
	case ViewUpload:
		body = a.renderUpload()
	default:
		body = a.renderGallery()
	}

	content := a.styles.App.Render(
		lipgloss.JoinVertical(lipgloss.Left, a.renderHeader(), body, a.renderHelpBar()),
	)

	// Use Place to ensure exact terminal dimensions and prevent overflow
	return lipgloss.Place(a.width, a.height, lipgloss.Left, lipgloss.Top, content)
}

func (a App) renderHeader() string {
	steps := []View{ViewGallery, ViewEdit, ViewUpload}
	parts := make([]string, len(steps))
	for i, v := range steps {
		if v == a.view {
			parts[i] = a.styles.Title.Render(v.String())
		} else {
			parts[i] = a.styles.Muted.Render(v.String())
		}
	}
	return a.styles.Title.Render("imgpick") + "  " + strings.Join(parts, a.styles.Muted.Render(" › ")) + "\n"
}

func (a App) renderHelpBar() string {
	var lines []string

	// Empty spacer OR message (message replaces the gap)
	if a.messageText != "" {
		lines = append(lines, a.renderMessageLine())
	} else {
		lines = append(lines, "")
	}

	if hints := a.renderHints(a.getContextualHints()); hints != "" {
		lines = append(lines, hints)
	}

	return strings.Join(lines, "\n")
}

// renderMessageLine renders the styled message with prefix icon based on type.
func (a App) renderMessageLine() string {
	var msgStyle lipgloss.Style
	var prefix string

	switch a.messageType {
	case MessageError:
		msgStyle = a.styles.Error.Bold(true)
		prefix = "✗ "
	case MessageWarning:
		msgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#CC8800", Dark: "#FFAA00"}).
			Bold(true)
		prefix = "⚠ "
	case MessageSuccess:
		msgStyle = a.styles.Success.Bold(true)
		prefix = "✓ "
	default:
		msgStyle = a.styles.Title
	}

	return msgStyle.Render(prefix + a.messageText)
}
