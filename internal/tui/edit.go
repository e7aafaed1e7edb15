package tui

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/nikbrunner/imgpick/internal/filter"
	"github.com/nikbrunner/imgpick/internal/model"
	"github.com/nikbrunner/imgpick/internal/tui/layout"
	"github.com/nikbrunner/imgpick/internal/upload"
)

// enterEdit switches to the edit screen, or back to the gallery when
// nothing is selected.
func (a *App) enterEdit() tea.Cmd {
	selected := a.store.SelectedRecords()
	if len(selected) == 0 {
		a.view = ViewGallery
		return nil
	}

	a.view = ViewEdit
	a.edit.Tab = TabInfo
	a.edit.Field = FieldTitle
	a.edit.DescInput.SetValue(selected[0].Description)
	a.edit.FilterCursor = max(filter.Index(a.store.CurrentFilter), 0)

	cmds := []tea.Cmd{a.edit.focus()}

	first := selected[0]
	if a.edit.PreviewID != first.ID {
		a.edit.PreviewID = first.ID
		a.edit.Preview = nil
		a.edit.PreviewErr = nil
		cmds = append(cmds, loadPreview(a.ctx, a.open, first, a.layoutConfig.Preview))
	}

	return tea.Batch(cmds...)
}

// loadPreview decodes a record and scales it down once, so every redraw
// only has to apply the filter.
func loadPreview(ctx context.Context, open upload.OpenFunc, rec model.ImageRecord, cfg layout.PreviewConfig) tea.Cmd {
	return func() tea.Msg {
		rc, _, err := open(ctx, rec.URL)
		if err != nil {
			return PreviewLoadedMsg{ID: rec.ID, Err: err}
		}
		defer rc.Close()

		img, _, err := image.Decode(rc)
		if err != nil {
			return PreviewLoadedMsg{ID: rec.ID, Err: fmt.Errorf("decode %s: %w", rec.Name, err)}
		}
		return PreviewLoadedMsg{ID: rec.ID, Image: filter.Thumbnail(img, cfg.Cols*2, cfg.Rows*4)}
	}
}

func (a App) handlePreviewLoaded(msg PreviewLoadedMsg) App {
	if msg.ID != a.edit.PreviewID {
		return a
	}
	if msg.Err != nil {
		logrus.WithError(msg.Err).WithField("id", msg.ID).Warn("preview unavailable")
	}
	a.edit.Preview = msg.Image
	a.edit.PreviewErr = msg.Err
	return a
}

// nextEditFocus cycles Title -> Description -> Filters -> Title.
func (a *App) nextEditFocus() {
	switch {
	case a.edit.Tab == TabFilters:
		a.edit.Tab = TabInfo
		a.edit.Field = FieldTitle
	case a.edit.Field == FieldTitle:
		a.edit.Field = FieldDescription
	default:
		a.edit.Tab = TabFilters
	}
}

func (a App) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(a.store.SelectedRecords()) == 0 {
		a.view = ViewGallery
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Back):
		a.edit.TitleInput.Blur()
		a.edit.DescInput.Blur()
		a.view = ViewGallery
		return a, nil

	case key.Matches(msg, a.keys.Tab):
		a.nextEditFocus()
		return a, a.edit.focus()

	case msg.Type == tea.KeyEnter:
		return a, a.enterUpload()
	}

	if a.edit.Tab == TabFilters {
		return a.updateFilterList(msg)
	}

	var cmd tea.Cmd
	if a.edit.Field == FieldTitle {
		a.edit.TitleInput, cmd = a.edit.TitleInput.Update(msg)
		return a, cmd
	}

	before := a.edit.DescInput.Value()
	a.edit.DescInput, cmd = a.edit.DescInput.Update(msg)
	if value := a.edit.DescInput.Value(); value != before {
		for _, id := range a.store.SelectedImages {
			a.store.SetImageDescription(id, value)
		}
	}
	return a, cmd
}

// updateFilterList moves through the catalog. The highlighted filter is
// applied straight away.
func (a App) updateFilterList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	choose := func(i int) {
		a.edit.FilterCursor = i
		a.store.SetCurrentFilter(filter.Catalog[i].ID)
	}

	cmd, handled := a.handleCommonKeys(msg,
		func() { choose(0) },
		func() { choose(len(filter.Catalog) - 1) },
	)
	if handled {
		return a, cmd
	}

	switch {
	case key.Matches(msg, a.keys.Down):
		if a.edit.FilterCursor < len(filter.Catalog)-1 {
			choose(a.edit.FilterCursor + 1)
		}
	case key.Matches(msg, a.keys.Up):
		if a.edit.FilterCursor > 0 {
			choose(a.edit.FilterCursor - 1)
		}
	case key.Matches(msg, a.keys.Next):
		return a, a.enterUpload()
	}

	return a, nil
}

func (a App) renderEdit() string {
	selected := a.store.SelectedRecords()
	width := layout.CalculatePanelWidth(a.width, a.layoutConfig.Panel)

	var content strings.Builder

	names := make([]string, len(selected))
	for i, r := range selected {
		names[i] = r.Name
	}
	summary, _ := layout.TruncateText(strings.Join(names, ", "), width-6, a.layoutConfig.Text)
	content.WriteString(a.styles.Heading.Render(fmt.Sprintf("Editing %d image(s)", len(selected))) + "\n")
	content.WriteString(a.styles.Muted.Render(summary) + "\n\n")

	content.WriteString(a.renderTabs() + "\n\n")

	if a.edit.Tab == TabInfo {
		content.WriteString(a.styles.Label.Render("Title") + "\n")
		content.WriteString(a.edit.TitleInput.View() + "\n\n")
		content.WriteString(a.styles.Label.Render("Description") + "\n")
		content.WriteString(a.edit.DescInput.View())
	} else {
		content.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			a.renderFilterList(),
			"   ",
			a.renderPreview(),
		))
	}

	return a.styles.Panel.Width(width).Render(content.String())
}

func (a App) renderTabs() string {
	tabs := []struct {
		tab   EditTab
		label string
	}{
		{TabInfo, "Information"},
		{TabFilters, "Filters"},
	}

	rendered := make([]string, len(tabs))
	for i, t := range tabs {
		if t.tab == a.edit.Tab {
			rendered[i] = a.styles.TabActive.Render(t.label)
		} else {
			rendered[i] = a.styles.Tab.Render(t.label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, rendered...)
}

func (a App) renderFilterList() string {
	var b strings.Builder
	for i, f := range filter.Catalog {
		marker := "  "
		if f.ID == a.store.CurrentFilter {
			marker = "● "
		}
		line := marker + f.Name
		if i == a.edit.FilterCursor {
			b.WriteString(a.styles.CellCursor.Render(line))
		} else {
			b.WriteString(a.styles.Cell.Render(line))
		}
		if i < len(filter.Catalog)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (a App) renderPreview() string {
	switch {
	case a.edit.PreviewErr != nil:
		return a.styles.Muted.Render("(preview unavailable)")
	case a.edit.Preview == nil:
		return a.styles.Muted.Render("Loading preview...")
	}
	cfg := a.layoutConfig.Preview
	return filter.Render(a.edit.Preview, a.store.CurrentFilter, cfg.Cols, cfg.Rows)
}
