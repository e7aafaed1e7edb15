package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/imgpick/internal/filter"
	"github.com/nikbrunner/imgpick/internal/model"
	"github.com/nikbrunner/imgpick/internal/tui/layout"
)

// refreshGallery keeps the cursor inside the visible cells.
func (a *App) refreshGallery() {
	n := len(a.Items())
	if a.gallery.Cursor >= n {
		a.gallery.Cursor = max(n-1, 0)
	}
}

func (a App) updateGallery(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.gallery.Filtering {
		return a.updateGalleryFilter(msg)
	}

	items := a.Items()
	cmd, handled := a.handleCommonKeys(msg,
		func() { a.gallery.Cursor = 0 },
		func() { a.gallery.Cursor = max(len(items)-1, 0) },
	)
	if handled {
		return a, cmd
	}

	columns := layout.CalculateGrid(a.width, a.height, a.layoutConfig.Grid).Columns
	move := func(dx, dy int) {
		a.gallery.Cursor = layout.MoveInGrid(a.gallery.Cursor, len(items), columns, dx, dy)
	}

	switch {
	case key.Matches(msg, a.keys.Up):
		move(0, -1)
	case key.Matches(msg, a.keys.Down):
		move(0, 1)
	case key.Matches(msg, a.keys.Left):
		move(-1, 0)
	case key.Matches(msg, a.keys.Right):
		move(1, 0)

	case key.Matches(msg, a.keys.Select):
		if len(items) > 0 {
			a.store.SelectImage(items[a.gallery.Cursor].ID())
			a.clearMessage()
		}

	case key.Matches(msg, a.keys.MultiSelect):
		a.store.ToggleMultiSelectMode()
		if a.store.MultiSelectMode {
			a.setMessage(MessageInfo, "Multi-select on")
		} else {
			a.setMessage(MessageInfo, "Multi-select off")
		}

	case key.Matches(msg, a.keys.Clear):
		a.store.ClearSelection()
		a.clearMessage()

	case key.Matches(msg, a.keys.Filter):
		a.gallery.Filtering = true
		return a, a.gallery.FilterInput.Focus()

	case key.Matches(msg, a.keys.Back):
		if a.gallery.Query() != "" {
			a.gallery.FilterInput.Reset()
			a.refreshGallery()
		}

	case key.Matches(msg, a.keys.Next):
		if len(a.store.SelectedRecords()) == 0 {
			a.setMessage(MessageWarning, "Select an image first")
			return a, nil
		}
		a.clearMessage()
		return a, a.enterEdit()
	}

	return a, nil
}

func (a App) updateGalleryFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		a.gallery.Filtering = false
		a.gallery.FilterInput.Blur()
		return a, nil

	case tea.KeyEsc:
		a.gallery.Filtering = false
		a.gallery.FilterInput.Blur()
		a.gallery.FilterInput.Reset()
		a.refreshGallery()
		return a, nil
	}

	before := a.gallery.Query()
	var cmd tea.Cmd
	a.gallery.FilterInput, cmd = a.gallery.FilterInput.Update(msg)
	if a.gallery.Query() != before {
		a.gallery.Cursor = 0
	}
	return a, cmd
}

func (a App) renderGallery() string {
	if a.store.Loading {
		return a.styles.Empty.Render("Loading images...")
	}

	var b strings.Builder

	if a.store.Err != "" {
		b.WriteString(a.styles.Error.Render("Error: "+a.store.Err) + "\n\n")
	}

	if a.gallery.Filtering || a.gallery.Query() != "" {
		b.WriteString(a.gallery.FilterInput.View() + "\n\n")
	}

	items := a.Items()
	switch {
	case len(items) == 0 && a.gallery.Query() != "":
		b.WriteString(a.styles.Empty.Render("(no matches)") + "\n")
	case len(items) == 0:
		b.WriteString(a.styles.Empty.Render("(no images)") + "\n")
	default:
		b.WriteString(a.renderGrid(items))
	}

	b.WriteString("\n" + a.renderSelectionFooter())
	return b.String()
}

func (a App) renderGrid(items []Item) string {
	grid := layout.CalculateGrid(a.width, a.height, a.layoutConfig.Grid)

	totalRows := (len(items) + grid.Columns - 1) / grid.Columns
	offset := layout.CalculateViewportOffset(a.gallery.Cursor/grid.Columns, totalRows, grid.Rows)

	var b strings.Builder
	for row := offset; row < totalRows && row < offset+grid.Rows; row++ {
		for col := range grid.Columns {
			i := row*grid.Columns + col
			if i >= len(items) {
				break
			}
			b.WriteString(a.renderCell(items[i], i == a.gallery.Cursor, grid.CellWidth))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderCell renders one fixed-width gallery cell, with one column of gap.
func (a App) renderCell(item Item, isCursor bool, width int) string {
	rec := item.Record
	inner := max(width-1, 1)

	mark := "[ ] "
	if rec.Selected {
		mark = "[x] "
	}
	suffix := statusGlyph(rec.Status())

	style := a.styles.Cell
	switch {
	case isCursor:
		style = a.styles.CellCursor
	case rec.Selected:
		style = a.styles.CellSelected
	}

	if len(item.MatchedIndexes) == 0 {
		return style.Render(layout.FitCell(mark+rec.Name+suffix, inner, a.layoutConfig.Text)) + " "
	}

	matchSet := make(map[int]bool, len(item.MatchedIndexes))
	for _, idx := range item.MatchedIndexes {
		matchSet[idx] = true
	}

	var line strings.Builder
	line.WriteString(mark)
	for i, r := range rec.Name {
		if matchSet[i] {
			line.WriteString("\033[1;4m")
			line.WriteRune(r)
			line.WriteString("\033[22;24m")
		} else {
			line.WriteRune(r)
		}
	}
	line.WriteString(suffix)

	text := layout.TruncateANSIAware(line.String(), inner, a.layoutConfig.Text)
	if pad := inner - layout.VisibleLength(text); pad > 0 {
		text += strings.Repeat(" ", pad)
	}
	return style.Render(text) + " "
}

func statusGlyph(status model.UploadStatus) string {
	switch status {
	case model.StatusUploading:
		return " ↑"
	case model.StatusSuccess:
		return " ✓"
	case model.StatusError:
		return " ✗"
	default:
		return ""
	}
}

func (a App) renderSelectionFooter() string {
	count := len(a.store.SelectedRecords())
	noun := "images"
	if count == 1 {
		noun = "image"
	}

	parts := []string{fmt.Sprintf("%d %s selected", count, noun)}
	if a.store.MultiSelectMode {
		parts = append(parts, "multi-select")
	}
	if f, ok := filter.Lookup(a.store.CurrentFilter); ok && f.ID != model.DefaultFilter {
		parts = append(parts, "filter: "+f.Name)
	}

	return a.styles.Muted.Render(strings.Join(parts, " · "))
}
