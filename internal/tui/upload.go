package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/imgpick/internal/model"
	"github.com/nikbrunner/imgpick/internal/tui/layout"
	"github.com/nikbrunner/imgpick/internal/upload"
)

// channelReporter turns orchestrator callbacks into messages for the event
// loop, so the store is only ever touched from Update.
type channelReporter struct {
	ctx    context.Context
	events chan<- tea.Msg
}

func (r channelReporter) send(msg tea.Msg) {
	select {
	case r.events <- msg:
	case <-r.ctx.Done():
	}
}

func (r channelReporter) Progress(id string, pct float64) {
	r.send(UploadProgressMsg{ID: id, Percent: pct})
}

func (r channelReporter) Finished(o upload.Outcome) {
	r.send(UploadFinishedMsg{Outcome: o})
}

// waitForUpload delivers the next upload event. Handlers re-arm it after
// every progress or finished message.
func waitForUpload(events <-chan tea.Msg) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}

// enterUpload switches to the upload screen.
func (a *App) enterUpload() tea.Cmd {
	if len(a.store.SelectedRecords()) == 0 {
		a.view = ViewGallery
		return nil
	}

	a.edit.TitleInput.Blur()
	a.edit.DescInput.Blur()
	a.view = ViewUpload
	if !a.upload.Running {
		a.upload.Done = false
		a.upload.Summary = upload.Summary{}
		a.upload.Cursor = 0
	}
	return nil
}

// startUpload runs the orchestrator in a command and streams its events
// back through a channel.
func (a *App) startUpload() tea.Cmd {
	if a.uploader == nil {
		a.setMessage(MessageError, "No upload backend configured")
		return nil
	}

	jobs := upload.Jobs(a.store)
	if len(jobs) == 0 {
		return nil
	}

	events := make(chan tea.Msg, len(jobs))
	a.upload.events = events
	a.upload.Running = true
	a.upload.Done = false
	a.upload.URLs = map[string]string{}
	a.clearMessage()

	ctx, uploader := a.ctx, a.uploader
	reporter := channelReporter{ctx: ctx, events: events}
	run := func() tea.Msg {
		summary := uploader.Run(ctx, reporter, jobs)
		reporter.send(UploadDoneMsg{Summary: summary})
		close(events)
		return nil
	}

	return tea.Batch(run, waitForUpload(events), a.upload.Spinner.Tick)
}

func (a App) handleUploadFinished(msg UploadFinishedMsg) App {
	o := msg.Outcome
	a.store.SetUploadStatus(o.ID, o.Status, o.Err)
	if o.URL != "" {
		a.upload.URLs[o.ID] = o.URL
	}
	return a
}

func (a App) handleUploadDone(msg UploadDoneMsg) App {
	a.upload.Running = false
	a.upload.Done = true
	a.upload.Summary = msg.Summary
	a.upload.events = nil

	if msg.Summary.Failed == 0 {
		a.setMessage(MessageSuccess, fmt.Sprintf("Uploaded %d image(s)", msg.Summary.Succeeded))
	} else {
		a.setMessage(MessageWarning, fmt.Sprintf("Uploaded %d, failed %d", msg.Summary.Succeeded, msg.Summary.Failed))
	}
	return a
}

// finishUpload returns to the gallery with an empty selection.
func (a *App) finishUpload() {
	a.view = ViewGallery
	a.upload.Done = false
	a.upload.Cursor = 0
	a.store.ClearSelection()
	a.clearMessage()
}

func (a App) updateUpload(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := a.store.SelectedRecords()

	cmd, handled := a.handleCommonKeys(msg,
		func() { a.upload.Cursor = 0 },
		func() { a.upload.Cursor = max(len(rows)-1, 0) },
	)
	if handled {
		return a, cmd
	}

	switch {
	case key.Matches(msg, a.keys.Down):
		if a.upload.Cursor < len(rows)-1 {
			a.upload.Cursor++
		}
	case key.Matches(msg, a.keys.Up):
		if a.upload.Cursor > 0 {
			a.upload.Cursor--
		}

	case key.Matches(msg, a.keys.YankURL):
		a.yankURL(rows)

	case key.Matches(msg, a.keys.Upload), key.Matches(msg, a.keys.Next):
		switch {
		case a.upload.Done:
			a.finishUpload()
		case !a.upload.Running:
			return a, a.startUpload()
		}

	case key.Matches(msg, a.keys.Back):
		switch {
		case a.upload.Running:
			// stay until the batch settles
		case a.upload.Done:
			a.finishUpload()
		default:
			a.view = ViewEdit
			return a, a.edit.focus()
		}
	}

	return a, nil
}

func (a *App) yankURL(rows []model.ImageRecord) {
	if a.upload.Cursor >= len(rows) {
		return
	}

	url := a.upload.URLs[rows[a.upload.Cursor].ID]
	if url == "" {
		a.setMessage(MessageWarning, "No download URL")
		return
	}

	if err := clipboard.WriteAll(url); err != nil {
		a.setMessage(MessageError, "Copy failed: "+err.Error())
		return
	}
	a.setMessage(MessageSuccess, "Copied download URL")
}

func (a App) renderUpload() string {
	rows := a.store.SelectedRecords()
	width := layout.CalculatePanelWidth(a.width, a.layoutConfig.Panel)

	var content strings.Builder
	content.WriteString(a.styles.Heading.Render(fmt.Sprintf("Uploading %d image(s)", len(rows))) + "\n\n")

	visible := max(a.height-12, 1) / a.layoutConfig.Panel.UploadRowLines
	start, end := layout.CalculateVisibleListItems(visible, a.upload.Cursor, len(rows))
	for i := start; i < end; i++ {
		content.WriteString(a.renderUploadRow(rows[i], i == a.upload.Cursor, width-6))
		content.WriteString("\n")
	}

	content.WriteString("\n" + a.renderUploadButton())
	return a.styles.Panel.Width(width).Render(content.String())
}

func (a App) renderUploadRow(rec model.ImageRecord, isCursor bool, width int) string {
	name, _ := layout.TruncateText(rec.Name, max(width-2, 1), a.layoutConfig.Text)
	if isCursor {
		name = a.styles.CellCursor.Render(name)
	} else {
		name = a.styles.Cell.Render(name)
	}

	pct, _ := rec.Progress()

	var label string
	switch rec.Status() {
	case model.StatusSuccess:
		label = a.styles.Success.Render("Complete")
	case model.StatusError:
		label = a.styles.Error.Render("Error")
		if rec.Error != "" {
			label += a.styles.Muted.Render(": " + rec.Error)
		}
	case model.StatusUploading:
		label = fmt.Sprintf("%3.0f%%", pct)
	default:
		label = a.styles.Muted.Render("Waiting")
	}

	desc := rec.Description
	if desc == "" {
		desc = "(no description)"
	}
	desc, _ = layout.TruncateText(desc, max(width-2, 1), a.layoutConfig.Text)

	return name + "\n" +
		a.upload.Bar.ViewAs(pct/100) + " " + label + "\n" +
		a.styles.Muted.Render(desc)
}

func (a App) renderUploadButton() string {
	switch {
	case a.upload.Running:
		return a.styles.Button.Render(a.upload.Spinner.View() + " Uploading...")
	case a.upload.Done:
		return a.styles.Button.Render("Done")
	default:
		return a.styles.Button.Render("Upload")
	}
}
