package tui

import (
	"image"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/imgpick/internal/tui/layout"
	"github.com/nikbrunner/imgpick/internal/upload"
)

// View identifies which screen is showing.
type View int

const (
	ViewGallery View = iota
	ViewEdit
	ViewUpload
)

// String returns the screen title.
func (v View) String() string {
	switch v {
	case ViewEdit:
		return "Edit"
	case ViewUpload:
		return "Upload"
	default:
		return "Gallery"
	}
}

// MessageType determines the styling of status messages.
type MessageType int

const (
	MessageNone MessageType = iota
	MessageInfo
	MessageSuccess
	MessageWarning
	MessageError
)

// GalleryState holds the grid cursor and the fuzzy name filter.
type GalleryState struct {
	Cursor      int             // index into the visible cells
	Filtering   bool            // filter input has focus
	FilterInput textinput.Model // query, kept after Enter
}

// NewGalleryState creates a GalleryState with an initialized filter input.
func NewGalleryState(cfg layout.LayoutConfig) GalleryState {
	input := textinput.New()
	input.Placeholder = "Filter images..."
	input.Prompt = "/"
	input.CharLimit = cfg.Input.FilterCharLimit
	input.Width = cfg.Input.FilterWidth
	return GalleryState{FilterInput: input}
}

// Query returns the active filter query.
func (g GalleryState) Query() string {
	return g.FilterInput.Value()
}

// EditTab identifies the edit screen tab.
type EditTab int

const (
	TabInfo EditTab = iota
	TabFilters
)

// EditField identifies the focused input on the info tab.
type EditField int

const (
	FieldTitle EditField = iota
	FieldDescription
)

// EditState holds the edit screen inputs and the preview.
type EditState struct {
	Tab          EditTab
	Field        EditField
	TitleInput   textinput.Model // local to the screen, never stored
	DescInput    textinput.Model // applied to every selected image
	FilterCursor int

	PreviewID  string      // record the preview belongs to
	Preview    image.Image // decoded and downscaled, unfiltered
	PreviewErr error
}

// NewEditState creates an EditState with initialized inputs.
func NewEditState(cfg layout.LayoutConfig) EditState {
	title := textinput.New()
	title.Placeholder = "Title"
	title.CharLimit = cfg.Input.TitleCharLimit
	title.Width = cfg.Input.StandardWidth

	desc := textinput.New()
	desc.Placeholder = "Description"
	desc.CharLimit = cfg.Input.DescriptionCharLimit
	desc.Width = cfg.Input.StandardWidth

	return EditState{TitleInput: title, DescInput: desc}
}

// focus moves input focus to the current field. Returns the blink command.
func (e *EditState) focus() tea.Cmd {
	e.TitleInput.Blur()
	e.DescInput.Blur()
	if e.Tab != TabInfo {
		return nil
	}
	if e.Field == FieldTitle {
		return e.TitleInput.Focus()
	}
	return e.DescInput.Focus()
}

// UploadState holds the upload screen state.
type UploadState struct {
	Cursor  int
	Running bool
	Done    bool
	Summary upload.Summary
	URLs    map[string]string // record id -> download URL
	Spinner spinner.Model
	Bar     progress.Model
	events  chan tea.Msg
}

// NewUploadState creates an idle UploadState.
func NewUploadState(cfg layout.LayoutConfig) UploadState {
	s := spinner.New()
	s.Spinner = spinner.Dot

	bar := progress.New(progress.WithSolidFill("#5F8787"), progress.WithoutPercentage())
	bar.Width = cfg.Input.ProgressWidth

	return UploadState{
		URLs:    map[string]string{},
		Spinner: s,
		Bar:     bar,
	}
}
