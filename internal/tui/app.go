package tui

import (
	"context"
	"image"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/imgpick/internal/model"
	"github.com/nikbrunner/imgpick/internal/source"
	"github.com/nikbrunner/imgpick/internal/tui/layout"
	"github.com/nikbrunner/imgpick/internal/upload"
)

// ImagesLoadedMsg carries the result of the initial gallery load.
type ImagesLoadedMsg struct {
	Images []model.ImageRecord
	Err    error
}

// PreviewLoadedMsg carries the decoded preview of one record.
type PreviewLoadedMsg struct {
	ID    string
	Image image.Image
	Err   error
}

// UploadProgressMsg reports progress for one record.
type UploadProgressMsg struct {
	ID      string
	Percent float64
}

// UploadFinishedMsg reports the terminal state of one record.
type UploadFinishedMsg struct {
	Outcome upload.Outcome
}

// UploadDoneMsg is sent once every record of a batch has finished.
type UploadDoneMsg struct {
	Summary upload.Summary
}

// Uploader runs an upload batch. Satisfied by *upload.Orchestrator.
type Uploader interface {
	Run(ctx context.Context, rep upload.Reporter, jobs []upload.Job) upload.Summary
}

// LoadFunc produces the gallery records.
type LoadFunc func(ctx context.Context) ([]model.ImageRecord, error)

// App is the main bubbletea model for the image picker.
type App struct {
	ctx          context.Context
	store        *model.Store
	keys         KeyMap
	styles       Styles
	layoutConfig layout.LayoutConfig

	load     LoadFunc
	open     upload.OpenFunc
	uploader Uploader

	view    View
	gallery GalleryState
	edit    EditState
	upload  UploadState

	// Status message shown above the hints
	messageText string
	messageType MessageType

	// For gg command
	lastKeyWasG bool

	// Window dimensions
	width  int
	height int
}

// AppParams holds parameters for creating a new App.
type AppParams struct {
	Store        *model.Store
	Keys         *KeyMap              // optional, uses default if nil
	Styles       *Styles              // optional, uses default if nil
	LayoutConfig *layout.LayoutConfig // optional, uses default if nil
	Load         LoadFunc             // optional, the gallery starts with the store's images
	Open         upload.OpenFunc      // optional, defaults to source.Open
	Uploader     Uploader             // optional, uploading is refused without one
	Context      context.Context      // optional, defaults to context.Background
}

// NewApp creates a new App with the given parameters.
func NewApp(params AppParams) App {
	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}

	styles := DefaultStyles()
	if params.Styles != nil {
		styles = *params.Styles
	}

	layoutCfg := layout.DefaultConfig()
	if params.LayoutConfig != nil {
		layoutCfg = *params.LayoutConfig
	}

	store := params.Store
	if store == nil {
		store = model.NewStore()
	}

	ctx := params.Context
	if ctx == nil {
		ctx = context.Background()
	}

	open := params.Open
	if open == nil {
		open = source.Open
	}

	if params.Load != nil {
		store.SetLoading(true)
	}

	return App{
		ctx:          ctx,
		store:        store,
		keys:         keys,
		styles:       styles,
		layoutConfig: layoutCfg,
		load:         params.Load,
		open:         open,
		uploader:     params.Uploader,
		view:         ViewGallery,
		gallery:      NewGalleryState(layoutCfg),
		edit:         NewEditState(layoutCfg),
		upload:       NewUploadState(layoutCfg),
		width:        80,
		height:       24,
	}
}

// WithDimensions returns a copy of the app with the given terminal size.
func (a App) WithDimensions(width, height int) App {
	a.width = width
	a.height = height
	return a
}

// Store returns the shared image store.
func (a App) Store() *model.Store {
	return a.store
}

// CurrentView returns the screen that is showing.
func (a App) CurrentView() View {
	return a.view
}

// Cursor returns the gallery cursor position.
func (a App) Cursor() int {
	return a.gallery.Cursor
}

// Filtering reports whether the gallery filter input has focus.
func (a App) Filtering() bool {
	return a.gallery.Filtering
}

// FilterQuery returns the gallery filter query.
func (a App) FilterQuery() string {
	return a.gallery.Query()
}

// EditTab returns the active edit tab.
func (a App) EditTab() EditTab {
	return a.edit.Tab
}

// EditField returns the focused input on the info tab.
func (a App) EditField() EditField {
	return a.edit.Field
}

// Title returns the edit screen title. It is never written to the store.
func (a App) Title() string {
	return a.edit.TitleInput.Value()
}

// FilterCursor returns the highlighted entry of the filter list.
func (a App) FilterCursor() int {
	return a.edit.FilterCursor
}

// Uploading reports whether a batch is running.
func (a App) Uploading() bool {
	return a.upload.Running
}

// UploadDone reports whether the last batch has finished.
func (a App) UploadDone() bool {
	return a.upload.Done
}

// UploadCursor returns the highlighted row of the upload list.
func (a App) UploadCursor() int {
	return a.upload.Cursor
}

// DownloadURL returns the download URL recorded for id, if any.
func (a App) DownloadURL(id string) string {
	return a.upload.URLs[id]
}

// Message returns the current status message.
func (a App) Message() (string, MessageType) {
	return a.messageText, a.messageType
}

func (a *App) setMessage(msgType MessageType, text string) {
	a.messageType = msgType
	a.messageText = text
}

func (a *App) clearMessage() {
	a.messageType = MessageNone
	a.messageText = ""
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	if a.load == nil {
		return nil
	}

	load, ctx := a.load, a.ctx
	return func() tea.Msg {
		images, err := load(ctx)
		return ImagesLoadedMsg{Images: images, Err: err}
	}
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case ImagesLoadedMsg:
		a.store.SetLoading(false)
		if msg.Err != nil {
			a.store.SetError(msg.Err.Error())
			a.setMessage(MessageError, "Failed to load images")
			return a, nil
		}
		a.store.SetError("")
		a.store.SetGalleryImages(msg.Images)
		a.refreshGallery()
		return a, nil

	case PreviewLoadedMsg:
		return a.handlePreviewLoaded(msg), nil

	case UploadProgressMsg:
		a.store.UpdateUploadProgress(msg.ID, msg.Percent)
		return a, waitForUpload(a.upload.events)

	case UploadFinishedMsg:
		return a.handleUploadFinished(msg), waitForUpload(a.upload.events)

	case UploadDoneMsg:
		return a.handleUploadDone(msg), nil

	case spinner.TickMsg:
		if !a.upload.Running {
			return a, nil
		}
		var cmd tea.Cmd
		a.upload.Spinner, cmd = a.upload.Spinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		// ctrl+c always quits, even while typing
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}

		switch a.view {
		case ViewEdit:
			return a.updateEdit(msg)
		case ViewUpload:
			return a.updateUpload(msg)
		default:
			return a.updateGallery(msg)
		}
	}

	return a, nil
}

// handleCommonKeys applies gg, G and quit to a list. It reports whether the
// key was consumed.
func (a *App) handleCommonKeys(msg tea.KeyMsg, top func(), bottom func()) (tea.Cmd, bool) {
	if key.Matches(msg, a.keys.Top) {
		if a.lastKeyWasG {
			top()
			a.lastKeyWasG = false
			return nil, true
		}
		a.lastKeyWasG = true
		return nil, true
	}

	// Reset g flag for any other key
	a.lastKeyWasG = false

	switch {
	case key.Matches(msg, a.keys.Quit):
		return tea.Quit, true
	case key.Matches(msg, a.keys.Bottom):
		bottom()
		return nil, true
	}
	return nil, false
}

// View implements tea.Model.
func (a App) View() string {
	return a.renderView()
}
