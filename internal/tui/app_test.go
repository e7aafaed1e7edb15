package tui_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/imgpick/internal/model"
	"github.com/nikbrunner/imgpick/internal/tui"
	"github.com/nikbrunner/imgpick/internal/upload"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

var (
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
)

func typeText(s string) []tea.Msg {
	msgs := make([]tea.Msg, 0, len(s))
	for _, r := range s {
		msgs = append(msgs, runeKey(r))
	}
	return msgs
}

// send feeds messages through Update and returns the resulting app.
func send(app tui.App, msgs ...tea.Msg) tui.App {
	for _, msg := range msgs {
		updated, _ := app.Update(msg)
		app = updated.(tui.App)
	}
	return app
}

// testStore holds five named images. At 80 columns the grid has two columns:
//
//	0 1
//	2 3
//	4
func testStore() *model.Store {
	names := []string{"beach.jpg", "city.png", "forest.jpg", "mountain.jpg", "sunset.png"}
	records := make([]model.ImageRecord, len(names))
	for i, name := range names {
		records[i] = model.NewImageRecord(model.NewImageRecordParams{
			Index: i,
			URL:   "/photos/" + name,
			Name:  name,
		})
	}

	store := model.NewStore()
	store.SetGalleryImages(records)
	return store
}

func newApp(store *model.Store) tui.App {
	return tui.NewApp(tui.AppParams{
		Store: store,
		Open: func(context.Context, string) (io.ReadCloser, int64, error) {
			return nil, 0, errors.New("no preview in tests")
		},
	}).WithDimensions(80, 24)
}

func TestApp_GridNavigation(t *testing.T) {
	app := newApp(testStore())

	steps := []struct {
		msg  tea.Msg
		want int
	}{
		{runeKey('l'), 1},
		{runeKey('l'), 1}, // row end
		{runeKey('j'), 3},
		{runeKey('j'), 3}, // no cell below
		{runeKey('h'), 2},
		{runeKey('j'), 4},
		{runeKey('k'), 2},
		{runeKey('k'), 0},
		{runeKey('k'), 0}, // top
		{runeKey('G'), 4},
	}

	for i, step := range steps {
		app = send(app, step.msg)
		if app.Cursor() != step.want {
			t.Fatalf("step %d: expected cursor %d, got %d", i, step.want, app.Cursor())
		}
	}

	app = send(app, runeKey('g'), runeKey('g'))
	if app.Cursor() != 0 {
		t.Errorf("gg should go to top, got %d", app.Cursor())
	}
}

func TestApp_SingleSelectReplaces(t *testing.T) {
	store := testStore()
	app := newApp(store)

	app = send(app, keySpace)
	assert.DeepEqual(t, store.SelectedImages, []string{"img-0"})

	app = send(app, runeKey('l'), keySpace)
	assert.DeepEqual(t, store.SelectedImages, []string{"img-1"})
	assert.Check(t, !store.GalleryImages[0].Selected)
	assert.Check(t, store.GalleryImages[1].Selected)
	_ = app
}

func TestApp_MultiSelect(t *testing.T) {
	store := testStore()
	app := newApp(store)

	app = send(app, runeKey('m'), keySpace, runeKey('j'), keySpace, runeKey('k'), runeKey('l'), keySpace)
	assert.Check(t, store.MultiSelectMode)
	assert.DeepEqual(t, store.SelectedImages, []string{"img-0", "img-2", "img-1"})
	assert.Check(t, is.Contains(app.View(), "3 images selected"))

	// Toggling off again removes
	app = send(app, keySpace)
	assert.DeepEqual(t, store.SelectedImages, []string{"img-0", "img-2"})

	// Leaving multi-select keeps the first pick
	app = send(app, runeKey('m'))
	assert.DeepEqual(t, store.SelectedImages, []string{"img-0"})

	app = send(app, runeKey('c'))
	assert.Check(t, is.Len(store.SelectedImages, 0))
	assert.Check(t, is.Contains(app.View(), "0 images selected"))
}

func TestApp_NextIgnoredWithoutSelection(t *testing.T) {
	app := newApp(testStore())

	app = send(app, keyEnter)
	if app.CurrentView() != tui.ViewGallery {
		t.Fatalf("expected to stay in gallery, got %v", app.CurrentView())
	}
	text, kind := app.Message()
	assert.Equal(t, kind, tui.MessageWarning)
	assert.Equal(t, text, "Select an image first")
}

func TestApp_InertSelectionDoesNotAdvance(t *testing.T) {
	store := testStore()
	store.SelectImage("img-99")
	app := newApp(store)

	app = send(app, keyEnter)
	assert.Equal(t, app.CurrentView(), tui.ViewGallery)
}

func TestApp_EditDescriptionAppliesToSelection(t *testing.T) {
	store := testStore()
	app := newApp(store)

	app = send(app, runeKey('m'), keySpace, runeKey('l'), keySpace, keyEnter)
	assert.Equal(t, app.CurrentView(), tui.ViewEdit)
	assert.Equal(t, app.EditField(), tui.FieldTitle)

	// Title stays local to the screen
	app = send(app, typeText("Trip")...)
	assert.Equal(t, app.Title(), "Trip")
	assert.Equal(t, store.GalleryImages[0].Description, "")

	app = send(app, keyTab)
	assert.Equal(t, app.EditField(), tui.FieldDescription)
	app = send(app, typeText("Summer")...)

	assert.Equal(t, store.GalleryImages[0].Description, "Summer")
	assert.Equal(t, store.GalleryImages[1].Description, "Summer")
	assert.Equal(t, store.GalleryImages[2].Description, "")

	// q is text while typing
	app = send(app, runeKey('q'))
	assert.Equal(t, store.GalleryImages[0].Description, "Summerq")
	assert.Equal(t, app.CurrentView(), tui.ViewEdit)
}

func TestApp_EditRedirectsWhenSelectionEmpty(t *testing.T) {
	store := testStore()
	app := newApp(store)

	app = send(app, keySpace, keyEnter)
	assert.Equal(t, app.CurrentView(), tui.ViewEdit)

	store.ClearSelection()
	app = send(app, runeKey('x'))
	assert.Equal(t, app.CurrentView(), tui.ViewGallery)
}

func TestApp_FilterListAppliesImmediately(t *testing.T) {
	store := testStore()
	app := newApp(store)

	app = send(app, keySpace, keyEnter, keyTab, keyTab)
	assert.Equal(t, app.EditTab(), tui.TabFilters)

	tests := []struct {
		msg  tea.Msg
		want string
	}{
		{runeKey('j'), "grayscale"},
		{runeKey('j'), "sepia"},
		{runeKey('k'), "grayscale"},
		{runeKey('G'), "brightness"},
		{runeKey('j'), "brightness"},
	}
	for _, tt := range tests {
		app = send(app, tt.msg)
		assert.Equal(t, store.CurrentFilter, tt.want)
	}

	app = send(app, runeKey('g'), runeKey('g'))
	assert.Equal(t, store.CurrentFilter, "none")
	assert.Equal(t, app.FilterCursor(), 0)

	// Tab wraps back to the info tab
	app = send(app, keyTab)
	assert.Equal(t, app.EditTab(), tui.TabInfo)
	assert.Equal(t, app.EditField(), tui.FieldTitle)
}

func TestApp_EditStartsAtCurrentFilter(t *testing.T) {
	store := testStore()
	store.SetCurrentFilter("invert")
	app := newApp(store)

	app = send(app, keySpace, keyEnter)
	assert.Equal(t, app.FilterCursor(), 3)
}

func TestApp_EscNavigation(t *testing.T) {
	app := newApp(testStore())

	app = send(app, keySpace, keyEnter, keyEnter)
	assert.Equal(t, app.CurrentView(), tui.ViewUpload)

	app = send(app, keyEsc)
	assert.Equal(t, app.CurrentView(), tui.ViewEdit)

	app = send(app, keyEsc)
	assert.Equal(t, app.CurrentView(), tui.ViewGallery)
}

func TestApp_FuzzyFilter(t *testing.T) {
	store := testStore()
	app := newApp(store)

	app = send(app, runeKey('/'))
	assert.Check(t, app.Filtering())

	app = send(app, typeText("sun")...)
	assert.Equal(t, app.FilterQuery(), "sun")
	items := app.Items()
	assert.Assert(t, len(items) >= 1)
	assert.Equal(t, items[0].Title(), "sunset.png")

	// Enter keeps the query, navigation works on the matches
	app = send(app, keyEnter)
	assert.Check(t, !app.Filtering())
	app = send(app, keySpace)
	assert.DeepEqual(t, store.SelectedImages, []string{"img-4"})

	// The store is never filtered
	assert.Check(t, is.Len(store.GalleryImages, 5))

	app = send(app, keyEsc)
	assert.Equal(t, app.FilterQuery(), "")
	assert.Check(t, is.Len(app.Items(), 5))
}

func TestApp_FuzzyFilterEscCancels(t *testing.T) {
	app := newApp(testStore())

	app = send(app, runeKey('/'))
	app = send(app, typeText("zzz")...)
	assert.Check(t, is.Len(app.Items(), 0))
	assert.Check(t, is.Contains(app.View(), "(no matches)"))

	app = send(app, keyEsc)
	assert.Check(t, !app.Filtering())
	assert.Check(t, is.Len(app.Items(), 5))
}

func TestApp_InitLoadsImages(t *testing.T) {
	store := model.NewStore()
	app := tui.NewApp(tui.AppParams{
		Store: store,
		Load: func(context.Context) ([]model.ImageRecord, error) {
			return testStore().GalleryImages, nil
		},
	})

	assert.Check(t, store.Loading)
	assert.Check(t, is.Contains(app.View(), "Loading images..."))

	cmd := app.Init()
	assert.Assert(t, cmd != nil)
	app = send(app, cmd())

	assert.Check(t, !store.Loading)
	assert.Check(t, is.Len(store.GalleryImages, 5))
	assert.Check(t, is.Len(app.Items(), 5))
}

func TestApp_InitLoadError(t *testing.T) {
	store := model.NewStore()
	app := tui.NewApp(tui.AppParams{Store: store})
	assert.Check(t, app.Init() == nil)

	app = send(app, tui.ImagesLoadedMsg{Err: errors.New("disk gone")})
	assert.Equal(t, store.Err, "disk gone")
	assert.Check(t, !store.Loading)
	assert.Check(t, is.Contains(app.View(), "disk gone"))
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := range 8 {
		for x := range 8 {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestApp_PreviewLoadsFirstSelected(t *testing.T) {
	data := pngBytes(t)
	var opened string

	store := testStore()
	app := tui.NewApp(tui.AppParams{
		Store: store,
		Open: func(_ context.Context, locator string) (io.ReadCloser, int64, error) {
			opened = locator
			return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
		},
	}).WithDimensions(120, 40)

	app = send(app, runeKey('l'), keySpace)
	updated, cmd := app.Update(keyEnter)
	app = updated.(tui.App)
	assert.Assert(t, cmd != nil)

	// The preview loader is the last command of the batch
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		msg = batch[len(batch)-1]()
	}
	preview, ok := msg.(tui.PreviewLoadedMsg)
	assert.Assert(t, ok, "expected PreviewLoadedMsg, got %T", msg)
	assert.NilError(t, preview.Err)
	assert.Equal(t, preview.ID, "img-1")
	assert.Equal(t, opened, "/photos/city.png")

	app = send(app, preview, keyTab, keyTab)
	assert.Check(t, is.Contains(app.View(), "▀"))
}

func TestApp_PreviewErrorAndStaleResults(t *testing.T) {
	app := newApp(testStore())
	app = send(app, keySpace, keyEnter, keyTab, keyTab)

	// A result for another record is ignored
	app = send(app, tui.PreviewLoadedMsg{ID: "img-3", Err: errors.New("boom")})
	assert.Check(t, is.Contains(app.View(), "Loading preview..."))

	app = send(app, tui.PreviewLoadedMsg{ID: "img-0", Err: errors.New("boom")})
	assert.Check(t, is.Contains(app.View(), "(preview unavailable)"))
}

func TestApp_UploadWithoutBackend(t *testing.T) {
	app := newApp(testStore())
	app = send(app, keySpace, keyEnter, keyEnter, runeKey('u'))

	assert.Check(t, !app.Uploading())
	text, kind := app.Message()
	assert.Equal(t, kind, tui.MessageError)
	assert.Equal(t, text, "No upload backend configured")
}

func TestApp_YankWithoutURL(t *testing.T) {
	app := newApp(testStore())
	app = send(app, keySpace, keyEnter, keyEnter, runeKey('Y'))

	text, kind := app.Message()
	assert.Equal(t, kind, tui.MessageWarning)
	assert.Equal(t, text, "No download URL")
}

func TestApp_UploadMessagesUpdateStore(t *testing.T) {
	store := testStore()
	app := newApp(store)
	app = send(app, runeKey('m'), keySpace, runeKey('l'), keySpace, keyEnter, keyEnter)
	assert.Equal(t, app.CurrentView(), tui.ViewUpload)

	app = send(app, tui.UploadProgressMsg{ID: "img-0", Percent: 50})
	pct, ok := store.GalleryImages[0].Progress()
	assert.Check(t, ok)
	assert.Equal(t, pct, 50.0)
	assert.Equal(t, store.GalleryImages[0].Status(), model.StatusUploading)

	app = send(app,
		tui.UploadProgressMsg{ID: "img-0", Percent: 100},
		tui.UploadFinishedMsg{Outcome: upload.Outcome{
			ID: "img-0", URL: "https://cdn.example/a.jpg", Status: model.StatusSuccess,
		}},
		tui.UploadFinishedMsg{Outcome: upload.Outcome{
			ID: "img-1", Status: model.StatusError, Err: "network",
		}},
	)

	assert.Equal(t, store.GalleryImages[0].Status(), model.StatusSuccess)
	assert.Equal(t, store.GalleryImages[1].Status(), model.StatusError)
	assert.Equal(t, store.GalleryImages[1].Error, "network")
	assert.Equal(t, app.DownloadURL("img-0"), "https://cdn.example/a.jpg")
	assert.Equal(t, app.DownloadURL("img-1"), "")

	view := app.View()
	assert.Check(t, is.Contains(view, "Complete"))
	assert.Check(t, is.Contains(view, "Error"))

	app = send(app, tui.UploadDoneMsg{Summary: upload.Summary{Succeeded: 1, Failed: 1}})
	assert.Check(t, app.UploadDone())
	assert.Check(t, is.Contains(app.View(), "Done"))
	text, kind := app.Message()
	assert.Equal(t, kind, tui.MessageWarning)
	assert.Equal(t, text, "Uploaded 1, failed 1")

	// Done goes back to the gallery with a fresh selection
	app = send(app, keyEnter)
	assert.Equal(t, app.CurrentView(), tui.ViewGallery)
	assert.Check(t, is.Len(store.SelectedImages, 0))
	assert.Equal(t, store.GalleryImages[0].Status(), model.StatusSuccess)
}

type fakeUploader struct {
	jobs []upload.Job
}

func (f *fakeUploader) Run(_ context.Context, rep upload.Reporter, jobs []upload.Job) upload.Summary {
	f.jobs = jobs

	summary := upload.Summary{}
	for _, j := range jobs {
		rep.Progress(j.ID, 0)
		if j.ID == "img-1" {
			o := upload.Outcome{ID: j.ID, Name: j.Name, Status: model.StatusError, Err: "network"}
			rep.Finished(o)
			summary.Failed++
			summary.Outcomes = append(summary.Outcomes, o)
			continue
		}
		rep.Progress(j.ID, 100)
		o := upload.Outcome{ID: j.ID, Name: j.Name, URL: "https://cdn.example/" + j.Name, Status: model.StatusSuccess}
		rep.Finished(o)
		summary.Succeeded++
		summary.Outcomes = append(summary.Outcomes, o)
	}
	return summary
}

func TestApp_UploadEndToEnd(t *testing.T) {
	store := testStore()
	fake := &fakeUploader{}
	app := tui.NewApp(tui.AppParams{
		Store:    store,
		Uploader: fake,
		Open: func(context.Context, string) (io.ReadCloser, int64, error) {
			return nil, 0, errors.New("no preview in tests")
		},
	}).WithDimensions(80, 24)

	app = send(app, runeKey('m'), keySpace, runeKey('l'), keySpace, keyEnter, keyTab)
	app = send(app, typeText("Holiday")...)
	app = send(app, keyTab, runeKey('j'), runeKey('j'), keyEnter)
	assert.Equal(t, app.CurrentView(), tui.ViewUpload)

	updated, cmd := app.Update(runeKey('u'))
	app = updated.(tui.App)
	assert.Check(t, app.Uploading())
	assert.Check(t, is.Contains(app.View(), "Uploading..."))

	batch, ok := cmd().(tea.BatchMsg)
	assert.Assert(t, ok)

	// batch: run, first wait, spinner tick
	go batch[0]()
	next := batch[1]
	for next != nil {
		msg := next()
		if msg == nil {
			break
		}
		updated, next = app.Update(msg)
		app = updated.(tui.App)
	}

	assert.Check(t, !app.Uploading())
	assert.Check(t, app.UploadDone())

	assert.Assert(t, is.Len(fake.jobs, 2))
	assert.Equal(t, fake.jobs[0].ID, "img-0")
	assert.Equal(t, fake.jobs[0].Filter, "sepia")
	assert.Equal(t, fake.jobs[1].Description, "Holiday")

	p, _ := store.GalleryImages[0].Progress()
	assert.Equal(t, p, 100.0)
	assert.Equal(t, store.GalleryImages[0].Status(), model.StatusSuccess)
	assert.Equal(t, store.GalleryImages[1].Status(), model.StatusError)
	assert.Equal(t, app.DownloadURL("img-0"), "https://cdn.example/beach.jpg")

	// Upload is not restarted once done
	app = send(app, runeKey('u'))
	assert.Equal(t, app.CurrentView(), tui.ViewGallery)
}

func TestApp_SpinnerTickIgnoredWhenIdle(t *testing.T) {
	app := newApp(testStore())
	_, cmd := app.Update(spinner.TickMsg{})
	assert.Check(t, cmd == nil)
}

func TestApp_WindowResize(t *testing.T) {
	app := newApp(testStore())
	app = send(app, tea.WindowSizeMsg{Width: 200, Height: 40})

	// Four columns: the first row holds cells 0-3
	app = send(app, runeKey('l'), runeKey('l'), runeKey('l'), runeKey('l'))
	assert.Equal(t, app.Cursor(), 3)

	// Cell 7 does not exist
	app = send(app, runeKey('j'))
	assert.Equal(t, app.Cursor(), 3)

	app = send(app, runeKey('h'), runeKey('h'), runeKey('h'), runeKey('j'))
	assert.Equal(t, app.Cursor(), 4)
}
