package tui

import "strings"

// Hint represents a single keybind hint for display.
type Hint struct {
	Key  string // Display key (e.g., "j/k", "Enter")
	Desc string // Short description (e.g., "move", "open")
}

// renderHint renders a single hint as "key:desc" with styling.
func (a App) renderHint(h Hint) string {
	return a.styles.HintKey.Render(h.Key) + ":" + a.styles.HintDesc.Render(h.Desc)
}

// renderHints renders hints in horizontal format for the bottom bar.
func (a App) renderHints(hints HintSet) string {
	all := hints.All()
	if len(all) == 0 {
		return ""
	}

	parts := make([]string, len(all))
	for i, h := range all {
		parts[i] = a.renderHint(h)
	}
	return strings.Join(parts, " ")
}

// HintSet is an ordered collection of hints by group.
type HintSet struct {
	Nav    []Hint
	Edit   []Hint
	Action []Hint
	System []Hint
}

// All returns all hints flattened in display order: Nav + Action + Edit + System.
func (h HintSet) All() []Hint {
	result := make([]Hint, 0, len(h.Nav)+len(h.Action)+len(h.Edit)+len(h.System))
	result = append(result, h.Nav...)
	result = append(result, h.Action...)
	result = append(result, h.Edit...)
	result = append(result, h.System...)
	return result
}

// getContextualHints returns the hints for the current screen.
func (a App) getContextualHints() HintSet {
	switch a.view {
	case ViewEdit:
		if a.edit.Tab == TabFilters {
			return a.getFilterListHints()
		}
		return a.getInfoHints()
	case ViewUpload:
		return a.getUploadHints()
	default:
		if a.gallery.Filtering {
			return a.getGalleryFilterHints()
		}
		return a.getGalleryHints()
	}
}

func (a App) getGalleryHints() HintSet {
	hints := HintSet{
		Nav: []Hint{
			{Key: "hjkl", Desc: "move"},
		},
		Action: []Hint{
			{Key: "space", Desc: "select"},
			{Key: "m", Desc: "multi"},
			{Key: "/", Desc: "filter"},
		},
		System: []Hint{
			{Key: "q", Desc: "quit"},
		},
	}
	if len(a.store.SelectedImages) > 0 {
		hints.Edit = []Hint{
			{Key: "c", Desc: "clear"},
			{Key: "Enter", Desc: "next"},
		}
	}
	if a.gallery.Query() != "" {
		hints.System = append([]Hint{{Key: "Esc", Desc: "clear filter"}}, hints.System...)
	}
	return hints
}

func (a App) getGalleryFilterHints() HintSet {
	return HintSet{
		Nav: []Hint{
			{Key: "type", Desc: "filter"},
		},
		Action: []Hint{
			{Key: "Enter", Desc: "apply"},
		},
		System: []Hint{
			{Key: "Esc", Desc: "cancel"},
		},
	}
}

func (a App) getInfoHints() HintSet {
	return HintSet{
		Nav: []Hint{
			{Key: "Tab", Desc: "next field"},
		},
		Action: []Hint{
			{Key: "Enter", Desc: "continue"},
		},
		System: []Hint{
			{Key: "Esc", Desc: "back"},
		},
	}
}

func (a App) getFilterListHints() HintSet {
	return HintSet{
		Nav: []Hint{
			{Key: "j/k", Desc: "filter"},
			{Key: "Tab", Desc: "info"},
		},
		Action: []Hint{
			{Key: "Enter", Desc: "continue"},
		},
		System: []Hint{
			{Key: "Esc", Desc: "back"},
			{Key: "q", Desc: "quit"},
		},
	}
}

func (a App) getUploadHints() HintSet {
	switch {
	case a.upload.Running:
		return HintSet{
			Nav: []Hint{
				{Key: "j/k", Desc: "move"},
			},
			System: []Hint{
				{Key: "", Desc: "uploading..."},
			},
		}
	case a.upload.Done:
		return HintSet{
			Nav: []Hint{
				{Key: "j/k", Desc: "move"},
			},
			Action: []Hint{
				{Key: "Y", Desc: "yank URL"},
				{Key: "Enter", Desc: "done"},
			},
			System: []Hint{
				{Key: "q", Desc: "quit"},
			},
		}
	default:
		return HintSet{
			Nav: []Hint{
				{Key: "j/k", Desc: "move"},
			},
			Action: []Hint{
				{Key: "u/Enter", Desc: "upload"},
			},
			System: []Hint{
				{Key: "Esc", Desc: "back"},
				{Key: "q", Desc: "quit"},
			},
		}
	}
}
