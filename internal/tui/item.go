package tui

import (
	"github.com/nikbrunner/imgpick/internal/model"
	"github.com/nikbrunner/imgpick/internal/search"
)

// Item is one visible gallery cell.
type Item struct {
	Index          int // position in the store's gallery
	Record         *model.ImageRecord
	MatchedIndexes []int // byte offsets into the name, set while filtering
}

// ID returns the record id.
func (i Item) ID() string {
	return i.Record.ID
}

// Title returns a display title for the item.
func (i Item) Title() string {
	return i.Record.Name
}

// Items returns the gallery cells in display order. With a filter query the
// cells are the fuzzy matches, best first.
func (a App) Items() []Item {
	images := a.store.GalleryImages

	query := a.gallery.Query()
	if query == "" {
		items := make([]Item, len(images))
		for i := range images {
			items[i] = Item{Index: i, Record: &images[i]}
		}
		return items
	}

	results := search.FuzzySearchImages(images, query)
	items := make([]Item, len(results))
	for i, r := range results {
		items[i] = Item{Index: r.Index, Record: r.Image, MatchedIndexes: r.MatchedIndexes}
	}
	return items
}
