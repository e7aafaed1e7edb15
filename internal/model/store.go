package model

import "slices"

// Store holds the gallery, the ordered selection and the shared edit state.
// It is not safe for concurrent use; wrap it in a SyncStore when transitions
// arrive from more than one goroutine.
type Store struct {
	GalleryImages   []ImageRecord `json:"galleryImages"`
	SelectedImages  []string      `json:"selectedImages"` // selection order, not gallery order
	MultiSelectMode bool          `json:"multiSelectMode"`
	CurrentFilter   string        `json:"currentFilter"`
	Loading         bool          `json:"isLoading"`
	Err             string        `json:"error,omitempty"`
}

// NewStore creates an empty Store with initialized slices.
func NewStore() *Store {
	return &Store{
		GalleryImages:  []ImageRecord{},
		SelectedImages: []string{},
		CurrentFilter:  DefaultFilter,
	}
}

// SetGalleryImages replaces the gallery. The selection is kept as-is, so ids
// missing from the new set stay in SelectedImages but match nothing.
func (s *Store) SetGalleryImages(records []ImageRecord) {
	s.GalleryImages = slices.Clone(records)
	if s.GalleryImages == nil {
		s.GalleryImages = []ImageRecord{}
	}
	s.recomputeSelected()
}

// SelectImage applies the selection rule for the current mode.
// Multi-select toggles membership; single-select replaces the selection.
// Unknown ids are accepted like any other string.
func (s *Store) SelectImage(id string) {
	if s.MultiSelectMode {
		if idx := slices.Index(s.SelectedImages, id); idx > -1 {
			s.SelectedImages = slices.Delete(s.SelectedImages, idx, idx+1)
		} else {
			s.SelectedImages = append(s.SelectedImages, id)
		}
	} else {
		s.SelectedImages = []string{id}
	}

	s.recomputeSelected()
}

// ClearSelection empties the selection.
func (s *Store) ClearSelection() {
	s.SelectedImages = []string{}
	s.recomputeSelected()
}

// ToggleMultiSelectMode flips multi-select. Leaving multi-select keeps only
// the first-selected id.
func (s *Store) ToggleMultiSelectMode() {
	s.MultiSelectMode = !s.MultiSelectMode
	if !s.MultiSelectMode && len(s.SelectedImages) > 1 {
		s.SelectedImages = s.SelectedImages[:1:1]
		s.recomputeSelected()
	}
}

// SetCurrentFilter overwrites the shared preview filter. No validation.
func (s *Store) SetCurrentFilter(filterID string) {
	s.CurrentFilter = filterID
}

// SetImageDescription replaces the description of one record.
// Unknown ids are ignored.
func (s *Store) SetImageDescription(id, description string) {
	if img := s.GetImageByID(id); img != nil {
		img.Description = description
	}
}

// UpdateUploadProgress records progress and marks the record as uploading.
// Last write wins, including over terminal states.
func (s *Store) UpdateUploadProgress(id string, progress float64) {
	if img := s.GetImageByID(id); img != nil {
		p := progress
		img.UploadProgress = &p
		img.UploadStatus = StatusUploading
	}
}

// SetUploadStatus sets status and error text. Progress is left untouched.
func (s *Store) SetUploadStatus(id string, status UploadStatus, errText string) {
	if img := s.GetImageByID(id); img != nil {
		img.UploadStatus = status
		img.Error = errText
	}
}

// SetLoading sets the gallery loading flag.
func (s *Store) SetLoading(loading bool) {
	s.Loading = loading
}

// SetError sets the gallery-level error banner. Empty clears it.
func (s *Store) SetError(errText string) {
	s.Err = errText
}

// GetImageByID finds a record by ID, returns nil if not found.
func (s *Store) GetImageByID(id string) *ImageRecord {
	for i := range s.GalleryImages {
		if s.GalleryImages[i].ID == id {
			return &s.GalleryImages[i]
		}
	}
	return nil
}

// IsSelected reports whether id is part of the selection.
func (s *Store) IsSelected(id string) bool {
	return slices.Contains(s.SelectedImages, id)
}

// SelectedRecords returns copies of the selected records in selection order.
// Ids that match no record are skipped.
func (s *Store) SelectedRecords() []ImageRecord {
	result := make([]ImageRecord, 0, len(s.SelectedImages))
	for _, id := range s.SelectedImages {
		if img := s.GetImageByID(id); img != nil {
			result = append(result, *img)
		}
	}
	return result
}

// recomputeSelected derives every Selected flag from SelectedImages.
func (s *Store) recomputeSelected() {
	for i := range s.GalleryImages {
		s.GalleryImages[i].Selected = slices.Contains(s.SelectedImages, s.GalleryImages[i].ID)
	}
}
