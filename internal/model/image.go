package model

import "fmt"

// UploadStatus classifies where an image is in its upload lifecycle.
type UploadStatus string

const (
	StatusIdle      UploadStatus = "idle"
	StatusUploading UploadStatus = "uploading"
	StatusSuccess   UploadStatus = "success"
	StatusError     UploadStatus = "error"
)

// DefaultFilter is the filter id meaning "no visual effect".
const DefaultFilter = "none"

// ImageRecord is a gallery image plus its edit and upload state.
type ImageRecord struct {
	ID             string       `json:"id"`
	URL            string       `json:"url"`
	Name           string       `json:"name"`
	Selected       bool         `json:"selected"` // derived from Store.SelectedImages
	Filter         string       `json:"filter,omitempty"`
	Description    string       `json:"description,omitempty"`
	UploadProgress *float64     `json:"uploadProgress,omitempty"` // nil until the first progress event
	UploadStatus   UploadStatus `json:"uploadStatus,omitempty"`   // "" reads as idle
	Error          string       `json:"error,omitempty"`
}

// NewImageRecordParams holds parameters for creating a new ImageRecord.
type NewImageRecordParams struct {
	Index int
	URL   string
	Name  string
}

// NewImageRecord creates a record with the load-order id "img-<index>".
// An empty name becomes "Image <index+1>".
func NewImageRecord(params NewImageRecordParams) ImageRecord {
	name := params.Name
	if name == "" {
		name = fmt.Sprintf("Image %d", params.Index+1)
	}

	return ImageRecord{
		ID:           fmt.Sprintf("img-%d", params.Index),
		URL:          params.URL,
		Name:         name,
		UploadStatus: StatusIdle,
	}
}

// Status returns the upload status, treating the zero value as idle.
func (r ImageRecord) Status() UploadStatus {
	if r.UploadStatus == "" {
		return StatusIdle
	}
	return r.UploadStatus
}

// Progress returns the upload percentage and whether any progress was reported.
func (r ImageRecord) Progress() (float64, bool) {
	if r.UploadProgress == nil {
		return 0, false
	}
	return *r.UploadProgress, true
}
