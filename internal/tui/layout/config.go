package layout

// LayoutConfig holds all layout-related configuration values.
type LayoutConfig struct {
	Grid    GridConfig
	Panel   PanelConfig
	Preview PreviewConfig
	Input   InputConfig
	Text    TextConfig
}

// GridConfig holds gallery grid configuration.
type GridConfig struct {
	// HeightReduction is subtracted from terminal height for the grid body.
	// Accounts for: app padding (1) + title (2) + footer (2) + help bar (2) = 7
	HeightReduction int

	// MinHeight is the minimum grid height in rows.
	MinHeight int

	// CellWidth is the width of one gallery cell including its gap.
	CellWidth int

	// MaxColumns caps the number of columns on wide terminals.
	MaxColumns int

	// ContentPadding is subtracted from terminal width before fitting cells.
	ContentPadding int
}

// PanelConfig holds the edit and upload panel configuration.
type PanelConfig struct {
	// WidthPercent is the panel width as a percentage of terminal width.
	WidthPercent int

	// MinWidth is the minimum panel width in characters.
	MinWidth int

	// MaxWidth is the maximum panel width in characters.
	MaxWidth int

	// UploadRowLines is the number of lines one upload row takes.
	UploadRowLines int
}

// PreviewConfig holds the half-block preview size.
type PreviewConfig struct {
	Cols int // terminal columns
	Rows int // terminal rows, two pixels each
}

// InputConfig holds text input configuration.
type InputConfig struct {
	// Character limits
	TitleCharLimit       int
	DescriptionCharLimit int
	FilterCharLimit      int

	// Display widths
	StandardWidth int // title and description
	FilterWidth   int // gallery filter (narrower)

	// ProgressWidth is the width of an upload progress bar.
	ProgressWidth int
}

// TextConfig holds text truncation configuration.
type TextConfig struct {
	// Ellipsis is the string used to indicate truncation.
	Ellipsis string
}

// DefaultConfig returns the default layout configuration.
func DefaultConfig() LayoutConfig {
	return LayoutConfig{
		Grid: GridConfig{
			HeightReduction: 7,
			MinHeight:       3,
			CellWidth:       28,
			MaxColumns:      4,
			ContentPadding:  4,
		},
		Panel: PanelConfig{
			WidthPercent:   60,
			MinWidth:       40,
			MaxWidth:       100,
			UploadRowLines: 3,
		},
		Preview: PreviewConfig{
			Cols: 32,
			Rows: 12,
		},
		Input: InputConfig{
			TitleCharLimit:       100,
			DescriptionCharLimit: 500,
			FilterCharLimit:      50,
			StandardWidth:        40,
			FilterWidth:          30,
			ProgressWidth:        30,
		},
		Text: TextConfig{
			Ellipsis: "...",
		},
	}
}
