package layout

import "testing"

func TestCalculateGrid(t *testing.T) {
	cfg := DefaultConfig().Grid

	tests := []struct {
		name          string
		width, height int
		wantColumns   int
		wantCell      int
		wantRows      int
	}{
		{"standard terminal", 80, 24, 2, 38, 17},     // (80-4)/28 = 2, 76/2 = 38, 24-7
		{"wide terminal caps columns", 200, 40, 4, 49, 33},
		{"narrow terminal keeps one column", 20, 24, 1, 16, 17},
		{"short terminal enforces min rows", 80, 6, 2, 38, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateGrid(tt.width, tt.height, cfg)
			if got.Columns != tt.wantColumns || got.CellWidth != tt.wantCell || got.Rows != tt.wantRows {
				t.Errorf("CalculateGrid(%d, %d) = %+v, want {%d %d %d}",
					tt.width, tt.height, got, tt.wantColumns, tt.wantCell, tt.wantRows)
			}
		})
	}
}

func TestMoveInGrid(t *testing.T) {
	// 5 cells in 2 columns:
	// 0 1
	// 2 3
	// 4
	tests := []struct {
		name           string
		cursor, dx, dy int
		want           int
	}{
		{"right", 0, 1, 0, 1},
		{"right at row end stays", 1, 1, 0, 1},
		{"left at row start stays", 2, -1, 0, 2},
		{"down", 1, 0, 1, 3},
		{"down into short row blocked", 3, 0, 1, 3},
		{"down into last cell", 2, 0, 1, 4},
		{"up at top stays", 0, 0, -1, 0},
		{"right past last cell stays", 4, 1, 0, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MoveInGrid(tt.cursor, 5, 2, tt.dx, tt.dy)
			if got != tt.want {
				t.Errorf("MoveInGrid(%d, dx=%d, dy=%d) = %d, want %d",
					tt.cursor, tt.dx, tt.dy, got, tt.want)
			}
		})
	}

	if got := MoveInGrid(0, 0, 2, 1, 0); got != 0 {
		t.Errorf("empty grid should keep cursor at 0, got %d", got)
	}
}

func TestCalculateViewportOffset(t *testing.T) {
	tests := []struct {
		name           string
		selected       int
		total          int
		viewportHeight int
		want           int
	}{
		{"no scroll needed", 2, 5, 10, 0},
		{"selection near start", 1, 20, 10, 0},
		{"selection in middle", 10, 20, 10, 5}, // 10 - 10/2 = 5
		{"selection near end", 18, 20, 10, 10}, // max offset = 20-10 = 10
		{"all items visible", 5, 8, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateViewportOffset(tt.selected, tt.total, tt.viewportHeight)
			if got != tt.want {
				t.Errorf("CalculateViewportOffset(%d, %d, %d) = %d, want %d",
					tt.selected, tt.total, tt.viewportHeight, got, tt.want)
			}
		})
	}
}

func TestCalculatePanelWidth(t *testing.T) {
	cfg := DefaultConfig().Panel

	tests := []struct {
		name          string
		terminalWidth int
		want          int
	}{
		{"standard terminal", 80, 48},        // 80*60/100
		{"wide terminal caps", 200, 100},     // 120 > max
		{"narrow terminal uses min", 50, 40}, // 30 < min
		{"tiny terminal", 20, 16},            // min exceeds width-4
		{"degenerate", 3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculatePanelWidth(tt.terminalWidth, cfg); got != tt.want {
				t.Errorf("CalculatePanelWidth(%d) = %d, want %d", tt.terminalWidth, got, tt.want)
			}
		})
	}
}

func TestCalculateVisibleListItems(t *testing.T) {
	tests := []struct {
		name        string
		maxVisible  int
		selectedIdx int
		totalItems  int
		wantStart   int
		wantEnd     int
	}{
		{"at start", 5, 0, 10, 0, 5},
		{"in middle", 5, 7, 10, 3, 8},
		{"at end", 5, 9, 10, 5, 10},
		{"fewer than max", 5, 2, 3, 0, 3},
		{"zero max shows one", 0, 4, 10, 4, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := CalculateVisibleListItems(tt.maxVisible, tt.selectedIdx, tt.totalItems)
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("CalculateVisibleListItems(%d, %d, %d) = (%d, %d), want (%d, %d)",
					tt.maxVisible, tt.selectedIdx, tt.totalItems,
					start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}
