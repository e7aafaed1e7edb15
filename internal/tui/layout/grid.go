package layout

// GridLayout holds calculated gallery grid dimensions.
type GridLayout struct {
	Columns   int
	CellWidth int
	Rows      int // visible rows
}

// CalculateGrid fits gallery cells into the terminal. At least one column
// and MinHeight rows are always returned.
func CalculateGrid(terminalWidth, terminalHeight int, cfg GridConfig) GridLayout {
	usable := terminalWidth - cfg.ContentPadding

	columns := usable / cfg.CellWidth
	if columns < 1 {
		columns = 1
	}
	if cfg.MaxColumns > 0 && columns > cfg.MaxColumns {
		columns = cfg.MaxColumns
	}

	cellWidth := usable / columns
	if cellWidth < 1 {
		cellWidth = 1
	}

	rows := terminalHeight - cfg.HeightReduction
	if rows < cfg.MinHeight {
		rows = cfg.MinHeight
	}

	return GridLayout{Columns: columns, CellWidth: cellWidth, Rows: rows}
}

// MoveInGrid moves a cursor by dx columns and dy rows through total cells
// laid out in columns. Moves that would leave the grid are ignored.
func MoveInGrid(cursor, total, columns, dx, dy int) int {
	if total == 0 {
		return 0
	}

	next := cursor + dx + dy*columns
	if dx != 0 && next/columns != cursor/columns {
		// Horizontal moves stay on their row
		return cursor
	}
	if next < 0 || next >= total {
		return cursor
	}
	return next
}

// CalculateViewportOffset calculates the scroll offset needed to keep the
// selected item visible within the viewport.
func CalculateViewportOffset(selected, total, viewportHeight int) int {
	if total <= viewportHeight {
		return 0
	}

	// Keep selection roughly centered, but clamp to valid range
	offset := selected - viewportHeight/2
	if offset < 0 {
		offset = 0
	}

	maxOffset := total - viewportHeight
	if offset > maxOffset {
		offset = maxOffset
	}

	return offset
}
