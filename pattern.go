package navgrid

import "strings"

// Pattern is a columns × rows passability raster produced by the
// generators. It is plain data: applying one to a grid goes through
// Grid.ApplyPattern. A freshly created pattern is fully blocked.
type Pattern struct {
	columns int
	rows    int
	cells   []bool
}

// NewPattern returns an all-blocked pattern. Dimensions below 1 are
// clamped to 1.
func NewPattern(columns, rows int) Pattern {
	if columns < 1 {
		columns = 1
	}
	if rows < 1 {
		rows = 1
	}
	return Pattern{
		columns: columns,
		rows:    rows,
		cells:   make([]bool, columns*rows),
	}
}

// Columns returns the pattern width in cells.
func (p Pattern) Columns() int { return p.columns }

// Rows returns the pattern height in cells.
func (p Pattern) Rows() int { return p.rows }

// At reports whether the cell at (x, y) is passable. Out-of-range
// coordinates read as blocked.
func (p Pattern) At(x, y int) bool {
	if x < 0 || x >= p.columns || y < 0 || y >= p.rows {
		return false
	}
	return p.cells[y*p.columns+x]
}

// Set marks the cell at (x, y) passable or blocked. Out-of-range
// coordinates are silently ignored.
func (p Pattern) Set(x, y int, passable bool) {
	if x < 0 || x >= p.columns || y < 0 || y >= p.rows {
		return
	}
	p.cells[y*p.columns+x] = passable
}

// String renders the pattern one row per line, '.' for passable cells and
// '#' for blocked ones.
func (p Pattern) String() string {
	var b strings.Builder
	b.Grow((p.columns + 1) * p.rows)
	for y := 0; y < p.rows; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < p.columns; x++ {
			if p.At(x, y) {
				b.WriteByte('.')
			} else {
				b.WriteByte('#')
			}
		}
	}
	return b.String()
}
