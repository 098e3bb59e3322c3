package models

// Range represents 1-based, inclusive cell coordinate bounds.
type Range struct {
	// R1 is the start row (1-based).
	R1 int `json:"r1"`
	// C1 is the start column (1-based).
	C1 int `json:"c1"`
	// R2 is the end row (1-based, inclusive).
	R2 int `json:"r2"`
	// C2 is the end column (1-based, inclusive).
	C2 int `json:"c2"`
}

// Cell returns a single-cell range.
func Cell(row, col int) Range { return Range{R1: row, C1: col, R2: row, C2: col} }

// Column returns a range of n rows in one column starting at row.
func Column(col, row, n int) Range { return Range{R1: row, C1: col, R2: row + n - 1, C2: col} }

// Rows returns the number of rows covered.
func (r Range) Rows() int { return r.R2 - r.R1 + 1 }

// Cols returns the number of columns covered.
func (r Range) Cols() int { return r.C2 - r.C1 + 1 }

// Empty reports whether the range covers no cells.
func (r Range) Empty() bool { return r.Rows() <= 0 || r.Cols() <= 0 }
