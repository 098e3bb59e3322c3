package models

// SheetSchema is the inferred ledger layout of a single sheet.
type SheetSchema struct {
	// Name is the sheet name.
	Name string `json:"name"`
	// Managed reports whether the sheet is on the ledger allow-list.
	Managed bool `json:"managed"`
	// Blocks are the blocks found by the header parser, left to right.
	Blocks []Block `json:"blocks,omitempty"`
	// TotalColumns lists every column whose header reads Total.
	TotalColumns []int `json:"total_columns,omitempty"`
	// Unclassified lists Total columns whose neighbours match no shape.
	Unclassified []int `json:"unclassified,omitempty"`
	// FirstBlockColumn is where the current-balance lookup starts.
	FirstBlockColumn int `json:"first_block_column"`
	// CurrentColumn is the right-most Total column (0 when none).
	CurrentColumn int `json:"current_column,omitempty"`
	// TotalNowColumn is the current-balance column (0 when missing).
	TotalNowColumn int `json:"total_now_column,omitempty"`
	// DataRows is the number of rows at or below the data start row.
	DataRows int `json:"data_rows"`
	// Balances are the current balances of the data rows as last
	// calculated, keyed by row number.
	Balances map[int]string `json:"balances,omitempty"`
}
