package models

// WorkbookSchema is the workbook-level container of per-sheet schemas.
type WorkbookSchema struct {
	// BookName is the workbook file name (no path).
	BookName string `json:"book_name"`
	// Sheets maps sheet name to its schema.
	Sheets map[string]SheetSchema `json:"sheets"`
}
