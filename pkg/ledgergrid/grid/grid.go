// Package grid is the cell-store contract the ledger engine works against,
// with an implementation backed by excelize workbooks.
package grid

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/models"
	"github.com/xuri/excelize/v2"
)

// ErrSheetNotFound is returned when a named sheet does not exist.
var ErrSheetNotFound = errors.New("sheet not found")

// Sheet is a two-dimensional cell store. Rows and columns are 1-based.
type Sheet interface {
	// Name returns the sheet name.
	Name() string
	// ID returns a stable identifier for the sheet within its workbook.
	ID() string

	// Dimensions returns the last used row and column (0, 0 when empty).
	Dimensions() (lastRow, lastCol int, err error)
	// Row returns the raw values of a row, trailing blanks trimmed.
	Row(row int) ([]string, error)
	// Rows returns every row up to the last used one.
	Rows() ([][]string, error)
	Value(row, col int) (string, error)
	// Formula returns the cell formula without a leading "=".
	Formula(row, col int) (string, error)

	// SetValue writes a literal; nil clears the cell and any formula.
	SetValue(row, col int, v any) error
	// SetFormulas writes one formula per row down a column from fromRow.
	SetFormulas(col, fromRow int, formulas []string) error
	ClearContent(r models.Range) error
	// InsertColumnsAfter inserts n empty columns to the right of col.
	InsertColumnsAfter(col, n int) error
	Merge(r models.Range) error
	ApplyFormat(r models.Range, f models.Format) error

	ConditionalFormats() ([]models.ConditionalFormat, error)
	// SetConditionalFormat replaces all rules on ref with rules.
	SetConditionalFormat(ref string, rules []models.ConditionalRule) error
	UnsetConditionalFormat(ref string) error
	// SetValidation replaces the validation on r.
	SetValidation(r models.Range, v models.Validation) error
	RemoveProtections() error

	SetRowGroup(fromRow, toRow, level int) error
	FreezeRows(n int) error
	SetColumnWidth(fromCol, toCol int, width float64) error
}

// Workbook is a named collection of sheets.
type Workbook interface {
	// Name returns the workbook name (file base name).
	Name() string
	Sheets() []string
	// Sheet returns the named sheet or ErrSheetNotFound.
	Sheet(name string) (Sheet, error)
	// EnsureSheet returns the named sheet, creating it when absent.
	EnsureSheet(name string) (Sheet, error)
	// ResetSheet replaces the named sheet with an empty one.
	ResetSheet(name string) (Sheet, error)
}

// Properties is a string key/value store persisted with a workbook.
type Properties interface {
	Property(name string) (string, bool, error)
	SetProperty(name, value string) error
	DeleteProperty(name string) error
	PropertyNames(prefix string) ([]string, error)
}

// CellName returns the A1 name of a cell.
func CellName(row, col int) (string, error) {
	return excelize.CoordinatesToCellName(col, row)
}

// RangeRef renders a range as "A1:B2", or "A1" for a single cell.
func RangeRef(r models.Range) (string, error) {
	if r.Empty() {
		return "", fmt.Errorf("empty range %+v", r)
	}
	tl, err := CellName(r.R1, r.C1)
	if err != nil {
		return "", err
	}
	if r.R1 == r.R2 && r.C1 == r.C2 {
		return tl, nil
	}
	br, err := CellName(r.R2, r.C2)
	if err != nil {
		return "", err
	}
	return tl + ":" + br, nil
}

// ParseCell converts an A1 reference to (row, col).
func ParseCell(ref string) (row, col int, err error) {
	col, row, err = excelize.CellNameToCoordinates(ref)
	return row, col, err
}

// ParseRange parses "A1", "A1:B2" or "$A$1:$B$2" into a Range. The sheet
// prefix of a qualified reference ("'Sheet'!A1:B2") is ignored.
func ParseRange(ref string) (models.Range, error) {
	if idx := strings.LastIndex(ref, "!"); idx >= 0 {
		ref = ref[idx+1:]
	}
	ref = strings.ReplaceAll(ref, "$", "")
	parts := strings.Split(ref, ":")
	if len(parts) > 2 {
		return models.Range{}, fmt.Errorf("invalid range %q", ref)
	}
	r1, c1, err := ParseCell(parts[0])
	if err != nil {
		return models.Range{}, err
	}
	r2, c2 := r1, c1
	if len(parts) == 2 {
		if r2, c2, err = ParseCell(parts[1]); err != nil {
			return models.Range{}, err
		}
	}
	return models.Range{R1: min(r1, r2), C1: min(c1, c2), R2: max(r1, r2), C2: max(c1, c2)}, nil
}

// ColumnName returns the letters of a 1-based column.
func ColumnName(col int) string {
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return ""
	}
	return name
}
