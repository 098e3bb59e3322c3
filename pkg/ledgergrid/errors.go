package ledgergrid

import (
	"errors"
	"fmt"

	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/grid"
	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/models"
)

// ErrSheetNotFound indicates an allow-listed sheet is missing from the workbook.
var ErrSheetNotFound = grid.ErrSheetNotFound

// ErrTotalNowNotFound indicates no row-1 cell reads the current-balance label.
var ErrTotalNowNotFound = errors.New("current-balance column not found")

// ErrUnknownKind indicates an append was requested with an invalid kind.
var ErrUnknownKind = models.ErrUnknownKind

// LedgerError reports which engine operation failed on which sheet.
type LedgerError struct {
	SheetName string
	Component string
	Err       error
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Component, e.SheetName, e.Err)
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}

// NewLedgerError creates a new LedgerError.
func NewLedgerError(sheetName, component string, err error) *LedgerError {
	return &LedgerError{
		SheetName: sheetName,
		Component: component,
		Err:       err,
	}
}
