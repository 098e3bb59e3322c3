package ledgergrid

import (
	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/grid"
	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/models"
	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/parser"
	"go.uber.org/zap"
)

// CommandCell returns the (row, col) of the command cell.
func (e *Engine) CommandCell() (row, col int, err error) {
	return grid.ParseCell(e.cfg.Ledger.CommandCell)
}

// InstallCommandMenu restricts the command cell to the command labels and
// clears it.
func (e *Engine) InstallCommandMenu(book grid.Workbook, name string) error {
	s, ok, err := e.sheet(book, name)
	if err != nil || !ok {
		return err
	}
	row, col, err := e.CommandCell()
	if err != nil {
		return NewLedgerError(name, "menu", err)
	}
	menu := models.Validation{
		List:    e.cfg.Commands.List(),
		Title:   "Unknown command",
		Message: "Pick a command from the list.",
	}
	if err := s.SetValidation(models.Cell(row, col), menu); err != nil {
		return NewLedgerError(name, "menu", err)
	}
	if err := s.SetValue(row, col, nil); err != nil {
		return NewLedgerError(name, "menu", err)
	}
	return nil
}

// RelaxInputValidation gives every input column the non-blocking >= 0
// validation over the data rows.
func (e *Engine) RelaxInputValidation(book grid.Workbook, name string) error {
	s, ok, err := e.sheet(book, name)
	if err != nil || !ok {
		return err
	}
	l := e.cfg.Ledger
	ext, err := e.extent(s)
	if err != nil {
		return NewLedgerError(name, "validation", err)
	}
	if ext.dataRows == 0 || ext.lastCol == 0 {
		return nil
	}
	header, err := s.Row(l.HeaderRow)
	if err != nil {
		return NewLedgerError(name, "validation", err)
	}
	for i, label := range header {
		if !parser.IsInputLabel(label) {
			continue
		}
		if err := s.SetValidation(models.Column(i+1, l.DataStartRow, ext.dataRows), nonNegative()); err != nil {
			return NewLedgerError(name, "validation", err)
		}
	}
	return nil
}

// NormalizeHeaderAlignment centres, middles and wraps the whole header row.
func (e *Engine) NormalizeHeaderAlignment(book grid.Workbook, name string) error {
	s, ok, err := e.sheet(book, name)
	if err != nil || !ok {
		return err
	}
	_, lastCol, err := s.Dimensions()
	if err == nil {
		err = e.normalizeHeader(s, lastCol)
	}
	if err != nil {
		return NewLedgerError(name, "alignment", err)
	}
	return nil
}

// Open prepares every allow-listed sheet present in the workbook: command
// menu, header alignment and relaxed input validation. Alignment and
// validation failures are logged, not returned.
func (e *Engine) Open(book grid.Workbook) error {
	for _, name := range e.cfg.Ledger.Sheets {
		if _, err := book.Sheet(name); err != nil {
			e.log.Debug("allow-listed sheet absent", zap.String("sheet", name))
			continue
		}
		if err := e.InstallCommandMenu(book, name); err != nil {
			return err
		}
		if err := e.NormalizeHeaderAlignment(book, name); err != nil {
			e.log.Warn("header alignment failed", zap.String("sheet", name), zap.Error(err))
		}
		if err := e.RelaxInputValidation(book, name); err != nil {
			e.log.Warn("relaxing validation failed", zap.String("sheet", name), zap.Error(err))
		}
	}
	return nil
}
