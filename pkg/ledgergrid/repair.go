package ledgergrid

import (
	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/formula"
	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/grid"
	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/models"
	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/parser"
	"go.uber.org/zap"
)

// RepairReport summarizes a repair run.
type RepairReport struct {
	Sheet string `json:"sheet"`
	// Rows is the number of data rows rewritten.
	Rows int `json:"rows"`
	// Rewritten lists the Total columns whose formulas were rewritten.
	Rewritten []int `json:"rewritten,omitempty"`
	// Skipped lists Total columns that matched no block shape.
	Skipped []int `json:"skipped,omitempty"`
}

// RepairAllBlocks reclassifies every Total column and rewrites its running
// total, then rewrites the current-balance column. Columns that match no
// shape are skipped and reported. Running it twice writes the same formulas.
func (e *Engine) RepairAllBlocks(book grid.Workbook, name string) (RepairReport, error) {
	report := RepairReport{Sheet: name}
	s, ok, err := e.sheet(book, name)
	if err != nil || !ok {
		return report, err
	}
	if err := e.repair(s, &report); err != nil {
		return report, NewLedgerError(name, "repair", err)
	}
	return report, nil
}

func (e *Engine) repair(s grid.Sheet, report *RepairReport) error {
	l := e.cfg.Ledger
	ext, err := e.extent(s)
	if err != nil {
		return err
	}
	if ext.dataRows == 0 || ext.lastCol == 0 {
		return nil
	}
	totalNow, err := e.totalNowColumn(s)
	if err != nil {
		return err
	}
	header, err := s.Row(l.HeaderRow)
	if err != nil {
		return err
	}
	layout := parser.ParseHeader(header)
	report.Rows = ext.dataRows

	for _, col := range layout.Totals {
		schema, err := layout.Classify(col)
		if err != nil {
			e.log.Warn("skipping unclassified Total column",
				zap.String("sheet", s.Name()),
				zap.Int("column", col),
				zap.Error(err))
			report.Skipped = append(report.Skipped, col)
			continue
		}
		tpl, err := formula.RunningTotal(schema)
		if err != nil {
			return err
		}
		formulas, err := tpl.Column(col, l.DataStartRow, ext.dataRows)
		if err != nil {
			return err
		}
		if err := s.SetFormulas(col, l.DataStartRow, formulas); err != nil {
			return err
		}
		report.Rewritten = append(report.Rewritten, col)
	}

	if err := e.refreshCurrentBalance(s, totalNow, ext.dataRows); err != nil {
		return err
	}
	e.log.Info("ledger repaired",
		zap.String("sheet", s.Name()),
		zap.Int("rows", ext.dataRows),
		zap.Ints("rewritten", report.Rewritten),
		zap.Ints("skipped", report.Skipped))
	return nil
}

// UpdateCurrentBlock re-derives the right-most block's running total from
// its current header, repairs every other block, and number-formats the
// block's input and Total columns. Nothing is written when the block matches
// no shape or the current-balance column is missing.
func (e *Engine) UpdateCurrentBlock(book grid.Workbook, name string) error {
	s, ok, err := e.sheet(book, name)
	if err != nil || !ok {
		return err
	}
	if err := e.updateCurrent(s); err != nil {
		return NewLedgerError(name, "update", err)
	}
	return nil
}

func (e *Engine) updateCurrent(s grid.Sheet) error {
	l := e.cfg.Ledger
	ext, err := e.extent(s)
	if err != nil {
		return err
	}
	if ext.dataRows == 0 || ext.lastCol == 0 {
		return nil
	}
	header, err := s.Row(l.HeaderRow)
	if err != nil {
		return err
	}
	layout := parser.ParseHeader(header)
	current := layout.Current()
	if current == 0 {
		return nil
	}
	if _, err := e.totalNowColumn(s); err != nil {
		return err
	}
	schema, err := layout.Classify(current)
	if err != nil {
		e.log.Warn("current block matches no shape, leaving it",
			zap.String("sheet", s.Name()),
			zap.Int("column", current))
		return nil
	}
	tpl, err := formula.RunningTotal(schema)
	if err != nil {
		return err
	}
	if err := s.RemoveProtections(); err != nil {
		return err
	}
	if err := e.writeTotals(s, tpl, current, ext.dataRows); err != nil {
		return err
	}

	var report RepairReport
	if err := e.repair(s, &report); err != nil {
		return err
	}
	inputs := models.Range{
		R1: l.DataStartRow, C1: current - int(schema.Shape) + 1,
		R2: l.DataStartRow + ext.dataRows - 1, C2: current - 1,
	}
	return s.ApplyFormat(inputs, e.numberFormat())
}
