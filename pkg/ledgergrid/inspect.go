package ledgergrid

import (
	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/formula"
	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/grid"
	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/models"
	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/parser"
	"go.uber.org/zap"
)

// Inspect infers the ledger schema of every sheet in the workbook.
func (e *Engine) Inspect(book grid.Workbook) (*models.WorkbookSchema, error) {
	sheets := make(map[string]models.SheetSchema)
	for _, name := range book.Sheets() {
		s, err := book.Sheet(name)
		if err != nil {
			return nil, err
		}
		schema, err := e.InspectSheet(s)
		if err != nil {
			// Log and continue with an empty schema
			e.log.Warn("inspection failed", zap.String("sheet", name), zap.Error(err))
			schema = models.SheetSchema{Name: name, Managed: e.Managed(name)}
		}
		sheets[name] = schema
	}
	return &models.WorkbookSchema{
		BookName: book.Name(),
		Sheets:   sheets,
	}, nil
}

// InspectSheet infers the schema of one sheet. Balances are evaluated from
// the input cells, so they are correct even when the file carries no
// cached formula results.
func (e *Engine) InspectSheet(s grid.Sheet) (models.SheetSchema, error) {
	l := e.cfg.Ledger
	rows, err := s.Rows()
	if err != nil {
		return models.SheetSchema{}, NewLedgerError(s.Name(), "inspect", err)
	}
	row := func(n int) []string {
		if n >= 1 && n <= len(rows) {
			return rows[n-1]
		}
		return nil
	}

	header := row(l.HeaderRow)
	layout := parser.ParseHeader(header)
	schema := models.SheetSchema{
		Name:           s.Name(),
		Managed:        e.Managed(s.Name()),
		Blocks:         layout.Blocks,
		TotalColumns:   layout.Totals,
		CurrentColumn:  layout.Current(),
		TotalNowColumn: findLabel(row(l.MetaRow), l.TotalNowLabel),
		DataRows:       max(0, len(rows)-l.DataStartRow+1),
	}
	schema.FirstBlockColumn = e.lookupStart(layout, schema.TotalNowColumn)
	for _, col := range layout.Totals {
		if _, err := layout.Classify(col); err != nil {
			schema.Unclassified = append(schema.Unclassified, col)
		}
	}

	if schema.DataRows == 0 || schema.CurrentColumn == 0 {
		return schema, nil
	}
	schema.Balances = make(map[int]string, schema.DataRows)
	for r := l.DataStartRow; r <= len(rows); r++ {
		values := evaluateRow(layout, rows[r-1])
		if v, ok := formula.SelectCurrent(header, values, schema.FirstBlockColumn, len(values)); ok {
			schema.Balances[r] = v
		}
	}
	return schema, nil
}

// evaluateRow recomputes every classified Total of a row left to right, so
// each running total sees the recomputed previous Total.
func evaluateRow(layout parser.Layout, values []string) []string {
	width := len(values)
	if n := layout.Current(); n > width {
		width = n
	}
	out := make([]string, width)
	copy(out, values)
	for _, col := range layout.Totals {
		schema, err := layout.Classify(col)
		if err != nil {
			continue
		}
		tpl, err := formula.RunningTotal(schema)
		if err != nil {
			continue
		}
		out[col-1] = tpl.EvalRow(out, col).String()
	}
	return out
}
