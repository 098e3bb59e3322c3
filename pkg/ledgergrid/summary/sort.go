package summary

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/grid"
	"go.uber.org/zap"
)

type summaryRow struct {
	cells []string
	total decimal.Decimal
}

// SortByTotal reorders the summary rows by grand total. Totals are
// recomputed from the quantity columns, so the sheet need not have been
// recalculated. Row styles stay in place.
func SortByTotal(book grid.Workbook, opts Options, asc bool) error {
	cfg := opts.Summary
	s, err := book.Sheet(cfg.Sheet)
	if err != nil {
		return fmt.Errorf("summary: %w", err)
	}
	rows, err := s.Rows()
	if err != nil {
		return err
	}
	if len(rows) < 2 {
		return nil
	}
	totalCol := len(rows[0])
	for i, h := range rows[0] {
		if strings.TrimSpace(h) == cfg.TotalHeader {
			totalCol = i + 1
			break
		}
	}
	if totalCol < 3 {
		return fmt.Errorf("summary: sheet %q has no quantity columns", cfg.Sheet)
	}

	body := make([]summaryRow, 0, len(rows)-1)
	for _, raw := range rows[1:] {
		r := summaryRow{cells: make([]string, totalCol-1)}
		copy(r.cells, raw)
		for _, v := range r.cells[2:] {
			r.total = r.total.Add(quantity(v))
		}
		body = append(body, r)
	}
	sort.SliceStable(body, func(i, j int) bool {
		if asc {
			return body[i].total.LessThan(body[j].total)
		}
		return body[i].total.GreaterThan(body[j].total)
	})

	formulas := make([]string, len(body))
	for i, r := range body {
		row := i + 2
		for c, v := range r.cells {
			var val any
			switch {
			case strings.TrimSpace(v) == "":
			case c < 2:
				val = v
			default:
				val = quantity(v).InexactFloat64()
			}
			if err := s.SetValue(row, c+1, val); err != nil {
				return err
			}
		}
		formulas[i] = sumFormula(row, 3, totalCol-1)
	}
	if err := s.SetFormulas(totalCol, 2, formulas); err != nil {
		return err
	}
	opts.logger().Debug("summary sorted", zap.String("sheet", cfg.Sheet), zap.Bool("asc", asc))
	return s.FreezeRows(1)
}
