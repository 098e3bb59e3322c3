// Package formula synthesizes the running-balance and current-balance
// formulas of a ledger grid.
//
// Formulas are produced without the leading "=", the form xlsx stores them
// in. Every operand of a running total goes through the same parse-or-zero
// coercion, IFERROR(VALUE(TRIM(x)),0), so blank or text cells count as 0.
package formula

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/models"
	"github.com/xuri/excelize/v2"
)

// Term is one operand of a running total: the cell Offset columns left of
// the Total cell on the same row, added or subtracted.
type Term struct {
	Offset int
	Sign   models.Sign
}

// Template is a running-total formula expressed relative to the Total cell,
// so one template covers every row of a Total column.
type Template struct {
	Schema models.Schema
	Terms  []Term
}

// RunningTotal returns the template for a block schema. The previous block's
// Total sits immediately left of the block, at offset -Shape.
//
//	2-column: prev ± value
//	3-column: prev + in - out to floor
//	4-column: prev + in - out - out to floor
func RunningTotal(s models.Schema) (Template, error) {
	switch s.Shape {
	case models.TwoColumn:
		if s.Sign != models.Plus && s.Sign != models.Minus {
			return Template{}, fmt.Errorf("two-column block without sign")
		}
		return Template{Schema: s, Terms: []Term{{-2, models.Plus}, {-1, s.Sign}}}, nil
	case models.ThreeColumn:
		return Template{Schema: s, Terms: []Term{{-3, models.Plus}, {-2, models.Plus}, {-1, models.Minus}}}, nil
	case models.FourColumn:
		return Template{Schema: s, Terms: []Term{{-4, models.Plus}, {-3, models.Plus}, {-2, models.Minus}, {-1, models.Minus}}}, nil
	}
	return Template{}, fmt.Errorf("unsupported block shape %v", s.Shape)
}

// R1C1 renders the template in R1C1 notation. It is identical for every row
// and is the canonical text used to compare templates.
func (t Template) R1C1() string {
	return t.render(func(offset int) string {
		return fmt.Sprintf("R[0]C[%d]", offset)
	})
}

// A1 renders the template for the Total cell at (row, col).
func (t Template) A1(row, col int) (string, error) {
	var err error
	out := t.render(func(offset int) string {
		name, e := excelize.CoordinatesToCellName(col+offset, row)
		if e != nil && err == nil {
			err = e
		}
		return name
	})
	if err != nil {
		return "", err
	}
	return out, nil
}

// Column renders the template for rows [fromRow, fromRow+n) of column col.
func (t Template) Column(col, fromRow, n int) ([]string, error) {
	formulas := make([]string, 0, n)
	for r := fromRow; r < fromRow+n; r++ {
		f, err := t.A1(r, col)
		if err != nil {
			return nil, err
		}
		formulas = append(formulas, f)
	}
	return formulas, nil
}

func (t Template) render(ref func(offset int) string) string {
	var sb strings.Builder
	for i, term := range t.Terms {
		if i > 0 || term.Sign == models.Minus {
			sb.WriteString(term.Sign.Operator())
		}
		sb.WriteString("IFERROR(VALUE(TRIM(")
		sb.WriteString(ref(term.Offset))
		sb.WriteString(")),0)")
	}
	return sb.String()
}

// Eval computes the template given the raw text of the cell at each offset.
func (t Template) Eval(valueAt func(offset int) string) decimal.Decimal {
	total := decimal.Zero
	for _, term := range t.Terms {
		v := N(valueAt(term.Offset))
		if term.Sign == models.Minus {
			total = total.Sub(v)
		} else {
			total = total.Add(v)
		}
	}
	return total
}

// EvalRow evaluates the template for the Total cell in 1-based column col of
// a row given as 0-based values.
func (t Template) EvalRow(values []string, col int) decimal.Decimal {
	return t.Eval(func(offset int) string {
		i := col + offset - 1
		if i < 0 || i >= len(values) {
			return ""
		}
		return values[i]
	})
}

// N is the parse-or-zero coercion: the trimmed text as a number, or 0.
func N(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}
