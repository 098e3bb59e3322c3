package grid

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/models"
	"github.com/xuri/excelize/v2"
)

// XSheet is a Sheet backed by an excelize worksheet.
type XSheet struct {
	f    *excelize.File
	name string
}

var raw = excelize.Options{RawCellValue: true}

// Name returns the sheet name.
func (s *XSheet) Name() string { return s.name }

// ID returns the workbook-internal sheet ID, which survives renames.
func (s *XSheet) ID() string {
	for id, name := range s.f.GetSheetMap() {
		if name == s.name {
			return strconv.Itoa(id)
		}
	}
	return s.name
}

// Rows returns raw cell values. Formula cells are present even when they
// carry no cached result.
func (s *XSheet) Rows() ([][]string, error) {
	return s.f.GetRows(s.name, raw)
}

// Dimensions returns the last used row and column.
func (s *XSheet) Dimensions() (lastRow, lastCol int, err error) {
	rows, err := s.Rows()
	if err != nil {
		return 0, 0, err
	}
	lastRow, lastCol = usedBounds(rows)
	return lastRow, lastCol, nil
}

// Row returns the raw values of one row.
func (s *XSheet) Row(row int) ([]string, error) {
	rows, err := s.Rows()
	if err != nil {
		return nil, err
	}
	if row < 1 || row > len(rows) {
		return nil, nil
	}
	return rows[row-1], nil
}

// Value returns the raw value of a cell.
func (s *XSheet) Value(row, col int) (string, error) {
	cell, err := CellName(row, col)
	if err != nil {
		return "", err
	}
	return s.f.GetCellValue(s.name, cell, raw)
}

// Formula returns the cell formula without the leading "=".
func (s *XSheet) Formula(row, col int) (string, error) {
	cell, err := CellName(row, col)
	if err != nil {
		return "", err
	}
	return s.f.GetCellFormula(s.name, cell)
}

// SetValue writes v to a cell; nil clears it.
func (s *XSheet) SetValue(row, col int, v any) error {
	cell, err := CellName(row, col)
	if err != nil {
		return err
	}
	return s.f.SetCellValue(s.name, cell, v)
}

// SetFormulas writes formulas down col starting at fromRow.
func (s *XSheet) SetFormulas(col, fromRow int, formulas []string) error {
	for i, formula := range formulas {
		cell, err := CellName(fromRow+i, col)
		if err != nil {
			return err
		}
		if err := s.f.SetCellFormula(s.name, cell, strings.TrimPrefix(formula, "=")); err != nil {
			return fmt.Errorf("%s: %w", cell, err)
		}
	}
	return nil
}

// ClearContent empties every cell in r, formulas included. Styles stay.
func (s *XSheet) ClearContent(r models.Range) error {
	for row := r.R1; row <= r.R2; row++ {
		for col := r.C1; col <= r.C2; col++ {
			if err := s.SetValue(row, col, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

// InsertColumnsAfter inserts n columns to the right of col.
func (s *XSheet) InsertColumnsAfter(col, n int) error {
	name, err := excelize.ColumnNumberToName(col + 1)
	if err != nil {
		return err
	}
	return s.f.InsertCols(s.name, name, n)
}

// Merge merges the cells of r.
func (s *XSheet) Merge(r models.Range) error {
	tl, err := CellName(r.R1, r.C1)
	if err != nil {
		return err
	}
	br, err := CellName(r.R2, r.C2)
	if err != nil {
		return err
	}
	return s.f.MergeCell(s.name, tl, br)
}

// ConditionalFormats lists the conditional formats of the sheet, ordered
// by range reference. Cell rules report their criteria as an operator.
func (s *XSheet) ConditionalFormats() ([]models.ConditionalFormat, error) {
	all, err := s.f.GetConditionalFormats(s.name)
	if err != nil {
		return nil, err
	}
	refs := make([]string, 0, len(all))
	for ref := range all {
		refs = append(refs, ref)
	}
	sort.Strings(refs)

	result := make([]models.ConditionalFormat, 0, len(refs))
	for _, ref := range refs {
		cf := models.ConditionalFormat{Ref: ref}
		for _, o := range all[ref] {
			rule := models.ConditionalRule{StopIfTrue: o.StopIfTrue}
			switch o.Type {
			case "formula":
				rule.Formula = o.Criteria
			default:
				rule.Criteria = operators[o.Criteria]
				if rule.Criteria == "" {
					rule.Criteria = o.Criteria
				}
				rule.Value = o.Value
			}
			if o.Format != nil {
				if style, err := s.f.GetConditionalStyle(*o.Format); err == nil && style.Font != nil {
					rule.FontColor = style.Font.Color
				}
			}
			cf.Rules = append(cf.Rules, rule)
		}
		result = append(result, cf)
	}
	return result, nil
}

var operators = map[string]string{
	"less than":                "<",
	"less than or equal to":    "<=",
	"greater than":             ">",
	"greater than or equal to": ">=",
	"equal to":                 "=",
	"not equal to":             "<>",
}

// UnsetConditionalFormat removes every conditional format on ref.
func (s *XSheet) UnsetConditionalFormat(ref string) error {
	for {
		all, err := s.f.GetConditionalFormats(s.name)
		if err != nil {
			return err
		}
		if _, ok := all[ref]; !ok {
			return nil
		}
		if err := s.f.UnsetConditionalFormat(s.name, ref); err != nil {
			return err
		}
	}
}

// SetConditionalFormat replaces the rules on ref. Rules are given in
// precedence order: the first rule wins when several match.
func (s *XSheet) SetConditionalFormat(ref string, rules []models.ConditionalRule) error {
	if err := s.UnsetConditionalFormat(ref); err != nil {
		return err
	}
	if len(rules) == 0 {
		return nil
	}
	opts := make([]excelize.ConditionalFormatOptions, 0, len(rules))
	for _, rule := range rules {
		id, err := s.f.NewConditionalStyle(&excelize.Style{Font: &excelize.Font{Color: rule.FontColor}})
		if err != nil {
			return err
		}
		opt := excelize.ConditionalFormatOptions{Format: &id, StopIfTrue: rule.StopIfTrue}
		if rule.Formula != "" {
			opt.Type = "formula"
			opt.Criteria = strings.TrimPrefix(rule.Formula, "=")
		} else {
			opt.Type = "cell"
			opt.Criteria = rule.Criteria
			opt.Value = rule.Value
		}
		opts = append(opts, opt)
	}
	return s.f.SetConditionalFormat(s.name, ref, opts)
}

// SetValidation replaces the data validation on r.
func (s *XSheet) SetValidation(r models.Range, v models.Validation) error {
	ref, err := RangeRef(r)
	if err != nil {
		return err
	}
	if err := s.f.DeleteDataValidation(s.name, ref); err != nil {
		return err
	}
	dv := excelize.NewDataValidation(true)
	dv.Sqref = ref
	switch {
	case len(v.List) > 0:
		if err := dv.SetDropList(v.List); err != nil {
			return err
		}
	case v.Min != nil:
		dv.Type = "decimal"
		dv.Operator = "greaterThanOrEqual"
		dv.Formula1 = strconv.FormatFloat(*v.Min, 'f', -1, 64)
	default:
		return nil
	}
	style := excelize.DataValidationErrorStyleStop
	if v.AllowInvalid {
		style = excelize.DataValidationErrorStyleWarning
	}
	dv.SetError(style, v.Title, v.Message)
	return s.f.AddDataValidation(s.name, dv)
}

// RemoveProtections lifts sheet protection. Unprotected sheets are fine.
func (s *XSheet) RemoveProtections() error {
	return s.f.UnprotectSheet(s.name)
}

// SetRowGroup sets the outline level of rows fromRow..toRow.
func (s *XSheet) SetRowGroup(fromRow, toRow, level int) error {
	for row := fromRow; row <= toRow; row++ {
		if err := s.f.SetRowOutlineLevel(s.name, row, uint8(level)); err != nil {
			return err
		}
	}
	return nil
}

// FreezeRows freezes the top n rows.
func (s *XSheet) FreezeRows(n int) error {
	if n <= 0 {
		return s.f.SetPanes(s.name, &excelize.Panes{})
	}
	return s.f.SetPanes(s.name, &excelize.Panes{
		Freeze:      true,
		YSplit:      n,
		TopLeftCell: "A" + strconv.Itoa(n+1),
		ActivePane:  "bottomLeft",
	})
}

// SetColumnWidth sets the width of columns fromCol..toCol.
func (s *XSheet) SetColumnWidth(fromCol, toCol int, width float64) error {
	return s.f.SetColWidth(s.name, ColumnName(fromCol), ColumnName(toCol), width)
}

// usedBounds returns the 1-based last row and column holding a cell.
func usedBounds(rows [][]string) (lastRow, lastCol int) {
	for rowIdx, row := range rows {
		if len(row) == 0 {
			continue
		}
		lastRow = rowIdx + 1
		if len(row) > lastCol {
			lastCol = len(row)
		}
	}
	return
}
