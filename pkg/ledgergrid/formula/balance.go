package formula

import (
	"fmt"

	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/parser"
	"github.com/xuri/excelize/v2"
)

// CurrentBalance returns the current-balance formula for one data row: the
// value of the right-most column between firstCol and lastCol whose row-2
// header reads Total, or "" when there is none. It is a lookup over the
// header, not a fixed reference, so it follows newly appended blocks once
// regenerated with the new lastCol. Header labels are compared after TRIM and
// CLEAN so that padded labels read the same way the parser reads them.
func CurrentBalance(row, firstCol, lastCol, headerRow int) (string, error) {
	if lastCol < firstCol {
		lastCol = firstCol
	}
	first, err := excelize.ColumnNumberToName(firstCol)
	if err != nil {
		return "", err
	}
	last, err := excelize.ColumnNumberToName(lastCol)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`IFERROR(LOOKUP(2,1/(TRIM(CLEAN(%[1]s$%[3]d:%[2]s$%[3]d))="Total"),%[1]s%[4]d:%[2]s%[4]d),"")`,
		first, last, headerRow, row), nil
}

// CurrentBalanceColumn renders CurrentBalance for rows [fromRow, fromRow+n).
func CurrentBalanceColumn(fromRow, n, firstCol, lastCol, headerRow int) ([]string, error) {
	formulas := make([]string, 0, n)
	for r := fromRow; r < fromRow+n; r++ {
		f, err := CurrentBalance(r, firstCol, lastCol, headerRow)
		if err != nil {
			return nil, err
		}
		formulas = append(formulas, f)
	}
	return formulas, nil
}

// SelectCurrent applies the current-balance rule to in-memory rows: the
// value under the right-most Total header in [firstCol, lastCol]. ok is
// false when no Total header exists in that span.
func SelectCurrent(header, values []string, firstCol, lastCol int) (value string, ok bool) {
	if firstCol < 1 {
		firstCol = 1
	}
	for c := min(lastCol, len(header)); c >= firstCol; c-- {
		if parser.IsTotalLabel(header[c-1]) {
			if c-1 < len(values) {
				return values[c-1], true
			}
			return "", true
		}
	}
	return "", false
}
