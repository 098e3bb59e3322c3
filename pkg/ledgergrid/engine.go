package ledgergrid

import (
	"strconv"
	"strings"
	"time"

	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/config"
	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/formula"
	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/grid"
	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/models"
	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/parser"
	"go.uber.org/zap"
)

// Engine mutates and repairs ledger sheets. Operations on sheets outside
// the configured allow-list are no-ops.
type Engine struct {
	cfg     config.Config
	log     *zap.Logger
	now     func() time.Time
	managed map[string]bool
}

// New creates an Engine.
func New(opts Options) *Engine {
	e := &Engine{
		cfg:     opts.Config,
		log:     opts.logger(),
		now:     opts.clock(),
		managed: make(map[string]bool, len(opts.Config.Ledger.Sheets)),
	}
	for _, name := range opts.Config.Ledger.Sheets {
		e.managed[name] = true
	}
	return e
}

// Config returns the engine configuration.
func (e *Engine) Config() config.Config { return e.cfg }

// Managed reports whether name is on the allow-list.
func (e *Engine) Managed(name string) bool { return e.managed[name] }

// sheet resolves an allow-listed sheet. ok is false for other sheets.
func (e *Engine) sheet(book grid.Workbook, name string) (s grid.Sheet, ok bool, err error) {
	if !e.Managed(name) {
		e.log.Debug("sheet not managed, skipping", zap.String("sheet", name))
		return nil, false, nil
	}
	s, err = book.Sheet(name)
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}

// extent is the used area of a sheet.
type extent struct {
	lastRow, lastCol int
	dataRows         int
}

func (e *Engine) extent(s grid.Sheet) (extent, error) {
	lastRow, lastCol, err := s.Dimensions()
	if err != nil {
		return extent{}, err
	}
	return extent{
		lastRow:  lastRow,
		lastCol:  lastCol,
		dataRows: max(0, lastRow-e.cfg.Ledger.DataStartRow+1),
	}, nil
}

// totalNowColumn finds the row-1 cell that reads exactly the current-balance
// label once trimmed.
func (e *Engine) totalNowColumn(s grid.Sheet) (int, error) {
	row, err := s.Row(e.cfg.Ledger.MetaRow)
	if err != nil {
		return 0, err
	}
	if col := findLabel(row, e.cfg.Ledger.TotalNowLabel); col > 0 {
		return col, nil
	}
	return 0, ErrTotalNowNotFound
}

func findLabel(row []string, label string) int {
	for i, v := range row {
		if strings.TrimSpace(v) == label {
			return i + 1
		}
	}
	return 0
}

func (e *Engine) numberFormat() models.Format {
	return models.Format{NumberFormat: e.cfg.Ledger.NumberFormat}
}

func headerFormat() models.Format {
	wrap := true
	return models.Format{Horizontal: "center", Vertical: "center", Wrap: &wrap}
}

// nonNegative warns on values below zero without rejecting them, so users
// can still type formulas into input cells.
func nonNegative() models.Validation {
	zero := 0.0
	return models.Validation{
		Min:          &zero,
		AllowInvalid: true,
		Title:        "Invalid input",
		Message:      "Enter a number >= 0 (decimal separator . or ,).",
	}
}

// AppendBlock adds a two-column block (kind | Total) after the last used
// column and wires its running total to the previous Total. Sheets outside
// the allow-list are left untouched.
func (e *Engine) AppendBlock(book grid.Workbook, name string, kind models.Kind) error {
	k, err := models.ParseKind(string(kind))
	if err != nil {
		return err
	}
	s, ok, err := e.sheet(book, name)
	if err != nil || !ok {
		return err
	}
	if err := e.appendBlock(s, k); err != nil {
		return NewLedgerError(name, "append", err)
	}
	return nil
}

func (e *Engine) appendBlock(s grid.Sheet, kind models.Kind) error {
	l := e.cfg.Ledger
	ext, err := e.extent(s)
	if err != nil {
		return err
	}
	// Resolve the current-balance column before touching the sheet.
	var totalNow int
	if ext.dataRows > 0 {
		if totalNow, err = e.totalNowColumn(s); err != nil {
			return err
		}
	}
	if err := s.RemoveProtections(); err != nil {
		return err
	}

	valueCol, totalCol := ext.lastCol+1, ext.lastCol+2
	if err := s.InsertColumnsAfter(ext.lastCol, 2); err != nil {
		return err
	}

	stamp := models.Range{R1: l.MetaRow, C1: valueCol, R2: l.MetaRow, C2: totalCol}
	if err := s.Merge(stamp); err != nil {
		return err
	}
	if err := s.SetValue(l.MetaRow, valueCol, e.now().Format(l.DateLayout)); err != nil {
		return err
	}
	if err := s.ApplyFormat(stamp, models.Format{Horizontal: "center", Vertical: "center"}); err != nil {
		return err
	}

	if err := s.SetValue(l.HeaderRow, valueCol, kind.Label()); err != nil {
		return err
	}
	if err := s.SetValue(l.HeaderRow, totalCol, "Total"); err != nil {
		return err
	}
	if err := e.normalizeHeader(s, totalCol); err != nil {
		return err
	}

	e.log.Info("block appended",
		zap.String("sheet", s.Name()),
		zap.String("kind", string(kind)),
		zap.Int("column", valueCol),
		zap.Int("rows", ext.dataRows))

	if ext.dataRows == 0 {
		return nil
	}

	input := models.Column(valueCol, l.DataStartRow, ext.dataRows)
	if err := s.ClearContent(input); err != nil {
		return err
	}
	if err := s.ApplyFormat(input, e.numberFormat()); err != nil {
		return err
	}
	if err := s.SetValidation(input, nonNegative()); err != nil {
		return err
	}

	tpl, err := formula.RunningTotal(models.Schema{Shape: models.TwoColumn, Sign: kind.Sign()})
	if err != nil {
		return err
	}
	if err := e.writeTotals(s, tpl, totalCol, ext.dataRows); err != nil {
		return err
	}
	return e.refreshCurrentBalance(s, totalNow, ext.dataRows)
}

// writeTotals fills a Total column from the template and formats it.
func (e *Engine) writeTotals(s grid.Sheet, tpl formula.Template, col, rows int) error {
	l := e.cfg.Ledger
	formulas, err := tpl.Column(col, l.DataStartRow, rows)
	if err != nil {
		return err
	}
	if err := s.SetFormulas(col, l.DataStartRow, formulas); err != nil {
		return err
	}
	return s.ApplyFormat(models.Column(col, l.DataStartRow, rows), e.numberFormat())
}

// refreshCurrentBalance rewrites the current-balance column for every data
// row against the header as it is now, then reapplies the alert colours.
func (e *Engine) refreshCurrentBalance(s grid.Sheet, totalNow, rows int) error {
	l := e.cfg.Ledger
	header, err := s.Row(l.HeaderRow)
	if err != nil {
		return err
	}
	_, lastCol, err := s.Dimensions()
	if err != nil {
		return err
	}
	first := e.lookupStart(parser.ParseHeader(header), totalNow)
	formulas, err := formula.CurrentBalanceColumn(l.DataStartRow, rows, first, max(lastCol, first), l.HeaderRow)
	if err != nil {
		return err
	}
	if err := s.SetFormulas(totalNow, l.DataStartRow, formulas); err != nil {
		return err
	}
	return e.applyAlerts(s, totalNow, rows)
}

// lookupStart returns the first column of the current-balance lookup. It
// never includes the current-balance column itself.
func (e *Engine) lookupStart(layout parser.Layout, totalNow int) int {
	first := layout.FirstColumn(e.cfg.Ledger.DefaultFirstColumn)
	if first <= totalNow {
		first = totalNow + 1
	}
	return first
}

// applyAlerts colours the current-balance range: critical first so it wins
// where both thresholds match. Rules left on earlier extents of the same
// column are dropped, so the rules never stack.
func (e *Engine) applyAlerts(s grid.Sheet, totalNow, rows int) error {
	l, a := e.cfg.Ledger, e.cfg.Alerts
	target := models.Column(totalNow, l.DataStartRow, max(rows, 1))
	ref, err := grid.RangeRef(target)
	if err != nil {
		return err
	}
	existing, err := s.ConditionalFormats()
	if err != nil {
		return err
	}
	for _, cf := range existing {
		if cf.Ref == ref {
			continue
		}
		r, err := grid.ParseRange(cf.Ref)
		if err != nil || r.C1 != totalNow || r.C2 != totalNow || r.R1 != target.R1 {
			continue
		}
		if err := s.UnsetConditionalFormat(cf.Ref); err != nil {
			return err
		}
	}
	return s.SetConditionalFormat(ref, []models.ConditionalRule{
		{Criteria: "<", Value: threshold(a.CriticalBelow), FontColor: a.CriticalColor, StopIfTrue: true},
		{Criteria: "<", Value: threshold(a.WarnBelow), FontColor: a.WarnColor},
	})
}

func threshold(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// normalizeHeader centres and wraps the header row up to lastCol.
func (e *Engine) normalizeHeader(s grid.Sheet, lastCol int) error {
	if lastCol < 1 {
		return nil
	}
	row := e.cfg.Ledger.HeaderRow
	return s.ApplyFormat(models.Range{R1: row, C1: 1, R2: row, C2: lastCol}, headerFormat())
}
