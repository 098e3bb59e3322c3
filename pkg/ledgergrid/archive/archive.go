// Package archive copies dated ledger rows into per-month archive sheets,
// one grouped block per day followed by a total row.
package archive

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/config"
	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/grid"
	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/models"
	"go.uber.org/zap"
)

// ErrNoRows is returned when no source row carries the requested date.
var ErrNoRows = errors.New("no rows to transfer")

// Options configures a Transferer.
type Options struct {
	Archive config.Archive
	// Logger receives structured diagnostics. If nil, logging is disabled.
	Logger *zap.Logger
}

func DefaultOptions() Options {
	return Options{Archive: config.Default().Archive}
}

// Block describes one transferred day.
type Block struct {
	Sheet    string `json:"sheet"`
	Date     string `json:"date"`
	StartRow int    `json:"start_row"`
	Rows     int    `json:"rows"`
	TotalRow int    `json:"total_row"`
	Total    string `json:"total"`
}

// Transferer moves rows from the source sheet into month sheets.
type Transferer struct {
	cfg config.Archive
	log *zap.Logger
}

func New(opts Options) *Transferer {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Transferer{cfg: opts.Archive, log: log}
}

// sourceRow is a copied row, columns FirstColumn..LastColumn.
type sourceRow struct {
	date   time.Time
	values []string
}

type source struct {
	header []string
	rows   []sourceRow
}

func (t *Transferer) read(book grid.Workbook) (source, error) {
	s, err := book.Sheet(t.cfg.SourceSheet)
	if err != nil {
		return source{}, err
	}
	rows, err := s.Rows()
	if err != nil {
		return source{}, err
	}
	var src source
	if t.cfg.HeaderRow <= len(rows) {
		src.header = rows[t.cfg.HeaderRow-1]
	}
	width := t.cfg.LastColumn - t.cfg.FirstColumn + 1
	for r := t.cfg.HeaderRow; r < len(rows); r++ {
		row := rows[r]
		d, ok := CoerceDate(cell(row, t.cfg.DateColumn))
		if !ok {
			continue
		}
		values := make([]string, width)
		for i := range values {
			values[i] = cell(row, t.cfg.FirstColumn+i)
		}
		src.rows = append(src.rows, sourceRow{date: d, values: values})
	}
	return src, nil
}

func cell(row []string, col int) string {
	if col < 1 || col > len(row) {
		return ""
	}
	return row[col-1]
}

// TransferDate appends the rows dated date as one block to its month sheet.
func (t *Transferer) TransferDate(book grid.Workbook, date time.Time) (Block, error) {
	src, err := t.read(book)
	if err != nil {
		return Block{}, err
	}
	date = day(date)
	var rows []sourceRow
	for _, r := range src.rows {
		if r.date.Equal(date) {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		return Block{}, fmt.Errorf("%w: %s", ErrNoRows, date.Format(t.cfg.DateLayout))
	}
	return t.write(book, src.header, date, rows)
}

// TransferAll appends one block per distinct date, oldest first.
func (t *Transferer) TransferAll(book grid.Workbook) ([]Block, error) {
	src, err := t.read(book)
	if err != nil {
		return nil, err
	}
	if len(src.rows) == 0 {
		return nil, ErrNoRows
	}
	byDay := make(map[time.Time][]sourceRow)
	var days []time.Time
	for _, r := range src.rows {
		if _, ok := byDay[r.date]; !ok {
			days = append(days, r.date)
		}
		byDay[r.date] = append(byDay[r.date], r)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	blocks := make([]Block, 0, len(days))
	for _, d := range days {
		b, err := t.write(book, src.header, d, byDay[d])
		if err != nil {
			return blocks, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

func (t *Transferer) write(book grid.Workbook, header []string, date time.Time, rows []sourceRow) (Block, error) {
	c := t.cfg
	name := date.Format(c.MonthLayout)
	s, err := t.monthSheet(book, name, header)
	if err != nil {
		return Block{}, err
	}
	lastRow, _, err := s.Dimensions()
	if err != nil {
		return Block{}, err
	}
	start := max(lastRow, c.HeaderRow) + 1 + c.BlankGap
	text := date.Format(c.DateLayout)
	dateIdx := c.DateColumn - c.FirstColumn
	sumIdx := c.LastColumn - c.FirstColumn

	total := decimal.Zero
	for i, r := range rows {
		row := start + i
		if err := s.SetValue(row, 1, i+1); err != nil {
			return Block{}, err
		}
		for j, v := range r.values {
			if j == dateIdx && strings.TrimSpace(v) != "" {
				v = text
			}
			if err := s.SetValue(row, c.FirstColumn+j, cellValue(v)); err != nil {
				return Block{}, err
			}
		}
		if n, ok := number(r.values[sumIdx]); ok {
			total = total.Add(n)
		}
	}
	end := start + len(rows) - 1
	if err := s.SetRowGroup(start, end, 1); err != nil {
		return Block{}, err
	}

	_, width, err := s.Dimensions()
	if err != nil {
		return Block{}, err
	}
	width = max(width, c.LastColumn)
	totalRow := end + 1
	if err := s.ClearContent(models.Range{R1: totalRow, C1: 1, R2: totalRow, C2: width}); err != nil {
		return Block{}, err
	}
	if err := s.SetValue(totalRow, c.DateColumn, text); err != nil {
		return Block{}, err
	}
	if err := s.ApplyFormat(models.Cell(totalRow, c.DateColumn), models.Format{NumberFormat: c.DateNumFmt}); err != nil {
		return Block{}, err
	}
	if err := s.SetValue(totalRow, c.LastColumn, total.InexactFloat64()); err != nil {
		return Block{}, err
	}
	fill := models.Range{R1: totalRow, C1: 1, R2: totalRow, C2: width}
	if err := s.ApplyFormat(fill, models.Format{Background: c.TotalFill}); err != nil {
		return Block{}, err
	}

	b := Block{Sheet: name, Date: text, StartRow: start, Rows: len(rows), TotalRow: totalRow, Total: total.String()}
	t.log.Info("rows transferred",
		zap.String("sheet", name),
		zap.String("date", text),
		zap.Int("rows", b.Rows),
		zap.String("total", b.Total))
	return b, nil
}

// monthSheet returns the archive sheet for a month, creating it with a copy
// of the source header when new.
func (t *Transferer) monthSheet(book grid.Workbook, name string, header []string) (grid.Sheet, error) {
	s, err := book.EnsureSheet(name)
	if err != nil {
		return nil, err
	}
	lastRow, _, err := s.Dimensions()
	if err != nil || lastRow > 0 || !t.cfg.MonthHeaders {
		return s, err
	}
	for col := 1; col <= t.cfg.LastColumn; col++ {
		v := strings.TrimSpace(cell(header, col))
		if v == "" {
			v = grid.ColumnName(col)
		}
		if err := s.SetValue(t.cfg.HeaderRow, col, v); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// cellValue keeps numbers numeric when copying.
func cellValue(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}

// number parses a quantity, reading a comma as the decimal separator.
func number(v string) (decimal.Decimal, bool) {
	v = strings.Join(strings.Fields(v), "")
	if v == "" {
		return decimal.Zero, false
	}
	n, err := decimal.NewFromString(strings.Replace(v, ",", ".", 1))
	return n, err == nil
}
