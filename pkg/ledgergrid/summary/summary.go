// Package summary builds a cross-workbook stock table: one row per item,
// one quantity column per source sheet and a grand-total column.
package summary

import (
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/config"
	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/grid"
	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/models"
	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Source is one sheet feeding a quantity column.
type Source struct {
	// Label names the column; "YU_Storage" renders as "YU_Storage (pcs)".
	Label string
	Book  grid.Workbook
	Sheet string
	// Primary sources supply display labels, sort order and the item
	// column used when no other source has a SKU. Without a primary
	// source the first one is used.
	Primary bool
	// Balances fills total cells that have no cached value, keyed by row.
	Balances map[int]string
}

// Options configures Build and SortByTotal.
type Options struct {
	Summary config.Summary
	Alerts  config.Alerts
	Logger  *zap.Logger
}

func DefaultOptions() Options {
	cfg := config.Default()
	return Options{Summary: cfg.Summary, Alerts: cfg.Alerts}
}

func (o Options) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return zap.NewNop()
}

// Result describes a built summary.
type Result struct {
	Sheet string `json:"sheet"`
	Rows  int    `json:"rows"`
	// Missing lists sources where no item or total header was found.
	Missing []string `json:"missing,omitempty"`
}

// sheetData is what one source contributes, keyed by item key.
type sheetData struct {
	sum   map[string]decimal.Decimal
	label map[string]string
	sku   map[string]string
	item  map[string]string
	order []string
}

func newSheetData() *sheetData {
	return &sheetData{
		sum:   make(map[string]decimal.Decimal),
		label: make(map[string]string),
		sku:   make(map[string]string),
		item:  make(map[string]string),
	}
}

type position struct{ row, col int }

const (
	groupDescription = "description"
	groupItem        = "item"
	groupTotal       = "total"
	groupSKU         = "sku"
	groupItemOnly    = "item-only"
)

// findHeaders returns the first cell, scanning row by row, matching each
// header group. Positions are 1-based.
func findHeaders(rows [][]string, h config.SummaryHeaders) map[string]position {
	groups := map[string]map[string]bool{
		groupDescription: set(h.Description),
		groupItem:        set(h.Item),
		groupTotal:       set(h.Total),
		groupSKU:         set(h.SKU),
		groupItemOnly:    set(h.ItemOnly),
	}
	found := make(map[string]position)
	for r, row := range rows {
		for c, v := range row {
			text := headerText(v)
			if text == "" {
				continue
			}
			for name, names := range groups {
				if _, ok := found[name]; !ok && names[text] {
					found[name] = position{row: r + 1, col: c + 1}
				}
			}
		}
	}
	return found
}

func set(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[headerText(n)] = true
	}
	return m
}

func at(rows [][]string, row, col int) string {
	if row < 1 || row > len(rows) || col < 1 || col > len(rows[row-1]) {
		return ""
	}
	return rows[row-1][col-1]
}

// read collects per-item totals from a source. ok is false when the
// source has no item or total header.
func read(src Source, primary bool, cfg config.Summary) (*sheetData, bool, error) {
	s, err := src.Book.Sheet(src.Sheet)
	if err != nil {
		return nil, false, err
	}
	rows, err := s.Rows()
	if err != nil {
		return nil, false, err
	}
	pos := findHeaders(rows[:min(cfg.ScanRows, len(rows))], cfg.Headers)

	key, ok := pos[groupDescription]
	if !ok {
		key, ok = pos[groupItem]
	}
	total, hasTotal := pos[groupTotal]
	data := newSheetData()
	if !ok || !hasTotal {
		return data, false, nil
	}
	sku, hasSKU := pos[groupSKU]
	item, hasItem := pos[groupItemOnly]
	hasItem = hasItem && primary

	headerRow := max(key.row, total.row)
	if hasSKU {
		headerRow = max(headerRow, sku.row)
	}
	if hasItem {
		headerRow = max(headerRow, item.row)
	}

	for r := headerRow + 1; r <= len(rows); r++ {
		raw := collapse(at(rows, r, key.col))
		if raw == "" {
			continue
		}
		k := itemKey(raw)
		qty := at(rows, r, total.col)
		if collapse(qty) == "" && src.Balances != nil {
			qty = src.Balances[r]
		}
		if _, seen := data.sum[k]; !seen {
			data.order = append(data.order, k)
			data.label[k] = raw
		}
		data.sum[k] = data.sum[k].Add(quantity(qty))
		if hasSKU {
			if v := collapse(at(rows, r, sku.col)); v != "" && data.sku[k] == "" {
				data.sku[k] = v
			}
		}
		if hasItem {
			if v := collapse(at(rows, r, item.col)); v != "" && data.item[k] == "" {
				data.item[k] = v
			}
		}
	}
	return data, true, nil
}

// Build reads every source and rewrites the summary sheet of target.
func Build(target grid.Workbook, sources []Source, opts Options) (Result, error) {
	cfg := opts.Summary
	log := opts.logger()
	if len(sources) == 0 {
		return Result{}, errors.New("summary: no sources")
	}
	primary := 0
	for i, src := range sources {
		if src.Primary {
			primary = i
			break
		}
	}

	res := Result{Sheet: cfg.Sheet}
	data := make([]*sheetData, len(sources))
	var keys []string
	seen := make(map[string]bool)
	for i, src := range sources {
		d, ok, err := read(src, i == primary, cfg)
		if err != nil {
			return res, fmt.Errorf("summary: source %s (%s!%s): %w", src.Label, src.Book.Name(), src.Sheet, err)
		}
		if !ok {
			log.Warn("source has no item or total header",
				zap.String("source", src.Label), zap.String("sheet", src.Sheet))
			res.Missing = append(res.Missing, src.Label)
		}
		data[i] = d
		for _, k := range d.order {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}

	display := func(k string) string {
		if l, ok := data[primary].label[k]; ok {
			return l
		}
		return k
	}
	col := collate.New(language.Und, collate.Loose)
	sort.SliceStable(keys, func(i, j int) bool {
		if c := col.CompareString(display(keys[i]), display(keys[j])); c != 0 {
			return c < 0
		}
		return keys[i] < keys[j]
	})

	s, err := target.ResetSheet(cfg.Sheet)
	if err != nil {
		return res, fmt.Errorf("summary: %w", err)
	}
	header := []string{cfg.KeyHeader, cfg.SKUHeader}
	for _, src := range sources {
		header = append(header, src.Label+" (pcs)")
	}
	header = append(header, cfg.TotalHeader)

	widths := make([]int, len(header))
	for c, h := range header {
		if err := s.SetValue(1, c+1, h); err != nil {
			return res, err
		}
		widths[c] = utf8.RuneCountInString(h)
	}

	totalCol := len(header)
	formulas := make([]string, 0, len(keys))
	for i, k := range keys {
		row := i + 2
		label := titleCase(display(k))
		if err := s.SetValue(row, 1, label); err != nil {
			return res, err
		}
		widths[0] = max(widths[0], utf8.RuneCountInString(label))
		if sku := skuFor(k, data, primary); sku != "" {
			if err := s.SetValue(row, 2, sku); err != nil {
				return res, err
			}
			widths[1] = max(widths[1], utf8.RuneCountInString(sku))
		}
		for j, d := range data {
			if err := s.SetValue(row, 3+j, d.sum[k].InexactFloat64()); err != nil {
				return res, err
			}
		}
		formulas = append(formulas, sumFormula(row, 3, totalCol-1))
	}
	if err := s.SetFormulas(totalCol, 2, formulas); err != nil {
		return res, err
	}
	res.Rows = len(keys)

	if err := format(s, opts, len(keys), totalCol); err != nil {
		return res, fmt.Errorf("summary: %w", err)
	}
	for c, w := range widths {
		if err := s.SetColumnWidth(c+1, c+1, float64(min(max(w+2, 10), 60))); err != nil {
			return res, err
		}
	}
	log.Info("summary built",
		zap.String("sheet", cfg.Sheet),
		zap.Int("rows", res.Rows),
		zap.Int("sources", len(sources)))
	return res, nil
}

// skuFor returns the first SKU among the other sources, then the primary
// source's own SKU, then its item column.
func skuFor(k string, data []*sheetData, primary int) string {
	for i, d := range data {
		if i != primary && d.sku[k] != "" {
			return d.sku[k]
		}
	}
	if sku := data[primary].sku[k]; sku != "" {
		return sku
	}
	return data[primary].item[k]
}

func sumFormula(row, fromCol, toCol int) string {
	return fmt.Sprintf("SUM(%s%d:%s%d)", grid.ColumnName(fromCol), row, grid.ColumnName(toCol), row)
}

// format styles the header, the body bands and the total column, and
// colours low totals.
func format(s grid.Sheet, opts Options, rows, totalCol int) error {
	cfg, a := opts.Summary, opts.Alerts
	bold := true
	head := models.Range{R1: 1, C1: 1, R2: 1, C2: totalCol}
	if err := s.ApplyFormat(head, models.Format{Bold: &bold, Horizontal: "center", Background: cfg.HeaderFill}); err != nil {
		return err
	}
	if err := s.FreezeRows(1); err != nil {
		return err
	}
	if rows == 0 {
		return nil
	}
	for i := 0; i < rows && len(cfg.BandFills) > 0; i++ {
		band := models.Range{R1: i + 2, C1: 1, R2: i + 2, C2: totalCol}
		if err := s.ApplyFormat(band, models.Format{Background: cfg.BandFills[i%len(cfg.BandFills)]}); err != nil {
			return err
		}
	}
	numbers := models.Range{R1: 2, C1: 3, R2: rows + 1, C2: totalCol}
	if err := s.ApplyFormat(numbers, models.Format{NumberFormat: cfg.NumberFormat}); err != nil {
		return err
	}
	centred := models.Range{R1: 2, C1: 2, R2: rows + 1, C2: totalCol}
	if err := s.ApplyFormat(centred, models.Format{Horizontal: "center"}); err != nil {
		return err
	}
	totals := models.Column(totalCol, 2, rows)
	if err := s.ApplyFormat(totals, models.Format{Bold: &bold}); err != nil {
		return err
	}
	ref, err := grid.RangeRef(totals)
	if err != nil {
		return err
	}
	cell := "$" + grid.ColumnName(totalCol) + "2"
	warn, critical := decimal.NewFromFloat(a.WarnBelow).String(), decimal.NewFromFloat(a.CriticalBelow).String()
	return s.SetConditionalFormat(ref, []models.ConditionalRule{
		{Formula: fmt.Sprintf("AND(%s<%s,%s>=%s)", cell, warn, cell, critical), FontColor: a.WarnColor},
		{Formula: fmt.Sprintf("%s<%s", cell, critical), FontColor: a.CriticalColor},
	})
}
