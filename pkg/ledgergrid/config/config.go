// Package config loads ledgergrid settings from TOML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/BurntSushi/toml"
)

// Ledger describes the grid layout of a ledger sheet.
type Ledger struct {
	Sheets             []string `toml:"sheets"`
	MetaRow            int      `toml:"meta-row"`
	HeaderRow          int      `toml:"header-row"`
	DataStartRow       int      `toml:"data-start-row"`
	TotalNowLabel      string   `toml:"total-now-label"`
	DefaultFirstColumn int      `toml:"default-first-column"`
	NumberFormat       string   `toml:"number-format"`
	DateLayout         string   `toml:"date-layout"`
	CommandCell        string   `toml:"command-cell"`
}

// Commands are the labels offered in the command cell.
type Commands struct {
	AddIn         string `toml:"add-in"`
	AddOut        string `toml:"add-out"`
	AddOutToFloor string `toml:"add-out-to-floor"`
	Update        string `toml:"update"`
}

// List returns the command labels in menu order.
func (c Commands) List() []string {
	return []string{c.AddIn, c.AddOut, c.AddOutToFloor, c.Update}
}

type Arbiter struct {
	DebounceWindow   time.Duration `toml:"debounce-window"`
	DebounceCapacity int           `toml:"debounce-capacity"`
	DebounceTTL      time.Duration `toml:"debounce-ttl"`
	LockTimeout      time.Duration `toml:"lock-timeout"`
}

// Alerts colour the current-balance column when stock runs low.
type Alerts struct {
	WarnBelow     float64 `toml:"warn-below"`
	WarnColor     string  `toml:"warn-color"`
	CriticalBelow float64 `toml:"critical-below"`
	CriticalColor string  `toml:"critical-color"`
}

// SummaryHeaders are the lower-cased header texts recognised in source
// sheets.
type SummaryHeaders struct {
	Description []string `toml:"description"`
	Item        []string `toml:"item"`
	Total       []string `toml:"total"`
	SKU         []string `toml:"sku"`
	ItemOnly    []string `toml:"item-only"`
}

type Summary struct {
	Sheet        string         `toml:"sheet"`
	ScanRows     int            `toml:"scan-rows"`
	KeyHeader    string         `toml:"key-header"`
	SKUHeader    string         `toml:"sku-header"`
	TotalHeader  string         `toml:"total-header"`
	NumberFormat string         `toml:"number-format"`
	HeaderFill   string         `toml:"header-fill"`
	BandFills    []string       `toml:"band-fills"`
	Headers      SummaryHeaders `toml:"headers"`
}

type Archive struct {
	SourceSheet  string `toml:"source-sheet"`
	DateColumn   int    `toml:"date-column"`
	FirstColumn  int    `toml:"first-column"`
	LastColumn   int    `toml:"last-column"`
	HeaderRow    int    `toml:"header-row"`
	BlankGap     int    `toml:"blank-gap"`
	TotalFill    string `toml:"total-fill"`
	MonthLayout  string `toml:"month-layout"`
	DateLayout   string `toml:"date-layout"`
	DateNumFmt   string `toml:"date-number-format"`
	MonthHeaders bool   `toml:"month-headers"`
}

type Config struct {
	Ledger   Ledger   `toml:"ledger"`
	Commands Commands `toml:"commands"`
	Arbiter  Arbiter  `toml:"arbiter"`
	Alerts   Alerts   `toml:"alerts"`
	Summary  Summary  `toml:"summary"`
	Archive  Archive  `toml:"archive"`
}

func Default() Config {
	return Config{
		Ledger: Ledger{
			Sheets:             []string{"COLORS", "STORAGE"},
			MetaRow:            1,
			HeaderRow:          2,
			DataStartRow:       3,
			TotalNowLabel:      "TOTAL NOW",
			DefaultFirstColumn: 6,
			NumberFormat:       "0.############",
			DateLayout:         "02/01/2006",
			CommandCell:        "A1",
		},
		Commands: Commands{
			AddIn:         "➕ Add new day block (IN)",
			AddOut:        "➕ Add new day block (OUT)",
			AddOutToFloor: "➕ Add new day block (out to floor)",
			Update:        "🔁 Update new day block",
		},
		Arbiter: Arbiter{
			DebounceWindow:   2500 * time.Millisecond,
			DebounceCapacity: 256,
			DebounceTTL:      10 * time.Minute,
			LockTimeout:      30 * time.Second,
		},
		Alerts: Alerts{
			WarnBelow:     20,
			WarnColor:     "#FFA500",
			CriticalBelow: 10,
			CriticalColor: "#FF0000",
		},
		Summary: Summary{
			Sheet:        "Total now all",
			ScanRows:     10,
			KeyHeader:    "ITEM / DESCRIPTION",
			SKUHeader:    "SKU CC# as in cataloque",
			TotalHeader:  "TOTAL NOW ALL (pcs)",
			NumberFormat: "0",
			HeaderFill:   "#AFC4E2",
			BandFills:    []string{"#EEF4FB", "#FFFFFF"},
			Headers: SummaryHeaders{
				Description: []string{"description", "תיאור"},
				Item:        []string{"item", "item name", "name", "sku", "description", "שם", "פריט", "תיאור"},
				Total:       []string{"total now (pcs)", "total now", "total", "total_now", "totalnow", "total now all", "סהכ", "סה״כ", `סה"כ`},
				SKU: []string{
					"sku cc# as in cataloque", "sku cc as in cataloque",
					"sku cc# as in catalog", "sku cc as in catalog",
					"sku cc# as in catalogue", "sku cc as in catalogue",
				},
				ItemOnly: []string{"item"},
			},
		},
		Archive: Archive{
			SourceSheet:  "Data source",
			DateColumn:   5,
			FirstColumn:  2,
			LastColumn:   6,
			HeaderRow:    1,
			BlankGap:     2,
			TotalFill:    "#b7e1cd",
			MonthLayout:  "01-2006",
			DateLayout:   "02/01/2006",
			DateNumFmt:   "dd/mm/yyyy",
			MonthHeaders: true,
		},
	}
}

var (
	cellRef  = regexp.MustCompile(`^[A-Z]{1,3}[1-9][0-9]*$`)
	hexColor = regexp.MustCompile(`^#?[0-9A-Fa-f]{6}$`)
)

// Validate reports every configuration error found.
func (c Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) { errs = append(errs, fmt.Errorf(format, args...)) }

	l := c.Ledger
	if len(l.Sheets) == 0 {
		add("ledger.sheets: at least one sheet is required")
	}
	if l.MetaRow < 1 || l.HeaderRow <= l.MetaRow || l.DataStartRow <= l.HeaderRow {
		add("ledger: rows must satisfy 1 <= meta-row < header-row < data-start-row (got %d, %d, %d)",
			l.MetaRow, l.HeaderRow, l.DataStartRow)
	}
	if l.TotalNowLabel == "" {
		add("ledger.total-now-label: must not be empty")
	}
	if l.DefaultFirstColumn < 1 {
		add("ledger.default-first-column: must be >= 1")
	}
	if !cellRef.MatchString(l.CommandCell) {
		add("ledger.command-cell: %q is not a cell reference", l.CommandCell)
	}
	seen := make(map[string]bool)
	for _, cmd := range c.Commands.List() {
		if cmd == "" {
			add("commands: labels must not be empty")
			continue
		}
		if seen[cmd] {
			add("commands: duplicate label %q", cmd)
		}
		seen[cmd] = true
	}
	if c.Arbiter.DebounceWindow < 0 || c.Arbiter.LockTimeout <= 0 {
		add("arbiter: debounce-window must be >= 0 and lock-timeout > 0")
	}
	if c.Alerts.CriticalBelow > c.Alerts.WarnBelow {
		add("alerts: critical-below (%v) exceeds warn-below (%v)", c.Alerts.CriticalBelow, c.Alerts.WarnBelow)
	}
	for _, color := range []string{c.Alerts.WarnColor, c.Alerts.CriticalColor, c.Summary.HeaderFill, c.Archive.TotalFill} {
		if !hexColor.MatchString(color) {
			add("invalid colour %q", color)
		}
	}
	a := c.Archive
	if a.FirstColumn < 1 || a.LastColumn < a.FirstColumn || a.DateColumn < a.FirstColumn || a.DateColumn > a.LastColumn {
		add("archive: date-column %d must lie within copied columns %d..%d", a.DateColumn, a.FirstColumn, a.LastColumn)
	}
	return errors.Join(errs...)
}

// Load reads the config file at ConfigPath, falling back to defaults when
// it does not exist.
func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Default(), err
	}
	return LoadFile(path)
}

// LoadFile decodes path over the defaults. A missing file yields defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Default(), fmt.Errorf("%s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func ConfigDir() (string, error) {
	if v := os.Getenv("LEDGERGRID_CONFIG_HOME"); v != "" {
		return filepath.Join(v), nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "ledgergrid"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ledgergrid"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
