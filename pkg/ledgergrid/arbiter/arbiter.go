// Package arbiter decides what a single cell edit on a ledger sheet should
// do: run a structural command, coerce a typed number, or nothing at all.
package arbiter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/config"
	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/grid"
	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/models"
	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/parser"
	"go.uber.org/zap"
)

var (
	// ErrLockTimeout is returned when the document lock could not be taken
	// within the configured timeout.
	ErrLockTimeout = errors.New("timed out waiting for the document lock")
	// ErrUnknownCommand is returned when the command cell holds text that
	// matches no command.
	ErrUnknownCommand = errors.New("unknown command")
)

// Outcome is what HandleEdit did with an edit.
type Outcome int

const (
	Ignored Outcome = iota
	// Stale means the command cell changed after the edit was made.
	Stale
	// Debounced means the same command already ran within the window.
	Debounced
	Dispatched
	Coerced
	Cleared
	Rejected
	FormulaKept
)

func (o Outcome) String() string {
	switch o {
	case Ignored:
		return "ignored"
	case Stale:
		return "stale"
	case Debounced:
		return "debounced"
	case Dispatched:
		return "dispatched"
	case Coerced:
		return "coerced"
	case Cleared:
		return "cleared"
	case Rejected:
		return "rejected"
	case FormulaKept:
		return "formula kept"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Edit is one cell edit as delivered by the host.
type Edit struct {
	Sheet string
	Row   int
	Col   int
	// Value is the text the user entered.
	Value string
	// Formula is set when the user entered a formula.
	Formula string
}

// Dispatcher runs the structural operations behind the commands.
type Dispatcher interface {
	Managed(sheet string) bool
	AppendBlock(book grid.Workbook, sheet string, kind models.Kind) error
	UpdateCurrentBlock(book grid.Workbook, sheet string) error
}

// Arbiter routes edits on one workbook.
type Arbiter struct {
	d        Dispatcher
	book     grid.Workbook
	cfg      config.Config
	log      *zap.Logger
	notifier Notifier
	debounce *Debouncer
	lock     *DocLock
	commands map[string]func() error
	cmdRow   int
	cmdCol   int
}

// Option configures an Arbiter.
type Option func(*Arbiter)

func WithLogger(l *zap.Logger) Option {
	return func(a *Arbiter) {
		if l != nil {
			a.log = l
		}
	}
}

// WithNotifier sets where user-facing warnings go.
func WithNotifier(n Notifier) Option {
	return func(a *Arbiter) { a.notifier = n }
}

// WithDebouncer replaces the default in-memory debouncer.
func WithDebouncer(d *Debouncer) Option {
	return func(a *Arbiter) { a.debounce = d }
}

// WithLock shares a document lock between arbiters of the same workbook.
func WithLock(l *DocLock) Option {
	return func(a *Arbiter) { a.lock = l }
}

// New creates an Arbiter for book.
func New(d Dispatcher, book grid.Workbook, cfg config.Config, opts ...Option) (*Arbiter, error) {
	row, col, err := grid.ParseCell(cfg.Ledger.CommandCell)
	if err != nil {
		return nil, fmt.Errorf("command cell: %w", err)
	}
	a := &Arbiter{
		d:      d,
		book:   book,
		cfg:    cfg,
		log:    zap.NewNop(),
		cmdRow: row,
		cmdCol: col,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.notifier == nil {
		a.notifier = LogNotifier{Logger: a.log}
	}
	if a.debounce == nil {
		a.debounce = NewDebouncer(NewMemoryStore(cfg.Arbiter.DebounceCapacity), cfg.Arbiter.DebounceWindow, cfg.Arbiter.DebounceTTL)
	}
	if a.lock == nil {
		a.lock = NewDocLock(cfg.Arbiter.LockTimeout)
	}
	return a, nil
}

// Apply writes the edit into the workbook, as the host would before
// notifying, then handles it.
func (a *Arbiter) Apply(ctx context.Context, ev Edit) (Outcome, error) {
	s, err := a.book.Sheet(ev.Sheet)
	if err != nil {
		return Ignored, err
	}
	if ev.Formula != "" {
		err = s.SetFormulas(ev.Col, ev.Row, []string{ev.Formula})
	} else if ev.Value == "" {
		err = s.SetValue(ev.Row, ev.Col, nil)
	} else {
		err = s.SetValue(ev.Row, ev.Col, ev.Value)
	}
	if err != nil {
		return Ignored, err
	}
	return a.HandleEdit(ctx, ev)
}

// HandleEdit reacts to an edit that has already landed in the workbook.
func (a *Arbiter) HandleEdit(ctx context.Context, ev Edit) (Outcome, error) {
	if !a.d.Managed(ev.Sheet) {
		return Ignored, nil
	}
	s, err := a.book.Sheet(ev.Sheet)
	if err != nil {
		return Ignored, err
	}
	if ev.Row == a.cmdRow && ev.Col == a.cmdCol {
		return a.command(ctx, s, ev)
	}
	if ev.Row < a.cfg.Ledger.DataStartRow {
		return Ignored, nil
	}
	return a.input(ctx, s, ev)
}

func (a *Arbiter) command(ctx context.Context, s grid.Sheet, ev Edit) (Outcome, error) {
	cmd := strings.TrimSpace(ev.Value)
	if cmd == "" {
		return Ignored, nil
	}
	if live, err := s.Value(a.cmdRow, a.cmdCol); err != nil {
		return Ignored, err
	} else if strings.TrimSpace(live) != cmd {
		a.log.Debug("stale command", zap.String("sheet", ev.Sheet), zap.String("command", cmd))
		return Stale, nil
	}

	run, ok := a.dispatch(ev.Sheet, cmd)
	if !ok {
		return Ignored, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}

	hit, err := a.debounce.Hit(s.ID() + "|" + cmd)
	if err != nil {
		return Ignored, err
	}
	if hit {
		a.log.Debug("debounced command", zap.String("sheet", ev.Sheet), zap.String("command", cmd))
		return Debounced, nil
	}

	if err := a.lock.Acquire(ctx); err != nil {
		if errors.Is(err, ErrLockTimeout) {
			a.notifier.Notify(ctx, "Busy", "Another operation is running. Please try again.")
		}
		return Ignored, err
	}
	defer a.lock.Release()

	live, err := s.Value(a.cmdRow, a.cmdCol)
	if err != nil {
		return Ignored, err
	}
	if strings.TrimSpace(live) != cmd {
		a.log.Debug("command changed while waiting for the lock", zap.String("sheet", ev.Sheet))
		return Stale, nil
	}

	if err := run(); err != nil {
		return Ignored, err
	}
	if err := s.SetValue(a.cmdRow, a.cmdCol, nil); err != nil {
		return Dispatched, err
	}
	a.log.Info("command executed", zap.String("sheet", ev.Sheet), zap.String("command", cmd))
	return Dispatched, nil
}

// dispatch maps command text to the operation it runs.
func (a *Arbiter) dispatch(sheet, cmd string) (func() error, bool) {
	c := a.cfg.Commands
	appendFn := func(kind models.Kind) func() error {
		return func() error { return a.d.AppendBlock(a.book, sheet, kind) }
	}
	switch cmd {
	case c.AddIn:
		return appendFn(models.KindIn), true
	case c.AddOut:
		return appendFn(models.KindOut), true
	case c.AddOutToFloor:
		return appendFn(models.KindOutToFloor), true
	case c.Update:
		return func() error { return a.d.UpdateCurrentBlock(a.book, sheet) }, true
	}
	return nil, false
}

// input validates a data-cell edit. It never takes the document lock.
func (a *Arbiter) input(ctx context.Context, s grid.Sheet, ev Edit) (Outcome, error) {
	header, err := s.Value(a.cfg.Ledger.HeaderRow, ev.Col)
	if err != nil {
		return Ignored, err
	}
	if !parser.IsInputLabel(header) {
		return Ignored, nil
	}
	cell := models.Cell(ev.Row, ev.Col)
	numeric := models.Format{NumberFormat: a.cfg.Ledger.NumberFormat}

	f := ev.Formula
	if f == "" {
		if f, err = s.Formula(ev.Row, ev.Col); err != nil {
			return Ignored, err
		}
	}
	if f != "" {
		return FormulaKept, s.ApplyFormat(cell, numeric)
	}

	n, empty, err := Coerce(ev.Value)
	switch {
	case err != nil:
		if err := s.SetValue(ev.Row, ev.Col, nil); err != nil {
			return Rejected, err
		}
		a.notifier.Notify(ctx, "Invalid number",
			fmt.Sprintf("%q is not a number. Use digits with . or , as the decimal separator.", ev.Value))
		return Rejected, nil
	case empty:
		if err := s.SetValue(ev.Row, ev.Col, nil); err != nil {
			return Cleared, err
		}
		return Cleared, s.ApplyFormat(cell, numeric)
	}
	if err := s.SetValue(ev.Row, ev.Col, n.InexactFloat64()); err != nil {
		return Coerced, err
	}
	return Coerced, s.ApplyFormat(cell, numeric)
}
