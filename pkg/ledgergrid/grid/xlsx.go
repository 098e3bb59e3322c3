package grid

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// File is a Workbook backed by an excelize file.
type File struct {
	f    *excelize.File
	name string
	path string
}

// Open opens an .xlsx workbook from disk.
func Open(path string) (*File, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return &File{f: f, name: bookName(path), path: path}, nil
}

// New wraps an in-memory excelize file. name is used as the workbook name.
func New(f *excelize.File, name string) *File {
	return &File{f: f, name: name}
}

func bookName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Excel returns the underlying excelize file.
func (b *File) Excel() *excelize.File { return b.f }

// Name returns the workbook name.
func (b *File) Name() string { return b.name }

// Path returns the file the workbook was opened from, if any.
func (b *File) Path() string { return b.path }

// Sheets lists the sheet names in workbook order.
func (b *File) Sheets() []string { return b.f.GetSheetList() }

// Sheet returns the named sheet.
func (b *File) Sheet(name string) (Sheet, error) {
	s, err := b.sheet(name)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (b *File) sheet(name string) (*XSheet, error) {
	idx, err := b.f.GetSheetIndex(name)
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, name)
	}
	// GetSheetIndex folds case; keep the stored spelling.
	return &XSheet{f: b.f, name: b.f.GetSheetName(idx)}, nil
}

// EnsureSheet returns the named sheet, creating it when absent.
func (b *File) EnsureSheet(name string) (Sheet, error) {
	if s, err := b.sheet(name); err == nil {
		return s, nil
	}
	if _, err := b.f.NewSheet(name); err != nil {
		return nil, fmt.Errorf("failed to create sheet %q: %w", name, err)
	}
	return b.sheet(name)
}

// ResetSheet replaces the named sheet with an empty one at the same
// position, dropping content, styles, merges and rules.
func (b *File) ResetSheet(name string) (Sheet, error) {
	idx, err := b.f.GetSheetIndex(name)
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		return b.EnsureSheet(name)
	}
	tmp := "~" + strconv.Itoa(len(b.f.GetSheetList())) + "~"
	if _, err := b.f.NewSheet(tmp); err != nil {
		return nil, err
	}
	if err := b.f.DeleteSheet(name); err != nil {
		return nil, err
	}
	if err := b.f.SetSheetName(tmp, name); err != nil {
		return nil, err
	}
	if list := b.f.GetSheetList(); idx < len(list) && list[idx] != name {
		if err := b.f.MoveSheet(name, list[idx]); err != nil {
			return nil, err
		}
	}
	return b.sheet(name)
}

// Save writes the workbook back to the file it was opened from. Formulas
// are recalculated on the next open in a spreadsheet application.
func (b *File) Save() error {
	if b.path == "" {
		return fmt.Errorf("workbook %q has no file path", b.name)
	}
	return b.SaveAs(b.path)
}

// SaveAs writes the workbook to path.
func (b *File) SaveAs(path string) error {
	recalc := true
	if err := b.f.SetCalcProps(&excelize.CalcPropsOptions{FullCalcOnLoad: &recalc}); err != nil {
		return err
	}
	if err := b.f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// Close releases resources held by the workbook.
func (b *File) Close() error { return b.f.Close() }
