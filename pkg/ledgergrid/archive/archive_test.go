package archive

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/grid"
	"github.com/xuri/excelize/v2"
)

func sept(d int) time.Time { return time.Date(2025, time.September, d, 0, 0, 0, 0, time.UTC) }

// newSource builds a "Data source" sheet: # | Item | SKU | Note | Date | Qty.
func newSource(t *testing.T) *grid.File {
	t.Helper()
	f := excelize.NewFile()
	t.Cleanup(func() { f.Close() })
	const sheet = "Data source"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		t.Fatal(err)
	}
	rows := [][]any{
		{"#", "Item", "SKU", "Note", "Date", "Qty"},
		{nil, "bolt", "CC-1", nil, "08/09/2025", 5},
		{nil, "nut", "CC-2", "x", sept(8), 3},
		{nil, "washer", nil, nil, "2025-09-09", "1,5"},
		{nil, "screw", nil, nil, "10.10.2025 14:00", 2},
		{nil, "junk", nil, nil, "n/a", 9},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	return grid.New(f, "source")
}

func rowsOf(t *testing.T, book grid.Workbook, name string) [][]string {
	t.Helper()
	s, err := book.Sheet(name)
	if err != nil {
		t.Fatal(err)
	}
	rows, err := s.Rows()
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func TestTransferDate(t *testing.T) {
	book := newSource(t)
	tr := New(DefaultOptions())

	b, err := tr.TransferDate(book, sept(8))
	if err != nil {
		t.Fatalf("TransferDate: %v", err)
	}
	want := Block{Sheet: "09-2025", Date: "08/09/2025", StartRow: 4, Rows: 2, TotalRow: 6, Total: "8"}
	if b != want {
		t.Errorf("block = %+v, want %+v", b, want)
	}

	rows := rowsOf(t, book, "09-2025")
	if got := rows[0]; !reflect.DeepEqual(got, []string{"#", "Item", "SKU", "Note", "Date", "Qty"}) {
		t.Errorf("header = %q", got)
	}
	if got := rows[3]; !reflect.DeepEqual(got, []string{"1", "bolt", "CC-1", "", "08/09/2025", "5"}) {
		t.Errorf("row 4 = %q", got)
	}
	if got := rows[4]; !reflect.DeepEqual(got, []string{"2", "nut", "CC-2", "x", "08/09/2025", "3"}) {
		t.Errorf("row 5 = %q", got)
	}
	if got := rows[5]; !reflect.DeepEqual(got, []string{"", "", "", "", "08/09/2025", "8"}) {
		t.Errorf("total row = %q", got)
	}

	f := book.Excel()
	for row, want := range map[int]uint8{3: 0, 4: 1, 5: 1, 6: 0} {
		level, err := f.GetRowOutlineLevel("09-2025", row)
		if err != nil {
			t.Fatal(err)
		}
		if level != want {
			t.Errorf("row %d outline level = %d, want %d", row, level, want)
		}
	}
	s, _ := book.Sheet("09-2025")
	for _, col := range []int{1, 6} {
		fm, err := s.(*grid.XSheet).CellFormat(6, col)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.HasSuffix(strings.ToUpper(fm.Background), "B7E1CD") {
			t.Errorf("total row fill at column %d = %q", col, fm.Background)
		}
	}

	// A second transfer lands below the first, after the blank gap.
	b, err = tr.TransferDate(book, sept(8))
	if err != nil {
		t.Fatal(err)
	}
	if b.StartRow != 9 || b.TotalRow != 11 {
		t.Errorf("second block rows %d..%d, want 9..11", b.StartRow, b.TotalRow)
	}
}

func TestTransferDateNoRows(t *testing.T) {
	book := newSource(t)
	_, err := New(DefaultOptions()).TransferDate(book, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, ErrNoRows) {
		t.Fatalf("err = %v, want ErrNoRows", err)
	}
	for _, name := range book.Sheets() {
		if name == "01-2025" {
			t.Error("month sheet created without rows")
		}
	}
}

func TestTransferMissingSource(t *testing.T) {
	f := excelize.NewFile()
	t.Cleanup(func() { f.Close() })
	_, err := New(DefaultOptions()).TransferAll(grid.New(f, "empty"))
	if !errors.Is(err, grid.ErrSheetNotFound) {
		t.Errorf("err = %v, want ErrSheetNotFound", err)
	}
}

func TestTransferAll(t *testing.T) {
	book := newSource(t)
	blocks, err := New(DefaultOptions()).TransferAll(book)
	if err != nil {
		t.Fatalf("TransferAll: %v", err)
	}
	want := []Block{
		{Sheet: "09-2025", Date: "08/09/2025", StartRow: 4, Rows: 2, TotalRow: 6, Total: "8"},
		{Sheet: "09-2025", Date: "09/09/2025", StartRow: 9, Rows: 1, TotalRow: 10, Total: "1.5"},
		{Sheet: "10-2025", Date: "10/10/2025", StartRow: 4, Rows: 1, TotalRow: 5, Total: "2"},
	}
	if !reflect.DeepEqual(blocks, want) {
		t.Errorf("blocks = %+v\nwant %+v", blocks, want)
	}
	rows := rowsOf(t, book, "09-2025")
	if got := rows[8]; !reflect.DeepEqual(got, []string{"1", "washer", "", "", "09/09/2025", "1,5"}) {
		t.Errorf("row 9 = %q", got)
	}
}

func TestCoerceDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"08/09/2025", sept(8), true},
		{"8.9.2025", sept(8), true},
		{"08-09-2025 10:30", sept(8), true},
		{"2025-09-08", sept(8), true},
		{"2025/09/08", sept(8), true},
		{"45908", sept(8), true},
		{"45908.75", sept(8), true},
		{"31/02/2025", time.Time{}, false},
		{"09/2025", time.Time{}, false},
		{"tomorrow", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := CoerceDate(tt.in)
			if ok != tt.ok || !got.Equal(tt.want) {
				t.Errorf("CoerceDate(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}
