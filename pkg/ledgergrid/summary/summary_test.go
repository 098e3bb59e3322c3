package summary

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/grid"
	"github.com/xuri/excelize/v2"
)

func newWorkbook(t *testing.T, name, sheet string, rows [][]any) *grid.File {
	t.Helper()
	f := excelize.NewFile()
	t.Cleanup(func() { f.Close() })
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		t.Fatal(err)
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	return grid.New(f, name)
}

// fixture returns a primary catalogue with a title row above its header
// and a storage sheet keyed by item name with SKUs.
func fixture(t *testing.T) []Source {
	catalogue := newWorkbook(t, "bisque", "חדש", [][]any{
		{"Catalogue 2026"},
		{},
		{"Item", "Description", "Total"},
		{"A-100", "blue  bolt", 5},
		{"A-101", "Nut", "3,5"},
		{"A-100b", "BLUE BOLT", 2},
	})
	storage := newWorkbook(t, "yu", "STORAGE", [][]any{
		{"Item", "SKU CC# as in cataloque", "Total now"},
		{"Blue Bolt", "CC-1", 4},
		{"Washer", "", "x"},
		{"Ｎｕｔ", "CC-2", 1},
	})
	return []Source{
		{Label: "BISQUE_IL", Book: catalogue, Sheet: "חדש", Primary: true},
		{Label: "YU_Storage", Book: storage, Sheet: "STORAGE"},
	}
}

func newTarget(t *testing.T) *grid.File {
	t.Helper()
	f := excelize.NewFile()
	t.Cleanup(func() { f.Close() })
	return grid.New(f, "total")
}

func sheetRows(t *testing.T, book grid.Workbook, name string) [][]string {
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

func TestBuild(t *testing.T) {
	target := newTarget(t)
	opts := DefaultOptions()

	res, err := Build(target, fixture(t), opts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if res.Rows != 3 || len(res.Missing) != 0 {
		t.Errorf("result = %+v", res)
	}

	rows := sheetRows(t, target, opts.Summary.Sheet)
	wantHeader := []string{"ITEM / DESCRIPTION", "SKU CC# as in cataloque", "BISQUE_IL (pcs)", "YU_Storage (pcs)", "TOTAL NOW ALL (pcs)"}
	if !reflect.DeepEqual(rows[0], wantHeader) {
		t.Errorf("header = %q", rows[0])
	}
	want := [][]string{
		{"Blue Bolt", "CC-1", "7", "4"},
		{"Nut", "CC-2", "3.5", "1"},
		{"Washer", "", "0", "0"},
	}
	for i, w := range want {
		if got := rows[i+1][:4]; !reflect.DeepEqual(got, w) {
			t.Errorf("row %d = %q, want %q", i+2, got, w)
		}
	}

	s, _ := target.Sheet(opts.Summary.Sheet)
	for row := 2; row <= 4; row++ {
		f, _ := s.Formula(row, 5)
		if want := fmt.Sprintf("SUM(C%d:D%d)", row, row); f != want {
			t.Errorf("E%d = %q, want %q", row, f, want)
		}
	}

	cfs, err := s.ConditionalFormats()
	if err != nil {
		t.Fatal(err)
	}
	if len(cfs) != 1 || cfs[0].Ref != "E2:E4" || len(cfs[0].Rules) != 2 {
		t.Fatalf("conditional formats = %+v", cfs)
	}
	if got := cfs[0].Rules[0].Formula; got != "AND($E2<20,$E2>=10)" {
		t.Errorf("warn rule = %q", got)
	}
	if got := cfs[0].Rules[1].Formula; got != "$E2<10" {
		t.Errorf("critical rule = %q", got)
	}

	xs := s.(*grid.XSheet)
	head, _ := xs.CellFormat(1, 1)
	if head.Bold == nil || !*head.Bold || !sameColor(head.Background, opts.Summary.HeaderFill) {
		t.Errorf("header format = %+v", head)
	}
	for row, fill := range map[int]string{2: "#EEF4FB", 3: "#FFFFFF", 4: "#EEF4FB"} {
		fm, _ := xs.CellFormat(row, 1)
		if !sameColor(fm.Background, fill) {
			t.Errorf("row %d fill = %q, want %s", row, fm.Background, fill)
		}
	}
	panes, err := target.Excel().GetPanes(opts.Summary.Sheet)
	if err != nil || !panes.Freeze || panes.YSplit != 1 {
		t.Errorf("panes = %+v, %v", panes, err)
	}
}

func TestBuildReplacesPreviousSummary(t *testing.T) {
	target := newTarget(t)
	opts := DefaultOptions()
	sources := fixture(t)
	if _, err := Build(target, sources, opts); err != nil {
		t.Fatal(err)
	}
	if _, err := Build(target, sources[1:], opts); err != nil {
		t.Fatal(err)
	}
	rows := sheetRows(t, target, opts.Summary.Sheet)
	if len(rows) != 4 || len(rows[0]) != 4 {
		t.Errorf("rebuilt sheet has %d rows, header %q", len(rows), rows[0])
	}
}

func TestBuildMissingHeaders(t *testing.T) {
	target := newTarget(t)
	sources := fixture(t)
	sources = append(sources, Source{
		Label: "HH_Storage",
		Book:  newWorkbook(t, "hh", "STORAGE", [][]any{{"Name", "Qty"}, {"bolt", 3}}),
		Sheet: "STORAGE",
	})
	res, err := Build(target, sources, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(res.Missing, []string{"HH_Storage"}) {
		t.Errorf("Missing = %v", res.Missing)
	}
}

func TestBuildMissingSheet(t *testing.T) {
	sources := fixture(t)
	sources[1].Sheet = "NOPE"
	_, err := Build(newTarget(t), sources, DefaultOptions())
	if !errors.Is(err, grid.ErrSheetNotFound) {
		t.Errorf("err = %v, want ErrSheetNotFound", err)
	}
}

func TestBuildUsesBalances(t *testing.T) {
	storage := newWorkbook(t, "yu", "STORAGE", [][]any{
		{"Item", "TOTAL NOW"},
		{"bolt"},
	})
	sources := []Source{{Label: "YU", Book: storage, Sheet: "STORAGE", Balances: map[int]string{2: "12"}}}
	target := newTarget(t)
	if _, err := Build(target, sources, DefaultOptions()); err != nil {
		t.Fatal(err)
	}
	rows := sheetRows(t, target, DefaultOptions().Summary.Sheet)
	if got := rows[1][2]; got != "12" {
		t.Errorf("quantity = %q, want 12", got)
	}
}

func TestSortByTotal(t *testing.T) {
	target := newTarget(t)
	opts := DefaultOptions()
	if _, err := Build(target, fixture(t), opts); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		asc  bool
		want []string
	}{
		{false, []string{"Blue Bolt", "Nut", "Washer"}},
		{true, []string{"Washer", "Nut", "Blue Bolt"}},
	}
	for _, tt := range tests {
		if err := SortByTotal(target, opts, tt.asc); err != nil {
			t.Fatal(err)
		}
		rows := sheetRows(t, target, opts.Summary.Sheet)
		var got []string
		for _, r := range rows[1:] {
			got = append(got, r[0])
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("asc=%v: order = %q, want %q", tt.asc, got, tt.want)
		}
		s, _ := target.Sheet(opts.Summary.Sheet)
		if f, _ := s.Formula(2, 5); f != "SUM(C2:D2)" {
			t.Errorf("E2 = %q", f)
		}
	}
}

func TestSortByTotalMissingSheet(t *testing.T) {
	if err := SortByTotal(newTarget(t), DefaultOptions(), true); !errors.Is(err, grid.ErrSheetNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestText(t *testing.T) {
	keys := []struct{ in, want string }{
		{"  Ｂｌｕｅ   Bolt ", "blue bolt"},
		{"NUT", "nut"},
	}
	for _, tt := range keys {
		if got := itemKey(tt.in); got != tt.want {
			t.Errorf("itemKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := titleCase("blue-green  BOLT"); got != "Blue-Green Bolt" {
		t.Errorf("titleCase = %q", got)
	}
	if got := headerText(" SKU  CC# as in cataloque "); got != "sku cc# as in cataloque" {
		t.Errorf("headerText = %q", got)
	}
	quantities := map[string]string{"1 234,5": "1234.5", "abc": "0", "": "0", "7": "7"}
	for in, want := range quantities {
		if got := quantity(in).String(); got != want {
			t.Errorf("quantity(%q) = %s, want %s", in, got, want)
		}
	}
}

func sameColor(a, b string) bool {
	norm := func(s string) string {
		s = strings.ToUpper(strings.TrimPrefix(s, "#"))
		if len(s) > 6 {
			s = s[len(s)-6:]
		}
		return s
	}
	return norm(a) == norm(b)
}
