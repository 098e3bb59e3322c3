package parser

import (
	"errors"
	"testing"

	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/models"
)

func TestParseHeaderShapes(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		shape  models.Shape
		sign   models.Sign
		start  int
	}{
		{"four column", []string{"In", "Out", "Out to floor", "Total"}, models.FourColumn, models.NoSign, 1},
		{"three column", []string{"In", "Out to floor", "Total"}, models.ThreeColumn, models.NoSign, 1},
		{"two column out", []string{"Out", "Total"}, models.TwoColumn, models.Minus, 1},
		{"two column in", []string{" IN ", "total"}, models.TwoColumn, models.Plus, 1},
		{"two column floor", []string{"out to floor", "TOTAL"}, models.TwoColumn, models.Minus, 1},
		{"qualified labels", []string{"Item", "In (pcs)", "Out to floor (kg)", "Total"}, models.ThreeColumn, models.NoSign, 2},
	}

	for _, tt := range tests {
		layout := ParseHeader(tt.header)
		if len(layout.Blocks) != 1 {
			t.Fatalf("%s: expected 1 block, got %d", tt.name, len(layout.Blocks))
		}
		b := layout.Blocks[0]
		if b.Schema.Shape != tt.shape || b.Schema.Sign != tt.sign || b.Start != tt.start {
			t.Errorf("%s: got %v sign %d start %d, expected %v sign %d start %d",
				tt.name, b.Schema.Shape, b.Schema.Sign, b.Start, tt.shape, tt.sign, tt.start)
		}
		if len(b.Labels) != b.Size() {
			t.Errorf("%s: expected %d labels, got %v", tt.name, b.Size(), b.Labels)
		}
	}
}

func TestParseHeaderMixedBlocks(t *testing.T) {
	header := []string{
		"", "Item", "SKU", "TOTAL NOW", "Stock", // 1..5
		"In", "Out", "Out to floor", "Total", // 6..9
		"IN", "Total", // 10..11
		"In", "out to floor", "Total", // 12..14
		"OUT", "Total", // 15..16
	}
	layout := ParseHeader(header)

	expected := []struct {
		start int
		shape models.Shape
		total int
	}{
		{6, models.FourColumn, 9},
		{10, models.TwoColumn, 11},
		{12, models.ThreeColumn, 14},
		{15, models.TwoColumn, 16},
	}
	if len(layout.Blocks) != len(expected) {
		t.Fatalf("expected %d blocks, got %d: %+v", len(expected), len(layout.Blocks), layout.Blocks)
	}
	for i, e := range expected {
		b := layout.Blocks[i]
		if b.Start != e.start || b.Schema.Shape != e.shape || b.TotalColumn() != e.total {
			t.Errorf("block %d: got start %d %v total %d, expected start %d %v total %d",
				i, b.Start, b.Schema.Shape, b.TotalColumn(), e.start, e.shape, e.total)
		}
	}

	// Blocks never overlap.
	for i := 1; i < len(layout.Blocks); i++ {
		if layout.Blocks[i].Start <= layout.Blocks[i-1].TotalColumn() {
			t.Errorf("block %d overlaps block %d", i, i-1)
		}
	}

	if got := layout.Current(); got != 16 {
		t.Errorf("Current() = %d, expected 16", got)
	}
	if got := layout.FirstColumn(6); got != 6 {
		t.Errorf("FirstColumn() = %d, expected 6", got)
	}
}

func TestParseHeaderLongestMatchWins(t *testing.T) {
	// "Out to floor" also starts with "out", so the 4-column pattern and the
	// 2-column pattern both look plausible near the end; only one block must
	// be produced.
	layout := ParseHeader([]string{"In", "Out", "Out to floor", "Total"})
	if len(layout.Blocks) != 1 || layout.Blocks[0].Schema.Shape != models.FourColumn {
		t.Fatalf("expected a single 4-column block, got %+v", layout.Blocks)
	}
}

func TestFirstColumnFallback(t *testing.T) {
	tests := []struct {
		header   []string
		expected int
	}{
		{nil, 6},
		{[]string{"Item", "Qty"}, 6},
		{[]string{"Item", "Qty", "Stock", "Total"}, 3},
		{[]string{"Total"}, 6},
		{[]string{"Item", "IN", "Total"}, 2},
	}

	for _, tt := range tests {
		if got := ParseHeader(tt.header).FirstColumn(6); got != tt.expected {
			t.Errorf("FirstColumn(%q) = %d, expected %d", tt.header, got, tt.expected)
		}
	}
}

func TestClassify(t *testing.T) {
	header := []string{"Stock", "In", "Out", "Out to floor", "Total", "in", "out to floor", "Total", "Out", "Total", "Note", "Total"}

	tests := []struct {
		col   int
		shape models.Shape
		sign  models.Sign
	}{
		{5, models.FourColumn, models.NoSign},
		{8, models.ThreeColumn, models.NoSign},
		{10, models.TwoColumn, models.Minus},
	}
	for _, tt := range tests {
		s, err := Classify(header, tt.col)
		if err != nil {
			t.Fatalf("Classify(%d) failed: %v", tt.col, err)
		}
		if s.Shape != tt.shape || s.Sign != tt.sign {
			t.Errorf("Classify(%d) = %+v, expected %v/%d", tt.col, s, tt.shape, tt.sign)
		}
	}

	if _, err := Classify(header, 12); !errors.Is(err, ErrUnclassified) {
		t.Errorf("Classify(12) error = %v, expected ErrUnclassified", err)
	}
	if _, err := Classify(header, 1); !errors.Is(err, ErrUnclassified) {
		t.Errorf("Classify(1) error = %v, expected ErrUnclassified", err)
	}
}

func TestClassifyAgreesWithParseHeader(t *testing.T) {
	header := []string{"x", "In", "Out", "Out to floor", "Total", "IN", "Total", "In", "Out to floor", "Total"}
	layout := ParseHeader(header)
	for _, b := range layout.Blocks {
		s, err := layout.Classify(b.TotalColumn())
		if err != nil {
			t.Fatalf("Classify(%d) failed: %v", b.TotalColumn(), err)
		}
		if s != b.Schema {
			t.Errorf("column %d: Classify = %+v, ParseHeader = %+v", b.TotalColumn(), s, b.Schema)
		}
	}
}

func TestIsInputLabel(t *testing.T) {
	tests := []struct {
		label    string
		expected bool
	}{
		{"IN", true},
		{" out ", true},
		{"Out to floor (kg)", true},
		{"Total", false},
		{"", false},
		{"TOTAL NOW", false},
	}
	for _, tt := range tests {
		if got := IsInputLabel(tt.label); got != tt.expected {
			t.Errorf("IsInputLabel(%q) = %v, expected %v", tt.label, got, tt.expected)
		}
	}
}
