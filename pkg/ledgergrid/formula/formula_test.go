package formula

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/models"
)

func TestRunningTotalR1C1(t *testing.T) {
	tests := []struct {
		schema   models.Schema
		expected string
	}{
		{
			models.Schema{Shape: models.TwoColumn, Sign: models.Plus},
			"IFERROR(VALUE(TRIM(R[0]C[-2])),0)+IFERROR(VALUE(TRIM(R[0]C[-1])),0)",
		},
		{
			models.Schema{Shape: models.TwoColumn, Sign: models.Minus},
			"IFERROR(VALUE(TRIM(R[0]C[-2])),0)-IFERROR(VALUE(TRIM(R[0]C[-1])),0)",
		},
		{
			models.Schema{Shape: models.ThreeColumn},
			"IFERROR(VALUE(TRIM(R[0]C[-3])),0)+IFERROR(VALUE(TRIM(R[0]C[-2])),0)-IFERROR(VALUE(TRIM(R[0]C[-1])),0)",
		},
		{
			models.Schema{Shape: models.FourColumn},
			"IFERROR(VALUE(TRIM(R[0]C[-4])),0)+IFERROR(VALUE(TRIM(R[0]C[-3])),0)-IFERROR(VALUE(TRIM(R[0]C[-2])),0)-IFERROR(VALUE(TRIM(R[0]C[-1])),0)",
		},
	}

	for _, tt := range tests {
		tpl, err := RunningTotal(tt.schema)
		if err != nil {
			t.Fatalf("RunningTotal(%+v) failed: %v", tt.schema, err)
		}
		if got := tpl.R1C1(); got != tt.expected {
			t.Errorf("R1C1(%+v) = %q, expected %q", tt.schema, got, tt.expected)
		}
	}
}

func TestRunningTotalA1(t *testing.T) {
	tpl, _ := RunningTotal(models.Schema{Shape: models.TwoColumn, Sign: models.Minus})
	got, err := tpl.A1(3, 11)
	if err != nil {
		t.Fatalf("A1 failed: %v", err)
	}
	expected := "IFERROR(VALUE(TRIM(I3)),0)-IFERROR(VALUE(TRIM(J3)),0)"
	if got != expected {
		t.Errorf("A1 = %q, expected %q", got, expected)
	}

	col, err := tpl.Column(11, 3, 2)
	if err != nil {
		t.Fatalf("Column failed: %v", err)
	}
	if len(col) != 2 || col[1] != "IFERROR(VALUE(TRIM(I4)),0)-IFERROR(VALUE(TRIM(J4)),0)" {
		t.Errorf("Column = %q", col)
	}
}

func TestRunningTotalRejectsUnknownShape(t *testing.T) {
	if _, err := RunningTotal(models.Schema{Shape: 5}); err == nil {
		t.Error("expected error for 5-column shape")
	}
	if _, err := RunningTotal(models.Schema{Shape: models.TwoColumn}); err == nil {
		t.Error("expected error for unsigned 2-column shape")
	}
}

func TestRunningTotalEval(t *testing.T) {
	tests := []struct {
		name     string
		schema   models.Schema
		values   []string // previous Total first, then the block inputs
		expected string
	}{
		{"in", models.Schema{Shape: models.TwoColumn, Sign: models.Plus}, []string{"100", "10"}, "110"},
		{"out", models.Schema{Shape: models.TwoColumn, Sign: models.Minus}, []string{"100", "10"}, "90"},
		{"blank input", models.Schema{Shape: models.TwoColumn, Sign: models.Minus}, []string{"100", ""}, "100"},
		{"text input", models.Schema{Shape: models.TwoColumn, Sign: models.Plus}, []string{" 100 ", "abc"}, "100"},
		{"three column", models.Schema{Shape: models.ThreeColumn}, []string{"100", "10", "2"}, "108"},
		{"four column", models.Schema{Shape: models.FourColumn}, []string{"100", "10", "5", "2"}, "103"},
		{"decimals", models.Schema{Shape: models.TwoColumn, Sign: models.Plus}, []string{"0.1", "0.2"}, "0.3"},
	}

	for _, tt := range tests {
		tpl, err := RunningTotal(tt.schema)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		// Lay the values out so the Total cell is the column after them.
		col := len(tt.values) + 1
		got := tpl.EvalRow(tt.values, col)
		if !got.Equal(decimal.RequireFromString(tt.expected)) {
			t.Errorf("%s: Eval = %s, expected %s", tt.name, got, tt.expected)
		}
	}
}

func TestN(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"12", "12"},
		{" 1.5 ", "1.5"},
		{"", "0"},
		{"abc", "0"},
		{"-3", "-3"},
	}
	for _, tt := range tests {
		if got := N(tt.input); !got.Equal(decimal.RequireFromString(tt.expected)) {
			t.Errorf("N(%q) = %s, expected %s", tt.input, got, tt.expected)
		}
	}
}
