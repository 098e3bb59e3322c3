package arbiter

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Coerce parses user input as a number. Whitespace anywhere is dropped and
// a comma is read as the decimal separator. empty is true for blank input.
// Values outside the float64 range are rejected.
func Coerce(s string) (n decimal.Decimal, empty bool, err error) {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return decimal.Zero, true, nil
	}
	s = strings.Replace(s, ",", ".", 1)
	n, err = decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("not a number: %q", s)
	}
	if f, _ := n.Float64(); math.IsInf(f, 0) {
		return decimal.Zero, false, fmt.Errorf("not a finite number: %q", s)
	}
	return n, false, nil
}
