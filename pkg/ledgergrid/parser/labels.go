// Package parser infers the ledger block layout from header labels.
package parser

import "strings"

// Header label prefixes. Matching is by prefix so historical labels with
// qualifiers ("Out to floor (kg)") still classify.
const (
	prefixIn         = "in"
	prefixOut        = "out"
	prefixOutToFloor = "out to floor"
	totalLabel       = "total"
)

// Normalize lower-cases and trims a header label.
func Normalize(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// NormalizeAll normalizes every label of a header row.
func NormalizeAll(row []string) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = Normalize(v)
	}
	return out
}

func isIn(h string) bool         { return strings.HasPrefix(h, prefixIn) }
func isOut(h string) bool        { return strings.HasPrefix(h, prefixOut) }
func isOutToFloor(h string) bool { return strings.HasPrefix(h, prefixOutToFloor) }
func isTotal(h string) bool      { return h == totalLabel }

// IsTotalLabel reports whether a raw header reads Total.
func IsTotalLabel(label string) bool { return isTotal(Normalize(label)) }

// IsInputLabel reports whether a raw header marks a user input column
// (in, out or out to floor).
func IsInputLabel(label string) bool {
	h := Normalize(label)
	return isIn(h) || isOut(h)
}
