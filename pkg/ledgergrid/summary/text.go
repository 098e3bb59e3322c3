package summary

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var quotes = strings.NewReplacer("’", `"`, "‘", `"`, "'", `"`)

// collapse trims s and folds runs of whitespace into one space.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// headerText normalizes a header cell for matching against the configured
// header names.
func headerText(s string) string {
	return strings.ToLower(quotes.Replace(collapse(s)))
}

// itemKey is the identity items are merged on: compatibility-normalized,
// whitespace-collapsed and lower-cased.
func itemKey(s string) string {
	return cases.Lower(language.Und).String(collapse(norm.NFKC.String(s)))
}

// titleCase renders a label with each word (and hyphenated part)
// capitalized.
func titleCase(s string) string {
	return cases.Title(language.Und).String(collapse(s))
}

// quantity parses a total cell. Whitespace is ignored, commas are decimal
// separators and anything unparseable counts as zero.
func quantity(s string) decimal.Decimal {
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return decimal.Zero
	}
	return d
}
