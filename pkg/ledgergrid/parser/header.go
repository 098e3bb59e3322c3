package parser

import "github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/models"

// Layout is the block structure found in a header row.
type Layout struct {
	// Blocks are the recognised blocks, left to right, non-overlapping.
	Blocks []models.Block
	// Totals are the 1-based columns whose header reads Total.
	Totals []int

	header []string
}

// ParseHeader scans a row-2 header left to right and returns its blocks.
// At each position the longest matching shape wins and its columns are
// consumed, so a column never belongs to two blocks.
func ParseHeader(row []string) Layout {
	h := NormalizeAll(row)
	layout := Layout{header: h}
	for i := 0; i < len(h); {
		s, ok := matchAt(h, i)
		if !ok {
			i++
			continue
		}
		size := int(s.Shape)
		labels := make([]string, size)
		copy(labels, row[i:i+size])
		layout.Blocks = append(layout.Blocks, models.Block{Start: i + 1, Schema: s, Labels: labels})
		i += size
	}
	for i, v := range h {
		if isTotal(v) {
			layout.Totals = append(layout.Totals, i+1)
		}
	}
	return layout
}

// FirstColumn returns the column where the current-balance lookup starts:
// the first block's start, otherwise the column left of the first Total,
// otherwise fallback.
func (l Layout) FirstColumn(fallback int) int {
	if len(l.Blocks) > 0 {
		return l.Blocks[0].Start
	}
	if len(l.Totals) > 0 && l.Totals[0] > 1 {
		return l.Totals[0] - 1
	}
	return fallback
}

// Current returns the right-most Total column, or 0 when there is none.
func (l Layout) Current() int {
	if len(l.Totals) == 0 {
		return 0
	}
	return l.Totals[len(l.Totals)-1]
}

// Classify classifies the Total column col with the shared classifier.
func (l Layout) Classify(col int) (models.Schema, error) {
	return classifyNormalized(l.header, col)
}

// TotalColumns returns the 1-based columns whose header reads Total.
func TotalColumns(row []string) []int {
	var cols []int
	for i, v := range row {
		if IsTotalLabel(v) {
			cols = append(cols, i+1)
		}
	}
	return cols
}
