package parser

import (
	"errors"
	"fmt"

	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/models"
)

// ErrUnclassified indicates a Total column whose left neighbours match none
// of the known block shapes.
var ErrUnclassified = errors.New("unclassified total column")

// shapesByPrecedence lists shapes longest first; a four-column block must
// never be read as a shorter one.
var shapesByPrecedence = []models.Shape{models.FourColumn, models.ThreeColumn, models.TwoColumn}

// matchShape reports whether the normalized header h holds a block of the
// given shape starting at 0-based index i.
func matchShape(h []string, i int, shape models.Shape) (models.Schema, bool) {
	n := int(shape)
	if i < 0 || i+n > len(h) || !isTotal(h[i+n-1]) {
		return models.Schema{}, false
	}
	switch shape {
	case models.FourColumn:
		if isIn(h[i]) && isOut(h[i+1]) && isOutToFloor(h[i+2]) {
			return models.Schema{Shape: shape}, true
		}
	case models.ThreeColumn:
		if isIn(h[i]) && isOutToFloor(h[i+1]) {
			return models.Schema{Shape: shape}, true
		}
	case models.TwoColumn:
		switch {
		case isIn(h[i]):
			return models.Schema{Shape: shape, Sign: models.Plus}, true
		case isOut(h[i]):
			return models.Schema{Shape: shape, Sign: models.Minus}, true
		}
	}
	return models.Schema{}, false
}

// matchAt tries every shape at index i, longest first.
func matchAt(h []string, i int) (models.Schema, bool) {
	for _, shape := range shapesByPrecedence {
		if s, ok := matchShape(h, i, shape); ok {
			return s, true
		}
	}
	return models.Schema{}, false
}

// Classify determines the schema of the block ending at the 1-based Total
// column totalCol by looking at the headers to its left.
func Classify(row []string, totalCol int) (models.Schema, error) {
	return classifyNormalized(NormalizeAll(row), totalCol)
}

func classifyNormalized(h []string, totalCol int) (models.Schema, error) {
	end := totalCol - 1
	for _, shape := range shapesByPrecedence {
		if s, ok := matchShape(h, end-int(shape)+1, shape); ok {
			return s, nil
		}
	}
	return models.Schema{}, fmt.Errorf("%w: column %d", ErrUnclassified, totalCol)
}
