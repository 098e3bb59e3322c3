package grid

import (
	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/models"
	"github.com/xuri/excelize/v2"
)

// ApplyFormat patches the style of every cell in r with the non-empty
// fields of fm. Cells sharing a style share the patched style.
func (s *XSheet) ApplyFormat(r models.Range, fm models.Format) error {
	patched := make(map[int]int)
	for row := r.R1; row <= r.R2; row++ {
		for col := r.C1; col <= r.C2; col++ {
			cell, err := CellName(row, col)
			if err != nil {
				return err
			}
			id, err := s.f.GetCellStyle(s.name, cell)
			if err != nil {
				return err
			}
			next, ok := patched[id]
			if !ok {
				style, err := s.f.GetStyle(id)
				if err != nil {
					return err
				}
				patchStyle(style, fm)
				if next, err = s.f.NewStyle(style); err != nil {
					return err
				}
				patched[id] = next
			}
			if next == id {
				continue
			}
			if err := s.f.SetCellStyle(s.name, cell, cell, next); err != nil {
				return err
			}
		}
	}
	return nil
}

func patchStyle(style *excelize.Style, fm models.Format) {
	if fm.NumberFormat != "" {
		numFmt := fm.NumberFormat
		style.NumFmt = 0
		style.DecimalPlaces = nil
		style.CustomNumFmt = &numFmt
	}
	if fm.Horizontal != "" || fm.Vertical != "" || fm.Wrap != nil {
		if style.Alignment == nil {
			style.Alignment = &excelize.Alignment{}
		}
		if fm.Horizontal != "" {
			style.Alignment.Horizontal = fm.Horizontal
		}
		if fm.Vertical != "" {
			style.Alignment.Vertical = fm.Vertical
		}
		if fm.Wrap != nil {
			style.Alignment.WrapText = *fm.Wrap
		}
	}
	if fm.Bold != nil || fm.FontColor != "" {
		if style.Font == nil {
			style.Font = &excelize.Font{}
		}
		if fm.Bold != nil {
			style.Font.Bold = *fm.Bold
		}
		if fm.FontColor != "" {
			style.Font.Color = fm.FontColor
		}
	}
	if fm.Background != "" {
		style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{fm.Background}}
	}
}

// CellFormat reports the number format and alignment of a cell, for
// inspection and tests.
func (s *XSheet) CellFormat(row, col int) (models.Format, error) {
	cell, err := CellName(row, col)
	if err != nil {
		return models.Format{}, err
	}
	id, err := s.f.GetCellStyle(s.name, cell)
	if err != nil {
		return models.Format{}, err
	}
	style, err := s.f.GetStyle(id)
	if err != nil {
		return models.Format{}, err
	}
	var fm models.Format
	if style.CustomNumFmt != nil {
		fm.NumberFormat = *style.CustomNumFmt
	}
	if a := style.Alignment; a != nil {
		wrap := a.WrapText
		fm.Horizontal, fm.Vertical, fm.Wrap = a.Horizontal, a.Vertical, &wrap
	}
	if f := style.Font; f != nil {
		bold := f.Bold
		fm.Bold, fm.FontColor = &bold, f.Color
	}
	if len(style.Fill.Color) > 0 {
		fm.Background = style.Fill.Color[0]
	}
	return fm, nil
}
