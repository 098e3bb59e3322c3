package archive

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// CoerceDate reads a date cell: an Excel serial number, dd/mm/yyyy or
// yyyy/mm/dd, with '/', '.' or '-' as separator. Any time of day is
// dropped.
func CoerceDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return day(t), true
	}
	s = strings.Fields(s)[0]
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '/' || r == '.' || r == '-' })
	if len(parts) != 3 {
		return time.Time{}, false
	}
	var y, m, d string
	switch {
	case len(parts[2]) == 4:
		d, m, y = parts[0], parts[1], parts[2]
	case len(parts[0]) == 4:
		y, m, d = parts[0], parts[1], parts[2]
	default:
		return time.Time{}, false
	}
	return date(y, m, d)
}

func date(y, m, d string) (time.Time, bool) {
	yi, err1 := strconv.Atoi(y)
	mi, err2 := strconv.Atoi(m)
	di, err3 := strconv.Atoi(d)
	if err1 != nil || err2 != nil || err3 != nil || mi < 1 || mi > 12 || di < 1 || di > 31 {
		return time.Time{}, false
	}
	t := time.Date(yi, time.Month(mi), di, 0, 0, 0, 0, time.UTC)
	if t.Day() != di {
		return time.Time{}, false
	}
	return t, true
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
