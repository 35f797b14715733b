package analytics

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Month-first layouts come before day-first ones, so 03/04/2024 is 4 March
// and day-first only applies when the month would exceed 12.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"01-02-2006",
	"02/01/2006",
	"02-01-2006",
	"2 Jan 2006",
	"Jan 2, 2006",
}

// parseWeekDate reads a Week_Date cell. Unparseable values yield nil rather
// than an error.
func parseWeekDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	// xlsx date cells arrive as serial day numbers
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if serial <= 0 {
			return nil
		}
		ts, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return nil
		}
		return &ts
	}

	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return &ts
		}
	}
	return nil
}
