package parser

import (
	"agent-performance/models"
	"strings"
	"time"
)

const (
	dayFirstLayout  = "2-1-2006"
	yearFirstLayout = "2006-1-2"
)

// nonBreakingHyphen shows up between date parts in some call-log exports.
const nonBreakingHyphen = "\u2011"

// ParseDate parses a call_date cell. Day-first values (call logs) are day-month-year
// and may use U+2011 as the separator; all other tables are year-month-day.
// Anything else yields a missing date.
func ParseDate(value string, dayFirst bool) models.NullDate {
	layout := yearFirstLayout
	if dayFirst {
		layout = dayFirstLayout
		value = strings.ReplaceAll(value, nonBreakingHyphen, "-")
	}

	t, err := time.Parse(layout, value)
	if err != nil {
		return models.NullDate{}
	}
	return models.NewDate(t.Year(), t.Month(), t.Day())
}
