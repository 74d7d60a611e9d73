package model

import (
	"strconv"
	"time"
)

// dateLayout is the calendar-date form a search query may take.
const dateLayout = "2006-01-02"

// IsDateQuery reports whether a search query should be interpreted as a
// one-day time-range filter rather than free-text keywords.
//
// The check is deliberately strict: exactly yyyy-MM-dd with a 4-digit
// year in [2020,2030], month in [1,12], and a day that exists on the
// calendar for that month. Anything else falls through to keyword
// search, including queries that merely look date-ish ("2024-2-5",
// "20240205", "2024-02-30").
func IsDateQuery(query string) bool {
	if len(query) != 10 || query[4] != '-' || query[7] != '-' {
		return false
	}
	year, err := strconv.Atoi(query[0:4])
	if err != nil {
		return false
	}
	month, err := strconv.Atoi(query[5:7])
	if err != nil {
		return false
	}
	day, err := strconv.Atoi(query[8:10])
	if err != nil {
		return false
	}
	if year < 2020 || year > 2030 {
		return false
	}
	if month < 1 || month > 12 {
		return false
	}
	if day < 1 || day > 31 {
		return false
	}
	// Calendar validity: time.Parse rejects days that overflow the month.
	_, err = time.Parse(dateLayout, query)
	return err == nil
}

// NextDay returns the calendar day after date, in the same yyyy-MM-dd
// form. A date that fails to parse is returned unchanged.
func NextDay(date string) string {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, 1).Format(dateLayout)
}
