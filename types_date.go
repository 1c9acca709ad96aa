package folio

import (
	"time"

	"github.com/amitgr/folio/date"
)

// Date is re-exported from the date package so that callers of the engine
// rarely need a second import.
type Date = date.Date

// NewDate returns a normalized Date for the given year, month, and day.
func NewDate(year int, month time.Month, day int) Date { return date.New(year, month, day) }

// Today returns the current date.
func Today() Date { return date.Today() }

// ParseDate parses a Date from a lenient ISO-8601 string.
func ParseDate(str string) (Date, error) { return date.Parse(str) }
