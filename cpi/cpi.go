// Package cpi supplies consumer-price-index data for the real-gain tax
// policy. An index is loaded from a statistics-bureau CSV export of monthly
// (or quarterly) values and answers ratio lookups between two dates.
package cpi

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/amitgr/folio/date"
)

// Index is a point-in-time CPI series. It satisfies the tax engine's index
// interface: lookups use the latest published value at or before each date,
// with no extrapolation before the first publication.
type Index struct {
	series date.History[float64]
}

// Ratio returns CPI(now)/CPI(at), or false when either date precedes the
// first published value.
func (x *Index) Ratio(at, now date.Date) (decimal.Decimal, bool) {
	vAt, ok := x.series.ValueAsOf(at)
	if !ok || vAt == 0 {
		return decimal.Decimal{}, false
	}
	vNow, ok := x.series.ValueAsOf(now)
	if !ok {
		return decimal.Decimal{}, false
	}
	return decimal.NewFromFloat(vNow).Div(decimal.NewFromFloat(vAt)), true
}

// Len returns the number of published values.
func (x *Index) Len() int { return x.series.Len() }

// Append records one published value. Periods may arrive in any order; a
// repeated period overwrites the earlier value (a revision).
func (x *Index) Append(on date.Date, value float64) {
	x.series.Append(on, value)
}

// Parse reads a bureau CSV export: semicolon-separated rows of period and
// value, one row per publication, newest or oldest first. Rows with an empty
// value column are unpublished periods and are skipped.
func Parse(r io.Reader) (*Index, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("could not read cpi csv: %w", err)
	}

	index := &Index{}
	for _, record := range records {
		if len(record) < 2 || record[1] == "" {
			continue
		}
		on, err := parsePeriod(record[0])
		if err != nil {
			// Header rows have non-period first columns.
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid cpi value %q for period %q: %w", record[1], record[0], err)
		}
		index.Append(on, value)
	}
	if index.Len() == 0 {
		return nil, fmt.Errorf("cpi csv contains no values")
	}
	return index, nil
}

// parsePeriod reads a period label, either monthly "YYYY-MM" or quarterly
// "YYYY-TQ", into the last day of that period. A value published for a
// period holds from its end until the next publication.
func parsePeriod(s string) (date.Date, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "-T") {
		return parseQuarter(s)
	}

	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return date.Date{}, fmt.Errorf("unrecognized cpi period: %q", s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return date.Date{}, fmt.Errorf("invalid year in period %q: %w", s, err)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return date.Date{}, fmt.Errorf("invalid month in period %q", s)
	}
	// Day 0 of the next month is the last day of this one.
	return date.New(year, time.Month(month)+1, 0), nil
}

func parseQuarter(s string) (date.Date, error) {
	parts := strings.Split(s, "-T")
	if len(parts) != 2 {
		return date.Date{}, fmt.Errorf("invalid quarterly period: %q", s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return date.Date{}, fmt.Errorf("invalid year in period %q: %w", s, err)
	}
	quarter, err := strconv.Atoi(parts[1])
	if err != nil || quarter < 1 || quarter > 4 {
		return date.Date{}, fmt.Errorf("invalid quarter in period %q", s)
	}
	return date.New(year, time.Month(quarter*3)+1, 0), nil
}
