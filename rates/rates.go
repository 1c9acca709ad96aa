// Package rates extracts exchange-rate snapshots from provider JSON
// payloads. Providers disagree on payload shape, so the extraction paths are
// configurable jsonpath expressions rather than a hardcoded struct.
package rates

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"

	"github.com/amitgr/folio"
)

// Config locates the rate tables inside a provider payload. Each path must
// resolve to a JSON object mapping currency codes to units-per-USD rates.
type Config struct {
	// CurrentPath points at the current rate table.
	CurrentPath string
	// Ago1mPath points at the month-old rate table. Empty means the
	// provider has none; the snapshot then carries no month-old rates.
	Ago1mPath string
}

// DefaultConfig matches the common open-exchange payload shape.
func DefaultConfig() Config {
	return Config{
		CurrentPath: "$.rates",
		Ago1mPath:   "$.month_ago.rates",
	}
}

// Parse reads one provider payload and builds a rate snapshot from it.
// Currencies the engine does not account in are skipped; providers list far
// more than the supported set.
func Parse(r io.Reader, cfg Config) (*folio.RateSnapshot, error) {
	var jobj any
	if err := json.NewDecoder(r).Decode(&jobj); err != nil {
		return nil, fmt.Errorf("could not decode rates payload: %w", err)
	}

	current, err := extractTable(jobj, cfg.CurrentPath)
	if err != nil {
		return nil, err
	}
	snapshot := &folio.RateSnapshot{Current: current}

	if cfg.Ago1mPath != "" {
		// The month-old table is an enrichment. A provider without one
		// still yields a usable snapshot.
		if ago, err := extractTable(jobj, cfg.Ago1mPath); err == nil {
			snapshot.Ago1m = ago
		}
	}
	return snapshot, nil
}

// extractTable resolves one jsonpath expression to a currency table.
func extractTable(jobj any, path string) (map[folio.Currency]decimal.Decimal, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("could not resolve rates path %q: %w", path, err)
	}
	// jsonpath is never clear about whether it returns a list of one answer
	// or a single answer; keep the first one if any.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	table, ok := jval.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("rates path %q does not resolve to an object", path)
	}

	rates := make(map[folio.Currency]decimal.Decimal, len(table))
	for code, raw := range table {
		currency, err := folio.NormalizeCurrency(code)
		if err != nil {
			continue
		}
		rate, err := coerceRate(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid rate for %s: %w", code, err)
		}
		if rate.IsZero() || rate.IsNegative() {
			return nil, fmt.Errorf("invalid rate for %s: %s", code, rate)
		}
		rates[currency] = rate
	}
	return rates, nil
}

// coerceRate reads a rate that providers serve either as a number or as a
// localized string.
func coerceRate(raw any) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		s := strings.ReplaceAll(v, ",", ".")
		s = strings.ReplaceAll(s, " ", "")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("not a number: %q", v)
		}
		return decimal.NewFromFloat(f), nil
	default:
		return decimal.Decimal{}, fmt.Errorf("neither a number nor a string: %v", raw)
	}
}
