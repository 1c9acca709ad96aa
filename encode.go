package folio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// rawTransaction mirrors the JSONL wire shape of a transaction. Price and
// currency are separate fields on the wire; the currency may be a symbol or
// a local-language name and is normalized on decode.
type rawTransaction struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Date       Date            `json:"date"`
	Portfolio  string          `json:"portfolio"`
	Ticker     string          `json:"ticker"`
	Exchange   string          `json:"exchange"`
	Quantity   Quantity        `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Currency   string          `json:"currency"`
	Commission decimal.Decimal `json:"commission"`
	VestDate   Date            `json:"vestDate"`
}

// DecodeTransactions reads a stream of JSONL transaction records, validates
// each row, and returns them sorted by recorded date (stable, so same-day
// rows keep their original order).
func DecodeTransactions(r io.Reader) ([]Transaction, error) {
	var txs []Transaction
	scanner := bufio.NewScanner(r)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec rawTransaction
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("line %d: could not decode transaction: %w", line, err)
		}
		currency, err := NormalizeCurrency(rec.Currency)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		typ, err := ParseTxType(rec.Type)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		tx := Transaction{
			ID:          rec.ID,
			Date:        rec.Date,
			PortfolioID: rec.Portfolio,
			Ticker:      rec.Ticker,
			Exchange:    rec.Exchange,
			Type:        typ,
			Quantity:    rec.Quantity,
			Price:       M(rec.Price, currency),
			VestDate:    rec.VestDate,
		}
		if !rec.Commission.IsZero() {
			tx.Commission = M(rec.Commission, currency)
		}
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		txs = append(txs, tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read transactions: %w", err)
	}

	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Date.Before(txs[j].Date) })
	return txs, nil
}

// EncodeTransaction appends a single transaction as one JSONL line.
func EncodeTransaction(w io.Writer, tx Transaction) error {
	b, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("could not encode transaction: %w", err)
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("could not write transaction: %w", err)
	}
	return nil
}
