package ledger

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FieldMapping names the record keys holding each Transaction field. Fields
// with several candidates use the first key present with a non-empty value.
type FieldMapping struct {
	Date        []string `json:"date"`
	Currency    []string `json:"currency"`
	Debit       []string `json:"debit"`
	Credit      []string `json:"credit"`
	Reference   []string `json:"reference"`
	Description []string `json:"description"`
	Branch      []string `json:"branch"`
	Type        []string `json:"type"`
}

// DefaultMapping matches the registry payloads served by the dashboard backend.
func DefaultMapping() FieldMapping {
	return FieldMapping{
		Date:        []string{"transactionDate", "date"},
		Currency:    []string{"assetType", "currency"},
		Debit:       []string{"debit"},
		Credit:      []string{"credit"},
		Reference:   []string{"reference"},
		Description: []string{"description"},
		Branch:      []string{"branch"},
		Type:        []string{"type"},
	}
}

// Merge returns m with empty fields filled from def.
func (m FieldMapping) Merge(def FieldMapping) FieldMapping {
	pick := func(a, b []string) []string {
		if len(a) > 0 {
			return a
		}
		return b
	}
	return FieldMapping{
		Date:        pick(m.Date, def.Date),
		Currency:    pick(m.Currency, def.Currency),
		Debit:       pick(m.Debit, def.Debit),
		Credit:      pick(m.Credit, def.Credit),
		Reference:   pick(m.Reference, def.Reference),
		Description: pick(m.Description, def.Description),
		Branch:      pick(m.Branch, def.Branch),
		Type:        pick(m.Type, def.Type),
	}
}

// DecodeJSON reads a JSON array of records and maps them to transactions.
func DecodeJSON(r io.Reader, mapping FieldMapping) ([]Transaction, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var records []map[string]any
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding records: %w", err)
	}
	return FromRecords(records, mapping)
}

// FromRecords maps loosely typed records to transactions.
func FromRecords(records []map[string]any, mapping FieldMapping) ([]Transaction, error) {
	mapping = mapping.Merge(DefaultMapping())

	out := make([]Transaction, 0, len(records))
	for i, rec := range records {
		tx, err := fromRecord(i, rec, mapping)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

func fromRecord(i int, rec map[string]any, m FieldMapping) (Transaction, error) {
	var tx Transaction

	rawDate, dateKey := lookup(rec, m.Date)
	if dateKey == "" {
		dateKey = m.Date[0]
	}
	date, err := parseDate(rawDate)
	if err != nil {
		return tx, &DataError{Index: i, Field: dateKey, Value: stringify(rawDate), Err: ErrInvalidDate}
	}
	tx.Date = date

	debit, err := amountField(i, rec, m.Debit)
	if err != nil {
		return tx, err
	}
	credit, err := amountField(i, rec, m.Credit)
	if err != nil {
		return tx, err
	}
	tx.Debit = debit
	tx.Credit = credit

	tx.Currency = NormalizeCurrency(stringField(rec, m.Currency))
	tx.Reference = stringField(rec, m.Reference)
	tx.Description = stringField(rec, m.Description)
	tx.Branch = stringField(rec, m.Branch)
	tx.Type = stringField(rec, m.Type)
	return tx, nil
}

// lookup returns the first non-empty value among keys and the key it came from.
func lookup(rec map[string]any, keys []string) (any, string) {
	for _, k := range keys {
		v, ok := rec[k]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		return v, k
	}
	return nil, ""
}

func stringField(rec map[string]any, keys []string) string {
	v, _ := lookup(rec, keys)
	return strings.TrimSpace(stringify(v))
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func amountField(i int, rec map[string]any, keys []string) (decimal.Decimal, error) {
	v, key := lookup(rec, keys)
	if key == "" {
		return decimal.Zero, nil
	}
	d, err := parseAmount(v)
	if err != nil {
		return decimal.Zero, &DataError{Index: i, Field: key, Value: stringify(v), Err: ErrInvalidAmount}
	}
	return d, nil
}

func parseAmount(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case json.Number:
		return decimal.NewFromString(x.String())
	case string:
		return decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(x), ",", ""))
	case float64:
		return decimal.NewFromFloat(x), nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case decimal.Decimal:
		return x, nil
	}
	return decimal.Zero, fmt.Errorf("unsupported amount type %T", v)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseDate accepts RFC3339, YYYY-MM-DD variants and Unix milliseconds.
func parseDate(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return time.Time{}, ErrInvalidDate
		}
		return x, nil
	case json.Number:
		ms, err := x.Int64()
		if err != nil {
			return time.Time{}, ErrInvalidDate
		}
		return time.UnixMilli(ms).UTC(), nil
	case float64:
		return time.UnixMilli(int64(x)).UTC(), nil
	case int64:
		return time.UnixMilli(x).UTC(), nil
	case int:
		return time.UnixMilli(int64(x)).UTC(), nil
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// ParseDate is the date parser used for registry records and query strings.
func ParseDate(s string) (time.Time, error) {
	return parseDate(s)
}
