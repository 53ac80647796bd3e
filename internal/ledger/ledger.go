// Package ledger computes per-currency running balances and statement
// summaries over a set of registry transactions.
//
// Aggregate is a pure function: it never mutates its input and holds no
// state between calls. Callers recompute on every fetch or filter change.
package ledger

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single registry row as seen by the aggregator.
type Transaction struct {
	Date        time.Time       `json:"transaction_date"`
	Currency    string          `json:"currency"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Reference   string          `json:"reference"`
	Description string          `json:"description"`
	Branch      string          `json:"branch"`
	Type        string          `json:"type"`
}

// Net returns credit minus debit.
func (t Transaction) Net() decimal.Decimal {
	return t.Credit.Sub(t.Debit)
}

// EnrichedTransaction is a Transaction with the running balance of the
// currency bucket it was attributed to.
type EnrichedTransaction struct {
	Transaction

	// Bucket is the tracked currency the row was attributed to. Empty when
	// the row carries no running balance.
	Bucket         string                     `json:"bucket,omitempty"`
	RunningBalance decimal.Decimal            `json:"running_balance"`
	Tracked        bool                       `json:"tracked"`
	Balances       map[string]decimal.Decimal `json:"balances"`
}

// CurrencySummary totals one currency over the aggregated period.
type CurrencySummary struct {
	Currency       string          `json:"currency"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	TotalDebit     decimal.Decimal `json:"total_debit"`
	TotalCredit    decimal.Decimal `json:"total_credit"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	Count          int             `json:"count"`
}

// Warning flags a row that was kept but could not be fully attributed.
type Warning struct {
	Index     int    `json:"index"`
	Reference string `json:"reference,omitempty"`
	Currency  string `json:"currency"`
	Reason    string `json:"reason"`
}

// Warning reasons.
const (
	ReasonUnknownCurrency = "unknown_currency"
	ReasonMissingCurrency = "missing_currency"
	ReasonFallback        = "fallback_currency"
)

// Result is the output of Aggregate. Enriched is in chronological order.
type Result struct {
	Currencies []string                   `json:"currencies"`
	Enriched   []EnrichedTransaction      `json:"enriched"`
	Summaries  map[string]CurrencySummary `json:"summaries"`
	Warnings   []Warning                  `json:"warnings"`
}

// SummaryList returns the summaries in tracked-currency order.
func (r *Result) SummaryList() []CurrencySummary {
	out := make([]CurrencySummary, 0, len(r.Currencies))
	for _, c := range r.Currencies {
		out = append(out, r.Summary(c))
	}
	return out
}

// ClosingBalances returns the closing balance of every tracked currency.
func (r *Result) ClosingBalances() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(r.Summaries))
	for c, s := range r.Summaries {
		out[c] = s.ClosingBalance
	}
	return out
}

// Summary returns the summary for currency, or a zero summary if the
// currency was not tracked.
func (r *Result) Summary(currency string) CurrencySummary {
	code := NormalizeCurrency(currency)
	if s, ok := r.Summaries[code]; ok {
		return s
	}
	return CurrencySummary{Currency: code}
}

// Aggregate filters, orders and accumulates txs according to opts.
func Aggregate(txs []Transaction, opts Options) (*Result, error) {
	opts = opts.normalized()

	type indexed struct {
		idx int
		tx  Transaction
	}

	rows := make([]indexed, 0, len(txs))
	for i, tx := range txs {
		if opts.Exclude != nil && opts.Exclude(tx) {
			continue
		}
		if tx.Date.IsZero() {
			return nil, &DataError{Index: i, Field: "transactionDate", Err: ErrInvalidDate}
		}
		rows = append(rows, indexed{idx: i, tx: tx})
	}

	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].tx.Date.Before(rows[b].tx.Date)
	})

	running := make(map[string]decimal.Decimal, len(opts.TrackedCurrencies))
	summaries := make(map[string]CurrencySummary, len(opts.TrackedCurrencies))
	for _, c := range opts.TrackedCurrencies {
		opening := opts.OpeningBalances[c]
		running[c] = opening
		summaries[c] = CurrencySummary{
			Currency:       c,
			OpeningBalance: opening,
			TotalDebit:     decimal.Zero,
			TotalCredit:    decimal.Zero,
			ClosingBalance: opening,
		}
	}

	result := &Result{
		Currencies: opts.TrackedCurrencies,
		Enriched:   make([]EnrichedTransaction, 0, len(rows)),
		Summaries:  summaries,
		Warnings:   []Warning{},
	}

	for _, row := range rows {
		bucket, warn := opts.resolve(row.tx.Currency)
		if warn != "" {
			result.Warnings = append(result.Warnings, Warning{
				Index:     row.idx,
				Reference: row.tx.Reference,
				Currency:  row.tx.Currency,
				Reason:    warn,
			})
		}

		enriched := EnrichedTransaction{
			Transaction:    row.tx,
			RunningBalance: decimal.Zero,
			Balances:       make(map[string]decimal.Decimal, len(opts.TrackedCurrencies)),
		}
		for _, c := range opts.TrackedCurrencies {
			enriched.Balances[c] = decimal.Zero
		}

		if bucket != "" {
			bal := running[bucket].Add(row.tx.Net())
			running[bucket] = bal

			s := summaries[bucket]
			s.TotalDebit = s.TotalDebit.Add(row.tx.Debit)
			s.TotalCredit = s.TotalCredit.Add(row.tx.Credit)
			s.ClosingBalance = bal
			s.Count++
			summaries[bucket] = s

			enriched.Bucket = bucket
			enriched.RunningBalance = bal
			enriched.Tracked = true
			enriched.Balances[bucket] = bal
		}

		result.Enriched = append(result.Enriched, enriched)
	}

	return result, nil
}

// AggregateFrom aggregates the rows dated on or after from. Earlier rows
// are folded into the opening balances, on top of any opts.OpeningBalances,
// and do not appear in the result. Warning indexes refer to txs. A nil from
// is the same as Aggregate.
func AggregateFrom(txs []Transaction, from *time.Time, opts Options) (*Result, error) {
	if from == nil {
		return Aggregate(txs, opts)
	}

	var prior, period []Transaction
	var periodIdx []int
	for i, tx := range txs {
		if opts.Exclude != nil && opts.Exclude(tx) {
			continue
		}
		if tx.Date.IsZero() {
			return nil, &DataError{Index: i, Field: "transactionDate", Err: ErrInvalidDate}
		}
		if tx.Date.Before(*from) {
			prior = append(prior, tx)
			continue
		}
		period = append(period, tx)
		periodIdx = append(periodIdx, i)
	}

	opening, err := Aggregate(prior, opts)
	if err != nil {
		return nil, err
	}
	periodOpts := opts
	periodOpts.OpeningBalances = opening.ClosingBalances()

	result, err := Aggregate(period, periodOpts)
	if err != nil {
		return nil, err
	}
	for i := range result.Warnings {
		result.Warnings[i].Index = periodIdx[result.Warnings[i].Index]
	}
	return result, nil
}

// Reverse returns rows in the opposite order. Values are not recomputed.
func Reverse(rows []EnrichedTransaction) []EnrichedTransaction {
	out := make([]EnrichedTransaction, len(rows))
	for i, r := range rows {
		out[len(rows)-1-i] = r
	}
	return out
}

// NormalizeCurrency upper-cases and trims a currency code.
func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
