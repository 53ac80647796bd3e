package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// UnknownCurrencyPolicy decides what happens to a row whose currency is not tracked.
type UnknownCurrencyPolicy string

const (
	// UnknownIgnore keeps the row in the output without a running balance
	// and leaves it out of every summary.
	UnknownIgnore UnknownCurrencyPolicy = "ignore"
	// UnknownFallback attributes the row to the fallback currency.
	UnknownFallback UnknownCurrencyPolicy = "fallback"
)

// ParseUnknownCurrencyPolicy parses "ignore" or "fallback". Empty means ignore.
func ParseUnknownCurrencyPolicy(s string) (UnknownCurrencyPolicy, error) {
	switch UnknownCurrencyPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", UnknownIgnore:
		return UnknownIgnore, nil
	case UnknownFallback:
		return UnknownFallback, nil
	}
	return "", fmt.Errorf("unknown currency policy %q", s)
}

// Options configures Aggregate.
type Options struct {
	// TrackedCurrencies are the buckets that receive running balances and
	// summaries. Order is kept for display.
	TrackedCurrencies []string

	// Exclude drops a transaction before any computation. Nil keeps everything.
	Exclude func(Transaction) bool

	// FallbackCurrency receives rows with no currency. It is added to the
	// tracked set when missing from it.
	FallbackCurrency string

	// UnknownCurrency applies to rows whose currency is present but not tracked.
	UnknownCurrency UnknownCurrencyPolicy

	// OpeningBalances seeds the running balance per currency. Missing
	// currencies start at zero.
	OpeningBalances map[string]decimal.Decimal
}

// ExcludeTypes returns a predicate matching any of types, case-insensitively.
func ExcludeTypes(types ...string) func(Transaction) bool {
	set := make(map[string]struct{}, len(types))
	for _, t := range types {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t != "" {
			set[t] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}
	return func(tx Transaction) bool {
		_, ok := set[strings.ToUpper(strings.TrimSpace(tx.Type))]
		return ok
	}
}

// Currencies returns the tracked set Aggregate will use: normalized,
// de-duplicated and including the fallback currency.
func (o Options) Currencies() []string {
	return o.normalized().TrackedCurrencies
}

// normalized returns a copy of o with upper-cased, de-duplicated currencies.
func (o Options) normalized() Options {
	out := o
	out.FallbackCurrency = NormalizeCurrency(o.FallbackCurrency)
	if out.UnknownCurrency == "" {
		out.UnknownCurrency = UnknownIgnore
	}

	seen := make(map[string]bool, len(o.TrackedCurrencies)+1)
	out.TrackedCurrencies = make([]string, 0, len(o.TrackedCurrencies)+1)
	for _, c := range o.TrackedCurrencies {
		c = NormalizeCurrency(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out.TrackedCurrencies = append(out.TrackedCurrencies, c)
	}
	if out.FallbackCurrency != "" && !seen[out.FallbackCurrency] {
		out.TrackedCurrencies = append(out.TrackedCurrencies, out.FallbackCurrency)
	}

	out.OpeningBalances = make(map[string]decimal.Decimal, len(o.OpeningBalances))
	for c, v := range o.OpeningBalances {
		out.OpeningBalances[NormalizeCurrency(c)] = v
	}
	return out
}

// resolve maps a raw currency to a tracked bucket. An empty bucket means the
// row gets no running balance. A non-empty reason is reported as a warning.
func (o Options) resolve(raw string) (bucket, reason string) {
	code := NormalizeCurrency(raw)
	if code == "" {
		if o.FallbackCurrency != "" {
			return o.FallbackCurrency, ""
		}
		return "", ReasonMissingCurrency
	}
	for _, c := range o.TrackedCurrencies {
		if c == code {
			return c, ""
		}
	}
	if o.UnknownCurrency == UnknownFallback && o.FallbackCurrency != "" {
		return o.FallbackCurrency, ReasonFallback
	}
	return "", ReasonUnknownCurrency
}
