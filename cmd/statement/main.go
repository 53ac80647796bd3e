// Command statement prints a running-balance statement from a registry
// export file or from the registry API.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"bullion/internal/client"
	"bullion/internal/ledger"
	"bullion/internal/logger"
)

type options struct {
	file       string
	url        string
	account    string
	currencies string
	exclude    string
	fallback   string
	unknown    string
	from       string
	to         string
	desc       bool
	timeout    time.Duration
}

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	var opts options
	flag.StringVar(&opts.file, "file", "", "registry export JSON file (- for stdin)")
	flag.StringVar(&opts.url, "url", "", "registry API base URL, e.g. http://localhost:8080")
	flag.StringVar(&opts.account, "account", "", "account ID to fetch from the API")
	flag.StringVar(&opts.currencies, "currencies", "AED,INR,XAU", "comma-separated tracked currencies")
	flag.StringVar(&opts.exclude, "exclude", "CURRENCY_EXCHANGE,VAT,GOLD_ADJUSTMENT", "comma-separated transaction types to drop")
	flag.StringVar(&opts.fallback, "fallback", "AED", "currency for rows without one")
	flag.StringVar(&opts.unknown, "unknown", "ignore", "untracked currency policy: ignore or fallback")
	flag.StringVar(&opts.from, "from", "", "start date (RFC3339 or YYYY-MM-DD); earlier rows become opening balances")
	flag.StringVar(&opts.to, "to", "", "end date (RFC3339 or YYYY-MM-DD), inclusive")
	flag.BoolVar(&opts.desc, "desc", false, "print most recent rows first")
	flag.DurationVar(&opts.timeout, "timeout", 30*time.Second, "API request timeout")
	flag.Parse()

	if err := run(opts, os.Stdout); err != nil {
		logger.Get().Errorw("statement failed", "error", err)
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(opts options, out io.Writer) error {
	policy, err := ledger.ParseUnknownCurrencyPolicy(opts.unknown)
	if err != nil {
		return err
	}

	from, err := optionalDate(opts.from, false)
	if err != nil {
		return fmt.Errorf("invalid -from: %w", err)
	}
	to, err := optionalDate(opts.to, true)
	if err != nil {
		return fmt.Errorf("invalid -to: %w", err)
	}

	txs, err := load(opts, to)
	if err != nil {
		return err
	}
	if to != nil {
		txs = until(txs, *to)
	}

	result, err := ledger.AggregateFrom(txs, from, ledger.Options{
		TrackedCurrencies: splitList(opts.currencies),
		Exclude:           ledger.ExcludeTypes(splitList(opts.exclude)...),
		FallbackCurrency:  opts.fallback,
		UnknownCurrency:   policy,
	})
	if err != nil {
		return err
	}

	rows := result.Enriched
	if opts.desc {
		rows = ledger.Reverse(rows)
	}
	return render(out, result, rows)
}

// load reads the registry up to to. Rows before -from are kept so they can
// seed the opening balances.
func load(opts options, to *time.Time) ([]ledger.Transaction, error) {
	switch {
	case opts.file != "" && opts.url != "":
		return nil, fmt.Errorf("use either -file or -url, not both")
	case opts.file != "":
		return loadFile(opts.file)
	case opts.url != "":
		if opts.account == "" {
			return nil, fmt.Errorf("-account is required with -url")
		}
		ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
		defer cancel()
		return client.NewRegistryClient(opts.url, nil).FetchTransactions(ctx, opts.account, nil, to)
	}
	return nil, fmt.Errorf("one of -file or -url is required")
}

func loadFile(path string) ([]ledger.Transaction, error) {
	if path == "-" {
		return ledger.DecodeJSON(os.Stdin, ledger.DefaultMapping())
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ledger.DecodeJSON(f, ledger.DefaultMapping())
}

// optionalDate parses a flag date. A date-only upper bound covers the whole day.
func optionalDate(s string, upper bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := ledger.ParseDate(s)
	if err != nil {
		return nil, err
	}
	if upper {
		if _, perr := time.Parse("2006-01-02", s); perr == nil {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
	}
	return &t, nil
}

func until(txs []ledger.Transaction, to time.Time) []ledger.Transaction {
	out := make([]ledger.Transaction, 0, len(txs))
	for _, tx := range txs {
		if !tx.Date.After(to) {
			out = append(out, tx)
		}
	}
	return out
}

func render(out io.Writer, result *ledger.Result, rows []ledger.EnrichedTransaction) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)

	header := []string{"DATE", "CCY", "REFERENCE", "DEBIT", "CREDIT"}
	header = append(header, result.Currencies...)
	fmt.Fprintln(w, strings.Join(header, "\t")+"\t")

	for _, r := range rows {
		cells := []string{
			r.Date.UTC().Format("2006-01-02"),
			r.Currency,
			r.Reference,
			r.Debit.StringFixed(2),
			r.Credit.StringFixed(2),
		}
		for _, c := range result.Currencies {
			if c == r.Bucket {
				cells = append(cells, r.RunningBalance.StringFixed(2))
			} else {
				cells = append(cells, "-")
			}
		}
		fmt.Fprintln(w, strings.Join(cells, "\t")+"\t")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "CURRENCY\tOPENING\tDEBIT\tCREDIT\tCLOSING\tROWS\t")
	for _, s := range result.SummaryList() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t\n",
			s.Currency,
			s.OpeningBalance.StringFixed(2),
			s.TotalDebit.StringFixed(2),
			s.TotalCredit.StringFixed(2),
			s.ClosingBalance.StringFixed(2),
			s.Count,
		)
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintln(w)
		for _, warn := range result.Warnings {
			fmt.Fprintf(w, "warning: record %d (%s) currency %q: %s\t\n", warn.Index, warn.Reference, warn.Currency, warn.Reason)
		}
	}
	return w.Flush()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
