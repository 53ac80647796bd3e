package services

import (
	"errors"
	"strings"
	"time"

	apperrors "bullion/internal/errors"
	"bullion/internal/ledger"
	"bullion/internal/logger"
	"bullion/internal/metrics"
	"bullion/internal/models"
	"bullion/internal/pagination"
)

// statementService computes account statements from the registry.
type statementService struct {
	accounts AccountServicer
	entries  LedgerServicer
	defaults ledger.Options
	cache    *StatementCache
	recorder metrics.Recorder
}

// NewStatementService creates a new StatementServicer. defaults supplies the
// tracked currencies, exclusion predicate and currency policy; cache may be nil.
func NewStatementService(
	accounts AccountServicer,
	entries LedgerServicer,
	defaults ledger.Options,
	cache *StatementCache,
	recorder metrics.Recorder,
) StatementServicer {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &statementService{
		accounts: accounts,
		entries:  entries,
		defaults: defaults,
		cache:    cache,
		recorder: recorder,
	}
}

// GetStatement builds the statement of one account. Entries before FromDate
// are folded into opening balances; the other filters narrow the rows that
// appear and accumulate within the period.
func (s *statementService) GetStatement(accountID string, q StatementQuery) (*Statement, error) {
	order, err := normalizeOrder(q.Order)
	if err != nil {
		return nil, err
	}
	if q.FromDate != nil && q.ToDate != nil && q.ToDate.Before(*q.FromDate) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "to_date must not be before from_date")
	}

	account, err := s.accounts.GetAccountByID(accountID)
	if err != nil {
		return nil, err
	}

	opts := s.optionsFor(account, q.Currencies)
	fingerprint := statementFingerprint(opts, q)
	version := s.cache.Version(account.ID)

	result, hit := s.cache.get(account.ID, version, fingerprint)
	if s.cache != nil {
		s.recorder.RecordCacheLookup(hit)
	}
	if !hit {
		result, err = s.aggregateAccount(account, opts, q)
		if err != nil {
			return nil, err
		}
		s.cache.add(account.ID, version, fingerprint, result)
	}

	rows := result.Enriched
	if order == OrderDesc {
		rows = ledger.Reverse(rows)
	}

	return &Statement{
		Account:     account,
		Currencies:  result.Currencies,
		Order:       order,
		FromDate:    q.FromDate,
		ToDate:      q.ToDate,
		Rows:        pagination.Slice(rows, q.Page),
		Summaries:   result.SummaryList(),
		Warnings:    result.Warnings,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func (s *statementService) aggregateAccount(account *models.Account, opts ledger.Options, q StatementQuery) (*ledger.Result, error) {
	filter := EntryFilter{ToDate: q.ToDate}
	if q.Branch != "" {
		branch := q.Branch
		filter.Branch = &branch
	}
	entries, err := s.entries.ListEntries(account.ID, filter)
	if err != nil {
		return nil, err
	}

	// Search narrows the period only; earlier rows always reach the openings.
	search := strings.ToLower(strings.TrimSpace(q.Search))
	txs := make([]ledger.Transaction, 0, len(entries))
	for i := range entries {
		tx := entries[i].ToTransaction()
		inPeriod := q.FromDate == nil || !tx.Date.Before(*q.FromDate)
		if inPeriod && search != "" && !matchesSearch(tx, search) {
			continue
		}
		txs = append(txs, tx)
	}

	start := time.Now()
	result, err := ledger.AggregateFrom(txs, q.FromDate, opts)
	if err != nil {
		return nil, translateLedgerError(err)
	}
	s.recorder.RecordStatement("account", len(result.Enriched), time.Since(start))
	s.reportWarnings(account.ID, result.Warnings)
	return result, nil
}

// Compute aggregates caller-supplied registry records without touching storage.
func (s *statementService) Compute(records []map[string]any, mapping ledger.FieldMapping, co ComputeOptions) (*ComputeResult, error) {
	order, err := normalizeOrder(co.Order)
	if err != nil {
		return nil, err
	}

	txs, err := ledger.FromRecords(records, mapping)
	if err != nil {
		return nil, translateLedgerError(err)
	}

	opts := s.defaults
	if len(co.Currencies) > 0 {
		opts.TrackedCurrencies = co.Currencies
	}
	if co.ExcludeTypes != nil {
		opts.Exclude = ledger.ExcludeTypes(co.ExcludeTypes...)
	}
	if co.FallbackCurrency != "" {
		opts.FallbackCurrency = co.FallbackCurrency
	}
	if co.UnknownCurrency != "" {
		opts.UnknownCurrency = co.UnknownCurrency
	}

	start := time.Now()
	result, err := ledger.Aggregate(txs, opts)
	if err != nil {
		return nil, translateLedgerError(err)
	}
	s.recorder.RecordStatement("compute", len(txs), time.Since(start))
	s.reportWarnings("", result.Warnings)

	rows := result.Enriched
	if order == OrderDesc {
		rows = ledger.Reverse(rows)
	}

	return &ComputeResult{
		Currencies: result.Currencies,
		Order:      order,
		Rows:       rows,
		Summaries:  result.SummaryList(),
		Warnings:   result.Warnings,
	}, nil
}

// optionsFor narrows the defaults to the requested currencies and the
// account's primary currency.
func (s *statementService) optionsFor(account *models.Account, currencies []string) ledger.Options {
	opts := s.defaults
	if len(currencies) > 0 {
		opts.TrackedCurrencies = currencies
	}
	if account.PrimaryCurrency != "" {
		opts.FallbackCurrency = account.PrimaryCurrency
	}
	opts.OpeningBalances = nil
	return opts
}

func (s *statementService) reportWarnings(accountID string, warnings []ledger.Warning) {
	if len(warnings) == 0 {
		return
	}
	for _, w := range warnings {
		s.recorder.RecordWarning(w.Reason)
	}
	logger.Get().Warnw("ledger data quality warnings",
		"account_id", accountID,
		"count", len(warnings),
		"first_reason", warnings[0].Reason,
		"first_currency", warnings[0].Currency,
	)
}

func translateLedgerError(err error) error {
	var dataErr *ledger.DataError
	if errors.As(err, &dataErr) {
		return apperrors.WrapMessage(apperrors.ErrInvalidLedgerData, dataErr.Error(), err)
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}

func normalizeOrder(order string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(order)) {
	case "", OrderDesc:
		return OrderDesc, nil
	case OrderAsc:
		return OrderAsc, nil
	}
	return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "order must be asc or desc")
}

func matchesSearch(tx ledger.Transaction, term string) bool {
	return strings.Contains(strings.ToLower(tx.Reference), term) ||
		strings.Contains(strings.ToLower(tx.Description), term)
}

func statementFingerprint(opts ledger.Options, q StatementQuery) string {
	var b strings.Builder
	b.WriteString(strings.Join(opts.Currencies(), ","))
	b.WriteByte('|')
	b.WriteString(ledger.NormalizeCurrency(opts.FallbackCurrency))
	b.WriteByte('|')
	b.WriteString(string(opts.UnknownCurrency))
	b.WriteByte('|')
	if q.FromDate != nil {
		b.WriteString(q.FromDate.UTC().Format(time.RFC3339Nano))
	}
	b.WriteByte('|')
	if q.ToDate != nil {
		b.WriteString(q.ToDate.UTC().Format(time.RFC3339Nano))
	}
	b.WriteByte('|')
	b.WriteString(q.Branch)
	b.WriteByte('|')
	b.WriteString(strings.ToLower(strings.TrimSpace(q.Search)))
	return b.String()
}
