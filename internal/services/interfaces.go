package services

import (
	"time"

	"github.com/shopspring/decimal"

	"bullion/internal/ledger"
	"bullion/internal/models"
	"bullion/internal/pagination"
)

// AccountUpdateFields holds the optional fields for an account update.
// Nil means leave unchanged.
type AccountUpdateFields struct {
	Name            *string
	Branch          *string
	PrimaryCurrency *string
	Email           *string
	Phone           *string
	IsActive        *bool
}

// AccountServicer defines the contract for debtor/creditor profiles.
type AccountServicer interface {
	CreateAccount(code, name string, accountType models.AccountType, branch, primaryCurrency string) (*models.Account, error)
	GetAccounts(page pagination.PageRequest, accountType *models.AccountType) (*pagination.PageResponse[models.Account], error)
	GetAccountByID(accountID string) (*models.Account, error)
	UpdateAccount(accountID string, fields AccountUpdateFields) (*models.Account, error)
}

// EntryInput describes a registry row to be written.
type EntryInput struct {
	TransactionDate time.Time
	AssetType       string
	Debit           decimal.Decimal
	Credit          decimal.Decimal
	Reference       string
	Description     string
	Branch          string
	Type            string
}

// EntryFilter holds optional filter parameters for listing registry rows.
type EntryFilter struct {
	FromDate  *time.Time
	ToDate    *time.Time
	AssetType *string
	Type      *string
	Branch    *string
	Search    string
}

// LedgerServicer defines the contract for registry persistence.
type LedgerServicer interface {
	CreateEntry(accountID string, input EntryInput) (*models.LedgerEntry, error)
	CreateEntries(accountID string, inputs []EntryInput) ([]models.LedgerEntry, error)
	GetEntries(accountID string, page pagination.PageRequest, filter EntryFilter) (*pagination.PageResponse[models.LedgerEntry], error)
	ListEntries(accountID string, filter EntryFilter) ([]models.LedgerEntry, error)
	GetEntryByID(entryID string) (*models.LedgerEntry, error)
	DeleteEntry(entryID string) error
}

// Statement orders.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// StatementQuery selects and shapes an account statement.
type StatementQuery struct {
	Currencies []string
	FromDate   *time.Time
	ToDate     *time.Time
	Branch     string
	Search     string
	Order      string
	Page       pagination.PageRequest
}

// Statement is an account's registry with running balances and summaries.
type Statement struct {
	Account     *models.Account                                     `json:"account"`
	Currencies  []string                                            `json:"currencies"`
	Order       string                                              `json:"order"`
	FromDate    *time.Time                                          `json:"from_date,omitempty"`
	ToDate      *time.Time                                          `json:"to_date,omitempty"`
	Rows        pagination.PageResponse[ledger.EnrichedTransaction] `json:"rows"`
	Summaries   []ledger.CurrencySummary                            `json:"summaries"`
	Warnings    []ledger.Warning                                    `json:"warnings"`
	GeneratedAt time.Time                                           `json:"generated_at"`
}

// ComputeOptions configures a stateless computation over caller records.
// Empty fields fall back to the service defaults.
type ComputeOptions struct {
	Currencies       []string
	ExcludeTypes     []string
	FallbackCurrency string
	UnknownCurrency  ledger.UnknownCurrencyPolicy
	Order            string
}

// ComputeResult is the output of StatementServicer.Compute.
type ComputeResult struct {
	Currencies []string                     `json:"currencies"`
	Order      string                       `json:"order"`
	Rows       []ledger.EnrichedTransaction `json:"rows"`
	Summaries  []ledger.CurrencySummary     `json:"summaries"`
	Warnings   []ledger.Warning             `json:"warnings"`
}

// StatementServicer defines the contract for statement computation.
type StatementServicer interface {
	GetStatement(accountID string, query StatementQuery) (*Statement, error)
	Compute(records []map[string]any, mapping ledger.FieldMapping, opts ComputeOptions) (*ComputeResult, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(action, resourceType, resourceID, ipAddress string, changes map[string]any)
}
