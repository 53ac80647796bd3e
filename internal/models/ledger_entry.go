package models

import (
	"time"

	"github.com/shopspring/decimal"

	"bullion/internal/ledger"
)

// LedgerEntry is a persisted registry row. Amounts are stored with four
// decimal places; gold is recorded in grams under asset type XAU.
type LedgerEntry struct {
	Base
	AccountID       string          `gorm:"type:uuid;not null;index:idx_ledger_account_date,priority:1" json:"account_id"`
	TransactionDate time.Time       `gorm:"not null;index:idx_ledger_account_date,priority:2" json:"transaction_date"`
	AssetType       string          `gorm:"not null" json:"asset_type"`
	Debit           decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"debit"`
	Credit          decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"credit"`
	Reference       string          `gorm:"index" json:"reference"`
	Description     string          `json:"description"`
	Branch          string          `json:"branch"`
	Type            string          `gorm:"index" json:"type"`

	Account *Account `gorm:"foreignKey:AccountID" json:"account,omitempty"`
}

// ToTransaction projects the entry onto the aggregator's input type.
func (e *LedgerEntry) ToTransaction() ledger.Transaction {
	return ledger.Transaction{
		Date:        e.TransactionDate,
		Currency:    e.AssetType,
		Debit:       e.Debit,
		Credit:      e.Credit,
		Reference:   e.Reference,
		Description: e.Description,
		Branch:      e.Branch,
		Type:        e.Type,
	}
}

// ToRecord renders the entry with the registry field names used by the
// dashboard and by ledger.DefaultMapping.
func (e *LedgerEntry) ToRecord() map[string]any {
	return map[string]any{
		"id":              e.ID,
		"transactionDate": e.TransactionDate.UTC().Format(time.RFC3339),
		"assetType":       e.AssetType,
		"debit":           e.Debit.String(),
		"credit":          e.Credit.String(),
		"reference":       e.Reference,
		"description":     e.Description,
		"branch":          e.Branch,
		"type":            e.Type,
	}
}
