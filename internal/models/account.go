package models

// AccountType distinguishes the two sides of a trading relationship.
type AccountType string

const (
	AccountTypeDebtor   AccountType = "debtor"
	AccountTypeCreditor AccountType = "creditor"
)

// Account is a debtor or creditor profile owning a registry of ledger entries.
type Account struct {
	Base
	Code            string      `gorm:"not null;uniqueIndex" json:"code"`
	Name            string      `gorm:"not null" json:"name"`
	Type            AccountType `gorm:"not null" json:"type"`
	Branch          string      `json:"branch"`
	PrimaryCurrency string      `gorm:"not null;default:'AED'" json:"primary_currency"`
	Email           string      `json:"email,omitempty"`
	Phone           string      `json:"phone,omitempty"`
	IsActive        bool        `gorm:"default:true" json:"is_active"`

	// Relationships
	Entries []LedgerEntry `gorm:"foreignKey:AccountID" json:"entries,omitempty"`
}
