package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"bullion/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Day returns midnight UTC of the given day in January 2024.
func Day(n int) time.Time {
	return time.Date(2024, time.January, n, 0, 0, 0, 0, time.UTC)
}

// CreateTestAccount creates an active debtor account with AED as primary currency.
func CreateTestAccount(t *testing.T, db *gorm.DB) *models.Account {
	t.Helper()
	return CreateTestAccountWithType(t, db, models.AccountTypeDebtor)
}

// CreateTestAccountWithType creates an active account of the given type.
func CreateTestAccountWithType(t *testing.T, db *gorm.DB, accountType models.AccountType) *models.Account {
	t.Helper()

	n := nextID()
	account := &models.Account{
		Code:            fmt.Sprintf("ACC%04d", n),
		Name:            fmt.Sprintf("Test Account %d", n),
		Type:            accountType,
		Branch:          "Dubai",
		PrimaryCurrency: "AED",
		IsActive:        true,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestEntry creates a registry row. Amounts are decimal strings.
func CreateTestEntry(t *testing.T, db *gorm.DB, accountID string, date time.Time, assetType, debit, credit string) *models.LedgerEntry {
	t.Helper()

	entry := &models.LedgerEntry{
		AccountID:       accountID,
		TransactionDate: date,
		AssetType:       assetType,
		Debit:           decimal.RequireFromString(debit),
		Credit:          decimal.RequireFromString(credit),
		Reference:       fmt.Sprintf("REF-%d", nextID()),
		Branch:          "Dubai",
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to create test ledger entry: %v", err)
	}
	return entry
}

// CreateTestEntryOfType creates a registry row with a transaction type.
func CreateTestEntryOfType(t *testing.T, db *gorm.DB, accountID string, date time.Time, assetType, entryType, debit, credit string) *models.LedgerEntry {
	t.Helper()

	entry := &models.LedgerEntry{
		AccountID:       accountID,
		TransactionDate: date,
		AssetType:       assetType,
		Debit:           decimal.RequireFromString(debit),
		Credit:          decimal.RequireFromString(credit),
		Reference:       fmt.Sprintf("REF-%d", nextID()),
		Type:            entryType,
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to create test ledger entry: %v", err)
	}
	return entry
}
