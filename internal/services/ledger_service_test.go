package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bullion/internal/models"
	"bullion/internal/pagination"
	"bullion/internal/testutil"
)

type recordingObserver struct {
	invalidated []string
}

func (o *recordingObserver) Invalidate(accountID string) {
	o.invalidated = append(o.invalidated, accountID)
}

func newTestLedgerService(t *testing.T) (LedgerServicer, *recordingObserver, *models.Account, func()) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	observer := &recordingObserver{}
	svc := NewLedgerService(db, NewAccountService(db, "AED", nil), observer)
	account := testutil.CreateTestAccount(t, db)
	return svc, observer, account, func() { testutil.TeardownTestDB(t, db) }
}

func entryInput(day int, asset, debit, credit string) EntryInput {
	return EntryInput{
		TransactionDate: testutil.Day(day),
		AssetType:       asset,
		Debit:           decimal.RequireFromString(debit),
		Credit:          decimal.RequireFromString(credit),
	}
}

func TestCreateEntry(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		svc, observer, account, cleanup := newTestLedgerService(t)
		defer cleanup()

		input := entryInput(3, " aed ", "0", "100")
		input.Reference = " INV-1 "
		input.Type = "sale"

		entry, err := svc.CreateEntry(account.ID, input)
		testutil.AssertNoError(t, err)

		if entry.ID == "" {
			t.Fatal("expected non-empty entry ID")
		}
		if entry.AssetType != "AED" {
			t.Errorf("expected asset type AED, got %s", entry.AssetType)
		}
		if entry.Reference != "INV-1" {
			t.Errorf("expected trimmed reference, got %q", entry.Reference)
		}
		if entry.Type != "SALE" {
			t.Errorf("expected type SALE, got %s", entry.Type)
		}
		if len(observer.invalidated) != 1 || observer.invalidated[0] != account.ID {
			t.Errorf("expected observer notified for %s, got %v", account.ID, observer.invalidated)
		}
	})

	t.Run("negative_amount_kept", func(t *testing.T) {
		svc, _, account, cleanup := newTestLedgerService(t)
		defer cleanup()

		entry, err := svc.CreateEntry(account.ID, entryInput(1, "AED", "0", "-20"))
		testutil.AssertNoError(t, err)

		if !entry.Credit.Equal(decimal.NewFromInt(-20)) {
			t.Errorf("expected credit -20, got %s", entry.Credit)
		}
	})

	t.Run("missing_date", func(t *testing.T) {
		svc, _, account, cleanup := newTestLedgerService(t)
		defer cleanup()

		input := entryInput(1, "AED", "1", "0")
		input.TransactionDate = time.Time{}
		_, err := svc.CreateEntry(account.ID, input)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("missing_asset_type", func(t *testing.T) {
		svc, _, account, cleanup := newTestLedgerService(t)
		defer cleanup()

		_, err := svc.CreateEntry(account.ID, entryInput(1, "", "1", "0"))
		testutil.AssertAppError(t, err, "INVALID_CURRENCY")
	})

	t.Run("account_not_found", func(t *testing.T) {
		svc, observer, _, cleanup := newTestLedgerService(t)
		defer cleanup()

		_, err := svc.CreateEntry("missing", entryInput(1, "AED", "1", "0"))
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
		if len(observer.invalidated) != 0 {
			t.Error("observer should not be notified on failure")
		}
	})

	t.Run("inactive_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		accounts := NewAccountService(db, "AED", nil)
		svc := NewLedgerService(db, accounts, nil)
		account := testutil.CreateTestAccount(t, db)
		_, err := accounts.UpdateAccount(account.ID, AccountUpdateFields{IsActive: boolPtr(false)})
		testutil.AssertNoError(t, err)

		_, err = svc.CreateEntry(account.ID, entryInput(1, "AED", "1", "0"))
		testutil.AssertAppError(t, err, "ACCOUNT_INACTIVE")
	})
}

func TestCreateEntries(t *testing.T) {
	t.Run("bulk", func(t *testing.T) {
		svc, observer, account, cleanup := newTestLedgerService(t)
		defer cleanup()

		entries, err := svc.CreateEntries(account.ID, []EntryInput{
			entryInput(1, "AED", "0", "100"),
			entryInput(2, "XAU", "5", "0"),
		})
		testutil.AssertNoError(t, err)

		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		if len(observer.invalidated) != 1 {
			t.Errorf("expected a single notification for a bulk write, got %d", len(observer.invalidated))
		}
	})

	t.Run("all_or_nothing", func(t *testing.T) {
		svc, _, account, cleanup := newTestLedgerService(t)
		defer cleanup()

		_, err := svc.CreateEntries(account.ID, []EntryInput{
			entryInput(1, "AED", "0", "100"),
			entryInput(2, "", "5", "0"),
		})
		testutil.AssertAppError(t, err, "INVALID_CURRENCY")
		if err.Error() != "entry 1: asset type is required" {
			t.Errorf("expected index in message, got %q", err.Error())
		}

		rows, err := svc.ListEntries(account.ID, EntryFilter{})
		testutil.AssertNoError(t, err)
		if len(rows) != 0 {
			t.Errorf("expected no rows written, got %d", len(rows))
		}
	})

	t.Run("empty", func(t *testing.T) {
		svc, _, account, cleanup := newTestLedgerService(t)
		defer cleanup()

		_, err := svc.CreateEntries(account.ID, nil)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetEntries(t *testing.T) {
	t.Run("most_recent_first", func(t *testing.T) {
		svc, _, account, cleanup := newTestLedgerService(t)
		defer cleanup()

		for _, d := range []int{2, 5, 1} {
			_, err := svc.CreateEntry(account.ID, entryInput(d, "AED", "0", "1"))
			testutil.AssertNoError(t, err)
		}

		result, err := svc.GetEntries(account.ID, pagination.PageRequest{Page: 1, PageSize: 2}, EntryFilter{})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 3 {
			t.Fatalf("expected 3 total entries, got %d", result.TotalItems)
		}
		if len(result.Data) != 2 {
			t.Fatalf("expected 2 entries on the page, got %d", len(result.Data))
		}
		if !result.Data[0].TransactionDate.Equal(testutil.Day(5)) {
			t.Errorf("expected newest entry first, got %s", result.Data[0].TransactionDate)
		}
	})

	t.Run("filters", func(t *testing.T) {
		svc, _, account, cleanup := newTestLedgerService(t)
		defer cleanup()

		inputs := []EntryInput{
			entryInput(1, "AED", "0", "1"),
			entryInput(2, "INR", "0", "1"),
			entryInput(3, "AED", "0", "1"),
		}
		inputs[2].Description = "Gold Bar purchase"
		_, err := svc.CreateEntries(account.ID, inputs)
		testutil.AssertNoError(t, err)

		asset := "aed"
		result, err := svc.GetEntries(account.ID, pagination.PageRequest{}, EntryFilter{AssetType: &asset})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 2 {
			t.Errorf("expected 2 AED entries, got %d", result.TotalItems)
		}

		from := testutil.Day(2)
		result, err = svc.GetEntries(account.ID, pagination.PageRequest{}, EntryFilter{FromDate: &from})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 2 {
			t.Errorf("expected 2 entries from day 2, got %d", result.TotalItems)
		}

		result, err = svc.GetEntries(account.ID, pagination.PageRequest{}, EntryFilter{Search: "gold bar"})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 1 {
			t.Errorf("expected 1 entry matching search, got %d", result.TotalItems)
		}
	})

	t.Run("account_not_found", func(t *testing.T) {
		svc, _, _, cleanup := newTestLedgerService(t)
		defer cleanup()

		_, err := svc.GetEntries("missing", pagination.PageRequest{}, EntryFilter{})
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})
}

func TestListEntries(t *testing.T) {
	svc, _, account, cleanup := newTestLedgerService(t)
	defer cleanup()

	first := entryInput(2, "AED", "0", "1")
	first.Reference = "first"
	second := entryInput(2, "AED", "0", "2")
	second.Reference = "second"
	_, err := svc.CreateEntries(account.ID, []EntryInput{entryInput(3, "AED", "0", "3"), first, second})
	testutil.AssertNoError(t, err)

	rows, err := svc.ListEntries(account.ID, EntryFilter{})
	testutil.AssertNoError(t, err)

	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Reference != "first" || rows[1].Reference != "second" {
		t.Errorf("expected same-day rows in insertion order, got %q, %q", rows[0].Reference, rows[1].Reference)
	}
	if !rows[2].TransactionDate.Equal(testutil.Day(3)) {
		t.Errorf("expected latest row last, got %s", rows[2].TransactionDate)
	}
}

func TestDeleteEntry(t *testing.T) {
	t.Run("soft_delete", func(t *testing.T) {
		svc, observer, account, cleanup := newTestLedgerService(t)
		defer cleanup()

		entry, err := svc.CreateEntry(account.ID, entryInput(1, "AED", "0", "1"))
		testutil.AssertNoError(t, err)

		err = svc.DeleteEntry(entry.ID)
		testutil.AssertNoError(t, err)

		_, err = svc.GetEntryByID(entry.ID)
		testutil.AssertAppError(t, err, "LEDGER_ENTRY_NOT_FOUND")
		if len(observer.invalidated) != 2 {
			t.Errorf("expected notifications for create and delete, got %d", len(observer.invalidated))
		}
	})

	t.Run("not_found", func(t *testing.T) {
		svc, _, _, cleanup := newTestLedgerService(t)
		defer cleanup()

		err := svc.DeleteEntry("missing")
		testutil.AssertAppError(t, err, "LEDGER_ENTRY_NOT_FOUND")
	})
}
