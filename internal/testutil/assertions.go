package testutil

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	apperrors "bullion/internal/errors"
	"bullion/internal/ledger"
)

// AssertAppError fails unless err is an AppError carrying code.
func AssertAppError(t *testing.T, err error, code string) *apperrors.AppError {
	t.Helper()

	var appErr *apperrors.AppError
	switch {
	case err == nil:
		t.Fatalf("want %s error, got success", code)
	case !errors.As(err, &appErr):
		t.Fatalf("want %s error, got untyped %T: %v", code, err, err)
	case appErr.Code != code:
		t.Errorf("want %s error, got %s (%q, status %d)", code, appErr.Code, appErr.Message, appErr.StatusCode)
	}
	return appErr
}

// AssertLedgerDataError fails unless err reports a malformed registry
// record at index.
func AssertLedgerDataError(t *testing.T, err error, index int) {
	t.Helper()

	AssertAppError(t, err, apperrors.ErrInvalidLedgerData.Code)
	var dataErr *ledger.DataError
	if !errors.As(err, &dataErr) {
		t.Fatalf("registry error does not wrap a record error: %v", err)
	}
	if dataErr.Index != index {
		t.Errorf("want bad record %d, got record %d (%s)", index, dataErr.Index, dataErr.Field)
	}
}

// AssertBalance compares decimals by value, so 70 and 70.0000 agree.
func AssertBalance(t *testing.T, label string, got decimal.Decimal, want string) {
	t.Helper()

	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s: want %s, got %s", label, want, got)
	}
}

// AssertNoError stops the test on any error.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
