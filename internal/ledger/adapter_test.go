package ledger

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDecodeJSON(t *testing.T) {
	t.Run("default_mapping", func(t *testing.T) {
		body := `[
			{"transactionDate":"2024-03-01T10:00:00Z","assetType":"aed","debit":0,"credit":"1,250.50","reference":"INV-1","type":"SALE"},
			{"date":"2024-03-02","currency":"INR","debit":40,"credit":null,"branch":"Dubai"}
		]`
		txs, err := DecodeJSON(strings.NewReader(body), FieldMapping{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(txs) != 2 {
			t.Fatalf("expected 2 transactions, got %d", len(txs))
		}
		if txs[0].Currency != "AED" {
			t.Errorf("expected AED, got %q", txs[0].Currency)
		}
		assertDec(t, "credit", txs[0].Credit, "1250.50")
		if txs[0].Reference != "INV-1" || txs[0].Type != "SALE" {
			t.Errorf("unexpected metadata: %+v", txs[0])
		}
		if txs[1].Currency != "INR" || txs[1].Branch != "Dubai" {
			t.Errorf("unexpected second record: %+v", txs[1])
		}
		assertDec(t, "empty credit", txs[1].Credit, "0")
		if !txs[1].Date.Equal(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected date %v", txs[1].Date)
		}
	})

	t.Run("custom_mapping", func(t *testing.T) {
		body := `[{"when":1700000000000,"ccy":"XAU","out":"2.5","in":"0"}]`
		mapping := FieldMapping{
			Date:     []string{"when"},
			Currency: []string{"ccy"},
			Debit:    []string{"out"},
			Credit:   []string{"in"},
		}
		txs, err := DecodeJSON(strings.NewReader(body), mapping)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !txs[0].Date.Equal(time.UnixMilli(1700000000000)) {
			t.Errorf("unexpected date %v", txs[0].Date)
		}
		if txs[0].Currency != "XAU" {
			t.Errorf("expected XAU, got %q", txs[0].Currency)
		}
		assertDec(t, "debit", txs[0].Debit, "2.5")
	})

	t.Run("unparseable_date", func(t *testing.T) {
		body := `[{"transactionDate":"2024-01-01","assetType":"AED"},{"transactionDate":"yesterday","assetType":"AED"}]`
		_, err := DecodeJSON(strings.NewReader(body), FieldMapping{})
		if !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("expected ErrInvalidDate, got %v", err)
		}
		var dataErr *DataError
		if !errors.As(err, &dataErr) {
			t.Fatalf("expected DataError, got %T", err)
		}
		if dataErr.Index != 1 || dataErr.Field != "transactionDate" || dataErr.Value != "yesterday" {
			t.Errorf("unexpected DataError %+v", dataErr)
		}
	})

	t.Run("missing_date", func(t *testing.T) {
		_, err := DecodeJSON(strings.NewReader(`[{"assetType":"AED","credit":1}]`), FieldMapping{})
		if !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("expected ErrInvalidDate, got %v", err)
		}
	})

	t.Run("invalid_amount", func(t *testing.T) {
		_, err := DecodeJSON(strings.NewReader(`[{"date":"2024-01-01","debit":"abc"}]`), FieldMapping{})
		if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("expected ErrInvalidAmount, got %v", err)
		}
	})

	t.Run("not_an_array", func(t *testing.T) {
		if _, err := DecodeJSON(strings.NewReader(`{"a":1}`), FieldMapping{}); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2024-01-31", true},
		{"2024-01-31T12:30:00", true},
		{"2024-01-31 12:30:00", true},
		{"2024-01-31T12:30:00+04:00", true},
		{"1706659200000", true},
		{"31/01/2024", false},
		{"", false},
	}
	for _, tc := range cases {
		_, err := ParseDate(tc.in)
		if tc.ok && err != nil {
			t.Errorf("%q: unexpected error %v", tc.in, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("%q: expected error", tc.in)
		}
	}
}
