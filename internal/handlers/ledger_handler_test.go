package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "bullion/internal/errors"
	"bullion/internal/models"
	"bullion/internal/pagination"
	"bullion/internal/services"
)

func setupLedgerRouter(handler *LedgerHandler) *gin.Engine {
	r := gin.New()
	r.POST("/accounts/:id/registry", handler.CreateEntry)
	r.POST("/accounts/:id/registry/bulk", handler.CreateEntries)
	r.GET("/accounts/:id/registry", handler.GetEntries)
	r.GET("/accounts/:id/registry/export", handler.ExportRegistry)
	r.GET("/registry/:id", handler.GetEntryByID)
	r.DELETE("/registry/:id", handler.DeleteEntry)
	return r
}

func TestLedgerHandler_CreateEntry(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		var got services.EntryInput
		ledgerSvc := &mockLedgerService{
			createEntryFn: func(accountID string, input services.EntryInput) (*models.LedgerEntry, error) {
				got = input
				return &models.LedgerEntry{
					Base:            models.Base{ID: testEntryID},
					AccountID:       accountID,
					TransactionDate: input.TransactionDate,
					AssetType:       input.AssetType,
					Debit:           input.Debit,
					Credit:          input.Credit,
				}, nil
			},
		}
		handler := NewLedgerHandler(ledgerSvc, &mockAuditService{})
		r := setupLedgerRouter(handler)

		rec := doRequest(r, "POST", "/accounts/"+testAccountID+"/registry",
			`{"transaction_date":"2024-01-05","asset_type":"XAU","debit":"12.5","credit":0,"reference":"GB-1"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if !got.TransactionDate.Equal(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected transaction date %s", got.TransactionDate)
		}
		if !got.Debit.Equal(decimal.RequireFromString("12.5")) {
			t.Errorf("expected debit 12.5, got %s", got.Debit)
		}
		if !got.Credit.IsZero() {
			t.Errorf("expected zero credit, got %s", got.Credit)
		}
	})

	t.Run("returns 400 on missing date", func(t *testing.T) {
		handler := NewLedgerHandler(&mockLedgerService{}, &mockAuditService{})
		r := setupLedgerRouter(handler)

		rec := doRequest(r, "POST", "/accounts/"+testAccountID+"/registry", `{"asset_type":"AED","credit":"1"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on unparseable date", func(t *testing.T) {
		handler := NewLedgerHandler(&mockLedgerService{}, &mockAuditService{})
		r := setupLedgerRouter(handler)

		rec := doRequest(r, "POST", "/accounts/"+testAccountID+"/registry",
			`{"transaction_date":"05/01/2024","asset_type":"AED","credit":"1"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on unknown asset type", func(t *testing.T) {
		handler := NewLedgerHandler(&mockLedgerService{}, &mockAuditService{})
		r := setupLedgerRouter(handler)

		rec := doRequest(r, "POST", "/accounts/"+testAccountID+"/registry",
			`{"transaction_date":"2024-01-05","asset_type":"BITCOIN","credit":"1"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 409 on inactive account", func(t *testing.T) {
		ledgerSvc := &mockLedgerService{
			createEntryFn: func(string, services.EntryInput) (*models.LedgerEntry, error) {
				return nil, apperrors.ErrAccountInactive
			},
		}
		handler := NewLedgerHandler(ledgerSvc, &mockAuditService{})
		r := setupLedgerRouter(handler)

		rec := doRequest(r, "POST", "/accounts/"+testAccountID+"/registry",
			`{"transaction_date":"2024-01-05","asset_type":"AED","credit":"1"}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "ACCOUNT_INACTIVE")
	})
}

func TestLedgerHandler_CreateEntries(t *testing.T) {
	t.Run("returns 201 with all rows", func(t *testing.T) {
		var count int
		ledgerSvc := &mockLedgerService{
			createEntriesFn: func(_ string, inputs []services.EntryInput) ([]models.LedgerEntry, error) {
				count = len(inputs)
				return make([]models.LedgerEntry, len(inputs)), nil
			},
		}
		handler := NewLedgerHandler(ledgerSvc, &mockAuditService{})
		r := setupLedgerRouter(handler)

		rec := doRequest(r, "POST", "/accounts/"+testAccountID+"/registry/bulk", `{"entries":[
			{"transaction_date":"2024-01-01","asset_type":"AED","credit":"100"},
			{"transaction_date":"2024-01-02T10:00:00Z","asset_type":"INR","debit":50}
		]}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if count != 2 {
			t.Errorf("expected 2 inputs, got %d", count)
		}
	})

	t.Run("returns 400 on empty batch", func(t *testing.T) {
		handler := NewLedgerHandler(&mockLedgerService{}, &mockAuditService{})
		r := setupLedgerRouter(handler)

		rec := doRequest(r, "POST", "/accounts/"+testAccountID+"/registry/bulk", `{"entries":[]}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestLedgerHandler_GetEntries(t *testing.T) {
	t.Run("parses filters", func(t *testing.T) {
		var got services.EntryFilter
		ledgerSvc := &mockLedgerService{
			getEntriesFn: func(_ string, _ pagination.PageRequest, filter services.EntryFilter) (*pagination.PageResponse[models.LedgerEntry], error) {
				got = filter
				resp := pagination.NewPageResponse([]models.LedgerEntry{}, 1, 50, 0)
				return &resp, nil
			},
		}
		handler := NewLedgerHandler(ledgerSvc, &mockAuditService{})
		r := setupLedgerRouter(handler)

		rec := doRequest(r, "GET", "/accounts/"+testAccountID+
			"/registry?from_date=2024-01-01&to_date=2024-01-31&asset_type=XAU&branch=Deira&search=bar", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.FromDate == nil || !got.FromDate.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected from_date %v", got.FromDate)
		}
		wantTo := time.Date(2024, 1, 31, 23, 59, 59, 999999999, time.UTC)
		if got.ToDate == nil || !got.ToDate.Equal(wantTo) {
			t.Errorf("expected to_date at end of day, got %v", got.ToDate)
		}
		if got.AssetType == nil || *got.AssetType != "XAU" {
			t.Errorf("unexpected asset_type %v", got.AssetType)
		}
		if got.Branch == nil || *got.Branch != "Deira" {
			t.Errorf("unexpected branch %v", got.Branch)
		}
		if got.Search != "bar" {
			t.Errorf("unexpected search %q", got.Search)
		}
	})

	t.Run("returns 400 on invalid date", func(t *testing.T) {
		handler := NewLedgerHandler(&mockLedgerService{}, &mockAuditService{})
		r := setupLedgerRouter(handler)

		rec := doRequest(r, "GET", "/accounts/"+testAccountID+"/registry?from_date=yesterday", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestLedgerHandler_ExportRegistry(t *testing.T) {
	ledgerSvc := &mockLedgerService{
		listEntriesFn: func(accountID string, _ services.EntryFilter) ([]models.LedgerEntry, error) {
			return []models.LedgerEntry{{
				Base:            models.Base{ID: testEntryID},
				AccountID:       accountID,
				TransactionDate: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
				AssetType:       "AED",
				Debit:           decimal.Zero,
				Credit:          decimal.RequireFromString("100.25"),
			}}, nil
		},
	}
	handler := NewLedgerHandler(ledgerSvc, &mockAuditService{})
	r := setupLedgerRouter(handler)

	rec := doRequest(r, "GET", "/accounts/"+testAccountID+"/registry/export", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var records []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("expected JSON array: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0]["transactionDate"] != "2024-01-02T00:00:00Z" {
		t.Errorf("unexpected transactionDate %v", records[0]["transactionDate"])
	}
	if records[0]["assetType"] != "AED" || records[0]["credit"] != "100.25" {
		t.Errorf("unexpected record %v", records[0])
	}
}

func TestLedgerHandler_DeleteEntry(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		audit := &mockAuditService{}
		handler := NewLedgerHandler(&mockLedgerService{}, audit)
		r := setupLedgerRouter(handler)

		rec := doRequest(r, "DELETE", "/registry/"+testEntryID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if len(audit.actions) != 1 || audit.actions[0] != "DELETE_LEDGER_ENTRY" {
			t.Errorf("expected DELETE_LEDGER_ENTRY audit entry, got %v", audit.actions)
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		ledgerSvc := &mockLedgerService{
			deleteEntryFn: func(string) error { return apperrors.ErrLedgerEntryNotFound },
		}
		handler := NewLedgerHandler(ledgerSvc, &mockAuditService{})
		r := setupLedgerRouter(handler)

		rec := doRequest(r, "DELETE", "/registry/"+testEntryID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "LEDGER_ENTRY_NOT_FOUND")
	})
}
