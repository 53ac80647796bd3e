package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"bullion/internal/ledger"
	"bullion/internal/models"
	"bullion/internal/pagination"
	"bullion/internal/services"
	"bullion/internal/validator"
)

const (
	testAccountID = "0190a8f2-5b3c-7d4e-8f00-000000000001"
	testEntryID   = "0190a8f2-5b3c-7d4e-8f00-0000000000e1"
)

// --- mock account service ---

type mockAccountService struct {
	createAccountFn  func(code, name string, accountType models.AccountType, branch, primaryCurrency string) (*models.Account, error)
	getAccountsFn    func(page pagination.PageRequest, accountType *models.AccountType) (*pagination.PageResponse[models.Account], error)
	getAccountByIDFn func(accountID string) (*models.Account, error)
	updateAccountFn  func(accountID string, fields services.AccountUpdateFields) (*models.Account, error)
}

func (m *mockAccountService) CreateAccount(code, name string, accountType models.AccountType, branch, primaryCurrency string) (*models.Account, error) {
	if m.createAccountFn != nil {
		return m.createAccountFn(code, name, accountType, branch, primaryCurrency)
	}
	return &models.Account{}, nil
}

func (m *mockAccountService) GetAccounts(page pagination.PageRequest, accountType *models.AccountType) (*pagination.PageResponse[models.Account], error) {
	if m.getAccountsFn != nil {
		return m.getAccountsFn(page, accountType)
	}
	resp := pagination.NewPageResponse([]models.Account{}, 1, 50, 0)
	return &resp, nil
}

func (m *mockAccountService) GetAccountByID(accountID string) (*models.Account, error) {
	if m.getAccountByIDFn != nil {
		return m.getAccountByIDFn(accountID)
	}
	return &models.Account{}, nil
}

func (m *mockAccountService) UpdateAccount(accountID string, fields services.AccountUpdateFields) (*models.Account, error) {
	if m.updateAccountFn != nil {
		return m.updateAccountFn(accountID, fields)
	}
	return &models.Account{}, nil
}

// --- mock ledger service ---

type mockLedgerService struct {
	createEntryFn   func(accountID string, input services.EntryInput) (*models.LedgerEntry, error)
	createEntriesFn func(accountID string, inputs []services.EntryInput) ([]models.LedgerEntry, error)
	getEntriesFn    func(accountID string, page pagination.PageRequest, filter services.EntryFilter) (*pagination.PageResponse[models.LedgerEntry], error)
	listEntriesFn   func(accountID string, filter services.EntryFilter) ([]models.LedgerEntry, error)
	getEntryByIDFn  func(entryID string) (*models.LedgerEntry, error)
	deleteEntryFn   func(entryID string) error
}

func (m *mockLedgerService) CreateEntry(accountID string, input services.EntryInput) (*models.LedgerEntry, error) {
	if m.createEntryFn != nil {
		return m.createEntryFn(accountID, input)
	}
	return &models.LedgerEntry{}, nil
}

func (m *mockLedgerService) CreateEntries(accountID string, inputs []services.EntryInput) ([]models.LedgerEntry, error) {
	if m.createEntriesFn != nil {
		return m.createEntriesFn(accountID, inputs)
	}
	return []models.LedgerEntry{}, nil
}

func (m *mockLedgerService) GetEntries(accountID string, page pagination.PageRequest, filter services.EntryFilter) (*pagination.PageResponse[models.LedgerEntry], error) {
	if m.getEntriesFn != nil {
		return m.getEntriesFn(accountID, page, filter)
	}
	resp := pagination.NewPageResponse([]models.LedgerEntry{}, 1, 50, 0)
	return &resp, nil
}

func (m *mockLedgerService) ListEntries(accountID string, filter services.EntryFilter) ([]models.LedgerEntry, error) {
	if m.listEntriesFn != nil {
		return m.listEntriesFn(accountID, filter)
	}
	return []models.LedgerEntry{}, nil
}

func (m *mockLedgerService) GetEntryByID(entryID string) (*models.LedgerEntry, error) {
	if m.getEntryByIDFn != nil {
		return m.getEntryByIDFn(entryID)
	}
	return &models.LedgerEntry{}, nil
}

func (m *mockLedgerService) DeleteEntry(entryID string) error {
	if m.deleteEntryFn != nil {
		return m.deleteEntryFn(entryID)
	}
	return nil
}

// --- mock statement service ---

type mockStatementService struct {
	getStatementFn func(accountID string, query services.StatementQuery) (*services.Statement, error)
	computeFn      func(records []map[string]any, mapping ledger.FieldMapping, opts services.ComputeOptions) (*services.ComputeResult, error)
}

func (m *mockStatementService) GetStatement(accountID string, query services.StatementQuery) (*services.Statement, error) {
	if m.getStatementFn != nil {
		return m.getStatementFn(accountID, query)
	}
	return &services.Statement{}, nil
}

func (m *mockStatementService) Compute(records []map[string]any, mapping ledger.FieldMapping, opts services.ComputeOptions) (*services.ComputeResult, error) {
	if m.computeFn != nil {
		return m.computeFn(records, mapping, opts)
	}
	return &services.ComputeResult{}, nil
}

// --- mock audit service ---

type mockAuditService struct {
	actions []string
}

func (m *mockAuditService) Log(action, _, _, _ string, _ map[string]any) {
	m.actions = append(m.actions, action)
}

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

// verify interface compliance
var (
	_ services.AccountServicer   = (*mockAccountService)(nil)
	_ services.LedgerServicer    = (*mockLedgerService)(nil)
	_ services.StatementServicer = (*mockStatementService)(nil)
	_ services.AuditServicer     = (*mockAuditService)(nil)
)
