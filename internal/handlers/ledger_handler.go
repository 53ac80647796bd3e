package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "bullion/internal/errors"
	"bullion/internal/models"
	"bullion/internal/pagination"
	"bullion/internal/services"
)

// LedgerHandler handles registry requests.
type LedgerHandler struct {
	ledgerService services.LedgerServicer
	auditService  services.AuditServicer
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerService services.LedgerServicer, auditService services.AuditServicer) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService, auditService: auditService}
}

// EntryRequest represents a registry row. Amounts accept JSON numbers or
// decimal strings; gold is recorded in grams.
type EntryRequest struct {
	TransactionDate string          `json:"transaction_date" binding:"required"`
	AssetType       string          `json:"asset_type" binding:"required,currency_code"`
	Debit           decimal.Decimal `json:"debit" swaggertype:"string" example:"0"`
	Credit          decimal.Decimal `json:"credit" swaggertype:"string" example:"1250.50"`
	Reference       string          `json:"reference" binding:"max=100"`
	Description     string          `json:"description" binding:"max=500"`
	Branch          string          `json:"branch" binding:"max=100"`
	Type            string          `json:"type" binding:"max=50"`
}

// BulkEntryRequest represents a batch of registry rows written atomically.
type BulkEntryRequest struct {
	Entries []EntryRequest `json:"entries" binding:"required,min=1,max=1000,dive"`
}

// EntryResponse wraps a single registry row.
type EntryResponse struct {
	Entry models.LedgerEntry `json:"entry"`
}

// EntriesResponse wraps a batch of registry rows.
type EntriesResponse struct {
	Entries []models.LedgerEntry `json:"entries"`
}

func (r EntryRequest) toInput() (services.EntryInput, error) {
	date, err := parseFlexibleTime(r.TransactionDate)
	if err != nil {
		return services.EntryInput{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid transaction_date format, use RFC3339 or YYYY-MM-DD")
	}
	return services.EntryInput{
		TransactionDate: date,
		AssetType:       r.AssetType,
		Debit:           r.Debit,
		Credit:          r.Credit,
		Reference:       r.Reference,
		Description:     r.Description,
		Branch:          r.Branch,
		Type:            r.Type,
	}, nil
}

// CreateEntry handles appending a row to an account's registry
// @Summary     Create a registry entry
// @Tags        registry
// @Accept      json
// @Produce     json
// @Param       id      path string       true "Account ID"
// @Param       request body EntryRequest true "Registry row"
// @Success     201 {object} EntryResponse "Entry created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     409 {object} ErrorResponse "Account inactive"
// @Router      /accounts/{id}/registry [post]
func (h *LedgerHandler) CreateEntry(c *gin.Context) {
	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	entry, err := h.ledgerService.CreateEntry(accountID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("CREATE_LEDGER_ENTRY", "ledger_entry", entry.ID, c.ClientIP(),
		map[string]any{"account_id": accountID, "asset_type": entry.AssetType, "debit": entry.Debit.String(), "credit": entry.Credit.String()})

	c.JSON(http.StatusCreated, EntryResponse{Entry: *entry})
}

// CreateEntries handles bulk registry imports
// @Summary     Bulk create registry entries
// @Description All rows are written in one transaction or none are
// @Tags        registry
// @Accept      json
// @Produce     json
// @Param       id      path string           true "Account ID"
// @Param       request body BulkEntryRequest true "Registry rows"
// @Success     201 {object} EntriesResponse "Entries created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /accounts/{id}/registry/bulk [post]
func (h *LedgerHandler) CreateEntries(c *gin.Context) {
	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BulkEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	inputs := make([]services.EntryInput, 0, len(req.Entries))
	for _, r := range req.Entries {
		input, err := r.toInput()
		if err != nil {
			respondWithError(c, err)
			return
		}
		inputs = append(inputs, input)
	}

	entries, err := h.ledgerService.CreateEntries(accountID, inputs)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("IMPORT_LEDGER_ENTRIES", "account", accountID, c.ClientIP(),
		map[string]any{"count": len(entries)})

	c.JSON(http.StatusCreated, EntriesResponse{Entries: entries})
}

// GetEntries lists an account's registry, most recent first
// @Summary     List registry entries
// @Tags        registry
// @Produce     json
// @Param       id         path  string true  "Account ID"
// @Param       from_date  query string false "Start date (RFC3339 or YYYY-MM-DD)"
// @Param       to_date    query string false "End date, inclusive (RFC3339 or YYYY-MM-DD)"
// @Param       asset_type query string false "Filter by asset type"
// @Param       type       query string false "Filter by transaction type"
// @Param       branch     query string false "Filter by branch"
// @Param       search     query string false "Search reference and description"
// @Param       page       query int    false "Page number (default 1)"
// @Param       page_size  query int    false "Items per page (default 50, max 500)"
// @Success     200 {object} pagination.PageResponse[models.LedgerEntry] "Paginated entries"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /accounts/{id}/registry [get]
func (h *LedgerHandler) GetEntries(c *gin.Context) {
	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := parseEntryFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.ledgerService.GetEntries(accountID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ExportRegistry returns the registry as the flat record array consumed by
// the statement CLI and POST /statements/compute.
// @Summary     Export registry records
// @Tags        registry
// @Produce     json
// @Param       id        path  string true  "Account ID"
// @Param       from_date query string false "Start date (RFC3339 or YYYY-MM-DD)"
// @Param       to_date   query string false "End date, inclusive (RFC3339 or YYYY-MM-DD)"
// @Success     200 {array}  object "Registry records"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /accounts/{id}/registry/export [get]
func (h *LedgerHandler) ExportRegistry(c *gin.Context) {
	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter, err := parseEntryFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	entries, err := h.ledgerService.ListEntries(accountID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	records := make([]map[string]any, 0, len(entries))
	for i := range entries {
		records = append(records, entries[i].ToRecord())
	}
	c.JSON(http.StatusOK, records)
}

// GetEntryByID handles retrieval of a single registry row
// @Summary     Get a registry entry
// @Tags        registry
// @Produce     json
// @Param       id path string true "Entry ID"
// @Success     200 {object} EntryResponse "Entry"
// @Failure     404 {object} ErrorResponse "Entry not found"
// @Router      /registry/{id} [get]
func (h *LedgerHandler) GetEntryByID(c *gin.Context) {
	entryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	entry, err := h.ledgerService.GetEntryByID(entryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, EntryResponse{Entry: *entry})
}

// DeleteEntry handles soft deletion of a registry row
// @Summary     Delete a registry entry
// @Tags        registry
// @Produce     json
// @Param       id path string true "Entry ID"
// @Success     200 {object} MessageResponse "Entry deleted"
// @Failure     404 {object} ErrorResponse "Entry not found"
// @Router      /registry/{id} [delete]
func (h *LedgerHandler) DeleteEntry(c *gin.Context) {
	entryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.ledgerService.DeleteEntry(entryID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("DELETE_LEDGER_ENTRY", "ledger_entry", entryID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Entry deleted successfully"})
}

func parseEntryFilter(c *gin.Context) (services.EntryFilter, error) {
	var filter services.EntryFilter

	from, err := parseDateParam(c, "from_date", false)
	if err != nil {
		return filter, err
	}
	to, err := parseDateParam(c, "to_date", true)
	if err != nil {
		return filter, err
	}
	filter.FromDate = from
	filter.ToDate = to

	if v := strings.TrimSpace(c.Query("asset_type")); v != "" {
		filter.AssetType = &v
	}
	if v := strings.TrimSpace(c.Query("type")); v != "" {
		filter.Type = &v
	}
	if v := strings.TrimSpace(c.Query("branch")); v != "" {
		filter.Branch = &v
	}
	filter.Search = c.Query("search")

	return filter, nil
}
