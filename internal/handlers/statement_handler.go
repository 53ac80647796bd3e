package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "bullion/internal/errors"
	"bullion/internal/ledger"
	"bullion/internal/pagination"
	"bullion/internal/services"
	"bullion/internal/validator"
)

// StatementHandler handles running-balance statement requests.
type StatementHandler struct {
	statementService services.StatementServicer
}

// NewStatementHandler creates a new StatementHandler.
func NewStatementHandler(statementService services.StatementServicer) *StatementHandler {
	return &StatementHandler{statementService: statementService}
}

// ComputeRequest carries caller-supplied registry records.
type ComputeRequest struct {
	Records          []map[string]any    `json:"records" binding:"required"`
	Mapping          ledger.FieldMapping `json:"mapping"`
	Currencies       []string            `json:"currencies" binding:"omitempty,dive,currency_code"`
	ExcludeTypes     []string            `json:"exclude_types"`
	FallbackCurrency string              `json:"fallback_currency" binding:"omitempty,currency_code"`
	UnknownCurrency  string              `json:"unknown_currency" binding:"omitempty,unknown_policy"`
	Order            string              `json:"order" binding:"omitempty,statement_order"`
}

// GetStatement returns an account's registry with per-currency running balances
// @Summary     Get an account statement
// @Description Rows carry the running balance of their currency. Entries before from_date fold into opening balances.
// @Tags        statements
// @Produce     json
// @Param       id         path  string true  "Account ID"
// @Param       currencies query string false "Comma-separated tracked currencies (default from configuration)"
// @Param       from_date  query string false "Start date (RFC3339 or YYYY-MM-DD)"
// @Param       to_date    query string false "End date, inclusive (RFC3339 or YYYY-MM-DD)"
// @Param       branch     query string false "Filter by branch"
// @Param       search     query string false "Search reference and description"
// @Param       order      query string false "Display order: desc (default) or asc"
// @Param       page       query int    false "Page number (default 1)"
// @Param       page_size  query int    false "Rows per page (default 50, max 500)"
// @Success     200 {object} services.Statement "Statement"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     422 {object} ErrorResponse "Invalid ledger data"
// @Router      /accounts/{id}/statement [get]
func (h *StatementHandler) GetStatement(c *gin.Context) {
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

	currencies := splitQueryList(c, "currencies")
	for _, code := range currencies {
		if !validator.IsCurrencyCode(code) {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidCurrency, "unsupported currency "+code))
			return
		}
	}

	from, err := parseDateParam(c, "from_date", false)
	if err != nil {
		respondWithError(c, err)
		return
	}
	to, err := parseDateParam(c, "to_date", true)
	if err != nil {
		respondWithError(c, err)
		return
	}

	statement, err := h.statementService.GetStatement(accountID, services.StatementQuery{
		Currencies: currencies,
		FromDate:   from,
		ToDate:     to,
		Branch:     c.Query("branch"),
		Search:     c.Query("search"),
		Order:      c.Query("order"),
		Page:       page,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, statement)
}

// Compute aggregates registry records supplied in the request body
// @Summary     Compute a statement from records
// @Description Stateless aggregation over loosely typed registry records. Nothing is stored.
// @Tags        statements
// @Accept      json
// @Produce     json
// @Param       request body ComputeRequest true "Records and options"
// @Success     200 {object} services.ComputeResult "Computed statement"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     422 {object} ErrorResponse "Invalid ledger data"
// @Router      /statements/compute [post]
func (h *StatementHandler) Compute(c *gin.Context) {
	var req ComputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	policy, err := ledger.ParseUnknownCurrencyPolicy(req.UnknownCurrency)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if req.UnknownCurrency == "" {
		policy = ""
	}

	result, err := h.statementService.Compute(req.Records, req.Mapping, services.ComputeOptions{
		Currencies:       req.Currencies,
		ExcludeTypes:     req.ExcludeTypes,
		FallbackCurrency: req.FallbackCurrency,
		UnknownCurrency:  policy,
		Order:            req.Order,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
