package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "bullion/internal/errors"
	"bullion/internal/models"
	"bullion/internal/pagination"
	"bullion/internal/services"
)

// AccountHandler handles debtor and creditor profile requests.
type AccountHandler struct {
	accountService services.AccountServicer
	auditService   services.AuditServicer
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService services.AccountServicer, auditService services.AuditServicer) *AccountHandler {
	return &AccountHandler{accountService: accountService, auditService: auditService}
}

// CreateAccountRequest represents the request payload for creating an account
type CreateAccountRequest struct {
	Code            string             `json:"code" binding:"required,min=1,max=32"`
	Name            string             `json:"name" binding:"required,min=1,max=100"`
	Type            models.AccountType `json:"type" binding:"required,account_type"`
	Branch          string             `json:"branch" binding:"max=100"`
	PrimaryCurrency string             `json:"primary_currency" binding:"omitempty,currency_code"`
}

// UpdateAccountRequest represents the request payload for updating an account.
// Omitted fields are left unchanged.
type UpdateAccountRequest struct {
	Name            *string `json:"name" binding:"omitempty,min=1,max=100"`
	Branch          *string `json:"branch" binding:"omitempty,max=100"`
	PrimaryCurrency *string `json:"primary_currency" binding:"omitempty,currency_code"`
	Email           *string `json:"email" binding:"omitempty,email"`
	Phone           *string `json:"phone" binding:"omitempty,max=32"`
	IsActive        *bool   `json:"is_active"`
}

// AccountResponse wraps a single account.
type AccountResponse struct {
	Account models.Account `json:"account"`
}

// CreateAccount handles the creation of a debtor or creditor account
// @Summary     Create an account
// @Description Create a debtor or creditor profile
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Param       request body CreateAccountRequest true "Account details"
// @Success     201 {object} AccountResponse "Account created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Duplicate account code"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts [post]
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	account, err := h.accountService.CreateAccount(req.Code, req.Name, req.Type, req.Branch, req.PrimaryCurrency)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("CREATE_ACCOUNT", "account", account.ID, c.ClientIP(),
		map[string]any{"code": account.Code, "type": account.Type})

	c.JSON(http.StatusCreated, AccountResponse{Account: *account})
}

// GetAccounts lists accounts
// @Summary     List accounts
// @Description Get a paginated list of accounts ordered by code
// @Tags        accounts
// @Produce     json
// @Param       type      query string false "Filter by account type (debtor, creditor)"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 50, max 500)"
// @Success     200 {object} pagination.PageResponse[models.Account] "Paginated accounts"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts [get]
func (h *AccountHandler) GetAccounts(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var accountType *models.AccountType
	if v := c.Query("type"); v != "" {
		t := models.AccountType(v)
		if t != models.AccountTypeDebtor && t != models.AccountTypeCreditor {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be debtor or creditor"))
			return
		}
		accountType = &t
	}

	result, err := h.accountService.GetAccounts(page, accountType)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAccountByID handles the retrieval of a single account
// @Summary     Get an account
// @Tags        accounts
// @Produce     json
// @Param       id path string true "Account ID"
// @Success     200 {object} AccountResponse "Account"
// @Failure     400 {object} ErrorResponse "Invalid account ID"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /accounts/{id} [get]
func (h *AccountHandler) GetAccountByID(c *gin.Context) {
	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	account, err := h.accountService.GetAccountByID(accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, AccountResponse{Account: *account})
}

// UpdateAccount handles partial updates of an account
// @Summary     Update an account
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Param       id      path string               true "Account ID"
// @Param       request body UpdateAccountRequest true "Fields to update"
// @Success     200 {object} AccountResponse "Updated account"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/{id} [put]
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	account, err := h.accountService.UpdateAccount(accountID, services.AccountUpdateFields{
		Name:            req.Name,
		Branch:          req.Branch,
		PrimaryCurrency: req.PrimaryCurrency,
		Email:           req.Email,
		Phone:           req.Phone,
		IsActive:        req.IsActive,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	changes := map[string]any{}
	if req.Name != nil {
		changes["name"] = *req.Name
	}
	if req.PrimaryCurrency != nil {
		changes["primary_currency"] = *req.PrimaryCurrency
	}
	if req.IsActive != nil {
		changes["is_active"] = *req.IsActive
	}
	h.auditService.Log("UPDATE_ACCOUNT", "account", account.ID, c.ClientIP(), changes)

	c.JSON(http.StatusOK, AccountResponse{Account: *account})
}
