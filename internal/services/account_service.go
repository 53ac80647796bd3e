package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "bullion/internal/errors"
	"bullion/internal/ledger"
	"bullion/internal/models"
	"bullion/internal/pagination"
)

// accountService handles debtor/creditor profiles.
type accountService struct {
	db              *gorm.DB
	defaultCurrency string
	observer        RegistryObserver
}

// NewAccountService creates a new AccountServicer. Accounts created without
// a primary currency get defaultCurrency. observer, which may be nil, is
// notified after an update since the primary currency shapes statements.
func NewAccountService(db *gorm.DB, defaultCurrency string, observer RegistryObserver) AccountServicer {
	return &accountService{
		db:              db,
		defaultCurrency: ledger.NormalizeCurrency(defaultCurrency),
		observer:        observer,
	}
}

// CreateAccount creates a debtor or creditor account
func (s *accountService) CreateAccount(code, name string, accountType models.AccountType, branch, primaryCurrency string) (*models.Account, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	name = strings.TrimSpace(name)
	if code == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account code is required")
	}
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}
	switch accountType {
	case models.AccountTypeDebtor, models.AccountTypeCreditor:
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account type must be debtor or creditor")
	}

	currency := ledger.NormalizeCurrency(primaryCurrency)
	if currency == "" {
		currency = s.defaultCurrency
	}

	var existing int64
	if err := s.db.Model(&models.Account{}).Where("code = ?", code).Count(&existing).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if existing > 0 {
		return nil, apperrors.ErrDuplicateAccount
	}

	account := &models.Account{
		Code:            code,
		Name:            name,
		Type:            accountType,
		Branch:          strings.TrimSpace(branch),
		PrimaryCurrency: currency,
		IsActive:        true,
	}
	if err := s.db.Create(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return account, nil
}

// GetAccounts lists accounts ordered by code, optionally by type
func (s *accountService) GetAccounts(page pagination.PageRequest, accountType *models.AccountType) (*pagination.PageResponse[models.Account], error) {
	page.Defaults()

	base := s.db.Model(&models.Account{})
	if accountType != nil {
		base = base.Where("type = ?", *accountType)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var accounts []models.Account
	if err := base.Scopes(pagination.Paginate(page)).Order("code ASC").Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(accounts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetAccountByID retrieves an account by ID
func (s *accountService) GetAccountByID(accountID string) (*models.Account, error) {
	if accountID == "" {
		return nil, apperrors.ErrAccountNotFound
	}
	var account models.Account
	if err := s.db.Where("id = ?", accountID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// UpdateAccount applies the non-nil fields to an account
func (s *accountService) UpdateAccount(accountID string, fields AccountUpdateFields) (*models.Account, error) {
	account, err := s.GetAccountByID(accountID)
	if err != nil {
		return nil, err
	}

	if fields.Name != nil {
		name := strings.TrimSpace(*fields.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name cannot be empty")
		}
		account.Name = name
	}
	if fields.Branch != nil {
		account.Branch = strings.TrimSpace(*fields.Branch)
	}
	if fields.PrimaryCurrency != nil {
		currency := ledger.NormalizeCurrency(*fields.PrimaryCurrency)
		if currency == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidCurrency, "primary currency cannot be empty")
		}
		account.PrimaryCurrency = currency
	}
	if fields.Email != nil {
		account.Email = strings.TrimSpace(*fields.Email)
	}
	if fields.Phone != nil {
		account.Phone = strings.TrimSpace(*fields.Phone)
	}
	if fields.IsActive != nil {
		account.IsActive = *fields.IsActive
	}

	if err := s.db.Save(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if s.observer != nil {
		s.observer.Invalidate(account.ID)
	}
	return account, nil
}
