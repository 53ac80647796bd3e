package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	apperrors "bullion/internal/errors"
	"bullion/internal/ledger"
	"bullion/internal/models"
	"bullion/internal/pagination"
)

// RegistryObserver is notified after an account's registry changes.
type RegistryObserver interface {
	Invalidate(accountID string)
}

// ledgerService handles registry persistence.
type ledgerService struct {
	db             *gorm.DB
	accountService AccountServicer
	observer       RegistryObserver
}

// NewLedgerService creates a new LedgerServicer. observer may be nil.
func NewLedgerService(db *gorm.DB, accountService AccountServicer, observer RegistryObserver) LedgerServicer {
	return &ledgerService{
		db:             db,
		accountService: accountService,
		observer:       observer,
	}
}

// CreateEntry appends a row to an account's registry
func (s *ledgerService) CreateEntry(accountID string, input EntryInput) (*models.LedgerEntry, error) {
	entry, err := newEntry(accountID, input)
	if err != nil {
		return nil, err
	}

	if _, err := s.writableAccount(accountID); err != nil {
		return nil, err
	}

	if err := s.db.Create(entry).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.notify(accountID)
	return entry, nil
}

// CreateEntries appends rows in a single database transaction. Either all
// rows are written or none.
func (s *ledgerService) CreateEntries(accountID string, inputs []EntryInput) ([]models.LedgerEntry, error) {
	if len(inputs) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "at least one entry is required")
	}

	entries := make([]models.LedgerEntry, 0, len(inputs))
	for i, input := range inputs {
		entry, err := newEntry(accountID, input)
		if err != nil {
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) {
				return nil, apperrors.WithMessage(appErr, fmt.Sprintf("entry %d: %s", i, appErr.Message))
			}
			return nil, err
		}
		entries = append(entries, *entry)
	}

	if _, err := s.writableAccount(accountID); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&entries).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(accountID)
	return entries, nil
}

// GetEntries retrieves a paginated, filtered registry, most recent first
func (s *ledgerService) GetEntries(accountID string, page pagination.PageRequest, filter EntryFilter) (*pagination.PageResponse[models.LedgerEntry], error) {
	if _, err := s.accountService.GetAccountByID(accountID); err != nil {
		return nil, err
	}

	page.Defaults()

	base := s.db.Model(&models.LedgerEntry{}).Where("account_id = ?", accountID)
	base = applyEntryFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var entries []models.LedgerEntry
	if err := base.Scopes(pagination.Paginate(page)).
		Order("transaction_date DESC, id DESC").
		Find(&entries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(entries, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// ListEntries returns every matching row in chronological order. Rows with
// the same date keep insertion order.
func (s *ledgerService) ListEntries(accountID string, filter EntryFilter) ([]models.LedgerEntry, error) {
	if _, err := s.accountService.GetAccountByID(accountID); err != nil {
		return nil, err
	}

	q := applyEntryFilters(s.db.Where("account_id = ?", accountID), filter)

	var entries []models.LedgerEntry
	if err := q.Order("transaction_date ASC, id ASC").Find(&entries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if entries == nil {
		entries = []models.LedgerEntry{}
	}
	return entries, nil
}

// GetEntryByID retrieves a single registry row
func (s *ledgerService) GetEntryByID(entryID string) (*models.LedgerEntry, error) {
	if entryID == "" {
		return nil, apperrors.ErrLedgerEntryNotFound
	}
	var entry models.LedgerEntry
	if err := s.db.Where("id = ?", entryID).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrLedgerEntryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &entry, nil
}

// DeleteEntry soft-deletes a registry row
func (s *ledgerService) DeleteEntry(entryID string) error {
	entry, err := s.GetEntryByID(entryID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(entry).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.notify(entry.AccountID)
	return nil
}

func (s *ledgerService) writableAccount(accountID string) (*models.Account, error) {
	account, err := s.accountService.GetAccountByID(accountID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, apperrors.ErrAccountInactive
	}
	return account, nil
}

func (s *ledgerService) notify(accountID string) {
	if s.observer != nil {
		s.observer.Invalidate(accountID)
	}
}

// newEntry validates input and builds the row to persist. Negative amounts
// are stored as given.
func newEntry(accountID string, input EntryInput) (*models.LedgerEntry, error) {
	if input.TransactionDate.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction date is required")
	}
	assetType := ledger.NormalizeCurrency(input.AssetType)
	if assetType == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidCurrency, "asset type is required")
	}

	return &models.LedgerEntry{
		AccountID:       accountID,
		TransactionDate: input.TransactionDate.UTC(),
		AssetType:       assetType,
		Debit:           input.Debit,
		Credit:          input.Credit,
		Reference:       strings.TrimSpace(input.Reference),
		Description:     strings.TrimSpace(input.Description),
		Branch:          strings.TrimSpace(input.Branch),
		Type:            strings.ToUpper(strings.TrimSpace(input.Type)),
	}, nil
}

func applyEntryFilters(q *gorm.DB, f EntryFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("transaction_date >= ?", f.FromDate.UTC())
	}
	if f.ToDate != nil {
		q = q.Where("transaction_date <= ?", f.ToDate.UTC())
	}
	if f.AssetType != nil {
		q = q.Where("asset_type = ?", ledger.NormalizeCurrency(*f.AssetType))
	}
	if f.Type != nil {
		q = q.Where("type = ?", strings.ToUpper(*f.Type))
	}
	if f.Branch != nil {
		q = q.Where("branch = ?", *f.Branch)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("(LOWER(reference) LIKE ? OR LOWER(description) LIKE ?)", like, like)
	}
	return q
}
