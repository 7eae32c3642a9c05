package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"finance_webapp/internal/domain"
	"finance_webapp/internal/logger"
	"finance_webapp/internal/repository"

	"github.com/oklog/ulid/v2"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200

	// summaryPageSize bounds each store round trip while Summary walks a listing.
	summaryPageSize = 200
)

// TransactionService is the only entry point the HTTP layer uses. Every
// method is scoped to one user.
type TransactionService struct {
	store     repository.TransactionStore
	validator *TransactionValidator

	defaultLimit int
	maxLimit     int

	now   func() time.Time
	newID func() string
}

// NewTransactionService creates a service with the default page limits.
func NewTransactionService(store repository.TransactionStore, validator *TransactionValidator) *TransactionService {
	return NewTransactionServiceWithLimits(store, validator, DefaultListLimit, MaxListLimit)
}

func NewTransactionServiceWithLimits(store repository.TransactionStore, validator *TransactionValidator, defaultLimit, maxLimit int) *TransactionService {
	if validator == nil {
		validator = NewTransactionValidator()
	}
	if defaultLimit <= 0 {
		defaultLimit = DefaultListLimit
	}
	if maxLimit < defaultLimit {
		maxLimit = defaultLimit
	}
	return &TransactionService{
		store:        store,
		validator:    validator,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		now:          time.Now,
		newID:        func() string { return ulid.Make().String() },
	}
}

// Create validates in and stores a new record. Nothing is written when
// validation fails.
func (s *TransactionService) Create(ctx context.Context, userID string, in CreateTransactionInput) (*domain.Transaction, error) {
	in, err := s.validator.ValidateCreate(in)
	if err != nil {
		return nil, err
	}

	tx := &domain.Transaction{
		UserID:      userID,
		ID:          s.newID(),
		Timestamp:   in.Date + "T12:00:00.000Z",
		Date:        in.Date,
		YearMonth:   in.Date[:7],
		Kind:        in.Kind,
		Direction:   in.Direction,
		Mode:        in.Mode,
		Description: in.Description,
		Currency:    in.Currency,
		AmountCents: in.AmountCents,
	}
	repository.BuildKeys(tx)

	if err := s.store.Put(ctx, tx); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	logger.Debug("transaction created", "user_id", userID, "sk", tx.SK, "kind", tx.Kind)
	return tx, nil
}

// List returns one page, newest first. Only one filter dimension is applied:
// month, then direction, then mode.
func (s *TransactionService) List(ctx context.Context, userID string, filter domain.ListFilter) (domain.Page, error) {
	limit, err := s.clampLimit(filter.Limit)
	if err != nil {
		return domain.Page{}, err
	}
	opts := repository.QueryOptions{Limit: limit, Descending: true, Cursor: filter.Cursor}

	p, value, err := projectionFor(filter)
	if err != nil {
		return domain.Page{}, err
	}

	var page domain.Page
	if p == "" {
		page, err = s.store.QueryByPrimary(ctx, userID, opts)
	} else {
		page, err = s.store.QueryByProjection(ctx, p, repository.ProjectionKey(p, userID, value), opts)
	}
	if err != nil {
		return domain.Page{}, fmt.Errorf("list transactions: %w", err)
	}
	if page.Items == nil {
		page.Items = []*domain.Transaction{}
	}
	return page, nil
}

func (s *TransactionService) Get(ctx context.Context, userID, sortKey string) (*domain.Transaction, error) {
	tx, err := s.store.Get(ctx, userID, sortKey)
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

// Update applies patch to an existing record. An empty patch succeeds without
// touching the store. The mode is not checked against the stored kind.
func (s *TransactionService) Update(ctx context.Context, userID, sortKey string, patch domain.TransactionPatch) error {
	if patch.IsEmpty() {
		return nil
	}
	if err := s.validator.ValidatePatch(patch); err != nil {
		return err
	}
	if err := s.store.UpdateFields(ctx, userID, sortKey, patch); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return nil
}

// Delete removes the record. Deleting a key that does not exist succeeds.
func (s *TransactionService) Delete(ctx context.Context, userID, sortKey string) error {
	existed, err := s.store.Delete(ctx, userID, sortKey)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if !existed {
		logger.Debug("delete of missing transaction", "user_id", userID, "sk", sortKey)
	}
	return nil
}

type CurrencyTotals struct {
	IncomeCents  int64  `json:"incomeCents"`
	ExpenseCents int64  `json:"expenseCents"`
	BalanceCents int64  `json:"balanceCents"`
	Balance      string `json:"balance"`
}

type Summary struct {
	Currencies map[string]*CurrencyTotals `json:"currencies"`
	Count      int                        `json:"count"`
}

// Summary totals every record matching filter, grouped by currency. Amounts
// in different currencies are never added together.
func (s *TransactionService) Summary(ctx context.Context, userID string, filter domain.ListFilter) (*Summary, error) {
	out := &Summary{Currencies: map[string]*CurrencyTotals{}}

	filter.Limit = summaryPageSize
	filter.Cursor = ""
	for {
		page, err := s.List(ctx, userID, filter)
		if err != nil {
			return nil, err
		}
		for _, tx := range page.Items {
			totals, ok := out.Currencies[tx.Currency]
			if !ok {
				totals = &CurrencyTotals{}
				out.Currencies[tx.Currency] = totals
			}
			if tx.Direction == domain.DirectionCredit {
				totals.IncomeCents += tx.AmountCents
			} else {
				totals.ExpenseCents += tx.AmountCents
			}
			out.Count++
		}
		if page.NextCursor == "" {
			break
		}
		filter.Cursor = page.NextCursor
	}

	for _, totals := range out.Currencies {
		totals.BalanceCents = totals.IncomeCents - totals.ExpenseCents
		totals.Balance = domain.FormatCents(totals.BalanceCents)
	}
	return out, nil
}

// CurrencyCodes returns the currency codes of a summary in a stable order.
func (s *Summary) CurrencyCodes() []string {
	codes := make([]string, 0, len(s.Currencies))
	for code := range s.Currencies {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func (s *TransactionService) clampLimit(limit int) (int, error) {
	switch {
	case limit < 0:
		return 0, &ValidationError{Fields: []FieldError{{Field: "limit", Message: "must not be negative"}}}
	case limit == 0:
		return s.defaultLimit, nil
	case limit > s.maxLimit:
		return s.maxLimit, nil
	}
	return limit, nil
}

func projectionFor(f domain.ListFilter) (repository.Projection, string, error) {
	switch {
	case f.Month != "":
		if _, err := time.Parse("2006-01", f.Month); err != nil || len(f.Month) != 7 {
			return "", "", &ValidationError{Fields: []FieldError{{Field: "month", Message: "must be formatted YYYY-MM"}}}
		}
		return repository.ProjectionYearMonth, f.Month, nil
	case f.Direction != "":
		if !f.Direction.Valid() {
			return "", "", &ValidationError{Fields: []FieldError{{Field: "direction", Message: "must be one of: credit, debit"}}}
		}
		return repository.ProjectionDirection, f.Direction.Code(), nil
	case f.Mode != "":
		if !f.Mode.Valid() {
			return "", "", &ValidationError{Fields: []FieldError{{Field: "mode", Message: "is not a known payment method"}}}
		}
		return repository.ProjectionMode, string(f.Mode), nil
	}
	return "", "", nil
}
