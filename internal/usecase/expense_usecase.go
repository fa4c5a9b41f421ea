package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/estateledger/internal/domain"
)

// ExpenseUseCase handles money spent out of accounts.
type ExpenseUseCase struct {
	eventBase
}

// NewExpenseUseCase creates a new ExpenseUseCase.
func NewExpenseUseCase(
	store DocumentStore,
	idGen IDGenerator,
	reports ReportInvalidator,
	logger zerolog.Logger,
	metrics MetricsRecorder,
) *ExpenseUseCase {
	return &ExpenseUseCase{eventBase: newEventBase(store, idGen, reports, logger, metrics)}
}

// CreateExpenseInput represents input for recording an expense.
type CreateExpenseInput struct {
	ProjectID   string
	AccountID   string
	AccountName string
	Amount      int64
	Currency    domain.Currency
	Rate        decimal.Decimal
	Date        domain.Date
	Description string
}

func (in CreateExpenseInput) apply(e *domain.Expense) {
	e.ProjectID = in.ProjectID
	e.AccountID = in.AccountID
	e.AccountName = in.AccountName
	e.Amount = in.Amount
	e.Currency = in.Currency
	e.Rate = in.Rate
	e.Date = in.Date
	e.Description = in.Description
}

// CreateExpense lowers the account balance by the raw amount and stores the
// expense.
func (uc *ExpenseUseCase) CreateExpense(ctx context.Context, input CreateExpenseInput) (*domain.Expense, error) {
	now := time.Now().UTC()

	exp := &domain.Expense{Meta: uc.newMeta(domain.DocExpense, input.ProjectID, now)}
	input.apply(exp)
	if err := exp.Validate(); err != nil {
		return nil, err
	}

	account, err := resolveParty(ctx, uc.store, domain.PartyAccount, exp.AccountID)
	if err != nil {
		return nil, err
	}
	if exp.AccountName == "" {
		exp.AccountName = account.Name
	}

	err = uc.saga("create expense").
		Add(balanceStep(uc.store, account, domain.ExpenseCreated(exp, account), now)).
		Add(documentStep(uc.store, "expense", exp)).
		Run(ctx)
	if err != nil {
		return nil, err
	}

	uc.created(ctx, &exp.Meta)
	return exp, nil
}

// GetExpense retrieves an expense by ID, archived or not.
func (uc *ExpenseUseCase) GetExpense(ctx context.Context, id string) (*domain.Expense, error) {
	exp := &domain.Expense{}
	if err := load(ctx, uc.store, id, domain.DocExpense, exp); err != nil {
		return nil, err
	}
	return exp, nil
}

// ListExpenses lists Active expenses of a project.
func (uc *ExpenseUseCase) ListExpenses(ctx context.Context, input ListInput) ([]*domain.Expense, error) {
	return listActive[domain.Expense](ctx, uc.store, domain.DocExpense, input)
}

// UpdateExpense replaces the editable fields without touching balances.
func (uc *ExpenseUseCase) UpdateExpense(ctx context.Context, id string, input CreateExpenseInput) (*domain.Expense, error) {
	current := &domain.Expense{}
	if err := loadActive(ctx, uc.store, id, domain.DocExpense, current); err != nil {
		return nil, err
	}

	next := &domain.Expense{}
	input.apply(next)
	replaceHeader(&next.Meta, &current.Meta, time.Now().UTC())
	if next.AccountName == "" && next.AccountID == current.AccountID {
		next.AccountName = current.AccountName
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}

	if err := save(ctx, uc.store, next); err != nil {
		return nil, err
	}
	if current.AccountID != next.AccountID || current.Amount != next.Amount || current.Currency != next.Currency {
		uc.warnUnreconciled(&next.Meta)
	}
	uc.invalidate(ctx, next.ProjectID)
	return next, nil
}

// ArchiveExpense marks an expense Inactive. The account balance is not
// restored.
func (uc *ExpenseUseCase) ArchiveExpense(ctx context.Context, id string) (*domain.Expense, error) {
	exp := &domain.Expense{}
	if err := loadActive(ctx, uc.store, id, domain.DocExpense, exp); err != nil {
		return nil, err
	}
	if err := uc.archive(ctx, exp, nil); err != nil {
		return nil, err
	}
	return exp, nil
}
