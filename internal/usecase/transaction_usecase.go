package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/estateledger/internal/domain"
)

// TransactionUseCase handles transactions between two parties.
type TransactionUseCase struct {
	eventBase
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(
	store DocumentStore,
	idGen IDGenerator,
	reports ReportInvalidator,
	logger zerolog.Logger,
	metrics MetricsRecorder,
) *TransactionUseCase {
	return &TransactionUseCase{eventBase: newEventBase(store, idGen, reports, logger, metrics)}
}

// CreateTransactionInput represents input for creating a transaction.
type CreateTransactionInput struct {
	ProjectID   string
	From        string
	FromName    string
	To          string
	ToName      string
	Source      domain.PartyKind
	Destination domain.PartyKind
	Amount      int64
	Currency    domain.Currency
	Rate        decimal.Decimal
	TransType   domain.TransType
	Date        domain.Date
	Description string
}

func (in CreateTransactionInput) apply(t *domain.Transaction) {
	t.ProjectID = in.ProjectID
	t.From = in.From
	t.FromName = in.FromName
	t.To = in.To
	t.ToName = in.ToName
	t.Source = in.Source
	t.Destination = in.Destination
	t.Amount = in.Amount
	t.Currency = in.Currency
	t.Rate = in.Rate
	t.TransType = in.TransType
	t.Date = in.Date
	t.Description = in.Description
}

// CreateTransaction resolves both parties, updates their balances, then
// stores the transaction.
func (uc *TransactionUseCase) CreateTransaction(ctx context.Context, input CreateTransactionInput) (*domain.Transaction, error) {
	now := time.Now().UTC()

	tx := &domain.Transaction{Meta: uc.newMeta(domain.DocTransaction, input.ProjectID, now)}
	input.apply(tx)
	if err := tx.Validate(); err != nil {
		return nil, err
	}

	source, err := resolveParty(ctx, uc.store, tx.Source, tx.From)
	if err != nil {
		return nil, err
	}
	destination, err := resolveParty(ctx, uc.store, tx.Destination, tx.To)
	if err != nil {
		return nil, err
	}
	if tx.FromName == "" {
		tx.FromName = source.Name
	}
	if tx.ToName == "" {
		tx.ToName = destination.Name
	}

	deltas, err := domain.TransactionCreated(tx, source, destination)
	if err != nil {
		return nil, err
	}

	err = uc.saga("create transaction").
		Add(balanceStep(uc.store, source, deltas[0], now)).
		Add(balanceStep(uc.store, destination, deltas[1], now)).
		Add(documentStep(uc.store, "transaction", tx)).
		Run(ctx)
	if err != nil {
		return nil, err
	}

	uc.created(ctx, &tx.Meta)
	return tx, nil
}

// GetTransaction retrieves a transaction by ID, archived or not.
func (uc *TransactionUseCase) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	tx := &domain.Transaction{}
	if err := load(ctx, uc.store, id, domain.DocTransaction, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// ListTransactions lists Active transactions of a project.
func (uc *TransactionUseCase) ListTransactions(ctx context.Context, input ListInput) ([]*domain.Transaction, error) {
	return listActive[domain.Transaction](ctx, uc.store, domain.DocTransaction, input)
}

// UpdateTransaction replaces the editable fields. Balances are left as they
// are even when money fields change.
func (uc *TransactionUseCase) UpdateTransaction(ctx context.Context, id string, input CreateTransactionInput) (*domain.Transaction, error) {
	current := &domain.Transaction{}
	if err := loadActive(ctx, uc.store, id, domain.DocTransaction, current); err != nil {
		return nil, err
	}

	next := &domain.Transaction{}
	input.apply(next)
	replaceHeader(&next.Meta, &current.Meta, time.Now().UTC())
	if err := next.Validate(); err != nil {
		return nil, err
	}

	if err := save(ctx, uc.store, next); err != nil {
		return nil, err
	}
	if transactionMoneyChanged(current, next) {
		uc.warnUnreconciled(&next.Meta)
	}
	uc.invalidate(ctx, next.ProjectID)
	return next, nil
}

// ArchiveTransaction marks a transaction Inactive. Balances are not reversed.
func (uc *TransactionUseCase) ArchiveTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	tx := &domain.Transaction{}
	if err := loadActive(ctx, uc.store, id, domain.DocTransaction, tx); err != nil {
		return nil, err
	}
	if err := uc.archive(ctx, tx, nil); err != nil {
		return nil, err
	}
	return tx, nil
}

func transactionMoneyChanged(a, b *domain.Transaction) bool {
	return a.From != b.From || a.To != b.To ||
		a.Source != b.Source || a.Destination != b.Destination ||
		a.Amount != b.Amount || a.Currency != b.Currency ||
		!a.Rate.Equal(b.Rate) || a.TransType != b.TransType
}
