package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/estateledger/internal/domain"
)

// InvoiceUseCase handles supplier invoices.
type InvoiceUseCase struct {
	eventBase
}

// NewInvoiceUseCase creates a new InvoiceUseCase.
func NewInvoiceUseCase(
	store DocumentStore,
	idGen IDGenerator,
	reports ReportInvalidator,
	logger zerolog.Logger,
	metrics MetricsRecorder,
) *InvoiceUseCase {
	return &InvoiceUseCase{eventBase: newEventBase(store, idGen, reports, logger, metrics)}
}

// CreateInvoiceInput represents input for recording an invoice.
type CreateInvoiceInput struct {
	ProjectID   string
	SupplierID  string
	Amount      int64
	Currency    domain.Currency
	Rate        decimal.Decimal
	Date        domain.Date
	Description string
}

func (in CreateInvoiceInput) apply(inv *domain.Invoice) {
	inv.ProjectID = in.ProjectID
	inv.SupplierID = in.SupplierID
	inv.Amount = in.Amount
	inv.Currency = in.Currency
	inv.Rate = in.Rate
	inv.Date = in.Date
	inv.Description = in.Description
}

// CreateInvoice raises the supplier's balance by the converted amount and
// stores the invoice.
func (uc *InvoiceUseCase) CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*domain.Invoice, error) {
	now := time.Now().UTC()

	inv := &domain.Invoice{Meta: uc.newMeta(domain.DocInvoice, input.ProjectID, now)}
	input.apply(inv)
	if err := inv.Validate(); err != nil {
		return nil, err
	}

	supplier, err := resolveParty(ctx, uc.store, domain.PartySupplier, inv.SupplierID)
	if err != nil {
		return nil, err
	}
	delta, err := domain.InvoiceCreated(inv, supplier)
	if err != nil {
		return nil, err
	}

	err = uc.saga("create invoice").
		Add(balanceStep(uc.store, supplier, delta, now)).
		Add(documentStep(uc.store, "invoice", inv)).
		Run(ctx)
	if err != nil {
		return nil, err
	}

	uc.created(ctx, &inv.Meta)
	return inv, nil
}

// GetInvoice retrieves an invoice by ID, archived or not.
func (uc *InvoiceUseCase) GetInvoice(ctx context.Context, id string) (*domain.Invoice, error) {
	inv := &domain.Invoice{}
	if err := load(ctx, uc.store, id, domain.DocInvoice, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// ListInvoices lists Active invoices of a project.
func (uc *InvoiceUseCase) ListInvoices(ctx context.Context, input ListInput) ([]*domain.Invoice, error) {
	return listActive[domain.Invoice](ctx, uc.store, domain.DocInvoice, input)
}

// UpdateInvoice replaces the editable fields without touching balances.
// The amount applied at creation is kept, so archiving still takes back what
// was actually added to the supplier.
func (uc *InvoiceUseCase) UpdateInvoice(ctx context.Context, id string, input CreateInvoiceInput) (*domain.Invoice, error) {
	current := &domain.Invoice{}
	if err := loadActive(ctx, uc.store, id, domain.DocInvoice, current); err != nil {
		return nil, err
	}

	next := &domain.Invoice{}
	input.apply(next)
	replaceHeader(&next.Meta, &current.Meta, time.Now().UTC())
	next.SupplierAmount = current.SupplierAmount
	next.SupplierCurrency = current.SupplierCurrency
	if err := next.Validate(); err != nil {
		return nil, err
	}

	if err := save(ctx, uc.store, next); err != nil {
		return nil, err
	}
	if current.SupplierID != next.SupplierID || current.Amount != next.Amount ||
		current.Currency != next.Currency || !current.Rate.Equal(next.Rate) {
		uc.warnUnreconciled(&next.Meta)
	}
	uc.invalidate(ctx, next.ProjectID)
	return next, nil
}

// ArchiveInvoice marks an invoice Inactive and takes the amount recorded at
// creation back off the supplier's balance. The supplier may itself be
// archived.
func (uc *InvoiceUseCase) ArchiveInvoice(ctx context.Context, id string) (*domain.Invoice, error) {
	inv := &domain.Invoice{}
	if err := loadActive(ctx, uc.store, id, domain.DocInvoice, inv); err != nil {
		return nil, err
	}

	err := uc.archive(ctx, inv, func() (*domain.BalanceDelta, error) {
		supplier := &domain.Party{}
		if err := load(ctx, uc.store, inv.SupplierID, domain.DocSupplier, supplier); err != nil {
			return nil, err
		}
		delta, err := domain.InvoiceArchived(inv, supplier)
		if err != nil {
			return nil, err
		}
		return &delta, nil
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}
