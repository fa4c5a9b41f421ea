package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/estateledger/internal/domain"
)

// SaleUseCase handles house sales.
type SaleUseCase struct {
	eventBase
}

// NewSaleUseCase creates a new SaleUseCase.
func NewSaleUseCase(
	store DocumentStore,
	idGen IDGenerator,
	reports ReportInvalidator,
	logger zerolog.Logger,
	metrics MetricsRecorder,
) *SaleUseCase {
	return &SaleUseCase{eventBase: newEventBase(store, idGen, reports, logger, metrics)}
}

// CreateSaleInput represents input for recording a sale.
type CreateSaleInput struct {
	ProjectID  string
	ClientID   string
	AgentID    string
	HouseNo    string
	Price      int64
	Commission int64
	Currency   domain.Currency
	Rate       decimal.Decimal
	Date       domain.Date
}

func (in CreateSaleInput) apply(s *domain.Sale) {
	s.ProjectID = in.ProjectID
	s.ClientID = in.ClientID
	s.AgentID = in.AgentID
	s.HouseNo = in.HouseNo
	s.Price = in.Price
	s.Commission = in.Commission
	s.Currency = in.Currency
	s.Rate = in.Rate
	s.Date = in.Date
}

// CreateSale lowers the client's balance by the price and stores the sale.
// The agent, when given, must exist but its balance is not touched.
func (uc *SaleUseCase) CreateSale(ctx context.Context, input CreateSaleInput) (*domain.Sale, error) {
	now := time.Now().UTC()

	sale := &domain.Sale{Meta: uc.newMeta(domain.DocSale, input.ProjectID, now)}
	input.apply(sale)
	if err := sale.Validate(); err != nil {
		return nil, err
	}

	client, err := resolveParty(ctx, uc.store, domain.PartyClient, sale.ClientID)
	if err != nil {
		return nil, err
	}
	if sale.AgentID != "" {
		if _, err := resolveParty(ctx, uc.store, domain.PartyAgent, sale.AgentID); err != nil {
			return nil, err
		}
	}

	err = uc.saga("create sale").
		Add(balanceStep(uc.store, client, domain.SaleCreated(sale, client), now)).
		Add(documentStep(uc.store, "sale", sale)).
		Run(ctx)
	if err != nil {
		return nil, err
	}

	uc.created(ctx, &sale.Meta)
	return sale, nil
}

// GetSale retrieves a sale by ID, archived or not.
func (uc *SaleUseCase) GetSale(ctx context.Context, id string) (*domain.Sale, error) {
	sale := &domain.Sale{}
	if err := load(ctx, uc.store, id, domain.DocSale, sale); err != nil {
		return nil, err
	}
	return sale, nil
}

// ListSales lists Active sales of a project.
func (uc *SaleUseCase) ListSales(ctx context.Context, input ListInput) ([]*domain.Sale, error) {
	return listActive[domain.Sale](ctx, uc.store, domain.DocSale, input)
}

// UpdateSale replaces the editable fields without touching balances.
func (uc *SaleUseCase) UpdateSale(ctx context.Context, id string, input CreateSaleInput) (*domain.Sale, error) {
	current := &domain.Sale{}
	if err := loadActive(ctx, uc.store, id, domain.DocSale, current); err != nil {
		return nil, err
	}

	next := &domain.Sale{}
	input.apply(next)
	replaceHeader(&next.Meta, &current.Meta, time.Now().UTC())
	if err := next.Validate(); err != nil {
		return nil, err
	}

	if err := save(ctx, uc.store, next); err != nil {
		return nil, err
	}
	if current.ClientID != next.ClientID || current.Price != next.Price || current.Currency != next.Currency {
		uc.warnUnreconciled(&next.Meta)
	}
	uc.invalidate(ctx, next.ProjectID)
	return next, nil
}

// ArchiveSale marks a sale Inactive. The client balance is not restored.
func (uc *SaleUseCase) ArchiveSale(ctx context.Context, id string) (*domain.Sale, error) {
	sale := &domain.Sale{}
	if err := loadActive(ctx, uc.store, id, domain.DocSale, sale); err != nil {
		return nil, err
	}
	if err := uc.archive(ctx, sale, nil); err != nil {
		return nil, err
	}
	return sale, nil
}
