package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/estateledger/internal/domain"
)

// ReportUseCase computes project-wide totals in the base currency.
type ReportUseCase struct {
	store  DocumentStore
	cache  Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewReportUseCase creates a new ReportUseCase. A nil cache disables caching.
func NewReportUseCase(store DocumentStore, cache Cache, ttl time.Duration, logger zerolog.Logger) *ReportUseCase {
	if ttl <= 0 {
		ttl = DefaultReportCacheTTL
	}
	return &ReportUseCase{
		store:  store,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

const (
	totalsReport = "totals"
	incomeReport = "income"
)

func reportKey(report, projectID string) string {
	return fmt.Sprintf("report:%s:%s", report, projectID)
}

// GetAccountTotals sums sales and expenses as credits and invoices and
// deposits as debits.
func (uc *ReportUseCase) GetAccountTotals(ctx context.Context, projectID string) (*domain.AccountTotals, error) {
	if err := requireProject(projectID); err != nil {
		return nil, err
	}

	totals := &domain.AccountTotals{}
	if uc.cached(ctx, reportKey(totalsReport, projectID), totals) {
		return totals, nil
	}

	events, err := uc.loadEvents(ctx, projectID)
	if err != nil {
		return nil, err
	}

	totals = &domain.AccountTotals{ProjectID: projectID, Currency: domain.BaseCurrency}
	for _, s := range events.sales {
		amount, err := toBase(s.Price+s.Commission, s.Currency, s.Rate, &s.Meta)
		if err != nil {
			return nil, err
		}
		totals.TotalCredit += amount
	}
	for _, e := range events.expenses {
		amount, err := toBase(e.Amount, e.Currency, e.Rate, &e.Meta)
		if err != nil {
			return nil, err
		}
		totals.TotalCredit += amount
	}
	for _, inv := range events.invoices {
		amount, err := toBase(inv.Amount, inv.Currency, inv.Rate, &inv.Meta)
		if err != nil {
			return nil, err
		}
		totals.TotalDebit += amount
	}
	for _, t := range events.transactions {
		if t.TransType != domain.TransDeposit {
			continue
		}
		amount, err := toBase(t.Amount, t.Currency, t.Rate, &t.Meta)
		if err != nil {
			return nil, err
		}
		totals.TotalDebit += amount
	}
	totals.TotalBalance = totals.TotalDebit - totals.TotalCredit

	uc.remember(ctx, reportKey(totalsReport, projectID), totals)
	return totals, nil
}

// GenerateIncomeStatement computes revenue, cost, expenses and profit.
func (uc *ReportUseCase) GenerateIncomeStatement(ctx context.Context, projectID string) (*domain.IncomeStatement, error) {
	if err := requireProject(projectID); err != nil {
		return nil, err
	}

	stmt := &domain.IncomeStatement{}
	if uc.cached(ctx, reportKey(incomeReport, projectID), stmt) {
		return stmt, nil
	}

	events, err := uc.loadEvents(ctx, projectID)
	if err != nil {
		return nil, err
	}

	stmt = &domain.IncomeStatement{ProjectID: projectID, Currency: domain.BaseCurrency}
	for _, s := range events.sales {
		price, err := toBase(s.Price, s.Currency, s.Rate, &s.Meta)
		if err != nil {
			return nil, err
		}
		commission, err := toBase(s.Commission, s.Currency, s.Rate, &s.Meta)
		if err != nil {
			return nil, err
		}
		stmt.Revenue += price
		stmt.Cost += commission
	}
	for _, inv := range events.invoices {
		amount, err := toBase(inv.Amount, inv.Currency, inv.Rate, &inv.Meta)
		if err != nil {
			return nil, err
		}
		stmt.Cost += amount
	}
	for _, e := range events.expenses {
		amount, err := toBase(e.Amount, e.Currency, e.Rate, &e.Meta)
		if err != nil {
			return nil, err
		}
		stmt.Expenses += amount
	}
	for _, t := range events.transactions {
		if t.TransType != domain.TransDeposit || t.Source != domain.PartyClient {
			continue
		}
		amount, err := toBase(t.Amount, t.Currency, t.Rate, &t.Meta)
		if err != nil {
			return nil, err
		}
		stmt.TotalAmountPaid += amount
	}
	stmt.GrossProfit = stmt.Revenue - stmt.Cost
	stmt.NetProfit = stmt.Revenue - stmt.Cost - stmt.Expenses

	uc.remember(ctx, reportKey(incomeReport, projectID), stmt)
	return stmt, nil
}

// InvalidateProject deletes the project's cached reports.
func (uc *ReportUseCase) InvalidateProject(ctx context.Context, projectID string) {
	if uc == nil || uc.cache == nil {
		return
	}
	if err := uc.cache.Delete(ctx, reportKey(totalsReport, projectID), reportKey(incomeReport, projectID)); err != nil {
		uc.logger.Warn().Err(err).Str("project_id", projectID).Msg("failed to invalidate report cache")
	}
}

type projectEvents struct {
	sales        []*domain.Sale
	invoices     []*domain.Invoice
	expenses     []*domain.Expense
	transactions []*domain.Transaction
}

// loadEvents expects a non-empty projectID.
func (uc *ReportUseCase) loadEvents(ctx context.Context, projectID string) (*projectEvents, error) {
	var (
		ev  projectEvents
		err error
	)
	query := func(docType domain.DocType) domain.Query {
		return domain.Query{Selector: projectSelector(docType, projectID)}
	}
	if ev.sales, err = findAll[domain.Sale](ctx, uc.store, query(domain.DocSale)); err != nil {
		return nil, err
	}
	if ev.invoices, err = findAll[domain.Invoice](ctx, uc.store, query(domain.DocInvoice)); err != nil {
		return nil, err
	}
	if ev.expenses, err = findAll[domain.Expense](ctx, uc.store, query(domain.DocExpense)); err != nil {
		return nil, err
	}
	if ev.transactions, err = findAll[domain.Transaction](ctx, uc.store, query(domain.DocTransaction)); err != nil {
		return nil, err
	}
	return &ev, nil
}

func toBase(amount int64, currency domain.Currency, rate decimal.Decimal, h *domain.Meta) (int64, error) {
	v, err := domain.Convert(amount, currency, domain.BaseCurrency, rate)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", h.Type, h.ID, err)
	}
	return v, nil
}

func (uc *ReportUseCase) cached(ctx context.Context, key string, v any) bool {
	if uc.cache == nil {
		return false
	}
	b, err := uc.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			uc.logger.Warn().Err(err).Str("key", key).Msg("report cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(b, v); err != nil {
		uc.logger.Warn().Err(err).Str("key", key).Msg("report cache entry unreadable")
		return false
	}
	return true
}

func (uc *ReportUseCase) remember(ctx context.Context, key string, v any) {
	if uc.cache == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := uc.cache.Set(ctx, key, b, uc.ttl); err != nil {
		uc.logger.Warn().Err(err).Str("key", key).Msg("report cache write failed")
	}
}
