package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/estateledger/internal/domain"
)

// LedgerUseCase reconstructs party ledgers from stored events.
type LedgerUseCase struct {
	store   DocumentStore
	logger  zerolog.Logger
	metrics MetricsRecorder
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(store DocumentStore, logger zerolog.Logger, metrics MetricsRecorder) *LedgerUseCase {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &LedgerUseCase{
		store:   store,
		logger:  logger,
		metrics: metrics,
	}
}

// BuildLedger returns the running ledger of an Active party.
func (uc *LedgerUseCase) BuildLedger(ctx context.Context, kind domain.PartyKind, id string) (*domain.Ledger, error) {
	_, ledger, err := uc.build(ctx, kind, id)
	return ledger, err
}

func (uc *LedgerUseCase) build(ctx context.Context, kind domain.PartyKind, id string) (*domain.Party, *domain.Ledger, error) {
	start := time.Now()

	party, err := resolveParty(ctx, uc.store, kind, id)
	if err != nil {
		return nil, nil, err
	}

	lines, err := uc.transactionLines(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	var commissions *int64
	switch kind {
	case domain.PartyClient:
		sales, err := findAll[domain.Sale](ctx, uc.store, eventQuery(domain.DocSale, "clientId", id))
		if err != nil {
			return nil, nil, err
		}
		for _, s := range sales {
			lines = append(lines, domain.SaleLine(s))
		}

	case domain.PartySupplier:
		invoices, err := findAll[domain.Invoice](ctx, uc.store, eventQuery(domain.DocInvoice, "supplierId", id))
		if err != nil {
			return nil, nil, err
		}
		for _, inv := range invoices {
			lines = append(lines, domain.InvoiceLine(inv))
		}

	case domain.PartyAgent:
		sales, err := findAll[domain.Sale](ctx, uc.store, eventQuery(domain.DocSale, "agentId", id))
		if err != nil {
			return nil, nil, err
		}
		var total int64
		for _, s := range sales {
			lines = append(lines, domain.CommissionLine(s))
			c, err := domain.Convert(s.Commission, s.Currency, party.Currency, s.Rate)
			if err != nil {
				return nil, nil, fmt.Errorf("sale %s: %w", s.ID, err)
			}
			total += c
		}
		commissions = &total

		memos, err := uc.clientMemoLines(ctx, id, sales)
		if err != nil {
			return nil, nil, err
		}
		lines = append(lines, memos...)
	}

	ledger, err := domain.BuildLedger(party, lines)
	if err != nil {
		return nil, nil, err
	}
	ledger.Totals.TotalCommissions = commissions

	uc.metrics.LedgerBuilt(kind, len(ledger.Entries), time.Since(start))
	uc.logger.Debug().
		Str("party_kind", string(kind)).
		Str("party_id", id).
		Int("entries", len(ledger.Entries)).
		Int64("difference", ledger.Totals.Difference).
		Msg("ledger built")
	return party, ledger, nil
}

// transactionLines renders every Active transaction with id on either end.
func (uc *LedgerUseCase) transactionLines(ctx context.Context, id string) ([]domain.LedgerLine, error) {
	txs, err := uc.transactionsOf(ctx, id)
	if err != nil {
		return nil, err
	}
	lines := make([]domain.LedgerLine, 0, len(txs))
	for _, t := range txs {
		lines = append(lines, domain.TransactionLine(t, id))
	}
	return lines, nil
}

func (uc *LedgerUseCase) transactionsOf(ctx context.Context, id string) ([]*domain.Transaction, error) {
	from, err := findAll[domain.Transaction](ctx, uc.store, eventQuery(domain.DocTransaction, "from", id))
	if err != nil {
		return nil, err
	}
	to, err := findAll[domain.Transaction](ctx, uc.store, eventQuery(domain.DocTransaction, "to", id))
	if err != nil {
		return nil, err
	}
	return append(from, to...), nil
}

// clientMemoLines lists the transactions of every client the agent sold to.
// They are informational and do not move the agent's balance. Transactions
// with the agent on either end already have a line of their own.
func (uc *LedgerUseCase) clientMemoLines(ctx context.Context, agentID string, sales []*domain.Sale) ([]domain.LedgerLine, error) {
	seen := make(map[string]bool)
	added := make(map[string]bool)
	var lines []domain.LedgerLine
	for _, s := range sales {
		if seen[s.ClientID] {
			continue
		}
		seen[s.ClientID] = true

		name := s.ClientID
		client := &domain.Party{}
		if err := load(ctx, uc.store, s.ClientID, domain.DocClient, client); err == nil {
			name = client.Name
		}

		txs, err := uc.transactionsOf(ctx, s.ClientID)
		if err != nil {
			return nil, err
		}
		for _, t := range txs {
			if t.From == agentID || t.To == agentID || added[t.ID] {
				continue
			}
			added[t.ID] = true
			lines = append(lines, domain.MemoLine(t, name))
		}
	}
	return lines, nil
}

func eventQuery(docType domain.DocType, field, id string) domain.Query {
	return domain.Query{Selector: domain.Selector{
		"type":  string(docType),
		"state": string(domain.StateActive),
		field:   id,
	}}
}

// Reconcile compares a party's stored balance with the balance its ledger
// implies. A mismatch is reported, not returned as an error.
func (uc *LedgerUseCase) Reconcile(ctx context.Context, kind domain.PartyKind, id string) (*domain.Reconciliation, error) {
	party, ledger, err := uc.build(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	result := &domain.Reconciliation{
		PartyID:         party.ID,
		Kind:            kind,
		RecordedBalance: party.Balance,
		LedgerBalance:   ledger.Totals.Difference,
		Difference:      party.Balance - ledger.Totals.Difference,
		CheckedAt:       time.Now().UTC(),
	}
	result.Reconciled = result.Difference == 0

	if !result.Reconciled {
		uc.logger.Info().
			Str("party_kind", string(kind)).
			Str("party_id", id).
			Int64("difference", result.Difference).
			Msg("party not reconciled")
	}
	return result, nil
}

// ReconciliationReport collects the reconciliation of every Active party in a
// project.
type ReconciliationReport struct {
	ProjectID     string                   `json:"projectId"`
	TotalParties  int                      `json:"totalParties"`
	Reconciled    int                      `json:"reconciled"`
	Discrepancies []*domain.Reconciliation `json:"discrepancies"`
	CheckedAt     time.Time                `json:"checkedAt"`
}

// ReconcileProject reconciles every Active party of the project.
func (uc *LedgerUseCase) ReconcileProject(ctx context.Context, projectID string) (*ReconciliationReport, error) {
	report := &ReconciliationReport{
		ProjectID:     projectID,
		Discrepancies: make([]*domain.Reconciliation, 0),
		CheckedAt:     time.Now().UTC(),
	}

	for _, kind := range []domain.PartyKind{domain.PartyAccount, domain.PartyClient, domain.PartySupplier, domain.PartyAgent} {
		sel, err := activeSelector(kind.DocType(), projectID)
		if err != nil {
			return nil, err
		}
		parties, err := findAll[domain.Party](ctx, uc.store, domain.Query{Selector: sel})
		if err != nil {
			return nil, err
		}
		for _, p := range parties {
			result, err := uc.Reconcile(ctx, kind, p.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to reconcile %s %s: %w", kind, p.ID, err)
			}
			report.TotalParties++
			if result.Reconciled {
				report.Reconciled++
			} else {
				report.Discrepancies = append(report.Discrepancies, result)
			}
		}
	}
	return report, nil
}
