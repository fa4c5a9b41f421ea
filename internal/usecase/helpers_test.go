package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iho/estateledger/internal/adapter/repository/memory"
	"github.com/iho/estateledger/internal/domain"
	"github.com/iho/estateledger/internal/usecase"
	"github.com/iho/estateledger/internal/usecase/mocks"
)

var errStoreDown = errors.New("store unavailable")

// flakyStore fails Put for documents selected by failPut.
type flakyStore struct {
	usecase.DocumentStore
	failPut func(docType string, doc *domain.Document) error
}

func (s *flakyStore) Put(ctx context.Context, doc *domain.Document) (string, error) {
	if s.failPut != nil {
		var h struct {
			Type string `json:"type"`
		}
		_ = json.Unmarshal(doc.Body, &h)
		if err := s.failPut(h.Type, doc); err != nil {
			return "", err
		}
	}
	return s.DocumentStore.Put(ctx, doc)
}

type engine struct {
	store        *flakyStore
	metrics      *mocks.MockMetricsRecorder
	cache        *mocks.MockCache
	parties      *usecase.PartyUseCase
	transactions *usecase.TransactionUseCase
	sales        *usecase.SaleUseCase
	invoices     *usecase.InvoiceUseCase
	expenses     *usecase.ExpenseUseCase
	ledger       *usecase.LedgerUseCase
	reports      *usecase.ReportUseCase
}

func newEngine(t *testing.T) *engine {
	t.Helper()

	store := &flakyStore{DocumentStore: memory.NewDocumentStore()}
	idGen := mocks.NewMockIDGenerator()
	metrics := mocks.NewMockMetricsRecorder()
	cache := mocks.NewMockCache()
	logger := zerolog.Nop()

	reports := usecase.NewReportUseCase(store, cache, 0, logger)
	ledger := usecase.NewLedgerUseCase(store, logger, metrics)

	return &engine{
		store:        store,
		metrics:      metrics,
		cache:        cache,
		parties:      usecase.NewPartyUseCase(store, idGen, ledger, logger),
		transactions: usecase.NewTransactionUseCase(store, idGen, reports, logger, metrics),
		sales:        usecase.NewSaleUseCase(store, idGen, reports, logger, metrics),
		invoices:     usecase.NewInvoiceUseCase(store, idGen, reports, logger, metrics),
		expenses:     usecase.NewExpenseUseCase(store, idGen, reports, logger, metrics),
		ledger:       ledger,
		reports:      reports,
	}
}

const project = "proj-1"

func (e *engine) party(t *testing.T, kind domain.PartyKind, balance int64, currency domain.Currency) *domain.Party {
	t.Helper()
	p, err := e.parties.CreateParty(context.Background(), usecase.CreatePartyInput{
		Kind:           kind,
		ProjectID:      project,
		Name:           string(kind) + " party",
		Currency:       currency,
		OpeningBalance: balance,
	})
	require.NoError(t, err)
	return p
}

func (e *engine) balance(t *testing.T, p *domain.Party) int64 {
	t.Helper()
	got, err := e.parties.GetParty(context.Background(), p.Kind(), p.ID)
	require.NoError(t, err)
	return got.Balance
}

func (e *engine) transaction(t *testing.T, transType domain.TransType, from, to *domain.Party, amount int64) *domain.Transaction {
	t.Helper()
	tx, err := e.transactions.CreateTransaction(context.Background(), txInput(transType, from, to, amount))
	require.NoError(t, err)
	return tx
}

func txInput(transType domain.TransType, from, to *domain.Party, amount int64) usecase.CreateTransactionInput {
	return usecase.CreateTransactionInput{
		ProjectID:   project,
		From:        from.ID,
		To:          to.ID,
		Source:      from.Kind(),
		Destination: to.Kind(),
		Amount:      amount,
		Currency:    domain.KES,
		Rate:        decimal.NewFromInt(1),
		TransType:   transType,
		Date:        domain.NewDate(2024, 1, 15),
	}
}

func rate(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
