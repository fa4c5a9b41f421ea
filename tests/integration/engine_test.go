package integration

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/estateledger/internal/adapter/repository/postgres"
	"github.com/iho/estateledger/internal/domain"
	"github.com/iho/estateledger/internal/usecase"
	"github.com/iho/estateledger/tests/testutil"
)

// TestEngineOverPostgres runs an invoice lifecycle and a transfer against the
// JSONB store.
func TestEngineOverPostgres(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	logger := zerolog.Nop()

	store := postgres.NewDocumentStore(db.Pool, postgres.NewRetrier(logger))
	idGen := postgres.NewULIDGenerator()
	reports := usecase.NewReportUseCase(store, nil, 0, logger)
	ledger := usecase.NewLedgerUseCase(store, logger, nil)
	parties := usecase.NewPartyUseCase(store, idGen, ledger, logger)
	invoices := usecase.NewInvoiceUseCase(store, idGen, reports, logger, nil)
	transactions := usecase.NewTransactionUseCase(store, idGen, reports, logger, nil)

	project := testutil.ProjectID()
	supplier, err := parties.CreateParty(ctx, usecase.CreatePartyInput{
		Kind: domain.PartySupplier, ProjectID: project, Name: "Bamburi", Currency: domain.KES, OpeningBalance: 500,
	})
	require.NoError(t, err)
	account, err := parties.CreateParty(ctx, usecase.CreatePartyInput{
		Kind: domain.PartyAccount, ProjectID: project, Name: "Main", Currency: domain.KES, OpeningBalance: 5000,
	})
	require.NoError(t, err)

	inv, err := invoices.CreateInvoice(ctx, usecase.CreateInvoiceInput{
		ProjectID:  project,
		SupplierID: supplier.ID,
		Amount:     10,
		Currency:   domain.USD,
		Rate:       decimal.NewFromInt(130),
		Date:       domain.NewDate(2024, 1, 5),
	})
	require.NoError(t, err)

	got, err := parties.GetParty(ctx, domain.PartySupplier, supplier.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1800), got.Balance)

	_, err = invoices.ArchiveInvoice(ctx, inv.ID)
	require.NoError(t, err)
	got, err = parties.GetParty(ctx, domain.PartySupplier, supplier.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), got.Balance)

	_, err = transactions.CreateTransaction(ctx, usecase.CreateTransactionInput{
		ProjectID:   project,
		From:        account.ID,
		To:          supplier.ID,
		Source:      domain.PartyAccount,
		Destination: domain.PartySupplier,
		Amount:      300,
		Currency:    domain.KES,
		Rate:        decimal.NewFromInt(1),
		TransType:   domain.TransWithdraw,
		Date:        domain.NewDate(2024, 1, 10),
	})
	require.NoError(t, err)

	acc, err := parties.GetParty(ctx, domain.PartyAccount, account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4700), acc.Balance)

	l, err := ledger.BuildLedger(ctx, domain.PartySupplier, supplier.ID)
	require.NoError(t, err)
	require.Len(t, l.Entries, 1)
	assert.Equal(t, l.Totals.TotalDebit-l.Totals.TotalCredit, l.Closing())
}
