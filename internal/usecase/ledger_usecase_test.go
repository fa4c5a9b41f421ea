package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/estateledger/internal/domain"
)

func TestLedgerUseCase_SupplierLedger(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	supplier := e.party(t, domain.PartySupplier, 0, domain.KES)
	account := e.party(t, domain.PartyAccount, 100000, domain.KES)

	in := invoiceInput(supplier, 10, domain.USD, "130")
	in.Date = domain.NewDate(2024, 1, 5)
	_, err := e.invoices.CreateInvoice(ctx, in)
	require.NoError(t, err)

	pay := txInput(domain.TransWithdraw, account, supplier, 300)
	pay.Date = domain.NewDate(2024, 1, 10)
	_, err = e.transactions.CreateTransaction(ctx, pay)
	require.NoError(t, err)

	ledger, err := e.ledger.BuildLedger(ctx, domain.PartySupplier, supplier.ID)
	require.NoError(t, err)

	require.Len(t, ledger.Entries, 2)
	assert.Equal(t, domain.DocInvoice, ledger.Entries[0].SourceType)
	assert.Equal(t, int64(1300), ledger.Entries[0].Balance)
	assert.Equal(t, int64(300), ledger.Entries[1].Credit)
	assert.Equal(t, int64(1000), ledger.Closing())
	assert.Equal(t, ledger.Closing(), ledger.Totals.Difference)
	assert.Nil(t, ledger.Totals.TotalCommissions)
	assert.Equal(t, 1, e.metrics.LedgersBuilt[domain.PartySupplier])
}

func TestLedgerUseCase_AccountLedgerIgnoresExpenses(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	a := e.party(t, domain.PartyAccount, 0, domain.KES)
	b := e.party(t, domain.PartyAccount, 0, domain.KES)

	e.transaction(t, domain.TransDeposit, a, b, 700)
	_, err := e.expenses.CreateExpense(ctx, expenseInput(b, 50, domain.KES, "1"))
	require.NoError(t, err)

	ledger, err := e.ledger.BuildLedger(ctx, domain.PartyAccount, b.ID)
	require.NoError(t, err)
	require.Len(t, ledger.Entries, 1)
	assert.Equal(t, int64(700), ledger.Totals.TotalDebit)
}

func TestLedgerUseCase_ArchivedEventsExcluded(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	client := e.party(t, domain.PartyClient, 0, domain.KES)

	sale, err := e.sales.CreateSale(ctx, saleInput(client, nil, 1000, 0))
	require.NoError(t, err)
	_, err = e.sales.CreateSale(ctx, saleInput(client, nil, 400, 0))
	require.NoError(t, err)
	_, err = e.sales.ArchiveSale(ctx, sale.ID)
	require.NoError(t, err)

	ledger, err := e.ledger.BuildLedger(ctx, domain.PartyClient, client.ID)
	require.NoError(t, err)
	require.Len(t, ledger.Entries, 1)
	assert.Equal(t, int64(-400), ledger.Closing())
}

func TestLedgerUseCase_AgentLedger(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	agent := e.party(t, domain.PartyAgent, 0, domain.KES)
	client := e.party(t, domain.PartyClient, 0, domain.KES)
	account := e.party(t, domain.PartyAccount, 0, domain.KES)

	_, err := e.sales.CreateSale(ctx, saleInput(client, agent, 100000, 3000))
	require.NoError(t, err)
	usd := saleInput(client, agent, 1000, 20)
	usd.Currency = domain.USD
	usd.Rate = rate("129.5")
	_, err = e.sales.CreateSale(ctx, usd)
	require.NoError(t, err)

	e.transaction(t, domain.TransDeposit, client, account, 40000)
	e.transaction(t, domain.TransWithdraw, account, agent, 1000)

	ledger, err := e.ledger.BuildLedger(ctx, domain.PartyAgent, agent.ID)
	require.NoError(t, err)

	require.NotNil(t, ledger.Totals.TotalCommissions)
	assert.Equal(t, int64(3000+2590), *ledger.Totals.TotalCommissions)

	var memos int
	for _, l := range ledger.Entries {
		if l.Memo {
			memos++
			assert.Equal(t, int64(40000), l.Amount)
		}
	}
	assert.Equal(t, 1, memos)
	assert.Len(t, ledger.Entries, 4)
	// Commissions are debits, the payout to the agent is a credit.
	assert.Equal(t, int64(3000+2590-1000), ledger.Closing())
}

func TestLedgerUseCase_NotFoundOrInactive(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	_, err := e.ledger.BuildLedger(ctx, domain.PartyClient, "nope")
	require.ErrorIs(t, err, domain.ErrNotFound)

	client := e.party(t, domain.PartyClient, 0, domain.KES)
	_, err = e.parties.ArchiveParty(ctx, domain.PartyClient, client.ID)
	require.NoError(t, err)
	_, err = e.ledger.BuildLedger(ctx, domain.PartyClient, client.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLedgerUseCase_Reconcile(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	supplier := e.party(t, domain.PartySupplier, 0, domain.KES)
	e.party(t, domain.PartyAccount, 0, domain.KES)

	_, err := e.invoices.CreateInvoice(ctx, invoiceInput(supplier, 900, domain.KES, "1"))
	require.NoError(t, err)

	result, err := e.ledger.Reconcile(ctx, domain.PartySupplier, supplier.ID)
	require.NoError(t, err)
	assert.True(t, result.Reconciled)
	assert.Equal(t, int64(900), result.RecordedBalance)

	// Opening balances are not events, so the account does not reconcile.
	seeded := e.party(t, domain.PartyAccount, 250, domain.KES)
	result, err = e.ledger.Reconcile(ctx, domain.PartyAccount, seeded.ID)
	require.NoError(t, err)
	assert.False(t, result.Reconciled)
	assert.Equal(t, int64(250), result.Difference)

	report, err := e.ledger.ReconcileProject(ctx, project)
	require.NoError(t, err)
	assert.Equal(t, 3, report.TotalParties)
	assert.Equal(t, 2, report.Reconciled)
	require.Len(t, report.Discrepancies, 1)
	assert.Equal(t, seeded.ID, report.Discrepancies[0].PartyID)
}

func TestLedgerUseCase_AgentLedger_SharedClientTransactionOnce(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	agent := e.party(t, domain.PartyAgent, 0, domain.KES)
	buyer := e.party(t, domain.PartyClient, 0, domain.KES)
	other := e.party(t, domain.PartyClient, 0, domain.KES)

	_, err := e.sales.CreateSale(ctx, saleInput(buyer, agent, 100000, 3000))
	require.NoError(t, err)
	_, err = e.sales.CreateSale(ctx, saleInput(other, agent, 80000, 2000))
	require.NoError(t, err)
	tx := e.transaction(t, domain.TransDeposit, buyer, other, 500)

	ledger, err := e.ledger.BuildLedger(ctx, domain.PartyAgent, agent.ID)
	require.NoError(t, err)

	var memos []string
	for _, l := range ledger.Entries {
		if l.Memo {
			memos = append(memos, l.SourceID)
		}
	}
	assert.Equal(t, []string{tx.ID}, memos)
	assert.Len(t, ledger.Entries, 3)
}
