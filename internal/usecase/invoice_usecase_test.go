package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/estateledger/internal/domain"
	"github.com/iho/estateledger/internal/usecase"
)

func invoiceInput(supplier *domain.Party, amount int64, currency domain.Currency, r string) usecase.CreateInvoiceInput {
	return usecase.CreateInvoiceInput{
		ProjectID:   project,
		SupplierID:  supplier.ID,
		Amount:      amount,
		Currency:    currency,
		Rate:        rate(r),
		Date:        domain.NewDate(2024, 2, 1),
		Description: "cement",
	}
}

func TestInvoiceUseCase_CreateAndArchive_Symmetric(t *testing.T) {
	tests := []struct {
		name        string
		supplierCur domain.Currency
		start       int64
		amount      int64
		currency    domain.Currency
		rate        string
		afterCreate int64
		changeTo    domain.Currency
	}{
		{"same currency", domain.KES, 700, 1000, domain.KES, "1", 1700, ""},
		{"usd invoice, kes supplier", domain.KES, 700, 3, domain.USD, "129.75", 1089, ""},
		{"kes invoice, usd supplier", domain.USD, 5, 1299, domain.KES, "130", 14, ""},
		{"supplier switches to usd before archive", domain.KES, 1000, 100, domain.USD, "130", 14000, domain.USD},
		{"supplier switches to kes before archive", domain.USD, 20, 1300, domain.KES, "130", 30, domain.KES},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t)
			ctx := context.Background()
			supplier := e.party(t, domain.PartySupplier, tt.start, tt.supplierCur)

			inv, err := e.invoices.CreateInvoice(ctx, invoiceInput(supplier, tt.amount, tt.currency, tt.rate))
			require.NoError(t, err)
			assert.Equal(t, tt.afterCreate, e.balance(t, supplier))
			assert.Equal(t, tt.afterCreate-tt.start, inv.SupplierAmount)
			assert.Equal(t, tt.supplierCur, inv.SupplierCurrency)

			if tt.changeTo != "" {
				cur := tt.changeTo
				_, err = e.parties.UpdateParty(ctx, domain.PartySupplier, supplier.ID, usecase.UpdatePartyInput{Currency: &cur})
				require.NoError(t, err)
			}

			archived, err := e.invoices.ArchiveInvoice(ctx, inv.ID)
			require.NoError(t, err)
			assert.Equal(t, domain.StateInactive, archived.State)
			assert.Equal(t, tt.start, e.balance(t, supplier))
			assert.Equal(t, 1, e.metrics.Reversed)
		})
	}
}

func TestInvoiceUseCase_CreateInvoice_MissingSupplier(t *testing.T) {
	e := newEngine(t)
	ghost := &domain.Party{Meta: domain.Meta{ID: "missing", Type: domain.DocSupplier}}

	_, err := e.invoices.CreateInvoice(context.Background(), invoiceInput(ghost, 100, domain.KES, "1"))
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInvoiceUseCase_ArchiveInvoice_SupplierArchived(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	supplier := e.party(t, domain.PartySupplier, 0, domain.KES)

	inv, err := e.invoices.CreateInvoice(ctx, invoiceInput(supplier, 500, domain.KES, "1"))
	require.NoError(t, err)
	_, err = e.parties.ArchiveParty(ctx, domain.PartySupplier, supplier.ID)
	require.NoError(t, err)

	_, err = e.invoices.ArchiveInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), e.balance(t, supplier))
}

func TestInvoiceUseCase_ArchiveInvoice_UnknownOrTwice(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	_, err := e.invoices.ArchiveInvoice(ctx, "missing-id")
	require.ErrorIs(t, err, domain.ErrNotFound)

	supplier := e.party(t, domain.PartySupplier, 0, domain.KES)
	inv, err := e.invoices.CreateInvoice(ctx, invoiceInput(supplier, 500, domain.KES, "1"))
	require.NoError(t, err)

	_, err = e.invoices.ArchiveInvoice(ctx, inv.ID)
	require.NoError(t, err)
	_, err = e.invoices.ArchiveInvoice(ctx, inv.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, int64(0), e.balance(t, supplier), "second archive must not reverse again")
}

func TestInvoiceUseCase_ArchiveInvoice_CompensatesReversal(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	supplier := e.party(t, domain.PartySupplier, 0, domain.KES)
	inv, err := e.invoices.CreateInvoice(ctx, invoiceInput(supplier, 500, domain.KES, "1"))
	require.NoError(t, err)

	e.store.failPut = func(docType string, _ *domain.Document) error {
		if docType == string(domain.DocInvoice) {
			return errStoreDown
		}
		return nil
	}
	_, err = e.invoices.ArchiveInvoice(ctx, inv.ID)
	require.ErrorIs(t, err, errStoreDown)

	e.store.failPut = nil
	assert.Equal(t, int64(500), e.balance(t, supplier))
	got, err := e.invoices.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, got.Active())
}

func TestInvoiceUseCase_UpdateInvoice_ArchiveReversesAppliedAmount(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	supplier := e.party(t, domain.PartySupplier, 0, domain.KES)
	inv, err := e.invoices.CreateInvoice(ctx, invoiceInput(supplier, 500, domain.KES, "1"))
	require.NoError(t, err)

	updated, err := e.invoices.UpdateInvoice(ctx, inv.ID, invoiceInput(supplier, 800, domain.KES, "1"))
	require.NoError(t, err)
	assert.Equal(t, int64(800), updated.Amount)
	assert.Equal(t, int64(500), updated.SupplierAmount)
	assert.Equal(t, int64(500), e.balance(t, supplier))

	_, err = e.invoices.ArchiveInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), e.balance(t, supplier))
}
