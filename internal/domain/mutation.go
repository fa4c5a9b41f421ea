package domain

import "fmt"

// BalanceDelta is a signed change to one party's stored balance, expressed in
// that party's currency.
type BalanceDelta struct {
	PartyID string
	Kind    PartyKind
	Amount  int64
}

// Inverse returns the delta that undoes d.
func (d BalanceDelta) Inverse() BalanceDelta {
	d.Amount = -d.Amount
	return d
}

// Apply adds the delta to p.
func (d BalanceDelta) Apply(p *Party) {
	if d.Amount >= 0 {
		p.ApplyCredit(d.Amount)
		return
	}
	p.ApplyDebit(-d.Amount)
}

// Side is the end of a transaction a party sits on.
type Side int

const (
	SideSource Side = iota
	SideDestination
)

// TransactionDirection returns +1 when the transaction raises the balance of
// the party on side, -1 when it lowers it.
//
//	withdraw: source -1; destination +1 if it is an account, else -1
//	deposit from an account:   source -1, destination +1
//	deposit from anyone else:  source +1, destination +1
func TransactionDirection(t *Transaction, side Side) int {
	switch t.TransType {
	case TransWithdraw:
		if side == SideSource {
			return -1
		}
		if t.Destination == PartyAccount {
			return 1
		}
		return -1
	default:
		if side == SideDestination {
			return 1
		}
		if t.Source == PartyAccount {
			return -1
		}
		return 1
	}
}

// TransactionCreated computes the balance changes for both ends of t. source
// and destination must be the parties referenced by t.From and t.To.
func TransactionCreated(t *Transaction, source, destination *Party) ([]BalanceDelta, error) {
	if source.ID != t.From || destination.ID != t.To {
		return nil, fmt.Errorf("%w: parties do not match transaction %s", ErrValidation, t.ID)
	}

	sourceAmount, err := Convert(t.Amount, t.Currency, source.Currency, t.Rate)
	if err != nil {
		return nil, err
	}
	destAmount, err := Convert(t.Amount, t.Currency, destination.Currency, t.Rate)
	if err != nil {
		return nil, err
	}

	return []BalanceDelta{
		{PartyID: source.ID, Kind: t.Source, Amount: int64(TransactionDirection(t, SideSource)) * sourceAmount},
		{PartyID: destination.ID, Kind: t.Destination, Amount: int64(TransactionDirection(t, SideDestination)) * destAmount},
	}, nil
}

// InvoiceCreated raises the supplier balance by the invoice amount converted
// into the supplier's currency, and records the applied amount on inv.
func InvoiceCreated(inv *Invoice, supplier *Party) (BalanceDelta, error) {
	amount, err := Convert(inv.Amount, inv.Currency, supplier.Currency, inv.Rate)
	if err != nil {
		return BalanceDelta{}, err
	}
	inv.SupplierAmount = amount
	inv.SupplierCurrency = supplier.Currency
	return BalanceDelta{PartyID: supplier.ID, Kind: PartySupplier, Amount: amount}, nil
}

// InvoiceArchived undoes InvoiceCreated. It takes back the amount recorded at
// creation, so a later change of the supplier's currency does not skew the
// reversal. Invoices without a recorded amount are converted again.
func InvoiceArchived(inv *Invoice, supplier *Party) (BalanceDelta, error) {
	if inv.SupplierCurrency != "" {
		return BalanceDelta{PartyID: supplier.ID, Kind: PartySupplier, Amount: -inv.SupplierAmount}, nil
	}
	amount, err := Convert(inv.Amount, inv.Currency, supplier.Currency, inv.Rate)
	if err != nil {
		return BalanceDelta{}, err
	}
	return BalanceDelta{PartyID: supplier.ID, Kind: PartySupplier, Amount: -amount}, nil
}

// SaleCreated lowers the client balance by the raw sale price. No currency
// conversion is applied.
func SaleCreated(sale *Sale, client *Party) BalanceDelta {
	return BalanceDelta{PartyID: client.ID, Kind: PartyClient, Amount: -sale.Price}
}

// ExpenseCreated lowers the account balance by the raw expense amount. No
// currency conversion is applied.
func ExpenseCreated(exp *Expense, account *Party) BalanceDelta {
	return BalanceDelta{PartyID: account.ID, Kind: PartyAccount, Amount: -exp.Amount}
}

// ApplyDeltas returns copies of parties with every matching delta applied.
// Inputs are left untouched.
func ApplyDeltas(parties []*Party, deltas []BalanceDelta) []*Party {
	out := make([]*Party, len(parties))
	for i, p := range parties {
		cp := *p
		for _, d := range deltas {
			if d.PartyID == cp.ID {
				d.Apply(&cp)
			}
		}
		out[i] = &cp
	}
	return out
}
