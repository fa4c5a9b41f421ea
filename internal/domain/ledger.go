package domain

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// LedgerLine is one event seen from one party. Debit, Credit and Amount are in
// the line's Currency; Balance is the running balance in the party's currency.
type LedgerLine struct {
	Date        Date            `json:"date"`
	Description string          `json:"description"`
	Amount      int64           `json:"amount"`
	Debit       int64           `json:"debit"`
	Credit      int64           `json:"credit"`
	Balance     int64           `json:"balance"`
	Currency    Currency        `json:"currency"`
	Rate        decimal.Decimal `json:"rate"`
	SourceType  DocType         `json:"sourceType"`
	SourceID    string          `json:"sourceId"`
	Memo        bool            `json:"memo,omitempty"`

	createdAt time.Time
}

// LedgerTotals are converted into the party's currency.
type LedgerTotals struct {
	TotalDebit       int64  `json:"totalDebit"`
	TotalCredit      int64  `json:"totalCredit"`
	Difference       int64  `json:"difference"`
	TotalCommissions *int64 `json:"totalCommissions,omitempty"`
}

// Ledger is the reconstructed history of a party.
type Ledger struct {
	PartyID  string       `json:"partyId"`
	Kind     PartyKind    `json:"kind"`
	Currency Currency     `json:"currency"`
	Entries  []LedgerLine `json:"entries"`
	Totals   LedgerTotals `json:"totals"`
}

// Closing returns the balance after the last entry.
func (l *Ledger) Closing() int64 {
	if len(l.Entries) == 0 {
		return 0
	}
	return l.Entries[len(l.Entries)-1].Balance
}

// TransactionLine renders t from the point of view of partyID, which must be
// t.From or t.To. The line is a debit when the transaction raised that party's
// balance and a credit when it lowered it.
func TransactionLine(t *Transaction, partyID string) LedgerLine {
	side := SideDestination
	if t.From == partyID {
		side = SideSource
	}

	line := baseLine(t.Date, t.Amount, t.Currency, t.Rate, DocTransaction, t.ID, t.CreatedAt)
	line.Description = t.Description
	if line.Description == "" {
		line.Description = fmt.Sprintf("%s from %s to %s", t.TransType, displayName(t.FromName, t.From), displayName(t.ToName, t.To))
	}
	if TransactionDirection(t, side) > 0 {
		line.Debit = t.Amount
	} else {
		line.Credit = t.Amount
	}
	return line
}

// SaleLine renders a sale on its client's ledger as a credit of the price.
func SaleLine(s *Sale) LedgerLine {
	line := baseLine(s.Date, s.Price, s.Currency, s.Rate, DocSale, s.ID, s.CreatedAt)
	line.Description = fmt.Sprintf("Sale of house %s", s.HouseNo)
	line.Credit = s.Price
	return line
}

// CommissionLine renders a sale on its agent's ledger as a debit of the
// commission.
func CommissionLine(s *Sale) LedgerLine {
	line := baseLine(s.Date, s.Commission, s.Currency, s.Rate, DocSale, s.ID, s.CreatedAt)
	line.Description = fmt.Sprintf("Commission on house %s", s.HouseNo)
	line.Debit = s.Commission
	return line
}

// InvoiceLine renders an invoice on its supplier's ledger as a debit.
func InvoiceLine(inv *Invoice) LedgerLine {
	line := baseLine(inv.Date, inv.Amount, inv.Currency, inv.Rate, DocInvoice, inv.ID, inv.CreatedAt)
	line.Description = inv.Description
	line.Debit = inv.Amount
	return line
}

// MemoLine renders a transaction that concerns the party only indirectly. It
// carries the amount but does not move the running balance.
func MemoLine(t *Transaction, clientName string) LedgerLine {
	line := baseLine(t.Date, t.Amount, t.Currency, t.Rate, DocTransaction, t.ID, t.CreatedAt)
	line.Description = fmt.Sprintf("Client %s: %s", clientName, t.TransType)
	if t.Description != "" {
		line.Description += " (" + t.Description + ")"
	}
	line.Memo = true
	return line
}

// BuildLedger orders lines by date and walks them, converting each debit and
// credit into the party's currency with the line's own rate. Lines with equal
// dates are ordered by creation time, then source id.
func BuildLedger(party *Party, lines []LedgerLine) (*Ledger, error) {
	if lines == nil {
		lines = []LedgerLine{}
	}
	slices.SortStableFunc(lines, func(a, b LedgerLine) int {
		if c := a.Date.Compare(b.Date.Time); c != 0 {
			return c
		}
		if c := a.createdAt.Compare(b.createdAt); c != 0 {
			return c
		}
		return cmp.Compare(a.SourceID, b.SourceID)
	})

	ledger := &Ledger{
		PartyID:  party.ID,
		Kind:     party.Kind(),
		Currency: party.Currency,
		Entries:  lines,
	}

	var balance int64
	for i := range lines {
		debit, err := Convert(lines[i].Debit, lines[i].Currency, party.Currency, lines[i].Rate)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", lines[i].SourceType, lines[i].SourceID, err)
		}
		credit, err := Convert(lines[i].Credit, lines[i].Currency, party.Currency, lines[i].Rate)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", lines[i].SourceType, lines[i].SourceID, err)
		}

		balance += debit - credit
		lines[i].Balance = balance
		ledger.Totals.TotalDebit += debit
		ledger.Totals.TotalCredit += credit
	}
	ledger.Totals.Difference = ledger.Totals.TotalDebit - ledger.Totals.TotalCredit

	return ledger, nil
}

func baseLine(date Date, amount int64, currency Currency, rate decimal.Decimal, source DocType, id string, createdAt time.Time) LedgerLine {
	return LedgerLine{
		Date:       date,
		Amount:     amount,
		Currency:   currency,
		Rate:       rate,
		SourceType: source,
		SourceID:   id,
		createdAt:  createdAt,
	}
}

func displayName(name, id string) string {
	if name != "" {
		return name
	}
	return id
}
