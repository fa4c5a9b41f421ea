package domain

import "time"

// AccountTotals summarizes money in and out of a project, in BaseCurrency.
type AccountTotals struct {
	ProjectID    string   `json:"projectId"`
	Currency     Currency `json:"currency"`
	TotalDebit   int64    `json:"totalDebit"`
	TotalCredit  int64    `json:"totalCredit"`
	TotalBalance int64    `json:"totalBalance"`
}

// IncomeStatement is the project's profit and loss, in BaseCurrency.
type IncomeStatement struct {
	ProjectID       string   `json:"projectId"`
	Currency        Currency `json:"currency"`
	Revenue         int64    `json:"revenue"`
	Cost            int64    `json:"cost"`
	Expenses        int64    `json:"expenses"`
	GrossProfit     int64    `json:"grossProfit"`
	NetProfit       int64    `json:"netProfit"`
	TotalAmountPaid int64    `json:"totalAmountPaid"`
}

// Reconciliation compares a party's stored balance with its ledger.
type Reconciliation struct {
	PartyID         string    `json:"partyId"`
	Kind            PartyKind `json:"kind"`
	RecordedBalance int64     `json:"recordedBalance"`
	LedgerBalance   int64     `json:"ledgerBalance"`
	Difference      int64     `json:"difference"`
	Reconciled      bool      `json:"reconciled"`
	CheckedAt       time.Time `json:"checkedAt"`
}
