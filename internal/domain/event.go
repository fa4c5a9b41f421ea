package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// EventKind is the closed set of documents that mutate balances.
type EventKind = DocType

// ArchivePolicy states what archiving an event does to balances.
type ArchivePolicy struct {
	ReversesBalanceOnArchive bool
}

// ArchivePolicy returns the per-type archive policy. Only invoices undo their
// balance effect when archived.
func (t DocType) ArchivePolicy() ArchivePolicy {
	switch t {
	case DocInvoice:
		return ArchivePolicy{ReversesBalanceOnArchive: true}
	default:
		return ArchivePolicy{ReversesBalanceOnArchive: false}
	}
}

// TransType is the direction of a transaction.
type TransType string

const (
	TransDeposit  TransType = "deposit"
	TransWithdraw TransType = "withdraw"
)

// ParseTransType validates a transType value.
func ParseTransType(s string) (TransType, error) {
	t := TransType(strings.ToLower(strings.TrimSpace(s)))
	if t != TransDeposit && t != TransWithdraw {
		return "", fmt.Errorf("%w: got %q", ErrInvalidTransType, s)
	}
	return t, nil
}

// Transaction moves money between two parties, each in its own currency.
type Transaction struct {
	Meta
	From        string          `json:"from"`
	FromName    string          `json:"fromName"`
	To          string          `json:"to"`
	ToName      string          `json:"toName"`
	Source      PartyKind       `json:"source"`
	Destination PartyKind       `json:"destination"`
	Amount      int64           `json:"amount"`
	Currency    Currency        `json:"currency"`
	Rate        decimal.Decimal `json:"rate"`
	TransType   TransType       `json:"transType"`
	Date        Date            `json:"date"`
	Description string          `json:"description"`
}

// Validate checks required fields.
func (t *Transaction) Validate() error {
	if t.From == "" {
		return fmt.Errorf("%w: from", ErrMissingField)
	}
	if t.To == "" {
		return fmt.Errorf("%w: to", ErrMissingField)
	}
	if t.From == t.To {
		return ErrSameParty
	}
	if _, err := ParsePartyKind(string(t.Source)); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if _, err := ParsePartyKind(string(t.Destination)); err != nil {
		return fmt.Errorf("destination: %w", err)
	}
	if _, err := ParseTransType(string(t.TransType)); err != nil {
		return err
	}
	return validateMoney(t.ProjectID, t.Amount, t.Currency, t.Rate, t.Date)
}

// Sale records a house sold to a client, optionally through an agent.
type Sale struct {
	Meta
	ClientID   string          `json:"clientId"`
	AgentID    string          `json:"agentId,omitempty"`
	HouseNo    string          `json:"houseNo"`
	Price      int64           `json:"price"`
	Commission int64           `json:"commission"`
	Currency   Currency        `json:"currency"`
	Rate       decimal.Decimal `json:"rate"`
	Date       Date            `json:"date"`
}

// Validate checks required fields.
func (s *Sale) Validate() error {
	if s.ClientID == "" {
		return fmt.Errorf("%w: clientId", ErrMissingField)
	}
	if s.Commission < 0 {
		return fmt.Errorf("%w: commission must not be negative", ErrValidation)
	}
	if s.Commission > 0 && s.AgentID == "" {
		return fmt.Errorf("%w: agentId is required when commission is set", ErrMissingField)
	}
	return validateMoney(s.ProjectID, s.Price, s.Currency, s.Rate, s.Date)
}

// Invoice is an amount billed by a supplier.
type Invoice struct {
	Meta
	SupplierID  string          `json:"supplierId"`
	Amount      int64           `json:"amount"`
	Currency    Currency        `json:"currency"`
	Rate        decimal.Decimal `json:"rate"`
	Date        Date            `json:"date"`
	Description string          `json:"description"`

	// Amount added to the supplier's balance at creation, in the supplier's
	// currency at that time. Archiving takes back exactly this.
	SupplierAmount   int64    `json:"supplierAmount"`
	SupplierCurrency Currency `json:"supplierCurrency,omitempty"`
}

// Validate checks required fields.
func (i *Invoice) Validate() error {
	if i.SupplierID == "" {
		return fmt.Errorf("%w: supplierId", ErrMissingField)
	}
	return validateMoney(i.ProjectID, i.Amount, i.Currency, i.Rate, i.Date)
}

// Expense is money spent out of an account.
type Expense struct {
	Meta
	AccountID   string          `json:"accountId"`
	AccountName string          `json:"accountName"`
	Amount      int64           `json:"amount"`
	Currency    Currency        `json:"currency"`
	Rate        decimal.Decimal `json:"rate"`
	Date        Date            `json:"date"`
	Description string          `json:"description"`
}

// Validate checks required fields. A USD expense needs a rate so reports can
// express it in the base currency.
func (e *Expense) Validate() error {
	if e.AccountID == "" {
		return fmt.Errorf("%w: accountId", ErrMissingField)
	}
	if e.Currency == USD && !e.Rate.IsPositive() {
		return ErrInvalidRate
	}
	return validateMoney(e.ProjectID, e.Amount, e.Currency, e.Rate, e.Date)
}

func validateMoney(projectID string, amount int64, currency Currency, rate decimal.Decimal, date Date) error {
	if strings.TrimSpace(projectID) == "" {
		return fmt.Errorf("%w: projectId", ErrMissingField)
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if !currency.Valid() {
		return fmt.Errorf("%w: got %q", ErrInvalidCurrency, currency)
	}
	if rate.IsNegative() {
		return ErrInvalidRate
	}
	if date.IsZero() {
		return fmt.Errorf("%w: date", ErrMissingField)
	}
	return nil
}
