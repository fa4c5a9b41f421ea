package domain

import (
	"fmt"
	"strings"
)

// PartyKind is the closed set of entities whose balance the ledger tracks.
type PartyKind string

const (
	PartyAccount  PartyKind = "account"
	PartyClient   PartyKind = "client"
	PartySupplier PartyKind = "supplier"
	PartyAgent    PartyKind = "agent"
)

// Lookup is how a party document is resolved from a reference.
type Lookup int

const (
	// LookupByID fetches the document by id.
	LookupByID Lookup = iota
	// LookupByIDAndType finds the document by {_id, type}; exactly one match is
	// required.
	LookupByIDAndType
)

// ParsePartyKind validates a source/destination tag.
func ParsePartyKind(s string) (PartyKind, error) {
	k := PartyKind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case PartyAccount, PartyClient, PartySupplier, PartyAgent:
		return k, nil
	}
	return "", fmt.Errorf("%w: got %q", ErrInvalidPartyKind, s)
}

// Lookup returns the fetch strategy for the kind.
func (k PartyKind) Lookup() Lookup {
	if k == PartyAccount {
		return LookupByID
	}
	return LookupByIDAndType
}

// DocType is the document type parties of this kind are stored under.
func (k PartyKind) DocType() DocType {
	return DocType(k)
}

// Party is an Account, Client, Supplier or Agent: anything holding a balance.
// Balance is in whole units of Currency.
type Party struct {
	Meta
	Name        string   `json:"name"`
	PhoneNumber string   `json:"phoneNumber,omitempty"`
	Balance     int64    `json:"balance"`
	Currency    Currency `json:"currency"`
}

// Kind returns the party kind derived from the document type.
func (p *Party) Kind() PartyKind {
	return PartyKind(p.Type)
}

// ApplyDebit lowers the balance by amount.
func (p *Party) ApplyDebit(amount int64) {
	p.Balance -= amount
}

// ApplyCredit raises the balance by amount.
func (p *Party) ApplyCredit(amount int64) {
	p.Balance += amount
}

// Validate checks the fields a caller may set.
func (p *Party) Validate() error {
	if _, err := ParsePartyKind(string(p.Type)); err != nil {
		return err
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name", ErrMissingField)
	}
	if strings.TrimSpace(p.ProjectID) == "" {
		return fmt.Errorf("%w: projectId", ErrMissingField)
	}
	if !p.Currency.Valid() {
		return fmt.Errorf("%w: got %q", ErrInvalidCurrency, p.Currency)
	}
	return nil
}
